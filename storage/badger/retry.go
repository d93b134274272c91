// Copyright 2025 The GenizahSearch Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/gershuni/GenizahSearch/storage"
)

const (
	conflictMaxAttempts = 5
	conflictBaseDelay   = 5 * time.Millisecond
)

// retryOnConflict runs a write operation, retrying with exponential backoff
// when commit fails on a conflicting concurrent transaction. Other errors
// pass through untouched. Exhausting the attempts wraps the conflict in
// storage.ErrTransactionFailed.
func retryOnConflict(operation func() error) error {
	var lastErr error
	for attempt := 1; attempt <= conflictMaxAttempts; attempt++ {
		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("write committed after conflict retry", "attempt", attempt)
			}
			return nil
		}
		if !errors.Is(lastErr, badger.ErrConflict) {
			return lastErr
		}

		slog.Debug("write conflict, will retry", "attempt", attempt, "maxAttempts", conflictMaxAttempts)

		// Don't sleep after the last attempt
		if attempt == conflictMaxAttempts {
			break
		}

		// Exponential backoff: baseDelay * 2^(attempt-1)
		delay := conflictBaseDelay
		for i := 1; i < attempt; i++ {
			delay *= 2
		}
		time.Sleep(delay)
	}

	return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, lastErr)
}
