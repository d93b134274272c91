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


package storage

import "errors"

var (
	// ErrNotFound indicates that no record exists under the requested key.
	ErrNotFound = errors.New("record not found")

	// ErrTransactionFailed indicates that a transaction could not be
	// committed, even after conflict retries.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrStorageClosed indicates an operation on a closed backend.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed indicates that a stored value could not be
	// decoded back into its record type.
	ErrSerializationFailed = errors.New("serialization failed")
)
