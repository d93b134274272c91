package badger

import (
	"errors"
	"testing"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gershuni/GenizahSearch/storage"
)

func TestRetryOnConflict_Success(t *testing.T) {
	attempts := 0
	err := retryOnConflict(func() error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts, "should succeed on first try")
}

func TestRetryOnConflict_EventualSuccess(t *testing.T) {
	attempts := 0
	err := retryOnConflict(func() error {
		attempts++
		if attempts < 3 {
			return badger.ErrConflict
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "should succeed on third attempt")
}

func TestRetryOnConflict_NonConflictPassesThrough(t *testing.T) {
	attempts := 0
	opErr := errors.New("disk full")
	err := retryOnConflict(func() error {
		attempts++
		return opErr
	})
	require.Error(t, err)
	assert.Equal(t, opErr, err, "should return the original error unwrapped")
	assert.NotErrorIs(t, err, storage.ErrTransactionFailed)
	assert.Equal(t, 1, attempts, "should not retry non-conflict errors")
}

func TestRetryOnConflict_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := retryOnConflict(func() error {
		attempts++
		return badger.ErrConflict
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrTransactionFailed)
	assert.ErrorIs(t, err, badger.ErrConflict, "the conflict stays inspectable")
	assert.Equal(t, conflictMaxAttempts, attempts)
}
