package badger

import (
	"context"
	"testing"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gershuni/GenizahSearch/storage"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)

	assert.False(t, backend.IsClosed())

	err = backend.Close()
	require.NoError(t, err)

	assert.True(t, backend.IsClosed())
}

func TestWithTx_ClosedBackend(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	err = backend.WithTx(func(tx *badger.Txn) error {
		return nil
	}, false)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestWithTransaction(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	t.Run("successful transaction", func(t *testing.T) {
		err := backend.WithTransaction(ctx, func(ctx context.Context) error {
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("failed transaction", func(t *testing.T) {
		testErr := assert.AnError
		err := backend.WithTransaction(ctx, func(ctx context.Context) error {
			return testErr
		})
		assert.Equal(t, testErr, err)
	})
}

func TestDropPrefixes(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	// Seed two keyspaces
	err = backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte("alpha:1"), []byte("one")); err != nil {
			return err
		}
		if err := tx.Set([]byte("beta:1"), []byte("two")); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	require.NoError(t, backend.DropPrefixes([]byte("alpha:")))

	err = backend.WithTx(func(tx *badger.Txn) error {
		_, getErr := tx.Get([]byte("alpha:1"))
		assert.ErrorIs(t, getErr, badger.ErrKeyNotFound)

		_, getErr = tx.Get([]byte("beta:1"))
		assert.NoError(t, getErr)
		return nil
	}, false)
	require.NoError(t, err)
}

func TestDropPrefixes_ClosedBackend(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	err = backend.DropPrefixes([]byte("alpha:"))
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
