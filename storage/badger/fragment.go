package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/gershuni/GenizahSearch/core"
	"github.com/gershuni/GenizahSearch/storage"
)

// FragmentRepository implements storage.FragmentRepository for BadgerDB.
type FragmentRepository struct {
	backend *Backend
}

var _ storage.FragmentRepository = (*FragmentRepository)(nil)

// NewFragmentRepository creates a new FragmentRepository.
func NewFragmentRepository(backend *Backend) *FragmentRepository {
	return &FragmentRepository{
		backend: backend,
	}
}

// Close releases repository resources. The shared backend stays open.
func (r *FragmentRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *FragmentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutFragments stores one or more fragments, replacing records with the same ID.
func (r *FragmentRepository) PutFragments(ctx context.Context, fragments ...*core.Fragment) error {
	for _, fragment := range fragments {
		if err := core.ValidateFragment(fragment); err != nil {
			return err
		}
	}

	return retryOnConflict(func() error {
		return r.backend.WithTx(func(tx *badger.Txn) error {
			for _, fragment := range fragments {
				key := makeFragmentKey(fragment.Id)

				// Clear the stale page entry when a replacement moves the
				// fragment to a different manuscript or page.
				old, err := r.readFragment(tx, key)
				if err != nil {
					return err
				}
				if old != nil && old.ManuscriptId != "" &&
					(old.ManuscriptId != fragment.ManuscriptId || old.PageIndex != fragment.PageIndex) {
					if err := tx.Delete(makePageKey(old.ManuscriptId, old.PageIndex, old.Id)); err != nil {
						return err
					}
				}

				// Store primary record
				if err := tx.Set(key, storage.MarshalFragment(fragment)); err != nil {
					return err
				}

				// Update page index
				if fragment.ManuscriptId != "" {
					pageKey := makePageKey(fragment.ManuscriptId, fragment.PageIndex, fragment.Id)
					if err := tx.Set(pageKey, storage.MarshalID(fragment.Id)); err != nil {
						return err
					}
				}
			}
			return tx.Commit()
		}, true)
	})
}

// GetFragment retrieves a single fragment by ID.
func (r *FragmentRepository) GetFragment(ctx context.Context, id core.ID) (*core.Fragment, error) {
	var result *core.Fragment
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readFragment(tx, makeFragmentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetFragments retrieves multiple fragments by their IDs.
func (r *FragmentRepository) GetFragments(ctx context.Context, ids ...core.ID) ([]*core.Fragment, error) {
	var result []*core.Fragment
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			fragment, err := r.readFragment(tx, makeFragmentKey(id))
			if err != nil {
				return err
			}
			if fragment != nil {
				result = append(result, fragment)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetManuscriptFragments retrieves every fragment of a manuscript in page order.
func (r *FragmentRepository) GetManuscriptFragments(ctx context.Context, manuscriptId string) ([]*core.Fragment, error) {
	var results []*core.Fragment
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialPageKey(manuscriptId)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			// Read the ID from the index
			var fragmentID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				fragmentID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			// Look up the full record
			fragment, err := r.readFragment(tx, makeFragmentKey(fragmentID))
			if err != nil {
				return err
			}
			if fragment != nil {
				results = append(results, fragment)
			}
		}
		return nil
	}, false)

	return results, err
}

// DeleteFragments removes fragments by their IDs.
func (r *FragmentRepository) DeleteFragments(ctx context.Context, ids ...core.ID) error {
	return retryOnConflict(func() error {
		return r.backend.WithTx(func(tx *badger.Txn) error {
			for _, id := range ids {
				key := makeFragmentKey(id)

				// Read record to get metadata for index cleanup
				fragment, err := r.readFragment(tx, key)
				if err != nil {
					return err
				}
				if fragment == nil {
					return storage.ErrNotFound
				}

				// Delete from page index
				if fragment.ManuscriptId != "" {
					pageKey := makePageKey(fragment.ManuscriptId, fragment.PageIndex, fragment.Id)
					if err := tx.Delete(pageKey); err != nil {
						return err
					}
				}

				// Delete primary record
				if err := tx.Delete(key); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
	})
}

// CountFragments returns the number of stored fragments.
func (r *FragmentRepository) CountFragments(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(fragmentPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// readFragment reads a fragment from the transaction.
// Returns nil, nil when the key does not exist.
func (r *FragmentRepository) readFragment(tx *badger.Txn, key []byte) (*core.Fragment, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var fragment *core.Fragment
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		fragment, unmarshalErr = storage.UnmarshalFragment(val)
		return unmarshalErr
	})
	return fragment, err
}
