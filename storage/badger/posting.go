package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/gershuni/GenizahSearch/core"
	"github.com/gershuni/GenizahSearch/storage"
)

// Context cancellation is checked once per this many vocabulary terms.
const termCheckInterval = 1024

// PostingRepository implements storage.PostingRepository for BadgerDB.
type PostingRepository struct {
	backend *Backend
}

var _ storage.PostingRepository = (*PostingRepository)(nil)

// NewPostingRepository creates a new PostingRepository.
func NewPostingRepository(backend *Backend) *PostingRepository {
	return &PostingRepository{
		backend: backend,
	}
}

// Close releases repository resources. The shared backend stays open.
func (r *PostingRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *PostingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutPostingLists stores one or more posting lists, replacing lists with the
// same term.
func (r *PostingRepository) PutPostingLists(ctx context.Context, lists ...*core.PostingList) error {
	return retryOnConflict(func() error {
		return r.backend.WithTx(func(tx *badger.Txn) error {
			for _, list := range lists {
				key := makePostingKey(list.Term)
				if err := tx.Set(key, storage.MarshalPostingList(list)); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
	})
}

// GetPostingList retrieves the posting list for a term.
func (r *PostingRepository) GetPostingList(ctx context.Context, term string) (*core.PostingList, error) {
	var result *core.PostingList
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readPostingList(tx, makePostingKey(term))
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

// GetPostingLists retrieves posting lists for multiple terms.
func (r *PostingRepository) GetPostingLists(ctx context.Context, terms ...string) ([]*core.PostingList, error) {
	var result []*core.PostingList
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, term := range terms {
			list, err := r.readPostingList(tx, makePostingKey(term))
			if err != nil {
				return err
			}
			if list != nil {
				result = append(result, list)
			}
		}
		return nil
	}, false)
	return result, err
}

// ForEachTerm calls fn for every vocabulary term in lexicographic order.
func (r *PostingRepository) ForEachTerm(ctx context.Context, fn func(term string) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(postingPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		count := 0
		for iter.Rewind(); iter.Valid(); iter.Next() {
			// Check context periodically; vocabulary scans are long
			if count%termCheckInterval == 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
			}
			count++

			if err := fn(postingKeyTerm(iter.Item().Key())); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// CountTerms returns the vocabulary size.
func (r *PostingRepository) CountTerms(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(postingPrefix + ":")
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

// readPostingList reads a posting list from the transaction.
// Returns nil, nil when the key does not exist.
func (r *PostingRepository) readPostingList(tx *badger.Txn, key []byte) (*core.PostingList, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var list *core.PostingList
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		list, unmarshalErr = storage.UnmarshalPostingList(val)
		return unmarshalErr
	})
	return list, err
}
