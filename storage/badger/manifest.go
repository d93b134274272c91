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
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/gershuni/GenizahSearch/core"
	"github.com/gershuni/GenizahSearch/storage"
)

// ManifestRepository implements storage.ManifestRepository for BadgerDB.
type ManifestRepository struct {
	backend *Backend
}

var _ storage.ManifestRepository = (*ManifestRepository)(nil)

// NewManifestRepository creates a new ManifestRepository.
func NewManifestRepository(backend *Backend) *ManifestRepository {
	return &ManifestRepository{
		backend: backend,
	}
}

// Close releases repository resources. The shared backend stays open.
func (r *ManifestRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ManifestRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveManifest persists the manifest of a completed index build.
func (r *ManifestRepository) SaveManifest(ctx context.Context, manifest *core.IndexManifest) error {
	return retryOnConflict(func() error {
		return r.backend.WithTx(func(tx *badger.Txn) error {
			if manifest.BuiltAt.IsZero() {
				manifest.BuiltAt = time.Now().UTC()
			}
			if err := tx.Set(makeManifestKey(), storage.MarshalManifest(manifest)); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
	})
}

// LoadManifest retrieves the current index manifest.
// Returns nil, nil if no index has been built.
func (r *ManifestRepository) LoadManifest(ctx context.Context) (*core.IndexManifest, error) {
	var manifest *core.IndexManifest
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeManifestKey())
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			manifest, unmarshalErr = storage.UnmarshalManifest(val)
			return unmarshalErr
		})
	}, false)

	return manifest, err
}

// DropIndex removes every stored fragment, posting list, page index entry
// and the manifest.
func (r *ManifestRepository) DropIndex(ctx context.Context) error {
	return r.backend.DropPrefixes(
		[]byte(fragmentPrefix+":"),
		[]byte(pagePrefix+":"),
		[]byte(postingPrefix+":"),
		[]byte(manifestPrefix+":"),
	)
}
