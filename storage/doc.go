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


// Package storage provides the storage abstraction layer for the index.
//
// This package defines repository interfaces that decouple storage
// implementation from search logic, so different backends (BadgerDB,
// in-memory, etc.) can be used interchangeably.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - FragmentRepository: stored fragments and the manuscript page index
//   - PostingRepository: positional posting lists keyed by term
//   - ManifestRepository: the manifest of the last completed build, plus
//     whole-index teardown for rebuilds
//
// Records are serialized with the MUS format; the helpers in this package
// wrap the core serializers with the allocate-and-marshal boilerplate.
//
// # Usage
//
// Create repositories over one shared backend:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	fragments := badger.NewFragmentRepository(backend)
//
// Use in tests with in-memory storage:
//
//	fragments, postings, manifests, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
