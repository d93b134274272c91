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


package index

import "errors"

var (
	// ErrFragmentRepositoryRequired is returned when a fragment repository is not provided.
	ErrFragmentRepositoryRequired = errors.New("fragment repository required")

	// ErrPostingRepositoryRequired is returned when a posting repository is not provided.
	ErrPostingRepositoryRequired = errors.New("posting repository required")

	// ErrManifestRepositoryRequired is returned when a manifest repository is not provided.
	ErrManifestRepositoryRequired = errors.New("manifest repository required")
)
