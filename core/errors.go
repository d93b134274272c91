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


package core

import "errors"

// Domain errors
var (
	// ErrInvalidRequest indicates a QueryRequest failed validation.
	ErrInvalidRequest = errors.New("invalid search request")

	// ErrInvalidPattern indicates a malformed regular expression pattern.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrInvalidConfiguration indicates invalid analysis or build configuration.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrIndexUnavailable indicates a query was attempted while no index is
	// built or while a rebuild is in progress.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrInvalidFragment indicates a Fragment failed validation.
	ErrInvalidFragment = errors.New("invalid fragment")

	// ErrInvalidMode indicates an unknown matching mode.
	ErrInvalidMode = errors.New("invalid match mode")

	// ErrNegativeGap indicates a negative phrase gap.
	ErrNegativeGap = errors.New("gap cannot be negative")

	// ErrNegativeDistance indicates a negative fuzzy edit distance.
	ErrNegativeDistance = errors.New("fuzzy distance cannot be negative")

	// ErrEmptyFragmentText indicates the fragment Text field is empty.
	ErrEmptyFragmentText = errors.New("fragment text cannot be empty")

	// ErrEmptyHeader indicates the fragment Header field is empty.
	ErrEmptyHeader = errors.New("fragment header cannot be empty")
)
