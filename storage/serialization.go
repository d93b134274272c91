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

import (
	"fmt"

	"github.com/gershuni/GenizahSearch/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalFragment serializes a Fragment to bytes.
func MarshalFragment(fragment *core.Fragment) []byte {
	buf := make([]byte, core.FragmentMUS.Size(*fragment))
	core.FragmentMUS.Marshal(*fragment, buf)
	return buf
}

// UnmarshalFragment deserializes a Fragment from bytes.
func UnmarshalFragment(data []byte) (*core.Fragment, error) {
	fragment, _, err := core.FragmentMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: fragment: %w", ErrSerializationFailed, err)
	}
	return &fragment, nil
}

// MarshalPostingList serializes a PostingList to bytes.
func MarshalPostingList(list *core.PostingList) []byte {
	buf := make([]byte, core.PostingListMUS.Size(*list))
	core.PostingListMUS.Marshal(*list, buf)
	return buf
}

// UnmarshalPostingList deserializes a PostingList from bytes.
func UnmarshalPostingList(data []byte) (*core.PostingList, error) {
	list, _, err := core.PostingListMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: posting list: %w", ErrSerializationFailed, err)
	}
	return &list, nil
}

// MarshalManifest serializes an IndexManifest to bytes.
func MarshalManifest(manifest *core.IndexManifest) []byte {
	buf := make([]byte, core.IndexManifestMUS.Size(*manifest))
	core.IndexManifestMUS.Marshal(*manifest, buf)
	return buf
}

// UnmarshalManifest deserializes an IndexManifest from bytes.
func UnmarshalManifest(data []byte) (*core.IndexManifest, error) {
	manifest, _, err := core.IndexManifestMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: manifest: %w", ErrSerializationFailed, err)
	}
	return &manifest, nil
}
