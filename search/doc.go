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


// Package search plans manuscript queries over an index engine.
//
// The Searcher type turns a QueryRequest into engine primitives:
//   - Exact-family modes expand each token through the confusion tables
//     and run a positional phrase query
//   - Fuzzy mode runs one edit-distance query per token and keeps the
//     fragments matching all of them
//   - Regex mode scans the indexed vocabulary with the raw pattern
//
// Hits are deduplicated and ordered best-first: the lowest expansion
// rank wins, ties broken by fragment id and match position.
package search
