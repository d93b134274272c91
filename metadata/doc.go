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


// Package metadata resolves manuscript identifiers against the library
// catalogue.
//
// A Resolver loads the catalogue CSV once and answers bidirectional
// lookups: system id to shelfmark and title, and any normalized call
// number back to its system id. An ExclusionSet accepts ids or
// shelfmarks from the user and folds them to canonical system ids for
// filtering during search and composition analysis.
package metadata
