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


package compose

import "errors"

var (
	// ErrPlannerRequired is returned when no query planner is provided.
	ErrPlannerRequired = errors.New("query planner required")

	// ErrResolverRequired is returned when no catalogue resolver is provided.
	ErrResolverRequired = errors.New("catalogue resolver required")

	// ErrFragmentRepositoryRequired is returned when no fragment repository is provided.
	ErrFragmentRepositoryRequired = errors.New("fragment repository required")
)
