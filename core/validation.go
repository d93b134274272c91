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

import (
	"fmt"
)

// ValidateQueryRequest validates a QueryRequest according to domain rules.
//
// Validation rules:
//   - Mode must be one of the defined modes
//   - Gap must not be negative
//   - FuzzyDistance must not be negative
//
// NOT validated:
//   - Text (an empty text yields an empty result, not an error)
func ValidateQueryRequest(req *QueryRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidRequest)
	}

	if err := ValidateMode(req.Mode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	if req.Gap < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, ErrNegativeGap)
	}

	if req.FuzzyDistance < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, ErrNegativeDistance)
	}

	return nil
}

// ValidateFragment validates a Fragment according to domain rules.
//
// Validation rules:
//   - Header must not be empty (it carries the identity)
//   - Text must not be empty
//
// NOT validated:
//   - ManuscriptId and FileId (headers without a parseable system id are
//     retained and grouped under the unclassified bucket downstream)
func ValidateFragment(fragment *Fragment) error {
	if fragment == nil {
		return fmt.Errorf("%w: fragment is nil", ErrInvalidFragment)
	}

	if fragment.Header == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFragment, ErrEmptyHeader)
	}

	if fragment.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFragment, ErrEmptyFragmentText)
	}

	return nil
}

// ValidateMode validates that a Mode has a defined value.
func ValidateMode(mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: value %d", ErrInvalidMode, mode)
	}
	return nil
}

// ParseMode parses a mode name as accepted on the command line.
// Recognized names are exact, variants, extended, maximum, fuzzy and regex.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "exact":
		return ModeExact, nil
	case "variants":
		return ModeVariants, nil
	case "extended":
		return ModeExtended, nil
	case "maximum":
		return ModeMaximum, nil
	case "fuzzy":
		return ModeFuzzy, nil
	case "regex":
		return ModeRegex, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, name)
	}
}
