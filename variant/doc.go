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


// Package variant generates spelling variants for Hebrew search terms.
//
// Digitized Genizah fragments carry OCR and transcription noise in which
// visually similar letters are swapped. The Expander compensates by deriving
// alternative spellings from confusion tables of commonly conflated letter
// pairs, in three widening tiers:
//
//   - basic: the most frequent confusions, one substitution per term
//   - extended: a broader table, up to two substitutions
//   - maximum: the widest table including final letter forms, again up to
//     two substitutions
//
// Variants are ranked by the tier that produced them and by distance from
// the original term, so callers can prefer conservative readings.
package variant
