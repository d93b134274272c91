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


// Package corpus reads transcription dump files and tokenizes fragment text.
//
// Two dump layouts are supported. The newer layout separates records with
// arrow-framed header lines:
//
//	==> 990012345_IE1234_P1_FL5 <==
//	text of the fragment...
//
// The older layout uses hash-prefixed header lines:
//
//	### 990012345 some shelfmark
//	text of the fragment...
//
// Fragment identity derives from the file id embedded in the header, so the
// same fragment appearing in several dumps resolves to one record; dumps
// loaded later replace earlier ones.
package corpus
