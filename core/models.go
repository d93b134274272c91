package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Mode selects how aggressively query tokens are matched against the corpus.
// The Exact family (Exact, Variants, Extended, Maximum) matches whole tokens
// with increasing tolerance for letter confusions introduced by transcription.
// Fuzzy matches by edit distance and Regex by pattern; both bypass expansion.
type Mode int

const (
	// ModeExact matches tokens verbatim.
	ModeExact Mode = iota + 1
	// ModeVariants tolerates one substitution from the basic confusion classes.
	ModeVariants
	// ModeExtended tolerates up to two substitutions from the broadened classes.
	ModeExtended
	// ModeMaximum tolerates up to two substitutions from the maximal classes,
	// with final letters interchangeable with their non-final forms.
	ModeMaximum
	// ModeFuzzy matches tokens within an edit distance.
	ModeFuzzy
	// ModeRegex matches corpus tokens against a regular expression.
	ModeRegex
)

// String returns the canonical lowercase name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	case ModeVariants:
		return "variants"
	case ModeExtended:
		return "extended"
	case ModeMaximum:
		return "maximum"
	case ModeFuzzy:
		return "fuzzy"
	case ModeRegex:
		return "regex"
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m >= ModeExact && m <= ModeRegex
}

// ExactFamily reports whether m matches whole tokens through variant expansion.
func (m Mode) ExactFamily() bool {
	return m >= ModeExact && m <= ModeMaximum
}

// Fragment is one transcribed manuscript page/side.
// Immutable once indexed; the ID is a content hash of the file identifier
// (or of the header line when no file identifier could be extracted), so
// re-ingesting the same corpus yields stable identifiers and the same
// fragment appearing in two transcription dumps collapses to one record.
type Fragment struct {
	Id           ID
	ManuscriptId string // digits-only system identifier parsed from the header
	PageIndex    int
	FileId       string // IE/page/FL identifier, or bare system id; may be empty
	Header       string // raw header line the fragment was parsed from
	Source       string // label of the transcription source the fragment came from
	Text         string
}

// Token is a normalized word unit at a stable position within its fragment.
// Positions are the unit of gap counting.
type Token struct {
	Surface string
	Norm    string
	Pos     int
}

// QueryRequest describes a single search.
// Gap applies only to Exact-family modes; FuzzyDistance only to ModeFuzzy
// (zero means per-token automatic distance by length).
type QueryRequest struct {
	Text          string
	Mode          Mode
	Gap           int
	FuzzyDistance int
}

// Hit is one fragment matched by a query.
// Positions holds the matched token positions, one per query token for
// phrase matches. Rank is the expansion layer (or edit distance) of the
// least aggressive match found; 0 means every token matched exactly.
type Hit struct {
	FragmentId   ID
	ManuscriptId string
	Positions    []int
	Terms        []string
	Rank         int
	Mode         Mode
}

// Posting records the positions of one term within one fragment.
// Positions are sorted ascending.
type Posting struct {
	FragmentId ID
	Positions  []uint32
}

// PostingList holds all occurrences of a term across the corpus,
// sorted by fragment ID ascending.
type PostingList struct {
	Term     string
	Postings []Posting
}

// IndexManifest records the state of the last completed index build.
// Its presence marks the index as queryable.
type IndexManifest struct {
	BuiltAt       time.Time
	FragmentCount int
	TermCount     int
	TokenCount    uint64
	Sources       []string
}
