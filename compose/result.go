package compose

import (
	"time"

	"github.com/gershuni/GenizahSearch/core"
)

// UnclassifiedTitle groups manuscripts the catalogue has no title for.
const UnclassifiedTitle = "Unclassified"

// Result is the outcome of one composition analysis run.
type Result struct {
	// RunId uniquely identifies the run.
	RunId string

	// SeedIds lists the manuscripts whose text seeded this run.
	// Empty for the root run.
	SeedIds []string

	// SourceTokens counts the tokens of the analyzed text.
	SourceTokens int

	// ChunkSize is the window width the run used.
	ChunkSize int

	// ChunkCount is the number of windows searched.
	ChunkCount int

	// CommonChunks counts windows discarded by the frequency filter.
	CommonChunks int

	// Primary holds the title groups below the appendix threshold,
	// ordered by match count descending.
	Primary []*TitleGroup

	// Appendix holds the title groups above the appendix threshold.
	Appendix []*TitleGroup

	// Failures records windows whose search failed.
	Failures []ChunkFailure

	// Nested holds the recursive runs seeded by primary manuscripts.
	Nested []*Result

	// Elapsed is the wall time the run took, nested runs included.
	Elapsed time.Duration
}

// TitleGroup collects every matched manuscript sharing one catalogue
// title.
type TitleGroup struct {
	// Title is the catalogue title, or UnclassifiedTitle.
	Title string

	// Manuscripts are the group members, ordered by match count
	// descending then id.
	Manuscripts []*ManuscriptGroup

	// Matches sums the distinct matched windows across members.
	Matches int
}

// ManuscriptGroup is one manuscript's matches within a title group.
type ManuscriptGroup struct {
	// ManuscriptId is the catalogue system id, empty when the
	// fragment header carried none.
	ManuscriptId string

	// Shelfmark is the canonical call number, when resolvable.
	Shelfmark string

	// Chunks lists the distinct window offsets that matched,
	// ascending.
	Chunks []int

	// FragmentIds lists the distinct fragments hit, ascending.
	FragmentIds []core.ID
}

// ChunkFailure records one window whose search failed. The run
// continues past failures.
type ChunkFailure struct {
	// Offset is the token position of the failed window.
	Offset int

	// Text is the window content, for reporting.
	Text string

	// Reason is the search error message.
	Reason string
}
