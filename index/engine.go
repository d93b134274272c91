package index

import (
	"context"

	"github.com/gershuni/GenizahSearch/core"
	"github.com/gershuni/GenizahSearch/corpus"
	"github.com/gershuni/GenizahSearch/variant"
)

// Engine is the boundary to the full-text index. The query planner composes
// every search from these primitives; any conforming implementation can be
// substituted for the embedded one.
//
// Tokens, forms and patterns are matched against normalized corpus terms.
// Query methods return core.ErrIndexUnavailable while no index has been
// built or while a rebuild is running.
type Engine interface {
	// Phrase finds fragments containing the tokens in order, with at most
	// gap intervening tokens between each consecutive pair (gap 0 means
	// strictly adjacent). One hit is reported per distinct match start.
	Phrase(ctx context.Context, tokens []string, gap int) ([]core.Hit, error)

	// AlternationPhrase is Phrase where each position matches any member
	// of its alternative set. Alternative forms must be distinct within a
	// position. Hits carry the form matched at every position and the
	// highest expansion rank among them.
	AlternationPhrase(ctx context.Context, alts [][]variant.Variant, gap int) ([]core.Hit, error)

	// Fuzzy finds fragments containing corpus terms within the given
	// edit distance of token. One hit per fragment, positions and matched
	// forms aligned, ranked by the smallest distance found.
	Fuzzy(ctx context.Context, token string, distance int) ([]core.Hit, error)

	// Regex finds fragments containing corpus terms matched by pattern,
	// which may match anywhere within a term. A malformed pattern is
	// reported as core.ErrInvalidPattern without touching the index.
	Regex(ctx context.Context, pattern string) ([]core.Hit, error)

	// Rebuild replaces the whole index with one built from the given
	// sources. It is exclusive and non-reentrant; queries issued while it
	// runs fail with core.ErrIndexUnavailable. Returns the number of
	// fragments indexed.
	Rebuild(ctx context.Context, sources ...corpus.Source) (int, error)

	// Ready reports whether a built index is available for queries.
	Ready() bool
}
