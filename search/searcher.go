package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/gershuni/GenizahSearch/core"
	"github.com/gershuni/GenizahSearch/corpus"
	"github.com/gershuni/GenizahSearch/index"
	"github.com/gershuni/GenizahSearch/variant"
)

// Per-token cap on expanded forms fed to the engine. The aggressive tiers
// can generate thousands of spellings for a long token; past a couple of
// hundred the extra forms sit far from the original and only widen the
// postings fetch.
const defaultVariantLimit = 200

// Searcher plans manuscript queries over an index engine.
type Searcher struct {
	engine       index.Engine
	expander     *variant.Expander
	logger       *slog.Logger
	variantLimit int
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithVariantLimit caps how many expanded forms one query token may
// contribute. Default is 200.
func WithVariantLimit(limit int) Option {
	return func(s *Searcher) error {
		if limit < 1 {
			limit = 1
		}
		s.variantLimit = limit
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(engine index.Engine, expander *variant.Expander, opts ...Option) (*Searcher, error) {
	if engine == nil {
		return nil, ErrEngineRequired
	}
	if expander == nil {
		return nil, ErrExpanderRequired
	}

	s := &Searcher{
		engine:       engine,
		expander:     expander,
		logger:       slog.Default(),
		variantLimit: defaultVariantLimit,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search runs the request and returns hits best-first.
func (s *Searcher) Search(ctx context.Context, req *core.QueryRequest) ([]core.Hit, error) {
	return s.SearchWithMonitor(ctx, req, nil)
}

// SearchWithMonitor runs the request with monitoring.
// The monitor receives callbacks at each stage of query planning.
// Returns hits best-first: lowest rank first, ties broken by fragment id
// and match position.
func (s *Searcher) SearchWithMonitor(ctx context.Context, req *core.QueryRequest, monitor SearchMonitor) ([]core.Hit, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if err := core.ValidateQueryRequest(req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, nil
	}

	monitor.Start(req)

	var (
		hits []core.Hit
		err  error
	)
	switch {
	case req.Mode.ExactFamily():
		hits, err = s.searchExact(ctx, req, monitor)
	case req.Mode == core.ModeFuzzy:
		hits, err = s.searchFuzzy(ctx, req, monitor)
	default:
		// ModeRegex is the only mode left after validation. The pattern
		// is the raw request text, never tokenized.
		hits, err = s.engine.Regex(ctx, req.Text)
	}
	if err != nil {
		s.logger.Error("query failed", "mode", req.Mode, "err", err)
		return nil, err
	}
	monitor.AfterEngineSearch(hits)

	hits = dedupeHits(hits)
	orderHits(hits)
	for i := range hits {
		hits[i].Mode = req.Mode
	}

	monitor.Finish(hits)
	return hits, nil
}

// searchExact expands each query token and runs one positional phrase
// query. When no token expands beyond itself the plain phrase shape is
// enough.
func (s *Searcher) searchExact(ctx context.Context, req *core.QueryRequest, monitor SearchMonitor) ([]core.Hit, error) {
	terms := corpus.Terms(req.Text)
	if len(terms) == 0 {
		return nil, nil
	}

	alts := make([][]variant.Variant, len(terms))
	singletons := true
	for i, term := range terms {
		alts[i] = s.expander.Expand(term, req.Mode, s.variantLimit)
		if len(alts[i]) > 1 {
			singletons = false
		}
	}
	monitor.AfterExpansion(alts)

	if singletons {
		return s.engine.Phrase(ctx, terms, req.Gap)
	}
	return s.engine.AlternationPhrase(ctx, alts, req.Gap)
}

// searchFuzzy runs one edit-distance query per token and keeps only the
// fragments matching every token. Edit-distance matches carry no
// positional constraint, so tokens may land anywhere in the fragment.
func (s *Searcher) searchFuzzy(ctx context.Context, req *core.QueryRequest, monitor SearchMonitor) ([]core.Hit, error) {
	terms := corpus.Terms(req.Text)
	if len(terms) == 0 {
		return nil, nil
	}

	var merged map[core.ID]core.Hit
	for _, term := range terms {
		distance := req.FuzzyDistance
		if distance == 0 {
			distance = autoDistance(term)
		}

		hits, err := s.engine.Fuzzy(ctx, term, distance)
		if err != nil {
			return nil, err
		}
		monitor.AfterFuzzyToken(term, distance, hits)

		if merged == nil {
			merged = make(map[core.ID]core.Hit, len(hits))
			for _, hit := range hits {
				merged[hit.FragmentId] = hit
			}
			continue
		}

		next := make(map[core.ID]core.Hit, len(hits))
		for _, hit := range hits {
			if prev, ok := merged[hit.FragmentId]; ok {
				next[hit.FragmentId] = mergeFuzzyHits(prev, hit)
			}
		}
		merged = next
		if len(merged) == 0 {
			return nil, nil
		}
	}

	hits := make([]core.Hit, 0, len(merged))
	for _, hit := range merged {
		hits = append(hits, hit)
	}
	return hits, nil
}

// mergeFuzzyHits combines two per-token hits on the same fragment.
// Positions union per token slot; the rank is the worse of the two, so a
// merged rank of zero still means every token matched exactly.
func mergeFuzzyHits(a, b core.Hit) core.Hit {
	byPos := make(map[int]string, len(a.Positions)+len(b.Positions))
	for i, pos := range a.Positions {
		byPos[pos] = a.Terms[i]
	}
	for i, pos := range b.Positions {
		if _, ok := byPos[pos]; !ok {
			byPos[pos] = b.Terms[i]
		}
	}

	positions := make([]int, 0, len(byPos))
	for pos := range byPos {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	merged := core.Hit{
		FragmentId:   a.FragmentId,
		ManuscriptId: a.ManuscriptId,
		Positions:    positions,
		Terms:        make([]string, len(positions)),
		Rank:         a.Rank,
	}
	if b.Rank > merged.Rank {
		merged.Rank = b.Rank
	}
	for i, pos := range positions {
		merged.Terms[i] = byPos[pos]
	}
	return merged
}

type hitKey struct {
	fragment core.ID
	position int
}

// dedupeHits keeps the lowest-ranked hit per (fragment, first position).
func dedupeHits(hits []core.Hit) []core.Hit {
	if len(hits) < 2 {
		return hits
	}

	kept := make(map[hitKey]int, len(hits))
	out := make([]core.Hit, 0, len(hits))
	for _, hit := range hits {
		key := hitKey{fragment: hit.FragmentId, position: firstPosition(hit)}
		if i, ok := kept[key]; ok {
			if hit.Rank < out[i].Rank {
				out[i] = hit
			}
			continue
		}
		kept[key] = len(out)
		out = append(out, hit)
	}
	return out
}

// orderHits sorts best-first.
func orderHits(hits []core.Hit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Rank != hits[j].Rank {
			return hits[i].Rank < hits[j].Rank
		}
		if hits[i].FragmentId != hits[j].FragmentId {
			return hits[i].FragmentId < hits[j].FragmentId
		}
		return firstPosition(hits[i]) < firstPosition(hits[j])
	})
}

func firstPosition(hit core.Hit) int {
	if len(hit.Positions) == 0 {
		return 0
	}
	return hit.Positions[0]
}
