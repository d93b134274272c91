package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/dgraph-io/ristretto/v2"
	"github.com/dlclark/regexp2"

	"github.com/gershuni/GenizahSearch/core"
	"github.com/gershuni/GenizahSearch/storage"
	"github.com/gershuni/GenizahSearch/variant"
)

// Vocabulary scans stop after this many matched terms; a probe matching
// more is too unselective to be useful.
const termMatchLimit = 3000

const (
	defaultCacheEntries = 8192
	defaultMatchTimeout = time.Second
	defaultBatchSize    = 256
)

// errStopScan ends a vocabulary scan once termMatchLimit is reached.
var errStopScan = errors.New("stop scan")

// Embedded is the built-in Engine: positional posting-list intersection
// over the BadgerDB repositories. Concurrent queries are safe; Rebuild
// takes the index exclusively.
type Embedded struct {
	fragments storage.FragmentRepository
	postings  storage.PostingRepository
	manifests storage.ManifestRepository
	logger    *slog.Logger

	cache        *ristretto.Cache[string, *core.PostingList]
	cacheEntries int64
	matchTimeout time.Duration
	progress     io.Writer
	batchSize    int

	mu         sync.RWMutex // held shared by queries, exclusively by Rebuild
	rebuilding atomic.Bool
	ready      atomic.Bool
}

var _ Engine = (*Embedded)(nil)

// Option configures an Embedded engine.
type Option func(*Embedded) error

// WithCacheEntries sets the postings cache capacity in entries.
// Default is 8192.
func WithCacheEntries(entries int64) Option {
	return func(e *Embedded) error {
		if entries < 1 {
			entries = 1
		}
		e.cacheEntries = entries
		return nil
	}
}

// WithMatchTimeout bounds how long a regex pattern may spend on a single
// vocabulary term. Default is one second.
func WithMatchTimeout(timeout time.Duration) Option {
	return func(e *Embedded) error {
		if timeout > 0 {
			e.matchTimeout = timeout
		}
		return nil
	}
}

// WithProgress sets where rebuild progress is written.
// Default discards it.
func WithProgress(w io.Writer) Option {
	return func(e *Embedded) error {
		if w == nil {
			w = io.Discard
		}
		e.progress = w
		return nil
	}
}

// WithBatchSize sets how many records each rebuild write transaction
// carries. Default is 256.
func WithBatchSize(size int) Option {
	return func(e *Embedded) error {
		if size < 1 {
			size = 1
		}
		e.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Embedded) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEmbedded creates the embedded engine over the given repositories.
func NewEmbedded(
	fragments storage.FragmentRepository,
	postings storage.PostingRepository,
	manifests storage.ManifestRepository,
	opts ...Option,
) (*Embedded, error) {
	if fragments == nil {
		return nil, ErrFragmentRepositoryRequired
	}
	if postings == nil {
		return nil, ErrPostingRepositoryRequired
	}
	if manifests == nil {
		return nil, ErrManifestRepositoryRequired
	}

	e := &Embedded{
		fragments:    fragments,
		postings:     postings,
		manifests:    manifests,
		logger:       slog.Default(),
		cacheEntries: defaultCacheEntries,
		matchTimeout: defaultMatchTimeout,
		progress:     io.Discard,
		batchSize:    defaultBatchSize,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, *core.PostingList]{
		NumCounters: e.cacheEntries * 10,
		MaxCost:     e.cacheEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	e.cache = cache

	return e, nil
}

// Close releases the postings cache. The repositories stay open.
func (e *Embedded) Close() error {
	e.cache.Close()
	return nil
}

// Ready reports whether a built index is available for queries.
func (e *Embedded) Ready() bool {
	if e.rebuilding.Load() {
		return false
	}
	return e.ensureReady(context.Background()) == nil
}

// ensureReady confirms a manifest exists, caching the positive answer.
// The flag is reset by Rebuild.
func (e *Embedded) ensureReady(ctx context.Context) error {
	if e.ready.Load() {
		return nil
	}
	manifest, err := e.manifests.LoadManifest(ctx)
	if err != nil {
		return err
	}
	if manifest == nil {
		return core.ErrIndexUnavailable
	}
	e.ready.Store(true)
	return nil
}

// Phrase finds fragments containing the tokens in order within the gap.
func (e *Embedded) Phrase(ctx context.Context, tokens []string, gap int) ([]core.Hit, error) {
	alts := make([][]variant.Variant, len(tokens))
	for i, token := range tokens {
		alts[i] = []variant.Variant{{Form: token}}
	}
	return e.AlternationPhrase(ctx, alts, gap)
}

// AlternationPhrase finds fragments where every query position matches one
// of its alternative forms, in order within the gap.
func (e *Embedded) AlternationPhrase(ctx context.Context, alts [][]variant.Variant, gap int) ([]core.Hit, error) {
	if len(alts) == 0 {
		return nil, nil
	}
	if e.rebuilding.Load() {
		return nil, core.ErrIndexUnavailable
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.ensureReady(ctx); err != nil {
		return nil, err
	}

	lists, err := e.fetchPostings(ctx, altForms(alts))
	if err != nil {
		return nil, err
	}

	// Per query position, the slots each fragment offers.
	perPos := make([]map[core.ID][]slot, len(alts))
	for i, position := range alts {
		perPos[i] = make(map[core.ID][]slot)
		for _, alt := range position {
			list := lists[alt.Form]
			if list == nil {
				continue
			}
			for _, posting := range list.Postings {
				for _, pos := range posting.Positions {
					perPos[i][posting.FragmentId] = append(perPos[i][posting.FragmentId],
						slot{pos: int(pos), form: alt.Form, rank: alt.Rank})
				}
			}
		}
		if len(perPos[i]) == 0 {
			return nil, nil
		}
	}

	var hits []core.Hit
	for _, id := range intersectCandidates(perPos) {
		slots := make([][]slot, len(perPos))
		for i := range perPos {
			slots[i] = perPos[i][id]
			sortSlots(slots[i])
		}
		for _, chain := range chainAll(slots, gap) {
			hits = append(hits, chainHit(id, chain))
		}
	}
	if len(hits) == 0 {
		return nil, nil
	}
	if err := e.fillManuscripts(ctx, hits); err != nil {
		return nil, err
	}
	return hits, nil
}

// Fuzzy finds fragments containing terms within distance of token.
func (e *Embedded) Fuzzy(ctx context.Context, token string, distance int) ([]core.Hit, error) {
	if token == "" {
		return nil, nil
	}
	if e.rebuilding.Load() {
		return nil, core.ErrIndexUnavailable
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.ensureReady(ctx); err != nil {
		return nil, err
	}

	length := utf8.RuneCountInString(token)
	distances := make(map[string]int)
	var matched []string
	err := e.postings.ForEachTerm(ctx, func(term string) error {
		// Terms whose length alone puts them out of range don't need the
		// full distance computation.
		if delta := utf8.RuneCountInString(term) - length; delta > distance || delta < -distance {
			return nil
		}
		d := levenshtein.ComputeDistance(token, term)
		if d > distance {
			return nil
		}
		distances[term] = d
		matched = append(matched, term)
		if len(matched) >= termMatchLimit {
			return errStopScan
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, nil
	}
	return e.termHits(ctx, matched, func(term string) int { return distances[term] })
}

// Regex finds fragments containing terms matched anywhere by pattern.
func (e *Embedded) Regex(ctx context.Context, pattern string) ([]core.Hit, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidPattern, err)
	}
	re.MatchTimeout = e.matchTimeout

	if e.rebuilding.Load() {
		return nil, core.ErrIndexUnavailable
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.ensureReady(ctx); err != nil {
		return nil, err
	}

	var matched []string
	err = e.postings.ForEachTerm(ctx, func(term string) error {
		ok, matchErr := re.MatchString(term)
		if matchErr != nil {
			return fmt.Errorf("pattern timed out on term %q: %w", term, matchErr)
		}
		if !ok {
			return nil
		}
		matched = append(matched, term)
		if len(matched) >= termMatchLimit {
			return errStopScan
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, nil
	}
	return e.termHits(ctx, matched, func(string) int { return 0 })
}

// fetchPostings resolves posting lists for terms, serving repeats from the
// cache. Unknown terms map to nil; absence is cached too, since generated
// variant forms mostly never occur in the corpus.
func (e *Embedded) fetchPostings(ctx context.Context, terms []string) (map[string]*core.PostingList, error) {
	out := make(map[string]*core.PostingList, len(terms))
	var misses []string
	for _, term := range terms {
		if list, ok := e.cache.Get(term); ok {
			out[term] = list
			continue
		}
		misses = append(misses, term)
	}
	if len(misses) == 0 {
		return out, nil
	}

	lists, err := e.postings.GetPostingLists(ctx, misses...)
	if err != nil {
		return nil, err
	}
	found := make(map[string]*core.PostingList, len(lists))
	for _, list := range lists {
		found[list.Term] = list
	}
	for _, term := range misses {
		list := found[term]
		out[term] = list
		e.cache.Set(term, list, 1)
	}
	return out, nil
}

// termHits builds one hit per fragment containing any of the terms, with
// positions and matched forms aligned, ranked by the lowest term rank
// present in that fragment.
func (e *Embedded) termHits(ctx context.Context, terms []string, rank func(term string) int) ([]core.Hit, error) {
	lists, err := e.fetchPostings(ctx, terms)
	if err != nil {
		return nil, err
	}

	perFragment := make(map[core.ID][]slot)
	for _, term := range terms {
		list := lists[term]
		if list == nil {
			continue
		}
		for _, posting := range list.Postings {
			for _, pos := range posting.Positions {
				perFragment[posting.FragmentId] = append(perFragment[posting.FragmentId],
					slot{pos: int(pos), form: term, rank: rank(term)})
			}
		}
	}
	if len(perFragment) == 0 {
		return nil, nil
	}

	ids := make([]core.ID, 0, len(perFragment))
	for id := range perFragment {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	hits := make([]core.Hit, 0, len(ids))
	for _, id := range ids {
		slots := perFragment[id]
		sortSlots(slots)
		hit := core.Hit{
			FragmentId: id,
			Positions:  make([]int, len(slots)),
			Terms:      make([]string, len(slots)),
			Rank:       slots[0].rank,
		}
		for i, s := range slots {
			hit.Positions[i] = s.pos
			hit.Terms[i] = s.form
			if s.rank < hit.Rank {
				hit.Rank = s.rank
			}
		}
		hits = append(hits, hit)
	}
	if err := e.fillManuscripts(ctx, hits); err != nil {
		return nil, err
	}
	return hits, nil
}

// fillManuscripts stamps each hit with its fragment's manuscript id.
func (e *Embedded) fillManuscripts(ctx context.Context, hits []core.Hit) error {
	seen := make(map[core.ID]bool, len(hits))
	ids := make([]core.ID, 0, len(hits))
	for _, hit := range hits {
		if !seen[hit.FragmentId] {
			seen[hit.FragmentId] = true
			ids = append(ids, hit.FragmentId)
		}
	}

	fragments, err := e.fragments.GetFragments(ctx, ids...)
	if err != nil {
		return err
	}
	manuscripts := make(map[core.ID]string, len(fragments))
	for _, fragment := range fragments {
		manuscripts[fragment.Id] = fragment.ManuscriptId
	}
	for i := range hits {
		hits[i].ManuscriptId = manuscripts[hits[i].FragmentId]
	}
	return nil
}

// chainHit turns one admissible chain into a hit.
func chainHit(id core.ID, chain []slot) core.Hit {
	hit := core.Hit{
		FragmentId: id,
		Positions:  make([]int, len(chain)),
		Terms:      make([]string, len(chain)),
	}
	for i, s := range chain {
		hit.Positions[i] = s.pos
		hit.Terms[i] = s.form
		if s.rank > hit.Rank {
			hit.Rank = s.rank
		}
	}
	return hit
}

// altForms lists the distinct forms across all positions, in first
// appearance order.
func altForms(alts [][]variant.Variant) []string {
	seen := make(map[string]bool)
	var forms []string
	for _, position := range alts {
		for _, alt := range position {
			if !seen[alt.Form] {
				seen[alt.Form] = true
				forms = append(forms, alt.Form)
			}
		}
	}
	return forms
}
