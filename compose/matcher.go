package compose

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/gershuni/GenizahSearch/core"
	"github.com/gershuni/GenizahSearch/corpus"
	"github.com/gershuni/GenizahSearch/metadata"
	"github.com/gershuni/GenizahSearch/storage"
)

// Planner runs a single query against the corpus. *search.Searcher
// satisfies it.
type Planner interface {
	Search(ctx context.Context, req *core.QueryRequest) ([]core.Hit, error)
}

// Matcher runs composition analyses: a source text is cut into
// overlapping windows, every window is searched, and the matches are
// grouped by catalogue title.
type Matcher struct {
	planner   Planner
	resolver  *metadata.Resolver
	fragments storage.FragmentRepository
	pool      *ants.Pool
	monitor   AnalysisMonitor
	logger    *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithPoolSize sets how many window searches run concurrently.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(m *Matcher) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if m.pool != nil {
			m.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		m.pool = pool
		return nil
	}
}

// WithMonitor sets the monitor used when a run brings none of its own.
// Default is a no-op.
func WithMonitor(monitor AnalysisMonitor) Option {
	return func(m *Matcher) error {
		if monitor == nil {
			monitor = &noopAnalysisMonitor{}
		}
		m.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// NewMatcher creates a matcher over the query planner, the catalogue
// resolver, and the fragment store.
func NewMatcher(planner Planner, resolver *metadata.Resolver, fragments storage.FragmentRepository, opts ...Option) (*Matcher, error) {
	if planner == nil {
		return nil, ErrPlannerRequired
	}
	if resolver == nil {
		return nil, ErrResolverRequired
	}
	if fragments == nil {
		return nil, ErrFragmentRepositoryRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	m := &Matcher{
		planner:   planner,
		resolver:  resolver,
		fragments: fragments,
		pool:      pool,
		monitor:   &noopAnalysisMonitor{},
		logger:    slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if optErr := opt(m); optErr != nil {
			m.Release()
			return nil, optErr
		}
	}

	return m, nil
}

// Release releases the worker pool.
// The matcher should not be used after calling Release.
func (m *Matcher) Release() {
	if m.pool != nil {
		m.pool.Release()
	}
}

// Analyze runs one composition analysis over source.
func (m *Matcher) Analyze(ctx context.Context, source string, opts Options) (*Result, error) {
	return m.AnalyzeWithMonitor(ctx, source, opts, nil)
}

// AnalyzeWithMonitor runs one composition analysis with run-scoped
// monitoring. A nil monitor falls back to the matcher's own.
func (m *Matcher) AnalyzeWithMonitor(ctx context.Context, source string, opts Options, monitor AnalysisMonitor) (*Result, error) {
	if monitor == nil {
		monitor = m.monitor
	}
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return m.analyze(ctx, source, opts, nil, monitor)
}

// analyze is one nesting level. seeds lists the manuscripts whose text
// is analyzed here; they are already merged into opts.Exclude.
func (m *Matcher) analyze(ctx context.Context, source string, opts Options, seeds []string, monitor AnalysisMonitor) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	terms := corpus.Terms(source)
	chunks := windowTerms(terms, opts.ChunkSize)

	result := &Result{
		RunId:        uuid.NewString(),
		SeedIds:      seeds,
		SourceTokens: len(terms),
		ChunkSize:    opts.ChunkSize,
		ChunkCount:   len(chunks),
	}
	monitor.Start(result.RunId, len(chunks))
	m.logger.Info("composition analysis started",
		"runId", result.RunId,
		"tokens", len(terms),
		"chunks", len(chunks),
		"mode", opts.Mode)

	outcomes, err := m.searchChunks(ctx, chunks, opts, monitor)
	if err != nil {
		return nil, err
	}

	titles := m.aggregate(chunks, outcomes, opts, result, monitor)
	m.classify(titles, opts, result)

	if opts.Recursive && opts.Depth > 0 {
		if err := m.recurse(ctx, opts, result, monitor); err != nil {
			return nil, err
		}
	}

	result.Elapsed = time.Since(start)
	m.logger.Info("composition analysis complete",
		"runId", result.RunId,
		"primary", len(result.Primary),
		"appendix", len(result.Appendix),
		"common", result.CommonChunks,
		"failures", len(result.Failures),
		"elapsed", result.Elapsed.Round(time.Millisecond))
	monitor.Finish(result)
	return result, nil
}

type chunkOutcome struct {
	hits []core.Hit
	err  error
}

// searchChunks fans the windows out to the worker pool and joins.
// Cancellation is checked between submissions and after the join,
// never inside a running query.
func (m *Matcher) searchChunks(ctx context.Context, chunks []Chunk, opts Options, monitor AnalysisMonitor) ([]chunkOutcome, error) {
	outcomes := make([]chunkOutcome, len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		if submitErr := m.pool.Submit(func() {
			defer wg.Done()
			req := &core.QueryRequest{Text: chunk.Text, Mode: opts.Mode, Gap: opts.Gap}
			hits, err := m.planner.Search(ctx, req)
			outcomes[i] = chunkOutcome{hits: hits, err: err}
			if err == nil {
				monitor.ChunkSearched(chunk.Offset, len(hits))
			}
		}); submitErr != nil {
			wg.Done()
			outcomes[i] = chunkOutcome{err: submitErr}
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

type titleBucket struct {
	title       string
	manuscripts map[string]*manuscriptBucket
}

type manuscriptBucket struct {
	id        string
	chunks    map[int]struct{}
	fragments map[core.ID]struct{}
}

// aggregate folds the window outcomes into per-title buckets, applying
// the exclusion set and the frequency filter on the way. Failed
// windows are recorded and skipped.
func (m *Matcher) aggregate(chunks []Chunk, outcomes []chunkOutcome, opts Options, result *Result, monitor AnalysisMonitor) map[string]*titleBucket {
	titles := make(map[string]*titleBucket)
	for i, outcome := range outcomes {
		chunk := chunks[i]
		if outcome.err != nil {
			m.logger.Warn("window search failed", "offset", chunk.Offset, "err", outcome.err)
			result.Failures = append(result.Failures, ChunkFailure{
				Offset: chunk.Offset,
				Text:   chunk.Text,
				Reason: outcome.err.Error(),
			})
			monitor.ChunkFailed(chunk.Offset, outcome.err)
			continue
		}

		var kept []core.Hit
		manuscripts := make(map[string]struct{})
		for _, hit := range outcome.hits {
			if _, excluded := opts.Exclude[hit.ManuscriptId]; excluded {
				continue
			}
			kept = append(kept, hit)
			manuscripts[hit.ManuscriptId] = struct{}{}
		}
		if len(kept) == 0 {
			continue
		}
		if len(manuscripts) > opts.MaxFreq {
			result.CommonChunks++
			monitor.CommonChunk(chunk.Offset, len(manuscripts))
			continue
		}

		for _, hit := range kept {
			title := m.resolver.Title(hit.ManuscriptId)
			if title == "" {
				title = UnclassifiedTitle
			}
			bucket := titles[title]
			if bucket == nil {
				bucket = &titleBucket{title: title, manuscripts: make(map[string]*manuscriptBucket)}
				titles[title] = bucket
			}
			ms := bucket.manuscripts[hit.ManuscriptId]
			if ms == nil {
				ms = &manuscriptBucket{
					id:        hit.ManuscriptId,
					chunks:    make(map[int]struct{}),
					fragments: make(map[core.ID]struct{}),
				}
				bucket.manuscripts[hit.ManuscriptId] = ms
			}
			ms.chunks[chunk.Offset] = struct{}{}
			ms.fragments[hit.FragmentId] = struct{}{}
		}
	}
	return titles
}

// classify turns the buckets into ordered groups and splits them
// around the appendix threshold.
func (m *Matcher) classify(titles map[string]*titleBucket, opts Options, result *Result) {
	for _, bucket := range titles {
		group := &TitleGroup{Title: bucket.title}
		for _, ms := range bucket.manuscripts {
			member := &ManuscriptGroup{
				ManuscriptId: ms.id,
				Chunks:       sortedOffsets(ms.chunks),
				FragmentIds:  sortedFragmentIds(ms.fragments),
			}
			if record, ok := m.resolver.ResolveByID(ms.id); ok {
				member.Shelfmark = record.Shelfmark
			}
			group.Manuscripts = append(group.Manuscripts, member)
			group.Matches += len(member.Chunks)
		}
		sort.Slice(group.Manuscripts, func(i, j int) bool {
			a, b := group.Manuscripts[i], group.Manuscripts[j]
			if len(a.Chunks) != len(b.Chunks) {
				return len(a.Chunks) > len(b.Chunks)
			}
			return a.ManuscriptId < b.ManuscriptId
		})
		if group.Matches > opts.AppendixThreshold {
			result.Appendix = append(result.Appendix, group)
		} else {
			result.Primary = append(result.Primary, group)
		}
	}
	sortGroups(result.Primary)
	sortGroups(result.Appendix)
}

// recurse re-analyzes the text of each selected primary manuscript,
// one nested run per seed. The seed joins its own run's exclusions, so
// a manuscript never matches itself.
func (m *Matcher) recurse(ctx context.Context, opts Options, result *Result, monitor AnalysisMonitor) error {
	for _, seed := range selectSeeds(opts, result.Primary) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if seed == "" {
			continue
		}
		text, err := m.seedText(ctx, result.Primary, seed)
		if err != nil {
			m.logger.Warn("skipping recursion seed", "manuscript", seed, "err", err)
			continue
		}
		if text == "" {
			continue
		}

		nestedOpts := opts
		nestedOpts.Depth--
		nestedOpts.Exclude = withSeed(opts.Exclude, seed)
		nested, err := m.analyze(ctx, text, nestedOpts, []string{seed}, monitor)
		if err != nil {
			return err
		}
		result.Nested = append(result.Nested, nested)
	}
	return nil
}

// selectSeeds returns the manuscripts to recurse on, in group order.
func selectSeeds(opts Options, primary []*TitleGroup) []string {
	if opts.Selector != nil {
		return opts.Selector(primary)
	}
	seen := make(map[string]struct{})
	var seeds []string
	for _, group := range primary {
		for _, ms := range group.Manuscripts {
			if ms.ManuscriptId == "" {
				continue
			}
			if _, ok := seen[ms.ManuscriptId]; ok {
				continue
			}
			seen[ms.ManuscriptId] = struct{}{}
			seeds = append(seeds, ms.ManuscriptId)
		}
	}
	return seeds
}

// seedText joins the seed's matched fragments in page order.
func (m *Matcher) seedText(ctx context.Context, primary []*TitleGroup, seed string) (string, error) {
	var ids []core.ID
	for _, group := range primary {
		for _, ms := range group.Manuscripts {
			if ms.ManuscriptId == seed {
				ids = append(ids, ms.FragmentIds...)
			}
		}
	}
	if len(ids) == 0 {
		return "", nil
	}
	fragments, err := m.fragments.GetFragments(ctx, ids...)
	if err != nil {
		return "", err
	}
	sort.Slice(fragments, func(i, j int) bool {
		if fragments[i].PageIndex != fragments[j].PageIndex {
			return fragments[i].PageIndex < fragments[j].PageIndex
		}
		return fragments[i].Id < fragments[j].Id
	})
	parts := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		parts = append(parts, fragment.Text)
	}
	return strings.Join(parts, "\n"), nil
}

// withSeed copies the exclusion ids and adds the seed.
func withSeed(exclude map[string]struct{}, seed string) map[string]struct{} {
	out := make(map[string]struct{}, len(exclude)+1)
	for id := range exclude {
		out[id] = struct{}{}
	}
	out[seed] = struct{}{}
	return out
}

// sortGroups orders by match count descending, then title.
func sortGroups(groups []*TitleGroup) {
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Matches != groups[j].Matches {
			return groups[i].Matches > groups[j].Matches
		}
		return groups[i].Title < groups[j].Title
	})
}

func sortedOffsets(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for offset := range set {
		out = append(out, offset)
	}
	sort.Ints(out)
	return out
}

func sortedFragmentIds(set map[core.ID]struct{}) []core.ID {
	out := make([]core.ID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
