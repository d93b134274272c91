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


package genizahsearch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gershuni/GenizahSearch/compose"
	"github.com/gershuni/GenizahSearch/core"
	"github.com/gershuni/GenizahSearch/corpus"
	"github.com/gershuni/GenizahSearch/index"
	"github.com/gershuni/GenizahSearch/metadata"
	"github.com/gershuni/GenizahSearch/search"
	"github.com/gershuni/GenizahSearch/storage"
	"github.com/gershuni/GenizahSearch/storage/badger"
	"github.com/gershuni/GenizahSearch/variant"
)

// CatalogueFile is the conventional catalogue name inside the data
// directory.
const CatalogueFile = "libraries.csv"

// Session wires every layer over one data directory: the badger store,
// the embedded index, the catalogue resolver, the query planner, and
// the composition matcher.
type Session struct {
	dataDir   string
	backend   *badger.Backend
	fragments storage.FragmentRepository
	postings  storage.PostingRepository
	manifests storage.ManifestRepository
	engine    *index.Embedded
	resolver  *metadata.Resolver
	searcher  *search.Searcher
	matcher   *compose.Matcher
	logger    *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	cataloguePath string
	inMemory      bool
	logger        *slog.Logger
	engineOpts    []index.Option
	searchOpts    []search.Option
	matcherOpts   []compose.Option
}

// WithCatalogue overrides the catalogue CSV path.
// Default is CatalogueFile inside the data directory.
func WithCatalogue(path string) SessionOption {
	return func(o *sessionOptions) {
		o.cataloguePath = path
	}
}

// WithInMemory keeps the whole store in memory, leaving the data
// directory untouched. Intended for tests.
func WithInMemory() SessionOption {
	return func(o *sessionOptions) {
		o.inMemory = true
	}
}

// WithLogger sets the logger shared by every component.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) SessionOption {
	return func(o *sessionOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEngineOptions forwards options to the embedded index engine.
func WithEngineOptions(opts ...index.Option) SessionOption {
	return func(o *sessionOptions) {
		o.engineOpts = append(o.engineOpts, opts...)
	}
}

// WithSearchOptions forwards options to the query planner.
func WithSearchOptions(opts ...search.Option) SessionOption {
	return func(o *sessionOptions) {
		o.searchOpts = append(o.searchOpts, opts...)
	}
}

// WithMatcherOptions forwards options to the composition matcher.
func WithMatcherOptions(opts ...compose.Option) SessionOption {
	return func(o *sessionOptions) {
		o.matcherOpts = append(o.matcherOpts, opts...)
	}
}

// Open builds a session over dataDir. The badger store lives in an
// index subdirectory, created on first use. A missing catalogue is
// logged and tolerated; every manuscript then stays unclassified.
func Open(dataDir string, opts ...SessionOption) (*Session, error) {
	// Apply options
	options := &sessionOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.cataloguePath == "" {
		options.cataloguePath = filepath.Join(dataDir, CatalogueFile)
	}

	// Open backend
	var backend *badger.Backend
	var err error
	if options.inMemory {
		backend, err = badger.OpenBackend("", true)
	} else {
		backend, err = badger.OpenBackend(filepath.Join(dataDir, "index"), false)
	}
	if err != nil {
		return nil, err
	}

	fragments := badger.NewFragmentRepository(backend)
	postings := badger.NewPostingRepository(backend)
	manifests := badger.NewManifestRepository(backend)

	engineOpts := append([]index.Option{index.WithLogger(options.logger)}, options.engineOpts...)
	engine, err := index.NewEmbedded(fragments, postings, manifests, engineOpts...)
	if err != nil {
		backend.Close()
		return nil, err
	}

	resolver, err := metadata.LoadResolver(options.cataloguePath)
	if err != nil {
		options.logger.Warn("catalogue not loaded", "path", options.cataloguePath, "err", err)
		resolver = metadata.EmptyResolver()
	}

	searchOpts := append([]search.Option{search.WithLogger(options.logger)}, options.searchOpts...)
	searcher, err := search.NewSearcher(engine, variant.NewExpander(), searchOpts...)
	if err != nil {
		engine.Close()
		backend.Close()
		return nil, err
	}

	matcherOpts := append([]compose.Option{compose.WithLogger(options.logger)}, options.matcherOpts...)
	matcher, err := compose.NewMatcher(searcher, resolver, fragments, matcherOpts...)
	if err != nil {
		engine.Close()
		backend.Close()
		return nil, err
	}

	return &Session{
		dataDir:   dataDir,
		backend:   backend,
		fragments: fragments,
		postings:  postings,
		manifests: manifests,
		engine:    engine,
		resolver:  resolver,
		searcher:  searcher,
		matcher:   matcher,
		logger:    options.logger,
	}, nil
}

// Close releases the matcher, the engine, and the store.
// The session should not be used after calling Close.
func (s *Session) Close() error {
	s.matcher.Release()

	if err := s.engine.Close(); err != nil {
		s.logger.Error("error closing index engine", "err", err)
		return err
	}
	if err := s.fragments.Close(); err != nil {
		s.logger.Error("error closing fragment repository", "err", err)
		return err
	}
	if err := s.postings.Close(); err != nil {
		s.logger.Error("error closing posting repository", "err", err)
		return err
	}
	if err := s.manifests.Close(); err != nil {
		s.logger.Error("error closing manifest repository", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Search runs one query through the planner.
func (s *Session) Search(ctx context.Context, req *core.QueryRequest) ([]core.Hit, error) {
	return s.searcher.Search(ctx, req)
}

// SearchWithMonitor runs one query with planner-stage monitoring.
func (s *Session) SearchWithMonitor(ctx context.Context, req *core.QueryRequest, monitor search.SearchMonitor) ([]core.Hit, error) {
	return s.searcher.SearchWithMonitor(ctx, req, monitor)
}

// Analyze runs a composition analysis over source.
func (s *Session) Analyze(ctx context.Context, source string, opts compose.Options) (*compose.Result, error) {
	return s.matcher.Analyze(ctx, source, opts)
}

// AnalyzeWithMonitor runs a composition analysis with run-scoped
// monitoring.
func (s *Session) AnalyzeWithMonitor(ctx context.Context, source string, opts compose.Options, monitor compose.AnalysisMonitor) (*compose.Result, error) {
	return s.matcher.AnalyzeWithMonitor(ctx, source, opts, monitor)
}

// RebuildIndex replaces the index from the given dump sources. With no
// sources it indexes the conventional dumps present in the data
// directory, older format first so newer transcriptions win.
func (s *Session) RebuildIndex(ctx context.Context, sources ...corpus.Source) (int, error) {
	if len(sources) == 0 {
		for _, src := range corpus.DefaultSources(s.dataDir) {
			if _, statErr := os.Stat(src.Path); statErr == nil {
				sources = append(sources, src)
			}
		}
	}
	return s.engine.Rebuild(ctx, sources...)
}

// Ready reports whether a built index is available for queries.
func (s *Session) Ready() bool {
	return s.engine.Ready()
}

// Manifest returns the current index manifest, nil when no index has
// been built yet.
func (s *Session) Manifest(ctx context.Context) (*core.IndexManifest, error) {
	return s.manifests.LoadManifest(ctx)
}

// Fragment retrieves a single fragment by id.
func (s *Session) Fragment(ctx context.Context, id core.ID) (*core.Fragment, error) {
	return s.fragments.GetFragment(ctx, id)
}

// Manuscript retrieves every fragment of a manuscript in page order.
func (s *Session) Manuscript(ctx context.Context, manuscriptId string) ([]*core.Fragment, error) {
	return s.fragments.GetManuscriptFragments(ctx, manuscriptId)
}

// Resolver exposes the catalogue resolver.
func (s *Session) Resolver() *metadata.Resolver {
	return s.resolver
}

// ResolveByID looks up the catalogue record of a manuscript system id.
func (s *Session) ResolveByID(id string) (metadata.Record, bool) {
	return s.resolver.ResolveByID(id)
}

// ResolveByShelfmark maps a shelfmark, in any catalogued spelling, to
// its manuscript system id.
func (s *Session) ResolveByShelfmark(shelfmark string) (string, bool) {
	return s.resolver.ResolveByShelfmark(shelfmark)
}

// NewExclusionSet creates an exclusion set over the session catalogue.
func (s *Session) NewExclusionSet() (*metadata.ExclusionSet, error) {
	return metadata.NewExclusionSet(s.resolver)
}

// FragmentRepository exposes the underlying fragment store.
func (s *Session) FragmentRepository() storage.FragmentRepository {
	return s.fragments
}
