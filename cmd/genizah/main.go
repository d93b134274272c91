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


package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	genizahsearch "github.com/gershuni/GenizahSearch"
	"github.com/gershuni/GenizahSearch/compose"
	"github.com/gershuni/GenizahSearch/core"
	"github.com/gershuni/GenizahSearch/corpus"
	"github.com/gershuni/GenizahSearch/index"
	"github.com/gershuni/GenizahSearch/search"
)

func main() {
	_ = godotenv.Load(".env")

	app := &cli.App{
		Name:  "genizah",
		Usage: "Search and composition analysis over Genizah transcription dumps",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
				EnvVars: []string{"GENIZAH_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Data directory holding dumps, the catalogue, and the index",
				Value:   "./genizah_data",
				EnvVars: []string{"GENIZAH_DATA"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Rebuild the index from transcription dumps",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "v7",
						Usage: "V0.7 dump file (### headers); repeatable",
					},
					&cli.StringSliceFlag{
						Name:  "v8",
						Usage: "V0.8 dump file (==> framed headers); repeatable",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Run a single query against the index",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "Query mode (exact, variants, extended, maximum, fuzzy, regex)",
						Value:   "variants",
					},
					&cli.IntFlag{
						Name:  "gap",
						Usage: "Tokens allowed between query words",
					},
					&cli.IntFlag{
						Name:  "distance",
						Usage: "Edit distance for fuzzy mode (0 picks it per token length)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Most hits to print (0 prints all)",
						Value: 20,
					},
				},
			},
			{
				Name:      "analyze",
				Usage:     "Composition analysis of a text file against the corpus",
				ArgsUsage: "<file> (- reads stdin)",
				Action:    analyzeCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Window width in tokens",
						Value: compose.DefaultChunkSize,
					},
					&cli.IntFlag{
						Name:  "max-freq",
						Usage: "Discard windows matching more manuscripts than this",
						Value: compose.DefaultMaxFreq,
					},
					&cli.IntFlag{
						Name:  "appendix",
						Usage: "Demote title groups with more matches than this",
						Value: compose.DefaultAppendixThreshold,
					},
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "Window query mode (exact, variants, extended, maximum)",
						Value:   "variants",
					},
					&cli.IntFlag{
						Name:  "gap",
						Usage: "Tokens allowed between window words",
					},
					&cli.StringSliceFlag{
						Name:    "exclude",
						Aliases: []string{"x"},
						Usage:   "Manuscript id or shelfmark to leave out; repeatable",
					},
					&cli.BoolFlag{
						Name:    "recursive",
						Aliases: []string{"r"},
						Usage:   "Re-analyze the text of each primary manuscript",
					},
					&cli.IntFlag{
						Name:  "depth",
						Usage: "Recursion depth",
						Value: 1,
					},
				},
			},
			{
				Name:      "resolve",
				Usage:     "Look up a manuscript by system id or shelfmark",
				ArgsUsage: "<id-or-shelfmark>",
				Action:    resolveCommand,
			},
			{
				Name:      "show",
				Usage:     "Print a manuscript's indexed pages",
				ArgsUsage: "<system-id>",
				Action:    showCommand,
			},
			{
				Name:   "status",
				Usage:  "Print the index manifest",
				Action: statusCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func openSession(c *cli.Context, opts ...genizahsearch.SessionOption) (*genizahsearch.Session, error) {
	dataDir := c.String("data")
	s, err := genizahsearch.Open(dataDir, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open data directory %s: %w", dataDir, err)
	}
	return s, nil
}

func indexCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Within each format list order is kept, and V0.7 dumps go first,
	// so newer transcriptions of the same fragment win.
	var sources []corpus.Source
	for _, path := range c.StringSlice("v7") {
		sources = append(sources, corpus.Source{Path: path, Format: corpus.FormatV7})
	}
	for _, path := range c.StringSlice("v8") {
		sources = append(sources, corpus.Source{Path: path, Format: corpus.FormatV8})
	}

	s, err := openSession(c, genizahsearch.WithEngineOptions(index.WithProgress(os.Stderr)))
	if err != nil {
		return err
	}
	defer s.Close()

	start := time.Now()
	count, err := s.RebuildIndex(ctx, sources...)
	if err != nil {
		return fmt.Errorf("index rebuild failed: %w", err)
	}

	manifest, err := s.Manifest(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Indexed %d fragments (%d terms, %d tokens) in %s\n",
		count, manifest.TermCount, manifest.TokenCount, time.Since(start).Round(time.Millisecond))
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query text is required")
	}
	mode, err := parseMode(c.String("mode"))
	if err != nil {
		return err
	}

	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	hits, err := s.Search(ctx, &core.QueryRequest{
		Text:          query,
		Mode:          mode,
		Gap:           c.Int("gap"),
		FuzzyDistance: c.Int("distance"),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	limit := c.Int("limit")
	if limit <= 0 || limit > len(hits) {
		limit = len(hits)
	}
	fmt.Printf("Found %d hits\n", len(hits))
	for i, hit := range hits[:limit] {
		fragment, err := s.Fragment(ctx, hit.FragmentId)
		if err != nil {
			return err
		}
		fmt.Printf("%d: %s\n   %s\n", i+1, describeHit(s, hit, fragment), search.Snippet(fragment.Text, hit.Positions, 6))
	}
	if limit < len(hits) {
		fmt.Printf("... and %d more\n", len(hits)-limit)
	}
	return nil
}

// describeHit labels a hit with catalogue data when the manuscript is
// known, falling back to the parsed dump header.
func describeHit(s *genizahsearch.Session, hit core.Hit, fragment *core.Fragment) string {
	name := hit.ManuscriptId
	if record, ok := s.ResolveByID(hit.ManuscriptId); ok {
		name = record.Shelfmark
		if record.Title != "" {
			name = fmt.Sprintf("%s (%s)", record.Shelfmark, record.Title)
		}
	} else if components, ok := corpus.ParseHeaderComponents(fragment.Header); ok {
		name = components.SystemId
		if components.FileNumber != "" {
			name = fmt.Sprintf("%s FL%s", components.SystemId, components.FileNumber)
		}
	} else if name == "" {
		name = fragment.Header
	}

	parts := []string{name, fmt.Sprintf("page %d", fragment.PageIndex)}
	if fragment.Source != "" {
		parts = append(parts, fragment.Source)
	}
	if hit.Rank > 0 {
		parts = append(parts, fmt.Sprintf("variant rank %d", hit.Rank))
	}
	return strings.Join(parts, ", ")
}

func analyzeCommand(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("exactly one source file is required, or - for stdin")
	}
	mode, err := parseMode(c.String("mode"))
	if err != nil {
		return err
	}

	raw, err := readSource(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to read source text: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	// Exclusions may be ids or shelfmarks; the catalogue resolves them.
	exclusions, err := s.NewExclusionSet()
	if err != nil {
		return err
	}
	exclusions.AddAll(c.StringSlice("exclude")...)
	for _, entry := range exclusions.Unresolved() {
		fmt.Fprintf(os.Stderr, "warning: exclusion %q matches no catalogue entry\n", entry)
	}

	opts := compose.Options{
		ChunkSize:         c.Int("chunk-size"),
		MaxFreq:           c.Int("max-freq"),
		AppendixThreshold: c.Int("appendix"),
		Mode:              mode,
		Gap:               c.Int("gap"),
		Exclude:           exclusions.Snapshot(),
		Recursive:         c.Bool("recursive"),
		Depth:             c.Int("depth"),
	}

	result, err := s.AnalyzeWithMonitor(ctx, string(raw), opts, newProgressMonitor(os.Stderr))
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	printResult(result, 0)
	return nil
}

// readSource reads the analysis source from a file, or stdin for "-".
func readSource(arg string) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(arg)
}

func resolveCommand(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("an id or shelfmark is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	record, ok := s.ResolveByID(query)
	if !ok {
		if id, found := s.ResolveByShelfmark(query); found {
			record, ok = s.ResolveByID(id)
		}
	}
	if !ok {
		return fmt.Errorf("no catalogue entry for %q", query)
	}

	fmt.Printf("%s: %s", record.SystemId, record.Shelfmark)
	if record.Title != "" {
		fmt.Printf(" (%s)", record.Title)
	}
	fmt.Println()
	return nil
}

func showCommand(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("exactly one system id is required")
	}

	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	pages, err := s.Manuscript(context.Background(), c.Args().First())
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("no indexed fragments for %q", c.Args().First())
	}
	for _, page := range pages {
		fmt.Printf("Page %d [%s]\n%s\n\n", page.PageIndex, page.Source, page.Text)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	manifest, err := s.Manifest(context.Background())
	if err != nil {
		return err
	}
	if manifest == nil {
		fmt.Println("No index built")
		return nil
	}
	fmt.Printf("Built:     %s\n", manifest.BuiltAt.Format(time.RFC3339))
	fmt.Printf("Fragments: %d\n", manifest.FragmentCount)
	fmt.Printf("Terms:     %d\n", manifest.TermCount)
	fmt.Printf("Tokens:    %d\n", manifest.TokenCount)
	fmt.Printf("Sources:   %s\n", strings.Join(manifest.Sources, ", "))
	fmt.Printf("Catalogue: %d entries\n", s.Resolver().Len())
	return nil
}

// progressMonitor reports analysis progress on a terminal. Searched
// counts arrive from worker goroutines, so updates take the mutex.
type progressMonitor struct {
	w        io.Writer
	mu       sync.Mutex
	total    int
	searched int
}

func newProgressMonitor(w io.Writer) *progressMonitor {
	return &progressMonitor{w: w}
}

func (p *progressMonitor) Start(_ string, chunkCount int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = chunkCount
	p.searched = 0
	fmt.Fprintf(p.w, "Analyzing %d windows\n", chunkCount)
}

func (p *progressMonitor) ChunkSearched(_ int, _ int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.searched++
	if p.searched%50 == 0 || p.searched == p.total {
		fmt.Fprintf(p.w, "\r%d/%d windows", p.searched, p.total)
	}
}

func (p *progressMonitor) ChunkFailed(offset int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\rwindow %d failed: %v\n", offset, err)
}

func (p *progressMonitor) CommonChunk(_ int, _ int) {}

func (p *progressMonitor) Finish(_ *compose.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w)
}

func printResult(result *compose.Result, depth int) {
	indent := strings.Repeat("  ", depth)
	if depth == 0 {
		fmt.Printf("Windows: %d searched, %d common, %d failed (%s)\n",
			result.ChunkCount, result.CommonChunks, len(result.Failures), result.Elapsed.Round(time.Millisecond))
	} else {
		fmt.Printf("%sSeed %s: %d windows, %d common, %d failed\n",
			indent, strings.Join(result.SeedIds, ", "), result.ChunkCount, result.CommonChunks, len(result.Failures))
	}

	if len(result.Primary) == 0 && len(result.Appendix) == 0 {
		fmt.Printf("%sNo matches\n", indent)
	}
	printGroups(result.Primary, indent)
	if len(result.Appendix) > 0 {
		fmt.Printf("%sAppendix:\n", indent)
		printGroups(result.Appendix, indent)
	}

	for _, nested := range result.Nested {
		printResult(nested, depth+1)
	}
}

func printGroups(groups []*compose.TitleGroup, indent string) {
	for _, group := range groups {
		fmt.Printf("%s%s: %d matches\n", indent, group.Title, group.Matches)
		for _, manuscript := range group.Manuscripts {
			name := manuscript.Shelfmark
			if name == "" {
				name = manuscript.ManuscriptId
			}
			fmt.Printf("%s  %s: windows %s\n", indent, name, formatOffsets(manuscript.Chunks))
		}
	}
}

// formatOffsets compresses sorted window offsets into ranges, so a
// contiguous run prints as 3-17 instead of fifteen numbers.
func formatOffsets(offsets []int) string {
	if len(offsets) == 0 {
		return ""
	}
	var parts []string
	start, prev := offsets[0], offsets[0]
	flush := func() {
		if start == prev {
			parts = append(parts, fmt.Sprintf("%d", start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, prev))
		}
	}
	for _, offset := range offsets[1:] {
		if offset == prev+1 {
			prev = offset
			continue
		}
		flush()
		start, prev = offset, offset
	}
	flush()
	return strings.Join(parts, " ")
}

func parseMode(name string) (core.Mode, error) {
	mode, err := core.ParseMode(strings.ToLower(name))
	if err != nil {
		return 0, fmt.Errorf("invalid mode %q: must be one of exact, variants, extended, maximum, fuzzy, regex", name)
	}
	return mode, nil
}
