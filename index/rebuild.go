package index

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/gershuni/GenizahSearch/core"
	"github.com/gershuni/GenizahSearch/corpus"
)

// Rebuild progress is reported every this many fragments.
const progressInterval = 1000

// Rebuild replaces the index with one built from the given sources.
//
// Sources are parsed concurrently but merged in argument order, so when two
// sources carry the same fragment the later one wins. The previous index is
// dropped only once every source has parsed cleanly; a parse failure leaves
// the old index queryable.
func (e *Embedded) Rebuild(ctx context.Context, sources ...corpus.Source) (int, error) {
	if len(sources) == 0 {
		return 0, fmt.Errorf("%w: no sources", core.ErrInvalidConfiguration)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.rebuilding.Store(true)
	defer e.rebuilding.Store(false)

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	start := time.Now()
	e.logger.Info("rebuilding index", "sources", len(sources))

	parsed, err := parseSources(sources)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	merged := make(map[core.ID]*core.Fragment)
	for _, fragments := range parsed {
		for i := range fragments {
			merged[fragments[i].Id] = &fragments[i]
		}
	}
	ids := make([]core.ID, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// Fragments are walked in id order, so every posting list accumulates
	// already sorted the way the delta encoding stores it.
	postings := make(map[string][]core.Posting)
	var tokenCount uint64
	for _, id := range ids {
		positions := make(map[string][]uint32)
		for _, token := range corpus.Tokenize(merged[id].Text) {
			positions[token.Norm] = append(positions[token.Norm], uint32(token.Pos))
			tokenCount++
		}
		for term, pos := range positions {
			postings[term] = append(postings[term], core.Posting{FragmentId: id, Positions: pos})
		}
	}

	e.ready.Store(false)
	if err := e.manifests.DropIndex(ctx); err != nil {
		return 0, err
	}

	tracker := NewProgressTracker(e.progress, len(ids), progressInterval)
	tracker.Start()
	for batchStart := 0; batchStart < len(ids); batchStart += e.batchSize {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		end := min(batchStart+e.batchSize, len(ids))
		batch := make([]*core.Fragment, 0, end-batchStart)
		for _, id := range ids[batchStart:end] {
			batch = append(batch, merged[id])
		}
		if err := e.fragments.PutFragments(ctx, batch...); err != nil {
			return 0, err
		}
		tracker.Update(end)
	}
	tracker.Finish()

	terms := make([]string, 0, len(postings))
	for term := range postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	for batchStart := 0; batchStart < len(terms); batchStart += e.batchSize {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		end := min(batchStart+e.batchSize, len(terms))
		batch := make([]*core.PostingList, 0, end-batchStart)
		for _, term := range terms[batchStart:end] {
			batch = append(batch, &core.PostingList{Term: term, Postings: postings[term]})
		}
		if err := e.postings.PutPostingLists(ctx, batch...); err != nil {
			return 0, err
		}
	}

	labels := make([]string, len(sources))
	for i, src := range sources {
		labels[i] = filepath.Base(src.Path)
	}
	manifest := &core.IndexManifest{
		FragmentCount: len(ids),
		TermCount:     len(terms),
		TokenCount:    tokenCount,
		Sources:       labels,
	}
	if err := e.manifests.SaveManifest(ctx, manifest); err != nil {
		return 0, err
	}

	e.cache.Clear()
	e.ready.Store(true)
	e.logger.Info("index rebuilt",
		"fragments", len(ids),
		"terms", len(terms),
		"tokens", tokenCount,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return len(ids), nil
}

// parseSources reads every source concurrently, one worker per file.
func parseSources(sources []corpus.Source) ([][]core.Fragment, error) {
	workers := len(sources)
	if cpus := runtime.NumCPU(); workers > cpus {
		workers = cpus
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	parsed := make([][]core.Fragment, len(sources))
	errs := make([]error, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		if submitErr := pool.Submit(func() {
			defer wg.Done()
			parsed[i], errs[i] = src.Read()
		}); submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return parsed, nil
}
