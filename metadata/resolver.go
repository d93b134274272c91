package metadata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Record is one catalogue entry for a manuscript.
type Record struct {
	SystemId  string
	Shelfmark string
	Title     string
}

// Columns of the catalogue CSV. The export carries more columns than
// the resolver needs; only these are read.
const (
	columnSystemId   = 0
	columnShelfmarks = 1
	columnTitle      = 5
)

var (
	msPrefixRe = regexp.MustCompile(`(?i)^\s*m[.\s]*s[.\s]*\.?\s*`)
	nonWordRe  = regexp.MustCompile(`[^\p{L}\p{N}_]`)
)

// Resolver answers bidirectional catalogue lookups. Load once at
// startup; lookups are read-only afterwards.
type Resolver struct {
	byId        map[string]Record
	byShelfmark map[string]string
}

// LoadResolver reads the catalogue CSV at path.
func LoadResolver(path string) (*Resolver, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogueUnreadable, err)
	}
	defer file.Close()

	resolver, err := NewResolver(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCatalogueUnreadable, path, err)
	}
	return resolver, nil
}

// EmptyResolver returns a resolver with no catalogue behind it.
// Every lookup misses.
func EmptyResolver() *Resolver {
	return &Resolver{
		byId:        make(map[string]Record),
		byShelfmark: make(map[string]string),
	}
}

// NewResolver reads catalogue rows from r. Row layout: system number,
// pipe-separated call numbers, then the title in the sixth column. The
// first row is a header. Rows too short to carry a call number are
// skipped.
func NewResolver(r io.Reader) (*Resolver, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	resolver := &Resolver{
		byId:        make(map[string]Record),
		byShelfmark: make(map[string]string),
	}

	header := true
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if header {
			header = false
			continue
		}
		if len(row) < 2 {
			continue
		}

		id := digitsOnly(row[columnSystemId])
		if id == "" {
			continue
		}

		record := Record{
			SystemId:  id,
			Shelfmark: shortestShelfmark(row[columnShelfmarks]),
		}
		if len(row) > columnTitle {
			record.Title = strings.TrimSpace(row[columnTitle])
		}
		resolver.byId[id] = record

		// Every listed call number maps back to the id, not just the
		// canonical shortest one.
		for _, shelf := range strings.Split(row[columnShelfmarks], "|") {
			if norm := NormalizeShelfmark(shelf); norm != "" {
				resolver.byShelfmark[norm] = id
			}
		}
	}
	return resolver, nil
}

// ResolveByID returns the catalogue record for a manuscript id. The id
// may carry stray runes (BOM, direction marks); only its digits count.
func (r *Resolver) ResolveByID(id string) (Record, bool) {
	record, ok := r.byId[digitsOnly(id)]
	return record, ok
}

// ResolveByShelfmark returns the manuscript id a call number refers to.
func (r *Resolver) ResolveByShelfmark(shelfmark string) (string, bool) {
	id, ok := r.byShelfmark[NormalizeShelfmark(shelfmark)]
	return id, ok
}

// Title returns the catalogue title for a manuscript id, or the empty
// string when the catalogue does not know it.
func (r *Resolver) Title(id string) string {
	record, _ := r.ResolveByID(id)
	return record.Title
}

// Len returns the number of catalogue records loaded.
func (r *Resolver) Len() int {
	return len(r.byId)
}

// NormalizeShelfmark folds a call number for comparison: an optional
// MS prefix is dropped, everything but letters, digits and underscores
// is removed, and the remainder is lowercased.
func NormalizeShelfmark(shelf string) string {
	shelf = msPrefixRe.ReplaceAllString(shelf, "")
	shelf = nonWordRe.ReplaceAllString(shelf, "")
	shelf = strings.ToLower(shelf)
	return strings.TrimPrefix(shelf, "ms")
}

// shortestShelfmark picks the canonical call number: the shortest
// non-empty entry of the pipe-separated list.
func shortestShelfmark(raw string) string {
	entries := strings.Split(raw, "|")
	shelf := strings.TrimSpace(entries[0])
	for _, entry := range entries[1:] {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if shelf == "" || utf8.RuneCountInString(entry) < utf8.RuneCountInString(shelf) {
			shelf = entry
		}
	}
	return shelf
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
