package storage

import (
	"context"

	"github.com/gershuni/GenizahSearch/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// FragmentRepository provides operations for stored fragments.
type FragmentRepository interface {
	Repository
	// PutFragments stores one or more fragments, replacing any record with
	// the same ID. Keeps the manuscript page index in sync, including when
	// a replacement moves a fragment to a different manuscript or page.
	PutFragments(ctx context.Context, fragments ...*core.Fragment) error

	// GetFragment retrieves a single fragment by ID.
	// Returns ErrNotFound if the fragment doesn't exist.
	GetFragment(ctx context.Context, id core.ID) (*core.Fragment, error)

	// GetFragments retrieves multiple fragments by their IDs.
	// Returns only the fragments that exist (no error for missing fragments).
	GetFragments(ctx context.Context, ids ...core.ID) ([]*core.Fragment, error)

	// GetManuscriptFragments retrieves every fragment of a manuscript,
	// ordered by page index ascending.
	GetManuscriptFragments(ctx context.Context, manuscriptId string) ([]*core.Fragment, error)

	// DeleteFragments removes fragments by their IDs, along with their page
	// index entries. Returns ErrNotFound if any fragment doesn't exist.
	DeleteFragments(ctx context.Context, ids ...core.ID) error

	// CountFragments returns the number of stored fragments.
	CountFragments(ctx context.Context) (int, error)
}

// PostingRepository provides operations for the positional term index.
type PostingRepository interface {
	Repository
	// PutPostingLists stores one or more posting lists, replacing any list
	// with the same term.
	PutPostingLists(ctx context.Context, lists ...*core.PostingList) error

	// GetPostingList retrieves the posting list for a term.
	// Returns ErrNotFound if the term is not in the vocabulary.
	GetPostingList(ctx context.Context, term string) (*core.PostingList, error)

	// GetPostingLists retrieves posting lists for multiple terms.
	// Returns only the lists that exist (no error for unknown terms).
	GetPostingLists(ctx context.Context, terms ...string) ([]*core.PostingList, error)

	// ForEachTerm calls fn for every vocabulary term in lexicographic
	// order. Iteration stops at the first fn error, which is returned.
	// Honors ctx cancellation between terms.
	ForEachTerm(ctx context.Context, fn func(term string) error) error

	// CountTerms returns the vocabulary size.
	CountTerms(ctx context.Context) (int, error)
}

// ManifestRepository persists the index manifest and owns index lifecycle.
type ManifestRepository interface {
	Repository
	// SaveManifest persists the manifest of a completed index build.
	// Sets BuiltAt to the current time if unset.
	SaveManifest(ctx context.Context, manifest *core.IndexManifest) error

	// LoadManifest retrieves the current index manifest.
	// Returns nil, nil if no index has been built.
	LoadManifest(ctx context.Context) (*core.IndexManifest, error)

	// DropIndex removes every stored fragment, posting list, page index
	// entry and the manifest. Callers must guarantee no concurrent access.
	DropIndex(ctx context.Context) error
}
