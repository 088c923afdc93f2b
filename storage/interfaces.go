package storage

import (
	"context"

	"github.com/poiesic/oraculum/core"
)

// IndexRepository provides operations for the persistent vector index.
// Implementations must be thread-safe and support concurrent access.
type IndexRepository interface {
	// Add upserts one or more index entries.
	// Entries are keyed by their content-derived ID, so re-adding the same
	// document chunk overwrites the previous entry rather than duplicating it.
	// The dimensionality of the first entry ever added is pinned for the
	// lifetime of the index; entries with a different vector length are
	// rejected with ErrDimensionMismatch.
	Add(ctx context.Context, entries ...*core.IndexEntry) error

	// Search finds the k entries nearest to the query vector by cosine
	// distance, ordered ascending (closest first). Ties are broken by
	// insertion order. An empty index yields an empty result, not an error.
	// A query vector whose length differs from the pinned dimensionality
	// returns ErrDimensionMismatch.
	Search(ctx context.Context, vector []float32, k int) ([]*core.RetrievalResult, error)

	// Clear removes all entries and the pinned dimensionality.
	// Clearing an empty index is a no-op, not an error.
	Clear(ctx context.Context) error

	// Stats reports the number of entries and the pinned dimensionality.
	// An empty index reports zero for both.
	Stats(ctx context.Context) (*core.IndexStats, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
