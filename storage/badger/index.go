package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/oraculum/core"
	"github.com/poiesic/oraculum/storage"
)

// IndexRepository implements storage.IndexRepository for BadgerDB.
type IndexRepository struct {
	backend *Backend
	seq     *badger.Sequence
	logger  *slog.Logger
}

var _ storage.IndexRepository = (*IndexRepository)(nil)

// newIndexRepository is an internal constructor that returns the concrete type.
func newIndexRepository(backend *Backend) (*IndexRepository, error) {
	seq, err := backend.GetSequence(indexEntrySeq)
	if err != nil {
		return nil, err
	}

	return &IndexRepository{
		backend: backend,
		seq:     seq,
		logger:  slog.Default().With("component", "vector-index"),
	}, nil
}

// NewIndexRepository creates a vector index repository on the given backend.
//
// Returns storage.IndexRepository interface (not *IndexRepository) to enforce
// abstraction and enable alternative index backends.
func NewIndexRepository(backend *Backend) (storage.IndexRepository, error) {
	return newIndexRepository(backend)
}

// Close releases the entry sequence.
func (r *IndexRepository) Close() error {
	return r.seq.Release()
}

// Add upserts index entries. The first entry ever added pins the vector
// dimensionality; later entries must match it. Re-adding an existing ID
// overwrites the stored entry but keeps its original insertion sequence,
// so re-indexing the same corpus does not perturb tie-breaking order.
func (r *IndexRepository) Add(ctx context.Context, entries ...*core.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		dims, err := r.readDims(tx)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			if len(entry.Vector) == 0 {
				return core.ErrEmptyVector
			}
			if dims == 0 {
				dims = len(entry.Vector)
				if err := tx.Set(dimsKey(), storage.MarshalDimensions(dims)); err != nil {
					return err
				}
			} else if len(entry.Vector) != dims {
				return fmt.Errorf("%w: index has %d dimensions, entry %d has %d",
					storage.ErrDimensionMismatch, dims, entry.Id, len(entry.Vector))
			}

			key := makeEntryKey(entry.Id)

			// Preserve the sequence of an existing entry on upsert.
			old, err := r.readEntry(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				entry.Seq = old.Seq
			} else {
				next, err := r.seq.Next()
				if err != nil {
					return err
				}
				entry.Seq = next
			}

			if err := tx.Set(key, storage.MarshalIndexEntry(entry)); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)
}

// Search scans all entries and returns the k nearest by cosine distance,
// closest first. Ties break by insertion sequence. An empty index returns
// an empty result set.
func (r *IndexRepository) Search(ctx context.Context, vector []float32, k int) ([]*core.RetrievalResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", storage.ErrInvalidQuery, k)
	}
	if len(vector) == 0 {
		return nil, core.ErrEmptyVector
	}

	type candidate struct {
		entry    *core.IndexEntry
		distance float32
	}
	var candidates []candidate

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		dims, err := r.readDims(tx)
		if err != nil {
			return err
		}
		if dims == 0 {
			// Empty index.
			return nil
		}
		if len(vector) != dims {
			return fmt.Errorf("%w: index has %d dimensions, query has %d",
				storage.ErrDimensionMismatch, dims, len(vector))
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = entryKeyPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.IndexEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalIndexEntry(val)
				return err
			})
			if err != nil {
				return err
			}

			candidates = append(candidates, candidate{
				entry:    entry,
				distance: cosineDistance(vector, entry.Vector),
			})
		}

		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(candidates, func(a, b candidate) int {
		if a.distance < b.distance {
			return -1
		}
		if a.distance > b.distance {
			return 1
		}
		// Equal distances resolve by insertion order so results are stable.
		if a.entry.Seq < b.entry.Seq {
			return -1
		}
		if a.entry.Seq > b.entry.Seq {
			return 1
		}
		return 0
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	results := make([]*core.RetrievalResult, len(candidates))
	for i, c := range candidates {
		results[i] = &core.RetrievalResult{
			ChunkText: c.entry.ChunkText,
			Metadata:  c.entry.Metadata,
			Distance:  c.distance,
		}
	}
	return results, nil
}

// Clear removes all entries and the pinned dimensionality.
// Clearing an empty index is a no-op.
func (r *IndexRepository) Clear(ctx context.Context) error {
	r.logger.Debug("clearing vector index")
	return r.backend.DropPrefixes(entryKeyPrefix(), dimsKey())
}

// Stats reports the entry count and pinned dimensionality.
func (r *IndexRepository) Stats(ctx context.Context) (*core.IndexStats, error) {
	stats := &core.IndexStats{}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		dims, err := r.readDims(tx)
		if err != nil {
			return err
		}
		stats.Dimensions = dims

		opts := badger.DefaultIteratorOptions
		opts.Prefix = entryKeyPrefix()
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			stats.EntryCount++
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// readDims reads the pinned dimensionality, returning 0 when unset.
func (r *IndexRepository) readDims(tx *badger.Txn) (int, error) {
	item, err := tx.Get(dimsKey())
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var dims int
	err = item.Value(func(val []byte) error {
		var err error
		dims, err = storage.UnmarshalDimensions(val)
		return err
	})
	return dims, err
}

// readEntry reads an entry by key, returning nil when absent.
func (r *IndexRepository) readEntry(tx *badger.Txn, key []byte) (*core.IndexEntry, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry *core.IndexEntry
	err = item.Value(func(val []byte) error {
		var err error
		entry, err = storage.UnmarshalIndexEntry(val)
		return err
	})
	return entry, err
}

// cosineDistance computes 1 minus the cosine similarity of two vectors.
// A zero-magnitude vector yields the maximum distance of 1.
func cosineDistance(a, b []float32) float32 {
	var dot, normA, normB float64
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)))
}
