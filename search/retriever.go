package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/oraculum/ai"
	"github.com/poiesic/oraculum/core"
	"github.com/poiesic/oraculum/storage"
)

// Retriever answers questions against the vector index by embedding the
// question and running a nearest-neighbor search.
type Retriever struct {
	index       storage.IndexRepository
	embedder    ai.Embedder
	maxDistance float32
	monitor     RetrievalMonitor
	logger      *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithMaxDistance sets a cosine distance cutoff; results farther than the
// cutoff are dropped. Zero (the default) disables the cutoff, so weakly
// related chunks are still returned rather than silently withheld.
func WithMaxDistance(distance float32) Option {
	return func(r *Retriever) error {
		if distance < 0 {
			return ErrInvalidMaxDistance
		}
		r.maxDistance = distance
		return nil
	}
}

// WithMonitor sets a retrieval monitor.
// Default is a no-op monitor.
func WithMonitor(monitor RetrievalMonitor) Option {
	return func(r *Retriever) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		r.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new retriever over the given index and embedder.
func NewRetriever(index storage.IndexRepository, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		index:    index,
		embedder: embedder,
		monitor:  &noopMonitor{},
		logger:   slog.Default().With("component", "retriever"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve returns up to k chunks nearest to the question, closest first.
// An empty index yields an empty result without calling the embedder, so
// queries against a fresh store cost nothing and fail nothing.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]*core.RetrievalResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		return nil, ErrInvalidLimit
	}

	r.monitor.Start(question)

	stats, err := r.index.Stats(ctx)
	if err != nil {
		return nil, err
	}
	if stats.EntryCount == 0 {
		r.logger.Debug("retrieval against empty index", "question", question)
		results := []*core.RetrievalResult{}
		r.monitor.Finish(results)
		return results, nil
	}

	vector, err := r.embedder.EmbedText(ctx, question)
	if err != nil {
		return nil, err
	}
	r.monitor.AfterEmbedding(vector)

	results, err := r.index.Search(ctx, vector, k)
	if err != nil {
		return nil, err
	}
	r.monitor.AfterIndexSearch(results)

	if r.maxDistance > 0 {
		kept := results[:0]
		for _, result := range results {
			if result.Distance > r.maxDistance {
				r.monitor.FilteredByDistance(result)
				continue
			}
			kept = append(kept, result)
		}
		results = kept
	}

	r.logger.Debug("retrieval complete", "question", question, "hits", len(results))
	r.monitor.Finish(results)

	return results, nil
}
