package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/oraculum/ai"
	"github.com/poiesic/oraculum/chunker"
	"github.com/poiesic/oraculum/core"
	"github.com/poiesic/oraculum/storage"
)

const (
	defaultBatchSize      = 32
	defaultMaxRetries     = 3
	defaultRetryDelay     = 1 * time.Second
	defaultReportInterval = 50
)

// Indexer orchestrates loading, chunking, embedding and indexing of a
// document directory. Embedding batches run concurrently on a worker
// pool; index writes happen afterwards in chunk order so insertion
// sequence follows document order.
type Indexer struct {
	documentsPath string
	index         storage.IndexRepository
	embedder      ai.Embedder
	chunker       *chunker.Chunker
	loader        *Loader
	pool          *ants.Pool
	batchSize     int
	maxRetries    int
	retryDelay    time.Duration
	progress      io.Writer
	logger        *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(idx *Indexer) error {
		if size < 1 {
			size = 1
		}

		if idx.pool != nil {
			idx.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		idx.pool = pool
		return nil
	}
}

// WithBatchSize sets how many chunks are embedded per request.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(idx *Indexer) error {
		if size < 1 {
			size = 1
		}
		idx.batchSize = size
		return nil
	}
}

// WithRetry sets the retry policy for embedding batches.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(idx *Indexer) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		idx.maxRetries = maxAttempts
		idx.retryDelay = baseDelay
		return nil
	}
}

// WithProgress sets where progress output is written.
// Default is io.Discard.
func WithProgress(w io.Writer) Option {
	return func(idx *Indexer) error {
		if w == nil {
			w = io.Discard
		}
		idx.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(idx *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		idx.logger = logger
		return nil
	}
}

// NewIndexer creates a new document indexer.
func NewIndexer(
	documentsPath string,
	index storage.IndexRepository,
	embedder ai.Embedder,
	ck *chunker.Chunker,
	opts ...Option,
) (*Indexer, error) {
	if documentsPath == "" {
		return nil, ErrDocumentsPathRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if ck == nil {
		return nil, ErrChunkerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	idx := &Indexer{
		documentsPath: documentsPath,
		index:         index,
		embedder:      embedder,
		chunker:       ck,
		loader:        NewLoader(),
		pool:          pool,
		batchSize:     defaultBatchSize,
		maxRetries:    defaultMaxRetries,
		retryDelay:    defaultRetryDelay,
		progress:      io.Discard,
		logger:        slog.Default().With("component", "indexer"),
	}

	for _, opt := range opts {
		if optErr := opt(idx); optErr != nil {
			idx.Release()
			return nil, optErr
		}
	}

	return idx, nil
}

// Report summarizes an indexing run.
type Report struct {
	DocumentsLoaded int
	DocumentsFailed int
	ChunksIndexed   int
	Elapsed         time.Duration
}

// Run indexes every supported document under the configured directory.
// With force set, the index is cleared first; otherwise existing entries
// for unchanged chunks are overwritten in place. Entry IDs derive from
// the filename and chunk position, so a document that shrank keeps its
// surplus tail chunks in the index until a force run rebuilds it.
// Individual document failures are skipped and counted, but an embedding
// failure that survives retries aborts the run.
func (idx *Indexer) Run(ctx context.Context, force bool) (*Report, error) {
	start := time.Now()

	if force {
		idx.logger.Info("clearing index before rebuild")
		if err := idx.index.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clearing index: %w", err)
		}
	}

	documents, failed, err := idx.loader.Load(idx.documentsPath)
	if err != nil {
		return nil, err
	}

	report := &Report{
		DocumentsLoaded: len(documents),
		DocumentsFailed: failed,
	}

	// Chunk all documents up front. Chunk order across the corpus defines
	// insertion order in the index.
	var chunks []core.Chunk
	for _, document := range documents {
		metadata := map[string]string{
			"source": document.Filename,
			"path":   document.Path,
		}
		docChunks := idx.chunker.CreateChunks(document.Contents, document.Id, metadata)
		if len(docChunks) == 0 {
			idx.logger.Warn("document produced no chunks", "filename", document.Filename)
			continue
		}
		chunks = append(chunks, docChunks...)
	}

	if len(chunks) == 0 {
		report.Elapsed = time.Since(start)
		fmt.Fprintf(idx.progress, "No documents to index (0 chunks)\n")
		return report, nil
	}

	fmt.Fprintf(idx.progress, "Indexing %d chunks from %d documents (batch size: %d)\n",
		len(chunks), len(documents), idx.batchSize)

	vectors, err := idx.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	entries := make([]*core.IndexEntry, len(chunks))
	for i, chunk := range chunks {
		metadata := chunk.Metadata
		if metadata == nil {
			metadata = make(map[string]string, 1)
		}
		metadata["chunk_index"] = strconv.Itoa(chunk.Index)

		entries[i] = &core.IndexEntry{
			Id:        core.EntryID(chunk.DocumentId, chunk.Index),
			Vector:    vectors[i],
			ChunkText: chunk.Text,
			Metadata:  metadata,
		}
	}

	// Write in batches to keep transactions bounded.
	for batchStart := 0; batchStart < len(entries); batchStart += idx.batchSize {
		batchEnd := min(batchStart+idx.batchSize, len(entries))
		if err := idx.index.Add(ctx, entries[batchStart:batchEnd]...); err != nil {
			return nil, fmt.Errorf("adding entries to index: %w", err)
		}
	}

	report.ChunksIndexed = len(entries)
	report.Elapsed = time.Since(start)

	fmt.Fprintf(idx.progress, "Indexed %d chunks in %v\n",
		report.ChunksIndexed, report.Elapsed.Round(time.Millisecond))
	idx.logger.Info("indexing complete",
		"documents", report.DocumentsLoaded,
		"failed", report.DocumentsFailed,
		"chunks", report.ChunksIndexed,
		"elapsed", report.Elapsed)

	return report, nil
}

// embedChunks embeds all chunks in concurrent batches, returning vectors
// positionally aligned with the input.
func (idx *Indexer) embedChunks(ctx context.Context, chunks []core.Chunk) ([][]float32, error) {
	numBatches := (len(chunks) + idx.batchSize - 1) / idx.batchSize

	tracker := NewProgressTracker(idx.progress, len(chunks), defaultReportInterval)
	tracker.Start()

	vectors := make([][]float32, len(chunks))
	errs := make([]error, numBatches)
	var wg sync.WaitGroup

	for batch := 0; batch < numBatches; batch++ {
		batchStart := batch * idx.batchSize
		batchEnd := min(batchStart+idx.batchSize, len(chunks))
		batchIdx := batch

		texts := make([]string, batchEnd-batchStart)
		for i := batchStart; i < batchEnd; i++ {
			texts[i-batchStart] = chunks[i].Text
		}

		wg.Add(1)
		submitErr := idx.pool.Submit(func() {
			defer wg.Done()

			var batchVectors [][]float32
			err := RetryWithBackoff(ctx, func() error {
				var embedErr error
				batchVectors, embedErr = idx.embedder.EmbedTexts(ctx, texts)
				return embedErr
			}, idx.maxRetries, idx.retryDelay)
			if err != nil {
				errs[batchIdx] = err
				return
			}

			copy(vectors[batchStart:batchEnd], batchVectors)
			tracker.Increment(len(texts))
		})
		if submitErr != nil {
			wg.Done()
			return nil, submitErr
		}
	}

	wg.Wait()
	tracker.Finish()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("embedding chunks: %w", err)
		}
	}

	return vectors, nil
}

// Release releases the worker pool.
// The indexer should not be used after calling Release.
func (idx *Indexer) Release() {
	if idx.pool != nil {
		idx.pool.Release()
	}
}
