package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/oraculum/ai/mock"
	"github.com/poiesic/oraculum/chunker"
	badgerstore "github.com/poiesic/oraculum/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupIndexer(t *testing.T, documentsPath string, opts ...Option) (*Indexer, *mock.Embedder) {
	t.Helper()

	index, backend, err := badgerstore.NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() {
		index.Close()
		backend.Close()
	})

	ck, err := chunker.New(50, 10)
	require.NoError(t, err)

	embedder := mock.NewEmbedder()
	indexer, err := NewIndexer(documentsPath, index, embedder, ck, opts...)
	require.NoError(t, err)
	t.Cleanup(indexer.Release)

	return indexer, embedder
}

func TestNewIndexerValidation(t *testing.T) {
	index, backend, err := badgerstore.NewMemoryIndex()
	require.NoError(t, err)
	defer backend.Close()
	defer index.Close()

	ck, err := chunker.New(50, 10)
	require.NoError(t, err)
	embedder := mock.NewEmbedder()

	_, err = NewIndexer("", index, embedder, ck)
	assert.ErrorIs(t, err, ErrDocumentsPathRequired)

	_, err = NewIndexer(t.TempDir(), nil, embedder, ck)
	assert.ErrorIs(t, err, ErrIndexRequired)

	_, err = NewIndexer(t.TempDir(), index, nil, ck)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewIndexer(t.TempDir(), index, embedder, nil)
	assert.ErrorIs(t, err, ErrChunkerRequired)
}

func TestRunIndexesDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "golang.txt", "Go is a statically typed compiled language designed at Google for building simple reliable software.")
	writeFile(t, dir, "python.md", "Python is a dynamically typed interpreted language popular for scripting and data science work.")

	indexer, _ := setupIndexer(t, dir)

	report, err := indexer.Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 2, report.DocumentsLoaded)
	assert.Equal(t, 0, report.DocumentsFailed)
	assert.Greater(t, report.ChunksIndexed, 0)

	stats, err := indexer.index.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.ChunksIndexed, stats.EntryCount)
	assert.Equal(t, 384, stats.Dimensions)
}

func TestRunEmptyDirectory(t *testing.T) {
	indexer, embedder := setupIndexer(t, t.TempDir())

	report, err := indexer.Run(context.Background(), false)
	require.NoError(t, err)

	assert.Zero(t, report.DocumentsLoaded)
	assert.Zero(t, report.ChunksIndexed)
	assert.Zero(t, embedder.CallCount())
}

func TestRunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.txt", "Identical content indexed twice must not duplicate entries in the vector index.")

	indexer, _ := setupIndexer(t, dir)
	ctx := context.Background()

	first, err := indexer.Run(ctx, false)
	require.NoError(t, err)

	second, err := indexer.Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, first.ChunksIndexed, second.ChunksIndexed)

	stats, err := indexer.index.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ChunksIndexed, stats.EntryCount)
}

func TestRunForceClearsIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.txt", "This document stays for the second run of the indexer.")

	indexer, _ := setupIndexer(t, dir)
	ctx := context.Background()

	_, err := indexer.Run(ctx, false)
	require.NoError(t, err)

	// The second run rebuilds from scratch; stale entries from removed
	// documents would be gone after a force run.
	report, err := indexer.Run(ctx, true)
	require.NoError(t, err)

	stats, err := indexer.index.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.ChunksIndexed, stats.EntryCount)
}

func TestRunShrunkenDocumentNeedsForce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.txt",
		"alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima mike november "+
			"oscar papa quebec romeo sierra tango uniform victor whiskey xray yankee zulu")

	indexer, _ := setupIndexer(t, dir)
	ctx := context.Background()

	first, err := indexer.Run(ctx, false)
	require.NoError(t, err)
	require.Greater(t, first.ChunksIndexed, 1)

	// The shortened document reuses the leading entry IDs; its old tail
	// chunks stay behind on a plain re-index.
	writeFile(t, dir, "doc.txt", "alpha bravo charlie")

	second, err := indexer.Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, second.ChunksIndexed)

	stats, err := indexer.index.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ChunksIndexed, stats.EntryCount)

	// A force run rebuilds from scratch and drops the stale tail.
	forced, err := indexer.Run(ctx, true)
	require.NoError(t, err)

	stats, err = indexer.index.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, forced.ChunksIndexed, stats.EntryCount)
	assert.Equal(t, 1, stats.EntryCount)
}

func TestRunEmbeddingFailureAborts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.txt", "Some document content that will fail to embed.")

	indexer, embedder := setupIndexer(t, dir, WithRetry(2, time.Millisecond))

	wantErr := errors.New("embedding backend down")
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, wantErr
	}

	_, err := indexer.Run(context.Background(), false)
	assert.ErrorIs(t, err, wantErr)
}

func TestRunBatchesPreserveOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "long.txt",
		"alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima mike november "+
			"oscar papa quebec romeo sierra tango uniform victor whiskey xray yankee zulu one two three four")

	// Batch size 1 forces one pool task per chunk.
	indexer, _ := setupIndexer(t, dir, WithBatchSize(1), WithPoolSize(4))
	ctx := context.Background()

	report, err := indexer.Run(ctx, false)
	require.NoError(t, err)
	assert.Greater(t, report.ChunksIndexed, 1)

	// Every stored vector must match the deterministic embedding of its
	// own chunk text, proving batches were not misaligned.
	results, err := indexer.index.Search(ctx, mock.DeterministicVector("alpha bravo", 384), report.ChunksIndexed)
	require.NoError(t, err)
	require.Len(t, results, report.ChunksIndexed)
	for _, result := range results {
		expected := mock.DeterministicVector(result.ChunkText, 384)
		self, err := indexer.index.Search(ctx, expected, 1)
		require.NoError(t, err)
		require.NotEmpty(t, self)
		assert.Equal(t, result.ChunkText, self[0].ChunkText)
		assert.InDelta(t, 0.0, float64(self[0].Distance), 1e-5)
	}
}

func TestRunChunkMetadata(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "meta.txt", "Short document that fits in a single chunk for metadata checks.")

	indexer, _ := setupIndexer(t, dir)
	ctx := context.Background()

	_, err := indexer.Run(ctx, false)
	require.NoError(t, err)

	results, err := indexer.index.Search(ctx, mock.DeterministicVector("anything", 384), 1)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "meta.txt", results[0].Metadata["source"])
	assert.Equal(t, "0", results[0].Metadata["chunk_index"])
	assert.NotEmpty(t, results[0].Metadata["path"])
}
