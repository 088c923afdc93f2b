package oraculum

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/oraculum/ai/mock"
	"github.com/poiesic/oraculum/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644))
}

func setupPipeline(t *testing.T, provider *mock.Provider) (*Pipeline, string) {
	t.Helper()

	docsDir := t.TempDir()

	cfg := config.Default()
	cfg.Documents.Path = docsDir
	cfg.Store.Path = filepath.Join(t.TempDir(), "store")
	cfg.Chunking.Size = 120
	cfg.Chunking.Overlap = 20

	pipeline, err := New(cfg, WithProvider(provider), WithInMemoryStore())
	require.NoError(t, err)
	t.Cleanup(func() { pipeline.Close() })

	return pipeline, docsDir
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Chunking.Overlap = cfg.Chunking.Size

	_, err := New(cfg, WithProvider(mock.NewProvider("unused")), WithInMemoryStore())
	require.Error(t, err)
}

func TestIndexThenQuery(t *testing.T) {
	provider := mock.NewProvider("generated answer")
	pipeline, docsDir := setupPipeline(t, provider)
	ctx := context.Background()

	writeDoc(t, docsDir, "go.txt", "Go was designed at Google. It compiles quickly and has built-in concurrency support.")
	writeDoc(t, docsDir, "cooking.txt", "Slow roasting a chicken at low temperature keeps the meat moist and tender.")

	report, err := pipeline.IndexDocuments(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.DocumentsLoaded)
	assert.Greater(t, report.ChunksIndexed, 0)

	answer, err := pipeline.Query(ctx, "Go was designed at Google. It compiles quickly and has built-in concurrency support.",
		QueryOptions{ShowSources: true})
	require.NoError(t, err)

	assert.Equal(t, "generated answer", answer.Text)
	assert.Equal(t, "mock", answer.Backend)
	assert.False(t, answer.Degraded)

	// The closest source is the document whose text matches the question.
	require.NotEmpty(t, answer.Sources)
	assert.Equal(t, "go.txt", answer.Sources[0].Filename)
}

func TestQueryWithoutSources(t *testing.T) {
	provider := mock.NewProvider("answer")
	pipeline, docsDir := setupPipeline(t, provider)
	ctx := context.Background()

	writeDoc(t, docsDir, "doc.txt", "Some indexed content for the query to retrieve.")
	_, err := pipeline.IndexDocuments(ctx, false)
	require.NoError(t, err)

	answer, err := pipeline.Query(ctx, "anything", QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, answer.Sources)
}

func TestQueryEmptyIndex(t *testing.T) {
	provider := mock.NewProvider("answer from nothing")
	pipeline, _ := setupPipeline(t, provider)

	answer, err := pipeline.Query(context.Background(), "is anyone there?", QueryOptions{ShowSources: true})
	require.NoError(t, err)

	// No knowledge base: the generator still runs, with an empty context.
	assert.Equal(t, "answer from nothing", answer.Text)
	assert.Empty(t, answer.Sources)
}

func TestQueryDegradesWhenBackendsFail(t *testing.T) {
	provider := mock.NewProvider("")
	provider.Gens = []*mock.Generator{
		mock.NewFailingGenerator("primary", errors.New("model not loaded")),
		mock.NewFailingGenerator("secondary", errors.New("model not loaded")),
	}

	pipeline, docsDir := setupPipeline(t, provider)
	ctx := context.Background()

	writeDoc(t, docsDir, "doc.txt", "The retrieved passage that should be echoed back.")
	_, err := pipeline.IndexDocuments(ctx, false)
	require.NoError(t, err)

	answer, err := pipeline.Query(ctx, "what is in the document?", QueryOptions{ShowSources: true})
	require.NoError(t, err)

	assert.True(t, answer.Degraded)
	assert.Contains(t, answer.Text, "The retrieved passage")
	require.NotEmpty(t, answer.Sources)
	assert.Equal(t, "doc.txt", answer.Sources[0].Filename)
}

func TestReindexIsIdempotent(t *testing.T) {
	provider := mock.NewProvider("answer")
	pipeline, docsDir := setupPipeline(t, provider)
	ctx := context.Background()

	writeDoc(t, docsDir, "doc.txt", "Stable content that is indexed twice without duplication.")

	first, err := pipeline.IndexDocuments(ctx, false)
	require.NoError(t, err)

	second, err := pipeline.IndexDocuments(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, first.ChunksIndexed, second.ChunksIndexed)

	stats, err := pipeline.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ChunksIndexed, stats.Entries)
}

func TestStats(t *testing.T) {
	provider := mock.NewProvider("answer")
	pipeline, docsDir := setupPipeline(t, provider)
	ctx := context.Background()

	stats, err := pipeline.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Documents)
	assert.Zero(t, stats.Entries)
	assert.Zero(t, stats.Dimensions)

	writeDoc(t, docsDir, "a.txt", "First document content for stats counting.")
	writeDoc(t, docsDir, "b.md", "Second document content for stats counting.")
	writeDoc(t, docsDir, "ignored.bin", "not counted")

	_, err = pipeline.IndexDocuments(ctx, false)
	require.NoError(t, err)

	stats, err = pipeline.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Documents)
	assert.Greater(t, stats.Entries, 0)
	assert.Equal(t, 384, stats.Dimensions)
}

func TestNResultsOverride(t *testing.T) {
	provider := mock.NewProvider("answer")
	pipeline, docsDir := setupPipeline(t, provider)
	ctx := context.Background()

	writeDoc(t, docsDir, "a.txt", "alpha content one")
	writeDoc(t, docsDir, "b.txt", "bravo content two")
	writeDoc(t, docsDir, "c.txt", "charlie content three")

	_, err := pipeline.IndexDocuments(ctx, false)
	require.NoError(t, err)

	answer, err := pipeline.Query(ctx, "alpha content one", QueryOptions{NResults: 1, ShowSources: true})
	require.NoError(t, err)
	assert.Len(t, answer.Sources, 1)
}
