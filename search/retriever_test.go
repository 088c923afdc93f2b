package search

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/oraculum/ai/mock"
	"github.com/poiesic/oraculum/core"
	"github.com/poiesic/oraculum/storage"
	badgerstore "github.com/poiesic/oraculum/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMonitor struct {
	started  string
	embedded bool
	searched int
	filtered int
	finished int
}

func (m *recordingMonitor) Start(question string) { m.started = question }

func (m *recordingMonitor) AfterEmbedding(_ []float32) { m.embedded = true }

func (m *recordingMonitor) AfterIndexSearch(results []*core.RetrievalResult) {
	m.searched = len(results)
}

func (m *recordingMonitor) FilteredByDistance(_ *core.RetrievalResult) { m.filtered++ }

func (m *recordingMonitor) Finish(results []*core.RetrievalResult) { m.finished = len(results) }

func setupRetriever(t *testing.T, opts ...Option) (*Retriever, storage.IndexRepository, *mock.Embedder) {
	t.Helper()

	index, backend, err := badgerstore.NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() {
		index.Close()
		backend.Close()
	})

	embedder := mock.NewEmbedder()
	retriever, err := NewRetriever(index, embedder, opts...)
	require.NoError(t, err)

	return retriever, index, embedder
}

func seedIndex(t *testing.T, index storage.IndexRepository, texts ...string) {
	t.Helper()

	entries := make([]*core.IndexEntry, len(texts))
	for i, text := range texts {
		entries[i] = &core.IndexEntry{
			Id:        core.IDFromContent(text),
			Vector:    mock.DeterministicVector(text, 384),
			ChunkText: text,
			Metadata:  map[string]string{"source": "seed.txt"},
		}
	}
	require.NoError(t, index.Add(context.Background(), entries...))
}

func TestNewRetrieverValidation(t *testing.T) {
	index, backend, err := badgerstore.NewMemoryIndex()
	require.NoError(t, err)
	defer backend.Close()
	defer index.Close()

	_, err = NewRetriever(nil, mock.NewEmbedder())
	assert.ErrorIs(t, err, ErrIndexRequired)

	_, err = NewRetriever(index, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewRetriever(index, mock.NewEmbedder(), WithMaxDistance(-1))
	assert.ErrorIs(t, err, ErrInvalidMaxDistance)
}

func TestRetrieveEmptyQuestion(t *testing.T) {
	retriever, _, _ := setupRetriever(t)

	_, err := retriever.Retrieve(context.Background(), "   ", 3)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestRetrieveInvalidLimit(t *testing.T) {
	retriever, _, _ := setupRetriever(t)

	_, err := retriever.Retrieve(context.Background(), "question", 0)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestRetrieveEmptyIndexSkipsEmbedding(t *testing.T) {
	retriever, _, embedder := setupRetriever(t)

	results, err := retriever.Retrieve(context.Background(), "anything at all", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, embedder.CallCount())
}

func TestRetrieveRanksExactMatchFirst(t *testing.T) {
	retriever, index, _ := setupRetriever(t)
	seedIndex(t, index,
		"Go is a compiled language",
		"Python is an interpreted language",
		"cats sleep most of the day",
	)

	// The mock embedder maps identical text to identical vectors, so the
	// exact chunk text ranks first with zero distance.
	results, err := retriever.Retrieve(context.Background(), "Go is a compiled language", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "Go is a compiled language", results[0].ChunkText)
	assert.InDelta(t, 0.0, float64(results[0].Distance), 1e-5)
}

func TestRetrieveLimitsResults(t *testing.T) {
	retriever, index, _ := setupRetriever(t)
	seedIndex(t, index, "one", "two", "three", "four", "five")

	results, err := retriever.Retrieve(context.Background(), "one", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRetrievePropagatesEmbedderError(t *testing.T) {
	retriever, index, embedder := setupRetriever(t)
	seedIndex(t, index, "some content")

	wantErr := errors.New("model down")
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, wantErr
	}

	_, err := retriever.Retrieve(context.Background(), "question", 3)
	assert.ErrorIs(t, err, wantErr)
}

func TestRetrieveMaxDistanceCutoff(t *testing.T) {
	monitor := &recordingMonitor{}
	retriever, index, _ := setupRetriever(t, WithMaxDistance(0.001), WithMonitor(monitor))
	seedIndex(t, index,
		"exact question text",
		"completely unrelated content about gardening",
	)

	results, err := retriever.Retrieve(context.Background(), "exact question text", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "exact question text", results[0].ChunkText)
	assert.Equal(t, 1, monitor.filtered)
}

func TestRetrieveMonitorHooks(t *testing.T) {
	monitor := &recordingMonitor{}
	retriever, index, _ := setupRetriever(t, WithMonitor(monitor))
	seedIndex(t, index, "first", "second")

	results, err := retriever.Retrieve(context.Background(), "first", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "first", monitor.started)
	assert.True(t, monitor.embedded)
	assert.Equal(t, 2, monitor.searched)
	assert.Equal(t, 2, monitor.finished)
}
