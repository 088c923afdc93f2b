package generation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/poiesic/oraculum/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(source, text string) *core.RetrievalResult {
	return &core.RetrievalResult{
		ChunkText: text,
		Metadata:  map[string]string{"source": source},
	}
}

func TestComposeEmptyQuestion(t *testing.T) {
	composer, err := NewComposer()
	require.NoError(t, err)

	_, err = composer.Compose("  ", nil)
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestComposeNoResults(t *testing.T) {
	composer, err := NewComposer()
	require.NoError(t, err)

	prompt, err := composer.Compose("what is Go?", nil)
	require.NoError(t, err)

	assert.Contains(t, prompt, "what is Go?")
	assert.Contains(t, prompt, "(no relevant documents found)")
}

func TestComposeGroupsBySource(t *testing.T) {
	composer, err := NewComposer()
	require.NoError(t, err)

	prompt, err := composer.Compose("question", []*core.RetrievalResult{
		result("a.txt", "first chunk from a"),
		result("b.txt", "chunk from b"),
		result("a.txt", "second chunk from a"),
	})
	require.NoError(t, err)

	// One section per source, in first-retrieved order.
	assert.Equal(t, 1, strings.Count(prompt, "=== a.txt ==="))
	assert.Equal(t, 1, strings.Count(prompt, "=== b.txt ==="))
	assert.Less(t, strings.Index(prompt, "=== a.txt ==="), strings.Index(prompt, "=== b.txt ==="))

	// Chunks from the same source are joined within its section.
	aSection := prompt[strings.Index(prompt, "=== a.txt ==="):strings.Index(prompt, "=== b.txt ===")]
	assert.Contains(t, aSection, "first chunk from a")
	assert.Contains(t, aSection, "second chunk from a")
}

func TestComposeTruncatesLongSources(t *testing.T) {
	composer, err := NewComposer(WithMaxSourceChars(100))
	require.NoError(t, err)

	long := strings.Repeat("x", 500)
	prompt, err := composer.Compose("question", []*core.RetrievalResult{
		result("big.txt", long),
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, strings.Repeat("x", 100)+"...")
	assert.NotContains(t, prompt, strings.Repeat("x", 101))
}

func TestComposeTruncatesOnRuneBoundary(t *testing.T) {
	composer, err := NewComposer(WithMaxSourceChars(10))
	require.NoError(t, err)

	// Byte 10 lands inside the two-byte "é"; the cut must back up to the
	// boundary instead of emitting a partial sequence.
	prompt, err := composer.Compose("pergunta", []*core.RetrievalResult{
		result("acentos.txt", strings.Repeat("a", 9)+"ééé"),
	})
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(prompt))
	assert.Contains(t, prompt, strings.Repeat("a", 9)+"...")
	assert.NotContains(t, prompt, "\xc3...")
}

func TestComposeIsDeterministic(t *testing.T) {
	composer, err := NewComposer()
	require.NoError(t, err)

	results := []*core.RetrievalResult{
		result("a.txt", "alpha"),
		result("b.txt", "bravo"),
		result("c.txt", "charlie"),
	}

	first, err := composer.Compose("same question", results)
	require.NoError(t, err)
	second, err := composer.Compose("same question", results)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComposeMissingSourceMetadata(t *testing.T) {
	composer, err := NewComposer()
	require.NoError(t, err)

	prompt, err := composer.Compose("question", []*core.RetrievalResult{
		{ChunkText: "orphan chunk"},
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "=== document ===")
	assert.Contains(t, prompt, "orphan chunk")
}

func TestNewComposerInvalidLimit(t *testing.T) {
	_, err := NewComposer(WithMaxSourceChars(0))
	assert.ErrorIs(t, err, ErrInvalidContextLimit)
}
