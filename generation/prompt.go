package generation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/oraculum/core"
)

const (
	defaultMaxSourceChars = 2500

	promptTemplate = `You are a precise technical assistant. Your job is to answer based EXCLUSIVELY on the provided context.

CONTEXT:
%s

INSTRUCTIONS:
1. Read the context carefully before answering.
2. Use ONLY information stated explicitly in the context.
3. Never invent, interpret or assume information that is not written there.
4. Quote literal passages from the context when possible.
5. If the context does not contain the answer, say so plainly instead of guessing.

Question: %s

Answer (be precise and literal):`
)

// Composer builds generation prompts from retrieved chunks.
// Chunks are grouped by source document in first-retrieved order, and each
// source's combined text is truncated to a configurable budget so a single
// long document cannot crowd out the rest of the context.
type Composer struct {
	maxSourceChars int
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer) error

// WithMaxSourceChars sets the character budget per source document.
// Default is 2500.
func WithMaxSourceChars(limit int) ComposerOption {
	return func(c *Composer) error {
		if limit <= 0 {
			return ErrInvalidContextLimit
		}
		c.maxSourceChars = limit
		return nil
	}
}

// NewComposer creates a prompt composer.
func NewComposer(opts ...ComposerOption) (*Composer, error) {
	c := &Composer{maxSourceChars: defaultMaxSourceChars}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Compose builds the full prompt for a question and its retrieved context.
// Identical inputs always produce the identical prompt.
func (c *Composer) Compose(question string, results []*core.RetrievalResult) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	return fmt.Sprintf(promptTemplate, c.contextBlock(results), question), nil
}

// contextBlock renders retrieved chunks grouped by source document.
func (c *Composer) contextBlock(results []*core.RetrievalResult) string {
	if len(results) == 0 {
		return "(no relevant documents found)"
	}

	var order []string
	bySource := make(map[string][]string)
	for _, result := range results {
		source := result.Metadata["source"]
		if source == "" {
			source = "document"
		}
		if _, seen := bySource[source]; !seen {
			order = append(order, source)
		}
		bySource[source] = append(bySource[source], result.ChunkText)
	}

	sections := make([]string, 0, len(order))
	for _, source := range order {
		combined := strings.Join(bySource[source], "\n\n")
		if len(combined) > c.maxSourceChars {
			// Back the cut up to a rune boundary so the prompt never
			// carries a partial UTF-8 sequence.
			cut := c.maxSourceChars
			for cut > 0 && !utf8.RuneStart(combined[cut]) {
				cut--
			}
			combined = combined[:cut] + "..."
		}
		sections = append(sections, fmt.Sprintf("=== %s ===\n%s", source, combined))
	}

	return strings.Join(sections, "\n\n")
}
