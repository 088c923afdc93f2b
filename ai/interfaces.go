package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times,
	// but carries no other semantics: results match EmbedText output for each
	// input, in input order.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions reports the dimensionality of vectors this embedder
	// produces. Fixed for the lifetime of the embedder.
	Dimensions() int
}

// GenerationParams are the sampling parameters passed to a generation
// backend. Backends that do not support a parameter apply their nearest
// equivalent or ignore it; they never fail because of one.
type GenerationParams struct {
	// MaxTokens bounds the length of the generated completion.
	MaxTokens int

	// Temperature controls sampling randomness, in [0, 1].
	Temperature float64
}

// Generator produces text from a prompt. Implementations must be
// thread-safe for concurrent use.
type Generator interface {
	// Name identifies the backend, for logging and answer attribution.
	Name() string

	// Generate produces a completion for the prompt. A failure here is
	// recoverable: callers advance to the next backend in their chain.
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages the Embedder and the ordered
// list of generation backends, ensuring they share configuration.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generators returns the generation backends in fallback order,
	// most preferred first. The slice may be empty; callers are
	// expected to degrade gracefully.
	Generators() []Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
