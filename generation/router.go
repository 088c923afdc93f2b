package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/oraculum/ai"
	"github.com/poiesic/oraculum/core"
)

const defaultBackendTimeout = 120 * time.Second

// Router tries generation backends in order until one produces an answer.
// Backend failures are recoverable: when every backend fails, the router
// returns a degraded answer that echoes the retrieved context instead of
// failing the query.
type Router struct {
	generators []ai.Generator
	composer   *Composer
	timeout    time.Duration
	logger     *slog.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router) error

// WithBackendTimeout bounds each backend attempt. A backend that exceeds
// the timeout is treated as failed and the next one is tried.
// Default is 120 seconds.
func WithBackendTimeout(timeout time.Duration) RouterOption {
	return func(r *Router) error {
		if timeout <= 0 {
			return ErrInvalidTimeout
		}
		r.timeout = timeout
		return nil
	}
}

// WithComposer sets a custom prompt composer.
func WithComposer(composer *Composer) RouterOption {
	return func(r *Router) error {
		if composer != nil {
			r.composer = composer
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRouter creates a router over the given backends, tried in order.
// An empty backend list is allowed; every query then degrades to a
// context echo.
func NewRouter(generators []ai.Generator, opts ...RouterOption) (*Router, error) {
	composer, err := NewComposer()
	if err != nil {
		return nil, err
	}

	r := &Router{
		generators: generators,
		composer:   composer,
		timeout:    defaultBackendTimeout,
		logger:     slog.Default().With("component", "generation-router"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Answer generates an answer to the question from the retrieved context.
// The only error paths are an empty question and a cancelled context;
// backend failures surface as a degraded answer instead.
func (r *Router) Answer(ctx context.Context, question string, results []*core.RetrievalResult, params ai.GenerationParams) (*core.Answer, error) {
	prompt, err := r.composer.Compose(question, results)
	if err != nil {
		return nil, err
	}

	sources := collectSources(results)

	for _, generator := range r.generators {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		text, err := r.tryBackend(ctx, generator, prompt, params)
		if err != nil {
			r.logger.Warn("generation backend failed, trying next",
				"backend", generator.Name(), "err", err)
			continue
		}

		return &core.Answer{
			Text:    text,
			Backend: generator.Name(),
			Sources: sources,
		}, nil
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	r.logger.Warn("all generation backends failed, returning retrieved context",
		"backends", len(r.generators))

	return &core.Answer{
		Text:     r.degradedText(results),
		Degraded: true,
		Sources:  sources,
	}, nil
}

// tryBackend runs one backend attempt under the configured timeout.
func (r *Router) tryBackend(ctx context.Context, generator ai.Generator, prompt string, params ai.GenerationParams) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return generator.Generate(attemptCtx, prompt, params)
}

// degradedText renders the fallback answer shown when no backend responds.
func (r *Router) degradedText(results []*core.RetrievalResult) string {
	if len(results) == 0 {
		return "No generation model is available and no relevant documents were found."
	}

	return fmt.Sprintf("No generation model is available. Showing the most relevant passages instead:\n\n%s",
		r.composer.contextBlock(results))
}

// collectSources deduplicates source documents from retrieval results,
// keeping the closest distance per document in retrieval order.
func collectSources(results []*core.RetrievalResult) []core.Source {
	var sources []core.Source
	seen := make(map[string]bool)
	for _, result := range results {
		source := result.Metadata["source"]
		if source == "" || seen[source] {
			continue
		}
		seen[source] = true
		sources = append(sources, core.Source{
			Filename: source,
			Distance: result.Distance,
		})
	}
	return sources
}
