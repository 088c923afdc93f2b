package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/oraculum/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client llms.Model
	model  string
	logger *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instances in its fallback chain.
func newGenerator(host, model string) (*Generator, error) {
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(host),
		openai.WithToken("none"),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client: client,
		model:  model,
		logger: slog.Default().With("component", "openai-generator", "model", model),
	}, nil
}

// NewGenerator creates a generation backend for a single model.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(host, model string) (ai.Generator, error) {
	return newGenerator(host, model)
}

// Name identifies the backend by its model identifier.
func (g *Generator) Name() string {
	return g.model
}

// Generate produces a completion for the prompt. Sampling parameters are
// passed through unchanged; the backend applies its nearest equivalent
// for anything it does not support.
func (g *Generator) Generate(ctx context.Context, prompt string, params ai.GenerationParams) (string, error) {
	g.logger.Debug("generating completion", "promptLength", len(prompt),
		"maxTokens", params.MaxTokens, "temperature", params.Temperature)

	opts := []llms.CallOption{
		llms.WithTemperature(params.Temperature),
	}
	if params.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(params.MaxTokens))
	}

	completion, err := llms.GenerateFromSinglePrompt(ctx, g.client, prompt, opts...)
	if err != nil {
		g.logger.Error("failed to generate completion", "err", err)
		return "", err
	}

	if completion == "" {
		return "", ai.ErrEmptyResult
	}

	return completion, nil
}
