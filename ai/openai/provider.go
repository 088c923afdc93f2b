// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"log/slog"

	"github.com/poiesic/oraculum/ai"
)

// Provider implements ai.Provider using OpenAI-compatible services.
// It manages the embedder and the ordered generation backends.
type Provider struct {
	config     *ai.Config
	embedder   *Embedder
	generators []ai.Generator
	logger     *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use. One generation
// backend is created per configured model, preserving fallback order.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create embedder (using internal constructor for concrete type)
	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	// Create one generation backend per configured model. A backend that
	// fails to construct is skipped with a warning: generation failures
	// are recoverable through the fallback chain, unlike embedding ones.
	logger := slog.Default().With("component", "openai-provider")
	generators := make([]ai.Generator, 0, len(config.GenerationModels))
	for _, model := range config.GenerationModels {
		generator, err := newGenerator(config.GenerationHost, model)
		if err != nil {
			logger.Warn("skipping generation backend", "model", model, "err", err)
			continue
		}
		generators = append(generators, generator)
	}

	return &Provider{
		config:     config,
		embedder:   embedder,
		generators: generators,
		logger:     logger,
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Generators returns the generation backends in fallback order.
func (p *Provider) Generators() []ai.Generator {
	return p.generators
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
