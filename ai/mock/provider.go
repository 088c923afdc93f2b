package mock

import "github.com/poiesic/oraculum/ai"

// Provider is a test double for ai.Provider. It wires together mock
// embedder and generation backends for pipeline-level tests.
type Provider struct {
	Emb  *Embedder
	Gens []*Generator
}

// NewProvider creates a provider with a default embedder and one generation
// backend answering with the given response.
func NewProvider(response string) *Provider {
	return &Provider{
		Emb:  NewEmbedder(),
		Gens: []*Generator{NewGenerator("mock", response)},
	}
}

// Embedder returns the mock embedder.
func (p *Provider) Embedder() ai.Embedder {
	return p.Emb
}

// Generators returns the mock generation backends in fallback order.
func (p *Provider) Generators() []ai.Generator {
	generators := make([]ai.Generator, len(p.Gens))
	for i, g := range p.Gens {
		generators[i] = g
	}
	return generators
}

// Close is a no-op.
func (p *Provider) Close() error {
	return nil
}
