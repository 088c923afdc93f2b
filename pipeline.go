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

package oraculum

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/oraculum/ai"
	"github.com/poiesic/oraculum/ai/openai"
	"github.com/poiesic/oraculum/chunker"
	"github.com/poiesic/oraculum/config"
	"github.com/poiesic/oraculum/core"
	"github.com/poiesic/oraculum/generation"
	"github.com/poiesic/oraculum/ingestion"
	"github.com/poiesic/oraculum/search"
	"github.com/poiesic/oraculum/storage"
	"github.com/poiesic/oraculum/storage/badger"
)

// Pipeline wires the document indexer, retriever and generation router
// into the public index-then-query operations. Backends and the vector
// store are owned by the pipeline and live until Close.
type Pipeline struct {
	cfg       config.Config
	backend   *badger.Backend
	index     storage.IndexRepository
	provider  ai.Provider
	chunker   *chunker.Chunker
	indexer   *ingestion.Indexer
	retriever *search.Retriever
	router    *generation.Router
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*pipelineOptions)

type pipelineOptions struct {
	provider ai.Provider
	inMemory bool
	progress io.Writer
}

// WithProvider injects an AI provider, replacing the default
// OpenAI-compatible one. Used by tests to avoid a model server.
func WithProvider(provider ai.Provider) Option {
	return func(o *pipelineOptions) {
		o.provider = provider
	}
}

// WithInMemoryStore uses a non-persistent vector store.
func WithInMemoryStore() Option {
	return func(o *pipelineOptions) {
		o.inMemory = true
	}
}

// WithProgress sets where indexing progress output is written.
// Default is io.Discard.
func WithProgress(w io.Writer) Option {
	return func(o *pipelineOptions) {
		o.progress = w
	}
}

// New creates a pipeline from the given configuration. The embedding
// backend is probed during construction, so an unreachable model fails
// here rather than on first use.
func New(cfg config.Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &pipelineOptions{progress: io.Discard}
	for _, opt := range opts {
		opt(options)
	}

	ck, err := chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(cfg.Store.Path, options.inMemory)
	if err != nil {
		return nil, err
	}

	index, err := badger.NewIndexRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		aiConfig := ai.NewConfig(
			ai.WithEmbeddingHost(cfg.AI.EmbeddingHost),
			ai.WithGenerationHost(cfg.AI.GenerationHost),
			ai.WithEmbeddingModel(cfg.AI.EmbeddingModel),
			ai.WithGenerationModels(cfg.AI.GenerationModels...),
		)

		provider, err = openai.NewProvider(aiConfig)
		if err != nil {
			index.Close()
			backend.Close()
			return nil, err
		}
	}

	indexer, err := ingestion.NewIndexer(cfg.Documents.Path, index, provider.Embedder(), ck,
		ingestion.WithBatchSize(cfg.Indexing.BatchSize),
		ingestion.WithRetry(cfg.Indexing.MaxRetries, time.Duration(cfg.Indexing.RetryDelaySec)*time.Second),
		ingestion.WithProgress(options.progress),
	)
	if err != nil {
		provider.Close()
		index.Close()
		backend.Close()
		return nil, err
	}
	if cfg.Indexing.PoolSize > 0 {
		// Recreate the worker pool at the configured size.
		if err := ingestion.WithPoolSize(cfg.Indexing.PoolSize)(indexer); err != nil {
			indexer.Release()
			provider.Close()
			index.Close()
			backend.Close()
			return nil, err
		}
	}

	retriever, err := search.NewRetriever(index, provider.Embedder())
	if err != nil {
		indexer.Release()
		provider.Close()
		index.Close()
		backend.Close()
		return nil, err
	}

	composer, err := generation.NewComposer(generation.WithMaxSourceChars(cfg.Query.MaxSourceChars))
	if err != nil {
		indexer.Release()
		provider.Close()
		index.Close()
		backend.Close()
		return nil, err
	}

	router, err := generation.NewRouter(provider.Generators(),
		generation.WithComposer(composer),
		generation.WithBackendTimeout(time.Duration(cfg.AI.GenerationTimeoutSec)*time.Second),
	)
	if err != nil {
		indexer.Release()
		provider.Close()
		index.Close()
		backend.Close()
		return nil, err
	}

	return &Pipeline{
		cfg:       cfg,
		backend:   backend,
		index:     index,
		provider:  provider,
		chunker:   ck,
		indexer:   indexer,
		retriever: retriever,
		router:    router,
		logger:    slog.Default().With("component", "pipeline"),
	}, nil
}

// IndexDocuments ingests the configured document directory.
// With force set, the index is rebuilt from scratch.
func (p *Pipeline) IndexDocuments(ctx context.Context, force bool) (*ingestion.Report, error) {
	return p.indexer.Run(ctx, force)
}

// QueryOptions adjusts a single query.
type QueryOptions struct {
	// NResults overrides the configured number of retrieved chunks.
	// Zero keeps the configured default.
	NResults int

	// ShowSources includes source provenance in the answer.
	ShowSources bool
}

// Query answers a question from the indexed corpus. The answer may be
// degraded when no generation backend responds, but a query against a
// healthy embedder never hard-fails on generation problems.
func (p *Pipeline) Query(ctx context.Context, question string, opts QueryOptions) (*core.Answer, error) {
	k := opts.NResults
	if k <= 0 {
		k = p.cfg.Query.NResults
	}

	results, err := p.retriever.Retrieve(ctx, question, k)
	if err != nil {
		return nil, err
	}

	answer, err := p.router.Answer(ctx, question, results, ai.GenerationParams{
		MaxTokens:   p.cfg.Query.MaxTokens,
		Temperature: p.cfg.Query.Temperature,
	})
	if err != nil {
		return nil, err
	}

	if !opts.ShowSources {
		answer.Sources = nil
	}

	return answer, nil
}

// Stats describes the pipeline's current corpus and index state.
type Stats struct {
	Documents  int
	Entries    int
	Dimensions int
}

// Stats reports the number of source documents and the index contents.
// A missing documents directory reports zero documents, not an error.
func (p *Pipeline) Stats(ctx context.Context) (*Stats, error) {
	indexStats, err := p.index.Stats(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Documents:  p.countDocuments(),
		Entries:    indexStats.EntryCount,
		Dimensions: indexStats.Dimensions,
	}, nil
}

// Close releases all pipeline resources.
func (p *Pipeline) Close() error {
	p.indexer.Release()

	if err := p.provider.Close(); err != nil {
		p.logger.Error("error closing AI provider", "err", err)
	}

	if err := p.index.Close(); err != nil {
		p.logger.Error("error closing vector index", "err", err)
		return err
	}

	if err := p.backend.Close(); err != nil {
		p.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// countDocuments counts supported files in the documents directory.
func (p *Pipeline) countDocuments() int {
	entries, err := os.ReadDir(p.cfg.Documents.Path)
	if err != nil {
		return 0
	}

	count := 0
	for _, dirEntry := range entries {
		if dirEntry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(dirEntry.Name())) {
		case ".txt", ".md":
			count++
		}
	}
	return count
}
