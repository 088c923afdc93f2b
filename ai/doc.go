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


// Package ai provides abstractions for the AI services used in Oraculum.
//
// This package defines interfaces for text embeddings and answer
// generation. It follows the dependency inversion principle, allowing the
// core pipeline to depend on abstractions rather than concrete
// implementations.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: generates vector embeddings from text
//   - Generator: produces a completion from a prompt
//   - Provider: aggregates the embedder and the ordered generator chain
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external services
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// INTERFACE types to enforce abstraction and prevent accidental coupling to
// concrete implementations.
//
//	provider, err := openai.NewProvider(config)  // returns ai.Provider
//
// Test utility constructors (mock.NewEmbedder, mock.NewGenerator) return
// CONCRETE types to enable test assertions and behavior injection via the
// mock's public fields and methods.
//
// # Failure Semantics
//
// Embedder construction probes the backing model and fails fast with
// ErrModelUnavailable when it cannot be loaded, so that indexing and
// querying can refuse to start instead of failing mid-run. Generator
// failures, by contrast, are expected at runtime and are absorbed by the
// generation router's fallback chain.
package ai
