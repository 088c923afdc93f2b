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

// Package storage provides the storage abstraction layer for the vector index.
//
// This package defines repository interfaces that decouple storage implementation
// from business logic. It allows for different storage backends (BadgerDB, in-memory,
// etc.) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// This package follows a strict "return interface" pattern for all public constructors
// to enforce abstraction and enable multiple storage backend implementations:
//
//	index, err := badger.NewIndexRepository(backend)  // returns storage.IndexRepository
//
// This design decision prioritizes:
//   - Abstraction: Prevents accidental coupling to BadgerDB specifics
//   - Swappability: Easy to add alternative backends (PostgreSQL, in-memory, etc.)
//   - Testing: Consumers can use mock implementations without modification
//
// Internal package constructors (newIndexRepository, etc.) may return concrete
// types since they're only used within the implementation package.
//
// # Index Semantics
//
// The index stores one entry per document chunk, keyed by a content-derived ID.
// Adding the same chunk twice overwrites the prior entry, so re-indexing an
// unchanged corpus is harmless. The dimensionality of the first entry added is
// pinned for the lifetime of the index; mixing embedding models requires a
// Clear first.
//
// # Usage
//
// Create an index instance:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	index, err := badger.NewIndexRepository(backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer index.Close()
//	defer backend.Close()
//
// Use in tests with in-memory storage:
//
//	index, backend, err := badger.NewMemoryIndex()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
