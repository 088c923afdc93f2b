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

// Package ingestion turns a directory of documents into vector index entries.
//
// The Indexer loads supported files, splits them into overlapping chunks,
// embeds the chunks in concurrent batches on a worker pool, and writes the
// results to the index in corpus order. Entry IDs derive from document
// identity and chunk position, so re-running an unchanged corpus overwrites
// entries in place instead of duplicating them.
//
// Failure handling is asymmetric on purpose. A document that cannot be
// read is logged, counted and skipped; the run continues. An embedding
// batch that still fails after retries aborts the run, because a partial
// index silently missing chunks is worse than a failed run.
package ingestion
