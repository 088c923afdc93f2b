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


// Package chunker turns document text into overlapping segments for
// embedding and retrieval.
//
// Chunks are cut on character budgets with cut points snapped to
// whitespace, so words are never split while whitespace is available.
// Each chunk overlaps its predecessor by a configured number of trailing
// characters, which keeps sentences that straddle a boundary retrievable
// from either side. Overlap never bleeds across documents: chunking is
// performed one document at a time.
//
// The concatenation of a document's chunks, with overlaps deduplicated,
// reconstructs the cleaned document text up to whitespace normalization
// at the cut points.
package chunker
