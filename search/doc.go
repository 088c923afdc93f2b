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

// Package search provides semantic retrieval over the vector index.
//
// The Retriever embeds a question and returns the nearest chunks by
// cosine distance. There is no relevance cutoff by default: distant
// chunks are returned and ranked rather than withheld, leaving the
// judgment of usefulness to the generation layer. An optional cutoff
// can be enabled with WithMaxDistance.
//
// A RetrievalMonitor can observe each stage of a retrieval, which is
// useful for debugging ranking behavior.
package search
