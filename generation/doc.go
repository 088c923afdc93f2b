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

// Package generation turns retrieved context into answers.
//
// The Composer renders a deterministic prompt: chunks grouped by source
// document, each source capped to a character budget, followed by an
// instruction block that confines the model to the provided context.
//
// The Router walks an ordered list of backends and returns the first
// successful completion. A query never hard-fails because models are
// down; the router degrades to echoing the retrieved passages, clearly
// labeled as such, so retrieval results remain useful on machines
// without a working generation model.
package generation
