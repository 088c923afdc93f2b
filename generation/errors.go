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

package generation

import "errors"

var (
	// ErrEmptyQuestion is returned for questions that are empty after trimming.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrInvalidContextLimit is returned for a non-positive context size limit.
	ErrInvalidContextLimit = errors.New("context limit must be positive")

	// ErrInvalidTimeout is returned for a non-positive backend timeout.
	ErrInvalidTimeout = errors.New("backend timeout must be positive")
)
