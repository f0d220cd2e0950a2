// Copyright 2025 the rgfe authors
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


package pipeline

import "errors"

var (
	// ErrIndexRequired is returned when an index is not provided.
	ErrIndexRequired = errors.New("index required")

	// ErrProviderRequired is returned when an AI provider is not provided.
	ErrProviderRequired = errors.New("AI provider required")

	// ErrClassificationParse indicates the relevance classifier returned
	// output that could not be parsed. Expected and recoverable: the batch
	// degrades to filtered defaults.
	ErrClassificationParse = errors.New("classification response unparseable")

	// ErrPhraseGeneration indicates no usable search phrase could be
	// produced. Expected and recoverable: retrieval falls back to the static
	// glossary rotation.
	ErrPhraseGeneration = errors.New("phrase generation failed")
)
