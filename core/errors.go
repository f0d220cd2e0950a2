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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidEntry indicates a CorpusEntry failed validation.
	ErrInvalidEntry = errors.New("invalid corpus entry")

	// ErrEmptyEntryID indicates the entry ID field is empty.
	ErrEmptyEntryID = errors.New("entry id cannot be empty")

	// ErrEmptyReference indicates the entry reference field is empty.
	ErrEmptyReference = errors.New("entry reference cannot be empty")

	// ErrInvalidReference indicates a locator could not be parsed.
	ErrInvalidReference = errors.New("invalid reference")
)
