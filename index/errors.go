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


package index

import "errors"

var (
	// ErrNotReady is returned when querying an index that has not been built.
	// This is a programming error, not a runtime condition to retry.
	ErrNotReady = errors.New("index: not built")

	// ErrDimensionMismatch is returned when a query embedding does not match
	// the dimension fixed by the loaded corpus.
	ErrDimensionMismatch = errors.New("index: embedding dimension mismatch")
)
