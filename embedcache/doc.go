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


// Package embedcache provides a persistent cache for embedding vectors,
// backed by BadgerDB with MUS-encoded records.
//
// The cache is a read-through wrapper around an ai.Embedder: repeated
// questions and deduplication comparisons skip the embedding service
// entirely. Keys are BLAKE2b content hashes namespaced by the embedding
// model identifier, so switching models never serves stale vectors. The
// corpus index itself is never written here; the cache holds only derived
// query vectors and can be deleted at any time.
package embedcache
