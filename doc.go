// Copyright 2025 Florian Zenker (flo@znkr.io)
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

// Package fmindex provides a succinct full-text index (FM-index) for exact and approximate pattern
// search over a fixed reference text, as used for mapping sequencing reads to a reference genome.
//
// An [Index] is built from a text that ends with a unique terminator and from the suffix array of
// that text. It answers exact queries with backward search ([Index.MatchExact]) and approximate
// queries, bounded by an edit distance k, with a depth-first branch-and-bound search that aligns
// the pattern against a banded dynamic programming matrix ([Index.NaiveApproxMatch]).
//
// A [BiIndex] additionally knows the suffix array of the reversed text, which lets it extend a
// match in both directions. It is the basis for search schemes (see [znkr.io/fmindex/scheme]),
// which split the pattern into parts and prune the search tree far more aggressively.
//
// Performance: rank queries are O(1). Exact search takes O(m) rank queries for a pattern of length
// m, plus O(s) LF steps per reported occurrence where s is the [SparseFactor]. The index occupies
// about σ-1 bits per text character for the occurrence table, plus the sampled suffix array.
//
// Indexes are immutable after construction and can be shared by multiple goroutines.
//
// [znkr.io/fmindex/scheme]: https://pkg.go.dev/znkr.io/fmindex/scheme
package fmindex

import "github.com/npillmayer/schuko/tracing"

func tracer() tracing.Trace {
	return tracing.Select("fmindex")
}
