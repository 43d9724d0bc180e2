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

package fmindex

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
)

// suffixArray computes the suffix array of text by sorting all suffixes.
func suffixArray(text string) []Length {
	sa := make([]Length, len(text))
	for i := range sa {
		sa[i] = Length(i)
	}
	slices.SortFunc(sa, func(a, b Length) int {
		return strings.Compare(text[a:], text[b:])
	})
	return sa
}

// reversedText reverses text without its terminator and appends the terminator again.
func reversedText(text string) string {
	n := len(text)
	var sb strings.Builder
	for i := n - 2; i >= 0; i-- {
		sb.WriteByte(text[i])
	}
	sb.WriteByte(text[n-1])
	return sb.String()
}

func randomDNA(rng *rand.Rand, n int) string {
	const symbols = "ACGT"
	b := make([]byte, n)
	for i := range b {
		b[i] = symbols[rng.IntN(len(symbols))]
	}
	return string(b)
}

func newRand(seed string) *rand.Rand {
	var s [32]byte
	copy(s[:], seed)
	return rand.New(rand.NewChaCha8(s))
}

func mustNew(t testing.TB, text string, opts ...Option) *Index {
	t.Helper()
	idx, err := New(text, suffixArray(text), opts...)
	if err != nil {
		t.Fatalf("New(%q) failed: %v", text, err)
	}
	return idx
}

func mustNewBidirectional(t testing.TB, text string, opts ...Option) *BiIndex {
	t.Helper()
	bi, err := NewBidirectional(text, suffixArray(text), suffixArray(reversedText(text)), opts...)
	if err != nil {
		t.Fatalf("NewBidirectional(%q) failed: %v", text, err)
	}
	return bi
}

// editDistance is the textbook dynamic program.
func editDistance(a, b string) int {
	d := make([]int, len(b)+1)
	for j := range d {
		d[j] = j
	}
	for i := 1; i <= len(a); i++ {
		diag := d[0]
		d[0] = i
		for j := 1; j <= len(b); j++ {
			up := d[j]
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			d[j] = min(diag+cost, d[j-1]+1, up+1)
			diag = up
		}
	}
	return d[len(b)]
}

// approxOccurrences returns every substring of text (without terminator) with an edit distance
// of at most k to pattern, sorted by begin, end and distance.
func approxOccurrences(text, pattern string, k int) []TextOcc {
	var out []TextOcc
	n := len(text) - 1
	for b := range n {
		for e := b + 1; e <= min(n, b+len(pattern)+k); e++ {
			if d := editDistance(text[b:e], pattern); d <= k {
				out = append(out, TextOcc{Range: Range{Begin: Length(b), End: Length(e)}, Distance: d})
			}
		}
	}
	return out
}

func sortTextOccs(occs []TextOcc) {
	slices.SortFunc(occs, func(a, b TextOcc) int {
		if a.Range.Begin != b.Range.Begin {
			return int(a.Range.Begin) - int(b.Range.Begin)
		}
		if a.Range.End != b.Range.End {
			return int(a.Range.End) - int(b.Range.End)
		}
		return a.Distance - b.Distance
	})
}
