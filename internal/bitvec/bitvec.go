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

// Package bitvec provides a fixed size bit vector with constant time rank queries.
//
// The auxiliary structure follows Vigna's rank9 layout. For every block of eight 64-bit words two
// counters are stored next to each other: the number of set bits before the block, and seven 9-bit
// fields holding the number of set bits in the block before word 1, ..., 7. A rank query reads both
// counters and does a single population count on the remaining bits of one word.
//
// A Vector is built in two phases. Bits are set with [Vector.Set], then [Vector.Index] computes the
// counters. After that, the vector is read-only.
//
// # References
//
// Vigna, S. Broadword Implementation of Rank/Select Queries. WEA 2008, LNCS 5038, 154-168.
// https://doi.org/10.1007/978-3-540-68552-4_12
package bitvec

import "math/bits"

const (
	wordBits   = 64
	blockWords = 8
	fieldBits  = 9
	fieldMask  = 1<<fieldBits - 1
)

// Vector is a bit vector of fixed length supporting rank queries once indexed.
type Vector struct {
	n       int
	words   []uint64
	counts  []uint64 // interleaved first and second level counters, two per block
	indexed bool
}

// New creates a vector of n unset bits.
func New(n int) *Vector {
	if n < 0 {
		panic("bitvec: negative length")
	}
	// One spare word so that Rank(n) never reads past the end.
	return &Vector{
		n:     n,
		words: make([]uint64, n/wordBits+1),
	}
}


// Get returns bit p.
func (v *Vector) Get(p int) bool {
	v.check(p)
	return v.words[p/wordBits]&(1<<(p%wordBits)) != 0
}

// Set sets bit p to b. It panics if v has already been indexed.
func (v *Vector) Set(p int, b bool) {
	if v.indexed {
		panic("bitvec: Set after Index")
	}
	v.check(p)
	if b {
		v.words[p/wordBits] |= 1 << (p % wordBits)
	} else {
		v.words[p/wordBits] &^= 1 << (p % wordBits)
	}
}

func (v *Vector) check(p int) {
	if p < 0 || p >= v.n {
		panic("bitvec: index out of range")
	}
}

// Index builds the rank counters. It must be called exactly once, after all bits have been set and
// before the first call to [Vector.Rank].
func (v *Vector) Index() {
	if v.indexed {
		panic("bitvec: Index called twice")
	}
	nblocks := (len(v.words) + blockWords - 1) / blockWords
	v.counts = make([]uint64, 2*nblocks)

	var total uint64
	for w, word := range v.words {
		q := (w / blockWords) * 2
		t := w % blockWords
		if t == 0 {
			v.counts[q] = total
		} else {
			inBlock := total - v.counts[q]
			v.counts[q+1] |= inBlock << ((t - 1) * fieldBits)
		}
		total += uint64(bits.OnesCount64(word))
	}
	v.indexed = true
}

// Rank returns the number of set bits in [0, p) for 0 <= p <= n, where n is the length of v.
func (v *Vector) Rank(p int) int {
	if !v.indexed {
		panic("bitvec: Rank before Index")
	}
	if p < 0 || p > v.n {
		panic("bitvec: rank position out of range")
	}
	w, b := p/wordBits, p%wordBits
	q := (w / blockWords) * 2

	// For the first word in a block, t wraps around and the shift selects the unused top bit of
	// the second counter, which is always zero.
	t := uint64(w%blockWords) - 1
	r := v.counts[q] + (v.counts[q+1]>>((t+(t>>60&8))*fieldBits))&fieldMask
	return int(r) + bits.OnesCount64(v.words[w]&(1<<b-1))
}
