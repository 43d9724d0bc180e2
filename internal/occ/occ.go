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

// Package occ answers occurrence queries over a Burrows-Wheeler transform in constant time.
//
// The table stores one rank bit vector per non-terminator symbol. Vector c-1 has bit i set if and
// only if the symbol at BWT position i has an index in [1, c], i.e., the vectors are cumulative
// rather than one per symbol. Occurrences of exactly c and of all symbols below c are then
// differences of at most two ranks. The terminator appears exactly once and is stored as a
// position instead of a bit vector.
package occ

import "znkr.io/fmindex/internal/bitvec"

// Table is a cumulative occurrence table. It is read-only after construction.
type Table struct {
	bvs       []*bitvec.Vector
	dollarPos int
}

// New builds the table for bwt, which holds symbol indices in [0, sigma). Index 0 is the
// terminator and must appear exactly once.
func New(sigma int, bwt []byte) *Table {
	t := &Table{
		bvs:       make([]*bitvec.Vector, sigma-1),
		dollarPos: -1,
	}
	for i := range t.bvs {
		t.bvs[i] = bitvec.New(len(bwt))
	}
	for i, c := range bwt {
		if c == 0 {
			if t.dollarPos >= 0 {
				panic("occ: more than one terminator in BWT")
			}
			t.dollarPos = i
			continue
		}
		for j := int(c); j < sigma; j++ {
			t.bvs[j-1].Set(i, true)
		}
	}
	if t.dollarPos < 0 {
		panic("occ: no terminator in BWT")
	}
	for _, bv := range t.bvs {
		bv.Index()
	}
	return t
}

// Occ returns the number of occurrences of symbol c in BWT[0, j).
func (t *Table) Occ(c, j int) int {
	if c == 0 {
		return t.dollar(j)
	}
	return t.rank(c, j) - t.rank(c-1, j)
}

// CumulOcc returns the number of symbols strictly smaller than c in BWT[0, j), the terminator
// included.
func (t *Table) CumulOcc(c, j int) int {
	if c == 0 {
		return 0
	}
	return t.rank(c-1, j) + t.dollar(j)
}

// rank returns the number of non-terminator symbols <= c in BWT[0, j).
func (t *Table) rank(c, j int) int {
	if c == 0 {
		return 0
	}
	return t.bvs[c-1].Rank(j)
}

func (t *Table) dollar(j int) int {
	if t.dollarPos < j {
		return 1
	}
	return 0
}
