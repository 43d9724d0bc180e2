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

// Package sparsesa provides a sampled suffix array.
//
// Only suffix array entries whose value is a multiple of the sparseness factor are kept. A bit
// vector over the rows marks which rows are stored and its rank maps a stored row to its slot in
// the compact value array. Because every LF step decreases a suffix array value by one, a row
// that is not stored reaches a stored row after fewer than factor LF steps.
package sparsesa

import "znkr.io/fmindex/internal/bitvec"

// Array is a sampled suffix array. It is read-only after construction.
type Array struct {
	factor uint32
	marked *bitvec.Vector
	values []uint32
}

// New samples the dense suffix array sa with the given sparseness factor. A factor of 1 stores
// every entry.
func New(sa []uint32, factor int) *Array {
	if factor < 1 {
		panic("sparsesa: sparseness factor must be positive")
	}
	f := uint32(factor)
	marked := bitvec.New(len(sa))
	values := make([]uint32, 0, len(sa)/factor+1)
	for row, v := range sa {
		if v%f == 0 {
			marked.Set(row, true)
			values = append(values, v)
		}
	}
	marked.Index()
	return &Array{
		factor: f,
		marked: marked,
		values: values,
	}
}

// Factor returns the sparseness factor.
func (a *Array) Factor() int { return int(a.factor) }

// Stored returns the number of sampled entries.
func (a *Array) Stored() int { return len(a.values) }

// HasStored reports whether the entry of row is kept.
func (a *Array) HasStored(row uint32) bool { return a.marked.Get(int(row)) }

// At returns the suffix array value of row. It panics if row is not stored.
func (a *Array) At(row uint32) uint32 {
	if !a.HasStored(row) {
		panic("sparsesa: row is not stored")
	}
	return a.values[a.marked.Rank(int(row))]
}
