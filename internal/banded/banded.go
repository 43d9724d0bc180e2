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

// Package banded contains a banded dynamic programming matrix for edit distance computations.
//
// Rows correspond to characters consumed while descending the search tree (text side), columns to
// pattern positions. Row i and column j hold the edit distance between the first i consumed
// characters and the first j pattern characters. Only cells with |i-j| <= W are computed, where W
// is the number of edits that are still allowed:
//
//	      0   1   2   3   4   5
//	 0  [ 0   1   2   3 ]
//	 1  [ 1   .   .   .   # ]
//	 2  [ 2   .   .   .   .   # ]
//	 3    3   .   .   .   .   .
//	 4        #   .   .   .   .
//	 5            #   .   .   .
//	 6                #   .   .
//	 7                    #   .
//
// The example shows a pattern of length 5 and W = 2. Row 0 and column 0 hold their index up to
// W+1. The cells marked # are the remaining out-of-band neighbours of the band. They hold a
// sentinel that is larger than any value that can pass a bound check, so the recurrence never
// picks them. The matrix has patternLen+W+1 rows, because a
// path through the band can consume up to W more characters than the pattern has.
//
// All values are offset by a start value, which is the edit distance accumulated before the
// matrix was created. This lets a chain of matrices, one per pattern part, compare cells directly
// with absolute bounds.
package banded

import "math"

// Pattern is the part of a pattern a matrix aligns against, in the order in which it is consumed.
type Pattern interface {
	Len() int
	At(i int) byte
}

// Matrix is a banded edit distance matrix.
type Matrix struct {
	cells  []int
	w      int
	rows   int // number of rows
	cols   int // number of columns, pattern length + 1
	stride int // materialized cells per row
}

// New creates a matrix for a pattern of length patternLen, band half-width w and start value
// start.
func New(patternLen, w, start int) *Matrix {
	if patternLen < 0 || w < 0 {
		panic("banded: negative dimensions")
	}
	m := &Matrix{
		w:      w,
		rows:   patternLen + w + 1,
		cols:   patternLen + 1,
		stride: 2*w + 3,
	}
	m.cells = make([]int, m.rows*m.stride)
	m.init(start)
	return m
}

func (m *Matrix) init(start int) {
	w := m.w
	sentinel := w + 2 + start

	// Top row and leftmost column.
	for i := 0; i <= w+1; i++ {
		if i < m.cols {
			m.set(0, i, i+start)
		}
		if i < m.rows {
			m.set(i, 0, i+start)
		}
	}
	// Below row 0 and right of column 0, the first cell outside the band holds the sentinel.
	for i := 1; i < m.rows; i++ {
		if j := i + w + 1; j < m.cols {
			m.set(i, j, sentinel)
		}
		if j := i - w - 1; j >= 1 {
			m.set(i, j, sentinel)
		}
	}
}

func (m *Matrix) index(row, col int) int {
	d := col - row + m.w + 1
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols || d < 0 || d >= m.stride {
		panic("banded: cell outside of the matrix")
	}
	return row*m.stride + d
}

func (m *Matrix) set(row, col, v int) { m.cells[m.index(row, col)] = v }

// At returns the value of cell (row, col). The cell must be within distance W+1 of the diagonal.
func (m *Matrix) At(row, col int) int { return m.cells[m.index(row, col)] }

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// FirstColumn returns the leftmost computed column of row.
func (m *Matrix) FirstColumn(row int) int { return max(1, row-m.w) }

// LastColumn returns the rightmost computed column of row.
func (m *Matrix) LastColumn(row int) int { return min(m.cols-1, row+m.w) }

// UpdateCell computes cell (row, col) from its neighbours and returns the new value.
func (m *Matrix) UpdateCell(mismatch bool, row, col int) int {
	var v int
	switch {
	case col == 0:
		v = row
	case row == 0:
		v = col
	default:
		diag := m.At(row-1, col-1)
		if mismatch {
			diag++
		}
		v = min(diag, m.At(row, col-1)+1, m.At(row-1, col)+1)
	}
	m.set(row, col, v)
	return v
}

// UpdateRow computes all cells of row (row >= 1) given that c is the character consumed at that
// row. It returns the smallest value in the row and the column where it was found.
func (m *Matrix) UpdateRow(p Pattern, row int, c byte) (minValue, minCol int) {
	first, last := m.FirstColumn(row), m.LastColumn(row)
	minValue, minCol = math.MaxInt, first
	for col := first; col <= last; col++ {
		v := m.UpdateCell(p.At(col-1) != c, row, col)
		if v < minValue {
			minValue, minCol = v, col
		}
	}
	return minValue, minCol
}

// InFinalColumn reports whether the band of row reaches the last column, i.e., whether a path
// ending in this row can have consumed the whole pattern.
func (m *Matrix) InFinalColumn(row int) bool { return m.LastColumn(row) == m.cols-1 }

// FinalValue returns the value in the last column of row. It panics if the band of row does not
// reach the last column.
func (m *Matrix) FinalValue(row int) int {
	if !m.InFinalColumn(row) {
		panic("banded: row does not reach the final column")
	}
	return m.At(row, m.cols-1)
}
