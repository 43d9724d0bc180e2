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

package banded

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type pattern string

func (p pattern) Len() int      { return len(p) }
func (p pattern) At(i int) byte { return p[i] }

func reversed(s string) pattern {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return pattern(b)
}

func TestInit(t *testing.T) {
	m := New(5, 2, 0)

	var row0 []int
	for col := 0; col <= 3; col++ {
		row0 = append(row0, m.At(0, col))
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3}, row0); diff != "" {
		t.Errorf("row 0 differs [-want,+got]:\n%s", diff)
	}

	var col0 []int
	for row := 0; row <= 3; row++ {
		col0 = append(col0, m.At(row, 0))
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3}, col0); diff != "" {
		t.Errorf("column 0 differs [-want,+got]:\n%s", diff)
	}

	sentinels := [][2]int{{1, 4}, {2, 5}, {4, 1}, {5, 2}, {6, 3}, {7, 4}}
	for _, c := range sentinels {
		if got := m.At(c[0], c[1]); got != 4 {
			t.Errorf("At(%d, %d) = %d, want sentinel 4", c[0], c[1], got)
		}
	}
	if m.Rows() != 8 {
		t.Errorf("Rows() = %d, want 8", m.Rows())
	}
}

func TestInitStartValue(t *testing.T) {
	m := New(5, 1, 3)
	tests := []struct {
		row, col int
		want     int
	}{
		{0, 0, 3},
		{0, 1, 4},
		{0, 2, 5},
		{1, 0, 4},
		{2, 0, 5},
		{1, 3, 6}, // sentinel
		{3, 1, 6}, // sentinel
	}
	for _, tt := range tests {
		if got := m.At(tt.row, tt.col); got != tt.want {
			t.Errorf("At(%d, %d) = %d, want %d", tt.row, tt.col, got, tt.want)
		}
	}
}

func TestColumns(t *testing.T) {
	m := New(10, 3, 0)
	tests := []struct {
		row         int
		first, last int
		final       bool
	}{
		{row: 1, first: 1, last: 4},
		{row: 4, first: 1, last: 7},
		{row: 7, first: 4, last: 10, final: true},
		{row: 13, first: 10, last: 10, final: true},
	}
	for _, tt := range tests {
		if got := m.FirstColumn(tt.row); got != tt.first {
			t.Errorf("FirstColumn(%d) = %d, want %d", tt.row, got, tt.first)
		}
		if got := m.LastColumn(tt.row); got != tt.last {
			t.Errorf("LastColumn(%d) = %d, want %d", tt.row, got, tt.last)
		}
		if got := m.InFinalColumn(tt.row); got != tt.final {
			t.Errorf("InFinalColumn(%d) = %v, want %v", tt.row, got, tt.final)
		}
	}
}

func TestUpdateRow(t *testing.T) {
	const k = 4
	p := reversed("ACGTACGTAAGGCAGAT")
	m := New(p.Len(), k, 0)

	for _, c := range []byte("ACG") {
		if got, _ := m.UpdateRow(p, 1, c); got != 1 {
			t.Errorf("UpdateRow(p, 1, %q) = %d, want 1", c, got)
		}
	}
	if got, col := m.UpdateRow(p, 1, 'T'); got != 0 || col != 1 {
		t.Errorf("UpdateRow(p, 1, 'T') = %d, %d, want 0, 1", got, col)
	}
	for col := 1; col < 5; col++ {
		if got := m.At(1, col); got != col-1 {
			t.Errorf("At(1, %d) = %d, want %d", col, got, col-1)
		}
	}

	if got, _ := m.UpdateRow(p, 2, 'A'); got != 0 {
		t.Errorf("UpdateRow(p, 2, 'A') = %d, want 0", got)
	}
	if got, _ := m.UpdateRow(p, 3, 'G'); got != 0 {
		t.Errorf("UpdateRow(p, 3, 'G') = %d, want 0", got)
	}
	if got, col := m.UpdateRow(p, 4, 'C'); got != 1 || col != 3 {
		t.Errorf("UpdateRow(p, 4, 'C') = %d, %d, want 1, 3", got, col)
	}

	var row4 []int
	for col := 1; col <= m.LastColumn(4); col++ {
		row4 = append(row4, m.At(4, col))
	}
	if diff := cmp.Diff([]int{3, 2, 1, 1, 1, 2, 3, 4}, row4); diff != "" {
		t.Errorf("row 4 differs [-want,+got]:\n%s", diff)
	}

	// Keep consuming characters that never match, the row minimum eventually exceeds k.
	minValue := 0
	for row := 5; row < m.Rows() && minValue <= k; row++ {
		minValue, _ = m.UpdateRow(p, row, 'N')
	}
	if minValue <= k {
		t.Errorf("row minimum after mismatching rows = %d, want > %d", minValue, k)
	}
}

// editDistance computes the full, unbanded matrix.
func editDistance(text, p string) [][]int {
	d := make([][]int, len(text)+1)
	for i := range d {
		d[i] = make([]int, len(p)+1)
		d[i][0] = i
	}
	for j := range d[0] {
		d[0][j] = j
	}
	for i := 1; i <= len(text); i++ {
		for j := 1; j <= len(p); j++ {
			sub := d[i-1][j-1]
			if text[i-1] != p[j-1] {
				sub++
			}
			d[i][j] = min(sub, d[i-1][j]+1, d[i][j-1]+1)
		}
	}
	return d
}

func TestAgainstFullMatrix(t *testing.T) {
	rnd := rand.New(rand.NewPCG(7, 11))
	randomDNA := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = "ACGT"[rnd.IntN(4)]
		}
		return string(b)
	}

	for iter := range 50 {
		w := rnd.IntN(4)
		start := rnd.IntN(3)
		p := randomDNA(3 + rnd.IntN(15))
		text := randomDNA(len(p) + w)
		t.Run(fmt.Sprintf("%d/w=%d", iter, w), func(t *testing.T) {
			m := New(len(p), w, start)
			full := editDistance(text, p)
			for row := 1; row < m.Rows(); row++ {
				m.UpdateRow(pattern(p), row, text[row-1])
				for col := m.FirstColumn(row); col <= m.LastColumn(row); col++ {
					got := min(m.At(row, col), w+1+start)
					want := min(full[row][col]+start, w+1+start)
					if got != want {
						t.Fatalf("text %q, pattern %q: cell (%d, %d) = %d, want %d (capped at %d)",
							text, p, row, col, m.At(row, col), full[row][col]+start, w+1+start)
					}
				}
				if m.InFinalColumn(row) {
					got := min(m.FinalValue(row), w+1+start)
					want := min(full[row][len(p)]+start, w+1+start)
					if got != want {
						t.Fatalf("FinalValue(%d) = %d, want %d", row, got, want)
					}
				}
			}
		})
	}
}

func TestUpdateCell(t *testing.T) {
	m := New(4, 2, 0)
	if got := m.UpdateCell(false, 1, 1); got != 0 {
		t.Errorf("UpdateCell(match, 1, 1) = %d, want 0", got)
	}
	if got := m.UpdateCell(true, 1, 2); got != 1 {
		t.Errorf("UpdateCell(mismatch, 1, 2) = %d, want 1", got)
	}
	if got := m.UpdateCell(true, 2, 1); got != 1 {
		t.Errorf("UpdateCell(mismatch, 2, 1) = %d, want 1", got)
	}
	if got := m.UpdateCell(true, 2, 0); got != 2 {
		t.Errorf("UpdateCell(_, 2, 0) = %d, want 2", got)
	}
	if got := m.UpdateCell(true, 0, 2); got != 2 {
		t.Errorf("UpdateCell(_, 0, 2) = %d, want 2", got)
	}
}

func TestFinalValuePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("FinalValue did not panic for a row that does not reach the final column")
		}
	}()
	New(10, 2, 0).FinalValue(1)
}
