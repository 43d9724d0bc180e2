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
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"znkr.io/fmindex/internal/alphabet"
	"znkr.io/fmindex/internal/banded"
	"znkr.io/fmindex/internal/bitvec"
	"znkr.io/fmindex/internal/byteview"
	"znkr.io/fmindex/internal/config"
	"znkr.io/fmindex/internal/occ"
	"znkr.io/fmindex/internal/sparsesa"
)

var (
	// ErrNoTerminator is returned if the text does not end with the terminator or if the
	// terminator occurs more than once.
	ErrNoTerminator = errors.New("fmindex: text must end with a unique terminator")
	// ErrLengthMismatch is returned if a suffix array and the text differ in length.
	ErrLengthMismatch = errors.New("fmindex: suffix array length differs from text length")
	// ErrTerminatorOrder is returned if a symbol of the text sorts before the terminator.
	ErrTerminatorOrder = errors.New("fmindex: terminator is not the smallest symbol")
	// ErrInvalidSuffixArray is returned if a suffix array is not a permutation of the text offsets.
	ErrInvalidSuffixArray = errors.New("fmindex: suffix array is not a permutation")
	// ErrTooLong is returned if the text has more symbols than a [Length] can address.
	ErrTooLong = errors.New("fmindex: text too long")
)

// maxTextLen is the largest supported text length.
var maxTextLen uint64 = math.MaxUint32

// Index is an FM-index over a text. The text itself is not retained.
type Index struct {
	n      Length
	alpha  alphabet.Alphabet
	counts []Length // counts[c] is the number of symbols in the text that are smaller than c
	bwt    []byte   // Burrows-Wheeler transform as alphabet indices
	occ    *occ.Table
	sa     *sparsesa.Array
}

// New creates an index for text given its suffix array.
//
// The text must end with the terminator (see [Terminator]), which must not occur anywhere else
// and must be smaller than all other symbols. sa must be the suffix array of text, i.e., sa[i] is
// the start of the i-th smallest suffix. New does not verify that sa is sorted, only that it is a
// permutation of the text offsets.
func New(text string, sa []Length, opts ...Option) (*Index, error) {
	cfg := config.FromOptions(opts, config.SparseFactor|config.Terminator)
	alpha, err := checkInput(text, sa, cfg.Terminator)
	if err != nil {
		return nil, err
	}

	n := len(text)
	bwt := make([]byte, n)
	for i, p := range sa {
		if p != 0 {
			bwt[i] = byte(alpha.C2I(text[p-1]))
		}
	}

	idx := &Index{
		n:      Length(n),
		alpha:  alpha,
		counts: countSymbols(text, alpha),
		bwt:    bwt,
		occ:    occ.New(alpha.Size(), bwt),
		sa:     sparsesa.New(sa, cfg.SparseFactor),
	}
	tracer().Infof("fmindex: built index for %d symbols, alphabet size %d, %d of %d suffix array values sampled with factor %d",
		n, alpha.Size(), idx.sa.Stored(), n, idx.sa.Factor())
	return idx, nil
}

// checkInput verifies the data integrity of text and sa and returns the alphabet of text.
func checkInput(text string, sa []Length, terminator byte) (alphabet.Alphabet, error) {
	n := len(text)
	if uint64(n) > maxTextLen {
		return alphabet.Alphabet{}, fmt.Errorf("%w: %d symbols, at most %d are supported", ErrTooLong, n, maxTextLen)
	}
	if n == 0 || strings.IndexByte(text, terminator) != n-1 {
		return alphabet.Alphabet{}, fmt.Errorf("%w (terminator %q)", ErrNoTerminator, terminator)
	}
	alpha := alphabet.New(text, terminator)
	if alpha.C2I(terminator) != 0 {
		return alphabet.Alphabet{}, fmt.Errorf("%w: %q sorts before %q", ErrTerminatorOrder, alpha.I2C(0), terminator)
	}
	if err := checkSuffixArray(sa, n); err != nil {
		return alphabet.Alphabet{}, err
	}
	return alpha, nil
}

func checkSuffixArray(sa []Length, n int) error {
	if len(sa) != n {
		return fmt.Errorf("%w: got %d values for a text of length %d", ErrLengthMismatch, len(sa), n)
	}
	seen := bitvec.New(n)
	for i, p := range sa {
		if int(p) >= n || seen.Get(int(p)) {
			return fmt.Errorf("%w: invalid value %d at row %d", ErrInvalidSuffixArray, p, i)
		}
		seen.Set(int(p), true)
	}
	return nil
}

func countSymbols(text string, alpha alphabet.Alphabet) []Length {
	counts := make([]Length, alpha.Size())
	for i := range len(text) {
		counts[alpha.C2I(text[i])]++
	}
	var sum Length
	for c, f := range counts {
		counts[c] = sum
		sum += f
	}
	return counts
}

// Len returns the length of the indexed text, including the terminator.
func (idx *Index) Len() int { return int(idx.n) }

// Symbols returns the symbols of the text in sort order, starting with the terminator.
func (idx *Index) Symbols() []byte { return idx.alpha.Symbols() }

// Occ returns the number of occurrences of c in the first i symbols of the Burrows-Wheeler
// transform.
func (idx *Index) Occ(c byte, i Length) Length {
	ci, ok := idx.alpha.Lookup(c)
	if !ok {
		return 0
	}
	return Length(idx.occ.Occ(ci, int(i)))
}

// LF maps row k to the row of the suffix that starts one symbol earlier in the text. The row of
// the suffix starting at offset 0 maps to the row of the terminator suffix.
func (idx *Index) LF(k Length) Length {
	c := int(idx.bwt[k])
	return idx.counts[c] + Length(idx.occ.Occ(c, int(k)))
}

// SA returns the suffix array value of row k.
func (idx *Index) SA(k Length) Length {
	var steps Length
	for !idx.sa.HasStored(k) {
		k = idx.LF(k)
		steps++
	}
	return (idx.sa.At(k) + steps) % idx.n
}

// AddCharLeft narrows the range r of a pattern P to the range of cP. It returns false and an empty
// range if cP does not occur in the text.
func (idx *Index) AddCharLeft(c byte, r Range) (Range, bool) {
	ci, ok := idx.alpha.Lookup(c)
	if !ok {
		return Range{}, false
	}
	return idx.addCharLeft(ci, r)
}

func (idx *Index) addCharLeft(ci int, r Range) (Range, bool) {
	begin := idx.counts[ci] + Length(idx.occ.Occ(ci, int(r.Begin)))
	end := idx.counts[ci] + Length(idx.occ.Occ(ci, int(r.End)))
	if end <= begin {
		return Range{}, false
	}
	return Range{Begin: begin, End: end}, true
}

// fullRange returns the range of the empty pattern.
func (idx *Index) fullRange() Range { return Range{Begin: 0, End: idx.n} }

// MatchExact returns the sorted start offsets of all occurrences of pattern in the text.
func (idx *Index) MatchExact(pattern string) []Length {
	r, ok := idx.matchExact(pattern)
	if !ok {
		return nil
	}
	out := make([]Length, 0, r.Width())
	for k := r.Begin; k < r.End; k++ {
		out = append(out, idx.SA(k))
	}
	slices.Sort(out)
	return out
}

// matchExact runs backward search for pattern.
func (idx *Index) matchExact(pattern string) (Range, bool) {
	r := idx.fullRange()
	for i := len(pattern) - 1; i >= 0; i-- {
		var ok bool
		if r, ok = idx.AddCharLeft(pattern[i], r); !ok {
			return Range{}, false
		}
	}
	return r, true
}

// ExtendPos appends the children of the search tree node (r, depth) to stack and returns the
// extended stack. There is one child per symbol other than the terminator, pushed in symbol order,
// and only children with a non-empty range are pushed.
func (idx *Index) ExtendPos(r Range, depth Length, stack []PosExt) []PosExt {
	for ci := 1; ci < idx.alpha.Size(); ci++ {
		if child, ok := idx.addCharLeft(ci, r); ok {
			stack = append(stack, PosExt{
				Pos:  Pos{Range: child, Depth: depth + 1},
				Char: idx.alpha.I2C(ci),
			})
		}
	}
	return stack
}

// Locate appends the text occurrences of o to dst, one per row in the range of o.
func (idx *Index) Locate(o Occ, dst []TextOcc) []TextOcc {
	for k := o.Range.Begin; k < o.Range.End; k++ {
		begin := idx.SA(k)
		dst = append(dst, TextOcc{
			Range:    Range{Begin: begin, End: begin + o.Depth},
			Distance: o.Distance,
		})
	}
	return dst
}

// NaiveApproxMatch returns all occurrences of pattern in the text with an edit distance of at
// most k. Occurrences that only differ from a better nearby occurrence by additional insertions or
// deletions are removed, see [Index.FilterRedundantMatches].
//
// The search explores all strings within distance k of pattern right to left, without any
// partitioning of the pattern. Its cost grows exponentially with k. A negative k has no matches.
func (idx *Index) NaiveApproxMatch(pattern string, k int) []TextOcc {
	if k < 0 {
		return nil
	}
	return idx.FilterRedundantMatches(idx.naiveApproxMatch(pattern, k), k)
}

func (idx *Index) naiveApproxMatch(pattern string, k int) []Occ {
	p := byteview.From(pattern).Reversed()
	m := banded.New(p.Len(), k, 0)

	var occs []Occ
	stack := make([]PosExt, 0, (p.Len()+k+1)*(idx.alpha.Size()-1))
	stack = idx.ExtendPos(idx.fullRange(), 0, stack)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		row := int(node.Depth)
		if minValue, _ := m.UpdateRow(p, row, node.Char); minValue > k {
			continue
		}
		if m.InFinalColumn(row) {
			if d := m.FinalValue(row); d <= k {
				occs = append(occs, Occ{Pos: node.Pos, Distance: d})
			}
		}
		if row+1 < m.Rows() {
			stack = idx.ExtendPos(node.Range, node.Depth, stack)
		}
	}
	return occs
}

// FilterRedundantMatches converts occurrences in suffix array coordinates to text occurrences.
//
// Duplicates are removed. Then, in a single left to right sweep, an occurrence that starts at most
// 2k positions after the previously kept occurrence replaces it only if it is strictly better, that
// is, if it has a smaller edit distance or the same distance and a shorter match. Otherwise it is
// dropped. This removes occurrences that only add insertions or deletions to a better one.
func (idx *Index) FilterRedundantMatches(occs []Occ, k int) []TextOcc {
	occs = slices.Clone(occs)
	slices.SortFunc(occs, func(a, b Occ) int {
		return cmp.Or(
			cmp.Compare(a.Range.Begin, b.Range.Begin),
			cmp.Compare(a.Distance, b.Distance),
			cmp.Compare(a.Depth, b.Depth),
			cmp.Compare(a.Range.End, b.Range.End),
		)
	})
	occs = slices.Compact(occs)

	var textOccs []TextOcc
	for _, o := range occs {
		textOccs = idx.Locate(o, textOccs)
	}
	return filterRedundant(textOccs, k)
}

// filterRedundant sorts and deduplicates textOccs in place and then removes occurrences that are
// not strictly better than a kept occurrence starting at most 2k positions earlier.
func filterRedundant(textOccs []TextOcc, k int) []TextOcc {
	slices.SortFunc(textOccs, func(a, b TextOcc) int {
		return cmp.Or(
			cmp.Compare(a.Range.Begin, b.Range.Begin),
			cmp.Compare(a.Distance, b.Distance),
			cmp.Compare(a.Range.Width(), b.Range.Width()),
		)
	})
	textOccs = slices.Compact(textOccs)
	if len(textOccs) == 0 {
		return nil
	}

	maxDiff := Length(2 * k)
	out := []TextOcc{textOccs[0]}
	for _, o := range textOccs[1:] {
		prev := out[len(out)-1]
		diff := o.Range.Begin - prev.Range.Begin
		if diff == 0 {
			continue
		}
		if diff <= maxDiff {
			if o.Distance > prev.Distance {
				continue
			}
			if o.Distance == prev.Distance && o.Range.Width() >= prev.Range.Width() {
				continue
			}
			out = out[:len(out)-1]
		}
		out = append(out, o)
	}
	return out
}
