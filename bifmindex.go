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
	"fmt"

	"znkr.io/fmindex/internal/banded"
	"znkr.io/fmindex/internal/byteview"
	"znkr.io/fmindex/internal/occ"
)

// BiIndex is a bidirectional FM-index. In addition to the index of the text, it keeps the
// occurrence table of the reversed text, which allows to extend a match to the left and to the
// right.
//
// The reversed text is the text without terminator in reverse order, followed by the terminator.
type BiIndex struct {
	*Index
	revOcc *occ.Table
}

// NewBidirectional creates a bidirectional index for text given the suffix arrays of text and of
// the reversed text.
func NewBidirectional(text string, sa, revSA []Length, opts ...Option) (*BiIndex, error) {
	idx, err := New(text, sa, opts...)
	if err != nil {
		return nil, err
	}
	if err := checkSuffixArray(revSA, len(text)); err != nil {
		return nil, fmt.Errorf("reversed text: %w", err)
	}

	n := len(text)
	revBWT := make([]byte, n)
	for i, p := range revSA {
		if p != 0 {
			revBWT[i] = byte(idx.alpha.C2I(text[n-1-int(p)]))
		}
	}

	tracer().Debugf("fmindex: built reverse occurrence table")
	return &BiIndex{
		Index:  idx,
		revOcc: occ.New(idx.alpha.Size(), revBWT),
	}, nil
}

// FullRange returns the range pair of the empty pattern, which covers all rows.
func (bi *BiIndex) FullRange() RangePair {
	r := bi.fullRange()
	return RangePair{SA: r, RevSA: r}
}

// AddCharLeft narrows the range pair of a pattern P to the range pair of cP. It returns false and
// an empty range pair if cP does not occur in the text.
func (bi *BiIndex) AddCharLeft(c byte, rp RangePair) (RangePair, bool) {
	ci, ok := bi.alpha.Lookup(c)
	if !ok {
		return RangePair{}, false
	}
	return bi.addCharLeft(ci, rp)
}

// AddCharRight narrows the range pair of a pattern P to the range pair of Pc. It returns false and
// an empty range pair if Pc does not occur in the text.
func (bi *BiIndex) AddCharRight(c byte, rp RangePair) (RangePair, bool) {
	ci, ok := bi.alpha.Lookup(c)
	if !ok {
		return RangePair{}, false
	}
	return bi.addCharRight(ci, rp)
}

func (bi *BiIndex) addCharLeft(ci int, rp RangePair) (RangePair, bool) {
	sa, revSA, ok := extend(bi.counts[ci], bi.occ, ci, rp.SA, rp.RevSA)
	return RangePair{SA: sa, RevSA: revSA}, ok
}

func (bi *BiIndex) addCharRight(ci int, rp RangePair) (RangePair, bool) {
	revSA, sa, ok := extend(bi.counts[ci], bi.revOcc, ci, rp.RevSA, rp.SA)
	return RangePair{SA: sa, RevSA: revSA}, ok
}

// extend narrows r with the occurrence table t in which ci is prepended and shifts the paired
// range other by the number of rows of r that are preceded by a smaller symbol.
func extend(count Length, t *occ.Table, ci int, r, other Range) (Range, Range, bool) {
	begin := count + Length(t.Occ(ci, int(r.Begin)))
	end := count + Length(t.Occ(ci, int(r.End)))
	if end <= begin {
		return Range{}, Range{}, false
	}
	shift := Length(t.CumulOcc(ci, int(r.End)) - t.CumulOcc(ci, int(r.Begin)))
	otherBegin := other.Begin + shift
	return Range{Begin: begin, End: end}, Range{Begin: otherBegin, End: otherBegin + end - begin}, true
}

func (bi *BiIndex) addChar(dir Direction, ci int, rp RangePair) (RangePair, bool) {
	if dir == Forward {
		return bi.addCharRight(ci, rp)
	}
	return bi.addCharLeft(ci, rp)
}

// MatchExactBidirectionally extends rp with part. If dir is Forward, part is appended one symbol
// at a time from left to right. If dir is Backward, part is prepended from right to left. It
// returns false and an empty range pair as soon as the match fails.
func (bi *BiIndex) MatchExactBidirectionally(part string, dir Direction, rp RangePair) (RangePair, bool) {
	p := byteview.From(part)
	if dir == Backward {
		p = p.Reversed()
	}
	for i := range p.Len() {
		ci, ok := bi.alpha.Lookup(p.At(i))
		if !ok {
			return RangePair{}, false
		}
		if rp, ok = bi.addChar(dir, ci, rp); !ok {
			return RangePair{}, false
		}
	}
	return rp, true
}

// ExtendPos appends the children of the search tree node (rp, depth) in direction dir to stack and
// returns the extended stack. There is one child per symbol other than the terminator, pushed in
// symbol order, and only children with a non-empty range are pushed.
func (bi *BiIndex) ExtendPos(rp RangePair, depth Length, dir Direction, stack []BiPosExt) []BiPosExt {
	for ci := 1; ci < bi.alpha.Size(); ci++ {
		if child, ok := bi.addChar(dir, ci, rp); ok {
			stack = append(stack, BiPosExt{
				BiPos: BiPos{Pos: Pos{Range: child.SA, Depth: depth + 1}, RevSA: child.RevSA},
				Char:  bi.alpha.I2C(ci),
			})
		}
	}
	return stack
}

// RecApproxMatch continues search s at step idx from the partial match start and returns all
// occurrences of the pattern, whose parts are given in text order.
//
// Each step aligns its part against the strings reachable in the search direction with a banded
// matrix. Branches whose edit distance exceeds the upper bound of the step are pruned. A branch
// that consumed the whole part with an edit distance within the bounds of the step continues with
// the next step, or becomes an occurrence after the last step.
func (bi *BiIndex) RecApproxMatch(s Search, start BiOcc, parts []string, idx int) []Occ {
	return bi.recApproxMatch(s, start, parts, idx, nil)
}

func (bi *BiIndex) recApproxMatch(s Search, start BiOcc, parts []string, idx int, occs []Occ) []Occ {
	dir := s.Direction(idx)
	p := byteview.From(parts[s.Part(idx)])
	if dir == Backward {
		p = p.Reversed()
	}
	lower, upper := s.Lower(idx), s.Upper(idx)
	m := banded.New(p.Len(), upper-start.Distance, start.Distance)

	stack := make([]BiPosExt, 0, m.Rows()*(bi.alpha.Size()-1))
	stack = bi.ExtendPos(start.Ranges(), 0, dir, stack)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		row := int(node.Depth)
		if minValue, _ := m.UpdateRow(p, row, node.Char); minValue > upper {
			continue
		}
		if m.InFinalColumn(row) {
			if d := m.FinalValue(row); d >= lower && d <= upper {
				o := BiOcc{
					Occ: Occ{
						Pos:      Pos{Range: node.Range, Depth: start.Depth + node.Depth},
						Distance: d,
					},
					RevSA: node.RevSA,
				}
				if idx == s.Len()-1 {
					occs = append(occs, o.Occ)
				} else {
					occs = bi.recApproxMatch(s, o, parts, idx+1, occs)
				}
			}
		}
		if row+1 < m.Rows() {
			stack = bi.ExtendPos(node.Ranges(), node.Depth, dir, stack)
		}
	}
	return occs
}
