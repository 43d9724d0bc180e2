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

// Length is the type of all suffix array and text offsets.
type Length = uint32

// Range is a half-open interval [Begin, End) of suffix array rows or text positions.
type Range struct {
	Begin, End Length
}

// Empty reports whether r contains no element.
func (r Range) Empty() bool { return r.End <= r.Begin }

// Width returns the number of elements in r.
func (r Range) Width() Length {
	if r.Empty() {
		return 0
	}
	return r.End - r.Begin
}

// Equal reports whether r and o contain the same elements. All empty ranges are equal.
func (r Range) Equal(o Range) bool {
	if r.Empty() || o.Empty() {
		return r.Empty() && o.Empty()
	}
	return r == o
}

// RangePair couples the range of a pattern in the suffix array of the text with the range of the
// reversed pattern in the suffix array of the reversed text. Both ranges have the same width.
type RangePair struct {
	SA, RevSA Range
}

// Empty reports whether the pair is empty.
func (rp RangePair) Empty() bool { return rp.SA.Empty() }

// Width returns the number of occurrences described by rp.
func (rp RangePair) Width() Length { return rp.SA.Width() }

// Direction is the direction in which a pattern is extended.
//
//go:generate go tool golang.org/x/tools/cmd/stringer -type=Direction
type Direction int

const (
	Forward  Direction = iota // Extend to the right, i.e., append characters
	Backward                  // Extend to the left, i.e., prepend characters
)

// Pos is a node of the search tree of a unidirectional index: a suffix array range together with
// the number of characters matched so far.
type Pos struct {
	Range Range
	Depth Length
}

// PosExt is a child of a Pos, labelled with the character that was used to reach it.
type PosExt struct {
	Pos
	Char byte
}

// BiPos is a node of the search tree of a bidirectional index.
type BiPos struct {
	Pos
	RevSA Range
}

// Ranges returns the range pair of p.
func (p BiPos) Ranges() RangePair { return RangePair{SA: p.Range, RevSA: p.RevSA} }

// BiPosExt is a child of a BiPos, labelled with the character that was used to reach it.
type BiPosExt struct {
	BiPos
	Char byte
}

// Occ is an approximate occurrence in suffix array coordinates: every row of Range is the start
// of a text substring of length Depth with edit distance Distance to the pattern.
type Occ struct {
	Pos
	Distance int
}

// BiOcc is an approximate occurrence found with a bidirectional index.
type BiOcc struct {
	Occ
	RevSA Range
}

// Ranges returns the range pair of o.
func (o BiOcc) Ranges() RangePair { return RangePair{SA: o.Range, RevSA: o.RevSA} }

// TextOcc is an approximate occurrence in text coordinates.
type TextOcc struct {
	Range    Range
	Distance int
}
