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
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidSearch is returned if a search is malformed.
var ErrInvalidSearch = errors.New("fmindex: invalid search")

// Search describes in which order the parts of a pattern are matched and how many errors are
// allowed after each part.
//
// The i-th step of a search matches part Part(i) in direction Direction(i). The accumulated edit
// distance after the step must lie in [Lower(i), Upper(i)].
type Search struct {
	order        []int
	lower, upper []int
	dirs         []Direction
}

// MakeSearch creates a search from the order of the parts and the lower and upper bounds of the
// accumulated edit distance.
//
// The order must start anywhere and then grow the covered block of parts by one adjacent part per
// step until all parts 0..len(order)-1 are covered. The bounds must not decrease along the order.
func MakeSearch(order, lower, upper []int) (Search, error) {
	if len(order) == 0 {
		return Search{}, fmt.Errorf("%w: no parts", ErrInvalidSearch)
	}
	if len(order) != len(lower) || len(order) != len(upper) {
		return Search{}, fmt.Errorf("%w: sizes of order (%d), lower bounds (%d) and upper bounds (%d) differ",
			ErrInvalidSearch, len(order), len(lower), len(upper))
	}

	lowest, highest := order[0], order[0]
	for _, p := range order[1:] {
		switch p {
		case highest + 1:
			highest = p
		case lowest - 1:
			lowest = p
		default:
			return Search{}, fmt.Errorf("%w: order %v does not satisfy connectivity", ErrInvalidSearch, order)
		}
	}
	if lowest != 0 {
		return Search{}, fmt.Errorf("%w: order %v is not zero based", ErrInvalidSearch, order)
	}

	for i := range order {
		if lower[i] < 0 || lower[i] > upper[i] || (i > 0 && (lower[i] < lower[i-1] || upper[i] < upper[i-1])) {
			return Search{}, fmt.Errorf("%w: illegal bounds %v %v", ErrInvalidSearch, lower, upper)
		}
	}

	dirs := make([]Direction, len(order))
	for i := range order {
		// The first part is matched in the direction of the second.
		j := max(i, 1)
		if j < len(order) && order[j] < order[j-1] {
			dirs[i] = Backward
		}
	}

	return Search{
		order: slices.Clone(order),
		lower: slices.Clone(lower),
		upper: slices.Clone(upper),
		dirs:  dirs,
	}, nil
}

// Len returns the number of parts.
func (s Search) Len() int { return len(s.order) }

// Part returns the part matched in step i.
func (s Search) Part(i int) int { return s.order[i] }

// Lower returns the lower bound of the edit distance after step i.
func (s Search) Lower(i int) int { return s.lower[i] }

// Upper returns the upper bound of the edit distance after step i.
func (s Search) Upper(i int) int { return s.upper[i] }

// Direction returns the direction in which step i extends the match.
func (s Search) Direction(i int) Direction { return s.dirs[i] }

// MaxDistance returns the largest edit distance the search allows.
func (s Search) MaxDistance() int { return s.upper[len(s.upper)-1] }

// String formats the search as order, lower bounds and upper bounds, e.g. "{0,1,2} {0,0,2} {0,2,2}".
func (s Search) String() string {
	return formatVector(s.order) + " " + formatVector(s.lower) + " " + formatVector(s.upper)
}

func formatVector(v []int) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, x := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(x))
	}
	sb.WriteByte('}')
	return sb.String()
}
