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
	"math"
	"slices"

	"znkr.io/fmindex/internal/byteview"
)

var complement = func() (t [256]byte) {
	for i := range t {
		t[i] = byte(i)
	}
	for _, pair := range []string{"AT", "TA", "CG", "GC", "at", "ta", "cg", "gc"} {
		t[pair[0]] = pair[1]
	}
	return t
}()

// ReverseComplement returns the reverse complement of a DNA read. A and T as well as C and G are
// swapped, all other symbols (like N) are kept as they are.
func ReverseComplement(read string) string {
	var b byteview.Builder
	b.Grow(len(read))
	for i := len(read) - 1; i >= 0; i-- {
		b.WriteByte(complement[read[i]])
	}
	return b.Build()
}

// PairedMatch is the placement of a pair of reads.
type PairedMatch struct {
	Pos1, Pos2    Length // Text offsets of the first and the second read
	Read1Reversed bool   // The first read matched as reverse complement, the second one forward
}

// BestPairedMatch places a pair of reads from opposite strands of a fragment.
//
// One read is expected to match the text forward and the other one as reverse complement. Both
// combinations are evaluated and the placement whose insert size, the distance from the start of
// the forward read to the end of the reverse complemented read, is closest to meanInsertSize is
// returned. If a combination has no exact matches for one of its reads, it is not considered. The
// second return value is false if neither combination has matches.
func (idx *Index) BestPairedMatch(read1, read2 string, meanInsertSize Length) (PairedMatch, bool) {
	var (
		best    PairedMatch
		bestDev = int64(math.MaxInt64)
		found   bool
	)

	// read1 forward, read2 reverse complemented.
	if up, down, dev, ok := closestPair(idx.MatchExact(read1), idx.MatchExact(ReverseComplement(read2)), len(read2), meanInsertSize); ok {
		best, bestDev, found = PairedMatch{Pos1: up, Pos2: down}, dev, true
	}
	// read2 forward, read1 reverse complemented.
	if up, down, dev, ok := closestPair(idx.MatchExact(read2), idx.MatchExact(ReverseComplement(read1)), len(read1), meanInsertSize); ok && dev < bestDev {
		best, found = PairedMatch{Pos1: down, Pos2: up, Read1Reversed: true}, true
	}
	return best, found
}

// closestPair finds the pair of an upstream and a downstream offset whose insert size, down +
// downLen - up, deviates least from mean. Both slices must be sorted.
func closestPair(upstream, downstream []Length, downLen int, mean Length) (up, down Length, dev int64, ok bool) {
	dev = math.MaxInt64
	for _, u := range upstream {
		target := int64(u) + int64(mean) - int64(downLen)
		i, _ := slices.BinarySearchFunc(downstream, target, func(d Length, t int64) int {
			return cmp.Compare(int64(d), t)
		})
		for _, j := range []int{i - 1, i} {
			if j < 0 || j >= len(downstream) {
				continue
			}
			d := downstream[j]
			if dd := abs(int64(d) - target); dd < dev {
				up, down, dev, ok = u, d, dd, true
			}
		}
	}
	return up, down, dev, ok
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
