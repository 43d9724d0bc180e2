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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// allStrings returns all strings over symbols with length 1 to maxLen.
func allStrings(symbols string, maxLen int) []string {
	var out []string
	level := []string{""}
	for range maxLen {
		var next []string
		for _, s := range level {
			for i := range len(symbols) {
				next = append(next, s+symbols[i:i+1])
			}
		}
		out = append(out, next...)
		level = next
	}
	return out
}

func TestNewBidirectionalErrors(t *testing.T) {
	text := "banana$"
	sa := suffixArray(text)
	if _, err := NewBidirectional(text, sa, sa[:3]); err == nil {
		t.Errorf("NewBidirectional with a short reversed suffix array succeeded")
	}
	if _, err := NewBidirectional("banana", sa, sa); err == nil {
		t.Errorf("NewBidirectional without terminator succeeded")
	}
}

func TestReverseOccTable(t *testing.T) {
	texts := []string{
		"banana$",
		"GATTACAGATTACCA$",
		randomDNA(newRand(t.Name()), 500) + "$",
	}
	for _, text := range texts {
		bi := mustNewBidirectional(t, text)
		rev := mustNew(t, reversedText(text))
		for c := range bi.alpha.Size() {
			for j := range len(text) + 1 {
				if got, want := bi.revOcc.Occ(c, j), rev.occ.Occ(c, j); got != want {
					t.Fatalf("%q: reverse Occ(%d, %d) = %d, want %d", text, c, j, got, want)
				}
				if got, want := bi.revOcc.CumulOcc(c, j), rev.occ.CumulOcc(c, j); got != want {
					t.Fatalf("%q: reverse CumulOcc(%d, %d) = %d, want %d", text, c, j, got, want)
				}
			}
		}
	}
}

func TestMatchExactBidirectionally(t *testing.T) {
	text := randomDNA(newRand(t.Name()), 200) + "$"
	bi := mustNewBidirectional(t, text)
	rev := mustNew(t, reversedText(text))

	for _, p := range allStrings("ACGT", 4) {
		sa, ok := bi.matchExact(p)
		revSA, revOK := rev.matchExact(reverse(p))
		if ok != revOK {
			t.Fatalf("%q occurs in the text (%v) but its reverse occurs in the reversed text (%v)", p, ok, revOK)
		}
		want := RangePair{SA: sa, RevSA: revSA}

		for _, dir := range []Direction{Forward, Backward} {
			got, gotOK := bi.MatchExactBidirectionally(p, dir, bi.FullRange())
			if gotOK != ok {
				t.Fatalf("MatchExactBidirectionally(%q, %v) ok = %v, want %v", p, dir, gotOK, ok)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("MatchExactBidirectionally(%q, %v) differs [-want,+got]:\n%s", p, dir, diff)
			}
		}

		// Match the second half first and then prepend the first half.
		mid := len(p) / 2
		got, gotOK := bi.MatchExactBidirectionally(p[mid:], Forward, bi.FullRange())
		if gotOK {
			got, gotOK = bi.MatchExactBidirectionally(p[:mid], Backward, got)
		}
		if gotOK != ok {
			t.Fatalf("split match of %q ok = %v, want %v", p, gotOK, ok)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("split match of %q differs [-want,+got]:\n%s", p, diff)
		}
	}
}

func TestAddCharRoundTrip(t *testing.T) {
	bi := mustNewBidirectional(t, "GATTACAGATTACCA$")
	full := bi.FullRange()
	for _, left := range []byte("ACGT") {
		for _, right := range []byte("ACGT") {
			t.Run(fmt.Sprintf("%c-%c", left, right), func(t *testing.T) {
				a, aOK := bi.AddCharLeft(left, full)
				if aOK {
					a, aOK = bi.AddCharRight(right, a)
				}
				b, bOK := bi.AddCharRight(right, full)
				if bOK {
					b, bOK = bi.AddCharLeft(left, b)
				}
				if aOK != bOK {
					t.Fatalf("left-right ok = %v, right-left ok = %v", aOK, bOK)
				}
				if diff := cmp.Diff(a, b); diff != "" {
					t.Errorf("left-right and right-left extension differ [-left-right,+right-left]:\n%s", diff)
				}
				if a.SA.Width() != a.RevSA.Width() {
					t.Errorf("range pair %v has ranges of different width", a)
				}
			})
		}
	}
}

func TestAddCharEmpty(t *testing.T) {
	bi := mustNewBidirectional(t, "GATTACAGATTACCA$")
	gat, ok := bi.MatchExactBidirectionally("GAT", Forward, bi.FullRange())
	if !ok {
		t.Fatalf("GAT not found")
	}
	tests := []struct {
		name string
		got  func() (RangePair, bool)
	}{
		{"right-absent", func() (RangePair, bool) { return bi.AddCharRight('G', gat) }},
		{"left-absent", func() (RangePair, bool) { return bi.AddCharLeft('C', gat) }},
		{"right-unknown", func() (RangePair, bool) { return bi.AddCharRight('X', gat) }},
		{"left-unknown", func() (RangePair, bool) { return bi.AddCharLeft('X', gat) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.got()
			if ok || !got.SA.Empty() || !got.RevSA.Empty() {
				t.Errorf("got %v, %v, want empty range pair", got, ok)
			}
		})
	}
}

func TestBiExtendPos(t *testing.T) {
	bi := mustNewBidirectional(t, "banana$")
	a, _ := bi.MatchExactBidirectionally("a", Forward, bi.FullRange())

	chars := func(stack []BiPosExt) string {
		var s string
		for _, p := range stack {
			if p.Depth != 2 {
				t.Errorf("child %v has depth %d, want 2", p, p.Depth)
			}
			s += string(p.Char)
		}
		return s
	}
	if got := chars(bi.ExtendPos(a, 1, Forward, nil)); got != "n" {
		t.Errorf("forward children = %q, want %q", got, "n")
	}
	if got := chars(bi.ExtendPos(a, 1, Backward, nil)); got != "bn" {
		t.Errorf("backward children = %q, want %q", got, "bn")
	}

	stack := bi.ExtendPos(a, 1, Forward, nil)
	an, _ := bi.MatchExactBidirectionally("an", Forward, bi.FullRange())
	if diff := cmp.Diff(an, stack[0].Ranges()); diff != "" {
		t.Errorf("child of a differs from match of an [-want,+got]:\n%s", diff)
	}
}

func TestRecApproxMatchSinglePart(t *testing.T) {
	rng := newRand(t.Name())
	text := randomDNA(rng, 300) + "$"
	bi := mustNewBidirectional(t, text, SparseFactor(3))
	start := BiOcc{Occ: Occ{Pos: Pos{Range: bi.fullRange()}}, RevSA: bi.fullRange()}

	for range 20 {
		m := 5 + rng.IntN(6)
		b := rng.IntN(len(text) - 1 - m)
		pattern := mutate(rng, text[b:b+m], 1)
		for k := range 3 {
			s, err := MakeSearch([]int{0}, []int{0}, []int{k})
			if err != nil {
				t.Fatal(err)
			}
			var got []TextOcc
			for _, o := range bi.RecApproxMatch(s, start, []string{pattern}, 0) {
				got = bi.Locate(o, got)
			}
			sortTextOccs(got)
			if diff := cmp.Diff(approxOccurrences(text, pattern, k), got); diff != "" {
				t.Fatalf("RecApproxMatch(%q, k=%d) differs [-want,+got]:\n%s", pattern, k, diff)
			}
		}
	}
}

func TestRecApproxMatchTwoParts(t *testing.T) {
	rng := newRand(t.Name())
	text := randomDNA(rng, 300) + "$"
	bi := mustNewBidirectional(t, text)
	start := BiOcc{Occ: Occ{Pos: Pos{Range: bi.fullRange()}}, RevSA: bi.fullRange()}

	for range 20 {
		m := 10 + rng.IntN(6)
		b := rng.IntN(len(text) - 1 - m)
		pattern := mutate(rng, text[b:b+m], rng.IntN(3))
		parts := []string{pattern[:len(pattern)/2], pattern[len(pattern)/2:]}
		for k := range 3 {
			for _, order := range [][]int{{0, 1}, {1, 0}} {
				s, err := MakeSearch(order, []int{0, 0}, []int{k, k})
				if err != nil {
					t.Fatal(err)
				}
				got := bi.FilterRedundantMatches(bi.RecApproxMatch(s, start, parts, 0), k)
				want := bi.NaiveApproxMatch(pattern, k)
				if diff := cmp.Diff(want, got); diff != "" {
					t.Fatalf("RecApproxMatch(%q, %v, k=%d) differs from NaiveApproxMatch [-want,+got]:\n%s",
						pattern, order, k, diff)
				}
			}
		}
	}
}
