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

// Package scheme implements approximate pattern matching with search schemes.
//
// A search scheme for at most k errors splits a pattern into p parts and defines a set of searches.
// Each search matches the parts in a specific order, growing a contiguous block of matched parts
// to the left or to the right, and bounds the number of errors that may have been accumulated
// after every part. The searches are chosen so that every occurrence with at most k errors is
// found by at least one search. Because the first parts of a search allow few or no errors, the
// search tree is pruned much earlier than a naive backtracking search.
//
// Search schemes are stored in a directory that contains a file name.txt with the name of the
// scheme in its first line and, for every supported k, a file <k>/searches.txt with one search per
// line:
//
//	{0,1,2} {0,0,0} {0,2,2}
//	{1,2,0} {0,0,0} {0,2,2}
//	{2,1,0} {0,0,0} {0,2,2}
//
// The three vectors are the order of the parts, the lower bounds, and the upper bounds.
package scheme

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/hack-pad/hackpadfs"
	"github.com/npillmayer/schuko/tracing"
	"znkr.io/fmindex"
	"znkr.io/fmindex/internal/byteview"
)

// ErrSyntax is returned if a search cannot be parsed.
var ErrSyntax = errors.New("scheme: syntax error")

func tracer() tracing.Trace {
	return tracing.Select("fmindex")
}

// Scheme is a search scheme bound to a bidirectional index.
type Scheme struct {
	index    *fmindex.BiIndex
	name     string
	k        int
	searches []fmindex.Search
}

// New creates a scheme for at most k errors from a set of searches. All searches must use the same
// number of parts and none may allow more than k errors.
func New(index *fmindex.BiIndex, name string, k int, searches []fmindex.Search) (*Scheme, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: negative maximum distance %d", fmindex.ErrInvalidSearch, k)
	}
	if len(searches) == 0 {
		return nil, fmt.Errorf("%w: scheme %q has no searches", fmindex.ErrInvalidSearch, name)
	}
	for _, s := range searches {
		if s.Len() != searches[0].Len() {
			return nil, fmt.Errorf("%w: scheme %q mixes searches with %d and %d parts",
				fmindex.ErrInvalidSearch, name, searches[0].Len(), s.Len())
		}
		if s.MaxDistance() > k {
			return nil, fmt.Errorf("%w: search %v of scheme %q allows %d errors, more than %d",
				fmindex.ErrInvalidSearch, s, name, s.MaxDistance(), k)
		}
	}
	return &Scheme{
		index:    index,
		name:     name,
		k:        k,
		searches: searches,
	}, nil
}

// Load reads the searches for at most k errors from the scheme directory dir in fsys.
func Load(index *fmindex.BiIndex, fsys hackpadfs.FS, dir string, k int) (*Scheme, error) {
	nameFile := path.Join(dir, "name.txt")
	data, err := hackpadfs.ReadFile(fsys, nameFile)
	if err != nil {
		return nil, fmt.Errorf("reading %s (does %s contain a search scheme?): %w", nameFile, dir, err)
	}
	name, _, _ := strings.Cut(string(data), "\n")
	name = strings.TrimSpace(name)

	searchFile := path.Join(dir, strconv.Itoa(k), "searches.txt")
	data, err = hackpadfs.ReadFile(fsys, searchFile)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", searchFile, err)
	}

	var searches []fmindex.Search
	sc := bufio.NewScanner(bytes.NewReader(data))
	for lineno := 1; sc.Scan(); lineno++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		s, err := ParseSearch(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", searchFile, lineno, err)
		}
		searches = append(searches, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", searchFile, err)
	}

	tracer().Debugf("scheme: loaded %q with %d searches for k=%d", name, len(searches), k)
	return New(index, name, k, searches)
}

// ParseSearch parses a search from its textual representation, three bracketed, comma separated
// vectors for the order, the lower bounds, and the upper bounds.
func ParseSearch(line string) (fmindex.Search, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return fmindex.Search{}, fmt.Errorf("%w: a search needs 3 vectors (order, lower bounds, upper bounds), got %d",
			ErrSyntax, len(fields))
	}
	var vectors [3][]int
	for i, f := range fields {
		v, err := parseVector(f)
		if err != nil {
			return fmindex.Search{}, err
		}
		vectors[i] = v
	}
	return fmindex.MakeSearch(vectors[0], vectors[1], vectors[2])
}

func parseVector(s string) ([]int, error) {
	inner, ok := strings.CutPrefix(s, "{")
	if ok {
		inner, ok = strings.CutSuffix(inner, "}")
	}
	if !ok || inner == "" {
		return nil, fmt.Errorf("%w: %q is not a valid vector", ErrSyntax, s)
	}
	var v []int
	for elem := range strings.SplitSeq(inner, ",") {
		x, err := strconv.Atoi(elem)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a valid vector: %w", ErrSyntax, s, err)
		}
		v = append(v, x)
	}
	return v, nil
}

// Name returns the name of the scheme.
func (s *Scheme) Name() string { return s.name }

// MaxDistance returns the maximum edit distance k of the scheme.
func (s *Scheme) MaxDistance() int { return s.k }

// Searches returns the searches of the scheme.
func (s *Scheme) Searches() []fmindex.Search { return s.searches }

// NumParts returns the number of parts a pattern is split into.
func (s *Scheme) NumParts() int { return s.searches[0].Len() }

// MatchApprox returns all occurrences of pattern with an edit distance of at most MaxDistance,
// filtered like [fmindex.Index.FilterRedundantMatches].
//
// If the pattern is too short to be split into parts that are longer than the maximum distance,
// MatchApprox falls back to [fmindex.Index.NaiveApproxMatch].
func (s *Scheme) MatchApprox(pattern string) []fmindex.TextOcc {
	if s.k == 0 {
		return s.matchExact(pattern)
	}

	numParts := s.NumParts()
	if numParts*s.k >= len(pattern) {
		tracer().Debugf("scheme: pattern of length %d is too short for %d parts and k=%d, using naive matching",
			len(pattern), numParts, s.k)
		return s.index.NaiveApproxMatch(pattern, s.k)
	}

	views := byteview.Split(byteview.From(pattern), numParts)
	parts := make([]string, numParts)
	exact := make([]fmindex.RangePair, numParts)
	for i, v := range views {
		parts[i] = v.String()
		exact[i], _ = s.index.MatchExactBidirectionally(parts[i], fmindex.Forward, s.index.FullRange())
	}

	var occs []fmindex.Occ
	for _, search := range s.searches {
		occs = s.doSearch(occs, search, exact, parts)
	}
	return s.index.FilterRedundantMatches(occs, s.k)
}

func (s *Scheme) matchExact(pattern string) []fmindex.TextOcc {
	positions := s.index.MatchExact(pattern)
	if len(positions) == 0 {
		return nil
	}
	out := make([]fmindex.TextOcc, 0, len(positions))
	for _, p := range positions {
		out = append(out, fmindex.TextOcc{
			Range: fmindex.Range{Begin: p, End: p + fmindex.Length(len(pattern))},
		})
	}
	return out
}

// doSearch runs a single search. The first part of the search is known from the exact matches,
// following parts with an upper bound of zero are matched exactly as well before the approximate
// phase starts.
func (s *Scheme) doSearch(occs []fmindex.Occ, search fmindex.Search, exact []fmindex.RangePair, parts []string) []fmindex.Occ {
	first := search.Part(0)
	rp := exact[first]
	if rp.Empty() {
		return occs
	}
	depth := len(parts[first])

	i := 1
	for ; i < search.Len() && search.Upper(i) == 0; i++ {
		part := parts[search.Part(i)]
		var ok bool
		if rp, ok = s.index.MatchExactBidirectionally(part, search.Direction(i), rp); !ok {
			return occs
		}
		depth += len(part)
	}

	start := fmindex.BiOcc{
		Occ: fmindex.Occ{
			Pos: fmindex.Pos{Range: rp.SA, Depth: fmindex.Length(depth)},
		},
		RevSA: rp.RevSA,
	}
	if i == search.Len() {
		return append(occs, start.Occ)
	}
	return append(occs, s.index.RecApproxMatch(search, start, parts, i)...)
}
