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

// Package byteview provides immutable, zero-copy views on patterns.
//
// A view can be read front to back or, after [ByteView.Reversed], back to front. Search code uses
// reversed views to consume a pattern in backward direction without copying it.
package byteview

import (
	"slices"
	"sync"
	"unsafe"
)

type ByteView struct {
	data     string
	reversed bool
}

// From returns a view that reads s front to back.
func From(s string) ByteView { return ByteView{data: s} }

func (v ByteView) Len() int { return len(v.data) }

// At returns the i-th byte in reading order.
func (v ByteView) At(i int) byte {
	if v.reversed {
		return v.data[len(v.data)-1-i]
	}
	return v.data[i]
}

// Reversed returns a view that reads v back to front.
func (v ByteView) Reversed() ByteView {
	return ByteView{data: v.data, reversed: !v.reversed}
}

// Slice returns the view of v[i:j] in the reading order of v.
func (v ByteView) Slice(i, j int) ByteView {
	if v.reversed {
		n := len(v.data)
		return ByteView{data: v.data[n-j : n-i], reversed: true}
	}
	return ByteView{data: v.data[i:j]}
}

// String returns the bytes of v in reading order.
func (v ByteView) String() string {
	if !v.reversed {
		return v.data
	}
	var b Builder
	b.Grow(len(v.data))
	for i := len(v.data) - 1; i >= 0; i-- {
		b.WriteByte(v.data[i])
	}
	return b.Build()
}

// Split partitions v into n contiguous parts of (nearly) equal width. Part boundaries are the
// truncated multiples of len(v)/n; the last part always ends at the end of v.
func Split(v ByteView, n int) []ByteView {
	if n <= 0 {
		panic("byteview: number of parts must be positive")
	}
	fraction := float64(v.Len()) / float64(n)
	parts := make([]ByteView, n)
	for i := range n {
		begin := int(float64(i) * fraction)
		end := int(float64(i+1) * fraction)
		if i == n-1 {
			end = v.Len()
		}
		parts[i] = v.Slice(begin, end)
	}
	return parts
}

// Builder builds a string byte by byte without copying the result.
type Builder struct {
	_   [0]sync.Mutex // don't copy
	buf []byte
}

func (b *Builder) Grow(n int) {
	b.buf = slices.Grow(b.buf, n)
}

func (b *Builder) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// Build returns the built string and resets b.
func (b *Builder) Build() string {
	defer func() {
		b.buf = nil
	}()
	return unsafe.String(unsafe.SliceData(b.buf), len(b.buf))
}
