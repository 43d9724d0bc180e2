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

// Package alphabet maps the symbols of a text to dense indices.
package alphabet

import "slices"

const absent = -1

// Alphabet is a bijection between the distinct bytes of a text and the indices 0..Size()-1 that
// preserves byte order. The terminator, which must be the smallest byte, maps to index 0.
type Alphabet struct {
	c2i [256]int16
	i2c []byte
}

// New builds the alphabet of text. The terminator is always included.
func New(text string, terminator byte) Alphabet {
	var seen [256]bool
	seen[terminator] = true
	for i := range len(text) {
		seen[text[i]] = true
	}

	var a Alphabet
	for c := range a.c2i {
		a.c2i[c] = absent
		if seen[c] {
			a.c2i[c] = int16(len(a.i2c))
			a.i2c = append(a.i2c, byte(c))
		}
	}
	return a
}

// Size returns the number of symbols including the terminator.
func (a Alphabet) Size() int { return len(a.i2c) }

// C2I returns the index of c. It panics if c is not in the alphabet.
func (a Alphabet) C2I(c byte) int {
	i := a.c2i[c]
	if i == absent {
		panic("alphabet: symbol not in alphabet")
	}
	return int(i)
}

// Lookup returns the index of c and whether c is in the alphabet.
func (a Alphabet) Lookup(c byte) (int, bool) {
	i := a.c2i[c]
	return int(i), i != absent
}

// I2C returns the symbol with index i.
func (a Alphabet) I2C(i int) byte { return a.i2c[i] }

// Symbols returns the symbols in index order.
func (a Alphabet) Symbols() []byte { return slices.Clone(a.i2c) }
