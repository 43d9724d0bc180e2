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

// Package seqio reads the inputs of an index from a file system: the text, its suffix arrays and
// paired sequencing reads.
package seqio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/hack-pad/hackpadfs"
	"znkr.io/fmindex"
)

// ReadText reads the text in file name. A single trailing newline is removed.
func ReadText(fsys hackpadfs.FS, name string) (string, error) {
	data, err := hackpadfs.ReadFile(fsys, name)
	if err != nil {
		return "", fmt.Errorf("reading text: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

// ReadSA reads a suffix array from file name.
//
// The file is either a binary file of little endian 32 bit integers or a text file of whitespace
// separated decimal integers. The format is detected with the expected number of values n: the
// file is binary if it has a size of exactly 4n bytes.
func ReadSA(fsys hackpadfs.FS, name string, n int) ([]fmindex.Length, error) {
	data, err := hackpadfs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading suffix array: %w", err)
	}
	if len(data)%4 == 0 && len(data)/4 == n {
		sa := make([]fmindex.Length, n)
		for i := range sa {
			sa[i] = binary.LittleEndian.Uint32(data[4*i:])
		}
		return sa, nil
	}

	sa := make([]fmindex.Length, 0, n)
	for i, f := range strings.Fields(string(data)) {
		v, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%s: value %d: %w", name, i, err)
		}
		sa = append(sa, fmindex.Length(v))
	}
	return sa, nil
}

// ReadPair is a pair of reads from the two ends of the same fragment.
type ReadPair struct {
	First, Second string
}

// ReadPairedReads reads pairs of reads from the FASTA file name. Header lines starting with '>'
// are skipped, the remaining lines alternate between the first and the second read of a pair.
func ReadPairedReads(fsys hackpadfs.FS, name string) ([]ReadPair, error) {
	data, err := hackpadfs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading paired reads: %w", err)
	}

	var pairs []ReadPair
	first := true
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(nil, 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '>' {
			continue
		}
		if first {
			pairs = append(pairs, ReadPair{First: line})
		} else {
			pairs[len(pairs)-1].Second = line
		}
		first = !first
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if !first {
		return nil, fmt.Errorf("%s: read %d has no mate", name, len(pairs))
	}
	return pairs, nil
}
