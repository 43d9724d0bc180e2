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

import "znkr.io/fmindex/internal/config"

// Option configures the construction of an index.
type Option = config.Option

// SparseFactor sets the sampling rate of the suffix array. Only suffix array values that are a
// multiple of k are stored, the others are recomputed with fewer than k LF steps. Larger values
// trade query time for memory. Values smaller than one are treated as one, which stores the full
// suffix array. The default is 32.
func SparseFactor(k int) Option {
	return func(cfg *config.Config) config.Flag {
		cfg.SparseFactor = max(1, k)
		return config.SparseFactor
	}
}

// Terminator sets the sentinel symbol that ends the text. The terminator must occur exactly once,
// as the last byte of the text, and it must be smaller than every other symbol. The default is '$'.
func Terminator(c byte) Option {
	return func(cfg *config.Config) config.Flag {
		cfg.Terminator = c
		return config.Terminator
	}
}
