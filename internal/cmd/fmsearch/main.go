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

// fmsearch maps paired sequencing reads to a reference text with an FM-index.
//
// The reference is read from <base>.txt, its suffix array from <base>.sa and the suffix array of
// the reversed reference from <base>.rev.sa. Suffix arrays are either binary little endian 32 bit
// integers or whitespace separated text. Reads are read from a FASTA file where consecutive
// sequences form a pair.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hack-pad/hackpadfs"
	hpos "github.com/hack-pad/hackpadfs/os"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"znkr.io/fmindex"
	"znkr.io/fmindex/scheme"
	"znkr.io/fmindex/seqio"
)

type config struct {
	base       string
	reads      string
	mode       string
	k          int
	scheme     string
	insertSize int
	sparse     int
	parallel   int
	stats      string
	verbose    bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.base, "base", "", "base name of the reference files <base>.txt, <base>.sa and <base>.rev.sa")
	flag.StringVar(&cfg.reads, "reads", "", "FASTA file with paired reads (default <base>.reads.fasta)")
	flag.StringVar(&cfg.mode, "mode", "scheme", "matching mode: exact, naive, scheme or paired")
	flag.IntVar(&cfg.k, "k", 2, "maximum edit distance for naive and scheme mode")
	flag.StringVar(&cfg.scheme, "scheme", "", "search scheme directory for scheme mode")
	flag.IntVar(&cfg.insertSize, "insert-size", 500, "mean insert size for paired mode")
	flag.IntVar(&cfg.sparse, "sparse", 32, "suffix array sparseness factor")
	flag.IntVar(&cfg.parallel, "parallel", runtime.GOMAXPROCS(0), "number of reads to map in parallel")
	flag.StringVar(&cfg.stats, "stats", "", "file to store per read stats in")
	flag.BoolVar(&cfg.verbose, "v", false, "enable debug logging")
	flag.Parse()

	if len(flag.CommandLine.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "error: unexpected command line arguments: %v\n", flag.CommandLine.Args())
		os.Exit(1)
	}

	if err := run(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var bars = []string{
	" ",
	"▏",
	"▎",
	"▍",
	"▌",
	"▋",
	"▊",
	"▉",
	"█",
}

type result struct {
	read     string
	occs     int
	duration time.Duration
}

// mapper maps a single read and returns the start offsets of its occurrences.
type mapper func(read string) []fmindex.Length

// selector hands out the same trace for every key.
type selector struct{ tr tracing.Trace }

func (s selector) Select(string) tracing.Trace { return s.tr }

func setupTracing(verbose bool) tracing.Trace {
	tr := gologadapter.New()
	tracing.SetTraceSelector(selector{tr})
	tr.SetTraceLevel(tracing.LevelInfo)
	if verbose {
		tr.SetTraceLevel(tracing.LevelDebug)
	}
	return tr
}

// fsPath converts a path of the operating system to a path in fsys.
func fsPath(fsys *hpos.FS, p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return fsys.FromOSPath(abs)
}

func loadIndex(fsys hackpadfs.FS, base string, sparse int) (*fmindex.BiIndex, error) {
	text, err := seqio.ReadText(fsys, base+".txt")
	if err != nil {
		return nil, err
	}
	sa, err := seqio.ReadSA(fsys, base+".sa", len(text))
	if err != nil {
		return nil, err
	}
	revSA, err := seqio.ReadSA(fsys, base+".rev.sa", len(text))
	if err != nil {
		return nil, err
	}
	return fmindex.NewBidirectional(text, sa, revSA, fmindex.SparseFactor(sparse))
}

func newMapper(cfg *config, fsys *hpos.FS, bi *fmindex.BiIndex) (mapper, error) {
	locate := func(occs []fmindex.TextOcc) []fmindex.Length {
		out := make([]fmindex.Length, len(occs))
		for i, o := range occs {
			out[i] = o.Range.Begin
		}
		return out
	}
	switch cfg.mode {
	case "exact":
		return bi.MatchExact, nil
	case "naive":
		return func(read string) []fmindex.Length {
			return locate(bi.NaiveApproxMatch(read, cfg.k))
		}, nil
	case "scheme":
		if cfg.scheme == "" {
			return nil, fmt.Errorf("scheme mode requires -scheme")
		}
		dir, err := fsPath(fsys, cfg.scheme)
		if err != nil {
			return nil, err
		}
		s, err := scheme.Load(bi, fsys, dir, cfg.k)
		if err != nil {
			return nil, fmt.Errorf("loading search scheme: %w", err)
		}
		return func(read string) []fmindex.Length {
			return locate(s.MatchApprox(read))
		}, nil
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.mode)
	}
}

func run(cfg *config) error {
	tr := setupTracing(cfg.verbose)
	if cfg.base == "" {
		return fmt.Errorf("missing -base")
	}
	if cfg.reads == "" {
		cfg.reads = cfg.base + ".reads.fasta"
	}

	fsys := hpos.NewFS()
	base, err := fsPath(fsys, cfg.base)
	if err != nil {
		return err
	}
	readsPath, err := fsPath(fsys, cfg.reads)
	if err != nil {
		return err
	}

	start := time.Now()
	bi, err := loadIndex(fsys, base, cfg.sparse)
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}
	tr.Infof("index for %s built in %v", cfg.base, time.Since(start))

	pairs, err := seqio.ReadPairedReads(fsys, readsPath)
	if err != nil {
		return err
	}
	tr.Infof("read %d read pairs from %s", len(pairs), cfg.reads)

	var stats *os.File
	if cfg.stats != "" {
		stats, err = os.Create(cfg.stats)
		if err != nil {
			return fmt.Errorf("creating stats file: %v", err)
		}
		defer stats.Close()
	}

	var mapPair func(pair seqio.ReadPair, loci *roaring.Bitmap, results chan<- result) bool
	if cfg.mode == "paired" {
		mapPair = func(pair seqio.ReadPair, loci *roaring.Bitmap, results chan<- result) bool {
			t := time.Now()
			m, ok := bi.BestPairedMatch(pair.First, pair.Second, fmindex.Length(cfg.insertSize))
			if ok {
				loci.Add(m.Pos1)
				loci.Add(m.Pos2)
			}
			if results != nil {
				results <- result{read: pair.First + "/" + pair.Second, occs: boolToInt(ok), duration: time.Since(t)}
			}
			return ok
		}
	} else {
		m, err := newMapper(cfg, fsys, bi)
		if err != nil {
			return err
		}
		mapPair = func(pair seqio.ReadPair, loci *roaring.Bitmap, results chan<- result) bool {
			matched := false
			for _, read := range []string{pair.First, pair.Second} {
				t := time.Now()
				positions := m(read)
				if results != nil {
					results <- result{read: read, occs: len(positions), duration: time.Since(t)}
				}
				loci.AddMany(positions)
				matched = matched || len(positions) > 0
			}
			return matched
		}
	}

	// Map reads.
	start = time.Now()
	var processed, matched atomic.Int64
	var results chan result
	if stats != nil {
		results = make(chan result)
	}
	chunkSize := max(1, len(pairs)/(4*max(1, cfg.parallel)))
	chunks := make(chan []seqio.ReadPair)
	go func() {
		defer close(chunks)
		for chunk := range slices.Chunk(pairs, chunkSize) {
			chunks <- chunk
		}
	}()
	perWorker := make([]*roaring.Bitmap, max(1, cfg.parallel))
	var processWG sync.WaitGroup
	for i := range perWorker {
		perWorker[i] = roaring.New()
		processWG.Add(1)
		go func() {
			defer processWG.Done()
			for chunk := range chunks {
				for _, pair := range chunk {
					if mapPair(pair, perWorker[i], results) {
						matched.Add(1)
					}
					processed.Add(1)
				}
			}
		}()
	}

	// Render progress
	done := make(chan struct{})
	var ioWG sync.WaitGroup
	render := func() {
		const width = 60
		processed := processed.Load()
		progress := 1.0
		if len(pairs) > 0 {
			progress = float64(processed) / float64(len(pairs))
		}
		whole := int(progress * width)
		remainder := math.Mod(progress*width, 1)
		last := bars[max(0, min(len(bars)-1, int(remainder*float64(len(bars)))))]
		if width-whole < 1 {
			last = ""
		}
		bar := strings.Repeat(bars[len(bars)-1], whole) + last
		var pairsPerSec int
		if processed > 0 {
			pairsPerSec = int((time.Duration(processed) * time.Second) / time.Since(start))
		}
		fmt.Printf("\r[%-*s] % 3.1f%% (%d pairs/s) ", width, bar, 100*progress, pairsPerSec)
	}
	ioWG.Add(1)
	go func() {
		defer ioWG.Done()
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				render()

			case <-done:
				render()
				fmt.Printf("\n")
				return
			}
		}
	}()
	var statsErr error
	if stats != nil {
		ioWG.Add(1)
		go func() {
			defer ioWG.Done()
			w := bufio.NewWriter(stats)
			w.WriteString("read,mode,occurrences,duration_ns\n")
			for result := range results {
				_, err := fmt.Fprintf(w, "%s,%s,%d,%d\n", result.read, cfg.mode, result.occs, result.duration.Nanoseconds())
				if err != nil && statsErr == nil {
					statsErr = fmt.Errorf("writing stats: %v", err)
				}
			}
			if err := w.Flush(); err != nil && statsErr == nil {
				statsErr = fmt.Errorf("flushing stats: %v", err)
			}
		}()
	}

	// Shutdown
	processWG.Wait()
	if results != nil {
		close(results)
	}
	close(done)
	ioWG.Wait()
	if statsErr != nil {
		return statsErr
	}

	loci := roaring.FastOr(perWorker...)
	tr.Infof("mapped %d of %d read pairs in %v, %d distinct loci",
		matched.Load(), len(pairs), time.Since(start), loci.GetCardinality())
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
