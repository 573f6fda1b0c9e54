// Command nip13-miner mines a NIP-13 proof-of-work nonce for a nostr event
// file: it repeatedly splices a candidate nonce into the event's tags,
// hashes the result, and stops at the first digest whose leading zero bit
// count meets the requested difficulty.
package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/alexflint/go-arg"

	"github.com/ynniv/nip13-miner/internal/event"
	"github.com/ynniv/nip13-miner/internal/miner"
	"github.com/ynniv/nip13-miner/internal/powsearch"
	"github.com/ynniv/nip13-miner/internal/sha256core"
)

var args struct {
	Event      string `arg:"positional,required" help:"path to the event JSON file to mine"`
	Difficulty int    `arg:"--difficulty" default:"16" help:"required leading zero bits, 1-32"`
	Attempts   int    `arg:"--attempts" default:"100" help:"max attempts in millions, ignored with --benchmark"`
	Benchmark  int    `arg:"--benchmark" help:"run K independent benchmark solutions instead of a single mine"`
	Threads    int    `arg:"--threads" help:"worker goroutines, 1-128 (default: online CPU count)"`
	SIMD       bool   `arg:"--simd" help:"use the SIMD-accelerated hasher instead of the embedded one"`
	Single     bool   `arg:"--single" help:"run the single-threaded search engine and write mined_<original> instead"`
}

func main() {
	arg.MustParse(&args)

	if args.Threads == 0 {
		args.Threads = runtime.NumCPU()
	}
	if args.Difficulty < 1 || args.Difficulty > 32 {
		log.Fatalf("nip13-miner: difficulty %d out of range [1, 32]", args.Difficulty)
	}
	if args.Threads < 1 || args.Threads > 128 {
		log.Fatalf("nip13-miner: threads %d out of range [1, 128]", args.Threads)
	}
	if args.Benchmark != 0 && args.Benchmark < 1 {
		log.Fatalf("nip13-miner: --benchmark K must be >= 1, got %d", args.Benchmark)
	}

	raw, err := os.ReadFile(args.Event)
	if err != nil {
		log.Fatalf("nip13-miner: reading %s: %v", args.Event, err)
	}
	evt := bytes.TrimRight(raw, "\r\n \t")

	if !validateEvent(evt) {
		log.Fatalf("nip13-miner: malformed event: no \"nonce\" tag and no \"tags\" array found in %s", args.Event)
	}

	fmt.Printf("SHA-256: %s\n", hasherBanner())

	switch {
	case args.Benchmark != 0:
		runBenchmark(evt)
	default:
		runMine(evt)
	}
}

// validateEvent reports whether evt has a splice point for a nonce — an
// existing "nonce" tag, or a "tags" array to insert one into. It's the
// gate main fatals on for the malformed-event case (spec §7 kind 5); kept
// as its own function so that check is exercised directly in tests rather
// than only implicitly through main's exit path.
func validateEvent(evt []byte) bool {
	return event.NewPlanner(evt).Valid()
}

func hasherBanner() string {
	if args.SIMD {
		return "SIMD-accelerated (" + sha256core.AccelerationTier() + ")"
	}
	return "embedded reference implementation"
}

func runMine(evt []byte) {
	maxAttempts := uint64(args.Attempts) * 1_000_000
	r := powsearch.Range{Start: 0, End: maxAttempts}
	hash := sha256core.Sum256
	if args.SIMD {
		hash = sha256core.Sum256SIMD
	}

	var res powsearch.Result
	if args.Single {
		res = powsearch.SearchWithHasher(evt, args.Difficulty, r, hash)
	} else {
		res = powsearch.SearchParallelWithHasher(evt, args.Difficulty, r, args.Threads, hash)
	}

	if !res.Found {
		log.Fatalf("nip13-miner: mining failed: exhausted %d attempts at difficulty %d", res.Attempts, args.Difficulty)
	}

	mined := event.SetNonce(evt, res.Nonce)
	outPath := outputPath(args.Event, args.Single)
	out := append(append([]byte(nil), mined...), '\n')
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		log.Fatalf("nip13-miner: writing %s: %v", outPath, err)
	}

	fmt.Printf("found nonce %d after %d attempts -> %s\n", res.Nonce, res.Attempts, outPath)
}

func runBenchmark(evt []byte) {
	hash := sha256core.Sum256
	if args.SIMD {
		hash = sha256core.Sum256SIMD
	}
	report, err := miner.RunBenchmarkWithHasher(evt, args.Difficulty, args.Benchmark, args.Threads, hash)
	if err != nil {
		log.Fatalf("nip13-miner: benchmark: %v", err)
	}

	fmt.Printf("solutions:        %d\n", report.Solutions)
	fmt.Printf("elapsed:           %.3fs\n", report.ElapsedSeconds)
	fmt.Printf("total attempts:    %d\n", report.TotalAttempts)
	fmt.Printf("solutions/sec:     %.4f\n", report.SolutionsPerSec)
	fmt.Printf("hash rate:         %.3f MH/s\n", report.HashRateMHs)
	fmt.Printf("mean attempts/sol: %.1f\n", report.MeanAttempts)
}

// outputPath derives the mined output filename from the input event path:
// mined_parallel_<original> by default, mined_<original> for --single.
func outputPath(eventPath string, single bool) string {
	dir := filepath.Dir(eventPath)
	base := filepath.Base(eventPath)
	prefix := "mined_parallel_"
	if single {
		prefix = "mined_"
	}
	return filepath.Join(dir, prefix+base)
}
