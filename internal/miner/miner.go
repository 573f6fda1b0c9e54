// Package miner implements the benchmark driver: it chains SearchParallel
// invocations across a sequence of distinct pre-images to produce K
// independent solutions at a fixed difficulty, and reports aggregate
// throughput statistics.
package miner

import (
	"fmt"
	"time"

	"github.com/ynniv/nip13-miner/internal/event"
	"github.com/ynniv/nip13-miner/internal/powsearch"
	"github.com/ynniv/nip13-miner/internal/sha256core"
)

// initialRangeEnd is the width of the first search window tried for each
// solution; rangeCap is the hard ceiling a window is extended up to before
// the benchmark gives up on that solution.
const (
	initialRangeEnd = 100_000_000      // 10^8
	rangeCap        = 1_000_000_000_000 // 10^12
)

// Report is the final statistics produced by RunBenchmark.
type Report struct {
	Solutions       int
	ElapsedSeconds  float64
	TotalAttempts   uint64
	SolutionsPerSec float64
	HashRateMHs     float64
	MeanAttempts    float64
}

// ErrRangeCapExceeded is returned when a single solution's search window
// grows past rangeCap without finding a qualifying nonce.
type ErrRangeCapExceeded struct {
	Solution int
}

func (e *ErrRangeCapExceeded) Error() string {
	return fmt.Sprintf("benchmark: solution %d exceeded the %d-nonce search cap without a match", e.Solution, rangeCap)
}

// RunBenchmark produces solutions independent PoW solutions at difficulty
// against evt, using workers goroutines per search. Between solutions it
// advances the event's timestamp by one second and resets the starting
// nonce back to 1, so each search traverses a fresh pre-image space (the
// strategy the source's parallel benchmark uses, as opposed to the
// single-threaded benchmark's advance-past-found-nonce strategy — see
// the design notes for why this implementation picked this one).
func RunBenchmark(evt []byte, difficulty, solutions, workers int) (Report, error) {
	return RunBenchmarkWithHasher(evt, difficulty, solutions, workers, sha256core.Sum256)
}

// RunBenchmarkWithHasher is RunBenchmark with a caller-supplied hash
// function, so callers can opt into the SIMD-accelerated hasher.
func RunBenchmarkWithHasher(evt []byte, difficulty, solutions, workers int, hash powsearch.HashFunc) (Report, error) {
	return runBenchmark(evt, difficulty, solutions, workers, hash, initialRangeEnd, rangeCap)
}

// runBenchmark is RunBenchmarkWithHasher with the window size and cap
// broken out as parameters, so tests can exercise the range-extension path
// (§4.4: on a failed window, slide the start forward by windowSize and
// retry over the next non-overlapping window, same as the source's
// `starting_nonce += 100000000ULL`) without searching billions of nonces.
func runBenchmark(evt []byte, difficulty, solutions, workers int, hash powsearch.HashFunc, windowSize, rangeMax uint64) (Report, error) {
	start := time.Now()

	current := append([]byte(nil), evt...)
	var totalAttempts uint64

	for i := 0; i < solutions; i++ {
		rangeStart := uint64(1)
		rangeEnd := windowSize
		var res powsearch.Result

		for {
			res = powsearch.SearchParallelWithHasher(current, difficulty, powsearch.Range{Start: rangeStart, End: rangeEnd}, workers, hash)
			totalAttempts += res.Attempts
			if res.Found {
				break
			}
			if rangeEnd >= rangeMax {
				elapsed := time.Since(start).Seconds()
				return buildReport(i, elapsed, totalAttempts), &ErrRangeCapExceeded{Solution: i}
			}
			rangeStart = rangeEnd
			rangeEnd += windowSize
			if rangeEnd > rangeMax {
				rangeEnd = rangeMax
			}
		}

		current = event.IncrementTimestamp(current, 1)
	}

	elapsed := time.Since(start).Seconds()
	return buildReport(solutions, elapsed, totalAttempts), nil
}

func buildReport(solutions int, elapsed float64, totalAttempts uint64) Report {
	r := Report{
		Solutions:      solutions,
		ElapsedSeconds: elapsed,
		TotalAttempts:  totalAttempts,
	}
	if elapsed > 0 {
		r.SolutionsPerSec = float64(solutions) / elapsed
		r.HashRateMHs = float64(totalAttempts) / elapsed / 1_000_000
	}
	if solutions > 0 {
		r.MeanAttempts = float64(totalAttempts) / float64(solutions)
	}
	return r
}
