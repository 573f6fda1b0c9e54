// Package powsearch implements the nonce search: given an event and a
// difficulty target, it tries candidate nonces over a half-open range until
// it finds one whose serialized-and-hashed digest has enough leading zero
// bits, or the range runs out. Both the single-threaded and the
// worker-pool-parallel forms live here; the parallel form partitions the
// range into contiguous disjoint subranges and races workers against a
// shared "first solution wins" latch.
package powsearch

import (
	"sync"

	"github.com/ynniv/nip13-miner/internal/event"
	"github.com/ynniv/nip13-miner/internal/sha256core"
)

// Range is a half-open interval of candidate nonces [Start, End).
type Range struct {
	Start uint64
	End   uint64
}

// Len reports the number of nonces covered by r.
func (r Range) Len() uint64 {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Result is the outcome of a search over a range.
type Result struct {
	Found    bool
	Nonce    uint64
	Attempts uint64
}

// HashFunc computes a digest over a serialized event. Search and
// SearchParallel use sha256core.Sum256 by default; SearchWithHasher and
// SearchParallelWithHasher accept an alternate, such as
// sha256core.Sum256SIMD, for callers that want the accelerated path.
type HashFunc func([]byte) sha256core.Digest

// Partition splits r into workers contiguous, disjoint subranges of size
// len(r)/workers each; the last subrange also absorbs the remainder. The
// union of the returned subranges equals r exactly.
func Partition(r Range, workers int) []Range {
	if workers < 1 {
		workers = 1
	}
	total := r.Len()
	size := total / uint64(workers)

	subs := make([]Range, workers)
	start := r.Start
	for i := 0; i < workers; i++ {
		end := start + size
		if i == workers-1 {
			end = r.End
		}
		subs[i] = Range{Start: start, End: end}
		start = end
	}
	return subs
}

// Latch is the shared "first solution wins" flag the parallel search races
// workers against. The mutex guards both the found flag and the winning
// nonce; IsSet takes it once per hot-loop attempt, and every acquisition
// holds it for no more than a flag check and a single store.
type Latch struct {
	mu    sync.Mutex
	found bool
	nonce uint64
}

// IsSet reports whether a worker has already won the latch.
func (l *Latch) IsSet() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.found
}

// TrySet attempts to claim the latch for nonce. It returns true if this
// call was the one that set it (the caller won the race); a later TrySet
// from another worker for a different nonce returns false and does not
// overwrite the winning nonce.
func (l *Latch) TrySet(nonce uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.found {
		return false
	}
	l.found = true
	l.nonce = nonce
	return true
}

// Winner returns the recorded winning nonce and whether one was ever set.
func (l *Latch) Winner() (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nonce, l.found
}

// Search tries every nonce in r in order, returning the first one whose
// serialized-and-hashed digest has at least difficulty leading zero bits.
func Search(evt []byte, difficulty int, r Range) Result {
	return SearchWithHasher(evt, difficulty, r, sha256core.Sum256)
}

// SearchWithHasher is Search with a caller-supplied hash function, so
// callers can opt into the SIMD-accelerated hasher on the hot path.
func SearchWithHasher(evt []byte, difficulty int, r Range, hash HashFunc) Result {
	planner := event.NewPlanner(evt)
	var buf []byte

	var attempts uint64
	for n := r.Start; n < r.End; n++ {
		buf = planner.Render(buf, n)
		digest := hash(buf)
		attempts++
		if sha256core.CountLeadingZeros(digest) >= difficulty {
			return Result{Found: true, Nonce: n, Attempts: attempts}
		}
	}
	return Result{Found: false, Attempts: attempts}
}

// searchWithLatch runs the single-threaded search loop over r, but checks
// latch before every hash attempt and aborts early if a peer has already
// won. It always reports its own local attempt count, win or lose.
func searchWithLatch(evt []byte, difficulty int, r Range, latch *Latch, hash HashFunc) Result {
	planner := event.NewPlanner(evt)
	var buf []byte

	var attempts uint64
	for n := r.Start; n < r.End; n++ {
		if latch.IsSet() {
			return Result{Found: false, Attempts: attempts}
		}
		buf = planner.Render(buf, n)
		digest := hash(buf)
		attempts++
		if sha256core.CountLeadingZeros(digest) >= difficulty {
			latch.TrySet(n)
			return Result{Found: true, Nonce: n, Attempts: attempts}
		}
	}
	return Result{Found: false, Attempts: attempts}
}

// SearchParallel partitions r into workers contiguous subranges and runs
// one goroutine per subrange, each racing against a shared Latch. The
// returned nonce is whichever worker wins the latch race — not necessarily
// the numerically smallest qualifying nonce in r — since enforcing
// lowest-wins would require a barrier the protocol doesn't need. Total
// attempts is the sum of each worker's local counter, accumulated after all
// workers have joined.
func SearchParallel(evt []byte, difficulty int, r Range, workers int) Result {
	return SearchParallelWithHasher(evt, difficulty, r, workers, sha256core.Sum256)
}

// SearchParallelWithHasher is SearchParallel with a caller-supplied hash
// function, so callers can opt into the SIMD-accelerated hasher on the hot
// path.
func SearchParallelWithHasher(evt []byte, difficulty int, r Range, workers int, hash HashFunc) Result {
	subs := Partition(r, workers)
	latch := &Latch{}

	var wg sync.WaitGroup
	counts := make([]uint64, len(subs))

	for i, sub := range subs {
		i, sub := i, sub
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := searchWithLatch(evt, difficulty, sub, latch, hash)
			counts[i] = res.Attempts
		}()
	}
	wg.Wait()

	var total uint64
	for _, c := range counts {
		total += c
	}

	nonce, found := latch.Winner()
	return Result{Found: found, Nonce: nonce, Attempts: total}
}
