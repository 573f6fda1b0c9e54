package bench

import (
	"testing"

	"github.com/ynniv/nip13-miner/internal/event"
	"github.com/ynniv/nip13-miner/internal/powsearch"
	"github.com/ynniv/nip13-miner/internal/sha256core"
)

var benchEvent = []byte(`{"content":"hi","created_at":1700000000,"tags":[]}`)

// BenchmarkEmbeddedSum256 benchmarks the embedded SHA-256 implementation on
// a single mining-sized pre-image.
func BenchmarkEmbeddedSum256(b *testing.B) {
	planner := event.NewPlanner(benchEvent)
	buf := planner.Render(nil, 0)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = sha256core.Sum256(buf)
	}
}

// BenchmarkSIMDSum256 benchmarks the minio/sha256-simd-backed hasher on the
// same pre-image, for direct comparison against BenchmarkEmbeddedSum256.
func BenchmarkSIMDSum256(b *testing.B) {
	planner := event.NewPlanner(benchEvent)
	buf := planner.Render(nil, 0)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = sha256core.Sum256SIMD(buf)
	}
}

// BenchmarkPlannerRender benchmarks the allocation-free nonce splice path
// the search engine's hot loop uses.
func BenchmarkPlannerRender(b *testing.B) {
	planner := event.NewPlanner(benchEvent)
	var buf []byte

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		buf = planner.Render(buf, uint64(i))
	}
}

// BenchmarkHashPipeline benchmarks the full per-attempt pipeline: splice
// nonce, hash, count leading zero bits.
func BenchmarkHashPipeline(b *testing.B) {
	planner := event.NewPlanner(benchEvent)
	var buf []byte

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		buf = planner.Render(buf, uint64(i))
		digest := sha256core.Sum256(buf)
		_ = sha256core.CountLeadingZeros(digest)
	}
}

// BenchmarkSearchParallel benchmarks an end-to-end parallel search at a
// difficulty low enough to resolve quickly, reporting the effective
// attempts/sec across all workers.
func BenchmarkSearchParallel(b *testing.B) {
	b.ReportAllocs()

	var attempts uint64
	for i := 0; i < b.N; i++ {
		res := powsearch.SearchParallel(benchEvent, 16, powsearch.Range{Start: 0, End: 50_000_000}, 4)
		if !res.Found {
			b.Fatalf("no solution found within benchmark range")
		}
		attempts += res.Attempts
	}
	b.ReportMetric(float64(attempts)/b.Elapsed().Seconds(), "attempts/s")
}
