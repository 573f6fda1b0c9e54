package sha256core

import (
	sha256simd "github.com/minio/sha256-simd"
	"github.com/klauspost/cpuid/v2"
)

// simdHasher adapts minio/sha256-simd's hash.Hash to this package's Hasher
// interface, so the search engine can swap accelerated and embedded
// implementations without caring which one it got.
type simdHasher struct {
	h sha256simd.Hash
}

// NewSIMD returns a Hasher backed by sha256-simd's CPU-feature-detected
// implementation (AVX2/AVX/SSE/SHA-NI/ARM NEON, falling back to the
// standard library when none apply). It passes the same FIPS 180-4
// conformance vectors as the embedded Context, since it computes the
// identical function; the only difference is instruction selection.
func NewSIMD() Hasher {
	return &simdHasher{h: sha256simd.New()}
}

func (s *simdHasher) Write(p []byte) (int, error) {
	return s.h.Write(p)
}

func (s *simdHasher) Sum() Digest {
	var d Digest
	copy(d[:], s.h.Sum(nil))
	return d
}

func (s *simdHasher) Reset() {
	s.h.Reset()
}

// Sum256SIMD is the oneshot accelerated equivalent of Sum256, used on the
// mining hot path when --simd is selected.
func Sum256SIMD(data []byte) Digest {
	return sha256simd.Sum256(data)
}

// AccelerationTier reports which instruction set sha256-simd selected on
// this CPU, for the CLI banner (mirrors the teacher's "SHA256: Hardware
// Accelerated (SIMD)" banner line with the actual detected tier instead of
// a blanket claim).
func AccelerationTier() string {
	switch {
	case cpuid.CPU.Supports(cpuid.SHA):
		return "SHA-NI"
	case cpuid.CPU.Supports(cpuid.AVX2):
		return "AVX2"
	case cpuid.CPU.Supports(cpuid.AVX):
		return "AVX"
	case cpuid.CPU.Supports(cpuid.SSE2):
		return "SSE2"
	default:
		return "generic"
	}
}
