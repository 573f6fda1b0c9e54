// Package sha256core implements FIPS 180-4 SHA-256 from scratch, for the
// miner's hot loop.
//
// An embedded implementation avoids a system crypto dependency on the path
// that gets called millions of times per second, and keeps message
// construction (internal/event) and compression close enough together that
// future work can fuse them. See NewSIMD for the accelerated alternative
// this package also exposes, for installs that want sha256-simd's SIMD/ISA
// paths instead.
package sha256core

import "encoding/binary"

// Size is the length in bytes of a SHA-256 digest.
const Size = 32

// BlockSize is the block size, in bytes, of the SHA-256 compression
// function's input.
const BlockSize = 64

// Digest is a completed 32-byte SHA-256 hash value.
type Digest = [Size]byte

// Hasher is the common interface both the embedded reference implementation
// and the SIMD-accelerated wrapper satisfy.
type Hasher interface {
	Write(p []byte) (int, error)
	Sum() Digest
	Reset()
}

// iv holds the eight SHA-256 initial hash values, the fractional parts of
// the square roots of the first 8 primes.
var iv = [8]uint32{
	0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
	0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
}

// k holds the 64 SHA-256 round constants, the fractional parts of the cube
// roots of the first 64 primes.
var k = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5, 0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3, 0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc, 0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7, 0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13, 0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3, 0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5, 0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208, 0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

// Context is a SHA-256 hashing context supporting both incremental Write
// calls and a oneshot Sum256.
type Context struct {
	state  [8]uint32
	buf    [BlockSize]byte
	nbuf   int   // valid bytes currently sitting in buf
	length uint64 // total message length in bytes, pre-padding
}

// New returns a Context reset to the initial state.
func New() *Context {
	c := &Context{}
	c.Reset()
	return c
}

// Reset restores the context to its just-initialized state.
func (c *Context) Reset() {
	c.state = iv
	c.nbuf = 0
	c.length = 0
}

// Write absorbs p into the running hash, compressing every full 64-byte
// block as it fills and buffering any partial trailing remainder at
// buf[0:nbuf]. It never reads or writes outside that region.
func (c *Context) Write(p []byte) (int, error) {
	n := len(p)
	c.length += uint64(n)

	if c.nbuf > 0 {
		copied := copy(c.buf[c.nbuf:], p)
		c.nbuf += copied
		p = p[copied:]
		if c.nbuf == BlockSize {
			block(&c.state, c.buf[:])
			c.nbuf = 0
		}
	}

	for len(p) >= BlockSize {
		block(&c.state, p[:BlockSize])
		p = p[BlockSize:]
	}

	if len(p) > 0 {
		c.nbuf = copy(c.buf[:], p)
	}

	return n, nil
}

// Sum finalizes the hash — padding with 0x80, zero bytes out to 56 mod 64,
// then the pre-padding bit length as a big-endian uint64 — and returns the
// digest. The context is left unusable; call Reset before reusing it.
func (c *Context) Sum() Digest {
	bitLen := c.length * 8

	// 0x80 then zero-pad so the padded length is 56 mod 64.
	var pad [BlockSize]byte
	pad[0] = 0x80
	padLen := 56 - int(c.length%BlockSize)
	if padLen <= 0 {
		padLen += BlockSize
	}
	c.Write(pad[:padLen])

	var lenBytes [8]byte
	binary.BigEndian.PutUint64(lenBytes[:], bitLen)
	c.Write(lenBytes[:])

	var digest Digest
	for i, s := range c.state {
		binary.BigEndian.PutUint32(digest[i*4:i*4+4], s)
	}
	return digest
}

// Sum256 computes the SHA-256 digest of data in one call, without
// allocating a Context on the heap for the caller (the hot mining loop
// calls this once per nonce attempt).
func Sum256(data []byte) Digest {
	var c Context
	c.Reset()
	c.Write(data)
	return c.Sum()
}

func rotr(x uint32, n uint) uint32 { return x>>n | x<<(32-n) }

// block runs the SHA-256 compression function over a single 64-byte
// message block, updating state in place.
func block(state *[8]uint32, p []byte) {
	var w [64]uint32
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(p[i*4 : i*4+4])
	}
	for i := 16; i < 64; i++ {
		s0 := rotr(w[i-15], 7) ^ rotr(w[i-15], 18) ^ (w[i-15] >> 3)
		s1 := rotr(w[i-2], 17) ^ rotr(w[i-2], 19) ^ (w[i-2] >> 10)
		w[i] = w[i-16] + s0 + w[i-7] + s1
	}

	a, b, c, d, e, f, g, h := state[0], state[1], state[2], state[3], state[4], state[5], state[6], state[7]

	for i := 0; i < 64; i++ {
		s1 := rotr(e, 6) ^ rotr(e, 11) ^ rotr(e, 25)
		ch := (e & f) ^ (^e & g)
		t1 := h + s1 + ch + k[i] + w[i]
		s0 := rotr(a, 2) ^ rotr(a, 13) ^ rotr(a, 22)
		maj := (a & b) ^ (a & c) ^ (b & c)
		t2 := s0 + maj

		h = g
		g = f
		f = e
		e = d + t1
		d = c
		c = b
		b = a
		a = t1 + t2
	}

	state[0] += a
	state[1] += b
	state[2] += c
	state[3] += d
	state[4] += e
	state[5] += f
	state[6] += g
	state[7] += h
}

// CountLeadingZeros returns the number of leading zero bits in digest,
// scanning bytes left to right from byte 0's most significant bit.
func CountLeadingZeros(digest Digest) int {
	zeros := 0
	for _, b := range digest {
		if b == 0 {
			zeros += 8
			continue
		}
		for mask := byte(0x80); mask != 0 && b&mask == 0; mask >>= 1 {
			zeros++
		}
		break
	}
	return zeros
}
