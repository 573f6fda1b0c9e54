package sha256core

import (
	"encoding/hex"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOneshotVectors(t *testing.T) {
	vecs := []struct {
		name string
		in   []byte
		want string
	}{
		{"empty", []byte(""), "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", []byte("abc"), "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}
	for _, v := range vecs {
		v := v
		t.Run(v.name, func(t *testing.T) {
			got := Sum256(v.in)
			require.Equal(t, v.want, hex.EncodeToString(got[:]))
		})
	}
}

func TestMillionAVector(t *testing.T) {
	data := make([]byte, 1_000_000)
	for i := range data {
		data[i] = 'a'
	}
	got := Sum256(data)
	require.Equal(t, "cdc76e5c9914fb9281a1c7e284d73e67f1809a48a497200e046d39ccc7112cd0", hex.EncodeToString(got[:]))
}

// TestIncrementalMatchesOneshot feeds the same message through Write in
// varying chunk sizes and checks it matches the oneshot digest.
func TestIncrementalMatchesOneshot(t *testing.T) {
	msg := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog ", 200))
	want := Sum256(msg)

	for _, chunk := range []int{1, 3, 7, 64, 65, 127, 1000} {
		chunk := chunk
		t.Run(strconv.Itoa(chunk), func(t *testing.T) {
			c := New()
			for i := 0; i < len(msg); i += chunk {
				end := i + chunk
				if end > len(msg) {
					end = len(msg)
				}
				_, err := c.Write(msg[i:end])
				require.NoError(t, err)
			}
			got := c.Sum()
			require.Equal(t, want, got)
		})
	}
}

func TestResetReuse(t *testing.T) {
	c := New()
	_, _ = c.Write([]byte("abc"))
	first := c.Sum()

	c.Reset()
	_, _ = c.Write([]byte("abc"))
	second := c.Sum()

	require.Equal(t, first, second)
}

func TestCountLeadingZeros(t *testing.T) {
	for i := 0; i <= 256; i++ {
		d := digestWithLeadingZeroBits(i)
		got := CountLeadingZeros(d)
		require.Equal(t, i, got, "i=%d", i)
	}
}

// digestWithLeadingZeroBits builds the 256-bit integer 2^(256-i) - 1: i
// leading zero bits followed by all ones.
func digestWithLeadingZeroBits(i int) Digest {
	var d Digest
	for bit := 0; bit < 256; bit++ {
		if bit >= i {
			byteIdx := bit / 8
			bitIdx := 7 - (bit % 8)
			d[byteIdx] |= 1 << uint(bitIdx)
		}
	}
	return d
}

func TestSIMDMatchesEmbedded(t *testing.T) {
	inputs := [][]byte{
		[]byte(""),
		[]byte("abc"),
		[]byte(strings.Repeat("x", 1000)),
	}
	for _, in := range inputs {
		require.Equal(t, Sum256(in), Sum256SIMD(in))

		h := NewSIMD()
		_, _ = h.Write(in)
		require.Equal(t, Sum256(in), h.Sum())
	}
}
