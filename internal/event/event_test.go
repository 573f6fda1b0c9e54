package event

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetNonceReplacesExisting(t *testing.T) {
	src := []byte(`{"content":"hi","tags":[["nonce","0"]],"created_at":1700000000}`)
	want := []byte(`{"content":"hi","tags":[["nonce","7"]],"created_at":1700000000}`)

	got := SetNonce(src, 7)
	require.Equal(t, string(want), string(got))
}

func TestSetNonceRoundTripsToZero(t *testing.T) {
	src := []byte(`{"content":"hi","tags":[["nonce","0"]],"created_at":1700000000}`)
	mutated := SetNonce(src, 12345)
	restored := SetNonce(mutated, 0)
	require.Equal(t, string(src), string(restored))
}

func TestSetNonceReplacesQuotedMultiDigit(t *testing.T) {
	src := []byte(`{"tags":[["nonce","99"]],"created_at":1}`)
	want := []byte(`{"tags":[["nonce","7"]],"created_at":1}`)
	got := SetNonce(src, 7)
	require.Equal(t, string(want), string(got))
}

func TestSetNonceInsertsIntoEmptyTags(t *testing.T) {
	src := []byte(`{"content":"hi","tags":[],"created_at":1700000000}`)
	want := []byte(`{"content":"hi","tags":[["nonce","42"]],"created_at":1700000000}`)
	got := SetNonce(src, 42)
	require.Equal(t, string(want), string(got))
}

func TestSetNonceInsertsBeforeExistingTags(t *testing.T) {
	src := []byte(`{"tags":[["e","abc"],["p","def"]]}`)
	want := []byte(`{"tags":[["nonce","42"],["e","abc"],["p","def"]]}`)
	got := SetNonce(src, 42)
	require.Equal(t, string(want), string(got))
}

func TestSetNonceUnchangedWhenNoTagsOrNonce(t *testing.T) {
	src := []byte(`{"content":"no tags here"}`)
	got := SetNonce(src, 1)
	require.Equal(t, string(src), string(got))
}

func TestPlannerMatchesSetNonce(t *testing.T) {
	src := []byte(`{"content":"hi","tags":[],"created_at":1700000000}`)
	p := NewPlanner(src)
	require.True(t, p.Valid())

	var buf []byte
	for _, n := range []uint64{0, 1, 999999, 18446744073709551615} {
		buf = p.Render(buf, n)
		require.Equal(t, string(SetNonce(src, n)), string(buf))
	}
}

func TestSetTimestamp(t *testing.T) {
	src := []byte(`{"created_at":1700000000,"content":"hi"}`)
	want := []byte(`{"created_at":42,"content":"hi"}`)
	got := SetTimestamp(src, 42)
	require.Equal(t, string(want), string(got))
}

func TestSetTimestampMissingFieldUnchanged(t *testing.T) {
	src := []byte(`{"content":"hi"}`)
	got := SetTimestamp(src, 42)
	require.Equal(t, string(src), string(got))
}

func TestIncrementTimestamp(t *testing.T) {
	src := []byte(`{"created_at":1700000000,"content":"hi"}`)
	want := []byte(`{"created_at":1700000005,"content":"hi"}`)
	got := IncrementTimestamp(src, 5)
	require.Equal(t, string(want), string(got))
}

func TestIncrementTimestampAtEndOfObject(t *testing.T) {
	src := []byte(`{"content":"hi","created_at":100}`)
	want := []byte(`{"content":"hi","created_at":101}`)
	got := IncrementTimestamp(src, 1)
	require.Equal(t, string(want), string(got))
}
