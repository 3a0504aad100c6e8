package deflate

import (
	"bytes"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decode runs compressed through klauspost/compress/flate's raw DEFLATE
// reader, used purely as a decode-side correctness oracle: it never
// participates in encoding.
func decode(t *testing.T, compressed []byte) []byte {
	t.Helper()
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	return got
}

func compress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf)
	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.NoError(t, w.Finish())
	return buf.Bytes()
}

func TestWriter_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	random := make([]byte, 5000)
	rng.Read(random)

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: []byte{}},
		{name: "single byte", data: []byte("x")},
		{name: "short text", data: []byte("Hello, World!")},
		{name: "highly repetitive", data: bytes.Repeat([]byte("abcabcabc"), 5000)},
		{name: "all zero", data: make([]byte, 100000)},
		{name: "random binary", data: random},
		{name: "text with long run", data: []byte(strings.Repeat("the quick brown fox jumps over the lazy dog. ", 2000))},
		{name: "exactly one block", data: bytes.Repeat([]byte{0x7}, maxBlockSize)},
		{name: "spans several blocks", data: bytes.Repeat([]byte("0123456789"), maxBlockSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed := compress(t, tt.data)
			got := decode(t, compressed)
			assert.Equal(t, tt.data, got)
		})
	}
}

func TestWriter_WriteCalledIncrementally(t *testing.T) {
	data := bytes.Repeat([]byte("incremental-write-test-"), 10000)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for i := 0; i < len(data); i += 777 {
		end := i + 777
		if end > len(data) {
			end = len(data)
		}
		n, err := w.Write(data[i:end])
		require.NoError(t, err)
		require.Equal(t, end-i, n)
	}
	require.NoError(t, w.Finish())

	got := decode(t, buf.Bytes())
	assert.Equal(t, data, got)
}

func TestWriter_FinishIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_, err := w.Write([]byte("some data"))
	require.NoError(t, err)
	require.NoError(t, w.Finish())
	require.NoError(t, w.Finish())
}

func TestWriter_WriteAfterFinishFails(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Finish())
	_, err := w.Write([]byte("too late"))
	assert.Error(t, err)
}
