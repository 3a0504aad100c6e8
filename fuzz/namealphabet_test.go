package fuzz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeName_FirstBucketIsSingleCharacters(t *testing.T) {
	assert.Equal(t, "0", encodeName(0))
	assert.Equal(t, "1", encodeName(1))
	assert.Equal(t, string(nameAlphabet[nameAlphabetSize-1]), encodeName(nameAlphabetSize-1))
}

func TestEncodeName_SecondBucketIsTwoCharacters(t *testing.T) {
	name := encodeName(nameAlphabetSize)
	assert.Len(t, name, 2)
}

func TestEncodeName_IsDeterministicAndUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := int64(0); i < 20000; i++ {
		name := encodeName(i)
		assert.False(t, seen[name], "index %d produced duplicate name %q", i, name)
		seen[name] = true
		assert.Equal(t, name, encodeName(i), "encoding must be deterministic")
	}
}

func TestEncodeName_RemapsDotSentinels(t *testing.T) {
	for i := int64(0); i < 20000; i++ {
		name := encodeName(i)
		assert.NotEqual(t, ".", name)
		assert.NotEqual(t, "..", name)
	}
}
