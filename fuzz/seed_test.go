package fuzz

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedStore_LoadMissingFileReturnsZero(t *testing.T) {
	store := &SeedStore{Path: filepath.Join(t.TempDir(), "does-not-exist")}
	seed, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), seed)
}

func TestSeedStore_SaveThenLoadRoundTrips(t *testing.T) {
	store := &SeedStore{Path: filepath.Join(t.TempDir(), "seed")}
	require.NoError(t, store.Save(123456789))

	seed, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(123456789), seed)
}

func TestSeedStore_RoundTripsFull64BitRange(t *testing.T) {
	store := &SeedStore{Path: filepath.Join(t.TempDir(), "seed")}
	const big = ^uint64(0)
	require.NoError(t, store.Save(big))

	seed, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, big, seed)
}

func TestSeedStore_TolerantOfTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed")
	require.NoError(t, os.WriteFile(path, []byte("42\n"), 0o644))

	store := &SeedStore{Path: path}
	seed, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), seed)
}

func TestSeedStore_RejectsOversizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("1", maxSeedFileBytes+1)), 0o644))

	store := &SeedStore{Path: path}
	_, err := store.Load()
	assert.Error(t, err)
}

func TestSeedStore_RejectsNonNumericContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed")
	require.NoError(t, os.WriteFile(path, []byte("not-a-number"), 0o644))

	store := &SeedStore{Path: path}
	_, err := store.Load()
	assert.Error(t, err)
}
