package fuzz

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Harness wires together a SeedStore, Generator, Runner, and Compare into
// one differential-fuzz iteration: generate a tree, zip it, unzip it,
// compare, then advance the seed.
type Harness struct {
	SeedFile   string
	ScratchDir string
	Runner     Runner
	Logger     func(format string, args ...any)
}

// RunOnce executes exactly one iteration: load the seed, recreate the
// scratch directory, generate a tree, zip it, unzip it, compare, then
// advance and persist the seed. The seed is only advanced on success, so a
// failing seed is preserved for reproduction.
func (h *Harness) RunOnce(ctx context.Context) error {
	store := &SeedStore{Path: h.SeedFile}
	seed, err := store.Load()
	if err != nil {
		return err
	}

	if err := os.RemoveAll(h.ScratchDir); err != nil {
		return fmt.Errorf("clear scratch directory %q: %w", h.ScratchDir, err)
	}

	stageDir := filepath.Join(h.ScratchDir, "stage")
	extractedDir := filepath.Join(h.ScratchDir, "extracted")
	archivePath := filepath.Join(h.ScratchDir, "archive.zip")

	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return fmt.Errorf("create stage directory: %w", err)
	}
	if err := os.MkdirAll(extractedDir, 0o755); err != nil {
		return fmt.Errorf("create extraction directory: %w", err)
	}

	g := NewGenerator(seed)
	if err := g.Generate(stageDir); err != nil {
		return fmt.Errorf("generate tree for seed %d: %w", seed, err)
	}

	h.log("seed %d: generated tree, zipping", seed)

	if err := h.Runner.Zip(ctx, archivePath, stageDir); err != nil {
		return fmt.Errorf("seed %d: zip failed: %w", seed, err)
	}

	if err := h.Runner.Unzip(ctx, archivePath, extractedDir); err != nil {
		return fmt.Errorf("seed %d: unzip failed: %w", seed, err)
	}

	// zip <archive> <stageDir> archives stageDir itself as the sole PATH
	// argument, so every entry lands under stageDir's own basename (see
	// scan.Walk); unzip therefore recreates that basename as a directory
	// under extractedDir rather than unpacking stageDir's children
	// directly into it.
	unpackedStage := filepath.Join(extractedDir, filepath.Base(stageDir))
	if _, err := os.Stat(unpackedStage); os.IsNotExist(err) {
		// Directories aren't preserved as entries in the archive, so a
		// stage tree with no files at all produces an archive with no
		// entries, and unzip recreates nothing under extractedDir -
		// not even an empty basename directory. Compare still needs
		// something to read on that side.
		if err := os.MkdirAll(unpackedStage, 0o755); err != nil {
			return fmt.Errorf("seed %d: recreate empty extraction root: %w", seed, err)
		}
	}
	if err := Compare(stageDir, unpackedStage); err != nil {
		return fmt.Errorf("seed %d: round-trip mismatch: %w", seed, err)
	}

	h.log("seed %d: round-trip verified", seed)

	return store.Save(seed + 1)
}

func (h *Harness) log(format string, args ...any) {
	if h.Logger != nil {
		h.Logger(format, args...)
	}
}
