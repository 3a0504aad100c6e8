// Package fuzz implements the differential fuzz harness: a seeded
// deterministic tree generator, an external zip/unzip process runner, a
// two-pass directory equality comparator, and a persisted seed store.
package fuzz

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
)

const (
	maxDepth         = 5
	maxEntriesPerDir = 1000
	maxTotalBytes    = 1 << 20 // 1 MiB
	maxFileSize      = 10 << 20
	// maxTotalEntries is a finiteness backstop: the byte budget alone does
	// not strictly decrease (a drawn file size can be zero), so this caps
	// the number of generation steps rather than relying on the budget
	// reaching exactly zero.
	maxTotalEntries = 200000
)

const (
	actionFile = iota
	actionSubdir
	actionReturn
)

// Generator deterministically builds a random directory tree from a single
// 64-bit seed: depth and per-directory entry caps, a byte budget drawn
// uniformly from [0, 1 MiB], and file sizes uniform over [0, min(10 MiB,
// remaining budget)].
type Generator struct {
	rng       *rand.Rand
	nameIndex int64
}

// NewGenerator seeds a Generator. The same seed always produces the same
// tree.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Generate materializes a random directory tree rooted at dir, which must
// already exist (or be creatable via MkdirAll).
func (g *Generator) Generate(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create scratch root %q: %w", dir, err)
	}

	type frame struct {
		path    string
		entries int
	}

	stack := []frame{{path: dir}}
	budget := int64(g.rng.IntN(maxTotalBytes + 1))
	totalEntries := 0

	for budget > 0 && totalEntries < maxTotalEntries {
		top := &stack[len(stack)-1]
		depth := len(stack) - 1

		if top.entries >= maxEntriesPerDir {
			if depth == 0 {
				break
			}
			stack = stack[:len(stack)-1]
			continue
		}

		switch g.nextAction(depth, top.entries) {
		case actionSubdir:
			path := filepath.Join(top.path, g.nextName())
			if err := os.Mkdir(path, 0o755); err != nil {
				return fmt.Errorf("create directory %q: %w", path, err)
			}
			top.entries++
			totalEntries++
			stack = append(stack, frame{path: path})

		case actionReturn:
			stack = stack[:len(stack)-1]

		default:
			limit := budget
			if limit > maxFileSize {
				limit = maxFileSize
			}
			size := int64(g.rng.Int64N(limit + 1))

			path := filepath.Join(top.path, g.nextName())
			if err := g.writeRandomFile(path, size); err != nil {
				return fmt.Errorf("write file %q: %w", path, err)
			}

			top.entries++
			totalEntries++
			budget -= size
		}
	}

	return nil
}

func (g *Generator) nextAction(depth int, entriesHere int) int {
	options := make([]int, 0, 3)
	options = append(options, actionFile)
	if depth < maxDepth && entriesHere < maxEntriesPerDir {
		options = append(options, actionSubdir)
	}
	if depth > 0 {
		options = append(options, actionReturn)
	}
	return options[g.rng.IntN(len(options))]
}

func (g *Generator) nextName() string {
	name := encodeName(g.nameIndex)
	g.nameIndex++
	return name
}

func (g *Generator) writeRandomFile(path string, size int64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	const chunkSize = 64 * 1024
	chunk := make([]byte, chunkSize)

	for remaining := size; remaining > 0; {
		n := int64(chunkSize)
		if n > remaining {
			n = remaining
		}

		fillRandom(g.rng, chunk[:n])
		if _, err := f.Write(chunk[:n]); err != nil {
			return err
		}
		remaining -= n
	}

	return nil
}

// fillRandom fills b with uniformly random bytes drawn from rng, 8 bytes at
// a time. math/rand/v2's Rand does not implement io.Reader, so this is a
// small hand-rolled equivalent.
func fillRandom(rng *rand.Rand, b []byte) {
	for i := 0; i < len(b); i += 8 {
		v := rng.Uint64()
		for j := 0; j < 8 && i+j < len(b); j++ {
			b[i+j] = byte(v >> (8 * j))
		}
	}
}
