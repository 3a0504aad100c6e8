// Command zipfuzz differentially fuzzes the zip archive writer against an
// external zip and unzip executable, looping the generate/compress/extract/
// compare cycle until a mismatch is found or the requested iteration count
// is reached.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/jessevdk/go-flags"

	"github.com/marler8997/zipcmdline/fuzz"
	"github.com/marler8997/zipcmdline/internal/config"
)

var opts struct {
	ZipExe     string `long:"zip-exe" description:"path to the external zip executable under test" default:"zip"`
	UnzipExe   string `long:"unzip-exe" description:"path to the external unzip executable used to verify round trips" default:"unzip"`
	ScratchDir string `long:"scratch-dir" description:"directory the harness owns exclusively for staged and extracted trees" default:".zipfuzz-scratch"`
	SeedFile   string `long:"seed-file" description:"file the harness persists its PRNG seed to between runs" default:".zipfuzz-seed"`
	Iterations int    `short:"n" long:"iterations" description:"number of seeds to run; 0 means run until a mismatch is found" default:"0"`
}

func main() {
	p := flags.NewParser(&opts, flags.Default)

	if _, err := p.Parse(); err != nil {
		exit(err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exit(run(ctx))
}

func run(ctx context.Context) error {
	defaults := config.FuzzConfig{
		ZipExe:     opts.ZipExe,
		UnzipExe:   opts.UnzipExe,
		ScratchDir: opts.ScratchDir,
	}

	if _, err := config.Load(ctx); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := config.ForFuzz(defaults)

	h := &fuzz.Harness{
		SeedFile:   opts.SeedFile,
		ScratchDir: cfg.ScratchDir,
		Runner:     fuzz.Runner{ZipExe: cfg.ZipExe, UnzipExe: cfg.UnzipExe},
		Logger:     func(format string, args ...any) { log.Printf(format, args...) },
	}

	for i := 0; opts.Iterations <= 0 || i < opts.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.RunOnce(ctx); err != nil {
			return fmt.Errorf("iteration %d: %w", i, err)
		}
	}

	return nil
}
