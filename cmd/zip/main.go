// Command zip creates a ZIP archive from files and directories given on the
// command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/jessevdk/go-flags"

	"github.com/marler8997/zipcmdline/archiver"
	"github.com/marler8997/zipcmdline/scan"
)

var opts struct {
	Args struct {
		Archive flags.Filename   `positional-arg-name:"ARCHIVE" description:"zip archive to create or truncate"`
		Paths   []flags.Filename `positional-arg-name:"PATH" description:"files or directories to add to the archive"`
	} `positional-args:"yes"`
}

func main() {
	p := flags.NewParser(&opts, flags.Default)

	if _, err := p.Parse(); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrUnknownFlag {
			err = fmt.Errorf("unknown cmdline option: %w", err)
		}
		exit(err)
		return
	}

	if opts.Args.Archive == "" || len(opts.Args.Paths) == 0 {
		p.WriteHelp(os.Stderr)
		exit(fmt.Errorf("ARCHIVE and at least one PATH are required"))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exit(run(ctx, string(opts.Args.Archive), opts.Args.Paths))
}

func run(ctx context.Context, archivePath string, rawPaths []flags.Filename) error {
	paths := make([]string, len(rawPaths))
	for i, p := range rawPaths {
		paths[i] = string(p)
	}

	entries, err := scan.Walk(paths)
	if err != nil {
		return fmt.Errorf("scan paths: %w", err)
	}

	w, err := archiver.Create(archivePath, archiver.WithProgressBar(entries))
	if err != nil {
		return fmt.Errorf("create archive %q: %w", archivePath, err)
	}

	for _, e := range entries {
		if err := w.AddEntry(ctx, e); err != nil {
			_ = w.Close()
			return fmt.Errorf("add %q: %w", e.ArchivePath, err)
		}
	}

	return w.Close()
}
