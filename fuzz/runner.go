package fuzz

import (
	"context"
	"fmt"
	"os/exec"
)

// Runner invokes the external zip and unzip executables as black-box
// collaborators, wrapping any non-zero exit or signal into an error.
type Runner struct {
	ZipExe   string
	UnzipExe string
}

// Zip runs "<ZipExe> <archive> <stageDir>", failing on non-zero exit or
// signal.
func (r *Runner) Zip(ctx context.Context, archive, stageDir string) error {
	cmd := exec.CommandContext(ctx, r.ZipExe, archive, stageDir)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("run %s %s %s: %w: %s", r.ZipExe, archive, stageDir, err, out)
	}
	return nil
}

// Unzip runs "<UnzipExe> -d <destDir> <archive>", failing on non-zero exit
// or signal.
func (r *Runner) Unzip(ctx context.Context, archive, destDir string) error {
	cmd := exec.CommandContext(ctx, r.UnzipExe, "-d", destDir, archive)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("run %s -d %s %s: %w: %s", r.UnzipExe, destDir, archive, err, out)
	}
	return nil
}
