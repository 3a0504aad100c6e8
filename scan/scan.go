// Package scan expands CLI input paths into a flat list of file entries
// with archive-relative names, walking directory roots and accepting
// standalone files in the same pass.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/marler8997/zipcmdline/archivepath"
)

// Entry is one file the archiver will add: a filesystem path to read from,
// the name it will carry inside the archive, and its size at scan time.
type Entry struct {
	SourcePath  string
	ArchivePath string
	Size        int64
}

// Walk expands each of paths into one or more Entry values. A path that is
// a regular file yields exactly one Entry named verbatim after the input
// argument. A path that is a directory recurses, joining archive names
// with "/" (path.Join, not filepath.Join, so the archive stays portable
// even when the tool runs on Windows). Any entry that is neither a regular
// file nor a directory (a symlink, device, pipe, or socket) aborts the
// whole walk with an "unsupported file kind" error.
func Walk(paths []string) ([]Entry, error) {
	var entries []Entry

	for _, p := range paths {
		fi, err := os.Lstat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", p, err)
		}

		switch {
		case fi.Mode().IsRegular():
			name := filepath.ToSlash(p)
			if err := archivepath.Validate(name); err != nil {
				return nil, fmt.Errorf("add %q: %w", p, err)
			}
			entries = append(entries, Entry{SourcePath: p, ArchivePath: name, Size: fi.Size()})

		case fi.IsDir():
			base := filepath.Base(p)
			err := filepath.WalkDir(p, func(srcPath string, d fs.DirEntry, err error) error {
				if err != nil {
					return fmt.Errorf("walk %q: %w", srcPath, err)
				}
				if d.IsDir() {
					return nil
				}
				if !d.Type().IsRegular() {
					return fmt.Errorf("unsupported file kind at %q: %s", srcPath, d.Type())
				}

				rel, err := filepath.Rel(p, srcPath)
				if err != nil {
					return fmt.Errorf("compute archive name for %q: %w", srcPath, err)
				}

				archiveName := path.Join(filepath.ToSlash(base), filepath.ToSlash(rel))

				info, err := d.Info()
				if err != nil {
					return fmt.Errorf("stat %q: %w", srcPath, err)
				}

				entries = append(entries, Entry{SourcePath: srcPath, ArchivePath: archiveName, Size: info.Size()})
				return nil
			})
			if err != nil {
				return nil, err
			}

		default:
			return nil, fmt.Errorf("unsupported file kind at %q: %s", p, fi.Mode())
		}
	}

	return entries, nil
}
