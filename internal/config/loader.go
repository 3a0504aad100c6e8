// Package config discovers optional per-repo defaults for cmd/zipfuzz from
// a ".zipfuzzrc" INI file, so the fuzz harness can be invoked with no flags
// in a checked-out repo.
package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-ini/ini"
)

// Loader walks the directory hierarchy upwards looking for the first
// ".zipfuzzrc" file and loads it.
type Loader struct {
	cfg *ini.File
}

// Load traverses from the current working directory upward until it finds
// a ".zipfuzzrc" file or reaches the filesystem root, and returns the path
// found (empty if none exists, which is not an error).
func (l *Loader) Load(ctx context.Context) (string, error) {
	var (
		path        = filepath.Join(".", ".zipfuzzrc")
		fi          os.FileInfo
		err         error
		cur, parent string
	)

	if cur, err = os.Getwd(); err != nil {
		return "", err
	}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		if fi, err = os.Stat(path); err == nil && !fi.IsDir() {
			break
		}

		if err == nil || os.IsNotExist(err) {
			parent = filepath.Dir(cur)

			if parent == cur || parent == "." || parent == "/" {
				l.cfg = ini.Empty()
				return "", nil
			}

			path = filepath.Join(parent, ".zipfuzzrc")
			cur = parent
			continue
		}

		return "", err
	}

	l.cfg, err = ini.Load(path)
	if err != nil {
		l.cfg = ini.Empty()
		return path, err
	}

	return path, nil
}

// FuzzConfig is the set of defaults cmd/zipfuzz reads out of .zipfuzzrc's
// [fuzz] section.
type FuzzConfig struct {
	ZipExe     string
	UnzipExe   string
	ScratchDir string
}

// ForFuzz returns the [fuzz] section's settings, falling back to the given
// defaults for any key the file doesn't set (or if no file was found).
func (l *Loader) ForFuzz(defaults FuzzConfig) FuzzConfig {
	if l.cfg == nil {
		return defaults
	}

	sec := l.cfg.Section("fuzz")
	out := defaults
	if v := sec.Key("zip_exe").String(); v != "" {
		out.ZipExe = v
	}
	if v := sec.Key("unzip_exe").String(); v != "" {
		out.UnzipExe = v
	}
	if v := sec.Key("scratch_dir").String(); v != "" {
		out.ScratchDir = v
	}

	return out
}

// DefaultLoader is the default Loader instance for package-level helpers.
var DefaultLoader = &Loader{cfg: ini.Empty()}

// Load calls Loader.Load on DefaultLoader.
func Load(ctx context.Context) (string, error) {
	return DefaultLoader.Load(ctx)
}

// ForFuzz calls Loader.ForFuzz on DefaultLoader.
func ForFuzz(defaults FuzzConfig) FuzzConfig {
	return DefaultLoader.ForFuzz(defaults)
}
