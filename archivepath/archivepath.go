// Package archivepath validates names destined for a ZIP archive's local and
// central directory headers.
package archivepath

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmpty is returned by Validate when the name has zero length.
var ErrEmpty = errors.New("archive path is empty")

// Validate reports whether name is safe to store as an archive path.
//
// A name is archive-unsafe if any of the following holds: it is empty; its
// first byte is '/' or '\'; it contains any '\'; or any '/'-separated
// segment equals "..".
func Validate(name string) error {
	if name == "" {
		return ErrEmpty
	}

	if name[0] == '/' || name[0] == '\\' {
		return fmt.Errorf("archive path %q: starts with a path separator", name)
	}

	if strings.ContainsRune(name, '\\') {
		return fmt.Errorf("archive path %q: contains a backslash", name)
	}

	for _, segment := range strings.Split(name, "/") {
		if segment == ".." {
			return fmt.Errorf("archive path %q: contains a \"..\" segment", name)
		}
	}

	return nil
}
