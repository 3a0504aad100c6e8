//go:build unix

package scan

import (
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWalk_UnsupportedFileKind(t *testing.T) {
	dir := t.TempDir()
	fifoPath := filepath.Join(dir, "not-a-regular-file")

	if err := syscall.Mkfifo(fifoPath, 0o644); err != nil {
		t.Skipf("mkfifo unavailable in this environment: %v", err)
	}

	_, err := Walk([]string{fifoPath})
	assert.Error(t, err)
}
