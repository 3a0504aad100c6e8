package scan

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// chdir switches the working directory for the rest of the test, so a
// standalone file can be passed by a relative name: an absolute path is
// not a valid archive path.
func chdir(t *testing.T, dir string) {
	t.Helper()
	cur, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cur) })
}

func archivePaths(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.ArchivePath
	}
	sort.Strings(names)
	return names
}

func TestWalk_StandaloneFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	writeFile(t, path, "hello")
	chdir(t, dir)

	entries, err := Walk([]string{"test.txt"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "test.txt", entries[0].ArchivePath)
	assert.Equal(t, int64(5), entries[0].Size)
}

func TestWalk_Directory(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "myroot")
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "bb")
	writeFile(t, filepath.Join(root, "sub", "deep", "c.txt"), "ccc")

	entries, err := Walk([]string{root})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"myroot/a.txt",
		"myroot/sub/b.txt",
		"myroot/sub/deep/c.txt",
	}, archivePaths(entries))
}

func TestWalk_MixedFilesAndDirectories(t *testing.T) {
	dir := t.TempDir()
	standalone := filepath.Join(dir, "root.txt")
	writeFile(t, standalone, "root")

	d1 := filepath.Join(dir, "dir1")
	writeFile(t, filepath.Join(d1, "file1.txt"), "1")
	writeFile(t, filepath.Join(d1, "subdir", "deep.txt"), "deep")

	d2 := filepath.Join(dir, "dir2")
	writeFile(t, filepath.Join(d2, "file2.txt"), "2")

	chdir(t, dir)

	entries, err := Walk([]string{"root.txt", d1, d2})
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}
