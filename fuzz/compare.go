package fuzz

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const compareBufferSize = 4096

// Compare recursively verifies that stageDir and extractedDir are equal as
// directory trees using a two-pass design: pass 1 walks stageDir and
// confirms every entry exists, with matching kind/size/contents, in
// extractedDir; pass 2 walks extractedDir and confirms it has nothing
// extra. The asymmetry is deliberate: pass 1 alone cannot detect files that
// exist only in extractedDir.
func Compare(stageDir, extractedDir string) error {
	stageEntries, err := os.ReadDir(stageDir)
	if err != nil {
		return fmt.Errorf("read directory %q: %w", stageDir, err)
	}

	seen := make(map[string]bool, len(stageEntries))

	for _, se := range stageEntries {
		seen[se.Name()] = true

		stagePath := filepath.Join(stageDir, se.Name())
		extractedPath := filepath.Join(extractedDir, se.Name())

		ei, err := os.Stat(extractedPath)
		if err != nil {
			return fmt.Errorf("entry %q missing from extracted tree: %w", extractedPath, err)
		}

		switch {
		case se.IsDir():
			if !ei.IsDir() {
				return fmt.Errorf("entry %q: expected directory, extracted tree has a file", stagePath)
			}
			if err := Compare(stagePath, extractedPath); err != nil {
				return err
			}

		case se.Type().IsRegular():
			if !ei.Mode().IsRegular() {
				return fmt.Errorf("entry %q: expected regular file, extracted tree has something else", stagePath)
			}
			if err := compareFiles(stagePath, extractedPath); err != nil {
				return err
			}

		default:
			return fmt.Errorf("entry %q: unexpected file kind %s in staging tree", stagePath, se.Type())
		}
	}

	extractedEntries, err := os.ReadDir(extractedDir)
	if err != nil {
		return fmt.Errorf("read directory %q: %w", extractedDir, err)
	}

	for _, ee := range extractedEntries {
		if !seen[ee.Name()] {
			return fmt.Errorf("extra entry %q found in extracted tree under %q", ee.Name(), extractedDir)
		}
	}

	return nil
}

func compareFiles(stagePath, extractedPath string) error {
	sf, err := os.Open(stagePath)
	if err != nil {
		return fmt.Errorf("open %q: %w", stagePath, err)
	}
	defer sf.Close()

	ef, err := os.Open(extractedPath)
	if err != nil {
		return fmt.Errorf("open %q: %w", extractedPath, err)
	}
	defer ef.Close()

	si, err := sf.Stat()
	if err != nil {
		return err
	}
	ei, err := ef.Stat()
	if err != nil {
		return err
	}
	if si.Size() != ei.Size() {
		return fmt.Errorf("%q and %q differ in size: %d vs %d", stagePath, extractedPath, si.Size(), ei.Size())
	}

	sbuf := make([]byte, compareBufferSize)
	ebuf := make([]byte, compareBufferSize)

	for {
		sn, serr := io.ReadFull(sf, sbuf)
		en, eerr := io.ReadFull(ef, ebuf)

		if !bytes.Equal(sbuf[:sn], ebuf[:en]) {
			return fmt.Errorf("%q and %q differ in content", stagePath, extractedPath)
		}

		if serr == io.EOF && eerr == io.EOF {
			return nil
		}
		if serr != nil && serr != io.ErrUnexpectedEOF {
			return fmt.Errorf("read %q: %w", stagePath, serr)
		}
		if eerr != nil && eerr != io.ErrUnexpectedEOF {
			return fmt.Errorf("read %q: %w", extractedPath, eerr)
		}
		if serr == io.ErrUnexpectedEOF || eerr == io.ErrUnexpectedEOF {
			// Sizes already matched above, so both streams end here too.
			return nil
		}
	}
}
