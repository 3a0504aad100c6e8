// Package archiver orchestrates ZIP archive creation: for each entry it
// writes a placeholder local header, streams the source file through a
// CRC tap and a DEFLATE encoder, then once every entry has been written it
// emits the central directory and end record, and finally seeks back to
// each placeholder to patch in the real CRC and sizes.
package archiver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"github.com/marler8997/zipcmdline/archivepath"
	"github.com/marler8997/zipcmdline/crctap"
	"github.com/marler8997/zipcmdline/deflate"
	"github.com/marler8997/zipcmdline/scan"
	"github.com/marler8997/zipcmdline/zipfmt"
)

const bufferSize = 32 * 1024

// ProgressReporter receives an entry's progress: while its body is being
// compressed it is called with done=false and n set to the number of
// uncompressed bytes just read, and once the body is finished it is called
// with done=true and n set to the entry's compressed size.
type ProgressReporter func(src, dst string, n int64, done bool)

// Options customizes a Writer. Construct with functional options.
type Options struct {
	Reporter ProgressReporter
	Logger   *log.Logger
}

// WithProgressReporter installs a custom per-entry progress callback.
func WithProgressReporter(r ProgressReporter) func(*Options) {
	return func(o *Options) { o.Reporter = r }
}

// WithProgressBar installs a schollz/progressbar/v3-backed reporter sized
// to the sum of every entry's uncompressed size.
func WithProgressBar(entries []scan.Entry) func(*Options) {
	var total int64
	for _, e := range entries {
		total += e.Size
	}

	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetDescription("compressing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
	)

	return func(o *Options) {
		o.Reporter = func(src, dst string, n int64, done bool) {
			if !done {
				_ = bar.Add64(n)
			}
		}
	}
}

// WithLogger installs a logger that receives a humanize-formatted summary
// line once the archive is closed.
func WithLogger(l *log.Logger) func(*Options) {
	return func(o *Options) { o.Logger = l }
}

type record struct {
	name             string
	fileOffset       int64
	method           uint16
	crc32            uint32
	compressedSize   uint64
	uncompressedSize uint64
}

// Writer orchestrates one archive-creation invocation. No state machine: a
// linear pipeline of (offset, records); the central directory offset is the
// value of offset when Close starts.
type Writer struct {
	f       *os.File
	opts    Options
	offset  int64
	records []record
}

// Create opens (truncating if necessary) path for write and returns a
// Writer ready to accept entries.
func Create(path string, optFns ...func(*Options)) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create archive %q: %w", path, err)
	}

	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Writer{f: f, opts: opts}, nil
}

// AddEntry writes one scanned entry's local header, compressed body, and
// records its FileStore bookkeeping for the later central-directory and
// back-patch passes.
func (w *Writer) AddEntry(ctx context.Context, e scan.Entry) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := archivepath.Validate(e.ArchivePath); err != nil {
		return fmt.Errorf("entry %q: %w", e.ArchivePath, err)
	}

	fileOffset := w.offset

	placeholder := zipfmt.LocalFileHeader{Method: zipfmt.MethodDeflate, Name: e.ArchivePath}
	if err := w.writeHeader(placeholder); err != nil {
		return fmt.Errorf("write placeholder header for %q: %w", e.ArchivePath, err)
	}

	src, err := os.Open(e.SourcePath)
	if err != nil {
		return fmt.Errorf("open %q: %w", e.SourcePath, err)
	}
	defer src.Close()

	tap := crctap.New(src)
	dw := deflate.NewWriter(w.f)
	buf := make([]byte, bufferSize)

	var uncompressedSize int64
	bodyStart := w.offset

	for {
		n, perr := tap.PumpInto(dw, buf)
		uncompressedSize += int64(n)

		if w.opts.Reporter != nil && n > 0 {
			w.opts.Reporter(e.SourcePath, e.ArchivePath, int64(n), false)
		}

		if perr != nil {
			if errors.Is(perr, io.EOF) {
				break
			}
			return fmt.Errorf("compress %q: %w", e.SourcePath, perr)
		}
	}

	if err := dw.Finish(); err != nil {
		return fmt.Errorf("finish compressing %q: %w", e.SourcePath, err)
	}

	w.offset = bodyStart + dw.Written()

	if w.opts.Reporter != nil {
		w.opts.Reporter(e.SourcePath, e.ArchivePath, w.offset-bodyStart, true)
	}

	w.records = append(w.records, record{
		name:             e.ArchivePath,
		fileOffset:       fileOffset,
		method:           zipfmt.MethodDeflate,
		crc32:            tap.FinalCRC(),
		compressedSize:   uint64(w.offset - bodyStart),
		uncompressedSize: uint64(uncompressedSize),
	})

	return nil
}

// Close emits the central directory and end-of-central-directory record,
// closes the archive file, then reopens it to back-patch every local
// header with its finalized CRC and sizes.
func (w *Writer) Close() error {
	cdOffset := w.offset
	var cdSize int64

	for _, r := range w.records {
		h := zipfmt.CentralDirectoryHeader{
			Method:            r.method,
			CRC32:             r.crc32,
			CompressedSize:    r.compressedSize,
			UncompressedSize:  r.uncompressedSize,
			LocalHeaderOffset: uint64(r.fileOffset),
			Name:              r.name,
		}
		b, err := h.Encode()
		if err != nil {
			_ = w.f.Close()
			return fmt.Errorf("encode central directory header for %q: %w", r.name, err)
		}
		if _, err := w.f.Write(b); err != nil {
			_ = w.f.Close()
			return fmt.Errorf("write central directory header for %q: %w", r.name, err)
		}
		cdSize += int64(len(b))
		w.offset += int64(len(b))
	}

	end := zipfmt.EndOfCentralDirRecord{
		RecordCount:            uint64(len(w.records)),
		CentralDirectorySize:   uint64(cdSize),
		CentralDirectoryOffset: uint64(cdOffset),
	}
	b, err := end.Encode()
	if err != nil {
		_ = w.f.Close()
		return fmt.Errorf("encode end of central directory record: %w", err)
	}
	if _, err := w.f.Write(b); err != nil {
		_ = w.f.Close()
		return fmt.Errorf("write end of central directory record: %w", err)
	}

	if err := w.f.Close(); err != nil {
		return fmt.Errorf("close archive after first pass: %w", err)
	}

	if err := w.backpatch(); err != nil {
		return err
	}

	if w.opts.Logger != nil {
		var total uint64
		for _, r := range w.records {
			total += r.compressedSize
		}
		w.opts.Logger.Printf("wrote %d entries, %s compressed", len(w.records), humanize.Bytes(total))
	}

	return nil
}

func (w *Writer) writeHeader(h zipfmt.LocalFileHeader) error {
	b, err := h.Encode()
	if err != nil {
		return err
	}
	n, err := w.f.Write(b)
	w.offset += int64(n)
	return err
}

// backpatch reopens the archive for read-write and rewrites each entry's
// local header in place now that the true CRC and sizes are known. The
// placeholder was identical in size to the final header, so this only
// ever seeks, never shifts bytes.
func (w *Writer) backpatch() error {
	name := w.f.Name()
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("reopen archive %q for back-patch: %w", name, err)
	}
	defer f.Close()

	for _, r := range w.records {
		h := zipfmt.LocalFileHeader{
			Method:           r.method,
			CRC32:            r.crc32,
			CompressedSize:   r.compressedSize,
			UncompressedSize: r.uncompressedSize,
			Name:             r.name,
		}
		b, err := h.Encode()
		if err != nil {
			return fmt.Errorf("encode back-patched header for %q: %w", r.name, err)
		}
		if _, err := f.WriteAt(b, r.fileOffset); err != nil {
			return fmt.Errorf("back-patch header for %q: %w", r.name, err)
		}
	}

	return nil
}
