// Package crctap adapts an open file into a byte-stream pump that feeds
// every consumed byte through an IEEE CRC-32 (the ZIP variant: reflected
// input/output, initial 0xFFFFFFFF, final XOR 0xFFFFFFFF, polynomial
// 0xEDB88320) while copying it to a sink.
package crctap

import (
	"hash/crc32"
	"io"
	"os"
)

// Tap wraps an *os.File and accumulates a running CRC-32 of every byte
// pumped through it.
//
// hash/crc32.Update is algebraically chainable: internally it computes
// ^run(^crc, p) where run is the raw table walk, so
// Update(Update(0, p1), p2) equals a single Update(0, p1+p2) over the
// concatenation. Accumulating the running value across repeated PumpInto
// calls therefore reproduces crc32.ChecksumIEEE of the whole file.
type Tap struct {
	src *os.File
	crc uint32
}

// New wraps src for CRC-tapped reads.
func New(src *os.File) *Tap {
	return &Tap{src: src}
}

// PumpInto reads one buf-worth of bytes from the wrapped file, folds them
// into the running CRC, writes them to sink, and returns the number of
// bytes moved. Returns io.EOF when the file has been fully consumed.
func (t *Tap) PumpInto(sink io.Writer, buf []byte) (int, error) {
	n, err := t.src.Read(buf)
	if n > 0 {
		t.crc = crc32.Update(t.crc, crc32.IEEETable, buf[:n])

		if _, werr := sink.Write(buf[:n]); werr != nil {
			return n, werr
		}
	}

	return n, err
}

// FinalCRC returns the CRC-32 of every byte pumped so far. It does not stop
// later PumpInto calls from updating the value.
func (t *Tap) FinalCRC() uint32 {
	return t.crc
}
