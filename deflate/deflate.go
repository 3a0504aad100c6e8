// Package deflate implements a streaming raw DEFLATE (RFC 1951) compressor
// from scratch: hash-chained LZ77 matching with one-step lazy lookahead,
// and a canonical dynamic Huffman coder rebuilt per block. It does not
// delegate to compress/flate.
package deflate

import "io"

// maxBlockSize bounds how much input is buffered before a block is emitted.
// Matches are only ever found within the current block, so this also
// doubles as the LZ77 window: every distance is automatically <= 32768 and
// legal without an explicit window check. Bounding a single block rather
// than the whole file keeps memory use independent of input size.
const maxBlockSize = windowSize

// Writer is an io.WriteCloser that DEFLATE-compresses everything written to
// it and writes the compressed bytes to the wrapped destination. Finish (or
// Close) must be called to flush the final block.
type Writer struct {
	bw      *bitWriter
	pending []byte
	done    bool
}

// NewWriter returns a Writer that streams raw DEFLATE data to dst.
func NewWriter(dst io.Writer) *Writer {
	return &Writer{bw: newBitWriter(dst)}
}

// Write compresses p incrementally: once enough input has accumulated to
// fill a block it is parsed and emitted immediately, so the Writer never
// holds more than one block's worth of input in memory regardless of how
// much has been written overall.
func (w *Writer) Write(p []byte) (int, error) {
	if err := w.bw.Err(); err != nil {
		return 0, err
	}
	if w.done {
		return 0, io.ErrClosedPipe
	}

	total := len(p)
	for len(p) > 0 {
		room := maxBlockSize - len(w.pending)
		n := len(p)
		if n > room {
			n = room
		}
		w.pending = append(w.pending, p[:n]...)
		p = p[n:]

		if len(w.pending) >= maxBlockSize {
			w.writeBlock(w.pending, false)
			w.pending = w.pending[:0]
			if err := w.bw.Err(); err != nil {
				return total - len(p), err
			}
		}
	}

	return total, nil
}

// Finish flushes any buffered input as the final DEFLATE block and
// byte-aligns the output. Calls after the first write nothing more and
// return the first write error, if any.
func (w *Writer) Finish() error {
	if w.done {
		return w.bw.Err()
	}
	w.done = true

	w.writeBlock(w.pending, true)
	w.pending = nil

	return w.bw.Close()
}

// Close is an alias for Finish, satisfying io.WriteCloser.
func (w *Writer) Close() error {
	return w.Finish()
}

// Written returns the total number of compressed bytes written to dst so
// far. Callers that need the exact compressed length of a stream (the
// archiver, to compute a ZIP entry's compressed size) should call this
// only after Finish has returned.
func (w *Writer) Written() int64 {
	return w.bw.written
}

func (w *Writer) writeBlock(data []byte, final bool) {
	if w.bw.Err() != nil {
		return
	}

	if len(data) == 0 {
		w.writeEmptyBlock(final)
		return
	}

	tokens := parseTokens(data)

	litLenFreq := make([]int64, 286)
	distFreq := make([]int64, 30)
	litLenFreq[256] = 1 // end-of-block marker, always present

	for _, tok := range tokens {
		if tok.isMatch {
			sym, _, _ := lengthSymbol(tok.length)
			litLenFreq[sym]++
			dsym, _, _ := distSymbol(tok.dist)
			distFreq[dsym]++
		} else {
			litLenFreq[tok.lit]++
		}
	}

	haveMatches := false
	for _, f := range distFreq {
		if f > 0 {
			haveMatches = true
			break
		}
	}
	if !haveMatches {
		// HDIST's stored value is count-1, so at least one distance code
		// must exist even when the block has no matches to encode.
		distFreq[0] = 1
	}

	litLenLengths := buildCodeLengths(litLenFreq, 15)
	distLengths := buildCodeLengths(distFreq, 15)

	hlit := 257
	for sym := len(litLenLengths) - 1; sym >= 257; sym-- {
		if litLenLengths[sym] > 0 {
			hlit = sym + 1
			break
		}
	}
	hdist := 1
	for sym := 29; sym >= 1; sym-- {
		if distLengths[sym] > 0 {
			hdist = sym + 1
			break
		}
	}

	combined := make([]uint8, 0, hlit+hdist)
	combined = append(combined, litLenLengths[:hlit]...)
	combined = append(combined, distLengths[:hdist]...)

	clTokens := encodeCodeLengths(combined)
	clFreq := make([]int64, 19)
	for _, t := range clTokens {
		clFreq[t.symbol]++
	}
	clLengths := buildCodeLengths(clFreq, 7)

	hclen := 4
	for i := 18; i >= 4; i-- {
		if clLengths[clcOrder[i]] > 0 {
			hclen = i + 1
			break
		}
	}

	litLenCodes := canonicalCodes(litLenLengths, 15)
	distCodes := canonicalCodes(distLengths, 15)
	clCodes := canonicalCodes(clLengths, 7)

	bfinal := uint32(0)
	if final {
		bfinal = 1
	}
	w.bw.WriteBits(bfinal|(2<<1), 3) // BTYPE 10 = dynamic Huffman

	w.bw.WriteBits(uint32(hlit-257), 5)
	w.bw.WriteBits(uint32(hdist-1), 5)
	w.bw.WriteBits(uint32(hclen-4), 4)

	for i := 0; i < hclen; i++ {
		w.bw.WriteBits(uint32(clLengths[clcOrder[i]]), 3)
	}

	for _, t := range clTokens {
		c := clCodes[t.symbol]
		w.bw.WriteBits(uint32(c.code), int(c.len))
		if t.extraBits > 0 {
			w.bw.WriteBits(uint32(t.extra), int(t.extraBits))
		}
	}

	for _, tok := range tokens {
		if tok.isMatch {
			sym, extra, extraBits := lengthSymbol(tok.length)
			c := litLenCodes[sym]
			w.bw.WriteBits(uint32(c.code), int(c.len))
			if extraBits > 0 {
				w.bw.WriteBits(uint32(extra), int(extraBits))
			}

			dsym, dextra, dextraBits := distSymbol(tok.dist)
			dc := distCodes[dsym]
			w.bw.WriteBits(uint32(dc.code), int(dc.len))
			if dextraBits > 0 {
				w.bw.WriteBits(uint32(dextra), int(dextraBits))
			}
		} else {
			c := litLenCodes[tok.lit]
			w.bw.WriteBits(uint32(c.code), int(c.len))
		}
	}

	eob := litLenCodes[256]
	w.bw.WriteBits(uint32(eob.code), int(eob.len))
}

// writeEmptyBlock handles the degenerate case of a block with no input
// bytes (an empty source file, or input that divides evenly into blocks):
// a fixed-Huffman block containing only the end-of-block symbol, which
// needs no Huffman table of its own.
func (w *Writer) writeEmptyBlock(final bool) {
	fixedCodes := canonicalCodes(fixedLitLenLengths(), 15)

	bfinal := uint32(0)
	if final {
		bfinal = 1
	}
	w.bw.WriteBits(bfinal|(1<<1), 3) // BTYPE 01 = fixed Huffman

	eob := fixedCodes[256]
	w.bw.WriteBits(uint32(eob.code), int(eob.len))
}
