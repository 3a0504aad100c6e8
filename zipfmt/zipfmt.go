// Package zipfmt implements the three ZIP wire records this archiver emits:
// the local file header, the central directory file header, and the end of
// central directory record. Every field is little-endian and packed with no
// padding, matching PKWARE's APPNOTE layout with no ZIP64, encryption, or
// extra-field support.
package zipfmt

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Signatures of the three record kinds, each beginning with the "PK" marker.
const (
	LocalFileHeaderSignature    uint32 = 0x04034b50
	CentralDirectorySignature  uint32 = 0x02014b50
	EndOfCentralDirSignature    uint32 = 0x06054b50
)

// ZIP method codes this writer produces.
const (
	MethodStore   uint16 = 0
	MethodDeflate uint16 = 8
)

// VersionNeededToExtract is the minimum reader version for store/deflate
// entries with no other feature bits set.
const VersionNeededToExtract uint16 = 10

// LocalFileHeaderSize is the fixed-size portion of a local file header,
// excluding the variable-length name.
const LocalFileHeaderSize = 30

// CentralDirectoryHeaderSize is the fixed-size portion of a central
// directory file header, excluding the variable-length name.
const CentralDirectoryHeaderSize = 46

// EndOfCentralDirSize is the full, fixed size of the end of central
// directory record (this writer never emits a comment).
const EndOfCentralDirSize = 22

// errOverflow32 is wrapped with field context when a value does not fit in
// the wire format's 32-bit width.
var errOverflow32 = fmt.Errorf("value exceeds 32-bit field width")

func checkUint32(field string, v uint64) error {
	if v > math.MaxUint32 {
		return fmt.Errorf("%s (%d): %w", field, v, errOverflow32)
	}
	return nil
}

// LocalFileHeader is the 30-byte-plus-name record that precedes each
// entry's compressed payload.
type LocalFileHeader struct {
	Method           uint16
	CRC32            uint32
	CompressedSize   uint64
	UncompressedSize uint64
	Name             string
}

// Encode returns the packed little-endian byte sequence for h, or an error
// if CompressedSize or UncompressedSize does not fit in 32 bits.
func (h LocalFileHeader) Encode() ([]byte, error) {
	if err := checkUint32("compressed size", h.CompressedSize); err != nil {
		return nil, err
	}
	if err := checkUint32("uncompressed size", h.UncompressedSize); err != nil {
		return nil, err
	}
	if err := checkUint32("name length", uint64(len(h.Name))); err != nil {
		return nil, err
	}

	name := []byte(h.Name)
	buf := make([]byte, LocalFileHeaderSize+len(name))

	binary.LittleEndian.PutUint32(buf[0:4], LocalFileHeaderSignature)
	binary.LittleEndian.PutUint16(buf[4:6], VersionNeededToExtract)
	binary.LittleEndian.PutUint16(buf[6:8], 0) // flags
	binary.LittleEndian.PutUint16(buf[8:10], h.Method)
	binary.LittleEndian.PutUint16(buf[10:12], 0) // mod time
	binary.LittleEndian.PutUint16(buf[12:14], 0) // mod date
	binary.LittleEndian.PutUint32(buf[14:18], h.CRC32)
	binary.LittleEndian.PutUint32(buf[18:22], uint32(h.CompressedSize))
	binary.LittleEndian.PutUint32(buf[22:26], uint32(h.UncompressedSize))
	binary.LittleEndian.PutUint16(buf[26:28], uint16(len(name)))
	binary.LittleEndian.PutUint16(buf[28:30], 0) // extra length

	copy(buf[LocalFileHeaderSize:], name)

	return buf, nil
}

// Decode parses b, which must be at least LocalFileHeaderSize+name bytes,
// into h. Decode is used only by tests (this package's and the archiver's);
// the writer never reads back an archive it produced except to back-patch by
// offset.
func (h *LocalFileHeader) Decode(b []byte) error {
	if len(b) < LocalFileHeaderSize {
		return fmt.Errorf("local file header: need %d bytes, got %d", LocalFileHeaderSize, len(b))
	}

	if sig := binary.LittleEndian.Uint32(b[0:4]); sig != LocalFileHeaderSignature {
		return fmt.Errorf("local file header: bad signature 0x%08x", sig)
	}

	h.Method = binary.LittleEndian.Uint16(b[8:10])
	h.CRC32 = binary.LittleEndian.Uint32(b[14:18])
	h.CompressedSize = uint64(binary.LittleEndian.Uint32(b[18:22]))
	h.UncompressedSize = uint64(binary.LittleEndian.Uint32(b[22:26]))
	nameLen := int(binary.LittleEndian.Uint16(b[26:28]))
	extraLen := int(binary.LittleEndian.Uint16(b[28:30]))

	if len(b) < LocalFileHeaderSize+nameLen+extraLen {
		return fmt.Errorf("local file header: truncated name/extra")
	}
	h.Name = string(b[LocalFileHeaderSize : LocalFileHeaderSize+nameLen])

	return nil
}

// CentralDirectoryHeader is the 46-byte-plus-name record summarizing one
// entry in the central directory.
type CentralDirectoryHeader struct {
	Method            uint16
	CRC32             uint32
	CompressedSize    uint64
	UncompressedSize  uint64
	LocalHeaderOffset uint64
	Name              string
}

// Encode returns the packed little-endian byte sequence for h, or an error
// if CompressedSize, UncompressedSize, or LocalHeaderOffset does not fit in
// 32 bits.
func (h CentralDirectoryHeader) Encode() ([]byte, error) {
	if err := checkUint32("compressed size", h.CompressedSize); err != nil {
		return nil, err
	}
	if err := checkUint32("uncompressed size", h.UncompressedSize); err != nil {
		return nil, err
	}
	if err := checkUint32("local header offset", h.LocalHeaderOffset); err != nil {
		return nil, err
	}
	if err := checkUint32("name length", uint64(len(h.Name))); err != nil {
		return nil, err
	}

	name := []byte(h.Name)
	buf := make([]byte, CentralDirectoryHeaderSize+len(name))

	binary.LittleEndian.PutUint32(buf[0:4], CentralDirectorySignature)
	binary.LittleEndian.PutUint16(buf[4:6], 0) // version made by
	binary.LittleEndian.PutUint16(buf[6:8], VersionNeededToExtract)
	binary.LittleEndian.PutUint16(buf[8:10], 0) // flags
	binary.LittleEndian.PutUint16(buf[10:12], h.Method)
	binary.LittleEndian.PutUint16(buf[12:14], 0) // mod time
	binary.LittleEndian.PutUint16(buf[14:16], 0) // mod date
	binary.LittleEndian.PutUint32(buf[16:20], h.CRC32)
	binary.LittleEndian.PutUint32(buf[20:24], uint32(h.CompressedSize))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(h.UncompressedSize))
	binary.LittleEndian.PutUint16(buf[28:30], uint16(len(name)))
	binary.LittleEndian.PutUint16(buf[30:32], 0) // extra length
	binary.LittleEndian.PutUint16(buf[32:34], 0) // comment length
	binary.LittleEndian.PutUint16(buf[34:36], 0) // disk number
	binary.LittleEndian.PutUint16(buf[36:38], 0) // internal attrs
	binary.LittleEndian.PutUint32(buf[38:42], 0) // external attrs
	binary.LittleEndian.PutUint32(buf[42:46], uint32(h.LocalHeaderOffset))

	copy(buf[CentralDirectoryHeaderSize:], name)

	return buf, nil
}

// Decode parses b into h. See LocalFileHeader.Decode for usage notes.
func (h *CentralDirectoryHeader) Decode(b []byte) error {
	if len(b) < CentralDirectoryHeaderSize {
		return fmt.Errorf("central directory header: need %d bytes, got %d", CentralDirectoryHeaderSize, len(b))
	}

	if sig := binary.LittleEndian.Uint32(b[0:4]); sig != CentralDirectorySignature {
		return fmt.Errorf("central directory header: bad signature 0x%08x", sig)
	}

	h.Method = binary.LittleEndian.Uint16(b[10:12])
	h.CRC32 = binary.LittleEndian.Uint32(b[16:20])
	h.CompressedSize = uint64(binary.LittleEndian.Uint32(b[20:24]))
	h.UncompressedSize = uint64(binary.LittleEndian.Uint32(b[24:28]))
	nameLen := int(binary.LittleEndian.Uint16(b[28:30]))
	extraLen := int(binary.LittleEndian.Uint16(b[30:32]))
	commentLen := int(binary.LittleEndian.Uint16(b[32:34]))
	h.LocalHeaderOffset = uint64(binary.LittleEndian.Uint32(b[42:46]))

	if len(b) < CentralDirectoryHeaderSize+nameLen+extraLen+commentLen {
		return fmt.Errorf("central directory header: truncated name/extra/comment")
	}
	h.Name = string(b[CentralDirectoryHeaderSize : CentralDirectoryHeaderSize+nameLen])

	return nil
}

// EndOfCentralDirRecord is the 22-byte record terminating the archive.
type EndOfCentralDirRecord struct {
	RecordCount            uint64
	CentralDirectorySize   uint64
	CentralDirectoryOffset uint64
}

// Encode returns the packed little-endian byte sequence for r, or an error
// if RecordCount does not fit in 16 bits or CentralDirectorySize/Offset
// does not fit in 32 bits.
func (r EndOfCentralDirRecord) Encode() ([]byte, error) {
	if r.RecordCount > math.MaxUint16 {
		return nil, fmt.Errorf("record count (%d): value exceeds 16-bit field width", r.RecordCount)
	}
	if err := checkUint32("central directory size", r.CentralDirectorySize); err != nil {
		return nil, err
	}
	if err := checkUint32("central directory offset", r.CentralDirectoryOffset); err != nil {
		return nil, err
	}

	buf := make([]byte, EndOfCentralDirSize)

	binary.LittleEndian.PutUint32(buf[0:4], EndOfCentralDirSignature)
	binary.LittleEndian.PutUint16(buf[4:6], 0) // disk number
	binary.LittleEndian.PutUint16(buf[6:8], 0) // cd disk
	binary.LittleEndian.PutUint16(buf[8:10], uint16(r.RecordCount))
	binary.LittleEndian.PutUint16(buf[10:12], uint16(r.RecordCount))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(r.CentralDirectorySize))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(r.CentralDirectoryOffset))
	binary.LittleEndian.PutUint16(buf[20:22], 0) // comment length

	return buf, nil
}

// Decode parses b into r. See LocalFileHeader.Decode for usage notes.
func (r *EndOfCentralDirRecord) Decode(b []byte) error {
	if len(b) < EndOfCentralDirSize {
		return fmt.Errorf("end of central directory record: need %d bytes, got %d", EndOfCentralDirSize, len(b))
	}

	if sig := binary.LittleEndian.Uint32(b[0:4]); sig != EndOfCentralDirSignature {
		return fmt.Errorf("end of central directory record: bad signature 0x%08x", sig)
	}

	r.RecordCount = uint64(binary.LittleEndian.Uint16(b[10:12]))
	r.CentralDirectorySize = uint64(binary.LittleEndian.Uint32(b[12:16]))
	r.CentralDirectoryOffset = uint64(binary.LittleEndian.Uint32(b[16:20]))

	return nil
}

// FindEndOfCentralDir searches b, the full contents of an archive, backwards
// for the end of central directory record signature and decodes it. It is
// used only by tests (this package's and the archiver's), never by the
// writer itself (reading existing archives is out of scope for the writer
// proper).
func FindEndOfCentralDir(b []byte) (EndOfCentralDirRecord, error) {
	var r EndOfCentralDirRecord

	if len(b) < EndOfCentralDirSize {
		return r, fmt.Errorf("archive too small to contain an end of central directory record")
	}

	sig := make([]byte, 4)
	binary.LittleEndian.PutUint32(sig, EndOfCentralDirSignature)

	for i := len(b) - EndOfCentralDirSize; i >= 0; i-- {
		if bytesEqual(b[i:i+4], sig) {
			return r, r.Decode(b[i:])
		}
	}

	return r, fmt.Errorf("end of central directory record not found")
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
