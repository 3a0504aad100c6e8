package zipfmt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalFileHeader_EncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		h    LocalFileHeader
	}{
		{
			name: "simple file",
			h: LocalFileHeader{
				Method:           MethodDeflate,
				CRC32:            0xdeadbeef,
				CompressedSize:   123,
				UncompressedSize: 456,
				Name:             "test.txt",
			},
		},
		{
			name: "empty file",
			h: LocalFileHeader{
				Method: MethodDeflate,
				Name:   "empty",
			},
		},
		{
			name: "nested name",
			h: LocalFileHeader{
				Method:           MethodStore,
				CRC32:            0,
				CompressedSize:   1,
				UncompressedSize: 1,
				Name:             "dir1/subdir/deep.txt",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.h.Encode()
			assert.NoErrorf(t, err, "Encode() error = %v", err)
			assert.Equalf(t, LocalFileHeaderSize+len(tt.h.Name), len(b), "unexpected encoded length")

			var got LocalFileHeader
			assert.NoErrorf(t, got.Decode(b), "Decode() error")
			assert.Equal(t, tt.h.Method, got.Method)
			assert.Equal(t, tt.h.CRC32, got.CRC32)
			assert.Equal(t, tt.h.CompressedSize, got.CompressedSize)
			assert.Equal(t, tt.h.UncompressedSize, got.UncompressedSize)
			assert.Equal(t, tt.h.Name, got.Name)
		})
	}
}

func TestLocalFileHeader_EncodeOverflow(t *testing.T) {
	h := LocalFileHeader{CompressedSize: math.MaxUint32 + 1}
	_, err := h.Encode()
	assert.Error(t, err)
}

func TestCentralDirectoryHeader_EncodeDecode(t *testing.T) {
	h := CentralDirectoryHeader{
		Method:            MethodDeflate,
		CRC32:             0x12345678,
		CompressedSize:    100,
		UncompressedSize:  200,
		LocalHeaderOffset: 4096,
		Name:              "dir1/file1.txt",
	}

	b, err := h.Encode()
	assert.NoErrorf(t, err, "Encode() error = %v", err)
	assert.Equalf(t, CentralDirectoryHeaderSize+len(h.Name), len(b), "unexpected encoded length")

	var got CentralDirectoryHeader
	assert.NoErrorf(t, got.Decode(b), "Decode() error")
	assert.Equal(t, h, got)
}

func TestCentralDirectoryHeader_EncodeOverflow(t *testing.T) {
	h := CentralDirectoryHeader{LocalHeaderOffset: math.MaxUint32 + 1}
	_, err := h.Encode()
	assert.Error(t, err)
}

func TestEndOfCentralDirRecord_EncodeDecode(t *testing.T) {
	r := EndOfCentralDirRecord{
		RecordCount:            4,
		CentralDirectorySize:   1000,
		CentralDirectoryOffset: 5000,
	}

	b, err := r.Encode()
	assert.NoErrorf(t, err, "Encode() error = %v", err)
	assert.Equalf(t, EndOfCentralDirSize, len(b), "unexpected encoded length")

	var got EndOfCentralDirRecord
	assert.NoErrorf(t, got.Decode(b), "Decode() error")
	assert.Equal(t, r, got)
}

func TestEndOfCentralDirRecord_EncodeOverflow(t *testing.T) {
	r := EndOfCentralDirRecord{RecordCount: math.MaxUint16 + 1}
	_, err := r.Encode()
	assert.Error(t, err)
}

func TestFindEndOfCentralDir(t *testing.T) {
	r := EndOfCentralDirRecord{RecordCount: 2, CentralDirectorySize: 10, CentralDirectoryOffset: 30}
	b, err := r.Encode()
	assert.NoError(t, err)

	archive := append([]byte("some preceding bytes that are not the signature"), b...)

	got, err := FindEndOfCentralDir(archive)
	assert.NoErrorf(t, err, "FindEndOfCentralDir() error = %v", err)
	assert.Equal(t, r, got)
}

func TestFindEndOfCentralDir_NotFound(t *testing.T) {
	_, err := FindEndOfCentralDir([]byte("This is not a valid zip file!"))
	assert.Error(t, err)
}
