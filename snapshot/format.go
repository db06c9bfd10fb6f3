package snapshot

import "errors"

const (
	// MagicNumber identifies snapshot files (ASCII: "RB32").
	MagicNumber = 0x52423332
	// Version is the current snapshot format version.
	Version = 1

	headerSize = 20
)

// Compression selects the codec applied to the serialized bitmap
// before it is written.
type Compression uint8

const (
	// CompressionNone stores the payload uncompressed.
	CompressionNone Compression = 0
	// CompressionLZ4 applies LZ4 block compression (fast, light ratio).
	CompressionLZ4 Compression = 1
	// CompressionZSTD applies ZSTD block compression (better ratio).
	CompressionZSTD Compression = 2
)

var (
	// ErrInvalidMagic is returned when a stream does not start with
	// MagicNumber.
	ErrInvalidMagic = errors.New("snapshot: invalid magic number")

	// ErrInvalidVersion is returned for an unsupported format version.
	ErrInvalidVersion = errors.New("snapshot: unsupported version")

	// ErrInvalidCompression is returned for an unknown codec byte.
	ErrInvalidCompression = errors.New("snapshot: unknown compression codec")

	// ErrChecksumMismatch is returned when the stored payload fails
	// checksum verification.
	ErrChecksumMismatch = errors.New("snapshot: checksum mismatch")
)

// header is the fixed-size prefix of every snapshot.
//
// Layout (little-endian):
//
//	0  magic            uint32
//	4  version          uint16
//	6  codec            uint8
//	7  reserved         uint8
//	8  uncompressed len uint32
//	12 stored len       uint32
//	16 checksum         uint32  CRC32 (IEEE) of the stored payload
type header struct {
	magic        uint32
	version      uint16
	codec        Compression
	uncompressed uint32
	stored       uint32
	checksum     uint32
}
