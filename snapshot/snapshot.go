package snapshot

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hupe1980/roaring32"
)

// Options configure Save and Load.
type Options struct {
	// Compression is the codec applied to the serialized bitmap.
	// Incompressible payloads are stored uncompressed regardless, which
	// the header records, so Load needs no matching option.
	Compression Compression

	// Logger receives structured save/load events. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithCompression selects the compression codec.
func WithCompression(c Compression) Option {
	return func(o *Options) { o.Compression = c }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func applyOptions(optFns []Option) Options {
	opts := Options{Logger: slog.Default()}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Save writes b to w as a snapshot.
func Save(w io.Writer, b *roaring32.Bitmap, optFns ...Option) error {
	opts := applyOptions(optFns)

	payload := b.ToBytes()
	codec := opts.Compression
	stored, err := compress(payload, codec)
	if err != nil {
		return err
	}
	if stored == nil {
		codec, stored = CompressionNone, payload
	}

	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], MagicNumber)
	binary.LittleEndian.PutUint16(hdr[4:], Version)
	hdr[6] = byte(codec)
	binary.LittleEndian.PutUint32(hdr[8:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(hdr[12:], uint32(len(stored)))
	binary.LittleEndian.PutUint32(hdr[16:], crc32.ChecksumIEEE(stored))

	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}
	if _, err := w.Write(stored); err != nil {
		return fmt.Errorf("snapshot: write payload: %w", err)
	}

	opts.Logger.Debug("snapshot saved",
		"cardinality", b.Cardinality(),
		"payload_bytes", len(payload),
		"stored_bytes", len(stored),
		"codec", uint8(codec),
	)
	return nil
}

// Load reads a snapshot from r and reconstructs the bitmap. The header
// magic, version, codec and payload checksum are all verified before
// decoding.
func Load(r io.Reader, optFns ...Option) (*roaring32.Bitmap, error) {
	opts := applyOptions(optFns)

	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}

	h := header{
		magic:        binary.LittleEndian.Uint32(hdr[0:]),
		version:      binary.LittleEndian.Uint16(hdr[4:]),
		codec:        Compression(hdr[6]),
		uncompressed: binary.LittleEndian.Uint32(hdr[8:]),
		stored:       binary.LittleEndian.Uint32(hdr[12:]),
		checksum:     binary.LittleEndian.Uint32(hdr[16:]),
	}
	if h.magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, h.magic)
	}
	if h.version != Version {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidVersion, h.version)
	}

	stored := make([]byte, h.stored)
	if _, err := io.ReadFull(r, stored); err != nil {
		return nil, fmt.Errorf("snapshot: read payload: %w", err)
	}
	if sum := crc32.ChecksumIEEE(stored); sum != h.checksum {
		return nil, fmt.Errorf("%w: got 0x%08x, want 0x%08x", ErrChecksumMismatch, sum, h.checksum)
	}

	payload, err := decompress(stored, h.codec, int(h.uncompressed))
	if err != nil {
		return nil, err
	}

	b, err := roaring32.FromBytes(payload)
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("snapshot loaded",
		"cardinality", b.Cardinality(),
		"payload_bytes", len(payload),
		"stored_bytes", len(stored),
		"codec", uint8(h.codec),
	)
	return b, nil
}

// SaveFile writes b to filename atomically: the snapshot goes to a temp
// file in the same directory, which then replaces the target via
// rename.
func SaveFile(filename string, b *roaring32.Bitmap, optFns ...Option) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	// Write to a temp file in the same directory to ensure rename is atomic.
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	// Match typical file permissions (best-effort).
	_ = tmp.Chmod(0644)

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := Save(buf, b, optFns...); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	// Success: prevent deferred cleanup from removing the final file.
	tmpName = ""
	return nil
}

// LoadFile reads a snapshot from filename.
func LoadFile(filename string, optFns ...Option) (*roaring32.Bitmap, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(bufio.NewReaderSize(f, 256*1024), optFns...)
}
