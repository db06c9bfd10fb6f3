package roaring32

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Portable serialization in the interoperable roaring format
// (https://github.com/RoaringBitmap/RoaringFormatSpec), no-run-container
// layout: a fixed 8-byte header, one 4-byte descriptor per container,
// one 4-byte data offset per container, then each container's raw
// values. All integers are little-endian. The layout is byte-for-byte
// compatible with the official C/C++, Java, Go and Rust
// implementations.

const (
	// serialCookieNoRun opens the layout without run containers — the
	// only layout this implementation reads and writes.
	serialCookieNoRun = 12346

	// serialCookieRun in the low 16 bits of the leading word signals the
	// run-container layout, which is detected and rejected.
	serialCookieRun = 12347

	serialHeaderSize = 8
)

// SerializedSize returns the exact number of bytes WriteTo will emit:
// the 8-byte header plus, per container, a 4-byte descriptor, a 4-byte
// offset, and either 2 bytes per value (array form) or 8192 bytes
// (bitmap form).
func (b *Bitmap) SerializedSize() int {
	size := serialHeaderSize
	for _, c := range b.containers {
		if c.isArray() {
			size += 8 + 2*int(c.n)
		} else {
			size += 8 + 8*bitmapN
		}
	}
	return size
}

// appendSerialized appends the serialized form of b to buf.
func (b *Bitmap) appendSerialized(buf []byte) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, serialCookieNoRun)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(b.containers)))

	for _, c := range b.containers {
		buf = binary.LittleEndian.AppendUint16(buf, c.key)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(c.n-1))
	}

	offset := uint32(serialHeaderSize + 8*len(b.containers))
	for _, c := range b.containers {
		buf = binary.LittleEndian.AppendUint32(buf, offset)
		if c.isArray() {
			offset += 2 * uint32(c.n)
		} else {
			offset += 8 * bitmapN
		}
	}

	for _, c := range b.containers {
		if c.isArray() {
			for _, v := range c.array {
				buf = binary.LittleEndian.AppendUint16(buf, v)
			}
		} else {
			for _, w := range c.bitmap {
				buf = binary.LittleEndian.AppendUint64(buf, w)
			}
		}
	}
	return buf
}

// WriteTo serializes b to w and returns the number of bytes written.
// It implements io.WriterTo. Errors from w propagate unchanged.
func (b *Bitmap) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.appendSerialized(make([]byte, 0, b.SerializedSize())))
	return int64(n), err
}

// ToBytes returns the serialized form of b.
func (b *Bitmap) ToBytes() []byte {
	return b.appendSerialized(make([]byte, 0, b.SerializedSize()))
}

// NewFromReader deserializes a bitmap from r.
//
// Deserialization is atomic: it returns either a complete bitmap
// satisfying all invariants or an error, never a partial structure. A
// run-container stream fails with ErrRunContainer, a foreign stream
// with ErrUnknownFormat, and an over-long container count with
// ErrTooManyContainers; read failures from r (including short reads,
// surfaced as io.ErrUnexpectedEOF) are wrapped with context and remain
// matchable via errors.Is.
//
// The store form of each container is chosen from its cardinality
// alone, independent of how the writer stored it.
func NewFromReader(r io.Reader) (*Bitmap, error) {
	var header [serialHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("roaring32: read header: %w", err)
	}

	cookie := binary.LittleEndian.Uint32(header[:4])
	switch {
	case cookie == serialCookieNoRun:
	case uint16(cookie) == serialCookieRun:
		return nil, ErrRunContainer
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, cookie)
	}

	count := int(binary.LittleEndian.Uint32(header[4:]))
	if count > 0xffff {
		return nil, fmt.Errorf("%w: %d", ErrTooManyContainers, count)
	}

	descriptors := make([]byte, 4*count)
	if _, err := io.ReadFull(r, descriptors); err != nil {
		return nil, fmt.Errorf("roaring32: read container descriptors: %w", err)
	}

	// The offset table is redundant when materializing the whole bitmap:
	// container boundaries follow from the cardinalities. Consume it and
	// move on.
	if _, err := io.CopyN(io.Discard, r, int64(4*count)); err != nil {
		return nil, fmt.Errorf("roaring32: read offset table: %w", err)
	}

	containers := make([]*container, 0, count)
	var data []byte
	for i := 0; i < count; i++ {
		key := binary.LittleEndian.Uint16(descriptors[4*i:])
		card := int(binary.LittleEndian.Uint16(descriptors[4*i+2:])) + 1

		c := &container{key: key, n: int32(card)}
		if card < arrayMaxSize {
			if cap(data) < 2*card {
				data = make([]byte, 8*bitmapN)
			}
			if _, err := io.ReadFull(r, data[:2*card]); err != nil {
				return nil, fmt.Errorf("roaring32: read container data: %w", err)
			}
			c.array = make([]uint16, card)
			for k := range c.array {
				c.array[k] = binary.LittleEndian.Uint16(data[2*k:])
			}
		} else {
			if cap(data) < 8*bitmapN {
				data = make([]byte, 8*bitmapN)
			}
			if _, err := io.ReadFull(r, data[:8*bitmapN]); err != nil {
				return nil, fmt.Errorf("roaring32: read container data: %w", err)
			}
			c.bitmap = make([]uint64, bitmapN)
			for k := range c.bitmap {
				c.bitmap[k] = binary.LittleEndian.Uint64(data[8*k:])
			}
		}
		containers = append(containers, c)
	}

	return &Bitmap{containers: containers}, nil
}

// FromBytes deserializes a bitmap from data. See NewFromReader.
func FromBytes(data []byte) (*Bitmap, error) {
	return NewFromReader(bytes.NewReader(data))
}
