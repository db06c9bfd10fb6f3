package roaring32

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializationRoundTrip(t *testing.T) {
	cases := map[string]*Bitmap{
		"Empty":           New(),
		"SingleValue":     bitmapOf(42),
		"SparseContainer": bitmapOf(1, 2, 100, 65535),
		"DenseContainer":  bitmapRange(0, 8192),
		"ExactThreshold":  bitmapRange(0, 4096),
		"BelowThreshold":  bitmapRange(0, 4095),
		"MultiContainer":  Or(bitmapRange(0, 5000), bitmapOf(65536, 1<<20, 0xFFFFFFFF)),
	}

	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := b.WriteTo(&buf)
			require.NoError(t, err)

			assert.Equal(t, int64(b.SerializedSize()), n)
			assert.Equal(t, b.SerializedSize(), buf.Len())

			got, err := NewFromReader(&buf)
			require.NoError(t, err)

			assert.Equal(t, b.Cardinality(), got.Cardinality())
			assert.Equal(t, b.ToArray(), got.ToArray())

			// Store forms are reconstructed from cardinality alone, so
			// they must agree container by container.
			require.Len(t, got.containers, len(b.containers))
			for i, c := range b.containers {
				assert.Equal(t, c.key, got.containers[i].key)
				assert.Equal(t, c.n, got.containers[i].n)
				assert.Equal(t, c.isArray(), got.containers[i].isArray())
			}
		})
	}
}

func TestSerializationExactBytes(t *testing.T) {
	// {1, 2} must encode as one array container with key 0 and
	// cardinality-1 of 1, its data at offset 16.
	b := bitmapOf(1, 2)

	want := []byte{
		0x3A, 0x30, 0x00, 0x00, // cookie 12346
		0x01, 0x00, 0x00, 0x00, // one container
		0x00, 0x00, // key 0
		0x01, 0x00, // cardinality - 1
		0x10, 0x00, 0x00, 0x00, // data offset 16
		0x01, 0x00, // value 1
		0x02, 0x00, // value 2
	}
	assert.Equal(t, want, b.ToBytes())
	assert.Equal(t, len(want), b.SerializedSize())
}

func TestSerializationOffsets(t *testing.T) {
	// Offsets must point at each container's data, counted from the
	// start of the stream, array and bitmap containers alike.
	b := Or(bitmapOf(1, 2, 3), Or(bitmapRange(1<<16, 1<<16+5000), bitmapOf(2<<16+9)))
	data := b.ToBytes()

	count := int(binary.LittleEndian.Uint32(data[4:]))
	require.Equal(t, 3, count)

	offsets := data[8+4*count:]
	assert.Equal(t, uint32(8+8*3), binary.LittleEndian.Uint32(offsets[0:]))
	assert.Equal(t, uint32(8+8*3+2*3), binary.LittleEndian.Uint32(offsets[4:]))
	assert.Equal(t, uint32(8+8*3+2*3+8192), binary.LittleEndian.Uint32(offsets[8:]))
}

func TestDeserialization(t *testing.T) {
	t.Run("OfficialEmptyEncoding", func(t *testing.T) {
		data := []byte{0x3A, 0x30, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
		b, err := NewFromReader(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Zero(t, b.Cardinality())
		assert.True(t, b.IsEmpty())
	})

	t.Run("RunContainerCookieRejected", func(t *testing.T) {
		var buf bytes.Buffer
		// The run-container layout puts cookie 12347 in the low 16 bits.
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(12347)))
		buf.Write(make([]byte, 8))

		_, err := NewFromReader(&buf)
		assert.ErrorIs(t, err, ErrRunContainer)

		// High bits carry the run-container count and must not matter.
		var buf2 bytes.Buffer
		require.NoError(t, binary.Write(&buf2, binary.LittleEndian, uint32(12347|5<<16)))
		buf2.Write(make([]byte, 8))

		_, err = NewFromReader(&buf2)
		assert.ErrorIs(t, err, ErrRunContainer)
	})

	t.Run("UnknownCookieRejected", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(99999)))
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(0)))

		_, err := NewFromReader(&buf)
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})

	t.Run("OversizedContainerCountRejected", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(12346)))
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(65536)))

		_, err := NewFromReader(&buf)
		assert.ErrorIs(t, err, ErrTooManyContainers)
	})

	t.Run("TruncatedStreams", func(t *testing.T) {
		full := Or(bitmapOf(1, 2, 3), bitmapRange(1<<16, 1<<16+5000)).ToBytes()

		for _, cut := range []int{0, 4, 7, 8, 10, 16, 23, len(full) - 1} {
			_, err := NewFromReader(bytes.NewReader(full[:cut]))
			require.Error(t, err, "cut at %d", cut)
			assert.True(t,
				errorsIsAny(err, io.EOF, io.ErrUnexpectedEOF),
				"cut at %d: %v", cut, err)
		}
	})

	t.Run("OffsetTableIsNotValidated", func(t *testing.T) {
		// The offset table is consumed but unused; garbage there must
		// not affect decoding (container boundaries follow from the
		// cardinalities).
		b := Or(bitmapOf(1, 2, 3), bitmapOf(65536+7))
		data := b.ToBytes()
		count := 2
		for i := 8 + 4*count; i < 8+8*count; i++ {
			data[i] = 0xAB
		}

		got, err := FromBytes(data)
		require.NoError(t, err)
		assert.Equal(t, b.ToArray(), got.ToArray())
	})

	t.Run("StoreFormFollowsDeclaredCardinality", func(t *testing.T) {
		b, err := FromBytes(bitmapRange(0, 4096).ToBytes())
		require.NoError(t, err)
		require.Len(t, b.containers, 1)
		assert.False(t, b.containers[0].isArray())

		b, err = FromBytes(bitmapRange(0, 4095).ToBytes())
		require.NoError(t, err)
		require.Len(t, b.containers, 1)
		assert.True(t, b.containers[0].isArray())
	})

	t.Run("FullContainerRoundTrip", func(t *testing.T) {
		// Cardinality 65536 stresses the len-1 descriptor encoding.
		b := bitmapRange(0, 65536)
		got, err := FromBytes(b.ToBytes())
		require.NoError(t, err)
		assert.Equal(t, uint64(65536), got.Cardinality())
		assert.True(t, got.Contains(0))
		assert.True(t, got.Contains(65535))
	})
}

func errorsIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
