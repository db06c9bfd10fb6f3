package snapshot

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ZSTD encoder/decoder pools for efficiency.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// compress encodes data with the requested codec. It returns nil when
// the codec produced nothing smaller than the input, in which case the
// caller stores the payload uncompressed.
func compress(data []byte, codec Compression) ([]byte, error) {
	switch codec {
	case CompressionNone:
		return nil, nil
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("snapshot: lz4 compress: %w", err)
		}
		if n == 0 || n >= len(data) {
			return nil, nil // incompressible
		}
		return buf[:n], nil
	case CompressionZSTD:
		enc := getZstdEncoder()
		defer zstdEncoderPool.Put(enc)
		buf := enc.EncodeAll(data, nil)
		if len(buf) >= len(data) {
			return nil, nil // incompressible
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidCompression, codec)
	}
}

// decompress decodes a stored payload back to uncompressed bytes of
// exactly the declared size.
func decompress(stored []byte, codec Compression, uncompressed int) ([]byte, error) {
	switch codec {
	case CompressionNone:
		if len(stored) != uncompressed {
			return nil, fmt.Errorf("snapshot: payload size mismatch: stored %d, declared %d", len(stored), uncompressed)
		}
		return stored, nil
	case CompressionLZ4:
		buf := make([]byte, uncompressed)
		n, err := lz4.UncompressBlock(stored, buf)
		if err != nil {
			return nil, fmt.Errorf("snapshot: lz4 decompress: %w", err)
		}
		if n != uncompressed {
			return nil, fmt.Errorf("snapshot: decompressed size mismatch: got %d, declared %d", n, uncompressed)
		}
		return buf, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		buf, err := dec.DecodeAll(stored, make([]byte, 0, uncompressed))
		if err != nil {
			return nil, fmt.Errorf("snapshot: zstd decompress: %w", err)
		}
		if len(buf) != uncompressed {
			return nil, fmt.Errorf("snapshot: decompressed size mismatch: got %d, declared %d", len(buf), uncompressed)
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidCompression, codec)
	}
}
