package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/clamor-s/bef2/format"
)

// zstdDecoderPool pools zstd decoders for reuse.
// The klauspost/compress/zstd decoder operates without allocations after a warmup.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true),
			zstd.WithDecoderMaxMemory(MaxDecompressedSize),
		)
		if err != nil {
			// This should never happen with valid options
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

// zstdEncoderPool pools zstd encoders for reuse.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false), // the envelope carries its own checksum
		)
		if err != nil {
			// This should never happen with valid options
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}

		return encoder
	},
}

// ZstdCompressor provides Zstandard compression, the best ratio of the
// built-in codecs, for large messages kept in storage.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// Type returns format.CompressionZstd.
func (c ZstdCompressor) Type() format.CompressionType {
	return format.CompressionZstd
}

// Compress compresses the input data into a single Zstandard frame using a pooled encoder.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	encoder, _ := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)

	return encoder.EncodeAll(data, make([]byte, 0, len(data)/2+64)), nil
}

// Decompress decompresses a Zstandard frame using a pooled decoder.
//
// rawSize is checked against MaxDecompressedSize and the frame content size
// before the destination is preallocated; any other output length fails with
// errs.ErrDecompressedSize.
func (c ZstdCompressor) Decompress(data []byte, rawSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, checkSize(format.CompressionZstd, 0, rawSize)
	}
	if err := checkRawSize(format.CompressionZstd, rawSize, len(data), 0); err != nil {
		return nil, err
	}

	var hdr zstd.Header
	if err := hdr.Decode(data); err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	capacity := min(rawSize, len(data)*4) // frames without a content size grow the destination
	if hdr.HasFCS {
		if err := checkSize(format.CompressionZstd, int(hdr.FrameContentSize), rawSize); err != nil {
			return nil, err
		}
		capacity = rawSize
	}

	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	out, err := decoder.DecodeAll(data, make([]byte, 0, capacity))
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	if err := checkSize(format.CompressionZstd, len(out), rawSize); err != nil {
		return nil, err
	}

	return out, nil
}
