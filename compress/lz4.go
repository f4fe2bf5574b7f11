package compress

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/clamor-s/bef2/format"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 block compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Type returns format.CompressionLZ4.
func (c LZ4Compressor) Type() format.CompressionType {
	return format.CompressionLZ4
}

// Compress compresses the input data as a single LZ4 block.
//
// Uses a pooled lz4.Compressor.
//
// Parameters:
//   - data: Input data to compress
//
// Returns:
//   - []byte: Compressed data (nil if input is empty)
//   - error: Compression error if any
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	return dst[:n], nil
}

// Decompress decompresses an LZ4 block into exactly rawSize bytes.
//
// An LZ4 block does not record its uncompressed size, so the size from the
// envelope header bounds the output buffer. It is checked against
// MaxDecompressedSize and the largest expansion an LZ4 block of len(data)
// bytes can produce before anything is allocated. Data that would expand
// beyond it fails with lz4.ErrInvalidSourceShortBuffer.
func (c LZ4Compressor) Decompress(data []byte, rawSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, checkSize(format.CompressionLZ4, 0, rawSize)
	}
	if err := checkRawSize(format.CompressionLZ4, rawSize, len(data), lz4MaxExpansion); err != nil {
		return nil, err
	}

	buf := make([]byte, rawSize)
	n, err := lz4.UncompressBlock(data, buf)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	if err := checkSize(format.CompressionLZ4, n, rawSize); err != nil {
		return nil, err
	}

	return buf, nil
}
