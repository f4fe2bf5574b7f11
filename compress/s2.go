package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/clamor-s/bef2/format"
)

type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Type returns format.CompressionS2.
func (c S2Compressor) Type() format.CompressionType {
	return format.CompressionS2
}

// Compress compresses the input data using S2 compression.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress decompresses the input data using S2 decompression.
//
// rawSize is checked against MaxDecompressedSize and the length stored in
// the S2 block before any output is allocated.
func (c S2Compressor) Decompress(data []byte, rawSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, checkSize(format.CompressionS2, 0, rawSize)
	}
	if err := checkRawSize(format.CompressionS2, rawSize, len(data), 0); err != nil {
		return nil, err
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}
	if err := checkSize(format.CompressionS2, n, rawSize); err != nil {
		return nil, err
	}

	out, err := s2.Decode(make([]byte, rawSize), data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return out, nil
}
