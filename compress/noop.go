package compress

import "github.com/clamor-s/bef2/format"

// NoOpCompressor stores messages uncompressed.
//
// Small command parameters rarely shrink, so this is the default of the envelope.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Type returns format.CompressionNone.
func (c NoOpCompressor) Type() format.CompressionType {
	return format.CompressionNone
}

// Compress returns the input slice as-is, without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input slice as-is after checking its length.
//
// Note: The returned slice shares the same underlying memory as the input.
func (c NoOpCompressor) Decompress(data []byte, rawSize int) ([]byte, error) {
	if err := checkSize(format.CompressionNone, len(data), rawSize); err != nil {
		return nil, err
	}

	return data, nil
}
