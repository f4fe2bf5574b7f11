package compress

import (
	"fmt"

	"github.com/clamor-s/bef2/errs"
	"github.com/clamor-s/bef2/format"
)

const (
	// MaxDecompressedSize bounds the output of every Decompressor. Larger
	// sizes are rejected before any output is allocated.
	MaxDecompressedSize = 128 * 1024 * 1024

	// lz4MaxExpansion bounds the ratio of an LZ4 block: a literal or match
	// length byte adds at most 255 bytes of output.
	lz4MaxExpansion = 255
)

// Compressor compresses an encoded BEF2 message.
//
// Memory management:
//   - Returned slice is owned by the caller (the no-op codec returns the input itself)
//   - Input slice is not modified
type Compressor interface {
	// Compress compresses data. Empty input compresses to nil.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a message compressed by the matching Compressor.
//
// The uncompressed size is always known from the envelope header, so
// implementations allocate exactly rawSize bytes and reject output of any
// other length with errs.ErrDecompressedSize.
type Decompressor interface {
	// Decompress decompresses data into a new slice of exactly rawSize bytes.
	Decompress(data []byte, rawSize int) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor

	// Type returns the compression type stored in the envelope header.
	Type() format.CompressionType
}

// CreateCodec is a factory function that creates a Codec based on the specified compression type.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, or LZ4)
//   - target: Description of target usage (for error messages)
//
// Returns:
//   - Codec: Codec instance for the specified type
//   - error: errs.ErrUnsupportedCompression for an unknown type
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("%w: invalid %s compression %s (0x%02x)",
			errs.ErrUnsupportedCompression, target, compressionType, uint8(compressionType))
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s (0x%02x)", errs.ErrUnsupportedCompression, compressionType, uint8(compressionType))
}

// checkSize verifies that a decompressed payload has the size recorded in the header.
func checkSize(compressionType format.CompressionType, got, want int) error {
	if got != want {
		return fmt.Errorf("%w: %s produced %d bytes, expected %d", errs.ErrDecompressedSize, compressionType, got, want)
	}

	return nil
}

// checkRawSize rejects a declared size that is negative, above
// MaxDecompressedSize or above maxRatio times the compressed size. A zero
// maxRatio skips the ratio check.
func checkRawSize(compressionType format.CompressionType, rawSize, compressedSize, maxRatio int) error {
	if rawSize < 0 || rawSize > MaxDecompressedSize {
		return fmt.Errorf("%w: %s declares %d bytes, limit is %d",
			errs.ErrDecompressedSize, compressionType, rawSize, MaxDecompressedSize)
	}
	if maxRatio > 0 && rawSize/maxRatio > compressedSize {
		return fmt.Errorf("%w: %s cannot expand %d bytes to %d",
			errs.ErrDecompressedSize, compressionType, compressedSize, rawSize)
	}

	return nil
}
