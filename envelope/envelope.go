package envelope

import (
	"fmt"

	"github.com/clamor-s/bef2/codec"
	"github.com/clamor-s/bef2/compress"
	"github.com/clamor-s/bef2/errs"
	"github.com/clamor-s/bef2/format"
	"github.com/clamor-s/bef2/internal/hash"
	"github.com/clamor-s/bef2/internal/options"
)

type config struct {
	compression format.CompressionType
}

// Option configures Seal.
type Option = options.Option[*config]

// WithCompression selects the compression applied to the message.
//
// Parameters:
//   - compression: one of format.CompressionNone (default), Zstd, S2 or LZ4
//
// Returns:
//   - Option: errs.ErrUnsupportedCompression is reported by Seal for unknown types
func WithCompression(compression format.CompressionType) Option {
	return options.New(func(c *config) error {
		if _, ok := validCompressions[compression]; !ok {
			return fmt.Errorf("%w: 0x%02x", errs.ErrUnsupportedCompression, uint8(compression))
		}
		c.compression = compression

		return nil
	})
}

// Seal wraps an encoded BEF2 message in an envelope.
//
// The checksum covers the uncompressed message, so Open detects corruption
// of the payload regardless of the compression in use.
//
// Parameters:
//   - msg: encoded BEF2 message
//   - opts: optional configuration, see WithCompression
//
// Returns:
//   - []byte: header followed by the (possibly compressed) message
//   - error: option, size or compression error
func Seal(msg []byte, opts ...Option) ([]byte, error) {
	cfg := &config{compression: format.CompressionNone}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if len(msg) > MaxMessageSize {
		return nil, fmt.Errorf("%w: message of %d bytes", errs.ErrInvalidEnvelopeSize, len(msg))
	}

	c, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return nil, err
	}

	payload, err := c.Compress(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to compress message: %w", err)
	}

	h := NewHeader(cfg.compression, uint32(len(msg)), hash.Checksum(msg))
	out := make([]byte, 0, HeaderSize+len(payload))
	out = h.AppendTo(out)
	out = append(out, payload...)

	return out, nil
}

// Open validates an envelope and returns the BEF2 message it carries.
//
// For uncompressed envelopes the returned message aliases data.
//
// Returns:
//   - []byte: the encoded BEF2 message
//   - Header: the parsed envelope header
//   - error: errs.ErrInvalidEnvelopeSize, errs.ErrInvalidEnvelope,
//     errs.ErrUnsupportedCompression, errs.ErrDecompressedSize,
//     errs.ErrChecksumMismatch or a decompression error
func Open(data []byte) ([]byte, Header, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, Header{}, err
	}

	c, err := compress.GetCodec(h.Compression)
	if err != nil {
		return nil, Header{}, err
	}

	msg, err := c.Decompress(data[HeaderSize:], int(h.RawSize))
	if err != nil {
		return nil, Header{}, fmt.Errorf("failed to decompress %s envelope: %w", h.Compression, err)
	}

	if sum := hash.Checksum(msg); sum != h.Checksum {
		return nil, Header{}, fmt.Errorf("%w: got %016x, header has %016x", errs.ErrChecksumMismatch, sum, h.Checksum)
	}

	return msg, h, nil
}

// OpenDecoder opens an envelope and returns a decoder over its message.
func OpenDecoder(data []byte, opts ...codec.Option) (*codec.Decoder, Header, error) {
	msg, h, err := Open(data)
	if err != nil {
		return nil, Header{}, err
	}

	dec, err := codec.NewDecoder(msg, opts...)
	if err != nil {
		return nil, Header{}, err
	}

	return dec, h, nil
}
