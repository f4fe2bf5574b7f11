package envelope

import (
	"fmt"

	"github.com/clamor-s/bef2/compress"
	"github.com/clamor-s/bef2/endian"
	"github.com/clamor-s/bef2/errs"
	"github.com/clamor-s/bef2/format"
)

const (
	// Magic identifies a BEF2 envelope.
	Magic uint16 = 0xBEF2
	// Version is the envelope layout version written by Seal.
	Version uint8 = 1
	// HeaderSize is the size of the fixed envelope header.
	HeaderSize = 16
	// MaxMessageSize is the largest message an envelope may carry.
	MaxMessageSize = compress.MaxDecompressedSize
)

var validCompressions = map[format.CompressionType]struct{}{
	format.CompressionNone: {},
	format.CompressionZstd: {},
	format.CompressionS2:   {},
	format.CompressionLZ4:  {},
}

// Header is the fixed-size header at the start of an envelope.
type Header struct {
	Magic       uint16                 // byte offset 0-1
	Version     uint8                  // byte offset 2
	Compression format.CompressionType // byte offset 3
	// RawSize is the size of the BEF2 message before compression.
	RawSize uint32 // byte offset 4-7
	// Checksum is the xxHash64 of the BEF2 message before compression.
	Checksum uint64 // byte offset 8-15
}

// NewHeader creates a header for a message of rawSize bytes.
func NewHeader(compression format.CompressionType, rawSize uint32, checksum uint64) Header {
	return Header{
		Magic:       Magic,
		Version:     Version,
		Compression: compression,
		RawSize:     rawSize,
		Checksum:    checksum,
	}
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be exactly 16 bytes)
//
// Returns:
//   - error: errs.ErrInvalidEnvelopeSize if data is not 16 bytes, or a validation error
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidEnvelopeSize
	}

	engine := endian.GetLittleEndianEngine()
	h.Magic = engine.Uint16(data[0:2])
	h.Version = data[2]
	h.Compression = format.CompressionType(data[3])
	h.RawSize = engine.Uint32(data[4:8])
	h.Checksum = engine.Uint64(data[8:16])

	return h.Validate()
}

// Validate checks the magic number, the version, the compression type and
// that the message size does not exceed MaxMessageSize.
func (h Header) Validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("%w: magic 0x%04x", errs.ErrInvalidEnvelope, h.Magic)
	}
	if h.Version != Version {
		return fmt.Errorf("%w: version %d", errs.ErrInvalidEnvelope, h.Version)
	}
	if _, ok := validCompressions[h.Compression]; !ok {
		return fmt.Errorf("%w: 0x%02x", errs.ErrUnsupportedCompression, uint8(h.Compression))
	}
	if h.RawSize > MaxMessageSize {
		return fmt.Errorf("%w: message of %d bytes exceeds %d", errs.ErrInvalidEnvelopeSize, h.RawSize, MaxMessageSize)
	}

	return nil
}

// Bytes serializes the header into a new byte slice.
func (h Header) Bytes() []byte {
	return h.AppendTo(make([]byte, 0, HeaderSize))
}

// AppendTo appends the serialized header to dst.
func (h Header) AppendTo(dst []byte) []byte {
	engine := endian.GetLittleEndianEngine()

	dst = engine.AppendUint16(dst, h.Magic)
	dst = append(dst, h.Version, uint8(h.Compression))
	dst = engine.AppendUint32(dst, h.RawSize)
	dst = engine.AppendUint64(dst, h.Checksum)

	return dst
}

// ParseHeader parses a Header from the start of a byte slice.
//
// Parameters:
//   - data: Byte slice starting with a header (must be at least 16 bytes)
//
// Returns:
//   - Header: Parsed header struct
//   - error: errs.ErrInvalidEnvelopeSize or a validation error
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errs.ErrInvalidEnvelopeSize
	}

	h := Header{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return Header{}, err
	}

	return h, nil
}
