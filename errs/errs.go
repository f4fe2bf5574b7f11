// Package errs defines the sentinel errors returned by the bef2 packages.
//
// Encoders and decoders keep the first error they hit and return it from Err().
// Callers compare with errors.Is; higher layers wrap these values with
// fmt.Errorf and %w.
package errs

import "errors"

// Codec errors.
var (
	// ErrBadFormat reports malformed input: an illegal tag or sub-tag, a truncated
	// element, invalid UTF-8, an element overrunning its enclosing sequence, or a
	// reserved length word on the wire.
	ErrBadFormat = errors.New("bef2: bad format")

	// ErrShortBuffer reports that the encoder buffer is too small. The encoder
	// records the exact capacity needed to encode the whole message.
	ErrShortBuffer = errors.New("bef2: short buffer")

	// ErrOutOfMemory reports a size computation overflow or a nesting depth
	// beyond the configured limit.
	ErrOutOfMemory = errors.New("bef2: out of memory")

	// ErrBadState reports an unbalanced CloseSequence.
	ErrBadState = errors.New("bef2: bad state")
)

// Envelope errors.
var (
	ErrInvalidEnvelope        = errors.New("bef2: invalid envelope")
	ErrInvalidEnvelopeSize    = errors.New("bef2: invalid envelope size")
	ErrChecksumMismatch       = errors.New("bef2: payload checksum mismatch")
	ErrUnsupportedCompression = errors.New("bef2: unsupported compression type")
	ErrDecompressedSize       = errors.New("bef2: decompressed size does not match header")
)

// Option errors.
var (
	ErrInvalidMaxDepth = errors.New("bef2: max depth must be between 1 and 255")
	ErrNilAllocator    = errors.New("bef2: allocator must not be nil")
	ErrNilTransport    = errors.New("bef2: transport must not be nil")
)
