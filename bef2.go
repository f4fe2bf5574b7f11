// Package bef2 provides a compact tag-length-value binary format for passing
// typed parameters across a trust boundary.
//
// BEF2 messages carry booleans, little-endian fixed-width integers, handles,
// UTF-8 strings, UUIDs, memory references, arrays of scalars and nested
// sequences. Every element is self-describing, so a receiver can inspect and
// skip elements it does not expect.
//
// # Core Features
//
//   - One-byte tags classifying base type and value/null/array flag
//   - Bounds- and overflow-checked decoding of untrusted buffers
//   - Idempotent peeking at the next element
//   - Depth-bounded nested sequences
//   - UTF-8 validation with UTF-16/UTF-32 re-encoding
//   - Exact capacity negotiation for caller-allocated buffers
//
// # Basic Usage
//
// Encoding a message with a pooled buffer:
//
//	buf, err := bef2.Marshal(func(enc *codec.Encoder) {
//	    enc.OpenSequence()
//	    enc.WriteUint32(7)
//	    enc.WriteString("abc")
//	    enc.WriteUint8Array([]uint8{1, 2, 3})
//	    enc.CloseSequence()
//	})
//	defer buf.Release()
//
// Decoding it:
//
//	err := bef2.Unmarshal(buf.Bytes(), func(dec *codec.Decoder) {
//	    dec.OpenSequence()
//	    id := dec.ReadUint32()
//	    name, _ := dec.ReadString()
//	    values := dec.ReadUint8Array()
//	    dec.CloseSequence()
//	})
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the codec
// package. For fine-grained control, such as random-access array copies or
// wide-character strings, use the codec package directly. Package envelope
// frames messages for storage, package inspect renders unknown messages and
// package session sends them over a Transport.
package bef2

import (
	"errors"
	"fmt"

	"github.com/clamor-s/bef2/codec"
	"github.com/clamor-s/bef2/errs"
	"github.com/clamor-s/bef2/internal/options"
	"github.com/clamor-s/bef2/internal/pool"
)

// Allocator supplies the memory that encoded messages are written to.
//
// Allocate returns a slice of exactly size bytes owned by the caller until it
// is handed back with Free. Implementations must be safe for concurrent use
// when shared between goroutines.
type Allocator interface {
	Allocate(size int) []byte
	Free(buf []byte)
}

var _ Allocator = (*pool.ByteBufferPool)(nil)

// DefaultAllocator returns the process-wide pooled allocator used by Marshal.
func DefaultAllocator() Allocator {
	return pool.Default()
}

type config struct {
	allocator   Allocator
	initialSize int
	codecOpts   []codec.Option
}

// Option configures Marshal and Unmarshal.
type Option = options.Option[*config]

// WithAllocator sets the allocator of the message buffer.
//
// Returns:
//   - Option: errs.ErrNilAllocator is reported for a nil allocator
func WithAllocator(a Allocator) Option {
	return options.New(func(c *config) error {
		if a == nil {
			return errs.ErrNilAllocator
		}
		c.allocator = a

		return nil
	})
}

// WithInitialSize sets the size of the first buffer Marshal tries.
// Messages that do not fit are encoded again into a buffer of the exact size.
func WithInitialSize(size int) Option {
	return options.NoError(func(c *config) {
		c.initialSize = max(size, 0)
	})
}

// WithCodecOptions passes options to the encoder or decoder.
func WithCodecOptions(opts ...codec.Option) Option {
	return options.NoError(func(c *config) {
		c.codecOpts = append(c.codecOpts, opts...)
	})
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{
		allocator:   pool.Default(),
		initialSize: pool.MessageBufferDefaultSize,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Buffer is an encoded message backed by allocator memory.
type Buffer struct {
	data      []byte
	mem       []byte
	allocator Allocator
}

// Bytes returns the encoded message. It is valid until Release.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the size of the encoded message.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Release hands the memory back to the allocator. Calling it more than once is a no-op.
func (b *Buffer) Release() {
	if b.mem == nil {
		return
	}
	b.allocator.Free(b.mem)
	b.data, b.mem = nil, nil
}

// NewEncoder creates an encoder writing into buf.
func NewEncoder(buf []byte, opts ...codec.Option) (*codec.Encoder, error) {
	return codec.NewEncoder(buf, opts...)
}

// NewDecoder creates a decoder reading data.
func NewDecoder(data []byte, opts ...codec.Option) (*codec.Decoder, error) {
	return codec.NewDecoder(data, opts...)
}

// Marshal encodes the message written by build into allocator memory.
//
// build may be called twice: when the first buffer is too small, the encoder
// reports the exact size required and build runs again against a buffer of
// that size. It must write the same message both times.
//
// Parameters:
//   - build: writes the message, errors are checked after it returns
//   - opts: optional configuration
//
// Returns:
//   - *Buffer: the encoded message, to be released by the caller
//   - error: option error or encoder error
func Marshal(build func(enc *codec.Encoder), opts ...Option) (*Buffer, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	mem := cfg.allocator.Allocate(cfg.initialSize)
	enc, err := codec.NewEncoder(mem, cfg.codecOpts...)
	if err != nil {
		cfg.allocator.Free(mem)
		return nil, err
	}

	build(enc)
	data, err := enc.Finish()
	if errors.Is(err, errs.ErrShortBuffer) {
		required := enc.RequiredCapacity()
		cfg.allocator.Free(mem)

		mem = cfg.allocator.Allocate(required)
		enc.Init(mem)
		build(enc)
		data, err = enc.Finish()
	}
	if err != nil {
		cfg.allocator.Free(mem)
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}

	return &Buffer{data: data, mem: mem, allocator: cfg.allocator}, nil
}

// Unmarshal decodes data with read and checks that it consumed the whole message.
//
// Returns:
//   - error: the decoder error, or errs.ErrBadFormat if elements remain unread
func Unmarshal(data []byte, read func(dec *codec.Decoder), opts ...Option) error {
	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}

	dec, err := codec.NewDecoder(data, cfg.codecOpts...)
	if err != nil {
		return err
	}

	read(dec)
	if err := dec.Err(); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	if dec.Depth() != 0 {
		return fmt.Errorf("%w: %d sequences left open", errs.ErrBadState, dec.Depth())
	}
	if dec.HasData() {
		return fmt.Errorf("%w: unread %s element", errs.ErrBadFormat, dec.GetCurrentType().Type)
	}

	return nil
}
