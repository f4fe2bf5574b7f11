// Package session sends BEF2-encoded commands to a service over a Transport.
//
// A call encodes the request parameters into pooled memory, hands them to the
// transport together with a command identifier and decodes the response the
// transport returns. The package ships no transport of its own.
package session

import (
	"context"
	"fmt"

	"github.com/clamor-s/bef2"
	"github.com/clamor-s/bef2/codec"
	"github.com/clamor-s/bef2/errs"
	"github.com/clamor-s/bef2/internal/options"
)

// Transport delivers an encoded request and returns the encoded response.
//
// The request slice is only valid for the duration of Invoke. The response
// belongs to the caller.
type Transport interface {
	Invoke(ctx context.Context, command uint32, request []byte) ([]byte, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, command uint32, request []byte) ([]byte, error)

// Invoke calls f.
func (f TransportFunc) Invoke(ctx context.Context, command uint32, request []byte) ([]byte, error) {
	return f(ctx, command, request)
}

var _ Transport = TransportFunc(nil)

// Client issues commands over a Transport.
//
// A Client holds no per-call state and may be shared between goroutines when
// its transport and allocator allow it.
type Client struct {
	transport Transport
	codecOpts []codec.Option
	opts      []bef2.Option
}

// Option configures a Client.
type Option = options.Option[*Client]

// WithAllocator sets the allocator of request buffers.
func WithAllocator(a bef2.Allocator) Option {
	return options.New(func(c *Client) error {
		if a == nil {
			return errs.ErrNilAllocator
		}
		c.opts = append(c.opts, bef2.WithAllocator(a))

		return nil
	})
}

// WithCodecOptions passes options to the request encoder and response decoder.
func WithCodecOptions(opts ...codec.Option) Option {
	return options.NoError(func(c *Client) {
		c.codecOpts = append(c.codecOpts, opts...)
		c.opts = append(c.opts, bef2.WithCodecOptions(opts...))
	})
}

// NewClient creates a client sending through transport.
//
// Parameters:
//   - transport: the transport used by every call
//   - opts: optional configuration
//
// Returns:
//   - *Client: the client
//   - error: errs.ErrNilTransport for a nil transport
func NewClient(transport Transport, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, errs.ErrNilTransport
	}

	c := &Client{transport: transport}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// Invoke encodes the request written by build, sends it and returns a decoder
// over the response.
//
// build may run twice when the request outgrows the first buffer, see bef2.Marshal.
func (c *Client) Invoke(ctx context.Context, command uint32, build func(enc *codec.Encoder)) (*codec.Decoder, error) {
	resp, err := c.roundTrip(ctx, command, build)
	if err != nil {
		return nil, err
	}

	dec, err := codec.NewDecoder(resp, c.codecOpts...)
	if err != nil {
		return nil, err
	}

	return dec, nil
}

// Call encodes the request written by build, sends it and decodes the
// response with read. The whole response must be consumed.
//
// Returns:
//   - error: context, encoding, transport or decoding error
func (c *Client) Call(ctx context.Context, command uint32, build func(enc *codec.Encoder), read func(dec *codec.Decoder)) error {
	resp, err := c.roundTrip(ctx, command, build)
	if err != nil {
		return err
	}

	if err := bef2.Unmarshal(resp, read, c.opts...); err != nil {
		return fmt.Errorf("command 0x%08x: response: %w", command, err)
	}

	return nil
}

func (c *Client) roundTrip(ctx context.Context, command uint32, build func(enc *codec.Encoder)) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req, err := bef2.Marshal(build, c.opts...)
	if err != nil {
		return nil, fmt.Errorf("command 0x%08x: request: %w", command, err)
	}
	defer req.Release()

	resp, err := c.transport.Invoke(ctx, command, req.Bytes())
	if err != nil {
		return nil, fmt.Errorf("command 0x%08x: %w", command, err)
	}

	return resp, nil
}
