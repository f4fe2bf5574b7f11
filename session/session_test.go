package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clamor-s/bef2"
	"github.com/clamor-s/bef2/codec"
	"github.com/clamor-s/bef2/errs"
)

const (
	cmdSum  uint32 = 0x10
	cmdEcho uint32 = 0x11
)

var errUnknownCommand = errors.New("unknown command")

// fakeService decodes requests in process and answers them like a secure-world service would.
type fakeService struct {
	calls    int
	lastSize int
}

func (s *fakeService) Invoke(ctx context.Context, command uint32, request []byte) ([]byte, error) {
	s.calls++
	s.lastSize = len(request)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch command {
	case cmdSum:
		var values []uint32
		err := bef2.Unmarshal(request, func(dec *codec.Decoder) {
			dec.OpenSequence()
			values = dec.ReadUint32Array()
			dec.CloseSequence()
		})
		if err != nil {
			return nil, err
		}

		var sum uint32
		for _, v := range values {
			sum += v
		}

		return respond(func(enc *codec.Encoder) {
			enc.WriteUint32(sum)
		})
	case cmdEcho:
		var msg string
		err := bef2.Unmarshal(request, func(dec *codec.Decoder) {
			msg, _ = dec.ReadString()
		})
		if err != nil {
			return nil, err
		}

		return respond(func(enc *codec.Encoder) {
			enc.WriteString(msg)
			enc.WriteBoolean(true)
		})
	default:
		return nil, errUnknownCommand
	}
}

var _ Transport = (*fakeService)(nil)

func TestNewClient(t *testing.T) {
	_, err := NewClient(nil)
	require.ErrorIs(t, err, errs.ErrNilTransport)

	_, err = NewClient(&fakeService{}, WithAllocator(nil))
	require.ErrorIs(t, err, errs.ErrNilAllocator)

	c, err := NewClient(&fakeService{}, WithAllocator(bef2.DefaultAllocator()))
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestClient_Call(t *testing.T) {
	svc := &fakeService{}
	c, err := NewClient(svc)
	require.NoError(t, err)

	var sum uint32
	err = c.Call(context.Background(), cmdSum, func(enc *codec.Encoder) {
		enc.OpenSequence()
		enc.WriteUint32Array([]uint32{1, 2, 3, 4})
		enc.CloseSequence()
	}, func(dec *codec.Decoder) {
		sum = dec.ReadUint32()
	})
	require.NoError(t, err)
	require.Equal(t, uint32(10), sum)
	require.Equal(t, 1, svc.calls)
	require.Equal(t, 26, svc.lastSize)
}

func TestClient_Invoke(t *testing.T) {
	c, err := NewClient(&fakeService{})
	require.NoError(t, err)

	dec, err := c.Invoke(context.Background(), cmdEcho, func(enc *codec.Encoder) {
		enc.WriteString("ping")
	})
	require.NoError(t, err)

	s, null := dec.ReadString()
	require.False(t, null)
	require.Equal(t, "ping", s)
	require.True(t, dec.ReadBoolean())
	require.False(t, dec.HasData())
	require.NoError(t, dec.Err())
}

func TestClient_Errors(t *testing.T) {
	t.Run("canceled context", func(t *testing.T) {
		svc := &fakeService{}
		c, err := NewClient(svc)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err = c.Call(ctx, cmdEcho, func(enc *codec.Encoder) {}, func(dec *codec.Decoder) {})
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, 0, svc.calls)
	})

	t.Run("transport error", func(t *testing.T) {
		c, err := NewClient(&fakeService{})
		require.NoError(t, err)

		_, err = c.Invoke(context.Background(), 0xFF, func(enc *codec.Encoder) {})
		require.ErrorIs(t, err, errUnknownCommand)
		require.Contains(t, err.Error(), "0x000000ff")
	})

	t.Run("request encoding error", func(t *testing.T) {
		svc := &fakeService{}
		c, err := NewClient(svc, WithCodecOptions(codec.WithMaxDepth(1)))
		require.NoError(t, err)

		err = c.Call(context.Background(), cmdSum, func(enc *codec.Encoder) {
			enc.OpenSequence()
			enc.OpenSequence()
			enc.CloseSequence()
			enc.CloseSequence()
		}, func(dec *codec.Decoder) {})
		require.ErrorIs(t, err, errs.ErrOutOfMemory)
		require.Equal(t, 0, svc.calls)
	})

	t.Run("service rejects request", func(t *testing.T) {
		c, err := NewClient(&fakeService{})
		require.NoError(t, err)

		err = c.Call(context.Background(), cmdSum, func(enc *codec.Encoder) {
			enc.WriteUint32(1)
		}, func(dec *codec.Decoder) {})
		require.ErrorIs(t, err, errs.ErrBadFormat)
	})

	t.Run("unread response", func(t *testing.T) {
		c, err := NewClient(&fakeService{})
		require.NoError(t, err)

		err = c.Call(context.Background(), cmdEcho, func(enc *codec.Encoder) {
			enc.WriteString("ping")
		}, func(dec *codec.Decoder) {
			dec.ReadString()
		})
		require.ErrorIs(t, err, errs.ErrBadFormat)
	})
}

func TestTransportFunc(t *testing.T) {
	var got []byte
	c, err := NewClient(TransportFunc(func(_ context.Context, command uint32, request []byte) ([]byte, error) {
		require.Equal(t, cmdEcho, command)
		got = append([]byte(nil), request...)

		return []byte{0x00}, nil
	}))
	require.NoError(t, err)

	var ok bool
	err = c.Call(context.Background(), cmdEcho, func(enc *codec.Encoder) {
		enc.WriteUint8(0xAB)
	}, func(dec *codec.Decoder) {
		ok = dec.ReadBoolean()
	})
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, []byte{0x16, 0xAB}, got)
}

// ==============================================================================
// Helper Functions
func respond(build func(enc *codec.Encoder)) ([]byte, error) {
	buf, err := bef2.Marshal(build)
	if err != nil {
		return nil, err
	}
	defer buf.Release()

	return append([]byte(nil), buf.Bytes()...), nil
}
