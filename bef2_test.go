package bef2

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clamor-s/bef2/codec"
	"github.com/clamor-s/bef2/errs"
)

// countingAllocator records every allocation so tests can check the buffer lifecycle.
type countingAllocator struct {
	mu     sync.Mutex
	sizes  []int
	frees  int
	active int
}

func (a *countingAllocator) Allocate(size int) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.sizes = append(a.sizes, size)
	a.active++

	return make([]byte, size)
}

func (a *countingAllocator) Free(buf []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.frees++
	a.active--
}

var _ Allocator = (*countingAllocator)(nil)

func writeCommand(name string) func(enc *codec.Encoder) {
	return func(enc *codec.Encoder) {
		enc.OpenSequence()
		enc.WriteUint32(7)
		enc.WriteString(name)
		enc.WriteUint8Array([]uint8{1, 2, 3})
		enc.CloseSequence()
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	buf, err := Marshal(writeCommand("abc"))
	require.NoError(t, err)
	defer buf.Release()

	require.Equal(t, 26, buf.Len())

	var (
		id     uint32
		name   string
		values []uint8
	)
	err = Unmarshal(buf.Bytes(), func(dec *codec.Decoder) {
		dec.OpenSequence()
		id = dec.ReadUint32()
		name, _ = dec.ReadString()
		values = dec.ReadUint8Array()
		dec.CloseSequence()
	})
	require.NoError(t, err)
	require.Equal(t, uint32(7), id)
	require.Equal(t, "abc", name)
	require.Equal(t, []uint8{1, 2, 3}, values)
}

func TestMarshalGrowsToRequiredCapacity(t *testing.T) {
	alloc := &countingAllocator{}
	name := strings.Repeat("x", 100)

	buf, err := Marshal(writeCommand(name), WithAllocator(alloc), WithInitialSize(8))
	require.NoError(t, err)

	require.Equal(t, []int{8, buf.Len()}, alloc.sizes)
	require.Equal(t, 1, alloc.frees)
	require.Equal(t, 1, alloc.active)

	buf.Release()
	buf.Release()
	require.Equal(t, 0, alloc.active)
	require.Nil(t, buf.Bytes())

	err = Unmarshal(mustMarshal(t, writeCommand(name)), func(dec *codec.Decoder) {
		dec.OpenSequence()
		dec.ReadUint32()
		s, _ := dec.ReadString()
		require.Equal(t, name, s)
		dec.ReadUint8Array()
		dec.CloseSequence()
	})
	require.NoError(t, err)
}

func TestMarshalSingleAllocationWhenItFits(t *testing.T) {
	alloc := &countingAllocator{}

	buf, err := Marshal(writeCommand("abc"), WithAllocator(alloc))
	require.NoError(t, err)
	require.Len(t, alloc.sizes, 1)

	buf.Release()
	require.Equal(t, 0, alloc.active)
}

func TestMarshalErrors(t *testing.T) {
	t.Run("nil allocator", func(t *testing.T) {
		_, err := Marshal(writeCommand("abc"), WithAllocator(nil))
		require.ErrorIs(t, err, errs.ErrNilAllocator)
	})

	t.Run("invalid codec option", func(t *testing.T) {
		alloc := &countingAllocator{}
		_, err := Marshal(writeCommand("abc"), WithAllocator(alloc), WithCodecOptions(codec.WithMaxDepth(0)))
		require.ErrorIs(t, err, errs.ErrInvalidMaxDepth)
		require.Equal(t, 0, alloc.active)
	})

	t.Run("unbalanced sequence", func(t *testing.T) {
		alloc := &countingAllocator{}
		_, err := Marshal(func(enc *codec.Encoder) {
			enc.OpenSequence()
		}, WithAllocator(alloc))
		require.ErrorIs(t, err, errs.ErrBadState)
		require.Equal(t, 0, alloc.active)
	})

	t.Run("depth limit", func(t *testing.T) {
		_, err := Marshal(func(enc *codec.Encoder) {
			enc.OpenSequence()
			enc.OpenSequence()
			enc.CloseSequence()
			enc.CloseSequence()
		}, WithCodecOptions(codec.WithMaxDepth(1)))
		require.ErrorIs(t, err, errs.ErrOutOfMemory)
	})
}

func TestUnmarshalErrors(t *testing.T) {
	msg := mustMarshal(t, writeCommand("abc"))

	t.Run("unread elements", func(t *testing.T) {
		err := Unmarshal(msg, func(dec *codec.Decoder) {})
		require.ErrorIs(t, err, errs.ErrBadFormat)
	})

	t.Run("open sequence", func(t *testing.T) {
		err := Unmarshal(msg, func(dec *codec.Decoder) {
			dec.OpenSequence()
			dec.ReadUint32()
			dec.ReadString()
			dec.ReadUint8Array()
		})
		require.ErrorIs(t, err, errs.ErrBadState)
	})

	t.Run("type mismatch", func(t *testing.T) {
		err := Unmarshal(msg, func(dec *codec.Decoder) {
			dec.ReadUint32()
		})
		require.ErrorIs(t, err, errs.ErrBadFormat)
	})

	t.Run("truncated", func(t *testing.T) {
		err := Unmarshal(msg[:len(msg)-1], func(dec *codec.Decoder) {
			dec.OpenSequence()
		})
		require.ErrorIs(t, err, errs.ErrBadFormat)
	})

	t.Run("nil allocator", func(t *testing.T) {
		err := Unmarshal(msg, func(dec *codec.Decoder) {}, WithAllocator(nil))
		require.ErrorIs(t, err, errs.ErrNilAllocator)
	})
}

func TestMarshalConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := strings.Repeat("y", i*1000)

			buf, err := Marshal(writeCommand(name))
			require.NoError(t, err)
			defer buf.Release()

			err = Unmarshal(buf.Bytes(), func(dec *codec.Decoder) {
				dec.OpenSequence()
				dec.ReadUint32()
				s, _ := dec.ReadString()
				require.Equal(t, name, s)
				dec.ReadUint8Array()
				dec.CloseSequence()
			})
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()
}

// ==============================================================================
// Helper Functions
func mustMarshal(t *testing.T, build func(enc *codec.Encoder)) []byte {
	t.Helper()

	buf, err := Marshal(build)
	require.NoError(t, err)
	defer buf.Release()

	return append([]byte(nil), buf.Bytes()...)
}
