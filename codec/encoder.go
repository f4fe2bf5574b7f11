package codec

import (
	"errors"
	"math"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/clamor-s/bef2/endian"
	"github.com/clamor-s/bef2/errs"
	"github.com/clamor-s/bef2/format"
	"github.com/clamor-s/bef2/internal/checked"
	"github.com/clamor-s/bef2/internal/pool"
	"github.com/clamor-s/bef2/tag"
)

// Encoder appends BEF2 elements to a caller-supplied buffer.
//
// The capacity of the encoder is the length of the buffer passed to NewEncoder
// or Init. Errors are sticky: once a write fails, later writes do nothing and
// Err reports the first failure, so a message can be built with a batch of
// writes and checked once at the end.
//
// When the buffer is too small the encoder switches to measuring: no byte is
// written anymore, but every following write still advances the logical
// cursor. After the whole message has been written, RequiredCapacity returns
// the exact size needed, and encoding again into a buffer of that size
// succeeds.
//
// Note: The Encoder is NOT thread-safe. Each encoder instance should be used by a single goroutine at a time.
type Encoder struct {
	buf      []byte
	offset   int
	required int
	err      error
	stack    []int // offsets of the reserved headers of open sequences
	maxDepth int
	engine   endian.EndianEngine
}

// NewEncoder creates an encoder writing into buf.
//
// Parameters:
//   - buf: destination buffer, its length is the encoder capacity (may be nil to only measure)
//   - opts: optional configuration, see WithMaxDepth
//
// Returns:
//   - *Encoder: the encoder, positioned at offset 0
//   - error: an option error
func NewEncoder(buf []byte, opts ...Option) (*Encoder, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	e := &Encoder{
		maxDepth: cfg.maxDepth,
		engine:   endian.GetLittleEndianEngine(),
		stack:    make([]int, 0, cfg.maxDepth),
	}
	e.Init(buf)

	return e, nil
}

// Init resets the encoder to write a new message into buf.
func (e *Encoder) Init(buf []byte) {
	e.buf = buf
	e.offset = 0
	e.required = 0
	e.err = nil
	e.stack = e.stack[:0]
}

// Err returns the first error hit by the encoder, or nil.
func (e *Encoder) Err() error {
	return e.err
}

// Len returns the number of bytes of the message so far. While measuring
// after errs.ErrShortBuffer it is the logical size, larger than the buffer.
func (e *Encoder) Len() int {
	return e.offset
}

// Cap returns the encoder capacity.
func (e *Encoder) Cap() int {
	return len(e.buf)
}

// Depth returns the number of open sequences.
func (e *Encoder) Depth() int {
	return len(e.stack)
}

// RequiredCapacity returns the buffer size the message needs.
//
// After errs.ErrShortBuffer it is the size of everything written so far,
// including the writes that happened after the buffer ran out. After
// errs.ErrOutOfMemory it is math.MaxInt.
func (e *Encoder) RequiredCapacity() int {
	if e.err != nil {
		return e.required
	}

	return e.offset
}

// Bytes returns the encoded message, or nil if the encoder has failed.
// The returned slice aliases the encoder buffer.
func (e *Encoder) Bytes() []byte {
	if e.err != nil {
		return nil
	}

	return e.buf[:e.offset]
}

// Finish returns the encoded message after checking that every sequence was closed.
//
// Returns:
//   - []byte: the message, aliasing the encoder buffer
//   - error: the sticky error, or errs.ErrBadState if a sequence is still open
func (e *Encoder) Finish() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if len(e.stack) != 0 {
		return nil, errs.ErrBadState
	}

	return e.buf[:e.offset], nil
}

// EnsureCapacity checks that overhead+data more bytes fit after the cursor.
//
// Both additions are overflow-checked. On overflow the encoder fails with
// errs.ErrOutOfMemory and the required capacity becomes math.MaxInt. When the
// sum exceeds the capacity the encoder fails with errs.ErrShortBuffer and
// records the sum as the required capacity. Otherwise no state changes.
func (e *Encoder) EnsureCapacity(overhead, data int) error {
	if e.hardFailed() {
		return e.err
	}

	end, ok := checked.Sum(e.offset, overhead, data)
	if !ok {
		e.overflow()
		return e.err
	}

	if end > len(e.buf) {
		e.err = errs.ErrShortBuffer
		e.required = max(e.required, end)

		return e.err
	}

	return nil
}

// hardFailed reports an error that stops even the measuring of the message.
func (e *Encoder) hardFailed() bool {
	return e.err != nil && !errors.Is(e.err, errs.ErrShortBuffer)
}

func (e *Encoder) measuring() bool {
	return errors.Is(e.err, errs.ErrShortBuffer)
}

func (e *Encoder) overflow() {
	e.err = errs.ErrOutOfMemory
	e.required = math.MaxInt
}

// reserve claims overhead+data bytes at the cursor and returns their start.
// write is false when the bytes must not be written, either because the
// encoder failed or because it is only measuring.
func (e *Encoder) reserve(overhead, data int) (start int, write bool) {
	if e.hardFailed() {
		return 0, false
	}

	wasMeasuring := e.measuring()
	if err := e.EnsureCapacity(overhead, data); err != nil && !errors.Is(err, errs.ErrShortBuffer) {
		return 0, false
	}

	start = e.offset
	e.offset += overhead + data // EnsureCapacity checked the sum

	return start, !wasMeasuring && e.err == nil
}

// WriteBoolean writes a boolean. The value is carried by the tag byte.
func (e *Encoder) WriteBoolean(v bool) {
	start, write := e.reserve(tag.TagSize, 0)
	if !write {
		return
	}

	if v {
		e.buf[start] = tag.True
	} else {
		e.buf[start] = tag.False
	}
}

// WriteUint8 writes an explicit 8-bit unsigned integer.
func (e *Encoder) WriteUint8(v uint8) {
	start, write := e.reserve(tag.TagSize, 1)
	if !write {
		return
	}

	e.buf[start] = tag.Make(format.BaseUint8, format.FlagExplicit)
	e.buf[start+1] = v
}

// WriteUint16 writes an explicit 16-bit unsigned integer.
func (e *Encoder) WriteUint16(v uint16) {
	start, write := e.reserve(tag.TagSize, 2)
	if !write {
		return
	}

	e.buf[start] = tag.Make(format.BaseUint16, format.FlagExplicit)
	e.engine.PutUint16(e.buf[start+1:], v)
}

// WriteUint32 writes an explicit 32-bit unsigned integer.
func (e *Encoder) WriteUint32(v uint32) {
	e.writeWord(format.BaseUint32, v)
}

// WriteHandle writes an explicit handle.
func (e *Encoder) WriteHandle(h uint32) {
	e.writeWord(format.BaseHandle, h)
}

func (e *Encoder) writeWord(base format.BaseType, v uint32) {
	start, write := e.reserve(tag.TagSize, tag.WordSize)
	if !write {
		return
	}

	e.buf[start] = tag.Make(base, format.FlagExplicit)
	e.engine.PutUint32(e.buf[start+1:], v)
}

// WriteBooleanArray writes a boolean array; nil writes a null array.
// Elements are stored as exactly 0x00 or 0x01.
func (e *Encoder) WriteBooleanArray(values []bool) {
	writeArray(e, format.BaseBoolean, values, func(dst []byte, v bool) {
		if v {
			dst[0] = 1
		} else {
			dst[0] = 0
		}
	})
}

// WriteUint8Array writes an 8-bit array; nil writes a null array.
func (e *Encoder) WriteUint8Array(values []uint8) {
	start, write := e.arrayHeader(format.BaseUint8, values == nil, len(values))
	if write && values != nil {
		copy(e.buf[start:], values)
	}
}

// WriteUint16Array writes a 16-bit array; nil writes a null array.
func (e *Encoder) WriteUint16Array(values []uint16) {
	writeArray(e, format.BaseUint16, values, func(dst []byte, v uint16) {
		e.engine.PutUint16(dst, v)
	})
}

// WriteUint32Array writes a 32-bit array; nil writes a null array.
func (e *Encoder) WriteUint32Array(values []uint32) {
	writeArray(e, format.BaseUint32, values, func(dst []byte, v uint32) {
		e.engine.PutUint32(dst, v)
	})
}

// WriteHandleArray writes a handle array; nil writes a null array.
func (e *Encoder) WriteHandleArray(handles []uint32) {
	writeArray(e, format.BaseHandle, handles, func(dst []byte, v uint32) {
		e.engine.PutUint32(dst, v)
	})
}

func writeArray[T any](e *Encoder, base format.BaseType, values []T, put func(dst []byte, v T)) {
	start, write := e.arrayHeader(base, values == nil, len(values))
	if !write || values == nil {
		return
	}

	size := tag.ElementSize(base)
	for i, v := range values {
		put(e.buf[start+i*size:], v)
	}
}

// arrayHeader writes the tag and count of an array and returns the offset of
// its first element.
func (e *Encoder) arrayHeader(base format.BaseType, null bool, count int) (int, bool) {
	if null {
		start, write := e.reserve(tag.TagSize, 0)
		if write {
			e.buf[start] = tag.Make(base, format.FlagNullArray)
		}

		return 0, false
	}

	if e.hardFailed() {
		return 0, false
	}
	if uint64(count) >= math.MaxUint32 {
		e.overflow()
		return 0, false
	}
	data, ok := checked.Mul(count, tag.ElementSize(base))
	if !ok {
		e.overflow()
		return 0, false
	}

	start, write := e.reserve(tag.ArrayHeaderSize, data)
	if !write {
		return 0, false
	}

	e.buf[start] = tag.Make(base, format.FlagArray)
	e.engine.PutUint32(e.buf[start+1:], uint32(count))

	return start + tag.ArrayHeaderSize, true
}

// WriteString writes s as an explicit UTF-8 string.
//
// s is treated as NUL-terminated: bytes from the first NUL on are not written.
// The bytes are written as-is; a string that is not valid UTF-8 produces a
// message that decoders reject.
func (e *Encoder) WriteString(s string) {
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}

	start, write := e.stringHeader(len(s))
	if write {
		copy(e.buf[start:], s)
	}
}

// WriteNullString writes a null string.
func (e *Encoder) WriteNullString() {
	start, write := e.reserve(tag.TagSize, 0)
	if write {
		e.buf[start] = tag.NullString
	}
}

// WriteWString16 writes UTF-16 text as a UTF-8 string; nil writes a null string.
//
// Surrogate pairs are combined into one code point. Unpaired surrogates are
// written as U+FFFD. The text ends at the first zero unit.
func (e *Encoder) WriteWString16(s []uint16) {
	if s == nil {
		e.WriteNullString()
		return
	}

	scratch := pool.GetMessageBuffer()
	defer pool.PutMessageBuffer(scratch)
	scratch.Grow(len(s) * 3) // a UTF-16 unit expands to at most 3 UTF-8 bytes

	for i := 0; i < len(s) && s[i] != 0; i++ {
		r := rune(s[i])
		if utf16.IsSurrogate(r) {
			if i+1 < len(s) {
				if pair := utf16.DecodeRune(r, rune(s[i+1])); pair != utf8.RuneError {
					r = pair
					i++
				} else {
					r = utf8.RuneError
				}
			} else {
				r = utf8.RuneError
			}
		}
		scratch.B = utf8.AppendRune(scratch.B, r)
	}

	e.writeUTF8(scratch.B)
}

// WriteWString32 writes UTF-32 text as a UTF-8 string; nil writes a null string.
//
// Surrogates and values above U+10FFFF are written as U+FFFD. The text ends
// at the first zero value.
func (e *Encoder) WriteWString32(s []rune) {
	if s == nil {
		e.WriteNullString()
		return
	}

	scratch := pool.GetMessageBuffer()
	defer pool.PutMessageBuffer(scratch)
	scratch.Grow(len(s) * utf8.UTFMax)

	for _, r := range s {
		if r == 0 {
			break
		}
		scratch.B = utf8.AppendRune(scratch.B, r)
	}

	e.writeUTF8(scratch.B)
}

func (e *Encoder) writeUTF8(b []byte) {
	start, write := e.stringHeader(len(b))
	if write {
		copy(e.buf[start:], b)
	}
}

func (e *Encoder) stringHeader(n int) (int, bool) {
	if e.hardFailed() {
		return 0, false
	}
	if uint64(n) >= math.MaxUint32 {
		e.overflow()
		return 0, false
	}

	start, write := e.reserve(tag.StringHeaderSize, n)
	if !write {
		return 0, false
	}

	e.buf[start] = tag.String
	e.engine.PutUint32(e.buf[start+1:], uint32(n))

	return start + tag.StringHeaderSize, true
}

// OpenSequence starts a nested sequence. Its header is reserved now and
// completed by the matching CloseSequence.
//
// Opening more than the configured depth fails with errs.ErrOutOfMemory.
func (e *Encoder) OpenSequence() {
	if e.hardFailed() {
		return
	}
	if len(e.stack) >= e.maxDepth {
		e.err = errs.ErrOutOfMemory
		return
	}

	start, write := e.reserve(tag.SequenceHeaderSize, 0)
	if e.hardFailed() {
		return
	}
	if write {
		e.buf[start] = tag.Sequence
	}

	e.stack = append(e.stack, start)
}

// CloseSequence completes the innermost open sequence by writing its payload
// length into the reserved header.
//
// Closing without an open sequence fails with errs.ErrBadState.
func (e *Encoder) CloseSequence() {
	if e.hardFailed() {
		return
	}
	if len(e.stack) == 0 {
		e.err = errs.ErrBadState
		return
	}

	start := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]

	if e.measuring() {
		return
	}

	length := e.offset - start - tag.SequenceHeaderSize
	if uint64(length) >= math.MaxUint32 {
		e.overflow()
		return
	}

	e.patchSequenceHeader(start, uint32(length))
}

// patchSequenceHeader writes a complete sequence header at offset, leaving the cursor untouched.
func (e *Encoder) patchSequenceHeader(offset int, length uint32) {
	hdr := e.buf[offset : offset+tag.SequenceHeaderSize]
	hdr[0] = tag.Sequence
	e.engine.PutUint32(hdr[1:], length)
}

// WriteUUID writes a UUID composite: tag, sub-tag and the 16 raw bytes.
func (e *Encoder) WriteUUID(u uuid.UUID) {
	start, write := e.reserve(2, tag.UUIDSize)
	if !write {
		return
	}

	e.buf[start] = tag.Composite
	e.buf[start+1] = tag.SubUUID
	copy(e.buf[start+2:], u[:])
}

// WriteMemoryReference writes a memory reference composite: tag, sub-tag and
// the block handle, offset, length and flags as 32-bit words.
func (e *Encoder) WriteMemoryReference(ref MemoryReference) {
	start, write := e.reserve(2, tag.MemoryReferenceSize)
	if !write {
		return
	}

	e.buf[start] = tag.Composite
	e.buf[start+1] = tag.SubMemoryReference
	p := e.buf[start+2:]
	e.engine.PutUint32(p[0:4], ref.BlockHandle)
	e.engine.PutUint32(p[4:8], ref.Offset)
	e.engine.PutUint32(p[8:12], ref.Length)
	e.engine.PutUint32(p[12:16], ref.Flags)
}
