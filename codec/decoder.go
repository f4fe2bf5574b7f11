package codec

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/clamor-s/bef2/endian"
	"github.com/clamor-s/bef2/errs"
	"github.com/clamor-s/bef2/format"
	"github.com/clamor-s/bef2/internal/checked"
	"github.com/clamor-s/bef2/tag"
)

// Decoder reads BEF2 elements from a borrowed buffer.
//
// The decoder never modifies the buffer and never reads past the end of the
// current scope. Errors are sticky: after the first failure every read
// returns a zero value and Err reports the failure.
//
// GetCurrentType is the one exception to the sticky policy. A malformed
// element found while only peeking leaves Err untouched and is remembered
// instead, so the following real read of that element fails with
// errs.ErrBadFormat.
//
// Note: The Decoder is NOT thread-safe. Each decoder instance should be used by a single goroutine at a time.
type Decoder struct {
	data     []byte
	frames   []frame // frames[0] spans the whole buffer, the last frame is the current scope
	err      error
	cache    peekCache
	maxDepth int
	engine   endian.EndianEngine
}

// header is the parsed header of one element.
type header struct {
	class tag.Class
	sub   byte
	typ   format.ElementType
	count uint32 // array element count, string byte length or sequence payload length
	null  bool
	size  int // header bytes: tag, sub-tag and length word
	span  int // total bytes of the element
}

func (h header) element() Element {
	return Element{Type: h.typ, Length: h.count, Null: h.null}
}

// NewDecoder creates a decoder reading data.
//
// Parameters:
//   - data: encoded message, borrowed for the lifetime of the decoder
//   - opts: optional configuration, see WithMaxDepth
//
// Returns:
//   - *Decoder: the decoder, positioned at the first element
//   - error: an option error
func NewDecoder(data []byte, opts ...Option) (*Decoder, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	d := newDecoder(cfg.maxDepth)
	d.Init(data)

	return d, nil
}

func newDecoder(maxDepth int) *Decoder {
	return &Decoder{
		maxDepth: maxDepth,
		engine:   endian.GetLittleEndianEngine(),
		frames:   make([]frame, 0, maxDepth+1),
	}
}

// Init resets the decoder to read a new message from data.
func (d *Decoder) Init(data []byte) {
	d.data = data
	d.frames = append(d.frames[:0], frame{offset: 0, end: len(data)})
	d.err = nil
	d.cache.invalidate()
}

// Err returns the first error hit by the decoder, or nil.
func (d *Decoder) Err() error {
	return d.err
}

// Depth returns the number of scopes entered with OpenSequence.
func (d *Decoder) Depth() int {
	return len(d.frames) - 1
}

// HasData reports whether the current scope has unread elements.
// It returns false once the decoder has failed.
func (d *Decoder) HasData() bool {
	if d.err != nil {
		return false
	}

	return d.cur().remaining() > 0
}

func (d *Decoder) cur() *frame {
	return &d.frames[len(d.frames)-1]
}

func (d *Decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// need consumes n bytes of the current scope.
func (d *Decoder) need(n int) ([]byte, error) {
	f := d.cur()
	if n < 0 || f.remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, scope ends at %d",
			errs.ErrBadFormat, n, f.offset, f.end)
	}

	b := d.data[f.offset : f.offset+n]
	f.offset += n

	return b, nil
}

func (d *Decoder) readUint8Raw() (uint8, error) {
	b, err := d.need(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

func (d *Decoder) readUint16Raw() (uint16, error) {
	b, err := d.need(2)
	if err != nil {
		return 0, err
	}

	return d.engine.Uint16(b), nil
}

func (d *Decoder) readUint32Raw() (uint32, error) {
	b, err := d.need(4)
	if err != nil {
		return 0, err
	}

	return d.engine.Uint32(b), nil
}

// readTag reads and classifies the tag at the cursor, reusing the peek cache.
func (d *Decoder) readTag() (byte, tag.Class, error) {
	if d.cache.poisoned {
		return 0, tag.Class{}, fmt.Errorf("%w: malformed element at offset %d", errs.ErrBadFormat, d.cur().offset)
	}
	if d.cache.hasTag {
		if _, err := d.need(tag.TagSize); err != nil {
			return 0, tag.Class{}, err
		}

		return d.cache.tag, d.cache.class, nil
	}

	offset := d.cur().offset
	b, err := d.readUint8Raw()
	if err != nil {
		return 0, tag.Class{}, err
	}
	c, err := tag.Classify(b)
	if err != nil {
		return 0, tag.Class{}, fmt.Errorf("%w: tag 0x%02x at offset %d", err, b, offset)
	}

	d.cache.tag, d.cache.class, d.cache.hasTag = b, c, true

	return b, c, nil
}

func (d *Decoder) readSubTag() (byte, error) {
	if d.cache.hasSub {
		if _, err := d.need(tag.TagSize); err != nil {
			return 0, err
		}

		return d.cache.sub, nil
	}

	offset := d.cur().offset
	b, err := d.readUint8Raw()
	if err != nil {
		return 0, err
	}
	if !tag.ValidSubTag(b) {
		return 0, fmt.Errorf("%w: sub-tag 0x%02x at offset %d", errs.ErrBadFormat, b, offset)
	}

	d.cache.sub, d.cache.hasSub = b, true

	return b, nil
}

// readWord reads the length word of an array, string or sequence. The
// all-ones value is reserved and rejected.
func (d *Decoder) readWord() (uint32, error) {
	if d.cache.hasWord {
		if _, err := d.need(tag.WordSize); err != nil {
			return 0, err
		}

		return d.cache.word, nil
	}

	offset := d.cur().offset
	v, err := d.readUint32Raw()
	if err != nil {
		return 0, err
	}
	if v == math.MaxUint32 {
		return 0, fmt.Errorf("%w: reserved length word at offset %d", errs.ErrBadFormat, offset)
	}

	d.cache.word, d.cache.hasWord = v, true

	return v, nil
}

// readHeader parses the header of the element at the cursor and checks that
// the whole element fits the current scope. The cursor is left after the header.
func (d *Decoder) readHeader() (header, error) {
	f := d.cur()
	start := f.offset

	_, c, err := d.readTag()
	if err != nil {
		return header{}, err
	}

	h := header{class: c, typ: c.ElementType(), size: tag.TagSize}
	var span int
	var ok = true

	switch {
	case c.Base == format.BaseComposite:
		sub, err := d.readSubTag()
		if err != nil {
			return header{}, err
		}
		h.sub = sub
		h.typ = tag.CompositeType(sub)
		h.size = 2 * tag.TagSize
		span = tag.CompositeSize

	case c.Flag == format.FlagNullArray || c.Flag == format.FlagNull:
		h.null = true
		span = tag.TagSize

	case c.Flag == format.FlagArray, c.Base == format.BaseString, c.Base == format.BaseSequence:
		n, err := d.readWord()
		if err != nil {
			return header{}, err
		}
		h.count = n
		h.size = tag.TagSize + tag.WordSize

		elemSize := 1
		if c.IsArray() {
			elemSize = tag.ElementSize(c.Base)
		}
		span, ok = checked.Span(h.size, n, elemSize)

	case c.Base == format.BaseBoolean:
		span = tag.TagSize

	default:
		span = tag.TagSize + tag.ElementSize(c.Base)
	}

	if !ok {
		return header{}, fmt.Errorf("%w: size of %s at offset %d overflows", errs.ErrOutOfMemory, h.typ, start)
	}
	end, ok := checked.Add(start, span)
	if !ok {
		return header{}, fmt.Errorf("%w: end of %s at offset %d overflows", errs.ErrOutOfMemory, h.typ, start)
	}
	if end > f.end {
		return header{}, fmt.Errorf("%w: %s at offset %d needs %d bytes, scope ends at %d",
			errs.ErrBadFormat, h.typ, start, span, f.end)
	}
	h.span = span

	return h, nil
}

// peekHeader parses the header of the element at the cursor and rewinds.
func (d *Decoder) peekHeader() (header, int, error) {
	start := d.cur().offset
	h, err := d.readHeader()
	d.cur().offset = start

	return h, start, err
}

// consume moves the cursor past an element starting at start.
func (d *Decoder) consume(start int, h header) {
	d.cur().offset = start + h.span
	d.cache.invalidate()
}

// GetCurrentType classifies the next element without consuming it.
//
// Calling it repeatedly returns the same result and leaves the decoder
// unchanged. A malformed element is reported as format.TypeInvalid; Err is not
// set, but the next real read of the element fails.
//
// Returns:
//   - Element: type, array count or string/sequence length, and null marker.
//     format.TypeNoData when the current scope is exhausted.
func (d *Decoder) GetCurrentType() Element {
	if d.err != nil || d.cache.poisoned {
		return Element{Type: format.TypeInvalid}
	}
	if d.cur().remaining() == 0 {
		return Element{Type: format.TypeNoData}
	}

	h, _, err := d.peekHeader()
	if err != nil {
		d.cache.poisoned = true
		return Element{Type: format.TypeInvalid}
	}

	return h.element()
}

// Skip consumes the next element without decoding its payload.
// A malformed element, or no element at all, fails with errs.ErrBadFormat.
func (d *Decoder) Skip() {
	if d.err != nil {
		return
	}

	start := d.cur().offset
	h, err := d.readHeader()
	if err != nil {
		d.fail(err)
		return
	}

	d.consume(start, h)
}

// ReadArrayLength returns the element count of the next element, which must
// be an array, without consuming it.
//
// Returns:
//   - uint32: number of elements
//   - bool: true for a null array
func (d *Decoder) ReadArrayLength() (uint32, bool) {
	h, ok := d.peekArray(format.TypeInvalid)

	return h.count, ok && h.null
}

// peekArray parses the array header at the cursor without consuming it. With
// want set to format.TypeInvalid any array type is accepted.
func (d *Decoder) peekArray(want format.ElementType) (header, bool) {
	if d.err != nil {
		return header{}, false
	}

	h, start, err := d.peekHeader()
	if err != nil {
		d.fail(err)
		return header{}, false
	}
	if !h.class.IsArray() || (want != format.TypeInvalid && h.typ != want) {
		d.fail(fmt.Errorf("%w: expected %s at offset %d, found %s", errs.ErrBadFormat, arrayName(want), start, h.typ))
		return header{}, false
	}

	return h, true
}

func arrayName(t format.ElementType) string {
	if t == format.TypeInvalid {
		return "array"
	}

	return t.String()
}

// readExpected consumes the header of the next element, which must be of type want.
func (d *Decoder) readExpected(want format.ElementType) (header, int, bool) {
	if d.err != nil {
		return header{}, 0, false
	}

	start := d.cur().offset
	h, err := d.readHeader()
	if err != nil {
		d.fail(err)
		return header{}, 0, false
	}
	if h.typ != want || h.null {
		d.fail(fmt.Errorf("%w: expected %s at offset %d, found %s", errs.ErrBadFormat, want, start, h.typ))
		return header{}, 0, false
	}

	return h, start, true
}

// ReadBoolean reads a boolean.
func (d *Decoder) ReadBoolean() bool {
	h, start, ok := d.readExpected(format.TypeBoolean)
	if !ok {
		return false
	}
	d.consume(start, h)

	return h.class.Flag == format.FlagTrue
}

// ReadUint8 reads an explicit 8-bit unsigned integer.
func (d *Decoder) ReadUint8() uint8 {
	h, start, ok := d.readExpected(format.TypeUint8)
	if !ok {
		return 0
	}

	v, err := d.readUint8Raw()
	if err != nil {
		d.fail(err)
		return 0
	}
	d.consume(start, h)

	return v
}

// ReadUint16 reads an explicit 16-bit unsigned integer.
func (d *Decoder) ReadUint16() uint16 {
	h, start, ok := d.readExpected(format.TypeUint16)
	if !ok {
		return 0
	}

	v, err := d.readUint16Raw()
	if err != nil {
		d.fail(err)
		return 0
	}
	d.consume(start, h)

	return v
}

// ReadUint32 reads an explicit 32-bit unsigned integer.
func (d *Decoder) ReadUint32() uint32 {
	return d.readWordValue(format.TypeUint32)
}

// ReadHandle reads an explicit handle.
func (d *Decoder) ReadHandle() uint32 {
	return d.readWordValue(format.TypeHandle)
}

func (d *Decoder) readWordValue(want format.ElementType) uint32 {
	h, start, ok := d.readExpected(want)
	if !ok {
		return 0
	}

	v, err := d.readUint32Raw()
	if err != nil {
		d.fail(err)
		return 0
	}
	d.consume(start, h)

	return v
}

// ReadUUID reads a UUID composite.
func (d *Decoder) ReadUUID() uuid.UUID {
	h, start, ok := d.readExpected(format.TypeUUID)
	if !ok {
		return uuid.Nil
	}

	b, err := d.need(tag.UUIDSize)
	if err != nil {
		d.fail(err)
		return uuid.Nil
	}

	var u uuid.UUID
	copy(u[:], b)
	d.consume(start, h)

	return u
}

// ReadMemoryReference reads a memory reference composite.
func (d *Decoder) ReadMemoryReference() MemoryReference {
	h, start, ok := d.readExpected(format.TypeMemoryReference)
	if !ok {
		return MemoryReference{}
	}

	b, err := d.need(tag.MemoryReferenceSize)
	if err != nil {
		d.fail(err)
		return MemoryReference{}
	}

	ref := MemoryReference{
		BlockHandle: d.engine.Uint32(b[0:4]),
		Offset:      d.engine.Uint32(b[4:8]),
		Length:      d.engine.Uint32(b[8:12]),
		Flags:       d.engine.Uint32(b[12:16]),
	}
	d.consume(start, h)

	return ref
}

// ReadSequence consumes the next element, which must be a sequence, and
// returns an independent decoder over its payload.
//
// The returned decoder shares the underlying buffer but no state with d. On
// failure d records the error and the returned decoder carries it too.
func (d *Decoder) ReadSequence() *Decoder {
	sub := newDecoder(d.maxDepth)

	h, start, ok := d.readExpected(format.TypeSequence)
	if !ok {
		sub.Init(nil)
		sub.err = d.err

		return sub
	}

	sub.Init(d.data[start+h.size : start+h.span])
	d.consume(start, h)

	return sub
}

// OpenSequence enters the next element, which must be a sequence. Reads are
// bounded by the sequence until the matching CloseSequence; the parent scope
// resumes after the whole sequence regardless of how much of it was read.
//
// Entering more than the configured depth fails with errs.ErrOutOfMemory.
func (d *Decoder) OpenSequence() {
	if d.err != nil {
		return
	}
	if d.Depth() >= d.maxDepth {
		d.fail(fmt.Errorf("%w: sequence depth limit %d reached", errs.ErrOutOfMemory, d.maxDepth))
		return
	}

	h, start, ok := d.readExpected(format.TypeSequence)
	if !ok {
		return
	}

	d.consume(start, h)
	d.frames = append(d.frames, frame{offset: start + h.size, end: start + h.span})
}

// CloseSequence leaves the scope entered by the last OpenSequence.
// Closing without an open scope fails with errs.ErrBadState.
func (d *Decoder) CloseSequence() {
	if d.err != nil {
		return
	}
	if d.Depth() == 0 {
		d.fail(errs.ErrBadState)
		return
	}

	d.frames = d.frames[:len(d.frames)-1]
	d.cache.invalidate()
}
