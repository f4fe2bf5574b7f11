package codec

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/clamor-s/bef2/errs"
)

// unitWidth is the size in bytes of one output unit of the transcoder.
type unitWidth int

const (
	unitUTF8  unitWidth = 1
	unitUTF16 unitWidth = 2
	unitUTF32 unitWidth = 4
)

// transcoder validates a UTF-8 byte run and re-encodes it one code point at a time.
//
// It counts the output units of the selected width and, when a destination
// is set, stores them. Units that do not fit the destination are still
// counted, so count always holds the full requirement including the
// terminating zero unit emitted by finish.
type transcoder struct {
	width unitWidth
	dst8  []byte
	dst16 []uint16
	dst32 []rune
	count int

	cp     rune // code point being assembled
	remain int  // continuation bytes still expected
	min    rune // smallest code point allowed for the current sequence length
}

func newTranscoder(width unitWidth) *transcoder {
	return &transcoder{width: width}
}

// transcode validates src and returns the number of output units, terminator included.
func (t *transcoder) transcode(src []byte) (int, error) {
	for i, b := range src {
		if err := t.feed(b); err != nil {
			return 0, fmt.Errorf("%w: invalid UTF-8 at byte %d of string", err, i)
		}
	}
	if err := t.finish(); err != nil {
		return 0, fmt.Errorf("%w: truncated UTF-8 sequence at end of string", err)
	}

	return t.count, nil
}

func (t *transcoder) feed(b byte) error {
	switch {
	case b < 0x80:
		if t.remain != 0 || b == 0 {
			return errs.ErrBadFormat
		}
		t.emit(rune(b))

		return nil

	case b < 0xC0:
		if t.remain == 0 {
			return errs.ErrBadFormat
		}
		t.cp = t.cp<<6 | rune(b&0x3F)
		t.remain--
		if t.remain != 0 {
			return nil
		}
		if t.cp < t.min || t.cp > utf8.MaxRune || (t.cp >= 0xD800 && t.cp <= 0xDFFF) {
			return errs.ErrBadFormat
		}
		t.emit(t.cp)

		return nil
	}

	if t.remain != 0 {
		return errs.ErrBadFormat
	}

	switch {
	case b < 0xE0:
		t.cp, t.remain, t.min = rune(b&0x1F), 1, 0x80
	case b < 0xF0:
		t.cp, t.remain, t.min = rune(b&0x0F), 2, 0x800
	case b < 0xF8:
		t.cp, t.remain, t.min = rune(b&0x07), 3, 0x10000
	default:
		return errs.ErrBadFormat
	}

	return nil
}

// finish rejects a dangling sequence and emits the terminator.
func (t *transcoder) finish() error {
	if t.remain != 0 {
		return errs.ErrBadFormat
	}
	t.emit(0)

	return nil
}

func (t *transcoder) emit(r rune) {
	switch t.width {
	case unitUTF8:
		n := utf8.RuneLen(r)
		if t.count+n <= len(t.dst8) {
			utf8.EncodeRune(t.dst8[t.count:], r)
		}
		t.count += n

	case unitUTF16:
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			if t.count+2 <= len(t.dst16) {
				t.dst16[t.count] = uint16(hi)
				t.dst16[t.count+1] = uint16(lo)
			}
			t.count += 2

			return
		}
		if t.count < len(t.dst16) {
			t.dst16[t.count] = uint16(r)
		}
		t.count++

	case unitUTF32:
		if t.count < len(t.dst32) {
			t.dst32[t.count] = r
		}
		t.count++
	}
}
