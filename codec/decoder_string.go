package codec

import (
	"fmt"

	"github.com/clamor-s/bef2/errs"
	"github.com/clamor-s/bef2/format"
)

// peekString returns the UTF-8 payload of the next element, which must be a
// string, without consuming it.
func (d *Decoder) peekString() (payload []byte, h header, start int, null bool, ok bool) {
	if d.err != nil {
		return nil, header{}, 0, false, false
	}

	h, start, err := d.peekHeader()
	if err != nil {
		d.fail(err)
		return nil, header{}, 0, false, false
	}
	if h.typ != format.TypeString {
		d.fail(fmt.Errorf("%w: expected String at offset %d, found %s", errs.ErrBadFormat, start, h.typ))
		return nil, header{}, 0, false, false
	}
	if h.null {
		return nil, h, start, true, true
	}

	return d.data[start+h.size : start+h.span], h, start, false, true
}

// transcodeString runs the UTF-8 validator over the next string without
// consuming it. The returned count includes the terminating zero unit.
func (d *Decoder) transcodeString(t *transcoder) (int, bool, bool) {
	payload, _, _, null, ok := d.peekString()
	if !ok || null {
		return 0, null, ok
	}

	n, err := t.transcode(payload)
	if err != nil {
		d.fail(err)
		return 0, false, false
	}

	return n, false, true
}

// ReadStringLength validates the next string and returns the number of
// bytes CopyStringAsUTF8 needs for it, terminating NUL included. The string
// is not consumed. Invalid UTF-8 fails with errs.ErrBadFormat here already;
// GetCurrentType reports the raw byte length without validating.
//
// Returns:
//   - uint32: UTF-8 length plus one
//   - bool: true for a null string
func (d *Decoder) ReadStringLength() (uint32, bool) {
	n, null, _ := d.transcodeString(newTranscoder(unitUTF8))

	return uint32(n), null
}

// CopyStringAsUTF8 copies the next string into dst followed by a NUL byte.
// The string is not consumed; call Skip to move past it.
//
// A destination shorter than ReadStringLength fails with errs.ErrShortBuffer.
//
// Returns:
//   - int: bytes written, NUL included
//   - bool: true for a null string
func (d *Decoder) CopyStringAsUTF8(dst []byte) (int, bool) {
	t := newTranscoder(unitUTF8)
	t.dst8 = dst

	return d.copyString(t, len(dst))
}

// ReadWStringLength validates the next string and returns the number of wide
// characters CopyStringAsWChar16 or CopyStringAsWChar32 needs for it,
// terminating zero included. The string is not consumed.
//
// Parameters:
//   - width: WChar16 counts supplementary code points as two units, WChar32 as one
func (d *Decoder) ReadWStringLength(width WCharWidth) (uint32, bool) {
	var t *transcoder
	switch width {
	case WChar16:
		t = newTranscoder(unitUTF16)
	case WChar32:
		t = newTranscoder(unitUTF32)
	default:
		d.fail(fmt.Errorf("%w: unsupported wide character width %d", errs.ErrBadState, width))
		return 0, false
	}

	n, null, _ := d.transcodeString(t)

	return uint32(n), null
}

// CopyStringAsWChar16 copies the next string into dst as UTF-16 followed by
// a zero unit. Code points above U+FFFF become surrogate pairs. The string is
// not consumed.
func (d *Decoder) CopyStringAsWChar16(dst []uint16) (int, bool) {
	t := newTranscoder(unitUTF16)
	t.dst16 = dst

	return d.copyString(t, len(dst))
}

// CopyStringAsWChar32 copies the next string into dst as UTF-32 followed by
// a zero value. The string is not consumed.
func (d *Decoder) CopyStringAsWChar32(dst []rune) (int, bool) {
	t := newTranscoder(unitUTF32)
	t.dst32 = dst

	return d.copyString(t, len(dst))
}

func (d *Decoder) copyString(t *transcoder, capacity int) (int, bool) {
	n, null, ok := d.transcodeString(t)
	if !ok || null {
		return 0, null
	}
	if n > capacity {
		d.fail(fmt.Errorf("%w: string needs %d units, destination holds %d", errs.ErrShortBuffer, n, capacity))
		return 0, false
	}

	return n, false
}

// ReadString consumes the next string.
//
// Returns:
//   - string: the validated text, without terminator
//   - bool: true for a null string
func (d *Decoder) ReadString() (string, bool) {
	payload, h, start, null, ok := d.peekString()
	if !ok {
		return "", false
	}
	if !null {
		if _, err := newTranscoder(unitUTF8).transcode(payload); err != nil {
			d.fail(err)
			return "", false
		}
	}

	s := string(payload)
	d.consume(start, h)

	return s, null
}
