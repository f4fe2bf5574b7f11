package codec

import (
	"fmt"

	"github.com/clamor-s/bef2/errs"
	"github.com/clamor-s/bef2/format"
	"github.com/clamor-s/bef2/tag"
)

// arrayWindow locates elements [index, index+n) of the next array, where n
// is the smaller of maxLen and the number of elements from index on. The
// array is not consumed.
func (d *Decoder) arrayWindow(want format.ElementType, index uint32, maxLen int) (src []byte, n int, null bool, ok bool) {
	h, ok := d.peekArray(want)
	if !ok {
		return nil, 0, false, false
	}
	if h.null {
		return nil, 0, true, true
	}
	if index > h.count {
		d.fail(fmt.Errorf("%w: index %d beyond %s of %d elements", errs.ErrBadFormat, index, want, h.count))
		return nil, 0, false, false
	}

	n = min(maxLen, int(h.count-index))
	elemSize := tag.ElementSize(h.class.Base)
	start := d.cur().offset + h.size + int(index)*elemSize

	// readHeader checked that the whole array fits the scope.
	return d.data[start : start+n*elemSize], n, false, true
}

// CopyBooleanArray copies elements of the next boolean array into dst
// without consuming the array.
//
// Parameters:
//   - index: first element to copy; equal to the element count copies nothing
//   - dst: destination, its length bounds the number of copied elements
//
// Returns:
//   - int: number of elements copied
//   - bool: true for a null array
func (d *Decoder) CopyBooleanArray(index uint32, dst []bool) (int, bool) {
	src, n, null, ok := d.arrayWindow(format.TypeBooleanArray, index, len(dst))
	if !ok || null {
		return 0, null
	}

	for i := 0; i < n; i++ {
		switch src[i] {
		case 0:
			dst[i] = false
		case 1:
			dst[i] = true
		default:
			d.fail(fmt.Errorf("%w: boolean array element %d is 0x%02x", errs.ErrBadFormat, int(index)+i, src[i]))
			return 0, false
		}
	}

	return n, false
}

// CopyUint8Array copies elements of the next 8-bit array into dst without
// consuming the array. See CopyBooleanArray for the parameters.
func (d *Decoder) CopyUint8Array(index uint32, dst []uint8) (int, bool) {
	src, n, null, ok := d.arrayWindow(format.TypeUint8Array, index, len(dst))
	if !ok || null {
		return 0, null
	}

	return copy(dst, src[:n]), false
}

// CopyUint16Array copies elements of the next 16-bit array into dst without
// consuming the array. See CopyBooleanArray for the parameters.
func (d *Decoder) CopyUint16Array(index uint32, dst []uint16) (int, bool) {
	src, n, null, ok := d.arrayWindow(format.TypeUint16Array, index, len(dst))
	if !ok || null {
		return 0, null
	}

	for i := 0; i < n; i++ {
		dst[i] = d.engine.Uint16(src[i*2:])
	}

	return n, false
}

// CopyUint32Array copies elements of the next 32-bit array into dst without
// consuming the array. See CopyBooleanArray for the parameters.
func (d *Decoder) CopyUint32Array(index uint32, dst []uint32) (int, bool) {
	return d.copyWords(format.TypeUint32Array, index, dst)
}

// CopyHandleArray copies elements of the next handle array into dst without
// consuming the array. See CopyBooleanArray for the parameters.
func (d *Decoder) CopyHandleArray(index uint32, dst []uint32) (int, bool) {
	return d.copyWords(format.TypeHandleArray, index, dst)
}

func (d *Decoder) copyWords(want format.ElementType, index uint32, dst []uint32) (int, bool) {
	src, n, null, ok := d.arrayWindow(want, index, len(dst))
	if !ok || null {
		return 0, null
	}

	for i := 0; i < n; i++ {
		dst[i] = d.engine.Uint32(src[i*4:])
	}

	return n, false
}

// ReadBooleanArray consumes the next boolean array. A null array is returned as nil.
func (d *Decoder) ReadBooleanArray() []bool {
	return readArray(d, format.TypeBooleanArray, d.CopyBooleanArray)
}

// ReadUint8Array consumes the next 8-bit array. A null array is returned as nil.
func (d *Decoder) ReadUint8Array() []uint8 {
	return readArray(d, format.TypeUint8Array, d.CopyUint8Array)
}

// ReadUint16Array consumes the next 16-bit array. A null array is returned as nil.
func (d *Decoder) ReadUint16Array() []uint16 {
	return readArray(d, format.TypeUint16Array, d.CopyUint16Array)
}

// ReadUint32Array consumes the next 32-bit array. A null array is returned as nil.
func (d *Decoder) ReadUint32Array() []uint32 {
	return readArray(d, format.TypeUint32Array, d.CopyUint32Array)
}

// ReadHandleArray consumes the next handle array. A null array is returned as nil.
func (d *Decoder) ReadHandleArray() []uint32 {
	return readArray(d, format.TypeHandleArray, d.CopyHandleArray)
}

// readArray sizes, copies and then skips the next array.
func readArray[T any](d *Decoder, want format.ElementType, copyFn func(uint32, []T) (int, bool)) []T {
	h, ok := d.peekArray(want)
	if !ok {
		return nil
	}
	if h.null {
		d.Skip()
		return nil
	}

	// The count is bounded by the scope size, checked by peekArray.
	out := make([]T, h.count)
	if _, null := copyFn(0, out); null || d.err != nil {
		return nil
	}
	d.Skip()

	if d.err != nil {
		return nil
	}

	return out
}
