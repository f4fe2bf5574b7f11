package codec

import (
	"github.com/clamor-s/bef2/format"
)

// MemoryReference describes a region of a shared memory block passed by
// reference across the trust boundary.
type MemoryReference struct {
	BlockHandle uint32
	Offset      uint32
	Length      uint32
	Flags       uint32
}

// Element describes the next element of a Decoder as reported by GetCurrentType.
type Element struct {
	// Type is the element type, format.TypeNoData at the end of the current scope
	// or format.TypeInvalid when the element is malformed.
	Type format.ElementType
	// Length is the element count of an array, or the UTF-8 byte length of a
	// string, or the payload length of a sequence. It is zero for other types.
	Length uint32
	// Null reports a null array or a null string.
	Null bool
}

// WCharWidth selects the wide character size of ReadWStringLength.
type WCharWidth int

const (
	WChar16 WCharWidth = 2 // UTF-16 code units, supplementary planes as surrogate pairs
	WChar32 WCharWidth = 4 // UTF-32 code points
)
