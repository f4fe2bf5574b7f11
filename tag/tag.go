// Package tag is the BEF2 tag vocabulary shared by the encoder and the decoder.
//
// A tag byte packs a base type in its high nibble and a flag in its low nibble.
// Only a fixed set of (base type, flag) pairs is legal; Classify is the single
// place that decides legality, so both directions of the codec agree on it.
//
// Composite elements are followed by a sub-tag byte selecting the payload layout.
package tag

import (
	"github.com/clamor-s/bef2/errs"
	"github.com/clamor-s/bef2/format"
)

const (
	BaseMask = 0xF0 // Mask for the base type nibble.
	FlagMask = 0x0F // Mask for the flag nibble.
)

// Full tag bytes used on the wire.
const (
	False      = byte(format.BaseBoolean) | byte(format.FlagFalse)      // 0x00
	True       = byte(format.BaseBoolean) | byte(format.FlagTrue)       // 0x01
	NullString = byte(format.BaseString) | byte(format.FlagNull)        // 0x77
	String     = byte(format.BaseString) | byte(format.FlagExplicit)    // 0x76
	Sequence   = byte(format.BaseSequence) | byte(format.FlagExplicit)  // 0x96
	Composite  = byte(format.BaseComposite) | byte(format.FlagExplicit) // 0xB6

	SubMemoryReference = byte(format.SubTagMemoryReference) // 0x01
	SubUUID            = byte(format.SubTagUUID)            // 0x02
)

// Fixed payload sizes.
const (
	TagSize             = 1
	WordSize            = 4
	UUIDSize            = 16
	MemoryReferenceSize = 4 * WordSize
	CompositeSize       = 2 + UUIDSize // tag + sub-tag + 16 payload bytes, same for both layouts
	SequenceHeaderSize  = TagSize + WordSize
	ArrayHeaderSize     = TagSize + WordSize
	StringHeaderSize    = TagSize + WordSize
)

// Class is the decoded form of a legal tag byte.
type Class struct {
	Base format.BaseType
	Flag format.Flag
}

var (
	scalarFlags = map[format.Flag]struct{}{
		format.FlagExplicit:  {},
		format.FlagNullArray: {},
		format.FlagArray:     {},
	}

	validFlags = map[format.BaseType]map[format.Flag]struct{}{
		format.BaseBoolean: {
			format.FlagFalse:     {},
			format.FlagTrue:      {},
			format.FlagNullArray: {},
			format.FlagArray:     {},
		},
		format.BaseUint8:  scalarFlags,
		format.BaseUint16: scalarFlags,
		format.BaseUint32: scalarFlags,
		format.BaseHandle: scalarFlags,
		format.BaseString: {
			format.FlagExplicit: {},
			format.FlagNull:     {},
		},
		format.BaseSequence: {
			format.FlagExplicit: {},
		},
		format.BaseComposite: {
			format.FlagExplicit: {},
		},
	}

	elementSizes = map[format.BaseType]int{
		format.BaseBoolean: 1,
		format.BaseUint8:   1,
		format.BaseUint16:  2,
		format.BaseUint32:  4,
		format.BaseHandle:  4,
	}
)

// Make builds a tag byte from a base type and a flag. It does not check legality.
func Make(base format.BaseType, flag format.Flag) byte {
	return byte(base) | byte(flag)
}

// Classify splits b into its base type and flag.
//
// Returns:
//   - Class: the base type and flag of b
//   - error: errs.ErrBadFormat if the pair is not legal
func Classify(b byte) (Class, error) {
	c := Class{
		Base: format.BaseType(b & BaseMask),
		Flag: format.Flag(b & FlagMask),
	}

	flags, ok := validFlags[c.Base]
	if !ok {
		return Class{}, errs.ErrBadFormat
	}
	if _, ok := flags[c.Flag]; !ok {
		return Class{}, errs.ErrBadFormat
	}

	return c, nil
}

// ValidSubTag reports whether b is one of the two composite sub-tags.
func ValidSubTag(b byte) bool {
	return b == SubMemoryReference || b == SubUUID
}

// ElementSize returns the width in bytes of one scalar value or array element
// of the given base type, or 0 for non-scalar base types.
func ElementSize(base format.BaseType) int {
	return elementSizes[base]
}

// IsScalar reports whether base supports explicit values and arrays.
func IsScalar(base format.BaseType) bool {
	_, ok := elementSizes[base]
	return ok
}

// IsArray reports whether the class is a null or non-null array.
func (c Class) IsArray() bool {
	return c.Flag == format.FlagNullArray || c.Flag == format.FlagArray
}

// IsNull reports whether the class is a null value or a null array.
func (c Class) IsNull() bool {
	return c.Flag == format.FlagNull || c.Flag == format.FlagNullArray
}

// ElementType maps the class to the decoder type code. Composite classes need
// the sub-tag, see CompositeType.
func (c Class) ElementType() format.ElementType {
	if c.IsArray() {
		switch c.Base {
		case format.BaseBoolean:
			return format.TypeBooleanArray
		case format.BaseUint8:
			return format.TypeUint8Array
		case format.BaseUint16:
			return format.TypeUint16Array
		case format.BaseUint32:
			return format.TypeUint32Array
		case format.BaseHandle:
			return format.TypeHandleArray
		}

		return format.TypeInvalid
	}

	switch c.Base {
	case format.BaseBoolean:
		return format.TypeBoolean
	case format.BaseUint8:
		return format.TypeUint8
	case format.BaseUint16:
		return format.TypeUint16
	case format.BaseUint32:
		return format.TypeUint32
	case format.BaseHandle:
		return format.TypeHandle
	case format.BaseString:
		return format.TypeString
	case format.BaseSequence:
		return format.TypeSequence
	default:
		return format.TypeInvalid
	}
}

// CompositeType maps a composite sub-tag to its decoder type code.
func CompositeType(sub byte) format.ElementType {
	switch sub {
	case SubMemoryReference:
		return format.TypeMemoryReference
	case SubUUID:
		return format.TypeUUID
	default:
		return format.TypeInvalid
	}
}
