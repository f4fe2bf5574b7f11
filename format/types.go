package format

type (
	BaseType        uint8
	Flag            uint8
	SubTag          uint8
	ElementType     uint8
	CompressionType uint8
)

// Base types occupy the high nibble of a tag byte.
const (
	BaseBoolean   BaseType = 0x00 // BaseBoolean carries its value in the flag nibble.
	BaseUint8     BaseType = 0x10 // BaseUint8 is a 1-byte unsigned integer.
	BaseUint16    BaseType = 0x20 // BaseUint16 is a 2-byte little-endian unsigned integer.
	BaseUint32    BaseType = 0x40 // BaseUint32 is a 4-byte little-endian unsigned integer.
	BaseString    BaseType = 0x70 // BaseString is a length-prefixed UTF-8 string.
	BaseSequence  BaseType = 0x90 // BaseSequence is a length-prefixed nested container.
	BaseHandle    BaseType = 0xA0 // BaseHandle is a 4-byte opaque handle.
	BaseComposite BaseType = 0xB0 // BaseComposite is a fixed-layout element selected by a sub-tag.
)

// Flags occupy the low nibble of a tag byte.
const (
	FlagFalse     Flag = 0x00 // FlagFalse is the boolean false value.
	FlagTrue      Flag = 0x01 // FlagTrue is the boolean true value.
	FlagExplicit  Flag = 0x06 // FlagExplicit means the value follows the tag.
	FlagNull      Flag = 0x07 // FlagNull is a null value.
	FlagNullArray Flag = 0x08 // FlagNullArray is a null array.
	FlagArray     Flag = 0x0F // FlagArray is a non-null array, its element count follows.
)

// Sub-tags follow a composite tag.
const (
	SubTagMemoryReference SubTag = 0x01
	SubTagUUID            SubTag = 0x02
)

// ElementType classifies the next element of a decoder.
const (
	TypeNoData ElementType = iota
	TypeInvalid
	TypeBoolean
	TypeUint8
	TypeUint16
	TypeUint32
	TypeHandle
	TypeString
	TypeSequence
	TypeUUID
	TypeMemoryReference
	TypeBooleanArray
	TypeUint8Array
	TypeUint16Array
	TypeUint32Array
	TypeHandleArray
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (b BaseType) String() string {
	switch b {
	case BaseBoolean:
		return "Boolean"
	case BaseUint8:
		return "UInt8"
	case BaseUint16:
		return "UInt16"
	case BaseUint32:
		return "UInt32"
	case BaseString:
		return "String"
	case BaseSequence:
		return "Sequence"
	case BaseHandle:
		return "Handle"
	case BaseComposite:
		return "Composite"
	default:
		return "Unknown"
	}
}

func (f Flag) String() string {
	switch f {
	case FlagFalse:
		return "False"
	case FlagTrue:
		return "True"
	case FlagExplicit:
		return "Explicit"
	case FlagNull:
		return "Null"
	case FlagNullArray:
		return "NullArray"
	case FlagArray:
		return "Array"
	default:
		return "Unknown"
	}
}

func (s SubTag) String() string {
	switch s {
	case SubTagMemoryReference:
		return "MemoryReference"
	case SubTagUUID:
		return "UUID"
	default:
		return "Unknown"
	}
}

func (t ElementType) String() string {
	switch t {
	case TypeNoData:
		return "NoData"
	case TypeInvalid:
		return "Invalid"
	case TypeBoolean:
		return "Boolean"
	case TypeUint8:
		return "UInt8"
	case TypeUint16:
		return "UInt16"
	case TypeUint32:
		return "UInt32"
	case TypeHandle:
		return "Handle"
	case TypeString:
		return "String"
	case TypeSequence:
		return "Sequence"
	case TypeUUID:
		return "UUID"
	case TypeMemoryReference:
		return "MemoryReference"
	case TypeBooleanArray:
		return "BooleanArray"
	case TypeUint8Array:
		return "UInt8Array"
	case TypeUint16Array:
		return "UInt16Array"
	case TypeUint32Array:
		return "UInt32Array"
	case TypeHandleArray:
		return "HandleArray"
	default:
		return "Unknown"
	}
}

// IsArray reports whether t is one of the array element types.
func (t ElementType) IsArray() bool {
	return t >= TypeBooleanArray && t <= TypeHandleArray
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
