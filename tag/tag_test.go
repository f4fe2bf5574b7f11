package tag

import (
	"testing"

	"github.com/clamor-s/bef2/errs"
	"github.com/clamor-s/bef2/format"
	"github.com/stretchr/testify/require"
)

func TestClassify_LegalTags(t *testing.T) {
	tests := []struct {
		name string
		b    byte
		want Class
	}{
		{"false", 0x00, Class{format.BaseBoolean, format.FlagFalse}},
		{"true", 0x01, Class{format.BaseBoolean, format.FlagTrue}},
		{"bool null array", 0x08, Class{format.BaseBoolean, format.FlagNullArray}},
		{"bool array", 0x0F, Class{format.BaseBoolean, format.FlagArray}},
		{"uint8", 0x16, Class{format.BaseUint8, format.FlagExplicit}},
		{"uint16 array", 0x2F, Class{format.BaseUint16, format.FlagArray}},
		{"uint32 null array", 0x48, Class{format.BaseUint32, format.FlagNullArray}},
		{"string", 0x76, Class{format.BaseString, format.FlagExplicit}},
		{"null string", 0x77, Class{format.BaseString, format.FlagNull}},
		{"sequence", 0x96, Class{format.BaseSequence, format.FlagExplicit}},
		{"handle", 0xA6, Class{format.BaseHandle, format.FlagExplicit}},
		{"composite", 0xB6, Class{format.BaseComposite, format.FlagExplicit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Classify(tt.b)
			require.NoError(t, err)
			require.Equal(t, tt.want, c)
			require.Equal(t, tt.b, Make(c.Base, c.Flag))
		})
	}
}

func TestClassify_IllegalTags(t *testing.T) {
	legal := 0
	for b := 0; b < 256; b++ {
		if _, err := Classify(byte(b)); err == nil {
			legal++
		} else {
			require.ErrorIs(t, err, errs.ErrBadFormat)
		}
	}
	// 4 boolean + 4*3 scalar + 2 string + sequence + composite
	require.Equal(t, 20, legal)

	for _, b := range []byte{0x02, 0x06, 0x17, 0x78, 0x7F, 0x97, 0x98, 0xB8, 0xC6, 0xFF} {
		_, err := Classify(b)
		require.ErrorIs(t, err, errs.ErrBadFormat, "tag 0x%02X", b)
	}
}

func TestWireConstants(t *testing.T) {
	require.Equal(t, byte(0x00), False)
	require.Equal(t, byte(0x01), True)
	require.Equal(t, byte(0x76), String)
	require.Equal(t, byte(0x77), NullString)
	require.Equal(t, byte(0x96), Sequence)
	require.Equal(t, byte(0xB6), Composite)
	require.True(t, ValidSubTag(0x01))
	require.True(t, ValidSubTag(0x02))
	require.False(t, ValidSubTag(0x00))
	require.False(t, ValidSubTag(0x03))
}

func TestClass_ElementType(t *testing.T) {
	c, err := Classify(0x1F)
	require.NoError(t, err)
	require.True(t, c.IsArray())
	require.False(t, c.IsNull())
	require.Equal(t, format.TypeUint8Array, c.ElementType())

	c, err = Classify(0xA8)
	require.NoError(t, err)
	require.True(t, c.IsNull())
	require.Equal(t, format.TypeHandleArray, c.ElementType())

	c, err = Classify(0x77)
	require.NoError(t, err)
	require.True(t, c.IsNull())
	require.Equal(t, format.TypeString, c.ElementType())

	require.Equal(t, format.TypeUUID, CompositeType(SubUUID))
	require.Equal(t, format.TypeMemoryReference, CompositeType(SubMemoryReference))
	require.Equal(t, format.TypeInvalid, CompositeType(0x09))
}

func TestElementSize(t *testing.T) {
	require.Equal(t, 1, ElementSize(format.BaseBoolean))
	require.Equal(t, 1, ElementSize(format.BaseUint8))
	require.Equal(t, 2, ElementSize(format.BaseUint16))
	require.Equal(t, 4, ElementSize(format.BaseUint32))
	require.Equal(t, 4, ElementSize(format.BaseHandle))
	require.Equal(t, 0, ElementSize(format.BaseString))
	require.False(t, IsScalar(format.BaseSequence))
}
