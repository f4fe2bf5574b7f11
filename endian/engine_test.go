package endian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetLittleEndianEngine(t *testing.T) {
	engine := GetLittleEndianEngine()
	require.Equal(t, binary.LittleEndian, engine)
}

func TestLittleEndianEngine_Put(t *testing.T) {
	engine := GetLittleEndianEngine()

	t.Run("Uint16", func(t *testing.T) {
		buf := make([]byte, 2)
		engine.PutUint16(buf, 0xBEF2)
		require.Equal(t, []byte{0xF2, 0xBE}, buf)
		require.Equal(t, uint16(0xBEF2), engine.Uint16(buf))
	})

	t.Run("Uint32", func(t *testing.T) {
		buf := make([]byte, 5)
		buf[0] = 0x96
		engine.PutUint32(buf[1:], 21)
		require.Equal(t, []byte{0x96, 0x15, 0x00, 0x00, 0x00}, buf)
		require.Equal(t, uint32(21), engine.Uint32(buf[1:]))
	})
}

func TestLittleEndianEngine_Append(t *testing.T) {
	engine := GetLittleEndianEngine()

	buf := engine.AppendUint16([]byte{0x01}, 0x0203)
	buf = engine.AppendUint32(buf, 0x04050607)
	buf = engine.AppendUint64(buf, 0x1122334455667788)

	require.Equal(t, []byte{
		0x01,
		0x03, 0x02,
		0x07, 0x06, 0x05, 0x04,
		0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11,
	}, buf)
	require.Equal(t, uint64(0x1122334455667788), engine.Uint64(buf[7:]))
}
