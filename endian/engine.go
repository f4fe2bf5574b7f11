// Package endian provides the byte order engine used by the BEF2 codec.
//
// BEF2 stores every multi-byte integer in little-endian order. EndianEngine
// combines binary.ByteOrder and binary.AppendByteOrder so the encoder can
// patch fixed offsets and the envelope can append header fields through a
// single value.
//
//	engine := endian.GetLittleEndianEngine()
//	engine.PutUint32(buf[1:5], length)
//
// # Thread Safety
//
// The returned EndianEngine is immutable and stateless.
package endian

import (
	"encoding/binary"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary.
//
// binary.LittleEndian satisfies it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine, the only byte order
// of the BEF2 wire format.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}
