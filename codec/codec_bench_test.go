package codec

import (
	"testing"
)

func benchmarkPayload(n int) []uint32 {
	values := make([]uint32, n)
	for i := range values {
		values[i] = uint32(i * 7)
	}

	return values
}

func BenchmarkEncoder(b *testing.B) {
	values := benchmarkPayload(256)
	buf := make([]byte, 4096)
	enc, err := NewEncoder(buf)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		enc.Init(buf)
		enc.OpenSequence()
		enc.WriteUint32(uint32(i))
		enc.WriteString("benchmark parameter")
		enc.WriteUint32Array(values)
		enc.CloseSequence()
		if _, err := enc.Finish(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecoder(b *testing.B) {
	values := benchmarkPayload(256)
	enc, _ := NewEncoder(make([]byte, 4096))
	enc.OpenSequence()
	enc.WriteUint32(1)
	enc.WriteString("benchmark parameter")
	enc.WriteUint32Array(values)
	enc.CloseSequence()
	msg, err := enc.Finish()
	if err != nil {
		b.Fatal(err)
	}

	dec, _ := NewDecoder(msg)
	dst := make([]uint32, len(values))
	str := make([]byte, 64)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dec.Init(msg)
		dec.OpenSequence()
		dec.ReadUint32()
		dec.CopyStringAsUTF8(str)
		dec.Skip()
		dec.CopyUint32Array(0, dst)
		dec.Skip()
		dec.CloseSequence()
		if err := dec.Err(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGetCurrentType(b *testing.B) {
	enc, _ := NewEncoder(make([]byte, 64))
	enc.WriteUint16Array([]uint16{1, 2, 3})
	msg, _ := enc.Finish()
	dec, _ := NewDecoder(msg)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dec.Init(msg)
		_ = dec.GetCurrentType()
	}
}
