// Package codec implements the BEF2 encoder and decoder.
//
// BEF2 is a tag-length-value format for passing typed parameters across a
// trust boundary. Every element starts with a tag byte whose high nibble is
// the base type and whose low nibble is a flag; see package tag for the legal
// combinations. Multi-byte integers are little-endian.
//
// # Core Types
//
//   - Encoder: appends elements to a caller-supplied buffer
//   - Decoder: reads elements from a borrowed, untrusted buffer
//   - Element: the result of peeking at the next element with GetCurrentType
//   - MemoryReference: the payload of a memory reference composite
//
// # Encoding Workflow
//
//	enc, err := codec.NewEncoder(buf)
//	enc.OpenSequence()
//	enc.WriteUint32(7)
//	enc.WriteString("abc")
//	enc.WriteUint8Array([]uint8{1, 2, 3})
//	enc.CloseSequence()
//	msg, err := enc.Finish()
//
// Errors are sticky, so a batch of writes is checked once. When the buffer is
// too small, Finish returns errs.ErrShortBuffer and RequiredCapacity reports
// the exact size to allocate before encoding again.
//
// # Decoding Workflow
//
//	dec, err := codec.NewDecoder(msg)
//	dec.OpenSequence()
//	for dec.HasData() {
//	    switch dec.GetCurrentType().Type {
//	    case format.TypeUint32:
//	        v := dec.ReadUint32()
//	    default:
//	        dec.Skip()
//	    }
//	}
//	dec.CloseSequence()
//	if err := dec.Err(); err != nil { ... }
//
// Array copies and string copies are random access: they leave the cursor on
// the element, and Skip moves past it. The Read*Array and ReadString helpers
// do both in one call.
//
// # Safety
//
// Every size derived from the wire is computed with overflow checks, and
// every read is bounded by the end of the innermost open sequence rather than
// the end of the buffer. Nesting is limited by WithMaxDepth on both sides.
package codec
