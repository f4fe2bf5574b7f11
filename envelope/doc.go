// Package envelope frames an encoded BEF2 message for storage or for
// hand-off to a transport.
//
// A BEF2 message carries no header of its own. The envelope adds a fixed
// 16-byte little-endian header in front of it:
//
//	offset  size  field
//	0       2     magic 0xBEF2
//	2       1     version (1)
//	3       1     compression (format.CompressionType)
//	4       4     uncompressed message size
//	8       8     xxHash64 of the uncompressed message
//
// followed by the message, compressed with the codec named in the header
// (see package compress).
//
//	sealed, err := envelope.Seal(msg, envelope.WithCompression(format.CompressionS2))
//	msg, hdr, err := envelope.Open(sealed)
package envelope
