// Package compress provides the compression codecs of the BEF2 envelope.
//
// An encoded BEF2 message can be wrapped in an envelope for storage or for
// hand-off to a transport (see package envelope). The envelope header records
// the compression type and the uncompressed size; this package supplies the
// codec for each type:
//   - None: No compression (default, best for small command parameters)
//   - Zstd: Best compression ratio, moderate speed
//   - S2: Balanced compression and speed
//   - LZ4: Fast decompression, moderate compression
//
// # Architecture
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte, rawSize int) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	    Type() format.CompressionType
//	}
//
// Decompress always receives the uncompressed size from the envelope header.
// Codecs allocate exactly that size up front and fail with
// errs.ErrDecompressedSize when the data disagrees, so a corrupted or hostile
// payload cannot make the decoder allocate more than the header announced.
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionS2)
//	compressed, err := codec.Compress(msg)
//	original, err := codec.Decompress(compressed, len(msg))
//
// # Thread Safety
//
// All codec implementations are stateless values and safe for concurrent use.
// Zstd encoders/decoders and LZ4 compressors are pooled internally.
package compress
