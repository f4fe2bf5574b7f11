package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clamor-s/bef2/errs"
	"github.com/clamor-s/bef2/format"
)

var allCompressionTypes = []format.CompressionType{
	format.CompressionNone,
	format.CompressionZstd,
	format.CompressionS2,
	format.CompressionLZ4,
}

// generateMessage builds a repetitive payload shaped like a sequence of
// handle arrays, which compresses well.
func generateMessage(size int) []byte {
	out := make([]byte, 0, size)
	for i := 0; len(out) < size; i++ {
		out = append(out, 0xAF, 0x04, 0x00, 0x00, 0x00, byte(i%16), 0, 0, 0)
	}

	return out[:size]
}

func TestCreateCodec(t *testing.T) {
	for _, ct := range allCompressionTypes {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := CreateCodec(ct, "envelope")
			require.NoError(t, err)
			require.Equal(t, ct, codec.Type())
		})
	}

	t.Run("unknown", func(t *testing.T) {
		codec, err := CreateCodec(format.CompressionType(0xFF), "envelope")
		require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
		require.Contains(t, err.Error(), "envelope")
		require.Nil(t, codec)
	})
}

func TestGetCodec(t *testing.T) {
	for _, ct := range allCompressionTypes {
		codec, err := GetCodec(ct)
		require.NoError(t, err)
		require.Equal(t, ct, codec.Type())
	}

	_, err := GetCodec(format.CompressionType(0))
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
}

func TestCodecRoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"single byte": {0x01},
		"small":       generateMessage(64),
		"medium":      generateMessage(4096),
		"large":       generateMessage(256 * 1024),
		"text":        bytes.Repeat([]byte("parameter string "), 100),
	}

	for _, ct := range allCompressionTypes {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		for name, data := range payloads {
			t.Run(ct.String()+"/"+name, func(t *testing.T) {
				compressed, err := codec.Compress(data)
				require.NoError(t, err)
				require.NotEmpty(t, compressed)

				restored, err := codec.Decompress(compressed, len(data))
				require.NoError(t, err)
				require.Equal(t, data, restored)
			})
		}
	}
}

func TestCodecCompressesRepetitiveData(t *testing.T) {
	data := generateMessage(64 * 1024)

	for _, ct := range []format.CompressionType{format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		compressed, err := codec.Compress(data)
		require.NoError(t, err)
		require.Less(t, len(compressed), len(data)/4, ct.String())
	}
}

func TestCodecEmpty(t *testing.T) {
	for _, ct := range allCompressionTypes {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			compressed, err := codec.Compress(nil)
			require.NoError(t, err)
			require.Empty(t, compressed)

			restored, err := codec.Decompress(compressed, 0)
			require.NoError(t, err)
			require.Empty(t, restored)

			_, err = codec.Decompress(nil, 10)
			require.ErrorIs(t, err, errs.ErrDecompressedSize)
		})
	}
}

func TestCodecSizeMismatch(t *testing.T) {
	data := generateMessage(1024)

	for _, ct := range allCompressionTypes {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			_, err = codec.Decompress(compressed, len(data)+1)
			require.Error(t, err)

			_, err = codec.Decompress(compressed, len(data)-1)
			require.Error(t, err)
		})
	}
}

func TestCodecCorruptedData(t *testing.T) {
	garbage := []byte{0xFF, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA, 0x99, 0x88}

	for _, ct := range []format.CompressionType{format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			_, err = codec.Decompress(garbage, 64)
			require.Error(t, err)
		})
	}
}

func TestCodecRejectsOversizedRawSize(t *testing.T) {
	data := generateMessage(1024)

	for _, ct := range []format.CompressionType{
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			_, err = codec.Decompress(compressed, MaxDecompressedSize+1)
			require.ErrorIs(t, err, errs.ErrDecompressedSize)

			_, err = codec.Decompress(compressed, -1)
			require.ErrorIs(t, err, errs.ErrDecompressedSize)
		})
	}

	t.Run("LZ4 beyond block expansion", func(t *testing.T) {
		codec := NewLZ4Compressor()

		_, err := codec.Decompress([]byte{0x00, 0x00}, lz4MaxExpansion*3)
		require.ErrorIs(t, err, errs.ErrDecompressedSize)
		require.Contains(t, err.Error(), "cannot expand")
	})
}

func TestNoOpCompressorSharesMemory(t *testing.T) {
	data := []byte{1, 2, 3}
	codec := NewNoOpCompressor()

	compressed, err := codec.Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &compressed[0])

	restored, err := codec.Decompress(compressed, 3)
	require.NoError(t, err)
	require.Same(t, &data[0], &restored[0])
}
