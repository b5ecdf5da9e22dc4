package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMUS(t *testing.T) {
	t.Run("string round trip", func(t *testing.T) {
		data, err := MUSString.Encode("answer")
		require.NoError(t, err)

		s, err := MUSString.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, "answer", s)
	})

	t.Run("varint round trip", func(t *testing.T) {
		for _, v := range []int64{-1 << 62, -1, 0, 1, 1 << 62} {
			data, err := MUSInt64.Encode(v)
			require.NoError(t, err)
			decoded, err := MUSInt64.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, v, decoded)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := MUSString.Decode([]byte{})
		assert.Error(t, err)

		_, err = MUSUint64.Decode(nil)
		assert.Error(t, err)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		data, err := MUSBool.Encode(true)
		require.NoError(t, err)

		_, err = MUSBool.Decode(append(data, 0x00))
		assert.ErrorIs(t, err, ErrTrailingBytes)
	})
}

func TestCompressed(t *testing.T) {
	payload := strings.Repeat("column families all the way down. ", 64)

	for _, algo := range []Compression{NoCompression, Snappy, LZ4, Zstd} {
		t.Run(algo.String(), func(t *testing.T) {
			c := Compressed(String, algo)

			data, err := c.Encode(payload)
			require.NoError(t, err)
			require.NotEmpty(t, data)
			assert.Equal(t, byte(algo), data[0])
			if algo != NoCompression {
				assert.Less(t, len(data), len(payload))
			}

			decoded, err := c.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, payload, decoded)
		})
	}

	t.Run("reads values written with another algorithm", func(t *testing.T) {
		data, err := Compressed(String, Snappy).Encode(payload)
		require.NoError(t, err)

		decoded, err := Compressed(String, Zstd).Decode(data)
		require.NoError(t, err)
		assert.Equal(t, payload, decoded)
	})

	t.Run("missing tag", func(t *testing.T) {
		_, err := Compressed(String, Snappy).Decode(nil)
		assert.ErrorIs(t, err, ErrInvalidLength)
	})

	t.Run("unknown tag", func(t *testing.T) {
		_, err := Compressed(String, Snappy).Decode([]byte{0x42, 'x'})
		assert.ErrorIs(t, err, ErrUnknownCompression)
	})

	t.Run("unknown algorithm on encode", func(t *testing.T) {
		_, err := Compressed(String, Compression(0x42)).Encode("x")
		assert.ErrorIs(t, err, ErrUnknownCompression)
	})

	t.Run("corrupt snappy payload", func(t *testing.T) {
		_, err := Compressed(String, Snappy).Decode([]byte{byte(Snappy), 0xff, 0xff, 0xff, 0xff, 0xff})
		assert.Error(t, err)
	})

	t.Run("inner encode error propagates", func(t *testing.T) {
		_, err := Compressed(String, Zstd).Encode(string([]byte{0xff}))
		assert.ErrorIs(t, err, ErrInvalidUTF8)
	})
}

func TestCompressed_DecompressLimit(t *testing.T) {
	old := decompressLimit
	decompressLimit = 1024
	t.Cleanup(func() { decompressLimit = old })

	for _, algo := range []Compression{Snappy, LZ4, Zstd} {
		t.Run(algo.String(), func(t *testing.T) {
			c := Compressed(String, algo)

			data, err := c.Encode(strings.Repeat("a", 4096))
			require.NoError(t, err)
			_, err = c.Decode(data)
			assert.ErrorIs(t, err, ErrTooLarge)

			data, err = c.Encode(strings.Repeat("a", 1024))
			require.NoError(t, err)
			v, err := c.Decode(data)
			require.NoError(t, err)
			assert.Len(t, v, 1024)
		})
	}
}

func TestParseCompression(t *testing.T) {
	for _, algo := range []Compression{NoCompression, Snappy, LZ4, Zstd} {
		parsed, err := ParseCompression(algo.String())
		require.NoError(t, err)
		assert.Equal(t, algo, parsed)
	}

	_, err := ParseCompression("brotli")
	assert.ErrorIs(t, err, ErrUnknownCompression)
}

func TestChecksummed(t *testing.T) {
	for _, sum := range []Checksum{XXH3, BLAKE2b, BLAKE3} {
		t.Run(sum.String(), func(t *testing.T) {
			c := Checksummed(Uint64, sum)

			data, err := c.Encode(42)
			require.NoError(t, err)
			require.Len(t, data, 8+ChecksumSize)

			v, err := c.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, uint64(42), v)

			corrupted := append([]byte(nil), data...)
			corrupted[3] ^= 0x01
			_, err = c.Decode(corrupted)
			assert.ErrorIs(t, err, ErrChecksumMismatch)

			_, err = c.Decode(data[:ChecksumSize-1])
			assert.ErrorIs(t, err, ErrInvalidLength)
		})
	}

	t.Run("algorithms disagree", func(t *testing.T) {
		data, err := Checksummed(String, XXH3).Encode("value")
		require.NoError(t, err)

		_, err = Checksummed(String, BLAKE3).Decode(data)
		assert.ErrorIs(t, err, ErrChecksumMismatch)
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := Checksummed(String, Checksum(99)).Encode("value")
		assert.ErrorIs(t, err, ErrUnknownChecksum)
	})

	t.Run("stacks with compression", func(t *testing.T) {
		c := Checksummed(Compressed(MUSString, Zstd), XXH3)
		data, err := c.Encode("stacked")
		require.NoError(t, err)

		s, err := c.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, "stacked", s)
	})
}
