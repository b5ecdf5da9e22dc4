// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies a compression algorithm. The value is stored as the
// first byte of every compressed payload, so it must never be renumbered.
type Compression uint8

const (
	// NoCompression stores the payload unchanged behind the tag byte.
	NoCompression Compression = 0x0
	// Snappy uses Google Snappy block compression.
	Snappy Compression = 0x1
	// LZ4 uses LZ4 frames.
	LZ4 Compression = 0x4
	// Zstd uses Zstandard at the default level.
	Zstd Compression = 0x7
)

// MaxDecompressedSize bounds the output of decoding a single compressed value.
const MaxDecompressedSize = 64 << 20

var decompressLimit = MaxDecompressedSize

// String returns the human-readable name of the compression type.
func (c Compression) String() string {
	switch c {
	case NoCompression:
		return "none"
	case Snappy:
		return "snappy"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression maps a name produced by String back to its Compression.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return NoCompression, nil
	case "snappy":
		return Snappy, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return Zstd, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
	}
}

type compressedCodec[T any] struct {
	inner Codec[T]
	algo  Compression
}

// Compressed compresses the output of inner with algo. Decoding accepts any
// supported algorithm tag, so switching algorithms keeps old values readable.
func Compressed[T any](inner Codec[T], algo Compression) Codec[T] {
	return compressedCodec[T]{inner: inner, algo: algo}
}

func (c compressedCodec[T]) Encode(v T) ([]byte, error) {
	raw, err := c.inner.Encode(v)
	if err != nil {
		return nil, err
	}
	out, err := compress(c.algo, raw)
	if err != nil {
		return nil, err
	}
	return append([]byte{byte(c.algo)}, out...), nil
}

func (c compressedCodec[T]) Decode(data []byte) (T, error) {
	var zero T
	if len(data) == 0 {
		return zero, fmt.Errorf("%w: missing compression tag", ErrInvalidLength)
	}
	raw, err := decompress(Compression(data[0]), data[1:])
	if err != nil {
		return zero, err
	}
	return c.inner.Decode(raw)
}

// EncodeAll and DecodeAll are safe for concurrent use, so one encoder and
// one decoder serve every codec.
var (
	zstdEncoder = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	zstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
		return zstd.NewReader(nil, zstd.WithDecoderMaxMemory(uint64(MaxDecompressedSize)))
	})
)

func compress(algo Compression, data []byte) ([]byte, error) {
	switch algo {
	case NoCompression:
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil

	case Snappy:
		return snappy.Encode(nil, data), nil

	case LZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if err := w.Apply(lz4.CompressionLevelOption(lz4.Fast)); err != nil {
			return nil, fmt.Errorf("codec: lz4 apply level: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("codec: lz4 write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("codec: lz4 close: %w", err)
		}
		return buf.Bytes(), nil

	case Zstd:
		enc, err := zstdEncoder()
		if err != nil {
			return nil, fmt.Errorf("codec: zstd encoder: %w", err)
		}
		return enc.EncodeAll(data, nil), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCompression, algo)
	}
}

func decompress(algo Compression, data []byte) ([]byte, error) {
	switch algo {
	case NoCompression:
		return data, nil

	case Snappy:
		n, err := snappy.DecodedLen(data)
		if err != nil {
			return nil, fmt.Errorf("codec: snappy decode: %w", err)
		}
		if n > decompressLimit {
			return nil, fmt.Errorf("%w: snappy payload of %d bytes", ErrTooLarge, n)
		}
		out, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("codec: snappy decode: %w", err)
		}
		return out, nil

	case LZ4:
		r := io.LimitReader(lz4.NewReader(bytes.NewReader(data)), int64(decompressLimit)+1)
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("codec: lz4 decode: %w", err)
		}
		if len(out) > decompressLimit {
			return nil, fmt.Errorf("%w: lz4 payload exceeds %d bytes", ErrTooLarge, decompressLimit)
		}
		return out, nil

	case Zstd:
		dec, err := zstdDecoder()
		if err != nil {
			return nil, fmt.Errorf("codec: zstd decoder: %w", err)
		}
		out, err := dec.DecodeAll(data, nil)
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) {
			return nil, fmt.Errorf("%w: zstd payload exceeds %d bytes", ErrTooLarge, MaxDecompressedSize)
		}
		if err != nil {
			return nil, fmt.Errorf("codec: zstd decode: %w", err)
		}
		if len(out) > decompressLimit {
			return nil, fmt.Errorf("%w: zstd payload exceeds %d bytes", ErrTooLarge, decompressLimit)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCompression, algo)
	}
}
