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
	"encoding/binary"
	"fmt"
	"math"
	"time"
	"unicode/utf8"
)

// Order-preserving codecs, suitable for keys.
var (
	// Uint64 encodes as 8 big-endian bytes.
	Uint64 Codec[uint64] = uint64Codec{}

	// Uint32 encodes as 4 big-endian bytes.
	Uint32 Codec[uint32] = uint32Codec{}

	// Int64 encodes as 8 big-endian bytes with the sign bit flipped, so
	// negative numbers sort before positive ones.
	Int64 Codec[int64] = int64Codec{}

	// String encodes raw UTF-8 bytes.
	String Codec[string] = stringCodec{}

	// Bytes stores the slice as is.
	Bytes Codec[[]byte] = bytesCodec{}

	// Time encodes nanoseconds since the Unix epoch like Int64. Decoded
	// times are in UTC with no monotonic reading, so Decode(Encode(t)) equals
	// t.UTC() exactly and t itself only under time.Time.Equal. Only times
	// between 1678 and 2262 are representable.
	Time Codec[time.Time] = timeCodec{}
)

const signBit = uint64(1) << 63

type uint64Codec struct{}

func (uint64Codec) Encode(v uint64) ([]byte, error) {
	return binary.BigEndian.AppendUint64(make([]byte, 0, 8), v), nil
}

func (uint64Codec) Decode(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("%w: uint64 needs 8 bytes, got %d", ErrInvalidLength, len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

type uint32Codec struct{}

func (uint32Codec) Encode(v uint32) ([]byte, error) {
	return binary.BigEndian.AppendUint32(make([]byte, 0, 4), v), nil
}

func (uint32Codec) Decode(data []byte) (uint32, error) {
	if len(data) != 4 {
		return 0, fmt.Errorf("%w: uint32 needs 4 bytes, got %d", ErrInvalidLength, len(data))
	}
	return binary.BigEndian.Uint32(data), nil
}

type int64Codec struct{}

func (int64Codec) Encode(v int64) ([]byte, error) {
	return binary.BigEndian.AppendUint64(make([]byte, 0, 8), uint64(v)^signBit), nil
}

func (int64Codec) Decode(data []byte) (int64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("%w: int64 needs 8 bytes, got %d", ErrInvalidLength, len(data))
	}
	return int64(binary.BigEndian.Uint64(data) ^ signBit), nil
}

type stringCodec struct{}

func (stringCodec) Encode(v string) ([]byte, error) {
	if !utf8.ValidString(v) {
		return nil, ErrInvalidUTF8
	}
	return []byte(v), nil
}

func (stringCodec) Decode(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return string(data), nil
}

type bytesCodec struct{}

func (bytesCodec) Encode(v []byte) ([]byte, error) {
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (bytesCodec) Decode(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

var (
	minTime = time.Unix(0, math.MinInt64)
	maxTime = time.Unix(0, math.MaxInt64)
)

type timeCodec struct{}

func (timeCodec) Encode(v time.Time) ([]byte, error) {
	if v.Before(minTime) || v.After(maxTime) {
		return nil, fmt.Errorf("%w: %s", ErrOutOfRange, v.Format(time.RFC3339))
	}
	return Int64.Encode(v.UnixNano())
}

func (timeCodec) Decode(data []byte) (time.Time, error) {
	nanos, err := Int64.Decode(data)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, nanos).UTC(), nil
}
