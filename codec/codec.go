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

// Package codec converts typed keys and values to and from their stored bytes.
//
// A Codec must be lossless and deterministic: Decode(Encode(x)) == x for every
// valid x, and Encode must not touch external state. Decode rejects malformed
// input with an error instead of returning a partially populated value.
//
// # Key codecs
//
// Entries inside a column family are ordered by the raw bytes of their encoded
// keys. The fixed-width codecs in this package (Uint64, Uint32, Int64, Time)
// encode big-endian so that byte order matches numeric order. String encodes
// raw UTF-8, which sorts by code point.
//
// # Value codecs
//
// Values have no ordering requirement. MUS adapts any mus-go serializer, and
// Compressed and Checksummed wrap another codec to shrink stored values or to
// detect corruption on read.
package codec

// Codec converts a value of type T to bytes and back.
type Codec[T any] interface {
	// Encode serializes v. It must not retain or modify v.
	Encode(v T) ([]byte, error)

	// Decode deserializes data. It must not retain data after returning.
	Decode(data []byte) (T, error)
}

type funcCodec[T any] struct {
	encode func(T) ([]byte, error)
	decode func([]byte) (T, error)
}

// Func builds a Codec from a pair of functions.
func Func[T any](encode func(T) ([]byte, error), decode func([]byte) (T, error)) Codec[T] {
	return funcCodec[T]{encode: encode, decode: decode}
}

func (c funcCodec[T]) Encode(v T) ([]byte, error) {
	return c.encode(v)
}

func (c funcCodec[T]) Decode(data []byte) (T, error) {
	return c.decode(data)
}
