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
	"fmt"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Ready-made MUS value codecs. Varint encodings are compact but do not
// preserve order, so prefer the fixed-width codecs for keys.
var (
	MUSString = MUS[string](ord.String)
	MUSBool   = MUS[bool](ord.Bool)
	MUSUint64 = MUS[uint64](varint.Uint64)
	MUSInt64  = MUS[int64](varint.Int64)
)

type musCodec[T any] struct {
	ser mus.Serializer[T]
}

// MUS adapts a mus-go serializer. Decode fails if the serializer does not
// consume the whole input.
func MUS[T any](ser mus.Serializer[T]) Codec[T] {
	return musCodec[T]{ser: ser}
}

func (c musCodec[T]) Encode(v T) ([]byte, error) {
	buf := make([]byte, c.ser.Size(v))
	c.ser.Marshal(v, buf)
	return buf, nil
}

func (c musCodec[T]) Decode(data []byte) (T, error) {
	v, n, err := c.ser.Unmarshal(data)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("codec: mus unmarshal: %w", err)
	}
	if n != len(data) {
		var zero T
		return zero, fmt.Errorf("%w: consumed %d of %d", ErrTrailingBytes, n, len(data))
	}
	return v, nil
}
