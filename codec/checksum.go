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
	"encoding/binary"
	"fmt"

	"github.com/go-crypt/x/blake2b"
	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
)

// Checksum identifies the algorithm used by Checksummed.
type Checksum uint8

const (
	// XXH3 is the 64-bit XXH3 hash. Fast, not cryptographic.
	XXH3 Checksum = iota + 1
	// BLAKE2b is BLAKE2b with an 8 byte digest.
	BLAKE2b
	// BLAKE3 is BLAKE3-256 truncated to 8 bytes.
	BLAKE3
)

// ChecksumSize is the number of bytes appended to every checksummed value.
const ChecksumSize = 8

// String returns the human-readable name of the checksum type.
func (c Checksum) String() string {
	switch c {
	case XXH3:
		return "xxh3"
	case BLAKE2b:
		return "blake2b"
	case BLAKE3:
		return "blake3"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

type checksummedCodec[T any] struct {
	inner Codec[T]
	sum   Checksum
}

// Checksummed appends a checksum of the inner encoding and verifies it on
// decode, so corrupted values fail with ErrChecksumMismatch.
func Checksummed[T any](inner Codec[T], sum Checksum) Codec[T] {
	return checksummedCodec[T]{inner: inner, sum: sum}
}

func (c checksummedCodec[T]) Encode(v T) ([]byte, error) {
	payload, err := c.inner.Encode(v)
	if err != nil {
		return nil, err
	}
	digest, err := checksum(c.sum, payload)
	if err != nil {
		return nil, err
	}
	return append(payload, digest...), nil
}

func (c checksummedCodec[T]) Decode(data []byte) (T, error) {
	var zero T
	if len(data) < ChecksumSize {
		return zero, fmt.Errorf("%w: %d bytes is shorter than the checksum", ErrInvalidLength, len(data))
	}
	payload := data[:len(data)-ChecksumSize]
	want, err := checksum(c.sum, payload)
	if err != nil {
		return zero, err
	}
	if !bytes.Equal(want, data[len(payload):]) {
		return zero, fmt.Errorf("%w: %s", ErrChecksumMismatch, c.sum)
	}
	return c.inner.Decode(payload)
}

func checksum(sum Checksum, data []byte) ([]byte, error) {
	switch sum {
	case XXH3:
		return binary.BigEndian.AppendUint64(make([]byte, 0, ChecksumSize), xxh3.Hash(data)), nil
	case BLAKE2b:
		h, err := blake2b.New(ChecksumSize, nil)
		if err != nil {
			return nil, fmt.Errorf("codec: blake2b: %w", err)
		}
		h.Write(data)
		return h.Sum(nil), nil
	case BLAKE3:
		digest := blake3.Sum256(data)
		return digest[:ChecksumSize], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownChecksum, sum)
	}
}
