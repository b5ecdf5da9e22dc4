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

import "errors"

var (
	// ErrInvalidLength indicates encoded data has the wrong size for its type.
	ErrInvalidLength = errors.New("codec: invalid length")

	// ErrTrailingBytes indicates a decoder consumed less than the whole input.
	ErrTrailingBytes = errors.New("codec: trailing bytes")

	// ErrInvalidUTF8 indicates a string is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("codec: invalid utf-8")

	// ErrOutOfRange indicates a value cannot be represented by the encoding.
	ErrOutOfRange = errors.New("codec: value out of range")

	// ErrChecksumMismatch indicates stored bytes do not match their checksum.
	ErrChecksumMismatch = errors.New("codec: checksum mismatch")

	// ErrUnknownChecksum indicates an unsupported checksum algorithm.
	ErrUnknownChecksum = errors.New("codec: unknown checksum")

	// ErrTooLarge indicates a payload decompresses beyond MaxDecompressedSize.
	ErrTooLarge = errors.New("codec: decompressed payload too large")

	// ErrUnknownCompression indicates an unsupported compression algorithm.
	ErrUnknownCompression = errors.New("codec: unknown compression")
)
