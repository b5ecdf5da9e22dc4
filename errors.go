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

package typedkv

import (
	"errors"
	"fmt"

	"github.com/poiesic/typedkv/storage"
)

var (
	// ErrColumnFamilyNotFound indicates a schema whose family was not registered at Open.
	ErrColumnFamilyNotFound = errors.New("column family not found")

	// ErrEncode indicates a key or value failed to encode.
	ErrEncode = errors.New("encode failed")

	// ErrDecode indicates stored bytes failed to decode into the schema's types.
	ErrDecode = errors.New("decode failed")

	// ErrEngine indicates the storage engine reported a failure.
	ErrEngine = errors.New("storage engine error")

	// ErrClosed indicates use of a closed DB.
	ErrClosed = errors.New("database is closed")

	// ErrInvalidColumnFamily indicates a malformed column family descriptor.
	ErrInvalidColumnFamily = errors.New("invalid column family")

	// ErrInvalidDirection indicates an iteration direction other than
	// Forward or Reverse.
	ErrInvalidDirection = errors.New("invalid iteration direction")

	// ErrUnknownEngine indicates an unsupported engine type.
	ErrUnknownEngine = errors.New("unknown engine")
)

// engineError classifies a failure reported by the engine. A closed engine
// is reported as ErrClosed rather than ErrEngine.
func engineError(op, family string, err error) error {
	if errors.Is(err, storage.ErrClosed) {
		return fmt.Errorf("%w: %s %q: %w", ErrClosed, op, family, err)
	}
	return fmt.Errorf("%w: %s %q: %w", ErrEngine, op, family, err)
}

func encodeError(what, family string, err error) error {
	return fmt.Errorf("%w: %s in %q: %w", ErrEncode, what, family, err)
}

func decodeError(what, family string, err error) error {
	return fmt.Errorf("%w: %s in %q: %w", ErrDecode, what, family, err)
}
