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

func encodeKey[K, V any](cf *columnFamily, s Schema[K, V], key K) ([]byte, error) {
	encoded, err := s.KeyCodec().Encode(key)
	if err != nil {
		return nil, encodeError("key", cf.name, err)
	}
	return cf.key(encoded), nil
}

// Get returns the value stored under key. A missing key yields the zero
// value and false, not an error.
func Get[K, V any](db *DB, s Schema[K, V], key K) (V, bool, error) {
	var zero V

	cf, err := db.family(s.ColumnFamily())
	if err != nil {
		return zero, false, err
	}
	raw, err := encodeKey(cf, s, key)
	if err != nil {
		return zero, false, err
	}

	data, err := db.engine.Get(raw)
	if errors.Is(err, storage.ErrNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, engineError("get", cf.name, err)
	}

	v, err := s.ValueCodec().Decode(data)
	if err != nil {
		return zero, false, decodeError("value", cf.name, err)
	}
	return v, true, nil
}

// Has reports whether key is present without decoding its value.
func Has[K, V any](db *DB, s Schema[K, V], key K) (bool, error) {
	cf, err := db.family(s.ColumnFamily())
	if err != nil {
		return false, err
	}
	raw, err := encodeKey(cf, s, key)
	if err != nil {
		return false, err
	}

	_, err = db.engine.Get(raw)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, engineError("has", cf.name, err)
	}
	return true, nil
}

// MultiGet looks up keys in one batch against a consistent view. The result
// lines up with keys; a nil slot means the key is absent.
//
// Every key is encoded before the engine is touched, and any key failing to
// encode fails the call. Any present value failing to decode fails the whole
// call as well; no partial result is returned.
func MultiGet[K, V any](db *DB, s Schema[K, V], keys []K) ([]*V, error) {
	cf, err := db.family(s.ColumnFamily())
	if err != nil {
		return nil, err
	}

	raw := make([][]byte, len(keys))
	for i, key := range keys {
		if raw[i], err = encodeKey(cf, s, key); err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
	}

	data, err := db.engine.MultiGet(raw)
	if err != nil {
		return nil, engineError("multi get", cf.name, err)
	}

	vc := s.ValueCodec()
	out := make([]*V, len(keys))
	for i, d := range data {
		if d == nil {
			continue
		}
		v, err := vc.Decode(d)
		if err != nil {
			return nil, decodeError(fmt.Sprintf("value %d", i), cf.name, err)
		}
		out[i] = &v
	}
	return out, nil
}

// Put stores value under key, replacing any previous value.
func Put[K, V any](db *DB, s Schema[K, V], key K, value V) error {
	cf, err := db.family(s.ColumnFamily())
	if err != nil {
		return err
	}
	raw, err := encodeKey(cf, s, key)
	if err != nil {
		return err
	}
	data, err := s.ValueCodec().Encode(value)
	if err != nil {
		return encodeError("value", cf.name, err)
	}

	if err := db.engine.Put(raw, data, db.writeOptions(cf)); err != nil {
		return engineError("put", cf.name, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key succeeds.
func Delete[K, V any](db *DB, s Schema[K, V], key K) error {
	cf, err := db.family(s.ColumnFamily())
	if err != nil {
		return err
	}
	raw, err := encodeKey(cf, s, key)
	if err != nil {
		return err
	}

	if err := db.engine.Delete(raw, db.writeOptions(cf)); err != nil {
		return engineError("delete", cf.name, err)
	}
	return nil
}
