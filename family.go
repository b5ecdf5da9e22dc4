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
	"encoding/binary"
	"fmt"
	"math"
)

// MaxColumnFamilyNameLen is the longest accepted family name in bytes.
const MaxColumnFamilyNameLen = 255

// prefixLen is the width of the family id that prefixes every stored key.
const prefixLen = 4

// ColumnFamilyDescriptor names a column family to open and carries its options.
type ColumnFamilyDescriptor struct {
	Name    string
	Options ColumnFamilyOptions
}

// ColumnFamilyOptions tunes writes to a single family.
type ColumnFamilyOptions struct {
	// SyncWrites makes every write to the family durable before it returns.
	SyncWrites bool
}

// columnFamily is an open family handle: the prefix owning its key range.
type columnFamily struct {
	name   string
	id     uint32
	prefix []byte
	// end is the exclusive upper bound of the family's key range; nil for
	// the last possible id.
	end  []byte
	opts ColumnFamilyOptions
}

func newColumnFamily(desc ColumnFamilyDescriptor, id uint32) *columnFamily {
	cf := &columnFamily{
		name:   desc.Name,
		id:     id,
		prefix: binary.BigEndian.AppendUint32(nil, id),
		opts:   desc.Options,
	}
	if id < math.MaxUint32 {
		cf.end = binary.BigEndian.AppendUint32(nil, id+1)
	}
	return cf
}

// key prefixes an encoded user key with the family id.
func (cf *columnFamily) key(encoded []byte) []byte {
	out := make([]byte, 0, prefixLen+len(encoded))
	out = append(out, cf.prefix...)
	return append(out, encoded...)
}

// userKey strips the family prefix from a stored key.
func (cf *columnFamily) userKey(stored []byte) []byte {
	return stored[prefixLen:]
}

// bounds maps encoded user-key bounds onto the family's slice of the store.
func (cf *columnFamily) bounds(lower, upper []byte) (lo, hi []byte) {
	lo = cf.prefix
	if lower != nil {
		lo = cf.key(lower)
	}
	hi = cf.end
	if upper != nil {
		hi = cf.key(upper)
	}
	return lo, hi
}

func validateDescriptors(descs []ColumnFamilyDescriptor) error {
	seen := make(map[string]struct{}, len(descs))
	for i, d := range descs {
		switch {
		case d.Name == "":
			return fmt.Errorf("%w: descriptor %d has an empty name", ErrInvalidColumnFamily, i)
		case len(d.Name) > MaxColumnFamilyNameLen:
			return fmt.Errorf("%w: name %.32q... is longer than %d bytes", ErrInvalidColumnFamily, d.Name, MaxColumnFamilyNameLen)
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("%w: %q registered twice", ErrInvalidColumnFamily, d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	return nil
}
