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
	"fmt"
	"iter"

	"github.com/poiesic/typedkv/codec"
	"github.com/poiesic/typedkv/storage"
)

// Direction is the order an iterator walks keys in.
type Direction uint8

const (
	// Forward walks keys in ascending byte order.
	Forward Direction = iota
	// Reverse walks keys in descending byte order.
	Reverse
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// ReadOptions constrains an iterator.
type ReadOptions struct {
	// LowerBound is the inclusive lower bound, as an encoded key. Nil means
	// the start of the family.
	LowerBound []byte

	// UpperBound is the exclusive upper bound, as an encoded key. Nil means
	// the end of the family.
	UpperBound []byte

	// Snapshot pins the iterator to an earlier view. Nil reads current state.
	Snapshot *Snapshot
}

// Bounds encodes typed bounds with the schema's key codec. Either bound may
// be nil for an open end.
func Bounds[K, V any](s Schema[K, V], lower, upper *K) (ReadOptions, error) {
	var opts ReadOptions
	kc := s.KeyCodec()
	if lower != nil {
		b, err := kc.Encode(*lower)
		if err != nil {
			return ReadOptions{}, encodeError("lower bound", s.ColumnFamily(), err)
		}
		opts.LowerBound = b
	}
	if upper != nil {
		b, err := kc.Encode(*upper)
		if err != nil {
			return ReadOptions{}, encodeError("upper bound", s.ColumnFamily(), err)
		}
		opts.UpperBound = b
	}
	return opts, nil
}

// Entry is one decoded key-value pair.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Keys returns a forward iterator over every key in the schema's family.
// Values are never read.
func Keys[K, V any](db *DB, s Schema[K, V]) (*KeysIterator[K], error) {
	cf, err := db.family(s.ColumnFamily())
	if err != nil {
		return nil, err
	}
	lo, hi := cf.bounds(nil, nil)
	cur, err := db.engine.NewCursor(storage.CursorOptions{
		LowerBound: lo,
		UpperBound: hi,
		KeysOnly:   true,
	})
	if err != nil {
		return nil, engineError("keys", cf.name, err)
	}
	return &KeysIterator[K]{
		cursor: cursor{cur: cur, cf: cf},
		codec:  s.KeyCodec(),
	}, nil
}

// Iter returns a forward iterator over the whole family.
func Iter[K, V any](db *DB, s Schema[K, V]) (*ColumnIterator[K, V], error) {
	return IterWithDirection(db, s, ReadOptions{}, Forward)
}

// IterWithDirection returns an iterator over the family limited by opts.
// Forward iteration starts at the smallest key in range, Reverse at the
// largest.
func IterWithDirection[K, V any](db *DB, s Schema[K, V], opts ReadOptions, dir Direction) (*ColumnIterator[K, V], error) {
	cf, err := db.family(s.ColumnFamily())
	if err != nil {
		return nil, err
	}
	if dir != Forward && dir != Reverse {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDirection, dir)
	}

	lo, hi := cf.bounds(opts.LowerBound, opts.UpperBound)
	copts := storage.CursorOptions{
		LowerBound: lo,
		UpperBound: hi,
		Reverse:    dir == Reverse,
	}
	if opts.Snapshot != nil {
		copts.Snapshot = opts.Snapshot.snap
	}

	cur, err := db.engine.NewCursor(copts)
	if err != nil {
		return nil, engineError("iterate", cf.name, err)
	}
	return &ColumnIterator[K, V]{
		cursor: cursor{cur: cur, cf: cf},
		keys:   s.KeyCodec(),
		values: s.ValueCodec(),
	}, nil
}

// cursor tracks the terminal state shared by both iterator kinds.
type cursor struct {
	cur    storage.Cursor
	cf     *columnFamily
	err    error
	done   bool
	closed bool
}

// valid reports whether there is an entry to decode, ending the iteration
// when there is not.
func (c *cursor) valid() bool {
	if c.done {
		return false
	}
	if c.cur.Valid() {
		return true
	}
	if err := c.cur.Err(); err != nil {
		c.fail(engineError("iterate", c.cf.name, err))
		return false
	}
	c.finish()
	return false
}

func (c *cursor) fail(err error) {
	c.err = err
	c.finish()
}

// finish releases the engine cursor as soon as the sequence ends.
func (c *cursor) finish() {
	c.done = true
	c.release()
}

func (c *cursor) release() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.cur.Close()
}

// KeysIterator lazily yields the decoded keys of one column family.
type KeysIterator[K any] struct {
	cursor
	codec codec.Codec[K]
	key   K
}

// Next decodes the current key and advances. It returns false once the
// family is exhausted or an error occurs, and keeps returning false after.
func (it *KeysIterator[K]) Next() bool {
	if !it.valid() {
		return false
	}
	k, err := it.codec.Decode(it.cf.userKey(it.cur.Key()))
	if err != nil {
		it.fail(decodeError("key", it.cf.name, err))
		return false
	}
	it.key = k
	it.cur.Next()
	return true
}

// Key returns the key decoded by the last successful Next.
func (it *KeysIterator[K]) Key() K {
	return it.key
}

// Err returns the error that stopped the iteration, if any.
func (it *KeysIterator[K]) Err() error {
	return it.err
}

// Close releases the iterator. It is safe to call more than once.
func (it *KeysIterator[K]) Close() error {
	it.done = true
	return it.release()
}

// All returns the keys as a range-over-func sequence. A failure is yielded
// once as the final pair. The iterator is closed when the loop ends.
func (it *KeysIterator[K]) All() iter.Seq2[K, error] {
	return func(yield func(K, error) bool) {
		defer it.Close()
		for it.Next() {
			if !yield(it.key, nil) {
				return
			}
		}
		if it.err != nil {
			var zero K
			yield(zero, it.err)
		}
	}
}

// ColumnIterator lazily yields decoded entries of one column family.
type ColumnIterator[K, V any] struct {
	cursor
	keys   codec.Codec[K]
	values codec.Codec[V]
	entry  Entry[K, V]
}

// Next decodes the current entry and advances in the iterator's direction.
// It returns false once the range is exhausted or an error occurs, and keeps
// returning false after.
func (it *ColumnIterator[K, V]) Next() bool {
	if !it.valid() {
		return false
	}

	k, err := it.keys.Decode(it.cf.userKey(it.cur.Key()))
	if err != nil {
		it.fail(decodeError("key", it.cf.name, err))
		return false
	}
	raw, err := it.cur.Value()
	if err != nil {
		it.fail(engineError("read value", it.cf.name, err))
		return false
	}
	v, err := it.values.Decode(raw)
	if err != nil {
		it.fail(decodeError("value", it.cf.name, err))
		return false
	}

	it.entry = Entry[K, V]{Key: k, Value: v}
	it.cur.Next()
	return true
}

// Key returns the key decoded by the last successful Next.
func (it *ColumnIterator[K, V]) Key() K {
	return it.entry.Key
}

// Value returns the value decoded by the last successful Next.
func (it *ColumnIterator[K, V]) Value() V {
	return it.entry.Value
}

// Entry returns the pair decoded by the last successful Next.
func (it *ColumnIterator[K, V]) Entry() Entry[K, V] {
	return it.entry
}

// Err returns the error that stopped the iteration, if any.
func (it *ColumnIterator[K, V]) Err() error {
	return it.err
}

// Close releases the iterator. It is safe to call more than once.
func (it *ColumnIterator[K, V]) Close() error {
	it.done = true
	return it.release()
}

// All returns the entries as a range-over-func sequence. A failure is
// yielded once as the final pair. The iterator is closed when the loop ends.
func (it *ColumnIterator[K, V]) All() iter.Seq2[Entry[K, V], error] {
	return func(yield func(Entry[K, V], error) bool) {
		defer it.Close()
		for it.Next() {
			if !yield(it.entry, nil) {
				return
			}
		}
		if it.err != nil {
			yield(Entry[K, V]{}, it.err)
		}
	}
}
