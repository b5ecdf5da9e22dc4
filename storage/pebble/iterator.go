package pebble

import (
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/poiesic/typedkv/storage"
)

// Iterator adapts a bounded pebble.Iterator to storage.Cursor.
type Iterator struct {
	iter    *pebble.Iterator
	reverse bool
}

var _ storage.Cursor = (*Iterator)(nil)

func newIterator(iter *pebble.Iterator, reverse bool) *Iterator {
	if reverse {
		iter.Last()
	} else {
		iter.First()
	}
	return &Iterator{iter: iter, reverse: reverse}
}

func (it *Iterator) Valid() bool {
	return it.iter.Valid()
}

func (it *Iterator) Key() []byte {
	key := it.iter.Key()
	result := make([]byte, len(key))
	copy(result, key)
	return result
}

func (it *Iterator) Value() ([]byte, error) {
	val, err := it.iter.ValueAndErr()
	if err != nil {
		return nil, fmt.Errorf("pebble iterator value: %w", err)
	}

	result := make([]byte, len(val))
	copy(result, val)
	return result, nil
}

func (it *Iterator) Next() {
	if it.reverse {
		it.iter.Prev()
	} else {
		it.iter.Next()
	}
}

func (it *Iterator) Err() error {
	if err := it.iter.Error(); err != nil {
		return fmt.Errorf("pebble iterator: %w", err)
	}
	return nil
}

func (it *Iterator) Close() error {
	return it.iter.Close()
}
