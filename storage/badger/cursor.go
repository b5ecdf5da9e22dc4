package badger

import (
	"bytes"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/typedkv/storage"
)

// cursor bounds a badger iterator by hand. Prefix iteration cannot be used
// because a reverse walk has to start at the upper bound, not the prefix.
type cursor struct {
	txn     *badger.Txn
	ownsTxn bool
	it      *badger.Iterator

	lower   []byte
	upper   []byte
	reverse bool
}

var _ storage.Cursor = (*cursor)(nil)

func newCursor(txn *badger.Txn, ownsTxn bool, opts storage.CursorOptions) *cursor {
	iopts := badger.DefaultIteratorOptions
	iopts.PrefetchValues = !opts.KeysOnly
	iopts.Reverse = opts.Reverse

	c := &cursor{
		txn:     txn,
		ownsTxn: ownsTxn,
		it:      txn.NewIterator(iopts),
		lower:   opts.LowerBound,
		upper:   opts.UpperBound,
		reverse: opts.Reverse,
	}
	c.rewind()
	return c
}

func (c *cursor) rewind() {
	if !c.reverse {
		if c.lower != nil {
			c.it.Seek(c.lower)
		} else {
			c.it.Rewind()
		}
		return
	}

	if c.upper == nil {
		c.it.Rewind()
		return
	}
	// Reverse seek lands on the largest key <= upper; upper is exclusive.
	c.it.Seek(c.upper)
	if c.it.Valid() && bytes.Equal(c.it.Item().Key(), c.upper) {
		c.it.Next()
	}
}

func (c *cursor) Valid() bool {
	if !c.it.Valid() {
		return false
	}
	key := c.it.Item().Key()
	if c.reverse {
		return c.lower == nil || bytes.Compare(key, c.lower) >= 0
	}
	return c.upper == nil || bytes.Compare(key, c.upper) < 0
}

func (c *cursor) Key() []byte {
	return c.it.Item().KeyCopy(nil)
}

func (c *cursor) Value() ([]byte, error) {
	val, err := c.it.Item().ValueCopy(nil)
	if err != nil {
		return nil, mapError("cursor value", err)
	}
	if val == nil {
		val = []byte{}
	}
	return val, nil
}

func (c *cursor) Next() {
	c.it.Next()
}

// Err is always nil; badger reports read failures from Value.
func (c *cursor) Err() error {
	return nil
}

func (c *cursor) Close() error {
	c.it.Close()
	if c.ownsTxn {
		c.txn.Discard()
	}
	return nil
}
