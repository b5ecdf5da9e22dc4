package storage

// Engine is an embedded, ordered key-value store.
// Keys are compared as raw bytes. Implementations must be thread-safe.
type Engine interface {
	// Get returns a copy of the value stored under key.
	// Returns ErrNotFound if the key does not exist.
	Get(key []byte) ([]byte, error)

	// MultiGet looks up all keys against a single consistent view.
	// The result has one slot per key, in order; a nil slot means the key
	// does not exist. Present values are never nil, even when empty.
	MultiGet(keys [][]byte) ([][]byte, error)

	// Put stores value under key, replacing any existing value.
	Put(key, value []byte, opts WriteOptions) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key []byte, opts WriteOptions) error

	// NewCursor returns a cursor already positioned on the first entry in
	// its direction: the smallest key for forward cursors, the largest for
	// reverse cursors.
	NewCursor(opts CursorOptions) (Cursor, error)

	// NewSnapshot captures a point-in-time view for later cursors.
	NewSnapshot() (Snapshot, error)

	// Close releases the engine. Close is idempotent.
	Close() error
}

// WriteOptions controls durability of a single write.
type WriteOptions struct {
	// Sync forces the write to stable storage before returning.
	Sync bool
}

// CursorOptions narrows and orients a cursor.
type CursorOptions struct {
	// LowerBound is the inclusive lower key bound. Nil means unbounded.
	LowerBound []byte

	// UpperBound is the exclusive upper key bound. Nil means unbounded.
	UpperBound []byte

	// Reverse walks keys in descending order.
	Reverse bool

	// KeysOnly hints that values will not be read.
	KeysOnly bool

	// Snapshot pins the cursor to an earlier view. Nil reads the latest state.
	Snapshot Snapshot
}

// Cursor walks entries in one fixed direction. A cursor is not safe for
// concurrent use and must be closed.
type Cursor interface {
	// Valid reports whether the cursor is positioned on an entry.
	Valid() bool

	// Key returns a copy of the current key.
	Key() []byte

	// Value returns a copy of the current value.
	Value() ([]byte, error)

	// Next moves to the following entry in the cursor's direction.
	Next()

	// Err returns the error, if any, that made the cursor invalid.
	Err() error

	// Close releases the cursor.
	Close() error
}

// Snapshot is a consistent point-in-time view of an engine.
type Snapshot interface {
	Close() error
}
