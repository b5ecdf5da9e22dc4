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

// Package storagetest provides a conformance suite for storage.Engine
// implementations.
package storagetest

import (
	"fmt"
	"testing"

	"github.com/poiesic/typedkv/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory opens a fresh, empty engine. The suite closes it.
type Factory func(t *testing.T) storage.Engine

// Run exercises every storage.Engine behavior typedkv depends on.
func Run(t *testing.T, open Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, e storage.Engine)
	}{
		{"GetMissing", testGetMissing},
		{"PutGet", testPutGet},
		{"Overwrite", testOverwrite},
		{"EmptyValue", testEmptyValue},
		{"Delete", testDelete},
		{"ReturnsCopies", testReturnsCopies},
		{"MultiGet", testMultiGet},
		{"CursorForward", testCursorForward},
		{"CursorReverse", testCursorReverse},
		{"CursorBounds", testCursorBounds},
		{"CursorReverseUpperExclusive", testCursorReverseUpperExclusive},
		{"CursorEmptyRange", testCursorEmptyRange},
		{"CursorKeysOnly", testCursorKeysOnly},
		{"Snapshot", testSnapshot},
		{"SnapshotClosed", testSnapshotClosed},
		{"SyncWrite", testSyncWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := open(t)
			defer e.Close()
			tt.fn(t, e)
		})
	}

	t.Run("ForeignSnapshot", func(t *testing.T) {
		a, b := open(t), open(t)
		defer a.Close()
		defer b.Close()

		snap, err := a.NewSnapshot()
		require.NoError(t, err)
		defer snap.Close()

		_, err = b.NewCursor(storage.CursorOptions{Snapshot: snap})
		assert.ErrorIs(t, err, storage.ErrForeignSnapshot)
	})

	t.Run("Close", func(t *testing.T) {
		e := open(t)
		require.NoError(t, e.Close())
		require.NoError(t, e.Close(), "close must be idempotent")

		_, err := e.Get([]byte("k"))
		assert.ErrorIs(t, err, storage.ErrClosed)
		_, err = e.MultiGet([][]byte{[]byte("k")})
		assert.ErrorIs(t, err, storage.ErrClosed)
		assert.ErrorIs(t, e.Put([]byte("k"), []byte("v"), storage.WriteOptions{}), storage.ErrClosed)
		assert.ErrorIs(t, e.Delete([]byte("k"), storage.WriteOptions{}), storage.ErrClosed)
		_, err = e.NewCursor(storage.CursorOptions{})
		assert.ErrorIs(t, err, storage.ErrClosed)
		_, err = e.NewSnapshot()
		assert.ErrorIs(t, err, storage.ErrClosed)
	})
}

func put(t *testing.T, e storage.Engine, kv ...string) {
	t.Helper()
	require.Zero(t, len(kv)%2)
	for i := 0; i < len(kv); i += 2 {
		require.NoError(t, e.Put([]byte(kv[i]), []byte(kv[i+1]), storage.WriteOptions{}))
	}
}

// drain collects keys and values until the cursor is exhausted.
func drain(t *testing.T, c storage.Cursor, withValues bool) []string {
	t.Helper()
	defer c.Close()

	var out []string
	for ; c.Valid(); c.Next() {
		entry := string(c.Key())
		if withValues {
			v, err := c.Value()
			require.NoError(t, err)
			entry = fmt.Sprintf("%s=%s", entry, v)
		}
		out = append(out, entry)
	}
	require.NoError(t, c.Err())
	return out
}

func testGetMissing(t *testing.T, e storage.Engine) {
	_, err := e.Get([]byte("missing"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testPutGet(t *testing.T, e storage.Engine) {
	put(t, e, "alpha", "1")

	v, err := e.Get([]byte("alpha"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)
}

func testOverwrite(t *testing.T, e storage.Engine) {
	put(t, e, "k", "first", "k", "second")

	v, err := e.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), v)
}

func testEmptyValue(t *testing.T, e storage.Engine) {
	require.NoError(t, e.Put([]byte("empty"), []byte{}, storage.WriteOptions{}))

	v, err := e.Get([]byte("empty"))
	require.NoError(t, err)
	assert.NotNil(t, v)
	assert.Empty(t, v)

	vals, err := e.MultiGet([][]byte{[]byte("empty")})
	require.NoError(t, err)
	require.Len(t, vals, 1)
	assert.NotNil(t, vals[0])

	c, err := e.NewCursor(storage.CursorOptions{})
	require.NoError(t, err)
	defer c.Close()
	require.True(t, c.Valid())
	cv, err := c.Value()
	require.NoError(t, err)
	assert.NotNil(t, cv)
	assert.Empty(t, cv)
}

func testDelete(t *testing.T, e storage.Engine) {
	put(t, e, "k", "v")
	require.NoError(t, e.Delete([]byte("k"), storage.WriteOptions{}))

	_, err := e.Get([]byte("k"))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.NoError(t, e.Delete([]byte("never-existed"), storage.WriteOptions{}))
}

func testReturnsCopies(t *testing.T, e storage.Engine) {
	put(t, e, "k", "value")

	v, err := e.Get([]byte("k"))
	require.NoError(t, err)
	v[0] = 'X'

	again, err := e.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), again)

	c, err := e.NewCursor(storage.CursorOptions{})
	require.NoError(t, err)
	defer c.Close()
	require.True(t, c.Valid())
	key := c.Key()
	c.Next()
	assert.Equal(t, []byte("k"), key)
}

func testMultiGet(t *testing.T, e storage.Engine) {
	put(t, e, "a", "1", "c", "3")

	vals, err := e.MultiGet([][]byte{[]byte("c"), []byte("b"), []byte("a"), []byte("c")})
	require.NoError(t, err)
	require.Len(t, vals, 4)
	assert.Equal(t, []byte("3"), vals[0])
	assert.Nil(t, vals[1])
	assert.Equal(t, []byte("1"), vals[2])
	assert.Equal(t, []byte("3"), vals[3])

	vals, err = e.MultiGet(nil)
	require.NoError(t, err)
	assert.Empty(t, vals)
}

func testCursorForward(t *testing.T, e storage.Engine) {
	put(t, e, "b", "2", "a", "1", "c", "3")

	c, err := e.NewCursor(storage.CursorOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a=1", "b=2", "c=3"}, drain(t, c, true))
}

func testCursorReverse(t *testing.T, e storage.Engine) {
	put(t, e, "b", "2", "a", "1", "c", "3")

	c, err := e.NewCursor(storage.CursorOptions{Reverse: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"c=3", "b=2", "a=1"}, drain(t, c, true))
}

func testCursorBounds(t *testing.T, e storage.Engine) {
	put(t, e, "a", "", "b", "", "c", "", "d", "", "e", "")

	tests := []struct {
		name string
		opts storage.CursorOptions
		want []string
	}{
		{"lower only", storage.CursorOptions{LowerBound: []byte("c")}, []string{"c", "d", "e"}},
		{"upper only", storage.CursorOptions{UpperBound: []byte("c")}, []string{"a", "b"}},
		{"both", storage.CursorOptions{LowerBound: []byte("b"), UpperBound: []byte("d")}, []string{"b", "c"}},
		{"between keys", storage.CursorOptions{LowerBound: []byte("bb"), UpperBound: []byte("dd")}, []string{"c", "d"}},
		{"reverse lower only", storage.CursorOptions{LowerBound: []byte("c"), Reverse: true}, []string{"e", "d", "c"}},
		{"reverse both", storage.CursorOptions{LowerBound: []byte("b"), UpperBound: []byte("d"), Reverse: true}, []string{"c", "b"}},
		{"reverse between keys", storage.CursorOptions{LowerBound: []byte("bb"), UpperBound: []byte("dd"), Reverse: true}, []string{"d", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := e.NewCursor(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, drain(t, c, false))
		})
	}
}

func testCursorReverseUpperExclusive(t *testing.T, e storage.Engine) {
	put(t, e, "a", "", "b", "", "c", "")

	c, err := e.NewCursor(storage.CursorOptions{UpperBound: []byte("c"), Reverse: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, drain(t, c, false))

	c, err = e.NewCursor(storage.CursorOptions{UpperBound: []byte("z"), Reverse: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, drain(t, c, false))
}

func testCursorEmptyRange(t *testing.T, e storage.Engine) {
	c, err := e.NewCursor(storage.CursorOptions{})
	require.NoError(t, err)
	assert.Empty(t, drain(t, c, false))

	put(t, e, "a", "1", "z", "26")

	for _, reverse := range []bool{false, true} {
		c, err := e.NewCursor(storage.CursorOptions{
			LowerBound: []byte("m"),
			UpperBound: []byte("n"),
			Reverse:    reverse,
		})
		require.NoError(t, err)
		assert.Empty(t, drain(t, c, false))
	}
}

func testCursorKeysOnly(t *testing.T, e storage.Engine) {
	put(t, e, "a", "1", "b", "2")

	c, err := e.NewCursor(storage.CursorOptions{KeysOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, drain(t, c, false))
}

func testSnapshot(t *testing.T, e storage.Engine) {
	put(t, e, "a", "old", "b", "old")

	snap, err := e.NewSnapshot()
	require.NoError(t, err)
	defer snap.Close()

	put(t, e, "a", "new", "c", "new")
	require.NoError(t, e.Delete([]byte("b"), storage.WriteOptions{}))

	c, err := e.NewCursor(storage.CursorOptions{Snapshot: snap})
	require.NoError(t, err)
	assert.Equal(t, []string{"a=old", "b=old"}, drain(t, c, true))

	c, err = e.NewCursor(storage.CursorOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a=new", "c=new"}, drain(t, c, true))
}

func testSnapshotClosed(t *testing.T, e storage.Engine) {
	snap, err := e.NewSnapshot()
	require.NoError(t, err)
	require.NoError(t, snap.Close())
	require.NoError(t, snap.Close())

	_, err = e.NewCursor(storage.CursorOptions{Snapshot: snap})
	assert.ErrorIs(t, err, storage.ErrSnapshotClosed)
}

func testSyncWrite(t *testing.T, e storage.Engine) {
	require.NoError(t, e.Put([]byte("durable"), []byte("yes"), storage.WriteOptions{Sync: true}))

	v, err := e.Get([]byte("durable"))
	require.NoError(t, err)
	assert.Equal(t, []byte("yes"), v)

	require.NoError(t, e.Delete([]byte("durable"), storage.WriteOptions{Sync: true}))
	_, err = e.Get([]byte("durable"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
