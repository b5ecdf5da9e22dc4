package typedkv

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/poiesic/typedkv/codec"
	"github.com/poiesic/typedkv/storage"
	"github.com/poiesic/typedkv/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	widgets = NewSchema("widgets", codec.Uint64, codec.String)
	gadgets = NewSchema("gadgets", codec.Uint64, codec.String)
	// rawWidgets shares the widgets family but bypasses value decoding.
	rawWidgets = NewSchema("widgets", codec.Uint64, codec.Bytes)
	unknown    = NewSchema("unregistered", codec.Uint64, codec.String)
)

var engines = []EngineType{EngineBadger, EnginePebble}

func descriptors(names ...string) []ColumnFamilyDescriptor {
	descs := make([]ColumnFamilyDescriptor, len(names))
	for i, name := range names {
		descs[i] = ColumnFamilyDescriptor{Name: name}
	}
	return descs
}

func openMemory(t *testing.T, engine EngineType, names ...string) *DB {
	t.Helper()
	db, err := Open("", descriptors(names...), WithEngine(engine), WithInMemory())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// forEachEngine runs fn once per supported engine.
func forEachEngine(t *testing.T, fn func(t *testing.T, engine EngineType)) {
	for _, engine := range engines {
		t.Run(string(engine), func(t *testing.T) {
			fn(t, engine)
		})
	}
}

func TestOpen(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine EngineType) {
		t.Run("creates store on disk", func(t *testing.T) {
			db, err := Open(t.TempDir()+"/store", descriptors("widgets"), WithEngine(engine))
			require.NoError(t, err)
			defer db.Close()

			assert.Equal(t, []string{"widgets"}, db.ColumnFamilies())
		})

		t.Run("no families", func(t *testing.T) {
			db := openMemory(t, engine)
			assert.Empty(t, db.ColumnFamilies())
		})

		t.Run("families sorted", func(t *testing.T) {
			db := openMemory(t, engine, "widgets", "gadgets", "audit")
			assert.Equal(t, []string{"audit", "gadgets", "widgets"}, db.ColumnFamilies())
		})
	})
}

func TestOpen_InvalidDescriptors(t *testing.T) {
	tests := []struct {
		name  string
		descs []ColumnFamilyDescriptor
	}{
		{"empty name", descriptors("widgets", "")},
		{"duplicate", descriptors("widgets", "gadgets", "widgets")},
		{"too long", descriptors(strings.Repeat("x", MaxColumnFamilyNameLen+1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := Open("", tt.descs, WithInMemory())
			assert.ErrorIs(t, err, ErrInvalidColumnFamily)
			assert.Nil(t, db)
		})
	}

	t.Run("longest name accepted", func(t *testing.T) {
		db, err := Open("", descriptors(strings.Repeat("x", MaxColumnFamilyNameLen)), WithInMemory())
		require.NoError(t, err)
		db.Close()
	})
}

func TestOpen_UnknownEngine(t *testing.T) {
	db, err := Open("", descriptors("widgets"), WithEngine("rocksdb"), WithInMemory())
	assert.ErrorIs(t, err, ErrUnknownEngine)
	assert.Nil(t, db)
}

func TestOpen_PathIsFile(t *testing.T) {
	path := t.TempDir() + "/not_a_dir"
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	db, err := Open(path, descriptors("widgets"))
	assert.ErrorIs(t, err, ErrEngine)
	assert.Nil(t, db)
}

func TestOpen_Locked(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine EngineType) {
		dir := t.TempDir()
		first, err := Open(dir, descriptors("widgets"), WithEngine(engine))
		require.NoError(t, err)
		defer first.Close()

		_, err = Open(dir, descriptors("widgets"), WithEngine(engine))
		assert.ErrorIs(t, err, ErrEngine)
		assert.ErrorIs(t, err, storage.ErrLocked)
	})
}

func TestOpen_WithEngineInstance(t *testing.T) {
	engine, err := badger.Open("", badger.Options{InMemory: true})
	require.NoError(t, err)

	db, err := Open("ignored", descriptors("widgets"), WithEngineInstance(engine), WithEngine("ignored too"))
	require.NoError(t, err)

	require.NoError(t, Put(db, widgets, 1, "one"))
	v, ok, err := Get(db, widgets, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "one", v)

	require.NoError(t, db.Close())
	assert.True(t, engine.IsClosed())
}

func TestReopen_KeepsFamilies(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine EngineType) {
		dir := t.TempDir()

		db, err := Open(dir, descriptors("widgets", "gadgets"), WithEngine(engine))
		require.NoError(t, err)
		require.NoError(t, Put(db, widgets, 1, "widget"))
		require.NoError(t, Put(db, gadgets, 1, "gadget"))
		require.NoError(t, db.Close())

		// Different order plus a new family must not remap existing ids.
		db, err = Open(dir, descriptors("audit", "gadgets", "widgets"), WithEngine(engine))
		require.NoError(t, err)
		defer db.Close()

		assert.Equal(t, uint32(1), db.families["widgets"].id)
		assert.Equal(t, uint32(2), db.families["gadgets"].id)
		assert.Equal(t, uint32(3), db.families["audit"].id)

		v, ok, err := Get(db, widgets, 1)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "widget", v)

		v, ok, err = Get(db, gadgets, 1)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "gadget", v)
	})
}

func TestReopen_UnopenedFamilyKeepsData(t *testing.T) {
	dir := t.TempDir()

	db, err := Open(dir, descriptors("widgets", "gadgets"))
	require.NoError(t, err)
	require.NoError(t, Put(db, gadgets, 9, "kept"))
	require.NoError(t, db.Close())

	db, err = Open(dir, descriptors("widgets"))
	require.NoError(t, err)
	_, _, err = Get(db, gadgets, 9)
	assert.ErrorIs(t, err, ErrColumnFamilyNotFound)
	assert.Equal(t, []string{"widgets"}, db.ColumnFamilies())
	registered, err := db.RegisteredColumnFamilies()
	require.NoError(t, err)
	assert.Equal(t, []string{"gadgets", "widgets"}, registered)
	require.NoError(t, db.Close())

	_, err = db.RegisteredColumnFamilies()
	assert.ErrorIs(t, err, ErrClosed)

	db, err = Open(dir, descriptors("gadgets"))
	require.NoError(t, err)
	defer db.Close()
	v, ok, err := Get(db, gadgets, 9)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "kept", v)
}

func TestClose(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine EngineType) {
		db, err := Open("", descriptors("widgets"), WithEngine(engine), WithInMemory())
		require.NoError(t, err)
		require.NoError(t, Put(db, widgets, 1, "one"))

		require.NoError(t, db.Close())
		require.NoError(t, db.Close())

		_, _, err = Get(db, widgets, 1)
		assert.ErrorIs(t, err, ErrClosed)
		_, err = Has(db, widgets, 1)
		assert.ErrorIs(t, err, ErrClosed)
		_, err = MultiGet(db, widgets, []uint64{1})
		assert.ErrorIs(t, err, ErrClosed)
		assert.ErrorIs(t, Put(db, widgets, 1, "x"), ErrClosed)
		assert.ErrorIs(t, Delete(db, widgets, 1), ErrClosed)
		_, err = Keys(db, widgets)
		assert.ErrorIs(t, err, ErrClosed)
		_, err = Iter(db, widgets)
		assert.ErrorIs(t, err, ErrClosed)
		_, err = db.NewSnapshot()
		assert.ErrorIs(t, err, ErrClosed)
	})
}

func TestConcurrentAccess(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine EngineType) {
		db := openMemory(t, engine, "widgets")

		const workers, perWorker = 8, 50
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					key := uint64(w*perWorker + i)
					assert.NoError(t, Put(db, widgets, key, fmt.Sprintf("w%d-%d", w, i)))
					_, ok, err := Get(db, widgets, key)
					assert.NoError(t, err)
					assert.True(t, ok)
				}
			}(w)
		}
		wg.Wait()

		keys, err := Keys(db, widgets)
		require.NoError(t, err)
		count := 0
		for _, err := range keys.All() {
			require.NoError(t, err)
			count++
		}
		assert.Equal(t, workers*perWorker, count)
	})
}
