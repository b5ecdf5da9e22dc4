package typedkv

import (
	"testing"

	"github.com/poiesic/typedkv/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func putAll(t *testing.T, db *DB, s Schema[uint64, string], keys ...uint64) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, Put(db, s, k, s.ColumnFamily()+"-"+string(rune('a'+k%26))))
	}
}

func collectKeys[V any](t *testing.T, it *ColumnIterator[uint64, V]) []uint64 {
	t.Helper()
	var keys []uint64
	for e, err := range it.All() {
		require.NoError(t, err)
		keys = append(keys, e.Key)
	}
	return keys
}

func ptr[T any](v T) *T { return &v }

func TestIteration_Direction(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine EngineType) {
		db := openMemory(t, engine, "widgets")
		putAll(t, db, widgets, 2, 3, 1)

		fwd, err := IterWithDirection(db, widgets, ReadOptions{}, Forward)
		require.NoError(t, err)
		assert.Equal(t, []uint64{1, 2, 3}, collectKeys(t, fwd))

		rev, err := IterWithDirection(db, widgets, ReadOptions{}, Reverse)
		require.NoError(t, err)
		assert.Equal(t, []uint64{3, 2, 1}, collectKeys(t, rev))
	})
}

func TestIteration_StaysInsideFamily(t *testing.T) {
	audit := NewSchema("audit", codec.Uint64, codec.String)

	forEachEngine(t, func(t *testing.T, engine EngineType) {
		// Opened in this order, widgets sits between gadgets and audit on disk.
		db := openMemory(t, engine, "gadgets", "widgets", "audit")
		putAll(t, db, gadgets, 10, 20)
		putAll(t, db, widgets, 1, 2, 3)
		putAll(t, db, audit, 100, 200)

		for _, dir := range []Direction{Forward, Reverse} {
			t.Run(dir.String(), func(t *testing.T) {
				it, err := IterWithDirection(db, widgets, ReadOptions{}, dir)
				require.NoError(t, err)
				keys := collectKeys(t, it)
				if dir == Forward {
					assert.Equal(t, []uint64{1, 2, 3}, keys)
				} else {
					assert.Equal(t, []uint64{3, 2, 1}, keys)
				}
			})
		}

		keys, err := Keys(db, audit)
		require.NoError(t, err)
		var got []uint64
		for k, err := range keys.All() {
			require.NoError(t, err)
			got = append(got, k)
		}
		assert.Equal(t, []uint64{100, 200}, got)
	})
}

func TestIteration_Values(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine EngineType) {
		db := openMemory(t, engine, "widgets")
		require.NoError(t, Put(db, widgets, 1, "one"))
		require.NoError(t, Put(db, widgets, 2, "two"))

		it, err := Iter(db, widgets)
		require.NoError(t, err)
		defer it.Close()

		require.True(t, it.Next())
		assert.Equal(t, uint64(1), it.Key())
		assert.Equal(t, "one", it.Value())
		require.True(t, it.Next())
		assert.Equal(t, Entry[uint64, string]{Key: 2, Value: "two"}, it.Entry())
		assert.False(t, it.Next())
		assert.NoError(t, it.Err())
	})
}

func TestIteration_EmptyFamily(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine EngineType) {
		db := openMemory(t, engine, "widgets", "gadgets")
		putAll(t, db, gadgets, 1)

		for _, dir := range []Direction{Forward, Reverse} {
			it, err := IterWithDirection(db, widgets, ReadOptions{}, dir)
			require.NoError(t, err)
			assert.False(t, it.Next())
			assert.NoError(t, it.Err())
			require.NoError(t, it.Close())
		}
	})
}

func TestIteration_NotRestartable(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine EngineType) {
		db := openMemory(t, engine, "widgets")
		putAll(t, db, widgets, 1, 2)

		it, err := Keys(db, widgets)
		require.NoError(t, err)

		var first []uint64
		for it.Next() {
			first = append(first, it.Key())
		}
		assert.Equal(t, []uint64{1, 2}, first)

		putAll(t, db, widgets, 3)
		assert.False(t, it.Next())
		assert.False(t, it.Next())
		require.NoError(t, it.Close())
		require.NoError(t, it.Close())
	})
}

func TestIteration_Bounds(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine EngineType) {
		db := openMemory(t, engine, "widgets", "gadgets")
		putAll(t, db, widgets, 1, 2, 3, 4, 5)
		putAll(t, db, gadgets, 1, 2, 3, 4, 5)

		tests := []struct {
			name         string
			lower, upper *uint64
			dir          Direction
			want         []uint64
		}{
			{"open", nil, nil, Forward, []uint64{1, 2, 3, 4, 5}},
			{"lower inclusive", ptr[uint64](3), nil, Forward, []uint64{3, 4, 5}},
			{"upper exclusive", nil, ptr[uint64](3), Forward, []uint64{1, 2}},
			{"both", ptr[uint64](2), ptr[uint64](4), Forward, []uint64{2, 3}},
			{"reverse lower inclusive", ptr[uint64](3), nil, Reverse, []uint64{5, 4, 3}},
			{"reverse upper exclusive", nil, ptr[uint64](3), Reverse, []uint64{2, 1}},
			{"reverse both", ptr[uint64](2), ptr[uint64](4), Reverse, []uint64{3, 2}},
			{"empty range", ptr[uint64](4), ptr[uint64](4), Forward, nil},
			{"past the end", ptr[uint64](9), nil, Reverse, nil},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				opts, err := Bounds(widgets, tt.lower, tt.upper)
				require.NoError(t, err)

				it, err := IterWithDirection(db, widgets, opts, tt.dir)
				require.NoError(t, err)
				assert.Equal(t, tt.want, collectKeys(t, it))
			})
		}
	})
}

func TestBounds_EncodeFailure(t *testing.T) {
	byName := NewSchema("names", codec.String, codec.String)

	_, err := Bounds(byName, ptr(string([]byte{0xff})), nil)
	assert.ErrorIs(t, err, ErrEncode)

	_, err = Bounds(byName, nil, ptr(string([]byte{0xff})))
	assert.ErrorIs(t, err, ErrEncode)
}

func TestIteration_Snapshot(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine EngineType) {
		db := openMemory(t, engine, "widgets")
		putAll(t, db, widgets, 1, 2)

		snap, err := db.NewSnapshot()
		require.NoError(t, err)
		defer snap.Close()

		putAll(t, db, widgets, 3)
		require.NoError(t, Delete(db, widgets, 1))

		it, err := IterWithDirection(db, widgets, ReadOptions{Snapshot: snap}, Forward)
		require.NoError(t, err)
		assert.Equal(t, []uint64{1, 2}, collectKeys(t, it))

		it, err = Iter(db, widgets)
		require.NoError(t, err)
		assert.Equal(t, []uint64{2, 3}, collectKeys(t, it))
	})
}

func TestIteration_ForeignSnapshot(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine EngineType) {
		a := openMemory(t, engine, "widgets")
		b := openMemory(t, engine, "widgets")

		snap, err := a.NewSnapshot()
		require.NoError(t, err)
		defer snap.Close()

		_, err = IterWithDirection(b, widgets, ReadOptions{Snapshot: snap}, Forward)
		assert.ErrorIs(t, err, ErrEngine)
	})
}

func TestIteration_DecodeFailureIsTerminal(t *testing.T) {
	counters := NewSchema("widgets", codec.Uint64, codec.Uint64)

	forEachEngine(t, func(t *testing.T, engine EngineType) {
		db := openMemory(t, engine, "widgets")
		require.NoError(t, Put(db, counters, 1, 10))
		require.NoError(t, Put(db, rawWidgets, 2, []byte("bad")))
		require.NoError(t, Put(db, counters, 3, 30))

		t.Run("All yields the error last", func(t *testing.T) {
			it, err := Iter(db, counters)
			require.NoError(t, err)

			var entries []Entry[uint64, uint64]
			var errs []error
			for e, err := range it.All() {
				if err != nil {
					errs = append(errs, err)
					continue
				}
				entries = append(entries, e)
			}

			assert.Equal(t, []Entry[uint64, uint64]{{Key: 1, Value: 10}}, entries)
			require.Len(t, errs, 1)
			assert.ErrorIs(t, errs[0], ErrDecode)
			assert.ErrorIs(t, errs[0], codec.ErrInvalidLength)
		})

		t.Run("Next stops and stays stopped", func(t *testing.T) {
			it, err := IterWithDirection(db, counters, ReadOptions{}, Reverse)
			require.NoError(t, err)
			defer it.Close()

			require.True(t, it.Next())
			assert.Equal(t, uint64(3), it.Key())
			assert.False(t, it.Next())
			assert.ErrorIs(t, it.Err(), ErrDecode)
			assert.False(t, it.Next())
		})

		t.Run("keys still decode", func(t *testing.T) {
			it, err := Keys(db, counters)
			require.NoError(t, err)
			var keys []uint64
			for k, err := range it.All() {
				require.NoError(t, err)
				keys = append(keys, k)
			}
			assert.Equal(t, []uint64{1, 2, 3}, keys)
		})
	})
}

func TestKeys_DecodeFailure(t *testing.T) {
	shortKeys := NewSchema("widgets", codec.Bytes, codec.String)

	forEachEngine(t, func(t *testing.T, engine EngineType) {
		db := openMemory(t, engine, "widgets")
		putAll(t, db, widgets, 1)
		require.NoError(t, Put(db, shortKeys, []byte{0xff}, "odd"))

		it, err := Keys(db, widgets)
		require.NoError(t, err)

		var keys []uint64
		var last error
		for k, err := range it.All() {
			if err != nil {
				last = err
				break
			}
			keys = append(keys, k)
		}
		assert.Equal(t, []uint64{1}, keys)
		assert.ErrorIs(t, last, ErrDecode)
	})
}

func TestAll_EarlyBreakCloses(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine EngineType) {
		db := openMemory(t, engine, "widgets")
		putAll(t, db, widgets, 1, 2, 3)

		it, err := Iter(db, widgets)
		require.NoError(t, err)
		for e, err := range it.All() {
			require.NoError(t, err)
			if e.Key == 2 {
				break
			}
		}
		assert.False(t, it.Next())
		assert.NoError(t, it.Err())
	})
}

func TestIterWithDirection_UnknownDirection(t *testing.T) {
	db := openMemory(t, EngineBadger, "widgets")
	_, err := IterWithDirection(db, widgets, ReadOptions{}, Direction(7))
	assert.ErrorIs(t, err, ErrInvalidDirection)
	assert.ErrorContains(t, err, "Direction(7)")
}
