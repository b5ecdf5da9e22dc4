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
	"maps"
	"slices"
	"sync/atomic"

	"github.com/poiesic/typedkv/storage"
	"github.com/poiesic/typedkv/storage/badger"
	"github.com/poiesic/typedkv/storage/pebble"
	"github.com/rs/zerolog"
)

// DB is an open store and the handles of its column families.
// It is safe for concurrent use.
type DB struct {
	engine   storage.Engine
	families map[string]*columnFamily
	logger   zerolog.Logger
	closed   atomic.Bool
}

// Open opens the store at path, creating it and any missing column families.
// Either every descriptor is opened or Open fails and leaves nothing open.
func Open(path string, families []ColumnFamilyDescriptor, opts ...Option) (*DB, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	if err := validateDescriptors(families); err != nil {
		return nil, err
	}

	engine := o.instance
	if engine == nil {
		var err error
		engine, err = openEngine(path, o)
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %w", ErrEngine, path, err)
		}
	}

	handles, err := openFamilies(engine, families, o.logger)
	if err != nil {
		if cerr := engine.Close(); cerr != nil {
			o.logger.Error().Err(cerr).Msg("error closing engine after failed open")
		}
		return nil, err
	}

	o.logger.Info().
		Str("path", path).
		Str("engine", string(o.engine)).
		Int("families", len(handles)).
		Msg("database opened")

	return &DB{
		engine:   engine,
		families: handles,
		logger:   o.logger,
	}, nil
}

func openEngine(path string, o *options) (storage.Engine, error) {
	logger := o.logger.With().Str("engine", string(o.engine)).Logger()

	switch o.engine {
	case EnginePebble:
		s, err := pebble.Open(path, pebble.Options{
			InMemory:   o.inMemory,
			SyncWrites: o.syncWrites,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		e, err := badger.Open(path, badger.Options{
			InMemory:   o.inMemory,
			SyncWrites: o.syncWrites,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		return e, nil
	}
}

// Close closes the engine. Closing twice is a no-op.
func (db *DB) Close() error {
	if !db.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := db.engine.Close(); err != nil {
		db.logger.Error().Err(err).Msg("error closing storage engine")
		return fmt.Errorf("%w: close: %w", ErrEngine, err)
	}
	db.logger.Info().Msg("database closed")
	return nil
}

// ColumnFamilies returns the names of the open column families, sorted.
func (db *DB) ColumnFamilies() []string {
	return slices.Sorted(maps.Keys(db.families))
}

// RegisteredColumnFamilies returns the names of every column family recorded
// in the store, sorted, including families that were not opened.
func (db *DB) RegisteredColumnFamilies() ([]string, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	ids, _, err := readManifest(db.engine)
	if err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(ids)), nil
}

// family resolves the handle for name.
func (db *DB) family(name string) (*columnFamily, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	cf, ok := db.families[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnFamilyNotFound, name)
	}
	return cf, nil
}

func (db *DB) writeOptions(cf *columnFamily) storage.WriteOptions {
	return storage.WriteOptions{Sync: cf.opts.SyncWrites}
}

// Snapshot is a point-in-time view of the whole store. Pass it through
// ReadOptions to iterate without seeing later writes.
type Snapshot struct {
	db   *DB
	snap storage.Snapshot
}

// NewSnapshot captures the current state of the store.
func (db *DB) NewSnapshot() (*Snapshot, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	snap, err := db.engine.NewSnapshot()
	if err != nil {
		return nil, engineError("snapshot", "", err)
	}
	return &Snapshot{db: db, snap: snap}, nil
}

// Close releases the snapshot. It must be called before the DB is closed.
func (s *Snapshot) Close() error {
	return s.snap.Close()
}
