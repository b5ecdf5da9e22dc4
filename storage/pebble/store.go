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

// Package pebble implements storage.Engine on top of Pebble.
package pebble

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/poiesic/typedkv/storage"
	"github.com/rs/zerolog"
)

const (
	defaultCacheSize    = 64 << 20
	defaultMemTableSize = 32 << 20
)

// Options configures a Pebble engine.
type Options struct {
	// InMemory backs the store with an in-memory filesystem.
	InMemory bool

	// SyncWrites makes every write durable before it returns.
	SyncWrites bool

	// CacheSize is the block cache size in bytes. Zero selects 64MB.
	CacheSize int64

	// Logger receives pebble's internal log output. The zero value discards it.
	Logger zerolog.Logger
}

// Store wraps a Pebble database. Pebble panics on use after close, so every
// call is guarded by the closed flag.
type Store struct {
	db         *pebble.DB
	syncWrites bool
	logger     zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

var _ storage.Engine = (*Store)(nil)

// Open opens or creates a Pebble database at path.
func Open(path string, opts Options) (*Store, error) {
	cacheSize := opts.CacheSize
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache := pebble.NewCache(cacheSize)
	defer cache.Unref()

	popts := &pebble.Options{
		Cache:        cache,
		MemTableSize: defaultMemTableSize,
		Logger:       &pebbleLogger{logger: opts.Logger},
	}
	if opts.InMemory {
		popts.FS = vfs.NewMem()
		path = ""
	}

	db, err := pebble.Open(path, popts)
	if err != nil {
		if isLockError(err) {
			return nil, fmt.Errorf("%w: %s: %w", storage.ErrLocked, path, err)
		}
		return nil, fmt.Errorf("open pebble at %s: %w", path, err)
	}

	opts.Logger.Debug().
		Str("path", path).
		Bool("in_memory", opts.InMemory).
		Bool("sync_writes", opts.SyncWrites).
		Msg("pebble engine opened")

	return &Store{db: db, syncWrites: opts.SyncWrites, logger: opts.Logger}, nil
}

func isLockError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "resource temporarily unavailable") ||
		strings.Contains(msg, "lock held")
}

func (p *Store) Get(key []byte) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, storage.ErrClosed
	}
	return get(p.db, key)
}

// MultiGet reads every key from one snapshot.
func (p *Store) MultiGet(keys [][]byte) ([][]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, storage.ErrClosed
	}

	snap := p.db.NewSnapshot()
	defer snap.Close()

	out := make([][]byte, len(keys))
	for i, key := range keys {
		val, err := get(snap, key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

// getter is satisfied by *pebble.DB and *pebble.Snapshot.
type getter interface {
	Get(key []byte) ([]byte, io.Closer, error)
}

func get(r getter, key []byte) ([]byte, error) {
	value, closer, err := r.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pebble get: %w", err)
	}
	defer closer.Close()

	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

func (p *Store) Put(key, value []byte, opts storage.WriteOptions) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return storage.ErrClosed
	}

	if err := p.db.Set(key, value, p.writeOptions(opts)); err != nil {
		return fmt.Errorf("pebble put: %w", err)
	}
	return nil
}

func (p *Store) Delete(key []byte, opts storage.WriteOptions) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return storage.ErrClosed
	}

	if err := p.db.Delete(key, p.writeOptions(opts)); err != nil {
		return fmt.Errorf("pebble delete: %w", err)
	}
	return nil
}

func (p *Store) writeOptions(opts storage.WriteOptions) *pebble.WriteOptions {
	if opts.Sync || p.syncWrites {
		return pebble.Sync
	}
	return pebble.NoSync
}

func (p *Store) NewCursor(opts storage.CursorOptions) (storage.Cursor, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, storage.ErrClosed
	}

	iterOpts := &pebble.IterOptions{
		LowerBound: opts.LowerBound,
		UpperBound: opts.UpperBound,
	}

	var (
		it  *pebble.Iterator
		err error
	)
	if opts.Snapshot != nil {
		snap, serr := p.ownSnapshot(opts.Snapshot)
		if serr != nil {
			return nil, serr
		}
		it, err = snap.snap.NewIter(iterOpts)
	} else {
		it, err = p.db.NewIter(iterOpts)
	}
	if err != nil {
		return nil, fmt.Errorf("pebble new iterator: %w", err)
	}

	return newIterator(it, opts.Reverse), nil
}

func (p *Store) NewSnapshot() (storage.Snapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, storage.ErrClosed
	}
	return &snapshot{store: p, snap: p.db.NewSnapshot()}, nil
}

func (p *Store) ownSnapshot(s storage.Snapshot) (*snapshot, error) {
	snap, ok := s.(*snapshot)
	if !ok || snap.store != p {
		return nil, storage.ErrForeignSnapshot
	}
	if snap.closed {
		return nil, storage.ErrSnapshotClosed
	}
	return snap, nil
}

// Close closes the database. Closing twice is a no-op.
func (p *Store) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.logger.Debug().Msg("pebble engine closing")
	return p.db.Close()
}

type snapshot struct {
	store  *Store
	snap   *pebble.Snapshot
	closed bool
}

func (s *snapshot) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.snap.Close()
}
