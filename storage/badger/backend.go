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

// Package badger implements storage.Engine on top of BadgerDB.
package badger

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/typedkv/storage"
	"github.com/rs/zerolog"
)

// Options configures a BadgerDB engine.
type Options struct {
	// InMemory keeps all data in memory. The path is ignored.
	InMemory bool

	// SyncWrites makes every write durable before it returns.
	SyncWrites bool

	// Compression is the block compression badger applies to its tables.
	Compression options.CompressionType

	// Logger receives badger's internal log output. The zero value discards it.
	Logger zerolog.Logger
}

// Engine wraps a BadgerDB instance.
type Engine struct {
	db         *badger.DB
	syncWrites bool
	inMemory   bool
	logger     zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

var _ storage.Engine = (*Engine)(nil)

// Open opens a BadgerDB database at the specified path.
// Creates the directory if it doesn't exist.
func Open(filePath string, opts Options) (*Engine, error) {
	var bopts badger.Options

	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := ensureDir(filePath); err != nil {
			return nil, err
		}
		bopts = badger.DefaultOptions(filePath)
	}

	bopts = bopts.
		WithSyncWrites(opts.SyncWrites).
		WithCompression(opts.Compression).
		WithLogger(&badgerLogger{logger: opts.Logger})

	db, err := badger.Open(bopts)
	if err != nil {
		if isLockError(err) {
			return nil, fmt.Errorf("%w: %s: %w", storage.ErrLocked, filePath, err)
		}
		return nil, fmt.Errorf("open badger at %s: %w", filePath, err)
	}

	opts.Logger.Debug().
		Str("path", filePath).
		Bool("in_memory", opts.InMemory).
		Bool("sync_writes", opts.SyncWrites).
		Msg("badger engine opened")

	return &Engine{
		db:         db,
		syncWrites: opts.SyncWrites,
		inMemory:   opts.InMemory,
		logger:     opts.Logger,
	}, nil
}

func ensureDir(filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err := os.MkdirAll(filePath, 0755); err != nil {
			return err
		}
		if info, err = os.Stat(filePath); err != nil {
			return err
		}
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filePath)
	}
	return nil
}

func isLockError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Cannot acquire directory lock") ||
		strings.Contains(msg, "resource temporarily unavailable")
}

// Get returns a copy of the value stored under key.
func (e *Engine) Get(key []byte) ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, storage.ErrClosed
	}

	var val []byte
	err := e.db.View(func(txn *badger.Txn) error {
		var err error
		val, err = getCopy(txn, key)
		return err
	})
	if err != nil {
		return nil, mapError("get", err)
	}
	return val, nil
}

// MultiGet reads every key inside one read transaction.
func (e *Engine) MultiGet(keys [][]byte) ([][]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, storage.ErrClosed
	}

	out := make([][]byte, len(keys))
	err := e.db.View(func(txn *badger.Txn) error {
		for i, key := range keys {
			val, err := getCopy(txn, key)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			out[i] = val
		}
		return nil
	})
	if err != nil {
		return nil, mapError("multi get", err)
	}
	return out, nil
}

// getCopy never returns a nil slice for a present key.
func getCopy(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	if val == nil {
		val = []byte{}
	}
	return val, nil
}

// Put stores value under key.
func (e *Engine) Put(key, value []byte, opts storage.WriteOptions) error {
	return e.write("put", opts, func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Delete removes key.
func (e *Engine) Delete(key []byte, opts storage.WriteOptions) error {
	return e.write("delete", opts, func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (e *Engine) write(op string, opts storage.WriteOptions, fn func(txn *badger.Txn) error) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return storage.ErrClosed
	}

	if err := e.db.Update(fn); err != nil {
		return mapError(op, err)
	}
	// SyncWrites already fsyncs every commit; in-memory stores have no files.
	if opts.Sync && !e.syncWrites && !e.inMemory {
		if err := e.db.Sync(); err != nil {
			return mapError(op, err)
		}
	}
	return nil
}

// NewCursor opens a cursor. Without a snapshot it reads through a private
// read transaction that lives as long as the cursor.
func (e *Engine) NewCursor(opts storage.CursorOptions) (storage.Cursor, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, storage.ErrClosed
	}

	if opts.Snapshot != nil {
		snap, err := e.ownSnapshot(opts.Snapshot)
		if err != nil {
			return nil, err
		}
		return newCursor(snap.txn, false, opts), nil
	}
	return newCursor(e.db.NewTransaction(false), true, opts), nil
}

// NewSnapshot pins a read transaction.
func (e *Engine) NewSnapshot() (storage.Snapshot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, storage.ErrClosed
	}
	return &snapshot{engine: e, txn: e.db.NewTransaction(false)}, nil
}

func (e *Engine) ownSnapshot(s storage.Snapshot) (*snapshot, error) {
	snap, ok := s.(*snapshot)
	if !ok || snap.engine != e {
		return nil, storage.ErrForeignSnapshot
	}
	if snap.closed {
		return nil, storage.ErrSnapshotClosed
	}
	return snap, nil
}

// Close closes the BadgerDB database. Closing twice is a no-op.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.logger.Debug().Msg("badger engine closing")
	return e.db.Close()
}

// IsClosed returns true if the database is closed.
func (e *Engine) IsClosed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.closed
}

type snapshot struct {
	engine *Engine
	txn    *badger.Txn
	closed bool
}

func (s *snapshot) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.txn.Discard()
	return nil
}

func mapError(op string, err error) error {
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return storage.ErrNotFound
	case errors.Is(err, badger.ErrDBClosed):
		return storage.ErrClosed
	default:
		return fmt.Errorf("badger %s: %w", op, err)
	}
}
