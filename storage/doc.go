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

// Package storage defines the contract between typedkv and the embedded
// ordered key-value engine underneath it.
//
// An Engine works purely on raw bytes: point reads and writes, a batched
// multi-get, directional cursors with optional bounds, and read snapshots.
// It knows nothing about column families or codecs; typedkv partitions the
// keyspace and handles encoding above this layer.
//
// # Implementations
//
//   - storage/badger: BadgerDB, the default engine
//   - storage/pebble: Pebble
//
// Both support an in-memory mode for tests:
//
//	engine, err := badger.Open("", badger.Options{InMemory: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
// The storagetest subpackage holds a conformance suite every implementation
// is expected to pass.
//
// # Thread Safety
//
// Engine implementations must be safe for concurrent use by multiple
// goroutines. Cursors and snapshots are not, and must be closed by their
// owner before the engine is closed.
package storage
