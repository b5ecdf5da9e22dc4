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

package storage

import "errors"

var (
	// ErrNotFound indicates that the requested key was not found.
	ErrNotFound = errors.New("key not found")

	// ErrClosed indicates that the engine is closed.
	ErrClosed = errors.New("storage is closed")

	// ErrSnapshotClosed indicates a read against a released snapshot.
	ErrSnapshotClosed = errors.New("snapshot is closed")

	// ErrForeignSnapshot indicates a snapshot created by a different engine.
	ErrForeignSnapshot = errors.New("snapshot belongs to another engine")

	// ErrLocked indicates another process holds the database directory.
	ErrLocked = errors.New("database is locked by another process")
)
