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

// Package checkpoint records how far each background processor has got,
// so processing can resume after a restart.
package checkpoint

import (
	"errors"
	"time"

	"github.com/poiesic/typedkv"
	"github.com/poiesic/typedkv/codec"
)

// ColumnFamily holds one checkpoint per processor type.
const ColumnFamily = "checkpoints"

// ErrProcessorTypeRequired is returned when a checkpoint has no processor type.
var ErrProcessorTypeRequired = errors.New("processor type required")

// Checkpoint is the last record a processor finished.
type Checkpoint struct {
	ProcessorType string
	LastID        uint64
	UpdatedAt     time.Time
}

// Schema maps processor type to checkpoint. Values are checksummed so a torn
// or corrupted record is reported instead of resuming from a bogus position.
var Schema = typedkv.NewSchema(
	ColumnFamily,
	codec.String,
	codec.Checksummed(codec.MUS[Checkpoint](CheckpointMUS), codec.XXH3),
)

// ColumnFamilies lists the families this package needs registered at Open.
func ColumnFamilies() []typedkv.ColumnFamilyDescriptor {
	return []typedkv.ColumnFamilyDescriptor{
		{Name: ColumnFamily, Options: typedkv.ColumnFamilyOptions{SyncWrites: true}},
	}
}
