package checkpoint

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/typedkv"
)

// Store persists checkpoints in a typedkv database opened with
// ColumnFamilies.
type Store struct {
	db  *typedkv.DB
	now func() time.Time
}

// NewStore creates a Store on db.
func NewStore(db *typedkv.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Save persists a checkpoint for its processor type. UpdatedAt is stamped at
// the stored microsecond precision, and only once the write succeeds.
func (s *Store) Save(ctx context.Context, cp *Checkpoint) error {
	if cp.ProcessorType == "" {
		return ErrProcessorTypeRequired
	}
	stamped := *cp
	stamped.UpdatedAt = s.now().UTC().Truncate(time.Microsecond)
	if err := typedkv.Put(s.db, Schema, stamped.ProcessorType, stamped); err != nil {
		return fmt.Errorf("save checkpoint %q: %w", cp.ProcessorType, err)
	}
	cp.UpdatedAt = stamped.UpdatedAt
	return nil
}

// Load retrieves the checkpoint for a processor type.
// Returns nil, nil if no checkpoint exists.
func (s *Store) Load(ctx context.Context, processorType string) (*Checkpoint, error) {
	cp, ok, err := typedkv.Get(s.db, Schema, processorType)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %q: %w", processorType, err)
	}
	if !ok {
		return nil, nil
	}
	return &cp, nil
}

// LoadMany retrieves several checkpoints from one consistent view. Missing
// processor types yield nil entries.
func (s *Store) LoadMany(ctx context.Context, processorTypes ...string) ([]*Checkpoint, error) {
	cps, err := typedkv.MultiGet(s.db, Schema, processorTypes)
	if err != nil {
		return nil, fmt.Errorf("load checkpoints: %w", err)
	}
	return cps, nil
}

// List returns every checkpoint ordered by processor type.
func (s *Store) List(ctx context.Context) ([]Checkpoint, error) {
	it, err := typedkv.Iter(s.db, Schema)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}

	var out []Checkpoint
	for entry, err := range it.All() {
		if err != nil {
			return nil, fmt.Errorf("list checkpoints: %w", err)
		}
		out = append(out, entry.Value)
	}
	return out, nil
}

// Reset removes the checkpoint so the processor starts over.
func (s *Store) Reset(ctx context.Context, processorType string) error {
	if err := typedkv.Delete(s.db, Schema, processorType); err != nil {
		return fmt.Errorf("reset checkpoint %q: %w", processorType, err)
	}
	return nil
}
