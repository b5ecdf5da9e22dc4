package bench

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/typedkv"
	"github.com/poiesic/typedkv/checkpoint"
	"github.com/poiesic/typedkv/codec"
	"github.com/poiesic/typedkv/internal/log"
	"github.com/rs/zerolog"
)

// Runner writes sequential entries into one column family using a pool of
// workers.
type Runner struct {
	db          *typedkv.DB
	family      string
	schema      typedkv.Schema[uint64, []byte]
	checkpoints *checkpoint.Store
	pool        *ants.Pool
	batchSize   int
	valueSize   int
	progress    io.Writer
	logger      zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner) error

// WithPoolSize sets the number of concurrent writers.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(r *Runner) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if r.pool != nil {
			r.pool.Release()
		}
		r.pool = pool
		return nil
	}
}

// WithBatchSize sets how many entries one pool task writes. Default 100.
func WithBatchSize(size int) Option {
	return func(r *Runner) error {
		if size < 1 {
			return fmt.Errorf("batch size must be at least 1, got %d", size)
		}
		r.batchSize = size
		return nil
	}
}

// WithValueSize sets the size of each written value in bytes. Values shorter
// than 8 bytes are padded to 8 so they can carry their key. Default 64.
func WithValueSize(size int) Option {
	return func(r *Runner) error {
		if size < 8 {
			size = 8
		}
		r.valueSize = size
		return nil
	}
}

// WithProgress reports progress to w. Nil disables reporting.
func WithProgress(w io.Writer) Option {
	return func(r *Runner) error {
		r.progress = w
		return nil
	}
}

// WithLogger sets the logger. Default is log.CLI.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) error {
		r.logger = logger
		return nil
	}
}

// NewRunner creates a runner writing into family. The database must have
// been opened with family and the checkpoint families registered.
func NewRunner(db *typedkv.DB, family string, opts ...Option) (*Runner, error) {
	if db == nil {
		return nil, ErrDatabaseRequired
	}
	if family == "" {
		return nil, ErrFamilyRequired
	}
	if family == checkpoint.ColumnFamily {
		return nil, fmt.Errorf("%w: %q", ErrReservedFamily, family)
	}

	r := &Runner{
		db:          db,
		family:      family,
		schema:      typedkv.NewSchema(family, codec.Uint64, codec.Bytes),
		checkpoints: checkpoint.NewStore(db),
		batchSize:   100,
		valueSize:   64,
		logger:      log.CLI,
	}

	for _, opt := range append([]Option{WithPoolSize(runtime.NumCPU())}, opts...) {
		if err := opt(r); err != nil {
			r.Release()
			return nil, err
		}
	}
	return r, nil
}

// Schema returns the schema the runner writes with.
func (r *Runner) Schema() typedkv.Schema[uint64, []byte] {
	return r.schema
}

// Result summarizes one Run.
type Result struct {
	// First and Last are the first and last keys written. Both are zero when
	// nothing was written.
	First   uint64
	Last    uint64
	Written int
	Elapsed time.Duration
}

// Rate returns entries written per second.
func (res Result) Rate() float64 {
	if res.Elapsed <= 0 {
		return 0
	}
	return float64(res.Written) / res.Elapsed.Seconds()
}

// Run writes count entries with keys following the last checkpointed key.
// The checkpoint only advances when every batch succeeded.
func (r *Runner) Run(ctx context.Context, count int) (Result, error) {
	if count < 0 {
		return Result{}, ErrInvalidCount
	}
	if count == 0 {
		return Result{}, nil
	}

	cp, err := r.checkpoints.Load(ctx, r.processorType())
	if err != nil {
		return Result{}, err
	}
	first := uint64(1)
	if cp != nil {
		first = cp.LastID + 1
	}

	r.logger.Info().
		Str("family", r.family).
		Uint64("first", first).
		Int("count", count).
		Int("workers", r.pool.Cap()).
		Msg("bench started")

	tracker := newProgressTracker(r.progress, count, r.batchSize*10)
	tracker.Start()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	setErr := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	for off := 0; off < count; off += r.batchSize {
		if ctx.Err() != nil {
			break
		}
		lo := first + uint64(off)
		n := min(r.batchSize, count-off)

		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			if err := r.writeBatch(ctx, lo, n); err != nil {
				setErr(err)
				return
			}
			tracker.Increment(n)
		})
		if err != nil {
			wg.Done()
			setErr(fmt.Errorf("submit batch at %d: %w", lo, err))
			break
		}
	}
	wg.Wait()
	tracker.Finish()

	if firstErr == nil {
		firstErr = ctx.Err()
	}
	if firstErr != nil {
		r.logger.Error().Err(firstErr).Str("family", r.family).Msg("bench failed")
		return Result{}, firstErr
	}

	res := Result{
		First:   first,
		Last:    first + uint64(count) - 1,
		Written: count,
		Elapsed: tracker.Elapsed(),
	}
	if err := r.checkpoints.Save(ctx, &checkpoint.Checkpoint{
		ProcessorType: r.processorType(),
		LastID:        res.Last,
	}); err != nil {
		return Result{}, err
	}

	r.logger.Info().
		Str("family", r.family).
		Int("written", res.Written).
		Dur("elapsed", res.Elapsed).
		Float64("rate", res.Rate()).
		Msg("bench finished")
	return res, nil
}

// Verify walks the family and checks that keys are contiguous from 1 and that
// every value carries its key. It returns the number of entries seen.
func (r *Runner) Verify(ctx context.Context) (int, error) {
	it, err := typedkv.Iter(r.db, r.schema)
	if err != nil {
		return 0, err
	}

	seen := 0
	for entry, err := range it.All() {
		if err != nil {
			return seen, err
		}
		if err := ctx.Err(); err != nil {
			return seen, err
		}
		want := uint64(seen + 1)
		if entry.Key != want {
			return seen, fmt.Errorf("verify %s: expected key %d, found %d", r.family, want, entry.Key)
		}
		if len(entry.Value) < 8 || binary.BigEndian.Uint64(entry.Value) != entry.Key {
			return seen, fmt.Errorf("verify %s: value of key %d does not carry its key", r.family, entry.Key)
		}
		seen++
	}
	return seen, nil
}

// Reset forgets the checkpoint so the next Run starts again at key 1.
// Written entries are left in place and will be overwritten.
func (r *Runner) Reset(ctx context.Context) error {
	return r.checkpoints.Reset(ctx, r.processorType())
}

// Release releases the worker pool. The runner should not be used after
// calling Release.
func (r *Runner) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

func (r *Runner) processorType() string {
	return "bench/" + r.family
}

func (r *Runner) writeBatch(ctx context.Context, lo uint64, n int) error {
	for k := lo; k < lo+uint64(n); k++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := typedkv.Put(r.db, r.schema, k, r.value(k)); err != nil {
			return fmt.Errorf("write key %d: %w", k, err)
		}
	}
	return nil
}

// value is the key in big endian followed by a repeating filler derived from
// the key.
func (r *Runner) value(key uint64) []byte {
	v := make([]byte, r.valueSize)
	binary.BigEndian.PutUint64(v, key)
	for i := 8; i < len(v); i++ {
		v[i] = byte(key) + byte(i)
	}
	return v
}
