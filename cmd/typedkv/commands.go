package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/poiesic/typedkv"
	"github.com/poiesic/typedkv/bench"
	"github.com/poiesic/typedkv/internal/log"
	"github.com/urfave/cli/v2"
)

var errKeyNotFound = errors.New("key not found")

func usageError(c *cli.Context) error {
	return fmt.Errorf("usage: %s %s %s", c.App.Name, c.Command.Name, c.Command.ArgsUsage)
}

func (a *app) familiesCommand(c *cli.Context) error {
	db, err := a.open()
	if err != nil {
		return err
	}
	defer db.Close()

	names, err := db.RegisteredColumnFamilies()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(c.App.Writer, name)
	}
	return nil
}

func (a *app) putCommand(c *cli.Context) error {
	if c.NArg() != 3 {
		return usageError(c)
	}
	family := c.Args().Get(0)
	f, err := newFormats(c, family)
	if err != nil {
		return err
	}
	key, err := f.key.parse(c.Args().Get(1))
	if err != nil {
		return err
	}
	value, err := f.value.parse(c.Args().Get(2))
	if err != nil {
		return err
	}

	db, err := a.open(family)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := typedkv.Put(db, f.schema, key, value); err != nil {
		return err
	}
	log.CLI.Debug().Str("family", family).Int("key_len", len(key)).Int("value_len", len(value)).Msg("put")
	return nil
}

func (a *app) getCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return usageError(c)
	}
	family := c.Args().Get(0)
	f, err := newFormats(c, family)
	if err != nil {
		return err
	}
	key, err := f.key.parse(c.Args().Get(1))
	if err != nil {
		return err
	}

	db, err := a.open(family)
	if err != nil {
		return err
	}
	defer db.Close()

	value, ok, err := typedkv.Get(db, f.schema, key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", errKeyNotFound, c.Args().Get(1))
	}
	fmt.Fprintln(c.App.Writer, f.value.render(value))
	return nil
}

func (a *app) mgetCommand(c *cli.Context) error {
	if c.NArg() < 2 {
		return usageError(c)
	}
	family := c.Args().First()
	f, err := newFormats(c, family)
	if err != nil {
		return err
	}
	args := c.Args().Tail()
	keys := make([][]byte, len(args))
	for i, arg := range args {
		if keys[i], err = f.key.parse(arg); err != nil {
			return err
		}
	}

	db, err := a.open(family)
	if err != nil {
		return err
	}
	defer db.Close()

	values, err := typedkv.MultiGet(db, f.schema, keys)
	if err != nil {
		return err
	}
	for i, v := range values {
		if v == nil {
			fmt.Fprintf(c.App.Writer, "%s\t<absent>\n", args[i])
			continue
		}
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", args[i], f.value.render(*v))
	}
	return nil
}

func (a *app) deleteCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return usageError(c)
	}
	family := c.Args().Get(0)
	f, err := newFormats(c, family)
	if err != nil {
		return err
	}
	key, err := f.key.parse(c.Args().Get(1))
	if err != nil {
		return err
	}

	db, err := a.open(family)
	if err != nil {
		return err
	}
	defer db.Close()

	return typedkv.Delete(db, f.schema, key)
}

func (a *app) scanCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return usageError(c)
	}
	family := c.Args().First()
	f, err := newFormats(c, family)
	if err != nil {
		return err
	}
	limit := c.Int("limit")
	if limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", limit)
	}

	var lower, upper *[]byte
	if c.IsSet("lower") {
		b, err := f.key.parse(c.String("lower"))
		if err != nil {
			return fmt.Errorf("lower: %w", err)
		}
		lower = &b
	}
	if c.IsSet("upper") {
		b, err := f.key.parse(c.String("upper"))
		if err != nil {
			return fmt.Errorf("upper: %w", err)
		}
		upper = &b
	}
	opts, err := typedkv.Bounds(f.schema, lower, upper)
	if err != nil {
		return err
	}
	dir := typedkv.Forward
	if c.Bool("reverse") {
		dir = typedkv.Reverse
	}

	db, err := a.open(family)
	if err != nil {
		return err
	}
	defer db.Close()

	keysOnly := c.Bool("keys-only")
	if keysOnly && dir == typedkv.Forward && lower == nil && upper == nil {
		it, err := typedkv.Keys(db, f.schema)
		if err != nil {
			return err
		}
		n := 0
		for key, err := range it.All() {
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, f.key.render(key))
			if n++; n == limit {
				break
			}
		}
		return nil
	}

	it, err := typedkv.IterWithDirection(db, f.schema, opts, dir)
	if err != nil {
		return err
	}
	n := 0
	for entry, err := range it.All() {
		if err != nil {
			return err
		}
		if keysOnly {
			fmt.Fprintln(c.App.Writer, f.key.render(entry.Key))
		} else {
			fmt.Fprintf(c.App.Writer, "%s\t%s\n", f.key.render(entry.Key), f.value.render(entry.Value))
		}
		if n++; n == limit {
			break
		}
	}
	return nil
}

func (a *app) benchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return usageError(c)
	}
	family := c.Args().First()

	workers, count := a.cfg.Bench.Workers, a.cfg.Bench.Count
	if c.IsSet("workers") {
		workers = c.Int("workers")
	}
	if c.IsSet("count") {
		count = c.Int("count")
	}
	if workers < 1 {
		return fmt.Errorf("workers must be greater than 0")
	}

	db, err := a.open(family)
	if err != nil {
		return err
	}
	defer db.Close()

	runner, err := bench.NewRunner(db, family,
		bench.WithPoolSize(workers),
		bench.WithBatchSize(c.Int("batch-size")),
		bench.WithValueSize(c.Int("value-size")),
		bench.WithProgress(c.App.ErrWriter),
	)
	if err != nil {
		return err
	}
	defer runner.Release()

	if c.Bool("reset") {
		if err := runner.Reset(c.Context); err != nil {
			return err
		}
	}

	fmt.Fprintf(c.App.ErrWriter, "Database: %s (%s)\n", a.cfg.Path, a.cfg.Engine)
	fmt.Fprintf(c.App.ErrWriter, "Family: %s\n", family)
	fmt.Fprintf(c.App.ErrWriter, "Workers: %d\n", workers)
	fmt.Fprintln(c.App.ErrWriter)

	res, err := runner.Run(c.Context, count)
	if err != nil {
		return fmt.Errorf("bench failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "wrote %d entries (keys %d..%d) in %s, %.0f entries/s\n",
		res.Written, res.First, res.Last, res.Elapsed.Round(time.Millisecond), res.Rate())

	if c.Bool("verify") {
		n, err := runner.Verify(c.Context)
		if err != nil {
			return fmt.Errorf("verify failed: %w", err)
		}
		fmt.Fprintf(c.App.Writer, "verified %d entries\n", n)
	}
	return nil
}
