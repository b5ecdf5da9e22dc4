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

package main

import (
	"fmt"
	"os"

	"github.com/poiesic/typedkv"
	"github.com/poiesic/typedkv/checkpoint"
	"github.com/poiesic/typedkv/config"
	"github.com/poiesic/typedkv/internal/log"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "typedkv:", err)
		os.Exit(1)
	}
}

// app carries the configuration resolved in Before to the command actions.
type app struct {
	cfg *config.Config
}

func newApp() *cli.App {
	a := &app{}
	return &cli.App{
		Name:  "typedkv",
		Usage: "Inspect and exercise a typedkv store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the store directory",
			},
			&cli.StringFlag{
				Name:    "engine",
				Aliases: []string{"e"},
				Usage:   "Storage engine (badger, pebble) (default: badger)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error) (default: info)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log output format (console, json) (default: console)",
			},
			&cli.StringSliceFlag{
				Name:  "cf",
				Usage: "Column family to open; repeatable",
			},
			&cli.BoolFlag{
				Name:  "in-memory",
				Usage: "Keep the store in memory; nothing survives the command",
			},
			&cli.BoolFlag{
				Name:  "sync-writes",
				Usage: "Make every write durable before it returns",
			},
		},
		Before: a.setup,
		Commands: []*cli.Command{
			{
				Name:   "families",
				Usage:  "List the column families registered in the store",
				Action: a.familiesCommand,
			},
			{
				Name:      "put",
				Usage:     "Store a value",
				ArgsUsage: "<family> <key> <value>",
				Flags:     formatFlags(),
				Action:    a.putCommand,
			},
			{
				Name:      "get",
				Usage:     "Print the value stored under a key",
				ArgsUsage: "<family> <key>",
				Flags:     formatFlags(),
				Action:    a.getCommand,
			},
			{
				Name:      "mget",
				Usage:     "Print the values of several keys from one consistent view",
				ArgsUsage: "<family> <key>...",
				Flags:     formatFlags(),
				Action:    a.mgetCommand,
			},
			{
				Name:      "delete",
				Usage:     "Remove a key",
				ArgsUsage: "<family> <key>",
				Flags:     formatFlags(),
				Action:    a.deleteCommand,
			},
			{
				Name:      "scan",
				Usage:     "Print entries of a column family in key order",
				ArgsUsage: "<family>",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "reverse",
						Usage: "Iterate from the largest key down",
					},
					&cli.StringFlag{
						Name:  "lower",
						Usage: "Inclusive lower bound key",
					},
					&cli.StringFlag{
						Name:  "upper",
						Usage: "Exclusive upper bound key",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Stop after N entries; 0 means no limit",
					},
					&cli.BoolFlag{
						Name:  "keys-only",
						Usage: "Print keys without values",
					},
				}, formatFlags()...),
				Action: a.scanCommand,
			},
			{
				Name:      "bench",
				Usage:     "Write sequential uint64 keys concurrently and report throughput",
				ArgsUsage: "<family>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Number of concurrent writers (default: from config, 8)",
					},
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"n"},
						Usage:   "Number of entries to write (default: from config, 10000)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Entries written per pool task",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "value-size",
						Usage: "Size of each value in bytes",
						Value: 64,
					},
					&cli.BoolFlag{
						Name:  "verify",
						Usage: "Read the family back after writing",
					},
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Start again at key 1 instead of after the last run",
					},
				},
				Action: a.benchCommand,
			},
		},
	}
}

// setup resolves the configuration from the config file and global flags and
// initializes logging.
func (a *app) setup(c *cli.Context) error {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
	} else {
		cfg = config.NewConfig()
	}

	if c.IsSet("db") {
		cfg.Apply(config.WithPath(c.String("db")))
	}
	if c.IsSet("engine") {
		cfg.Apply(config.WithEngine(c.String("engine")))
	}
	if c.IsSet("log-level") {
		cfg.Apply(config.WithLogLevel(c.String("log-level")))
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}
	if c.IsSet("in-memory") {
		cfg.Apply(config.WithInMemory(c.Bool("in-memory")))
	}
	if c.IsSet("sync-writes") {
		cfg.SyncWrites = c.Bool("sync-writes")
	}
	cfg.Apply(config.WithColumnFamilies(c.StringSlice("cf")...))

	if err := cfg.Validate(); err != nil {
		return err
	}

	logOpts := cfg.LogOptions()
	logOpts.Out = c.App.ErrWriter
	log.Init(logOpts)

	a.cfg = cfg
	return nil
}

// open opens the store with the checkpoint families, the configured families
// and any extra families a command names.
func (a *app) open(extra ...string) (*typedkv.DB, error) {
	descs := checkpoint.ColumnFamilies()
	seen := make(map[string]bool, len(descs))
	for _, d := range descs {
		seen[d.Name] = true
	}
	for _, d := range a.cfg.Descriptors() {
		if !seen[d.Name] {
			seen[d.Name] = true
			descs = append(descs, d)
		}
	}
	for _, name := range extra {
		if !seen[name] {
			seen[name] = true
			descs = append(descs, typedkv.ColumnFamilyDescriptor{Name: name})
		}
	}

	db, err := typedkv.Open(a.cfg.Path, descs, a.cfg.OpenOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
