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

// Package config holds the settings of the typedkv command line tool.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poiesic/typedkv"
	"github.com/poiesic/typedkv/internal/log"
	"gopkg.in/yaml.v3"
)

// Config holds configuration for opening a typedkv store.
type Config struct {
	// Path is the directory holding the store. Ignored when InMemory is set.
	Path string `yaml:"path"`

	// Engine is the storage engine: "badger" or "pebble".
	// Default: badger
	Engine string `yaml:"engine"`

	// InMemory keeps the store in memory; mostly useful for benchmarks.
	InMemory bool `yaml:"in_memory"`

	// SyncWrites makes every write durable before it returns.
	SyncWrites bool `yaml:"sync_writes"`

	// LogLevel is one of debug, info, warn, error.
	// Default: info
	LogLevel string `yaml:"log_level"`

	// LogFormat is "console" or "json".
	// Default: console
	LogFormat string `yaml:"log_format"`

	// ColumnFamilies are registered at open in addition to any built in ones.
	ColumnFamilies []ColumnFamily `yaml:"column_families"`

	Bench Bench `yaml:"bench"`
}

// ColumnFamily is one family entry in the config file.
type ColumnFamily struct {
	Name       string `yaml:"name"`
	SyncWrites bool   `yaml:"sync_writes"`
}

// Bench tunes the bench command.
type Bench struct {
	// Workers is the size of the writer pool. Default: 8
	Workers int `yaml:"workers"`
	// Count is the number of entries written. Default: 10000
	Count int `yaml:"count"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithPath sets the store directory.
func WithPath(path string) ConfigOption {
	return func(c *Config) {
		c.Path = path
	}
}

// WithEngine sets the storage engine name.
func WithEngine(engine string) ConfigOption {
	return func(c *Config) {
		c.Engine = engine
	}
}

// WithInMemory toggles the in-memory store.
func WithInMemory(inMemory bool) ConfigOption {
	return func(c *Config) {
		c.InMemory = inMemory
	}
}

// WithLogLevel sets the log level name.
func WithLogLevel(level string) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}

// WithColumnFamilies appends column families, skipping names already present.
func WithColumnFamilies(names ...string) ConfigOption {
	return func(c *Config) {
		for _, name := range names {
			if !c.hasFamily(name) {
				c.ColumnFamilies = append(c.ColumnFamilies, ColumnFamily{Name: name})
			}
		}
	}
}

// WithBench sets the bench worker count and entry count. Zero keeps the
// current value.
func WithBench(workers, count int) ConfigOption {
	return func(c *Config) {
		if workers != 0 {
			c.Bench.Workers = workers
		}
		if count != 0 {
			c.Bench.Count = count
		}
	}
}

// DefaultConfig returns a Config with the defaults documented on its fields.
func DefaultConfig() *Config {
	return &Config{
		Engine:    string(typedkv.EngineBadger),
		LogLevel:  "info",
		LogFormat: "console",
		Bench: Bench{
			Workers: 8,
			Count:   10000,
		},
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	cfg.Apply(opts...)
	return cfg
}

// Apply applies options in order.
func (c *Config) Apply(opts ...ConfigOption) {
	for _, opt := range opts {
		opt(c)
	}
}

// Load reads a YAML file over the defaults. Unknown fields are rejected.
func Load(path string, opts ...ConfigOption) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Apply(opts...)
	return cfg, nil
}

// Normalize lowercases enumerated values and trims names.
func (c *Config) Normalize() {
	c.Engine = strings.ToLower(strings.TrimSpace(c.Engine))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	for i := range c.ColumnFamilies {
		c.ColumnFamilies[i].Name = strings.TrimSpace(c.ColumnFamilies[i].Name)
	}
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Path == "" && !c.InMemory {
		return errors.New("config: path is required unless in_memory is set")
	}
	if _, err := typedkv.ParseEngineType(c.Engine); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("config: log_format must be console or json, got %q", c.LogFormat)
	}
	if c.Bench.Workers < 1 {
		return errors.New("config: bench.workers must be at least 1")
	}
	if c.Bench.Count < 0 {
		return errors.New("config: bench.count must not be negative")
	}
	return nil
}

// Descriptors converts the configured families for typedkv.Open.
func (c *Config) Descriptors() []typedkv.ColumnFamilyDescriptor {
	descs := make([]typedkv.ColumnFamilyDescriptor, len(c.ColumnFamilies))
	for i, cf := range c.ColumnFamilies {
		descs[i] = typedkv.ColumnFamilyDescriptor{
			Name:    cf.Name,
			Options: typedkv.ColumnFamilyOptions{SyncWrites: cf.SyncWrites},
		}
	}
	return descs
}

// OpenOptions returns the typedkv options the configuration implies.
func (c *Config) OpenOptions() []typedkv.Option {
	opts := []typedkv.Option{
		typedkv.WithEngine(typedkv.EngineType(c.Engine)),
		typedkv.WithSyncWrites(c.SyncWrites),
	}
	if c.InMemory {
		opts = append(opts, typedkv.WithInMemory())
	}
	return opts
}

// LogOptions returns the logger options the configuration implies.
// Call Validate first.
func (c *Config) LogOptions() log.Options {
	level, _ := log.ParseLevel(c.LogLevel)
	opts := log.Options{LogLevel: level, Type: log.ConsoleLogger}
	if c.LogFormat == "json" {
		opts.Type = log.JSONLogger
	}
	return opts
}

func (c *Config) hasFamily(name string) bool {
	for _, cf := range c.ColumnFamilies {
		if cf.Name == name {
			return true
		}
	}
	return false
}
