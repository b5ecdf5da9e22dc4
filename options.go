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

package typedkv

import (
	"fmt"
	"strings"

	"github.com/poiesic/typedkv/internal/log"
	"github.com/poiesic/typedkv/storage"
	"github.com/rs/zerolog"
)

// EngineType selects the storage engine behind a DB.
type EngineType string

const (
	EngineBadger EngineType = "badger"
	EnginePebble EngineType = "pebble"
)

// ParseEngineType parses an engine name, case-insensitively.
func ParseEngineType(s string) (EngineType, error) {
	switch e := EngineType(strings.ToLower(s)); e {
	case EngineBadger, EnginePebble:
		return e, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, s)
	}
}

// Option configures Open.
type Option func(*options)

type options struct {
	engine     EngineType
	inMemory   bool
	syncWrites bool
	logger     zerolog.Logger
	instance   storage.Engine
}

func defaultOptions() *options {
	return &options{
		engine: EngineBadger,
		logger: log.Storage,
	}
}

func (o *options) validate() error {
	if o.instance != nil {
		return nil
	}
	_, err := ParseEngineType(string(o.engine))
	return err
}

// WithEngine selects the storage engine. Badger is the default.
func WithEngine(engine EngineType) Option {
	return func(o *options) {
		o.engine = engine
	}
}

// WithInMemory keeps all data in memory; the path passed to Open is ignored.
func WithInMemory() Option {
	return func(o *options) {
		o.inMemory = true
	}
}

// WithSyncWrites makes every write durable before it returns, regardless of
// per-family options.
func WithSyncWrites(sync bool) Option {
	return func(o *options) {
		o.syncWrites = sync
	}
}

// WithLogger sets the logger for the DB and its engine.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEngineInstance runs the DB on an already open engine. The DB takes
// ownership and closes it. Engine selection options are ignored.
func WithEngineInstance(engine storage.Engine) Option {
	return func(o *options) {
		o.instance = engine
	}
}
