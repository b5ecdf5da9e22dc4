package pebble

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/pebble"
	"github.com/rs/zerolog"
)

// pebbleLogger adapts zerolog.Logger to pebble.Logger.
type pebbleLogger struct {
	logger zerolog.Logger
}

var _ pebble.Logger = (*pebbleLogger)(nil)

func (pl *pebbleLogger) Infof(format string, args ...interface{}) {
	pl.logger.Debug().Msg(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

func (pl *pebbleLogger) Errorf(format string, args ...interface{}) {
	pl.logger.Error().Msg(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

// Fatalf must not return; pebble relies on it stopping the process.
func (pl *pebbleLogger) Fatalf(format string, args ...interface{}) {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	pl.logger.Error().Msg(msg)
	panic(msg)
}
