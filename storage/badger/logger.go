package badger

import (
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// badgerLogger adapts zerolog.Logger to the badger.Logger interface.
type badgerLogger struct {
	logger zerolog.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (bl *badgerLogger) Errorf(msg string, items ...any) {
	bl.logger.Error().Msg(format(msg, items))
}

func (bl *badgerLogger) Warningf(msg string, items ...any) {
	bl.logger.Warn().Msg(format(msg, items))
}

// Infof logs at debug; badger reports every compaction and flush at info.
func (bl *badgerLogger) Infof(msg string, items ...any) {
	bl.logger.Debug().Msg(format(msg, items))
}

func (bl *badgerLogger) Debugf(msg string, items ...any) {
	bl.logger.Debug().Msg(format(msg, items))
}

// badger terminates most messages with a newline.
func format(msg string, items []any) string {
	return strings.TrimRight(fmt.Sprintf(msg, items...), "\n")
}
