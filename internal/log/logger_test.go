package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"WARN", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"chatty", zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInit_JSONComponentField(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{LogLevel: zerolog.InfoLevel, Type: JSONLogger, Out: &buf})
	t.Cleanup(func() { Init(Options{LogLevel: zerolog.Disabled, Out: &bytes.Buffer{}}) })

	Storage.Info().Msg("opened")
	Storage.Debug().Msg("filtered")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "storage", entry["component"])
	assert.Equal(t, "opened", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestInit_Console(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{LogLevel: zerolog.DebugLevel, Type: ConsoleLogger, Out: &buf})
	t.Cleanup(func() { Init(Options{LogLevel: zerolog.Disabled, Out: &bytes.Buffer{}}) })

	CLI.Debug().Str("cf", "users").Msg("scan")

	out := buf.String()
	assert.Contains(t, out, "| DEBUG |")
	assert.Contains(t, out, "cf=users")
	assert.Contains(t, out, "component=cli")
}
