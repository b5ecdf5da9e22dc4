package main

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/poiesic/typedkv"
	"github.com/poiesic/typedkv/codec"
	"github.com/urfave/cli/v2"
)

// format converts command line text to stored bytes and back.
type format string

const (
	formatString format = "string"
	formatHex    format = "hex"
	formatUint64 format = "uint64"
)

func parseFormat(name string, allowed ...format) (format, error) {
	for _, f := range allowed {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q, want one of %v", name, allowed)
}

func (f format) parse(s string) ([]byte, error) {
	switch f {
	case formatHex:
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("parse hex %q: %w", s, err)
		}
		return b, nil
	case formatUint64:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse uint64 %q: %w", s, err)
		}
		return codec.Uint64.Encode(n)
	default:
		return []byte(s), nil
	}
}

// render falls back to hex when the bytes do not fit the format.
func (f format) render(b []byte) string {
	switch f {
	case formatHex:
		return hex.EncodeToString(b)
	case formatUint64:
		n, err := codec.Uint64.Decode(b)
		if err != nil {
			return "0x" + hex.EncodeToString(b)
		}
		return strconv.FormatUint(n, 10)
	default:
		return string(b)
	}
}

// formats holds the key and value formats of one command invocation.
type formats struct {
	key    format
	value  format
	schema typedkv.Schema[[]byte, []byte]
}

func formatFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "key-format",
			Aliases: []string{"k"},
			Usage:   "Key text format (uint64, string, hex)",
			Value:   string(formatString),
		},
		&cli.StringFlag{
			Name:  "value-format",
			Usage: "Value text format (string, hex)",
			Value: string(formatString),
		},
		&cli.StringFlag{
			Name:  "compression",
			Usage: "Value compression (none, snappy, lz4, zstd); must match the one used to write",
			Value: "none",
		},
	}
}

func newFormats(c *cli.Context, family string) (*formats, error) {
	key, err := parseFormat(c.String("key-format"), formatUint64, formatString, formatHex)
	if err != nil {
		return nil, fmt.Errorf("key-format: %w", err)
	}
	value, err := parseFormat(c.String("value-format"), formatString, formatHex)
	if err != nil {
		return nil, fmt.Errorf("value-format: %w", err)
	}
	compression, err := codec.ParseCompression(c.String("compression"))
	if err != nil {
		return nil, err
	}

	valueCodec := codec.Bytes
	if compression != codec.NoCompression {
		valueCodec = codec.Compressed(codec.Bytes, compression)
	}
	return &formats{
		key:    key,
		value:  value,
		schema: typedkv.NewSchema(family, codec.Bytes, valueCodec),
	}, nil
}
