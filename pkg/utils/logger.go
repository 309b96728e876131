package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

type LogOptions struct {
	// Level is a zerolog level name; empty means info.
	Level string
	// Format is "console" or "json"; empty means console.
	Format string
	// File, when set, receives the same records in addition to Out.
	File string
	// Out defaults to stdout.
	Out io.Writer
}

// NewLogger builds the process logger and installs it as the global zerolog
// logger. The returned closer releases the log file, if one was opened.
func NewLogger(opts LogOptions) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("log level: %w", err)
		}
		level = l
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	var primary io.Writer
	switch opts.Format {
	case "", FormatConsole:
		primary = zerolog.ConsoleWriter{Out: out}
	case FormatJSON:
		primary = out
	default:
		return zerolog.Nop(), nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	writers := []io.Writer{primary}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().
		Logger()
	log.Logger = logger
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
