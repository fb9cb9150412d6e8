// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// DefaultPrefix is the display prefix used when none is configured.
	DefaultPrefix = "(hooklog)"
)

var (
	// nullLogger is a logger that discards all log messages.
	nullLogger = &Core{log: hclog.NewNullLogger(), hub: newHub(Options{})}
)

//go:generate ${TOOLS_BIN}/stringer -type=Level
type Level int

const (
	ERROR Level = iota
	WARN
	INFO
	DEBUG
	TRACE
)

// AllLevels lists every level from the most to the least severe.
var AllLevels = []Level{ERROR, WARN, INFO, DEBUG, TRACE}

func LevelFromString(level string) Level {
	parsed, err := ParseLevel(level)
	if err != nil {
		return INFO
	}
	return parsed
}

// ParseLevel converts a case insensitive level name into a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return TRACE, nil
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("unknown log level %q", level)
	}
}

// UnmarshalText allows levels to be decoded from configuration files and environment variables.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}

	*l = parsed
	return nil
}

func (l Level) convertedLevel() hclog.Level {
	switch l {
	case TRACE:
		return hclog.Trace
	case DEBUG:
		return hclog.Debug
	case INFO:
		return hclog.Info
	case WARN:
		return hclog.Warn
	case ERROR:
		return hclog.Error
	default:
		return hclog.Info
	}
}

// Logger describes the interface that must be implemented by all loggers
type Logger interface {
	// WithName returns a new Logger instance with the specified name.
	WithName(name string) Logger

	// SetLevel updates the logger level.
	SetLevel(level Level)

	// Trace emit a message and key/value pairs at the TRACE level.
	Trace(msg string, args ...interface{})

	// Debug emit a message and key/value pairs at the DEBUG level.
	Debug(msg string, args ...interface{})

	// Info emit a message and key/value pairs at the INFO level.
	Info(msg string, args ...interface{})

	// Warn emit a message and key/value pairs at the WARN level.
	Warn(msg string, args ...interface{})

	// Error emit a message and key/value pairs at the ERROR level.
	Error(msg string, args ...interface{})
}

// Options configures a logger core.
type Options struct {
	// Prefix is the display prefix of the logger, plugins may derive their identity from it.
	Prefix string
	// Levels restricts the levels that are written and emitted, empty means all of them.
	Levels []Level
	// Level is the minimum level written to the output.
	Level Level
	// TextFormat switches the output from JSON lines to hclog text lines.
	TextFormat bool
}

// NewLogger creates a new logger instance.
func NewLogger(writer io.Writer) Logger {
	return New(writer, Options{Level: INFO})
}

// New creates a logger core writing to writer.
func New(writer io.Writer, opts Options) *Core {
	return &Core{
		log: hclog.New(&hclog.LoggerOptions{
			JSONFormat: !opts.TextFormat,
			Output:     writer,
			TimeFn:     time.Now,
			Level:      opts.Level.convertedLevel(),
		}),
		hub: newHub(opts),
	}
}
