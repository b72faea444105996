// Package logging provides zerolog construction and context helpers shared
// by every proceval component.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	// Level is the minimum level emitted (trace, debug, info, warn, error).
	Level string `yaml:"level"  json:"level"`

	// Format selects console (human) or json output.
	Format string `yaml:"format" json:"format"`

	// Output selects the destination: stderr, stdout, or file.
	Output string `yaml:"output" json:"output"`

	// File is the log file path when Output is "file".
	File string `yaml:"file,omitempty" json:"file,omitempty"`

	// Caller adds the caller file:line to each event.
	Caller bool `yaml:"caller,omitempty" json:"caller,omitempty"`
}

// DefaultConfig returns the console/info configuration used when no logging
// section is present in the config file.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "console", Output: "stderr"}
}

// New builds a zerolog.Logger from cfg. Unparseable levels fall back to
// info; an unopenable log file falls back to stderr so the engine never
// fails to start because of logging.
func New(cfg Config) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer
	switch cfg.Output {
	case "stdout":
		out = os.Stdout
	case "file":
		f, openErr := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if openErr != nil {
			out = os.Stderr
		} else {
			out = f
		}
	default:
		out = os.Stderr
	}

	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(lvl).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// ComponentLogger returns a child logger tagged with a component name so
// log lines from different engine stages can be filtered apart.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// FromContext returns the logger attached to ctx, or a disabled logger when
// none is attached. Engine code never logs through a nil logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
