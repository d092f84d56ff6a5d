// Package logging wires the structured logger shared across the
// runtime: zerolog for structured, leveled events, writing to a
// lumberjack-rotated file so a long-lived session doesn't grow one
// unbounded log. internal/filetracker's Watcher already takes a
// zerolog.Logger; this package is where one gets constructed.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where and how logs are written.
type Config struct {
	// Dir is the directory log files live in, e.g. ~/.agentcore/logs.
	// The active file is agent.log; lumberjack renames and compresses
	// rotated copies in place.
	Dir string

	// Level is the minimum level that reaches the sink. Zero value
	// resolves to zerolog.InfoLevel.
	Level zerolog.Level

	// Console additionally mirrors human-readable output to stderr,
	// for interactive CLI use; disable for a pure background process.
	Console bool

	// MaxSizeMB caps a single log file before rotation. Zero resolves
	// to 20.
	MaxSizeMB int

	// MaxBackups caps how many rotated files are kept. Zero resolves
	// to 7. Files rotate by size (MaxSizeMB), not by day.
	MaxBackups int

	// MaxAgeDays caps how long a rotated file is kept regardless of
	// count. Zero resolves to 14.
	MaxAgeDays int
}

// New builds a zerolog.Logger writing to a rotating file under
// cfg.Dir, optionally tee'd to stderr for interactive sessions.
func New(cfg Config) (zerolog.Logger, error) {
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 20
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 7
	}
	if cfg.MaxAgeDays == 0 {
		cfg.MaxAgeDays = 14
	}

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return zerolog.Logger{}, err
		}
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, "agent.log"),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}

	var out io.Writer = rotator
	if cfg.Console {
		out = zerolog.MultiLevelWriter(rotator, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	logger := zerolog.New(out).Level(cfg.Level).With().Timestamp().Logger()
	return logger, nil
}

// Nop returns a logger that discards everything, for tests and
// contexts that don't want to set up a Config.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
