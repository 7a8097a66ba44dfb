package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls the root logger. Passing nil to NewLogger selects
// info-level console output on stdout.
type Config struct {
	Level      zerolog.Level
	TimeFormat string
	Output     io.Writer
}

// Logger owns the process-wide zerolog root. Components receive the
// underlying *zerolog.Logger via Zerolog and derive their own contexts.
type Logger struct {
	root zerolog.Logger
}

func NewLogger(cfg *Config) *Logger {
	if cfg == nil {
		cfg = &Config{Level: zerolog.InfoLevel}
	}
	format := cfg.TimeFormat
	if format == "" {
		format = time.RFC3339
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: format}

	root := zerolog.New(writer).
		Level(cfg.Level).
		With().
		Timestamp().
		Caller().
		Logger()

	return &Logger{root: root}
}

// Zerolog returns the root logger for packages that take one.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.root
}
