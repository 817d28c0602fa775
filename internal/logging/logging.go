// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/panbanda/dryscan/pkg/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options select the log sink and level.
type Options struct {
	Config  config.LogConfig
	Verbose bool      // forces debug level
	Stderr  io.Writer // sink when Config.File is empty; defaults to os.Stderr
}

// ParseLevel maps a level name or a numeric slog level to slog.Level.
// Unrecognized values return defaultLevel.
func ParseLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// New builds a logger for opts. The returned closer flushes and closes a
// rotating log file; it is a no-op for stderr.
func New(opts Options) (*slog.Logger, io.Closer) {
	level := ParseLevel(opts.Config.Level, slog.LevelInfo)
	if opts.Verbose {
		level = slog.LevelDebug
	}

	var (
		w      io.Writer
		closer io.Closer = nopCloser{}
	)
	if path := strings.TrimSpace(opts.Config.File); path != "" {
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    opts.Config.MaxSize,
			MaxBackups: opts.Config.MaxBackups,
			MaxAge:     opts.Config.MaxAge,
			Compress:   opts.Config.Compress,
		}
		w, closer = lj, lj
	} else if opts.Stderr != nil {
		w = opts.Stderr
	} else {
		w = os.Stderr
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: level <= slog.LevelDebug,
		Level:     level,
	})
	return slog.New(handler), closer
}

// Configure builds a logger with New and installs it as the slog default.
func Configure(opts Options) (*slog.Logger, io.Closer) {
	logger, closer := New(opts)
	slog.SetDefault(logger)
	return logger, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
