package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vancomm/minesweeper3d/internal/config"
)

func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// New builds the process logger. Development mode logs colored text to
// stderr at debug level; otherwise records are JSON. When cfg.File is set,
// JSON records are also written to a rotated file. The returned closer
// flushes that file.
func New(cfg config.Logging, development bool) (*slog.Logger, io.Closer) {
	return newLogger(os.Stderr, cfg, development)
}

func newLogger(stderr io.Writer, cfg config.Logging, development bool) (*slog.Logger, io.Closer) {
	level := ParseLevel(cfg.Level)

	var console slog.Handler
	if development {
		console = tint.NewHandler(stderr, &tint.Options{Level: slog.LevelDebug})
		level = slog.LevelDebug
	} else {
		console = slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level})
	}

	if cfg.File == "" {
		return slog.New(console), io.NopCloser(nil)
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    max(1, cfg.MaxSize),
		MaxBackups: max(0, cfg.MaxBackups),
		MaxAge:     max(0, cfg.MaxAge),
		Compress:   cfg.Compress,
	}
	handler := slogmulti.Fanout(
		console,
		slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}),
	)
	return slog.New(handler), file
}
