// Package logging routes structured debug logs to a rotating file in the
// cache directory. Stdout belongs to the status line, so nothing is ever
// logged there.
package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	CompGit    = "git"
	CompPR     = "pr"
	CompCache  = "cache"
	CompRender = "render"
	CompCLI    = "cli"
)

const fileName = "debug.log"

type Config struct {
	// Dir holds debug.log. Logging stays off when it is empty.
	Dir   string
	Debug bool

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	globalMu     sync.RWMutex
	globalLogger *slog.Logger
	fileWriter   *lumberjack.Logger
)

// Init installs the global logger. Without Debug, or without a directory,
// every record is discarded.
func Init(cfg Config) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if !cfg.Debug || cfg.Dir == "" {
		globalLogger = discardLogger()
		return
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 1
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 2
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 7
	}

	fileWriter = &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, fileName),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	globalLogger = slog.New(slog.NewJSONHandler(fileWriter, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Logger returns the global logger. Safe before Init.
func Logger() *slog.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger == nil {
		return discardLogger()
	}
	return globalLogger
}

// ForComponent returns a logger tagged with component=name. It resolves the
// global handler at log time, so package-level loggers created before Init
// still reach the file.
func ForComponent(name string) *slog.Logger {
	return slog.New(&dynamicHandler{component: name})
}

type dynamicHandler struct {
	component string
	attrs     []slog.Attr
	group     string
}

func (h *dynamicHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return Logger().Handler().Enabled(ctx, level)
}

func (h *dynamicHandler) Handle(ctx context.Context, r slog.Record) error {
	handler := Logger().Handler().WithAttrs([]slog.Attr{slog.String("component", h.component)})
	if len(h.attrs) > 0 {
		handler = handler.WithAttrs(h.attrs)
	}
	if h.group != "" {
		handler = handler.WithGroup(h.group)
	}
	return handler.Handle(ctx, r)
}

func (h *dynamicHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &dynamicHandler{component: h.component, attrs: merged, group: h.group}
}

func (h *dynamicHandler) WithGroup(name string) slog.Handler {
	return &dynamicHandler{component: h.component, attrs: h.attrs, group: name}
}

// Shutdown closes the log file.
func Shutdown() {
	globalMu.Lock()
	defer globalMu.Unlock()
	if fileWriter != nil {
		_ = fileWriter.Close()
		fileWriter = nil
	}
	globalLogger = nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
