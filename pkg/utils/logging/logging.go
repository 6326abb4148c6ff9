package logging

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

type ctxKey struct{}

var (
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	defaultMutex  sync.RWMutex
)

// Default returns the process wide logger configured by SetDefault.
func Default() *slog.Logger {
	defaultMutex.RLock()
	defer defaultMutex.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process wide logger. nil is ignored.
func SetDefault(logger *slog.Logger) {
	if logger == nil {
		return
	}
	defaultMutex.Lock()
	defer defaultMutex.Unlock()
	defaultLogger = logger
}

// With returns a context carrying logger.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// From returns the logger attached to ctx, falling back to Default.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return Default()
}
