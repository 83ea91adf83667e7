// Package logging defines the structured-logging interface used across the
// inventory service, with adapters for log/slog and zap.
package logging

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "item created", "id", item.ID, "category", item.Category)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

// New builds a Logger for the named backend writing JSON to stdout.
// Level is one of debug, info, warn, error.
func New(backend, level string) (Logger, error) {
	switch strings.ToLower(backend) {
	case BackendSlog, "":
		return NewSlogJSONLogger(os.Stdout, level)
	case BackendZap:
		return NewZapProductionLogger(level)
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}
