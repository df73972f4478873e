// Package logging provides slog helpers used across the application:
// context propagation, structured operation/error logging, and safe
// cleanup helpers for deferred Close/Rollback calls.
package logging

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"

	"github.com/Joncarre/aplicacion-de-seguimiento/internal/appconf"
)

type contextKey string

const loggerKey contextKey = "logger"

// NewLogger creates the application logger: human-readable text in
// development and test, JSON in production.
func NewLogger(env appconf.Environment, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if env == appconf.Production {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// WithLogger stores a logger in the context for downstream handlers.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from the context, falling back to
// slog.Default when none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// LogOperation records a structured event for a named operation.
func LogOperation(logger *slog.Logger, operation string, attrs ...slog.Attr) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.LogAttrs(context.Background(), slog.LevelInfo, operation, attrs...)
}

// LogError records an error with optional additional attributes.
func LogError(logger *slog.Logger, msg string, err error, attrs ...slog.Attr) {
	if logger == nil {
		logger = slog.Default()
	}
	all := make([]slog.Attr, 0, len(attrs)+1)
	all = append(all, slog.Any("error", err))
	all = append(all, attrs...)
	logger.LogAttrs(context.Background(), slog.LevelError, msg, all...)
}

// LogHTTPRequest records a completed HTTP request.
func LogHTTPRequest(logger *slog.Logger, method, path string, status int, durationMs float64, attrs ...slog.Attr) {
	if logger == nil {
		logger = slog.Default()
	}
	all := make([]slog.Attr, 0, len(attrs)+4)
	all = append(all,
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("duration_ms", durationMs),
	)
	all = append(all, attrs...)
	logger.LogAttrs(context.Background(), slog.LevelInfo, "http_request", all...)
}

// SafeCloseWithLogging closes a resource and logs a failure instead of
// dropping it, for use in defer statements.
func SafeCloseWithLogging(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		LogError(logger, "failed to close resource", err, slog.String("resource", name))
	}
}

// SafeRollbackWithLogging rolls back a transaction and logs unexpected
// failures. sql.ErrTxDone is ignored since it means the transaction was
// already committed.
func SafeRollbackWithLogging(tx *sql.Tx, logger *slog.Logger, name string) {
	if tx == nil {
		return
	}
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		LogError(logger, "failed to roll back transaction", err, slog.String("operation", name))
	}
}
