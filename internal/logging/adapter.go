package logging

import (
	"context"
	"io"
	"log/slog"
)

// Logger is what the Reclaim client, the dashboard and the MCP server
// log through. Arguments are slog key-value pairs or slog.Attr values.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// DebugEnabled reports whether Debug records are written, so callers
	// can skip assembling expensive request details.
	DebugEnabled() bool
}

// SlogAdapter implements Logger on top of an slog.Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps logger. A nil logger means slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

func (a *SlogAdapter) Debug(msg string, args ...any) { a.logger.Debug(msg, args...) }
func (a *SlogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *SlogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *SlogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }

// DebugEnabled implements Logger.
func (a *SlogAdapter) DebugEnabled() bool {
	return a.logger.Enabled(context.Background(), slog.LevelDebug)
}

// DefaultLogger logs through slog.Default(). It is the fallback when a
// component is built without a logger.
func DefaultLogger() *SlogAdapter {
	return NewSlogAdapter(slog.Default())
}

// DiscardLogger drops every record.
func DiscardLogger() *SlogAdapter {
	return NewSlogAdapter(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
