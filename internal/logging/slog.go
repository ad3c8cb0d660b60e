package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation  = "operation"
	KeyCommand    = "command"
	KeyMethod     = "method"
	KeyURL        = "url"
	KeyHTTPStatus = "http_status"
	KeyRequestID  = "request_id"
	KeyDuration   = "duration"
	KeyStatus     = "status"
	KeyError      = "error"
	KeyTool       = "tool"
	KeyTaskID     = "task_id"
)

// Status values for consistent logging.
// Note: These are intentionally duplicated from instrumentation package
// to avoid circular dependencies.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Log output formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options configures the process logger.
type Options struct {
	// Debug enables debug level; otherwise only warnings and errors are shown.
	Debug bool
	// Format is FormatText (default) or FormatJSON.
	Format string
}

// New builds a slog.Logger writing to w. Commands write results to stdout,
// so the logger is normally pointed at stderr.
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	level := slog.LevelWarn
	if opts.Debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q, must be one of: text, json", opts.Format)
	}
}

// WithCommand returns a logger with the command attribute set.
func WithCommand(logger *slog.Logger, command string) *slog.Logger {
	return logger.With(slog.String(KeyCommand, command))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// TaskID returns a slog attribute for a task identifier.
func TaskID(id uint64) slog.Attr {
	return slog.Uint64(KeyTaskID, id)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
// This allows safely passing Err(maybeNilErr) without adding empty attributes.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	// Only the first line; API errors carry multi-line forensic bundles.
	msg, _, _ := strings.Cut(err.Error(), "\n")
	return slog.String(KeyError, msg)
}

// SanitizeToken returns a masked version of a token for logging.
// It returns a length indicator without exposing any token content.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}

// APIKey returns a slog attribute describing an API key without its content.
func APIKey(key string) slog.Attr {
	return slog.String("api_key", SanitizeToken(strings.TrimSpace(key)))
}
