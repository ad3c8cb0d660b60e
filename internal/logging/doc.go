// Package logging provides structured logging utilities for the reclaim CLI.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Build the process logger once, pointed at stderr so command output on stdout
// stays machine-readable:
//
//	logger, err := logging.New(os.Stderr, logging.Options{Debug: true})
//
// Attach standard attributes:
//
//	logging.WithCommand(logger, "list").Debug("listing tasks",
//	    logging.Status(logging.StatusSuccess))
//
// # Security Considerations
//
// API keys are never logged directly; use SanitizeToken or APIKey.
package logging
