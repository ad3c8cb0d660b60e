package reclaim

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the client can report.
type Kind int

const (
	KindMissingAPIKey Kind = iota + 1
	KindInvalidBaseURL
	KindInvalidInput
	KindTransport
	KindAPI
	KindResponseParse
	KindOutput
)

// String returns a stable, log-friendly name for the kind.
func (k Kind) String() string {
	switch k {
	case KindMissingAPIKey:
		return "missing_api_key"
	case KindInvalidBaseURL:
		return "invalid_base_url"
	case KindInvalidInput:
		return "invalid_input"
	case KindTransport:
		return "transport"
	case KindAPI:
		return "api"
	case KindResponseParse:
		return "response_parse"
	case KindOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Remediation hints shared by the client and the CLI.
const (
	HintMissingAPIKey  = "Set RECLAIM_API_KEY or pass --api-key. You can find your key in Reclaim settings."
	HintInvalidBaseURL = "Use a valid URL, e.g. --base-url https://api.app.reclaim.ai/api"
)

// Error is the single structured error value returned by every operation.
// Message carries the full diagnostic text; Suggestion is an optional
// remediation hint shown separately to the user.
type Error struct {
	Kind       Kind
	Status     int
	Message    string
	Suggestion string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindAPI:
		return fmt.Sprintf("Reclaim API returned HTTP %d: %s", e.Status, e.Message)
	default:
		return e.Message
	}
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Hint returns the remediation hint, or an empty string when there is none.
func (e *Error) Hint() string {
	return e.Suggestion
}

// NewMissingAPIKeyError reports an absent or blank credential.
func NewMissingAPIKeyError() *Error {
	return &Error{
		Kind:       KindMissingAPIKey,
		Message:    "Missing Reclaim API key.",
		Suggestion: HintMissingAPIKey,
	}
}

// NewInvalidBaseURLError reports a base URL that cannot be used for requests.
func NewInvalidBaseURLError(raw string, cause error) *Error {
	return &Error{
		Kind:       KindInvalidBaseURL,
		Message:    fmt.Sprintf("Invalid base URL: %s", raw),
		Suggestion: HintInvalidBaseURL,
		Err:        cause,
	}
}

// NewInvalidInputError reports a caller-fixable validation failure.
func NewInvalidInputError(message, hint string) *Error {
	return &Error{
		Kind:       KindInvalidInput,
		Message:    message,
		Suggestion: hint,
	}
}

// NewTransportError reports a failure before a usable response was received.
func NewTransportError(message, hint string, cause error) *Error {
	return &Error{
		Kind:       KindTransport,
		Message:    message,
		Suggestion: hint,
		Err:        cause,
	}
}

// NewAPIError reports a non-2xx HTTP response.
func NewAPIError(status int, message, hint string) *Error {
	return &Error{
		Kind:       KindAPI,
		Status:     status,
		Message:    message,
		Suggestion: hint,
	}
}

// NewResponseParseError reports a 2xx response whose body could not be decoded.
func NewResponseParseError(message, hint string, cause error) *Error {
	return &Error{
		Kind:       KindResponseParse,
		Message:    message,
		Suggestion: hint,
		Err:        cause,
	}
}

// NewOutputError reports a local rendering failure.
func NewOutputError(message string, cause error) *Error {
	return &Error{
		Kind:    KindOutput,
		Message: message,
		Err:     cause,
	}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// HintOf returns the remediation hint carried by err, if any.
func HintOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Hint()
	}
	return ""
}
