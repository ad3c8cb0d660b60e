package reclaim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// DebugBodyLimit caps raw body and payload dumps, in characters.
	DebugBodyLimit = 8192
	// DebugSummaryLimit caps inline summaries, in characters.
	DebugSummaryLimit = 512

	truncationMarker = "... <truncated>"
)

var requestIDHeaders = []string{"x-request-id", "x-correlation-id", "x-amzn-trace-id"}

// RequestSnapshot is the request as it was sent, captured once before the
// request leaves the client and threaded through every error path.
type RequestSnapshot struct {
	Method string
	URL    string
	Body   string
}

// context renders the snapshot for transport error messages.
func (s RequestSnapshot) context() string {
	lines := []string{fmt.Sprintf("Request: %s %s", s.Method, s.URL)}
	if s.Body != "" {
		lines = append(lines, "Request payload: "+Truncate(prettyJSONOrRaw(s.Body), DebugSummaryLimit))
	}
	return strings.Join(lines, "\n")
}

// exchange is one completed HTTP round trip with its body fully read.
type exchange struct {
	request     RequestSnapshot
	status      int
	responseURL string
	header      http.Header
	body        string
}

func (e *exchange) success() bool {
	return e.status >= 200 && e.status < 300
}

// decodeJSON interprets a response whose success body must decode into T.
func decodeJSON[T any](ex *exchange) (T, error) {
	var out T
	if !ex.success() {
		return out, parseAPIError(ex)
	}
	if err := json.Unmarshal([]byte(ex.body), &out); err != nil {
		return out, parseFailure(ex, err)
	}
	return out, nil
}

// decodeValueOrNull interprets a response where an empty success body means
// "no content". A nil RawMessage is returned in that case.
func decodeValueOrNull(ex *exchange) (json.RawMessage, error) {
	if !ex.success() {
		return nil, parseAPIError(ex)
	}
	body := strings.TrimSpace(ex.body)
	if body == "" {
		return nil, nil
	}
	if !json.Valid([]byte(body)) {
		var probe any
		err := json.Unmarshal([]byte(body), &probe)
		return nil, parseFailure(ex, err)
	}
	return json.RawMessage(body), nil
}

func parseFailure(ex *exchange, cause error) *Error {
	lines := []string{
		fmt.Sprintf("Reclaim API returned a non-JSON success response: %v", cause),
		fmt.Sprintf("Request: %s %s", ex.request.Method, ex.request.URL),
	}
	if body := strings.TrimSpace(ex.body); body != "" {
		lines = append(lines, "Raw response body: "+Truncate(prettyJSONOrRaw(body), DebugBodyLimit))
	} else {
		lines = append(lines, "Raw response body: <empty>")
	}
	return NewResponseParseError(
		strings.Join(lines, "\n"),
		"Keep the raw response body above when reporting this issue.",
		cause,
	)
}

// parseAPIError builds the forensic bundle for a non-2xx response.
func parseAPIError(ex *exchange) *Error {
	body := strings.TrimSpace(ex.body)

	var parsed any
	hasJSON := false
	if body != "" {
		dec := json.NewDecoder(strings.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&parsed); err == nil && !dec.More() {
			hasJSON = true
		}
	}

	message := ""
	if hasJSON {
		message = ExtractAPIMessage(parsed)
	}
	if message == "" && body != "" {
		message = Truncate(body, DebugSummaryLimit)
	}
	if message == "" {
		message = fmt.Sprintf("Request failed with HTTP %d.", ex.status)
	}

	lines := []string{
		fmt.Sprintf("Request: %s %s", ex.request.Method, ex.request.URL),
		"API message: " + message,
	}
	if ex.responseURL != "" && ex.responseURL != ex.request.URL {
		lines = append(lines, "Response URL: "+ex.responseURL)
	}
	if id := ExtractRequestID(ex.header); id != "" {
		lines = append(lines, "Reclaim request id: "+id)
	}
	switch {
	case hasJSON:
		lines = append(lines, "Raw response JSON: "+Truncate(prettyJSONOrRaw(body), DebugBodyLimit))
	case body == "":
		lines = append(lines, "Raw response body: <empty>")
	default:
		lines = append(lines, "Raw response body: "+Truncate(body, DebugBodyLimit))
	}
	if ex.request.Body != "" {
		lines = append(lines, "Request payload: "+Truncate(prettyJSONOrRaw(ex.request.Body), DebugBodyLimit))
	}

	return NewAPIError(ex.status, strings.Join(lines, "\n"), HintForStatus(ex.status))
}

// ExtractAPIMessage finds a human-readable message in a decoded error body.
// It checks message, title, error and detail, then the errors field.
func ExtractAPIMessage(value any) string {
	obj, ok := value.(map[string]any)
	if !ok {
		return ""
	}
	for _, field := range []string{"message", "title", "error", "detail"} {
		if s, ok := obj[field].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	if errs, ok := obj["errors"]; ok {
		return strings.TrimSpace(extractErrorsMessage(errs))
	}
	return ""
}

func extractErrorsMessage(errs any) string {
	switch v := errs.(type) {
	case string:
		return v
	case []any:
		for _, item := range v {
			if msg, ok := messageFromItem(item); ok {
				return msg
			}
		}
	case map[string]any:
		fields := make([]string, 0, len(v))
		for field := range v {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			switch entry := v[field].(type) {
			case string:
				return field + ": " + entry
			case []any:
				for _, item := range entry {
					if msg, ok := messageFromItem(item); ok {
						return field + ": " + msg
					}
				}
			}
		}
	}
	return ""
}

func messageFromItem(item any) (string, bool) {
	switch v := item.(type) {
	case string:
		return v, true
	case map[string]any:
		if msg, ok := v["message"].(string); ok {
			return msg, true
		}
	}
	return "", false
}

// ExtractRequestID returns the first non-blank upstream request id header.
func ExtractRequestID(header http.Header) string {
	for _, name := range requestIDHeaders {
		if v := strings.TrimSpace(header.Get(name)); v != "" {
			return v
		}
	}
	return ""
}

// HintForStatus returns the remediation hint for an HTTP status.
func HintForStatus(status int) string {
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return "Check command arguments and inspect the raw response JSON above for field-level validation details."
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "Set a valid API key with RECLAIM_API_KEY or --api-key, then retry."
	case status == http.StatusNotFound:
		return "Verify the task ID exists in your Reclaim account."
	case status == http.StatusTooManyRequests:
		return "Rate limited by Reclaim. Wait a few seconds and retry."
	case status >= 500 && status <= 599:
		return "Reclaim returned a 5xx. This can be an outage OR a rejected payload surfaced as internal_error. Compare the request payload above with a known-good request."
	default:
		return ""
	}
}

// Truncate caps s at max characters (runes, not bytes) and appends a
// truncation marker when anything was cut.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i] + truncationMarker
		}
		count++
	}
	return s
}

// prettyJSONOrRaw indents s when it is valid JSON and returns it unchanged otherwise.
func prettyJSONOrRaw(s string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(s), "", "  "); err != nil {
		return s
	}
	return buf.String()
}
