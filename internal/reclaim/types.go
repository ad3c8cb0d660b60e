package reclaim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// TaskFilter controls client-side retention of fetched tasks.
type TaskFilter int

const (
	// TaskFilterActive drops deleted, archived and cancelled tasks.
	TaskFilterActive TaskFilter = iota
	// TaskFilterAll keeps every task the API returns.
	TaskFilterAll
)

// String returns the label used in logs and the dashboard header.
func (f TaskFilter) String() string {
	if f == TaskFilterAll {
		return "all"
	}
	return "active"
}

// CompletionFilter is a second client-side predicate applied after TaskFilter.
type CompletionFilter int

const (
	CompletionAny CompletionFilter = iota
	CompletionOpen
	CompletionCompleted
)

// String returns the user-facing name of the filter.
func (f CompletionFilter) String() string {
	switch f {
	case CompletionOpen:
		return "open"
	case CompletionCompleted:
		return "completed"
	default:
		return ""
	}
}

// ParseCompletionFilter parses "open", "completed" or "" (no filtering).
func ParseCompletionFilter(s string) (CompletionFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return CompletionAny, nil
	case "open":
		return CompletionOpen, nil
	case "completed":
		return CompletionCompleted, nil
	default:
		return CompletionAny, NewInvalidInputError(
			fmt.Sprintf("Invalid --filter value '%s'.", s),
			"Use --filter open or --filter completed.",
		)
	}
}

// Task is a Reclaim task. Fields the client does not model are kept in
// Extra and written back unchanged on the next serialization.
type Task struct {
	ID       uint64  `json:"id"`
	Title    string  `json:"title"`
	Status   *string `json:"status,omitempty"`
	Due      *string `json:"due,omitempty"`
	Priority *string `json:"priority,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	Deleted  bool    `json:"deleted"`

	Extra map[string]json.RawMessage `json:"-"`
}

var taskKnownFields = []string{"id", "title", "status", "due", "priority", "notes", "deleted"}

// UnmarshalJSON decodes the modeled fields by exact key and keeps every
// other key in Extra. Keys differing only in case are not modeled fields.
// A modeled optional sent as null stays in Extra so it is written back as
// null.
func (t *Task) UnmarshalJSON(data []byte) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	out := Task{}
	if err := decodeRequired(all, "id", &out.ID); err != nil {
		return err
	}
	if err := decodeRequired(all, "title", &out.Title); err != nil {
		return err
	}
	optional := []struct {
		key    string
		target **string
	}{
		{"status", &out.Status},
		{"due", &out.Due},
		{"priority", &out.Priority},
		{"notes", &out.Notes},
	}
	for _, field := range optional {
		raw, ok := all[field.key]
		if !ok || isJSONNull(raw) {
			continue
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("task: field `%s`: %w", field.key, err)
		}
		*field.target = &v
		delete(all, field.key)
	}
	if raw, ok := all["deleted"]; ok {
		if !isJSONNull(raw) {
			if err := json.Unmarshal(raw, &out.Deleted); err != nil {
				return fmt.Errorf("task: field `deleted`: %w", err)
			}
		}
		delete(all, "deleted")
	}

	if len(all) > 0 {
		out.Extra = all
	}
	*t = out
	return nil
}

func decodeRequired(all map[string]json.RawMessage, key string, target any) error {
	raw, ok := all[key]
	if !ok || isJSONNull(raw) {
		return fmt.Errorf("task: missing field `%s`", key)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("task: field `%s`: %w", key, err)
	}
	delete(all, key)
	return nil
}

func isJSONNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// MarshalJSON flattens Extra next to the modeled fields. Modeled fields win
// on key collisions.
func (t Task) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(t.Extra)+len(taskKnownFields))
	for k, v := range t.Extra {
		out[k] = v
	}

	put := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out[key] = raw
		return nil
	}

	if err := put("id", t.ID); err != nil {
		return nil, err
	}
	if err := put("title", t.Title); err != nil {
		return nil, err
	}
	optional := []struct {
		key   string
		value *string
	}{
		{"status", t.Status},
		{"due", t.Due},
		{"priority", t.Priority},
		{"notes", t.Notes},
	}
	for _, field := range optional {
		if field.value == nil {
			continue
		}
		if err := put(field.key, *field.value); err != nil {
			return nil, err
		}
	}
	if err := put("deleted", t.Deleted); err != nil {
		return nil, err
	}

	return json.Marshal(out)
}

// StatusOr returns the task status or def when the status is absent.
func (t Task) StatusOr(def string) string {
	return stringOr(t.Status, def)
}

// DueOr returns the due timestamp or def when it is absent.
func (t Task) DueOr(def string) string {
	return stringOr(t.Due, def)
}

// PriorityOr returns the priority or def when it is absent.
func (t Task) PriorityOr(def string) string {
	return stringOr(t.Priority, def)
}

// ExtraString returns an unmodeled field when it holds a JSON string.
func (t Task) ExtraString(key string) (string, bool) {
	raw, ok := t.Extra[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// ExtraBool returns an unmodeled field when it holds a JSON boolean.
func (t Task) ExtraBool(key string) (bool, bool) {
	raw, ok := t.Extra[key]
	if !ok {
		return false, false
	}
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

func stringOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

// CreateTaskRequest is the body of POST tasks. Nil fields are omitted from
// the wire payload entirely.
type CreateTaskRequest struct {
	Title              string  `json:"title"`
	Notes              *string `json:"notes,omitempty"`
	Priority           *string `json:"priority,omitempty"`
	Due                *string `json:"due,omitempty"`
	TimeChunksRequired *uint32 `json:"timeChunksRequired,omitempty"`
	MinChunkSize       *uint32 `json:"minChunkSize,omitempty"`
	MaxChunkSize       *uint32 `json:"maxChunkSize,omitempty"`
	EventCategory      *string `json:"eventCategory,omitempty"`
	AlwaysPrivate      *bool   `json:"alwaysPrivate,omitempty"`
}

// EventListQuery selects events for GET events.
type EventListQuery struct {
	CalendarIDs   []uint64
	AllConnected  *bool
	Start         string
	End           string
	SourceDetails *bool
	Thin          *bool
}

// Values encodes the query. Blank Start and End are not sent.
func (q EventListQuery) Values() url.Values {
	values := url.Values{}
	for _, id := range q.CalendarIDs {
		values.Add("calendarIds", strconv.FormatUint(id, 10))
	}
	if q.AllConnected != nil {
		values.Set("allConnected", strconv.FormatBool(*q.AllConnected))
	}
	if start := strings.TrimSpace(q.Start); start != "" {
		values.Set("start", start)
	}
	if end := strings.TrimSpace(q.End); end != "" {
		values.Set("end", end)
	}
	EventOptions{SourceDetails: q.SourceDetails, Thin: q.Thin}.apply(values)
	return values
}

// EventOptions are the optional flags accepted by GET events/{calendarId}/{eventId}.
type EventOptions struct {
	SourceDetails *bool
	Thin          *bool
}

// Values encodes the options as query parameters.
func (o EventOptions) Values() url.Values {
	values := url.Values{}
	o.apply(values)
	return values
}

func (o EventOptions) apply(values url.Values) {
	if o.SourceDetails != nil {
		values.Set("sourceDetails", strconv.FormatBool(*o.SourceDetails))
	}
	if o.Thin != nil {
		values.Set("thin", strconv.FormatBool(*o.Thin))
	}
}

// Bool returns a pointer to b, for optional request fields.
func Bool(b bool) *bool { return &b }

// String returns a pointer to s, for optional request fields.
func String(s string) *string { return &s }

// Uint32 returns a pointer to n, for optional request fields.
func Uint32(n uint32) *uint32 { return &n }
