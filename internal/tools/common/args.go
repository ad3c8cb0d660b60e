package common

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Argument names shared by several tools.
const (
	ArgTaskID          = "task_id"
	ArgNotificationKey = "notification_key"
)

// IDFromArgs reads a numeric identifier such as a task or calendar ID. MCP
// clients send numbers as JSON numbers, but numeric strings are accepted
// too. A missing key yields 0 and an error.
func IDFromArgs(args map[string]any, key string) (uint64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, fmt.Errorf("%s is required", key)
	}
	return ParseID(raw, key)
}

// ParseID converts a JSON number or numeric string into a positive ID.
func ParseID(raw any, key string) (uint64, error) {
	switch v := raw.(type) {
	case float64:
		if v <= 0 || v != math.Trunc(v) || v > math.MaxUint64 {
			return 0, fmt.Errorf("%s must be a positive integer", key)
		}
		return uint64(v), nil
	case json.Number:
		return parseIDString(v.String(), key)
	case string:
		return parseIDString(v, key)
	default:
		return 0, fmt.Errorf("%s must be a number", key)
	}
}

func parseIDString(s, key string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, s)
	}
	return id, nil
}

// OptionalString returns a pointer to a non-empty trimmed string argument,
// or nil when it is absent or blank.
func OptionalString(args map[string]any, key string) *string {
	v, ok := args[key].(string)
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// OptionalBool returns a pointer to a boolean argument, or nil when absent.
func OptionalBool(args map[string]any, key string) *bool {
	v, ok := args[key].(bool)
	if !ok {
		return nil
	}
	return &v
}

// OptionalUint32 returns a pointer to a non-negative integer argument, or
// nil when absent.
func OptionalUint32(args map[string]any, key string) (*uint32, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	f, ok := raw.(float64)
	if !ok || f < 0 || f != math.Trunc(f) || f > math.MaxUint32 {
		return nil, fmt.Errorf("%s must be a non-negative integer", key)
	}
	n := uint32(f)
	return &n, nil
}

// StringSlice reads an argument that may be a single string or an array of
// strings. Blank entries are dropped.
func StringSlice(args map[string]any, key string) ([]string, error) {
	switch v := args[key].(type) {
	case nil:
		return nil, nil
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}, nil
		}
		return nil, nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", key, i)
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", key)
	}
}

// ObjectArg returns a JSON object argument re-encoded as a string, so it
// can go through the same parser as the CLI --json flag.
func ObjectArg(args map[string]any, key string) (*string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	if s, ok := raw.(string); ok {
		return &s, nil
	}
	if _, ok := raw.(map[string]any); !ok {
		return nil, fmt.Errorf("%s must be a JSON object", key)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	s := string(b)
	return &s, nil
}
