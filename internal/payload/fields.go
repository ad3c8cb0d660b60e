package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/teemow/reclaim/internal/reclaim"
)

// Object is a top-level JSON object under construction.
type Object = map[string]any

// FlagJSON is the name used in messages for the raw JSON object flag.
const FlagJSON = "--json"

// ParseSetValue decodes raw as a JSON literal, falling back to the literal
// string when it is not valid JSON. Numbers are kept as json.Number so they
// round-trip without float conversion.
func ParseSetValue(raw string) any {
	v, err := decodeStrict(raw)
	if err != nil {
		return raw
	}
	return v
}

// ParseSetEntry splits entry on its first '=' and decodes the value.
func ParseSetEntry(entry string) (string, any, error) {
	rawKey, rawValue, ok := strings.Cut(entry, "=")
	if !ok {
		return "", nil, reclaim.NewInvalidInputError(
			fmt.Sprintf("Invalid --set value '%s'. Expected KEY=VALUE.", entry),
			"Examples: --set priority=P4 --set snoozeUntil=2026-02-25T17:00:00Z",
		)
	}

	key := strings.TrimSpace(rawKey)
	if key == "" {
		return "", nil, reclaim.NewInvalidInputError(
			fmt.Sprintf("Invalid --set value '%s': key cannot be empty.", entry),
			"Use a non-empty key, e.g. --set priority=P4",
		)
	}

	return key, ParseSetValue(strings.TrimSpace(rawValue)), nil
}

// ParseSetEntries parses every entry. Later entries win on repeated keys.
func ParseSetEntries(entries []string) (Object, error) {
	updates := make(Object, len(entries))
	for _, entry := range entries {
		key, value, err := ParseSetEntry(entry)
		if err != nil {
			return nil, err
		}
		updates[key] = value
	}
	return updates, nil
}

// ParseJSONObject parses raw as a JSON object. flag names the source in
// error messages.
func ParseJSONObject(raw, flag string) (Object, error) {
	hint := fmt.Sprintf(`Pass %s with a JSON object, e.g. %s '{"priority":"P4"}'.`, flag, flag)

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, reclaim.NewInvalidInputError(
			fmt.Sprintf("Invalid %s value: it cannot be empty.", flag),
			hint,
		)
	}

	v, err := decodeStrict(raw)
	if err != nil {
		return nil, reclaim.NewInvalidInputError(
			fmt.Sprintf("Invalid %s JSON: %v", flag, err),
			hint,
		)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, reclaim.NewInvalidInputError(
			fmt.Sprintf("Invalid %s value: expected a JSON object.", flag),
			hint,
		)
	}
	return obj, nil
}

// Merge copies every key of updates into target, replacing existing values.
func Merge(target, updates Object) {
	for k, v := range updates {
		target[k] = v
	}
}

// layer applies the optional JSON object and then the --set entries on top
// of base.
func layer(base Object, rawJSON *string, sets []string) error {
	if rawJSON != nil {
		obj, err := ParseJSONObject(*rawJSON, FlagJSON)
		if err != nil {
			return err
		}
		Merge(base, obj)
	}
	updates, err := ParseSetEntries(sets)
	if err != nil {
		return err
	}
	Merge(base, updates)
	return nil
}

// decodeStrict decodes exactly one JSON value from s and rejects trailing data.
func decodeStrict(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing characters after JSON value")
	}
	return v, nil
}

// toObject re-encodes v as a generic JSON object.
func toObject(v any) (Object, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj Object
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("expected object payload")
	}
	return obj, nil
}
