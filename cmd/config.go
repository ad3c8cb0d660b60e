package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/teemow/reclaim/internal/reclaim"
)

// envOr returns the trimmed value of key, or def when it is unset or blank.
func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envUint reads a non-negative integer from key. An unparsable value is an
// error rather than a silent fallback.
func envUint(key string, def uint64) (uint64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return def, reclaim.NewInvalidInputError(
			fmt.Sprintf("Invalid %s value '%s': expected a whole number of seconds.", key, raw),
			fmt.Sprintf("Unset %s or set it to a positive integer, e.g. %s=15", key, key),
		)
	}
	return v, nil
}

// envBool reads a boolean from key, falling back to def on unset or
// unparsable values.
func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

// parseCommaSeparatedList splits s on commas, trimming whitespace and
// dropping empty entries. It returns nil when nothing remains.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// parseCalendarIDs parses a comma-separated list of calendar IDs, as found
// in RECLAIM_CALENDAR_IDS.
func parseCalendarIDs(s string) ([]uint64, error) {
	parts := parseCommaSeparatedList(s)
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, reclaim.NewInvalidInputError(
				fmt.Sprintf("Invalid calendar ID '%s': expected a number.", p),
				"Use numeric calendar IDs, e.g. RECLAIM_CALENDAR_IDS=829105,829106",
			)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseTaskID parses a positional task ID argument.
func parseTaskID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, reclaim.NewInvalidInputError(
			fmt.Sprintf("Invalid task ID '%s': expected a number.", raw),
			"Use the numeric ID shown by 'reclaim list', e.g. reclaim get 123",
		)
	}
	return id, nil
}

// parseCalendarID parses a positional calendar ID argument.
func parseCalendarID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, reclaim.NewInvalidInputError(
			fmt.Sprintf("Invalid calendar ID '%s': expected a number.", raw),
			"Use the numeric calendar ID, e.g. reclaim events get 829105 abc123",
		)
	}
	return id, nil
}
