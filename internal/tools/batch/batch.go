package batch

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome of one task in a batch.
type Result struct {
	TaskID uint64          `json:"task_id"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// BatchResult aggregates the results of a batch operation.
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ParseTaskIDs parses a parameter that is a single task ID or an array of
// them. IDs may be JSON numbers or numeric strings, and a string holding a
// JSON array is unpacked. Duplicates are dropped, first occurrence wins.
func ParseTaskIDs(param any, paramName string) ([]uint64, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var items []any
	switch v := param.(type) {
	case float64:
		items = []any{v}
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		var arr []any
		if strings.HasPrefix(trimmed, "[") && json.Unmarshal([]byte(trimmed), &arr) == nil {
			items = arr
		} else {
			items = []any{trimmed}
		}
	case []any:
		items = v
	default:
		return nil, fmt.Errorf("%s must be a task ID or an array of task IDs", paramName)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", paramName)
	}

	seen := make(map[uint64]bool, len(items))
	ids := make([]uint64, 0, len(items))
	for i, item := range items {
		id, err := parseTaskID(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d] %w", paramName, i, err)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

func parseTaskID(item any) (uint64, error) {
	switch v := item.(type) {
	case float64:
		if v <= 0 || v != math.Trunc(v) || v > math.MaxUint64 {
			return 0, fmt.Errorf("must be a positive integer")
		}
		return uint64(v), nil
	case string:
		id, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil || id == 0 {
			return 0, fmt.Errorf("must be a positive integer, got %q", v)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("must be a number")
	}
}

// FormatResults creates a formatted JSON string from batch results
func FormatResults(results []Result) string {
	br := BatchResult{
		Total:   len(results),
		Results: results,
	}

	for _, r := range results {
		if r.Status == StatusSuccess {
			br.Successful++
		} else {
			br.Failed++
		}
	}

	jsonBytes, _ := json.MarshalIndent(br, "", "  ")
	return string(jsonBytes)
}

// ProcessBatch runs fn for each task in order and collects the results.
// A failure does not stop the remaining tasks.
func ProcessBatch(ids []uint64, fn func(id uint64) (any, error)) []Result {
	results := make([]Result, 0, len(ids))

	for _, id := range ids {
		res, err := fn(id)
		if err != nil {
			results = append(results, NewErrorResult(id, err))
			continue
		}
		results = append(results, NewSuccessResult(id, res))
	}

	return results
}

// NewSuccessResult creates a success result. v is stored as JSON; values
// that cannot be encoded are dropped.
func NewSuccessResult(id uint64, v any) Result {
	result := Result{TaskID: id, Status: StatusSuccess}
	if v == nil {
		return result
	}
	if raw, ok := v.(json.RawMessage); ok {
		result.Result = raw
		return result
	}
	if raw, err := json.Marshal(v); err == nil {
		result.Result = raw
	}
	return result
}

// NewErrorResult creates an error result
func NewErrorResult(id uint64, err error) Result {
	return Result{
		TaskID: id,
		Status: StatusError,
		Error:  err.Error(),
	}
}
