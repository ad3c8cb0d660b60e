package batch

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseTaskIDs(t *testing.T) {
	tests := []struct {
		name      string
		input     any
		paramName string
		want      []uint64
		wantErr   bool
	}{
		{
			name:      "single number",
			input:     float64(42),
			paramName: "task_id",
			want:      []uint64{42},
		},
		{
			name:      "numeric string",
			input:     "42",
			paramName: "task_id",
			want:      []uint64{42},
		},
		{
			name:      "array of numbers",
			input:     []any{float64(1), float64(2), float64(3)},
			paramName: "task_id",
			want:      []uint64{1, 2, 3},
		},
		{
			name:      "mixed array",
			input:     []any{float64(1), "2"},
			paramName: "task_id",
			want:      []uint64{1, 2},
		},
		{
			name:      "duplicates dropped",
			input:     []any{float64(5), float64(5), float64(6)},
			paramName: "task_id",
			want:      []uint64{5, 6},
		},
		{
			name:      "JSON string array",
			input:     `[7, "8"]`,
			paramName: "task_id",
			want:      []uint64{7, 8},
		},
		{
			name:      "nil input",
			input:     nil,
			paramName: "task_id",
			wantErr:   true,
		},
		{
			name:      "empty string",
			input:     "  ",
			paramName: "task_id",
			wantErr:   true,
		},
		{
			name:      "empty array",
			input:     []any{},
			paramName: "task_id",
			wantErr:   true,
		},
		{
			name:      "JSON string empty array",
			input:     `[]`,
			paramName: "task_id",
			wantErr:   true,
		},
		{
			name:      "zero",
			input:     float64(0),
			paramName: "task_id",
			wantErr:   true,
		},
		{
			name:      "fraction",
			input:     []any{float64(1), 2.5},
			paramName: "task_id",
			wantErr:   true,
		},
		{
			name:      "not a number",
			input:     "abc",
			paramName: "task_id",
			wantErr:   true,
		},
		{
			name:      "invalid type",
			input:     true,
			paramName: "task_id",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTaskIDs(tt.input, tt.paramName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseTaskIDs() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !idsEqual(got, tt.want) {
				t.Errorf("ParseTaskIDs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatResults(t *testing.T) {
	results := []Result{
		NewSuccessResult(1, map[string]any{"id": 1}),
		NewSuccessResult(2, nil),
		NewErrorResult(3, errors.New("Something went wrong")),
	}

	output := FormatResults(results)

	var br BatchResult
	if err := json.Unmarshal([]byte(output), &br); err != nil {
		t.Fatalf("Failed to parse output JSON: %v", err)
	}

	if br.Total != 3 {
		t.Errorf("Total = %d, want 3", br.Total)
	}
	if br.Successful != 2 {
		t.Errorf("Successful = %d, want 2", br.Successful)
	}
	if br.Failed != 1 {
		t.Errorf("Failed = %d, want 1", br.Failed)
	}
	var first map[string]int
	if err := json.Unmarshal(br.Results[0].Result, &first); err != nil {
		t.Fatalf("Failed to parse Results[0].Result: %v", err)
	}
	if first["id"] != 1 {
		t.Errorf("Results[0].Result = %s, want id 1", br.Results[0].Result)
	}
}

func TestProcessBatch(t *testing.T) {
	ids := []uint64{1, 2, 3}

	fn := func(id uint64) (any, error) {
		if id == 2 {
			return nil, errors.New("failed to process 2")
		}
		return json.RawMessage(`{"deleted":true}`), nil
	}

	results := ProcessBatch(ids, fn)

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}

	if results[0].Status != StatusSuccess {
		t.Errorf("results[0].Status = %s, want success", results[0].Status)
	}
	if string(results[0].Result) != `{"deleted":true}` {
		t.Errorf("results[0].Result = %s", results[0].Result)
	}

	if results[1].Status != StatusError {
		t.Errorf("results[1].Status = %s, want error", results[1].Status)
	}
	if results[1].Error != "failed to process 2" {
		t.Errorf("results[1].Error = %s, want 'failed to process 2'", results[1].Error)
	}

	if results[2].TaskID != 3 || results[2].Status != StatusSuccess {
		t.Errorf("results[2] = %+v", results[2])
	}
}

func idsEqual(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
