package reclaim

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTask(t *testing.T, raw string) Task {
	t.Helper()
	var task Task
	require.NoError(t, json.Unmarshal([]byte(raw), &task))
	return task
}

func TestIsActive(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "plain", raw: `{"id":1,"title":"a"}`, want: true},
		{name: "in progress", raw: `{"id":1,"title":"a","status":"IN_PROGRESS"}`, want: true},
		{name: "completed stays active", raw: `{"id":1,"title":"a","status":"COMPLETE"}`, want: true},
		{name: "deleted", raw: `{"id":1,"title":"a","deleted":true}`, want: false},
		{name: "archived", raw: `{"id":1,"title":"a","status":"ARCHIVED"}`, want: false},
		{name: "cancelled", raw: `{"id":1,"title":"a","status":"CANCELLED"}`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsActive(mustTask(t, tt.raw)))
		})
	}
}

func TestFilterTasks(t *testing.T) {
	tasks := []Task{
		mustTask(t, `{"id":1,"title":"deleted","deleted":true}`),
		mustTask(t, `{"id":2,"title":"active"}`),
		mustTask(t, `{"id":3,"title":"archived","status":"ARCHIVED"}`),
	}

	active := FilterTasks(tasks, TaskFilterActive)
	require.Len(t, active, 1)
	assert.Equal(t, uint64(2), active[0].ID)

	assert.Len(t, FilterTasks(tasks, TaskFilterAll), 3)
}

func TestIsCompleted(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "no signal", raw: `{"id":1,"title":"a"}`, want: false},
		{name: "status COMPLETE", raw: `{"id":1,"title":"a","status":"COMPLETE"}`, want: true},
		{name: "status lowercase done", raw: `{"id":1,"title":"a","status":"done"}`, want: true},
		{name: "status finished", raw: `{"id":1,"title":"a","status":"Finished"}`, want: true},
		{name: "status scheduled", raw: `{"id":1,"title":"a","status":"SCHEDULED"}`, want: false},
		{name: "completionStatus", raw: `{"id":1,"title":"a","status":"NEW","completionStatus":"completed"}`, want: true},
		{name: "completed true", raw: `{"id":1,"title":"a","completed":true}`, want: true},
		{name: "completed false", raw: `{"id":1,"title":"a","completed":false}`, want: false},
		{name: "isComplete true", raw: `{"id":1,"title":"a","isComplete":true}`, want: true},
		{name: "completed takes precedence over isComplete", raw: `{"id":1,"title":"a","completed":false,"isComplete":true}`, want: false},
		{name: "non-bool completed ignored", raw: `{"id":1,"title":"a","completed":"yes","isComplete":true}`, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCompleted(mustTask(t, tt.raw)))
		})
	}
}

func TestApplyCompletionFilter(t *testing.T) {
	tasks := []Task{
		mustTask(t, `{"id":1,"title":"open"}`),
		mustTask(t, `{"id":2,"title":"done","status":"DONE"}`),
		mustTask(t, `{"id":3,"title":"flagged","isComplete":true}`),
	}

	assert.Len(t, ApplyCompletionFilter(tasks, CompletionAny), 3)

	open := ApplyCompletionFilter(tasks, CompletionOpen)
	require.Len(t, open, 1)
	assert.Equal(t, uint64(1), open[0].ID)

	completed := ApplyCompletionFilter(tasks, CompletionCompleted)
	require.Len(t, completed, 2)
	assert.Equal(t, uint64(2), completed[0].ID)
	assert.Equal(t, uint64(3), completed[1].ID)
}

func TestParseCompletionFilter(t *testing.T) {
	for input, want := range map[string]CompletionFilter{
		"":          CompletionAny,
		"open":      CompletionOpen,
		" OPEN ":    CompletionOpen,
		"completed": CompletionCompleted,
	} {
		got, err := ParseCompletionFilter(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseCompletionFilter("archived")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidInput))
	assert.Equal(t, "Invalid --filter value 'archived'.", err.Error())
	assert.Equal(t, "Use --filter open or --filter completed.", HintOf(err))
}
