package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/reclaim/internal/reclaim"
)

func sampleTasks() []reclaim.Task {
	return []reclaim.Task{
		{ID: 1, Title: "Write report", Status: reclaim.String("NEW"), Due: reclaim.String("2026-02-19T15:00:00Z")},
		{ID: 2, Title: "Ship release", Status: reclaim.String("COMPLETE")},
		{ID: 3, Title: "Old idea", Status: reclaim.String("ARCHIVED")},
	}
}

func TestListHuman(t *testing.T) {
	stdout, _, err := runCLI(t, newFakeAPI(sampleTasks()...), "list")
	require.NoError(t, err)

	assert.Contains(t, stdout, "#1      [NEW        ] Write report (due: 2026-02-19T15:00:00Z)")
	assert.Contains(t, stdout, "#2      [COMPLETE   ] Ship release (due: -)")
	assert.NotContains(t, stdout, "Old idea")
	assert.Contains(t, stdout, "Tip: use --format json for machine-readable output.")
}

func TestListAllIncludesArchived(t *testing.T) {
	stdout, _, err := runCLI(t, newFakeAPI(sampleTasks()...), "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Old idea")
}

func TestListCompletionFilter(t *testing.T) {
	stdout, _, err := runCLI(t, newFakeAPI(sampleTasks()...), "list", "--filter", "open", "--format", "json")
	require.NoError(t, err)

	var tasks []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "Write report", tasks[0]["title"])
}

func TestListEmptyMessages(t *testing.T) {
	stdout, _, err := runCLI(t, newFakeAPI(), "list")
	require.NoError(t, err)
	assert.Equal(t, "No active tasks found.\n", stdout)

	stdout, _, err = runCLI(t, newFakeAPI(sampleTasks()[0]), "list", "-a", "--filter", "completed")
	require.NoError(t, err)
	assert.Equal(t, "No tasks found with completion status 'completed'.\n", stdout)
}

func TestListInvalidFilter(t *testing.T) {
	_, stderr, err := runCLI(t, newFakeAPI(), "list", "--filter", "done")
	require.Error(t, err)
	assert.Contains(t, stderr, "Invalid --filter value 'done'.")
}

func TestGet(t *testing.T) {
	stdout, _, err := runCLI(t, newFakeAPI(sampleTasks()...), "get", "1")
	require.NoError(t, err)
	assert.Equal(t, "#1 Write report\nstatus: NEW\ndue: 2026-02-19T15:00:00Z\n", stdout)

	_, stderr, err := runCLI(t, newFakeAPI(), "show", "abc")
	require.Error(t, err)
	assert.True(t, reclaim.IsKind(err, reclaim.KindInvalidInput))
	assert.Contains(t, stderr, "Invalid task ID 'abc'")
}

func TestPutWithSetFetchesCurrentTask(t *testing.T) {
	api := newFakeAPI(sampleTasks()...)
	stdout, _, err := runCLI(t, api, "put", "1", "--set", "priority=P2", "--set", "snoozed=true", "--notification-key", "nk")
	require.NoError(t, err)

	assert.Equal(t, 1, api.gets)
	require.NotNil(t, api.put)
	assert.Equal(t, uint64(1), api.put.taskID)
	assert.Equal(t, "nk", api.put.notificationKey)
	assert.Equal(t, "Write report", api.put.payload["title"])
	assert.Equal(t, "P2", api.put.payload["priority"])
	assert.Equal(t, true, api.put.payload["snoozed"])
	assert.Contains(t, stdout, "Updated (PUT) task #1: replaced")
}

func TestPutWithJSONSkipsFetch(t *testing.T) {
	api := newFakeAPI(sampleTasks()...)
	_, _, err := runCLI(t, api, "put", "1", "--json", `{"title":"A","priority":"P3"}`, "--set", "priority=P1")
	require.NoError(t, err)

	assert.Equal(t, 0, api.gets)
	assert.Equal(t, map[string]any{"title": "A", "priority": "P1"}, api.put.payload)
}

func TestPutRequiresData(t *testing.T) {
	api := newFakeAPI(sampleTasks()...)
	_, stderr, err := runCLI(t, api, "put", "1")
	require.Error(t, err)
	assert.Nil(t, api.put)
	assert.Contains(t, stderr, "PUT requires update data.")
}

func TestPatch(t *testing.T) {
	api := newFakeAPI()
	stdout, _, err := runCLI(t, api, "patch", "7", "--set", "priority=P4", "--format", "json")
	require.NoError(t, err)

	require.NotNil(t, api.patched)
	assert.Equal(t, map[string]any{"priority": "P4"}, api.patched.payload)

	var task map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &task))
	assert.Equal(t, "patched", task["title"])
}

func TestPatchRequiresAField(t *testing.T) {
	api := newFakeAPI()
	_, stderr, err := runCLI(t, api, "patch", "7", "--json", "{}")
	require.Error(t, err)
	assert.Nil(t, api.patched)
	assert.Contains(t, stderr, "PATCH requires at least one field update.")
}

func TestDeleteJSON(t *testing.T) {
	api := newFakeAPI()
	stdout, _, err := runCLI(t, api, "rm", "5", "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, []uint64{5}, api.deleted)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, map[string]any{"task_id": float64(5), "deleted": true, "api_response": nil}, result)
}

func TestDeleteHumanShowsResponse(t *testing.T) {
	api := newFakeAPI()
	api.deleteResp = json.RawMessage(`{"ok":true}`)
	stdout, _, err := runCLI(t, api, "delete", "5")
	require.NoError(t, err)
	assert.Equal(t, "Deleted task #5.\nAPI response:\n{\n  \"ok\": true\n}\n", stdout)
}

func TestCreateResolvesChunkDefaults(t *testing.T) {
	api := newFakeAPI()
	stdout, _, err := runCLI(t, api, "create", "--title", "Write report", "--time-chunks-required", "8", "--due", "2026-02-19T15:00:00Z")
	require.NoError(t, err)

	req := api.created
	require.NotNil(t, req)
	assert.Equal(t, "Write report", req.Title)
	require.NotNil(t, req.MinChunkSize)
	require.NotNil(t, req.MaxChunkSize)
	assert.Equal(t, uint32(1), *req.MinChunkSize)
	assert.Equal(t, uint32(8), *req.MaxChunkSize)
	require.NotNil(t, req.EventCategory)
	assert.Equal(t, "WORK", *req.EventCategory)
	require.NotNil(t, req.AlwaysPrivate)
	assert.True(t, *req.AlwaysPrivate)
	assert.Equal(t, "Created task #42: Write report\nDue: 2026-02-19T15:00:00Z\n", stdout)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "blank title",
			args:    []string{"create", "--title", "  "},
			wantErr: "Invalid --title value",
		},
		{
			name:    "blank due",
			args:    []string{"create", "--title", "x", "--due", ""},
			wantErr: "Invalid --due value: it cannot be empty.",
		},
		{
			name:    "zero min chunk",
			args:    []string{"create", "--title", "x", "--time-chunks-required", "4", "--min-chunk-size", "0"},
			wantErr: "Invalid --min-chunk-size value: 0.",
		},
		{
			name:    "chunk size without total",
			args:    []string{"create", "--title", "x", "--max-chunk-size", "2"},
			wantErr: "require --time-chunks-required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			_, stderr, err := runCLI(t, api, tt.args...)
			require.Error(t, err)
			assert.True(t, reclaim.IsKind(err, reclaim.KindInvalidInput))
			assert.Nil(t, api.created)
			assert.Contains(t, stderr, tt.wantErr)
		})
	}
}
