package reclaim_tools

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/reclaim/internal/reclaim"
	"github.com/teemow/reclaim/internal/server"
)

type patchCall struct {
	taskID          uint64
	payload         map[string]any
	notificationKey string
}

type fakeAPI struct {
	tasks      map[uint64]reclaim.Task
	listFilter reclaim.TaskFilter
	created    *reclaim.CreateTaskRequest
	patched    *patchCall
	put        *patchCall
	deleted    []uint64
	applied    any
	eventQuery *reclaim.EventListQuery
	err        error
}

func newFakeAPI(tasks ...reclaim.Task) *fakeAPI {
	f := &fakeAPI{tasks: map[uint64]reclaim.Task{}}
	for _, t := range tasks {
		f.tasks[t.ID] = t
	}
	return f
}

func (f *fakeAPI) ListTasks(_ context.Context, filter reclaim.TaskFilter) ([]reclaim.Task, error) {
	f.listFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	ids := make([]uint64, 0, len(f.tasks))
	for id := range f.tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]reclaim.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.tasks[id])
	}
	return reclaim.FilterTasks(out, filter), nil
}

func (f *fakeAPI) GetTask(_ context.Context, taskID uint64) (*reclaim.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tasks[taskID]
	if !ok {
		return nil, reclaim.NewAPIError(404, "Task not found", reclaim.HintForStatus(404))
	}
	return &t, nil
}

func (f *fakeAPI) CreateTask(_ context.Context, req reclaim.CreateTaskRequest) (*reclaim.Task, error) {
	f.created = &req
	return &reclaim.Task{ID: 99, Title: req.Title}, nil
}

func (f *fakeAPI) ListEvents(_ context.Context, query reclaim.EventListQuery) ([]json.RawMessage, error) {
	f.eventQuery = &query
	return []json.RawMessage{json.RawMessage(`{"eventId":"e1"}`)}, nil
}

func (f *fakeAPI) GetEvent(_ context.Context, calendarID uint64, eventID string, _ reclaim.EventOptions) (json.RawMessage, error) {
	return json.RawMessage(`{"eventId":"` + eventID + `"}`), nil
}

func (f *fakeAPI) ApplyScheduleActions(_ context.Context, request any) (json.RawMessage, error) {
	f.applied = request
	return json.RawMessage(`{"results":[]}`), nil
}

func (f *fakeAPI) PutTask(_ context.Context, taskID uint64, payload map[string]any, key string) (*reclaim.Task, error) {
	f.put = &patchCall{taskID: taskID, payload: payload, notificationKey: key}
	return &reclaim.Task{ID: taskID, Title: "updated"}, nil
}

func (f *fakeAPI) PatchTask(_ context.Context, taskID uint64, payload map[string]any, key string) (*reclaim.Task, error) {
	f.patched = &patchCall{taskID: taskID, payload: payload, notificationKey: key}
	return &reclaim.Task{ID: taskID, Title: "patched"}, nil
}

func (f *fakeAPI) DeleteTask(_ context.Context, taskID uint64, _ string) (json.RawMessage, error) {
	if taskID == 13 {
		return nil, errors.New("boom")
	}
	f.deleted = append(f.deleted, taskID)
	return nil, nil
}

func newTestContext(t *testing.T, api reclaim.API) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), api)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, result.IsError
}

func TestRegisterReclaimTools_ReadOnly(t *testing.T) {
	tests := []struct {
		name     string
		readOnly bool
		want     []string
	}{
		{
			name:     "read-only",
			readOnly: true,
			want: []string{
				"reclaim_get_event",
				"reclaim_get_task",
				"reclaim_list_events",
				"reclaim_list_tasks",
			},
		},
		{
			name:     "read-write",
			readOnly: false,
			want: []string{
				"reclaim_apply_schedule_actions",
				"reclaim_create_event",
				"reclaim_create_task",
				"reclaim_delete_event",
				"reclaim_delete_task",
				"reclaim_get_event",
				"reclaim_get_task",
				"reclaim_list_events",
				"reclaim_list_tasks",
				"reclaim_patch_task",
				"reclaim_put_task",
				"reclaim_update_event",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
			require.NoError(t, RegisterReclaimTools(s, newTestContext(t, newFakeAPI()), tt.readOnly))

			var got []string
			for name := range s.ListTools() {
				got = append(got, name)
			}
			sort.Strings(got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListTasks(t *testing.T) {
	api := newFakeAPI(
		reclaim.Task{ID: 1, Title: "open", Status: reclaim.String("NEW")},
		reclaim.Task{ID: 2, Title: "done", Status: reclaim.String("COMPLETE")},
		reclaim.Task{ID: 3, Title: "gone", Deleted: true},
	)
	handler := handleListTasks(newTestContext(t, api))

	text, isErr := call(t, handler, map[string]any{argFilter: "completed"})
	require.False(t, isErr, text)
	assert.Equal(t, reclaim.TaskFilterActive, api.listFilter)

	var tasks []reclaim.Task
	require.NoError(t, json.Unmarshal([]byte(text), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, uint64(2), tasks[0].ID)

	text, isErr = call(t, handler, map[string]any{argAll: true})
	require.False(t, isErr, text)
	assert.Equal(t, reclaim.TaskFilterAll, api.listFilter)
	require.NoError(t, json.Unmarshal([]byte(text), &tasks))
	assert.Len(t, tasks, 3)
}

func TestListTasks_InvalidFilter(t *testing.T) {
	text, isErr := call(t, handleListTasks(newTestContext(t, newFakeAPI())), map[string]any{argFilter: "later"})
	assert.True(t, isErr)
	assert.Equal(t, "Invalid --filter value 'later'.\nHint: Use --filter open or --filter completed.", text)
}

func TestGetTask(t *testing.T) {
	api := newFakeAPI(reclaim.Task{ID: 7, Title: "seven"})
	handler := handleGetTask(newTestContext(t, api))

	text, isErr := call(t, handler, map[string]any{"task_id": float64(7)})
	require.False(t, isErr, text)
	assert.Contains(t, text, `"title": "seven"`)

	text, isErr = call(t, handler, map[string]any{"task_id": float64(8)})
	assert.True(t, isErr)
	assert.Contains(t, text, "Reclaim API returned HTTP 404")
	assert.Contains(t, text, "\nHint: ")

	text, isErr = call(t, handler, map[string]any{"task_id": []any{float64(7), "8"}})
	require.False(t, isErr, text)
	assert.Contains(t, text, `"successful": 1`)
	assert.Contains(t, text, `"failed": 1`)
}

func TestCreateTask(t *testing.T) {
	api := newFakeAPI()
	handler := handleCreateTask(newTestContext(t, api))

	text, isErr := call(t, handler, map[string]any{
		argTitle:              "Write report",
		argPriority:           "p2",
		argTimeChunksRequired: float64(4),
	})
	require.False(t, isErr, text)
	require.NotNil(t, api.created)

	assert.Equal(t, "Write report", api.created.Title)
	assert.Equal(t, "P2", *api.created.Priority)
	assert.Equal(t, uint32(1), *api.created.MinChunkSize)
	assert.Equal(t, uint32(4), *api.created.MaxChunkSize)
	assert.Equal(t, "WORK", *api.created.EventCategory)
	assert.True(t, *api.created.AlwaysPrivate)
}

func TestCreateTask_Validation(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		wantMsg string
	}{
		{
			name:    "blank due",
			args:    map[string]any{argTitle: "x", argDue: "  "},
			wantMsg: "Invalid --due value: it cannot be empty.",
		},
		{
			name:    "chunk bounds without total",
			args:    map[string]any{argTitle: "x", argMinChunkSize: float64(2)},
			wantMsg: "Invalid chunk options: --min-chunk-size/--max-chunk-size require --time-chunks-required.",
		},
		{
			name:    "negative chunks",
			args:    map[string]any{argTitle: "x", argTimeChunksRequired: float64(-1)},
			wantMsg: "time_chunks_required must be a non-negative integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			text, isErr := call(t, handleCreateTask(newTestContext(t, api)), tt.args)
			assert.True(t, isErr)
			assert.Contains(t, text, tt.wantMsg)
			assert.Nil(t, api.created)
		})
	}
}

func TestPatchTask(t *testing.T) {
	api := newFakeAPI()
	handler := handlePatchTask(newTestContext(t, api))

	text, isErr := call(t, handler, map[string]any{
		"task_id":          float64(5),
		argJSON:            map[string]any{"priority": "P3", "title": "from json"},
		argSet:             []any{"priority=P1", "snoozed=true"},
		"notification_key": "nk",
	})
	require.False(t, isErr, text)
	require.NotNil(t, api.patched)

	assert.Equal(t, uint64(5), api.patched.taskID)
	assert.Equal(t, "nk", api.patched.notificationKey)
	assert.Equal(t, map[string]any{"priority": "P1", "title": "from json", "snoozed": true}, api.patched.payload)

	text, isErr = call(t, handler, map[string]any{"task_id": float64(5)})
	assert.True(t, isErr)
	assert.Contains(t, text, "PATCH requires at least one field update.")
}

func TestPutTask_FetchesCurrentTask(t *testing.T) {
	api := newFakeAPI(reclaim.Task{
		ID:    5,
		Title: "old",
		Extra: map[string]json.RawMessage{"snoozeUntil": json.RawMessage(`"2026-03-01T00:00:00Z"`)},
	})
	handler := handlePutTask(newTestContext(t, api))

	text, isErr := call(t, handler, map[string]any{"task_id": float64(5), argSet: []any{"title=new"}})
	require.False(t, isErr, text)
	require.NotNil(t, api.put)

	assert.Equal(t, "new", api.put.payload["title"])
	assert.Equal(t, "2026-03-01T00:00:00Z", api.put.payload["snoozeUntil"])
}

func TestDeleteTask(t *testing.T) {
	api := newFakeAPI()
	handler := handleDeleteTask(newTestContext(t, api))

	text, isErr := call(t, handler, map[string]any{"task_id": "42"})
	require.False(t, isErr, text)
	assert.JSONEq(t, `{"task_id":42,"deleted":true,"api_response":null}`, text)

	text, isErr = call(t, handler, map[string]any{"task_id": []any{float64(1), float64(13)}})
	require.False(t, isErr, text)
	assert.Contains(t, text, `"failed": 1`)
	assert.Equal(t, []uint64{42, 1}, api.deleted)
}

func TestListEvents(t *testing.T) {
	api := newFakeAPI()
	text, isErr := call(t, handleListEvents(newTestContext(t, api)), map[string]any{
		argCalendarIDs:  []any{float64(1), "2"},
		argAllConnected: true,
		argStart:        "2026-02-20",
	})
	require.False(t, isErr, text)
	require.NotNil(t, api.eventQuery)

	assert.Equal(t, []uint64{1, 2}, api.eventQuery.CalendarIDs)
	assert.True(t, *api.eventQuery.AllConnected)
	assert.Equal(t, "2026-02-20", api.eventQuery.Start)
	assert.Nil(t, api.eventQuery.Thin)
}

func TestDeleteEvent(t *testing.T) {
	api := newFakeAPI()
	text, isErr := call(t, handleDeleteEvent(newTestContext(t, api)), map[string]any{
		argCalendarID: float64(12),
		argEventID:    "abc",
		argMessage:    "Sorry",
	})
	require.False(t, isErr, text)

	body, err := json.Marshal(api.applied)
	require.NoError(t, err)
	assert.JSONEq(t, `{"actionsTaken":[{
		"type":"CancelEventAction",
		"hash":"",
		"policyId":"00000000-0000-0000-0000-000000000000",
		"eventKey":"12/abc",
		"notificationMessage":"Sorry"
	}]}`, string(body))
}

func TestUpdateEvent_RequiresChange(t *testing.T) {
	api := newFakeAPI()
	text, isErr := call(t, handleUpdateEvent(newTestContext(t, api)), map[string]any{
		argCalendarID: float64(12),
		argEventID:    "abc",
	})
	assert.True(t, isErr)
	assert.Contains(t, text, "Event update requires at least one field change.")
	assert.Nil(t, api.applied)
}

func TestApplyActions(t *testing.T) {
	api := newFakeAPI()
	handler := handleApplyActions(newTestContext(t, api))

	text, isErr := call(t, handler, map[string]any{argJSON: map[string]any{
		"actionsTaken": []any{map[string]any{"type": "CancelEventAction", "eventKey": "1/a"}},
	}})
	require.False(t, isErr, text)
	assert.NotNil(t, api.applied)

	text, isErr = call(t, handler, map[string]any{})
	assert.True(t, isErr)
	assert.Equal(t, "json is required", text)
}
