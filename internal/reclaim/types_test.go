package reclaim

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_UnmarshalJSON(t *testing.T) {
	task := mustTask(t, `{"id":42,"title":"Plan","status":"NEW","due":"2026-02-19T15:00:00Z","priority":"P2","notes":"n","deleted":false,"eventCategory":"WORK"}`)

	assert.Equal(t, uint64(42), task.ID)
	assert.Equal(t, "Plan", task.Title)
	assert.Equal(t, "NEW", task.StatusOr("UNKNOWN"))
	assert.Equal(t, "2026-02-19T15:00:00Z", task.DueOr("-"))
	assert.Equal(t, "P2", task.PriorityOr("-"))
	require.NotNil(t, task.Notes)
	assert.Equal(t, "n", *task.Notes)
	assert.False(t, task.Deleted)

	category, ok := task.ExtraString("eventCategory")
	assert.True(t, ok)
	assert.Equal(t, "WORK", category)
}

func TestTask_UnmarshalJSON_Defaults(t *testing.T) {
	task := mustTask(t, `{"id":1,"title":"Bare"}`)

	assert.Nil(t, task.Status)
	assert.Equal(t, "UNKNOWN", task.StatusOr("UNKNOWN"))
	assert.Equal(t, "-", task.DueOr("-"))
	assert.False(t, task.Deleted)
	assert.Nil(t, task.Extra)
}

func TestTask_UnmarshalJSON_MissingRequired(t *testing.T) {
	var task Task
	err := json.Unmarshal([]byte(`{"title":"no id"}`), &task)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing field `id`")

	err = json.Unmarshal([]byte(`{"id":1}`), &task)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing field `title`")
}

func TestTask_UnmarshalJSON_CaseVariantKeysStayExtra(t *testing.T) {
	task := mustTask(t, `{"id":7,"title":"real title","Title":"display title","Status":"COMPLETED"}`)

	assert.Equal(t, "real title", task.Title)
	assert.Nil(t, task.Status)
	assert.False(t, IsCompleted(task))
	assert.Equal(t, json.RawMessage(`"display title"`), task.Extra["Title"])
	assert.Equal(t, json.RawMessage(`"COMPLETED"`), task.Extra["Status"])

	out, err := json.Marshal(task)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"title":"real title","Title":"display title","Status":"COMPLETED","deleted":false}`, string(out))
}

func TestTask_RoundTripKeepsNullOptionals(t *testing.T) {
	task := mustTask(t, `{"id":3,"title":"t","notes":null,"due":null,"priority":"P1","deleted":null}`)

	assert.Nil(t, task.Notes)
	assert.Nil(t, task.Due)
	assert.Equal(t, "P1", task.PriorityOr("-"))
	assert.False(t, task.Deleted)

	out, err := json.Marshal(task)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"title":"t","notes":null,"due":null,"priority":"P1","deleted":false}`, string(out))

	task.Notes = String("filled in")
	out, err = json.Marshal(task)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"title":"t","notes":"filled in","due":null,"priority":"P1","deleted":false}`, string(out))
}

func TestTask_UnmarshalJSON_NullRequired(t *testing.T) {
	var task Task
	err := json.Unmarshal([]byte(`{"id":1,"title":null}`), &task)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing field `title`")

	err = json.Unmarshal([]byte(`{"id":1,"title":"a","status":5}`), &task)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field `status`")
}

func TestTask_MarshalJSON_ModeledFieldsWin(t *testing.T) {
	task := Task{
		ID:     1,
		Title:  "Modeled",
		Status: String("NEW"),
		Extra: map[string]json.RawMessage{
			"title":    json.RawMessage(`"Shadowed"`),
			"location": json.RawMessage(`{"room":"A"}`),
		},
	}

	out, err := json.Marshal(task)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"title":"Modeled","status":"NEW","deleted":false,"location":{"room":"A"}}`, string(out))
}

func TestTask_ExtraBool(t *testing.T) {
	task := mustTask(t, `{"id":1,"title":"a","completed":true,"isComplete":"nope"}`)

	v, ok := task.ExtraBool("completed")
	assert.True(t, ok)
	assert.True(t, v)

	_, ok = task.ExtraBool("isComplete")
	assert.False(t, ok)

	_, ok = task.ExtraBool("missing")
	assert.False(t, ok)
}

func TestEventListQuery_Values(t *testing.T) {
	values := EventListQuery{
		CalendarIDs:  []uint64{10, 20},
		AllConnected: Bool(false),
		Start:        " 2026-02-20 ",
		Thin:         Bool(true),
	}.Values()

	assert.Equal(t, []string{"10", "20"}, values["calendarIds"])
	assert.Equal(t, "false", values.Get("allConnected"))
	assert.Equal(t, "2026-02-20", values.Get("start"))
	assert.NotContains(t, values, "end")
	assert.NotContains(t, values, "sourceDetails")
	assert.Equal(t, "true", values.Get("thin"))

	assert.Empty(t, EventListQuery{}.Values())
}

func TestTaskFilter_String(t *testing.T) {
	assert.Equal(t, "active", TaskFilterActive.String())
	assert.Equal(t, "all", TaskFilterAll.String())
}
