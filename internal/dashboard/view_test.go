package dashboard

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/reclaim/internal/reclaim"
)

var renderNow = time.Date(2026, 2, 20, 17, 0, 0, 0, time.UTC)

func frameText(f Frame) string {
	return strings.Join(f.Lines, "\n")
}

func TestRender_Layout(t *testing.T) {
	app := NewApp(threeTasks(), reclaim.TaskFilterActive)
	f := Render(app, 160, 20, renderNow)

	require.Len(t, f.Lines, 20)
	for i, line := range f.Lines {
		assert.Len(t, []rune(line), 160, "line %d", i)
	}

	assert.True(t, strings.HasPrefix(f.Lines[0], "Reclaim Task Dashboard  |  3 tasks (active)"))
	assert.Equal(t, strings.Repeat("-", 160), f.Lines[18])
	assert.Equal(t, Hint, strings.TrimRight(f.Lines[19], " "))

	text := frameText(f)
	assert.Contains(t, text, ">> #1      [NEW       ] One (due: 2026-02-23T17:00:00Z)")
	assert.Contains(t, text, "   #2      [NEW       ] Two")
	assert.Contains(t, text, "#1 One")
	assert.Contains(t, text, "priority: P3")
	assert.Contains(t, text, "due: 2026-02-23T17:00:00Z (3 days from now)")
	assert.Contains(t, text, "  note")
	assert.Equal(t, 3, f.Highlight)
	assert.Contains(t, f.Lines[f.Highlight], ">> #1")
}

func TestRender_Empty(t *testing.T) {
	app := NewApp(nil, reclaim.TaskFilterAll)
	f := Render(app, 120, 12, renderNow)

	text := frameText(f)
	assert.Contains(t, f.Lines[0], "0 tasks (all)")
	assert.Contains(t, text, "No tasks found for this filter.")
	assert.Contains(t, text, "No task selected.")
	assert.Contains(t, text, "Try pressing r to refresh from the API.")
	assert.Equal(t, -1, f.Highlight)
}

func TestRender_Help(t *testing.T) {
	app := NewApp(threeTasks(), reclaim.TaskFilterActive)
	app.HandleKey(Rune('?'))
	f := Render(app, 100, 30, renderNow)

	text := frameText(f)
	assert.Contains(t, text, "Dashboard key bindings")
	assert.Contains(t, text, ":q              Vim-style quit command")
	assert.NotContains(t, text, ">> #1")
	assert.Contains(t, f.Lines[len(f.Lines)-1], "Help opened. Press ? or Enter to close.")
}

func TestRender_CommandFooter(t *testing.T) {
	app := NewApp(threeTasks(), reclaim.TaskFilterActive)
	app.HandleKey(Rune(':'))
	app.HandleKey(Rune('w'))
	f := Render(app, 80, 10, renderNow)
	assert.Equal(t, "Command: :w", strings.TrimRight(f.Lines[len(f.Lines)-1], " "))
}

func TestRender_ScrollsToSelection(t *testing.T) {
	var tasks []reclaim.Task
	for i := 1; i <= 30; i++ {
		tasks = append(tasks, testTask(uint64(i), "Task"))
	}
	app := NewApp(tasks, reclaim.TaskFilterActive)
	app.HandleKey(Rune('G'))

	f := Render(app, 140, 12, renderNow)
	require.NotEqual(t, -1, f.Highlight)
	assert.Contains(t, f.Lines[f.Highlight], ">> #30")
	assert.Less(t, f.Highlight, len(f.Lines)-2)
}

func TestRender_MinimumSize(t *testing.T) {
	app := NewApp(threeTasks(), reclaim.TaskFilterActive)
	f := Render(app, 0, 0, renderNow)
	assert.Len(t, f.Lines, minHeight)
	assert.Equal(t, minWidth, f.Width)
}

func TestDueText(t *testing.T) {
	task := testTask(1, "x")
	assert.Equal(t, "2026-02-23T17:00:00Z (3 days from now)", dueText(task, renderNow))

	task.Due = reclaim.String("next week")
	assert.Equal(t, "next week", dueText(task, renderNow))

	task.Due = nil
	assert.Equal(t, "-", dueText(task, renderNow))
}

func TestFit(t *testing.T) {
	assert.Equal(t, "ab  ", fit("ab", 4))
	assert.Equal(t, "abc", fit("abcdef", 3))
	assert.Equal(t, "日 ", fit("日本", 3))
	assert.Equal(t, "ab", fit("a\tb", 2))
}

func TestTaskRow(t *testing.T) {
	task := reclaim.Task{ID: 42, Title: "Untitled"}
	assert.Equal(t, "#42     [UNKNOWN   ] Untitled (due: -)", TaskRow(task))
}
