package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/reclaim/internal/logging"
	"github.com/teemow/reclaim/internal/reclaim"
)

type fakeTerminal struct {
	keys       []Key
	frames     []Frame
	drawErr    error
	restoreErr error
	restored   int
}

func (f *fakeTerminal) Size() (int, int, error) { return 120, 24, nil }

func (f *fakeTerminal) ReadKey(time.Duration) (Key, bool, error) {
	if len(f.keys) == 0 {
		return Key{}, false, errors.New("input closed")
	}
	k := f.keys[0]
	f.keys = f.keys[1:]
	if k.Code == KeyUnknown {
		return Key{}, false, nil
	}
	return k, true, nil
}

func (f *fakeTerminal) Draw(fr Frame) error {
	if f.drawErr != nil {
		return f.drawErr
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeTerminal) Restore() error {
	f.restored++
	return f.restoreErr
}

type fakeLister struct {
	results [][]reclaim.Task
	errs    []error
	calls   int
	filters []reclaim.TaskFilter
}

func (f *fakeLister) ListTasks(_ context.Context, filter reclaim.TaskFilter) ([]reclaim.Task, error) {
	i := f.calls
	f.calls++
	f.filters = append(f.filters, filter)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.results) {
		return f.results[i], nil
	}
	return nil, nil
}

func testOptions(term *fakeTerminal, filter reclaim.TaskFilter) Options {
	return Options{
		Filter:       filter,
		Logger:       logging.DiscardLogger(),
		OpenTerminal: func() (Terminal, error) { return term, nil },
		Now:          func() time.Time { return renderNow },
	}
}

func TestRun_QuitRestoresTerminal(t *testing.T) {
	term := &fakeTerminal{keys: []Key{Special(KeyUnknown), Rune('j'), Rune(':'), Rune('q')}}
	lister := &fakeLister{results: [][]reclaim.Task{threeTasks()}}

	err := Run(context.Background(), lister, testOptions(term, reclaim.TaskFilterAll))
	require.NoError(t, err)
	assert.Equal(t, 1, term.restored)
	assert.Equal(t, []reclaim.TaskFilter{reclaim.TaskFilterAll}, lister.filters)
	require.NotEmpty(t, term.frames)
	last := term.frames[len(term.frames)-1]
	assert.Contains(t, last.Lines[last.Highlight], ">> #2")
}

func TestRun_InitialLoadErrorSkipsTerminal(t *testing.T) {
	opened := false
	opts := testOptions(&fakeTerminal{}, reclaim.TaskFilterActive)
	opts.OpenTerminal = func() (Terminal, error) {
		opened = true
		return nil, errors.New("unexpected")
	}
	lister := &fakeLister{errs: []error{reclaim.NewMissingAPIKeyError()}}

	err := Run(context.Background(), lister, opts)
	require.Error(t, err)
	assert.True(t, reclaim.IsKind(err, reclaim.KindMissingAPIKey))
	assert.False(t, opened)
}

func TestRun_RefreshSuccessAndFailure(t *testing.T) {
	term := &fakeTerminal{keys: []Key{Rune('r'), Rune('r'), Special(KeyEsc)}}
	lister := &fakeLister{
		results: [][]reclaim.Task{threeTasks(), {testTask(7, "Seven")}},
		errs:    []error{nil, nil, errors.New("connection refused\nmore detail")},
	}

	require.NoError(t, Run(context.Background(), lister, testOptions(term, reclaim.TaskFilterActive)))
	assert.Equal(t, 3, lister.calls)

	var footers []string
	for _, fr := range term.frames {
		footers = append(footers, fr.Lines[len(fr.Lines)-1])
	}
	assert.Contains(t, footers[1], "Refreshed: 1 task loaded.")
	assert.Contains(t, footers[2], "Refresh failed: connection refused")
}

func TestRun_LoopErrorStillRestores(t *testing.T) {
	term := &fakeTerminal{drawErr: errors.New("broken pipe")}
	lister := &fakeLister{results: [][]reclaim.Task{threeTasks()}}

	err := Run(context.Background(), lister, testOptions(term, reclaim.TaskFilterActive))
	require.Error(t, err)
	assert.Equal(t, "broken pipe", err.Error())
	assert.Equal(t, 1, term.restored)
}

func TestRun_LoopAndRestoreErrorsCombined(t *testing.T) {
	term := &fakeTerminal{
		drawErr:    errors.New("draw failed"),
		restoreErr: errors.New("restore failed"),
	}
	lister := &fakeLister{results: [][]reclaim.Task{threeTasks()}}

	err := Run(context.Background(), lister, testOptions(term, reclaim.TaskFilterActive))
	require.Error(t, err)
	assert.True(t, reclaim.IsKind(err, reclaim.KindOutput))
	assert.Equal(t, "draw failed\nAlso failed to restore terminal state: restore failed", err.Error())
}

func TestRun_RestoreErrorOnly(t *testing.T) {
	term := &fakeTerminal{keys: []Key{Special(KeyCtrlC)}, restoreErr: errors.New("restore failed")}
	lister := &fakeLister{results: [][]reclaim.Task{nil}}

	err := Run(context.Background(), lister, testOptions(term, reclaim.TaskFilterActive))
	require.Error(t, err)
	assert.Equal(t, "restore failed", err.Error())
}

// panickingTerminal panics on the first draw.
type panickingTerminal struct {
	fakeTerminal
}

func (p *panickingTerminal) Draw(Frame) error {
	panic("render bug")
}

func TestRun_PanicStillRestores(t *testing.T) {
	term := &panickingTerminal{}
	opts := testOptions(&term.fakeTerminal, reclaim.TaskFilterActive)
	opts.OpenTerminal = func() (Terminal, error) { return term, nil }
	lister := &fakeLister{results: [][]reclaim.Task{threeTasks()}}

	assert.PanicsWithValue(t, "render bug", func() {
		_ = Run(context.Background(), lister, opts)
	})
	assert.Equal(t, 1, term.restored)
}
