package dashboard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/teemow/reclaim/internal/instrumentation"
	"github.com/teemow/reclaim/internal/logging"
	"github.com/teemow/reclaim/internal/reclaim"
)

// PollInterval bounds how long the loop waits for a key before redrawing.
const PollInterval = 200 * time.Millisecond

// TaskLister is the part of reclaim.API the dashboard needs.
type TaskLister interface {
	ListTasks(ctx context.Context, filter reclaim.TaskFilter) ([]reclaim.Task, error)
}

// Options configures Run.
type Options struct {
	Filter  reclaim.TaskFilter
	Metrics *instrumentation.Metrics
	Logger  logging.Logger

	// OpenTerminal defaults to the process stdin and stdout.
	OpenTerminal func() (Terminal, error)
	// Now defaults to time.Now.
	Now func() time.Time
}

// Run loads the tasks, takes over the terminal and processes keys until the
// user quits. The initial load happens before the terminal is touched, so
// its errors print normally.
func Run(ctx context.Context, api TaskLister, opts Options) (err error) {
	if opts.OpenTerminal == nil {
		opts.OpenTerminal = func() (Terminal, error) { return OpenTerminal(os.Stdin, os.Stdout) }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.DefaultLogger()
	}

	tasks, err := api.ListTasks(ctx, opts.Filter)
	if err != nil {
		return err
	}
	app := NewApp(tasks, opts.Filter)

	t, err := opts.OpenTerminal()
	if err != nil {
		return err
	}
	// Restore runs even when Loop panics.
	defer func() {
		err = combineErrors(err, t.Restore())
		opts.Logger.Debug("dashboard closed", logging.Status(statusOf(err)))
	}()

	return Loop(ctx, t, api, app, opts)
}

// Loop draws and handles keys until a quit key, or until drawing or
// reading fails. Refresh failures are shown in the footer.
func Loop(ctx context.Context, t Terminal, api TaskLister, app *App, opts Options) error {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	for {
		w, h, err := t.Size()
		if err != nil {
			return err
		}
		if err := t.Draw(Render(app, w, h, now())); err != nil {
			return err
		}

		k, ok, err := t.ReadKey(PollInterval)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		switch app.HandleKey(k) {
		case ActionQuit:
			return nil
		case ActionRefresh:
			refreshTasks(ctx, api, app, opts.Metrics)
		}
	}
}

func refreshTasks(ctx context.Context, api TaskLister, app *App, metrics *instrumentation.Metrics) {
	tasks, err := api.ListTasks(ctx, app.Filter())
	if err != nil {
		metrics.RecordDashboardRefresh(ctx, instrumentation.StatusError)
		app.RefreshFailed(err)
		return
	}
	metrics.RecordDashboardRefresh(ctx, instrumentation.StatusSuccess)
	app.ReplaceTasks(tasks)
}

// combineErrors reports both failures when the loop and the terminal
// restore fail together.
func combineErrors(loopErr, restoreErr error) error {
	switch {
	case loopErr == nil:
		return restoreErr
	case restoreErr == nil:
		return loopErr
	default:
		return reclaim.NewOutputError(
			fmt.Sprintf("%v\nAlso failed to restore terminal state: %v", loopErr, restoreErr),
			errors.Join(loopErr, restoreErr),
		)
	}
}

func statusOf(err error) string {
	if err != nil {
		return logging.StatusError
	}
	return logging.StatusSuccess
}
