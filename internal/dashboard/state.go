package dashboard

import (
	"fmt"
	"strings"

	"github.com/teemow/reclaim/internal/reclaim"
)

// Hint is the footer text shown when there is nothing else to report.
const Hint = "j/k move  g/G jump  r refresh  ? help  :q/Esc/Ctrl+C quit"

// Mode is the input mode of the dashboard.
type Mode int

const (
	ModeNormal Mode = iota
	ModeHelp
	ModeCommand
)

func (m Mode) String() string {
	switch m {
	case ModeHelp:
		return "help"
	case ModeCommand:
		return "command"
	default:
		return "normal"
	}
}

// KeyCode identifies a decoded key. Printable characters use KeyRune.
type KeyCode int

const (
	KeyUnknown KeyCode = iota
	KeyRune
	KeyEnter
	KeyEsc
	KeyBackspace
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyCtrlC
)

// Key is one decoded key press.
type Key struct {
	Code KeyCode
	Rune rune
}

// Rune returns the key for a printable character.
func Rune(r rune) Key { return Key{Code: KeyRune, Rune: r} }

// Special returns the key for a non-printable code.
func Special(code KeyCode) Key { return Key{Code: code} }

// Action is what the event loop must do after a key was handled.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionRefresh
)

type transition func(a *App, k Key) Action

// Keys that quit from every mode.
var quitKeys = map[Key]bool{
	Special(KeyEsc):   true,
	Special(KeyCtrlC): true,
}

var normalTransitions = map[Key]transition{
	Rune('?'):        openHelp,
	Rune(':'):        enterCommand,
	Rune('j'):        moveNext,
	Special(KeyDown): moveNext,
	Rune('k'):        movePrevious,
	Special(KeyUp):   movePrevious,
	Rune('g'):        moveFirst,
	Special(KeyHome): moveFirst,
	Rune('G'):        moveLast,
	Special(KeyEnd):  moveLast,
	Rune('r'):        refresh,
}

var helpTransitions = map[Key]transition{
	Rune('?'):         closeHelp,
	Special(KeyEnter): closeHelp,
}

var commandTransitions = map[Key]transition{
	Special(KeyEnter):     submitCommand,
	Special(KeyBackspace): deleteCommandRune,
}

// App is the dashboard state. The zero value is not usable; call NewApp.
type App struct {
	tasks    []reclaim.Task
	filter   reclaim.TaskFilter
	selected int
	mode     Mode
	command  string
	status   string
}

// NewApp builds the initial state with the first task selected.
func NewApp(tasks []reclaim.Task, filter reclaim.TaskFilter) *App {
	a := &App{tasks: tasks, filter: filter, selected: -1}
	if len(tasks) > 0 {
		a.selected = 0
	}
	return a
}

// HandleKey applies one key press and reports what the loop should do.
func (a *App) HandleKey(k Key) Action {
	if quitKeys[k] {
		return ActionQuit
	}

	switch a.mode {
	case ModeCommand:
		if t, ok := commandTransitions[k]; ok {
			return t(a, k)
		}
		if k.Code == KeyRune {
			return appendCommandRune(a, k)
		}
	case ModeHelp:
		if t, ok := helpTransitions[k]; ok {
			return t(a, k)
		}
	default:
		if t, ok := normalTransitions[k]; ok {
			return t(a, k)
		}
	}
	return ActionNone
}

// ReplaceTasks installs a refreshed task list, keeping the selection index
// when it is still in range.
func (a *App) ReplaceTasks(tasks []reclaim.Task) {
	a.tasks = tasks
	switch {
	case len(tasks) == 0:
		a.selected = -1
	case a.selected < 0:
		a.selected = 0
	case a.selected >= len(tasks):
		a.selected = len(tasks) - 1
	}
	a.status = fmt.Sprintf("Refreshed: %d task%s loaded.", len(tasks), plural(len(tasks)))
}

// RefreshFailed reports a failed refresh in the footer. Only the first line
// of the error is shown.
func (a *App) RefreshFailed(err error) {
	line, _, _ := strings.Cut(err.Error(), "\n")
	if line == "" {
		line = "Refresh failed."
	}
	a.status = "Refresh failed: " + line
}

// Tasks returns the loaded tasks.
func (a *App) Tasks() []reclaim.Task { return a.tasks }

// Filter returns the task filter used for refreshes.
func (a *App) Filter() reclaim.TaskFilter { return a.filter }

// Mode returns the current input mode.
func (a *App) Mode() Mode { return a.mode }

// Command returns the command buffer, including the leading ':'.
func (a *App) Command() string { return a.command }

// Status returns the footer status message, empty when none is set.
func (a *App) Status() string { return a.status }

// Selected returns the selected index, or -1 when nothing is selected.
func (a *App) Selected() int { return a.selected }

// SelectedTask returns the selected task.
func (a *App) SelectedTask() (reclaim.Task, bool) {
	if a.selected < 0 || a.selected >= len(a.tasks) {
		return reclaim.Task{}, false
	}
	return a.tasks[a.selected], true
}

func openHelp(a *App, _ Key) Action {
	a.mode = ModeHelp
	a.status = "Help opened. Press ? or Enter to close."
	return ActionNone
}

func closeHelp(a *App, _ Key) Action {
	a.mode = ModeNormal
	return ActionNone
}

func enterCommand(a *App, _ Key) Action {
	a.mode = ModeCommand
	a.command = ":"
	a.status = "Command mode: type :q to quit."
	return ActionNone
}

func appendCommandRune(a *App, k Key) Action {
	a.command += string(k.Rune)
	if a.command == ":q" {
		return ActionQuit
	}
	return ActionNone
}

func deleteCommandRune(a *App, _ Key) Action {
	if r := []rune(a.command); len(r) > 0 {
		a.command = string(r[:len(r)-1])
	}
	if a.command == "" {
		a.mode = ModeNormal
		a.status = Hint
	}
	return ActionNone
}

func submitCommand(a *App, _ Key) Action {
	command := a.command
	a.command = ""
	a.mode = ModeNormal

	switch command {
	case ":q":
		return ActionQuit
	case ":":
		a.status = "Command cancelled."
	default:
		a.status = "Unknown command: " + command
	}
	return ActionNone
}

func moveNext(a *App, _ Key) Action {
	if len(a.tasks) == 0 {
		a.selected = -1
		return ActionNone
	}
	if a.selected >= 0 && a.selected+1 < len(a.tasks) {
		a.selected++
	} else {
		a.selected = 0
	}
	return ActionNone
}

func movePrevious(a *App, _ Key) Action {
	if len(a.tasks) == 0 {
		a.selected = -1
		return ActionNone
	}
	if a.selected <= 0 {
		a.selected = len(a.tasks) - 1
	} else {
		a.selected--
	}
	return ActionNone
}

func moveFirst(a *App, _ Key) Action {
	if len(a.tasks) == 0 {
		a.selected = -1
	} else {
		a.selected = 0
	}
	return ActionNone
}

func moveLast(a *App, _ Key) Action {
	a.selected = len(a.tasks) - 1
	return ActionNone
}

func refresh(_ *App, _ Key) Action {
	return ActionRefresh
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
