package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/width"

	"github.com/teemow/reclaim/internal/reclaim"
)

const (
	selectedMarker = ">> "
	columnGap      = " | "
	minWidth       = 20
	minHeight      = 8
)

var helpLines = []string{
	"Dashboard key bindings",
	"",
	"Navigation",
	"  j / Down        Move down",
	"  k / Up          Move up",
	"  g / Home        Jump to first task",
	"  G / End         Jump to last task",
	"",
	"Actions",
	"  r               Refresh tasks from API",
	"  ?               Toggle this help",
	"",
	"Exit",
	"  :q              Vim-style quit command",
	"  Esc             Quit immediately",
	"  Ctrl+C          Quit immediately",
	"",
	"Press ? or Enter to close this panel.",
}

// Frame is one rendered screen. Every line is exactly Width cells wide.
// Highlight is the index of the line showing the selected task, or -1.
type Frame struct {
	Lines     []string
	Highlight int
	Width     int
}

// Render draws a into a width x height frame. now anchors relative due dates.
func Render(a *App, w, h int, now time.Time) Frame {
	w = max(w, minWidth)
	h = max(h, minHeight)

	f := Frame{Highlight: -1, Width: w}
	f.Lines = append(f.Lines, fit(headerLine(a), w), strings.Repeat(" ", w))

	bodyHeight := h - 4
	if a.Mode() == ModeHelp {
		for i := range bodyHeight {
			line := ""
			if i < len(helpLines) {
				line = "  " + helpLines[i]
			}
			f.Lines = append(f.Lines, fit(line, w))
		}
	} else {
		f.Lines = append(f.Lines, renderBody(a, w, bodyHeight, now, &f)...)
	}

	f.Lines = append(f.Lines, strings.Repeat("-", w), fit(footerLine(a), w))
	return f
}

func headerLine(a *App) string {
	n := len(a.Tasks())
	return fmt.Sprintf("Reclaim Task Dashboard  |  %d task%s (%s)", n, plural(n), a.Filter())
}

func footerLine(a *App) string {
	switch {
	case a.Mode() == ModeCommand:
		return "Command: " + a.Command()
	case a.Status() != "":
		return a.Status()
	default:
		return Hint
	}
}

func renderBody(a *App, w, h int, now time.Time, f *Frame) []string {
	leftWidth := (w - len(columnGap)) * 45 / 100
	rightWidth := w - len(columnGap) - leftWidth

	left := []string{"Tasks"}
	tasks := a.Tasks()
	offset := 0
	if a.Selected() >= h-1 {
		offset = a.Selected() - (h - 2)
	}
	if len(tasks) == 0 {
		left = append(left, "No tasks found for this filter.")
	}
	for i := offset; i < len(tasks) && len(left) < h; i++ {
		prefix := strings.Repeat(" ", len(selectedMarker))
		if i == a.Selected() {
			prefix = selectedMarker
			f.Highlight = len(f.Lines) + len(left)
		}
		left = append(left, prefix+TaskRow(tasks[i]))
	}

	right := append([]string{"Details"}, detailLines(a, now)...)

	lines := make([]string, 0, h)
	for i := range h {
		var l, r string
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		lines = append(lines, fit(l, leftWidth)+columnGap+fit(r, rightWidth))
	}
	return lines
}

// TaskRow formats one task list entry.
func TaskRow(t reclaim.Task) string {
	return fmt.Sprintf("#%-6d [%-10s] %s (due: %s)", t.ID, t.StatusOr("UNKNOWN"), t.Title, t.DueOr("-"))
}

func detailLines(a *App, now time.Time) []string {
	t, ok := a.SelectedTask()
	if !ok {
		return []string{"No task selected.", "Try pressing r to refresh from the API."}
	}

	lines := []string{
		fmt.Sprintf("#%d %s", t.ID, t.Title),
		"status: " + t.StatusOr("UNKNOWN"),
		"priority: " + t.PriorityOr("-"),
		"due: " + dueText(t, now),
	}

	if t.Notes != nil && strings.TrimSpace(*t.Notes) != "" {
		lines = append(lines, "", "notes:")
		for _, l := range strings.Split(*t.Notes, "\n") {
			lines = append(lines, "  "+strings.TrimRight(l, "\r"))
		}
	}
	return lines
}

// dueText shows the due timestamp followed by a relative hint when it parses.
func dueText(t reclaim.Task, now time.Time) string {
	due := t.DueOr("-")
	when, err := time.Parse(time.RFC3339, due)
	if err != nil {
		return due
	}
	return fmt.Sprintf("%s (%s)", due, humanize.RelTime(when, now, "ago", "from now"))
}

// fit truncates or pads s to exactly w terminal cells.
func fit(s string, w int) string {
	var b strings.Builder
	used := 0
	for _, r := range s {
		rw := cellWidth(r)
		if rw == 0 {
			continue
		}
		if used+rw > w {
			break
		}
		b.WriteRune(r)
		used += rw
	}
	if used < w {
		b.WriteString(strings.Repeat(" ", w-used))
	}
	return b.String()
}

func cellWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	if r < 0x20 || r == 0x7f {
		return 0
	}
	return 1
}
