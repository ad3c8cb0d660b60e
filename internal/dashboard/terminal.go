package dashboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/teemow/reclaim/internal/reclaim"
)

// ANSI control sequences.
const (
	enterAltScreen = "\x1b[?1049h"
	leaveAltScreen = "\x1b[?1049l"
	hideCursor     = "\x1b[?25l"
	showCursor     = "\x1b[?25h"
	clearScreen    = "\x1b[2J"
	cursorHome     = "\x1b[H"
	styleBold      = "\x1b[1m"
	styleSelected  = "\x1b[1;33m"
	styleReset     = "\x1b[0m"
)

// Terminal is the screen and keyboard the event loop drives.
type Terminal interface {
	// Size reports the current size in cells.
	Size() (width, height int, err error)
	// ReadKey waits up to timeout for a key. ok is false on timeout.
	ReadKey(timeout time.Duration) (k Key, ok bool, err error)
	// Draw replaces the screen contents with f.
	Draw(f Frame) error
	// Restore returns the terminal to the state it had before the dashboard.
	Restore() error
}

type ttyTerminal struct {
	in       *os.File
	out      io.Writer
	outFd    int
	state    *term.State
	keys     chan Key
	readErrs chan error
}

// OpenTerminal switches in to raw mode and out to the alternate screen.
// On failure the terminal is left as it was.
func OpenTerminal(in, out *os.File) (Terminal, error) {
	if !isTerminal(in) || !isTerminal(out) {
		return nil, reclaim.NewInvalidInputError(
			"The dashboard needs an interactive terminal on stdin and stdout.",
			"Run `reclaim dashboard` directly in a terminal, or use `reclaim list` for scripts.",
		)
	}

	state, err := term.MakeRaw(int(in.Fd()))
	if err != nil {
		return nil, tuiError("Failed to enable raw terminal mode", err)
	}

	t := &ttyTerminal{
		in:       in,
		out:      out,
		outFd:    int(out.Fd()),
		state:    state,
		keys:     make(chan Key, 64),
		readErrs: make(chan error, 1),
	}

	if _, err := io.WriteString(out, enterAltScreen+hideCursor+clearScreen); err != nil {
		restoreErr := term.Restore(int(in.Fd()), state)
		return nil, errors.Join(tuiError("Failed to enter alternate screen", err), restoreErr)
	}

	go t.readLoop()
	return t, nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// readLoop blocks on stdin for the lifetime of the process; it exits on the
// first read error.
func (t *ttyTerminal) readLoop() {
	buf := make([]byte, 256)
	for {
		n, err := t.in.Read(buf)
		for _, k := range DecodeKeys(buf[:n]) {
			t.keys <- k
		}
		if err != nil {
			t.readErrs <- err
			return
		}
	}
}

func (t *ttyTerminal) Size() (int, int, error) {
	w, h, err := term.GetSize(t.outFd)
	if err != nil {
		return 0, 0, tuiError("Failed to read terminal size", err)
	}
	return w, h, nil
}

func (t *ttyTerminal) ReadKey(timeout time.Duration) (Key, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case k := <-t.keys:
		return k, true, nil
	case err := <-t.readErrs:
		return Key{}, false, tuiError("TUI event read failed", err)
	case <-timer.C:
		return Key{}, false, nil
	}
}

func (t *ttyTerminal) Draw(f Frame) error {
	var b strings.Builder
	b.WriteString(cursorHome)
	for i, line := range f.Lines {
		if i > 0 {
			b.WriteString("\r\n")
		}
		switch {
		case i == 0:
			b.WriteString(styleBold + line + styleReset)
		case i == f.Highlight:
			b.WriteString(styleSelected + line + styleReset)
		default:
			b.WriteString(line)
		}
	}
	if _, err := io.WriteString(t.out, b.String()); err != nil {
		return tuiError("Failed to draw dashboard frame", err)
	}
	return nil
}

func (t *ttyTerminal) Restore() error {
	var errs []error
	if err := term.Restore(int(t.in.Fd()), t.state); err != nil {
		errs = append(errs, tuiError("Failed to disable raw mode", err))
	}
	if _, err := io.WriteString(t.out, leaveAltScreen); err != nil {
		errs = append(errs, tuiError("Failed to leave alternate screen", err))
	}
	if _, err := io.WriteString(t.out, showCursor); err != nil {
		errs = append(errs, tuiError("Failed to show cursor", err))
	}
	return errors.Join(errs...)
}

func tuiError(context string, err error) error {
	return reclaim.NewOutputError(fmt.Sprintf("%s: %v", context, err), err)
}
