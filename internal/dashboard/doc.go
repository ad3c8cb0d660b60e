// Package dashboard implements the interactive task dashboard.
//
// The dashboard is split in three layers:
//
//   - App is a pure state machine. It owns the task list, the selection,
//     the current Mode (Normal, Help or Command) and the footer status, and
//     turns one decoded Key into an Action through per-mode transition
//     tables.
//   - Render draws an App into a fixed-size frame of lines.
//   - Run owns the terminal: raw mode, the alternate screen, input polling
//     and task refreshes. Terminal state is restored on every exit path.
package dashboard
