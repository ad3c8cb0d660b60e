// Package payload turns command input into the JSON objects sent to Reclaim.
//
// Every mutating command accepts up to three sources of fields, merged in
// increasing precedence:
//
//  1. typed flags (--title, --priority, --start ...)
//  2. a raw JSON object (--json '{"priority":"P4"}')
//  3. repeatable KEY=VALUE overrides (--set priority=P4)
//
// Each stage overwrites colliding top-level keys of the previous one; there
// is no deep merge. Override values are decoded as JSON literals when they
// parse, so --set done=true yields a boolean and --set title=hello a string.
//
// Builders never perform I/O except BuildPut, which reads the current task
// when no JSON object is given. All validation failures are
// reclaim.KindInvalidInput errors carrying a hint.
package payload
