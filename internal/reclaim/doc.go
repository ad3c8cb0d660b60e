// Package reclaim is the Reclaim.ai API client used by every reclaim command.
//
// It owns the transport (bearer authentication, fixed JSON headers, bounded
// timeouts, base URL normalization), the response interpreter that turns every
// failure into a classified *Error with forensic context, the tolerant Task
// model that round-trips unknown fields, and the client-side task filters.
//
// # Errors
//
// Every operation returns either a typed value or an *Error. The Kind field
// distinguishes pre-flight failures (KindMissingAPIKey, KindInvalidBaseURL),
// local validation failures (KindInvalidInput), network failures
// (KindTransport), non-2xx responses (KindAPI) and undecodable success bodies
// (KindResponseParse). API errors carry the request method and URL, the
// upstream request id, the pretty-printed response body and the request
// payload, each capped at DebugBodyLimit characters:
//
//	task, err := client.GetTask(ctx, 42)
//	if err != nil {
//	    fmt.Fprintln(os.Stderr, "Error:", err)
//	    if hint := reclaim.HintOf(err); hint != "" {
//	        fmt.Fprintln(os.Stderr, "Hint:", hint)
//	    }
//	}
//
// # Filtering
//
// ListTasks applies the active/all filter. The completion filter
// (ApplyCompletionFilter) is a separate step callers run afterwards.
package reclaim
