package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/teemow/reclaim/internal/reclaim"
	"github.com/teemow/reclaim/internal/tools/reclaim_tools"
)

const (
	jsonTip     = "\nTip: use --format json for machine-readable output."
	mutationTip = "\nTip: use --format json for full mutation response."
)

// JSON pointers tried in order when rendering events and action results.
var (
	eventKeyPointers   = []string{"/key", "/eventKey"}
	eventStartPointers = []string{"/eventDate/start", "/dateRange/start", "/originalStart"}
	eventEndPointers   = []string{"/eventDate/end", "/dateRange/end", "/originalEnd"}

	resultTypePointers = []string{"/action/action/type", "/action/type", "/type"}
	resultKeyPointers  = []string{"/action/action/eventKey", "/action/eventKey", "/action/action/key", "/action/key"}
)

// eventsMutationOutput is the JSON shape of events create, update and delete.
type eventsMutationOutput struct {
	Operation  string          `json:"operation"`
	CalendarID uint64          `json:"calendar_id"`
	EventID    string          `json:"event_id,omitempty"`
	Response   json.RawMessage `json:"response"`
}

// printJSON writes v as indented JSON followed by a newline.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return reclaim.NewOutputError(fmt.Sprintf("Could not render JSON output: %v", err), err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// renderPrettyJSON indents raw, or returns it unchanged when it is not JSON.
func renderPrettyJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func printTaskList(w io.Writer, includesAll bool, completion reclaim.CompletionFilter, tasks []reclaim.Task) {
	if len(tasks) == 0 {
		scope := "active tasks"
		if includesAll {
			scope = "tasks"
		}
		if completion == reclaim.CompletionAny {
			fmt.Fprintf(w, "No %s found.\n", scope)
		} else {
			fmt.Fprintf(w, "No %s found with completion status '%s'.\n", scope, completion)
		}
		return
	}

	for _, t := range tasks {
		fmt.Fprintf(w, "#%-6d [%-11s] %s (due: %s)\n", t.ID, t.StatusOr("UNKNOWN"), t.Title, t.DueOr("-"))
	}
	fmt.Fprintln(w, jsonTip)
}

func printTask(w io.Writer, t *reclaim.Task) {
	fmt.Fprintf(w, "#%d %s\n", t.ID, t.Title)
	if t.Status != nil {
		fmt.Fprintf(w, "status: %s\n", *t.Status)
	}
	if t.Priority != nil {
		fmt.Fprintf(w, "priority: %s\n", *t.Priority)
	}
	if t.Due != nil {
		fmt.Fprintf(w, "due: %s\n", *t.Due)
	}
	if t.Notes != nil {
		fmt.Fprintf(w, "notes: %s\n", *t.Notes)
	}
}

func printMutation(w io.Writer, prefix string, t *reclaim.Task) {
	fmt.Fprintf(w, "%s task #%d: %s\n", prefix, t.ID, t.Title)
	if t.Status != nil {
		fmt.Fprintf(w, "Status: %s\n", *t.Status)
	}
	if t.Priority != nil {
		fmt.Fprintf(w, "Priority: %s\n", *t.Priority)
	}
	if t.Due != nil {
		fmt.Fprintf(w, "Due: %s\n", *t.Due)
	}
}

func printCreated(w io.Writer, t *reclaim.Task) {
	fmt.Fprintf(w, "Created task #%d: %s\n", t.ID, t.Title)
	if t.Status != nil {
		fmt.Fprintf(w, "Status: %s\n", *t.Status)
	}
	if t.Due != nil {
		fmt.Fprintf(w, "Due: %s\n", *t.Due)
	}
}

func printDeleted(w io.Writer, result reclaim_tools.DeleteResult) {
	fmt.Fprintf(w, "Deleted task #%d.\n", result.TaskID)
	if len(result.APIResponse) == 0 || string(result.APIResponse) == "null" {
		return
	}
	fmt.Fprintf(w, "API response:\n%s\n", renderPrettyJSON(result.APIResponse))
}

func printEventList(w io.Writer, events []json.RawMessage) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}

	for _, raw := range events {
		event := decodeLoose(raw)
		fmt.Fprintf(w, "- %s [%s] (%s -> %s)\n",
			textAt(event, "<untitled>", "/title"),
			textAt(event, "-", eventKeyPointers...),
			textAt(event, "-", eventStartPointers...),
			textAt(event, "-", eventEndPointers...),
		)
	}
	fmt.Fprintln(w, jsonTip)
}

func printEvent(w io.Writer, raw json.RawMessage) {
	event := decodeLoose(raw)
	fmt.Fprintf(w, "title: %s\n", textAt(event, "<untitled>", "/title"))
	fmt.Fprintf(w, "key: %s\n", textAt(event, "-", eventKeyPointers...))
	fmt.Fprintf(w, "start: %s\n", textAt(event, "-", eventStartPointers...))
	fmt.Fprintf(w, "end: %s\n", textAt(event, "-", eventEndPointers...))
	fmt.Fprintf(w, "\nRaw event JSON:\n%s\n", renderPrettyJSON(raw))
}

func printEventsMutation(w io.Writer, out eventsMutationOutput) {
	if out.EventID != "" {
		fmt.Fprintf(w, "Applied %s event action for %d/%s.\n", out.Operation, out.CalendarID, out.EventID)
	} else {
		fmt.Fprintf(w, "Applied %s event action for calendar %d.\n", out.Operation, out.CalendarID)
	}
	printApplyResults(w, out.Response)
}

// printApplyResults renders one line per action result, or the raw
// response when it carries no results array.
func printApplyResults(w io.Writer, raw json.RawMessage) {
	response, _ := decodeLoose(raw).(map[string]any)
	results, ok := response["results"].([]any)
	if !ok {
		fmt.Fprintln(w, renderPrettyJSON(raw))
		return
	}
	if len(results) == 0 {
		fmt.Fprintln(w, "No action results returned.")
		return
	}

	for i, item := range results {
		fmt.Fprintf(w, "%d. %s | %s | %s\n", i+1,
			textAt(item, "UNKNOWN", "/result"),
			textAt(item, "UnknownAction", resultTypePointers...),
			textAt(item, "-", resultKeyPointers...),
		)
	}
	fmt.Fprintln(w, mutationTip)
}

// decodeLoose decodes raw keeping numbers exact. Invalid JSON yields nil.
func decodeLoose(raw json.RawMessage) any {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// textAt returns the first non-null value found at one of the JSON
// pointers, rendered as text, or def when none matches.
func textAt(v any, def string, pointers ...string) string {
	for _, p := range pointers {
		found, ok := lookupPointer(v, p)
		if !ok || found == nil {
			continue
		}
		switch x := found.(type) {
		case string:
			return x
		case bool:
			return strconv.FormatBool(x)
		case json.Number:
			return x.String()
		default:
			out, err := json.Marshal(x)
			if err != nil {
				continue
			}
			return string(out)
		}
	}
	return def
}

// lookupPointer resolves an RFC 6901 JSON pointer against a decoded value.
func lookupPointer(v any, pointer string) (any, bool) {
	if pointer == "" {
		return v, true
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, false
	}

	cur := v
	for _, token := range strings.Split(pointer[1:], "/") {
		token = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[token]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(token)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}
