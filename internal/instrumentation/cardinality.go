package instrumentation

import "strings"

// Reclaim client operations, used as the operation label on API metrics and
// as the span name suffix. The set is closed so the label stays bounded.
const (
	OperationListTasks    = "list_tasks"
	OperationGetTask      = "get_task"
	OperationCreateTask   = "create_task"
	OperationPutTask      = "put_task"
	OperationPatchTask    = "patch_task"
	OperationDeleteTask   = "delete_task"
	OperationListEvents   = "list_events"
	OperationGetEvent     = "get_event"
	OperationApplyActions = "apply_schedule_actions"
)

// CommandLabel reduces a cobra command path to a metric label.
// The root command name is dropped and the remaining words are joined with
// underscores; positional arguments never reach the label.
//
// Example:
//
//	CommandLabel("reclaim events list")  // "events_list"
//	CommandLabel("reclaim")              // "root"
func CommandLabel(commandPath string) string {
	fields := strings.Fields(commandPath)
	if len(fields) <= 1 {
		return "root"
	}
	return strings.Join(fields[1:], "_")
}
