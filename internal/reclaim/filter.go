package reclaim

import "strings"

var completionStatuses = map[string]bool{
	"COMPLETED": true,
	"COMPLETE":  true,
	"DONE":      true,
	"FINISHED":  true,
}

// IsActive reports whether a task survives TaskFilterActive.
func IsActive(t Task) bool {
	if t.Deleted {
		return false
	}
	switch t.StatusOr("") {
	case "ARCHIVED", "CANCELLED":
		return false
	}
	return true
}

// FilterTasks applies the active/all retention filter.
func FilterTasks(tasks []Task, filter TaskFilter) []Task {
	if filter == TaskFilterAll {
		return tasks
	}
	kept := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if IsActive(t) {
			kept = append(kept, t)
		}
	}
	return kept
}

// IsCompleted classifies a task as completed using, in order: the status
// field, an unmodeled completionStatus field, then unmodeled completed or
// isComplete booleans. No signal means open.
func IsCompleted(t Task) bool {
	if t.Status != nil && statusIndicatesCompleted(*t.Status) {
		return true
	}
	if status, ok := t.ExtraString("completionStatus"); ok && statusIndicatesCompleted(status) {
		return true
	}
	if completed, ok := t.ExtraBool("completed"); ok {
		return completed
	}
	if completed, ok := t.ExtraBool("isComplete"); ok {
		return completed
	}
	return false
}

func statusIndicatesCompleted(status string) bool {
	return completionStatuses[strings.ToUpper(status)]
}

// ApplyCompletionFilter narrows tasks that already passed FilterTasks.
func ApplyCompletionFilter(tasks []Task, filter CompletionFilter) []Task {
	if filter == CompletionAny {
		return tasks
	}
	want := filter == CompletionCompleted
	kept := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if IsCompleted(t) == want {
			kept = append(kept, t)
		}
	}
	return kept
}
