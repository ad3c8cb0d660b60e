package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/reclaim/internal/reclaim"
	"github.com/teemow/reclaim/internal/server"
)

// Resource URIs.
const (
	URIActiveTasks  = "reclaim://tasks/active"
	URITaskSummary  = "reclaim://tasks/summary"
	taskURIPrefix   = "reclaim://tasks/"
	taskURITemplate = "reclaim://tasks/{id}"
	mimeJSON        = "application/json"
)

// RegisterTaskResources registers the read-only task resources.
func RegisterTaskResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	activeResource := mcp.NewResource(
		URIActiveTasks,
		"Active Reclaim Tasks",
		mcp.WithResourceDescription("All tasks that are not deleted, archived or cancelled"),
		mcp.WithMIMEType(mimeJSON),
	)
	s.AddResource(activeResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleActiveTasks(ctx, request, sc)
	})

	summaryResource := mcp.NewResource(
		URITaskSummary,
		"Reclaim Task Summary",
		mcp.WithResourceDescription("Counts of active tasks by status and priority, plus the number of open and completed tasks"),
		mcp.WithMIMEType(mimeJSON),
	)
	s.AddResource(summaryResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleTaskSummary(ctx, request, sc)
	})

	taskTemplate := mcp.NewResourceTemplate(
		taskURITemplate,
		"Reclaim Task",
		mcp.WithTemplateDescription("A single Reclaim task by numeric ID"),
		mcp.WithTemplateMIMEType(mimeJSON),
	)
	s.AddResourceTemplate(taskTemplate, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleTask(ctx, request, sc)
	})

	return nil
}

func handleActiveTasks(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	tasks, err := sc.API().ListTasks(ctx, reclaim.TaskFilterActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []reclaim.Task{}
	}
	return jsonContents(request.Params.URI, tasks)
}

// TaskSummary is the body of the task summary resource.
type TaskSummary struct {
	Total      int            `json:"total"`
	Open       int            `json:"open"`
	Completed  int            `json:"completed"`
	ByStatus   map[string]int `json:"by_status"`
	ByPriority map[string]int `json:"by_priority"`
	NextDue    []TaskRef      `json:"next_due,omitempty"`
}

// TaskRef identifies a task in a summary.
type TaskRef struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
	Due   string `json:"due"`
}

// maxNextDue bounds the next_due list of the summary.
const maxNextDue = 5

// Summarize counts tasks by status and priority. Tasks without a status or
// priority are counted under "-". NextDue lists the open tasks with the
// earliest due dates.
func Summarize(tasks []reclaim.Task) TaskSummary {
	summary := TaskSummary{
		Total:      len(tasks),
		ByStatus:   map[string]int{},
		ByPriority: map[string]int{},
	}

	var due []TaskRef
	for _, t := range tasks {
		summary.ByStatus[t.StatusOr("-")]++
		summary.ByPriority[t.PriorityOr("-")]++
		if reclaim.IsCompleted(t) {
			summary.Completed++
			continue
		}
		summary.Open++
		if t.Due != nil && *t.Due != "" {
			due = append(due, TaskRef{ID: t.ID, Title: t.Title, Due: *t.Due})
		}
	}

	// RFC 3339 timestamps in the same zone sort lexically.
	sort.SliceStable(due, func(i, j int) bool { return due[i].Due < due[j].Due })
	if len(due) > maxNextDue {
		due = due[:maxNextDue]
	}
	summary.NextDue = due
	return summary
}

func handleTaskSummary(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	tasks, err := sc.API().ListTasks(ctx, reclaim.TaskFilterActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return jsonContents(request.Params.URI, Summarize(tasks))
}

func handleTask(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	rawID, ok := strings.CutPrefix(request.Params.URI, taskURIPrefix)
	if !ok {
		return nil, fmt.Errorf("unexpected resource URI: %s", request.Params.URI)
	}
	taskID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || taskID == 0 {
		return nil, fmt.Errorf("invalid task ID %q in %s", rawID, request.Params.URI)
	}

	task, err := sc.API().GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task %d: %w", taskID, err)
	}
	return jsonContents(request.Params.URI, task)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(jsonData),
		},
	}, nil
}
