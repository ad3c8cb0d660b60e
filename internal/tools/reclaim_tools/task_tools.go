package reclaim_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/reclaim/internal/instrumentation"
	"github.com/teemow/reclaim/internal/payload"
	"github.com/teemow/reclaim/internal/reclaim"
	"github.com/teemow/reclaim/internal/server"
	"github.com/teemow/reclaim/internal/tools/batch"
	"github.com/teemow/reclaim/internal/tools/common"
)

const (
	taskIDDescription  = "Reclaim task ID, or an array of task IDs"
	notifyDescription  = "Optional notification key passed to Reclaim as the notificationKey query parameter"
	jsonDescription    = "JSON object of task fields"
	setDescription     = "KEY=VALUE overrides applied after json. Values are parsed as JSON when valid, otherwise kept as strings"
	priorityValuesHint = "P1, P2, P3 or P4"
)

// registerTaskTools registers the task tools
func registerTaskTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listTasksTool := mcp.NewTool("reclaim_list_tasks",
		mcp.WithDescription("List Reclaim tasks. Deleted, archived and cancelled tasks are hidden unless all is true."),
		mcp.WithBoolean(argAll,
			mcp.Description("Include deleted, archived and cancelled tasks"),
		),
		mcp.WithString(argFilter,
			mcp.Description("Completion filter applied after the active/all filter: 'open' or 'completed'"),
		),
	)
	s.AddTool(listTasksTool, common.InstrumentedToolHandler("reclaim_list_tasks", instrumentation.OperationListTasks, sc, handleListTasks(sc)))

	getTaskTool := mcp.NewTool("reclaim_get_task",
		mcp.WithDescription("Get one or more Reclaim tasks by ID"),
		mcp.WithString(common.ArgTaskID,
			mcp.Required(),
			mcp.Description(taskIDDescription),
		),
	)
	s.AddTool(getTaskTool, common.InstrumentedToolHandler("reclaim_get_task", instrumentation.OperationGetTask, sc, handleGetTask(sc)))

	if readOnly {
		return nil
	}

	createTaskTool := mcp.NewTool("reclaim_create_task",
		mcp.WithDescription("Create a Reclaim task"),
		mcp.WithString(argTitle,
			mcp.Required(),
			mcp.Description("Task title"),
		),
		mcp.WithString(argNotes,
			mcp.Description("Task notes"),
		),
		mcp.WithString(argPriority,
			mcp.Description("Task priority: "+priorityValuesHint),
		),
		mcp.WithString(argDue,
			mcp.Description("Due date as an ISO 8601 timestamp, e.g. 2026-02-25T17:00:00Z"),
		),
		mcp.WithNumber(argTimeChunksRequired,
			mcp.Description("Total number of 15 minute chunks the task needs"),
		),
		mcp.WithNumber(argMinChunkSize,
			mcp.Description("Minimum chunk size; requires time_chunks_required (default 1)"),
		),
		mcp.WithNumber(argMaxChunkSize,
			mcp.Description("Maximum chunk size; requires time_chunks_required (default: time_chunks_required)"),
		),
		mcp.WithString(argEventCategory,
			mcp.Description("WORK or PERSONAL (default: WORK)"),
		),
		mcp.WithBoolean(argAlwaysPrivate,
			mcp.Description("Mark scheduled events private (default: true)"),
		),
	)
	s.AddTool(createTaskTool, common.InstrumentedToolHandler("reclaim_create_task", instrumentation.OperationCreateTask, sc, handleCreateTask(sc)))

	patchTaskTool := mcp.NewTool("reclaim_patch_task",
		mcp.WithDescription("Partially update a Reclaim task. At least one field is required."),
		mcp.WithNumber(common.ArgTaskID,
			mcp.Required(),
			mcp.Description("Reclaim task ID"),
		),
		mcp.WithObject(argJSON,
			mcp.Description(jsonDescription),
		),
		mcp.WithArray(argSet,
			mcp.Description(setDescription),
			mcp.WithStringItems(),
		),
		mcp.WithString(common.ArgNotificationKey,
			mcp.Description(notifyDescription),
		),
	)
	s.AddTool(patchTaskTool, common.InstrumentedToolHandler("reclaim_patch_task", instrumentation.OperationPatchTask, sc, handlePatchTask(sc)))

	putTaskTool := mcp.NewTool("reclaim_put_task",
		mcp.WithDescription("Replace a Reclaim task. Without json, the current task is fetched and the set overrides are applied on top."),
		mcp.WithNumber(common.ArgTaskID,
			mcp.Required(),
			mcp.Description("Reclaim task ID"),
		),
		mcp.WithObject(argJSON,
			mcp.Description("Full task object to send"),
		),
		mcp.WithArray(argSet,
			mcp.Description(setDescription),
			mcp.WithStringItems(),
		),
		mcp.WithString(common.ArgNotificationKey,
			mcp.Description(notifyDescription),
		),
	)
	s.AddTool(putTaskTool, common.InstrumentedToolHandler("reclaim_put_task", instrumentation.OperationPutTask, sc, handlePutTask(sc)))

	deleteTaskTool := mcp.NewTool("reclaim_delete_task",
		mcp.WithDescription("Delete one or more Reclaim tasks"),
		mcp.WithString(common.ArgTaskID,
			mcp.Required(),
			mcp.Description(taskIDDescription),
		),
		mcp.WithString(common.ArgNotificationKey,
			mcp.Description(notifyDescription),
		),
	)
	s.AddTool(deleteTaskTool, common.InstrumentedToolHandler("reclaim_delete_task", instrumentation.OperationDeleteTask, sc, handleDeleteTask(sc)))

	return nil
}

func handleListTasks(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		completion, err := reclaim.ParseCompletionFilter(request.GetString(argFilter, ""))
		if err != nil {
			return common.ErrorResult(err), nil
		}

		filter := reclaim.TaskFilterActive
		if request.GetBool(argAll, false) {
			filter = reclaim.TaskFilterAll
		}

		tasks, err := sc.API().ListTasks(ctx, filter)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		tasks = reclaim.ApplyCompletionFilter(tasks, completion)
		if tasks == nil {
			tasks = []reclaim.Task{}
		}

		sc.Logger().Debug("listed tasks", "count", len(tasks), "filter", filter.String())
		return common.JSONResult(tasks)
	}
}

func handleGetTask(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := batch.ParseTaskIDs(request.GetArguments()[common.ArgTaskID], common.ArgTaskID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if len(ids) == 1 {
			task, err := sc.API().GetTask(ctx, ids[0])
			if err != nil {
				return common.ErrorResult(err), nil
			}
			return common.JSONResult(task)
		}

		results := batch.ProcessBatch(ids, func(id uint64) (any, error) {
			return sc.API().GetTask(ctx, id)
		})
		return mcp.NewToolResultText(batch.FormatResults(results)), nil
	}
}

func handleCreateTask(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		in := payload.CreateTaskInput{
			Title:         request.GetString(argTitle, ""),
			Notes:         common.OptionalString(args, argNotes),
			Priority:      common.OptionalString(args, argPriority),
			Due:           rawOptionalString(args, argDue),
			EventCategory: request.GetString(argEventCategory, ""),
			AlwaysPrivate: request.GetBool(argAlwaysPrivate, true),
		}

		var err error
		if in.TimeChunksRequired, err = common.OptionalUint32(args, argTimeChunksRequired); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if in.MinChunkSize, err = common.OptionalUint32(args, argMinChunkSize); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if in.MaxChunkSize, err = common.OptionalUint32(args, argMaxChunkSize); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		req, err := payload.BuildCreateTask(in)
		if err != nil {
			return common.ErrorResult(err), nil
		}

		task, err := sc.API().CreateTask(ctx, req)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(task)
	}
}

func handlePatchTask(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		taskID, rawJSON, sets, err := updateArgs(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		body, err := payload.BuildPatch(rawJSON, sets)
		if err != nil {
			return common.ErrorResult(err), nil
		}

		task, err := sc.API().PatchTask(ctx, taskID, body, request.GetString(common.ArgNotificationKey, ""))
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(task)
	}
}

func handlePutTask(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		taskID, rawJSON, sets, err := updateArgs(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		body, err := payload.BuildPut(ctx, sc.API(), taskID, rawJSON, sets)
		if err != nil {
			return common.ErrorResult(err), nil
		}

		task, err := sc.API().PutTask(ctx, taskID, body, request.GetString(common.ArgNotificationKey, ""))
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(task)
	}
}

func handleDeleteTask(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := batch.ParseTaskIDs(request.GetArguments()[common.ArgTaskID], common.ArgTaskID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		notificationKey := request.GetString(common.ArgNotificationKey, "")

		if len(ids) == 1 {
			response, err := sc.API().DeleteTask(ctx, ids[0], notificationKey)
			if err != nil {
				return common.ErrorResult(err), nil
			}
			return common.JSONResult(NewDeleteResult(ids[0], response))
		}

		results := batch.ProcessBatch(ids, func(id uint64) (any, error) {
			response, err := sc.API().DeleteTask(ctx, id, notificationKey)
			if err != nil {
				return nil, err
			}
			return NewDeleteResult(id, response), nil
		})
		return mcp.NewToolResultText(batch.FormatResults(results)), nil
	}
}

// updateArgs reads the arguments shared by the PUT and PATCH tools.
func updateArgs(args map[string]any) (uint64, *string, []string, error) {
	taskID, err := common.IDFromArgs(args, common.ArgTaskID)
	if err != nil {
		return 0, nil, nil, err
	}
	rawJSON, err := common.ObjectArg(args, argJSON)
	if err != nil {
		return 0, nil, nil, err
	}
	sets, err := common.StringSlice(args, argSet)
	if err != nil {
		return 0, nil, nil, err
	}
	return taskID, rawJSON, sets, nil
}

// rawOptionalString returns the untrimmed string argument so that builders
// can reject blank values themselves.
func rawOptionalString(args map[string]any, key string) *string {
	v, ok := args[key].(string)
	if !ok {
		return nil
	}
	return &v
}
