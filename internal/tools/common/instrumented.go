package common

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/reclaim/internal/instrumentation"
	"github.com/teemow/reclaim/internal/logging"
	"github.com/teemow/reclaim/internal/server"
)

var errToolResult = errors.New("tool returned an error result")

// ToolHandler is the signature mcp-go expects for tool callbacks.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler with a trace span, metrics
// and audit logging. operation names the Reclaim client call the tool makes.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", instrumentation.OperationGetTask, sc, handler))
func InstrumentedToolHandler(
	toolName string,
	operation string,
	sc *server.ServerContext,
	handler ToolHandler,
) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		attrs := instrumentation.NewSpanAttributeBuilder().
			WithOperation(operation).
			WithReadOnly(sc.ReadOnly())

		taskID, _ := IDFromArgs(request.GetArguments(), ArgTaskID)
		attrs.WithTaskID(taskID)

		ctx, span := instrumentation.StartToolSpan(ctx, toolName, attrs.Build()...)
		defer span.End()

		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithOperation(operation).
			WithTaskID(taskID).
			WithSpanContext(ctx)

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			invocation.CompleteWithError(err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			invocation.Complete(false, nil)
			instrumentation.SetSpanError(span, errToolResult)
		default:
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		metrics.RecordToolInvocation(ctx, toolName, status, duration)
		auditLogger.LogToolInvocation(invocation)
		sc.Logger().Debug("tool call finished",
			logging.Tool(toolName),
			logging.Operation(operation),
			logging.Status(status),
		)

		return result, err
	}
}
