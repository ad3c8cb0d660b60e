package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	attrMethod    = "method"
	attrStatus    = "status"
	attrCode      = "code"
	attrOperation = "operation"
	attrCommand   = "command"
	attrTool      = "tool"
)

// Metrics provides methods for recording observability metrics.
//
// All Record methods are safe to call on a nil *Metrics and on the zero
// value, so call sites never need to check whether instrumentation is on.
type Metrics struct {
	// Reclaim API metrics
	apiRequestsTotal   metric.Int64Counter
	apiRequestDuration metric.Float64Histogram

	// CLI command metrics
	commandsTotal   metric.Int64Counter
	commandDuration metric.Float64Histogram

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// Dashboard metrics
	dashboardRefreshTotal metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.apiRequestsTotal, err = meter.Int64Counter(
		"reclaim_api_requests_total",
		metric.WithDescription("Total number of requests sent to the Reclaim API"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reclaim_api_requests_total counter: %w", err)
	}

	m.apiRequestDuration, err = meter.Float64Histogram(
		"reclaim_api_request_duration_seconds",
		metric.WithDescription("Reclaim API request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reclaim_api_request_duration_seconds histogram: %w", err)
	}

	m.commandsTotal, err = meter.Int64Counter(
		"reclaim_cli_commands_total",
		metric.WithDescription("Total number of CLI command executions"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reclaim_cli_commands_total counter: %w", err)
	}

	m.commandDuration, err = meter.Float64Histogram(
		"reclaim_cli_command_duration_seconds",
		metric.WithDescription("CLI command duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reclaim_cli_command_duration_seconds histogram: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	m.dashboardRefreshTotal, err = meter.Int64Counter(
		"reclaim_dashboard_refresh_total",
		metric.WithDescription("Total number of dashboard task refreshes"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reclaim_dashboard_refresh_total counter: %w", err)
	}

	return m, nil
}

// RecordAPIRequest records one Reclaim API round trip.
//
// Parameters:
//   - operation: client operation (see the Operation* constants)
//   - method: HTTP method
//   - statusCode: HTTP status, or 0 when no response was received
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the round trip
func (m *Metrics) RecordAPIRequest(ctx context.Context, operation, method string, statusCode int, status string, duration time.Duration) {
	if m == nil || m.apiRequestsTotal == nil || m.apiRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrMethod, method),
		attribute.String(attrCode, statusCodeLabel(statusCode)),
		attribute.String(attrStatus, status),
	}

	m.apiRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.apiRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordCommand records a CLI command execution with its result and duration.
func (m *Metrics) RecordCommand(ctx context.Context, command, status string, duration time.Duration) {
	if m == nil || m.commandsTotal == nil || m.commandDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrCommand, command),
		attribute.String(attrStatus, status),
	}

	m.commandsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.commandDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
//
// Parameters:
//   - toolName: Name of the MCP tool (e.g., "reclaim_list_tasks")
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the tool execution
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordDashboardRefresh records a dashboard refresh attempt.
func (m *Metrics) RecordDashboardRefresh(ctx context.Context, status string) {
	if m == nil || m.dashboardRefreshTotal == nil {
		return // Instrumentation not initialized
	}

	m.dashboardRefreshTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))
}

// statusCodeLabel keeps the code label bounded: "none" for transport
// failures and the numeric status otherwise.
func statusCodeLabel(code int) string {
	if code <= 0 {
		return "none"
	}
	return strconv.Itoa(code)
}
