// Package instrumentation provides OpenTelemetry instrumentation for the
// reclaim CLI and its MCP server.
//
// Instrumentation is off by default. When enabled it provides:
//   - OpenTelemetry metrics for Reclaim API requests, CLI commands, MCP tools
//     and dashboard refreshes
//   - Distributed tracing for commands, tool calls and outbound API requests
//   - Prometheus export, either through `reclaim serve --metrics-addr` or as
//     a textfile written on exit
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// Reclaim API Metrics:
//   - reclaim_api_requests_total: Counter by operation, method, code and status
//   - reclaim_api_request_duration_seconds: Histogram of round trip durations
//
// CLI Metrics:
//   - reclaim_cli_commands_total: Counter by command and status
//   - reclaim_cli_command_duration_seconds: Histogram of command durations
//   - reclaim_dashboard_refresh_total: Counter of dashboard refreshes by status
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Spans are created for:
//   - CLI commands (cli.<command>)
//   - MCP tool invocations (tool.<name>)
//   - Reclaim API calls (reclaim.<operation>), with otelhttp transport spans beneath
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - RECLAIM_INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: false)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 1.0)
//   - OTEL_SERVICE_NAME: Service name (default: reclaim)
//   - RECLAIM_METRICS_TEXTFILE: Write Prometheus text metrics here on exit
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordAPIRequest(ctx, instrumentation.OperationListTasks, "GET", 200, "success", time.Since(start))
//	recorder.RecordToolInvocation(ctx, "reclaim_list_tasks", "success", time.Since(start))
package instrumentation
