package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of every reclaim span.
const TracerName = "github.com/teemow/reclaim"

// Span attribute keys. HTTP keys follow the OpenTelemetry semantic
// conventions; the rest are reclaim specific.
const (
	SpanAttrTool       = "mcp.tool"
	SpanAttrReadOnly   = "mcp.read_only"
	SpanAttrCommand    = "cli.command"
	SpanAttrOperation  = "reclaim.operation"
	SpanAttrTaskID     = "reclaim.task_id"
	SpanAttrHTTPMethod = "http.request.method"
	SpanAttrHTTPStatus = "http.response.status_code"
)

// SpanAttributeBuilder collects attributes for a tool span.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewSpanAttributeBuilder returns an empty builder.
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{attrs: make([]attribute.KeyValue, 0, 4)}
}

func (b *SpanAttributeBuilder) WithTool(tool string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrTool, tool))
	return b
}

func (b *SpanAttributeBuilder) WithOperation(operation string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrOperation, operation))
	return b
}

// WithTaskID skips zero, which means the call carried no task.
func (b *SpanAttributeBuilder) WithTaskID(id uint64) *SpanAttributeBuilder {
	if id != 0 {
		b.attrs = append(b.attrs, attribute.Int64(SpanAttrTaskID, int64(id)))
	}
	return b
}

func (b *SpanAttributeBuilder) WithReadOnly(readOnly bool) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.Bool(SpanAttrReadOnly, readOnly))
	return b
}

func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// startSpan starts a span on the global tracer provider, which is the SDK
// provider when instrumentation is enabled and a no-op otherwise.
func startSpan(ctx context.Context, name string, kind trace.SpanKind, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(kind),
	)
}

// StartAPISpan starts the client span "reclaim.<operation>" around one
// Reclaim API request.
func StartAPISpan(ctx context.Context, operation, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{
		attribute.String(SpanAttrOperation, operation),
		attribute.String(SpanAttrHTTPMethod, method),
	}, attrs...)
	return startSpan(ctx, "reclaim."+operation, trace.SpanKindClient, all)
}

// StartCommandSpan starts the root span "cli.<command>" of a CLI run.
func StartCommandSpan(ctx context.Context, command string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{attribute.String(SpanAttrCommand, command)}, attrs...)
	return startSpan(ctx, "cli."+command, trace.SpanKindInternal, all)
}

// StartToolSpan starts the server span "tool.<name>" of an MCP tool call.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{attribute.String(SpanAttrTool, toolName)}, attrs...)
	return startSpan(ctx, "tool."+toolName, trace.SpanKindServer, all)
}

// SetSpanError marks span as failed. A nil err is ignored.
func SetSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// GetTraceID returns the trace ID of the span in ctx, or "" without one.
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// GetSpanID returns the span ID of the span in ctx, or "" without one.
func GetSpanID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.SpanID().String()
}
