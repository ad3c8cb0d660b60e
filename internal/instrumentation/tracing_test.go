package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans installs an in-memory tracer provider for the duration of the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[string]interface{} {
	out := make(map[string]interface{})
	for _, attr := range span.Attributes() {
		out[string(attr.Key)] = attr.Value.AsInterface()
	}
	return out
}

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithTool("reclaim_patch_task").
		WithOperation(OperationPatchTask).
		WithTaskID(42).
		WithReadOnly(false).
		Build()

	if len(attrs) != 4 {
		t.Errorf("expected 4 attributes, got %d", len(attrs))
	}

	attrMap := make(map[string]interface{})
	for _, attr := range attrs {
		attrMap[string(attr.Key)] = attr.Value.AsInterface()
	}

	if attrMap[SpanAttrTool] != "reclaim_patch_task" {
		t.Errorf("expected tool 'reclaim_patch_task', got %v", attrMap[SpanAttrTool])
	}
	if attrMap[SpanAttrOperation] != OperationPatchTask {
		t.Errorf("expected operation %q, got %v", OperationPatchTask, attrMap[SpanAttrOperation])
	}
	if attrMap[SpanAttrTaskID] != int64(42) {
		t.Errorf("expected task id 42, got %v", attrMap[SpanAttrTaskID])
	}
	if attrMap[SpanAttrReadOnly] != false {
		t.Errorf("expected read_only false, got %v", attrMap[SpanAttrReadOnly])
	}
}

func TestSpanAttributeBuilder_ZeroTaskID(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithTool("reclaim_list_tasks").
		WithTaskID(0).
		Build()

	if len(attrs) != 1 {
		t.Errorf("expected 1 attribute (only tool), got %d", len(attrs))
	}
}

func TestStartAPISpan(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartAPISpan(context.Background(), OperationGetTask, "GET")
	SetSpanSuccess(span)
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if ended[0].Name() != "reclaim.get_task" {
		t.Errorf("expected span name 'reclaim.get_task', got %q", ended[0].Name())
	}
	if ended[0].SpanKind() != trace.SpanKindClient {
		t.Errorf("expected client span kind, got %v", ended[0].SpanKind())
	}
	attrs := spanAttrs(ended[0])
	if attrs[SpanAttrHTTPMethod] != "GET" {
		t.Errorf("expected method GET, got %v", attrs[SpanAttrHTTPMethod])
	}
	if ended[0].Status().Code != codes.Ok {
		t.Errorf("expected OK status, got %v", ended[0].Status().Code)
	}
}

func TestStartCommandSpan(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartCommandSpan(context.Background(), "events_list")
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 || ended[0].Name() != "cli.events_list" {
		t.Fatalf("expected one span named 'cli.events_list', got %v", ended)
	}
	if spanAttrs(ended[0])[SpanAttrCommand] != "events_list" {
		t.Error("expected command attribute to be set")
	}
}

func TestStartToolSpan(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartToolSpan(context.Background(), "reclaim_list_tasks")
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if ended[0].Name() != "tool.reclaim_list_tasks" {
		t.Errorf("expected span name 'tool.reclaim_list_tasks', got %q", ended[0].Name())
	}
	if ended[0].SpanKind() != trace.SpanKindServer {
		t.Errorf("expected server span kind, got %v", ended[0].SpanKind())
	}
}

func TestSetSpanError(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartCommandSpan(context.Background(), "get")
	SetSpanError(span, nil) // nil error should be safe
	SetSpanError(span, errors.New("test error"))
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if ended[0].Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", ended[0].Status().Code)
	}
	if ended[0].Status().Description != "test error" {
		t.Errorf("expected description 'test error', got %q", ended[0].Status().Description)
	}
}

func TestGetTraceID_WithSpan(t *testing.T) {
	recordSpans(t)

	ctx, span := StartCommandSpan(context.Background(), "get")
	defer span.End()

	if GetTraceID(ctx) == "" {
		t.Error("expected trace ID for context with span")
	}
	if GetSpanID(ctx) == "" {
		t.Error("expected span ID for context with span")
	}
}

func TestGetTraceID_NoSpan(t *testing.T) {
	ctx := context.Background()
	traceID := GetTraceID(ctx)
	if traceID != "" {
		t.Errorf("expected empty trace ID for context without span, got %q", traceID)
	}
}

func TestGetSpanID_NoSpan(t *testing.T) {
	ctx := context.Background()
	spanID := GetSpanID(ctx)
	if spanID != "" {
		t.Errorf("expected empty span ID for context without span, got %q", spanID)
	}
}
