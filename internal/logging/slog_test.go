package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantErr   bool
		wantDebug bool
		wantJSON  bool
	}{
		{name: "default text", opts: Options{}},
		{name: "debug text", opts: Options{Debug: true, Format: "text"}, wantDebug: true},
		{name: "json", opts: Options{Format: "JSON"}, wantJSON: true},
		{name: "invalid", opts: Options{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(&buf, tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			logger.Debug("debug line")
			logger.Warn("warn line")

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug line present = %v, want %v", got, tt.wantDebug)
			}
			if !strings.Contains(out, "warn line") {
				t.Errorf("expected warn line in output, got %q", out)
			}
			if got := strings.HasPrefix(out, "{"); got != tt.wantJSON {
				t.Errorf("json output = %v, want %v", got, tt.wantJSON)
			}
		})
	}
}

func TestWithCommand(t *testing.T) {
	var buf bytes.Buffer
	logger := WithCommand(slog.New(slog.NewTextHandler(&buf, nil)), "list")
	logger.Info("hello")
	if !strings.Contains(buf.String(), "command=list") {
		t.Errorf("expected command attribute, got %q", buf.String())
	}
}

func TestOperationAttr(t *testing.T) {
	attr := Operation("tasks.list")
	if attr.Key != KeyOperation {
		t.Errorf("Operation key = %q, want %q", attr.Key, KeyOperation)
	}
	if attr.Value.String() != "tasks.list" {
		t.Errorf("Operation value = %q, want %q", attr.Value.String(), "tasks.list")
	}
}

func TestToolAttr(t *testing.T) {
	attr := Tool("reclaim_list_tasks")
	if attr.Key != KeyTool {
		t.Errorf("Tool key = %q, want %q", attr.Key, KeyTool)
	}
	if attr.Value.String() != "reclaim_list_tasks" {
		t.Errorf("Tool value = %q, want %q", attr.Value.String(), "reclaim_list_tasks")
	}
}

func TestStatusAttr(t *testing.T) {
	attr := Status(StatusSuccess)
	if attr.Key != KeyStatus {
		t.Errorf("Status key = %q, want %q", attr.Key, KeyStatus)
	}
	if attr.Value.String() != StatusSuccess {
		t.Errorf("Status value = %q, want %q", attr.Value.String(), StatusSuccess)
	}
}

func TestTaskIDAttr(t *testing.T) {
	attr := TaskID(42)
	if attr.Key != KeyTaskID {
		t.Errorf("TaskID key = %q, want %q", attr.Key, KeyTaskID)
	}
	if attr.Value.Uint64() != 42 {
		t.Errorf("TaskID value = %d, want 42", attr.Value.Uint64())
	}
}

func TestErr(t *testing.T) {
	err := errors.New("test error")
	attr := Err(err)
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "test error" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "test error")
	}

	// Multi-line errors keep only the first line
	attr = Err(errors.New("Reclaim API returned HTTP 500: Request: GET x\nAPI message: boom"))
	if strings.Contains(attr.Value.String(), "\n") {
		t.Errorf("Err value should be a single line, got %q", attr.Value.String())
	}

	attr = Err(nil)
	if attr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty string (empty group)", attr.Key)
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"", "<empty>"},
		{"abc", "[token:3 chars]"},
		{"sk-1234567890", "[token:13 chars]"},
	}

	for _, tt := range tests {
		if got := SanitizeToken(tt.token); got != tt.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestAPIKey(t *testing.T) {
	attr := APIKey("  secret  ")
	if attr.Value.String() != "[token:6 chars]" {
		t.Errorf("APIKey value = %q, want %q", attr.Value.String(), "[token:6 chars]")
	}
	if strings.Contains(attr.Value.String(), "secret") {
		t.Error("APIKey must not leak the key")
	}
}
