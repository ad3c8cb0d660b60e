package instrumentation

import (
	"strconv"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	// Clear environment to get defaults
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("RECLAIM_INSTRUMENTATION_ENABLED", "")
	t.Setenv("METRICS_EXPORTER", "")
	t.Setenv("TRACING_EXPORTER", "")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "")
	t.Setenv("RECLAIM_METRICS_TEXTFILE", "")

	config := DefaultConfig()

	if config.ServiceName != "reclaim" {
		t.Errorf("expected ServiceName 'reclaim', got %q", config.ServiceName)
	}

	if config.Enabled {
		t.Error("expected Enabled to be false by default")
	}

	if config.MetricsTextfile != "" {
		t.Errorf("expected empty MetricsTextfile, got %q", config.MetricsTextfile)
	}

	if config.MetricsExporter != ExporterPrometheus {
		t.Errorf("expected MetricsExporter 'prometheus', got %q", config.MetricsExporter)
	}

	if config.TracingExporter != ExporterNone {
		t.Errorf("expected TracingExporter 'none', got %q", config.TracingExporter)
	}

	if config.TraceSamplingRate != 1.0 {
		t.Errorf("expected TraceSamplingRate 1.0, got %f", config.TraceSamplingRate)
	}
}

func TestDefaultConfig_FromEnv(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "test-service")
	t.Setenv("RECLAIM_INSTRUMENTATION_ENABLED", "true")
	t.Setenv("METRICS_EXPORTER", "stdout")
	t.Setenv("TRACING_EXPORTER", "stdout")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.5")
	t.Setenv("RECLAIM_METRICS_TEXTFILE", "/tmp/reclaim.prom")

	config := DefaultConfig()

	if config.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %q", config.ServiceName)
	}

	if !config.Enabled {
		t.Error("expected Enabled to be true")
	}

	if config.MetricsTextfile != "/tmp/reclaim.prom" {
		t.Errorf("expected MetricsTextfile '/tmp/reclaim.prom', got %q", config.MetricsTextfile)
	}

	if config.MetricsExporter != "stdout" {
		t.Errorf("expected MetricsExporter 'stdout', got %q", config.MetricsExporter)
	}

	if config.TracingExporter != "stdout" {
		t.Errorf("expected TracingExporter 'stdout', got %q", config.TracingExporter)
	}

	if config.TraceSamplingRate != 0.5 {
		t.Errorf("expected TraceSamplingRate 0.5, got %f", config.TraceSamplingRate)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errContains string
	}{
		{
			name: "valid config with prometheus",
			config: Config{
				ServiceName:     "test",
				Enabled:         true,
				MetricsExporter: ExporterPrometheus,
				TracingExporter: ExporterNone,
			},
			expectError: false,
		},
		{
			name: "valid config with otlp",
			config: Config{
				ServiceName:     "test",
				Enabled:         true,
				MetricsExporter: ExporterPrometheus,
				TracingExporter: ExporterOTLP,
				OTLPEndpoint:    "localhost:4318",
			},
			expectError: false,
		},
		{
			name: "invalid sampling rate negative",
			config: Config{
				TraceSamplingRate: -0.5,
			},
			expectError: true,
			errContains: "sampling rate",
		},
		{
			name: "invalid sampling rate above 1",
			config: Config{
				TraceSamplingRate: 1.5,
			},
			expectError: true,
			errContains: "sampling rate",
		},
		{
			name: "invalid metrics exporter",
			config: Config{
				MetricsExporter: "invalid",
			},
			expectError: true,
			errContains: "invalid metrics exporter",
		},
		{
			name: "invalid tracing exporter",
			config: Config{
				TracingExporter: "invalid",
			},
			expectError: true,
			errContains: "invalid tracing exporter",
		},
		{
			name: "otlp tracing without endpoint",
			config: Config{
				TracingExporter: ExporterOTLP,
				OTLPEndpoint:    "",
			},
			expectError: true,
			errContains: "OTLP endpoint is required",
		},
		{
			name: "otlp metrics without endpoint",
			config: Config{
				MetricsExporter: ExporterOTLP,
				OTLPEndpoint:    "",
			},
			expectError: true,
			errContains: "OTLP endpoint is required",
		},
		{
			name: "textfile with non-prometheus exporter",
			config: Config{
				MetricsExporter: ExporterStdout,
				MetricsTextfile: "/tmp/reclaim.prom",
			},
			expectError: true,
			errContains: "metrics textfile requires",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				} else if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error containing %q, got %q", tt.errContains, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestEnvValue(t *testing.T) {
	t.Setenv("RECLAIM_TEST_STRING", "value")
	t.Setenv("RECLAIM_TEST_BOOL", "true")
	t.Setenv("RECLAIM_TEST_BOOL_INVALID", "sometimes")
	t.Setenv("RECLAIM_TEST_FLOAT", "0.25")
	t.Setenv("RECLAIM_TEST_FLOAT_INVALID", "half")

	if v := envValue("RECLAIM_TEST_STRING", "default", parseString); v != "value" {
		t.Errorf("string = %q, want value", v)
	}
	if v := envValue("RECLAIM_TEST_UNSET", "default", parseString); v != "default" {
		t.Errorf("unset string = %q, want default", v)
	}
	if v := envValue("RECLAIM_TEST_BOOL", false, strconv.ParseBool); !v {
		t.Error("bool = false, want true")
	}
	if v := envValue("RECLAIM_TEST_BOOL_INVALID", false, strconv.ParseBool); v {
		t.Error("invalid bool did not fall back to false")
	}
	if v := envValue("RECLAIM_TEST_UNSET", true, strconv.ParseBool); !v {
		t.Error("unset bool did not fall back to true")
	}
	if v := envValue("RECLAIM_TEST_FLOAT", 1.0, parseFloat); v != 0.25 {
		t.Errorf("float = %f, want 0.25", v)
	}
	if v := envValue("RECLAIM_TEST_FLOAT_INVALID", 1.0, parseFloat); v != 1 {
		t.Errorf("invalid float = %f, want fallback 1", v)
	}
}
