package instrumentation

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// ServiceName is the name of the service (default: reclaim)
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// ServiceInstanceID is the unique instance identifier (default: hostname)
	ServiceInstanceID string

	// Enabled determines if instrumentation is active (default: false).
	// A one-shot CLI invocation rarely needs telemetry; enable it with
	// RECLAIM_INSTRUMENTATION_ENABLED=true or when running `reclaim serve`.
	Enabled bool

	// MetricsExporter specifies the metrics exporter type
	// Options: "prometheus", "otlp", "stdout" (default: "prometheus")
	MetricsExporter string

	// TracingExporter specifies the tracing exporter type
	// Options: "otlp", "stdout", "none" (default: "none")
	TracingExporter string

	// OTLPEndpoint is the OTLP collector endpoint
	// Example: "localhost:4318" (without protocol prefix)
	OTLPEndpoint string

	// OTLPInsecure controls whether to use insecure HTTP for OTLP export.
	// When false (default), uses TLS for secure transport.
	// WARNING: request payloads can appear in span events; keep TLS on
	// anywhere but local development.
	OTLPInsecure bool

	// TraceSamplingRate is the sampling rate for traces (0.0 to 1.0, default: 1.0)
	TraceSamplingRate float64

	// MetricsTextfile, when set, is where Prometheus-format metrics are
	// written on shutdown (node_exporter textfile collector format).
	MetricsTextfile string
}

// DefaultConfig reads the instrumentation settings from the environment.
func DefaultConfig() Config {
	return Config{
		ServiceName:       envValue("OTEL_SERVICE_NAME", "reclaim", parseString),
		ServiceVersion:    "unknown",
		ServiceInstanceID: envValue("OTEL_SERVICE_INSTANCE_ID", "", parseString),
		Enabled:           envValue("RECLAIM_INSTRUMENTATION_ENABLED", false, strconv.ParseBool),
		MetricsExporter:   envValue("METRICS_EXPORTER", ExporterPrometheus, parseString),
		TracingExporter:   envValue("TRACING_EXPORTER", ExporterNone, parseString),
		OTLPEndpoint:      envValue("OTEL_EXPORTER_OTLP_ENDPOINT", "", parseString),
		OTLPInsecure:      envValue("OTEL_EXPORTER_OTLP_INSECURE", false, strconv.ParseBool),
		TraceSamplingRate: envValue("OTEL_TRACES_SAMPLER_ARG", 1.0, parseFloat),
		MetricsTextfile:   envValue("RECLAIM_METRICS_TEXTFILE", "", parseString),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	validMetricsExporters := map[string]bool{ExporterPrometheus: true, ExporterOTLP: true, ExporterStdout: true}
	if c.MetricsExporter != "" && !validMetricsExporters[c.MetricsExporter] {
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}

	validTracingExporters := map[string]bool{ExporterOTLP: true, ExporterStdout: true, ExporterNone: true}
	if c.TracingExporter != "" && !validTracingExporters[c.TracingExporter] {
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	if c.TracingExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP tracing exporter")
	}
	if c.MetricsExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP metrics exporter")
	}

	if c.MetricsTextfile != "" && c.MetricsExporter != "" && c.MetricsExporter != ExporterPrometheus {
		return fmt.Errorf("metrics textfile requires the prometheus metrics exporter, got %q", c.MetricsExporter)
	}

	return nil
}

func parseString(s string) (string, error) { return s, nil }

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

// envValue parses the environment variable key, falling back to def when it
// is unset or does not parse.
func envValue[T any](key string, def T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

// Constants for metric label values.
const (
	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Exporter types
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"

	// Metric recording intervals
	DefaultMetricInterval = 10 * time.Second
)
