package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
)

// HealthChecker serves the probe endpoints of the MCP HTTP transports.
// It starts out ready; serve flips it to not ready before draining.
type HealthChecker struct {
	ready   atomic.Bool
	sc      *ServerContext
	version string
	started time.Time
}

// NewHealthChecker returns a ready HealthChecker. sc may be nil.
func NewHealthChecker(sc *ServerContext, version string) *HealthChecker {
	h := &HealthChecker{sc: sc, version: version, started: time.Now()}
	h.ready.Store(true)
	return h
}

// SetReady toggles the readiness probe.
func (h *HealthChecker) SetReady(ready bool) { h.ready.Store(ready) }

// IsReady reports the readiness flag.
func (h *HealthChecker) IsReady() bool { return h.ready.Load() }

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed.
type DetailedHealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version,omitempty"`
	Uptime   string            `json:"uptime"`
	ReadOnly bool              `json:"read_only"`
	Checks   map[string]string `json:"checks,omitempty"`
}

// evaluate runs the readiness checks and returns the overall status and
// the per-check results. The overall status is the first failing check.
func (h *HealthChecker) evaluate() (string, map[string]string) {
	checks := map[string]string{"ready": healthStatusOK, "shutdown": healthStatusOK}
	status := healthStatusOK

	if !h.ready.Load() {
		checks["ready"] = healthStatusNotReady
		status = healthStatusNotReady
	}
	if h.sc != nil && h.sc.IsShutdown() {
		checks["shutdown"] = healthStatusShuttingDown
		if status == healthStatusOK {
			status = healthStatusShuttingDown
		}
	}
	return status, checks
}

func writeHealth(w http.ResponseWriter, status string, body any) {
	w.Header().Set("Content-Type", "application/json")
	code := http.StatusOK
	if status != healthStatusOK {
		code = http.StatusServiceUnavailable
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// LivenessHandler answers /healthz. It only proves the process is serving.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, healthStatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler answers /readyz.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status, checks := h.evaluate()
		// readyz reports any failure as "not ready"; the checks say why.
		if status != healthStatusOK {
			status = healthStatusNotReady
		}
		writeHealth(w, status, HealthResponse{Status: status, Checks: checks})
	})
}

// DetailedHealthHandler answers /healthz/detailed with version, uptime and
// whether write tools are registered.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status, checks := h.evaluate()
		writeHealth(w, status, DetailedHealthResponse{
			Status:   status,
			Version:  h.version,
			Uptime:   time.Since(h.started).Truncate(time.Second).String(),
			ReadOnly: h.sc == nil || h.sc.ReadOnly(),
			Checks:   checks,
		})
	})
}

// RegisterHealthEndpoints mounts the probe handlers on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}
