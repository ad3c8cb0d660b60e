package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/teemow/reclaim/internal/instrumentation"
	"github.com/teemow/reclaim/internal/logging"
	"github.com/teemow/reclaim/internal/reclaim"
)

// ServerContext holds the shared state of a running MCP server: the
// Reclaim API client every tool talks to and the instrumentation hooks.
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	api         reclaim.API
	logger      logging.Logger
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	readOnly    bool
	mu          sync.RWMutex
	shutdown    bool
}

// NewServerContext creates a new server context bound to api. Servers start
// read-only; call SetReadOnly(false) to expose mutating tools.
func NewServerContext(ctx context.Context, api reclaim.API) (*ServerContext, error) {
	if api == nil {
		return nil, fmt.Errorf("reclaim API client is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		api:      api,
		logger:   logging.DefaultLogger(),
		readOnly: true,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// API returns the Reclaim API client.
func (sc *ServerContext) API() reclaim.API {
	return sc.api
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() logging.Logger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.logger
}

// SetLogger replaces the server logger. nil is ignored.
func (sc *ServerContext) SetLogger(logger logging.Logger) {
	if logger == nil {
		return
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.logger = logger
}

// Metrics returns the metrics recorder, or nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder used by instrumented tools.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// AuditLogger returns the audit logger, or nil when auditing is off.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger used by instrumented tools.
func (sc *ServerContext) SetAuditLogger(a *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = a
}

// ReadOnly reports whether mutating tools are hidden.
func (sc *ServerContext) ReadOnly() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.readOnly
}

// SetReadOnly controls whether mutating tools are registered.
func (sc *ServerContext) SetReadOnly(readOnly bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.readOnly = readOnly
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
