package server

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Transport names accepted by NewHTTPServer.
const (
	TransportSSE            = "sse"
	TransportStreamableHTTP = "streamable-http"
)

// HTTPServerConfig configures the HTTP transport of the MCP server.
type HTTPServerConfig struct {
	// Transport is TransportSSE or TransportStreamableHTTP.
	Transport string

	// BearerToken, when set, is required on every MCP request as
	// "Authorization: Bearer <token>". Health endpoints stay open.
	BearerToken string

	// Health registers /healthz, /readyz and /healthz/detailed when set.
	Health *HealthChecker
}

// HTTPServer exposes an MCP server over HTTP.
type HTTPServer struct {
	mcpServer *mcpserver.MCPServer
	config    HTTPServerConfig
	handler   http.Handler

	mu         sync.Mutex
	httpServer *http.Server
	addr       string
}

// NewHTTPServer builds the HTTP mux for the configured transport.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, config HTTPServerConfig) (*HTTPServer, error) {
	if mcpServer == nil {
		return nil, fmt.Errorf("MCP server is required")
	}

	mux := http.NewServeMux()

	switch config.Transport {
	case TransportSSE:
		sseServer := mcpserver.NewSSEServer(mcpServer,
			mcpserver.WithSSEEndpoint("/sse"),
			mcpserver.WithMessageEndpoint("/message"),
		)
		mux.Handle("/sse", requireBearer(config.BearerToken, sseServer))
		mux.Handle("/message", requireBearer(config.BearerToken, sseServer))

	case TransportStreamableHTTP:
		httpServer := mcpserver.NewStreamableHTTPServer(mcpServer,
			mcpserver.WithEndpointPath("/mcp"),
		)
		mux.Handle("/mcp", requireBearer(config.BearerToken, httpServer))

	default:
		return nil, fmt.Errorf("unsupported server type: %s", config.Transport)
	}

	if config.Health != nil {
		config.Health.RegisterHealthEndpoints(mux)
	}

	return &HTTPServer{
		mcpServer: mcpServer,
		config:    config,
		handler:   otelhttp.NewHandler(mux, "mcp.http"),
	}, nil
}

// Handler returns the root handler, including tracing middleware.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Start listens on addr and serves until Shutdown. ready, when non-nil, is
// closed once the listener is bound.
func (s *HTTPServer) Start(addr string, ready chan<- struct{}) error {
	if err := validateBindAddress(addr, s.config.BearerToken); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	if ready != nil {
		close(ready)
	}
	return srv.Serve(ln)
}

// Addr returns the bound address once Start has been called.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Shutdown gracefully shuts down the server
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

func requireBearer(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="reclaim"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// validateBindAddress refuses to expose an unauthenticated server beyond
// the loopback interface.
func validateBindAddress(addr, token string) error {
	if token != "" {
		return nil
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}

	if host == "localhost" {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return nil
	}
	return fmt.Errorf("refusing to listen on %s without a bearer token. Set --http-token or bind to localhost", addr)
}
