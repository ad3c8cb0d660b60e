// Package server provides the MCP server context and the HTTP servers that
// sit next to it.
//
// # Key Components
//
// ServerContext holds the Reclaim API client shared by every tool, together
// with the logger, metrics recorder, audit logger and the read-only switch
// that decides whether mutating tools are registered.
//
// HTTPServer exposes the MCP server over the streamable-http or sse
// transport. Without a bearer token it only binds to loopback addresses.
//
// MetricsServer serves the Prometheus registry of the instrumentation
// provider on its own port, and HealthChecker adds /healthz, /readyz and
// /healthz/detailed for Kubernetes probes.
package server
