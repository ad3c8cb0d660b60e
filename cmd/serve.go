package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/teemow/reclaim/internal/instrumentation"
	"github.com/teemow/reclaim/internal/logging"
	"github.com/teemow/reclaim/internal/resources"
	"github.com/teemow/reclaim/internal/server"
	"github.com/teemow/reclaim/internal/tools/reclaim_tools"
)

const transportStdio = "stdio"

var metricsStartupTimeout = 5 * time.Second

// serveOptions holds the flags of the serve command.
type serveOptions struct {
	transport      string
	httpAddr       string
	httpToken      string
	yolo           bool
	metricsEnabled bool
	metricsAddr    string
}

func newServeCmd(a *app) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to expose Reclaim tasks and
calendar events as tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport on /mcp
  - sse: Server-Sent Events on /sse and /message

Safety Mode:
  By default, the server operates in read-only mode, providing only list and get tools.
  Use --yolo to enable write operations (create, patch, put, delete, schedule actions).

HTTP Transports:
  Without --http-token (or RECLAIM_MCP_TOKEN) the server only binds to loopback
  addresses. With a token every MCP request must send "Authorization: Bearer <token>".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.httpToken == "" {
				opts.httpToken = os.Getenv("RECLAIM_MCP_TOKEN")
			}
			return runServe(cmd.Context(), a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", transportStdio, "Transport type: stdio, streamable-http or sse")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", "127.0.0.1:8080", "HTTP server address (for streamable-http and sse transports)")
	cmd.Flags().StringVar(&opts.httpToken, "http-token", "", "Bearer token required by the HTTP transports. Can also use RECLAIM_MCP_TOKEN env var.")
	cmd.Flags().BoolVar(&opts.yolo, "yolo", false, "Enable write operations (task and event mutations). Default is read-only mode.")
	cmd.Flags().BoolVar(&opts.metricsEnabled, "metrics-enabled", envBool("METRICS_ENABLED", true), "Enable instrumentation and the metrics server on a dedicated port (HTTP transports only). Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", envOr("METRICS_ADDR", server.DefaultMetricsAddr), "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(ctx context.Context, a *app, opts serveOptions) error {
	switch opts.transport {
	case transportStdio, server.TransportStreamableHTTP, server.TransportSSE:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http, sse)", opts.transport)
	}

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	api, err := a.newAPI()
	if err != nil {
		return err
	}

	serverContext, err := server.NewServerContext(ctx, api)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			a.logger.Warn("server context shutdown failed", logging.Err(err))
		}
	}()

	// readOnly is the inverse of yolo
	readOnly := !opts.yolo
	serverContext.SetReadOnly(readOnly)
	serverContext.SetLogger(logging.NewSlogAdapter(a.logger))
	if metrics := a.metrics(); metrics != nil {
		serverContext.SetMetrics(metrics)
		serverContext.SetAuditLogger(instrumentation.NewAuditLogger(a.logger))
	}

	mcpSrv := newMCPServer()
	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	if readOnly {
		a.logger.Info("starting server in READ-ONLY mode (use --yolo to enable write operations)")
	} else {
		a.logger.Info("starting server with WRITE operations enabled (--yolo flag is set)")
	}

	if opts.transport == transportStdio {
		return runStdioServer(mcpSrv)
	}
	return runHTTPServer(ctx, a, mcpSrv, serverContext, opts)
}

func newMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("reclaim", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// runHTTPServer serves the MCP endpoint and, when instrumentation is on,
// the metrics endpoint until ctx is cancelled or either server fails.
func runHTTPServer(ctx context.Context, a *app, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, opts serveOptions) error {
	health := server.NewHealthChecker(sc, version)
	httpServer, err := server.NewHTTPServer(mcpSrv, server.HTTPServerConfig{
		Transport:   opts.transport,
		BearerToken: opts.httpToken,
		Health:      health,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	var metricsServer *server.MetricsServer
	if metrics := a.metrics(); metrics != nil && a.provider.Gatherer() != nil {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.metricsAddr,
			InstrumentationProvider: a.provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	if metricsServer != nil {
		metricsReady := make(chan struct{})
		g.Go(func() error {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			return nil
		})

		select {
		case <-metricsReady:
			a.logger.Info("metrics server started", "addr", metricsServer.Addr())
		case <-gctx.Done():
			return g.Wait()
		case <-time.After(metricsStartupTimeout):
			shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()
			err := metricsServer.Shutdown(shutdownCtx)
			return errors.Join(fmt.Errorf("metrics server startup timed out"), err, g.Wait())
		}
	}

	httpReady := make(chan struct{})
	g.Go(func() error {
		if err := httpServer.Start(opts.httpAddr, httpReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-httpReady:
			fmt.Fprintf(a.errOut, "Starting reclaim MCP server with %s transport on %s\n", opts.transport, httpServer.Addr())
		case <-gctx.Done():
		}
		<-gctx.Done()

		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()

		var errs []error
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

// registerAllTools registers all MCP tools and resources
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Reclaim",
			register: func() error {
				return reclaim_tools.RegisterReclaimTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Task Resources",
			register: func() error {
				return resources.RegisterTaskResources(mcpSrv, ctx)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}
