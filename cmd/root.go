package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/reclaim/internal/instrumentation"
	"github.com/teemow/reclaim/internal/logging"
	"github.com/teemow/reclaim/internal/reclaim"
)

// Output formats accepted by --format.
const (
	formatHuman = "human"
	formatJSON  = "json"
)

// exitFailure is the process status for every reported error, usage
// errors included.
const exitFailure = 2

const rootExamples = `  reclaim list
  reclaim list --all --format json
  reclaim get 123
  reclaim patch 123 --set priority=P4 --set snoozeUntil=2026-02-25T17:00:00Z
  reclaim put 123 --set priority=P2 --set due=2026-02-28T17:00:00Z
  reclaim delete 123
  reclaim create --title "Plan Q1 roadmap" --priority P2 --event-category WORK
  RECLAIM_API_KEY=... reclaim list

Agent-friendly tip:
  Use --format json for stable machine-readable output and --json/--set for updates.`

// version will be set by main
var version = "dev"

// SetVersion sets the version reported by the CLI and sent in the user agent.
func SetVersion(v string) {
	version = v
}

// app holds the global options and the per-invocation state shared by all
// commands.
type app struct {
	out    io.Writer
	errOut io.Writer

	apiKey      string
	baseURL     string
	timeoutSecs uint64
	format      string
	debug       bool
	logFormat   string

	// envErr is an invalid environment default, reported once a command runs.
	envErr error

	logger   *slog.Logger
	provider *instrumentation.Provider
	span     trace.Span
	started  time.Time

	// newAPI builds the Reclaim client. Tests replace it with a fake.
	newAPI func() (reclaim.API, error)
}

func newApp(out, errOut io.Writer) *app {
	a := &app{
		out:    out,
		errOut: errOut,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	a.newAPI = a.newClient
	return a
}

// Execute is the main entry point for the CLI application
func Execute() {
	// A missing .env file is fine; real environment variables win.
	_ = godotenv.Load()

	a := newApp(os.Stdout, os.Stderr)
	rootCmd := newRootCmd(a)
	rootCmd.SetVersionTemplate(`{{printf "reclaim version %s\n" .Version}}`)

	if err := a.execute(context.Background(), rootCmd); err != nil {
		os.Exit(exitFailure)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reclaim",
		Short: "Simple CLI for Reclaim.ai tasks.",
		Long: `Simple CLI for Reclaim.ai tasks.

Set your API key with RECLAIM_API_KEY or pass --api-key.
Use --format json when another tool/agent will parse the output.

It can run as:
  - A command-line client for tasks and calendar events (default)
  - An interactive terminal dashboard
  - An MCP (Model Context Protocol) server for AI assistants`,
		Example:       rootExamples,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	timeoutDefault, err := envUint("RECLAIM_TIMEOUT_SECS", uint64(reclaim.DefaultTimeout/time.Second))
	if err != nil {
		a.envErr = err
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.apiKey, "api-key", os.Getenv("RECLAIM_API_KEY"), "Reclaim API key. Falls back to RECLAIM_API_KEY.")
	flags.StringVar(&a.baseURL, "base-url", envOr("RECLAIM_BASE_URL", reclaim.DefaultBaseURL), "Reclaim API base URL. Falls back to RECLAIM_BASE_URL.")
	flags.Uint64Var(&a.timeoutSecs, "timeout-secs", timeoutDefault, "HTTP timeout in seconds. Falls back to RECLAIM_TIMEOUT_SECS.")
	flags.StringVar(&a.format, "format", envOr("RECLAIM_FORMAT", formatHuman), "Output format: human or json.")
	flags.BoolVar(&a.debug, "debug", false, "Log API requests and diagnostics to stderr.")
	flags.StringVar(&a.logFormat, "log-format", logging.FormatText, "Log format: text or json.")

	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)
	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return reclaim.NewInvalidInputError(err.Error(), fmt.Sprintf("Run '%s --help' for usage.", c.CommandPath()))
	})

	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newGetCmd(a))
	rootCmd.AddCommand(newPutCmd(a))
	rootCmd.AddCommand(newPatchCmd(a))
	rootCmd.AddCommand(newDeleteCmd(a))
	rootCmd.AddCommand(newCreateCmd(a))
	rootCmd.AddCommand(newEventsCmd(a))
	rootCmd.AddCommand(newDashboardCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newGenerateManCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// execute runs rootCmd, records the command outcome and prints any error.
func (a *app) execute(ctx context.Context, rootCmd *cobra.Command) error {
	executed, err := rootCmd.ExecuteContextC(ctx)
	a.finish(executed, err)
	if err != nil {
		printError(a.errOut, err)
	}
	return err
}

// setup validates the global options and prepares logging and telemetry
// for the command about to run.
func (a *app) setup(cmd *cobra.Command) error {
	if a.envErr != nil {
		return a.envErr
	}

	a.format = strings.ToLower(strings.TrimSpace(a.format))
	if a.format != formatHuman && a.format != formatJSON {
		return reclaim.NewInvalidInputError(
			fmt.Sprintf("Invalid --format value '%s'.", a.format),
			"Use --format human or --format json.",
		)
	}

	logger, err := logging.New(a.errOut, logging.Options{Debug: a.debug, Format: a.logFormat})
	if err != nil {
		return reclaim.NewInvalidInputError(err.Error(), "Use --log-format text or --log-format json.")
	}
	a.logger = logging.WithCommand(logger, cmd.CommandPath())

	cfg := instrumentation.DefaultConfig()
	cfg.ServiceVersion = version
	// serve turns telemetry on with --metrics-enabled.
	if enabled, err := cmd.Flags().GetBool("metrics-enabled"); err == nil && enabled {
		cfg.Enabled = true
	}
	provider, err := instrumentation.NewProvider(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	a.provider = provider

	ctx, span := instrumentation.StartCommandSpan(cmd.Context(), instrumentation.CommandLabel(cmd.CommandPath()))
	cmd.SetContext(ctx)
	a.span = span
	a.started = time.Now()
	return nil
}

// finish closes the command span, records the command metric and flushes
// telemetry. It is safe to call when setup never ran.
func (a *app) finish(cmd *cobra.Command, err error) {
	if a.span == nil || cmd == nil {
		return
	}

	ctx := cmd.Context()
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(a.span, err)
		a.logger.Debug("command failed", logging.Err(err))
	} else {
		instrumentation.SetSpanSuccess(a.span)
	}

	a.metrics().RecordCommand(ctx, instrumentation.CommandLabel(cmd.CommandPath()), status, time.Since(a.started))
	a.span.End()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.provider.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("instrumentation shutdown failed", logging.Err(err))
	}
}

// metrics returns the command metrics recorder, or nil when telemetry is off.
func (a *app) metrics() *instrumentation.Metrics {
	if a.provider == nil || !a.provider.Enabled() {
		return nil
	}
	return a.provider.Metrics()
}

// newClient builds the HTTP client from the global options.
func (a *app) newClient() (reclaim.API, error) {
	a.logger.Debug("creating reclaim client", logging.APIKey(a.apiKey), "base_url", a.baseURL)
	return reclaim.NewClient(reclaim.Config{
		APIKey:    a.apiKey,
		BaseURL:   a.baseURL,
		Timeout:   time.Duration(a.timeoutSecs) * time.Second,
		UserAgent: "reclaim-cli/" + version,
		Logger:    logging.NewSlogAdapter(a.logger),
		Metrics:   a.metrics(),
	})
}

func (a *app) jsonOutput() bool {
	return a.format == formatJSON
}

// printError writes the error and its remediation hint the way every
// command reports failures.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if hint := reclaim.HintOf(err); hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
}
