package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Togather-Foundation/calendar/internal/calendar"
	"github.com/Togather-Foundation/calendar/internal/config"
	"github.com/Togather-Foundation/calendar/internal/metrics"
	"github.com/Togather-Foundation/calendar/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries global flag values and the dependencies built from them.
// Subcommands reach the client through it once PersistentPreRunE has run.
type app struct {
	configPath string
	apiURL     string
	logLevel   string
	logFormat  string
	format     string

	cfg      config.Config
	logger   zerolog.Logger
	client   *calendar.Client
	shutdown func(context.Context) error
}

// Execute builds the command tree and runs it. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := a.rootCommand().ExecuteContext(ctx)
	a.close(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// newRootCommand returns a fresh command tree with no shared state, for tests
// and for Execute.
func newRootCommand() *cobra.Command {
	return (&app{}).rootCommand()
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "calendar",
		Short: "Calendar client - manage events through the calendar REST API",
		Long: `Calendar client talks to the calendar events REST API.

Each subcommand issues one request and prints the result:
- list, range: list events, optionally bounded by dates
- get, create, update, delete: single event operations
- overlap: ask the server whether a time window collides with existing events

Times accept RFC 3339 ("2026-03-01T09:00:00Z") or natural language ("tomorrow 9am").`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	// Global flags available to all subcommands
	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file path (optional, uses env vars by default)")
	flags.StringVar(&a.apiURL, "api-url", "", "events API base URL (default: $CALENDAR_API_URL or "+config.DefaultAPIURL+")")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	flags.StringVar(&a.logFormat, "log-format", "", "log format (json, console) (default: console)")
	flags.StringVarP(&a.format, "format", "o", formatTable, "output format (table, json)")

	root.AddCommand(
		a.listCommand(),
		a.rangeCommand(),
		a.getCommand(),
		a.createCommand(),
		a.updateCommand(),
		a.deleteCommand(),
		a.overlapCommand(),
		versionCommand(),
	)
	return root
}

// setup loads configuration, applies flag overrides and builds the client.
func (a *app) setup(cmd *cobra.Command) error {
	if a.format != formatTable && a.format != formatJSON {
		return fmt.Errorf("unsupported format %q (must be %q or %q)", a.format, formatTable, formatJSON)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = config.NewLogger(cfg.Logging, cmd.ErrOrStderr())

	shutdown, err := telemetry.InitTracing(cmd.Context(), cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	a.shutdown = shutdown

	metrics.Init(Version, GitCommit, BuildDate)

	opts := []calendar.Option{
		calendar.WithLogger(a.logger),
		calendar.WithTimeout(cfg.API.Timeout),
		calendar.WithRateLimit(cfg.API.RateLimit),
		calendar.WithRoundTripper(metrics.Transport(calendar.Operation)),
		calendar.WithRoundTripper(telemetry.Transport(nil, calendar.Operation)),
	}
	if cfg.API.UserAgent != "" {
		opts = append(opts, calendar.WithUserAgent(cfg.API.UserAgent))
	}
	a.client = calendar.NewClient(cfg.API.BaseURL, opts...)

	a.logger.Debug().
		Str("base_url", a.client.BaseURL()).
		Str("environment", cfg.Environment).
		Bool("tracing", cfg.Tracing.Enabled).
		Msg("client configured")
	return nil
}

// close flushes spans and writes the metrics file. Failures are logged only;
// the command result has already been printed.
func (a *app) close(ctx context.Context) {
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil {
			a.logger.Warn().Err(err).Msg("tracing shutdown failed")
		}
	}
	if a.client != nil && a.cfg.Metrics.File != "" {
		if err := metrics.WriteFile(a.cfg.Metrics.File); err != nil {
			a.logger.Warn().Err(err).Msg("metrics export failed")
		}
	}
}
