package cmd

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ordinex/ordinex/internal/config"
	"github.com/ordinex/ordinex/internal/log"
	"github.com/ordinex/ordinex/internal/metrics"
	"github.com/ordinex/ordinex/internal/pipeline"
	"github.com/ordinex/ordinex/internal/store"
	"github.com/ordinex/ordinex/internal/telemetry"
	"github.com/ordinex/ordinex/internal/ux"
	"github.com/ordinex/ordinex/internal/version"

	"github.com/prometheus/client_golang/prometheus"
)

// app is the state shared by every command of one invocation
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	format     string
	noColor    bool
	dbPath     string
	noSave     bool

	cfg      *config.Config
	logger   *log.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	store    *store.Store
	shutdown func(context.Context) error
}

// NewRootCmd builds the complete command tree
func NewRootCmd() *cobra.Command {
	root, _ := newRootCmd()
	return root
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "ordinex",
		Short: "Large-plan detector and mission breakdown generator",
		Long: `ordinex scores implementation plans for size and risk and splits plans
that are too large for one pass into an ordered set of missions.

Each mission carries the plan steps it covers, explicit scope, acceptance
criteria, a size estimate, a risk level and its dependencies. Breakdowns are
deterministic: the same plan always yields the same missions.

Breakdowns are saved to a local history (~/.ordinex/ordinex.db) unless
--no-save is given or store.enabled is false.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "config file (default is $HOME/.ordinex/config.yaml)")
	f.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&a.logFormat, "log-format", "", "log format: text or json")
	f.StringVarP(&a.format, "format", "o", ux.FormatText, "output format: text, json or yaml")
	f.BoolVar(&a.noColor, "no-color", false, "disable styled output")
	f.StringVar(&a.dbPath, "db", "", "breakdown history database (overrides store.path)")

	root.AddCommand(
		newDetectCmd(a),
		newBreakdownCmd(a),
		newShowCmd(a),
		newHistoryCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newDoctorCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)

	return root, a
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which main cancels on
// SIGINT/SIGTERM. The history store is closed and traces are flushed
// whether or not the command failed.
func ExecuteContext(ctx context.Context) error {
	root, a := newRootCmd()
	err := root.ExecuteContext(ctx)
	a.teardown(ctx)
	return err
}

// setup loads configuration and initializes logging, metrics and tracing
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if _, err := ux.NewFormatter(a.format, &ux.FormatterOptions{Writer: io.Discard}); err != nil {
		return err
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if a.dbPath != "" {
		cfg.Store.Path = a.dbPath
	}
	a.cfg = cfg

	logCfg, err := log.ConfigFromStrings(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	logCfg.Output = log.NewOutput(cmd.ErrOrStderr())
	a.logger = log.New(logCfg)
	log.SetGlobal(a.logger)

	a.registry, a.metrics = metrics.NewRegistry()

	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceVersion = version.Version
	tcfg.Enabled = cfg.Telemetry.Enabled
	tcfg.Endpoint = cfg.Telemetry.Endpoint
	tcfg.SampleRate = cfg.Telemetry.SampleRate
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a.shutdown, err = telemetry.InitProvider(ctx, tcfg)
	if err != nil {
		a.logger.Warn("tracing disabled", "error", err)
		a.shutdown = nil
	}

	return nil
}

func (a *app) teardown(ctx context.Context) {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close breakdown store", "error", err)
		}
		a.store = nil
	}
	if a.shutdown != nil {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := a.shutdown(flushCtx); err != nil {
			a.logger.Warn("flush traces", "error", err)
		}
		a.shutdown = nil
	}
}

// openStore opens the history database unless persistence is off
func (a *app) openStore() (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	if !a.cfg.Store.Enabled || a.noSave {
		return nil, nil
	}

	s, err := store.Open(a.cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	a.store = s
	a.logger.Debug("breakdown store opened", "path", a.cfg.Store.Path)
	return s, nil
}

// pipeline builds a pipeline backed by the history store when enabled
func (a *app) pipeline() (*pipeline.Pipeline, error) {
	opts := pipeline.Options{
		CacheSize: a.cfg.Server.CacheSize,
		Metrics:   a.metrics,
		Logger:    a.logger,
	}

	s, err := a.openStore()
	if err != nil {
		return nil, err
	}
	if s != nil {
		opts.Store = s
	}

	return pipeline.New(opts)
}

// output writes data in the selected format to the command's stdout
func (a *app) output(cmd *cobra.Command, data any) error {
	f, err := ux.NewFormatter(a.format, &ux.FormatterOptions{
		Writer:  cmd.OutOrStdout(),
		NoColor: a.noColor,
	})
	if err != nil {
		return err
	}
	return f.Format(data)
}

// run traces and times fn as the named command
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context) error) error {
	ctx, span := telemetry.StartCommandSpan(cmd.Context(), cmd.Name())
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	a.metrics.RecordCommand(cmd.Name(), err == nil, time.Since(start))

	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	telemetry.RecordSuccess(span)
	return nil
}
