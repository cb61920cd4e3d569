package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"horizon-scanner/archive"
	"horizon-scanner/config"
	"horizon-scanner/database"
	"horizon-scanner/livequery"
	"horizon-scanner/logging"
	"horizon-scanner/metrics"
	"horizon-scanner/orchestrator"
	"horizon-scanner/settings"
	"horizon-scanner/synth"
	"horizon-scanner/tracing"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds the wired components for one command invocation.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	archive  *archive.Archive
	settings *settings.Store
	client   *livequery.Client
	orch     *orchestrator.Orchestrator
	shutdown func(context.Context) error
}

func loadConfig(path string, verbose bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newApp wires every component. Spans go to traceOut. On error, whatever was
// already started is shut down again.
func newApp(cfg *config.Config, traceOut io.Writer) (_ *app, err error) {
	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, err
	}

	shutdown, err := tracing.Setup(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
	}, traceOut)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, shutdown: shutdown, registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			logger.Error("Startup failed", zap.Error(err))
			a.Close()
		}
	}()

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(a.registry)

	a.db, err = database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	a.archive = archive.New(a.db, logger, archive.WithFailureHook(a.metrics.ArchiveFailure))
	if err = a.archive.Migrate(); err != nil {
		return nil, err
	}

	pool, err := synth.LoadPool(cfg.Simulation.PoolPath)
	if err != nil {
		return nil, err
	}
	var synthOpts []synth.Option
	if cfg.Simulation.Seed != 0 {
		synthOpts = append(synthOpts, synth.WithSeed(cfg.Simulation.Seed))
	}
	synthesizer := synth.New(pool, cfg.Simulation.Target, synthOpts...)

	a.client = livequery.NewClient(livequery.Config{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.GetLLMTimeout(),
		Target:      cfg.Simulation.Target,
	}, logger)

	a.settings = settings.Load(cfg.Settings.Path,
		settings.WithFallbackCredential(cfg.LLM.APIKey),
		settings.WithLogger(logger))

	a.orch = orchestrator.New(orchestrator.Deps{
		Live:     a.client,
		Synth:    synthesizer,
		Archive:  a.archive,
		Settings: a.settings,
		Logger:   logger,
		Metrics:  a.metrics,
	})

	logger.Debug("Components ready",
		zap.String("database", cfg.Database.Path),
		zap.String("settings", cfg.Settings.Path),
		zap.Int("pool_size", len(pool)),
		zap.Bool("api_key_present", a.settings.Get().HasCredential()))
	return a, nil
}

func (a *app) Close() {
	if err := a.shutdown(context.Background()); err != nil {
		a.logger.Warn("Tracer shutdown failed", zap.Error(err))
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.logger.Warn("Database close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
