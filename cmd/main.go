package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/talentmatch/internal/adapters/http/api"
	"github.com/okian/talentmatch/internal/adapters/http/swagger"
	repository "github.com/okian/talentmatch/internal/adapters/repository"
	service "github.com/okian/talentmatch/internal/app"
	"github.com/okian/talentmatch/internal/config"
	"github.com/okian/talentmatch/internal/tracing"
	"github.com/okian/talentmatch/pkg/logger"
	"github.com/okian/talentmatch/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

const serviceName = "talentmatch"

// version is overridden at link time.
var version = "dev"

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Stderr.WriteString("talentmatch: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.Init(loggerOptions(cfg)...); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	tp, err := tracing.NewProvider(ctx, tracingConfig(cfg), tracing.WithLogger(log.Named("tracing")))
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error(ctx, "tracer shutdown failed", logger.Error(err))
		}
	}()

	repo, closeRepo, err := repository.Open(ctx, repository.Source{
		DatabaseURL: cfg.DatabaseURL,
		FixturePath: cfg.FixturePath,
		RedisAddr:   cfg.RedisAddr,
		CacheTTL:    cfg.CacheTTL(),
	}, log.Named("repository"))
	if err != nil {
		return err
	}
	defer func() {
		if err := closeRepo(); err != nil {
			log.Error(ctx, "repository close failed", logger.Error(err))
		}
	}()

	engine := service.New(repo, engineOptions(cfg, log)...)

	go startSystemMetricsUpdater(ctx)

	srv := newHTTPServer(ctx, cfg, engine, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("version", version),
			logger.Bool("postgres", cfg.DatabaseURL != ""),
			logger.Bool("cache", cfg.RedisAddr != ""))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

func loggerOptions(cfg *config.Config) []logger.Option {
	var opts []logger.Option
	if cfg.LogFormat == config.LogFormatJSON {
		opts = append(opts, logger.WithJSON())
	}
	if cfg.LogFile != "" {
		opts = append(opts, logger.WithFile(cfg.LogFile, 0, 0))
	}
	return opts
}

func tracingConfig(cfg *config.Config) tracing.Config {
	return tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Enabled:        cfg.TracingEnabled,
		Endpoint:       cfg.TracingEndpoint,
		SamplingRate:   cfg.TracingSamplingRate,
		Insecure:       cfg.TracingInsecure,
	}
}

func engineOptions(cfg *config.Config, log logger.Logger) []service.Option {
	opts := []service.Option{
		service.WithLogger(log.Named("engine")),
		service.WithSeed(cfg.RandomSeed),
		service.WithMinRegulatedAge(cfg.RegulatedMinAge),
	}
	if len(cfg.AdjustmentTiers) > 0 {
		opts = append(opts, service.WithAdjustmentTable(cfg.AdjustmentTiers))
	}
	return opts
}

func newHTTPServer(ctx context.Context, cfg *config.Config, engine *service.Engine, log logger.Logger) *http.Server {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(engine, engine,
		api.WithRequestTimeout(cfg.RequestTimeout()),
		api.WithLogger(log.Named("http")),
	).Register(ctx, mux)

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Wrap(serviceName, mux),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
