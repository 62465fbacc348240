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

	"github.com/okian/fplpredict/internal/adapters/http/api"
	"github.com/okian/fplpredict/internal/adapters/http/site"
	"github.com/okian/fplpredict/internal/adapters/http/swagger"
	"github.com/okian/fplpredict/internal/adapters/upstream"
	app "github.com/okian/fplpredict/internal/app"
	"github.com/okian/fplpredict/internal/config"
	"github.com/okian/fplpredict/internal/domain/ranking"
	"github.com/okian/fplpredict/pkg/logger"
	"github.com/okian/fplpredict/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	metrics.Init(
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithRefreshInterval(cfg.MetricsRefresh()),
	)

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := newService(cfg, loggerInstance)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx, metrics.RefreshInterval())
	go startServiceMetricsUpdater(ctx, svc, metrics.RefreshInterval())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc, loggerInstance),
		ReadTimeout:       readTimeout,
		WriteTimeout:      cfg.FetchTimeout() + readTimeout, // POST /refresh waits for the upstream
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newService wires the upstream client and ranking engine from cfg.
func newService(cfg *config.Config, log logger.Logger) *app.Service {
	client := upstream.New(
		upstream.WithBaseURL(cfg.UpstreamBaseURL),
		upstream.WithUserAgent(cfg.UserAgent),
		upstream.WithTimeout(cfg.FetchTimeout()),
		upstream.WithBreaker(uint32(cfg.BreakerFailures), cfg.BreakerOpen()), //nolint:gosec // validated positive
		upstream.WithLogger(log.Named("upstream")),
	)
	engine := ranking.NewEngine(
		ranking.WithWeightsFromConfig(cfg.RecommendWeights),
		ranking.WithSurpriseWeightsFromConfig(cfg.SurpriseWeights),
		ranking.WithSurpriseCutoffs(cfg.SurpriseOwnershipCutoff, cfg.SurpriseFormCutoff),
		ranking.WithLogger(log.Named("ranking")),
	)
	return app.New(
		app.WithLogger(log),
		app.WithFetcher(client),
		app.WithEngine(engine),
		app.WithFetchTimeout(cfg.FetchTimeout()),
	)
}

// newHandler registers every route and applies CORS.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)
	site.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc,
		api.WithLimits(api.Limits{
			DefaultLimit:  cfg.DefaultLimit,
			MaxLimit:      cfg.MaxLimit,
			SurpriseLimit: cfg.SurpriseLimit,
			MaxRound:      cfg.MaxRound,
		}),
		api.WithLogger(log.Named("api")),
	)
	apiServer.Register(ctx, mux)

	return api.WithCORS(mux, cfg.CORSOrigins)
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
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

// startServiceMetricsUpdater keeps the snapshot gauges current.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
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

// updateServiceMetrics republishes the snapshot gauges from the service status.
func updateServiceMetrics(svc *app.Service) {
	st := svc.Status()
	if !st.Ready {
		return
	}
	metrics.UpdateSnapshot(st.Players, st.Fixtures, st.Teams, st.CurrentRound, st.FetchedAt)
}
