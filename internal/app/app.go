package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"StarlinkWatch/internal/archive"
	"StarlinkWatch/internal/config"
	"StarlinkWatch/internal/domain"
	"StarlinkWatch/internal/filter"
	"StarlinkWatch/internal/httpapi"
	"StarlinkWatch/internal/infrastructure/celestrak"
	"StarlinkWatch/internal/infrastructure/filestore"
	"StarlinkWatch/internal/infrastructure/llm"
	"StarlinkWatch/internal/infrastructure/parser"
	"StarlinkWatch/internal/infrastructure/scheduler"
	"StarlinkWatch/internal/infrastructure/storage"
	"StarlinkWatch/internal/infrastructure/telegram"
	"StarlinkWatch/internal/logging"
	"StarlinkWatch/internal/ports"
	"StarlinkWatch/internal/scanner"
	"StarlinkWatch/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	store     *filestore.Store
	history   *storage.HistoryStore
	metrics   *usecase.MetricsPipeline
	digest    *usecase.DigestPipeline
	scheduler *usecase.Scheduler
}

// New builds the adapters and both pipelines. The history database is opened
// here; call Close when done.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store := filestore.New(cfg.Paths)

	history, err := storage.OpenHistory(cfg.Paths.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("open run history: %w", err)
	}

	sources := celestrak.NewClient(nil, cfg.Endpoints.StarlinkGPCSV, cfg.Endpoints.DecayedRecentHTML,
		baseLogger.With("component", "celestrak"))

	metricsPipeline := usecase.NewMetricsPipeline(usecase.MetricsDeps{
		Active:    sources,
		Decayed:   sources,
		DecaySet:  store,
		Series:    store,
		Snapshots: store,
		Recorder:  history,
		Logger:    baseLogger.With("component", "metrics"),
	}, cfg.Assumptions, domain.Sources{
		GPCSV:   cfg.Endpoints.StarlinkGPCSV,
		Decayed: cfg.Endpoints.DecayedRecentHTML,
	})

	registry := scanner.NewRegistry()
	registry.Register(parser.NewFeedScanner(nil, baseLogger.With("component", "scanner.rss")))
	items := parser.NewStrategySource(registry, cfg.Feeds, baseLogger.With("component", "source"))

	generator, err := llm.NewGenerator(cfg.Digest)
	if err != nil {
		// quiet days never call the generator
		baseLogger.Warn("digest generator unavailable", "error", err)
	}

	var notifier ports.Notifier
	tg := telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	if tg.Enabled() {
		notifier = tg
	}

	loc := cfg.Digest.Location()
	digestPipeline := usecase.NewDigestPipeline(usecase.DigestDeps{
		Gate:      filestore.NewGate(cfg.Paths.StateDir, cfg.Digest.EmissionHours, loc, cfg.ForceEmit),
		Items:     items,
		Filter:    filter.Default(),
		Generator: generator,
		Events:    store,
		Merger:    archive.NewMerger(store, baseLogger.With("component", "archive")),
		Notifier:  notifier,
		Recorder:  history,
		Logger:    baseLogger.With("component", "digest"),
	}, usecase.DigestOptions{
		LookbackDays: cfg.Digest.LookbackDays,
		MaxItems:     cfg.Digest.MaxItems,
		Location:     loc,
	})

	sched := usecase.NewScheduler(
		scheduler.NewTickerScheduler(cfg.Scheduler.Interval),
		metricsPipeline,
		digestPipeline,
		baseLogger.With("component", "scheduler"),
	)

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		store:     store,
		history:   history,
		metrics:   metricsPipeline,
		digest:    digestPipeline,
		scheduler: sched,
	}, nil
}

// RunMetrics performs one metrics refresh.
func (a *Application) RunMetrics(ctx context.Context) (domain.MetricsSnapshot, error) {
	return a.metrics.Run(ctx)
}

// RunDigest performs one gated digest cycle and makes sure every archive file exists.
func (a *Application) RunDigest(ctx context.Context) (usecase.DigestResult, error) {
	res, err := a.digest.Run(ctx)
	if err != nil || res.Skipped {
		return res, err
	}
	if err := a.store.EnsureArchives(ctx); err != nil {
		return res, fmt.Errorf("ensure archives: %w", err)
	}
	return res, nil
}

// Watch runs both pipelines on the configured interval until ctx is cancelled.
func (a *Application) Watch(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("watching", "interval", a.cfg.Scheduler.Interval.String())

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.scheduler.Stop(stopCtx)
}

// Handler exposes the read-only JSON API.
func (a *Application) Handler(version string) http.Handler {
	return httpapi.New(httpapi.Deps{
		Snapshots: a.store,
		Series:    a.store,
		Archives:  a.store,
		DecaySet:  a.store,
		History:   a.history,
		Logger:    a.logger.With("component", "api"),
	}, version)
}

// Serve listens on the configured address until ctx is cancelled.
func (a *Application) Serve(ctx context.Context, version string) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.Handler(version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("api listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve api: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// History lists recorded runs, newest first.
func (a *Application) History(ctx context.Context, kind domain.RunKind, limit int) ([]domain.RunRecord, error) {
	return a.history.ListRuns(ctx, kind, limit)
}

// Close releases the history database.
func (a *Application) Close() error {
	return a.history.Close()
}
