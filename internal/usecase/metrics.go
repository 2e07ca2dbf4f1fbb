package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"StarlinkWatch/internal/config"
	"StarlinkWatch/internal/domain"
	"StarlinkWatch/internal/metrics"
	"StarlinkWatch/internal/ports"
	"StarlinkWatch/internal/series"
)

// MetricsDeps wires the driven adapters used by the metrics pipeline.
type MetricsDeps struct {
	Active    ports.ActiveSource
	Decayed   ports.DecayedSource
	DecaySet  ports.DecaySetStore
	Series    ports.SeriesStore
	Snapshots ports.SnapshotStore
	Recorder  ports.RunRecorder
	Logger    *slog.Logger
}

// MetricsPipeline refreshes the snapshot, the decay set and the daily series.
type MetricsPipeline struct {
	active      ports.ActiveSource
	decayed     ports.DecayedSource
	decaySet    ports.DecaySetStore
	series      ports.SeriesStore
	snapshots   ports.SnapshotStore
	recorder    ports.RunRecorder
	logger      *slog.Logger
	assumptions config.Assumptions
	sources     domain.Sources
	now         func() time.Time
}

// NewMetricsPipeline constructs the metrics use case.
func NewMetricsPipeline(deps MetricsDeps, assumptions config.Assumptions, sources domain.Sources) *MetricsPipeline {
	return &MetricsPipeline{
		active:      deps.Active,
		decayed:     deps.Decayed,
		decaySet:    deps.DecaySet,
		series:      deps.Series,
		snapshots:   deps.Snapshots,
		recorder:    deps.Recorder,
		logger:      deps.Logger,
		assumptions: assumptions,
		sources:     sources,
		now:         time.Now,
	}
}

// Run fetches both sources, recomputes the metrics and persists them. Nothing
// is written unless every fetch and load succeeded.
func (p *MetricsPipeline) Run(ctx context.Context) (domain.MetricsSnapshot, error) {
	started := p.now()
	snap, err := p.run(ctx, started)

	run := domain.RunRecord{
		Kind:       domain.RunMetrics,
		Status:     domain.StatusSucceeded,
		StartedAt:  started,
		FinishedAt: p.now(),
	}
	if err != nil {
		run.Status = domain.StatusFailed
		run.Detail = err.Error()
	}
	p.record(ctx, run, snap, err == nil)

	return snap, err
}

func (p *MetricsPipeline) run(ctx context.Context, now time.Time) (domain.MetricsSnapshot, error) {
	if p.active == nil || p.decayed == nil {
		return domain.MetricsSnapshot{}, fmt.Errorf("metrics sources are not configured")
	}

	active, err := p.active.ActiveCount(ctx)
	if err != nil {
		return domain.MetricsSnapshot{}, fmt.Errorf("fetch active count: %w", err)
	}

	observed, err := p.decayed.DecayedIDs(ctx)
	if err != nil {
		return domain.MetricsSnapshot{}, fmt.Errorf("fetch decayed ids: %w", err)
	}

	known, err := p.decaySet.LoadDecaySet(ctx)
	if err != nil {
		return domain.MetricsSnapshot{}, fmt.Errorf("load decay set: %w", err)
	}
	merged := metrics.MergeDecayed(known, observed)

	histories := make(map[string]domain.Series, len(domain.MetricNames))
	for _, name := range domain.MetricNames {
		s, err := p.series.LoadSeries(ctx, name)
		if err != nil {
			return domain.MetricsSnapshot{}, fmt.Errorf("load series %s: %w", name, err)
		}
		histories[name] = s
	}

	snap := metrics.Compute(active, len(merged), p.assumptions, p.sources, now)
	p.info("metrics computed",
		"active", snap.ActiveCount,
		"decayed_observed", len(observed),
		"decayed_total", snap.DecayedTotal,
		"new_decayed", len(merged)-len(known),
	)

	// Series, then snapshot, then the decay set.
	today := series.Today(now)
	retention := p.assumptions.Retention()
	values := snap.SeriesValues()
	for _, name := range domain.MetricNames {
		updated := series.Push(histories[name], domain.SeriesPoint{Date: today, Value: values[name]}, retention, now)
		if err := p.series.SaveSeries(ctx, name, updated); err != nil {
			return snap, fmt.Errorf("save series %s: %w", name, err)
		}
		p.debug("series updated", "name", name, "points", len(updated))
	}

	if err := p.snapshots.SaveSnapshot(ctx, snap); err != nil {
		return snap, fmt.Errorf("save snapshot: %w", err)
	}
	if err := p.decaySet.SaveDecaySet(ctx, merged); err != nil {
		return snap, fmt.Errorf("save decay set: %w", err)
	}

	return snap, nil
}

func (p *MetricsPipeline) record(ctx context.Context, run domain.RunRecord, snap domain.MetricsSnapshot, ok bool) {
	if p.recorder == nil {
		return
	}
	id, err := p.recorder.RecordRun(ctx, run)
	if err != nil {
		p.warn("record metrics run", "error", err)
		return
	}
	if !ok {
		return
	}
	if err := p.recorder.RecordSnapshot(ctx, id, snap); err != nil {
		p.warn("record snapshot", "error", err)
	}
}

func (p *MetricsPipeline) info(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *MetricsPipeline) debug(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *MetricsPipeline) warn(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
