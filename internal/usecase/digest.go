package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"StarlinkWatch/internal/archive"
	"StarlinkWatch/internal/domain"
	"StarlinkWatch/internal/filter"
	"StarlinkWatch/internal/ports"
)

// RunState is one step of a digest run.
type RunState string

const (
	StateIdle      RunState = "IDLE"
	StateFetching  RunState = "FETCHING"
	StateFiltering RunState = "FILTERING"
	StateDigesting RunState = "DIGESTING"
	StateMerging   RunState = "MERGING"
)

// DigestDeps wires the driven adapters used by the digest pipeline.
type DigestDeps struct {
	Gate      ports.EmissionGate
	Items     ports.ItemSource
	Filter    *filter.Filter
	Generator ports.DigestGenerator
	Events    ports.EventStore
	Merger    *archive.Merger
	Notifier  ports.Notifier
	Recorder  ports.RunRecorder
	Logger    *slog.Logger
}

// DigestOptions bounds the candidate window.
type DigestOptions struct {
	LookbackDays int
	MaxItems     int
	Location     *time.Location
}

// DigestResult summarizes one digest run.
type DigestResult struct {
	Skipped   bool
	Items     int
	EventPath string
	Digest    domain.Digest
	Added     map[domain.Domain][]domain.ArchiveLine
}

// AddedCount totals the lines appended across all archives.
func (r DigestResult) AddedCount() int {
	total := 0
	for _, lines := range r.Added {
		total += len(lines)
	}
	return total
}

// DigestPipeline gathers feed items, produces a digest and merges its archive
// sections into the per-domain archives.
type DigestPipeline struct {
	gate      ports.EmissionGate
	items     ports.ItemSource
	filter    *filter.Filter
	generator ports.DigestGenerator
	events    ports.EventStore
	merger    *archive.Merger
	notifier  ports.Notifier
	recorder  ports.RunRecorder
	logger    *slog.Logger
	opts      DigestOptions
	state     RunState
	now       func() time.Time
}

// NewDigestPipeline constructs the digest use case.
func NewDigestPipeline(deps DigestDeps, opts DigestOptions) *DigestPipeline {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	f := deps.Filter
	if f == nil {
		f = filter.Default()
	}
	return &DigestPipeline{
		gate:      deps.Gate,
		items:     deps.Items,
		filter:    f,
		generator: deps.Generator,
		events:    deps.Events,
		merger:    deps.Merger,
		notifier:  deps.Notifier,
		recorder:  deps.Recorder,
		logger:    deps.Logger,
		opts:      opts,
		state:     StateIdle,
		now:       time.Now,
	}
}

// State reports the step the pipeline is currently in.
func (p *DigestPipeline) State() RunState {
	return p.state
}

// Run executes one digest cycle. A failure before MERGING leaves every
// archive untouched.
func (p *DigestPipeline) Run(ctx context.Context) (DigestResult, error) {
	started := p.now()
	result, err := p.run(ctx, started)
	p.transition(StateIdle)

	run := domain.RunRecord{
		Kind:       domain.RunDigest,
		Status:     domain.StatusSucceeded,
		StartedAt:  started,
		FinishedAt: p.now(),
	}
	switch {
	case err != nil:
		run.Status = domain.StatusFailed
		run.Detail = err.Error()
	case result.Skipped:
		run.Status = domain.StatusSkipped
		run.Detail = "outside emission window or already emitted"
	default:
		run.Detail = fmt.Sprintf("%d items, %d archived", result.Items, result.AddedCount())
	}
	p.record(ctx, run, result.Added)

	return result, err
}

func (p *DigestPipeline) run(ctx context.Context, now time.Time) (DigestResult, error) {
	if p.gate != nil {
		due, err := p.gate.Due(ctx, now)
		if err != nil {
			return DigestResult{}, fmt.Errorf("emission gate: %w", err)
		}
		if !due {
			p.info("digest not due", "local_time", now.In(p.opts.Location).Format("2006-01-02 15:04 MST"))
			return DigestResult{Skipped: true}, nil
		}
	}

	p.transition(StateFetching)
	since := now.AddDate(0, 0, -p.opts.LookbackDays)
	var raw []domain.CandidateItem
	if p.items != nil {
		var err error
		raw, err = p.items.FetchSince(ctx, since)
		if err != nil {
			return DigestResult{}, fmt.Errorf("fetch items: %w", err)
		}
	}

	p.transition(StateFiltering)
	selected := p.selectItems(raw)
	p.info("items selected", "fetched", len(raw), "selected", len(selected))

	p.transition(StateDigesting)
	date := now.In(p.opts.Location).Format("2006-01-02")
	var markdown string
	if len(selected) == 0 {
		markdown = archive.NoChangeDigest(date)
	} else {
		if p.generator == nil {
			return DigestResult{}, fmt.Errorf("digest generator is not configured")
		}
		var err error
		markdown, err = p.generator.Generate(ctx, date, selected)
		if err != nil {
			return DigestResult{}, fmt.Errorf("generate digest: %w", err)
		}
		if strings.TrimSpace(markdown) == "" {
			return DigestResult{}, fmt.Errorf("generate digest: empty response")
		}
	}

	result := DigestResult{
		Items:  len(selected),
		Digest: archive.ParseDigest(markdown),
	}

	if p.events != nil {
		path, err := p.events.SaveDigest(ctx, now.In(p.opts.Location), markdown)
		if err != nil {
			return result, fmt.Errorf("save digest event: %w", err)
		}
		result.EventPath = path
		p.debug("digest event written", "path", path)
	}

	p.transition(StateMerging)
	if p.merger != nil {
		added, err := p.merger.MergeAll(ctx, markdown)
		result.Added = added
		if err != nil {
			return result, fmt.Errorf("merge archives: %w", err)
		}
	}
	p.info("archives merged", "added", result.AddedCount())

	if p.gate != nil {
		if err := p.gate.Commit(ctx, now); err != nil {
			p.warn("commit emission marker", "error", err)
		}
	}

	p.notify(ctx, date, result.Added)
	return result, nil
}

// selectItems keeps in-scope items, newest first, capped at MaxItems.
func (p *DigestPipeline) selectItems(items []domain.CandidateItem) []domain.CandidateItem {
	selected := p.filter.Select(items)
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].PublishedAt.After(selected[j].PublishedAt)
	})
	if p.opts.MaxItems > 0 && len(selected) > p.opts.MaxItems {
		selected = selected[:p.opts.MaxItems]
	}
	return selected
}

func (p *DigestPipeline) notify(ctx context.Context, date string, added map[domain.Domain][]domain.ArchiveLine) {
	if p.notifier == nil {
		return
	}
	message := buildArchiveMessage(date, added)
	if message == "" {
		return
	}
	if err := p.notifier.PublishDigest(ctx, message); err != nil {
		p.warn("notify archive update", "error", err)
	}
}

func buildArchiveMessage(date string, added map[domain.Domain][]domain.ArchiveLine) string {
	var b strings.Builder
	for _, d := range domain.Domains {
		lines := added[d]
		if len(lines) == 0 {
			continue
		}
		if b.Len() == 0 {
			fmt.Fprintf(&b, "%s\n", archive.DigestTitle(date))
		}
		fmt.Fprintf(&b, "\n%s\n", d)
		for _, l := range lines {
			fmt.Fprintf(&b, "%s\n", l.Text)
		}
	}
	return b.String()
}

func (p *DigestPipeline) record(ctx context.Context, run domain.RunRecord, added map[domain.Domain][]domain.ArchiveLine) {
	if p.recorder == nil {
		return
	}
	id, err := p.recorder.RecordRun(ctx, run)
	if err != nil {
		p.warn("record digest run", "error", err)
		return
	}
	for _, d := range domain.Domains {
		if err := p.recorder.RecordArchived(ctx, id, d, added[d]); err != nil {
			p.warn("record archived lines", "domain", d, "error", err)
		}
	}
}

func (p *DigestPipeline) transition(next RunState) {
	if p.state == next {
		return
	}
	p.info("digest state", "from", p.state, "to", next)
	p.state = next
}

func (p *DigestPipeline) info(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *DigestPipeline) debug(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *DigestPipeline) warn(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
