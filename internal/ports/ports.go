package ports

import (
	"context"
	"time"

	"StarlinkWatch/internal/domain"
)

// ActiveSource counts currently active constellation objects.
type ActiveSource interface {
	ActiveCount(ctx context.Context) (int, error)
}

// DecayedSource lists identifiers of recently decayed objects.
type DecayedSource interface {
	DecayedIDs(ctx context.Context) ([]string, error)
}

// ItemSource pulls digest candidates published since the given time.
type ItemSource interface {
	FetchSince(ctx context.Context, since time.Time) ([]domain.CandidateItem, error)
}

// DigestGenerator turns filtered items into a digest document. Opaque
// third-party summarization lives behind it.
type DigestGenerator interface {
	Generate(ctx context.Context, date string, items []domain.CandidateItem) (string, error)
}

// DecaySetStore persists the accumulated decay set.
type DecaySetStore interface {
	LoadDecaySet(ctx context.Context) ([]string, error)
	SaveDecaySet(ctx context.Context, ids []string) error
}

// SeriesStore persists one series per metric name.
type SeriesStore interface {
	LoadSeries(ctx context.Context, name string) (domain.Series, error)
	SaveSeries(ctx context.Context, name string, s domain.Series) error
}

// SnapshotStore persists the latest metrics snapshot.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context) (domain.MetricsSnapshot, error)
	SaveSnapshot(ctx context.Context, snap domain.MetricsSnapshot) error
}

// ArchiveStore persists one flat-text archive per domain. Loading a domain
// that was never written returns domain.ErrNotFound.
type ArchiveStore interface {
	LoadArchive(ctx context.Context, d domain.Domain) (string, error)
	SaveArchive(ctx context.Context, d domain.Domain, content string) error
}

// EventStore keeps each emitted digest document.
type EventStore interface {
	SaveDigest(ctx context.Context, at time.Time, markdown string) (string, error)
}

// EmissionGate admits at most one digest per time bucket. Due only checks;
// Commit claims the bucket once a run has succeeded.
type EmissionGate interface {
	Due(ctx context.Context, now time.Time) (bool, error)
	Commit(ctx context.Context, now time.Time) error
}

// RunRecorder keeps an audit trail of pipeline runs.
type RunRecorder interface {
	RecordRun(ctx context.Context, run domain.RunRecord) (int64, error)
	RecordSnapshot(ctx context.Context, runID int64, snap domain.MetricsSnapshot) error
	RecordArchived(ctx context.Context, runID int64, d domain.Domain, lines []domain.ArchiveLine) error
}

// Notifier streams newly archived incidents to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// RunHistory lists recorded runs, newest first.
type RunHistory interface {
	ListRuns(ctx context.Context, kind domain.RunKind, limit int) ([]domain.RunRecord, error)
}
