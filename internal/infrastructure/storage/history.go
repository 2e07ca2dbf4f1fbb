package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"StarlinkWatch/internal/domain"
	"StarlinkWatch/internal/ports"
)

// HistoryStore keeps the run audit trail in SQLite.
type HistoryStore struct {
	db *sql.DB
}

var _ ports.RunRecorder = (*HistoryStore)(nil)

// OpenHistory opens (or creates) the database at path and migrates it.
// The special path ":memory:" yields a private in-memory database.
func OpenHistory(path string) (*HistoryStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	store := &HistoryStore{db: db}
	for _, p := range []string{"PRAGMA foreign_keys=ON", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return store, nil
}

// Close releases the database handle.
func (s *HistoryStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun inserts one run and returns its id.
func (s *HistoryStore) RecordRun(ctx context.Context, run domain.RunRecord) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}

	query, args, err := sq.Insert("runs").
		Columns("kind", "status", "detail", "started_at", "finished_at").
		Values(string(run.Kind), string(run.Status), run.Detail, run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli()).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build run insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}
	return id, nil
}

// RecordSnapshot stores the scalar metrics produced by a run.
func (s *HistoryStore) RecordSnapshot(ctx context.Context, runID int64, snap domain.MetricsSnapshot) error {
	if s == nil || s.db == nil {
		return nil
	}

	query, args, err := sq.Insert("snapshots").
		Columns("run_id", "generated_at", "active_count", "decayed_total", "on_orbit_mass_kg", "reentered_mass_kg", "alumina_kg").
		Values(runID, snap.GeneratedAt, snap.ActiveCount, snap.DecayedTotal, snap.OnOrbitMassKg, snap.ReenteredMassKg, snap.AluminaKg).
		ToSql()
	if err != nil {
		return fmt.Errorf("build snapshot insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// RecordArchived stores the archive lines a digest run appended for one domain.
func (s *HistoryStore) RecordArchived(ctx context.Context, runID int64, d domain.Domain, lines []domain.ArchiveLine) error {
	if s == nil || s.db == nil || len(lines) == 0 {
		return nil
	}

	builder := sq.Insert("archived_lines").Columns("run_id", "domain", "line", "date", "headline", "source", "url")
	for _, l := range lines {
		builder = builder.Values(runID, string(d), l.Text, l.Date, l.Headline, l.Source, l.URL)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build archived insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert archived lines: %w", err)
	}
	return nil
}

// ListRuns returns the newest runs first, optionally restricted to one kind.
func (s *HistoryStore) ListRuns(ctx context.Context, kind domain.RunKind, limit int) ([]domain.RunRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	builder := sq.Select(
		"r.id", "r.kind", "r.status", "r.detail", "r.started_at", "r.finished_at",
		"COALESCE(s.active_count, 0)", "COALESCE(s.alumina_kg, 0)",
		"(SELECT COUNT(*) FROM archived_lines a WHERE a.run_id = r.id)",
	).
		From("runs r").
		LeftJoin("snapshots s ON s.run_id = r.id").
		OrderBy("r.id DESC").
		Limit(uint64(limit))
	if kind != "" {
		builder = builder.Where(sq.Eq{"r.kind": string(kind)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build runs query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []domain.RunRecord
	for rows.Next() {
		var (
			rec              domain.RunRecord
			kindStr, status  string
			started, finished int64
		)
		if err := rows.Scan(&rec.ID, &kindStr, &status, &rec.Detail, &started, &finished,
			&rec.ActiveCount, &rec.AluminaKg, &rec.Archived); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.Kind = domain.RunKind(kindStr)
		rec.Status = domain.RunStatus(status)
		rec.StartedAt = time.UnixMilli(started).UTC()
		rec.FinishedAt = time.UnixMilli(finished).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// ArchivedLines returns the lines a run appended, in insertion order.
func (s *HistoryStore) ArchivedLines(ctx context.Context, runID int64) (map[domain.Domain][]domain.ArchiveLine, error) {
	if s == nil || s.db == nil {
		return map[domain.Domain][]domain.ArchiveLine{}, nil
	}

	query, args, err := sq.Select("domain", "line", "date", "headline", "source", "url").
		From("archived_lines").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build archived query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query archived lines: %w", err)
	}
	defer rows.Close()

	out := map[domain.Domain][]domain.ArchiveLine{}
	for rows.Next() {
		var d string
		var l domain.ArchiveLine
		if err := rows.Scan(&d, &l.Text, &l.Date, &l.Headline, &l.Source, &l.URL); err != nil {
			return nil, fmt.Errorf("scan archived line: %w", err)
		}
		out[domain.Domain(d)] = append(out[domain.Domain(d)], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}
