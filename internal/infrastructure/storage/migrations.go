package storage

import "fmt"

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "runs table",
		SQL: `
			CREATE TABLE runs (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				kind        TEXT NOT NULL,
				status      TEXT NOT NULL,
				detail      TEXT NOT NULL DEFAULT '',
				started_at  INTEGER NOT NULL,
				finished_at INTEGER NOT NULL
			);
			CREATE INDEX idx_runs_kind ON runs(kind, started_at);
		`,
	},
	{
		Version:     2,
		Description: "metrics snapshots per run",
		SQL: `
			CREATE TABLE snapshots (
				run_id            INTEGER PRIMARY KEY REFERENCES runs(id) ON DELETE CASCADE,
				generated_at      TEXT NOT NULL,
				active_count      INTEGER NOT NULL,
				decayed_total     INTEGER NOT NULL,
				on_orbit_mass_kg  REAL NOT NULL,
				reentered_mass_kg REAL NOT NULL,
				alumina_kg        REAL NOT NULL
			);
		`,
	},
	{
		Version:     3,
		Description: "archived digest lines",
		SQL: `
			CREATE TABLE archived_lines (
				id       INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id   INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
				domain   TEXT NOT NULL,
				line     TEXT NOT NULL,
				date     TEXT NOT NULL,
				headline TEXT NOT NULL,
				source   TEXT NOT NULL,
				url      TEXT NOT NULL
			);
			CREATE INDEX idx_archived_run ON archived_lines(run_id);
		`,
	},
}

func (s *HistoryStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count); err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}
