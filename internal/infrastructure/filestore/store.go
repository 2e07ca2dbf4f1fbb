// Package filestore persists pipeline state as JSON and Markdown files.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"StarlinkWatch/internal/config"
	"StarlinkWatch/internal/domain"
	"StarlinkWatch/internal/ports"
)

const (
	metricsFile  = "metrics.json"
	seriesDir    = "series"
	decaySetFile = "decayed_starlinks.json"
	digestSuffix = " — Starlink Daily Digest.md"
)

var seriesNameExpr = regexp.MustCompile(`^[a-z0-9_]+$`)

// Store keeps every durable artifact under the configured directories.
type Store struct {
	paths config.PathsConfig
}

var (
	_ ports.DecaySetStore = (*Store)(nil)
	_ ports.SeriesStore   = (*Store)(nil)
	_ ports.SnapshotStore = (*Store)(nil)
	_ ports.ArchiveStore  = (*Store)(nil)
	_ ports.EventStore    = (*Store)(nil)
)

// New binds the store to the given paths.
func New(paths config.PathsConfig) *Store {
	return &Store{paths: paths}
}

// LoadDecaySet returns the persisted identifiers, empty on first run.
func (s *Store) LoadDecaySet(_ context.Context) ([]string, error) {
	var ids []string
	if err := readJSON(s.decaySetPath(), &ids); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("load decay set: %w", err)
	}
	return ids, nil
}

// SaveDecaySet overwrites the decay set; callers pass it already sorted.
func (s *Store) SaveDecaySet(_ context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal decay set: %w", err)
	}
	return writeFileAtomic(s.decaySetPath(), raw)
}

// LoadSeries returns the named series, empty on first run.
func (s *Store) LoadSeries(_ context.Context, name string) (domain.Series, error) {
	path, err := s.seriesPath(name)
	if err != nil {
		return nil, err
	}
	var series domain.Series
	if err := readJSON(path, &series); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Series{}, nil
		}
		return nil, fmt.Errorf("load series %s: %w", name, err)
	}
	return series, nil
}

// SaveSeries overwrites the named series file.
func (s *Store) SaveSeries(_ context.Context, name string, series domain.Series) error {
	path, err := s.seriesPath(name)
	if err != nil {
		return err
	}
	if series == nil {
		series = domain.Series{}
	}
	raw, err := json.MarshalIndent(series, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal series %s: %w", name, err)
	}
	return writeFileAtomic(path, raw)
}

// LoadSnapshot returns the last written metrics or domain.ErrNotFound.
func (s *Store) LoadSnapshot(_ context.Context) (domain.MetricsSnapshot, error) {
	var snap domain.MetricsSnapshot
	if err := readJSON(filepath.Join(s.paths.DataDir, metricsFile), &snap); err != nil {
		return domain.MetricsSnapshot{}, err
	}
	return snap, nil
}

// SaveSnapshot overwrites metrics.json.
func (s *Store) SaveSnapshot(_ context.Context, snap domain.MetricsSnapshot) error {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return writeFileAtomic(filepath.Join(s.paths.DataDir, metricsFile), raw)
}

// LoadArchive returns a domain archive or domain.ErrNotFound.
func (s *Store) LoadArchive(_ context.Context, d domain.Domain) (string, error) {
	raw, err := os.ReadFile(s.archivePath(d))
	if errors.Is(err, os.ErrNotExist) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read archive %s: %w", d, err)
	}
	return string(raw), nil
}

// SaveArchive replaces the whole archive file in one write.
func (s *Store) SaveArchive(_ context.Context, d domain.Domain, content string) error {
	return writeFileAtomic(s.archivePath(d), []byte(content))
}

// EnsureArchives creates heading-only archive files that do not exist yet.
func (s *Store) EnsureArchives(ctx context.Context) error {
	for _, d := range domain.Domains {
		if _, err := s.LoadArchive(ctx, d); errors.Is(err, domain.ErrNotFound) {
			if err := s.SaveArchive(ctx, d, d.ArchiveHeading()+"\n"); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}

// SaveDigest writes one digest document named after its emission time.
func (s *Store) SaveDigest(_ context.Context, at time.Time, markdown string) (string, error) {
	path := filepath.Join(s.paths.EventsDir, at.Format("2006-01-02_1504")+digestSuffix)
	if err := writeFileAtomic(path, []byte(markdown)); err != nil {
		return "", fmt.Errorf("write digest: %w", err)
	}
	return path, nil
}

func (s *Store) decaySetPath() string {
	return filepath.Join(s.paths.StateDir, decaySetFile)
}

func (s *Store) seriesPath(name string) (string, error) {
	if !seriesNameExpr.MatchString(name) {
		return "", fmt.Errorf("invalid series name %q", name)
	}
	return filepath.Join(s.paths.DataDir, seriesDir, name+".json"), nil
}

func (s *Store) archivePath(d domain.Domain) string {
	return filepath.Join(s.paths.ArchiveDir, string(d)+".md")
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
