package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"StarlinkWatch/internal/ports"
)

// Gate admits one digest emission per hour bucket, only during configured
// hours. A bucket is claimed by Commit after a successful run; a failed run
// leaves it open for a retry in the same hour.
type Gate struct {
	dir   string
	hours map[int]struct{}
	loc   *time.Location
	force bool
}

var _ ports.EmissionGate = (*Gate)(nil)

// NewGate builds a gate storing markers in dir. An empty hours list admits
// every hour.
func NewGate(dir string, hours []int, loc *time.Location, force bool) *Gate {
	if loc == nil {
		loc = time.UTC
	}
	set := make(map[int]struct{}, len(hours))
	for _, h := range hours {
		set[h] = struct{}{}
	}
	return &Gate{dir: dir, hours: set, loc: loc, force: force}
}

// Due reports whether now falls in an emission hour whose bucket has not
// been claimed yet.
func (g *Gate) Due(_ context.Context, now time.Time) (bool, error) {
	if g.force {
		return true, nil
	}

	if len(g.hours) > 0 {
		if _, ok := g.hours[now.In(g.loc).Hour()]; !ok {
			return false, nil
		}
	}

	_, err := os.Stat(g.MarkerPath(now))
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("check marker: %w", err)
	}
	return false, nil
}

// Commit claims the bucket containing now. Claiming an already claimed
// bucket is not an error.
func (g *Gate) Commit(_ context.Context, now time.Time) error {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	f, err := os.OpenFile(g.MarkerPath(now), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString("ok"); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	return nil
}

// MarkerPath names the marker for the bucket containing now.
func (g *Gate) MarkerPath(now time.Time) string {
	return filepath.Join(g.dir, "run_"+now.In(g.loc).Format("20060102_15")+".flag")
}
