package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const sampleYAML = `
masses: {v1: 260, v15: 306, v2m: 800}
mix_active: {v1: 0.2, v15: 0.3, v2m: 0.5}
mix_decayed: {v1: 0.7, v15: 0.3, v2m: 0}
aluminum_fraction_of_satellite: 0.5
retention_days: 30
endpoints:
  starlink_gp_csv: https://celestrak.example/gp.csv
  decayed_recent_html: https://celestrak.example/decayed.php
digest:
  timezone: UTC
  emission_hours: [6]
feeds:
  - name: SpaceNews
    url: https://spacenews.example/feed
scheduler:
  interval: 30m
`

func TestParseMergesOverDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if diff := cmp.Diff(map[string]float64{"v1": 260, "v15": 306, "v2m": 800}, cfg.Assumptions.Masses); diff != "" {
		t.Fatalf("masses mismatch (-want +got):\n%s", diff)
	}
	if cfg.Assumptions.Fraction() != 0.5 {
		t.Fatalf("expected fraction 0.5, got %v", cfg.Assumptions.Fraction())
	}
	if cfg.Assumptions.Yield() != defaultAluminaYield {
		t.Fatalf("expected default yield, got %v", cfg.Assumptions.Yield())
	}
	if cfg.Assumptions.Retention() != 30 {
		t.Fatalf("expected retention 30, got %d", cfg.Assumptions.Retention())
	}
	if cfg.Digest.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %v", cfg.Digest.Location())
	}
	if diff := cmp.Diff([]int{6}, cfg.Digest.EmissionHours); diff != "" {
		t.Fatalf("emission hours mismatch (-want +got):\n%s", diff)
	}
	if cfg.Digest.MaxItems != 40 || cfg.Digest.LookbackDays != 30 {
		t.Fatalf("expected digest defaults, got max=%d lookback=%d", cfg.Digest.MaxItems, cfg.Digest.LookbackDays)
	}
	if cfg.Scheduler.Interval != 30*time.Minute {
		t.Fatalf("expected 30m interval, got %v", cfg.Scheduler.Interval)
	}
	if cfg.Paths.StateDir != ".state" {
		t.Fatalf("expected default state dir, got %q", cfg.Paths.StateDir)
	}
	if len(cfg.Feeds) != 1 || cfg.Feeds[0].Name != "SpaceNews" {
		t.Fatalf("unexpected feeds: %+v", cfg.Feeds)
	}
}

func TestParseRejectsMissingKeys(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"no masses":       "mix_active: {}\nmix_decayed: {}\nendpoints: {starlink_gp_csv: a, decayed_recent_html: b}\n",
		"partial masses":  "masses: {v1: 1, v15: 2}\nmix_active: {}\nmix_decayed: {}\nendpoints: {starlink_gp_csv: a, decayed_recent_html: b}\n",
		"no mix decayed":  "masses: {v1: 1, v15: 2, v2m: 3}\nmix_active: {v1: 1}\nendpoints: {starlink_gp_csv: a, decayed_recent_html: b}\n",
		"no csv endpoint": "masses: {v1: 1, v15: 2, v2m: 3}\nmix_active: {v1: 1}\nmix_decayed: {v1: 1}\nendpoints: {decayed_recent_html: b}\n",
	}

	for name, doc := range cases {
		name, doc := name, doc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(doc))
			if !errors.Is(err, ErrMissingConfig) {
				t.Fatalf("expected ErrMissingConfig, got %v", err)
			}
		})
	}
}

func TestLoadReadsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "starlink_config.yml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Endpoints.StarlinkGPCSV != "https://celestrak.example/gp.csv" {
		t.Fatalf("unexpected endpoint: %s", cfg.Endpoints.StarlinkGPCSV)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResolvePathPrefersFlag(t *testing.T) {
	if got := ResolvePath("custom.yml"); got != "custom.yml" {
		t.Fatalf("expected flag value, got %s", got)
	}

	t.Setenv(configPathEnv, "from-env.yml")
	if got := ResolvePath(""); got != "from-env.yml" {
		t.Fatalf("expected env value, got %s", got)
	}
}

func TestBundledConfigLoads(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join("..", "..", defaultConfigPath))
	if err != nil {
		t.Fatalf("bundled config failed to load: %v", err)
	}
	if len(cfg.Feeds) == 0 {
		t.Fatal("bundled config should list feeds")
	}
	if cfg.Scheduler.Interval != time.Hour {
		t.Fatalf("unexpected interval: %v", cfg.Scheduler.Interval)
	}
}
