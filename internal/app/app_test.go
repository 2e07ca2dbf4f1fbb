package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"StarlinkWatch/internal/config"
	"StarlinkWatch/internal/domain"
	"StarlinkWatch/internal/logging"
)

func testConfig(t *testing.T, celestrak *httptest.Server) config.Config {
	t.Helper()
	root := t.TempDir()
	return config.Config{
		Assumptions: config.Assumptions{
			Masses:     map[string]float64{"v1": 260, "v15": 306, "v2m": 800},
			MixActive:  map[string]float64{"v1": 0.2, "v15": 0.3, "v2m": 0.5},
			MixDecayed: map[string]float64{"v1": 0.7, "v15": 0.3, "v2m": 0},
		},
		Endpoints: config.EndpointsConfig{
			StarlinkGPCSV:     celestrak.URL + "/gp.csv",
			DecayedRecentHTML: celestrak.URL + "/decayed.html",
		},
		Paths: config.PathsConfig{
			DataDir:    filepath.Join(root, "data"),
			StateDir:   filepath.Join(root, ".state"),
			ArchiveDir: filepath.Join(root, "Archive"),
			EventsDir:  filepath.Join(root, "Events"),
			HistoryDB:  filepath.Join(root, ".state", "history.db"),
		},
		Digest: config.DigestConfig{
			EmissionHours: []int{9, 17},
			LookbackDays:  30,
			MaxItems:      40,
		},
		ForceEmit: true,
	}
}

func celestrakServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/gp.csv", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OBJECT_NAME,OBJECT_ID\nSTARLINK-1,a\nSTARLINK-2,b\nONEWEB-1,c\n"))
	})
	mux.HandleFunc("/decayed.html", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<table><tr><td>STARLINK-77</td></tr></table>"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestApplicationEndToEnd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := testConfig(t, celestrakServer(t))

	application, err := New(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer application.Close()

	snap, err := application.RunMetrics(ctx)
	if err != nil {
		t.Fatalf("RunMetrics returned error: %v", err)
	}
	if snap.ActiveCount != 2 || snap.DecayedTotal != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.DataDir, "series", "alumina_kg.json")); err != nil {
		t.Fatalf("series file missing: %v", err)
	}

	res, err := application.RunDigest(ctx)
	if err != nil {
		t.Fatalf("RunDigest returned error: %v", err)
	}
	if res.Skipped || res.Items != 0 {
		t.Fatalf("unexpected digest result: %+v", res)
	}
	for _, d := range domain.Domains {
		if _, err := os.Stat(filepath.Join(cfg.Paths.ArchiveDir, string(d)+".md")); err != nil {
			t.Fatalf("archive %s not created: %v", d, err)
		}
	}

	runs, err := application.History(ctx, "", 10)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(runs) != 2 || runs[0].Kind != domain.RunDigest || runs[1].ActiveCount != 2 {
		t.Fatalf("unexpected history: %+v", runs)
	}

	api := httptest.NewServer(application.Handler("test"))
	defer api.Close()
	resp, err := http.Get(api.URL + "/api/metrics")
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	var got domain.MetricsSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode metrics: %v", err)
	}
	if got.Sources.GPCSV != cfg.Endpoints.StarlinkGPCSV {
		t.Fatalf("sources not served: %+v", got.Sources)
	}
}

func TestApplicationWithoutAnthropicKeyStillRunsMetrics(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, celestrakServer(t))
	cfg.Digest.Provider = "anthropic"

	application, err := New(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer application.Close()

	if _, err := application.RunMetrics(context.Background()); err != nil {
		t.Fatalf("RunMetrics returned error: %v", err)
	}
}
