// Package httpapi serves the persisted metrics and archives as read-only JSON.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"StarlinkWatch/internal/archive"
	"StarlinkWatch/internal/domain"
	"StarlinkWatch/internal/ports"
)

// Deps are the stores the API reads from. History may be nil.
type Deps struct {
	Snapshots ports.SnapshotStore
	Series    ports.SeriesStore
	Archives  ports.ArchiveStore
	DecaySet  ports.DecaySetStore
	History   ports.RunHistory
	Logger    *slog.Logger
}

// Server is the read-only HTTP API.
type Server struct {
	deps    Deps
	router  chi.Router
	version string
	started time.Time
}

// New creates a Server with its routes mounted.
func New(deps Deps, version string) *Server {
	s := &Server{deps: deps, version: version, started: time.Now()}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)
		r.Get("/series/{name}", s.handleSeries)
		r.Get("/archive/{domain}", s.handleArchive)
		r.Get("/decayed", s.handleDecayed)
		r.Get("/runs", s.handleRuns)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Snapshots.LoadSnapshot(r.Context())
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no metrics yet")
		return
	}
	if err != nil {
		s.fail(w, "load snapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !knownMetric(name) {
		writeError(w, http.StatusNotFound, "unknown series "+name)
		return
	}
	series, err := s.deps.Series.LoadSeries(r.Context(), name)
	if err != nil {
		s.fail(w, "load series", err)
		return
	}
	if series == nil {
		series = domain.Series{}
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	d, err := domain.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	content, err := s.deps.Archives.LoadArchive(r.Context(), d)
	if errors.Is(err, domain.ErrNotFound) {
		content = d.ArchiveHeading() + "\n"
	} else if err != nil {
		s.fail(w, "load archive", err)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(content))
		return
	}

	lines := archiveLines(content)
	writeJSON(w, http.StatusOK, map[string]any{
		"domain": d,
		"count":  len(lines),
		"lines":  lines,
	})
}

func (s *Server) handleDecayed(w http.ResponseWriter, r *http.Request) {
	ids, err := s.deps.DecaySet.LoadDecaySet(r.Context())
	if err != nil {
		s.fail(w, "load decay set", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(ids),
		"ids":   ids,
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeJSON(w, http.StatusOK, []domain.RunRecord{})
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	kind := domain.RunKind(r.URL.Query().Get("kind"))

	runs, err := s.deps.History.ListRuns(r.Context(), kind, limit)
	if err != nil {
		s.fail(w, "list runs", err)
		return
	}
	if runs == nil {
		runs = []domain.RunRecord{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) fail(w http.ResponseWriter, what string, err error) {
	if s.deps.Logger != nil {
		s.deps.Logger.Error("api request failed", "op", what, "error", err)
	}
	writeError(w, http.StatusInternalServerError, what+" failed")
}

func archiveLines(content string) []domain.ArchiveLine {
	lines := archive.ParseBullets(strings.Split(content, "\n"))
	if lines == nil {
		return []domain.ArchiveLine{}
	}
	return lines
}

func knownMetric(name string) bool {
	for _, m := range domain.MetricNames {
		if m == name {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
