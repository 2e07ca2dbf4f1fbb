package usecase

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"StarlinkWatch/internal/archive"
	"StarlinkWatch/internal/domain"
	"StarlinkWatch/internal/infrastructure/filestore"
)

const generatedDigest = `## Starlink Daily Digest — 2025-06-02

### Environmental
- STARLINK-1234 re-entered over Ohio.

## Summary of Changes
| Domain | Updates Detected |
|-------|-------------------|
| Environmental | Yes |
| Cybersecurity | No |
| Astronomical  | No |

**Archive — Environmental**
- 2025-06-02 09:00 PT | STARLINK-1234 re-enters | SpaceNews | https://spacenews.example/a

**Archive — Cybersecurity**
No change

**Archive — Astronomical**
No change
`

var digestNow = time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC)

type digestFixture struct {
	store    *memStore
	gate     *fakeGate
	items    *fakeItems
	gen      *fakeGenerator
	notifier *fakeNotifier
	rec      *fakeRecorder
	pipeline *DigestPipeline
}

func newDigestFixture(items []domain.CandidateItem, maxItems int) *digestFixture {
	f := &digestFixture{
		store:    newMemStore(),
		gate:     &fakeGate{admit: true},
		items:    &fakeItems{items: items},
		gen:      &fakeGenerator{markdown: generatedDigest},
		notifier: &fakeNotifier{},
		rec:      newFakeRecorder(),
	}
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		loc = time.UTC
	}
	f.pipeline = NewDigestPipeline(DigestDeps{
		Gate:      f.gate,
		Items:     f.items,
		Generator: f.gen,
		Events:    f.store,
		Merger:    archive.NewMerger(f.store, nil),
		Notifier:  f.notifier,
		Recorder:  f.rec,
	}, DigestOptions{LookbackDays: 30, MaxItems: maxItems, Location: loc})
	f.pipeline.now = func() time.Time { return digestNow }
	return f
}

func candidate(title string, age time.Duration) domain.CandidateItem {
	return domain.CandidateItem{
		Source:      "SpaceNews",
		Title:       title,
		Link:        "https://spacenews.example/" + strings.ReplaceAll(strings.ToLower(title), " ", "-"),
		PublishedAt: digestNow.Add(-age),
	}
}

func TestDigestPipelineRun(t *testing.T) {
	t.Parallel()

	f := newDigestFixture([]domain.CandidateItem{
		candidate("Starlink debris tracked after reentry", 3*time.Hour),
		candidate("Starlink outage hits Europe", time.Hour),
		candidate("Blue Origin announces new rocket", time.Hour),
	}, 40)

	res, err := f.pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if !f.items.since.Equal(digestNow.AddDate(0, 0, -30)) {
		t.Fatalf("unexpected lookback: %s", f.items.since)
	}
	if len(f.gen.got) != 2 {
		t.Fatalf("expected 2 in-scope items, got %d", len(f.gen.got))
	}
	if f.gen.got[0].Title != "Starlink outage hits Europe" {
		t.Fatalf("items not sorted newest first: %+v", f.gen.got)
	}

	if res.Skipped || res.Items != 2 || res.AddedCount() != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if f.gate.commits != 1 {
		t.Fatalf("successful run should claim the bucket once, got %d", f.gate.commits)
	}
	if !res.Digest.Updates[domain.Environmental] {
		t.Fatal("expected parsed digest to flag Environmental updates")
	}
	if _, ok := f.store.events["2025-06-02_0900"]; !ok {
		t.Fatalf("event not written in local time: %v", f.store.events)
	}

	env := f.store.archives[domain.Environmental]
	if !strings.HasPrefix(env, "# Environmental — Archive\n") || !strings.Contains(env, "STARLINK-1234 re-enters") {
		t.Fatalf("unexpected archive: %q", env)
	}
	if _, ok := f.store.archives[domain.Cybersecurity]; ok {
		t.Fatal("archive without new lines must not be written")
	}

	if len(f.notifier.messages) != 1 || !strings.Contains(f.notifier.messages[0], "STARLINK-1234") {
		t.Fatalf("unexpected notifications: %v", f.notifier.messages)
	}
	if len(f.rec.runs) != 1 || f.rec.runs[0].Status != domain.StatusSucceeded {
		t.Fatalf("unexpected run records: %+v", f.rec.runs)
	}
	if len(f.rec.archived[domain.Environmental]) != 1 {
		t.Fatalf("archived lines not recorded: %+v", f.rec.archived)
	}
	if f.pipeline.State() != StateIdle {
		t.Fatalf("expected IDLE after run, got %s", f.pipeline.State())
	}
}

func TestDigestPipelineRepeatAddsNothing(t *testing.T) {
	t.Parallel()

	f := newDigestFixture([]domain.CandidateItem{candidate("Starlink outage hits Europe", time.Hour)}, 40)
	if _, err := f.pipeline.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	before := f.store.archives[domain.Environmental]

	res, err := f.pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.AddedCount() != 0 {
		t.Fatalf("expected no new lines, got %d", res.AddedCount())
	}
	if f.store.archives[domain.Environmental] != before {
		t.Fatal("archive changed on repeat merge")
	}
	if len(f.notifier.messages) != 1 {
		t.Fatalf("expected no second notification, got %d", len(f.notifier.messages))
	}
}

func TestDigestPipelineCapsItems(t *testing.T) {
	t.Parallel()

	var items []domain.CandidateItem
	for i := 0; i < 5; i++ {
		items = append(items, candidate("Starlink outage report", time.Duration(i)*time.Hour))
	}
	f := newDigestFixture(items, 3)
	if _, err := f.pipeline.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(f.gen.got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(f.gen.got))
	}
}

func TestDigestPipelineNoItemsUsesLocalDigest(t *testing.T) {
	t.Parallel()

	f := newDigestFixture([]domain.CandidateItem{candidate("Starlink expands to new country", time.Hour)}, 40)
	res, err := f.pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if f.gen.calls != 0 {
		t.Fatal("summarizer must not be called without items")
	}
	if res.Digest.Title != archive.DigestTitle("2025-06-02") {
		t.Fatalf("unexpected title: %q", res.Digest.Title)
	}
	if res.AddedCount() != 0 || len(f.store.archives) != 0 {
		t.Fatalf("no-change digest must not touch archives: %+v", f.store.archives)
	}
	if len(f.store.events) != 1 {
		t.Fatal("no-change digest should still be written as an event")
	}
}

func TestDigestPipelineSkippedByGate(t *testing.T) {
	t.Parallel()

	f := newDigestFixture([]domain.CandidateItem{candidate("Starlink outage hits Europe", time.Hour)}, 40)
	f.gate.admit = false

	res, err := f.pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !res.Skipped {
		t.Fatal("expected skipped result")
	}
	if f.gen.calls != 0 || f.store.writes != 0 {
		t.Fatal("skipped run must not generate or write")
	}
	if len(f.rec.runs) != 1 || f.rec.runs[0].Status != domain.StatusSkipped {
		t.Fatalf("skip not recorded: %+v", f.rec.runs)
	}
}

func TestDigestPipelineFailuresLeaveArchivesUntouched(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	cases := []struct {
		name  string
		setup func(*digestFixture)
	}{
		{"fetch", func(f *digestFixture) { f.items.err = boom }},
		{"generate", func(f *digestFixture) { f.gen.err = boom }},
		{"empty", func(f *digestFixture) { f.gen.markdown = "  \n" }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newDigestFixture([]domain.CandidateItem{candidate("Starlink outage hits Europe", time.Hour)}, 40)
			f.store.archives[domain.Environmental] = "# Environmental — Archive\n"
			tc.setup(f)

			if _, err := f.pipeline.Run(context.Background()); err == nil {
				t.Fatal("expected error")
			}
			if f.store.archives[domain.Environmental] != "# Environmental — Archive\n" {
				t.Fatal("archive modified by failed run")
			}
			if f.store.writes != 0 {
				t.Fatalf("expected no writes, got %d", f.store.writes)
			}
			if len(f.rec.runs) != 1 || f.rec.runs[0].Status != domain.StatusFailed {
				t.Fatalf("failure not recorded: %+v", f.rec.runs)
			}
			if f.pipeline.State() != StateIdle {
				t.Fatalf("expected IDLE after failure, got %s", f.pipeline.State())
			}
			if f.gate.commits != 0 {
				t.Fatal("failed run must not claim the emission bucket")
			}
		})
	}
}

func TestDigestPipelineRetriesBucketAfterFailure(t *testing.T) {
	t.Parallel()

	f := newDigestFixture([]domain.CandidateItem{candidate("Starlink outage hits Europe", time.Hour)}, 40)
	gate := filestore.NewGate(t.TempDir(), []int{digestNow.In(f.pipeline.opts.Location).Hour()}, f.pipeline.opts.Location, false)
	f.pipeline.gate = gate
	f.items.err = errors.New("feed down")

	if _, err := f.pipeline.Run(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
	if _, err := os.Stat(gate.MarkerPath(digestNow)); !os.IsNotExist(err) {
		t.Fatalf("failed run must not claim the bucket, stat err=%v", err)
	}

	f.items.err = nil
	res, err := f.pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("retry returned error: %v", err)
	}
	if res.Skipped {
		t.Fatal("retry in the same hour should be admitted")
	}
	if _, err := os.Stat(gate.MarkerPath(digestNow)); err != nil {
		t.Fatalf("successful run should claim the bucket: %v", err)
	}

	res, err = f.pipeline.Run(context.Background())
	if err != nil || !res.Skipped {
		t.Fatalf("third run in the bucket should skip, skipped=%v err=%v", res.Skipped, err)
	}
}

func TestDigestPipelineNotifierFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	f := newDigestFixture([]domain.CandidateItem{candidate("Starlink outage hits Europe", time.Hour)}, 40)
	f.notifier.err = errors.New("telegram down")
	if _, err := f.pipeline.Run(context.Background()); err != nil {
		t.Fatalf("notifier failure should be logged only, got %v", err)
	}
}

func TestBuildArchiveMessage(t *testing.T) {
	t.Parallel()

	if buildArchiveMessage("2025-06-02", nil) != "" {
		t.Fatal("expected empty message without additions")
	}
	msg := buildArchiveMessage("2025-06-02", map[domain.Domain][]domain.ArchiveLine{
		domain.Astronomical: {{Text: "- a | b | c | d"}},
	})
	want := "Starlink Daily Digest — 2025-06-02\n\nAstronomical\n- a | b | c | d\n"
	if msg != want {
		t.Fatalf("unexpected message:\n%q\nwant\n%q", msg, want)
	}
}
