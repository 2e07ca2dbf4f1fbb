package usecase

import (
	"context"
	"errors"
	"time"

	"StarlinkWatch/internal/domain"
)

type fakeActive struct {
	count int
	err   error
}

func (f fakeActive) ActiveCount(context.Context) (int, error) { return f.count, f.err }

type fakeDecayed struct {
	ids []string
	err error
}

func (f fakeDecayed) DecayedIDs(context.Context) ([]string, error) { return f.ids, f.err }

// memStore implements every file-backed port in memory.
type memStore struct {
	decaySet []string
	series   map[string]domain.Series
	snapshot *domain.MetricsSnapshot
	archives map[domain.Domain]string
	events   map[string]string
	writes   int
	order    []string
	failOn   string
}

func (m *memStore) write(what string) error {
	if what == m.failOn {
		return errors.New("write " + what + " failed")
	}
	m.writes++
	m.order = append(m.order, what)
	return nil
}

func newMemStore() *memStore {
	return &memStore{
		series:   map[string]domain.Series{},
		archives: map[domain.Domain]string{},
		events:   map[string]string{},
	}
}

func (m *memStore) LoadDecaySet(context.Context) ([]string, error) {
	return append([]string(nil), m.decaySet...), nil
}

func (m *memStore) SaveDecaySet(_ context.Context, ids []string) error {
	if err := m.write("decay_set"); err != nil {
		return err
	}
	m.decaySet = append([]string(nil), ids...)
	return nil
}

func (m *memStore) LoadSeries(_ context.Context, name string) (domain.Series, error) {
	return m.series[name], nil
}

func (m *memStore) SaveSeries(_ context.Context, name string, s domain.Series) error {
	if err := m.write("series"); err != nil {
		return err
	}
	m.series[name] = s
	return nil
}

func (m *memStore) LoadSnapshot(context.Context) (domain.MetricsSnapshot, error) {
	if m.snapshot == nil {
		return domain.MetricsSnapshot{}, domain.ErrNotFound
	}
	return *m.snapshot, nil
}

func (m *memStore) SaveSnapshot(_ context.Context, snap domain.MetricsSnapshot) error {
	if err := m.write("snapshot"); err != nil {
		return err
	}
	m.snapshot = &snap
	return nil
}

func (m *memStore) LoadArchive(_ context.Context, d domain.Domain) (string, error) {
	content, ok := m.archives[d]
	if !ok {
		return "", domain.ErrNotFound
	}
	return content, nil
}

func (m *memStore) SaveArchive(_ context.Context, d domain.Domain, content string) error {
	m.writes++
	m.archives[d] = content
	return nil
}

func (m *memStore) SaveDigest(_ context.Context, at time.Time, markdown string) (string, error) {
	m.writes++
	name := at.Format("2006-01-02_1504")
	m.events[name] = markdown
	return name, nil
}

type fakeRecorder struct {
	runs      []domain.RunRecord
	snapshots map[int64]domain.MetricsSnapshot
	archived  map[domain.Domain][]domain.ArchiveLine
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{
		snapshots: map[int64]domain.MetricsSnapshot{},
		archived:  map[domain.Domain][]domain.ArchiveLine{},
	}
}

func (f *fakeRecorder) RecordRun(_ context.Context, run domain.RunRecord) (int64, error) {
	f.runs = append(f.runs, run)
	return int64(len(f.runs)), nil
}

func (f *fakeRecorder) RecordSnapshot(_ context.Context, id int64, snap domain.MetricsSnapshot) error {
	f.snapshots[id] = snap
	return nil
}

func (f *fakeRecorder) RecordArchived(_ context.Context, _ int64, d domain.Domain, lines []domain.ArchiveLine) error {
	f.archived[d] = append(f.archived[d], lines...)
	return nil
}

type fakeGate struct {
	admit   bool
	calls   int
	commits int
}

func (f *fakeGate) Due(context.Context, time.Time) (bool, error) {
	f.calls++
	return f.admit, nil
}

func (f *fakeGate) Commit(context.Context, time.Time) error {
	f.commits++
	return nil
}

type fakeItems struct {
	items []domain.CandidateItem
	err   error
	since time.Time
}

func (f *fakeItems) FetchSince(_ context.Context, since time.Time) ([]domain.CandidateItem, error) {
	f.since = since
	return f.items, f.err
}

type fakeGenerator struct {
	markdown string
	err      error
	got      []domain.CandidateItem
	calls    int
}

func (f *fakeGenerator) Generate(_ context.Context, _ string, items []domain.CandidateItem) (string, error) {
	f.calls++
	f.got = items
	return f.markdown, f.err
}

type fakeNotifier struct {
	messages []string
	err      error
}

func (f *fakeNotifier) PublishDigest(_ context.Context, digest string) error {
	f.messages = append(f.messages, digest)
	return f.err
}
