package usecase

import (
	"context"
	"errors"
	"testing"
	"time"
)

type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (m *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	m.job = job
	return nil
}

func (m *manualDriver) Stop(context.Context) error {
	m.stopped = true
	return nil
}

func TestSchedulerTickRunsBothPipelines(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	rec := newFakeRecorder()
	metricsPipe := newTestMetrics(store, rec, fakeActive{count: 4}, fakeDecayed{}, digestNow)

	f := newDigestFixture(nil, 40)
	f.pipeline.recorder = rec

	driver := &manualDriver{}
	s := NewScheduler(driver, metricsPipe, f.pipeline, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if driver.job == nil {
		t.Fatal("job not registered")
	}

	driver.job(digestNow)
	if len(rec.runs) != 2 {
		t.Fatalf("expected metrics and digest runs, got %+v", rec.runs)
	}

	if err := s.Stop(context.Background()); err != nil || !driver.stopped {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestSchedulerTickSurvivesFailures(t *testing.T) {
	t.Parallel()

	rec := newFakeRecorder()
	metricsPipe := newTestMetrics(newMemStore(), rec, fakeActive{err: errors.New("down")}, fakeDecayed{}, digestNow)
	f := newDigestFixture(nil, 40)
	f.items.err = errors.New("feeds down")
	f.pipeline.recorder = rec

	s := NewScheduler(nil, metricsPipe, f.pipeline, nil)
	s.Tick(context.Background(), digestNow)

	if len(rec.runs) != 2 {
		t.Fatalf("both runs should be attempted, got %+v", rec.runs)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start without driver should be a no-op: %v", err)
	}
}
