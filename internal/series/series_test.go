package series

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"StarlinkWatch/internal/domain"
)

var today = time.Date(2025, time.January, 1, 15, 0, 0, 0, time.UTC)

func daysAgo(n int) string {
	return today.AddDate(0, 0, -n).Format(domain.DateLayout)
}

func TestPushIntoEmptySeries(t *testing.T) {
	t.Parallel()

	got := Push(nil, domain.SeriesPoint{Date: "2025-01-01", Value: 5}, 30, today)
	want := domain.Series{{Date: "2025-01-01", Value: 5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("series mismatch (-want +got):\n%s", diff)
	}
}

func TestPushSameDayOverwrites(t *testing.T) {
	t.Parallel()

	s := Push(nil, domain.SeriesPoint{Date: "2025-01-01", Value: 5}, 30, today)
	s = Push(s, domain.SeriesPoint{Date: "2025-01-01", Value: 9}, 30, today)

	want := domain.Series{{Date: "2025-01-01", Value: 9}}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("series mismatch (-want +got):\n%s", diff)
	}
}

func TestPushPrunesOutsideRetention(t *testing.T) {
	t.Parallel()

	existing := domain.Series{
		{Date: daysAgo(40), Value: 1},
		{Date: daysAgo(31), Value: 2},
		{Date: daysAgo(30), Value: 3},
		{Date: daysAgo(5), Value: 4},
	}
	got := Push(existing, domain.SeriesPoint{Date: Today(today), Value: 5}, 30, today)

	want := domain.Series{
		{Date: daysAgo(30), Value: 3},
		{Date: daysAgo(5), Value: 4},
		{Date: Today(today), Value: 5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("series mismatch (-want +got):\n%s", diff)
	}
}

func TestPushSortsAndDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	existing := domain.Series{
		{Date: daysAgo(1), Value: 2},
		{Date: daysAgo(3), Value: 1},
	}
	snapshot := append(domain.Series(nil), existing...)

	got := Push(existing, domain.SeriesPoint{Date: daysAgo(2), Value: 7}, 120, today)

	want := domain.Series{
		{Date: daysAgo(3), Value: 1},
		{Date: daysAgo(2), Value: 7},
		{Date: daysAgo(1), Value: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("series mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(snapshot, existing); diff != "" {
		t.Fatalf("input mutated (-before +after):\n%s", diff)
	}
}

func TestPushCollapsesDuplicateDates(t *testing.T) {
	t.Parallel()

	// Older writers appended every run; the first push cleans that up.
	existing := domain.Series{
		{Date: daysAgo(0), Value: 1},
		{Date: daysAgo(0), Value: 2},
		{Date: "not-a-date", Value: 3},
	}
	got := Push(existing, domain.SeriesPoint{Date: daysAgo(0), Value: 9}, 30, today)

	want := domain.Series{{Date: daysAgo(0), Value: 9}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("series mismatch (-want +got):\n%s", diff)
	}
}
