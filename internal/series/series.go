// Package series maintains daily metric histories with bounded retention.
package series

import (
	"sort"
	"time"

	"StarlinkWatch/internal/domain"
)

// Push inserts point into s, replacing any point already on the same date,
// then drops points dated before today minus retentionDays. The input slice is
// not modified; the result is sorted ascending.
func Push(s domain.Series, point domain.SeriesPoint, retentionDays int, now time.Time) domain.Series {
	out := make(domain.Series, 0, len(s)+1)
	replaced := false
	for _, p := range s {
		if p.Date == point.Date {
			if !replaced {
				out = append(out, point)
				replaced = true
			}
			continue
		}
		out = append(out, p)
	}
	if !replaced {
		out = append(out, point)
	}

	return Prune(out, retentionDays, now)
}

// Prune keeps points on or after the retention cutoff and sorts them.
// Points whose date does not parse are dropped.
func Prune(s domain.Series, retentionDays int, now time.Time) domain.Series {
	cutoff := Cutoff(now, retentionDays)

	kept := make(domain.Series, 0, len(s))
	for _, p := range s {
		day, err := time.Parse(domain.DateLayout, p.Date)
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			continue
		}
		kept = append(kept, p)
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Date < kept[j].Date })
	return kept
}

// Cutoff is the earliest calendar day kept for the given window.
func Cutoff(now time.Time, retentionDays int) time.Time {
	today := Day(now)
	return today.AddDate(0, 0, -retentionDays)
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today formats now as a series date.
func Today(now time.Time) string {
	return Day(now).Format(domain.DateLayout)
}
