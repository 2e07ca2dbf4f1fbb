package domain

// DateLayout is the calendar-day layout used by series points.
const DateLayout = "2006-01-02"

// SeriesPoint is one daily value of a metric.
type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Series is ordered ascending by date with at most one point per date.
type Series []SeriesPoint
