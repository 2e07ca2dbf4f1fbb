package domain

import "time"

// GeneratedAtLayout is the timestamp layout written to metrics.json.
const GeneratedAtLayout = "2006-01-02T15:04:05Z"

// Assumptions is the resolved copy of the config used for one snapshot.
type Assumptions struct {
	Masses           map[string]float64 `json:"masses"`
	MixActive        map[string]float64 `json:"mix_active"`
	MixDecayed       map[string]float64 `json:"mix_decayed"`
	AluminumFraction float64            `json:"aluminum_fraction"`
	AluminaYield     float64            `json:"alumina_yield"`
	RetentionDays    int                `json:"retention_days"`
}

// Sources records where the raw counts came from.
type Sources struct {
	GPCSV   string `json:"celestrak_gp_csv"`
	Decayed string `json:"celestrak_decayed"`
}

// MetricsSnapshot is the per-run output, overwritten every run.
type MetricsSnapshot struct {
	GeneratedAt     string      `json:"generated_at"`
	ActiveCount     int         `json:"active_count"`
	DecayedTotal    int         `json:"decayed_total"`
	OnOrbitMassKg   float64     `json:"on_orbit_mass_kg"`
	ReenteredMassKg float64     `json:"reentered_mass_kg"`
	AluminaKg       float64     `json:"alumina_kg"`
	Assumptions     Assumptions `json:"assumptions"`
	Sources         Sources     `json:"sources"`
}

// Timestamp parses GeneratedAt; zero time when malformed.
func (m MetricsSnapshot) Timestamp() time.Time {
	ts, err := time.Parse(GeneratedAtLayout, m.GeneratedAt)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// Series metric names, one file each.
const (
	MetricActiveCount     = "active_count"
	MetricOnOrbitMassKg   = "on_orbit_mass_kg"
	MetricReenteredMassKg = "reentered_mass_kg"
	MetricAluminaKg       = "alumina_kg"
)

// MetricNames lists every series the metrics pipeline maintains.
var MetricNames = []string{MetricActiveCount, MetricOnOrbitMassKg, MetricReenteredMassKg, MetricAluminaKg}

// SeriesValues maps each metric name to the snapshot scalar fed into its series.
func (m MetricsSnapshot) SeriesValues() map[string]float64 {
	return map[string]float64{
		MetricActiveCount:     float64(m.ActiveCount),
		MetricOnOrbitMassKg:   m.OnOrbitMassKg,
		MetricReenteredMassKg: m.ReenteredMassKg,
		MetricAluminaKg:       m.AluminaKg,
	}
}
