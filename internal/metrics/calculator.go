// Package metrics turns raw constellation counts into mass and alumina estimates.
package metrics

import (
	"math"
	"time"

	"StarlinkWatch/internal/config"
	"StarlinkWatch/internal/domain"
)

// WeightedAverageMass returns the mix-weighted mass of one satellite in kg.
// Negative weights count as zero; an all-zero mix yields 0 instead of NaN.
func WeightedAverageMass(masses, mix map[string]float64) float64 {
	total := 0.0
	for _, gen := range config.Generations {
		total += math.Max(0, mix[gen])
	}
	if total == 0 {
		total = 1
	}

	avg := 0.0
	for _, gen := range config.Generations {
		avg += math.Max(0, mix[gen]) / total * masses[gen]
	}
	return avg
}

// Estimate holds full-precision outputs before display rounding.
type Estimate struct {
	OnOrbitMassKg   float64
	ReenteredMassKg float64
	AluminaKg       float64
}

// EstimateMasses computes the three derived quantities.
func EstimateMasses(activeCount, decayedTotal int, a config.Assumptions) Estimate {
	onOrbit := float64(activeCount) * WeightedAverageMass(a.Masses, a.MixActive)
	reentered := float64(decayedTotal) * WeightedAverageMass(a.Masses, a.MixDecayed)
	return Estimate{
		OnOrbitMassKg:   onOrbit,
		ReenteredMassKg: reentered,
		AluminaKg:       reentered * a.Fraction() * a.Yield(),
	}
}

// Compute builds the snapshot written to metrics.json.
func Compute(activeCount, decayedTotal int, a config.Assumptions, src domain.Sources, now time.Time) domain.MetricsSnapshot {
	if activeCount < 0 {
		activeCount = 0
	}
	if decayedTotal < 0 {
		decayedTotal = 0
	}

	est := EstimateMasses(activeCount, decayedTotal, a)
	return domain.MetricsSnapshot{
		GeneratedAt:     now.UTC().Format(domain.GeneratedAtLayout),
		ActiveCount:     activeCount,
		DecayedTotal:    decayedTotal,
		OnOrbitMassKg:   Round1(est.OnOrbitMassKg),
		ReenteredMassKg: Round1(est.ReenteredMassKg),
		AluminaKg:       Round1(est.AluminaKg),
		Assumptions:     resolveAssumptions(a),
		Sources:         src,
	}
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func resolveAssumptions(a config.Assumptions) domain.Assumptions {
	return domain.Assumptions{
		Masses:           copyMap(a.Masses),
		MixActive:        copyMap(a.MixActive),
		MixDecayed:       copyMap(a.MixDecayed),
		AluminumFraction: a.Fraction(),
		AluminaYield:     a.Yield(),
		RetentionDays:    a.Retention(),
	}
}

func copyMap(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
