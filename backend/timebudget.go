package main

import "time"

type TimePressureLevel uint8

const (
	PressureNone TimePressureLevel = iota
	PressureLow
	PressureMedium
	PressureHigh
)

func (p TimePressureLevel) String() string {
	switch p {
	case PressureNone:
		return "none"
	case PressureLow:
		return "low"
	case PressureMedium:
		return "medium"
	default:
		return "high"
	}
}

// PressureLevel classifies time scarcity from the remaining-time fraction.
// Pure function; the thresholds come from configuration.
func PressureLevel(elapsed, total time.Duration, cfg Config) TimePressureLevel {
	if total <= 0 {
		return PressureNone
	}
	remaining := total - elapsed
	if remaining < 0 {
		remaining = 0
	}
	frac := float64(remaining) / float64(total)
	switch {
	case frac < cfg.PressureHighFraction:
		return PressureHigh
	case frac < cfg.PressureMediumFraction:
		return PressureMedium
	case frac < cfg.PressureLowFraction:
		return PressureLow
	default:
		return PressureNone
	}
}

// TimeBudget tracks one root search's clock. The pressure level is advisory
// and gates heuristics; Expired is the hard cutoff checked at move-loop
// granularity in the driver.
type TimeBudget struct {
	start time.Time
	total time.Duration
	cfg   Config
}

func NewTimeBudget(total time.Duration, cfg Config) *TimeBudget {
	return &TimeBudget{start: time.Now(), total: total, cfg: cfg}
}

func (tb *TimeBudget) Elapsed() time.Duration {
	return time.Since(tb.start)
}

// Pressure is computed once per node at driver entry and threaded through
// every pruning decision, so all heuristics at a node agree on the level.
func (tb *TimeBudget) Pressure() TimePressureLevel {
	if tb == nil || tb.total <= 0 {
		return PressureNone
	}
	return PressureLevel(tb.Elapsed(), tb.total, tb.cfg)
}

func (tb *TimeBudget) Expired() bool {
	if tb == nil || tb.total <= 0 {
		return false
	}
	return tb.Elapsed() >= tb.total
}
