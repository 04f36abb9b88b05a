package main

import (
	"testing"
	"time"
)

func TestPressureLevelThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		name    string
		elapsed time.Duration
		total   time.Duration
		want    TimePressureLevel
	}{
		{"fresh clock", 0, time.Second, PressureNone},
		{"most time left", 100 * time.Millisecond, time.Second, PressureNone},
		{"under a quarter left", 800 * time.Millisecond, time.Second, PressureLow},
		{"under fifteen percent left", 900 * time.Millisecond, time.Second, PressureMedium},
		{"under five percent left", 960 * time.Millisecond, time.Second, PressureHigh},
		{"48ms of 50ms spent", 48 * time.Millisecond, 50 * time.Millisecond, PressureHigh},
		{"overrun", 2 * time.Second, time.Second, PressureHigh},
		{"no budget", time.Second, 0, PressureNone},
	}
	for _, tc := range cases {
		if got := PressureLevel(tc.elapsed, tc.total, cfg); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestPressureGatesHeuristics(t *testing.T) {
	cfg := DefaultConfig()
	// Plenty of time: a fail-high static eval allows the null-move probe
	// and a missing table move allows preliminary deepening.
	if !allowNullMove(cfg, 6, false, false, 200, 100, PressureNone) {
		t.Fatalf("null move should be allowed without time pressure")
	}
	if !allowIID(cfg, cfg.IIDMinDepth, false, PressureLow) {
		t.Fatalf("iid should be allowed under low pressure")
	}
	// The null-move probe saves nodes, so medium pressure still runs it;
	// only the hard squeeze turns it off. The preliminary search spends
	// nodes and goes dark a level earlier.
	if !allowNullMove(cfg, 6, false, false, 200, 100, PressureMedium) {
		t.Errorf("null move should still run under medium pressure")
	}
	if allowNullMove(cfg, 6, false, false, 200, 100, PressureHigh) {
		t.Errorf("null move must be skipped under high pressure")
	}
	for _, p := range []TimePressureLevel{PressureMedium, PressureHigh} {
		if allowIID(cfg, cfg.IIDMinDepth, false, p) {
			t.Errorf("iid must be skipped under %v pressure", p)
		}
	}
}

func TestTimeBudgetExpiry(t *testing.T) {
	cfg := DefaultConfig()
	tb := NewTimeBudget(time.Hour, cfg)
	if tb.Expired() {
		t.Fatalf("fresh hour-long budget must not be expired")
	}
	if tb.Pressure() != PressureNone {
		t.Fatalf("fresh budget should report no pressure, got %v", tb.Pressure())
	}

	tight := NewTimeBudget(time.Nanosecond, cfg)
	time.Sleep(time.Millisecond)
	if !tight.Expired() {
		t.Fatalf("nanosecond budget should be expired")
	}

	unlimited := NewTimeBudget(0, cfg)
	if unlimited.Expired() || unlimited.Pressure() != PressureNone {
		t.Fatalf("zero budget means no deadline")
	}
}
