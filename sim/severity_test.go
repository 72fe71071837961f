// sim/severity_test.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"testing"

	"github.com/vpsim/vpsim/daa"
	"github.com/vpsim/vpsim/math"
	"github.com/vpsim/vpsim/rand"
)

func TestScoreSeverity(t *testing.T) {
	th := daa.DefaultWellClearConfig().Thresholds
	zthr := math.MetersToFeet(th.ZTHR)

	tests := []struct {
		name         string
		own, traffic daa.AircraftState
		tcpa         float64
		expected     float64
	}{
		{
			name:     "Collocated",
			own:      makeState("own", 37, -77, 4000, 0, 0, 0),
			traffic:  makeState("tfc", 37, -77, 4000, 0, 0, 0),
			expected: 1,
		},
		{
			name:     "FarApart",
			own:      makeState("own", 37, -77, 4000, 0, 0, 0),
			traffic:  makeState("tfc", 37.5, -77, 9000, 0, 0, 0),
			expected: 0,
		},
		{
			name:     "VerticalOnly",
			own:      makeState("own", 37, -77, 4000, 0, 0, 0),
			traffic:  makeState("tfc", 37, -77, 4000+zthr/2, 0, 0, 0),
			expected: 0.5,
		},
		{
			name:     "VerticallyClear",
			own:      makeState("own", 37, -77, 4000, 90, 100, 0),
			traffic:  makeState("tfc", 37, -77, 4000+zthr, 270, 100, 0),
			expected: 0,
		},
		{
			// Parallel tracks well outside DMOD.
			name:     "ParallelOffset",
			own:      makeState("own", 37, -77, 4000, 0, 100, 0),
			traffic:  makeState("tfc", 37, -77+0.1, 4000, 0, 100, 0),
			tcpa:     30,
			expected: 0,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := ScoreSeverity(test.own, test.traffic, th, test.tcpa)
			if math.Abs(s.Severity-test.expected) > 1e-6 {
				t.Errorf("got severity %f, expected %f", s.Severity, test.expected)
			}
			vert := math.Abs(test.own.Position.Alt - test.traffic.Position.Alt)
			if math.Abs(s.Vertical-vert) > 1e-9 {
				t.Errorf("got vertical %f, expected %f", s.Vertical, vert)
			}
		})
	}
}

func TestScoreSeverityHeadOn(t *testing.T) {
	th := daa.DefaultWellClearConfig().Thresholds
	own := makeState("own", 37, -77, 4000, 90, 120, 0)

	// Severity grows as a head-on intruder closes.
	last := -1.0
	for _, lon := range []float64{-76.8, -76.9, -76.95, -76.98, -76.995, -77} {
		traffic := makeState("tfc", 37, lon, 4000, 270, 120, 0)
		s := ScoreSeverity(own, traffic, th, 0)
		if s.Severity < last {
			t.Errorf("lon %f: severity %f decreased from %f", lon, s.Severity, last)
		}
		last = s.Severity
	}
	if last < 1-1e-6 {
		t.Errorf("expected collocated severity 1, got %f", last)
	}
}

func TestScoreSeverityBounds(t *testing.T) {
	th := daa.DefaultWellClearConfig().Thresholds
	r := rand.Make(42)

	for i := 0; i < 2000; i++ {
		own := makeState("own", 37, -77, 4000, 360*r.Float64(), 200*r.Float64(), r.Gaussian(0, 1500))
		traffic := makeState("tfc", r.Gaussian(37, 0.05), r.Gaussian(-77, 0.05), r.Gaussian(4000, 800),
			360*r.Float64(), 200*r.Float64(), r.Gaussian(0, 1500))
		tcpa := r.Gaussian(0, 60)

		s := ScoreSeverity(own, traffic, th, tcpa)
		if s.Severity < 0 || s.Severity > 1 || math.IsNaN(s.Severity) {
			t.Fatalf("draw %d: severity %f outside [0,1]: %v / %v tcpa %f", i, s.Severity, own, traffic, tcpa)
		}
	}
}

func TestSeverityRecord(t *testing.T) {
	rec := NewSeverityRecord()
	if rec.Worst.Severity != 0 || rec.MinHorizontal.Horizontal != 100000 || rec.MinVertical.Vertical != 1000 {
		t.Fatalf("unexpected initial record %+v", rec)
	}

	ft := func(v float64) float64 { return v / math.ReportFeetPerMeter }

	steps := []struct {
		sample         SeveritySample
		worst          float64
		minHor, minVer float64
	}{
		// Vertically outside the gate: horizontal minimum doesn't move.
		{sample: SeveritySample{Severity: 0.1, Range: ft(1000), Vertical: ft(500)}, worst: 0.1, minHor: 100000, minVer: ft(500)},
		{sample: SeveritySample{Severity: 0.3, Range: ft(800), Vertical: ft(400)}, worst: 0.3, minHor: ft(800), minVer: ft(400)},
		// Horizontally outside the gate: vertical minimum doesn't move.
		{sample: SeveritySample{Severity: 0.2, Range: ft(6000), Vertical: ft(100)}, worst: 0.3, minHor: ft(800), minVer: ft(400)},
		{sample: SeveritySample{Severity: 0.25, Range: ft(600), Vertical: ft(300)}, worst: 0.3, minHor: ft(600), minVer: ft(300)},
	}
	for i, s := range steps {
		rec.Update(s.sample)
		if rec.Worst.Severity != s.worst {
			t.Errorf("step %d: got worst %f, expected %f", i, rec.Worst.Severity, s.worst)
		}
		if rec.MinHorizontal.Horizontal != s.minHor {
			t.Errorf("step %d: got min horizontal %f, expected %f", i, rec.MinHorizontal.Horizontal, s.minHor)
		}
		if rec.MinVertical.Vertical != s.minVer {
			t.Errorf("step %d: got min vertical %f, expected %f", i, rec.MinVertical.Vertical, s.minVer)
		}
	}
	if rec.Worst.Range != ft(800) || rec.MinHorizontal.Vertical != ft(300) {
		t.Errorf("companion values not recorded: %+v", rec)
	}

	// A NaN severity replaces the worst sample and stays there.
	rec.Update(SeveritySample{Severity: math.NaN(), Range: 10, Vertical: 10})
	rec.Update(SeveritySample{Severity: 0.9, Range: 10, Vertical: 10})
	if !math.IsNaN(rec.Worst.Severity) {
		t.Errorf("expected NaN worst severity, got %f", rec.Worst.Severity)
	}
}
