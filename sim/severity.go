// sim/severity.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"github.com/vpsim/vpsim/daa"
	"github.com/vpsim/vpsim/math"
)

const (
	// Separations are only compared against the running minima when the
	// other axis is inside its gate.
	verticalGateFeet   = 450
	horizontalGateFeet = 5000

	minRange = 1e-10 // meters

	// Initial values of a SeverityRecord, meters.
	worstSentinel     = 100000
	separationCeiling = 100000
	verticalCeiling   = 1000
)

// SeveritySample is the severity of an encounter at one instant along
// with the horizontal range and vertical separation (meters).
type SeveritySample struct {
	Severity float64 `msgpack:"sev"`
	Range    float64 `msgpack:"range"`
	Vertical float64 `msgpack:"vert"`
}

// squircle combines two penetration terms in [0,1]; it is
// sqrt(a^2 + b^2 - a^2 b^2), factored so the result stays in [0,1].
func squircle(a, b float64) float64 {
	return math.Sqrt(1 - (1-math.Sqr(a))*(1-math.Sqr(b)))
}

// ScoreSeverity returns the loss-of-well-clear severity of the encounter
// between own and traffic, in [0,1] with 1 the most severe. It combines
// range penetration against the tau-modified horizontal threshold, the
// projected horizontal miss distance at tcpa (current range if tcpa is
// not positive) and vertical separation. Velocities are relative to the
// ground.
func ScoreSeverity(own, traffic daa.AircraftState, th daa.Thresholds, tcpa float64) SeveritySample {
	f := math.MakeLocalFrame(own.Position.Lat, own.Position.Lon)
	p := f.Project(traffic.Position.Lat, traffic.Position.Lon)
	s := [2]float64{-p[0], -p[1]}
	v := math.Sub2(math.XY(own.Velocity.Vector()), math.XY(traffic.Velocity.Vector()))

	rng := math.Length2(s)
	vert := math.Abs(own.Position.Alt - traffic.Position.Alt)

	r := max(rng, minRange)
	closure := math.Dot2(s, v) / r

	dmod, tau := th.DMOD, th.TTHR
	sMod := max(dmod, 0.5*math.Sqrt(closure*closure*tau*tau+4*dmod*dmod)-closure*tau)
	rangePen := min(r/sMod, 1)

	hmd := rng
	if tcpa > 0 {
		hmd = math.Length2(math.Add2(s, math.Scale2(v, tcpa)))
	}
	hmdPen := min(hmd/dmod, 1)

	vertPen := min(vert/th.ZTHR, 1)

	return SeveritySample{
		Severity: 1 - squircle(squircle(rangePen, hmdPen), vertPen),
		Range:    rng,
		Vertical: vert,
	}
}

// Separation is a horizontal/vertical separation pair in meters.
type Separation struct {
	Horizontal float64 `msgpack:"hor"`
	Vertical   float64 `msgpack:"vert"`
}

// SeverityRecord tracks the worst severity seen in a trial and the gated
// minimum separations.
type SeverityRecord struct {
	Worst         SeveritySample `msgpack:"worst"`
	MinHorizontal Separation     `msgpack:"min_hor"`
	MinVertical   Separation     `msgpack:"min_vert"`
}

func NewSeverityRecord() SeverityRecord {
	return SeverityRecord{
		Worst:         SeveritySample{Severity: 0, Range: worstSentinel, Vertical: worstSentinel},
		MinHorizontal: Separation{Horizontal: separationCeiling, Vertical: verticalCeiling},
		MinVertical:   Separation{Horizontal: separationCeiling, Vertical: verticalCeiling},
	}
}

// Update folds s into the record. The minimum horizontal separation only
// counts when the aircraft are within the vertical gate and vice versa. A
// NaN severity replaces the worst sample and stays there.
func (r *SeverityRecord) Update(s SeveritySample) {
	if s.Severity > r.Worst.Severity || (math.IsNaN(s.Severity) && !math.IsNaN(r.Worst.Severity)) {
		r.Worst = s
	}
	if s.Range < r.MinHorizontal.Horizontal && s.Vertical*math.ReportFeetPerMeter <= verticalGateFeet {
		r.MinHorizontal = Separation{Horizontal: s.Range, Vertical: s.Vertical}
	}
	if s.Vertical < r.MinVertical.Vertical && s.Range*math.ReportFeetPerMeter <= horizontalGateFeet {
		r.MinVertical = Separation{Horizontal: s.Range, Vertical: s.Vertical}
	}
}
