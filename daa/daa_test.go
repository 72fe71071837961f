// daa/daa_test.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package daa

import (
	"errors"
	"testing"

	"github.com/vpsim/vpsim/math"
	"github.com/vpsim/vpsim/wx"
)

var (
	testLat0 = math.Radians(37)
	testLon0 = math.Radians(-77)
)

// headOn returns an engine with the ownship flying north at 100 m/s and
// traffic dist meters ahead flying south at the same speed and altitude.
func headOn(t *testing.T, dist float64) *WellClearEngine {
	t.Helper()
	e := NewWellClearEngine(DefaultWellClearConfig())
	lat, lon := testLat0+dist/math.EarthRadiusMeters, testLon0
	e.SetOwnshipState("ownship", Position{Lat: testLat0, Lon: testLon0, Alt: 2000},
		Velocity{Trk: 0, GS: 100}, 0)
	e.AddTrafficState("intruder", Position{Lat: lat, Lon: lon, Alt: 2000},
		Velocity{Trk: math.Pi, GS: 100}, 0)
	return e
}

// tauModEntry is the time at which two aircraft closing head-on at
// closure m/s from range r0 first violate the tau-mod criterion.
func tauModEntry(r0, closure float64, th Thresholds) float64 {
	// r^2 - TTHR*closure*r - DMOD^2 = 0
	b := th.TTHR * closure
	r := (b + math.Sqrt(b*b+4*th.DMOD*th.DMOD)) / 2
	return (r0 - r) / closure
}

func TestRegionString(t *testing.T) {
	for _, r := range []Region{RegionNone, RegionFar, RegionMid, RegionNear, RegionRecovery} {
		back, err := ParseRegion(r.String())
		if err != nil || back != r {
			t.Errorf("%s: parsed back as %s, %v", r, back, err)
		}
	}
	if r, err := ParseRegion("2"); err != nil || r != RegionMid {
		t.Errorf("ParseRegion(\"2\") = %s, %v", r, err)
	}
	if _, err := ParseRegion("severe"); !errors.Is(err, ErrUnknownRegion) {
		t.Errorf("expected ErrUnknownRegion, got %v", err)
	}
	if !(RegionNone < RegionFar && RegionFar < RegionMid && RegionMid < RegionNear && RegionNear < RegionRecovery) {
		t.Errorf("regions are not ordered by severity")
	}
}

func TestHorizontalViolation(t *testing.T) {
	th := DefaultWellClearConfig().Thresholds

	// Stationary and inside DMOD: always in violation.
	if iv := horizontalViolation([2]float64{100, 0}, [2]float64{}, th); iv != alwaysInterval {
		t.Errorf("stationary inside: %+v", iv)
	}
	// Stationary outside: never.
	if iv := horizontalViolation([2]float64{5000, 0}, [2]float64{}, th); !iv.Empty() {
		t.Errorf("stationary outside: %+v", iv)
	}
	// Passing wide abeam.
	if iv := horizontalViolation([2]float64{-10000, 2000}, [2]float64{100, 0}, th); !iv.Empty() {
		t.Errorf("wide miss: %+v", iv)
	}

	// Head-on from 10 km at 200 m/s closure.
	iv := horizontalViolation([2]float64{0, -10000}, [2]float64{0, 200}, th)
	if iv.Empty() {
		t.Fatalf("head-on: no violation")
	}
	if d := iv.In - tauModEntry(10000, 200, th); math.Abs(d) > 1e-9 {
		t.Errorf("entry %f, expected %f", iv.In, tauModEntry(10000, 200, th))
	}
	if d := iv.Out - (10000+th.DMOD)/200; math.Abs(d) > 1e-9 {
		t.Errorf("exit %f, expected %f", iv.Out, (10000+th.DMOD)/200)
	}
}

func TestVerticalViolation(t *testing.T) {
	th := DefaultWellClearConfig().Thresholds
	if iv := verticalViolation(0, 0, th); iv != alwaysInterval {
		t.Errorf("co-altitude level: %+v", iv)
	}
	if iv := verticalViolation(1000, 0, th); !iv.Empty() {
		t.Errorf("separated level: %+v", iv)
	}
	iv := verticalViolation(-500, 10, th)
	if math.Abs(iv.In-(500-th.ZTHR)/10) > 1e-9 || math.Abs(iv.Out-(500+th.ZTHR)/10) > 1e-9 {
		t.Errorf("climbing through: %+v", iv)
	}
}

func TestWellClearRegions(t *testing.T) {
	th := DefaultWellClearConfig().Thresholds
	tests := []struct {
		name   string
		dist   float64
		region Region
	}{
		{name: "Far", dist: 20000, region: RegionFar},
		{name: "Mid", dist: 15000, region: RegionMid},
		{name: "Near", dist: 10000, region: RegionNear},
		{name: "Clear", dist: 60000, region: RegionNone},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			e := headOn(t, test.dist)
			if r := e.RegionOfHeading(0); r != test.region {
				t.Errorf("region of current heading %s, expected %s (t_in %.1f)", r, test.region,
					tauModEntry(test.dist, 200, th))
			}
			if r := e.RegionOfVerticalSpeed(0); r != test.region {
				t.Errorf("region of current vertical speed %s, expected %s", r, test.region)
			}
			// Turning 90 degrees away clears the conflict.
			if r := e.RegionOfHeading(math.Radians(90)); r != RegionNone {
				t.Errorf("region of east heading %s, expected NONE", r)
			}
		})
	}
}

func TestWellClearResolutions(t *testing.T) {
	e := headOn(t, 15000)

	right := e.HeadingResolution(true)
	left := e.HeadingResolution(false)
	if !math.IsFinite(right) || !math.IsFinite(left) {
		t.Fatalf("resolutions right %f left %f", right, left)
	}
	if !math.Clockwise(0, right) || math.Clockwise(0, left) {
		t.Errorf("right %f / left %f on the wrong sides", math.Degrees(right), math.Degrees(left))
	}
	for _, h := range []float64{right, left} {
		if r := e.RegionOfHeading(h); r >= RegionMid {
			t.Errorf("resolution %f is in region %s", math.Degrees(h), r)
		}
	}
	// The step just before the resolution is still in conflict.
	if r := e.RegionOfHeading(right - math.Radians(1)); r < RegionMid {
		t.Errorf("heading before right resolution is %s", r)
	}

	up, down := e.VerticalSpeedResolution(true), e.VerticalSpeedResolution(false)
	if !(up > 0) || !(down < 0) || !math.IsFinite(up) || !math.IsFinite(down) {
		t.Fatalf("vertical resolutions up %f down %f", up, down)
	}
	if math.MPSToFPM(up) > 3000+1e-6 || math.MPSToFPM(-down) > 3000+1e-6 {
		t.Errorf("vertical resolutions exceed the search limit: %f %f", up, down)
	}
	if r := e.RegionOfVerticalSpeed(up); r >= RegionMid {
		t.Errorf("up resolution in region %s", r)
	}
}

func TestWellClearNoConflictResolutions(t *testing.T) {
	e := headOn(t, 60000)
	for _, v := range []float64{e.HeadingResolution(true), e.HeadingResolution(false),
		e.VerticalSpeedResolution(true), e.VerticalSpeedResolution(false)} {
		if !math.IsNaN(v) {
			t.Errorf("expected NaN resolution without conflict, got %f", v)
		}
	}
}

func TestWellClearNoResolution(t *testing.T) {
	// Already inside DMOD at the same altitude: nothing clears it.
	e := headOn(t, 500)
	if r := e.RegionOfHeading(0); r != RegionNear {
		t.Errorf("region %s, expected NEAR", r)
	}
	if r := e.HeadingResolution(true); !math.IsInf(r, 1) {
		t.Errorf("right resolution %f, expected +Inf", r)
	}
	if r := e.HeadingResolution(false); !math.IsInf(r, -1) {
		t.Errorf("left resolution %f, expected -Inf", r)
	}
	if r := e.VerticalSpeedResolution(true); !math.IsInf(r, 1) {
		t.Errorf("up resolution %f, expected +Inf", r)
	}
}

func TestWellClearConflictData(t *testing.T) {
	e := headOn(t, 15000)
	th := e.Thresholds()

	cd := e.ViolationOfAlertThresholds(2)
	if !cd.Conflict {
		t.Fatalf("expected MID-level conflict")
	}
	if d := cd.TimeIn - tauModEntry(15000, 200, th); math.Abs(d) > 1e-6 {
		t.Errorf("time in %f, expected %f", cd.TimeIn, tauModEntry(15000, 200, th))
	}
	if math.Abs(cd.TCPA2D-75) > 1e-6 || math.Abs(e.TimeToCPA2D()-75) > 1e-6 {
		t.Errorf("tcpa %f / %f, expected 75", cd.TCPA2D, e.TimeToCPA2D())
	}
	if cd := e.ViolationOfAlertThresholds(3); cd.Conflict || !math.IsInf(cd.TimeIn, 1) {
		t.Errorf("unexpected NEAR-level conflict %+v", cd)
	}
	if cd := e.ViolationOfAlertThresholds(7); cd.Conflict {
		t.Errorf("conflict reported for nonexistent level")
	}
}

func TestWellClearAlertingTime(t *testing.T) {
	cfg := DefaultWellClearConfig()
	factory := NewWellClearEngineFactory(cfg)
	a, b := factory(), factory()

	a.SetAlertingTime(2, 120)
	if a.AlertingTime(2) != 120 {
		t.Errorf("alerting time %f after set", a.AlertingTime(2))
	}
	if b.AlertingTime(2) != 55 || cfg.Levels[1].AlertingTime != 55 {
		t.Errorf("alerting time change leaked to other engines or the config")
	}
	if !math.IsNaN(a.AlertingTime(0)) || !math.IsNaN(a.AlertingTime(4)) {
		t.Errorf("alerting time for invalid levels should be NaN")
	}

	// Extending MID's horizon promotes a FAR conflict to MID, and cached
	// answers must not survive the change.
	e := headOn(t, 20000)
	if r := e.RegionOfHeading(0); r != RegionFar {
		t.Fatalf("region %s, expected FAR", r)
	}
	e.SetAlertingTime(2, 70)
	if r := e.RegionOfHeading(0); r != RegionMid {
		t.Errorf("region %s after extending MID alerting time, expected MID", r)
	}
}

func TestWellClearWind(t *testing.T) {
	e := headOn(t, 15000)
	w := wx.MakeWind(90, 20)

	e.SetWindVelocity(w)
	own := e.Ownship()
	if own.Wind != w {
		t.Errorf("ownship wind %v, expected %v", own.Wind, w)
	}
	// Ground track stays north; the heading points into the wind.
	if own.Velocity.Trk != 0 {
		t.Errorf("ground track changed to %f", own.Velocity.Trk)
	}
	air := own.AirVelocity()
	if math.Clockwise(0, air.Trk) || air.GS <= 100 {
		t.Errorf("air velocity %+v; expected a left crab at more than 100 m/s", air)
	}
	if g := air.AddWind(w); math.TurnDelta(g.Trk, 0) > 1e-9 || math.Abs(g.GS-100) > 1e-9 {
		t.Errorf("air+wind gave %+v", g)
	}

	// Setting a state forgets the wind.
	e.SetOwnshipState("ownship", own.Position, own.Velocity, 1)
	if !e.Ownship().Wind.IsZero() {
		t.Errorf("wind survived SetOwnshipState")
	}
	e.SetWindVelocity(w)
	e.AddTrafficState("intruder", e.Traffic().Position, e.Traffic().Velocity, 1)
	if !e.Ownship().Wind.IsZero() {
		t.Errorf("wind survived AddTrafficState")
	}
}

func TestWellClearConfigValidate(t *testing.T) {
	if err := DefaultWellClearConfig().Validate(); err != nil {
		t.Errorf("default config: %v", err)
	}

	bad := DefaultWellClearConfig()
	bad.Levels[1].AlertingTime = 500
	if err := bad.Validate(); !errors.Is(err, ErrInvalidAlertLevel) {
		t.Errorf("alerting time beyond lookahead: %v", err)
	}

	bad = DefaultWellClearConfig()
	bad.Levels[0], bad.Levels[1] = bad.Levels[1], bad.Levels[0]
	if err := bad.Validate(); !errors.Is(err, ErrInvalidAlertLevel) {
		t.Errorf("unordered levels: %v", err)
	}

	bad = DefaultWellClearConfig()
	bad.Thresholds.DMOD = 0
	if err := bad.Validate(); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("zero DMOD: %v", err)
	}
}

func TestResolutionValid(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	tests := []struct {
		name     string
		res      Resolution
		expected [4]bool
	}{
		{name: "AllFinite", res: Resolution{Right: 1, Left: -1, Up: 500, Down: -500}, expected: [4]bool{true, true, true, true}},
		{name: "NaN", res: Resolution{Right: nan, Left: 2, Up: nan, Down: 0}, expected: [4]bool{false, true, false, true}},
		{name: "Inf", res: Resolution{Right: 0.5, Left: -inf, Up: inf, Down: math.Inf(-1)}, expected: [4]bool{true, false, false, false}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := test.res
			if got := [4]bool{r.RightValid(), r.LeftValid(), r.UpValid(), r.DownValid()}; got != test.expected {
				t.Errorf("got %v, expected %v", got, test.expected)
			}
		})
	}
}
