// sim/state.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"log/slog"

	"github.com/vpsim/vpsim/daa"
	"github.com/vpsim/vpsim/math"
)

// Candidates at or above conflictRegion put the ownship in conflict for
// the stabilizer and for recovery.
const conflictRegion = daa.RegionMid

// isClear reports whether r is known and below conflictRegion.
func isClear(r daa.Region) bool {
	return r != daa.RegionUnknown && r < conflictRegion
}

// DelayClocks accumulate the time the ownship's heading and vertical speed
// have spent in conflict since the last restoration.
type DelayClocks struct {
	Heading       float64
	VerticalSpeed float64
}

func (c *DelayClocks) Advance(dt float64) {
	c.Heading += dt
	c.VerticalSpeed += dt
}

func (c *DelayClocks) Reset() {
	*c = DelayClocks{}
}

// Reached reports whether both clocks have reached delay.
func (c DelayClocks) Reached(delay float64) bool {
	return c.Heading >= delay && c.VerticalSpeed >= delay
}

// TrialState is all of the mutable state of a trial; it is created when
// the trial starts and discarded when it ends.
type TrialState struct {
	Time         float64
	Step         int
	Clocks       DelayClocks
	ConflictMode bool

	// Air-relative heading and vertical speed and the altitude of the
	// ownship at conflict onset (or at the first step).
	InitialHeading       float64
	InitialVerticalSpeed float64
	InitialAltitude      float64

	Severity        SeverityRecord
	StepsInConflict int
	ManeuverStart   float64
}

func NewTrialState(t float64) *TrialState {
	return &TrialState{
		Time:          t,
		Severity:      NewSeverityRecord(),
		ManeuverStart: math.NaN(),
	}
}

func (ts *TrialState) captureInitial(own daa.AircraftState) {
	air := own.AirVelocity()
	ts.InitialHeading = air.Trk
	ts.InitialVerticalSpeed = air.VS
	ts.InitialAltitude = own.Position.Alt
}

func (ts *TrialState) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("time", ts.Time),
		slog.Bool("conflict_mode", ts.ConflictMode),
		slog.Float64("hdg_clock", ts.Clocks.Heading),
		slog.Float64("vs_clock", ts.Clocks.VerticalSpeed),
		slog.Float64("initial_hdg", math.Degrees(ts.InitialHeading)),
		slog.Float64("initial_vs", math.MPSToFPM(ts.InitialVerticalSpeed)))
}
