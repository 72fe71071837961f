// sim/stabilizer.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"github.com/vpsim/vpsim/daa"
	"github.com/vpsim/vpsim/math"
)

// Transition reports what a Stabilizer update did to the conflict mode.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionEntered
	TransitionRestored
)

func (t Transition) String() string {
	return [...]string{"none", "entered", "restored"}[t]
}

// Stabilizer keeps the engine's conflict bands from flickering while the
// pilot maneuvers by stretching the alerting time of one alert level out
// to the time of closest approach, and puts it back once both the current
// heading and the heading flown at conflict onset are clear.
type Stabilizer struct {
	Level     int
	Default   float64
	Lookahead float64
}

// NewStabilizer captures the level's alerting time as the default that
// is restored after each conflict.
func NewStabilizer(eng daa.Engine, level int) Stabilizer {
	return Stabilizer{
		Level:     level,
		Default:   eng.AlertingTime(level),
		Lookahead: eng.LookaheadTime(),
	}
}

// Update runs one step given the regions of the ownship's current heading
// and vertical speed and the current time to horizontal CPA.
func (s Stabilizer) Update(eng daa.Engine, ts *TrialState, hr, vr daa.Region, tcpa, dt float64) Transition {
	tr := TransitionNone

	if hr >= conflictRegion || vr >= conflictRegion {
		if !ts.ConflictMode {
			ts.captureInitial(eng.Ownship())
			tr = TransitionEntered
		}
		ts.ConflictMode = true
		if tcpa > s.Default {
			eng.SetAlertingTime(s.Level, max(s.Default, min(tcpa, s.Lookahead)))
		}
		ts.Clocks.Advance(dt)
	}

	// Never leave the alerting time beyond a CPA that has moved closer.
	if math.IsFinite(tcpa) && tcpa > 0 && eng.AlertingTime(s.Level) > tcpa {
		eng.SetAlertingTime(s.Level, max(s.Default, tcpa))
	}

	if isClear(hr) && isClear(eng.RegionOfHeading(ts.InitialHeading)) {
		if ts.ConflictMode {
			tr = TransitionRestored
		}
		ts.ConflictMode = false
		eng.SetAlertingTime(s.Level, s.Default)
		ts.Clocks.Reset()
	}

	return tr
}

// Extended reports whether the managed alerting time is currently beyond
// its default.
func (s Stabilizer) Extended(eng daa.Engine) bool {
	return eng.AlertingTime(s.Level) > s.Default
}
