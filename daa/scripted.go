// daa/scripted.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package daa

import (
	"github.com/vpsim/vpsim/math"
	"github.com/vpsim/vpsim/wx"
)

// ScriptedEngine is an Engine whose answers are set directly by the
// caller. It stores states and alerting times like a real engine but
// performs no detection, which makes it useful for exercising the
// simulator's decision logic in isolation.
type ScriptedEngine struct {
	Own, Intruder AircraftState
	Wind          wx.Wind

	// HeadingRegion and VerticalSpeedRegion, if set, classify candidates;
	// otherwise DefaultRegion is returned.
	HeadingRegion       func(trk float64) Region
	VerticalSpeedRegion func(vs float64) Region
	DefaultRegion       Region

	Resolution Resolution
	TCPA       float64
	Conflict   ConflictData

	AlertingTimes []float64
	Lookahead     float64
	Limits        Thresholds

	// Number of SetWindVelocity calls since the last state update.
	WindSets int
}

// NewScriptedEngine returns a ScriptedEngine with three alert levels, no
// conflicts and no resolutions.
func NewScriptedEngine() *ScriptedEngine {
	def := DefaultWellClearConfig()
	e := &ScriptedEngine{
		DefaultRegion: RegionNone,
		Resolution:    Resolution{Right: math.NaN(), Left: math.NaN(), Up: math.NaN(), Down: math.NaN()},
		Lookahead:     def.LookaheadTime,
		Limits:        def.Thresholds,
	}
	for _, l := range def.Levels {
		e.AlertingTimes = append(e.AlertingTimes, l.AlertingTime)
	}
	e.Conflict = ConflictData{TimeIn: math.Inf(1), TimeOut: math.Inf(-1), TCOA: -1}
	return e
}

func (e *ScriptedEngine) SetOwnshipState(id string, pos Position, vel Velocity, t float64) {
	e.Own = AircraftState{ID: id, Position: pos, Velocity: vel, Time: t}
	e.Wind = wx.Wind{}
	e.WindSets = 0
}

func (e *ScriptedEngine) AddTrafficState(id string, pos Position, vel Velocity, t float64) {
	e.Intruder = AircraftState{ID: id, Position: pos, Velocity: vel, Time: t}
	e.Wind = wx.Wind{}
	e.WindSets = 0
}

func (e *ScriptedEngine) Ownship() AircraftState {
	s := e.Own
	s.Wind = e.Wind
	return s
}

func (e *ScriptedEngine) Traffic() AircraftState {
	s := e.Intruder
	s.Wind = e.Wind
	return s
}

func (e *ScriptedEngine) RegionOfHeading(trk float64) Region {
	if e.HeadingRegion != nil {
		return e.HeadingRegion(trk)
	}
	return e.DefaultRegion
}

func (e *ScriptedEngine) RegionOfVerticalSpeed(vs float64) Region {
	if e.VerticalSpeedRegion != nil {
		return e.VerticalSpeedRegion(vs)
	}
	return e.DefaultRegion
}

func (e *ScriptedEngine) HeadingResolution(preferRight bool) float64 {
	if preferRight {
		return e.Resolution.Right
	}
	return e.Resolution.Left
}

func (e *ScriptedEngine) VerticalSpeedResolution(preferUp bool) float64 {
	if preferUp {
		return e.Resolution.Up
	}
	return e.Resolution.Down
}

func (e *ScriptedEngine) TimeToCPA2D() float64 { return e.TCPA }

func (e *ScriptedEngine) ViolationOfAlertThresholds(level int) ConflictData {
	cd := e.Conflict
	cd.TCPA2D = e.TCPA
	return cd
}

func (e *ScriptedEngine) AlertingTime(level int) float64 {
	if level < 1 || level > len(e.AlertingTimes) {
		return math.NaN()
	}
	return e.AlertingTimes[level-1]
}

func (e *ScriptedEngine) SetAlertingTime(level int, t float64) {
	if level >= 1 && level <= len(e.AlertingTimes) {
		e.AlertingTimes[level-1] = t
	}
}

func (e *ScriptedEngine) LookaheadTime() float64 { return e.Lookahead }

func (e *ScriptedEngine) SetWindVelocity(w wx.Wind) {
	e.Wind = w
	e.WindSets++
}

func (e *ScriptedEngine) Thresholds() Thresholds { return e.Limits }

func (e *ScriptedEngine) CurrentTime() float64 { return e.Own.Time }

var _ Engine = (*ScriptedEngine)(nil)
