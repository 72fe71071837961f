// daa/engine.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package daa

import (
	"github.com/vpsim/vpsim/wx"
)

// Engine is the detect-and-avoid service the simulator drives. Alert
// levels are numbered from 1. An Engine holds mutable state and is not
// safe for concurrent use; each trial uses its own.
type Engine interface {
	// SetOwnshipState and AddTrafficState take ground velocities. Both
	// discard any wind previously set with SetWindVelocity, so callers
	// must re-apply wind after updating states.
	SetOwnshipState(id string, pos Position, vel Velocity, t float64)
	AddTrafficState(id string, pos Position, vel Velocity, t float64)

	Ownship() AircraftState
	Traffic() AircraftState

	// RegionOfHeading and RegionOfVerticalSpeed classify the ownship
	// flying the given air-relative heading (radians) or vertical speed
	// (meters/second) with its other velocity components unchanged.
	RegionOfHeading(trk float64) Region
	RegionOfVerticalSpeed(vs float64) Region

	// HeadingResolution returns the closest conflict-free heading in the
	// given direction, NaN if the current heading is not in conflict, or
	// +Inf (right) / -Inf (left) if there is none. VerticalSpeedResolution
	// is analogous.
	HeadingResolution(preferRight bool) float64
	VerticalSpeedResolution(preferUp bool) float64

	TimeToCPA2D() float64
	ViolationOfAlertThresholds(level int) ConflictData

	AlertingTime(level int) float64
	SetAlertingTime(level int, t float64)
	LookaheadTime() float64

	SetWindVelocity(w wx.Wind)

	Thresholds() Thresholds
	CurrentTime() float64
}

// EngineFactory returns a new engine for a trial.
type EngineFactory func() Engine
