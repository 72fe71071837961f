// sim/pilot.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"

	"github.com/vpsim/vpsim/daa"
	"github.com/vpsim/vpsim/math"
)

// PilotInput is what the pilot perceives at a step. Heading and
// VerticalSpeed are the ownship's current air-relative values.
type PilotInput struct {
	HeadingRegion       daa.Region
	VerticalSpeedRegion daa.Region
	Heading             float64
	VerticalSpeed       float64

	Clocks     DelayClocks
	Delay      float64
	Resolution daa.Resolution

	InitialHeading       float64
	InitialVerticalSpeed float64

	Dt float64
}

// Command is the pilot's output: the heading (radians, [0,2pi)) and
// vertical speed (m/s) to fly for the next step.
type Command struct {
	Heading       float64
	VerticalSpeed float64

	// Maneuvering is set when the avoidance maneuver was triggered this
	// step; Recovering* are set when the respective axis is returning to
	// the value flown at conflict onset.
	Maneuvering             bool
	RecoveringHeading       bool
	RecoveringVerticalSpeed bool
}

// Candidate selection strategies, called only when both candidates are
// valid.
var headingStrategies = [...]func(cur, right, left float64) float64{
	HeadingSmallestTurn: func(cur, right, left float64) float64 {
		if math.TurnDelta(cur, right) < math.TurnDelta(cur, left) {
			return right
		}
		return left
	},
	HeadingRight: func(cur, right, left float64) float64 { return right },
	HeadingLeft:  func(cur, right, left float64) float64 { return left },
}

var verticalStrategies = [...]func(cur, up, down float64) float64{
	VerticalSmallestAbsolute: func(cur, up, down float64) float64 {
		if math.Abs(up) < math.Abs(down) {
			return up
		}
		return down
	},
	VerticalSmallestChange: func(cur, up, down float64) float64 {
		if math.Abs(up-cur) < math.Abs(cur-down) {
			return up
		}
		return down
	},
	VerticalUp:   func(cur, up, down float64) float64 { return up },
	VerticalDown: func(cur, up, down float64) float64 { return down },
}

// choose returns the candidate to fly; va and vb report whether a and b
// are valid. A lone valid candidate is used whatever the policy; with none
// valid it returns cur and false.
func choose(cur, a, b float64, va, vb bool, policy func(cur, a, b float64) float64) (float64, bool) {
	switch {
	case va && vb:
		return policy(cur, a, b), true
	case va:
		return a, true
	case vb:
		return b, true
	default:
		return cur, false
	}
}

type Pilot struct {
	Params PilotParams
}

func NewPilot(p PilotParams) *Pilot {
	return &Pilot{Params: p}
}

// Triggered reports whether the pilot has perceived the conflict for long
// enough to start maneuvering.
func (p *Pilot) Triggered(in PilotInput) bool {
	lvl := p.Params.TriggerRegion
	return in.HeadingRegion.IsConflict(lvl) && in.VerticalSpeedRegion.IsConflict(lvl) && in.Clocks.Reached(in.Delay)
}

func (p *Pilot) turn(cur, target, dt float64) float64 {
	return math.TurnToward(cur, target, p.Params.TurnRate*dt)
}

func (p *Pilot) clampVerticalSpeed(vs float64) float64 {
	return math.Clamp(vs, -p.Params.MaxDescentRate, p.Params.MaxClimbRate)
}

// Command returns the heading and vertical speed to fly. Recovery toward
// the initial heading and vertical speed is evaluated after maneuver
// selection and takes precedence on its axis. It panics with
// ErrNonFiniteCommand if the result is not finite.
func (p *Pilot) Command(eng daa.Engine, in PilotInput) Command {
	cmd := Command{
		Heading:       in.Heading,
		VerticalSpeed: in.VerticalSpeed,
	}

	if p.Triggered(in) {
		cmd.Maneuvering = true
		res := in.Resolution

		if p.Params.Axes.Horizontal() {
			hdg, _ := choose(in.Heading, res.Right, res.Left, res.RightValid(), res.LeftValid(),
				headingStrategies[p.Params.HeadingPolicy])
			cmd.Heading = p.turn(in.Heading, hdg, in.Dt)
		}
		if p.Params.Axes.Vertical() {
			if vs, ok := choose(in.VerticalSpeed, res.Up, res.Down, res.UpValid(), res.DownValid(),
				verticalStrategies[p.Params.VerticalPolicy]); ok {
				cmd.VerticalSpeed = p.clampVerticalSpeed(vs)
			}
		}
	}

	if isClear(eng.RegionOfHeading(in.InitialHeading)) {
		cmd.Heading = p.turn(in.Heading, in.InitialHeading, in.Dt)
		cmd.RecoveringHeading = true
	}
	if isClear(eng.RegionOfVerticalSpeed(in.InitialVerticalSpeed)) {
		cmd.VerticalSpeed = p.clampVerticalSpeed(in.InitialVerticalSpeed)
		cmd.RecoveringVerticalSpeed = true
	}

	cmd.Heading = math.NormalizeAngle(cmd.Heading)
	if !math.IsFinite(cmd.Heading) || !math.IsFinite(cmd.VerticalSpeed) {
		panic(fmt.Errorf("heading %v vertical speed %v: %w", cmd.Heading, cmd.VerticalSpeed,
			ErrNonFiniteCommand))
	}
	return cmd
}
