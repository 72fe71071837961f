// math/heading.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// headings and directions
//
// Headings in degrees are used at the edges (input files, CLI, logs);
// everything inside the simulation works in radians, measured clockwise
// from true north.

// NormalizeAngle reduces an angle in radians to [0,2pi).
func NormalizeAngle(a float64) float64 {
	const twoPi = 2 * Pi
	a = Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	if a >= twoPi {
		a = 0
	}
	return a
}

// SignedTurn returns the signed angle in radians to turn from cur to
// target along the shorter path; positive is clockwise (right). The result
// is in (-pi,pi].
func SignedTurn(cur, target float64) float64 {
	d := NormalizeAngle(target - cur)
	if d > Pi {
		d -= 2 * Pi
	}
	return d
}

// TurnDelta returns the magnitude in radians of the shortest turn between
// the two directions; the result is in [0,pi].
func TurnDelta(from, to float64) float64 {
	return Abs(SignedTurn(from, to))
}

// Clockwise reports whether the shorter turn from "from" to "to" is to
// the right. Turns of exactly pi are taken to the right.
func Clockwise(from, to float64) bool {
	return SignedTurn(from, to) >= 0
}

// TurnToward advances cur toward target by at most maxTurn radians along
// the shorter path. When the remaining delta is within maxTurn the target
// is returned exactly.
func TurnToward(cur, target, maxTurn float64) float64 {
	if TurnDelta(cur, target) > maxTurn {
		if Clockwise(cur, target) {
			return NormalizeAngle(cur + maxTurn)
		}
		return NormalizeAngle(cur - maxTurn)
	}
	return NormalizeAngle(target)
}
