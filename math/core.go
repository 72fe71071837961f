// math/core.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

// Degrees converts an angle expressed in radians to degrees.
func Degrees(r float64) float64 {
	return r * 180 / gomath.Pi
}

// Radians converts an angle expressed in degrees to radians.
func Radians(d float64) float64 {
	return d / 180 * gomath.Pi
}

// A handful of thin wrappers so that callers that import this package as
// "math" don't also need the standard library package under another name.

func Cos(a float64) float64       { return gomath.Cos(a) }
func Atan2(y, x float64) float64  { return gomath.Atan2(y, x) }
func Sqrt(a float64) float64      { return gomath.Sqrt(a) }
func Hypot(a, b float64) float64  { return gomath.Hypot(a, b) }
func Mod(a, b float64) float64    { return gomath.Mod(a, b) }
func Inf(sign int) float64        { return gomath.Inf(sign) }
func NaN() float64                { return gomath.NaN() }
func IsNaN(v float64) bool        { return gomath.IsNaN(v) }
func IsInf(v float64, s int) bool { return gomath.IsInf(v, s) }
func Floor(v float64) float64     { return gomath.Floor(v) }
func Ceil(v float64) float64      { return gomath.Ceil(v) }
func SinCos(a float64) [2]float64 { s, c := gomath.Sincos(a); return [2]float64{s, c} }

const Pi = gomath.Pi

// IsFinite reports whether v is neither NaN nor an infinity. Resolution
// values handed back by a conflict engine use NaN and +/-Inf to mean "no
// maneuver available", so this check must come before any comparison.
func IsFinite(v float64) bool {
	return !IsNaN(v) && !IsInf(v, 0)
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}
