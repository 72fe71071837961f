// daa/detect.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package daa

import (
	"github.com/vpsim/vpsim/math"
)

// Straight-line projection of a well-clear violation using the tau-mod
// criterion. Relative position s and velocity v are ownship minus
// traffic in a local east/north/up frame, meters and meters/second.
//
// Horizontally, the aircraft are not well clear when the range is within
// DMOD, or when the horizontal miss distance is within DMOD and the
// modified tau (DMOD^2-r^2)/(s.v) is between 0 and TTHR. Vertically, they
// are not well clear when the altitude difference is within ZTHR.

// interval is a closed time interval; it is empty when In > Out.
type interval struct {
	In, Out float64
}

func (iv interval) Empty() bool {
	return iv.In > iv.Out
}

func (iv interval) Intersect(o interval) interval {
	return interval{In: max(iv.In, o.In), Out: min(iv.Out, o.Out)}
}

var (
	emptyInterval  = interval{In: math.Inf(1), Out: math.Inf(-1)}
	alwaysInterval = interval{In: math.Inf(-1), Out: math.Inf(1)}
)

// Relative speeds below this (m/s) are treated as no relative motion.
const minRelativeSpeed = 1e-6

func horizontalViolation(s, v [2]float64, th Thresholds) interval {
	D, T := th.DMOD, th.TTHR
	a := math.Dot2(v, v)
	ss := math.Dot2(s, s)
	sv := math.Dot2(s, v)

	if a < minRelativeSpeed*minRelativeSpeed {
		if ss <= D*D {
			return alwaysInterval
		}
		return emptyInterval
	}

	// Times when the range is exactly DMOD; if there are none, the
	// aircraft never come within DMOD and the miss distance filter rules
	// out a tau-mod violation as well.
	disc := sv*sv - a*(ss-D*D)
	if disc < 0 {
		return emptyInterval
	}
	r := math.Sqrt(disc)
	enter, exit := (-sv-r)/a, (-sv+r)/a

	// The tau-mod condition is a quadratic in t that holds on an interval
	// containing the DMOD entry time; its lower root is the earlier entry.
	b := 2*sv + T*a
	c := ss + T*sv - D*D
	if d := b*b - 4*a*c; d >= 0 {
		enter = min(enter, (-b-math.Sqrt(d))/(2*a))
	}
	return interval{In: enter, Out: exit}
}

func verticalViolation(sz, vz float64, th Thresholds) interval {
	Z := th.ZTHR
	if math.Abs(vz) < minRelativeSpeed {
		if math.Abs(sz) <= Z {
			return alwaysInterval
		}
		return emptyInterval
	}
	t1, t2 := (-Z-sz)/vz, (Z-sz)/vz
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	return interval{In: t1, Out: t2}
}

// violation returns the part of [0,lookahead] during which the aircraft
// are not well clear.
func violation(s, v [3]float64, th Thresholds, lookahead float64) interval {
	iv := horizontalViolation(math.XY(s), math.XY(v), th)
	if iv.Empty() {
		return emptyInterval
	}
	iv = iv.Intersect(verticalViolation(s[2], v[2], th))
	iv = iv.Intersect(interval{In: 0, Out: lookahead})
	if iv.Empty() {
		return emptyInterval
	}
	return iv
}

// timeToCPA2D returns the time of horizontal closest approach; zero if
// there is no relative motion.
func timeToCPA2D(s, v [2]float64) float64 {
	a := math.Dot2(v, v)
	if a < minRelativeSpeed*minRelativeSpeed {
		return 0
	}
	return -math.Dot2(s, v) / a
}

// timeToCoAltitude returns the time until the altitudes are equal, or -1
// if the aircraft are not converging vertically.
func timeToCoAltitude(sz, vz float64) float64 {
	if sz*vz >= 0 || math.Abs(vz) < minRelativeSpeed {
		if sz == 0 {
			return 0
		}
		return -1
	}
	return -sz / vz
}
