// math/heading_test.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"testing"
)

func TestNormalizeAngle(t *testing.T) {
	for _, a := range []float64{0, 1, -1, 2 * Pi, -2 * Pi, 7 * Pi, -13.5, 100} {
		n := NormalizeAngle(a)
		if n < 0 || n >= 2*Pi {
			t.Errorf("NormalizeAngle(%f) = %f; out of [0,2pi)", a, n)
		}
		if d := Abs(SinCos(n)[0] - SinCos(a)[0]); d > 1e-9 {
			t.Errorf("NormalizeAngle(%f) = %f; sin differs by %g", a, n, d)
		}
	}
}

func TestSignedTurn(t *testing.T) {
	turns := [][3]float64{{10, 90, 80}, {10, 350, -20}, {120, 10, -110}, {120, 270, 150}, {0, 180, 180}}
	for _, turn := range turns {
		result := Degrees(SignedTurn(Radians(turn[0]), Radians(turn[1])))
		if Abs(result-turn[2]) > 1e-9 {
			t.Errorf("SignedTurn(%f, %f) = %f; expected %f", turn[0], turn[1], result, turn[2])
		}
		if d := Degrees(TurnDelta(Radians(turn[0]), Radians(turn[1]))); Abs(d-Abs(turn[2])) > 1e-9 {
			t.Errorf("TurnDelta(%f, %f) = %f; expected %f", turn[0], turn[1], d, Abs(turn[2]))
		}
		if cw := Clockwise(Radians(turn[0]), Radians(turn[1])); cw != (turn[2] >= 0) {
			t.Errorf("Clockwise(%f, %f) = %v", turn[0], turn[1], cw)
		}
	}
}

func TestTurnToward(t *testing.T) {
	rate := Radians(3)
	tests := []struct {
		name        string
		cur, target float64
		expected    float64
	}{
		{name: "RightLimited", cur: 10, target: 90, expected: 13},
		{name: "LeftLimited", cur: 10, target: 300, expected: 7},
		{name: "AcrossNorth", cur: 359, target: 5, expected: 2},
		{name: "WithinRate", cur: 88, target: 90, expected: 90},
		{name: "AlreadyThere", cur: 45, target: 45, expected: 45},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Degrees(TurnToward(Radians(test.cur), Radians(test.target), rate))
			if TurnDelta(Radians(got), Radians(test.expected)) > 1e-9 {
				t.Errorf("TurnToward(%f, %f) = %f; expected %f", test.cur, test.target, got, test.expected)
			}
			if d := TurnDelta(Radians(test.cur), Radians(got)); d > rate+1e-12 {
				t.Errorf("turned %f degrees; limit is 3", Degrees(d))
			}
		})
	}
}

func TestTrackVector(t *testing.T) {
	for _, hdg := range []float64{0, 45, 90, 180, 270, 359} {
		v := TrackVector(Radians(hdg), 10)
		trk, l := VectorTrack(v)
		if TurnDelta(trk, Radians(hdg)) > 1e-9 || Abs(l-10) > 1e-9 {
			t.Errorf("round trip of %f gave track %f length %f", hdg, Degrees(trk), l)
		}
	}
	if v := TrackVector(Radians(90), 1); Abs(v[0]-1) > 1e-12 || Abs(v[1]) > 1e-12 {
		t.Errorf("east vector %v", v)
	}
}
