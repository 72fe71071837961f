// math/vecmat.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// 2D and 3D vectors

// Various useful functions for arithmetic with points/vectors. Names are
// brief in order to avoid clutter when they're used. Index 0 is east (x),
// 1 is north (y), and 2 is up (z).

// a+b
func Add2(a [2]float64, b [2]float64) [2]float64 {
	return [2]float64{a[0] + b[0], a[1] + b[1]}
}

// a-b
func Sub2(a [2]float64, b [2]float64) [2]float64 {
	return [2]float64{a[0] - b[0], a[1] - b[1]}
}

// a*s
func Scale2(a [2]float64, s float64) [2]float64 {
	return [2]float64{s * a[0], s * a[1]}
}

func Dot2(a, b [2]float64) float64 {
	return a[0]*b[0] + a[1]*b[1]
}

// Length of v
func Length2(v [2]float64) float64 {
	return Hypot(v[0], v[1])
}

func Add3(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func Sub3(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// XY returns the horizontal components of v.
func XY(v [3]float64) [2]float64 {
	return [2]float64{v[0], v[1]}
}

// TrackVector returns the horizontal vector of the given length pointing
// along the track trk (radians clockwise from north).
func TrackVector(trk, length float64) [2]float64 {
	sc := SinCos(trk)
	return [2]float64{length * sc[0], length * sc[1]}
}

// VectorTrack is the inverse of TrackVector: it returns the track in
// [0,2pi) and the length of v.
func VectorTrack(v [2]float64) (trk, length float64) {
	return NormalizeAngle(Atan2(v[0], v[1])), Length2(v)
}
