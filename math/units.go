// math/units.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

// Internal units are SI: meters, meters/second, radians, seconds.
// Aviation units appear only at the boundaries.

const (
	MetersPerNM         = 1852.0
	MetersPerFoot       = 0.3048
	NauticalMilesToFeet = 6076.12
	FeetToNauticalMiles = 1 / NauticalMilesToFeet

	// ReportFeetPerMeter is the factor used when separations are written
	// to the per-trial statistics; it matches the historical 3.281 rather
	// than 1/0.3048 so that output stays comparable across runs.
	ReportFeetPerMeter = 3.281
)

func FeetToMeters(ft float64) float64 { return ft * MetersPerFoot }
func MetersToFeet(m float64) float64  { return m / MetersPerFoot }

func KnotsToMPS(kt float64) float64 { return kt * MetersPerNM / 3600 }
func MPSToKnots(v float64) float64  { return v * 3600 / MetersPerNM }

func FPMToMPS(fpm float64) float64 { return fpm * MetersPerFoot / 60 }
func MPSToFPM(v float64) float64   { return v * 60 / MetersPerFoot }
