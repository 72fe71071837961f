// math/latlong.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

// EarthRadiusNM is the mean earth radius used by the point-mass dynamics.
const EarthRadiusNM = 3437.74677078

// EarthRadiusMeters is EarthRadiusNM expressed in meters.
const EarthRadiusMeters = EarthRadiusNM * MetersPerNM

// LocalFrame is an equirectangular projection centered on a reference
// latitude/longitude (radians). It is accurate enough for the few tens of
// nautical miles that separate two aircraft in an encounter.
type LocalFrame struct {
	Lat0, Lon0 float64
	cosLat0    float64
}

func MakeLocalFrame(lat0, lon0 float64) LocalFrame {
	return LocalFrame{Lat0: lat0, Lon0: lon0, cosLat0: Cos(lat0)}
}

// Project returns the east/north offset in meters of (lat, lon) from the
// frame origin.
func (f LocalFrame) Project(lat, lon float64) [2]float64 {
	dlon := lon - f.Lon0
	// Keep the longitude difference on the short side of the antimeridian.
	if dlon > Pi {
		dlon -= 2 * Pi
	} else if dlon < -Pi {
		dlon += 2 * Pi
	}
	return [2]float64{dlon * f.cosLat0 * EarthRadiusMeters, (lat - f.Lat0) * EarthRadiusMeters}
}
