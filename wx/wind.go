// wx/wind.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vpsim/vpsim/math"
)

// Wind is a constant wind vector in meters/second. East and North give the
// direction the air mass moves toward (not where it comes from), so a wind
// from the east has a negative East component.
type Wind struct {
	East  float64 `yaml:"east" msgpack:"east"`
	North float64 `yaml:"north" msgpack:"north"`
	Up    float64 `yaml:"up" msgpack:"up"`
}

// MakeWind returns a horizontal wind blowing toward dirDeg (degrees
// clockwise from true north) at the given speed in knots.
func MakeWind(dirDeg, knots float64) Wind {
	v := math.TrackVector(math.Radians(dirDeg), math.KnotsToMPS(knots))
	return Wind{East: v[0], North: v[1]}
}

// MakeWindXYZ returns a wind from east and north components in knots and a
// vertical component in feet/minute.
func MakeWindXYZ(xKnots, yKnots, zFPM float64) Wind {
	return Wind{
		East:  math.KnotsToMPS(xKnots),
		North: math.KnotsToMPS(yKnots),
		Up:    math.FPMToMPS(zFPM),
	}
}

func (w Wind) IsZero() bool {
	return w == Wind{}
}

// Vector returns the wind as an east/north/up vector in meters/second.
func (w Wind) Vector() [3]float64 {
	return [3]float64{w.East, w.North, w.Up}
}

// Direction returns the direction the wind blows toward in degrees.
func (w Wind) Direction() float64 {
	trk, _ := math.VectorTrack([2]float64{w.East, w.North})
	return math.Degrees(trk)
}

// Speed returns the horizontal wind speed in knots.
func (w Wind) Speed() float64 {
	return math.MPSToKnots(math.Hypot(w.East, w.North))
}

func (w Wind) String() string {
	if w.IsZero() {
		return "calm"
	}
	s := fmt.Sprintf("toward %03.0f at %.0f kt", w.Direction(), w.Speed())
	if w.Up != 0 {
		s += fmt.Sprintf(", %+.0f fpm", math.MPSToFPM(w.Up))
	}
	return s
}

// ParseWind parses a wind given either as "deg,knot" (the direction the
// wind blows toward and its speed) or as "x,y,z" (east and north in knots,
// vertical in feet/minute). An empty string is calm.
func ParseWind(s string) (Wind, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Wind{}, nil
	}

	parts := strings.Split(s, ",")
	var v [3]float64
	for i, p := range parts {
		if i >= len(v) {
			break
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Wind{}, fmt.Errorf("invalid wind %q: %w", s, err)
		}
		if !math.IsFinite(f) {
			return Wind{}, fmt.Errorf("invalid wind %q: component %d is not finite", s, i+1)
		}
		v[i] = f
	}

	switch len(parts) {
	case 2:
		if err := validateDirection(v[0]); err != nil {
			return Wind{}, fmt.Errorf("invalid wind %q: %w", s, err)
		}
		if v[1] < 0 {
			return Wind{}, fmt.Errorf("invalid wind %q: speed %g must be non-negative", s, v[1])
		}
		return MakeWind(v[0], v[1]), nil
	case 3:
		return MakeWindXYZ(v[0], v[1], v[2]), nil
	default:
		return Wind{}, fmt.Errorf("invalid wind %q: must be in format \"deg,knot\" or \"x,y,z\"", s)
	}
}

func validateDirection(dir float64) error {
	if dir < 0 || dir > 360 {
		return fmt.Errorf("direction %g out of range [0, 360]", dir)
	}
	return nil
}
