// daa/state.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package daa

import (
	"fmt"

	"github.com/vpsim/vpsim/math"
	"github.com/vpsim/vpsim/wx"
)

// Position is a geodetic position: latitude and longitude in radians,
// altitude in meters.
type Position struct {
	Lat float64 `msgpack:"lat"`
	Lon float64 `msgpack:"lon"`
	Alt float64 `msgpack:"alt"`
}

// Velocity is given by track (radians clockwise from true north), speed
// and vertical speed, both in meters/second. Depending on context it is
// either relative to the ground or to the air mass.
type Velocity struct {
	Trk float64 `msgpack:"trk"`
	GS  float64 `msgpack:"gs"`
	VS  float64 `msgpack:"vs"`
}

// Vector returns the velocity as an east/north/up vector.
func (v Velocity) Vector() [3]float64 {
	h := math.TrackVector(v.Trk, v.GS)
	return [3]float64{h[0], h[1], v.VS}
}

// VelocityFromVector is the inverse of Velocity.Vector. The track of a
// vector with no horizontal component is zero.
func VelocityFromVector(v [3]float64) Velocity {
	trk, gs := math.VectorTrack(math.XY(v))
	return Velocity{Trk: trk, GS: gs, VS: v[2]}
}

// AddWind returns the ground velocity that results from flying with this
// air velocity in the given wind.
func (v Velocity) AddWind(w wx.Wind) Velocity {
	if w.IsZero() {
		return v
	}
	return VelocityFromVector(math.Add3(v.Vector(), w.Vector()))
}

// SubWind returns the air velocity corresponding to this ground velocity
// in the given wind.
func (v Velocity) SubWind(w wx.Wind) Velocity {
	if w.IsZero() {
		return v
	}
	return VelocityFromVector(math.Sub3(v.Vector(), w.Vector()))
}

// AircraftState is an engine's view of one aircraft. Velocity is always
// the ground velocity; Wind is the wind the engine applied when the state
// was read, so that AirVelocity can recover heading and airspeed.
type AircraftState struct {
	ID       string   `msgpack:"id"`
	Position Position `msgpack:"pos"`
	Velocity Velocity `msgpack:"vel"`
	Time     float64  `msgpack:"t"`
	Wind     wx.Wind  `msgpack:"wind"`
}

// AirVelocity returns heading, airspeed and vertical speed.
func (s AircraftState) AirVelocity() Velocity {
	return s.Velocity.SubWind(s.Wind)
}

func (s AircraftState) String() string {
	return fmt.Sprintf("%s %.6f,%.6f %.0fft trk %.1f gs %.1fkt vs %.0ffpm t=%.1f", s.ID,
		math.Degrees(s.Position.Lat), math.Degrees(s.Position.Lon),
		math.MetersToFeet(s.Position.Alt), math.Degrees(s.Velocity.Trk),
		math.MPSToKnots(s.Velocity.GS), math.MPSToFPM(s.Velocity.VS), s.Time)
}

// Resolution holds the four candidate maneuvers the engine offers at a
// step. Any of them may be NaN (no conflict on that axis) or +/-Inf (no
// resolution exists in that direction).
type Resolution struct {
	Right, Left float64 // heading, radians
	Up, Down    float64 // vertical speed, meters/second
}

func (r Resolution) RightValid() bool { return math.IsFinite(r.Right) }
func (r Resolution) LeftValid() bool  { return math.IsFinite(r.Left) }
func (r Resolution) UpValid() bool    { return math.IsFinite(r.Up) }
func (r Resolution) DownValid() bool  { return math.IsFinite(r.Down) }

// ConflictData describes a predicted loss of well clear between ownship
// and traffic for one alert level. TimeIn and TimeOut bound the violation
// interval (relative to the current time); when there is no conflict
// TimeIn is +Inf and TimeOut is -Inf. TCPA2D is the time to horizontal
// closest point of approach and may be negative if the aircraft are
// diverging. TCOA is the time to co-altitude, negative if the aircraft are
// not converging vertically.
type ConflictData struct {
	Conflict bool
	TimeIn   float64
	TimeOut  float64
	TCPA2D   float64
	TCOA     float64
}

// Thresholds are the well-clear volume parameters: horizontal distance
// DMOD and vertical distance ZTHR in meters, time threshold TTHR in
// seconds.
type Thresholds struct {
	DMOD float64 `yaml:"dmod"`
	ZTHR float64 `yaml:"zthr"`
	TTHR float64 `yaml:"tthr"`
}

func (t Thresholds) Validate() error {
	if !math.IsFinite(t.DMOD) || t.DMOD <= 0 {
		return fmt.Errorf("DMOD %g: %w", t.DMOD, ErrInvalidThreshold)
	}
	if !math.IsFinite(t.ZTHR) || t.ZTHR <= 0 {
		return fmt.Errorf("ZTHR %g: %w", t.ZTHR, ErrInvalidThreshold)
	}
	if !math.IsFinite(t.TTHR) || t.TTHR < 0 {
		return fmt.Errorf("TTHR %g: %w", t.TTHR, ErrInvalidThreshold)
	}
	return nil
}
