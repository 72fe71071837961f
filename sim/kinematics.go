// sim/kinematics.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"github.com/vpsim/vpsim/daa"
	"github.com/vpsim/vpsim/math"
	"github.com/vpsim/vpsim/wx"
)

// GroundVelocity returns the velocity over the ground of an aircraft
// flying the given heading, airspeed and vertical speed in wind w.
func GroundVelocity(air daa.Velocity, w wx.Wind) daa.Velocity {
	return air.AddWind(w)
}

// Integrator moves aircraft along their ground velocities with flat-earth
// dead reckoning.
type Integrator struct {
	Dt float64
}

// Advance moves both aircraft by one time step and returns their new
// states. Both use an earth radius adjusted by the ownship's altitude and
// the ownship's latitude to scale longitude; for two aircraft in the same
// encounter the difference is negligible. Non-finite values propagate.
func (in Integrator) Advance(own, traffic daa.AircraftState) (daa.AircraftState, daa.AircraftState) {
	radius := (math.EarthRadiusNM + own.Position.Alt/math.MetersPerNM) * math.MetersPerNM
	latPerMeter := 1 / radius
	lonPerMeter := 1 / (radius * math.Cos(own.Position.Lat))

	move := func(s daa.AircraftState) daa.AircraftState {
		d := math.TrackVector(s.Velocity.Trk, s.Velocity.GS*in.Dt)
		s.Position.Lat += d[1] * latPerMeter
		s.Position.Lon += d[0] * lonPerMeter
		s.Position.Alt += s.Velocity.VS * in.Dt
		s.Time += in.Dt
		s.Wind = wx.Wind{}
		return s
	}
	return move(own), move(traffic)
}
