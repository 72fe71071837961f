// sim/sampler.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"github.com/vpsim/vpsim/daa"
	"github.com/vpsim/vpsim/math"
	"github.com/vpsim/vpsim/rand"
	"github.com/vpsim/vpsim/wx"
)

// TrialSetup holds the randomized inputs of one trial.
type TrialSetup struct {
	Index      int
	Ownship    daa.AircraftState
	Intruder   daa.AircraftState
	PilotDelay float64
	Wind       wx.Wind
}

// Perturb returns s with zero-mean Gaussian noise drawn from r added to
// each channel, in the order track, vertical speed, latitude, longitude,
// altitude and ground speed. The position sigma is converted to radians
// at the aircraft's own latitude.
func (p PerturbationParams) Perturb(r *rand.Rand, s daa.AircraftState) daa.AircraftState {
	radPerMeter := 1 / math.EarthRadiusMeters
	lonScale := 1 / math.Cos(s.Position.Lat)

	s.Velocity.Trk = math.NormalizeAngle(r.Gaussian(s.Velocity.Trk, p.Heading))
	s.Velocity.VS = r.Gaussian(s.Velocity.VS, p.VerticalSpeed)
	s.Position.Lat = r.Gaussian(s.Position.Lat, p.Position*radPerMeter)
	s.Position.Lon = r.Gaussian(s.Position.Lon, p.Position*radPerMeter*lonScale)
	s.Position.Alt = r.Gaussian(s.Position.Alt, p.Altitude)
	s.Velocity.GS = r.Gaussian(s.Velocity.GS, p.GroundSpeed)
	return s
}

// DrawTrial returns the inputs for trial index. The per-trial stream is
// seeded with the index; the pilot delay is drawn from it first and then
// the ownship and intruder perturbations. The Rayleigh draw happens even
// when a fixed delay is configured so that the perturbations of a given
// trial do not depend on the delay mode. Wind comes from the caller.
func DrawTrial(index int, own, intruder daa.AircraftState, p Params, wind wx.Wind) TrialSetup {
	r := rand.Make(int64(index))

	delay := r.Rayleigh(p.DelaySigma)
	if p.UseFixedDelay {
		delay = p.FixedDelay
	}

	return TrialSetup{
		Index:      index,
		PilotDelay: delay,
		Ownship:    p.Perturbation.Perturb(r, own),
		Intruder:   p.Perturbation.Perturb(r, intruder),
		Wind:       wind,
	}
}

// DrawWinds returns the winds for trials 1 through n, drawn in trial
// order from a single stream.
func DrawWinds(p Params, n int) []wx.Wind {
	return wx.NewSampler(p.WindSeed, p.WindSpeed).Take(n)
}
