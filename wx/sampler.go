// wx/sampler.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import (
	"github.com/vpsim/vpsim/math"
	"github.com/vpsim/vpsim/rand"
)

// DefaultSamplerSeed seeds the wind stream of a Monte Carlo run.
const DefaultSamplerSeed = 1

// Sampler draws one wind per trial from a single long-lived stream that is
// independent of the per-trial perturbation streams. Each call to Next
// advances the stream exactly once, so trial i always receives the i-th
// wind as long as Next is called in trial order.
type Sampler struct {
	r     *rand.Rand
	knots float64
}

// NewSampler returns a Sampler that produces winds of fixed magnitude
// (knots) in uniformly random directions.
func NewSampler(seed int64, knots float64) *Sampler {
	return &Sampler{r: rand.Make(seed), knots: knots}
}

// Next returns the next wind. The vertical component is always zero.
func (s *Sampler) Next() Wind {
	dir := s.r.Angle()
	v := math.TrackVector(dir, math.KnotsToMPS(s.knots))
	return Wind{East: v[0], North: v[1]}
}

// Take returns the next n winds in order.
func (s *Sampler) Take(n int) []Wind {
	w := make([]Wind, n)
	for i := range w {
		w[i] = s.Next()
	}
	return w
}
