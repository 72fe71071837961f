// rand/rand.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import (
	gomath "math"

	"github.com/MichaelTJones/pcg"
)

///////////////////////////////////////////////////////////////////////////
// Random numbers.
//
// Every stream in the simulator is explicitly seeded; there is no global
// generator. A Rand is not safe for concurrent use, so each trial owns its
// own.

const pcgSequence = 0xda3e39cb94b95bdb

type Rand struct {
	r *pcg.PCG32

	// NormFloat64 produces Gaussians in pairs; the second one is held here
	// until the next call.
	haveSpare bool
	spare     float64
}

func New() *Rand {
	return &Rand{r: pcg.NewPCG32()}
}

// Make returns a generator seeded with s.
func Make(s int64) *Rand {
	r := New()
	r.Seed(s)
	return r
}

// Seed resets the generator; the sequence produced afterward depends only
// on s.
func (r *Rand) Seed(s int64) {
	r.r.Seed(uint64(s), pcgSequence)
	r.haveSpare = false
	r.spare = 0
}

// Float64 returns a uniform value in [0,1) with 53 bits of precision
// assembled from two 32-bit outputs.
func (r *Rand) Float64() float64 {
	hi := uint64(r.r.Random()) >> 5 // 27 bits
	lo := uint64(r.r.Random()) >> 6 // 26 bits
	return float64(hi<<26|lo) / (1 << 53)
}

// NormFloat64 returns a standard normal variate using the Marsaglia polar
// method.
func (r *Rand) NormFloat64() float64 {
	if r.haveSpare {
		r.haveSpare = false
		return r.spare
	}
	for {
		u := 2*r.Float64() - 1
		v := 2*r.Float64() - 1
		s := u*u + v*v
		if s >= 1 || s == 0 {
			continue
		}
		m := gomath.Sqrt(-2 * gomath.Log(s) / s)
		r.spare, r.haveSpare = v*m, true
		return u * m
	}
}

// Gaussian returns a normal variate with the given mean and standard
// deviation. A zero sigma returns mean without consuming any randomness.
func (r *Rand) Gaussian(mean, sigma float64) float64 {
	if sigma == 0 {
		return mean
	}
	return mean + sigma*r.NormFloat64()
}

// Rayleigh returns a Rayleigh-distributed value with scale sigma: the
// length of a vector whose two components are independent zero-mean
// Gaussians with standard deviation sigma. Its mean is sigma*sqrt(pi/2).
func (r *Rand) Rayleigh(sigma float64) float64 {
	a := sigma * r.NormFloat64()
	b := sigma * r.NormFloat64()
	return gomath.Sqrt(a*a + b*b)
}

// Angle returns a uniform angle in radians in [0,2pi).
func (r *Rand) Angle() float64 {
	return 2 * gomath.Pi * r.Float64()
}
