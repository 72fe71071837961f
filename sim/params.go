// sim/params.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vpsim/vpsim/daa"
	"github.com/vpsim/vpsim/math"
	"github.com/vpsim/vpsim/util"
	"github.com/vpsim/vpsim/wx"
)

const (
	DefaultBatchSteps     = 150
	DefaultSingleRunSteps = 320
	DefaultTrials         = 10000

	// Alert levels managed by the stabilizer and scored for severity
	// when none is configured.
	DefaultBatchAlertLevel     = 1
	DefaultSingleRunAlertLevel = 2

	// DefaultDelaySigma gives a Rayleigh distribution with a mean of 5s.
	DefaultDelaySigma = 3.9894228
	DefaultFixedDelay = 5
)

///////////////////////////////////////////////////////////////////////////
// Policies

// HeadingPolicy selects between the right and left heading resolutions
// when both are available.
type HeadingPolicy int

const (
	HeadingSmallestTurn HeadingPolicy = iota
	HeadingRight
	HeadingLeft
)

var headingPolicyNames = []string{"smallest-turn", "right", "left"}

// VerticalPolicy selects between the up and down vertical speed
// resolutions when both are available.
type VerticalPolicy int

const (
	VerticalSmallestAbsolute VerticalPolicy = iota
	VerticalSmallestChange
	VerticalUp
	VerticalDown
)

var verticalPolicyNames = []string{"smallest-absolute", "smallest-change", "up", "down"}

// Axes selects which resolutions the pilot flies.
type Axes int

const (
	AxesHorizontal Axes = iota
	AxesVertical
	AxesBoth
)

var axesNames = []string{"horizontal", "vertical", "both"}

func (a Axes) Horizontal() bool { return a == AxesHorizontal || a == AxesBoth }
func (a Axes) Vertical() bool   { return a == AxesVertical || a == AxesBoth }

func enumString(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("unknown(%d)", v)
	}
	return names[v]
}

func parseEnum[T ~int](names []string, s, what string) (T, error) {
	if idx := slices.Index(names, strings.ToLower(strings.TrimSpace(s))); idx != -1 {
		return T(idx), nil
	}
	return 0, fmt.Errorf("%s %q: %w (expected one of %s)", what, s, ErrUnknownPolicy,
		strings.Join(names, ", "))
}

func (p HeadingPolicy) String() string  { return enumString(headingPolicyNames, int(p)) }
func (p VerticalPolicy) String() string { return enumString(verticalPolicyNames, int(p)) }
func (a Axes) String() string           { return enumString(axesNames, int(a)) }

func ParseHeadingPolicy(s string) (HeadingPolicy, error) {
	return parseEnum[HeadingPolicy](headingPolicyNames, s, "heading policy")
}

func ParseVerticalPolicy(s string) (VerticalPolicy, error) {
	return parseEnum[VerticalPolicy](verticalPolicyNames, s, "vertical policy")
}

func ParseAxes(s string) (Axes, error) {
	return parseEnum[Axes](axesNames, s, "axes")
}

func (p HeadingPolicy) MarshalText() ([]byte, error)  { return []byte(p.String()), nil }
func (p VerticalPolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
func (a Axes) MarshalText() ([]byte, error)           { return []byte(a.String()), nil }

func (p *HeadingPolicy) UnmarshalText(b []byte) (err error) {
	*p, err = ParseHeadingPolicy(string(b))
	return
}

func (p *VerticalPolicy) UnmarshalText(b []byte) (err error) {
	*p, err = ParseVerticalPolicy(string(b))
	return
}

func (a *Axes) UnmarshalText(b []byte) (err error) {
	*a, err = ParseAxes(string(b))
	return
}

///////////////////////////////////////////////////////////////////////////
// Params

// PilotParams configures the virtual pilot. Rates are in SI units; both
// climb and descent limits are positive magnitudes.
type PilotParams struct {
	TriggerRegion  daa.Region
	Axes           Axes
	HeadingPolicy  HeadingPolicy
	VerticalPolicy VerticalPolicy
	TurnRate       float64 // radians/second
	MaxClimbRate   float64 // meters/second
	MaxDescentRate float64 // meters/second
}

// PerturbationParams are the standard deviations of the Gaussian noise
// added to the initial states of each Monte Carlo trial.
type PerturbationParams struct {
	Heading       float64 // radians
	VerticalSpeed float64 // meters/second
	Position      float64 // meters, applied separately to latitude and longitude
	Altitude      float64 // meters
	GroundSpeed   float64 // meters/second
}

func (p PerturbationParams) IsZero() bool {
	return p == PerturbationParams{}
}

// Params holds everything needed to run trials. Trials == 0 selects a
// single unperturbed run.
type Params struct {
	Trials      int
	Steps       int // zero selects the default for the run mode
	Dt          float64
	Workers     int // zero selects the number of physical cores
	OutputTrial int // zero for none; trials are numbered from 1

	Pilot        PilotParams
	Perturbation PerturbationParams

	// Alert levels (1-based) whose alerting time the stabilizer manages
	// and whose conflict data is used for severity scoring. Zero selects
	// the default for the run mode.
	StabilizerLevel int
	SeverityLevel   int

	DelaySigma    float64
	FixedDelay    float64
	UseFixedDelay bool

	WindSpeed float64 // knots, batch runs
	WindSeed  int64
	Wind      wx.Wind // single runs
}

func DefaultPilotParams() PilotParams {
	return PilotParams{
		TriggerRegion:  daa.RegionMid,
		Axes:           AxesBoth,
		HeadingPolicy:  HeadingSmallestTurn,
		VerticalPolicy: VerticalSmallestAbsolute,
		TurnRate:       math.Radians(3),
		MaxClimbRate:   math.FPMToMPS(1225),
		MaxDescentRate: math.FPMToMPS(1225),
	}
}

func DefaultPerturbationParams() PerturbationParams {
	return PerturbationParams{
		Heading:       math.Radians(1),
		VerticalSpeed: math.FPMToMPS(25),
		Position:      50,
		Altitude:      math.FeetToMeters(50),
		GroundSpeed:   math.KnotsToMPS(5),
	}
}

func DefaultParams() Params {
	return Params{
		Trials:          DefaultTrials,
		Dt:              1,
		Pilot:           DefaultPilotParams(),
		Perturbation:    DefaultPerturbationParams(),
		DelaySigma:      DefaultDelaySigma,
		FixedDelay:      DefaultFixedDelay,
		WindSpeed:       50,
		WindSeed:        wx.DefaultSamplerSeed,
	}
}

// SingleRun reports whether the parameters describe one unperturbed run.
func (p Params) SingleRun() bool {
	return p.Trials == 0
}

// StepCount returns the number of steps each trial runs.
func (p Params) StepCount() int {
	if p.Steps > 0 {
		return p.Steps
	}
	if p.SingleRun() {
		return DefaultSingleRunSteps
	}
	return DefaultBatchSteps
}

func (p Params) alertLevel(l int) int {
	switch {
	case l > 0:
		return l
	case p.SingleRun():
		return DefaultSingleRunAlertLevel
	default:
		return DefaultBatchAlertLevel
	}
}

// StabilizerAlertLevel returns the alert level whose alerting time the
// stabilizer manages.
func (p Params) StabilizerAlertLevel() int { return p.alertLevel(p.StabilizerLevel) }

// SeverityAlertLevel returns the alert level whose conflict data is used
// to score severity.
func (p Params) SeverityAlertLevel() int { return p.alertLevel(p.SeverityLevel) }

// Validate reports all problems with the parameters to e.
func (p Params) Validate(e *util.ErrorLogger) {
	check := func(ok bool, f string, args ...any) {
		if !ok {
			e.Error(fmt.Errorf(f+": %w", append(args, ErrInvalidParameter)...))
		}
	}

	check(p.Trials >= 0, "trials %d must not be negative", p.Trials)
	check(p.Steps >= 0, "steps %d must not be negative", p.Steps)
	check(p.Dt > 0 && math.IsFinite(p.Dt), "time step %g must be positive", p.Dt)
	check(p.Workers >= 0, "workers %d must not be negative", p.Workers)
	check(p.OutputTrial >= 0 && p.OutputTrial <= p.Trials, "output trial %d must be in [0, %d]",
		p.OutputTrial, p.Trials)
	check(p.StabilizerLevel >= 0, "stabilizer alert level %d must not be negative", p.StabilizerLevel)
	check(p.SeverityLevel >= 0, "severity alert level %d must not be negative", p.SeverityLevel)

	if p.UseFixedDelay || p.SingleRun() {
		check(p.FixedDelay >= 0 && math.IsFinite(p.FixedDelay), "pilot delay %g must not be negative", p.FixedDelay)
	} else {
		check(p.DelaySigma >= 0 && math.IsFinite(p.DelaySigma), "pilot delay sigma %g must not be negative", p.DelaySigma)
	}
	check(p.WindSpeed >= 0 && math.IsFinite(p.WindSpeed), "wind speed %g must not be negative", p.WindSpeed)

	e.Push("pilot")
	pp := p.Pilot
	check(pp.TriggerRegion == daa.RegionMid || pp.TriggerRegion == daa.RegionNear,
		"trigger region %s must be MID or NEAR", pp.TriggerRegion)
	check(pp.Axes >= AxesHorizontal && pp.Axes <= AxesBoth, "axes %s", pp.Axes)
	check(pp.HeadingPolicy >= HeadingSmallestTurn && pp.HeadingPolicy <= HeadingLeft,
		"heading policy %s", pp.HeadingPolicy)
	check(pp.VerticalPolicy >= VerticalSmallestAbsolute && pp.VerticalPolicy <= VerticalDown,
		"vertical policy %s", pp.VerticalPolicy)
	check(pp.TurnRate > 0 && math.IsFinite(pp.TurnRate), "turn rate %g must be positive", pp.TurnRate)
	check(pp.MaxClimbRate >= 0 && math.IsFinite(pp.MaxClimbRate), "climb rate %g must not be negative", pp.MaxClimbRate)
	check(pp.MaxDescentRate >= 0 && math.IsFinite(pp.MaxDescentRate), "descent rate %g must not be negative", pp.MaxDescentRate)
	e.Pop()

	e.Push("perturbation")
	for _, s := range []struct {
		name  string
		sigma float64
	}{
		{"heading", p.Perturbation.Heading},
		{"vertical speed", p.Perturbation.VerticalSpeed},
		{"position", p.Perturbation.Position},
		{"altitude", p.Perturbation.Altitude},
		{"ground speed", p.Perturbation.GroundSpeed},
	} {
		check(s.sigma >= 0 && math.IsFinite(s.sigma), "%s sigma %g must not be negative", s.name, s.sigma)
	}
	e.Pop()
}
