// sim/trial.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"

	"github.com/vpsim/vpsim/daa"
	"github.com/vpsim/vpsim/log"
	"github.com/vpsim/vpsim/math"
	"github.com/vpsim/vpsim/wx"
)

// Recorder receives the engine's ownship and traffic states (ground
// velocities) at the start of every step and once more after the last.
type Recorder interface {
	Record(own, traffic daa.AircraftState) error
}

// TrialResult summarizes one trial.
type TrialResult struct {
	Index           int            `msgpack:"index"`
	PilotDelay      float64        `msgpack:"delay"`
	Wind            wx.Wind        `msgpack:"wind"`
	Severity        SeverityRecord `msgpack:"severity"`
	Steps           int            `msgpack:"steps"`
	StepsInConflict int            `msgpack:"steps_in_conflict"`
	// ManeuverStart is the time of the first step at which the pilot
	// maneuvered, NaN if it never did.
	ManeuverStart float64 `msgpack:"maneuver_start"`
}

func (r TrialResult) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("trial", r.Index),
		slog.Float64("delay", r.PilotDelay),
		slog.String("wind", r.Wind.String()),
		slog.Float64("severity", r.Severity.Worst.Severity),
		slog.Float64("min_hor_ft", r.Severity.MinHorizontal.Horizontal*math.ReportFeetPerMeter),
		slog.Int("steps_in_conflict", r.StepsInConflict),
		slog.Float64("maneuver_start", r.ManeuverStart))
}

// Trial runs one encounter. Engine must be fresh: the trial loads the
// initial states and owns the engine until Run returns.
type Trial struct {
	Setup     TrialSetup
	Params    Params
	Engine    daa.Engine
	Recorders []Recorder
	Events    *EventStream
	// Verbose enables per-step debug logging.
	Verbose bool

	lg *log.Logger
}

func NewTrial(setup TrialSetup, p Params, eng daa.Engine, lg *log.Logger) *Trial {
	lg = lg.With(slog.Int("trial", setup.Index))
	return &Trial{
		Setup:  setup,
		Params: p,
		Engine: eng,
		Events: NewEventStream(lg),
		lg:     lg,
	}
}

func checkState(s daa.AircraftState) error {
	for _, v := range []float64{s.Position.Lat, s.Position.Lon, s.Position.Alt,
		s.Velocity.Trk, s.Velocity.GS, s.Velocity.VS, s.Time} {
		if !math.IsFinite(v) {
			return fmt.Errorf("%s: %w", s.ID, ErrNonFiniteState)
		}
	}
	return nil
}

func (t *Trial) record(own, traffic daa.AircraftState) error {
	for _, r := range t.Recorders {
		if err := r.Record(own, traffic); err != nil {
			return err
		}
	}
	return nil
}

func (t *Trial) post(ts *TrialState, et EventType, alertingTime float64) {
	air := t.Engine.Ownship().AirVelocity()
	t.Events.Post(Event{
		Type:          et,
		Time:          ts.Time,
		Heading:       air.Trk,
		VerticalSpeed: air.VS,
		AlertingTime:  alertingTime,
	})
}

// Run executes every step of the trial. The steps within a step must not
// be reordered: in particular the engine drops the wind whenever states
// are set, so it is applied again before any air-relative query.
func (t *Trial) Run() (TrialResult, error) {
	p, eng, setup := t.Params, t.Engine, t.Setup
	result := TrialResult{
		Index:      setup.Index,
		PilotDelay: setup.PilotDelay,
		Wind:       setup.Wind,
	}

	if err := checkState(setup.Ownship); err != nil {
		return result, err
	}
	if err := checkState(setup.Intruder); err != nil {
		return result, err
	}

	own, intr := setup.Ownship, setup.Intruder
	eng.SetOwnshipState(own.ID, own.Position, own.Velocity, own.Time)
	eng.AddTrafficState(intr.ID, intr.Position, intr.Velocity, own.Time)

	stabLevel, sevLevel := p.StabilizerAlertLevel(), p.SeverityAlertLevel()
	if math.IsNaN(eng.AlertingTime(stabLevel)) {
		return result, fmt.Errorf("stabilizer level %d: %w", stabLevel, ErrInvalidAlertLevel)
	}

	ts := NewTrialState(own.Time)
	stab := NewStabilizer(eng, stabLevel)
	pilot := NewPilot(p.Pilot)
	integ := Integrator{Dt: p.Dt}
	steps := p.StepCount()

	for ts.Step = 0; ts.Step < steps; ts.Step++ {
		own, intr := eng.Ownship(), eng.Traffic()
		if err := t.record(own, intr); err != nil {
			return result, err
		}

		sev := ScoreSeverity(own, intr, eng.Thresholds(),
			eng.ViolationOfAlertThresholds(sevLevel).TCPA2D)
		ts.Severity.Update(sev)

		eng.SetWindVelocity(setup.Wind)
		own = eng.Ownship()
		air := own.AirVelocity()
		if ts.Step == 0 {
			ts.captureInitial(own)
		}

		res := daa.Resolution{
			Right: eng.HeadingResolution(true),
			Left:  eng.HeadingResolution(false),
			Up:    eng.VerticalSpeedResolution(true),
			Down:  eng.VerticalSpeedResolution(false),
		}
		det := eng.ViolationOfAlertThresholds(stabLevel)

		hr := eng.RegionOfHeading(air.Trk)
		vr := eng.RegionOfVerticalSpeed(air.VS)
		wasExtended := stab.Extended(eng)
		switch stab.Update(eng, ts, hr, vr, det.TCPA2D, p.Dt) {
		case TransitionEntered:
			t.post(ts, ConflictOnsetEvent, eng.AlertingTime(stabLevel))
		case TransitionRestored:
			t.post(ts, RestoredEvent, eng.AlertingTime(stabLevel))
		}
		if !wasExtended && stab.Extended(eng) {
			t.post(ts, AlertingTimeExtendedEvent, eng.AlertingTime(stabLevel))
		}
		if ts.ConflictMode {
			ts.StepsInConflict++
		}

		cmd := pilot.Command(eng, PilotInput{
			HeadingRegion:        hr,
			VerticalSpeedRegion:  vr,
			Heading:              air.Trk,
			VerticalSpeed:        air.VS,
			Clocks:               ts.Clocks,
			Delay:                setup.PilotDelay,
			Resolution:           res,
			InitialHeading:       ts.InitialHeading,
			InitialVerticalSpeed: ts.InitialVerticalSpeed,
			Dt:                   p.Dt,
		})
		if cmd.Maneuvering && math.IsNaN(ts.ManeuverStart) {
			ts.ManeuverStart = ts.Time
			t.post(ts, ManeuverStartEvent, eng.AlertingTime(stabLevel))
		}

		if t.Verbose {
			t.lg.Debug("step", slog.Any("state", ts), slog.String("hdg_region", hr.String()),
				slog.String("vs_region", vr.String()), slog.Float64("cmd_hdg", math.Degrees(cmd.Heading)),
				slog.Float64("cmd_vs", math.MPSToFPM(cmd.VerticalSpeed)))
		}

		ownGround := GroundVelocity(daa.Velocity{Trk: cmd.Heading, GS: air.GS, VS: cmd.VerticalSpeed}, setup.Wind)
		intr = eng.Traffic()
		intrGround := GroundVelocity(intr.AirVelocity(), setup.Wind)

		eng.SetOwnshipState(own.ID, own.Position, ownGround, ts.Time)
		eng.AddTrafficState(intr.ID, intr.Position, intrGround, ts.Time)

		ts.Time += p.Dt
		nown, nintr := integ.Advance(eng.Ownship(), eng.Traffic())
		eng.SetOwnshipState(nown.ID, nown.Position, nown.Velocity, ts.Time)
		eng.AddTrafficState(nintr.ID, nintr.Position, nintr.Velocity, ts.Time)
	}

	if err := t.record(eng.Ownship(), eng.Traffic()); err != nil {
		return result, err
	}

	result.Severity = ts.Severity
	result.Steps = steps
	result.StepsInConflict = ts.StepsInConflict
	result.ManeuverStart = ts.ManeuverStart
	return result, nil
}
