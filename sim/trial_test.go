// sim/trial_test.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
	"testing"

	"github.com/vpsim/vpsim/daa"
	"github.com/vpsim/vpsim/math"
	"github.com/vpsim/vpsim/wx"
)

// captureRecorder keeps every recorded state pair.
type captureRecorder struct {
	own, traffic []daa.AircraftState
	err          error
}

func (c *captureRecorder) Record(own, traffic daa.AircraftState) error {
	c.own = append(c.own, own)
	c.traffic = append(c.traffic, traffic)
	return c.err
}

// crossingSetup returns two aircraft converging on 37N 77W at 6500ft
// from the east and the north at 160 knots.
func crossingSetup() TrialSetup {
	return TrialSetup{
		Ownship:    makeState("ownship", 37, -76.897, 6500, 270, 160, 0),
		Intruder:   makeState("intruder", 37.082, -77, 6500, 180, 160, 0),
		PilotDelay: 5,
	}
}

func singleRunParams(steps int) Params {
	p := DefaultParams()
	p.Trials = 0
	p.Steps = steps
	p.Perturbation = PerturbationParams{}
	return p
}

func TestTrialCrossingEncounter(t *testing.T) {
	setup := crossingSetup()
	p := singleRunParams(150)
	rec := &captureRecorder{}

	trial := NewTrial(setup, p, daa.NewWellClearEngine(daa.DefaultWellClearConfig()), nil)
	trial.Recorders = []Recorder{rec}
	sub := trial.Events.Subscribe()

	result, err := trial.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rec.own) != p.Steps+1 {
		t.Errorf("got %d recorded states, expected %d", len(rec.own), p.Steps+1)
	}
	if result.Steps != p.Steps || result.PilotDelay != 5 {
		t.Errorf("unexpected result %+v", result)
	}

	events := sub.Get()
	if len(events) == 0 || events[0].Type != ConflictOnsetEvent {
		t.Fatalf("expected conflict onset first, got %v", events)
	}
	onset := events[0].Time
	if onset <= 0 {
		t.Errorf("conflict onset at %f; expected it after the start", onset)
	}

	if math.IsNaN(result.ManeuverStart) {
		t.Fatalf("pilot never maneuvered")
	}
	if result.ManeuverStart < onset+setup.PilotDelay-p.Dt-1e-9 {
		t.Errorf("maneuver at %f, before onset %f plus delay", result.ManeuverStart, onset)
	}
	if result.StepsInConflict == 0 {
		t.Errorf("expected steps in conflict")
	}

	maxTurn := p.Pilot.TurnRate*p.Dt + 1e-9
	maxVS := p.Pilot.MaxClimbRate + 1e-9
	for i, own := range rec.own {
		if own.Time < result.ManeuverStart {
			if math.TurnDelta(own.Velocity.Trk, math.Radians(270)) > 1e-9 {
				t.Errorf("t=%f: heading %f changed before the maneuver", own.Time, math.Degrees(own.Velocity.Trk))
			}
		}
		if i > 0 {
			if d := math.TurnDelta(rec.own[i-1].Velocity.Trk, own.Velocity.Trk); d > maxTurn {
				t.Errorf("t=%f: turned %f degrees in one step", own.Time, math.Degrees(d))
			}
			if dt := own.Time - rec.own[i-1].Time; math.Abs(dt-p.Dt) > 1e-9 {
				t.Errorf("t=%f: time advanced by %f", own.Time, dt)
			}
		}
		if math.Abs(own.Velocity.VS) > maxVS {
			t.Errorf("t=%f: vertical speed %f fpm beyond the limit", own.Time, math.MPSToFPM(own.Velocity.VS))
		}
		if traffic := rec.traffic[i]; traffic.Velocity.Trk != math.Radians(180) {
			t.Errorf("t=%f: intruder track changed to %f", own.Time, math.Degrees(traffic.Velocity.Trk))
		}
	}

	sev := result.Severity
	if sev.Worst.Severity < 0 || sev.Worst.Severity > 1 {
		t.Errorf("severity %f outside [0,1]", sev.Worst.Severity)
	}
	if !math.IsFinite(sev.MinHorizontal.Horizontal) || sev.MinHorizontal.Horizontal >= 12000 {
		t.Errorf("min horizontal separation %f", sev.MinHorizontal.Horizontal)
	}
}

func TestTrialScriptedEvents(t *testing.T) {
	e := daa.NewScriptedEngine()
	e.DefaultRegion = daa.RegionMid
	e.TCPA = 100
	e.Resolution.Right = math.Radians(300)

	p := singleRunParams(20)
	p.Pilot.Axes = AxesHorizontal
	trial := NewTrial(crossingSetup(), p, e, nil)
	rec := &captureRecorder{}
	trial.Recorders = []Recorder{rec}
	sub := trial.Events.Subscribe()

	result, err := trial.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	expected := []struct {
		et   EventType
		time float64
	}{
		{ConflictOnsetEvent, 0},
		{AlertingTimeExtendedEvent, 0},
		{ManeuverStartEvent, 4},
	}
	events := sub.Get()
	if len(events) != len(expected) {
		t.Fatalf("got events %v", events)
	}
	for i, ex := range expected {
		if events[i].Type != ex.et || events[i].Time != ex.time {
			t.Errorf("event %d: got %v, expected %s at %f", i, events[i], ex.et, ex.time)
		}
	}
	if events[1].AlertingTime != 100 {
		t.Errorf("got extended alerting time %f, expected 100", events[1].AlertingTime)
	}

	if result.ManeuverStart != 4 || result.StepsInConflict != 20 {
		t.Errorf("got maneuver start %f, %d steps in conflict", result.ManeuverStart, result.StepsInConflict)
	}
	last := rec.own[len(rec.own)-1]
	if math.TurnDelta(last.Velocity.Trk, math.Radians(300)) > 1e-9 {
		t.Errorf("final heading %f, expected 300", math.Degrees(last.Velocity.Trk))
	}
	// Five steps turning at three degrees per second.
	if h := math.Degrees(rec.own[9].Velocity.Trk); math.Abs(h-285) > 1e-9 {
		t.Errorf("heading at t=9 is %f, expected 285", h)
	}
}

func TestTrialWind(t *testing.T) {
	e := daa.NewScriptedEngine()
	setup := crossingSetup()
	setup.Wind = wx.MakeWind(90, 30)

	p := singleRunParams(10)
	rec := &captureRecorder{}
	trial := NewTrial(setup, p, e, nil)
	trial.Recorders = []Recorder{rec}
	if _, err := trial.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// With nothing in conflict the ownship keeps its air heading and
	// speed, so its ground track is pushed east by the wind.
	air := setup.Ownship.Velocity.SubWind(setup.Wind)
	expected := GroundVelocity(air, setup.Wind)
	for i, own := range rec.own {
		if !own.Wind.IsZero() {
			t.Errorf("step %d: recorded state carries wind %v", i, own.Wind)
		}
		if math.Abs(own.Velocity.GS-expected.GS) > 1e-9 || math.TurnDelta(own.Velocity.Trk, expected.Trk) > 1e-9 {
			t.Errorf("step %d: got ground velocity %+v, expected %+v", i, own.Velocity, expected)
		}
	}
	if e.WindSets != 0 {
		t.Errorf("wind still set after the final state update")
	}
}

func TestTrialErrors(t *testing.T) {
	t.Run("NonFiniteState", func(t *testing.T) {
		setup := crossingSetup()
		setup.Intruder.Position.Lat = math.NaN()
		_, err := NewTrial(setup, singleRunParams(5), daa.NewScriptedEngine(), nil).Run()
		if !errors.Is(err, ErrNonFiniteState) {
			t.Errorf("expected ErrNonFiniteState, got %v", err)
		}
	})

	t.Run("AlertLevel", func(t *testing.T) {
		p := singleRunParams(5)
		p.StabilizerLevel = 4
		_, err := NewTrial(crossingSetup(), p, daa.NewScriptedEngine(), nil).Run()
		if !errors.Is(err, ErrInvalidAlertLevel) {
			t.Errorf("expected ErrInvalidAlertLevel, got %v", err)
		}
	})

	t.Run("Recorder", func(t *testing.T) {
		errFull := errors.New("disk full")
		trial := NewTrial(crossingSetup(), singleRunParams(5), daa.NewScriptedEngine(), nil)
		trial.Recorders = []Recorder{&captureRecorder{err: errFull}}
		if _, err := trial.Run(); !errors.Is(err, errFull) {
			t.Errorf("expected recorder error, got %v", err)
		}
	})
}
