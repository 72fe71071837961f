// sim/montecarlo.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/brunoga/deep"
	"github.com/shirou/gopsutil/v3/cpu"
	"golang.org/x/sync/errgroup"

	"github.com/vpsim/vpsim/daa"
	"github.com/vpsim/vpsim/log"
	"github.com/vpsim/vpsim/scenario"
)

// DefaultWorkers returns the number of physical cores, or the number of
// logical CPUs if that can't be determined.
func DefaultWorkers() int {
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// MonteCarlo runs the trials of an encounter. Each trial gets its own
// engine from NewEngine, so trials may run concurrently; results are
// delivered in trial order and do not depend on the number of workers.
type MonteCarlo struct {
	Params    Params
	Scenario  *scenario.Scenario
	NewEngine daa.EngineFactory

	// Recorders receive the states of the output trial, or of the only
	// trial of a single run.
	Recorders []Recorder
	// OutputEvents holds the events of that trial after Run returns.
	OutputEvents []Event

	own, intruder daa.AircraftState
	lg            *log.Logger
}

// AircraftState converts a scenario row to an engine state.
func AircraftState(a scenario.Aircraft) daa.AircraftState {
	return daa.AircraftState{
		ID:       a.Name,
		Position: a.Position,
		Velocity: a.Velocity,
		Time:     a.Time,
	}
}

func NewMonteCarlo(p Params, sc *scenario.Scenario, newEngine daa.EngineFactory, lg *log.Logger) (*MonteCarlo, error) {
	intr, err := sc.Intruder()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sc.Name, ErrNoIntruder)
	}
	if n := len(sc.Traffic); n > 1 {
		lg.Warn("Only the first intruder is simulated", slog.String("scenario", sc.Name),
			slog.Int("ignored", n-1))
	}

	return &MonteCarlo{
		Params:    p,
		Scenario:  deep.MustCopy(sc),
		NewEngine: newEngine,
		own:       AircraftState(sc.Ownship),
		intruder:  AircraftState(intr),
		lg:        lg,
	}, nil
}

// SingleRunSetup returns the inputs of an unperturbed run with the
// configured fixed delay and wind.
func (mc *MonteCarlo) SingleRunSetup() TrialSetup {
	return TrialSetup{
		Ownship:    mc.own,
		Intruder:   mc.intruder,
		PilotDelay: mc.Params.FixedDelay,
		Wind:       mc.Params.Wind,
	}
}

func trialPanicError(index int, v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("trial %d: %w: %w", index, ErrTrialPanicked, err)
	}
	return fmt.Errorf("trial %d: %w: %v", index, ErrTrialPanicked, v)
}

func (mc *MonteCarlo) runTrial(setup TrialSetup, output bool) (result TrialResult, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = trialPanicError(setup.Index, v)
			mc.lg.Error("Trial panicked", slog.Int("trial", setup.Index), slog.Any("panic", v))
		}
	}()

	t := NewTrial(setup, mc.Params, mc.NewEngine(), mc.lg)
	var sub *EventsSubscription
	if output {
		t.Recorders = mc.Recorders
		t.Verbose = true
		sub = t.Events.Subscribe()
	}

	result, err = t.Run()

	if sub != nil {
		mc.OutputEvents = sub.Get()
		for _, ev := range mc.OutputEvents {
			mc.lg.Info("Output trial event", slog.Int("trial", setup.Index), slog.Any("event", ev))
		}
		sub.Unsubscribe()
	}
	if err == nil {
		mc.lg.Debug("Trial finished", slog.Any("result", result))
	}
	return
}

// RunSingle runs the single unperturbed trial.
func (mc *MonteCarlo) RunSingle() (TrialResult, error) {
	return mc.runTrial(mc.SingleRunSetup(), true)
}

// Run runs all of the trials and calls emit with each result in trial
// order. When ctx is canceled no further trials are started; trials that
// are already running finish, the results that are contiguous with those
// already emitted are emitted, and Run returns the context's error. An
// error from emit stops the run and is returned.
func (mc *MonteCarlo) Run(ctx context.Context, emit func(TrialResult) error) error {
	if mc.Params.SingleRun() {
		r, err := mc.RunSingle()
		if err != nil {
			return err
		}
		return emit(r)
	}

	n := mc.Params.Trials
	winds := DrawWinds(mc.Params, n)
	workers := mc.Params.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	mc.lg.Info("Starting Monte Carlo run", slog.Int("trials", n), slog.Int("workers", workers),
		slog.Int("steps", mc.Params.StepCount()))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, egCtx := errgroup.WithContext(runCtx)
	eg.SetLimit(workers)

	resultCh := make(chan TrialResult, workers)
	var runErr error
	go func() {
		defer close(resultCh)
		for i := 1; i <= n && egCtx.Err() == nil; i++ {
			eg.Go(func() error {
				r, err := mc.runTrial(DrawTrial(i, mc.own, mc.intruder, mc.Params, winds[i-1]),
					i == mc.Params.OutputTrial)
				if err != nil {
					return err
				}
				select {
				case resultCh <- r:
				case <-egCtx.Done():
				}
				return nil
			})
		}
		runErr = eg.Wait()
	}()

	// Results arrive in completion order; hold them until their
	// predecessors have been emitted.
	pending := make(map[int]TrialResult)
	next := 1
	var emitErr error
	for r := range resultCh {
		if emitErr != nil {
			continue
		}
		pending[r.Index] = r
		for emitErr == nil {
			pr, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if emitErr = emit(pr); emitErr != nil {
				cancel()
			}
		}
	}

	switch {
	case emitErr != nil:
		return emitErr
	case runErr != nil:
		return runErr
	case next <= n:
		mc.lg.Warn("Monte Carlo run interrupted", slog.Int("completed", next-1), slog.Int("trials", n))
		return fmt.Errorf("stopped after %d of %d trials: %w", next-1, n, ctx.Err())
	}
	return nil
}
