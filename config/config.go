// config/config.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package config holds the user-facing configuration of a simulation run.
// Values are in the units pilots and analysts use (feet, knots, degrees,
// feet/minute); SimParams and WellClearConfig convert them to the SI
// units used internally.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vpsim/vpsim/daa"
	"github.com/vpsim/vpsim/log"
	"github.com/vpsim/vpsim/math"
	"github.com/vpsim/vpsim/sim"
	"github.com/vpsim/vpsim/util"
	"github.com/vpsim/vpsim/wx"
)

type Config struct {
	Simulation   SimulationConfig   `yaml:"simulation"`
	Pilot        PilotConfig        `yaml:"pilot"`
	Perturbation PerturbationConfig `yaml:"perturbation"`
	Wind         WindConfig         `yaml:"wind"`
	Stabilizer   AlertLevelConfig   `yaml:"stabilizer"`
	Severity     AlertLevelConfig   `yaml:"severity"`
	Engine       EngineConfig       `yaml:"engine"`
	Log          LogConfig          `yaml:"log"`
}

type SimulationConfig struct {
	Trials      int     `yaml:"trials"` // 0 for a single unperturbed run
	Steps       int     `yaml:"steps"`  // 0 for the default of the run mode
	Dt          float64 `yaml:"dt_s"`
	Workers     int     `yaml:"workers"`
	OutputTrial int     `yaml:"output_trial"`
}

type PilotConfig struct {
	TriggerRegion  daa.Region         `yaml:"trigger_region"`
	Axes           sim.Axes           `yaml:"axes"`
	HeadingPolicy  sim.HeadingPolicy  `yaml:"heading_policy"`
	VerticalPolicy sim.VerticalPolicy `yaml:"vertical_policy"`
	TurnRate       float64            `yaml:"turn_rate_deg_s"`
	MaxClimb       float64            `yaml:"max_climb_fpm"`
	MaxDescent     float64            `yaml:"max_descent_fpm"`
	Delay          DelayConfig        `yaml:"delay"`
}

// DelayConfig selects the pilot response delay: Rayleigh distributed with
// the given sigma, or Fixed seconds when UseFixed is set. Single runs
// always use Fixed.
type DelayConfig struct {
	Sigma    float64 `yaml:"sigma_s"`
	Fixed    float64 `yaml:"fixed_s"`
	UseFixed bool    `yaml:"use_fixed"`
}

type PerturbationConfig struct {
	Heading       float64 `yaml:"heading_deg"`
	VerticalSpeed float64 `yaml:"vertical_speed_fpm"`
	Position      float64 `yaml:"position_m"`
	Altitude      float64 `yaml:"altitude_ft"`
	GroundSpeed   float64 `yaml:"ground_speed_kn"`
}

// WindConfig gives the magnitude of the random winds of a batch and the
// fixed wind of a single run, as accepted by wx.ParseWind.
type WindConfig struct {
	Speed float64 `yaml:"speed_kn"`
	Seed  int64   `yaml:"seed"`
	Fixed string  `yaml:"fixed"`
}

type AlertLevelConfig struct {
	AlertLevel int `yaml:"alert_level"`
}

type EngineConfig struct {
	DMOD              float64      `yaml:"dmod_ft"`
	ZTHR              float64      `yaml:"zthr_ft"`
	TTHR              float64      `yaml:"tthr_s"`
	Lookahead         float64      `yaml:"lookahead_s"`
	Levels            []LevelEntry `yaml:"levels"`
	CorrectiveRegion  daa.Region   `yaml:"corrective_region"`
	HeadingStep       float64      `yaml:"heading_step_deg"`
	VerticalSpeedStep float64      `yaml:"vertical_speed_step_fpm"`
	MaxVerticalSpeed  float64      `yaml:"max_vertical_speed_fpm"`
	RegionCacheSize   int          `yaml:"region_cache_size"`
}

type LevelEntry struct {
	Region       daa.Region `yaml:"region"`
	AlertingTime float64    `yaml:"alerting_time_s"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	p := sim.DefaultParams()
	wc := daa.DefaultWellClearConfig()

	c := &Config{
		Simulation: SimulationConfig{
			Trials: p.Trials,
			Dt:     p.Dt,
		},
		Pilot: PilotConfig{
			TriggerRegion:  p.Pilot.TriggerRegion,
			Axes:           p.Pilot.Axes,
			HeadingPolicy:  p.Pilot.HeadingPolicy,
			VerticalPolicy: p.Pilot.VerticalPolicy,
			TurnRate:       math.Degrees(p.Pilot.TurnRate),
			MaxClimb:       math.MPSToFPM(p.Pilot.MaxClimbRate),
			MaxDescent:     math.MPSToFPM(p.Pilot.MaxDescentRate),
			Delay: DelayConfig{
				Sigma: p.DelaySigma,
				Fixed: p.FixedDelay,
			},
		},
		Perturbation: PerturbationConfig{
			Heading:       math.Degrees(p.Perturbation.Heading),
			VerticalSpeed: math.MPSToFPM(p.Perturbation.VerticalSpeed),
			Position:      p.Perturbation.Position,
			Altitude:      math.MetersToFeet(p.Perturbation.Altitude),
			GroundSpeed:   math.MPSToKnots(p.Perturbation.GroundSpeed),
		},
		Wind: WindConfig{
			Speed: p.WindSpeed,
			Seed:  p.WindSeed,
		},
		Stabilizer: AlertLevelConfig{AlertLevel: p.StabilizerLevel},
		Severity:   AlertLevelConfig{AlertLevel: p.SeverityLevel},
		Engine: EngineConfig{
			DMOD:              math.MetersToFeet(wc.Thresholds.DMOD),
			ZTHR:              math.MetersToFeet(wc.Thresholds.ZTHR),
			TTHR:              wc.Thresholds.TTHR,
			Lookahead:         wc.LookaheadTime,
			CorrectiveRegion:  wc.CorrectiveRegion,
			HeadingStep:       math.Degrees(wc.HeadingStep),
			VerticalSpeedStep: math.MPSToFPM(wc.VerticalSpeedStep),
			MaxVerticalSpeed:  math.MPSToFPM(wc.MaxVerticalSpeed),
			RegionCacheSize:   wc.CacheSize,
		},
		Log: LogConfig{Level: "info"},
	}
	for _, l := range wc.Levels {
		c.Engine.Levels = append(c.Engine.Levels, LevelEntry{Region: l.Region, AlertingTime: l.AlertingTime})
	}
	return c
}

// Load reads a YAML configuration file over the defaults. Keys that
// don't correspond to a configuration field are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML over the defaults. Lists such as the engine's alert
// levels replace the default list rather than merging with it.
func Parse(data []byte) (*Config, error) {
	c := Default()
	c.Engine.Levels = nil

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Engine.Levels == nil {
		c.Engine.Levels = Default().Engine.Levels
	}
	return c, nil
}

// LoadEnvFile loads variables from a dotenv file into the process
// environment without overriding ones already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides configuration values from VPSIM_LOGLEVEL,
// VPSIM_LOGDIR and VPSIM_WORKERS as reported by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup("VPSIM_LOGLEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("VPSIM_LOGDIR"); ok && v != "" {
		c.Log.Dir = v
	}
	if v, ok := lookup("VPSIM_WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VPSIM_WORKERS=%q: %w", v, ErrBadEnvironment)
		}
		c.Simulation.Workers = n
	}
	return nil
}

// Validate reports all problems with the configuration to e.
func (c *Config) Validate(e *util.ErrorLogger) {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		e.Push("log")
		e.Error(err)
		e.Pop()
	}

	e.Push("engine")
	wc := c.WellClearConfig()
	if err := wc.Validate(); err != nil {
		e.Error(err)
	}
	e.Pop()

	p, err := c.SimParams()
	if err != nil {
		e.Error(err)
	}

	for _, lvl := range []struct {
		name  string
		level int
	}{{"stabilizer", p.StabilizerAlertLevel()}, {"severity", p.SeverityAlertLevel()}} {
		if lvl.level > len(wc.Levels) {
			e.Push(lvl.name)
			e.ErrorString("alert level %d: %v (%d levels)", lvl.level, ErrUnknownAlertLevel, len(wc.Levels))
			e.Pop()
		}
	}

	p.Validate(e)
}

// SimParams converts the configuration to simulation parameters. The only
// error it reports is an unparsable fixed wind; Validate reports that
// along with everything else.
func (c *Config) SimParams() (sim.Params, error) {
	w, err := wx.ParseWind(c.Wind.Fixed)
	if err != nil {
		err = fmt.Errorf("wind: %w", err)
	}

	pc, pt := c.Pilot, c.Perturbation
	return sim.Params{
		Trials:      c.Simulation.Trials,
		Steps:       c.Simulation.Steps,
		Dt:          c.Simulation.Dt,
		Workers:     c.Simulation.Workers,
		OutputTrial: c.Simulation.OutputTrial,
		Pilot: sim.PilotParams{
			TriggerRegion:  pc.TriggerRegion,
			Axes:           pc.Axes,
			HeadingPolicy:  pc.HeadingPolicy,
			VerticalPolicy: pc.VerticalPolicy,
			TurnRate:       math.Radians(pc.TurnRate),
			MaxClimbRate:   math.FPMToMPS(pc.MaxClimb),
			MaxDescentRate: math.FPMToMPS(pc.MaxDescent),
		},
		Perturbation: sim.PerturbationParams{
			Heading:       math.Radians(pt.Heading),
			VerticalSpeed: math.FPMToMPS(pt.VerticalSpeed),
			Position:      pt.Position,
			Altitude:      math.FeetToMeters(pt.Altitude),
			GroundSpeed:   math.KnotsToMPS(pt.GroundSpeed),
		},
		StabilizerLevel: c.Stabilizer.AlertLevel,
		SeverityLevel:   c.Severity.AlertLevel,
		DelaySigma:      pc.Delay.Sigma,
		FixedDelay:      pc.Delay.Fixed,
		UseFixedDelay:   pc.Delay.UseFixed,
		WindSpeed:       c.Wind.Speed,
		WindSeed:        c.Wind.Seed,
		Wind:            w,
	}, err
}

// WellClearConfig converts the engine section to a daa.WellClearConfig.
func (c *Config) WellClearConfig() daa.WellClearConfig {
	ec := c.Engine
	wc := daa.WellClearConfig{
		Thresholds: daa.Thresholds{
			DMOD: math.FeetToMeters(ec.DMOD),
			ZTHR: math.FeetToMeters(ec.ZTHR),
			TTHR: ec.TTHR,
		},
		LookaheadTime:     ec.Lookahead,
		CorrectiveRegion:  ec.CorrectiveRegion,
		HeadingStep:       math.Radians(ec.HeadingStep),
		VerticalSpeedStep: math.FPMToMPS(ec.VerticalSpeedStep),
		MaxVerticalSpeed:  math.FPMToMPS(ec.MaxVerticalSpeed),
		CacheSize:         ec.RegionCacheSize,
	}
	for _, l := range ec.Levels {
		wc.Levels = append(wc.Levels, daa.AlertLevel{Region: l.Region, AlertingTime: l.AlertingTime})
	}
	return wc
}
