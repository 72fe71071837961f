// cmd/vpsim/main.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// vpsim flies a virtual pilot through a two-aircraft encounter. With
// --trials 0 it runs the scenario once, unperturbed; otherwise it runs a
// Monte Carlo batch and writes one CSV line per trial to stdout.

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/goforj/godump"
	"github.com/google/uuid"

	"github.com/vpsim/vpsim/config"
	"github.com/vpsim/vpsim/daa"
	"github.com/vpsim/vpsim/log"
	"github.com/vpsim/vpsim/scenario"
	"github.com/vpsim/vpsim/sim"
	"github.com/vpsim/vpsim/util"
)

var (
	configFile  = flag.String("config", "", "YAML configuration file")
	outputFile  = flag.String("output", "", "trajectory output file (default <scenario>.daa)")
	windSpec    = flag.String("wind", "", "fixed wind for single runs: \"deg,knot\" (direction toward) or \"x,y,z\" (knot,knot,fpm)")
	delay       = flag.Float64("delay", 0, "fixed pilot delay in seconds")
	steps       = flag.Int("steps", 0, "number of simulation steps per trial")
	trials      = flag.Int("trials", 0, "number of Monte Carlo trials; 0 for a single unperturbed run")
	workers     = flag.Int("workers", 0, "number of concurrent trials (default: physical cores)")
	outputTrial = flag.Int("output-trial", 0, "trial whose trajectory is written (1-based)")
	header      = flag.Bool("header", false, "write a CSV header line")
	archiveFile = flag.String("archive", "", "write all trial results to this msgpack+zstd archive")
	summaryFile = flag.String("summary", "", "write batch summary statistics as JSON to this file")
	geojsonFile = flag.String("geojson", "", "write the output trajectory as GeoJSON to this file")
	logLevel    = flag.String("loglevel", "", "logging level: debug, info, warn, error")
	logDir      = flag.String("logdir", "", "log file directory")
	cpuprofile  = flag.String("cpuprofile", "", "write CPU profile to file")
	memprofile  = flag.String("memprofile", "", "write memory profile to this file")
	dumpConfig  = flag.Bool("dumpconfig", false, "print the effective configuration and exit")
	showVersion = flag.Bool("version", false, "print the version and exit")
)

// version reports the module version recorded in the binary's build
// information.
func version() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		return bi.Main.Version
	}
	return "(devel)"
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [options] <scenario.daa>\n", filepath.Base(os.Args[0]))
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println("vpsim", version())
		return
	}
	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}
	input := flag.Arg(0)
	if f, err := os.Open(input); err != nil {
		fmt.Fprintf(os.Stderr, "** Error: File %s cannot be read\n", input)
		os.Exit(1)
	} else {
		f.Close()
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "** Error: %v\n", err)
		os.Exit(1)
	}

	lg := log.New(cfg.Log.Level, cfg.Log.Dir)
	defer lg.CatchAndReportCrash()

	var e util.ErrorLogger
	cfg.Validate(&e)
	if e.HaveErrors() {
		e.PrintErrors(lg)
		os.Exit(1)
	}
	params, err := cfg.SimParams()
	if err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "** Error: %v\n", err)
		os.Exit(1)
	}

	if *dumpConfig {
		godump.Dump(cfg, params)
		return
	}

	sc, err := scenario.ReadFile(input)
	if err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "** Error: %v\n", err)
		os.Exit(1)
	}

	profiler, err := util.CreateProfiler(*cpuprofile, *memprofile)
	if err != nil {
		lg.Errorf("%v", err)
	}
	defer profiler.Cleanup()

	runID := uuid.NewString()
	lg = lg.With(slog.String("run", runID), slog.String("scenario", sc.Name))
	output := ""
	if params.SingleRun() || params.OutputTrial > 0 {
		output = trajectoryPath(*outputFile, input, sc.Name)
	}
	lg.Info("Starting", startAttrs(*configFile, input, output, params)...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, runID, cfg, params, sc, output, lg); err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "** Error: %v\n", err)
		profiler.Cleanup()
		os.Exit(1)
	}
}

// loadConfig assembles the effective configuration: defaults, then the
// configuration file, then the environment, then command-line flags.
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFile(".env"); err != nil {
		return nil, err
	}

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}

	applyFlags(cfg, setFlags())
	return cfg, nil
}

// setFlags returns the names of the flags given on the command line.
func setFlags() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// applyFlags overrides cfg with the flags in set; flags left at their
// defaults don't touch the configuration.
func applyFlags(cfg *config.Config, set map[string]bool) {
	if set["wind"] {
		cfg.Wind.Fixed = *windSpec
	}
	if set["delay"] {
		cfg.Pilot.Delay.Fixed = *delay
		cfg.Pilot.Delay.UseFixed = true
	}
	if set["steps"] {
		cfg.Simulation.Steps = *steps
	}
	if set["trials"] {
		cfg.Simulation.Trials = *trials
	}
	if set["workers"] {
		cfg.Simulation.Workers = *workers
	}
	if set["output-trial"] {
		cfg.Simulation.OutputTrial = *outputTrial
	}
	if set["loglevel"] {
		cfg.Log.Level = *logLevel
	}
	if set["logdir"] {
		cfg.Log.Dir = *logDir
	}
}

// startAttrs describes a run for the startup log record.
func startAttrs(configPath, input, output string, p sim.Params) []any {
	if configPath == "" {
		configPath = "(defaults)"
	}
	if output == "" {
		output = "(none)"
	}
	delay := "rayleigh"
	if p.SingleRun() || p.UseFixedDelay {
		delay = fmt.Sprintf("%gs", p.FixedDelay)
	}
	wind := p.Wind.String()
	if !p.SingleRun() {
		wind = fmt.Sprintf("random at %g kt", p.WindSpeed)
	}
	return []any{
		slog.String("version", version()),
		slog.String("config", configPath),
		slog.String("wind", wind),
		slog.String("delay", delay),
		slog.Int("steps", p.StepCount()),
		slog.Int("trials", p.Trials),
		slog.String("input", input),
		slog.String("output", output),
	}
}

// trajectoryPath returns where the trajectory of the scenario read from
// input is written. The default is the scenario name with a .daa
// extension, unless that would overwrite the input.
func trajectoryPath(output, input, name string) string {
	if output != "" {
		return output
	}
	p := name + ".daa"
	if pa, err := filepath.Abs(p); err == nil {
		if ia, err := filepath.Abs(input); err == nil && pa == ia {
			return name + ".out.daa"
		}
	}
	return p
}

// run simulates sc; the trajectory of the output trial is written to
// output unless it is empty.
func run(ctx context.Context, runID string, cfg *config.Config, params sim.Params, sc *scenario.Scenario,
	output string, lg *log.Logger) (err error) {
	mc, err := sim.NewMonteCarlo(params, sc, daa.NewWellClearEngineFactory(cfg.WellClearConfig()), lg)
	if err != nil {
		return err
	}

	// Trajectory outputs
	var traj *scenario.TrajectoryWriter
	var gj *scenario.GeoJSONRecorder
	if output != "" {
		path := output
		f, cerr := os.Create(path)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if ferr := traj.Flush(); ferr != nil && err == nil {
				err = fmt.Errorf("%s: %w", path, ferr)
			}
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("%s: %w", path, cerr)
			}
		}()
		traj = scenario.NewTrajectoryWriter(f)
		mc.Recorders = append(mc.Recorders, traj)
		lg.Info("Writing trajectory", slog.String("path", path))

		if *geojsonFile != "" {
			gj = scenario.NewGeoJSONRecorder()
			mc.Recorders = append(mc.Recorders, gj)
		}
	}

	csv, err := sim.NewCSVWriter(os.Stdout, *header)
	if err != nil {
		return err
	}

	summ := sim.NewSummarizer()
	var archive *sim.Archive
	if *archiveFile != "" {
		archive = sim.NewArchive(runID, params, sc)
	}

	runErr := mc.Run(ctx, func(r sim.TrialResult) error {
		lg.Debug("Trial complete", slog.Any("result", r))
		summ.Add(r)
		if archive != nil {
			archive.Add(r)
		}
		return csv.Write(r)
	})
	if ferr := csv.Flush(); ferr != nil && runErr == nil {
		runErr = ferr
	}

	for _, ev := range mc.OutputEvents {
		lg.Info("Output trial event", slog.Any("event", ev))
	}

	// Outputs are saved even if the run was interrupted.
	var errs []error
	if runErr != nil {
		errs = append(errs, runErr)
	}
	if gj != nil {
		if err := gj.Save(*geojsonFile); err != nil {
			errs = append(errs, err)
		}
	}
	if archive != nil {
		if err := archive.Save(*archiveFile); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", *archiveFile, err))
		} else {
			lg.Info("Saved archive", slog.String("path", *archiveFile), slog.Int("results", len(archive.Results)))
		}
	}

	if !params.SingleRun() {
		s := summ.Summary()
		lg.Info("Summary", slog.Any("summary", s))
		if *summaryFile != "" {
			if err := writeSummary(*summaryFile, s); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

func writeSummary(path string, s sim.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.WriteJSON(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
