// scenario/writer.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scenario

import (
	"bufio"
	"fmt"
	"io"

	"github.com/vpsim/vpsim/daa"
	"github.com/vpsim/vpsim/math"
)

const (
	trajectoryLabels = "NAME     lat          lon           alt          trk         gs           vs         time"
	trajectoryUnits  = "[none]   [deg]        [deg]         [ft]         [deg]       [knot]       [fpm]      [s]"
)

// TrajectoryWriter writes aircraft states in the same tabular format that
// Read accepts, one row per aircraft per step. Velocities are written as
// ground track and ground speed.
type TrajectoryWriter struct {
	w   *bufio.Writer
	err error
}

// NewTrajectoryWriter writes the header lines to w and returns a writer
// for the rows.
func NewTrajectoryWriter(w io.Writer) *TrajectoryWriter {
	tw := &TrajectoryWriter{w: bufio.NewWriter(w)}
	tw.printf("%s\n%s\n", trajectoryLabels, trajectoryUnits)
	return tw
}

func (tw *TrajectoryWriter) printf(f string, args ...any) {
	if tw.err == nil {
		_, tw.err = fmt.Fprintf(tw.w, f, args...)
	}
}

func (tw *TrajectoryWriter) writeRow(s daa.AircraftState, t float64) {
	tw.printf("%s, %.8f, %.8f, %.6f, %.6f, %.6f, %.6f, %.3f\n", s.ID,
		math.Degrees(s.Position.Lat), math.Degrees(s.Position.Lon),
		math.MetersToFeet(s.Position.Alt), math.Degrees(math.NormalizeAngle(s.Velocity.Trk)),
		math.MPSToKnots(s.Velocity.GS), math.MPSToFPM(s.Velocity.VS), t)
}

// Record writes one snapshot: the ownship row followed by the traffic row,
// both stamped with the ownship's time.
func (tw *TrajectoryWriter) Record(own, traffic daa.AircraftState) error {
	tw.writeRow(own, own.Time)
	tw.writeRow(traffic, own.Time)
	return tw.err
}

// Flush writes any buffered rows and returns the first error encountered.
func (tw *TrajectoryWriter) Flush() error {
	if tw.err == nil {
		tw.err = tw.w.Flush()
	}
	return tw.err
}
