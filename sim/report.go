// sim/report.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/iancoleman/orderedmap"

	"github.com/vpsim/vpsim/math"
)

// CSVHeader names the fields of CSVLine. Distances are in feet.
const CSVHeader = "max_severity_pct, hor_at_worst_sev, vert_at_worst_sev, min_hor, vert_at_min_hor, hor_at_min_vert, min_vert, pilot_delay"

// CSVFields returns the per-trial statistics: worst severity as a
// percentage, the separations at the worst severity, the gated minimum
// separations, and the pilot delay in seconds.
func (r TrialResult) CSVFields() []float64 {
	ft := func(m float64) float64 { return m * math.ReportFeetPerMeter }
	sev := r.Severity
	return []float64{
		sev.Worst.Severity * 100,
		ft(sev.Worst.Range),
		ft(sev.Worst.Vertical),
		ft(sev.MinHorizontal.Horizontal),
		ft(sev.MinHorizontal.Vertical),
		ft(sev.MinVertical.Horizontal),
		ft(sev.MinVertical.Vertical),
		r.PilotDelay,
	}
}

func (r TrialResult) CSVLine() string {
	var f []string
	for _, v := range r.CSVFields() {
		f = append(f, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return strings.Join(f, ", ")
}

// CSVWriter writes one line per trial.
type CSVWriter struct {
	w *bufio.Writer
}

func NewCSVWriter(w io.Writer, header bool) (*CSVWriter, error) {
	c := &CSVWriter{w: bufio.NewWriter(w)}
	if header {
		if _, err := c.w.WriteString(CSVHeader + "\n"); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *CSVWriter) Write(r TrialResult) error {
	_, err := c.w.WriteString(r.CSVLine() + "\n")
	return err
}

func (c *CSVWriter) Flush() error {
	return c.w.Flush()
}

///////////////////////////////////////////////////////////////////////////
// Summary

// Summarizer accumulates batch statistics.
type Summarizer struct {
	severities []float64
	nan        int
	maneuvered int
	delaySum   float64
	minHor     float64
	count      int
}

func NewSummarizer() *Summarizer {
	return &Summarizer{minHor: separationCeiling}
}

func (s *Summarizer) Add(r TrialResult) {
	s.count++
	s.delaySum += r.PilotDelay
	if math.IsNaN(r.Severity.Worst.Severity) {
		s.nan++
	} else {
		s.severities = append(s.severities, r.Severity.Worst.Severity)
	}
	if !math.IsNaN(r.ManeuverStart) {
		s.maneuvered++
	}
	s.minHor = min(s.minHor, r.Severity.MinHorizontal.Horizontal)
}

// Summary holds batch statistics. Severities are percentages and
// distances are in feet; NaN severities are counted but otherwise
// excluded.
type Summary struct {
	Count              int
	NaNSeverities      int
	MeanSeverity       float64
	MaxSeverity        float64
	P50, P90, P99      float64
	MinHorizontal      float64
	FractionSevere     float64 // trials with severity > 0
	FractionManeuvered float64
	MeanDelay          float64
}

// percentile returns the nearest-rank percentile of sorted values.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	return sorted[math.Clamp(idx, 0, len(sorted)-1)]
}

func (s *Summarizer) Summary() Summary {
	sum := Summary{
		Count:         s.count,
		NaNSeverities: s.nan,
		MinHorizontal: s.minHor * math.ReportFeetPerMeter,
		MeanSeverity:  math.NaN(),
		MaxSeverity:   math.NaN(),
		MeanDelay:     math.NaN(),
	}
	if s.count > 0 {
		sum.MeanDelay = s.delaySum / float64(s.count)
		sum.FractionManeuvered = float64(s.maneuvered) / float64(s.count)
	}

	sorted := slices.Clone(s.severities)
	slices.Sort(sorted)
	sum.P50 = 100 * percentile(sorted, 50)
	sum.P90 = 100 * percentile(sorted, 90)
	sum.P99 = 100 * percentile(sorted, 99)
	if len(sorted) > 0 {
		var total float64
		severe := 0
		for _, v := range sorted {
			total += v
			if v > 0 {
				severe++
			}
		}
		sum.MeanSeverity = 100 * total / float64(len(sorted))
		sum.MaxSeverity = 100 * sorted[len(sorted)-1]
		sum.FractionSevere = float64(severe) / float64(s.count)
	}
	return sum
}

// jsonFloat maps values JSON can't represent to null.
func jsonFloat(v float64) any {
	if !math.IsFinite(v) {
		return nil
	}
	return v
}

// OrderedMap returns the summary with its keys in presentation order.
func (s Summary) OrderedMap() *orderedmap.OrderedMap {
	o := orderedmap.New()
	o.Set("count", s.Count)
	o.Set("nan_severities", s.NaNSeverities)
	o.Set("mean_severity_pct", jsonFloat(s.MeanSeverity))
	o.Set("max_severity_pct", jsonFloat(s.MaxSeverity))
	o.Set("p50_severity_pct", jsonFloat(s.P50))
	o.Set("p90_severity_pct", jsonFloat(s.P90))
	o.Set("p99_severity_pct", jsonFloat(s.P99))
	o.Set("min_hor_ft", jsonFloat(s.MinHorizontal))
	o.Set("fraction_severe", s.FractionSevere)
	o.Set("fraction_maneuvered", s.FractionManeuvered)
	o.Set("mean_pilot_delay", jsonFloat(s.MeanDelay))
	return o
}

func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.OrderedMap())
}

// WriteJSON writes the summary as indented JSON.
func (s Summary) WriteJSON(w io.Writer) error {
	b, err := json.MarshalIndent(s.OrderedMap(), "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("count", s.Count),
		slog.Float64("mean_severity_pct", s.MeanSeverity),
		slog.Float64("max_severity_pct", s.MaxSeverity),
		slog.Float64("p90_severity_pct", s.P90),
		slog.Float64("min_hor_ft", s.MinHorizontal),
		slog.Float64("fraction_severe", s.FractionSevere))
}
