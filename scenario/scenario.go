// scenario/scenario.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scenario

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vpsim/vpsim/daa"
	"github.com/vpsim/vpsim/math"
)

var (
	ErrBadRow        = errors.New("Malformed data row")
	ErrMissingColumn = errors.New("Missing column")
	ErrMissingHeader = errors.New("Missing header line")
	ErrNoOwnship     = errors.New("No ownship state")
	ErrNoTraffic     = errors.New("No traffic state")
	ErrUnknownUnit   = errors.New("Unknown unit")
)

// Aircraft is one row of a scenario file converted to internal units.
type Aircraft struct {
	Name     string       `msgpack:"name"`
	Position daa.Position `msgpack:"pos"`
	Velocity daa.Velocity `msgpack:"vel"`
	Time     float64      `msgpack:"t"`
}

// Scenario holds the initial conditions of an encounter: the first
// snapshot (all rows sharing the first row's time) of a .daa/.ic file.
type Scenario struct {
	Name    string     `msgpack:"name"`
	Ownship Aircraft   `msgpack:"ownship"`
	Traffic []Aircraft `msgpack:"traffic"`
	// Rows after the first snapshot are not used.
	IgnoredRows int `msgpack:"ignored_rows"`
}

// Intruder returns the first traffic aircraft.
func (s *Scenario) Intruder() (Aircraft, error) {
	if len(s.Traffic) == 0 {
		return Aircraft{}, ErrNoTraffic
	}
	return s.Traffic[0], nil
}

// Column names accepted for each field, lowercase.
var columnAliases = map[string][]string{
	"name": {"name", "aircraft", "id"},
	"lat":  {"lat", "latitude", "sx"},
	"lon":  {"lon", "long", "longitude", "sy"},
	"alt":  {"alt", "altitude", "sz"},
	"trk":  {"trk", "track", "heading", "hdg", "vx"},
	"gs":   {"gs", "groundspeed", "groundspd", "vy"},
	"vs":   {"vs", "verticalspeed", "hdot", "vz"},
	"time": {"time", "tm", "clock", "st"},
}

var columnOrder = []string{"name", "lat", "lon", "alt", "trk", "gs", "vs", "time"}

var defaultUnits = map[string]string{
	"lat": "deg", "lon": "deg", "alt": "ft", "trk": "deg", "gs": "knot", "vs": "fpm", "time": "s",
}

// unitConversions map a unit name to a function converting to internal
// units (radians, meters, meters/second, seconds).
var unitConversions = map[string]func(float64) float64{
	"deg":    math.Radians,
	"rad":    func(v float64) float64 { return v },
	"ft":     math.FeetToMeters,
	"m":      func(v float64) float64 { return v },
	"nmi":    func(v float64) float64 { return v * math.MetersPerNM },
	"knot":   math.KnotsToMPS,
	"kts":    math.KnotsToMPS,
	"kn":     math.KnotsToMPS,
	"fpm":    math.FPMToMPS,
	"ft/min": math.FPMToMPS,
	"m/s":    func(v float64) float64 { return v },
	"mps":    func(v float64) float64 { return v },
	"s":      func(v float64) float64 { return v },
	"none":   func(v float64) float64 { return v },
}

func splitColumns(line string) []string {
	return strings.Fields(strings.ReplaceAll(line, ",", " "))
}

// ReadFile reads the scenario in the named file; the scenario's name is
// the file's base name without extension.
func ReadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s, err := Read(f, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Read parses a scenario: a line of column labels, an optional line of
// bracketed units, and rows of comma- or whitespace-separated values.
// Blank lines and lines starting with # are skipped. The first data row
// is the ownship; the following rows with the same time are traffic.
func Read(r io.Reader, name string) (*Scenario, error) {
	sc := bufio.NewScanner(r)
	lineno := 0
	next := func() (string, bool) {
		for sc.Scan() {
			lineno++
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			return line, true
		}
		return "", false
	}

	header, ok := next()
	if !ok {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, ErrMissingHeader
	}

	cols, err := parseHeader(header)
	if err != nil {
		return nil, err
	}
	units := defaultUnits

	s := &Scenario{Name: name}
	haveOwnship := false
	var t0 float64

	for {
		line, ok := next()
		if !ok {
			break
		}
		if strings.HasPrefix(line, "[") {
			if haveOwnship {
				return nil, fmt.Errorf("line %d: units after data: %w", lineno, ErrBadRow)
			}
			if units, err = parseUnits(line, cols); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno, err)
			}
			continue
		}

		ac, err := parseRow(line, cols, units)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}

		if !haveOwnship {
			s.Ownship, t0, haveOwnship = ac, ac.Time, true
		} else if ac.Time == t0 && s.IgnoredRows == 0 {
			s.Traffic = append(s.Traffic, ac)
		} else {
			s.IgnoredRows++
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if !haveOwnship {
		return nil, ErrNoOwnship
	}
	return s, nil
}

// parseHeader returns the index of each known column.
func parseHeader(line string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, label := range splitColumns(line) {
		label = strings.ToLower(label)
		for field, aliases := range columnAliases {
			for _, a := range aliases {
				if label == a {
					if _, ok := cols[field]; !ok {
						cols[field] = i
					}
				}
			}
		}
	}

	for _, c := range columnOrder {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%q: %w", c, ErrMissingColumn)
		}
	}
	return cols, nil
}

func parseUnits(line string, cols map[string]int) (map[string]string, error) {
	fields := splitColumns(line)
	units := make(map[string]string)
	for field, idx := range cols {
		if field == "name" {
			continue
		}
		if idx >= len(fields) {
			units[field] = defaultUnits[field]
			continue
		}
		u := strings.ToLower(strings.Trim(fields[idx], "[]"))
		if _, ok := unitConversions[u]; !ok {
			return nil, fmt.Errorf("%q for %s: %w", u, field, ErrUnknownUnit)
		}
		units[field] = u
	}
	return units, nil
}

func parseRow(line string, cols map[string]int, units map[string]string) (Aircraft, error) {
	fields := splitColumns(line)

	value := func(field string) (float64, error) {
		idx := cols[field]
		if idx >= len(fields) {
			return 0, fmt.Errorf("%d fields, no %s: %w", len(fields), field, ErrBadRow)
		}
		v, err := strconv.ParseFloat(fields[idx], 64)
		if err != nil {
			return 0, fmt.Errorf("%s %q: %w", field, fields[idx], ErrBadRow)
		}
		if !math.IsFinite(v) {
			return 0, fmt.Errorf("%s %q is not finite: %w", field, fields[idx], ErrBadRow)
		}
		return unitConversions[units[field]](v), nil
	}

	if cols["name"] >= len(fields) {
		return Aircraft{}, ErrBadRow
	}
	ac := Aircraft{Name: fields[cols["name"]]}

	var err error
	for _, f := range []struct {
		field string
		v     *float64
	}{
		{"lat", &ac.Position.Lat},
		{"lon", &ac.Position.Lon},
		{"alt", &ac.Position.Alt},
		{"trk", &ac.Velocity.Trk},
		{"gs", &ac.Velocity.GS},
		{"vs", &ac.Velocity.VS},
		{"time", &ac.Time},
	} {
		if *f.v, err = value(f.field); err != nil {
			return Aircraft{}, err
		}
	}
	ac.Velocity.Trk = math.NormalizeAngle(ac.Velocity.Trk)
	return ac, nil
}
