// scenario/geojson.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scenario

import (
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/vpsim/vpsim/daa"
	"github.com/vpsim/vpsim/math"
)

// GeoJSONRecorder accumulates the ground tracks of both aircraft and
// writes them as a FeatureCollection with one LineString per aircraft.
type GeoJSONRecorder struct {
	names  [2]string
	tracks [2]orb.LineString
	alts   [2][]float64
	times  []float64
}

func NewGeoJSONRecorder() *GeoJSONRecorder {
	return &GeoJSONRecorder{}
}

func (g *GeoJSONRecorder) Record(own, traffic daa.AircraftState) error {
	for i, s := range [2]daa.AircraftState{own, traffic} {
		g.names[i] = s.ID
		g.tracks[i] = append(g.tracks[i],
			orb.Point{math.Degrees(s.Position.Lon), math.Degrees(s.Position.Lat)})
		g.alts[i] = append(g.alts[i], math.MetersToFeet(s.Position.Alt))
	}
	g.times = append(g.times, own.Time)
	return nil
}

// FeatureCollection returns the recorded tracks. Feature properties carry
// the aircraft name, role, per-vertex altitudes in feet and times.
func (g *GeoJSONRecorder) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, role := range []string{"ownship", "intruder"} {
		if len(g.tracks[i]) == 0 {
			continue
		}
		f := geojson.NewFeature(g.tracks[i])
		f.Properties["name"] = g.names[i]
		f.Properties["role"] = role
		f.Properties["alt_ft"] = g.alts[i]
		f.Properties["time"] = g.times
		fc.Append(f)
	}
	return fc
}

func (g *GeoJSONRecorder) WriteTo(w io.Writer) (int64, error) {
	b, err := g.FeatureCollection().MarshalJSON()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// Save writes the collection to the named file.
func (g *GeoJSONRecorder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := g.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
