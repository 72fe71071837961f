// daa/wellclear.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package daa

import (
	"fmt"

	"github.com/brunoga/deep"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vpsim/vpsim/math"
	"github.com/vpsim/vpsim/wx"
)

// AlertLevel associates a region with the time horizon within which a
// predicted violation is reported at that region.
type AlertLevel struct {
	Region       Region  `yaml:"region"`
	AlertingTime float64 `yaml:"alerting_time"` // seconds
}

// WellClearConfig parameterizes a WellClearEngine. Distances are in
// meters, times in seconds, angles in radians.
type WellClearConfig struct {
	Thresholds    Thresholds
	LookaheadTime float64
	// Levels are listed from least to most severe; level i (1-based) is
	// Levels[i-1].
	Levels []AlertLevel
	// Candidates at or above CorrectiveRegion are in conflict for the
	// purposes of resolution search.
	CorrectiveRegion  Region
	HeadingStep       float64
	VerticalSpeedStep float64
	MaxVerticalSpeed  float64
	// CacheSize bounds the number of memoized region queries.
	CacheSize int
}

func DefaultWellClearConfig() WellClearConfig {
	return WellClearConfig{
		Thresholds: Thresholds{
			DMOD: math.FeetToMeters(4000),
			ZTHR: math.FeetToMeters(450),
			TTHR: 35,
		},
		LookaheadTime: 180,
		Levels: []AlertLevel{
			{Region: RegionFar, AlertingTime: 75},
			{Region: RegionMid, AlertingTime: 55},
			{Region: RegionNear, AlertingTime: 25},
		},
		CorrectiveRegion:  RegionMid,
		HeadingStep:       math.Radians(1),
		VerticalSpeedStep: math.FPMToMPS(50),
		MaxVerticalSpeed:  math.FPMToMPS(3000),
		CacheSize:         1024,
	}
}

func (c WellClearConfig) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if !math.IsFinite(c.LookaheadTime) || c.LookaheadTime <= 0 {
		return fmt.Errorf("lookahead time %g must be positive", c.LookaheadTime)
	}
	if len(c.Levels) == 0 {
		return fmt.Errorf("no alert levels: %w", ErrInvalidAlertLevel)
	}
	prev := RegionNone
	for i, l := range c.Levels {
		if l.Region <= prev || l.Region > RegionNear {
			return fmt.Errorf("level %d: region %s out of order: %w", i+1, l.Region, ErrInvalidAlertLevel)
		}
		if !math.IsFinite(l.AlertingTime) || l.AlertingTime <= 0 || l.AlertingTime > c.LookaheadTime {
			return fmt.Errorf("level %d: alerting time %g must be in (0, %g]: %w", i+1, l.AlertingTime,
				c.LookaheadTime, ErrInvalidAlertLevel)
		}
		prev = l.Region
	}
	if c.CorrectiveRegion < RegionFar || c.CorrectiveRegion > RegionNear {
		return fmt.Errorf("corrective region %s: %w", c.CorrectiveRegion, ErrInvalidAlertLevel)
	}
	if !(c.HeadingStep > 0) || !(c.VerticalSpeedStep > 0) || !(c.MaxVerticalSpeed > 0) {
		return fmt.Errorf("resolution search steps must be positive")
	}
	return nil
}

const (
	axisHeading = iota
	axisVerticalSpeed
)

type regionKey struct {
	epoch uint64
	axis  int
	value float64
}

// WellClearEngine is a kinematic Engine: it projects both aircraft along
// straight lines and reports a candidate maneuver's region according to
// when the projected loss of well clear would begin. It never reports
// RegionRecovery; when every candidate is in conflict the resolutions are
// infinite.
type WellClearEngine struct {
	cfg WellClearConfig

	own, traffic         AircraftState
	haveOwn, haveTraffic bool
	wind                 wx.Wind

	// epoch changes whenever anything that affects a region query does.
	epoch uint64
	cache *lru.Cache[regionKey, Region]
}

// NewWellClearEngine returns an engine with its own copy of cfg; later
// changes to alerting times do not affect cfg or other engines.
func NewWellClearEngine(cfg WellClearConfig) *WellClearEngine {
	cfg = deep.MustCopy(cfg)
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultWellClearConfig().CacheSize
	}
	cache, err := lru.New[regionKey, Region](cfg.CacheSize)
	if err != nil {
		panic(err)
	}
	return &WellClearEngine{cfg: cfg, cache: cache}
}

// NewWellClearEngineFactory returns an EngineFactory producing independent
// engines configured with cfg.
func NewWellClearEngineFactory(cfg WellClearConfig) EngineFactory {
	return func() Engine { return NewWellClearEngine(cfg) }
}

func (e *WellClearEngine) invalidate() {
	e.epoch++
}

func (e *WellClearEngine) SetOwnshipState(id string, pos Position, vel Velocity, t float64) {
	e.own = AircraftState{ID: id, Position: pos, Velocity: vel, Time: t}
	e.haveOwn = true
	e.wind = wx.Wind{}
	e.invalidate()
}

func (e *WellClearEngine) AddTrafficState(id string, pos Position, vel Velocity, t float64) {
	e.traffic = AircraftState{ID: id, Position: pos, Velocity: vel, Time: t}
	e.haveTraffic = true
	e.wind = wx.Wind{}
	e.invalidate()
}

func (e *WellClearEngine) SetWindVelocity(w wx.Wind) {
	if w != e.wind {
		e.wind = w
		e.invalidate()
	}
}

func (e *WellClearEngine) Ownship() AircraftState {
	s := e.own
	s.Wind = e.wind
	return s
}

func (e *WellClearEngine) Traffic() AircraftState {
	s := e.traffic
	s.Wind = e.wind
	return s
}

func (e *WellClearEngine) CurrentTime() float64 {
	return e.own.Time
}

func (e *WellClearEngine) Thresholds() Thresholds {
	return e.cfg.Thresholds
}

func (e *WellClearEngine) LookaheadTime() float64 {
	return e.cfg.LookaheadTime
}

func (e *WellClearEngine) level(level int) (*AlertLevel, bool) {
	if level < 1 || level > len(e.cfg.Levels) {
		return nil, false
	}
	return &e.cfg.Levels[level-1], true
}

func (e *WellClearEngine) AlertingTime(level int) float64 {
	if l, ok := e.level(level); ok {
		return l.AlertingTime
	}
	return math.NaN()
}

// SetAlertingTime ignores unknown levels and non-finite or negative times.
func (e *WellClearEngine) SetAlertingTime(level int, t float64) {
	if l, ok := e.level(level); ok && math.IsFinite(t) && t >= 0 && l.AlertingTime != t {
		l.AlertingTime = t
		e.invalidate()
	}
}

// relative returns ownship-minus-traffic position and velocity in a local
// frame centered at the ownship, for the given ownship ground velocity.
func (e *WellClearEngine) relative(ownVel Velocity) (s, v [3]float64) {
	f := math.MakeLocalFrame(e.own.Position.Lat, e.own.Position.Lon)
	p := f.Project(e.traffic.Position.Lat, e.traffic.Position.Lon)
	s = [3]float64{-p[0], -p[1], e.own.Position.Alt - e.traffic.Position.Alt}
	v = math.Sub3(ownVel.Vector(), e.traffic.Velocity.Vector())
	return
}

func (e *WellClearEngine) regionOf(ownVel Velocity) Region {
	if !e.haveOwn || !e.haveTraffic {
		return RegionNone
	}
	s, v := e.relative(ownVel)
	iv := violation(s, v, e.cfg.Thresholds, e.cfg.LookaheadTime)
	if iv.Empty() {
		return RegionNone
	}
	r := RegionNone
	for _, l := range e.cfg.Levels {
		if iv.In <= l.AlertingTime && l.Region > r {
			r = l.Region
		}
	}
	return r
}

func (e *WellClearEngine) cachedRegion(axis int, value float64, candidate func() Velocity) Region {
	if !math.IsFinite(value) {
		return RegionUnknown
	}
	key := regionKey{epoch: e.epoch, axis: axis, value: value}
	if r, ok := e.cache.Get(key); ok {
		return r
	}
	r := e.regionOf(candidate().AddWind(e.wind))
	e.cache.Add(key, r)
	return r
}

func (e *WellClearEngine) RegionOfHeading(trk float64) Region {
	return e.cachedRegion(axisHeading, trk, func() Velocity {
		air := e.Ownship().AirVelocity()
		air.Trk = math.NormalizeAngle(trk)
		return air
	})
}

func (e *WellClearEngine) RegionOfVerticalSpeed(vs float64) Region {
	return e.cachedRegion(axisVerticalSpeed, vs, func() Velocity {
		air := e.Ownship().AirVelocity()
		air.VS = vs
		return air
	})
}

func (e *WellClearEngine) inConflict(r Region) bool {
	return r >= e.cfg.CorrectiveRegion
}

func (e *WellClearEngine) HeadingResolution(preferRight bool) float64 {
	cur := e.Ownship().AirVelocity().Trk
	if !e.inConflict(e.RegionOfHeading(cur)) {
		return math.NaN()
	}

	dir := 1.0
	if !preferRight {
		dir = -1
	}
	n := int(math.Floor(2 * math.Pi / e.cfg.HeadingStep))
	for k := 1; k < n; k++ {
		h := math.NormalizeAngle(cur + dir*float64(k)*e.cfg.HeadingStep)
		if !e.inConflict(e.RegionOfHeading(h)) {
			return h
		}
	}
	return math.Inf(int(dir))
}

func (e *WellClearEngine) VerticalSpeedResolution(preferUp bool) float64 {
	cur := e.Ownship().AirVelocity().VS
	if !e.inConflict(e.RegionOfVerticalSpeed(cur)) {
		return math.NaN()
	}

	dir := 1.0
	if !preferUp {
		dir = -1
	}
	for k := 1; ; k++ {
		vs := cur + dir*float64(k)*e.cfg.VerticalSpeedStep
		if math.Abs(vs) > e.cfg.MaxVerticalSpeed {
			break
		}
		if !e.inConflict(e.RegionOfVerticalSpeed(vs)) {
			return vs
		}
	}
	return math.Inf(int(dir))
}

func (e *WellClearEngine) TimeToCPA2D() float64 {
	if !e.haveOwn || !e.haveTraffic {
		return math.NaN()
	}
	s, v := e.relative(e.own.Velocity)
	return timeToCPA2D(math.XY(s), math.XY(v))
}

func (e *WellClearEngine) ViolationOfAlertThresholds(level int) ConflictData {
	cd := ConflictData{
		TimeIn:  math.Inf(1),
		TimeOut: math.Inf(-1),
		TCPA2D:  math.NaN(),
		TCOA:    -1,
	}
	l, ok := e.level(level)
	if !ok || !e.haveOwn || !e.haveTraffic {
		return cd
	}

	s, v := e.relative(e.own.Velocity)
	cd.TCPA2D = timeToCPA2D(math.XY(s), math.XY(v))
	cd.TCOA = timeToCoAltitude(s[2], v[2])
	if iv := violation(s, v, e.cfg.Thresholds, e.cfg.LookaheadTime); !iv.Empty() && iv.In <= l.AlertingTime {
		cd.Conflict = true
		cd.TimeIn, cd.TimeOut = iv.In, iv.Out
	}
	return cd
}

var _ Engine = (*WellClearEngine)(nil)
