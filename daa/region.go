// daa/region.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package daa

import (
	"fmt"
	"strings"
)

// Region classifies a candidate heading or vertical speed by the severity
// of the conflict it would lead to. Regions are totally ordered, so
// comparisons like r >= RegionMid are meaningful.
type Region int

const (
	RegionUnknown  Region = -1
	RegionNone     Region = 0
	RegionFar      Region = 1
	RegionMid      Region = 2
	RegionNear     Region = 3
	RegionRecovery Region = 4
)

var regionNames = map[Region]string{
	RegionUnknown:  "UNKNOWN",
	RegionNone:     "NONE",
	RegionFar:      "FAR",
	RegionMid:      "MID",
	RegionNear:     "NEAR",
	RegionRecovery: "RECOVERY",
}

func (r Region) String() string {
	if s, ok := regionNames[r]; ok {
		return s
	}
	return fmt.Sprintf("Region(%d)", int(r))
}

// IsConflict reports whether r is at or above the given level.
func (r Region) IsConflict(level Region) bool {
	return r >= level
}

// ParseRegion accepts the region names (case-insensitive) as well as their
// numeric values.
func ParseRegion(s string) (Region, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for r, name := range regionNames {
		if s == name || s == fmt.Sprint(int(r)) {
			return r, nil
		}
	}
	return RegionUnknown, fmt.Errorf("%q: %w", s, ErrUnknownRegion)
}

func (r *Region) UnmarshalText(text []byte) error {
	v, err := ParseRegion(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func (r Region) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
