// daa/errors.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package daa

import (
	"errors"
)

var (
	ErrInvalidAlertLevel = errors.New("Invalid alert level")
	ErrInvalidThreshold  = errors.New("Invalid well-clear threshold")
	ErrUnknownRegion     = errors.New("Unknown region")
)
