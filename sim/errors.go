// sim/errors.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
)

var (
	ErrBadArchive        = errors.New("Not a vpsim results archive")
	ErrInvalidAlertLevel = errors.New("Invalid alert level")
	ErrInvalidParameter  = errors.New("Invalid simulation parameter")
	ErrNoIntruder        = errors.New("Scenario has no intruder")
	ErrNonFiniteCommand  = errors.New("Non-finite pilot command")
	ErrNonFiniteState    = errors.New("Non-finite initial state")
	ErrTrialPanicked     = errors.New("Trial panicked")
	ErrUnknownPolicy     = errors.New("Unknown policy")
)
