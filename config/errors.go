// config/errors.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package config

import "errors"

var (
	ErrInvalidConfig     = errors.New("Invalid configuration")
	ErrBadEnvironment    = errors.New("Invalid environment variable")
	ErrUnknownAlertLevel = errors.New("Alert level not defined by the engine")
)
