// config/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package config

import (
	"errors"
)

var (
	ErrInvalidProfile       = errors.New("Invalid deceleration profile")
	ErrInvalidThreshold     = errors.New("Invalid threshold")
	ErrMalformedCalibration = errors.New("Malformed calibration file")
)
