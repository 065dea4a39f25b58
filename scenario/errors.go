// scenario/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scenario

import "errors"

var (
	ErrMalformedScenario = errors.New("malformed scenario")
	ErrInvalidScenario   = errors.New("invalid scenario")
	ErrExpectationFailed = errors.New("scenario expectation not met")
)
