// trace/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package trace

import "errors"

var (
	ErrMalformedTrace = errors.New("malformed trace")
	ErrNoFrames       = errors.New("trace has no frames")
)
