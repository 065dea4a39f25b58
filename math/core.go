// math/core.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
	"time"

	"golang.org/x/exp/constraints"
)

func Sqrt(a float64) float64 {
	return gomath.Sqrt(a)
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

func Lerp(x, a, b float64) float64 {
	return (1-x)*a + x*b
}

// Interpolate evaluates the piecewise-linear function given by the
// breakpoints (xs[i], ys[i]) at x. xs must be sorted in increasing
// order and have the same length as ys. Outside of the breakpoint range
// the first or last y value is returned.
func Interpolate(xs, ys []float64, x float64) float64 {
	n := len(xs)
	if n == 0 || len(ys) != n {
		return 0
	}
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}

	for i := 1; i < n; i++ {
		if x <= xs[i] {
			dx := xs[i] - xs[i-1]
			if dx <= 0 {
				return ys[i]
			}
			return Lerp((x-xs[i-1])/dx, ys[i-1], ys[i])
		}
	}
	return ys[n-1]
}

// LowPassFilter is a first-order exponential smoothing filter.
type LowPassFilter struct {
	TimeConstant time.Duration
	output       float64
	primed       bool
}

func NewLowPassFilter(tc time.Duration) LowPassFilter {
	return LowPassFilter{TimeConstant: tc}
}

// Update feeds a new sample taken dt after the previous one and returns
// the filtered value. The first sample initializes the filter.
func (f *LowPassFilter) Update(dt time.Duration, sample float64) float64 {
	if !f.primed || f.TimeConstant <= 0 {
		f.output = sample
		f.primed = true
		return f.output
	}
	alpha := 1 - gomath.Exp(-dt.Seconds()/f.TimeConstant.Seconds())
	f.output += (sample - f.output) * alpha
	return f.output
}

func (f *LowPassFilter) Output() float64 {
	return f.output
}

func (f *LowPassFilter) Reset(v float64) {
	f.output = v
	f.primed = true
}
