// brakes/governor.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package brakes

import (
	"time"

	"github.com/mmp/autobrake/config"
	"github.com/mmp/autobrake/math"
	"github.com/mmp/autobrake/sim"
)

// DecelerationGovernor closes the loop between a target deceleration and
// the aircraft's measured acceleration, producing a brake command ratio
// in [0, 1] for the hydraulic brake circuit.
type DecelerationGovernor struct {
	kp, ki float64

	target       float64
	acceleration float64
	filter       math.LowPassFilter

	integral float64
	output   float64

	engaged     bool
	timeEngaged time.Duration
}

func NewDecelerationGovernor(cal config.GovernorCalibration) *DecelerationGovernor {
	return &DecelerationGovernor{
		kp:     cal.Kp,
		ki:     cal.Ki,
		filter: math.NewLowPassFilter(cal.AccelFilterTimeConstant),
	}
}

// EngageWhen engages or disengages the governor. Disengaging resets the
// time engaged, so that the next engagement starts its profile over.
func (g *DecelerationGovernor) EngageWhen(engage bool) {
	if engage {
		g.engaged = true
	} else {
		g.engaged = false
		g.timeEngaged = 0
	}
}

func (g *DecelerationGovernor) IsEngaged() bool {
	return g.engaged
}

func (g *DecelerationGovernor) TimeEngaged() time.Duration {
	return g.timeEngaged
}

func (g *DecelerationGovernor) Update(ctx sim.UpdateContext, target float64) {
	g.target = target
	g.acceleration = g.filter.Update(ctx.Delta, ctx.LongAccel)

	if !g.engaged {
		g.output = 0
		g.integral = 0
		return
	}

	g.timeEngaged += ctx.Delta

	// Positive error: not decelerating as hard as requested.
	err := g.acceleration - g.target
	dt := ctx.DeltaSeconds()

	// Conditional integration so the integral does not wind up while
	// the output is saturated.
	integral := g.integral + err*dt
	out := g.kp*err + g.ki*integral
	if (out < 1 || err < 0) && (out > 0 || err > 0) {
		g.integral = integral
	}
	g.output = math.Clamp(g.kp*err+g.ki*g.integral, 0, 1)
}

// Output returns the brake command ratio in [0, 1].
func (g *DecelerationGovernor) Output() float64 {
	return g.output
}

func (g *DecelerationGovernor) Target() float64 {
	return g.target
}

// Acceleration returns the filtered measured acceleration in m/s^2.
func (g *DecelerationGovernor) Acceleration() float64 {
	return g.acceleration
}

// IsOnTarget reports whether the aircraft decelerates by more than
// marginPercent of the target deceleration.
func (g *DecelerationGovernor) IsOnTarget(marginPercent float64) bool {
	return g.acceleration < g.target*marginPercent/100
}

// DeceleratingAtOrAboveRate reports whether the aircraft decelerates at
// least as hard as rate (a negative acceleration).
func (g *DecelerationGovernor) DeceleratingAtOrAboveRate(rate float64) bool {
	return g.acceleration <= rate
}
