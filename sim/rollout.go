// sim/rollout.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"time"

	"github.com/mmp/autobrake/math"
)

// Rollout is a point-mass model of an aircraft rolling down the runway.
// Deceleration is proportional to the commanded brake ratio, plus a
// constant rolling and aerodynamic drag. It stands in for the hydraulic
// brake circuit and the airframe when running the autobrake in closed loop.
type Rollout struct {
	GroundSpeed float64 // m/s
	Distance    float64 // m rolled since the start of the session

	// Deceleration at full brake command and drag, both in m/s^2.
	MaxBrakeDecel float64
	Drag          float64
	// BrakeLag is the time constant of the brake pressure build-up
	// following a change of command.
	BrakeLag time.Duration

	// ExitDistance is the distance from the session start to the planned
	// runway exit; when negative, no distance-to-exit is published.
	ExitDistance float64

	// Signals read for the brake command and manual pedal braking
	// (percent) and written with the remaining distance to the exit.
	BrakeCommandSignal   string
	PedalSignals         []string
	DistanceToExitSignal string

	pressure math.LowPassFilter
}

// Tick integrates one step using the brake command left on the bus by the
// previous tick, then publishes ground speed, acceleration and distance
// to the exit.
func (r *Rollout) Tick(ctx UpdateContext, bus *Bus) {
	ratio := 0.
	if r.BrakeCommandSignal != "" {
		ratio = bus.Float(r.BrakeCommandSignal)
	}
	for _, p := range r.PedalSignals {
		ratio = max(ratio, bus.Float(p)/100)
	}
	r.pressure.TimeConstant = r.BrakeLag
	ratio = r.pressure.Update(ctx.Delta, math.Clamp(ratio, 0, 1))

	accel := 0.
	if r.GroundSpeed > 0 {
		accel = -(ratio*r.MaxBrakeDecel + r.Drag)
	}

	dt := ctx.DeltaSeconds()
	v0 := r.GroundSpeed
	r.GroundSpeed = max(0, v0+accel*dt)
	r.Distance += (v0 + r.GroundSpeed) / 2 * dt
	if r.GroundSpeed == 0 {
		accel = 0
	}

	bus.SetFloat(GroundSpeedSignal, math.MetersPerSecondToKnots(r.GroundSpeed))
	bus.SetFloat(LongAccelSignal, math.MetersToFeet(accel))
	if r.DistanceToExitSignal != "" {
		if r.ExitDistance >= 0 {
			bus.SetFloat(r.DistanceToExitSignal, max(0, r.ExitDistance-r.Distance))
		} else {
			bus.SetFloat(r.DistanceToExitSignal, -1)
		}
	}
}

func (r *Rollout) Stopped() bool {
	return r.GroundSpeed <= 0
}
