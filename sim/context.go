// sim/context.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"time"
)

// InitContext describes the session being started.
type InitContext struct {
	// InFlight is set when the session starts airborne rather than parked.
	InFlight bool
}

// UpdateContext carries what every component needs to know about the
// tick being computed.
type UpdateContext struct {
	Delta   time.Duration
	Elapsed time.Duration

	InFlight bool
	// SimReady is false during the first moments of a session, while
	// values read from the simulator may not be settled yet.
	SimReady bool

	// Longitudinal acceleration in m/s^2; negative when decelerating.
	LongAccel float64
}

func (ctx UpdateContext) DeltaSeconds() float64 {
	return ctx.Delta.Seconds()
}

// ElectricalBus identifies a power bus by name, e.g. "DC_2".
type ElectricalBus string

// PoweredSignal returns the name of the bus signal reporting whether the
// electrical bus is energized.
func (e ElectricalBus) PoweredSignal() string {
	return fmt.Sprintf("ELEC_%s_BUS_IS_POWERED", string(e))
}
