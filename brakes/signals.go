// brakes/signals.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package brakes

import (
	"fmt"

	"github.com/mmp/autobrake/sim"
)

// Bus signals read by the autobrake system.
const (
	SelectedModeSignal     = "AUTOBRAKES_SELECTED_MODE"
	RTOButtonSignal        = "AUTOBRK_RTO_ARM"
	ExternalDisarmSignal   = "AUTOBRAKE_DISARM"
	ArmingAllowedSignal    = "BCU_AUTOBRAKE_ARMING_ALLOWED"
	GroundSpoilersSignal   = "GROUND_SPOILERS_DEPLOYED"
	LeftPedalSignal        = "LEFT_BRAKE_PEDAL_INPUT"
	RightPedalSignal       = "RIGHT_BRAKE_PEDAL_INPUT"
	RunwayLengthSignal     = "OANS_RWY_LENGTH"
	DistanceToExitSignal   = "OANS_BTV_REMAINING_DIST_TO_EXIT"
	FallbackDistanceSignal = "OANS_BTV_REQ_STOPPING_DISTANCE"
	GroundSpeedSignal      = sim.GroundSpeedSignal
)

// Bus signals written by the autobrake system.
const (
	ArmedModeSignal         = "AUTOBRAKES_ARMED_MODE"
	DecelLightSignal        = "AUTOBRAKES_DECEL_LIGHT"
	ActiveSignal            = "AUTOBRAKES_ACTIVE"
	RTOArmedSignal          = "AUTOBRAKES_RTO_ARMED"
	DisarmKnobRequestSignal = "AUTOBRAKES_DISARM_KNOB_REQ"
	BrakeCommandSignal      = "AUTOBRAKES_BRAKE_COMMAND"
	BTVStateSignal          = "AUTOBRAKES_BTV_STATE"
)

// KnobSolenoidBus powers the selector knob's disarm solenoid.
const KnobSolenoidBus = sim.ElectricalBus("DC_2")

// GearSignal returns the name of the compression signal for the given
// gear ("LEFT", "RIGHT" or "NOSE") as reported by landing gear control
// unit 1 or 2.
func GearSignal(unit int, gear string) string {
	return fmt.Sprintf("LGCIU_%d_%s_GEAR_COMPRESSED", unit, gear)
}
