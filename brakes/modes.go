// brakes/modes.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package brakes

// KnobPosition is the position of the autobrake selector knob.
type KnobPosition int

const (
	KnobDisarm KnobPosition = iota
	KnobBTV
	KnobLow
	KnobL2
	KnobL3
	KnobHigh
)

// KnobPositionFromCode decodes the knob position published on the bus;
// anything unrecognized is taken as Disarm.
func KnobPositionFromCode(v float64) KnobPosition {
	if !(v >= 0 && v < float64(KnobHigh)+1) {
		return KnobDisarm
	}
	return KnobPosition(int(v))
}

func (k KnobPosition) String() string {
	return k.Mode().String()
}

// Mode returns the autobrake mode the knob position selects.
func (k KnobPosition) Mode() Mode {
	switch k {
	case KnobBTV:
		return ModeBTV
	case KnobLow:
		return ModeLow
	case KnobL2:
		return ModeL2
	case KnobL3:
		return ModeL3
	case KnobHigh:
		return ModeHigh
	default:
		return ModeDisarm
	}
}

// Mode is the armed autobrake mode. It mirrors the knob positions, plus
// RTO, which is only reachable through the RTO pushbutton.
type Mode int

const (
	ModeDisarm Mode = iota
	ModeBTV
	ModeLow
	ModeL2
	ModeL3
	ModeHigh
	ModeRTO
)

// ModeFromCode decodes a mode published on the bus; anything
// unrecognized is taken as Disarm.
func ModeFromCode(v float64) Mode {
	if !(v >= 0 && v < float64(ModeRTO)+1) {
		return ModeDisarm
	}
	return Mode(int(v))
}

func (m Mode) String() string {
	switch m {
	case ModeDisarm:
		return "DISARM"
	case ModeBTV:
		return "BTV"
	case ModeLow:
		return "LOW"
	case ModeL2:
		return "L2"
	case ModeL3:
		return "L3"
	case ModeHigh:
		return "HIGH"
	case ModeRTO:
		return "RTO"
	default:
		return "UNKNOWN"
	}
}

// IsLanding reports whether m is one of the landing modes, BTV included.
func (m Mode) IsLanding() bool {
	switch m {
	case ModeBTV, ModeLow, ModeL2, ModeL3, ModeHigh:
		return true
	default:
		return false
	}
}

// BTVState is the state of the brake-to-vacate scheduler.
type BTVState int

const (
	BTVDisabled BTVState = iota
	BTVArmed
	BTVRotOptimization
	BTVDecel
	BTVEndOfBraking
	// BTVOutOfDecelRange is reserved: nothing transitions into it yet,
	// but it computes its request like BTVDecel.
	BTVOutOfDecelRange
)

func (s BTVState) String() string {
	names := [...]string{"DISABLED", "ARMED", "ROT_OPTIMIZATION", "DECEL", "END_OF_BRAKING",
		"OUT_OF_DECEL_RANGE"}
	if s < 0 || int(s) >= len(names) {
		return "UNKNOWN"
	}
	return names[s]
}

// braking reports whether the aircraft is rolling under BTV control.
func (s BTVState) braking() bool {
	return s == BTVRotOptimization || s == BTVDecel || s == BTVEndOfBraking || s == BTVOutOfDecelRange
}
