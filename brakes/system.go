// brakes/system.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package brakes

import (
	"github.com/mmp/autobrake/config"
	"github.com/mmp/autobrake/log"
	"github.com/mmp/autobrake/sim"
)

// System is the autobrake as installed in the aircraft: the panel, the
// sensors it listens to and the controller, exchanging signals with the
// bus once per tick.
type System struct {
	Panel      *Panel
	Gear       [2]*LandingGearUnit
	Pedals     *BrakePedals
	Controller *Controller

	armingAllowed    bool
	spoilersDeployed bool
}

func NewSystem(init sim.InitContext, cal *config.Calibration, lg *log.Logger) *System {
	return &System{
		Panel:         NewPanel(),
		Gear:          [2]*LandingGearUnit{NewLandingGearUnit(1), NewLandingGearUnit(2)},
		Pedals:        &BrakePedals{},
		Controller:    NewController(init, cal, lg),
		armingAllowed: init.InFlight,
	}
}

func (s *System) elements() []sim.Element {
	return []sim.Element{s.Panel, s.Gear[0], s.Gear[1], s.Pedals, s.Controller}
}

// Tick reads every element from the bus, updates the controller and
// writes every element's outputs back.
func (s *System) Tick(ctx sim.UpdateContext, bus *sim.Bus) {
	for _, e := range s.elements() {
		e.Read(bus)
	}
	// An absent authorization keeps the previous value.
	if v, ok := bus.Lookup(ArmingAllowedSignal); ok {
		s.armingAllowed = v != 0
	}
	s.spoilersDeployed = bus.Bool(GroundSpoilersSignal)

	s.Controller.Update(ctx, s.Panel, Inputs{
		ArmingAllowed:          s.armingAllowed,
		LeftPedal:              s.Pedals.Left,
		RightPedal:             s.Pedals.Right,
		Gear:                   [2]GearSensor{s.Gear[0], s.Gear[1]},
		GroundSpoilersDeployed: s.spoilersDeployed,
	})

	for _, e := range s.elements() {
		e.Write(bus)
	}
}

// Status is a snapshot of the system's state for diagnostics.
type Status struct {
	Mode          string
	Knob          string
	Target        float64
	BrakeCommand  float64
	Acceleration  float64
	DecelLight    bool
	Active        bool
	RTOArmed      bool
	KnobDisarmReq bool
	Engaged       bool
	TimeEngaged   float64
	BTV           BTVStatus
}

func (s *System) Status() Status {
	c := s.Controller
	return Status{
		Mode:          c.Mode().String(),
		Knob:          s.Panel.SelectedMode().String(),
		Target:        c.Target(),
		BrakeCommand:  c.BrakeOutput(),
		Acceleration:  c.governor.Acceleration(),
		DecelLight:    c.DecelLight(),
		Active:        c.Active(),
		RTOArmed:      c.RTOArmed(),
		KnobDisarmReq: c.KnobDisarmRequested(),
		Engaged:       c.governor.IsEngaged(),
		TimeEngaged:   c.governor.TimeEngaged().Seconds(),
		BTV:           c.btv.Status(),
	}
}
