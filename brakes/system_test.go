// brakes/system_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package brakes

import (
	"testing"

	"github.com/mmp/autobrake/config"
	"github.com/mmp/autobrake/sim"
)

func newTestSystem(bus *sim.Bus) *System {
	for unit := 1; unit <= 2; unit++ {
		for _, gear := range []string{"LEFT", "RIGHT", "NOSE"} {
			bus.SetBool(GearSignal(unit, gear), true)
		}
	}
	bus.SetBool(ArmingAllowedSignal, true)
	return NewSystem(sim.InitContext{}, config.Default(), nil)
}

func TestSystemLanding(t *testing.T) {
	bus := sim.NewBus()
	s := newTestSystem(bus)

	bus.SetFloat(SelectedModeSignal, float64(KnobL2))
	s.Tick(tickCtx, bus)
	if v := bus.Float(ArmedModeSignal); v != float64(ModeL2) {
		t.Fatalf("expected L2 on the bus, got %v", v)
	}
	if bus.Bool(ActiveSignal) || bus.Float(BrakeCommandSignal) != 0 {
		t.Errorf("expected no braking before touchdown")
	}

	bus.SetBool(GroundSpoilersSignal, true)
	for range 30 {
		s.Tick(tickCtx, bus)
	}
	if !bus.Bool(ActiveSignal) {
		t.Errorf("expected the autobrake active")
	}
	if v := bus.Float(BrakeCommandSignal); v <= 0 || v > 1 {
		t.Errorf("expected a brake command in (0, 1], got %v", v)
	}
	if st := s.Status(); st.Mode != "L2" || st.Target != -2.5 || !st.Engaged {
		t.Errorf("unexpected status %+v", st)
	}

	bus.SetFloat(LeftPedalSignal, 90)
	s.Tick(tickCtx, bus)
	if v := bus.Float(ArmedModeSignal); v != float64(ModeDisarm) {
		t.Errorf("expected DISARM on the bus, got %v", v)
	}
	if bus.Float(BrakeCommandSignal) != 0 {
		t.Errorf("expected the brake command released")
	}
}

func TestSystemRTOButton(t *testing.T) {
	bus := sim.NewBus()
	s := newTestSystem(bus)
	s.Tick(tickCtx, bus)

	bus.SetBool(RTOButtonSignal, true)
	s.Tick(tickCtx, bus)
	if !bus.Bool(RTOArmedSignal) || bus.Float(ArmedModeSignal) != float64(ModeRTO) {
		t.Fatalf("expected RTO armed on the bus")
	}
	if bus.Bool(RTOButtonSignal) {
		t.Errorf("expected the button event to be cleared")
	}

	s.Tick(tickCtx, bus)
	if !bus.Bool(RTOArmedSignal) {
		t.Errorf("expected RTO to stay armed without a new press")
	}

	bus.SetBool(RTOButtonSignal, true)
	s.Tick(tickCtx, bus)
	if bus.Bool(RTOArmedSignal) {
		t.Errorf("expected a second press to disarm RTO")
	}
}

func TestSystemArmingAllowedHeld(t *testing.T) {
	bus := sim.NewBus()
	s := NewSystem(sim.InitContext{InFlight: true}, config.Default(), nil)
	bus.SetFloat(SelectedModeSignal, float64(KnobLow))
	s.Tick(tickCtx, bus)
	if s.Controller.Mode() != ModeLow {
		t.Fatalf("expected LOW with arming allowed from the in-flight start, got %s", s.Controller.Mode())
	}

	bus.SetBool(ArmingAllowedSignal, false)
	s.Tick(tickCtx, bus)
	if s.Controller.Mode() != ModeDisarm {
		t.Errorf("expected DISARM once arming is withdrawn, got %s", s.Controller.Mode())
	}
}

func TestSystemBTVOnBus(t *testing.T) {
	bus := sim.NewBus()
	s := newTestSystem(bus)
	bus.SetFloat(RunwayLengthSignal, 3000)
	bus.SetFloat(DistanceToExitSignal, 1800)
	bus.SetFloat(GroundSpeedSignal, 120)

	bus.SetFloat(SelectedModeSignal, float64(KnobBTV))
	s.Tick(tickCtx, bus)
	if bus.Float(ArmedModeSignal) != float64(ModeBTV) {
		t.Fatalf("expected BTV armed, got %v", bus.Float(ArmedModeSignal))
	}
	if bus.Float(BTVStateSignal) != float64(BTVArmed) {
		t.Errorf("expected BTV state ARMED on the bus, got %v", bus.Float(BTVStateSignal))
	}

	bus.SetBool(GroundSpoilersSignal, true)
	s.Tick(tickCtx, bus)
	if bus.Float(BTVStateSignal) != float64(BTVRotOptimization) {
		t.Errorf("expected ROT_OPTIMIZATION on the bus, got %v", bus.Float(BTVStateSignal))
	}
	if s.Status().BTV.State != "ROT_OPTIMIZATION" {
		t.Errorf("unexpected BTV status %+v", s.Status().BTV)
	}
}
