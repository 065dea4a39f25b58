// brakes/panel.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package brakes

import (
	"github.com/mmp/autobrake/sim"
)

// PanelInput is what the controller needs from the autobrake panel.
type PanelInput interface {
	SelectedMode() KnobPosition
	// ModeChanged reports whether the knob moved since the previous read.
	ModeChanged() bool
	// RTOPressed reports whether the RTO pushbutton was pressed during
	// this tick.
	RTOPressed() bool
}

// Panel is the autobrake selector knob plus the RTO pushbutton.
type Panel struct {
	selected   KnobPosition
	changed    bool
	rtoPressed bool
}

func NewPanel() *Panel {
	return &Panel{}
}

func (p *Panel) SelectedMode() KnobPosition { return p.selected }
func (p *Panel) ModeChanged() bool          { return p.changed }
func (p *Panel) RTOPressed() bool           { return p.rtoPressed }

// Set positions the knob and the pushbutton directly, for hosts and
// tests that drive the controller without a bus.
func (p *Panel) Set(knob KnobPosition, rtoPressed bool) {
	p.changed = knob != p.selected
	p.selected = knob
	p.rtoPressed = rtoPressed
}

func (p *Panel) Read(r sim.Reader) {
	var knob KnobPosition
	if v, ok := r.Lookup(SelectedModeSignal); ok {
		knob = KnobPositionFromCode(v)
	}
	p.changed = knob != p.selected
	p.selected = knob
	p.rtoPressed = r.Bool(RTOButtonSignal)
}

// Write clears the RTO pushbutton event so that a press is seen for a
// single tick.
func (p *Panel) Write(w sim.Writer) {
	w.SetBool(RTOButtonSignal, false)
}

// KnobSolenoid holds the selector knob in place electrically; releasing
// it springs the knob back to DISARM.
type KnobSolenoid struct {
	powered bool
	request bool
}

func NewKnobSolenoid() *KnobSolenoid {
	return &KnobSolenoid{powered: true}
}

// Disarm sets whether the knob should be returned to DISARM. The request
// only takes effect while the solenoid is powered.
func (s *KnobSolenoid) Disarm(should bool) {
	s.request = s.powered && should
}

func (s *KnobSolenoid) DisarmRequested() bool {
	return s.request
}

func (s *KnobSolenoid) Read(r sim.Reader) {
	if v, ok := r.Lookup(KnobSolenoidBus.PoweredSignal()); ok {
		s.powered = v != 0
	}
}

func (s *KnobSolenoid) Write(w sim.Writer) {
	w.SetBool(DisarmKnobRequestSignal, s.request)
}

// GearSensor reports weight-on-wheels for the three landing gears.
type GearSensor interface {
	LeftMainGearCompressed() bool
	RightMainGearCompressed() bool
	NoseGearCompressed() bool
}

// LandingGearUnit is one of the two landing gear control and interface
// units.
type LandingGearUnit struct {
	Unit int

	left, right, nose bool
}

func NewLandingGearUnit(unit int) *LandingGearUnit {
	return &LandingGearUnit{Unit: unit}
}

func (u *LandingGearUnit) LeftMainGearCompressed() bool  { return u.left }
func (u *LandingGearUnit) RightMainGearCompressed() bool { return u.right }
func (u *LandingGearUnit) NoseGearCompressed() bool      { return u.nose }

// Set sets the compression state directly.
func (u *LandingGearUnit) Set(left, right, nose bool) {
	u.left, u.right, u.nose = left, right, nose
}

func (u *LandingGearUnit) Read(r sim.Reader) {
	u.left = r.Bool(GearSignal(u.Unit, "LEFT"))
	u.right = r.Bool(GearSignal(u.Unit, "RIGHT"))
	u.nose = r.Bool(GearSignal(u.Unit, "NOSE"))
}

func (u *LandingGearUnit) Write(w sim.Writer) {}

// BrakePedals are the pilots' toe brakes, in percent of full deflection.
type BrakePedals struct {
	Left, Right float64
}

func (p *BrakePedals) Read(r sim.Reader) {
	p.Left = r.Float(LeftPedalSignal)
	p.Right = r.Float(RightPedalSignal)
}

func (p *BrakePedals) Write(w sim.Writer) {}
