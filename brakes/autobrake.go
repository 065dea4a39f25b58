// brakes/autobrake.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package brakes

import (
	"log/slog"
	"strings"

	"github.com/mmp/autobrake/config"
	"github.com/mmp/autobrake/log"
	"github.com/mmp/autobrake/logic"
	"github.com/mmp/autobrake/math"
	"github.com/mmp/autobrake/sim"
)

// Inputs are the values the controller takes from other aircraft systems
// each tick.
type Inputs struct {
	// ArmingAllowed is the brake control unit's authorization to arm.
	ArmingAllowed bool
	// Pedal deflections, in percent.
	LeftPedal, RightPedal float64
	// The two landing gear control units.
	Gear [2]GearSensor

	GroundSpoilersDeployed bool
}

// Controller is the autobrake mode logic. Each tick it decides which
// mode is armed, whether the deceleration governor is engaged, and which
// deceleration the governor should track.
type Controller struct {
	cal config.AutobrakeCalibration
	lg  *log.Logger

	governor *DecelerationGovernor
	btv      *BTVScheduler
	knob     *KnobSolenoid

	mode          Mode
	target        float64
	decelLight    bool
	armingAllowed bool

	leftPedal, rightPedal float64

	spoilersDeployed     bool
	lastSpoilersDeployed bool
	spoilersDeployedFor  *logic.DelayedTrueGate

	noseGearCompressedOnce bool

	disarmAfterFlight    *logic.DelayedPulseTrueGate
	rejectRTOAfterFlight *logic.DelayedTrueGate
	// Gives the pilot time to turn the knob past BTV without an
	// unprogrammed BTV sending it back to DISARM.
	knobDisarmDelay *logic.DelayedTrueGate

	externalDisarm bool
}

func NewController(init sim.InitContext, cal *config.Calibration, lg *log.Logger) *Controller {
	ac := cal.Autobrake
	return &Controller{
		cal:                 ac,
		lg:                  lg,
		governor:            NewDecelerationGovernor(cal.Governor),
		btv:                 NewBTVScheduler(cal.BTV, lg),
		knob:                NewKnobSolenoid(),
		mode:                ModeDisarm,
		armingAllowed:       init.InFlight,
		spoilersDeployedFor: logic.NewDelayedTrueGate(ac.SpoilersArmingDelay),
		disarmAfterFlight: logic.NewDelayedPulseTrueGate(ac.FlightDisarmDelay).
			StartingAs(init.InFlight, false),
		rejectRTOAfterFlight: logic.NewDelayedTrueGate(ac.FlightDisarmDelay).
			StartingAs(init.InFlight),
		knobDisarmDelay: logic.NewDelayedTrueGate(ac.KnobDisarmDelay),
	}
}

func (c *Controller) Update(ctx sim.UpdateContext, panel PanelInput, in Inputs) {
	c.updateInputConditions(ctx, in)

	rtoDeselected := c.mode == ModeRTO && panel.RTOPressed()

	prev := c.mode
	c.mode = c.determineMode(panel)
	if c.mode != prev {
		c.lg.Info("autobrake mode selected", slog.String("from", prev.String()),
			slog.String("to", c.mode.String()))
	}

	// The disarm actions are repeated while a condition holds, but only
	// leaving an armed mode is logged.
	if rtoDeselected {
		c.lg.Info("autobrake disarmed", slog.String("mode", c.mode.String()),
			slog.String("reason", "RTO pushbutton"))
		c.disarm()
	} else if c.shouldDisarm(ctx, panel) {
		if c.mode != ModeDisarm {
			c.lg.Info("autobrake disarmed", slog.String("mode", c.mode.String()),
				slog.String("reason", c.disarmReason(ctx, panel)))
		}
		c.disarm()
	}

	c.knobDisarmDelay.Update(ctx.Delta, c.mode == ModeDisarm || c.mode == ModeRTO)
	c.knob.Disarm(c.knobDisarmDelay.Output())

	wasEngaged := c.governor.IsEngaged()
	c.governor.EngageWhen(c.shouldEngageGovernor(ctx, panel))
	if engaged := c.governor.IsEngaged(); engaged != wasEngaged {
		c.lg.Info("deceleration governor", slog.Bool("engaged", engaged),
			slog.String("mode", c.mode.String()))
	}

	c.target = c.calculateTarget()
	c.governor.Update(ctx, c.target)
	c.updateDecelLight()

	c.btv.Update(ctx, c.spoilersDeployed)
}

func (c *Controller) updateInputConditions(ctx sim.UpdateContext, in Inputs) {
	c.lastSpoilersDeployed = c.spoilersDeployed
	c.spoilersDeployed = in.GroundSpoilersDeployed

	inFlight := true
	for _, g := range in.Gear {
		if g == nil {
			continue
		}
		inFlight = inFlight && !g.LeftMainGearCompressed() && !g.RightMainGearCompressed()
		// Latched until the next disarm.
		c.noseGearCompressedOnce = c.noseGearCompressedOnce || g.NoseGearCompressed()
	}

	c.spoilersDeployedFor.Update(ctx.Delta, c.spoilersDeployed)
	c.disarmAfterFlight.Update(ctx.Delta, inFlight)
	c.rejectRTOAfterFlight.Update(ctx.Delta, inFlight)

	c.armingAllowed = in.ArmingAllowed
	c.leftPedal = in.LeftPedal
	c.rightPedal = in.RightPedal
}

func (c *Controller) determineMode(panel PanelInput) Mode {
	if c.mode != ModeRTO && panel.RTOPressed() && !c.rejectRTOAfterFlight.Output() {
		return ModeRTO
	}
	if !panel.ModeChanged() {
		return c.mode
	}

	m := panel.SelectedMode().Mode()
	if m == ModeBTV {
		c.btv.Enable()
	}
	return m
}

func (c *Controller) disarm() {
	c.btv.Disarm()
	c.noseGearCompressedOnce = false
	c.mode = ModeDisarm
}

func (c *Controller) spoilersRetracted() bool {
	return c.lastSpoilersDeployed && !c.spoilersDeployed
}

func (c *Controller) pedalOverride() bool {
	var o config.PedalOverride
	switch {
	case c.mode == ModeRTO:
		o = c.cal.RTOPedalOverride
	case c.mode.IsLanding():
		o = c.cal.LandingPedalOverride
	default:
		return false
	}
	return c.leftPedal > o.Single || c.rightPedal > o.Single ||
		(c.leftPedal > o.Both && c.rightPedal > o.Both)
}

// disarmConditions returns the named conditions that force a disarm, in
// the order they are reported.
func (c *Controller) disarmConditions(ctx sim.UpdateContext, panel PanelInput) []struct {
	name string
	set  bool
} {
	return []struct {
		name string
		set  bool
	}{
		{"pedal override", c.governor.IsEngaged() && c.pedalOverride()},
		{"arming not allowed", ctx.SimReady && !c.armingAllowed},
		{"spoilers retracted", c.spoilersRetracted()},
		{"in flight", c.disarmAfterFlight.Output()},
		{"external disarm", c.externalDisarm && c.mode != ModeRTO},
		{"RTO in flight", c.mode == ModeRTO && c.rejectRTOAfterFlight.Output()},
		{"knob not at DISARM", c.mode == ModeDisarm && panel.SelectedMode() != KnobDisarm},
		{"BTV not armed", c.mode == ModeBTV && !c.btv.IsArmed()},
	}
}

func (c *Controller) shouldDisarm(ctx sim.UpdateContext, panel PanelInput) bool {
	for _, cond := range c.disarmConditions(ctx, panel) {
		if cond.set {
			return true
		}
	}
	return false
}

func (c *Controller) disarmReason(ctx sim.UpdateContext, panel PanelInput) string {
	var reasons []string
	for _, cond := range c.disarmConditions(ctx, panel) {
		if cond.set {
			reasons = append(reasons, cond.name)
		}
	}
	return strings.Join(reasons, ", ")
}

func (c *Controller) shouldEngageGovernor(ctx sim.UpdateContext, panel PanelInput) bool {
	// Spoilers must be out even once the nose gear is down.
	return c.mode != ModeDisarm && c.spoilersDeployed &&
		(c.spoilersDeployedFor.Output() || c.noseGearCompressedOnce) &&
		!c.shouldDisarm(ctx, panel)
}

func (c *Controller) profile() []float64 {
	switch c.mode {
	case ModeLow:
		return c.cal.LowProfile
	case ModeL2:
		return c.cal.L2Profile
	case ModeL3:
		return c.cal.L3Profile
	case ModeHigh:
		return c.cal.HighProfile
	default:
		return nil
	}
}

func (c *Controller) calculateTarget() float64 {
	switch c.mode {
	case ModeLow, ModeL2, ModeL3, ModeHigh:
		return math.Interpolate(c.cal.ProfileTimes, c.profile(), c.governor.TimeEngaged().Seconds())
	case ModeBTV:
		return c.btv.Decel()
	case ModeRTO:
		return c.cal.RTOTarget
	default:
		return c.cal.OffTarget
	}
}

func (c *Controller) decelerationDemanded() bool {
	return c.governor.IsEngaged() && c.target < 0
}

// updateDecelLight applies the on/off hysteresis of the DECEL light,
// relative to the target in the landing modes and to fixed rates in RTO.
func (c *Controller) updateDecelLight() {
	if !c.decelerationDemanded() {
		c.decelLight = false
		return
	}

	switch {
	case c.mode.IsLanding():
		if c.governor.IsOnTarget(c.cal.LightOnPercent) {
			c.decelLight = true
		} else if !c.governor.IsOnTarget(c.cal.LightOffPercent) {
			c.decelLight = false
		}
	case c.mode == ModeRTO:
		if c.governor.DeceleratingAtOrAboveRate(c.cal.RTOLightOn) {
			c.decelLight = true
		} else if !c.governor.DeceleratingAtOrAboveRate(c.cal.RTOLightOff) {
			c.decelLight = false
		}
	default:
		c.decelLight = false
	}
}

func (c *Controller) Mode() Mode {
	return c.mode
}

// Target returns the deceleration the governor was last asked to track,
// in m/s^2.
func (c *Controller) Target() float64 {
	return c.target
}

func (c *Controller) DecelLight() bool {
	return c.decelLight
}

// Active reports whether the autobrake is currently demanding
// deceleration.
func (c *Controller) Active() bool {
	return c.decelerationDemanded()
}

func (c *Controller) RTOArmed() bool {
	return c.mode == ModeRTO
}

// BrakeOutput returns the brake command ratio in [0, 1].
func (c *Controller) BrakeOutput() float64 {
	return c.governor.Output()
}

func (c *Controller) KnobDisarmRequested() bool {
	return c.knob.DisarmRequested()
}

func (c *Controller) Governor() *DecelerationGovernor {
	return c.governor
}

func (c *Controller) BTV() *BTVScheduler {
	return c.btv
}

func (c *Controller) Read(r sim.Reader) {
	c.externalDisarm = r.Bool(ExternalDisarmSignal)

	// The host may set the mode directly, e.g. when loading a saved
	// flight.
	if v, ok := r.Lookup(ArmedModeSignal); ok && v >= 0 {
		c.mode = ModeFromCode(v)
	}

	c.knob.Read(r)
	c.btv.Read(r)
}

func (c *Controller) Write(w sim.Writer) {
	w.SetFloat(ArmedModeSignal, float64(c.mode))
	w.SetBool(DecelLightSignal, c.decelLight)
	w.SetBool(ActiveSignal, c.decelerationDemanded())
	w.SetBool(RTOArmedSignal, c.mode == ModeRTO)
	w.SetFloat(BrakeCommandSignal, c.governor.Output())

	c.knob.Write(w)
	c.btv.Write(w)
}
