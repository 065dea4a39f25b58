// brakes/btv.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package brakes

import (
	"log/slog"
	gomath "math"

	"github.com/mmp/autobrake/config"
	"github.com/mmp/autobrake/log"
	"github.com/mmp/autobrake/math"
	"github.com/mmp/autobrake/sim"
)

// BTVScheduler is the brake-to-vacate controller: given the distance
// left to the planned runway exit and the current ground speed, it
// continuously recomputes the deceleration that brings the aircraft to
// the exit at taxi speed.
//
// Distances are in meters, speeds in m/s and accelerations in m/s^2.
type BTVScheduler struct {
	cal config.BTVCalibration
	lg  *log.Logger

	state BTVState

	runwayLength    float64
	rollingDistance float64
	// Two sources for the distance to the exit: the live distance
	// computed from the airport map, and a distance from touchdown used
	// when the former is unavailable (negative).
	distanceToExit       float64
	fallbackExitDistance float64

	groundSpeed       float64
	spoilersActive    bool
	decelRequest      float64
	endOfBrakingDecel float64

	finalDistanceRemaining float64
	// Braking distance remaining when the Decel state was entered; the
	// safety margin is scaled by the fraction of it still ahead.
	distanceAtDecelActivation float64
}

func NewBTVScheduler(cal config.BTVCalibration, lg *log.Logger) *BTVScheduler {
	s := &BTVScheduler{
		cal:                  cal,
		lg:                   lg,
		distanceToExit:       -1,
		fallbackExitDistance: -1,
	}
	s.Disarm()
	return s
}

func (s *BTVScheduler) State() BTVState {
	return s.state
}

// Enable arms the scheduler if it is disabled and arming is authorized;
// otherwise it does nothing.
func (s *BTVScheduler) Enable() {
	if s.state == BTVDisabled && s.ArmingAuthorized() {
		s.setState(BTVArmed)
	}
}

// Disarm returns the scheduler to Disabled and resets everything it
// accumulated to neutral values.
func (s *BTVScheduler) Disarm() {
	s.setState(BTVDisabled)
	s.rollingDistance = 0
	s.decelRequest = s.cal.NeutralDecel
	s.endOfBrakingDecel = s.cal.NeutralDecel
	s.finalDistanceRemaining = 0
	s.distanceAtDecelActivation = 0
}

// IsArmed reports whether the scheduler is anywhere in its armed family
// of states.
func (s *BTVScheduler) IsArmed() bool {
	return s.state != BTVDisabled
}

// ArmingAuthorized reports whether the runway is long enough and at least
// one of the exit distances is valid.
func (s *BTVScheduler) ArmingAuthorized() bool {
	return s.runwayLength >= s.cal.MinRunwayLength &&
		(s.distanceToExit >= 0 || s.fallbackExitDistance >= 0)
}

// Decel returns the deceleration the autobrake should target.
func (s *BTVScheduler) Decel() float64 {
	switch s.state {
	case BTVDecel, BTVOutOfDecelRange:
		return s.decelRequest
	case BTVEndOfBraking:
		return s.endOfBrakingDecel
	case BTVRotOptimization:
		return s.cal.MaxDryDecel * s.cal.RotOptimizationFraction
	default:
		return s.cal.NeutralDecel
	}
}

func (s *BTVScheduler) Update(ctx sim.UpdateContext, spoilersActive bool) {
	s.spoilersActive = spoilersActive
	s.integrateDistance(ctx)
	s.computeDecel()
	s.updateState()
}

func (s *BTVScheduler) integrateDistance(ctx sim.UpdateContext) {
	if s.state.braking() {
		s.rollingDistance += s.groundSpeed * ctx.DeltaSeconds()
	} else {
		s.rollingDistance = 0
	}
}

func (s *BTVScheduler) fallbackMode() bool {
	return s.distanceToExit < 0
}

// BrakingDistanceRemaining returns the distance left before the point
// where BTV releases the brakes, short of the exit itself.
func (s *BTVScheduler) BrakingDistanceRemaining() float64 {
	raw := s.distanceToExit
	if s.fallbackMode() {
		raw = s.fallbackExitDistance - s.rollingDistance
	}
	return max(0, raw-s.cal.ReleaseDistanceOffset)
}

// RequiredDeceleration returns the constant deceleration that brings
// groundSpeed down to the release speed (with 10% margin) within
// distance.
func (s *BTVScheduler) RequiredDeceleration(groundSpeed, distance float64) float64 {
	dv := groundSpeed - s.cal.ReleaseSpeed*s.cal.ReleaseSpeedFactor
	if distance <= 0 {
		if dv == 0 {
			return 0
		}
		return gomath.Inf(-1)
	}
	return -math.Sqr(dv) / (2 * distance)
}

func (s *BTVScheduler) computeDecel() {
	if !s.state.braking() {
		s.decelRequest = s.cal.NeutralDecel
		return
	}

	s.finalDistanceRemaining = s.BrakingDistanceRemaining()
	raw := s.RequiredDeceleration(s.groundSpeed, s.finalDistanceRemaining)
	margin := s.SafetyMargin()
	s.decelRequest = math.Clamp(raw*margin, s.cal.MaxDryDecel, s.cal.NeutralDecel)

	s.lg.Debug("BTV deceleration",
		slog.String("state", s.state.String()),
		slog.Float64("rolling_distance", s.rollingDistance),
		slog.Float64("remaining", s.finalDistanceRemaining),
		slog.Float64("ground_speed", s.groundSpeed),
		slog.Float64("raw", raw),
		slog.Float64("margin", margin),
		slog.Float64("request", s.decelRequest))
}

// SafetyMargin returns the factor applied to the required deceleration.
// It is at its maximum until braking starts, then shrinks as the braking
// distance is consumed.
func (s *BTVScheduler) SafetyMargin() float64 {
	switch s.state {
	case BTVDecel, BTVEndOfBraking, BTVOutOfDecelRange:
		if s.distanceAtDecelActivation <= 0 {
			return s.cal.MinMargin
		}
		ratio := s.BrakingDistanceRemaining() / s.distanceAtDecelActivation
		return math.Clamp(1+s.cal.MarginGain*math.Sqrt(ratio), s.cal.MinMargin, s.cal.MaxMargin)
	default:
		return s.cal.MaxMargin
	}
}

func (s *BTVScheduler) updateState() {
	switch s.state {
	case BTVArmed:
		if s.spoilersActive {
			s.setState(BTVRotOptimization)
		} else if !s.ArmingAuthorized() {
			s.setState(BTVDisabled)
		}

	case BTVRotOptimization:
		if s.decelRequest <= s.cal.MaxDryDecel*s.cal.StartBrakingFraction {
			s.distanceAtDecelActivation = s.BrakingDistanceRemaining()
			s.endOfBrakingDecel = s.decelRequest
			s.setState(BTVDecel)
		}

	case BTVDecel:
		if s.finalDistanceRemaining < s.cal.EndOfBrakingDistance || s.groundSpeed <= s.cal.ReleaseSpeed {
			s.setState(BTVEndOfBraking)
		}

	case BTVEndOfBraking:
		if s.groundSpeed <= s.cal.ReleaseSpeed {
			s.Disarm()
		} else {
			// Deceleration is negative: the minimum is the hardest
			// braking seen, which is held until release.
			s.endOfBrakingDecel = min(s.endOfBrakingDecel, s.decelRequest)
		}
	}
}

func (s *BTVScheduler) setState(st BTVState) {
	if st != s.state {
		s.lg.Info("BTV state change", slog.String("from", s.state.String()),
			slog.String("to", st.String()), slog.Float64("remaining", s.BrakingDistanceRemaining()),
			slog.Float64("ground_speed", s.groundSpeed))
	}
	s.state = st
}

func (s *BTVScheduler) Read(r sim.Reader) {
	s.fallbackExitDistance = sim.FloatOr(r, FallbackDistanceSignal, -1)
	s.runwayLength = r.Float(RunwayLengthSignal)
	s.distanceToExit = sim.FloatOr(r, DistanceToExitSignal, -1)
	s.groundSpeed = math.KnotsToMetersPerSecond(r.Float(GroundSpeedSignal))
}

func (s *BTVScheduler) Write(w sim.Writer) {
	w.SetFloat(FallbackDistanceSignal, s.fallbackExitDistance)
	w.SetFloat(RunwayLengthSignal, s.runwayLength)
	w.SetFloat(BTVStateSignal, float64(s.state))
}

// SetRunway sets the runway and exit data directly, for hosts that do not
// go through the bus.
func (s *BTVScheduler) SetRunway(runwayLength, distanceToExit, fallbackExitDistance float64) {
	s.runwayLength = runwayLength
	s.distanceToExit = distanceToExit
	s.fallbackExitDistance = fallbackExitDistance
}

// SetGroundSpeed sets the ground speed in m/s.
func (s *BTVScheduler) SetGroundSpeed(gs float64) {
	s.groundSpeed = gs
}

type BTVStatus struct {
	State                    string
	RollingDistance          float64
	BrakingDistanceRemaining float64
	GroundSpeed              float64
	DecelRequest             float64
	EndOfBrakingDecel        float64
	SafetyMargin             float64
	ReferenceDistance        float64
}

func (s *BTVScheduler) Status() BTVStatus {
	return BTVStatus{
		State:                    s.state.String(),
		RollingDistance:          s.rollingDistance,
		BrakingDistanceRemaining: s.BrakingDistanceRemaining(),
		GroundSpeed:              s.groundSpeed,
		DecelRequest:             s.decelRequest,
		EndOfBrakingDecel:        s.endOfBrakingDecel,
		SafetyMargin:             s.SafetyMargin(),
		ReferenceDistance:        s.distanceAtDecelActivation,
	}
}
