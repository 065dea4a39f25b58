// sim/sim_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	gomath "math"
	"slices"
	"testing"
	"time"

	"github.com/mmp/autobrake/math"
)

func TestBus(t *testing.T) {
	b := NewBus()

	if _, ok := b.Lookup("AUTOBRAKES_ARMED_MODE"); ok {
		t.Errorf("expected unset signal to be missing")
	}
	if b.Float("AUTOBRAKES_ARMED_MODE") != 0 || b.Bool("AUTOBRAKES_ARMED_MODE") {
		t.Errorf("expected unset signal to read as zero")
	}
	if v := FloatOr(b, "OANS_RWY_LENGTH", -1); v != -1 {
		t.Errorf("expected default -1, got %v", v)
	}

	b.SetBool("AUTOBRAKES_DECEL_LIGHT", true)
	b.SetFloat("OANS_RWY_LENGTH", 3200)
	if !b.Bool("AUTOBRAKES_DECEL_LIGHT") || b.Float("AUTOBRAKES_DECEL_LIGHT") != 1 {
		t.Errorf("expected true to be stored as 1")
	}
	if v := FloatOr(b, "OANS_RWY_LENGTH", -1); v != 3200 {
		t.Errorf("expected 3200, got %v", v)
	}

	snap := b.Snapshot()
	b.SetBool("AUTOBRAKES_DECEL_LIGHT", false)
	if snap["AUTOBRAKES_DECEL_LIGHT"] != 1 {
		t.Errorf("snapshot changed after a later write")
	}

	if names := b.Names(); !slices.Equal(names, []string{"AUTOBRAKES_DECEL_LIGHT", "OANS_RWY_LENGTH"}) {
		t.Errorf("unexpected names %v", names)
	}
}

func TestElectricalBus(t *testing.T) {
	if s := ElectricalBus("DC_2").PoweredSignal(); s != "ELEC_DC_2_BUS_IS_POWERED" {
		t.Errorf("unexpected signal name %q", s)
	}
}

type recorder struct {
	ctxs []UpdateContext
	id   int
	seq  *[]int
}

func (r *recorder) Tick(ctx UpdateContext, bus *Bus) {
	r.ctxs = append(r.ctxs, ctx)
	*r.seq = append(*r.seq, r.id)
}

func TestHostStep(t *testing.T) {
	h := NewHost(InitContext{InFlight: true}, 250*time.Millisecond, nil)

	var seq []int
	a, b := &recorder{id: 1, seq: &seq}, &recorder{id: 2, seq: &seq}
	h.Add(a, b)

	h.Bus.SetFloat(LongAccelSignal, -10)
	for range 3 {
		h.Step(100 * time.Millisecond)
	}

	if !slices.Equal(seq, []int{1, 2, 1, 2, 1, 2}) {
		t.Errorf("updaters ran out of order: %v", seq)
	}
	if h.Ticks() != 3 || h.Elapsed() != 300*time.Millisecond {
		t.Errorf("expected 3 ticks / 300ms, got %d / %v", h.Ticks(), h.Elapsed())
	}

	if a.ctxs[0].SimReady || a.ctxs[1].SimReady || !a.ctxs[2].SimReady {
		t.Errorf("unexpected sim ready sequence %v %v %v", a.ctxs[0].SimReady,
			a.ctxs[1].SimReady, a.ctxs[2].SimReady)
	}
	if !a.ctxs[0].InFlight {
		t.Errorf("expected in-flight session")
	}
	if math.Abs(a.ctxs[0].LongAccel-(-3.048)) > 1e-9 {
		t.Errorf("expected -3.048 m/s^2, got %v", a.ctxs[0].LongAccel)
	}
	if a.ctxs[1].DeltaSeconds() != 0.1 {
		t.Errorf("expected 0.1s delta, got %v", a.ctxs[1].DeltaSeconds())
	}
}

func TestRollout(t *testing.T) {
	bus := NewBus()
	r := &Rollout{
		GroundSpeed:          60,
		MaxBrakeDecel:        6,
		Drag:                 0.5,
		ExitDistance:         1000,
		BrakeCommandSignal:   "AUTOBRAKES_BRAKE_COMMAND",
		PedalSignals:         []string{"LEFT_BRAKE_PEDAL_INPUT"},
		DistanceToExitSignal: "OANS_BTV_REMAINING_DIST_TO_EXIT",
	}
	ctx := UpdateContext{Delta: time.Second}

	// No braking: drag only.
	r.Tick(ctx, bus)
	if math.Abs(r.GroundSpeed-59.5) > 1e-9 {
		t.Errorf("expected 59.5 m/s, got %v", r.GroundSpeed)
	}
	if math.Abs(r.Distance-59.75) > 1e-9 {
		t.Errorf("expected 59.75 m, got %v", r.Distance)
	}
	if v := bus.Float(GroundSpeedSignal); math.Abs(math.KnotsToMetersPerSecond(v)-59.5) > 1e-9 {
		t.Errorf("expected ground speed on the bus, got %v kt", v)
	}
	if v := bus.Float(LongAccelSignal); math.Abs(math.FeetToMeters(v)+0.5) > 1e-9 {
		t.Errorf("expected -0.5 m/s^2 on the bus, got %v ft/s^2", v)
	}
	if v := bus.Float("OANS_BTV_REMAINING_DIST_TO_EXIT"); math.Abs(v-940.25) > 1e-9 {
		t.Errorf("expected 940.25 m to exit, got %v", v)
	}

	// Half brake command.
	bus.SetFloat("AUTOBRAKES_BRAKE_COMMAND", 0.5)
	r.Tick(ctx, bus)
	if math.Abs(r.GroundSpeed-56) > 1e-9 {
		t.Errorf("expected 56 m/s, got %v", r.GroundSpeed)
	}

	// A harder pedal input wins over the autobrake command.
	bus.SetFloat("LEFT_BRAKE_PEDAL_INPUT", 100)
	r.Tick(ctx, bus)
	if math.Abs(r.GroundSpeed-49.5) > 1e-9 {
		t.Errorf("expected 49.5 m/s, got %v", r.GroundSpeed)
	}

	for range 20 {
		r.Tick(ctx, bus)
	}
	if !r.Stopped() || r.GroundSpeed != 0 {
		t.Errorf("expected the aircraft to stop, got %v m/s", r.GroundSpeed)
	}
	if bus.Float(LongAccelSignal) != 0 {
		t.Errorf("expected no acceleration once stopped")
	}
	if v := bus.Float("OANS_BTV_REMAINING_DIST_TO_EXIT"); math.Abs(v-(1000-r.Distance)) > 1e-9 {
		t.Errorf("expected %v m to exit, got %v", 1000-r.Distance, v)
	}

	r = &Rollout{GroundSpeed: 30, ExitDistance: 10, DistanceToExitSignal: "D"}
	r.Tick(ctx, bus)
	if bus.Float("D") != 0 {
		t.Errorf("expected remaining distance floored at zero, got %v", bus.Float("D"))
	}

	r = &Rollout{GroundSpeed: 10, ExitDistance: -1, DistanceToExitSignal: "D"}
	r.Tick(ctx, bus)
	if bus.Float("D") != -1 {
		t.Errorf("expected -1 when no exit is planned")
	}
}

func TestRolloutBrakeLag(t *testing.T) {
	bus := NewBus()
	r := &Rollout{
		GroundSpeed:        50,
		MaxBrakeDecel:      4,
		BrakeLag:           time.Second,
		BrakeCommandSignal: "CMD",
	}
	ctx := UpdateContext{Delta: time.Second}

	r.Tick(ctx, bus)
	if r.GroundSpeed != 50 {
		t.Fatalf("expected no braking without a command, got %v m/s", r.GroundSpeed)
	}

	// Pressure builds up over the time constant.
	bus.SetFloat("CMD", 1)
	r.Tick(ctx, bus)
	expected := 50 - 4*(1-gomath.Exp(-1))
	if math.Abs(r.GroundSpeed-expected) > 1e-9 {
		t.Errorf("expected %v m/s, got %v", expected, r.GroundSpeed)
	}
	if a := math.FeetToMeters(bus.Float(LongAccelSignal)); a <= -4 || a >= -2 {
		t.Errorf("expected a partial deceleration, got %v m/s^2", a)
	}
}
