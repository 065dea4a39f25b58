// sim/host.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"log/slog"
	"time"

	"github.com/mmp/autobrake/log"
	"github.com/mmp/autobrake/math"
)

// Updater is anything the host ticks: it receives the tick's context and
// exchanges signals with the bus.
type Updater interface {
	Tick(ctx UpdateContext, bus *Bus)
}

// UpdaterFunc adapts a function to the Updater interface.
type UpdaterFunc func(ctx UpdateContext, bus *Bus)

func (f UpdaterFunc) Tick(ctx UpdateContext, bus *Bus) {
	f(ctx, bus)
}

// Host runs the per-tick loop: it builds the UpdateContext from the
// session state and the bus, then ticks its updaters in the order they
// were added. Updaters never run concurrently.
type Host struct {
	Bus *Bus

	inFlight   bool
	readyAfter time.Duration
	elapsed    time.Duration
	ticks      int
	updaters   []Updater
	lg         *log.Logger
}

// NewHost returns a host for a session described by init. The simulation
// is reported ready once readyAfter has elapsed.
func NewHost(init InitContext, readyAfter time.Duration, lg *log.Logger) *Host {
	return &Host{
		Bus:        NewBus(),
		inFlight:   init.InFlight,
		readyAfter: readyAfter,
		lg:         lg,
	}
}

func (h *Host) Add(u ...Updater) {
	h.updaters = append(h.updaters, u...)
}

func (h *Host) Elapsed() time.Duration {
	return h.elapsed
}

func (h *Host) Ticks() int {
	return h.ticks
}

// Step advances the simulation by dt and returns the context that was
// used for the tick.
func (h *Host) Step(dt time.Duration) UpdateContext {
	h.elapsed += dt
	h.ticks++

	ctx := UpdateContext{
		Delta:     dt,
		Elapsed:   h.elapsed,
		InFlight:  h.inFlight,
		SimReady:  h.elapsed >= h.readyAfter,
		LongAccel: math.FeetToMeters(h.Bus.Float(LongAccelSignal)),
	}
	if h.ticks == 1 || (ctx.SimReady && ctx.Elapsed-dt < h.readyAfter) {
		h.lg.Debug("host tick", slog.Int("tick", h.ticks), slog.Bool("sim_ready", ctx.SimReady))
	}

	for _, u := range h.updaters {
		u.Tick(ctx, h.Bus)
	}
	return ctx
}
