// scenario/run.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmp/autobrake/brakes"
	"github.com/mmp/autobrake/config"
	"github.com/mmp/autobrake/log"
	"github.com/mmp/autobrake/math"
	"github.com/mmp/autobrake/sim"
	"github.com/mmp/autobrake/trace"
)

type Options struct {
	// Loader provides calibrations; if nil, calibration files are read
	// directly.
	Loader *config.Loader
	Logger *log.Logger
	// TraceEvery records the bus every TraceEvery ticks; no trace is
	// recorded if it is zero.
	TraceEvery int
}

type Result struct {
	Name    string
	Ticks   int
	Elapsed time.Duration

	Status brakes.Status

	// State of the ground roll at the end of the run: distance in meters
	// and ground speed in m/s.
	Stopped     bool
	Distance    float64
	GroundSpeed float64

	DecelLightSeen bool
	// Failures lists the expectations that were not met.
	Failures []string

	Trace *trace.Trace
}

// Err returns an error describing the failed expectations, if any.
func (r *Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %w: %s", r.Name, ErrExpectationFailed, strings.Join(r.Failures, "; "))
}

// timeline applies the scenario's events to the bus as their times are
// reached.
type timeline struct {
	events []Event
	next   int
}

func (t *timeline) Tick(ctx sim.UpdateContext, bus *sim.Bus) {
	for t.next < len(t.events) && t.events[t.next].At <= ctx.Elapsed {
		for name, v := range t.events[t.next].Set {
			bus.SetFloat(name, v)
		}
		t.next++
	}
}

func loadCalibration(sc *Scenario, loader *config.Loader) (*config.Calibration, error) {
	path := sc.CalibrationPath()
	if loader != nil {
		return loader.Load(path)
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// Run runs a scenario to its end or, if requested, until the aircraft
// stops. It returns early with the context's error if ctx is canceled.
func Run(ctx context.Context, sc *Scenario, opts Options) (*Result, error) {
	cal, err := loadCalibration(sc, opts.Loader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sc.Name, err)
	}

	lg := opts.Logger.With(slog.String("scenario", sc.Name))
	init := sim.InitContext{InFlight: sc.InFlight}
	host := sim.NewHost(init, sc.ReadyAfter, lg)
	sys := brakes.NewSystem(init, cal, lg)

	roll := &sim.Rollout{
		GroundSpeed:        math.KnotsToMetersPerSecond(sc.Rollout.GroundSpeed),
		MaxBrakeDecel:      sc.Rollout.MaxBrakeDecel,
		Drag:               sc.Rollout.Drag,
		BrakeLag:           sc.Rollout.BrakeLag,
		ExitDistance:       -1,
		BrakeCommandSignal: brakes.BrakeCommandSignal,
		PedalSignals:       []string{brakes.LeftPedalSignal, brakes.RightPedalSignal},
	}
	if d := sc.Rollout.ExitDistance; d != nil && *d >= 0 {
		roll.ExitDistance = *d
		roll.DistanceToExitSignal = brakes.DistanceToExitSignal
	}

	// Events are applied first so that the system sees them in the same
	// tick; the rollout then responds to the previous tick's command.
	host.Add(&timeline{events: sc.Events}, roll, sys)

	var rec *trace.Recorder
	if opts.TraceEvery > 0 {
		rec = trace.NewRecorder(sc.Name, opts.TraceEvery)
		host.Add(rec)
	}

	lg.Info("scenario started", slog.Duration("duration", sc.Duration), slog.Duration("tick", sc.Tick))

	res := &Result{Name: sc.Name}
	for host.Elapsed() < sc.Duration {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		host.Step(sc.Tick)
		res.DecelLightSeen = res.DecelLightSeen || sys.Controller.DecelLight()

		if sc.StopWhenStopped && roll.Distance > 0 && roll.Stopped() {
			break
		}
	}

	res.Ticks = host.Ticks()
	res.Elapsed = host.Elapsed()
	res.Status = sys.Status()
	res.Stopped = roll.Stopped()
	res.Distance = roll.Distance
	res.GroundSpeed = roll.GroundSpeed
	if rec != nil {
		res.Trace = &rec.Trace
	}
	res.Failures = sc.Expect.check(res)

	lg.Info("scenario finished", slog.Int("ticks", res.Ticks), slog.String("mode", res.Status.Mode),
		slog.Float64("distance", res.Distance), slog.Bool("stopped", res.Stopped),
		slog.Int("failures", len(res.Failures)))

	return res, nil
}

// RunAll runs the scenarios in parallel. The results are in the same
// order as the scenarios; if any run fails, the first error is returned
// and the remaining runs are canceled.
func RunAll(ctx context.Context, scs []*Scenario, opts Options) ([]*Result, error) {
	results := make([]*Result, len(scs))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, sc := range scs {
		eg.Go(func() error {
			r, err := Run(ctx, sc, opts)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
