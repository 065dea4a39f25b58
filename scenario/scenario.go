// scenario/scenario.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package scenario defines closed-loop autobrake runs in YAML: a timeline
// of signal writes on the bus, a simple ground-roll model and optional
// expectations about how the run ends.
package scenario

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mmp/autobrake/brakes"
)

type Scenario struct {
	Name string `yaml:"name"`

	Tick     time.Duration `yaml:"tick"`
	Duration time.Duration `yaml:"duration"`
	// ReadyAfter is how long the simulation takes to settle after
	// start; see sim.UpdateContext.SimReady.
	ReadyAfter time.Duration `yaml:"ready_after"`
	InFlight   bool          `yaml:"in_flight"`

	// Calibration is a calibration file, relative to the scenario file;
	// the default calibration is used if empty.
	Calibration string `yaml:"calibration"`

	Rollout Rollout `yaml:"rollout"`
	Events  []Event `yaml:"events"`

	// StopWhenStopped ends the run early once the aircraft is at rest.
	StopWhenStopped bool `yaml:"stop_when_stopped"`

	Expect *Expectation `yaml:"expect"`

	// Path of the file the scenario was loaded from, if any.
	Path string `yaml:"-"`
}

// Rollout gives the initial conditions and parameters of the ground-roll
// model.
type Rollout struct {
	GroundSpeed   float64       `yaml:"ground_speed_kt"`
	MaxBrakeDecel float64       `yaml:"max_brake_decel_ms2"`
	Drag          float64       `yaml:"drag_ms2"`
	BrakeLag      time.Duration `yaml:"brake_lag"`
	// Distance from the start of the run to the planned exit. Omitted
	// or negative if no exit is planned.
	ExitDistance *float64 `yaml:"exit_distance_m"`
}

// Event writes signal values on the bus once the run reaches At.
type Event struct {
	At  time.Duration      `yaml:"at"`
	Set map[string]float64 `yaml:"set"`
}

// Expectation describes how a run should end. Empty fields are not
// checked.
type Expectation struct {
	Mode        string   `yaml:"mode"`
	BTVState    string   `yaml:"btv_state"`
	Stopped     *bool    `yaml:"stopped"`
	MinDistance *float64 `yaml:"min_distance_m"`
	MaxDistance *float64 `yaml:"max_distance_m"`
	// DecelLightSeen requires the DECEL light to have been on at some
	// point during the run.
	DecelLightSeen bool `yaml:"decel_light_seen"`
}

const (
	defaultTick       = 50 * time.Millisecond
	defaultReadyAfter = 500 * time.Millisecond
)

func validMode(name string) bool {
	for m := brakes.ModeDisarm; m <= brakes.ModeRTO; m++ {
		if m.String() == name {
			return true
		}
	}
	return false
}

func validBTVState(name string) bool {
	for st := brakes.BTVDisabled; st <= brakes.BTVOutOfDecelRange; st++ {
		if st.String() == name {
			return true
		}
	}
	return false
}

// Parse decodes a scenario, fills in defaults and validates it.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrMalformedScenario)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedScenario, err)
	}

	if sc.Tick == 0 {
		sc.Tick = defaultTick
	}
	if sc.ReadyAfter == 0 {
		sc.ReadyAfter = defaultReadyAfter
	}
	slices.SortStableFunc(sc.Events, func(a, b Event) int { return cmp.Compare(a.At, b.At) })

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sc.Path = path
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// CalibrationPath returns the path of the scenario's calibration file,
// or "" if it uses the default calibration.
func (sc *Scenario) CalibrationPath() string {
	if sc.Calibration == "" || filepath.IsAbs(sc.Calibration) || sc.Path == "" {
		return sc.Calibration
	}
	return filepath.Join(filepath.Dir(sc.Path), sc.Calibration)
}

func (sc *Scenario) Validate() error {
	var e errorLogger
	if sc.Name != "" {
		e.Push(sc.Name)
	}

	if sc.Tick <= 0 {
		e.ErrorString("tick must be positive")
	}
	if sc.Duration <= 0 {
		e.ErrorString("duration must be positive")
	} else if sc.Tick > sc.Duration {
		e.ErrorString("tick %s is longer than the duration %s", sc.Tick, sc.Duration)
	}

	e.Push("rollout")
	if sc.Rollout.GroundSpeed < 0 {
		e.ErrorString("negative ground speed")
	}
	if sc.Rollout.MaxBrakeDecel < 0 || sc.Rollout.Drag < 0 {
		e.ErrorString("decelerations must be given as positive values")
	}
	if sc.Rollout.BrakeLag < 0 {
		e.ErrorString("negative brake lag")
	}
	e.Pop()

	for i, ev := range sc.Events {
		e.Push(fmt.Sprintf("event %d", i))
		if ev.At < 0 || (sc.Duration > 0 && ev.At > sc.Duration) {
			e.ErrorString("time %s is outside of the run", ev.At)
		}
		if len(ev.Set) == 0 {
			e.ErrorString("no signals set")
		}
		for name := range ev.Set {
			if strings.TrimSpace(name) == "" {
				e.ErrorString("empty signal name")
			}
		}
		e.Pop()
	}

	if x := sc.Expect; x != nil {
		e.Push("expect")
		if x.Mode != "" && !validMode(x.Mode) {
			e.ErrorString("unknown mode %q", x.Mode)
		}
		if x.BTVState != "" && !validBTVState(x.BTVState) {
			e.ErrorString("unknown BTV state %q", x.BTVState)
		}
		if x.MinDistance != nil && x.MaxDistance != nil && *x.MinDistance > *x.MaxDistance {
			e.ErrorString("minimum distance %v exceeds maximum %v", *x.MinDistance, *x.MaxDistance)
		}
		e.Pop()
	}

	return e.Err(ErrInvalidScenario)
}

// check compares the end of a run against the expectation and returns a
// description of each mismatch.
func (x *Expectation) check(r *Result) []string {
	if x == nil {
		return nil
	}

	var failed []string
	if x.Mode != "" && r.Status.Mode != x.Mode {
		failed = append(failed, fmt.Sprintf("mode %s, expected %s", r.Status.Mode, x.Mode))
	}
	if x.BTVState != "" && r.Status.BTV.State != x.BTVState {
		failed = append(failed, fmt.Sprintf("BTV state %s, expected %s", r.Status.BTV.State, x.BTVState))
	}
	if x.Stopped != nil && r.Stopped != *x.Stopped {
		failed = append(failed, fmt.Sprintf("stopped %v, expected %v", r.Stopped, *x.Stopped))
	}
	if x.MinDistance != nil && r.Distance < *x.MinDistance {
		failed = append(failed, fmt.Sprintf("distance %.1f m, expected at least %.1f m", r.Distance, *x.MinDistance))
	}
	if x.MaxDistance != nil && r.Distance > *x.MaxDistance {
		failed = append(failed, fmt.Sprintf("distance %.1f m, expected at most %.1f m", r.Distance, *x.MaxDistance))
	}
	if x.DecelLightSeen && !r.DecelLightSeen {
		failed = append(failed, "DECEL light never came on")
	}
	return failed
}
