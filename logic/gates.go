// logic/gates.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package logic provides time-qualified boolean gates. Each gate must be
// updated exactly once per simulation tick with the instantaneous value
// of the condition it qualifies.
package logic

import "time"

// DelayedTrueGate outputs true once its input has been continuously true
// for at least Delay. Any false input resets it.
type DelayedTrueGate struct {
	Delay        time.Duration
	trueDuration time.Duration
	expression   bool
}

func NewDelayedTrueGate(delay time.Duration) *DelayedTrueGate {
	return &DelayedTrueGate{Delay: delay}
}

// StartingAs presets the gate so that its output is immediately the
// given value; it's used when a session starts in a state the gate would
// otherwise take Delay to recognize.
func (g *DelayedTrueGate) StartingAs(output bool) *DelayedTrueGate {
	g.expression = output
	if output {
		g.trueDuration = g.Delay
	} else {
		g.trueDuration = 0
	}
	return g
}

func (g *DelayedTrueGate) Update(dt time.Duration, expression bool) {
	if expression {
		g.trueDuration += dt
	} else {
		g.trueDuration = 0
	}
	g.expression = expression
}

func (g *DelayedTrueGate) Output() bool {
	return g.expression && g.trueDuration >= g.Delay
}

// DelayedPulseTrueGate outputs true for a single update: the one in which
// the underlying DelayedTrueGate's output goes from false to true.
type DelayedPulseTrueGate struct {
	gate   DelayedTrueGate
	output bool
}

func NewDelayedPulseTrueGate(delay time.Duration) *DelayedPulseTrueGate {
	return &DelayedPulseTrueGate{gate: DelayedTrueGate{Delay: delay}}
}

// StartingAs presets the delayed condition and the pulse output
// independently; starting with expression true and output false means a
// condition that already held at session start never produces a pulse.
func (g *DelayedPulseTrueGate) StartingAs(expression, output bool) *DelayedPulseTrueGate {
	g.gate.StartingAs(expression)
	g.output = output
	return g
}

func (g *DelayedPulseTrueGate) Update(dt time.Duration, expression bool) {
	was := g.gate.Output()
	g.gate.Update(dt, expression)
	g.output = !was && g.gate.Output()
}

func (g *DelayedPulseTrueGate) Output() bool {
	return g.output
}
