// sim/bus.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"maps"
	"slices"

	"github.com/brunoga/deep"
)

// Signals that the host simulation owns; the names match the simulator
// variables they stand for.
const (
	GroundSpeedSignal = "GPS GROUND SPEED"    // knots
	LongAccelSignal   = "ACCELERATION BODY Z" // ft/s^2, positive forward
)

// Reader is the read side of the named-signal bus. Booleans are encoded
// as 0 or 1.
type Reader interface {
	Lookup(name string) (float64, bool)
	Float(name string) float64
	Bool(name string) bool
}

type Writer interface {
	SetFloat(name string, v float64)
	SetBool(name string, v bool)
}

// Element is a component that exchanges signals with the bus once per
// tick: Read before it is updated and Write afterward.
type Element interface {
	Read(r Reader)
	Write(w Writer)
}

// Bus is an in-memory named-signal store standing in for the simulator's
// variable interface.
type Bus struct {
	values map[string]float64
}

func NewBus() *Bus {
	return &Bus{values: make(map[string]float64)}
}

func (b *Bus) Lookup(name string) (float64, bool) {
	v, ok := b.values[name]
	return v, ok
}

// Float returns the value of the named signal, or 0 if it has never been
// written.
func (b *Bus) Float(name string) float64 {
	return b.values[name]
}

func (b *Bus) Bool(name string) bool {
	return b.values[name] != 0
}

func (b *Bus) SetFloat(name string, v float64) {
	b.values[name] = v
}

func (b *Bus) SetBool(name string, v bool) {
	if v {
		b.values[name] = 1
	} else {
		b.values[name] = 0
	}
}

// FloatOr returns the named signal's value, or def if it has never been
// written.
func FloatOr(r Reader, name string, def float64) float64 {
	if v, ok := r.Lookup(name); ok {
		return v
	}
	return def
}

// Names returns the names of all signals on the bus in sorted order.
func (b *Bus) Names() []string {
	return slices.Sorted(maps.Keys(b.values))
}

// Snapshot returns a copy of all of the bus's values that is unaffected
// by later writes.
func (b *Bus) Snapshot() map[string]float64 {
	return deep.MustCopy(b.values)
}
