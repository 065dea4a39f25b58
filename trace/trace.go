// trace/trace.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package trace records the signal bus tick by tick so that a run can be
// inspected or replayed offline. Traces are stored as msgpack in a zstd
// stream.
package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mmp/autobrake/sim"
)

// Frame holds the value of every bus signal at the end of a tick.
type Frame struct {
	Elapsed time.Duration
	Signals map[string]float64
}

type Trace struct {
	Name   string
	Frames []Frame
}

// Recorder is a sim.Updater that captures a Frame every Every ticks. It
// should be added to the host after the components whose outputs are
// of interest.
type Recorder struct {
	Trace
	Every int

	ticks int
}

func NewRecorder(name string, every int) *Recorder {
	return &Recorder{Trace: Trace{Name: name}, Every: max(1, every)}
}

func (r *Recorder) Tick(ctx sim.UpdateContext, bus *sim.Bus) {
	r.ticks++
	if (r.ticks-1)%r.Every != 0 {
		return
	}
	r.Frames = append(r.Frames, Frame{Elapsed: ctx.Elapsed, Signals: bus.Snapshot()})
}

// Series returns the value of the named signal in each frame, 0 where it
// was not set.
func (t *Trace) Series(name string) []float64 {
	s := make([]float64, len(t.Frames))
	for i, f := range t.Frames {
		s[i] = f.Signals[name]
	}
	return s
}

func (t *Trace) Last() (Frame, error) {
	if len(t.Frames) == 0 {
		return Frame{}, ErrNoFrames
	}
	return t.Frames[len(t.Frames)-1], nil
}

func (t *Trace) Save(w io.Writer) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}
	if err := msgpack.NewEncoder(zw).Encode(t); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func Load(r io.Reader) (*Trace, error) {
	zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTrace, err)
	}
	defer zr.Close()

	var t Trace
	if err := msgpack.NewDecoder(zr).Decode(&t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTrace, err)
	}
	return &t, nil
}

// Filename returns the name under which the trace is saved in a
// directory.
func (t *Trace) Filename() string {
	return t.Name + ".trace.msgpack.zst"
}

// SaveFile writes the trace to dir, creating the directory if needed,
// and returns the path of the file written.
func (t *Trace) SaveFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, t.Filename())

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := t.Save(f); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

func LoadFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
