// config/calibration_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default calibration is invalid: %v", err)
	}
}

func TestParseOverlay(t *testing.T) {
	c, err := Parse([]byte(`
autobrake:
  low_profile_ms2: [4, 0, -1.7]
  knob_disarm_delay: 750ms
btv:
  min_runway_length_m: 1800
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !slices.Equal(c.Autobrake.LowProfile, []float64{4, 0, -1.7}) {
		t.Errorf("expected overridden low profile, got %v", c.Autobrake.LowProfile)
	}
	if c.Autobrake.KnobDisarmDelay != 750*time.Millisecond {
		t.Errorf("expected 750ms knob delay, got %v", c.Autobrake.KnobDisarmDelay)
	}
	if c.BTV.MinRunwayLength != 1800 {
		t.Errorf("expected 1800m minimum runway, got %v", c.BTV.MinRunwayLength)
	}

	// Everything else keeps its default.
	def := Default()
	if !slices.Equal(c.Autobrake.HighProfile, def.Autobrake.HighProfile) {
		t.Errorf("high profile changed: %v", c.Autobrake.HighProfile)
	}
	if c.Autobrake.FlightDisarmDelay != def.Autobrake.FlightDisarmDelay {
		t.Errorf("flight disarm delay changed: %v", c.Autobrake.FlightDisarmDelay)
	}
	if c.BTV.MaxDryDecel != -3 {
		t.Errorf("max dry decel changed: %v", c.BTV.MaxDryDecel)
	}
}

func TestParseEmpty(t *testing.T) {
	for _, doc := range []string{"", "   \n", "# just a comment\n"} {
		c, err := Parse([]byte(doc))
		if err != nil {
			t.Errorf("%q: unexpected error: %v", doc, err)
			continue
		}
		if c.Autobrake.RTOTarget != -6 {
			t.Errorf("%q: expected default RTO target, got %v", doc, c.Autobrake.RTOTarget)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "unknown field",
			doc:  "autobrake:\n  medium_profile_ms2: [1, 2, 3]\n",
			want: ErrMalformedCalibration,
		},
		{
			name: "not yaml",
			doc:  "autobrake: [",
			want: ErrMalformedCalibration,
		},
		{
			name: "profile length mismatch",
			doc:  "autobrake:\n  l3_profile_ms2: [4, -3]\n",
			want: ErrInvalidProfile,
		},
		{
			name: "decreasing breakpoints",
			doc:  "autobrake:\n  profile_times_s: [0, 2.5, 0.1]\n",
			want: ErrInvalidProfile,
		},
		{
			name: "inverted light hysteresis",
			doc:  "autobrake:\n  light_on_percent: 60\n",
			want: ErrInvalidThreshold,
		},
		{
			name: "positive max decel",
			doc:  "btv:\n  max_dry_decel_ms2: 3\n",
			want: ErrInvalidThreshold,
		},
		{
			name: "margin below one",
			doc:  "btv:\n  min_margin: 0.9\n",
			want: ErrInvalidThreshold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateReportsFirstProfile(t *testing.T) {
	c := Default()
	c.Autobrake.HighProfile = []float64{4}
	c.Autobrake.L2Profile = []float64{4, 0}
	c.Autobrake.LowProfile = []float64{4}

	// The same profile is reported every time, whichever others are wrong.
	for range 20 {
		err := c.Validate()
		if !errors.Is(err, ErrInvalidProfile) {
			t.Fatalf("expected ErrInvalidProfile, got %v", err)
		}
		if want := "low profile has 1 values for 3 breakpoints"; !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err)
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Default().Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	c, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Autobrake.SpoilersArmingDelay != 5*time.Second {
		t.Errorf("expected 5s spoilers delay, got %v", c.Autobrake.SpoilersArmingDelay)
	}
	if c.Governor.AccelFilterTimeConstant != 100*time.Millisecond {
		t.Errorf("expected 100ms filter, got %v", c.Governor.AccelFilterTimeConstant)
	}
}

func TestLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a380.yaml")
	if err := os.WriteFile(path, []byte("autobrake:\n  rto_target_ms2: -5.5\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	l := NewLoader()
	c1, err := l.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c1.Autobrake.RTOTarget != -5.5 {
		t.Errorf("expected -5.5, got %v", c1.Autobrake.RTOTarget)
	}

	c2, err := l.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c1 != c2 {
		t.Errorf("expected the cached calibration to be returned")
	}
	if l.Len() != 1 {
		t.Errorf("expected 1 cached entry, got %d", l.Len())
	}

	if c, err := l.Load(""); err != nil || c.Autobrake.RTOTarget != -6 {
		t.Errorf("empty path: expected defaults, got %v, %v", c, err)
	}

	if _, err := l.Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
