// config/calibration.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package config holds the calibration data of the autobrake system:
// deceleration profiles, thresholds and delays. Default returns the
// values the system was tuned with; YAML files may override any subset.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Calibration struct {
	Autobrake AutobrakeCalibration `yaml:"autobrake"`
	BTV       BTVCalibration       `yaml:"btv"`
	Governor  GovernorCalibration  `yaml:"governor"`
}

type AutobrakeCalibration struct {
	// Time breakpoints shared by all of the landing-mode profiles.
	ProfileTimes []float64 `yaml:"profile_times_s"`
	LowProfile   []float64 `yaml:"low_profile_ms2"`
	L2Profile    []float64 `yaml:"l2_profile_ms2"`
	L3Profile    []float64 `yaml:"l3_profile_ms2"`
	HighProfile  []float64 `yaml:"high_profile_ms2"`

	RTOTarget float64 `yaml:"rto_target_ms2"`
	OffTarget float64 `yaml:"off_target_ms2"`

	LightOnPercent  float64 `yaml:"light_on_percent"`
	LightOffPercent float64 `yaml:"light_off_percent"`
	RTOLightOn      float64 `yaml:"rto_light_on_ms2"`
	RTOLightOff     float64 `yaml:"rto_light_off_ms2"`

	FlightDisarmDelay   time.Duration `yaml:"flight_disarm_delay"`
	SpoilersArmingDelay time.Duration `yaml:"spoilers_arming_delay"`
	KnobDisarmDelay     time.Duration `yaml:"knob_disarm_delay"`

	LandingPedalOverride PedalOverride `yaml:"landing_pedal_override"`
	RTOPedalOverride     PedalOverride `yaml:"rto_pedal_override"`
}

// PedalOverride gives the brake pedal deflections, in percent, past which
// the pilot is taken to be overriding the autobrake: either pedal beyond
// Single, or both pedals beyond Both.
type PedalOverride struct {
	Single float64 `yaml:"single_percent"`
	Both   float64 `yaml:"both_percent"`
}

type BTVCalibration struct {
	MaxDryDecel             float64 `yaml:"max_dry_decel_ms2"`
	NeutralDecel            float64 `yaml:"neutral_decel_ms2"`
	MinRunwayLength         float64 `yaml:"min_runway_length_m"`
	ReleaseDistanceOffset   float64 `yaml:"release_distance_offset_m"`
	ReleaseSpeed            float64 `yaml:"release_speed_ms"`
	ReleaseSpeedFactor      float64 `yaml:"release_speed_factor"`
	EndOfBrakingDistance    float64 `yaml:"end_of_braking_distance_m"`
	StartBrakingFraction    float64 `yaml:"start_braking_fraction"`
	RotOptimizationFraction float64 `yaml:"rot_optimization_fraction"`
	MarginGain              float64 `yaml:"margin_gain"`
	MinMargin               float64 `yaml:"min_margin"`
	MaxMargin               float64 `yaml:"max_margin"`
}

type GovernorCalibration struct {
	Kp                      float64       `yaml:"kp"`
	Ki                      float64       `yaml:"ki"`
	AccelFilterTimeConstant time.Duration `yaml:"accel_filter_time_constant"`
}

func Default() *Calibration {
	return &Calibration{
		Autobrake: AutobrakeCalibration{
			ProfileTimes: []float64{0, 0.1, 2.5},
			LowProfile:   []float64{4, 0, -2},
			L2Profile:    []float64{4, 0, -2.5},
			L3Profile:    []float64{4, 0, -3},
			HighProfile:  []float64{4, -2, -3.5},

			RTOTarget: -6,
			OffTarget: 5,

			LightOnPercent:  80,
			LightOffPercent: 70,
			RTOLightOn:      -2.7,
			RTOLightOff:     -2,

			FlightDisarmDelay:   10 * time.Second,
			SpoilersArmingDelay: 5 * time.Second,
			KnobDisarmDelay:     500 * time.Millisecond,

			LandingPedalOverride: PedalOverride{Single: 53, Both: 11},
			RTOPedalOverride:     PedalOverride{Single: 77, Both: 53},
		},
		BTV: BTVCalibration{
			MaxDryDecel:             -3,
			NeutralDecel:            5,
			MinRunwayLength:         1500,
			ReleaseDistanceOffset:   50,
			ReleaseSpeed:            5.15,
			ReleaseSpeedFactor:      0.9,
			EndOfBrakingDistance:    50,
			StartBrakingFraction:    0.6,
			RotOptimizationFraction: 0.1,
			MarginGain:              0.4,
			MinMargin:               1.15,
			MaxMargin:               1.4,
		},
		Governor: GovernorCalibration{
			Kp:                      0.3,
			Ki:                      0.4,
			AccelFilterTimeConstant: 100 * time.Millisecond,
		},
	}
}

// Parse overlays the YAML document in data on top of the default
// calibration and validates the result.
func Parse(data []byte) (*Calibration, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty document (or one with only comments) leaves the defaults.
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCalibration, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func Load(path string) (*Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *Calibration) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *Calibration) Validate() error {
	ab := &c.Autobrake
	n := len(ab.ProfileTimes)
	if n == 0 {
		return fmt.Errorf("%w: no time breakpoints", ErrInvalidProfile)
	}
	for i := 1; i < n; i++ {
		if ab.ProfileTimes[i] <= ab.ProfileTimes[i-1] {
			return fmt.Errorf("%w: time breakpoints must be increasing", ErrInvalidProfile)
		}
	}
	for _, p := range []struct {
		name   string
		values []float64
	}{
		{"low", ab.LowProfile},
		{"l2", ab.L2Profile},
		{"l3", ab.L3Profile},
		{"high", ab.HighProfile},
	} {
		if len(p.values) != n {
			return fmt.Errorf("%w: %s profile has %d values for %d breakpoints", ErrInvalidProfile,
				p.name, len(p.values), n)
		}
	}

	if ab.LightOffPercent > ab.LightOnPercent {
		return fmt.Errorf("%w: decel light off threshold %.0f%% above on threshold %.0f%%",
			ErrInvalidThreshold, ab.LightOffPercent, ab.LightOnPercent)
	}
	if ab.RTOLightOn > ab.RTOLightOff {
		return fmt.Errorf("%w: RTO decel light on rate %.2f is weaker than off rate %.2f",
			ErrInvalidThreshold, ab.RTOLightOn, ab.RTOLightOff)
	}

	btv := &c.BTV
	if btv.MaxDryDecel >= 0 {
		return fmt.Errorf("%w: max dry deceleration must be negative", ErrInvalidThreshold)
	}
	if btv.MinMargin < 1 || btv.MaxMargin < btv.MinMargin {
		return fmt.Errorf("%w: safety margin range [%.2f, %.2f]", ErrInvalidThreshold,
			btv.MinMargin, btv.MaxMargin)
	}
	if btv.ReleaseSpeed <= 0 {
		return fmt.Errorf("%w: release speed must be positive", ErrInvalidThreshold)
	}

	if c.Governor.Kp < 0 || c.Governor.Ki < 0 {
		return fmt.Errorf("%w: negative governor gain", ErrInvalidThreshold)
	}
	return nil
}
