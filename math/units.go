// math/units.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

const (
	MetersPerSecondPerKnot = 1852.0 / 3600
	MetersPerFoot          = 0.3048
)

func KnotsToMetersPerSecond(kt float64) float64 {
	return kt * MetersPerSecondPerKnot
}

func MetersPerSecondToKnots(ms float64) float64 {
	return ms / MetersPerSecondPerKnot
}

func FeetToMeters(ft float64) float64 {
	return ft * MetersPerFoot
}

func MetersToFeet(m float64) float64 {
	return m / MetersPerFoot
}
