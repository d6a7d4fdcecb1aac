// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package op holds the scalar helpers shared by the fuzzy packages: tolerance-aware
// comparisons and number formatting.
package op

import (
	"math"
	"strconv"
)

// Epsilon is the tolerance used by the comparison helpers.
const Epsilon = 1e-6

// IsNaN reports whether x is NaN.
func IsNaN(x float64) bool { return math.IsNaN(x) }

// IsInf reports whether x is positive or negative infinity.
func IsInf(x float64) bool { return math.IsInf(x, 0) }

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// IsEq reports whether a and b are equal within Epsilon. NaN equals NaN.
func IsEq(a, b float64) bool {
	if a == b {
		return true
	}
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Abs(a-b) < Epsilon
}

// IsNEq is the negation of IsEq.
func IsNEq(a, b float64) bool { return !IsEq(a, b) }

// IsLt reports a < b beyond the tolerance.
func IsLt(a, b float64) bool { return !IsEq(a, b) && a < b }

// IsLE reports a <= b within the tolerance.
func IsLE(a, b float64) bool { return IsEq(a, b) || a < b }

// IsGt reports a > b beyond the tolerance.
func IsGt(a, b float64) bool { return !IsEq(a, b) && a > b }

// IsGE reports a >= b within the tolerance.
func IsGE(a, b float64) bool { return IsEq(a, b) || a > b }

// Bound clamps x to [min, max].
func Bound(x, min, max float64) float64 {
	if x > max {
		return max
	}
	if x < min {
		return min
	}
	return x
}

// Str formats x with the shortest representation that round-trips; NaN and
// infinities are written as nan, inf and -inf.
func Str(x float64) string {
	switch {
	case math.IsNaN(x):
		return "nan"
	case math.IsInf(x, 1):
		return "inf"
	case math.IsInf(x, -1):
		return "-inf"
	}
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// Parse parses a number, accepting the spellings produced by Str.
func Parse(s string) (float64, error) {
	switch s {
	case "nan", "NaN":
		return math.NaN(), nil
	case "inf", "+inf", "Inf":
		return math.Inf(1), nil
	case "-inf", "-Inf":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(s, 64)
}
