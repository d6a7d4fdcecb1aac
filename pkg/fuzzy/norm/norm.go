// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package norm provides the binary operators used for conjunction, disjunction,
// implication and aggregation. All operators are stateless values.
package norm

import "math"

// Norm is a binary operator over membership degrees.
type Norm interface {
	Name() string
	Compute(a, b float64) float64
}

// TNorm is a norm usable as conjunction or implication.
type TNorm interface {
	Norm
	tNorm()
}

// SNorm is a norm usable as disjunction or aggregation.
type SNorm interface {
	Norm
	sNorm()
}

type tnorm struct{}

func (tnorm) tNorm() {}

type snorm struct{}

func (snorm) sNorm() {}

// AlgebraicProduct computes a·b.
type AlgebraicProduct struct{ tnorm }

func (AlgebraicProduct) Name() string                 { return "AlgebraicProduct" }
func (AlgebraicProduct) Compute(a, b float64) float64 { return a * b }

// BoundedDifference computes max(0, a+b-1).
type BoundedDifference struct{ tnorm }

func (BoundedDifference) Name() string                 { return "BoundedDifference" }
func (BoundedDifference) Compute(a, b float64) float64 { return math.Max(0, a+b-1) }

// DrasticProduct computes min(a,b) when max(a,b) is 1, and 0 otherwise.
type DrasticProduct struct{ tnorm }

func (DrasticProduct) Name() string { return "DrasticProduct" }
func (DrasticProduct) Compute(a, b float64) float64 {
	if math.Max(a, b) == 1 {
		return math.Min(a, b)
	}
	return 0
}

// EinsteinProduct computes (a·b)/(2-(a+b-a·b)).
type EinsteinProduct struct{ tnorm }

func (EinsteinProduct) Name() string { return "EinsteinProduct" }
func (EinsteinProduct) Compute(a, b float64) float64 {
	return (a * b) / (2 - (a + b - a*b))
}

// HamacherProduct computes (a·b)/(a+b-a·b), defined as 0 when a+b is 0.
type HamacherProduct struct{ tnorm }

func (HamacherProduct) Name() string { return "HamacherProduct" }
func (HamacherProduct) Compute(a, b float64) float64 {
	if a+b == 0 {
		return 0
	}
	return (a * b) / (a + b - a*b)
}

// Minimum computes min(a,b).
type Minimum struct{ tnorm }

func (Minimum) Name() string                 { return "Minimum" }
func (Minimum) Compute(a, b float64) float64 { return math.Min(a, b) }

// NilpotentMinimum computes min(a,b) when a+b > 1, and 0 otherwise.
type NilpotentMinimum struct{ tnorm }

func (NilpotentMinimum) Name() string { return "NilpotentMinimum" }
func (NilpotentMinimum) Compute(a, b float64) float64 {
	if a+b > 1 {
		return math.Min(a, b)
	}
	return 0
}

// AlgebraicSum computes a+b-a·b.
type AlgebraicSum struct{ snorm }

func (AlgebraicSum) Name() string                 { return "AlgebraicSum" }
func (AlgebraicSum) Compute(a, b float64) float64 { return a + b - a*b }

// BoundedSum computes min(1, a+b).
type BoundedSum struct{ snorm }

func (BoundedSum) Name() string                 { return "BoundedSum" }
func (BoundedSum) Compute(a, b float64) float64 { return math.Min(1, a+b) }

// DrasticSum computes max(a,b) when min(a,b) is 0, and 1 otherwise.
type DrasticSum struct{ snorm }

func (DrasticSum) Name() string { return "DrasticSum" }
func (DrasticSum) Compute(a, b float64) float64 {
	if math.Min(a, b) == 0 {
		return math.Max(a, b)
	}
	return 1
}

// EinsteinSum computes (a+b)/(1+a·b).
type EinsteinSum struct{ snorm }

func (EinsteinSum) Name() string                 { return "EinsteinSum" }
func (EinsteinSum) Compute(a, b float64) float64 { return (a + b) / (1 + a*b) }

// HamacherSum computes (a+b-2·a·b)/(1-a·b), defined as 1 when a·b is 1.
type HamacherSum struct{ snorm }

func (HamacherSum) Name() string { return "HamacherSum" }
func (HamacherSum) Compute(a, b float64) float64 {
	if a*b == 1 {
		return 1
	}
	return (a + b - 2*a*b) / (1 - a*b)
}

// Maximum computes max(a,b).
type Maximum struct{ snorm }

func (Maximum) Name() string                 { return "Maximum" }
func (Maximum) Compute(a, b float64) float64 { return math.Max(a, b) }

// NilpotentMaximum computes max(a,b) when a+b < 1, and 1 otherwise.
type NilpotentMaximum struct{ snorm }

func (NilpotentMaximum) Name() string { return "NilpotentMaximum" }
func (NilpotentMaximum) Compute(a, b float64) float64 {
	if a+b < 1 {
		return math.Max(a, b)
	}
	return 1
}

// NormalizedSum computes (a+b)/max(1, max(a,b)).
type NormalizedSum struct{ snorm }

func (NormalizedSum) Name() string { return "NormalizedSum" }
func (NormalizedSum) Compute(a, b float64) float64 {
	return (a + b) / math.Max(1, math.Max(a, b))
}

// UnboundedSum computes a+b.
type UnboundedSum struct{ snorm }

func (UnboundedSum) Name() string                 { return "UnboundedSum" }
func (UnboundedSum) Compute(a, b float64) float64 { return a + b }
