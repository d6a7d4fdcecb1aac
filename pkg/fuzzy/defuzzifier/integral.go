// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package defuzzifier

import (
	"math"
	"strconv"

	"github.com/noldarim/fuzzy/pkg/fuzzy/op"
	"github.com/noldarim/fuzzy/pkg/fuzzy/term"
)

// DefaultResolution is the number of slices sampled when none is configured.
const DefaultResolution = 100

// Integral carries the resolution shared by the integral defuzzifiers.
type Integral struct {
	resolution int
}

func newIntegral(resolution int) Integral {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	return Integral{resolution: resolution}
}

func (Integral) integral() {}

// Resolution returns the number of slices sampled.
func (i *Integral) Resolution() int { return i.resolution }

// SetResolution changes the number of slices; values below 1 select DefaultResolution.
func (i *Integral) SetResolution(resolution int) {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	i.resolution = resolution
}

func (i *Integral) Parameters() string { return strconv.Itoa(i.resolution) }

// sample calls visit with the midpoint x and membership y of every slice.
func (i *Integral) sample(t term.Term, minimum, maximum float64, visit func(x, y float64)) {
	dx := (maximum - minimum) / float64(i.resolution)
	for k := 0; k < i.resolution; k++ {
		x := minimum + (float64(k)+0.5)*dx
		visit(x, t.Membership(x))
	}
}

// Centroid returns the x-coordinate of the centre of gravity.
type Centroid struct{ Integral }

// NewCentroid creates a Centroid; resolution 0 selects DefaultResolution.
func NewCentroid(resolution int) *Centroid {
	return &Centroid{newIntegral(resolution)}
}

func (*Centroid) Name() string { return "Centroid" }

func (d *Centroid) Defuzzify(t term.Term, minimum, maximum float64) float64 {
	if !op.IsFinite(minimum + maximum) {
		return math.NaN()
	}
	area, moment := 0.0, 0.0
	d.sample(t, minimum, maximum, func(x, y float64) {
		moment += y * x
		area += y
	})
	return moment / area
}

// Bisector approximates the x that splits the area in two halves, growing the
// smaller of two areas from both ends until every slice is consumed.
type Bisector struct{ Integral }

// NewBisector creates a Bisector; resolution 0 selects DefaultResolution.
func NewBisector(resolution int) *Bisector {
	return &Bisector{newIntegral(resolution)}
}

func (*Bisector) Name() string { return "Bisector" }

func (d *Bisector) Defuzzify(t term.Term, minimum, maximum float64) float64 {
	if !op.IsFinite(minimum + maximum) {
		return math.NaN()
	}
	dx := (maximum - minimum) / float64(d.resolution)
	left, right := 0, 0
	leftArea, rightArea := 0.0, 0.0
	xLeft, xRight := minimum, maximum
	for counter := d.resolution; counter > 0; counter-- {
		if op.IsLE(leftArea, rightArea) {
			xLeft = minimum + (float64(left)+0.5)*dx
			leftArea += t.Membership(xLeft)
			left++
		} else {
			xRight = maximum - (float64(right)+0.5)*dx
			rightArea += t.Membership(xRight)
			right++
		}
	}
	return (leftArea*xRight + rightArea*xLeft) / (leftArea + rightArea)
}

// SmallestOfMaximum returns the first x at which the maximum membership occurs.
type SmallestOfMaximum struct{ Integral }

// NewSmallestOfMaximum creates a SmallestOfMaximum; resolution 0 selects DefaultResolution.
func NewSmallestOfMaximum(resolution int) *SmallestOfMaximum {
	return &SmallestOfMaximum{newIntegral(resolution)}
}

func (*SmallestOfMaximum) Name() string { return "SmallestOfMaximum" }

func (d *SmallestOfMaximum) Defuzzify(t term.Term, minimum, maximum float64) float64 {
	if !op.IsFinite(minimum + maximum) {
		return math.NaN()
	}
	ymax, xsmallest := -1.0, minimum
	d.sample(t, minimum, maximum, func(x, y float64) {
		if op.IsGt(y, ymax) {
			xsmallest, ymax = x, y
		}
	})
	return xsmallest
}

// LargestOfMaximum returns the last x at which the maximum membership occurs.
type LargestOfMaximum struct{ Integral }

// NewLargestOfMaximum creates a LargestOfMaximum; resolution 0 selects DefaultResolution.
func NewLargestOfMaximum(resolution int) *LargestOfMaximum {
	return &LargestOfMaximum{newIntegral(resolution)}
}

func (*LargestOfMaximum) Name() string { return "LargestOfMaximum" }

func (d *LargestOfMaximum) Defuzzify(t term.Term, minimum, maximum float64) float64 {
	if !op.IsFinite(minimum + maximum) {
		return math.NaN()
	}
	ymax, xlargest := -1.0, maximum
	d.sample(t, minimum, maximum, func(x, y float64) {
		if op.IsGE(y, ymax) {
			xlargest, ymax = x, y
		}
	})
	return xlargest
}

// MeanOfMaximum returns the middle of the first plateau of maximum membership.
type MeanOfMaximum struct{ Integral }

// NewMeanOfMaximum creates a MeanOfMaximum; resolution 0 selects DefaultResolution.
func NewMeanOfMaximum(resolution int) *MeanOfMaximum {
	return &MeanOfMaximum{newIntegral(resolution)}
}

func (*MeanOfMaximum) Name() string { return "MeanOfMaximum" }

func (d *MeanOfMaximum) Defuzzify(t term.Term, minimum, maximum float64) float64 {
	if !op.IsFinite(minimum + maximum) {
		return math.NaN()
	}
	ymax := -1.0
	xsmallest, xlargest := minimum, maximum
	samePlateau := false
	d.sample(t, minimum, maximum, func(x, y float64) {
		switch {
		case op.IsGt(y, ymax):
			ymax = y
			xsmallest, xlargest = x, x
			samePlateau = true
		case op.IsEq(y, ymax) && samePlateau:
			xlargest = x
		case op.IsLt(y, ymax):
			samePlateau = false
		}
	})
	return (xlargest + xsmallest) / 2
}
