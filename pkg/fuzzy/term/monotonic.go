// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package term

import (
	"math"

	"github.com/noldarim/fuzzy/pkg/fuzzy/op"
)

// Ramp rises (Start < End) or falls (Start > End) linearly between its ends.
type Ramp struct {
	base
	Start, End float64
}

// NewRamp creates a Ramp with height 1.
func NewRamp(name string, start, end float64) *Ramp {
	return &Ramp{base: newBase(name), Start: start, End: end}
}

func (t *Ramp) Kind() string       { return "Ramp" }
func (t *Ramp) Parameters() string { return t.params(t.Start, t.End) }
func (t *Ramp) Clone() Term        { c := *t; return &c }

func (t *Ramp) Membership(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if op.IsEq(t.Start, t.End) {
		return 0
	}
	if t.Start < t.End {
		if x <= t.Start {
			return 0
		}
		if x >= t.End {
			return t.height
		}
		return t.height * (x - t.Start) / (t.End - t.Start)
	}
	if x >= t.Start {
		return 0
	}
	if x <= t.End {
		return t.height
	}
	return t.height * (t.Start - x) / (t.Start - t.End)
}

// Tsukamoto returns the x at which the ramp reaches degree.
func (t *Ramp) Tsukamoto(degree, _, _ float64) float64 {
	return t.Start + (t.End-t.Start)*degree/t.height
}

// Sigmoid is the logistic curve 1/(1+exp(-Slope·(x-Inflection))).
type Sigmoid struct {
	base
	Inflection, Slope float64
}

// NewSigmoid creates a Sigmoid with height 1.
func NewSigmoid(name string, inflection, slope float64) *Sigmoid {
	return &Sigmoid{base: newBase(name), Inflection: inflection, Slope: slope}
}

func (t *Sigmoid) Kind() string       { return "Sigmoid" }
func (t *Sigmoid) Parameters() string { return t.params(t.Inflection, t.Slope) }
func (t *Sigmoid) Clone() Term        { c := *t; return &c }

func (t *Sigmoid) Membership(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	return t.height / (1 + math.Exp(-t.Slope*(x-t.Inflection)))
}

// Tsukamoto returns the x at which the curve reaches degree, clamped to the
// variable's range at the asymptotes.
func (t *Sigmoid) Tsukamoto(degree, minimum, maximum float64) float64 {
	w := degree / t.height
	switch {
	case op.IsEq(w, 1):
		if t.Slope > 0 {
			return maximum
		}
		return minimum
	case op.IsEq(w, 0):
		if t.Slope > 0 {
			return minimum
		}
		return maximum
	}
	return t.Inflection - math.Log(1/w-1)/t.Slope
}

// Concave approaches its height as x moves from Inflection towards End and
// stays there beyond End.
type Concave struct {
	base
	Inflection, End float64
}

// NewConcave creates a Concave with height 1.
func NewConcave(name string, inflection, end float64) *Concave {
	return &Concave{base: newBase(name), Inflection: inflection, End: end}
}

func (t *Concave) Kind() string       { return "Concave" }
func (t *Concave) Parameters() string { return t.params(t.Inflection, t.End) }
func (t *Concave) Clone() Term        { c := *t; return &c }

func (t *Concave) Membership(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if t.Inflection <= t.End {
		if x < t.End {
			return t.height * (t.End - t.Inflection) / (2*t.End - t.Inflection - x)
		}
		return t.height
	}
	if x > t.End {
		return t.height * (t.Inflection - t.End) / (t.Inflection - 2*t.End + x)
	}
	return t.height
}

// Tsukamoto returns the x at which the curve reaches degree.
func (t *Concave) Tsukamoto(degree, _, _ float64) float64 {
	w := degree / t.height
	return 2*t.End - t.Inflection + (t.Inflection-t.End)/w
}
