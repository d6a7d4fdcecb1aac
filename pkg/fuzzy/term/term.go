// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package term defines the linguistic terms of a variable and the fuzzy sets
// built while evaluating rules.
package term

import (
	"math"
	"strings"

	"github.com/noldarim/fuzzy/pkg/fuzzy/op"
)

// Term is a named membership function.
type Term interface {
	Name() string
	Kind() string
	// Parameters renders the term's parameters, space separated.
	Parameters() string
	Membership(x float64) float64
	Clone() Term
}

// Monotonic terms can be inverted, which Tsukamoto defuzzification requires.
type Monotonic interface {
	Term
	Tsukamoto(degree, minimum, maximum float64) float64
}

// Input is a read-only view of an input variable, as needed by terms whose
// membership depends on the engine's inputs.
type Input interface {
	Name() string
	Value() float64
}

// InputBinder is implemented by terms that read the engine's input values.
type InputBinder interface {
	BindInputs(inputs []Input)
}

// IsMonotonic reports whether t can be inverted.
func IsMonotonic(t Term) bool {
	_, ok := t.(Monotonic)
	return ok
}

// IsTakagiSugeno reports whether t is an algebraic consequent term: a Constant,
// a Linear or a Function.
func IsTakagiSugeno(t Term) bool {
	switch t.(type) {
	case *Constant, *Linear, *Function:
		return true
	}
	return false
}

// String renders t as "Kind name parameters".
func String(t Term) string {
	parts := []string{t.Kind(), t.Name()}
	if p := t.Parameters(); p != "" {
		parts = append(parts, p)
	}
	return strings.Join(parts, " ")
}

type base struct {
	name   string
	height float64
}

func newBase(name string) base { return base{name: name, height: 1} }

func (b *base) Name() string { return b.name }

// Height returns the scale applied to the membership.
func (b *base) Height() float64 { return b.height }

// SetHeight sets the scale applied to the membership.
func (b *base) SetHeight(h float64) { b.height = h }

// params renders values plus the height when it is not 1.
func (b *base) params(values ...float64) string {
	parts := make([]string, 0, len(values)+1)
	for _, v := range values {
		parts = append(parts, op.Str(v))
	}
	if !op.IsEq(b.height, 1) {
		parts = append(parts, op.Str(b.height))
	}
	return strings.Join(parts, " ")
}

// Triangle rises linearly from A to B and falls from B to C.
type Triangle struct {
	base
	A, B, C float64
}

// NewTriangle creates a Triangle with height 1.
func NewTriangle(name string, a, b, c float64) *Triangle {
	return &Triangle{base: newBase(name), A: a, B: b, C: c}
}

func (t *Triangle) Kind() string       { return "Triangle" }
func (t *Triangle) Parameters() string { return t.params(t.A, t.B, t.C) }
func (t *Triangle) Clone() Term        { c := *t; return &c }

func (t *Triangle) Membership(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if x < t.A || x > t.C {
		return 0
	}
	if x == t.B {
		return t.height
	}
	if x < t.B {
		if math.IsInf(t.A, -1) {
			return t.height
		}
		return t.height * (x - t.A) / (t.B - t.A)
	}
	if math.IsInf(t.C, 1) {
		return t.height
	}
	return t.height * (t.C - x) / (t.C - t.B)
}

// Trapezoid rises from A to B, stays at its height until C and falls to D.
type Trapezoid struct {
	base
	A, B, C, D float64
}

// NewTrapezoid creates a Trapezoid with height 1.
func NewTrapezoid(name string, a, b, c, d float64) *Trapezoid {
	return &Trapezoid{base: newBase(name), A: a, B: b, C: c, D: d}
}

func (t *Trapezoid) Kind() string       { return "Trapezoid" }
func (t *Trapezoid) Parameters() string { return t.params(t.A, t.B, t.C, t.D) }
func (t *Trapezoid) Clone() Term        { c := *t; return &c }

func (t *Trapezoid) Membership(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if x < t.A || x > t.D {
		return 0
	}
	if x < t.B {
		if math.IsInf(t.A, -1) {
			return t.height
		}
		return t.height * math.Min(1, (x-t.A)/(t.B-t.A))
	}
	if x <= t.C {
		return t.height
	}
	if x < t.D {
		if math.IsInf(t.D, 1) {
			return t.height
		}
		return t.height * (t.D - x) / (t.D - t.C)
	}
	if math.IsInf(t.D, 1) {
		return t.height
	}
	return 0
}

// Rectangle is its height on [Start, End] and 0 elsewhere.
type Rectangle struct {
	base
	Start, End float64
}

// NewRectangle creates a Rectangle with height 1.
func NewRectangle(name string, start, end float64) *Rectangle {
	return &Rectangle{base: newBase(name), Start: start, End: end}
}

func (t *Rectangle) Kind() string       { return "Rectangle" }
func (t *Rectangle) Parameters() string { return t.params(t.Start, t.End) }
func (t *Rectangle) Clone() Term        { c := *t; return &c }

func (t *Rectangle) Membership(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if x >= t.Start && x <= t.End {
		return t.height
	}
	return 0
}

// Gaussian is a bell curve centred on Mean.
type Gaussian struct {
	base
	Mean, StandardDeviation float64
}

// NewGaussian creates a Gaussian with height 1.
func NewGaussian(name string, mean, standardDeviation float64) *Gaussian {
	return &Gaussian{base: newBase(name), Mean: mean, StandardDeviation: standardDeviation}
}

func (t *Gaussian) Kind() string       { return "Gaussian" }
func (t *Gaussian) Parameters() string { return t.params(t.Mean, t.StandardDeviation) }
func (t *Gaussian) Clone() Term        { c := *t; return &c }

func (t *Gaussian) Membership(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	d := x - t.Mean
	return t.height * math.Exp(-(d*d)/(2*t.StandardDeviation*t.StandardDeviation))
}

// Bell is the generalized bell function 1/(1+|(x-c)/w|^(2s)).
type Bell struct {
	base
	Center, Width, Slope float64
}

// NewBell creates a Bell with height 1.
func NewBell(name string, center, width, slope float64) *Bell {
	return &Bell{base: newBase(name), Center: center, Width: width, Slope: slope}
}

func (t *Bell) Kind() string       { return "Bell" }
func (t *Bell) Parameters() string { return t.params(t.Center, t.Width, t.Slope) }
func (t *Bell) Clone() Term        { c := *t; return &c }

func (t *Bell) Membership(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	return t.height / (1 + math.Pow(math.Abs((x-t.Center)/t.Width), 2*t.Slope))
}

// Constant always returns Value, regardless of x.
type Constant struct {
	base
	Value float64
}

// NewConstant creates a Constant.
func NewConstant(name string, value float64) *Constant {
	return &Constant{base: newBase(name), Value: value}
}

func (t *Constant) Kind() string               { return "Constant" }
func (t *Constant) Parameters() string         { return op.Str(t.Value) }
func (t *Constant) Clone() Term                { c := *t; return &c }
func (t *Constant) Membership(float64) float64 { return t.Value }
