// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package variable holds the input and output variables of an engine.
package variable

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"

	"github.com/noldarim/fuzzy/pkg/fuzzy/op"
	"github.com/noldarim/fuzzy/pkg/fuzzy/term"
)

// Reference is what a rule proposition needs from the variable it names.
type Reference interface {
	Name() string
	Value() float64
	IsEnabled() bool
	Term(name string) (term.Term, bool)
}

// Variable is a named numeric cell over a range with an ordered set of terms.
type Variable struct {
	name             string
	description      string
	minimum          float64
	maximum          float64
	value            float64
	enabled          bool
	lockValueInRange bool
	terms            []term.Term
}

func newVariable(name string, minimum, maximum float64, terms []term.Term) Variable {
	return Variable{
		name:    name,
		minimum: minimum,
		maximum: maximum,
		value:   math.NaN(),
		enabled: true,
		terms:   terms,
	}
}

func (v *Variable) Name() string            { return v.name }
func (v *Variable) SetName(name string)     { v.name = name }
func (v *Variable) Description() string     { return v.description }
func (v *Variable) SetDescription(d string) { v.description = d }
func (v *Variable) Minimum() float64        { return v.minimum }
func (v *Variable) Maximum() float64        { return v.maximum }
func (v *Variable) IsEnabled() bool         { return v.enabled }
func (v *Variable) SetEnabled(enabled bool) { v.enabled = enabled }

// Range returns the minimum and maximum.
func (v *Variable) Range() (float64, float64) { return v.minimum, v.maximum }

// SetRange changes the range. It does not re-clamp the current value.
func (v *Variable) SetRange(minimum, maximum float64) {
	v.minimum, v.maximum = minimum, maximum
}

// Value returns the current value, NaN when unset.
func (v *Variable) Value() float64 { return v.value }

// SetValue stores x, clamped to the range when LockValueInRange is set.
func (v *Variable) SetValue(x float64) {
	if v.lockValueInRange {
		x = op.Bound(x, v.minimum, v.maximum)
	}
	v.value = x
}

func (v *Variable) LockValueInRange() bool        { return v.lockValueInRange }
func (v *Variable) SetLockValueInRange(lock bool) { v.lockValueInRange = lock }

// InRange reports whether x lies within [minimum, maximum].
func (v *Variable) InRange(x float64) bool {
	return op.IsGE(x, v.minimum) && op.IsLE(x, v.maximum)
}

// Terms returns the terms in declaration order.
func (v *Variable) Terms() []term.Term { return v.terms }

// AddTerm appends t.
func (v *Variable) AddTerm(t term.Term) { v.terms = append(v.terms, t) }

// Term looks a term up by name.
func (v *Variable) Term(name string) (term.Term, bool) {
	return lo.Find(v.terms, func(t term.Term) bool { return t.Name() == name })
}

// Fuzzify renders the membership of x to every term, as in
// "0.25/LOW + 0.75/MEDIUM + 0/HIGH".
func (v *Variable) Fuzzify(x float64) string {
	var b strings.Builder
	for i, t := range v.terms {
		mu := t.Membership(x)
		switch {
		case i == 0:
			b.WriteString(op.Str(mu))
		case op.IsNaN(mu) || op.IsGE(mu, 0):
			b.WriteString(" + " + op.Str(mu))
		default:
			b.WriteString(" - " + op.Str(-mu))
		}
		b.WriteString("/" + t.Name())
	}
	return b.String()
}

// HighestMembership returns the term with the greatest positive membership at
// x, or nil when no term has one.
func (v *Variable) HighestMembership(x float64) (term.Term, float64) {
	var best term.Term
	ymax := 0.0
	for _, t := range v.terms {
		if y := t.Membership(x); op.IsGt(y, ymax) {
			best, ymax = t, y
		}
	}
	return best, ymax
}

func (v *Variable) cloneTerms() []term.Term {
	return lo.Map(v.terms, func(t term.Term, _ int) term.Term { return t.Clone() })
}

func (v *Variable) String() string {
	return fmt.Sprintf("%s [%s, %s] = %s", v.name, op.Str(v.minimum), op.Str(v.maximum), op.Str(v.value))
}

// InputVariable is written by the caller before each pass.
type InputVariable struct {
	Variable
}

// NewInputVariable creates an enabled input variable with no value.
func NewInputVariable(name string, minimum, maximum float64, terms ...term.Term) *InputVariable {
	return &InputVariable{newVariable(name, minimum, maximum, terms)}
}

// FuzzyInputValue renders the fuzzification of the current value.
func (v *InputVariable) FuzzyInputValue() string { return v.Fuzzify(v.value) }

// Clone deep-copies the variable and its terms.
func (v *InputVariable) Clone() *InputVariable {
	c := *v
	c.terms = v.cloneTerms()
	return &c
}
