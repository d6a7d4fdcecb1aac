// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package term

import (
	"math"
	"strings"

	"github.com/noldarim/fuzzy/pkg/fuzzy/infix"
	"github.com/noldarim/fuzzy/pkg/fuzzy/op"
)

// Linear is c₁·v₁ + … + cₙ·vₙ [+ c₀] over the engine's input values. A trailing
// coefficient beyond the number of inputs is the constant c₀.
type Linear struct {
	base
	Coefficients []float64
	inputs       []Input
}

// NewLinear creates a Linear term. Inputs are bound by the engine.
func NewLinear(name string, coefficients ...float64) *Linear {
	return &Linear{base: newBase(name), Coefficients: coefficients}
}

func (t *Linear) Kind() string { return "Linear" }

func (t *Linear) Parameters() string {
	parts := make([]string, len(t.Coefficients))
	for i, c := range t.Coefficients {
		parts[i] = op.Str(c)
	}
	return strings.Join(parts, " ")
}

func (t *Linear) Clone() Term {
	c := *t
	c.Coefficients = append([]float64(nil), t.Coefficients...)
	c.inputs = append([]Input(nil), t.inputs...)
	return &c
}

// BindInputs sets the variables the coefficients apply to, in order.
func (t *Linear) BindInputs(inputs []Input) {
	t.inputs = append([]Input(nil), inputs...)
}

func (t *Linear) Membership(float64) float64 {
	result := 0.0
	n := len(t.inputs)
	for i, input := range t.inputs {
		if i >= len(t.Coefficients) {
			break
		}
		result += t.Coefficients[i] * input.Value()
	}
	if len(t.Coefficients) > n {
		result += t.Coefficients[len(t.Coefficients)-1]
	}
	return result
}

// Function evaluates an arithmetic formula over the engine's input variables,
// referenced by name, and over x.
type Function struct {
	base
	program *infix.Program
	inputs  []Input
}

// NewFunction compiles formula into a Function term.
func NewFunction(name, formula string) (*Function, error) {
	program, err := infix.Compile(formula)
	if err != nil {
		return nil, err
	}
	return &Function{base: newBase(name), program: program}, nil
}

func (t *Function) Kind() string       { return "Function" }
func (t *Function) Parameters() string { return t.program.String() }

// Formula returns the infix formula.
func (t *Function) Formula() string { return t.program.String() }

func (t *Function) Clone() Term {
	c := *t
	c.inputs = append([]Input(nil), t.inputs...)
	return &c
}

// BindInputs sets the variables the formula may reference.
func (t *Function) BindInputs(inputs []Input) {
	t.inputs = append([]Input(nil), inputs...)
}

func (t *Function) Membership(x float64) float64 {
	vars := make(map[string]float64, len(t.inputs)+1)
	for _, input := range t.inputs {
		vars[input.Name()] = input.Value()
	}
	vars["x"] = x
	result, err := t.program.Evaluate(vars)
	if err != nil {
		return math.NaN()
	}
	return result
}
