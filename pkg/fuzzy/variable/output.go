// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package variable

import (
	"fmt"
	"math"
	"strings"

	"github.com/noldarim/fuzzy/pkg/fuzzy/defuzzifier"
	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
	"github.com/noldarim/fuzzy/pkg/fuzzy/norm"
	"github.com/noldarim/fuzzy/pkg/fuzzy/op"
	"github.com/noldarim/fuzzy/pkg/fuzzy/term"
)

// OutputVariable collects the contributions of triggered rules in its fuzzy
// output and defuzzifies them into its value.
type OutputVariable struct {
	Variable
	fuzzyOutput       *term.Aggregated
	defuzzifier       defuzzifier.Defuzzifier
	previousValue     float64
	defaultValue      float64
	lockPreviousValue bool
	usedFallback      bool
}

// NewOutputVariable creates an enabled output variable whose value, previous
// value and default value are NaN.
func NewOutputVariable(name string, minimum, maximum float64, terms ...term.Term) *OutputVariable {
	return &OutputVariable{
		Variable:      newVariable(name, minimum, maximum, terms),
		fuzzyOutput:   term.NewAggregated(name, minimum, maximum, nil),
		previousValue: math.NaN(),
		defaultValue:  math.NaN(),
	}
}

// SetName renames the variable and its fuzzy output.
func (v *OutputVariable) SetName(name string) {
	v.name = name
	v.fuzzyOutput.SetName(name)
}

// SetRange changes the range of the variable and its fuzzy output.
func (v *OutputVariable) SetRange(minimum, maximum float64) {
	v.Variable.SetRange(minimum, maximum)
	v.fuzzyOutput.Minimum, v.fuzzyOutput.Maximum = minimum, maximum
}

// FuzzyOutput returns the aggregated set written by rule consequents.
func (v *OutputVariable) FuzzyOutput() *term.Aggregated { return v.fuzzyOutput }

func (v *OutputVariable) Aggregation() norm.SNorm     { return v.fuzzyOutput.Aggregation }
func (v *OutputVariable) SetAggregation(a norm.SNorm) { v.fuzzyOutput.Aggregation = a }

func (v *OutputVariable) Defuzzifier() defuzzifier.Defuzzifier     { return v.defuzzifier }
func (v *OutputVariable) SetDefuzzifier(d defuzzifier.Defuzzifier) { v.defuzzifier = d }

func (v *OutputVariable) PreviousValue() float64         { return v.previousValue }
func (v *OutputVariable) SetPreviousValue(x float64)     { v.previousValue = x }
func (v *OutputVariable) DefaultValue() float64          { return v.defaultValue }
func (v *OutputVariable) SetDefaultValue(x float64)      { v.defaultValue = x }
func (v *OutputVariable) LockPreviousValue() bool        { return v.lockPreviousValue }
func (v *OutputVariable) SetLockPreviousValue(lock bool) { v.lockPreviousValue = lock }

// UsedFallback reports whether the last Defuzzify replaced a non-finite result.
func (v *OutputVariable) UsedFallback() bool { return v.usedFallback }

// Clear drops the contributions of the previous pass.
func (v *OutputVariable) Clear() { v.fuzzyOutput.Clear() }

// Restart forgets the value, the previous value and the contributions.
func (v *OutputVariable) Restart() {
	v.fuzzyOutput.Clear()
	v.value = math.NaN()
	v.previousValue = math.NaN()
	v.usedFallback = false
}

// Defuzzify computes the value from the fuzzy output. A disabled variable is
// left untouched. A non-finite result is replaced by the previous value when
// LockPreviousValue is set and the previous value is finite, otherwise by the
// default value.
func (v *OutputVariable) Defuzzify() error {
	if !v.enabled {
		return nil
	}
	if op.IsFinite(v.value) {
		v.previousValue = v.value
	}
	v.usedFallback = false

	result := math.NaN()
	if !v.fuzzyOutput.IsEmpty() {
		if v.defuzzifier == nil {
			return fuzzyerr.Configuration(fmt.Sprintf("output variable <%s>", v.name),
				"defuzzifier needed to defuzzify the fuzzy output")
		}
		if defuzzifier.IsIntegral(v.defuzzifier) {
			if err := v.fuzzyOutput.Validate(); err != nil {
				return err
			}
		}
		result = v.defuzzifier.Defuzzify(v.fuzzyOutput, v.minimum, v.maximum)
	}

	if !op.IsFinite(result) {
		v.usedFallback = true
		if v.lockPreviousValue && op.IsFinite(v.previousValue) {
			result = v.previousValue
		} else {
			result = v.defaultValue
		}
	}
	v.SetValue(result)
	return nil
}

// FuzzyOutputValue renders the activation degree of every term in the fuzzy
// output, as in "0.5/LOW + 0/MEDIUM + 0.2/HIGH".
func (v *OutputVariable) FuzzyOutputValue() string {
	parts := make([]string, len(v.terms))
	for i, t := range v.terms {
		parts[i] = op.Str(v.fuzzyOutput.ActivationDegree(t)) + "/" + t.Name()
	}
	return strings.Join(parts, " + ")
}

// Clone deep-copies the variable, its terms and its defuzzifier. The fuzzy
// output starts empty.
func (v *OutputVariable) Clone() *OutputVariable {
	c := *v
	c.terms = v.cloneTerms()
	c.fuzzyOutput = term.NewAggregated(v.name, v.minimum, v.maximum, v.fuzzyOutput.Aggregation)
	c.defuzzifier = defuzzifier.Clone(v.defuzzifier)
	return &c
}
