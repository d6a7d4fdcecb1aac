// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package defuzzifier

import (
	"math"

	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
	"github.com/noldarim/fuzzy/pkg/fuzzy/term"
)

// Type selects how a weighted defuzzifier reads the value of a contribution.
type Type int

const (
	// Automatic infers the type from the first contribution's term.
	Automatic Type = iota
	// TakagiSugeno uses the term's membership at the activation degree.
	TakagiSugeno
	// Tsukamoto inverts monotone terms at the activation degree.
	Tsukamoto
)

func (t Type) String() string {
	switch t {
	case TakagiSugeno:
		return "TakagiSugeno"
	case Tsukamoto:
		return "Tsukamoto"
	default:
		return "Automatic"
	}
}

// ParseType parses the names produced by Type.String. An empty name is Automatic.
func ParseType(name string) (Type, error) {
	switch name {
	case "", "Automatic":
		return Automatic, nil
	case "TakagiSugeno":
		return TakagiSugeno, nil
	case "Tsukamoto":
		return Tsukamoto, nil
	}
	return Automatic, fuzzyerr.Configuration("defuzzifier", "unknown weighted type <%s>", name)
}

// InferType returns TakagiSugeno for Constant, Linear and Function terms and
// Tsukamoto for anything else.
func InferType(t term.Term) Type {
	if term.IsTakagiSugeno(t) {
		return TakagiSugeno
	}
	return Tsukamoto
}

// Weighted carries the type shared by the weighted defuzzifiers.
type Weighted struct {
	typ Type
}

// Type returns the configured type.
func (w *Weighted) Type() Type { return w.typ }

// SetType changes the configured type.
func (w *Weighted) SetType(t Type) { w.typ = t }

func (w *Weighted) Parameters() string { return w.typ.String() }

// resolve returns the effective type for a set, inferring it when Automatic.
func (w *Weighted) resolve(agg *term.Aggregated) Type {
	if w.typ != Automatic {
		return w.typ
	}
	return InferType(agg.Terms()[0].Term)
}

// value is z in Σw·z: the term read at degree w.
func value(typ Type, t term.Term, w, minimum, maximum float64) float64 {
	if typ == Tsukamoto {
		if m, ok := t.(term.Monotonic); ok {
			return m.Tsukamoto(w, minimum, maximum)
		}
	}
	return t.Membership(w)
}

// weightedTerms returns the aggregated set behind t, or false when there is
// nothing to defuzzify.
func weightedTerms(t term.Term) (*term.Aggregated, bool) {
	agg, ok := t.(*term.Aggregated)
	if !ok || agg.IsEmpty() {
		return nil, false
	}
	return agg, true
}

// accumulate computes Σ w·z and Σ w. With custom set, the contribution's
// implication replaces the product and the set's aggregation replaces the sum
// when they are configured.
func (w *Weighted) accumulate(agg *term.Aggregated, minimum, maximum float64, custom bool) (sum, weights float64) {
	typ := w.resolve(agg)
	for _, activated := range agg.Terms() {
		degree := activated.Degree
		z := value(typ, activated.Term, degree, minimum, maximum)
		product := degree * z
		if custom && activated.Implication != nil {
			product = activated.Implication.Compute(degree, z)
		}
		if custom && agg.Aggregation != nil {
			sum = agg.Aggregation.Compute(sum, product)
			weights = agg.Aggregation.Compute(weights, degree)
		} else {
			sum += product
			weights += degree
		}
	}
	return sum, weights
}

// WeightedAverage computes Σ(w·z)/Σw.
type WeightedAverage struct{ Weighted }

// NewWeightedAverage creates a WeightedAverage of the given type.
func NewWeightedAverage(t Type) *WeightedAverage { return &WeightedAverage{Weighted{typ: t}} }

func (*WeightedAverage) Name() string { return "WeightedAverage" }

func (d *WeightedAverage) Defuzzify(t term.Term, minimum, maximum float64) float64 {
	agg, ok := weightedTerms(t)
	if !ok {
		return math.NaN()
	}
	sum, weights := d.accumulate(agg, minimum, maximum, false)
	return sum / weights
}

// WeightedSum computes Σ(w·z).
type WeightedSum struct{ Weighted }

// NewWeightedSum creates a WeightedSum of the given type.
func NewWeightedSum(t Type) *WeightedSum { return &WeightedSum{Weighted{typ: t}} }

func (*WeightedSum) Name() string { return "WeightedSum" }

func (d *WeightedSum) Defuzzify(t term.Term, minimum, maximum float64) float64 {
	agg, ok := weightedTerms(t)
	if !ok {
		return math.NaN()
	}
	sum, _ := d.accumulate(agg, minimum, maximum, false)
	return sum
}

// WeightedAverageCustom is WeightedAverage with the configured operators in
// place of the product and the sum.
type WeightedAverageCustom struct{ Weighted }

// NewWeightedAverageCustom creates a WeightedAverageCustom of the given type.
func NewWeightedAverageCustom(t Type) *WeightedAverageCustom {
	return &WeightedAverageCustom{Weighted{typ: t}}
}

func (*WeightedAverageCustom) Name() string { return "WeightedAverageCustom" }

func (d *WeightedAverageCustom) Defuzzify(t term.Term, minimum, maximum float64) float64 {
	agg, ok := weightedTerms(t)
	if !ok {
		return math.NaN()
	}
	sum, weights := d.accumulate(agg, minimum, maximum, true)
	return sum / weights
}

// WeightedSumCustom is WeightedSum with the configured operators in place of
// the product and the sum.
type WeightedSumCustom struct{ Weighted }

// NewWeightedSumCustom creates a WeightedSumCustom of the given type.
func NewWeightedSumCustom(t Type) *WeightedSumCustom {
	return &WeightedSumCustom{Weighted{typ: t}}
}

func (*WeightedSumCustom) Name() string { return "WeightedSumCustom" }

func (d *WeightedSumCustom) Defuzzify(t term.Term, minimum, maximum float64) float64 {
	agg, ok := weightedTerms(t)
	if !ok {
		return math.NaN()
	}
	sum, _ := d.accumulate(agg, minimum, maximum, true)
	return sum
}
