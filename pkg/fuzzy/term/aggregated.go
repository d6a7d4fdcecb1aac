// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package term

import (
	"fmt"
	"math"
	"strings"

	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
	"github.com/noldarim/fuzzy/pkg/fuzzy/norm"
	"github.com/noldarim/fuzzy/pkg/fuzzy/op"
)

// Activated is a term cut or scaled by the activation degree of the rule that
// produced it.
type Activated struct {
	Term        Term
	Degree      float64
	Implication norm.TNorm
}

// Membership computes Implication(Term(x), Degree). It is NaN without an
// implication operator.
func (a Activated) Membership(x float64) float64 {
	if math.IsNaN(x) || a.Implication == nil {
		return math.NaN()
	}
	return a.Implication.Compute(a.Term.Membership(x), a.Degree)
}

func (a Activated) String() string {
	return fmt.Sprintf("%s(%s,%s)", norm.NameOf(a.Implication), op.Str(a.Degree), a.Term.Name())
}

// Aggregated is the fuzzy output of a variable: the contributions of every
// triggered rule, folded with the aggregation operator.
type Aggregated struct {
	name        string
	Minimum     float64
	Maximum     float64
	Aggregation norm.SNorm
	terms       []Activated
}

// NewAggregated creates an empty set over [minimum, maximum].
func NewAggregated(name string, minimum, maximum float64, aggregation norm.SNorm) *Aggregated {
	return &Aggregated{name: name, Minimum: minimum, Maximum: maximum, Aggregation: aggregation}
}

func (a *Aggregated) Name() string { return a.name }
func (a *Aggregated) Kind() string { return "Aggregated" }

// SetName renames the set; output variables keep it aligned with their own name.
func (a *Aggregated) SetName(name string) { a.name = name }

// Parameters renders the aggregation operator and the contributions.
func (a *Aggregated) Parameters() string {
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.String()
	}
	return fmt.Sprintf("%s[%s]", norm.NameOf(a.Aggregation), strings.Join(parts, ","))
}

func (a *Aggregated) Clone() Term {
	c := *a
	c.terms = append([]Activated(nil), a.terms...)
	return &c
}

// Membership folds the contributions at x through the aggregation operator,
// starting from 0.
func (a *Aggregated) Membership(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if len(a.terms) > 0 && a.Aggregation == nil {
		return math.NaN()
	}
	mu := 0.0
	for _, t := range a.terms {
		mu = a.Aggregation.Compute(mu, t.Membership(x))
	}
	return mu
}

// ActivationDegree aggregates the degrees of the contributions of t. Without an
// aggregation operator the degrees are added.
func (a *Aggregated) ActivationDegree(t Term) float64 {
	result := 0.0
	for _, activated := range a.terms {
		if activated.Term != t {
			continue
		}
		if a.Aggregation != nil {
			result = a.Aggregation.Compute(result, activated.Degree)
		} else {
			result += activated.Degree
		}
	}
	return result
}

// HighestActivatedTerm returns the contribution with the greatest degree.
func (a *Aggregated) HighestActivatedTerm() (Activated, bool) {
	var best Activated
	found := false
	for _, t := range a.terms {
		if !found || op.IsGt(t.Degree, best.Degree) {
			best = t
			found = true
		}
	}
	return best, found
}

// AddTerm appends a contribution.
func (a *Aggregated) AddTerm(t Term, degree float64, implication norm.TNorm) {
	a.terms = append(a.terms, Activated{Term: t, Degree: degree, Implication: implication})
}

// Terms returns the contributions in insertion order.
func (a *Aggregated) Terms() []Activated { return a.terms }

// IsEmpty reports whether no rule contributed.
func (a *Aggregated) IsEmpty() bool { return len(a.terms) == 0 }

// Clear removes every contribution.
func (a *Aggregated) Clear() { a.terms = a.terms[:0] }

// Validate checks that Membership can be evaluated: a non-empty set needs an
// aggregation operator and every contribution an implication operator.
func (a *Aggregated) Validate() error {
	if len(a.terms) == 0 {
		return nil
	}
	component := fmt.Sprintf("output variable <%s>", a.name)
	if a.Aggregation == nil {
		return fuzzyerr.Configuration(component, "aggregation operator needed to aggregate the fuzzy output")
	}
	for _, t := range a.terms {
		if t.Implication == nil {
			return fuzzyerr.Configuration(component, "implication operator needed to activate term <%s>", t.Term.Name())
		}
	}
	return nil
}
