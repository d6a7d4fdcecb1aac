// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package activation

import (
	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
	"github.com/noldarim/fuzzy/pkg/fuzzy/op"
	"github.com/noldarim/fuzzy/pkg/fuzzy/rule"
)

// Comparison is the relation Threshold checks between a degree and its value.
type Comparison string

const (
	LessThan           Comparison = "<"
	LessThanOrEqual    Comparison = "<="
	EqualTo            Comparison = "=="
	NotEqualTo         Comparison = "!="
	GreaterThanOrEqual Comparison = ">="
	GreaterThan        Comparison = ">"
)

var comparisonNames = map[string]Comparison{
	"<":                    LessThan,
	"LessThan":             LessThan,
	"<=":                   LessThanOrEqual,
	"LessThanOrEqualTo":    LessThanOrEqual,
	"==":                   EqualTo,
	"=":                    EqualTo,
	"EqualTo":              EqualTo,
	"!=":                   NotEqualTo,
	"NotEqualTo":           NotEqualTo,
	">=":                   GreaterThanOrEqual,
	"GreaterThanOrEqualTo": GreaterThanOrEqual,
	">":                    GreaterThan,
	"GreaterThan":          GreaterThan,
}

// ParseComparison accepts the operator symbols and their spelled-out names,
// such as ">=" or "GreaterThanOrEqualTo".
func ParseComparison(s string) (Comparison, error) {
	c, ok := comparisonNames[s]
	if !ok {
		return "", fuzzyerr.Configuration("activation <Threshold>", "unknown comparison <%s>", s)
	}
	return c, nil
}

// Satisfies reports whether degree compares to value as c requires, within
// the tolerance of package op.
func (c Comparison) Satisfies(degree, value float64) bool {
	switch c {
	case LessThan:
		return op.IsLt(degree, value)
	case LessThanOrEqual:
		return op.IsLE(degree, value)
	case EqualTo:
		return op.IsEq(degree, value)
	case NotEqualTo:
		return op.IsNEq(degree, value)
	case GreaterThanOrEqual:
		return op.IsGE(degree, value)
	case GreaterThan:
		return op.IsGt(degree, value)
	}
	return false
}

// Threshold triggers the rules whose degree satisfies the comparison with
// Value.
type Threshold struct {
	Comparison Comparison
	Value      float64
}

// NewThreshold creates a Threshold strategy.
func NewThreshold(c Comparison, value float64) *Threshold {
	return &Threshold{Comparison: c, Value: value}
}

func (*Threshold) Name() string { return "Threshold" }

func (a *Threshold) Parameters() string { return string(a.Comparison) + " " + op.Str(a.Value) }

func (a *Threshold) Activate(b *rule.RuleBlock) error {
	b.DeactivateRules()
	for _, r := range eligible(b) {
		degree, err := activate(b, r)
		if err != nil {
			return err
		}
		if a.Comparison.Satisfies(degree, a.Value) {
			if err := r.Trigger(b.Implication()); err != nil {
				return err
			}
		}
	}
	return nil
}
