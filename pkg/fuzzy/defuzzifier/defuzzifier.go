// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package defuzzifier reduces the fuzzy output of a variable to a crisp value.
//
// Two families exist. Integral defuzzifiers sample the aggregated set at the
// midpoints of a fixed number of slices over the variable's range. Weighted
// defuzzifiers skip integration and combine each contribution's degree with the
// value of its term, which suits Takagi-Sugeno and Tsukamoto consequents.
package defuzzifier

import (
	"sort"

	"github.com/samber/lo"

	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
	"github.com/noldarim/fuzzy/pkg/fuzzy/term"
)

// Defuzzifier reduces a fuzzy set over [minimum, maximum] to a single value.
type Defuzzifier interface {
	Name() string
	Parameters() string
	Defuzzify(t term.Term, minimum, maximum float64) float64
}

// IsIntegral reports whether d samples the set numerically.
func IsIntegral(d Defuzzifier) bool {
	_, ok := d.(interface{ integral() })
	return ok
}

// IsWeighted reports whether d is one of the weighted defuzzifiers.
func IsWeighted(d Defuzzifier) bool {
	_, ok := d.(interface{ Type() Type })
	return ok
}

// TypeOf returns the configured type of a weighted defuzzifier.
func TypeOf(d Defuzzifier) (Type, bool) {
	w, ok := d.(interface{ Type() Type })
	if !ok {
		return Automatic, false
	}
	return w.Type(), true
}

var integrals = map[string]func(resolution int) Defuzzifier{
	"Centroid":          func(r int) Defuzzifier { return NewCentroid(r) },
	"Bisector":          func(r int) Defuzzifier { return NewBisector(r) },
	"SmallestOfMaximum": func(r int) Defuzzifier { return NewSmallestOfMaximum(r) },
	"LargestOfMaximum":  func(r int) Defuzzifier { return NewLargestOfMaximum(r) },
	"MeanOfMaximum":     func(r int) Defuzzifier { return NewMeanOfMaximum(r) },
}

var weighted = map[string]func(t Type) Defuzzifier{
	"WeightedAverage":       func(t Type) Defuzzifier { return NewWeightedAverage(t) },
	"WeightedSum":           func(t Type) Defuzzifier { return NewWeightedSum(t) },
	"WeightedAverageCustom": func(t Type) Defuzzifier { return NewWeightedAverageCustom(t) },
	"WeightedSumCustom":     func(t Type) Defuzzifier { return NewWeightedSumCustom(t) },
}

// New returns the defuzzifier registered under name. Resolution applies to the
// integral family (0 selects DefaultResolution) and typ to the weighted family.
// An empty name or "none" returns nil and no error.
func New(name string, resolution int, typ Type) (Defuzzifier, error) {
	if name == "" || name == "none" {
		return nil, nil
	}
	if build, ok := integrals[name]; ok {
		if resolution < 0 {
			return nil, fuzzyerr.Configuration("defuzzifier <"+name+">", "resolution must be positive, got %d", resolution)
		}
		return build(resolution), nil
	}
	if build, ok := weighted[name]; ok {
		return build(typ), nil
	}
	return nil, fuzzyerr.Configuration("defuzzifier", "unknown defuzzifier <%s>", name)
}

// Names lists the registered defuzzifiers in lexical order.
func Names() []string {
	names := append(lo.Keys(integrals), lo.Keys(weighted)...)
	sort.Strings(names)
	return names
}

// Clone returns an independent defuzzifier with the same name and parameters.
func Clone(d Defuzzifier) Defuzzifier {
	if d == nil {
		return nil
	}
	resolution := 0
	if r, ok := d.(interface{ Resolution() int }); ok {
		resolution = r.Resolution()
	}
	typ, _ := TypeOf(d)
	c, err := New(d.Name(), resolution, typ)
	if err != nil {
		return d
	}
	return c
}
