// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package term

import (
	"sort"

	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
)

type heightSetter interface {
	SetHeight(float64)
}

type constructor struct {
	arity    int
	scalable bool
	build    func(name string, p []float64) Term
}

var constructors = map[string]constructor{
	"Triangle": {3, true, func(n string, p []float64) Term { return NewTriangle(n, p[0], p[1], p[2]) }},
	"Trapezoid": {4, true, func(n string, p []float64) Term {
		return NewTrapezoid(n, p[0], p[1], p[2], p[3])
	}},
	"Rectangle": {2, true, func(n string, p []float64) Term { return NewRectangle(n, p[0], p[1]) }},
	"Gaussian":  {2, true, func(n string, p []float64) Term { return NewGaussian(n, p[0], p[1]) }},
	"Bell":      {3, true, func(n string, p []float64) Term { return NewBell(n, p[0], p[1], p[2]) }},
	"Ramp":      {2, true, func(n string, p []float64) Term { return NewRamp(n, p[0], p[1]) }},
	"Sigmoid":   {2, true, func(n string, p []float64) Term { return NewSigmoid(n, p[0], p[1]) }},
	"Concave":   {2, true, func(n string, p []float64) Term { return NewConcave(n, p[0], p[1]) }},
	"Constant":  {1, false, func(n string, p []float64) Term { return NewConstant(n, p[0]) }},
}

// New builds a term of the given kind. Shapes take their parameters in order,
// optionally followed by a height. Linear takes any number of coefficients;
// Function terms are built with NewFunction.
func New(kind, name string, parameters []float64) (Term, error) {
	if kind == "Linear" {
		return NewLinear(name, parameters...), nil
	}
	c, ok := constructors[kind]
	if !ok {
		return nil, fuzzyerr.Configuration("term <"+name+">", "unknown term kind <%s>", kind)
	}
	switch {
	case len(parameters) == c.arity:
	case len(parameters) == c.arity+1 && c.scalable:
	default:
		return nil, fuzzyerr.Configuration("term <"+name+">",
			"%s expects %d parameters (plus an optional height), got %d", kind, c.arity, len(parameters))
	}
	t := c.build(name, parameters)
	if len(parameters) == c.arity+1 {
		t.(heightSetter).SetHeight(parameters[c.arity])
	}
	return t, nil
}

// Kinds lists the kinds New and NewFunction accept.
func Kinds() []string {
	kinds := []string{"Function", "Linear"}
	for k := range constructors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
