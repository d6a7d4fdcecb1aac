// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package hedge provides the unary modifiers that may precede a term in a
// proposition, e.g. "ambient is very DARK".
package hedge

import (
	"math"
	"sort"

	"github.com/samber/lo"
)

// Hedge modifies a membership degree.
type Hedge interface {
	Name() string
	Apply(x float64) float64
}

// Any matches every value: it always returns 1. A proposition whose hedges end
// in Any carries no term and ignores its variable's value.
type Any struct{}

func (Any) Name() string          { return "any" }
func (Any) Apply(float64) float64 { return 1 }

// Not computes 1-x.
type Not struct{}

func (Not) Name() string            { return "not" }
func (Not) Apply(x float64) float64 { return 1 - x }

// Extremely intensifies around 0.5.
type Extremely struct{}

func (Extremely) Name() string { return "extremely" }
func (Extremely) Apply(x float64) float64 {
	if x <= 0.5 {
		return 2 * x * x
	}
	y := 1 - x
	return 1 - 2*y*y
}

// Seldom dilutes around 0.5.
type Seldom struct{}

func (Seldom) Name() string { return "seldom" }
func (Seldom) Apply(x float64) float64 {
	if x <= 0.5 {
		return math.Sqrt(0.5 * x)
	}
	return 1 - math.Sqrt(0.5*(1-x))
}

// Somewhat computes sqrt(x).
type Somewhat struct{}

func (Somewhat) Name() string            { return "somewhat" }
func (Somewhat) Apply(x float64) float64 { return math.Sqrt(x) }

// Very computes x².
type Very struct{}

func (Very) Name() string            { return "very" }
func (Very) Apply(x float64) float64 { return x * x }

var registry = map[string]Hedge{
	"any":       Any{},
	"not":       Not{},
	"extremely": Extremely{},
	"seldom":    Seldom{},
	"somewhat":  Somewhat{},
	"very":      Very{},
}

// Lookup returns the hedge registered under name.
func Lookup(name string) (Hedge, bool) {
	h, ok := registry[name]
	return h, ok
}

// Names lists the registered hedges in lexical order.
func Names() []string {
	names := lo.Keys(registry)
	sort.Strings(names)
	return names
}

// IsAny reports whether h is the Any hedge.
func IsAny(h Hedge) bool {
	_, ok := h.(Any)
	return ok
}
