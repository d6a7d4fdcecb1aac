// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package rule

import (
	"fmt"
	"math"
	"strings"

	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
	"github.com/noldarim/fuzzy/pkg/fuzzy/hedge"
	"github.com/noldarim/fuzzy/pkg/fuzzy/infix"
	"github.com/noldarim/fuzzy/pkg/fuzzy/norm"
	"github.com/noldarim/fuzzy/pkg/fuzzy/variable"
)

// Resolver looks variables up by name. The engine implements it.
type Resolver interface {
	InputVariable(name string) (*variable.InputVariable, bool)
	OutputVariable(name string) (*variable.OutputVariable, bool)
}

// parser states; several may be expected at once.
type state uint8

const (
	sVariable state = 1 << iota
	sIs
	sHedge
	sTerm
	sAndOr
)

// Antecedent is the "if" part of a rule.
type Antecedent struct {
	text       string
	expression Expression
}

// Text returns the text last given to Load.
func (a *Antecedent) Text() string { return a.text }

// Expression returns the root of the loaded tree, nil when unloaded.
func (a *Antecedent) Expression() Expression { return a.expression }

func (a *Antecedent) IsLoaded() bool { return a.expression != nil }

func (a *Antecedent) Unload() { a.expression = nil }

// Load parses text into an expression tree, resolving variables and terms
// through resolver. On failure the antecedent is left unloaded.
//
// The text is first converted to postfix so that precedence and parentheses
// are settled; the tree is then built by a state machine that accepts one
// token at a time.
func (a *Antecedent) Load(text string, resolver Resolver) error {
	a.Unload()
	a.text = text

	postfix, err := infix.ToPostfix(text)
	if err != nil {
		return err
	}
	tokens := strings.Fields(postfix)
	if len(tokens) == 0 {
		return fuzzyerr.Parse("", "", "expected an antecedent")
	}

	var (
		stack       []Expression
		proposition *Proposition
		consumed    []string
	)
	expected := sVariable
	parsed := func() string { return strings.Join(consumed, " ") }

	for _, token := range tokens {
		switch {
		case expected&sVariable != 0 && isVariable(resolver, token):
			proposition = &Proposition{Variable: lookup(resolver, token)}
			stack = append(stack, proposition)
			expected = sIs
		case expected&sIs != 0 && token == Is:
			expected = sHedge | sTerm
		case expected&sHedge != 0 && isHedge(token):
			h, _ := hedge.Lookup(token)
			proposition.Hedges = append(proposition.Hedges, h)
			if hedge.IsAny(h) {
				expected = sVariable | sAndOr
			} else {
				expected = sHedge | sTerm
			}
		case expected&sTerm != 0 && hasTerm(proposition, token):
			proposition.Term, _ = proposition.Variable.Term(token)
			expected = sVariable | sAndOr
		case expected&sAndOr != 0 && (token == And || token == Or):
			if len(stack) < 2 {
				return fuzzyerr.Parse(token, parsed(), "logical operator expects two operands")
			}
			right, left := stack[len(stack)-1], stack[len(stack)-2]
			stack = append(stack[:len(stack)-2], &Operator{Name: token, Left: left, Right: right})
			expected = sVariable | sAndOr
		default:
			return fuzzyerr.Parse(token, parsed(), unexpected(expected))
		}
		consumed = append(consumed, token)
	}

	if expected&(sVariable|sAndOr) == 0 {
		return fuzzyerr.Parse("", parsed(), unexpected(expected)+" at the end of the antecedent")
	}
	if len(stack) != 1 {
		remaining := make([]string, len(stack))
		for i, e := range stack {
			remaining[i] = e.String()
		}
		return fuzzyerr.Parse("", parsed(),
			fmt.Sprintf("unable to parse the following expressions: <%s>", strings.Join(remaining, "> <")))
	}
	a.expression = stack[0]
	return nil
}

func unexpected(expected state) string {
	switch {
	case expected&(sVariable|sAndOr) != 0:
		return "expected variable or logical operator"
	case expected&sIs != 0:
		return "expected keyword <is>"
	default:
		return "expected hedge or term"
	}
}

func lookup(resolver Resolver, name string) variable.Reference {
	if v, ok := resolver.InputVariable(name); ok {
		return v
	}
	if v, ok := resolver.OutputVariable(name); ok {
		return v
	}
	return nil
}

func isVariable(resolver Resolver, name string) bool { return lookup(resolver, name) != nil }

func isHedge(name string) bool {
	_, ok := hedge.Lookup(name)
	return ok
}

func hasTerm(p *Proposition, name string) bool {
	_, ok := p.Variable.Term(name)
	return ok
}

// ActivationDegree evaluates the tree with the given operators. An operator
// missing for an and or an or the tree contains is a configuration error.
func (a *Antecedent) ActivationDegree(conjunction norm.TNorm, disjunction norm.SNorm) (float64, error) {
	if !a.IsLoaded() {
		return math.NaN(), fuzzyerr.Evaluation(a.text, "antecedent is not loaded")
	}
	return a.activationDegree(conjunction, disjunction, a.expression)
}

func (a *Antecedent) activationDegree(conjunction norm.TNorm, disjunction norm.SNorm, node Expression) (float64, error) {
	switch e := node.(type) {
	case *Proposition:
		if !e.Variable.IsEnabled() {
			return 0, nil
		}
		if e.endsWithAny() {
			return e.applyHedges(math.NaN()), nil
		}
		var degree float64
		if out, ok := e.Variable.(*variable.OutputVariable); ok {
			degree = out.FuzzyOutput().ActivationDegree(e.Term)
		} else {
			degree = e.Term.Membership(e.Variable.Value())
		}
		return e.applyHedges(degree), nil

	case *Operator:
		left, err := a.activationDegree(conjunction, disjunction, e.Left)
		if err != nil {
			return math.NaN(), err
		}
		right, err := a.activationDegree(conjunction, disjunction, e.Right)
		if err != nil {
			return math.NaN(), err
		}
		switch e.Name {
		case And:
			if conjunction == nil {
				return math.NaN(), fuzzyerr.Configuration("rule <"+a.text+">", "rule requires a conjunction operator")
			}
			return conjunction.Compute(left, right), nil
		case Or:
			if disjunction == nil {
				return math.NaN(), fuzzyerr.Configuration("rule <"+a.text+">", "rule requires a disjunction operator")
			}
			return disjunction.Compute(left, right), nil
		}
		return math.NaN(), fuzzyerr.Evaluation(a.text, "unknown logical operator <"+e.Name+">")
	}
	return math.NaN(), fuzzyerr.Evaluation(a.text, fmt.Sprintf("unexpected expression %T", node))
}

// Uses reports whether the loaded tree contains the logical operator name.
func (a *Antecedent) Uses(name string) bool {
	var walk func(Expression) bool
	walk = func(e Expression) bool {
		o, ok := e.(*Operator)
		if !ok {
			return false
		}
		return o.Name == name || walk(o.Left) || walk(o.Right)
	}
	return a.IsLoaded() && walk(a.expression)
}

// String renders the loaded tree in infix with the fewest parentheses that
// preserve its shape, or the raw text when unloaded.
func (a *Antecedent) String() string {
	if !a.IsLoaded() {
		return a.text
	}
	return format(a.expression)
}
