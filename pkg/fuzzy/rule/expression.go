// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package rule

import (
	"strings"

	"github.com/noldarim/fuzzy/pkg/fuzzy/hedge"
	"github.com/noldarim/fuzzy/pkg/fuzzy/term"
	"github.com/noldarim/fuzzy/pkg/fuzzy/variable"
)

// Keywords of the rule grammar.
const (
	If   = "if"
	Is   = "is"
	Then = "then"
	With = "with"
	And  = "and"
	Or   = "or"
)

// Expression is a node of an antecedent: a *Proposition leaf or an *Operator.
type Expression interface {
	String() string
	expression()
}

// Proposition states that a variable is a term, possibly hedged, as in
// "ambient is very DARK". Term is nil only when the last hedge is any.
type Proposition struct {
	Variable variable.Reference
	Hedges   []hedge.Hedge
	Term     term.Term
}

func (*Proposition) expression() {}

func (p *Proposition) String() string {
	parts := []string{p.Variable.Name(), Is}
	for _, h := range p.Hedges {
		parts = append(parts, h.Name())
	}
	if p.Term != nil {
		parts = append(parts, p.Term.Name())
	}
	return strings.Join(parts, " ")
}

// endsWithAny reports whether the last hedge is any.
func (p *Proposition) endsWithAny() bool {
	return len(p.Hedges) > 0 && hedge.IsAny(p.Hedges[len(p.Hedges)-1])
}

// applyHedges applies the hedges to x, nearest to the term first.
func (p *Proposition) applyHedges(x float64) float64 {
	for i := len(p.Hedges) - 1; i >= 0; i-- {
		x = p.Hedges[i].Apply(x)
	}
	return x
}

// Operator joins two expressions with and or or.
type Operator struct {
	Name  string
	Left  Expression
	Right Expression
}

func (*Operator) expression() {}

func (o *Operator) String() string { return format(o) }

func precedence(e Expression) int {
	o, ok := e.(*Operator)
	if !ok {
		return 100
	}
	if o.Name == And {
		return 60
	}
	return 50
}

// format renders e in infix, parenthesizing only where the tree shape would
// otherwise be lost: and binds tighter than or, and both associate left.
func format(e Expression) string {
	o, ok := e.(*Operator)
	if !ok {
		return e.String()
	}
	p := precedence(o)
	left, right := format(o.Left), format(o.Right)
	if precedence(o.Left) < p {
		left = "(" + left + ")"
	}
	if precedence(o.Right) <= p {
		right = "(" + right + ")"
	}
	return left + " " + o.Name + " " + right
}
