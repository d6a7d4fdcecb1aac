// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package rule

import (
	"strings"

	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
	"github.com/noldarim/fuzzy/pkg/fuzzy/hedge"
	"github.com/noldarim/fuzzy/pkg/fuzzy/norm"
	"github.com/noldarim/fuzzy/pkg/fuzzy/variable"
)

// Consequent is the "then" part of a rule: conclusions on output variables
// joined by and.
type Consequent struct {
	text        string
	conclusions []*Proposition
}

// Text returns the text last given to Load.
func (c *Consequent) Text() string { return c.text }

// Conclusions returns the loaded propositions in textual order.
func (c *Consequent) Conclusions() []*Proposition { return c.conclusions }

func (c *Consequent) IsLoaded() bool { return len(c.conclusions) > 0 }

func (c *Consequent) Unload() { c.conclusions = nil }

// Load parses text as "variable is [hedges] term [and ...]" over output
// variables. On failure the consequent is left unloaded.
func (c *Consequent) Load(text string, resolver Resolver) error {
	c.Unload()
	c.text = text

	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return fuzzyerr.Parse("", "", "expected a consequent")
	}

	var (
		conclusions []*Proposition
		proposition *Proposition
		consumed    []string
	)
	const sAnd = sAndOr
	expected := sVariable
	parsed := func() string { return strings.Join(consumed, " ") }

	for _, token := range tokens {
		switch {
		case expected&sVariable != 0:
			out, ok := resolver.OutputVariable(token)
			if !ok {
				return fuzzyerr.Parse(token, parsed(), "consequent expected an output variable")
			}
			proposition = &Proposition{Variable: out}
			conclusions = append(conclusions, proposition)
			expected = sIs
		case expected&sIs != 0:
			if token != Is {
				return fuzzyerr.Parse(token, parsed(), "consequent expected keyword <is>")
			}
			expected = sHedge | sTerm
		case expected&(sHedge|sTerm) != 0:
			if h, ok := hedge.Lookup(token); ok && !hedge.IsAny(h) {
				proposition.Hedges = append(proposition.Hedges, h)
				break
			}
			t, ok := proposition.Variable.Term(token)
			if !ok {
				return fuzzyerr.Parse(token, parsed(), "consequent expected hedge or term")
			}
			proposition.Term = t
			expected = sAnd
		case expected&sAnd != 0:
			if token != And {
				return fuzzyerr.Parse(token, parsed(), "consequent expected operator <and>")
			}
			expected = sVariable
		}
		consumed = append(consumed, token)
	}

	switch expected {
	case sVariable:
		return fuzzyerr.Parse("", parsed(), "consequent expected an output variable after <and>")
	case sIs:
		return fuzzyerr.Parse("", parsed(), "consequent expected keyword <is> after the variable")
	case sHedge | sTerm:
		return fuzzyerr.Parse("", parsed(), "consequent expected hedge or term after <is>")
	}
	c.conclusions = conclusions
	return nil
}

// Modify writes one contribution per conclusion on an enabled variable into
// that variable's fuzzy output. Each contribution's degree is the incoming
// degree with the conclusion's hedges applied.
func (c *Consequent) Modify(activationDegree float64, implication norm.TNorm) error {
	if !c.IsLoaded() {
		return fuzzyerr.Evaluation(c.text, "consequent is not loaded")
	}
	for _, p := range c.conclusions {
		if !p.Variable.IsEnabled() {
			continue
		}
		out := p.Variable.(*variable.OutputVariable)
		out.FuzzyOutput().AddTerm(p.Term, p.applyHedges(activationDegree), implication)
	}
	return nil
}

func (c *Consequent) String() string {
	if !c.IsLoaded() {
		return c.text
	}
	parts := make([]string, len(c.conclusions))
	for i, p := range c.conclusions {
		parts[i] = p.String()
	}
	return strings.Join(parts, " "+And+" ")
}
