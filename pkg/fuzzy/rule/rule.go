// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rule parses and evaluates rules of the form
//
//	if <antecedent> then <consequent> [with <weight>]
//
// and groups them into rule blocks that an activation strategy drives.
//
// A rule goes through the following states. It is created unloaded by Parse.
// Load resolves its variables and terms, or leaves it unloaded on any failure.
// Once loaded, every pass deactivates it, may activate it (compute its degree)
// and may trigger it (write its consequent into the output variables).
package rule

import (
	"math"
	"strings"

	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
	"github.com/noldarim/fuzzy/pkg/fuzzy/norm"
	"github.com/noldarim/fuzzy/pkg/fuzzy/op"
)

// Rule is a weighted implication between an antecedent and a consequent.
type Rule struct {
	text             string
	antecedent       Antecedent
	consequent       Consequent
	weight           float64
	enabled          bool
	activationDegree float64
	triggered        bool
}

// Parse splits text into its antecedent, consequent and weight. The returned
// rule is enabled but not loaded. Anything after a '#' is a comment.
func Parse(text string) (*Rule, error) {
	const (
		sNone = iota
		sIf
		sThen
		sWith
		sEnd
	)
	if i := strings.IndexByte(text, '#'); i >= 0 {
		text = text[:i]
	}
	r := &Rule{text: strings.TrimSpace(text), weight: 1, enabled: true}

	var antecedent, consequent []string
	state := sNone
	for _, token := range strings.Fields(text) {
		switch state {
		case sNone:
			if token != If {
				return nil, fuzzyerr.Parse(token, r.text, "expected keyword <if>")
			}
			state = sIf
		case sIf:
			if token == Then {
				state = sThen
				continue
			}
			antecedent = append(antecedent, token)
		case sThen:
			if token == With {
				state = sWith
				continue
			}
			consequent = append(consequent, token)
		case sWith:
			w, err := op.Parse(token)
			if err != nil || !op.IsFinite(w) || w < 0 {
				return nil, fuzzyerr.Parse(token, r.text, "expected a non-negative number as the weight")
			}
			r.weight = w
			state = sEnd
		case sEnd:
			return nil, fuzzyerr.Parse(token, r.text, "unexpected token at the end of the rule")
		}
	}

	switch {
	case state == sNone:
		return nil, fuzzyerr.Parse("", r.text, "keyword <if> not found")
	case state == sIf:
		return nil, fuzzyerr.Parse("", r.text, "keyword <then> not found")
	case state == sWith:
		return nil, fuzzyerr.Parse("", r.text, "expected a numeric value as the weight")
	case len(antecedent) == 0:
		return nil, fuzzyerr.Parse(Then, r.text, "expected an antecedent")
	case len(consequent) == 0:
		return nil, fuzzyerr.Parse("", r.text, "expected a consequent")
	}
	r.antecedent.text = strings.Join(antecedent, " ")
	r.consequent.text = strings.Join(consequent, " ")
	return r, nil
}

// MustParse is like Parse but panics on error. It is meant for rules written
// in code.
func MustParse(text string) *Rule {
	r, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Rule) Text() string                  { return r.text }
func (r *Rule) Antecedent() *Antecedent       { return &r.antecedent }
func (r *Rule) Consequent() *Consequent       { return &r.consequent }
func (r *Rule) Weight() float64               { return r.weight }
func (r *Rule) SetWeight(w float64)           { r.weight = w }
func (r *Rule) IsEnabled() bool               { return r.enabled }
func (r *Rule) SetEnabled(enabled bool)       { r.enabled = enabled }
func (r *Rule) ActivationDegree() float64     { return r.activationDegree }
func (r *Rule) SetActivationDegree(d float64) { r.activationDegree = d }
func (r *Rule) IsTriggered() bool             { return r.triggered }

// IsLoaded reports whether both halves are loaded.
func (r *Rule) IsLoaded() bool { return r.antecedent.IsLoaded() && r.consequent.IsLoaded() }

// Load resolves both halves against resolver. Either both load or neither
// does.
func (r *Rule) Load(resolver Resolver) error {
	r.Deactivate()
	if err := r.antecedent.Load(r.antecedent.text, resolver); err != nil {
		r.Unload()
		return err
	}
	if err := r.consequent.Load(r.consequent.text, resolver); err != nil {
		r.Unload()
		return err
	}
	return nil
}

// Unload drops both halves and deactivates the rule.
func (r *Rule) Unload() {
	r.Deactivate()
	r.antecedent.Unload()
	r.consequent.Unload()
}

// Deactivate resets the degree and the triggered flag.
func (r *Rule) Deactivate() {
	r.activationDegree = 0
	r.triggered = false
}

// ActivateWith computes and stores weight times the antecedent's degree.
func (r *Rule) ActivateWith(conjunction norm.TNorm, disjunction norm.SNorm) (float64, error) {
	if !r.IsLoaded() {
		return math.NaN(), fuzzyerr.Evaluation(r.text, "rule is not loaded")
	}
	degree, err := r.antecedent.ActivationDegree(conjunction, disjunction)
	if err != nil {
		return math.NaN(), err
	}
	r.activationDegree = r.weight * degree
	return r.activationDegree, nil
}

// Trigger modifies the consequent with the stored degree when the rule is
// enabled and the degree is positive.
func (r *Rule) Trigger(implication norm.TNorm) error {
	if !r.IsLoaded() {
		return fuzzyerr.Evaluation(r.text, "rule is not loaded")
	}
	if !r.enabled || !op.IsGt(r.activationDegree, 0) {
		return nil
	}
	if err := r.consequent.Modify(r.activationDegree, implication); err != nil {
		return err
	}
	r.triggered = true
	return nil
}

// String renders the rule from its loaded halves, which normalizes spacing
// and parentheses. The weight is omitted when it is 1.
func (r *Rule) String() string {
	s := If + " " + r.antecedent.String() + " " + Then + " " + r.consequent.String()
	if !op.IsEq(r.weight, 1) {
		s += " " + With + " " + op.Str(r.weight)
	}
	return s
}

// Clone returns an unloaded copy with the same text, weight and enabled flag.
func (r *Rule) Clone() *Rule {
	c := &Rule{text: r.text, weight: r.weight, enabled: r.enabled}
	c.antecedent.text = r.antecedent.text
	c.consequent.text = r.consequent.text
	return c
}
