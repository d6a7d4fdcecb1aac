// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/noldarim/fuzzy/pkg/fuzzy/activation"
	"github.com/noldarim/fuzzy/pkg/fuzzy/defuzzifier"
	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
	"github.com/noldarim/fuzzy/pkg/fuzzy/norm"
	"github.com/noldarim/fuzzy/pkg/fuzzy/rule"
	"github.com/noldarim/fuzzy/pkg/fuzzy/variable"
)

// Configure sets the operators and the activation of every rule block and the
// aggregation and defuzzifier of every output variable, all by registered
// name. An empty name or "none" clears the setting. Nothing is changed when
// any name is unknown.
func (e *Engine) Configure(conjunction, disjunction, implication, aggregation, defuzzifierName, activationName string) error {
	conj, err := norm.NewTNorm(conjunction)
	if err != nil {
		return fmt.Errorf("conjunction: %w", err)
	}
	disj, err := norm.NewSNorm(disjunction)
	if err != nil {
		return fmt.Errorf("disjunction: %w", err)
	}
	impl, err := norm.NewTNorm(implication)
	if err != nil {
		return fmt.Errorf("implication: %w", err)
	}
	agg, err := norm.NewSNorm(aggregation)
	if err != nil {
		return fmt.Errorf("aggregation: %w", err)
	}
	strategy, err := activation.New(activationName, nil)
	if err != nil {
		return err
	}
	if _, err := defuzzifier.New(defuzzifierName, 0, defuzzifier.Automatic); err != nil {
		return err
	}

	for _, b := range e.blocks {
		b.SetConjunction(conj)
		b.SetDisjunction(disj)
		b.SetImplication(impl)
		b.SetActivation(strategy)
	}
	for _, v := range e.outputs {
		d, _ := defuzzifier.New(defuzzifierName, 0, defuzzifier.Automatic)
		v.SetAggregation(agg)
		v.SetDefuzzifier(d)
	}
	return nil
}

// Validate reports everything that would keep Process from succeeding or
// from producing values: missing variables or blocks, unloaded rules and
// missing operators or defuzzifiers. The problems are joined.
func (e *Engine) Validate() error {
	var errs []error
	fail := func(component, format string, args ...any) {
		errs = append(errs, fuzzyerr.Configuration(component, format, args...))
	}
	component := fmt.Sprintf("engine <%s>", e.name)

	if len(e.inputs) == 0 {
		fail(component, "no input variables")
	}
	if len(e.outputs) == 0 {
		fail(component, "no output variables")
	}
	if len(e.blocks) == 0 {
		fail(component, "no rule blocks")
	}

	for _, v := range e.outputs {
		component := fmt.Sprintf("output variable <%s>", v.Name())
		if v.Defuzzifier() == nil {
			fail(component, "no defuzzifier")
		} else if defuzzifier.IsIntegral(v.Defuzzifier()) && v.Aggregation() == nil {
			fail(component, "no aggregation operator, which %s needs", v.Defuzzifier().Name())
		}
	}

	for _, b := range e.blocks {
		if !b.IsEnabled() {
			continue
		}
		component := fmt.Sprintf("rule block <%s>", b.Name())
		if len(b.Rules()) == 0 {
			fail(component, "no rules")
		}
		var needsConjunction, needsDisjunction, needsImplication bool
		for _, r := range b.Rules() {
			if !r.IsLoaded() {
				fail(component, "rule <%s> is not loaded", r.Text())
				continue
			}
			needsConjunction = needsConjunction || r.Antecedent().Uses(rule.And)
			needsDisjunction = needsDisjunction || r.Antecedent().Uses(rule.Or)
			needsImplication = needsImplication || concludesIntegral(r)
		}
		if needsConjunction && b.Conjunction() == nil {
			fail(component, "no conjunction operator, which rules using <and> need")
		}
		if needsDisjunction && b.Disjunction() == nil {
			fail(component, "no disjunction operator, which rules using <or> need")
		}
		if needsImplication && b.Implication() == nil {
			fail(component, "no implication operator, which output variables with integral defuzzifiers need")
		}
	}
	return errors.Join(errs...)
}

func concludesIntegral(r *rule.Rule) bool {
	for _, p := range r.Consequent().Conclusions() {
		if out, ok := p.Variable.(*variable.OutputVariable); ok && defuzzifier.IsIntegral(out.Defuzzifier()) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy with its own ID: variables and terms are copied,
// rule blocks keep their operators and strategy, and the rules loaded here are
// loaded again against the copy's variables.
func (e *Engine) Clone() (*Engine, error) {
	c := &Engine{id: uuid.NewString(), name: e.name, description: e.description}
	for _, v := range e.inputs {
		c.inputs = append(c.inputs, v.Clone())
	}
	for _, v := range e.outputs {
		c.outputs = append(c.outputs, v.Clone())
	}
	c.bindTerms()
	for _, b := range e.blocks {
		clone := b.Clone()
		for i, r := range b.Rules() {
			if !r.IsLoaded() {
				continue
			}
			if err := clone.Rules()[i].Load(c); err != nil {
				return nil, fmt.Errorf("rule block <%s>: %w", b.Name(), err)
			}
		}
		c.blocks = append(c.blocks, clone)
	}
	return c, nil
}
