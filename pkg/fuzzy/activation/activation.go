// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package activation provides the strategies that decide which rules of a
// block are triggered and with what degree.
//
// Every strategy deactivates all the rules of the block before evaluating
// them, and ignores rules that are unloaded or disabled. Evaluation failures,
// such as a missing conjunction, abort the activation and are returned.
package activation

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/noldarim/fuzzy/pkg/fuzzy/op"
	"github.com/noldarim/fuzzy/pkg/fuzzy/rule"
)

// eligible returns the rules a strategy may evaluate, in block order.
func eligible(b *rule.RuleBlock) []*rule.Rule {
	return lo.Filter(b.Rules(), func(r *rule.Rule, _ int) bool {
		return r.IsLoaded() && r.IsEnabled()
	})
}

func activate(b *rule.RuleBlock, r *rule.Rule) (float64, error) {
	return r.ActivateWith(b.Conjunction(), b.Disjunction())
}

// General triggers every rule in block order.
type General struct{}

func (General) Name() string       { return "General" }
func (General) Parameters() string { return "" }

func (General) Activate(b *rule.RuleBlock) error {
	b.DeactivateRules()
	for _, r := range eligible(b) {
		if _, err := activate(b, r); err != nil {
			return err
		}
		if err := r.Trigger(b.Implication()); err != nil {
			return err
		}
	}
	return nil
}

// First triggers, in block order, the first Count rules whose degree is
// positive and at least Threshold. Later rules are still activated.
type First struct {
	Count     int
	Threshold float64
}

// NewFirst creates a First strategy.
func NewFirst(count int, threshold float64) *First {
	return &First{Count: count, Threshold: threshold}
}

func (*First) Name() string         { return "First" }
func (a *First) Parameters() string { return fmt.Sprintf("%d %s", a.Count, op.Str(a.Threshold)) }

func (a *First) Activate(b *rule.RuleBlock) error {
	b.DeactivateRules()
	return triggerInOrder(b, eligible(b), a.Count, a.Threshold)
}

// Last is First iterating from the last rule of the block.
type Last struct {
	Count     int
	Threshold float64
}

// NewLast creates a Last strategy.
func NewLast(count int, threshold float64) *Last {
	return &Last{Count: count, Threshold: threshold}
}

func (*Last) Name() string         { return "Last" }
func (a *Last) Parameters() string { return fmt.Sprintf("%d %s", a.Count, op.Str(a.Threshold)) }

func (a *Last) Activate(b *rule.RuleBlock) error {
	b.DeactivateRules()
	rules := eligible(b)
	slices.Reverse(rules)
	return triggerInOrder(b, rules, a.Count, a.Threshold)
}

func triggerInOrder(b *rule.RuleBlock, rules []*rule.Rule, count int, threshold float64) error {
	triggered := 0
	for _, r := range rules {
		degree, err := activate(b, r)
		if err != nil {
			return err
		}
		if triggered < count && op.IsGt(degree, 0) && op.IsGE(degree, threshold) {
			if err := r.Trigger(b.Implication()); err != nil {
				return err
			}
			triggered++
		}
	}
	return nil
}

// Highest triggers the Count rules with the greatest positive degrees. Rules
// with equal degrees keep their block order. A Count below 1 triggers none.
type Highest struct {
	Count int
}

// NewHighest creates a Highest strategy.
func NewHighest(count int) *Highest { return &Highest{Count: count} }

func (*Highest) Name() string         { return "Highest" }
func (a *Highest) Parameters() string { return fmt.Sprint(a.Count) }

func (a *Highest) Activate(b *rule.RuleBlock) error {
	return triggerRanked(b, a.Count, func(x, y float64) int { return cmp.Compare(y, x) })
}

// Lowest triggers the Count rules with the smallest positive degrees. Rules
// with equal degrees keep their block order. A Count below 1 triggers none.
type Lowest struct {
	Count int
}

// NewLowest creates a Lowest strategy.
func NewLowest(count int) *Lowest { return &Lowest{Count: count} }

func (*Lowest) Name() string         { return "Lowest" }
func (a *Lowest) Parameters() string { return fmt.Sprint(a.Count) }

func (a *Lowest) Activate(b *rule.RuleBlock) error {
	return triggerRanked(b, a.Count, cmp.Compare[float64])
}

func triggerRanked(b *rule.RuleBlock, count int, order func(x, y float64) int) error {
	b.DeactivateRules()
	var ranked []*rule.Rule
	for _, r := range eligible(b) {
		degree, err := activate(b, r)
		if err != nil {
			return err
		}
		if op.IsGt(degree, 0) {
			ranked = append(ranked, r)
		}
	}
	slices.SortStableFunc(ranked, func(x, y *rule.Rule) int {
		return order(x.ActivationDegree(), y.ActivationDegree())
	})
	for _, r := range ranked[:max(0, min(count, len(ranked)))] {
		if err := r.Trigger(b.Implication()); err != nil {
			return err
		}
	}
	return nil
}

// Proportional triggers every rule with its degree divided by the sum of the
// degrees of the block, so the triggered degrees add up to 1. Nothing is
// triggered when every degree is 0.
type Proportional struct{}

func (Proportional) Name() string       { return "Proportional" }
func (Proportional) Parameters() string { return "" }

func (Proportional) Activate(b *rule.RuleBlock) error {
	b.DeactivateRules()
	rules := eligible(b)
	sum := 0.0
	for _, r := range rules {
		degree, err := activate(b, r)
		if err != nil {
			return err
		}
		sum += degree
	}
	if !op.IsGt(sum, 0) {
		return nil
	}
	for _, r := range rules {
		r.SetActivationDegree(r.ActivationDegree() / sum)
		if err := r.Trigger(b.Implication()); err != nil {
			return err
		}
	}
	return nil
}
