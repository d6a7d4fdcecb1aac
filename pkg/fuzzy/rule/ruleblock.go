// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package rule

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noldarim/fuzzy/internal/logger"
	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
	"github.com/noldarim/fuzzy/pkg/fuzzy/norm"
)

var (
	log     *zerolog.Logger
	logOnce sync.Once
)

func getLog() *zerolog.Logger {
	logOnce.Do(func() {
		l := logger.GetRuleLogger()
		log = &l
	})
	return log
}

// ErrNoActivation is returned by RuleBlock.Activate when no strategy is set.
var ErrNoActivation = fuzzyerr.Configuration("rule block", "activation method needed to activate the rules")

// Activation decides which rules of a block fire and with what degree.
// Implementations deactivate every rule first and skip rules that are unloaded
// or disabled.
type Activation interface {
	Name() string
	Parameters() string
	Activate(block *RuleBlock) error
}

// RuleBlock is an ordered set of rules sharing operators and an activation
// strategy.
type RuleBlock struct {
	name        string
	description string
	enabled     bool
	rules       []*Rule
	conjunction norm.TNorm
	disjunction norm.SNorm
	implication norm.TNorm
	activation  Activation
}

// NewRuleBlock creates an enabled, empty block without operators.
func NewRuleBlock(name string) *RuleBlock {
	return &RuleBlock{name: name, enabled: true}
}

func (b *RuleBlock) Name() string                { return b.name }
func (b *RuleBlock) SetName(name string)         { b.name = name }
func (b *RuleBlock) Description() string         { return b.description }
func (b *RuleBlock) SetDescription(d string)     { b.description = d }
func (b *RuleBlock) IsEnabled() bool             { return b.enabled }
func (b *RuleBlock) SetEnabled(enabled bool)     { b.enabled = enabled }
func (b *RuleBlock) Conjunction() norm.TNorm     { return b.conjunction }
func (b *RuleBlock) SetConjunction(t norm.TNorm) { b.conjunction = t }
func (b *RuleBlock) Disjunction() norm.SNorm     { return b.disjunction }
func (b *RuleBlock) SetDisjunction(s norm.SNorm) { b.disjunction = s }
func (b *RuleBlock) Implication() norm.TNorm     { return b.implication }
func (b *RuleBlock) SetImplication(t norm.TNorm) { b.implication = t }
func (b *RuleBlock) Activation() Activation      { return b.activation }
func (b *RuleBlock) SetActivation(a Activation)  { b.activation = a }
func (b *RuleBlock) Rules() []*Rule              { return b.rules }
func (b *RuleBlock) AddRule(r *Rule)             { b.rules = append(b.rules, r) }

// AddRules parses each text and appends the rules. Nothing is appended when
// any text fails to parse.
func (b *RuleBlock) AddRules(texts ...string) error {
	parsed := make([]*Rule, 0, len(texts))
	for _, text := range texts {
		r, err := Parse(text)
		if err != nil {
			return err
		}
		parsed = append(parsed, r)
	}
	b.rules = append(b.rules, parsed...)
	return nil
}

// LoadRules loads every rule, continuing past failures. The failures are
// joined into the returned error.
func (b *RuleBlock) LoadRules(resolver Resolver) error {
	var errs []error
	for i, r := range b.rules {
		if err := r.Load(resolver); err != nil {
			getLog().Debug().Err(err).Str("block", b.name).Int("rule", i).Msg("rule failed to load")
			errs = append(errs, fmt.Errorf("rule %d <%s>: %w", i+1, r.Text(), err))
		}
	}
	getLog().Debug().Str("block", b.name).Int("rules", len(b.rules)).Int("failed", len(errs)).Msg("rules loaded")
	return errors.Join(errs...)
}

// UnloadRules unloads every rule.
func (b *RuleBlock) UnloadRules() {
	for _, r := range b.rules {
		r.Unload()
	}
}

// Reload unloads and loads every rule.
func (b *RuleBlock) Reload(resolver Resolver) error {
	b.UnloadRules()
	return b.LoadRules(resolver)
}

// DeactivateRules resets every rule before a pass.
func (b *RuleBlock) DeactivateRules() {
	for _, r := range b.rules {
		r.Deactivate()
	}
}

// Activate runs the block's activation strategy.
func (b *RuleBlock) Activate() error {
	if b.activation == nil {
		return fmt.Errorf("rule block <%s>: %w", b.name, ErrNoActivation)
	}
	return b.activation.Activate(b)
}

// Triggered returns the rules triggered in the last pass.
func (b *RuleBlock) Triggered() []*Rule {
	var fired []*Rule
	for _, r := range b.rules {
		if r.IsTriggered() {
			fired = append(fired, r)
		}
	}
	return fired
}

// Clone copies the block with the same operators and strategy. The rules are
// copied unloaded and must be loaded against the new owner.
func (b *RuleBlock) Clone() *RuleBlock {
	c := *b
	c.rules = make([]*Rule, len(b.rules))
	for i, r := range b.rules {
		c.rules[i] = r.Clone()
	}
	return &c
}
