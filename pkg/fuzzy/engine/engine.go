// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine ties input variables, output variables and rule blocks
// together and runs inference passes over them.
//
// An Engine is not safe for concurrent use. Callers that need parallel passes
// either serialize access or give each goroutine its own Clone.
package engine

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/noldarim/fuzzy/internal/logger"
	"github.com/noldarim/fuzzy/pkg/fuzzy/activation"
	"github.com/noldarim/fuzzy/pkg/fuzzy/rule"
	"github.com/noldarim/fuzzy/pkg/fuzzy/term"
	"github.com/noldarim/fuzzy/pkg/fuzzy/variable"
)

var (
	log     *zerolog.Logger
	logOnce sync.Once
)

func getLog() *zerolog.Logger {
	logOnce.Do(func() {
		l := logger.GetEngineLogger()
		log = &l
	})
	return log
}

// ErrUnknownVariable is wrapped by the errors of lookups by name.
var ErrUnknownVariable = errors.New("unknown variable")

// Engine owns the variables and rule blocks of one fuzzy system.
type Engine struct {
	id          string
	name        string
	description string
	inputs      []*variable.InputVariable
	outputs     []*variable.OutputVariable
	blocks      []*rule.RuleBlock
}

// New creates an empty engine with a fresh instance ID.
func New(name string) *Engine {
	return &Engine{id: uuid.NewString(), name: name}
}

// ID identifies this instance; clones get their own.
func (e *Engine) ID() string { return e.id }

func (e *Engine) Name() string            { return e.name }
func (e *Engine) SetName(name string)     { e.name = name }
func (e *Engine) Description() string     { return e.description }
func (e *Engine) SetDescription(d string) { e.description = d }

func (e *Engine) AddInputVariable(v *variable.InputVariable)   { e.inputs = append(e.inputs, v) }
func (e *Engine) AddOutputVariable(v *variable.OutputVariable) { e.outputs = append(e.outputs, v) }
func (e *Engine) AddRuleBlock(b *rule.RuleBlock)               { e.blocks = append(e.blocks, b) }

func (e *Engine) InputVariables() []*variable.InputVariable   { return e.inputs }
func (e *Engine) OutputVariables() []*variable.OutputVariable { return e.outputs }
func (e *Engine) RuleBlocks() []*rule.RuleBlock               { return e.blocks }

// InputVariable looks an input variable up by name.
func (e *Engine) InputVariable(name string) (*variable.InputVariable, bool) {
	return lo.Find(e.inputs, func(v *variable.InputVariable) bool { return v.Name() == name })
}

// OutputVariable looks an output variable up by name.
func (e *Engine) OutputVariable(name string) (*variable.OutputVariable, bool) {
	return lo.Find(e.outputs, func(v *variable.OutputVariable) bool { return v.Name() == name })
}

// RuleBlock looks a rule block up by name.
func (e *Engine) RuleBlock(name string) (*rule.RuleBlock, bool) {
	return lo.Find(e.blocks, func(b *rule.RuleBlock) bool { return b.Name() == name })
}

// SetInputValue sets the value of the named input variable.
func (e *Engine) SetInputValue(name string, value float64) error {
	v, ok := e.InputVariable(name)
	if !ok {
		return fmt.Errorf("input variable <%s>: %w", name, ErrUnknownVariable)
	}
	v.SetValue(value)
	return nil
}

// OutputValue returns the value of the named output variable.
func (e *Engine) OutputValue(name string) (float64, error) {
	v, ok := e.OutputVariable(name)
	if !ok {
		return math.NaN(), fmt.Errorf("output variable <%s>: %w", name, ErrUnknownVariable)
	}
	return v.Value(), nil
}

// InputValues returns the current value of every input variable by name.
func (e *Engine) InputValues() map[string]float64 {
	return lo.SliceToMap(e.inputs, func(v *variable.InputVariable) (string, float64) {
		return v.Name(), v.Value()
	})
}

// OutputValues returns the current value of every output variable by name.
func (e *Engine) OutputValues() map[string]float64 {
	return lo.SliceToMap(e.outputs, func(v *variable.OutputVariable) (string, float64) {
		return v.Name(), v.Value()
	})
}

// LoadRules binds the terms that read input values to the engine's inputs and
// loads the rules of every block. Rules that fail stay unloaded; their errors
// are joined.
func (e *Engine) LoadRules() error {
	e.bindTerms()
	var errs []error
	for _, b := range e.blocks {
		if err := b.LoadRules(e); err != nil {
			errs = append(errs, fmt.Errorf("rule block <%s>: %w", b.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) bindTerms() {
	inputs := lo.Map(e.inputs, func(v *variable.InputVariable, _ int) term.Input { return v })
	bind := func(terms []term.Term) {
		for _, t := range terms {
			if b, ok := t.(term.InputBinder); ok {
				b.BindInputs(inputs)
			}
		}
	}
	for _, v := range e.inputs {
		bind(v.Terms())
	}
	for _, v := range e.outputs {
		bind(v.Terms())
	}
}

// Process runs one inference pass: the fuzzy outputs are cleared, every
// enabled rule block is activated (with General when it has no strategy), and
// every output variable is defuzzified. The first failure aborts the pass.
func (e *Engine) Process() error {
	for _, out := range e.outputs {
		out.Clear()
	}

	for _, b := range e.blocks {
		if !b.IsEnabled() {
			continue
		}
		strategy := b.Activation()
		if strategy == nil {
			strategy = activation.General{}
		}
		if err := strategy.Activate(b); err != nil {
			return fmt.Errorf("rule block <%s>: %w", b.Name(), err)
		}
	}

	for _, out := range e.outputs {
		if err := out.Defuzzify(); err != nil {
			return err
		}
		if out.UsedFallback() && !out.FuzzyOutput().IsEmpty() {
			getLog().Warn().
				Str("engine", e.name).
				Str("variable", out.Name()).
				Float64("value", out.Value()).
				Msg("non-finite defuzzification, fell back")
		}
	}

	if ev := getLog().Debug(); ev.Enabled() {
		ev.Str("engine", e.name).
			Interface("inputs", e.InputValues()).
			Interface("outputs", e.OutputValues()).
			Msg("processed")
	}
	return nil
}

// Restart sets every input and output value to NaN and clears the fuzzy
// outputs and previous values.
func (e *Engine) Restart() {
	for _, v := range e.inputs {
		v.SetValue(math.NaN())
	}
	for _, v := range e.outputs {
		v.Restart()
	}
	for _, b := range e.blocks {
		b.DeactivateRules()
	}
}
