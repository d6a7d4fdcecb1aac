// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package definition

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noldarim/fuzzy/internal/logger"
	"github.com/noldarim/fuzzy/pkg/fuzzy/activation"
	"github.com/noldarim/fuzzy/pkg/fuzzy/defuzzifier"
	"github.com/noldarim/fuzzy/pkg/fuzzy/engine"
	"github.com/noldarim/fuzzy/pkg/fuzzy/norm"
	"github.com/noldarim/fuzzy/pkg/fuzzy/op"
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
		l := logger.GetDefinitionLogger()
		log = &l
	})
	return log
}

type options struct {
	resolution int
}

// Option configures Build.
type Option func(*options)

// WithDefaultResolution sets the resolution of integral defuzzifiers declared
// without one. Zero keeps the defuzzifier package default.
func WithDefaultResolution(resolution int) Option {
	return func(o *options) { o.resolution = resolution }
}

// Build validates d and assembles the engine it describes, with its rules
// loaded.
func Build(d *Definition, opts ...Option) (*engine.Engine, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine definition <%s>: %w", d.Name, err)
	}

	e := engine.New(d.Name)
	e.SetDescription(d.Description)

	for _, in := range d.Inputs {
		v, err := buildInput(in)
		if err != nil {
			return nil, err
		}
		e.AddInputVariable(v)
	}
	for _, out := range d.Outputs {
		v, err := buildOutput(out, o)
		if err != nil {
			return nil, err
		}
		e.AddOutputVariable(v)
	}
	for _, b := range d.RuleBlocks {
		block, err := buildBlock(b)
		if err != nil {
			return nil, err
		}
		e.AddRuleBlock(block)
	}
	if err := e.LoadRules(); err != nil {
		return nil, err
	}

	typ, reason := e.Type()
	getLog().Debug().
		Str("engine", e.Name()).
		Str("id", e.ID()).
		Stringer("type", typ).
		Str("reason", reason).
		Msg("engine built")
	return e, nil
}

// LoadEngine reads the definition at path and builds it.
func LoadEngine(path string, opts ...Option) (*engine.Engine, error) {
	d, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Build(d, opts...)
}

func buildTerms(defs []Term) ([]term.Term, error) {
	terms := make([]term.Term, 0, len(defs))
	for _, def := range defs {
		var (
			t   term.Term
			err error
		)
		if def.Kind == "Function" {
			t, err = term.NewFunction(def.Name, def.Formula)
		} else {
			t, err = term.New(def.Kind, def.Name, def.Parameters)
		}
		if err != nil {
			return nil, fmt.Errorf("term <%s>: %w", def.Name, err)
		}
		if def.Height != nil {
			if h, ok := t.(interface{ SetHeight(float64) }); ok {
				h.SetHeight(*def.Height)
			}
		}
		terms = append(terms, t)
	}
	return terms, nil
}

func buildInput(def InputVariable) (*variable.InputVariable, error) {
	terms, err := buildTerms(def.Terms)
	if err != nil {
		return nil, fmt.Errorf("input <%s>: %w", def.Name, err)
	}
	v := variable.NewInputVariable(def.Name, def.Range[0], def.Range[1], terms...)
	v.SetDescription(def.Description)
	v.SetEnabled(enabled(def.Enabled))
	v.SetLockValueInRange(def.LockRange)
	if def.Value != nil {
		v.SetValue(*def.Value)
	}
	return v, nil
}

func buildOutput(def OutputVariable, o options) (*variable.OutputVariable, error) {
	terms, err := buildTerms(def.Terms)
	if err != nil {
		return nil, fmt.Errorf("output <%s>: %w", def.Name, err)
	}
	v := variable.NewOutputVariable(def.Name, def.Range[0], def.Range[1], terms...)
	v.SetDescription(def.Description)
	v.SetEnabled(enabled(def.Enabled))
	v.SetLockValueInRange(def.LockRange)
	v.SetLockPreviousValue(def.LockPrevious)
	if def.Default != nil {
		v.SetDefaultValue(*def.Default)
	}

	aggregation, err := norm.NewSNorm(def.Aggregation)
	if err != nil {
		return nil, fmt.Errorf("output <%s>: %w", def.Name, err)
	}
	v.SetAggregation(aggregation)

	typ, err := defuzzifier.ParseType(def.Defuzzifier.Type)
	if err != nil {
		return nil, fmt.Errorf("output <%s>: %w", def.Name, err)
	}
	resolution := def.Defuzzifier.Resolution
	if resolution == 0 {
		resolution = o.resolution
	}
	d, err := defuzzifier.New(def.Defuzzifier.Name, resolution, typ)
	if err != nil {
		return nil, fmt.Errorf("output <%s>: %w", def.Name, err)
	}
	v.SetDefuzzifier(d)
	return v, nil
}

func buildBlock(def RuleBlock) (*rule.RuleBlock, error) {
	b := rule.NewRuleBlock(def.Name)
	b.SetDescription(def.Description)
	b.SetEnabled(enabled(def.Enabled))

	wrap := func(err error) error { return fmt.Errorf("rule block <%s>: %w", def.Name, err) }
	conjunction, err := norm.NewTNorm(def.Conjunction)
	if err != nil {
		return nil, wrap(err)
	}
	disjunction, err := norm.NewSNorm(def.Disjunction)
	if err != nil {
		return nil, wrap(err)
	}
	implication, err := norm.NewTNorm(def.Implication)
	if err != nil {
		return nil, wrap(err)
	}
	strategy, err := activation.New(def.Activation.Name, def.Activation.Params)
	if err != nil {
		return nil, wrap(err)
	}
	b.SetConjunction(conjunction)
	b.SetDisjunction(disjunction)
	b.SetImplication(implication)
	b.SetActivation(strategy)

	if err := b.AddRules(def.Rules...); err != nil {
		return nil, wrap(err)
	}
	return b, nil
}

// FromEngine describes e as a definition. Building the result yields an
// engine that behaves like e.
func FromEngine(e *engine.Engine) *Definition {
	d := &Definition{Name: e.Name(), Description: e.Description()}
	for _, v := range e.InputVariables() {
		d.Inputs = append(d.Inputs, InputVariable{Variable: describeVariable(&v.Variable)})
	}
	for _, v := range e.OutputVariables() {
		out := OutputVariable{
			Variable:     describeVariable(&v.Variable),
			LockPrevious: v.LockPreviousValue(),
		}
		if v.Aggregation() != nil {
			out.Aggregation = v.Aggregation().Name()
		}
		if v.Defuzzifier() != nil {
			out.Defuzzifier.Name = v.Defuzzifier().Name()
			if r, ok := v.Defuzzifier().(interface{ Resolution() int }); ok {
				out.Defuzzifier.Resolution = r.Resolution()
			}
			if typ, ok := defuzzifier.TypeOf(v.Defuzzifier()); ok {
				out.Defuzzifier.Type = typ.String()
			}
		}
		if def := v.DefaultValue(); !math.IsNaN(def) {
			out.Default = &def
		}
		d.Outputs = append(d.Outputs, out)
	}
	for _, b := range e.RuleBlocks() {
		block := RuleBlock{
			Name:        b.Name(),
			Description: b.Description(),
			Conjunction: normName(b.Conjunction()),
			Disjunction: normName(b.Disjunction()),
			Implication: normName(b.Implication()),
		}
		if !b.IsEnabled() {
			block.Enabled = new(bool)
		}
		if a := b.Activation(); a != nil {
			block.Activation = Activation{Name: a.Name(), Params: activationParams(a)}
		}
		for _, r := range b.Rules() {
			block.Rules = append(block.Rules, r.Text())
		}
		d.RuleBlocks = append(d.RuleBlocks, block)
	}
	return d
}

func normName(n norm.Norm) string {
	if n == nil {
		return ""
	}
	return n.Name()
}

func describeVariable(v *variable.Variable) Variable {
	out := Variable{
		Name:        v.Name(),
		Description: v.Description(),
		Range:       []float64{v.Minimum(), v.Maximum()},
		LockRange:   v.LockValueInRange(),
	}
	if !v.IsEnabled() {
		out.Enabled = new(bool)
	}
	for _, t := range v.Terms() {
		out.Terms = append(out.Terms, describeTerm(t))
	}
	return out
}

// describeTerm relies on Parameters listing the values New accepts, with the
// height last when it is not 1.
func describeTerm(t term.Term) Term {
	out := Term{Name: t.Name(), Kind: t.Kind()}
	if f, ok := t.(*term.Function); ok {
		out.Formula = f.Formula()
		return out
	}
	for _, field := range strings.Fields(t.Parameters()) {
		if x, err := op.Parse(field); err == nil {
			out.Parameters = append(out.Parameters, x)
		}
	}
	return out
}

// activationParams recovers the registry parameters from Parameters, whose
// layout depends on the strategy.
func activationParams(a rule.Activation) map[string]any {
	fields := strings.Fields(a.Parameters())
	switch a.Name() {
	case "First", "Last":
		if len(fields) == 2 {
			return map[string]any{"count": fields[0], "threshold": fields[1]}
		}
	case "Highest", "Lowest":
		if len(fields) == 1 {
			return map[string]any{"count": fields[0]}
		}
	case "Threshold":
		if len(fields) == 2 {
			return map[string]any{"comparison": fields[0], "threshold": fields[1]}
		}
	}
	return nil
}
