// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noldarim/fuzzy/pkg/fuzzy/activation"
	"github.com/noldarim/fuzzy/pkg/fuzzy/defuzzifier"
	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
	"github.com/noldarim/fuzzy/pkg/fuzzy/norm"
	"github.com/noldarim/fuzzy/pkg/fuzzy/rule"
	"github.com/noldarim/fuzzy/pkg/fuzzy/term"
	"github.com/noldarim/fuzzy/pkg/fuzzy/variable"
)

// newDimmer builds the classic dimmer: the darker the room, the more power.
func newDimmer(t *testing.T, rules ...string) *Engine {
	t.Helper()
	e := New("dimmer")
	e.AddInputVariable(variable.NewInputVariable("ambient", 0, 1,
		term.NewTriangle("DARK", -0.25, 0, 0.25),
		term.NewTriangle("MEDIUM", 0, 0.25, 0.5),
		term.NewTriangle("BRIGHT", 0.25, 0.5, 1),
	))
	power := variable.NewOutputVariable("power", 0, 2,
		term.NewTriangle("LOW", 0, 0.5, 1),
		term.NewTriangle("MEDIUM", 0.5, 1, 1.5),
		term.NewTriangle("HIGH", 1, 1.5, 2),
	)
	power.SetAggregation(norm.Maximum{})
	power.SetDefuzzifier(defuzzifier.NewCentroid(200))
	e.AddOutputVariable(power)

	block := rule.NewRuleBlock("")
	block.SetImplication(norm.Minimum{})
	if len(rules) == 0 {
		rules = []string{
			"if ambient is DARK then power is HIGH",
			"if ambient is MEDIUM then power is MEDIUM",
			"if ambient is BRIGHT then power is LOW",
		}
	}
	require.NoError(t, block.AddRules(rules...))
	e.AddRuleBlock(block)
	require.NoError(t, e.LoadRules())
	return e
}

func TestProcessDimmer(t *testing.T) {
	e := newDimmer(t)
	require.NoError(t, e.Validate())

	require.NoError(t, e.SetInputValue("ambient", 0.25))
	require.NoError(t, e.Process())
	power, err := e.OutputValue("power")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, power, 0.01)

	require.NoError(t, e.SetInputValue("ambient", 0))
	require.NoError(t, e.Process())
	power, _ = e.OutputValue("power")
	assert.InDelta(t, 1.5, power, 0.01)

	// Contributions from the previous pass do not leak.
	out, _ := e.OutputVariable("power")
	assert.Len(t, out.FuzzyOutput().Terms(), 1)
}

func TestProcessLogsPassAtDebug(t *testing.T) {
	prev := getLog()
	t.Cleanup(func() { log = prev })

	tests := []struct {
		name  string
		level zerolog.Level
		want  bool
	}{
		{name: "debug", level: zerolog.DebugLevel, want: true},
		{name: "info", level: zerolog.InfoLevel, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := zerolog.New(&buf).Level(tt.level)
			log = &l

			e := newDimmer(t)
			require.NoError(t, e.SetInputValue("ambient", 0.25))
			require.NoError(t, e.Process())

			if !tt.want {
				assert.NotContains(t, buf.String(), `"processed"`)
				return
			}
			assert.Contains(t, buf.String(), `"message":"processed"`)
			assert.Contains(t, buf.String(), `"inputs":{"ambient":0.25}`)
		})
	}
}

func TestProcessWeight(t *testing.T) {
	full := newDimmer(t, "if ambient is MEDIUM then power is MEDIUM")
	half := newDimmer(t, "if ambient is MEDIUM then power is MEDIUM with 0.5")
	for _, e := range []*Engine{full, half} {
		require.NoError(t, e.SetInputValue("ambient", 0.2))
		require.NoError(t, e.Process())
	}
	fullRule := full.RuleBlocks()[0].Rules()[0]
	halfRule := half.RuleBlocks()[0].Rules()[0]
	assert.InDelta(t, fullRule.ActivationDegree()/2, halfRule.ActivationDegree(), 1e-9)
}

func TestProcessUsesBlockActivation(t *testing.T) {
	e := newDimmer(t)
	e.RuleBlocks()[0].SetActivation(activation.NewThreshold(activation.GreaterThan, 0.5))
	require.NoError(t, e.SetInputValue("ambient", 0.1)) // DARK 0.6, MEDIUM 0.4
	require.NoError(t, e.Process())

	fired := e.RuleBlocks()[0].Triggered()
	require.Len(t, fired, 1)
	assert.Equal(t, "if ambient is DARK then power is HIGH", fired[0].Text())
}

func TestProcessFallbacks(t *testing.T) {
	e := newDimmer(t, "if ambient is DARK then power is HIGH")
	power, _ := e.OutputVariable("power")
	power.SetDefaultValue(0.3)

	require.NoError(t, e.SetInputValue("ambient", 0.9))
	require.NoError(t, e.Process())
	assert.Equal(t, 0.3, power.Value())
	assert.True(t, power.UsedFallback())

	power.SetLockPreviousValue(true)
	require.NoError(t, e.SetInputValue("ambient", 0))
	require.NoError(t, e.Process())
	lit := power.Value()
	require.NoError(t, e.SetInputValue("ambient", 0.9))
	require.NoError(t, e.Process())
	assert.Equal(t, lit, power.Value())
}

func TestProcessConfigurationErrorIsRecoverable(t *testing.T) {
	e := newDimmer(t)
	block := e.RuleBlocks()[0]
	block.SetImplication(nil)
	require.NoError(t, e.SetInputValue("ambient", 0.25))

	err := e.Process()
	assert.True(t, fuzzyerr.IsConfiguration(err))
	assert.Error(t, e.Validate())

	block.SetImplication(norm.Minimum{})
	require.NoError(t, e.Process())
	power, _ := e.OutputValue("power")
	assert.InDelta(t, 1.0, power, 0.01)
}

func TestProcessSkipsDisabledBlocks(t *testing.T) {
	e := newDimmer(t)
	e.RuleBlocks()[0].SetEnabled(false)
	require.NoError(t, e.SetInputValue("ambient", 0.25))
	require.NoError(t, e.Process())
	power, _ := e.OutputValue("power")
	assert.True(t, math.IsNaN(power))
}

func TestProcessChainsBlocks(t *testing.T) {
	e := newDimmer(t)
	alarm := variable.NewOutputVariable("alarm", 0, 1, term.NewConstant("ON", 1), term.NewConstant("OFF", 0))
	alarm.SetDefuzzifier(defuzzifier.NewWeightedAverage(defuzzifier.Automatic))
	e.AddOutputVariable(alarm)

	chained := rule.NewRuleBlock("chained")
	require.NoError(t, chained.AddRules(
		"if power is HIGH then alarm is ON",
		"if power is not HIGH then alarm is OFF",
	))
	e.AddRuleBlock(chained)
	require.NoError(t, e.LoadRules())

	require.NoError(t, e.SetInputValue("ambient", 0.05)) // DARK 0.8, MEDIUM 0.2
	require.NoError(t, e.Process())
	value, err := e.OutputValue("alarm")
	require.NoError(t, err)
	// Weights 0.8 for ON and 0.2 for OFF.
	assert.InDelta(t, 0.8, value, 1e-9)
}

func TestTakagiSugeno(t *testing.T) {
	e := New("sugeno")
	level := variable.NewInputVariable("level", 0, 1, term.NewRamp("LOW", 1, 0), term.NewRamp("HIGH", 0, 1))
	e.AddInputVariable(level)

	double, err := term.NewFunction("DOUBLE", "2 * level")
	require.NoError(t, err)
	y := variable.NewOutputVariable("y", 0, 10, term.NewLinear("LINE", 4, 1), double)
	y.SetDefuzzifier(defuzzifier.NewWeightedAverage(defuzzifier.Automatic))
	e.AddOutputVariable(y)

	block := rule.NewRuleBlock("")
	require.NoError(t, block.AddRules("if level is LOW then y is LINE", "if level is HIGH then y is DOUBLE"))
	e.AddRuleBlock(block)
	require.NoError(t, e.LoadRules())

	typ, _ := e.Type()
	assert.Equal(t, TakagiSugeno, typ)

	require.NoError(t, e.SetInputValue("level", 0.25))
	require.NoError(t, e.Process())
	// LINE = 4·0.25 + 1 = 2 at weight 0.75, DOUBLE = 0.5 at weight 0.25.
	assert.InDelta(t, 0.75*2+0.25*0.5, y.Value(), 1e-9)
}

func TestType(t *testing.T) {
	tests := []struct {
		name  string
		setup func(e *Engine)
		want  Type
	}{
		{"mamdani", func(*Engine) {}, Mamdani},
		{"larsen", func(e *Engine) { e.RuleBlocks()[0].SetImplication(norm.AlgebraicProduct{}) }, Larsen},
		{"takagi-sugeno", func(e *Engine) {
			out := variable.NewOutputVariable("speed", 0, 10, term.NewConstant("FAST", 9), term.NewLinear("SLOW", 1, 2))
			out.SetDefuzzifier(defuzzifier.NewWeightedAverage(defuzzifier.TakagiSugeno))
			e.outputs = []*variable.OutputVariable{out}
		}, TakagiSugeno},
		{"tsukamoto", func(e *Engine) {
			out := variable.NewOutputVariable("speed", 0, 10, term.NewRamp("UP", 0, 10), term.NewSigmoid("S", 5, 1))
			out.SetDefuzzifier(defuzzifier.NewWeightedSum(defuzzifier.Automatic))
			e.outputs = []*variable.OutputVariable{out}
		}, Tsukamoto},
		{"inverse tsukamoto", func(e *Engine) {
			out := variable.NewOutputVariable("speed", 0, 10, term.NewTriangle("MID", 0, 5, 10))
			out.SetDefuzzifier(defuzzifier.NewWeightedAverage(defuzzifier.Automatic))
			e.outputs = []*variable.OutputVariable{out}
		}, InverseTsukamoto},
		{"hybrid", func(e *Engine) {
			out := variable.NewOutputVariable("speed", 0, 10, term.NewRamp("UP", 0, 10))
			out.SetDefuzzifier(defuzzifier.NewWeightedAverage(defuzzifier.Tsukamoto))
			out2 := variable.NewOutputVariable("flow", 0, 10, term.NewTriangle("MID", 0, 5, 10))
			out2.SetDefuzzifier(defuzzifier.NewWeightedAverage(defuzzifier.Tsukamoto))
			e.outputs = []*variable.OutputVariable{out, out2}
		}, Hybrid},
		{"mixed families are hybrid", func(e *Engine) {
			out := variable.NewOutputVariable("speed", 0, 10, term.NewConstant("FAST", 9))
			out.SetDefuzzifier(defuzzifier.NewWeightedAverage(defuzzifier.Automatic))
			e.AddOutputVariable(out)
		}, Hybrid},
		{"missing defuzzifier", func(e *Engine) { e.outputs[0].SetDefuzzifier(nil) }, Unknown},
		{"no outputs", func(e *Engine) { e.outputs = nil }, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newDimmer(t)
			tt.setup(e)
			typ, reason := e.Type()
			assert.Equal(t, tt.want, typ)
			assert.NotEmpty(t, reason)
			assert.Equal(t, tt.want.String(), typ.String())
		})
	}
}

func TestUnknownVariables(t *testing.T) {
	e := newDimmer(t)
	err := e.SetInputValue("daylight", 1)
	assert.True(t, errors.Is(err, ErrUnknownVariable))
	_, err = e.OutputValue("ambient")
	assert.True(t, errors.Is(err, ErrUnknownVariable))
	_, ok := e.RuleBlock("")
	assert.True(t, ok)
}

func TestLoadRulesJoinsFailures(t *testing.T) {
	e := newDimmer(t)
	block := rule.NewRuleBlock("broken")
	block.AddRule(rule.MustParse("if daylight is HIGH then power is LOW"))
	e.AddRuleBlock(block)

	err := e.LoadRules()
	assert.True(t, fuzzyerr.IsParse(err))
	assert.Contains(t, err.Error(), "rule block <broken>")

	verr := e.Validate()
	require.Error(t, verr)
	assert.Contains(t, verr.Error(), "is not loaded")
}

func TestValidate(t *testing.T) {
	e := newDimmer(t,
		"if ambient is DARK and ambient is not BRIGHT then power is HIGH",
		"if ambient is MEDIUM or ambient is BRIGHT then power is LOW",
	)
	out, _ := e.OutputVariable("power")
	out.SetAggregation(nil)
	e.RuleBlocks()[0].SetImplication(nil)

	err := e.Validate()
	require.Error(t, err)
	assert.True(t, fuzzyerr.IsConfiguration(err))
	for _, want := range []string{
		"no aggregation operator",
		"no conjunction operator",
		"no disjunction operator",
		"no implication operator",
	} {
		assert.Contains(t, err.Error(), want)
	}

	require.NoError(t, e.Configure("Minimum", "Maximum", "Minimum", "Maximum", "Centroid", "General"))
	assert.NoError(t, e.Validate())

	empty := New("empty")
	err = empty.Validate()
	assert.Contains(t, err.Error(), "no input variables")
	assert.Contains(t, err.Error(), "no output variables")
	assert.Contains(t, err.Error(), "no rule blocks")
}

func TestConfigure(t *testing.T) {
	e := newDimmer(t)
	require.NoError(t, e.Configure("AlgebraicProduct", "AlgebraicSum", "AlgebraicProduct", "AlgebraicSum", "Bisector", "Highest"))

	block := e.RuleBlocks()[0]
	assert.Equal(t, "AlgebraicProduct", block.Conjunction().Name())
	assert.Equal(t, "AlgebraicSum", block.Disjunction().Name())
	assert.Equal(t, "Highest", block.Activation().Name())
	out, _ := e.OutputVariable("power")
	assert.Equal(t, "Bisector", out.Defuzzifier().Name())
	assert.Equal(t, "AlgebraicSum", out.Aggregation().Name())
	typ, _ := e.Type()
	assert.Equal(t, Larsen, typ)

	err := e.Configure("Minimum", "Maximum", "Minimum", "Maximum", "Median", "General")
	assert.True(t, fuzzyerr.IsConfiguration(err))
	assert.Equal(t, "Bisector", out.Defuzzifier().Name())
	assert.Equal(t, "AlgebraicProduct", block.Conjunction().Name())

	require.NoError(t, e.Configure("", "none", "Minimum", "Maximum", "Centroid", ""))
	assert.Nil(t, block.Conjunction())
	assert.Nil(t, block.Activation())
}

func TestRestart(t *testing.T) {
	e := newDimmer(t)
	require.NoError(t, e.SetInputValue("ambient", 0.25))
	require.NoError(t, e.Process())
	require.NoError(t, e.Process())

	e.Restart()
	out, _ := e.OutputVariable("power")
	assert.True(t, math.IsNaN(e.InputValues()["ambient"]))
	assert.True(t, math.IsNaN(out.Value()))
	assert.True(t, math.IsNaN(out.PreviousValue()))
	assert.True(t, out.FuzzyOutput().IsEmpty())
	assert.Empty(t, e.RuleBlocks()[0].Triggered())
}

func TestClone(t *testing.T) {
	e := newDimmer(t)
	e.RuleBlocks()[0].SetActivation(activation.NewHighest(1))
	c, err := e.Clone()
	require.NoError(t, err)
	assert.NotEqual(t, e.ID(), c.ID())
	assert.Equal(t, e.Name(), c.Name())

	require.NoError(t, c.SetInputValue("ambient", 0.25))
	require.NoError(t, c.Process())
	power, _ := c.OutputValue("power")
	assert.InDelta(t, 1.0, power, 0.01)

	original, _ := e.OutputValue("power")
	assert.True(t, math.IsNaN(original))
	assert.True(t, math.IsNaN(e.InputValues()["ambient"]))
	assert.Empty(t, e.RuleBlocks()[0].Triggered())
	assert.Equal(t, "Highest", c.RuleBlocks()[0].Activation().Name())

	// The cloned rules point at the clone's variables.
	p := c.RuleBlocks()[0].Rules()[0].Antecedent().Expression().(*rule.Proposition)
	cloneAmbient, _ := c.InputVariable("ambient")
	assert.Same(t, cloneAmbient, p.Variable)
}

func TestCloneRebindsAlgebraicTerms(t *testing.T) {
	e := New("line")
	e.AddInputVariable(variable.NewInputVariable("x", 0, 1, term.NewRamp("HIGH", 0, 1)))
	y := variable.NewOutputVariable("y", 0, 10, term.NewLinear("LINE", 2, 1))
	y.SetDefuzzifier(defuzzifier.NewWeightedAverage(defuzzifier.Automatic))
	e.AddOutputVariable(y)
	block := rule.NewRuleBlock("")
	require.NoError(t, block.AddRules("if x is any then y is LINE"))
	e.AddRuleBlock(block)
	require.NoError(t, e.LoadRules())

	c, err := e.Clone()
	require.NoError(t, err)
	require.NoError(t, e.SetInputValue("x", 0))
	require.NoError(t, c.SetInputValue("x", 1))
	require.NoError(t, e.Process())
	require.NoError(t, c.Process())

	v, _ := e.OutputValue("y")
	assert.InDelta(t, 1.0, v, 1e-9)
	v, _ = c.OutputValue("y")
	assert.InDelta(t, 3.0, v, 1e-9)
}
