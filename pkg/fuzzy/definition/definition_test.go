// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package definition

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noldarim/fuzzy/pkg/fuzzy/activation"
	"github.com/noldarim/fuzzy/pkg/fuzzy/defuzzifier"
	"github.com/noldarim/fuzzy/pkg/fuzzy/engine"
	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
)

const dimmerYAML = `
name: dimmer
description: the darker the room, the more power
inputs:
  - name: ambient
    range: [0, 1]
    terms:
      - {name: DARK, kind: Triangle, parameters: [-0.25, 0, 0.25]}
      - {name: MEDIUM, kind: Triangle, parameters: [0, 0.25, 0.5]}
      - {name: BRIGHT, kind: Triangle, parameters: [0.25, 0.5, 1]}
outputs:
  - name: power
    range: [0, 2]
    aggregation: Maximum
    defuzzifier: {name: Centroid, resolution: 200}
    default: .nan
    terms:
      - {name: LOW, kind: Triangle, parameters: [0, 0.5, 1]}
      - {name: MEDIUM, kind: Triangle, parameters: [0.5, 1, 1.5]}
      - {name: HIGH, kind: Triangle, parameters: [1, 1.5, 2]}
rule_blocks:
  - name: main
    implication: Minimum
    activation: General
    rules:
      - if ambient is DARK then power is HIGH
      - if ambient is MEDIUM then power is MEDIUM
      - if ambient is BRIGHT then power is LOW
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadEngineDimmer(t *testing.T) {
	e, err := LoadEngine(writeFile(t, dimmerYAML))
	require.NoError(t, err)

	assert.Equal(t, "dimmer", e.Name())
	assert.Equal(t, "the darker the room, the more power", e.Description())
	require.NoError(t, e.Validate())

	typ, _ := e.Type()
	assert.Equal(t, engine.Mamdani, typ)

	require.NoError(t, e.SetInputValue("ambient", 0.25))
	require.NoError(t, e.Process())
	power, err := e.OutputValue("power")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, power, 0.01)

	out, ok := e.OutputVariable("power")
	require.True(t, ok)
	assert.True(t, math.IsNaN(out.DefaultValue()))
}

func TestParseShorthands(t *testing.T) {
	d, err := Parse([]byte(`
name: short
inputs:
  - {name: x, range: [0, 1], terms: [{name: A, kind: Ramp, parameters: [0, 1]}]}
outputs:
  - name: y
    range: [0, 1]
    defuzzifier: WeightedAverage
    terms: [{name: B, kind: Constant, parameters: [0.5]}]
rule_blocks:
  - activation:
      name: Highest
      params: {count: 2}
    rules: [if x is A then y is B]
`))
	require.NoError(t, err)
	assert.Equal(t, "WeightedAverage", d.Outputs[0].Defuzzifier.Name)
	assert.Equal(t, "Highest", d.RuleBlocks[0].Activation.Name)
	assert.Equal(t, 2, d.RuleBlocks[0].Activation.Params["count"])
	assert.True(t, enabled(d.RuleBlocks[0].Enabled))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "empty", yaml: "", wantErr: "empty engine definition"},
		{name: "unknown field", yaml: "name: x\nrulez: []\n", wantErr: "field rulez not found"},
		{name: "malformed", yaml: "name: [", wantErr: "failed to parse engine definition"},
		{
			name:    "misspelled activation key",
			yaml:    "name: x\nrule_blocks:\n  - activation: {name: First, parms: {count: 2}}\n    rules: []\n",
			wantErr: "field parms not found in type definition.Activation",
		},
		{
			name:    "misspelled defuzzifier key",
			yaml:    "name: x\noutputs:\n  - name: power\n    defuzzifier: {name: Centroid, resolutoin: 10}\n",
			wantErr: "field resolutoin not found in type definition.Defuzzifier",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	valid := func() *Definition {
		d, err := Parse([]byte(dimmerYAML))
		require.NoError(t, err)
		return d
	}

	tests := []struct {
		name    string
		mutate  func(d *Definition)
		wantErr string
	}{
		{name: "valid", mutate: func(*Definition) {}},
		{name: "no name", mutate: func(d *Definition) { d.Name = "" }, wantErr: "name is required"},
		{name: "no inputs", mutate: func(d *Definition) { d.Inputs = nil }, wantErr: "at least one input variable"},
		{name: "no outputs", mutate: func(d *Definition) { d.Outputs = nil }, wantErr: "at least one output variable"},
		{name: "no blocks", mutate: func(d *Definition) { d.RuleBlocks = nil }, wantErr: "at least one rule block"},
		{
			name:    "duplicate variable",
			mutate:  func(d *Definition) { d.Outputs[0].Name = "ambient" },
			wantErr: "duplicate variable name",
		},
		{
			name:    "short range",
			mutate:  func(d *Definition) { d.Inputs[0].Range = []float64{0} },
			wantErr: "range needs two values, got 1",
		},
		{
			name:    "inverted range",
			mutate:  func(d *Definition) { d.Inputs[0].Range = []float64{1, 0} },
			wantErr: "invalid range [1, 0]",
		},
		{
			name:    "unknown kind",
			mutate:  func(d *Definition) { d.Inputs[0].Terms[0].Kind = "Blob" },
			wantErr: "unknown term kind <Blob>",
		},
		{
			name:    "duplicate term",
			mutate:  func(d *Definition) { d.Inputs[0].Terms[1].Name = "DARK" },
			wantErr: "duplicate term name",
		},
		{
			name:    "function without formula",
			mutate:  func(d *Definition) { d.Outputs[0].Terms[0] = Term{Name: "F", Kind: "Function"} },
			wantErr: "Function needs a formula",
		},
		{
			name: "height on constant",
			mutate: func(d *Definition) {
				h := 0.5
				d.Outputs[0].Terms[0] = Term{Name: "C", Kind: "Constant", Parameters: []float64{1}, Height: &h}
			},
			wantErr: "Constant does not take a height",
		},
		{
			name:    "missing defuzzifier",
			mutate:  func(d *Definition) { d.Outputs[0].Defuzzifier = Defuzzifier{} },
			wantErr: "defuzzifier is required",
		},
		{
			name: "duplicate block",
			mutate: func(d *Definition) {
				d.RuleBlocks = append(d.RuleBlocks, d.RuleBlocks[0])
			},
			wantErr: "duplicate rule block name",
		},
		{
			name:    "no rules",
			mutate:  func(d *Definition) { d.RuleBlocks[0].Rules = nil },
			wantErr: "at least one rule is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.mutate(d)
			err := d.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, fuzzyerr.IsConfiguration(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	d := &Definition{}
	err := d.Validate()
	require.Error(t, err)
	for _, want := range []string{"name is required", "input variable", "output variable", "rule block"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Definition)
		wantErr string
		parse   bool
	}{
		{
			name:    "unknown aggregation",
			mutate:  func(d *Definition) { d.Outputs[0].Aggregation = "Maximal" },
			wantErr: "unknown S-norm <Maximal>",
		},
		{
			name:    "unknown defuzzifier",
			mutate:  func(d *Definition) { d.Outputs[0].Defuzzifier.Name = "Median" },
			wantErr: "unknown defuzzifier <Median>",
		},
		{
			name:    "unknown weighted type",
			mutate:  func(d *Definition) { d.Outputs[0].Defuzzifier.Type = "Mamdani" },
			wantErr: "unknown weighted type <Mamdani>",
		},
		{
			name:    "unknown implication",
			mutate:  func(d *Definition) { d.RuleBlocks[0].Implication = "Minimal" },
			wantErr: "unknown T-norm <Minimal>",
		},
		{
			name:    "unknown activation",
			mutate:  func(d *Definition) { d.RuleBlocks[0].Activation.Name = "Random" },
			wantErr: "unknown activation method <Random>",
		},
		{
			name: "bad activation params",
			mutate: func(d *Definition) {
				d.RuleBlocks[0].Activation = Activation{Name: "First", Params: map[string]any{"counts": 1}}
			},
			wantErr: "counts",
		},
		{
			name:    "wrong arity",
			mutate:  func(d *Definition) { d.Inputs[0].Terms[0].Parameters = []float64{0, 1} },
			wantErr: "Triangle expects 3 parameters",
		},
		{
			name:    "bad formula",
			mutate:  func(d *Definition) { d.Outputs[0].Terms[0] = Term{Name: "F", Kind: "Function", Formula: "(x"} },
			wantErr: "mismatched parentheses",
			parse:   true,
		},
		{
			name:    "malformed rule",
			mutate:  func(d *Definition) { d.RuleBlocks[0].Rules[0] = "when ambient is DARK then power is HIGH" },
			wantErr: "expected keyword <if>",
			parse:   true,
		},
		{
			name:    "unknown term in rule",
			mutate:  func(d *Definition) { d.RuleBlocks[0].Rules[0] = "if ambient is GLOOMY then power is HIGH" },
			wantErr: "GLOOMY",
			parse:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse([]byte(dimmerYAML))
			require.NoError(t, err)
			tt.mutate(d)

			_, err = Build(d)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.parse {
				assert.True(t, fuzzyerr.IsParse(err))
			} else {
				assert.True(t, fuzzyerr.IsConfiguration(err))
			}
		})
	}
}

func TestBuildSettings(t *testing.T) {
	d, err := Parse([]byte(dimmerYAML))
	require.NoError(t, err)
	off := false
	value := 0.4
	def := 1.0
	height := 0.5
	d.Inputs[0].Value = &value
	d.Inputs[0].LockRange = true
	d.Inputs[0].Terms[0].Height = &height
	d.Outputs[0].Default = &def
	d.Outputs[0].LockPrevious = true
	d.Outputs[0].Defuzzifier = Defuzzifier{Name: "Bisector"}
	d.RuleBlocks[0].Enabled = &off
	d.RuleBlocks[0].Conjunction = "AlgebraicProduct"
	d.RuleBlocks[0].Activation = Activation{Name: "Threshold", Params: map[string]any{"comparison": ">", "threshold": "0.3"}}

	e, err := Build(d, WithDefaultResolution(50))
	require.NoError(t, err)

	ambient, ok := e.InputVariable("ambient")
	require.True(t, ok)
	assert.Equal(t, 0.4, ambient.Value())
	assert.True(t, ambient.LockValueInRange())
	dark, ok := ambient.Term("DARK")
	require.True(t, ok)
	assert.InDelta(t, 0.5, dark.Membership(0), 1e-9)

	power, ok := e.OutputVariable("power")
	require.True(t, ok)
	assert.Equal(t, 1.0, power.DefaultValue())
	assert.True(t, power.LockPreviousValue())
	res, ok := power.Defuzzifier().(interface{ Resolution() int })
	require.True(t, ok)
	assert.Equal(t, 50, res.Resolution())

	block, ok := e.RuleBlock("main")
	require.True(t, ok)
	assert.False(t, block.IsEnabled())
	assert.Equal(t, "AlgebraicProduct", block.Conjunction().Name())
	assert.Equal(t, activation.NewThreshold(activation.GreaterThan, 0.3), block.Activation())
}

func TestBuildTakagiSugeno(t *testing.T) {
	e, err := Build(mustParse(t, `
name: sugeno
inputs:
  - name: level
    range: [0, 1]
    terms:
      - {name: LOW, kind: Ramp, parameters: [1, 0]}
      - {name: HIGH, kind: Ramp, parameters: [0, 1]}
outputs:
  - name: flow
    range: [0, 10]
    defuzzifier: {name: WeightedAverage, type: TakagiSugeno}
    terms:
      - {name: SLOW, kind: Constant, parameters: [1]}
      - {name: FAST, kind: Linear, parameters: [4, 2]}
      - {name: DOUBLE, kind: Function, formula: 2 * level}
rule_blocks:
  - conjunction: Minimum
    implication: AlgebraicProduct
    rules:
      - if level is LOW then flow is SLOW
      - if level is HIGH then flow is FAST
`))
	require.NoError(t, err)

	typ, _ := e.Type()
	assert.Equal(t, engine.TakagiSugeno, typ)

	require.NoError(t, e.SetInputValue("level", 0.5))
	require.NoError(t, e.Process())
	flow, err := e.OutputValue("flow")
	require.NoError(t, err)
	// LOW and HIGH are both 0.5: (0.5*1 + 0.5*(4*0.5+2)) / 1
	assert.InDelta(t, 2.5, flow, 1e-9)
}

func TestFromEngineRoundTrip(t *testing.T) {
	d := mustParse(t, dimmerYAML)
	d.RuleBlocks[0].Activation = Activation{Name: "First", Params: map[string]any{"count": 2, "threshold": 0.1}}
	def := 0.75
	d.Outputs[0].Default = &def
	original, err := Build(d)
	require.NoError(t, err)

	data, err := FromEngine(original).Marshal()
	require.NoError(t, err)
	rebuilt, err := Build(mustParse(t, string(data)))
	require.NoError(t, err)

	assert.Equal(t, original.Name(), rebuilt.Name())
	block, ok := rebuilt.RuleBlock("main")
	require.True(t, ok)
	assert.Equal(t, activation.NewFirst(2, 0.1), block.Activation())
	power, ok := rebuilt.OutputVariable("power")
	require.True(t, ok)
	assert.Equal(t, 0.75, power.DefaultValue())
	assert.Equal(t, "Centroid", power.Defuzzifier().Name())
	_, weighted := defuzzifier.TypeOf(power.Defuzzifier())
	assert.False(t, weighted)

	for _, x := range []float64{0, 0.1, 0.25, 0.4, 0.8} {
		require.NoError(t, original.SetInputValue("ambient", x))
		require.NoError(t, rebuilt.SetInputValue("ambient", x))
		require.NoError(t, original.Process())
		require.NoError(t, rebuilt.Process())
		want, _ := original.OutputValue("power")
		got, _ := rebuilt.OutputValue("power")
		assert.InDelta(t, want, got, 1e-9, "ambient=%v", x)
	}
}

func mustParse(t *testing.T, text string) *Definition {
	t.Helper()
	d, err := Parse([]byte(text))
	require.NoError(t, err)
	return d
}

func TestSampleEngines(t *testing.T) {
	tests := []struct {
		file   string
		typ    engine.Type
		inputs map[string]float64
		output string
		check  func(t *testing.T, x float64)
	}{
		{
			file:   "dimmer.yaml",
			typ:    engine.Mamdani,
			inputs: map[string]float64{"ambient": 0.25},
			output: "power",
			check:  func(t *testing.T, x float64) { assert.InDelta(t, 1.0, x, 0.01) },
		},
		{
			file:   "tipper.yaml",
			typ:    engine.TakagiSugeno,
			inputs: map[string]float64{"service": 10, "food": 10},
			output: "tip",
			check:  func(t *testing.T, x float64) { assert.InDelta(t, 25, x, 0.1) },
		},
		{
			file:   "tipper.yaml",
			typ:    engine.TakagiSugeno,
			inputs: map[string]float64{"service": 0, "food": 0},
			output: "tip",
			check:  func(t *testing.T, x float64) { assert.InDelta(t, 5, x, 0.1) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			e, err := LoadEngine(filepath.Join("..", "..", "..", "engines", tt.file))
			require.NoError(t, err)
			require.NoError(t, e.Validate())
			typ, _ := e.Type()
			assert.Equal(t, tt.typ, typ)

			for name, value := range tt.inputs {
				require.NoError(t, e.SetInputValue(name, value))
			}
			require.NoError(t, e.Process())
			x, err := e.OutputValue(tt.output)
			require.NoError(t, err)
			tt.check(t, x)
		})
	}
}
