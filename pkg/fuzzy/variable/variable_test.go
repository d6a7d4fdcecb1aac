// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package variable

import (
	"math"
	"testing"

	"github.com/noldarim/fuzzy/pkg/fuzzy/defuzzifier"
	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
	"github.com/noldarim/fuzzy/pkg/fuzzy/norm"
	"github.com/noldarim/fuzzy/pkg/fuzzy/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ambient() *InputVariable {
	return NewInputVariable("ambient", 0, 1,
		term.NewTriangle("DARK", 0, 0.25, 0.5),
		term.NewTriangle("MEDIUM", 0.25, 0.5, 0.75),
		term.NewTriangle("BRIGHT", 0.5, 0.75, 1),
	)
}

func power() *OutputVariable {
	v := NewOutputVariable("power", 0, 2,
		term.NewTriangle("LOW", 0, 0.5, 1),
		term.NewTriangle("MEDIUM", 0.5, 1, 1.5),
		term.NewTriangle("HIGH", 1, 1.5, 2),
	)
	v.SetAggregation(norm.Maximum{})
	v.SetDefuzzifier(defuzzifier.NewCentroid(200))
	return v
}

func TestVariableDefaults(t *testing.T) {
	v := ambient()
	assert.Equal(t, "ambient", v.Name())
	assert.True(t, v.IsEnabled())
	assert.True(t, math.IsNaN(v.Value()))
	lo, hi := v.Range()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)

	medium, ok := v.Term("MEDIUM")
	require.True(t, ok)
	assert.Equal(t, "MEDIUM", medium.Name())
	_, ok = v.Term("medium")
	assert.False(t, ok)
}

func TestSetValueLocksInRange(t *testing.T) {
	v := ambient()
	v.SetValue(1.5)
	assert.Equal(t, 1.5, v.Value())
	assert.False(t, v.InRange(v.Value()))

	v.SetLockValueInRange(true)
	v.SetValue(1.5)
	assert.Equal(t, 1.0, v.Value())
	v.SetValue(-3)
	assert.Equal(t, 0.0, v.Value())
}

func TestFuzzify(t *testing.T) {
	v := ambient()
	v.SetValue(0.375)
	assert.Equal(t, "0.5/DARK + 0.5/MEDIUM + 0/BRIGHT", v.FuzzyInputValue())

	best, mu := v.HighestMembership(0.5)
	require.NotNil(t, best)
	assert.Equal(t, "MEDIUM", best.Name())
	assert.Equal(t, 1.0, mu)

	best, _ = v.HighestMembership(5)
	assert.Nil(t, best)
}

func TestDefuzzify(t *testing.T) {
	v := power()
	medium, _ := v.Term("MEDIUM")
	v.FuzzyOutput().AddTerm(medium, 1, norm.Minimum{})

	require.NoError(t, v.Defuzzify())
	assert.InDelta(t, 1.0, v.Value(), 0.01)
	assert.False(t, v.UsedFallback())
	assert.Equal(t, "0/LOW + 1/MEDIUM + 0/HIGH", v.FuzzyOutputValue())
}

func TestDefuzzifyFallbacks(t *testing.T) {
	tests := []struct {
		name         string
		previous     float64
		defaultValue float64
		lock         bool
		want         float64
	}{
		{name: "default when unlocked", previous: 1.2, defaultValue: 0.3, want: 0.3},
		{name: "previous when locked", previous: 1.2, defaultValue: 0.3, lock: true, want: 1.2},
		{name: "default when previous is nan", previous: math.NaN(), defaultValue: 0.3, lock: true, want: 0.3},
		{name: "nan without default", previous: math.NaN(), defaultValue: math.NaN(), want: math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := power()
			v.SetValue(tt.previous)
			v.SetDefaultValue(tt.defaultValue)
			v.SetLockPreviousValue(tt.lock)

			require.NoError(t, v.Defuzzify())
			assert.True(t, v.UsedFallback())
			if math.IsNaN(tt.want) {
				assert.True(t, math.IsNaN(v.Value()))
			} else {
				assert.Equal(t, tt.want, v.Value())
			}
		})
	}
}

func TestDefuzzifyRemembersPrevious(t *testing.T) {
	v := power()
	v.SetLockPreviousValue(true)
	medium, _ := v.Term("MEDIUM")
	v.FuzzyOutput().AddTerm(medium, 1, norm.Minimum{})
	require.NoError(t, v.Defuzzify())
	first := v.Value()

	v.Clear()
	require.NoError(t, v.Defuzzify())
	assert.Equal(t, first, v.PreviousValue())
	assert.Equal(t, first, v.Value())
}

func TestDefuzzifyClampsDefault(t *testing.T) {
	v := power()
	v.SetDefaultValue(5)
	v.SetLockValueInRange(true)
	require.NoError(t, v.Defuzzify())
	assert.Equal(t, 2.0, v.Value())
}

func TestDefuzzifyConfigurationErrors(t *testing.T) {
	t.Run("missing defuzzifier", func(t *testing.T) {
		v := power()
		v.SetDefuzzifier(nil)
		v.FuzzyOutput().AddTerm(v.Terms()[0], 1, norm.Minimum{})
		assert.True(t, fuzzyerr.IsConfiguration(v.Defuzzify()))
	})
	t.Run("missing aggregation", func(t *testing.T) {
		v := power()
		v.SetAggregation(nil)
		v.FuzzyOutput().AddTerm(v.Terms()[0], 1, norm.Minimum{})
		assert.True(t, fuzzyerr.IsConfiguration(v.Defuzzify()))
	})
	t.Run("missing implication", func(t *testing.T) {
		v := power()
		v.FuzzyOutput().AddTerm(v.Terms()[0], 1, nil)
		assert.True(t, fuzzyerr.IsConfiguration(v.Defuzzify()))
	})
	t.Run("weighted tolerates missing operators", func(t *testing.T) {
		v := NewOutputVariable("speed", 0, 10, term.NewConstant("FAST", 8))
		v.SetDefuzzifier(defuzzifier.NewWeightedAverage(defuzzifier.Automatic))
		v.FuzzyOutput().AddTerm(v.Terms()[0], 0.4, nil)
		require.NoError(t, v.Defuzzify())
		assert.InDelta(t, 8.0, v.Value(), 1e-9)
	})
}

func TestDisabledOutputIsUntouched(t *testing.T) {
	v := power()
	v.SetValue(0.7)
	v.SetEnabled(false)
	v.SetDefuzzifier(nil)
	v.FuzzyOutput().AddTerm(v.Terms()[0], 1, norm.Minimum{})
	require.NoError(t, v.Defuzzify())
	assert.Equal(t, 0.7, v.Value())
}

func TestOutputRestartAndRename(t *testing.T) {
	v := power()
	v.SetValue(1)
	v.SetPreviousValue(0.5)
	v.FuzzyOutput().AddTerm(v.Terms()[0], 1, norm.Minimum{})

	v.Restart()
	assert.True(t, math.IsNaN(v.Value()))
	assert.True(t, math.IsNaN(v.PreviousValue()))
	assert.True(t, v.FuzzyOutput().IsEmpty())

	v.SetName("watts")
	v.SetRange(0, 4)
	assert.Equal(t, "watts", v.FuzzyOutput().Name())
	assert.Equal(t, 4.0, v.FuzzyOutput().Maximum)
}

func TestClone(t *testing.T) {
	in := ambient()
	inClone := in.Clone()
	inClone.Terms()[0].(*term.Triangle).B = 0.1
	assert.Equal(t, 0.25, in.Terms()[0].(*term.Triangle).B)

	out := power()
	out.FuzzyOutput().AddTerm(out.Terms()[0], 1, norm.Minimum{})
	outClone := out.Clone()
	assert.True(t, outClone.FuzzyOutput().IsEmpty())
	assert.NotSame(t, out.Defuzzifier(), outClone.Defuzzifier())
	assert.Equal(t, "Maximum", outClone.Aggregation().Name())
	assert.NotSame(t, out.Terms()[1], outClone.Terms()[1])
}
