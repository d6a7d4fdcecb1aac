// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package norm

import (
	"testing"

	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTNorms(t *testing.T) {
	tests := []struct {
		norm     TNorm
		a, b     float64
		expected float64
	}{
		{AlgebraicProduct{}, 0.4, 0.5, 0.2},
		{BoundedDifference{}, 0.4, 0.5, 0},
		{BoundedDifference{}, 0.8, 0.5, 0.3},
		{DrasticProduct{}, 1, 0.3, 0.3},
		{DrasticProduct{}, 0.9, 0.3, 0},
		{EinsteinProduct{}, 0.5, 0.5, 0.25 / 1.25},
		{HamacherProduct{}, 0, 0, 0},
		{HamacherProduct{}, 0.5, 0.5, 0.25 / 0.75},
		{Minimum{}, 0.4, 0.5, 0.4},
		{NilpotentMinimum{}, 0.4, 0.5, 0},
		{NilpotentMinimum{}, 0.6, 0.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.norm.Name(), func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.norm.Compute(tt.a, tt.b), 1e-9)
			// T-norms are commutative with 1 as identity.
			assert.InDelta(t, tt.norm.Compute(tt.b, tt.a), tt.norm.Compute(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.a, tt.norm.Compute(tt.a, 1), 1e-9)
		})
	}
}

func TestSNorms(t *testing.T) {
	tests := []struct {
		norm     SNorm
		a, b     float64
		expected float64
	}{
		{AlgebraicSum{}, 0.4, 0.5, 0.7},
		{BoundedSum{}, 0.7, 0.5, 1},
		{DrasticSum{}, 0, 0.3, 0.3},
		{DrasticSum{}, 0.1, 0.3, 1},
		{EinsteinSum{}, 0.5, 0.5, 1 / 1.25},
		{HamacherSum{}, 1, 1, 1},
		{HamacherSum{}, 0.5, 0.5, 0.5 / 0.75},
		{Maximum{}, 0.4, 0.5, 0.5},
		{NilpotentMaximum{}, 0.4, 0.5, 0.5},
		{NilpotentMaximum{}, 0.6, 0.5, 1},
		{NormalizedSum{}, 0.4, 0.5, 0.9},
		{NormalizedSum{}, 0.8, 0.6, 1.4},
		{UnboundedSum{}, 0.8, 0.6, 1.4},
	}

	for _, tt := range tests {
		t.Run(tt.norm.Name(), func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.norm.Compute(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.norm.Compute(tt.b, tt.a), tt.norm.Compute(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range TNormNames() {
		n, err := NewTNorm(name)
		require.NoError(t, err)
		assert.Equal(t, name, n.Name())
	}
	for _, name := range SNormNames() {
		n, err := NewSNorm(name)
		require.NoError(t, err)
		assert.Equal(t, name, n.Name())
	}

	n, err := NewTNorm("none")
	require.NoError(t, err)
	assert.Nil(t, n)
	s, err := NewSNorm("")
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = NewTNorm("Maximum")
	assert.True(t, fuzzyerr.IsConfiguration(err))
	_, err = NewSNorm("Bogus")
	assert.True(t, fuzzyerr.IsConfiguration(err))

	assert.Equal(t, "none", NameOf(nil))
	assert.Equal(t, "Minimum", NameOf(Minimum{}))
	assert.Len(t, TNormNames(), 7)
	assert.Len(t, SNormNames(), 9)
}
