// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertValue checks that got is within delta of want. NaN only matches NaN
// and an infinity only matches itself.
func AssertValue(t *testing.T, want, got, delta float64) bool {
	t.Helper()
	switch {
	case math.IsNaN(want):
		return assert.Truef(t, math.IsNaN(got), "expected nan, got %v", got)
	case math.IsInf(want, 0):
		return assert.Equal(t, want, got)
	}
	return assert.InDelta(t, want, got, delta)
}
