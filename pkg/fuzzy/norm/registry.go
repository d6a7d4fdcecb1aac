// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package norm

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
)

var tnorms = map[string]TNorm{
	"AlgebraicProduct":  AlgebraicProduct{},
	"BoundedDifference": BoundedDifference{},
	"DrasticProduct":    DrasticProduct{},
	"EinsteinProduct":   EinsteinProduct{},
	"HamacherProduct":   HamacherProduct{},
	"Minimum":           Minimum{},
	"NilpotentMinimum":  NilpotentMinimum{},
}

var snorms = map[string]SNorm{
	"AlgebraicSum":     AlgebraicSum{},
	"BoundedSum":       BoundedSum{},
	"DrasticSum":       DrasticSum{},
	"EinsteinSum":      EinsteinSum{},
	"HamacherSum":      HamacherSum{},
	"Maximum":          Maximum{},
	"NilpotentMaximum": NilpotentMaximum{},
	"NormalizedSum":    NormalizedSum{},
	"UnboundedSum":     UnboundedSum{},
}

// isNone reports whether name explicitly asks for no operator.
func isNone(name string) bool {
	name = strings.TrimSpace(name)
	return name == "" || strings.EqualFold(name, "none")
}

// NewTNorm returns the T-norm registered under name. An empty name or "none"
// returns a nil norm and no error.
func NewTNorm(name string) (TNorm, error) {
	if isNone(name) {
		return nil, nil
	}
	if t, ok := tnorms[name]; ok {
		return t, nil
	}
	return nil, fuzzyerr.Configuration("norm", "unknown T-norm <%s>", name)
}

// NewSNorm returns the S-norm registered under name. An empty name or "none"
// returns a nil norm and no error.
func NewSNorm(name string) (SNorm, error) {
	if isNone(name) {
		return nil, nil
	}
	if s, ok := snorms[name]; ok {
		return s, nil
	}
	return nil, fuzzyerr.Configuration("norm", "unknown S-norm <%s>", name)
}

// TNormNames lists the registered T-norms in lexical order.
func TNormNames() []string { return sortedKeys(tnorms) }

// SNormNames lists the registered S-norms in lexical order.
func SNormNames() []string { return sortedKeys(snorms) }

// NameOf returns the name of n, or "none" when n is nil.
func NameOf(n Norm) string {
	if n == nil {
		return "none"
	}
	return n.Name()
}

func sortedKeys[T any](m map[string]T) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
