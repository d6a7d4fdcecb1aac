// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"github.com/samber/lo"

	"github.com/noldarim/fuzzy/pkg/fuzzy/defuzzifier"
	"github.com/noldarim/fuzzy/pkg/fuzzy/norm"
	"github.com/noldarim/fuzzy/pkg/fuzzy/rule"
	"github.com/noldarim/fuzzy/pkg/fuzzy/term"
	"github.com/noldarim/fuzzy/pkg/fuzzy/variable"
)

// Type labels the kind of fuzzy system an engine implements.
type Type int

const (
	Unknown Type = iota
	Mamdani
	Larsen
	TakagiSugeno
	Tsukamoto
	InverseTsukamoto
	Hybrid
)

func (t Type) String() string {
	switch t {
	case Mamdani:
		return "Mamdani"
	case Larsen:
		return "Larsen"
	case TakagiSugeno:
		return "TakagiSugeno"
	case Tsukamoto:
		return "Tsukamoto"
	case InverseTsukamoto:
		return "InverseTsukamoto"
	case Hybrid:
		return "Hybrid"
	}
	return "Unknown"
}

func weightedOf(v *variable.OutputVariable, types ...defuzzifier.Type) bool {
	typ, ok := defuzzifier.TypeOf(v.Defuzzifier())
	return v.Defuzzifier() != nil && ok && lo.Contains(types, typ)
}

// Type infers the kind of system from the defuzzifiers, the terms of the
// output variables and the implication of the rule blocks. The checks go
// from the most to the least specific and the first match wins. The string
// explains the match.
func (e *Engine) Type() (Type, string) {
	if len(e.outputs) == 0 {
		return Unknown, "engine has no output variables"
	}

	mamdani := lo.EveryBy(e.outputs, func(v *variable.OutputVariable) bool {
		return v.Defuzzifier() != nil && defuzzifier.IsIntegral(v.Defuzzifier())
	})
	if mamdani {
		larsen := len(e.blocks) > 0 && lo.EveryBy(e.blocks, func(b *rule.RuleBlock) bool {
			return norm.NameOf(b.Implication()) == norm.AlgebraicProduct{}.Name()
		})
		if larsen {
			return Larsen, "output variables have integral defuzzifiers and " +
				"rule blocks use AlgebraicProduct as implication"
		}
		return Mamdani, "output variables have integral defuzzifiers"
	}

	takagiSugeno := lo.EveryBy(e.outputs, func(v *variable.OutputVariable) bool {
		return weightedOf(v, defuzzifier.Automatic, defuzzifier.TakagiSugeno) &&
			lo.EveryBy(v.Terms(), term.IsTakagiSugeno)
	})
	if takagiSugeno {
		return TakagiSugeno, "output variables have weighted defuzzifiers of type Automatic or TakagiSugeno " +
			"and only Constant, Linear or Function terms"
	}

	tsukamoto := lo.EveryBy(e.outputs, func(v *variable.OutputVariable) bool {
		return weightedOf(v, defuzzifier.Automatic, defuzzifier.Tsukamoto) &&
			lo.EveryBy(v.Terms(), term.IsMonotonic)
	})
	if tsukamoto {
		return Tsukamoto, "output variables have weighted defuzzifiers of type Automatic or Tsukamoto " +
			"and only monotonic terms"
	}

	inverseTsukamoto := lo.EveryBy(e.outputs, func(v *variable.OutputVariable) bool {
		return weightedOf(v, defuzzifier.Automatic, defuzzifier.TakagiSugeno)
	})
	if inverseTsukamoto {
		return InverseTsukamoto, "output variables have weighted defuzzifiers of type Automatic or TakagiSugeno " +
			"and terms that are not only Constant, Linear or Function"
	}

	hybrid := lo.EveryBy(e.outputs, func(v *variable.OutputVariable) bool {
		return v.Defuzzifier() != nil
	})
	if hybrid {
		return Hybrid, "output variables have different kinds of defuzzifiers"
	}
	return Unknown, "one or more output variables have no defuzzifier"
}
