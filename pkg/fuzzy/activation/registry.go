// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package activation

import (
	"fmt"
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"github.com/samber/lo"

	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
	"github.com/noldarim/fuzzy/pkg/fuzzy/rule"
)

// Params are the optional settings of a strategy, as found in an engine
// definition. Count defaults to 1, Threshold to 0 and Comparison to ">=".
type Params struct {
	Count      int     `mapstructure:"count"`
	Threshold  float64 `mapstructure:"threshold"`
	Comparison string  `mapstructure:"comparison"`
}

func defaultParams() Params {
	return Params{Count: 1, Comparison: string(GreaterThanOrEqual)}
}

var constructors = map[string]func(p Params) (rule.Activation, error){
	"General":      func(Params) (rule.Activation, error) { return General{}, nil },
	"Proportional": func(Params) (rule.Activation, error) { return Proportional{}, nil },
	"First":        func(p Params) (rule.Activation, error) { return NewFirst(p.Count, p.Threshold), nil },
	"Last":         func(p Params) (rule.Activation, error) { return NewLast(p.Count, p.Threshold), nil },
	"Highest":      func(p Params) (rule.Activation, error) { return NewHighest(p.Count), nil },
	"Lowest":       func(p Params) (rule.Activation, error) { return NewLowest(p.Count), nil },
	"Threshold": func(p Params) (rule.Activation, error) {
		c, err := ParseComparison(p.Comparison)
		if err != nil {
			return nil, err
		}
		return NewThreshold(c, p.Threshold), nil
	},
}

// New builds the strategy registered under name from params, which may be
// nil. Numbers given as strings are accepted; unknown keys are rejected.
// An empty name or "none" returns nil and no error.
func New(name string, params map[string]any) (rule.Activation, error) {
	if name == "" || name == "none" {
		return nil, nil
	}
	build, ok := constructors[name]
	if !ok {
		return nil, fuzzyerr.Configuration("activation", "unknown activation method <%s>", name)
	}
	p, err := decodeParams(params)
	if err != nil {
		return nil, fuzzyerr.Configuration("activation <"+name+">", "%v", err)
	}
	if p.Count < 0 {
		return nil, fuzzyerr.Configuration("activation <"+name+">", "count must not be negative, got %d", p.Count)
	}
	return build(p)
}

func decodeParams(params map[string]any) (Params, error) {
	p := defaultParams()
	if len(params) == 0 {
		return p, nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &p,
	})
	if err != nil {
		return p, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(params); err != nil {
		return p, err
	}
	return p, nil
}

// Names lists the registered strategies in lexical order.
func Names() []string {
	names := lo.Keys(constructors)
	sort.Strings(names)
	return names
}
