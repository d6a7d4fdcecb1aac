// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package service

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/noldarim/fuzzy/pkg/fuzzy/engine"
	"github.com/noldarim/fuzzy/pkg/fuzzy/norm"
	"github.com/noldarim/fuzzy/pkg/fuzzy/variable"
)

// Value is a float that encodes to JSON null when it is NaN or infinite.
type Value float64

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	x := float64(v)
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(x, 'g', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler; null decodes to NaN.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value(math.NaN())
		return nil
	}
	var x float64
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}
	*v = Value(x)
	return nil
}

// Result is the outcome of one inference pass.
type Result struct {
	Engine  string            `json:"engine"`
	Outputs map[string]Value  `json:"outputs"`
	Fuzzy   map[string]string `json:"fuzzy"`
	Fired   []FiredRule       `json:"fired"`
}

// FiredRule is a rule triggered during a pass.
type FiredRule struct {
	Block  string `json:"block"`
	Rule   string `json:"rule"`
	Degree Value  `json:"degree"`
}

// TermInfo describes a term.
type TermInfo struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Parameters string `json:"parameters"`
}

// VariableInfo describes a variable and its current value.
type VariableInfo struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Enabled     bool       `json:"enabled"`
	Minimum     Value      `json:"minimum"`
	Maximum     Value      `json:"maximum"`
	Value       Value      `json:"value"`
	Terms       []TermInfo `json:"terms"`

	// Output variables only.
	Aggregation string `json:"aggregation,omitempty"`
	Defuzzifier string `json:"defuzzifier,omitempty"`
}

// BlockInfo describes a rule block.
type BlockInfo struct {
	Name        string   `json:"name"`
	Enabled     bool     `json:"enabled"`
	Conjunction string   `json:"conjunction"`
	Disjunction string   `json:"disjunction"`
	Implication string   `json:"implication"`
	Activation  string   `json:"activation"`
	Rules       []string `json:"rules"`
}

// EngineInfo describes a served engine.
type EngineInfo struct {
	Name        string         `json:"name"`
	ID          string         `json:"id"`
	Description string         `json:"description,omitempty"`
	Type        string         `json:"type"`
	TypeReason  string         `json:"type_reason"`
	Inputs      []VariableInfo `json:"inputs"`
	Outputs     []VariableInfo `json:"outputs"`
	Blocks      []BlockInfo    `json:"rule_blocks"`
}

func describe(e *engine.Engine) EngineInfo {
	typ, reason := e.Type()
	info := EngineInfo{
		Name:        e.Name(),
		ID:          e.ID(),
		Description: e.Description(),
		Type:        typ.String(),
		TypeReason:  reason,
	}
	for _, v := range e.InputVariables() {
		info.Inputs = append(info.Inputs, describeVariable(&v.Variable))
	}
	for _, v := range e.OutputVariables() {
		vi := describeVariable(&v.Variable)
		vi.Aggregation = norm.NameOf(v.Aggregation())
		vi.Defuzzifier = "none"
		if d := v.Defuzzifier(); d != nil {
			vi.Defuzzifier = d.Name()
			if p := d.Parameters(); p != "" {
				vi.Defuzzifier += " " + p
			}
		}
		info.Outputs = append(info.Outputs, vi)
	}
	for _, b := range e.RuleBlocks() {
		bi := BlockInfo{
			Name:        b.Name(),
			Enabled:     b.IsEnabled(),
			Conjunction: norm.NameOf(b.Conjunction()),
			Disjunction: norm.NameOf(b.Disjunction()),
			Implication: norm.NameOf(b.Implication()),
			Activation:  "none",
		}
		if a := b.Activation(); a != nil {
			bi.Activation = a.Name()
			if p := a.Parameters(); p != "" {
				bi.Activation += " " + p
			}
		}
		for _, r := range b.Rules() {
			bi.Rules = append(bi.Rules, r.String())
		}
		info.Blocks = append(info.Blocks, bi)
	}
	return info
}

func describeVariable(v *variable.Variable) VariableInfo {
	vi := VariableInfo{
		Name:        v.Name(),
		Description: v.Description(),
		Enabled:     v.IsEnabled(),
		Minimum:     Value(v.Minimum()),
		Maximum:     Value(v.Maximum()),
		Value:       Value(v.Value()),
		Terms:       make([]TermInfo, 0, len(v.Terms())),
	}
	for _, t := range v.Terms() {
		vi.Terms = append(vi.Terms, TermInfo{Name: t.Name(), Kind: t.Kind(), Parameters: t.Parameters()})
	}
	return vi
}

// collect reads the outputs and triggered rules of e after a pass.
func collect(e *engine.Engine) Result {
	r := Result{
		Engine:  e.Name(),
		Outputs: make(map[string]Value, len(e.OutputVariables())),
		Fuzzy:   make(map[string]string, len(e.OutputVariables())),
		Fired:   []FiredRule{},
	}
	for _, v := range e.OutputVariables() {
		r.Outputs[v.Name()] = Value(v.Value())
		r.Fuzzy[v.Name()] = v.FuzzyOutputValue()
	}
	for _, b := range e.RuleBlocks() {
		if !b.IsEnabled() {
			continue
		}
		for _, rule := range b.Triggered() {
			r.Fired = append(r.Fired, FiredRule{Block: b.Name(), Rule: rule.Text(), Degree: Value(rule.ActivationDegree())})
		}
	}
	return r
}
