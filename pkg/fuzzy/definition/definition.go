// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package definition reads engines from YAML files.
//
// A definition lists the input variables, the output variables and the rule
// blocks of one engine, each by the names the registries of the fuzzy packages
// understand:
//
//	name: dimmer
//	inputs:
//	  - name: ambient
//	    range: [0, 1]
//	    terms:
//	      - {name: DARK, kind: Triangle, parameters: [0, 0.25, 0.5]}
//	outputs:
//	  - name: power
//	    range: [0, 2]
//	    aggregation: Maximum
//	    defuzzifier: {name: Centroid, resolution: 200}
//	    terms:
//	      - {name: HIGH, kind: Triangle, parameters: [1, 1.5, 2]}
//	rule_blocks:
//	  - implication: Minimum
//	    activation: General
//	    rules:
//	      - if ambient is DARK then power is HIGH
package definition

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Definition is the YAML form of an engine.
type Definition struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	Inputs      []InputVariable  `yaml:"inputs"`
	Outputs     []OutputVariable `yaml:"outputs"`
	RuleBlocks  []RuleBlock      `yaml:"rule_blocks"`
}

// Term describes one linguistic term. Function terms take a formula instead
// of parameters.
type Term struct {
	Name       string    `yaml:"name"`
	Kind       string    `yaml:"kind"`
	Parameters []float64 `yaml:"parameters,omitempty"`
	Formula    string    `yaml:"formula,omitempty"`
	Height     *float64  `yaml:"height,omitempty"`
}

// Variable holds what inputs and outputs share.
type Variable struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Enabled     *bool     `yaml:"enabled,omitempty"`
	Range       []float64 `yaml:"range"`
	LockRange   bool      `yaml:"lock_range,omitempty"`
	Terms       []Term    `yaml:"terms"`
}

// InputVariable describes an input. Value, when set, is the initial value.
type InputVariable struct {
	Variable `yaml:",inline"`
	Value    *float64 `yaml:"value,omitempty"`
}

// OutputVariable describes an output and how it is defuzzified.
type OutputVariable struct {
	Variable     `yaml:",inline"`
	Aggregation  string      `yaml:"aggregation,omitempty"`
	Defuzzifier  Defuzzifier `yaml:"defuzzifier"`
	Default      *float64    `yaml:"default,omitempty"`
	LockPrevious bool        `yaml:"lock_previous,omitempty"`
}

// Defuzzifier names a defuzzifier. Resolution applies to the integral ones
// and Type to the weighted ones.
type Defuzzifier struct {
	Name       string `yaml:"name"`
	Resolution int    `yaml:"resolution,omitempty"`
	Type       string `yaml:"type,omitempty"`
}

// UnmarshalYAML accepts a bare name as shorthand for {name: <name>}.
func (d *Defuzzifier) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&d.Name)
	}
	if err := knownKeys(node, "Defuzzifier", "name", "resolution", "type"); err != nil {
		return err
	}
	type plain Defuzzifier
	return node.Decode((*plain)(d))
}

// RuleBlock describes a rule block and its operators.
type RuleBlock struct {
	Name        string     `yaml:"name,omitempty"`
	Description string     `yaml:"description,omitempty"`
	Enabled     *bool      `yaml:"enabled,omitempty"`
	Conjunction string     `yaml:"conjunction,omitempty"`
	Disjunction string     `yaml:"disjunction,omitempty"`
	Implication string     `yaml:"implication,omitempty"`
	Activation  Activation `yaml:"activation,omitempty"`
	Rules       []string   `yaml:"rules"`
}

// Activation names an activation strategy. Params are decoded by the
// activation registry (count, threshold, comparison).
type Activation struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params,omitempty"`
}

// UnmarshalYAML accepts a bare name as shorthand for {name: <name>}.
func (a *Activation) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&a.Name)
	}
	if err := knownKeys(node, "Activation", "name", "params"); err != nil {
		return err
	}
	type plain Activation
	return node.Decode((*plain)(a))
}

// knownKeys rejects mapping keys outside allowed. node.Decode runs a fresh
// decoder, so the KnownFields setting of Parse does not reach it.
func knownKeys(node *yaml.Node, typ string, allowed ...string) error {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if !lo.Contains(allowed, key.Value) {
			return fmt.Errorf("line %d: field %s not found in type definition.%s", key.Line, key.Value, typ)
		}
	}
	return nil
}

// Load reads and parses the definition at path. It does not validate it.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read engine definition: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse decodes a YAML definition. Unknown fields are rejected.
func Parse(data []byte) (*Definition, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var d Definition
	if err := decoder.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty engine definition")
		}
		return nil, fmt.Errorf("failed to parse engine definition: %w", err)
	}
	return &d, nil
}

// Marshal renders d as YAML.
func (d *Definition) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode engine definition: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode engine definition: %w", err)
	}
	return buf.Bytes(), nil
}

func enabled(flag *bool) bool { return flag == nil || *flag }
