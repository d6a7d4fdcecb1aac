// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package testutil

import "strings"

// Sample engine definitions for consistent testing

// DimmerYAML defines a Mamdani engine of one input (ambient, on [0, 1]) and
// one output (power, on [0, 2]) whose Centroid is 1 at ambient 0.25. Only the
// MEDIUM rule fires there, with degree 1.
const DimmerYAML = `
name: dimmer
description: light control
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
    defuzzifier: Centroid
    terms:
      - {name: LOW, kind: Triangle, parameters: [0, 0.5, 1]}
      - {name: MEDIUM, kind: Triangle, parameters: [0.5, 1, 1.5]}
      - {name: HIGH, kind: Triangle, parameters: [1, 1.5, 2]}
rule_blocks:
  - name: main
    implication: Minimum
    rules:
      - if ambient is DARK then power is HIGH
      - if ambient is MEDIUM then power is MEDIUM
      - if ambient is BRIGHT then power is LOW
`

// Dimmer returns DimmerYAML under another name and description.
func Dimmer(name, description string) string {
	text := strings.Replace(DimmerYAML, "name: dimmer", "name: "+name, 1)
	return strings.Replace(text, "description: light control", "description: "+description, 1)
}
