// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package definition

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
	"github.com/noldarim/fuzzy/pkg/fuzzy/term"
)

// Validate checks the structure of the definition: names, ranges and terms.
// Operator and strategy names are checked by Build. Every problem found is
// reported, joined into one error.
func (d *Definition) Validate() error {
	var errs []error
	fail := func(component, format string, args ...any) {
		errs = append(errs, fuzzyerr.Configuration(component, format, args...))
	}

	if d.Name == "" {
		fail("engine", "name is required")
	}
	if len(d.Inputs) == 0 {
		fail("engine <"+d.Name+">", "at least one input variable is required")
	}
	if len(d.Outputs) == 0 {
		fail("engine <"+d.Name+">", "at least one output variable is required")
	}
	if len(d.RuleBlocks) == 0 {
		fail("engine <"+d.Name+">", "at least one rule block is required")
	}

	seen := make(map[string]bool)
	check := func(kind string, i int, v Variable) {
		component := fmt.Sprintf("%s %d <%s>", kind, i+1, v.Name)
		if v.Name == "" {
			fail(component, "name is required")
		} else if seen[v.Name] {
			fail(component, "duplicate variable name")
		}
		seen[v.Name] = true
		if len(v.Range) != 2 {
			fail(component, "range needs two values, got %d", len(v.Range))
		} else if math.IsNaN(v.Range[0]) || math.IsNaN(v.Range[1]) || v.Range[0] > v.Range[1] {
			fail(component, "invalid range [%v, %v]", v.Range[0], v.Range[1])
		}
		errs = append(errs, validateTerms(component, v.Terms)...)
	}
	for i, v := range d.Inputs {
		check("input", i, v.Variable)
	}
	for i, v := range d.Outputs {
		check("output", i, v.Variable)
		if v.Defuzzifier.Name == "" {
			fail(fmt.Sprintf("output %d <%s>", i+1, v.Name), "defuzzifier is required")
		}
	}

	blocks := make(map[string]bool)
	for i, b := range d.RuleBlocks {
		component := fmt.Sprintf("rule block %d <%s>", i+1, b.Name)
		if blocks[b.Name] {
			fail(component, "duplicate rule block name")
		}
		blocks[b.Name] = true
		if len(b.Rules) == 0 {
			fail(component, "at least one rule is required")
		}
	}
	return errors.Join(errs...)
}

func validateTerms(component string, terms []Term) []error {
	var errs []error
	kinds := term.Kinds()
	names := make(map[string]bool)
	for i, t := range terms {
		c := fmt.Sprintf("%s term %d <%s>", component, i+1, t.Name)
		switch {
		case t.Name == "":
			errs = append(errs, fuzzyerr.Configuration(c, "name is required"))
		case names[t.Name]:
			errs = append(errs, fuzzyerr.Configuration(c, "duplicate term name"))
		}
		names[t.Name] = true
		if !lo.Contains(kinds, t.Kind) {
			errs = append(errs, fuzzyerr.Configuration(c, "unknown term kind <%s>", t.Kind))
			continue
		}
		if t.Kind == "Function" && t.Formula == "" {
			errs = append(errs, fuzzyerr.Configuration(c, "Function needs a formula"))
		}
		if t.Kind != "Function" && t.Formula != "" {
			errs = append(errs, fuzzyerr.Configuration(c, "only Function takes a formula"))
		}
		if t.Height != nil && lo.Contains([]string{"Constant", "Linear", "Function"}, t.Kind) {
			errs = append(errs, fuzzyerr.Configuration(c, "%s does not take a height", t.Kind))
		}
	}
	return errs
}
