// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/noldarim/fuzzy/internal/service"
	"github.com/noldarim/fuzzy/pkg/fuzzy/engine"
	"github.com/noldarim/fuzzy/pkg/fuzzy/op"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle
			default:
				return dimStyle
			}
		})
}

// renderResult shows the inputs, outputs and fired rules of a pass.
func renderResult(info service.EngineInfo, result service.Result) string {
	inputs := newTable("INPUT", "VALUE")
	for _, v := range info.Inputs {
		inputs.Row(v.Name, op.Str(float64(v.Value)))
	}

	outputs := newTable("OUTPUT", "VALUE", "FUZZY")
	names := make([]string, 0, len(result.Outputs))
	for name := range result.Outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		outputs.Row(name, op.Str(float64(result.Outputs[name])), result.Fuzzy[name])
	}

	parts := []string{
		titleStyle.Render(info.Name) + " " + dimStyle.Render(info.Type),
		inputs.String(),
		outputs.String(),
	}
	if len(result.Fired) == 0 {
		parts = append(parts, dimStyle.Render("no rule fired"))
	} else {
		fired := newTable("BLOCK", "RULE", "DEGREE")
		for _, r := range result.Fired {
			fired.Row(r.Block, r.Rule, op.Str(float64(r.Degree)))
		}
		parts = append(parts, fired.String())
	}
	return strings.Join(parts, "\n")
}

// renderSummary shows what an engine is made of and how it infers.
func renderSummary(e *engine.Engine) string {
	typ, reason := e.Type()
	rules := 0
	for _, b := range e.RuleBlocks() {
		rules += len(b.Rules())
	}

	t := newTable("PROPERTY", "VALUE").
		Row("name", e.Name()).
		Row("type", typ.String()).
		Row("reason", reason).
		Row("inputs", strconv.Itoa(len(e.InputVariables()))).
		Row("outputs", strconv.Itoa(len(e.OutputVariables()))).
		Row("rule blocks", strconv.Itoa(len(e.RuleBlocks()))).
		Row("rules", strconv.Itoa(rules))
	return titleStyle.Render("ok") + " " + e.Name() + "\n" + t.String()
}
