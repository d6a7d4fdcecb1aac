// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noldarim/fuzzy/internal/service"
	"github.com/noldarim/fuzzy/pkg/fuzzy/definition"
	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
	"github.com/noldarim/fuzzy/test/testutil"
)

// workspace moves into an empty directory holding the dimmer definition, so
// no config.yaml or .env of the repository is picked up.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return testutil.WriteFile(t, dir, "dimmer.yaml", testutil.DimmerYAML)
}

func TestRunBasics(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr string
	}{
		{name: "no args", args: nil, want: "Usage:"},
		{name: "help", args: []string{"help"}, want: "Commands:"},
		{name: "version", args: []string{"version"}, want: "fuzzy version " + Version},
		{name: "unknown", args: []string{"frobnicate"}, want: "Usage:", wantErr: "unknown command: frobnicate"},
		{name: "eval without file", args: []string{"eval"}, wantErr: "-f <engine.yaml>"},
		{name: "check without file", args: []string{"check"}, wantErr: "-f <engine.yaml>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(tt.args, &out)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestEvalTable(t *testing.T) {
	path := workspace(t)

	var out bytes.Buffer
	require.NoError(t, run([]string{"eval", "-f", path, "ambient=0.25"}, &out))
	text := out.String()
	assert.Contains(t, text, "dimmer")
	assert.Contains(t, text, "Mamdani")
	assert.Contains(t, text, "0.25")
	assert.Contains(t, text, "if ambient is MEDIUM then power is MEDIUM")
}

func TestEvalJSON(t *testing.T) {
	path := workspace(t)

	var out bytes.Buffer
	require.NoError(t, run([]string{"eval", "-f", path, "-json", "ambient=0.25"}, &out))
	var result service.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "dimmer", result.Engine)
	assert.InDelta(t, 1.0, float64(result.Outputs["power"]), 0.01)

	out.Reset()
	require.NoError(t, run([]string{"eval", "-f", path, "-json", "ambient=nan"}, &out))
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	testutil.AssertValue(t, math.NaN(), float64(result.Outputs["power"]), 0)
	assert.Empty(t, result.Fired)
}

func TestEvalBatch(t *testing.T) {
	path := workspace(t)
	batch := filepath.Join(filepath.Dir(path), "inputs.jsonl")
	require.NoError(t, os.WriteFile(batch, []byte("{\"ambient\":0}\n\n{\"ambient\":0.25}\n{}\n"), 0o644))

	var out bytes.Buffer
	require.NoError(t, run([]string{"eval", "-f", path, "-batch", batch, "-workers", "2", "ambient=0.5"}, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)

	powers := make([]float64, len(lines))
	for i, line := range lines {
		var r service.Result
		require.NoError(t, json.Unmarshal([]byte(line), &r))
		powers[i] = float64(r.Outputs["power"])
	}
	assert.Greater(t, powers[0], powers[1])
	// The empty object keeps the value given on the command line.
	assert.Greater(t, powers[1], powers[2])
}

func TestEvalErrors(t *testing.T) {
	path := workspace(t)
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "bad assignment", args: []string{"ambient"}, wantErr: "expected name=value"},
		{name: "bad number", args: []string{"ambient=dim"}, wantErr: "input ambient"},
		{name: "unknown input", args: []string{"sun=1"}, wantErr: "unknown variable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(append([]string{"eval", "-f", path}, tt.args...), &out)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	var out bytes.Buffer
	err := run([]string{"eval", "-f", filepath.Join(filepath.Dir(path), "missing.yaml")}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}

func TestCheck(t *testing.T) {
	path := workspace(t)

	var out bytes.Buffer
	require.NoError(t, run([]string{"check", "-f", path}, &out))
	text := out.String()
	assert.Contains(t, text, "Mamdani")
	assert.Contains(t, text, "rules")
	assert.Contains(t, text, "3")
}

func TestCheckPrint(t *testing.T) {
	path := workspace(t)

	var out bytes.Buffer
	require.NoError(t, run([]string{"check", "-f", path, "-print"}, &out))
	d, err := definition.Parse(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "dimmer", d.Name)
	require.Len(t, d.RuleBlocks, 1)
	assert.Len(t, d.RuleBlocks[0].Rules, 3)
	require.NoError(t, d.Validate())
}

func TestCheckInvalid(t *testing.T) {
	path := workspace(t)
	broken := strings.Replace(testutil.DimmerYAML, "kind: Triangle", "kind: Blob", 1)
	require.NoError(t, os.WriteFile(path, []byte(broken), 0o644))

	var out bytes.Buffer
	err := run([]string{"check", "-f", path}, &out)
	require.Error(t, err)
	assert.True(t, fuzzyerr.IsConfiguration(err))
	assert.Contains(t, err.Error(), "unknown term kind <Blob>")
}

func TestParseAssignments(t *testing.T) {
	inputs, err := parseAssignments([]string{"a=1", "b=-inf", "c=nan"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, inputs["a"])
	assert.True(t, math.IsInf(inputs["b"], -1))
	assert.True(t, math.IsNaN(inputs["c"]))

	_, err = parseAssignments([]string{"=1"})
	require.Error(t, err)
}
