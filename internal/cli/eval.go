// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/noldarim/fuzzy/internal/service"
	"github.com/noldarim/fuzzy/pkg/fuzzy/op"
)

type evalOptions struct {
	configPath string
	file       string
	json       bool
	batch      string
	workers    int
	verbose    bool
}

// evalCommand handles the eval subcommand
func evalCommand(args []string, out io.Writer) error {
	opts := &evalOptions{}
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&opts.configPath, "config", "", "Path to config file")
	fs.StringVar(&opts.file, "f", "", "Engine definition (YAML)")
	fs.BoolVar(&opts.json, "json", false, "Print the result as JSON")
	fs.StringVar(&opts.batch, "batch", "", "JSON lines file of inputs, one pass per line ('-' for stdin)")
	fs.IntVar(&opts.workers, "workers", runtime.GOMAXPROCS(0), "Parallel passes in batch mode")
	fs.BoolVar(&opts.verbose, "v", false, "Log debug output to stderr")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if opts.file == "" {
		return errors.New("eval needs an engine definition: -f <engine.yaml>")
	}

	inputs, err := parseAssignments(fs.Args())
	if err != nil {
		return err
	}

	cfg, err := setup(opts.configPath, opts.verbose)
	if err != nil {
		return err
	}
	svc := service.New(service.WithDefaultResolution(cfg.Engines.DefaultResolution))
	if err := svc.LoadFile(opts.file); err != nil {
		return err
	}
	name := svc.Names()[0]

	ctx := context.Background()
	if opts.batch != "" {
		return evalBatch(ctx, svc, name, inputs, opts, out)
	}

	result, err := svc.Process(ctx, name, inputs)
	if err != nil {
		return err
	}
	getLog().Debug().Str("engine", name).Int("fired", len(result.Fired)).Msg("pass complete")

	if opts.json {
		return json.NewEncoder(out).Encode(result)
	}
	info, err := svc.Describe(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, renderResult(info, result))
	return nil
}

// evalBatch runs one pass per JSON line. The assignments given on the command
// line apply to every line and are overridden by it.
func evalBatch(ctx context.Context, svc *service.EngineService, name string, common map[string]float64, opts *evalOptions, out io.Writer) error {
	var in io.Reader = os.Stdin
	if opts.batch != "-" {
		f, err := os.Open(opts.batch)
		if err != nil {
			return fmt.Errorf("failed to open batch file: %w", err)
		}
		defer f.Close()
		in = f
	}

	var batch []map[string]float64
	scanner := bufio.NewScanner(in)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var values map[string]service.Value
		if err := json.Unmarshal([]byte(text), &values); err != nil {
			return fmt.Errorf("batch line %d: %w", line, err)
		}
		pass := make(map[string]float64, len(common)+len(values))
		for k, v := range common {
			pass[k] = v
		}
		for k, v := range values {
			pass[k] = float64(v)
		}
		batch = append(batch, pass)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read batch: %w", err)
	}

	results, err := svc.ProcessBatch(ctx, name, batch, opts.workers)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// parseAssignments reads name=value arguments. Values accept nan and inf.
func parseAssignments(args []string) (map[string]float64, error) {
	inputs := make(map[string]float64, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("expected name=value, got %q", arg)
		}
		x, err := op.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", name, err)
		}
		inputs[name] = x
	}
	return inputs, nil
}
