// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/noldarim/fuzzy/pkg/fuzzy/definition"
)

type checkOptions struct {
	configPath string
	file       string
	print      bool
	verbose    bool
}

// checkCommand handles the check subcommand
func checkCommand(args []string, out io.Writer) error {
	opts := &checkOptions{}
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&opts.configPath, "config", "", "Path to config file")
	fs.StringVar(&opts.file, "f", "", "Engine definition (YAML)")
	fs.BoolVar(&opts.print, "print", false, "Print the definition as rebuilt from the engine")
	fs.BoolVar(&opts.verbose, "v", false, "Log debug output to stderr")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if opts.file == "" {
		return errors.New("check needs an engine definition: -f <engine.yaml>")
	}

	cfg, err := setup(opts.configPath, opts.verbose)
	if err != nil {
		return err
	}
	e, err := definition.LoadEngine(opts.file, definition.WithDefaultResolution(cfg.Engines.DefaultResolution))
	if err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return err
	}

	if opts.print {
		data, err := definition.FromEngine(e).Marshal()
		if err != nil {
			return fmt.Errorf("failed to marshal engine definition: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	fmt.Fprintln(out, renderSummary(e))
	return nil
}
