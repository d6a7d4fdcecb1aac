// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the fuzzy command line tool.
package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noldarim/fuzzy/internal/config"
	"github.com/noldarim/fuzzy/internal/logger"
)

const appName = "fuzzy"

// Version is the release of the tool and the server.
const Version = "0.1.0"

var (
	log     *zerolog.Logger
	logOnce sync.Once
)

func getLog() *zerolog.Logger {
	logOnce.Do(func() {
		l := logger.GetCLILogger()
		log = &l
	})
	return log
}

// Execute runs the CLI application
func Execute() error {
	return run(os.Args[1:], os.Stdout)
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		return printUsage(out)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "eval":
		return evalCommand(args, out)
	case "check":
		return checkCommand(args, out)
	case "version":
		fmt.Fprintf(out, "%s version %s\n", appName, Version)
		return nil
	case "help", "-h", "--help":
		return printUsage(out)
	default:
		printUsage(out)
		return fmt.Errorf("unknown command: %s", command)
	}
}

// setup loads the configuration and starts logging. The CLI is quiet unless
// verbose: only warnings reach stderr.
func setup(configPath string, verbose bool) (*config.AppConfig, error) {
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Log.Level = "WARN"
	if verbose {
		cfg.Log.Level = "DEBUG"
	}
	cfg.Log.Levels = nil
	if err := logger.Initialize(&cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func printUsage(out io.Writer) error {
	fmt.Fprintf(out, `%s - fuzzy logic inference engines

Usage:
  %s <command> [arguments]

Commands:
  eval -f <engine.yaml> [name=value ...]   Run one pass and print the outputs and fired rules
  check -f <engine.yaml>                   Validate a definition and print the engine type
  version                                  Print version information
  help                                     Show this help message

Examples:
  %s eval -f engines/dimmer.yaml ambient=0.25
  %s eval -f engines/dimmer.yaml -json ambient=nan
  %s eval -f engines/dimmer.yaml -batch inputs.jsonl -workers 4
  %s check -f engines/dimmer.yaml -print

`, appName, appName, appName, appName, appName, appName)
	return nil
}
