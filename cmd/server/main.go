// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/noldarim/fuzzy/internal/cli"
	"github.com/noldarim/fuzzy/internal/config"
	"github.com/noldarim/fuzzy/internal/logger"
	"github.com/noldarim/fuzzy/internal/metrics"
	"github.com/noldarim/fuzzy/internal/server"
	"github.com/noldarim/fuzzy/internal/service"
	"github.com/noldarim/fuzzy/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: search ./config.yaml, ./config, /etc/fuzzy, ~/.fuzzy)")
	flag.Parse()

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.CloseGlobal()

	mainLog := logger.GetLogger("main")
	mainLog.Info().Str("version", cli.Version).Msg("Starting fuzzy API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, cli.Version)
	if err != nil {
		mainLog.Error().Err(err).Msg("Error setting up tracing")
		fmt.Fprintf(os.Stderr, "Error setting up tracing: %v\n", err)
		os.Exit(1)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	svc := service.New(
		service.WithMetrics(m),
		service.WithDefaultResolution(cfg.Engines.DefaultResolution),
	)
	// Engines that fail to load are reported; the server still serves the rest.
	if err := svc.LoadFiles(cfg.Engines.Paths); err != nil {
		mainLog.Error().Err(err).Msg("Some engines failed to load")
	}
	mainLog.Info().Strs("engines", svc.Names()).Msg("Engines loaded")

	srv := server.New(cfg, svc, m)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- srv.Run(ctx)
	}()

	// SIGHUP reloads the engine definitions; SIGINT and SIGTERM stop the server.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

wait:
	for {
		select {
		case sig := <-sigChan:
			if sig == syscall.SIGHUP {
				if err := svc.Reload(); err != nil {
					mainLog.Error().Err(err).Msg("Reload failed")
				} else {
					mainLog.Info().Strs("engines", svc.Names()).Msg("Engines reloaded")
				}
				continue
			}
			mainLog.Info().Msgf("Received signal %v, shutting down...", sig)
			break wait
		case err := <-serverErrChan:
			if err != nil {
				mainLog.Error().Err(err).Msg("Server error")
			}
			break wait
		}
	}

	// Graceful shutdown: fresh context with timeout, independent of ctx.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		mainLog.Error().Err(err).Msg("Error shutting down server")
	}
	cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		mainLog.Error().Err(err).Msg("Error flushing traces")
	}

	mainLog.Info().Msg("API server shut down")
}
