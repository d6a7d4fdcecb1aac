// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package logger

import (
	"github.com/rs/zerolog"
)

// Static logger getters that map directly to config.yaml log.levels
// These ensure consistent logger names across the codebase

// GetEngineLogger returns a logger for engine processing
func GetEngineLogger() zerolog.Logger {
	return GetLogger("engine")
}

// GetRuleLogger returns a logger for rule loading and activation
func GetRuleLogger() zerolog.Logger {
	return GetLogger("rule")
}

// GetDefinitionLogger returns a logger for engine definition files
func GetDefinitionLogger() zerolog.Logger {
	return GetLogger("definition")
}

// GetAPILogger returns a logger for API operations
func GetAPILogger() zerolog.Logger {
	return GetLogger("api")
}

// GetCLILogger returns a logger for the command line tool
func GetCLILogger() zerolog.Logger {
	return GetLogger("cli")
}

// GetServiceLogger returns a logger for the engine service
func GetServiceLogger() zerolog.Logger {
	return GetLogger("service")
}

// GetTelemetryLogger returns a logger for tracing setup
func GetTelemetryLogger() zerolog.Logger {
	return GetLogger("telemetry")
}
