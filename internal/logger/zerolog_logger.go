// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/noldarim/fuzzy/internal/config"
)

// Manager hands out one logger per subsystem, all writing to the configured
// outputs with their own level.
type Manager struct {
	config    *config.LogConfig
	root      zerolog.Logger
	subsystem map[string]zerolog.Logger
	mu        sync.RWMutex
	closers   []io.Closer
}

// NewManager creates a manager writing to every enabled output of cfg. With no
// output enabled, logs go to stderr.
func NewManager(cfg *config.LogConfig) (*Manager, error) {
	m := &Manager{
		config:    cfg,
		subsystem: make(map[string]zerolog.Logger),
	}

	zerolog.SetGlobalLevel(lowestLevel(cfg))
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var writers []io.Writer
	for _, output := range cfg.Output {
		if !output.Enabled {
			continue
		}
		w, err := m.newWriter(output, cfg.Format)
		if err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("failed to create log writers: %w", err)
		}
		writers = append(writers, w)
	}

	var w io.Writer
	switch len(writers) {
	case 0:
		w = os.Stderr
	case 1:
		w = writers[0]
	default:
		w = zerolog.MultiLevelWriter(writers...)
	}

	m.root = m.newLogger(w, parseLevel(cfg.Level))
	return m, nil
}

// NewManagerWithWriter creates a manager writing JSON lines to w. Tests use it
// to capture output.
func NewManagerWithWriter(cfg *config.LogConfig, w io.Writer) *Manager {
	m := &Manager{
		config:    cfg,
		subsystem: make(map[string]zerolog.Logger),
	}
	m.root = m.newLogger(w, parseLevel(cfg.Level))
	return m
}

func (m *Manager) newWriter(output config.LogOutputConfig, format string) (io.Writer, error) {
	switch output.Type {
	case "console":
		if format == "json" {
			return os.Stderr, nil
		}
		return consoleWriter(os.Stderr, "15:04:05.000", true), nil

	case "file":
		if output.Path == "" {
			return nil, fmt.Errorf("file output needs a path")
		}
		if err := os.MkdirAll(filepath.Dir(output.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		var file io.WriteCloser
		if output.Rotate.MaxSizeMB > 0 {
			file = &lumberjack.Logger{
				Filename:   output.Path,
				MaxSize:    output.Rotate.MaxSizeMB,
				MaxBackups: output.Rotate.MaxBackups,
				MaxAge:     output.Rotate.MaxAgeDays,
				Compress:   output.Rotate.Compress,
			}
		} else {
			f, err := os.OpenFile(output.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("failed to open log file %s: %w", output.Path, err)
			}
			file = f
		}
		m.closers = append(m.closers, file)

		if format == "json" {
			return file, nil
		}
		return consoleWriter(file, "2006-01-02 15:04:05.000", false), nil

	default:
		return nil, fmt.Errorf("unsupported output type: %s", output.Type)
	}
}

func consoleWriter(out io.Writer, timeFormat string, color bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeFormat,
		NoColor:    !color,
		FormatLevel: func(i interface{}) string {
			return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s:", i)
		},
	}
}

func (m *Manager) newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	l := zerolog.New(w).Level(level)

	if m.config.Context.IncludeTimestamp {
		l = l.With().Timestamp().Logger()
	}
	if m.config.Context.IncludeCaller {
		l = l.With().Caller().Logger()
	}
	if m.config.Context.IncludeStackTrace != "" {
		l = l.With().Stack().Logger()
	}
	if m.config.Sampling.Enabled {
		l = l.Sample(&zerolog.BurstSampler{
			Burst:       m.config.Sampling.Initial,
			Period:      m.config.Sampling.Tick,
			NextSampler: &zerolog.BasicSampler{N: m.config.Sampling.Thereafter},
		})
	}
	return l
}

// GetLogger returns the logger of a subsystem, tagged with its name and
// leveled by config.Levels (or the global level).
func (m *Manager) GetLogger(name string) zerolog.Logger {
	m.mu.RLock()
	l, ok := m.subsystem[name]
	m.mu.RUnlock()
	if ok {
		return l
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.subsystem[name]; ok {
		return l
	}

	level := parseLevel(m.config.Level)
	if sub, ok := m.config.Levels[name]; ok {
		level = parseLevel(sub)
	}
	l = m.root.With().Str("subsystem", name).Logger().Level(level)
	m.subsystem[name] = l
	return l
}

// SetLevel changes the level of a subsystem. Loggers already handed out keep
// their level; later GetLogger calls see the new one.
func (m *Manager) SetLevel(name, level string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config.Levels == nil {
		m.config.Levels = make(map[string]string)
	}
	m.config.Levels[name] = level
	if l, ok := m.subsystem[name]; ok {
		m.subsystem[name] = l.Level(parseLevel(level))
	}
}

// Close closes the file outputs.
func (m *Manager) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	m.closers = nil
	return first
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "FATAL":
		return zerolog.FatalLevel
	case "PANIC":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// lowestLevel is the most verbose level any subsystem asks for. The global
// level must not filter out what a subsystem enables.
func lowestLevel(cfg *config.LogConfig) zerolog.Level {
	lowest := parseLevel(cfg.Level)
	for _, level := range cfg.Levels {
		lowest = min(lowest, parseLevel(level))
	}
	return lowest
}

var (
	globalManager *Manager
	once          sync.Once
)

// Initialize installs the global manager. Only the first call has an effect.
func Initialize(cfg *config.LogConfig) error {
	var err error
	once.Do(func() {
		globalManager, err = NewManager(cfg)
	})
	return err
}

// GetLogger returns the logger of a subsystem from the global manager, or a
// discard logger before Initialize.
func GetLogger(name string) zerolog.Logger {
	if globalManager == nil {
		return zerolog.New(io.Discard)
	}
	return globalManager.GetLogger(name)
}

// CloseGlobal closes the global manager's outputs.
func CloseGlobal() error {
	if globalManager != nil {
		return globalManager.Close()
	}
	return nil
}
