// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package service serves named engines to concurrent callers.
//
// Engines are not safe for concurrent use, so every engine has its own lock
// and passes on the same engine run one after the other. Batches are spread
// over clones of the engine, one per worker.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/noldarim/fuzzy/internal/logger"
	"github.com/noldarim/fuzzy/internal/metrics"
	"github.com/noldarim/fuzzy/internal/telemetry"
	"github.com/noldarim/fuzzy/pkg/fuzzy/definition"
	"github.com/noldarim/fuzzy/pkg/fuzzy/engine"
)

var (
	log     *zerolog.Logger
	logOnce sync.Once
)

func getLog() *zerolog.Logger {
	logOnce.Do(func() {
		l := logger.GetServiceLogger()
		log = &l
	})
	return log
}

// ErrEngineNotFound is returned for names no engine is registered under.
var ErrEngineNotFound = errors.New("engine not found")

type entry struct {
	mu     sync.Mutex
	engine *engine.Engine
	source string
}

// EngineService holds the engines served by name.
type EngineService struct {
	mu         sync.RWMutex
	engines    map[string]*entry
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	resolution int
}

// Option configures an EngineService.
type Option func(*EngineService)

// WithMetrics records passes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *EngineService) { s.metrics = m }
}

// WithTracer replaces the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *EngineService) { s.tracer = t }
}

// WithDefaultResolution applies to integral defuzzifiers of loaded
// definitions that declare none.
func WithDefaultResolution(resolution int) Option {
	return func(s *EngineService) { s.resolution = resolution }
}

// New creates an empty service.
func New(opts ...Option) *EngineService {
	s := &EngineService{
		engines: make(map[string]*entry),
		tracer:  telemetry.Tracer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadFile builds the engine defined at path and registers it.
func (s *EngineService) LoadFile(path string) error {
	e, err := definition.LoadEngine(path, definition.WithDefaultResolution(s.resolution))
	if err != nil {
		return err
	}
	return s.register(e, path)
}

// LoadFiles loads every path. Failures are joined; the engines that load are
// registered regardless.
func (s *EngineService) LoadFiles(paths []string) error {
	var errs []error
	for _, path := range paths {
		if err := s.LoadFile(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadDefinition builds d and registers the engine, which is then served
// under the definition's name.
func (s *EngineService) LoadDefinition(d *definition.Definition) (EngineInfo, error) {
	e, err := definition.Build(d, definition.WithDefaultResolution(s.resolution))
	if err != nil {
		return EngineInfo{}, err
	}
	if err := s.register(e, ""); err != nil {
		return EngineInfo{}, err
	}
	return s.Describe(e.Name())
}

// Register serves e under its name, replacing any engine of the same name.
// The engine must pass Validate.
func (s *EngineService) Register(e *engine.Engine) error {
	return s.register(e, "")
}

func (s *EngineService) register(e *engine.Engine, source string) error {
	if e.Name() == "" {
		return errors.New("engine has no name")
	}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("engine <%s>: %w", e.Name(), err)
	}

	s.mu.Lock()
	_, replaced := s.engines[e.Name()]
	s.engines[e.Name()] = &entry{engine: e, source: source}
	count := len(s.engines)
	s.mu.Unlock()

	s.metrics.SetEnginesLoaded(count)
	typ, _ := e.Type()
	getLog().Info().
		Str("engine", e.Name()).
		Str("source", source).
		Stringer("type", typ).
		Bool("replaced", replaced).
		Msg("engine registered")
	return nil
}

// Remove stops serving the named engine.
func (s *EngineService) Remove(name string) error {
	s.mu.Lock()
	_, ok := s.engines[name]
	delete(s.engines, name)
	count := len(s.engines)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrEngineNotFound, name)
	}
	s.metrics.SetEnginesLoaded(count)
	return nil
}

// Names lists the served engines in lexical order.
func (s *EngineService) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.engines))
	for name := range s.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *EngineService) lookup(name string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	en, ok := s.engines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEngineNotFound, name)
	}
	return en, nil
}

// Describe reports the variables, rule blocks and type of an engine.
func (s *EngineService) Describe(name string) (EngineInfo, error) {
	en, err := s.lookup(name)
	if err != nil {
		return EngineInfo{}, err
	}
	en.mu.Lock()
	defer en.mu.Unlock()
	return describe(en.engine), nil
}

// Process sets the given inputs and runs one pass. Inputs left out keep their
// previous values. An unknown input fails the call before anything changes.
func (s *EngineService) Process(ctx context.Context, name string, inputs map[string]float64) (Result, error) {
	en, err := s.lookup(name)
	if err != nil {
		return Result{}, err
	}
	en.mu.Lock()
	defer en.mu.Unlock()
	return s.process(ctx, en.engine, inputs)
}

func (s *EngineService) process(ctx context.Context, e *engine.Engine, inputs map[string]float64) (Result, error) {
	_, span := s.tracer.Start(ctx, "engine.process", trace.WithAttributes(
		attribute.String("engine.name", e.Name()),
		attribute.String("engine.id", e.ID()),
		attribute.Int("engine.inputs", len(inputs)),
	))
	defer span.End()

	fail := func(err error) (Result, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "process failed")
		return Result{}, err
	}

	for name := range inputs {
		if _, ok := e.InputVariable(name); !ok {
			return fail(fmt.Errorf("%w: %s", engine.ErrUnknownVariable, name))
		}
	}
	for name, value := range inputs {
		if err := e.SetInputValue(name, value); err != nil {
			return fail(err)
		}
	}

	start := time.Now()
	err := e.Process()
	s.metrics.ObserveProcess(e.Name(), time.Since(start), err)
	if err != nil {
		getLog().Warn().Err(err).Str("engine", e.Name()).Msg("process failed")
		return fail(err)
	}

	result := collect(e)
	for _, b := range e.RuleBlocks() {
		if b.IsEnabled() {
			s.metrics.RulesTriggered(e.Name(), b.Name(), len(b.Triggered()))
		}
	}
	for _, v := range e.OutputVariables() {
		if v.UsedFallback() {
			s.metrics.OutputFallback(e.Name(), v.Name())
		}
		span.SetAttributes(attribute.Float64("output."+v.Name(), v.Value()))
	}
	span.SetAttributes(attribute.Int("rules.fired", len(result.Fired)))
	return result, nil
}

// ProcessBatch runs one pass per element of batch and returns the results in
// order. Each of up to workers goroutines evaluates a clone of the engine, so
// the served engine is only locked while cloning and its state is untouched.
// Every pass starts from the engine's state at the time of the call.
func (s *EngineService) ProcessBatch(ctx context.Context, name string, batch []map[string]float64, workers int) ([]Result, error) {
	en, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return []Result{}, nil
	}
	workers = max(1, min(workers, len(batch)))

	en.mu.Lock()
	clones := make([]*engine.Engine, workers)
	for i := range clones {
		if clones[i], err = en.engine.Clone(); err != nil {
			en.mu.Unlock()
			return nil, fmt.Errorf("failed to clone engine <%s>: %w", name, err)
		}
	}
	en.mu.Unlock()

	ctx, span := s.tracer.Start(ctx, "engine.process_batch", trace.WithAttributes(
		attribute.String("engine.name", name),
		attribute.Int("batch.size", len(batch)),
		attribute.Int("batch.workers", workers),
	))
	defer span.End()

	results := make([]Result, len(batch))
	jobs := make(chan int)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := range batch {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for _, c := range clones {
		g.Go(func() error {
			for i := range jobs {
				// Every pass starts from the snapshot, as the served engine would
				// for a fresh call, rather than from the clone's previous pass.
				fresh, err := c.Clone()
				if err != nil {
					return err
				}
				r, err := s.process(gctx, fresh, batch[i])
				if err != nil {
					return fmt.Errorf("batch item %d: %w", i, err)
				}
				results[i] = r
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch failed")
		return nil, err
	}
	return results, nil
}

// Restart resets the inputs, outputs and previous values of an engine.
func (s *EngineService) Restart(name string) error {
	en, err := s.lookup(name)
	if err != nil {
		return err
	}
	en.mu.Lock()
	defer en.mu.Unlock()
	en.engine.Restart()
	getLog().Debug().Str("engine", name).Msg("engine restarted")
	return nil
}

// Reload rebuilds every engine loaded from a file. Engines whose file no
// longer builds keep being served as they were.
func (s *EngineService) Reload() error {
	s.mu.RLock()
	var paths []string
	for _, en := range s.engines {
		if en.source != "" {
			paths = append(paths, en.source)
		}
	}
	s.mu.RUnlock()
	sort.Strings(paths)
	return s.LoadFiles(paths)
}
