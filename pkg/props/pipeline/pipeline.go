// ============================================================================
// Props - Expression Language Front End
// ============================================================================
//
// Package:     pipeline
// Description: Runs a source unit through the parser and the type stages
// Created:     2026-10-17
// License:     MIT
// ============================================================================

// Package pipeline drives one source unit through lexing, parsing and an
// ordered list of stages that run over the resulting tree.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	propserr "github.com/winterSteve25/props/pkg/core/error"
	propslog "github.com/winterSteve25/props/pkg/core/log"
	"github.com/winterSteve25/props/pkg/props/diag"
	"github.com/winterSteve25/props/pkg/props/parser"
)

// Stage is one step run over a parsed unit
type Stage interface {
	// Name returns the stage name
	Name() string
	// Run processes the unit, adding diagnostics through Unit.Report
	Run(ctx context.Context, unit *Unit) error
}

// Options configures a Pipeline
type Options struct {
	Logger   *propslog.Logger
	Recovery parser.Recovery

	// Report receives every diagnostic as soon as it is found, from the
	// parser and from every stage.
	Report func(*diag.Diagnostic)

	// Bare skips registering the default typer and checker stages
	Bare bool
}

// Pipeline runs units through the parser and its stages in order
type Pipeline struct {
	mu      sync.RWMutex
	stages  []Stage
	logger  *propslog.Logger
	options Options
}

// New creates a pipeline with the typer and checker stages registered,
// unless opts.Bare is set.
func New(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = propslog.GetDefault()
	}
	p := &Pipeline{
		stages:  make([]Stage, 0, 2),
		logger:  logger.WithField("component", "pipeline"),
		options: opts,
	}
	if !opts.Bare {
		p.AddStage(NewTypeStage(logger))
		p.AddStage(NewCheckStage(logger))
	}
	return p
}

// AddStage appends a stage; stages run in registration order
func (p *Pipeline) AddStage(stage Stage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stages = append(p.stages, stage)
	p.logger.Debug("Stage added", propslog.Fields{"stage": stage.Name()})
}

// Stages returns the names of the registered stages in order
func (p *Pipeline) Stages() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Run processes source as an unnamed unit
func (p *Pipeline) Run(ctx context.Context, source string) (*Unit, error) {
	return p.RunNamed(ctx, "", source)
}

// RunNamed processes source; name identifies the unit in logs and history.
// Language problems are returned as unit diagnostics, never as an error.
// The error is reserved for cancellation and failing stages.
func (p *Pipeline) RunNamed(ctx context.Context, name, source string) (*Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, propserr.Wrap(err, "pipeline cancelled").
			WithCode(propserr.CodeTimeout).
			WithOperation("pipeline.Run")
	}

	unit := newUnit(uuid.NewString(), name, source, p.options.Report)
	logger := p.logger.WithRequestID(unit.ID)
	logger.Debug("Starting unit", propslog.Fields{"name": name, "bytes": len(source)})

	pr := parser.New(source, parser.Options{
		Logger:   p.logger,
		Recovery: p.options.Recovery,
		Report:   unit.report,
	})
	unit.Lines = pr.Lines()
	unit.Nodes, unit.Diagnostics = pr.Parse()

	if unit.Diagnostics.Fatal() {
		logger.Debug("Skipping stages after unexpected end of input")
		unit.Duration = time.Since(unit.Started)
		return unit, nil
	}

	p.mu.RLock()
	stages := append([]Stage(nil), p.stages...)
	p.mu.RUnlock()

	for _, stage := range stages {
		select {
		case <-ctx.Done():
			return unit, propserr.Wrap(ctx.Err(), "pipeline cancelled").
				WithCode(propserr.CodeTimeout).
				WithOperation("pipeline.Run").
				WithDetail("stage", stage.Name())
		default:
		}

		stageStart := time.Now()
		if err := stage.Run(ctx, unit); err != nil {
			logger.ErrorWithErr("Stage failed", err, propslog.Fields{"stage": stage.Name()})
			return unit, propserr.Wrap(err, "stage "+stage.Name()+" failed").
				WithCode(propserr.CodeInternal).
				WithOperation("pipeline.Run").
				WithDetail("stage", stage.Name())
		}
		logger.Debug("Stage completed", propslog.Fields{
			"stage":    stage.Name(),
			"duration": time.Since(stageStart).String(),
		})
	}

	unit.Duration = time.Since(unit.Started)
	logger.Debug("Unit completed", propslog.Fields{
		"nodes":       len(unit.Nodes),
		"diagnostics": len(unit.Diagnostics),
		"duration":    unit.Duration.String(),
	})
	return unit, nil
}
