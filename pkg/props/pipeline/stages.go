package pipeline

import (
	"context"

	propslog "github.com/winterSteve25/props/pkg/core/log"
	"github.com/winterSteve25/props/pkg/props/typer"
)

// TypeStage records the type of every assignment target in the unit's
// environment.
type TypeStage struct {
	typer *typer.Typer
}

// NewTypeStage creates the typing stage
func NewTypeStage(logger *propslog.Logger) *TypeStage {
	return &TypeStage{typer: typer.New(logger)}
}

// Name returns the stage name
func (s *TypeStage) Name() string { return "typer" }

// Run types the unit's nodes into a fresh environment
func (s *TypeStage) Run(ctx context.Context, unit *Unit) error {
	unit.Env.Clear()
	unit.Report(s.typer.Process(unit.Nodes, unit.Env)...)
	return nil
}

// CheckStage reports calls on names known to hold non-function values
type CheckStage struct {
	checker *typer.Checker
}

// NewCheckStage creates the call checking stage
func NewCheckStage(logger *propslog.Logger) *CheckStage {
	return &CheckStage{checker: typer.NewChecker(logger)}
}

// Name returns the stage name
func (s *CheckStage) Name() string { return "checker" }

// Run checks call sites against the environment the typer produced
func (s *CheckStage) Run(ctx context.Context, unit *Unit) error {
	unit.Report(s.checker.Check(unit.Nodes, unit.Env)...)
	return nil
}
