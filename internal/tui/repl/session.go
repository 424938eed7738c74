package repl

import (
	"context"
	"fmt"
	"strings"

	"github.com/winterSteve25/props/pkg/props/ast"
	"github.com/winterSteve25/props/pkg/props/pipeline"
)

// Session accumulates the lines accepted so far. Every submission re-runs
// the whole buffer, so earlier assignments stay visible to later lines.
type Session struct {
	pipeline *pipeline.Pipeline
	lines    []string
	last     *pipeline.Unit
}

// Result is the outcome of one submitted line
type Result struct {
	Input string
	Unit  *pipeline.Unit
	// Last is the final statement of the buffer, nil when nothing parsed
	Last ast.Stmt
	// Kept reports whether the line was added to the buffer
	Kept bool
}

// NewSession creates an empty session on p
func NewSession(p *pipeline.Pipeline) *Session {
	return &Session{pipeline: p}
}

// Submit appends line to the buffer and runs the buffer. A line that
// produces diagnostics is reported but not kept.
func (s *Session) Submit(ctx context.Context, line string) (*Result, error) {
	candidate := append(append([]string(nil), s.lines...), line)

	unit, err := s.pipeline.RunNamed(ctx, "repl", strings.Join(candidate, "\n"))
	if err != nil {
		return nil, err
	}

	res := &Result{Input: line, Unit: unit}
	if n := len(unit.Nodes); n > 0 {
		res.Last = unit.Nodes[n-1]
	}
	if len(unit.Diagnostics) == 0 {
		s.lines = candidate
		s.last = unit
		res.Kept = true
	}
	return res, nil
}

// Reset drops the buffer
func (s *Session) Reset() {
	s.lines = nil
	s.last = nil
}

// Lines returns the accepted lines
func (s *Session) Lines() []string {
	return append([]string(nil), s.lines...)
}

// Env lists the type environment of the last accepted run, one
// "name: Type" per line in name order.
func (s *Session) Env() []string {
	if s.last == nil {
		return nil
	}
	snapshot := s.last.Env.Snapshot()
	out := make([]string, 0, len(snapshot))
	for _, name := range s.last.Env.Names() {
		out = append(out, fmt.Sprintf("%s: %s", name, snapshot[name]))
	}
	return out
}
