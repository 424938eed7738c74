package pipeline

import (
	"time"

	"github.com/winterSteve25/props/pkg/props/ast"
	"github.com/winterSteve25/props/pkg/props/diag"
	"github.com/winterSteve25/props/pkg/props/typer"
)

// Unit is the state of one source text as it moves through the pipeline
type Unit struct {
	ID     string
	Name   string
	Source string
	Lines  []string

	Nodes       []ast.Stmt
	Diagnostics diag.List
	Env         *typer.Environment

	Started  time.Time
	Duration time.Duration

	onReport func(*diag.Diagnostic)
}

func newUnit(id, name, source string, onReport func(*diag.Diagnostic)) *Unit {
	return &Unit{
		ID:       id,
		Name:     name,
		Source:   source,
		Env:      typer.NewEnvironment(),
		Started:  time.Now(),
		onReport: onReport,
	}
}

// Report appends diagnostics produced by a stage
func (u *Unit) Report(diags ...*diag.Diagnostic) {
	for _, d := range diags {
		u.Diagnostics = append(u.Diagnostics, d)
		u.report(d)
	}
}

// report forwards a diagnostic the parser already recorded
func (u *Unit) report(d *diag.Diagnostic) {
	if u.onReport != nil {
		u.onReport(d)
	}
}

// Export returns the unit as plain maps and slices for JSON, YAML and
// protobuf Struct encoding.
func (u *Unit) Export() map[string]interface{} {
	diags := make([]interface{}, len(u.Diagnostics))
	for i, d := range u.Diagnostics {
		diags[i] = map[string]interface{}{
			"kind":     d.Kind.String(),
			"line":     d.Line,
			"column":   d.Column,
			"message":  d.Error(),
			"rendered": d.Excerpt(u.Lines),
		}
	}

	typesOut := make(map[string]interface{}, u.Env.Len())
	for name, t := range u.Env.Snapshot() {
		typesOut[name] = t
	}

	return map[string]interface{}{
		"id":          u.ID,
		"ast":         ast.ToList(u.Nodes),
		"diagnostics": diags,
		"types":       typesOut,
	}
}
