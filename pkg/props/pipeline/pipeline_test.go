package pipeline

import (
	"context"
	"errors"
	"testing"

	propserr "github.com/winterSteve25/props/pkg/core/error"
	"github.com/winterSteve25/props/pkg/props/diag"
)

type recordingStage struct {
	name  string
	calls *[]string
	err   error
}

func (s *recordingStage) Name() string { return s.name }

func (s *recordingStage) Run(ctx context.Context, unit *Unit) error {
	*s.calls = append(*s.calls, s.name)
	return s.err
}

func TestNew_DefaultStages(t *testing.T) {
	p := New(Options{})
	stages := p.Stages()
	if len(stages) != 2 || stages[0] != "typer" || stages[1] != "checker" {
		t.Errorf("Expected [typer checker], got %v", stages)
	}

	bare := New(Options{Bare: true})
	if len(bare.Stages()) != 0 {
		t.Errorf("Expected no stages, got %v", bare.Stages())
	}
}

func TestRun(t *testing.T) {
	unit, err := New(Options{}).Run(context.Background(), "number: I32 = 32\ntotal = number * 2\n")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if unit.ID == "" {
		t.Error("Expected a unit ID")
	}
	if len(unit.Nodes) != 2 {
		t.Fatalf("Expected 2 nodes, got %d", len(unit.Nodes))
	}
	if len(unit.Diagnostics) != 0 {
		t.Errorf("Expected no diagnostics, got %v", unit.Diagnostics)
	}
	if got, _ := unit.Env.Lookup("total"); got.String() != "I32" {
		t.Errorf("Expected total: I32, got %s", got)
	}
	if len(unit.Lines) != 2 {
		t.Errorf("Expected 2 source lines, got %d", len(unit.Lines))
	}
}

func TestRun_StageOrder(t *testing.T) {
	var calls []string
	p := New(Options{Bare: true})
	p.AddStage(&recordingStage{name: "first", calls: &calls})
	p.AddStage(&recordingStage{name: "second", calls: &calls})

	if _, err := p.Run(context.Background(), "x = 1"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("Expected stages in registration order, got %v", calls)
	}
}

func TestRun_SkipsStagesAfterUnexpectedEOF(t *testing.T) {
	var calls []string
	p := New(Options{Bare: true})
	p.AddStage(&recordingStage{name: "typer", calls: &calls})

	unit, err := p.Run(context.Background(), "x = ")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(calls) != 0 {
		t.Errorf("Expected no stages to run, got %v", calls)
	}
	if unit.Nodes != nil {
		t.Errorf("Expected nil nodes, got %v", unit.Nodes)
	}
	if !unit.Diagnostics.Fatal() {
		t.Error("Expected an unexpected end of input diagnostic")
	}
}

func TestRun_StageError(t *testing.T) {
	var calls []string
	p := New(Options{Bare: true})
	p.AddStage(&recordingStage{name: "broken", calls: &calls, err: errors.New("boom")})
	p.AddStage(&recordingStage{name: "after", calls: &calls})

	_, err := p.Run(context.Background(), "x = 1")
	if err == nil {
		t.Fatal("Expected an error")
	}
	if propserr.GetCode(err) != propserr.CodeInternal {
		t.Errorf("Expected code %s, got %s", propserr.CodeInternal, propserr.GetCode(err))
	}
	if len(calls) != 1 {
		t.Errorf("Expected the pipeline to stop after the failing stage, got %v", calls)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(Options{}).Run(ctx, "x = 1"); err == nil {
		t.Error("Expected an error for a cancelled context")
	}
}

func TestRun_ReportOrder(t *testing.T) {
	var reported []diag.Kind
	p := New(Options{Report: func(d *diag.Diagnostic) {
		reported = append(reported, d.Kind)
	}})

	unit, err := p.Run(context.Background(), "a = )\nx: I32 = \"s\"\nx 1")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []diag.Kind{diag.UnexpectedToken, diag.UnmatchedTypes, diag.UnmatchedTypes}
	if len(reported) != len(want) {
		t.Fatalf("Expected %d reported diagnostics, got %d: %v", len(want), len(reported), unit.Diagnostics)
	}
	for i := range want {
		if reported[i] != want[i] {
			t.Errorf("Expected diagnostic %d to be %s, got %s", i, want[i], reported[i])
		}
	}
	if len(unit.Diagnostics) != len(reported) {
		t.Errorf("Expected unit to hold %d diagnostics, got %d", len(reported), len(unit.Diagnostics))
	}
}

func TestUnit_Export(t *testing.T) {
	unit, err := New(Options{}).Run(context.Background(), "x = 1\ny: Str = 2")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	out := unit.Export()
	if out["id"] != unit.ID {
		t.Errorf("Expected id %s, got %v", unit.ID, out["id"])
	}
	if nodes := out["ast"].([]interface{}); len(nodes) != 2 {
		t.Errorf("Expected 2 ast entries, got %d", len(nodes))
	}

	diags := out["diagnostics"].([]interface{})
	if len(diags) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d", len(diags))
	}
	d := diags[0].(map[string]interface{})
	if d["kind"] != "UnmatchedTypes" || d["line"] != 2 || d["column"] != 0 {
		t.Errorf("Unexpected diagnostic entry: %v", d)
	}
	if d["rendered"] == "" {
		t.Error("Expected a rendered excerpt")
	}

	typesOut := out["types"].(map[string]interface{})
	if typesOut["x"] != "I16" || typesOut["y"] != "Str" {
		t.Errorf("Unexpected types: %v", typesOut)
	}
}
