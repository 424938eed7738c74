package repl

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	propslog "github.com/winterSteve25/props/pkg/core/log"
	"github.com/winterSteve25/props/pkg/props/pipeline"
)

func newTestSession() *Session {
	return NewSession(pipeline.New(pipeline.Options{Logger: propslog.Discard()}))
}

func TestSession_Submit(t *testing.T) {
	s := newTestSession()
	ctx := context.Background()

	tests := []struct {
		line      string
		wantKept  bool
		wantDiags int
		wantLast  string
	}{
		{"x: I32 = 1", true, 0, "Assignment("},
		{"y = x + 2", true, 0, "Assignment("},
		{"z: Str = 1", false, 1, "Assignment("},
		{"x + 1", true, 0, "Add("},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			res, err := s.Submit(ctx, tt.line)
			if err != nil {
				t.Fatalf("Submit failed: %v", err)
			}
			if res.Kept != tt.wantKept {
				t.Errorf("Kept = %v, want %v", res.Kept, tt.wantKept)
			}
			if len(res.Unit.Diagnostics) != tt.wantDiags {
				t.Errorf("Expected %d diagnostics, got %d", tt.wantDiags, len(res.Unit.Diagnostics))
			}
			if res.Last == nil || !strings.HasPrefix(res.Last.String(), tt.wantLast) {
				t.Errorf("Expected last statement starting with %q, got %v", tt.wantLast, res.Last)
			}
		})
	}

	if got := len(s.Lines()); got != 3 {
		t.Errorf("Expected 3 buffered lines, got %d", got)
	}
}

func TestSession_Env(t *testing.T) {
	s := newTestSession()
	if env := s.Env(); env != nil {
		t.Errorf("Expected no environment before the first run, got %v", env)
	}

	ctx := context.Background()
	for _, line := range []string{"x: I32 = 1", "name = \"props\"", "y = x * 2"} {
		if _, err := s.Submit(ctx, line); err != nil {
			t.Fatalf("Submit(%q) failed: %v", line, err)
		}
	}

	want := []string{"name: Str", "x: I32", "y: I32"}
	got := s.Env()
	if len(got) != len(want) {
		t.Fatalf("Env() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Env()[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	s.Reset()
	if len(s.Lines()) != 0 || s.Env() != nil {
		t.Error("Expected Reset to clear the session")
	}
}

func TestSession_DiscardedLineLeavesEnv(t *testing.T) {
	s := newTestSession()
	ctx := context.Background()

	s.Submit(ctx, "x: I32 = 1")
	res, _ := s.Submit(ctx, "x = )")
	if res.Kept {
		t.Error("Expected line with a parse error to be discarded")
	}
	if env := s.Env(); len(env) != 1 || env[0] != "x: I32" {
		t.Errorf("Expected environment of the accepted run, got %v", env)
	}
}

// drain runs cmd and every command batched inside it, returning the messages
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// enter types line and presses enter, feeding evaluation results back
func enter(t *testing.T, m Model, line string) Model {
	t.Helper()
	m.textarea.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	for _, msg := range drain(cmd) {
		if res, ok := msg.(evalResultMsg); ok {
			next, _ = m.Update(res)
			m = next.(Model)
		}
	}
	return m
}

func kinds(entries []Entry) []EntryKind {
	out := make([]EntryKind, len(entries))
	for i, e := range entries {
		out[i] = e.Kind
	}
	return out
}

func TestModel_Evaluate(t *testing.T) {
	m := New(Config{})
	m = enter(t, m, "x: I32 = 1")

	entries := m.Entries()
	if len(entries) != 2 {
		t.Fatalf("Expected input and AST entries, got %v", kinds(entries))
	}
	if entries[0].Kind != EntryInput || entries[0].Text != "x: I32 = 1" {
		t.Errorf("Expected echoed input, got %+v", entries[0])
	}
	if entries[1].Kind != EntryAST {
		t.Errorf("Expected AST entry, got %+v", entries[1])
	}
	if m.textarea.Value() != "" {
		t.Errorf("Expected input to be cleared, got %q", m.textarea.Value())
	}
	if m.loading {
		t.Error("Expected loading to end after the result")
	}
}

func TestModel_Diagnostics(t *testing.T) {
	m := New(Config{})
	m = enter(t, m, "s: Str = 1")

	want := []EntryKind{EntryInput, EntryAST, EntryDiagnostic, EntryInfo}
	got := kinds(m.Entries())
	if len(got) != len(want) {
		t.Fatalf("Entry kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Entry %d kind = %v, want %v", i, got[i], want[i])
		}
	}

	diagText := m.Entries()[2].Text
	if !strings.Contains(diagText, "Parsing Error:") || !strings.Contains(diagText, "^") {
		t.Errorf("Expected rendered excerpt, got %q", diagText)
	}
}

func TestModel_Commands(t *testing.T) {
	tests := []struct {
		name     string
		setup    []string
		command  string
		wantKind EntryKind
		wantText string
	}{
		{"env", []string{"x: I32 = 1"}, ":env", EntryEnv, "x: I32"},
		{"empty env", nil, ":env", EntryInfo, "environment is empty"},
		{"source", []string{"a = 1", "b = a"}, ":source", EntryInfo, "a = 1\nb = a"},
		{"reset", []string{"a = 1"}, ":reset", EntryInfo, "session cleared"},
		{"help", nil, ":help", EntryInfo, ":env"},
		{"unknown", nil, ":compile", EntryError, "unknown command :compile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(Config{})
			for _, line := range tt.setup {
				m = enter(t, m, line)
			}
			m = enter(t, m, tt.command)

			entries := m.Entries()
			last := entries[len(entries)-1]
			if last.Kind != tt.wantKind {
				t.Errorf("Expected kind %v, got %v", tt.wantKind, last.Kind)
			}
			if !strings.Contains(last.Text, tt.wantText) {
				t.Errorf("Expected %q in %q", tt.wantText, last.Text)
			}
		})
	}
}

func TestModel_ResetClearsSession(t *testing.T) {
	m := New(Config{})
	m = enter(t, m, "a = 1")
	m = enter(t, m, ":reset")

	if len(m.Session().Lines()) != 0 {
		t.Error("Expected empty buffer after :reset")
	}
}

func TestModel_Quit(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		line string
	}{
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, ""},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, ""},
		{":quit", tea.KeyMsg{Type: tea.KeyEnter}, ":quit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(Config{})
			m.textarea.SetValue(tt.line)
			_, cmd := m.Update(tt.msg)
			if cmd == nil {
				t.Fatal("Expected a command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("Expected tea.QuitMsg")
			}
		})
	}
}

func TestModel_EmptyInputIgnored(t *testing.T) {
	m := New(Config{})
	m = enter(t, m, "   ")
	if len(m.Entries()) != 0 {
		t.Errorf("Expected no entries, got %v", kinds(m.Entries()))
	}
}

func TestModel_View(t *testing.T) {
	m := New(Config{})
	if m.View() != "Initializing..." {
		t.Error("Expected placeholder view before the window size is known")
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)
	m = enter(t, m, "x = 1")

	view := m.View()
	if !strings.Contains(view, "props") {
		t.Error("Expected header in view")
	}
	if !strings.Contains(view, "1 lines in buffer") {
		t.Errorf("Expected buffer status in view, got %q", view)
	}
}
