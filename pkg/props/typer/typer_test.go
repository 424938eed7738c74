package typer

import (
	"strings"
	"testing"

	"github.com/winterSteve25/props/pkg/props/ast"
	"github.com/winterSteve25/props/pkg/props/diag"
	"github.com/winterSteve25/props/pkg/props/parser"
	"github.com/winterSteve25/props/pkg/props/types"
)

func parse(t *testing.T, source string) []ast.Stmt {
	t.Helper()
	stmts, diags := parser.Parse(source)
	if len(diags) != 0 {
		t.Fatalf("Parse(%q): unexpected diagnostics: %v", source, diags)
	}
	return stmts
}

func typeOf(t *testing.T, env *Environment, name string) string {
	t.Helper()
	typ, ok := env.Lookup(name)
	if !ok {
		t.Fatalf("Expected %s to be bound", name)
	}
	return typ.String()
}

func TestEnvironment_Scopes(t *testing.T) {
	env := NewEnvironment()
	env.Assign("x", types.I32)

	child := env.Child()
	if got := typeOf(t, child, "x"); got != "I32" {
		t.Errorf("Expected child to see parent binding I32, got %s", got)
	}

	child.Assign("x", types.Str)
	if got := typeOf(t, child, "x"); got != "Str" {
		t.Errorf("Expected shadowed binding Str, got %s", got)
	}
	if got := typeOf(t, env, "x"); got != "I32" {
		t.Errorf("Expected parent binding to stay I32, got %s", got)
	}

	env.Assign("x", types.F64)
	if got := typeOf(t, env, "x"); got != "F64" {
		t.Errorf("Expected last assignment to win, got %s", got)
	}

	env.Clear()
	if _, ok := env.Lookup("x"); ok {
		t.Error("Expected Clear to forget every binding")
	}
	if env.Len() != 0 {
		t.Errorf("Expected empty environment, got %d names", env.Len())
	}
}

func TestEnvironment_Names(t *testing.T) {
	env := NewEnvironment()
	env.Assign("b", types.I32)
	env.Assign("a", types.Str)

	names := env.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Expected sorted names [a b], got %v", names)
	}

	snap := env.Snapshot()
	if snap["a"] != "Str" || snap["b"] != "I32" {
		t.Errorf("Expected snapshot of type names, got %v", snap)
	}
}

func TestPredictType(t *testing.T) {
	env := NewEnvironment()
	env.Assign("n", types.I64)
	env.Assign("s", types.Str)
	env.Assign("f", types.Function{Return: types.F32})
	env.Assign("obj.count", types.U32)

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"small literal", "1", "I16"},
		{"wide literal", "70000", "I64"},
		{"float literal", "1.5", "F32"},
		{"string literal", `"hi"`, "Str"},
		{"bound identifier", "n", "I64"},
		{"unbound identifier", "missing", "Undefined"},
		{"accessor path", "obj.count", "U32"},
		{"binary widens", "n + 1", "I64"},
		{"float over integer", "1.5 * 2", "F32"},
		{"negate", "-n", "I64"},
		{"call returns function result", "f 1", "F32"},
		{"call on unknown head", "g 1", "Undefined"},
		{"unknown operand", "missing + 1", "Undefined"},
		{"compound", `1, "a"`, "(I16, Str)"},
		{"function literal", "|a| a * 2", "Function(Undefined)"},
		{"typed parameter", "|a: I32| a * 2", "Function(I32)"},
		{"string concatenation", "s + s", "Str"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := parse(t, "v = "+tt.source)
			value := stmts[0].(*ast.Assignment).Value
			got, d := env.PredictType(value)
			if d != nil {
				t.Fatalf("Expected no diagnostic, got %v", d)
			}
			if got.String() != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}

	if env.Len() != 4 {
		t.Errorf("Expected PredictType to leave the environment unchanged, got %d names", env.Len())
	}
}

func TestPredictType_Mismatch(t *testing.T) {
	env := NewEnvironment()
	env.Assign("s", types.Str)
	env.Assign("i", types.I32)
	env.Assign("u", types.U32)
	env.Assign("f", types.F32)

	tests := []struct {
		name   string
		source string
	}{
		{"string plus number", "s + 1"},
		{"number minus string", "2 - s"},
		{"negated string", "-s"},
		{"same width integer and float", "i + f"},
		{"same width unsigned and signed", "u * i"},
		{"same width literal and float", "300 * f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := parse(t, "v = "+tt.source)
			got, d := env.PredictType(stmts[0].(*ast.Assignment).Value)
			if d == nil {
				t.Fatal("Expected a diagnostic")
			}
			if d.Kind != diag.UnmatchedTypes {
				t.Errorf("Expected UnmatchedTypes, got %s", d.Kind)
			}
			if !types.IsUndefined(got) {
				t.Errorf("Expected Undefined, got %s", got)
			}
		})
	}
}

func TestTyper_Assignments(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   map[string]string
	}{
		{"declared wider than literal", "number: I32 = 32", map[string]string{"number": "I32"}},
		{"declared equal", "x: I16 = 1", map[string]string{"x": "I16"}},
		{"inferred", "x = 1.5", map[string]string{"x": "F32"}},
		{"string", `greeting = "hello"`, map[string]string{"greeting": "Str"}},
		{"last assignment wins", "x = 1\nx = \"a\"", map[string]string{"x": "Str"}},
		{"follows earlier bindings", "x: I64 = 1\ny = x + 1", map[string]string{"x": "I64", "y": "I64"}},
		{"compound", `a, b: F64 = 1, 2`, map[string]string{"a": "I16", "b": "F64"}},
		{"accessor path", "obj.size = 3", map[string]string{"obj.size": "I16"}},
		{"function", "add = |a: I32 b| a + b", map[string]string{"add": "Function(Undefined)"}},
		{"function return", "twice = |a: I32| a * 2\nr = twice 4", map[string]string{"r": "I32"}},
		{"unknown into declared", "x: I32 = unknown", map[string]string{"x": "I32"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := NewEnvironment()
			diags := New(nil).Process(parse(t, tt.source), env)
			if len(diags) != 0 {
				t.Fatalf("Expected no diagnostics, got %v", diags)
			}
			for name, want := range tt.want {
				if got := typeOf(t, env, name); got != want {
					t.Errorf("Expected %s: %s, got %s", name, want, got)
				}
			}
		})
	}
}

func TestTyper_Diagnostics(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		line    int
		column  int
		message string
	}{
		{"string into number", `x: I32 = "a"`, 1, 0, "Can not assign type Str to an identifier of type I32"},
		{"wider into narrower", "x: U8 = 70000", 1, 0, "Can not assign type I64 to an identifier of type U8"},
		{"float into same width integer", "x: I32 = 1.5", 1, 0, "Can not assign type F32 to an identifier of type I32"},
		{"arity", "a, b = 1", 1, 3, "Can not assign type I16 to an identifier of type (Undefined, Undefined)"},
		{"cannot infer", "x = unknown", 1, 0, "Can not infer the type of x"},
		{"operands", "s = \"a\"\nx = s * 2", 2, 8, "Can not apply Mul to operands of type Str and I16"},
		{"same width operands", "a = 1.5\nb = 300\nc = a + b", 3, 8, "Can not apply Add to operands of type F32 and I32"},
		{"expression statement", "s = \"a\"\ns + 1", 2, 4, "Can not apply Add to operands of type Str and I16"},
		{"inside function body", "f = |a| {\n\tb: Str = 1\n\treturn b\n}", 2, 1, "Can not assign type I16 to an identifier of type Str"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := New(nil).Process(parse(t, tt.source), NewEnvironment())
			if len(diags) != 1 {
				t.Fatalf("Expected 1 diagnostic, got %d: %v", len(diags), diags)
			}
			d := diags[0]
			if d.Kind != diag.UnmatchedTypes {
				t.Errorf("Expected UnmatchedTypes, got %s", d.Kind)
			}
			if d.Line != tt.line || d.Column != tt.column {
				t.Errorf("Expected position %d:%d, got %d:%d", tt.line, tt.column, d.Line, d.Column)
			}
			if d.Error() != tt.message {
				t.Errorf("Expected message %q, got %q", tt.message, d.Error())
			}
		})
	}
}

func TestTyper_DeclaredTypeStoredOnMismatch(t *testing.T) {
	env := NewEnvironment()
	diags := New(nil).Process(parse(t, `x: I32 = "a"`), env)
	if len(diags) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d", len(diags))
	}
	if got := typeOf(t, env, "x"); got != "I32" {
		t.Errorf("Expected declared type I32 to be stored, got %s", got)
	}
}

func TestTyper_FunctionScope(t *testing.T) {
	env := NewEnvironment()
	diags := New(nil).Process(parse(t, "f = |a: I32| {\n\tinner = a\n\treturn inner\n}"), env)
	if len(diags) != 0 {
		t.Fatalf("Expected no diagnostics, got %v", diags)
	}
	if _, ok := env.Lookup("inner"); ok {
		t.Error("Expected body bindings to stay inside the function scope")
	}
	if got := typeOf(t, env, "f"); got != "Function(I32)" {
		t.Errorf("Expected Function(I32), got %s", got)
	}
}

func TestChecker(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   int
	}{
		{"calling a number", "x = 1\nx 2", 1},
		{"calling a number in an expression", "x = 1\ny = x 2", 1},
		{"calling a function", "f = |a| a\nf 2", 0},
		{"calling an unknown name", "println 2", 0},
		{"parameter shadows outer binding", "x = 1\ng = |x| x 1", 0},
		{"calling an accessor path", "obj.n = 1\nobj.n 3", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := parse(t, tt.source)
			env := NewEnvironment()
			New(nil).Process(stmts, env)
			diags := NewChecker(nil).Check(stmts, env)
			if len(diags) != tt.want {
				t.Fatalf("Expected %d diagnostics, got %d: %v", tt.want, len(diags), diags)
			}
			for _, d := range diags {
				if !strings.Contains(d.Error(), "can not be called") {
					t.Errorf("Expected call diagnostic, got %q", d.Error())
				}
			}
		})
	}
}
