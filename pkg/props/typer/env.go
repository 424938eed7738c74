// Package typer assigns and checks types over a parsed Props unit.
package typer

import (
	"fmt"
	"sort"

	"github.com/winterSteve25/props/pkg/props/ast"
	"github.com/winterSteve25/props/pkg/props/diag"
	"github.com/winterSteve25/props/pkg/props/types"
)

// Environment maps names to types. The last assignment to a name wins.
// Child environments see their parent's names and may shadow them.
type Environment struct {
	parent *Environment
	types  map[string]types.Type
}

// NewEnvironment creates an empty top-level environment
func NewEnvironment() *Environment {
	return &Environment{types: make(map[string]types.Type)}
}

// Child creates a nested scope
func (e *Environment) Child() *Environment {
	return &Environment{parent: e, types: make(map[string]types.Type)}
}

// Clear forgets every name in this scope
func (e *Environment) Clear() {
	e.types = make(map[string]types.Type)
}

// Assign binds name to t in this scope
func (e *Environment) Assign(name string, t types.Type) {
	e.types[name] = t
}

// Lookup finds name in this scope or its parents
func (e *Environment) Lookup(name string) (types.Type, bool) {
	for env := e; env != nil; env = env.parent {
		if t, ok := env.types[name]; ok {
			return t, true
		}
	}
	return types.Undefined{}, false
}

// Len returns the number of names bound in this scope
func (e *Environment) Len() int {
	return len(e.types)
}

// Names returns the names bound in this scope, sorted
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.types))
	for name := range e.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot renders this scope as name -> type name
func (e *Environment) Snapshot() map[string]string {
	out := make(map[string]string, len(e.types))
	for name, t := range e.types {
		out[name] = t.String()
	}
	return out
}

// PredictType computes a best-effort type for expr without changing the
// environment. A diagnostic is returned when two operands cannot be related,
// e.g. a number added to a string; the type is then Undefined.
func (e *Environment) PredictType(expr ast.Expr) (types.Type, *diag.Diagnostic) {
	switch n := expr.(type) {
	case *ast.Literal:
		return types.FromNumber(n.Value), nil

	case *ast.StrLiteral:
		return types.Str, nil

	case *ast.IdentRef:
		return e.identType(n.Ident), nil

	case *ast.Negate:
		t, d := e.PredictType(n.Operand)
		if d == nil && types.Equal(t, types.Str) {
			pos := n.Position()
			d = diag.NewUnmatchedTypes(pos.Line, pos.Column, 1, t, types.Undefined{})
			d.Detail = "Can not negate a value of type Str"
			return types.Undefined{}, d
		}
		return t, d

	case *ast.BinaryOp:
		return e.predictBinary(n)

	case *ast.FuncCall:
		if fn, ok := e.identType(n.Callee).(types.Function); ok {
			return fn.Return, nil
		}
		return types.Undefined{}, nil

	case *ast.CompoundExpr:
		members := make([]types.Type, len(n.Members))
		for i, m := range n.Members {
			t, d := e.PredictType(m)
			if d != nil {
				return types.Undefined{}, d
			}
			members[i] = t
		}
		return types.NewCompound(members...), nil

	case *ast.FuncLiteral:
		return types.Function{Return: e.predictReturn(n)}, nil
	}
	return types.Undefined{}, nil
}

func (e *Environment) predictBinary(n *ast.BinaryOp) (types.Type, *diag.Diagnostic) {
	lt, d := e.PredictType(n.Left)
	if d != nil {
		return types.Undefined{}, d
	}
	rt, d := e.PredictType(n.Right)
	if d != nil {
		return types.Undefined{}, d
	}

	lp, lok := lt.(types.Primitive)
	rp, rok := rt.(types.Primitive)
	if lok && rok {
		if wide, ok := types.Widen(lp, rp); ok {
			return wide, nil
		}
	} else if types.Equal(lt, rt) {
		return lt, nil
	} else if types.IsUndefined(lt) || types.IsUndefined(rt) {
		return types.Undefined{}, nil
	}

	pos := n.Position()
	mismatch := diag.NewUnmatchedTypes(pos.Line, pos.Column, 1, lt, rt)
	mismatch.Detail = fmt.Sprintf("Can not apply %s to operands of type %s and %s", n.Op, lt, rt)
	return types.Undefined{}, mismatch
}

// predictReturn types the first top-level return of a function literal in
// a scope holding its parameters.
func (e *Environment) predictReturn(lit *ast.FuncLiteral) types.Type {
	if !types.IsUndefined(lit.ReturnType) {
		return lit.ReturnType
	}

	scope := e.Child()
	bindParams(scope, lit.Params)
	for _, stmt := range lit.Body {
		switch s := stmt.(type) {
		case *ast.Assignment:
			if t, d := scope.PredictType(s.Value); d == nil {
				bindQuiet(scope, s.Target, t)
			}
		case *ast.Return:
			t, _ := scope.PredictType(s.Value)
			return t
		}
	}
	return types.Undefined{}
}

// identType resolves the type an identifier refers to
func (e *Environment) identType(id ast.Identifier) types.Type {
	switch n := id.(type) {
	case *ast.Ident:
		if n.Declared() {
			return n.Type
		}
		t, _ := e.Lookup(n.Name)
		return t
	case *ast.Accessor:
		t, _ := e.Lookup(ast.Path(n))
		return t
	case *ast.CompoundIdent:
		members := make([]types.Type, len(n.Members))
		for i, m := range n.Members {
			members[i] = e.identType(m)
		}
		return types.NewCompound(members...)
	}
	return types.Undefined{}
}

// bindParams shadows every parameter; undeclared ones stay Undefined
func bindParams(scope *Environment, params []*ast.Ident) {
	for _, p := range params {
		scope.Assign(p.Name, p.Type)
	}
}

// bindQuiet records assignment results without reporting anything
func bindQuiet(scope *Environment, target ast.Identifier, t types.Type) {
	switch n := target.(type) {
	case *ast.Ident:
		if n.Declared() {
			scope.Assign(n.Name, n.Type)
		} else if !types.IsUndefined(t) {
			scope.Assign(n.Name, t)
		}
	case *ast.Accessor:
		if !types.IsUndefined(t) {
			scope.Assign(ast.Path(n), t)
		}
	case *ast.CompoundIdent:
		c, ok := t.(types.Compound)
		for i, m := range n.Members {
			mt := types.Type(types.Undefined{})
			if ok && len(c.Members) == len(n.Members) {
				mt = c.Members[i]
			}
			bindQuiet(scope, m, mt)
		}
	}
}
