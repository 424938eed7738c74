package typer

import (
	"fmt"

	propslog "github.com/winterSteve25/props/pkg/core/log"
	"github.com/winterSteve25/props/pkg/props/ast"
	"github.com/winterSteve25/props/pkg/props/diag"
	"github.com/winterSteve25/props/pkg/props/types"
)

// Typer walks assignments in source order, recording the type of every
// target in an Environment and reporting values that do not fit.
type Typer struct {
	logger *propslog.Logger
}

// New creates a Typer. A nil logger uses the default logger.
func New(logger *propslog.Logger) *Typer {
	if logger == nil {
		logger = propslog.GetDefault()
	}
	return &Typer{logger: logger.WithField("component", "typer")}
}

// Process types stmts into env and returns the diagnostics found, in
// source order.
func (t *Typer) Process(stmts []ast.Stmt, env *Environment) diag.List {
	timer := t.logger.StartTimer("typer.process")
	defer timer.Stop()

	var diags diag.List
	t.statements(stmts, env, &diags)

	t.logger.WithFields(propslog.Fields{
		"names":       env.Len(),
		"diagnostics": len(diags),
	}).Debug("Typed unit")
	return diags
}

func (t *Typer) statements(stmts []ast.Stmt, env *Environment, diags *diag.List) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.Assignment:
			t.assignment(s, env, diags)
		case *ast.ImpFuncCall:
			for _, arg := range s.Args {
				t.expression(arg, env, diags)
			}
		case *ast.Return:
			t.expression(s.Value, env, diags)
		case *ast.ExprStmt:
			t.expression(s.Expr, env, diags)
		}
	}
}

// expression reports operand mismatches in expr and types the bodies of
// any function literals it contains.
func (t *Typer) expression(expr ast.Expr, env *Environment, diags *diag.List) {
	if _, d := env.PredictType(expr); d != nil {
		*diags = append(*diags, d)
	}
	t.bodies(expr, env, diags)
}

func (t *Typer) bodies(expr ast.Expr, env *Environment, diags *diag.List) {
	ast.Inspect(expr, func(n ast.Node) bool {
		lit, ok := n.(*ast.FuncLiteral)
		if !ok {
			return true
		}
		scope := env.Child()
		bindParams(scope, lit.Params)
		t.statements(lit.Body, scope, diags)
		return false
	})
}

func (t *Typer) assignment(s *ast.Assignment, env *Environment, diags *diag.List) {
	predicted, d := env.PredictType(s.Value)
	if d != nil {
		*diags = append(*diags, d)
	}
	t.bind(s.Target, predicted, env, diags, d != nil)
	t.bodies(s.Value, env, diags)
}

// bind stores predicted under target. Declared types always win and are
// stored even when the value does not fit them. failed suppresses further
// reports once the value itself was already diagnosed.
func (t *Typer) bind(target ast.Identifier, predicted types.Type, env *Environment, diags *diag.List, failed bool) {
	switch n := target.(type) {
	case *ast.Ident:
		if n.Declared() {
			if !failed && !types.IsUndefined(predicted) && !types.Assignable(predicted, n.Type) {
				*diags = append(*diags, diag.NewUnmatchedTypes(n.Pos.Line, n.Pos.Column, len(n.Name), predicted, n.Type))
			}
			env.Assign(n.Name, n.Type)
			return
		}
		t.infer(n.Name, n, predicted, env, diags, failed)

	case *ast.Accessor:
		t.infer(ast.Path(n), n, predicted, env, diags, failed)

	case *ast.CompoundIdent:
		c, ok := predicted.(types.Compound)
		if ok && len(c.Members) == len(n.Members) {
			for i, m := range n.Members {
				t.bind(m, c.Members[i], env, diags, failed)
			}
			return
		}
		if !failed {
			pos := n.Position()
			*diags = append(*diags, diag.NewUnmatchedTypes(pos.Line, pos.Column, ast.Extent(n), predicted, env.identType(n)))
		}
		for _, m := range n.Members {
			t.bind(m, types.Undefined{}, env, diags, true)
		}
	}
}

func (t *Typer) infer(name string, target ast.Identifier, predicted types.Type, env *Environment, diags *diag.List, failed bool) {
	if types.IsUndefined(predicted) {
		if !failed {
			pos := target.Position()
			d := diag.NewUnmatchedTypes(pos.Line, pos.Column, ast.Extent(target), predicted, types.Undefined{})
			d.Detail = fmt.Sprintf("Can not infer the type of %s", name)
			*diags = append(*diags, d)
		}
		return
	}
	env.Assign(name, predicted)
}
