package typer

import (
	"fmt"

	propslog "github.com/winterSteve25/props/pkg/core/log"
	"github.com/winterSteve25/props/pkg/props/ast"
	"github.com/winterSteve25/props/pkg/props/diag"
	"github.com/winterSteve25/props/pkg/props/types"
)

// Checker reports calls whose head is known to hold a non-function value.
// It runs after the Typer over the environment the Typer produced.
type Checker struct {
	logger *propslog.Logger
}

// NewChecker creates a Checker. A nil logger uses the default logger.
func NewChecker(logger *propslog.Logger) *Checker {
	if logger == nil {
		logger = propslog.GetDefault()
	}
	return &Checker{logger: logger.WithField("component", "checker")}
}

// Check walks stmts and returns call-site diagnostics in source order
func (c *Checker) Check(stmts []ast.Stmt, env *Environment) diag.List {
	var diags diag.List
	for _, stmt := range stmts {
		c.walk(stmt, env, nil, &diags)
	}
	c.logger.WithField("diagnostics", len(diags)).Debug("Checked unit")
	return diags
}

// walk descends n; shadowed holds parameter names of enclosing literals
func (c *Checker) walk(n ast.Node, env *Environment, shadowed map[string]bool, diags *diag.List) {
	ast.Inspect(n, func(node ast.Node) bool {
		switch v := node.(type) {
		case *ast.FuncLiteral:
			inner := make(map[string]bool, len(shadowed)+len(v.Params))
			for name := range shadowed {
				inner[name] = true
			}
			for _, p := range v.Params {
				inner[p.Name] = true
			}
			for _, s := range v.Body {
				c.walk(s, env, inner, diags)
			}
			return false
		case *ast.ImpFuncCall:
			c.callee(v.Callee, env, shadowed, diags)
		case *ast.FuncCall:
			c.callee(v.Callee, env, shadowed, diags)
		}
		return true
	})
}

func (c *Checker) callee(id ast.Identifier, env *Environment, shadowed map[string]bool, diags *diag.List) {
	path := ast.Path(id)
	if path == "" || shadowed[rootName(id)] {
		return
	}
	t, ok := env.Lookup(path)
	if !ok || types.IsUndefined(t) {
		return
	}
	if _, isFn := t.(types.Function); isFn {
		return
	}
	pos := id.Position()
	d := diag.NewUnmatchedTypes(pos.Line, pos.Column, ast.Extent(id), t, types.Function{Return: types.Undefined{}})
	d.Detail = fmt.Sprintf("%s has type %s and can not be called", path, t)
	*diags = append(*diags, d)
}

func rootName(id ast.Identifier) string {
	for {
		switch n := id.(type) {
		case *ast.Ident:
			return n.Name
		case *ast.Accessor:
			id = n.Left
		default:
			return ""
		}
	}
}
