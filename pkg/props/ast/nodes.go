// ============================================================================
// Props - Expression Language Front End
// ============================================================================
//
// Package:     ast
// Description: Statement, expression and identifier nodes built by the parser
// Created:     2026-10-17
// License:     MIT
// ============================================================================

// Package ast defines the tree the Props parser produces. Nodes are built
// bottom-up and are not mutated after Parse returns.
package ast

import (
	"fmt"
	"strings"

	"github.com/winterSteve25/props/pkg/props/token"
	"github.com/winterSteve25/props/pkg/props/types"
)

// Node is implemented by every tree node
type Node interface {
	// String returns the S-expression form used in tests and dumps
	String() string

	// Accept implements the visitor pattern
	Accept(v Visitor) interface{}

	// Position returns the position of the node's last character
	Position() Pos
}

// Pos is a source position: 1-based line, 0-based column of the last
// character, the same convention tokens use.
type Pos struct {
	Line   int
	Column int
}

// PosOf returns the position of a lexed item
func PosOf(it token.Item) Pos {
	return Pos{Line: it.Line, Column: it.Column}
}

// Identifier is a name, a dotted accessor chain or a comma group of either
type Identifier interface {
	Node
	identNode()
}

// Expr is any expression
type Expr interface {
	Node
	exprNode()
}

// Math is the arithmetic subset of expressions
type Math interface {
	Expr
	mathNode()
}

// Stmt is a top-level statement
type Stmt interface {
	Node
	stmtNode()
}

// Op is a binary arithmetic operator
type Op int

const (
	Add Op = iota
	Sub
	Mul
	Div
	Mod
	Pow
)

var opNames = [...]string{"Add", "Sub", "Mul", "Div", "Mod", "Pow"}

func (o Op) String() string {
	if o < Add || o > Pow {
		return fmt.Sprintf("Op(%d)", int(o))
	}
	return opNames[o]
}

// OpFor maps an operator token kind to its Op
func OpFor(kind token.Kind) (Op, bool) {
	switch kind {
	case token.Addition:
		return Add, true
	case token.Subtraction:
		return Sub, true
	case token.Multiplication:
		return Mul, true
	case token.Division:
		return Div, true
	case token.Modulo:
		return Mod, true
	case token.Power:
		return Pow, true
	}
	return 0, false
}

// ----------------------------------------------------------------------------
// Identifiers
// ----------------------------------------------------------------------------

// Ident is a simple name with an optional declared type
type Ident struct {
	Name string
	Type types.Type // types.Undefined{} when not declared
	Pos  Pos
}

// Accessor is a dotted path; Left holds everything before the last period
type Accessor struct {
	Left  Identifier
	Right *Ident
}

// CompoundIdent is a comma group of two or more identifiers
type CompoundIdent struct {
	Members []Identifier
}

// NewIdent returns an undeclared identifier
func NewIdent(name string, pos Pos) *Ident {
	return &Ident{Name: name, Type: types.Undefined{}, Pos: pos}
}

// Declared reports whether the identifier carries a type annotation
func (i *Ident) Declared() bool { return !types.IsUndefined(i.Type) }

func (i *Ident) String() string {
	if i.Declared() {
		return i.Name + ": " + i.Type.String()
	}
	return i.Name
}

func (a *Accessor) String() string {
	return fmt.Sprintf("Accessor(%s, %s)", a.Left, a.Right)
}

func (c *CompoundIdent) String() string {
	return "Compound([" + join(c.Members) + "])"
}

func (i *Ident) Position() Pos         { return i.Pos }
func (a *Accessor) Position() Pos      { return a.Right.Pos }
func (c *CompoundIdent) Position() Pos { return c.Members[len(c.Members)-1].Position() }

func (*Ident) identNode()         {}
func (*Accessor) identNode()      {}
func (*CompoundIdent) identNode() {}

// CompoundIdentifiers joins two identifiers into a group. Groups on either
// side are flattened so the result never nests.
func CompoundIdentifiers(a, b Identifier) Identifier {
	var members []Identifier
	for _, id := range []Identifier{a, b} {
		if c, ok := id.(*CompoundIdent); ok {
			members = append(members, c.Members...)
			continue
		}
		members = append(members, id)
	}
	return &CompoundIdent{Members: members}
}

// Path returns the dotted name of a simple identifier or accessor chain
func Path(id Identifier) string {
	switch n := id.(type) {
	case *Ident:
		return n.Name
	case *Accessor:
		return Path(n.Left) + "." + n.Right.Name
	}
	return ""
}

// Extent is the number of columns an identifier spans on its line
func Extent(id Identifier) int {
	switch n := id.(type) {
	case *Ident:
		return len(n.Name)
	case *Accessor:
		return len(Path(n))
	case *CompoundIdent:
		first := n.Members[0]
		last := n.Members[len(n.Members)-1]
		if first.Position().Line != last.Position().Line {
			return Extent(last)
		}
		start := first.Position().Column - Extent(first) + 1
		return last.Position().Column - start + 1
	}
	return 1
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

// Literal is a numeric literal
type Literal struct {
	Value token.Number
	Text  string
	Pos   Pos
}

// IdentRef is an identifier used as an operand
type IdentRef struct {
	Ident Identifier
}

// BinaryOp applies Op to two operands
type BinaryOp struct {
	Left  Math
	Right Math
	Op    Op
}

// Negate is unary minus
type Negate struct {
	Operand Math
	Pos     Pos
}

// FuncCall is a call in expression position
type FuncCall struct {
	Callee Identifier
	Args   []Expr
}

// StrLiteral is a quoted string
type StrLiteral struct {
	Value string
	Pos   Pos
}

// CompoundExpr is a comma group of two or more expressions
type CompoundExpr struct {
	Members []Expr
}

// FuncLiteral is |params| body or a bare { block }
type FuncLiteral struct {
	Params     []*Ident
	Body       []Stmt
	ReturnType types.Type
	Pos        Pos
}

func (l *Literal) String() string    { return l.Value.String() }
func (r *IdentRef) String() string   { return r.Ident.String() }
func (b *BinaryOp) String() string   { return fmt.Sprintf("%s(%s, %s)", b.Op, b.Left, b.Right) }
func (n *Negate) String() string     { return fmt.Sprintf("Negate(%s)", n.Operand) }
func (s *StrLiteral) String() string { return fmt.Sprintf("StrLiteral(%q)", s.Value) }

func (f *FuncCall) String() string {
	return fmt.Sprintf("FuncCall(%s, [%s])", f.Callee, join(f.Args))
}

func (c *CompoundExpr) String() string {
	return "Compound([" + join(c.Members) + "])"
}

func (f *FuncLiteral) String() string {
	return fmt.Sprintf("FuncLiteral([%s], [%s])", join(f.Params), join(f.Body))
}

func (l *Literal) Position() Pos      { return l.Pos }
func (r *IdentRef) Position() Pos     { return r.Ident.Position() }
func (b *BinaryOp) Position() Pos     { return b.Right.Position() }
func (n *Negate) Position() Pos       { return n.Pos }
func (s *StrLiteral) Position() Pos   { return s.Pos }
func (c *CompoundExpr) Position() Pos { return c.Members[len(c.Members)-1].Position() }
func (f *FuncLiteral) Position() Pos  { return f.Pos }

func (f *FuncCall) Position() Pos {
	if len(f.Args) > 0 {
		return f.Args[len(f.Args)-1].Position()
	}
	return f.Callee.Position()
}

func (*Literal) exprNode()      {}
func (*IdentRef) exprNode()     {}
func (*BinaryOp) exprNode()     {}
func (*Negate) exprNode()       {}
func (*FuncCall) exprNode()     {}
func (*StrLiteral) exprNode()   {}
func (*CompoundExpr) exprNode() {}
func (*FuncLiteral) exprNode()  {}

func (*Literal) mathNode()  {}
func (*IdentRef) mathNode() {}
func (*BinaryOp) mathNode() {}
func (*Negate) mathNode()   {}
func (*FuncCall) mathNode() {}

// CompoundExprs joins two expressions into a group, flattening groups
func CompoundExprs(a, b Expr) Expr {
	var members []Expr
	for _, e := range []Expr{a, b} {
		if c, ok := e.(*CompoundExpr); ok {
			members = append(members, c.Members...)
			continue
		}
		members = append(members, e)
	}
	return &CompoundExpr{Members: members}
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

// Assignment binds Value to Target
type Assignment struct {
	Target Identifier
	Value  Expr
}

// ImpFuncCall is a statement-level call with whitespace-delimited arguments
type ImpFuncCall struct {
	Callee Identifier
	Args   []Expr
}

// Return yields Value from the enclosing function literal
type Return struct {
	Value Expr
	Pos   Pos
}

// ExprStmt is an expression evaluated for its own sake
type ExprStmt struct {
	Expr Expr
}

func (a *Assignment) String() string { return fmt.Sprintf("Assignment(%s, %s)", a.Target, a.Value) }
func (r *Return) String() string     { return fmt.Sprintf("Return(%s)", r.Value) }
func (e *ExprStmt) String() string   { return e.Expr.String() }

func (c *ImpFuncCall) String() string {
	return fmt.Sprintf("ImpFuncCall(%s, [%s])", c.Callee, join(c.Args))
}

func (a *Assignment) Position() Pos  { return a.Value.Position() }
func (r *Return) Position() Pos      { return r.Pos }
func (e *ExprStmt) Position() Pos    { return e.Expr.Position() }
func (c *ImpFuncCall) Position() Pos { return c.Callee.Position() }

func (*Assignment) stmtNode()  {}
func (*ImpFuncCall) stmtNode() {}
func (*Return) stmtNode()      {}
func (*ExprStmt) stmtNode()    {}

func join[T Node](nodes []T) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}
