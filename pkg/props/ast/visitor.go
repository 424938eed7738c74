package ast

import (
	"fmt"
	"strings"
)

// Visitor defines the interface for AST visitors
type Visitor interface {
	VisitIdent(n *Ident) interface{}
	VisitAccessor(n *Accessor) interface{}
	VisitCompoundIdent(n *CompoundIdent) interface{}

	VisitLiteral(n *Literal) interface{}
	VisitIdentRef(n *IdentRef) interface{}
	VisitBinaryOp(n *BinaryOp) interface{}
	VisitNegate(n *Negate) interface{}
	VisitFuncCall(n *FuncCall) interface{}
	VisitStrLiteral(n *StrLiteral) interface{}
	VisitCompoundExpr(n *CompoundExpr) interface{}
	VisitFuncLiteral(n *FuncLiteral) interface{}

	VisitAssignment(n *Assignment) interface{}
	VisitImpFuncCall(n *ImpFuncCall) interface{}
	VisitReturn(n *Return) interface{}
	VisitExprStmt(n *ExprStmt) interface{}
}

func (n *Ident) Accept(v Visitor) interface{}         { return v.VisitIdent(n) }
func (n *Accessor) Accept(v Visitor) interface{}      { return v.VisitAccessor(n) }
func (n *CompoundIdent) Accept(v Visitor) interface{} { return v.VisitCompoundIdent(n) }
func (n *Literal) Accept(v Visitor) interface{}       { return v.VisitLiteral(n) }
func (n *IdentRef) Accept(v Visitor) interface{}      { return v.VisitIdentRef(n) }
func (n *BinaryOp) Accept(v Visitor) interface{}      { return v.VisitBinaryOp(n) }
func (n *Negate) Accept(v Visitor) interface{}        { return v.VisitNegate(n) }
func (n *FuncCall) Accept(v Visitor) interface{}      { return v.VisitFuncCall(n) }
func (n *StrLiteral) Accept(v Visitor) interface{}    { return v.VisitStrLiteral(n) }
func (n *CompoundExpr) Accept(v Visitor) interface{}  { return v.VisitCompoundExpr(n) }
func (n *FuncLiteral) Accept(v Visitor) interface{}   { return v.VisitFuncLiteral(n) }
func (n *Assignment) Accept(v Visitor) interface{}    { return v.VisitAssignment(n) }
func (n *ImpFuncCall) Accept(v Visitor) interface{}   { return v.VisitImpFuncCall(n) }
func (n *Return) Accept(v Visitor) interface{}        { return v.VisitReturn(n) }
func (n *ExprStmt) Accept(v Visitor) interface{}      { return v.VisitExprStmt(n) }

// Inspect traverses the tree depth-first, calling f for every node before
// its children. Children are skipped when f returns false.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	switch n := n.(type) {
	case *Accessor:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *CompoundIdent:
		for _, m := range n.Members {
			Inspect(m, f)
		}
	case *IdentRef:
		Inspect(n.Ident, f)
	case *BinaryOp:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *Negate:
		Inspect(n.Operand, f)
	case *FuncCall:
		Inspect(n.Callee, f)
		for _, a := range n.Args {
			Inspect(a, f)
		}
	case *CompoundExpr:
		for _, m := range n.Members {
			Inspect(m, f)
		}
	case *FuncLiteral:
		for _, p := range n.Params {
			Inspect(p, f)
		}
		for _, s := range n.Body {
			Inspect(s, f)
		}
	case *Assignment:
		Inspect(n.Target, f)
		Inspect(n.Value, f)
	case *ImpFuncCall:
		Inspect(n.Callee, f)
		for _, a := range n.Args {
			Inspect(a, f)
		}
	case *Return:
		Inspect(n.Value, f)
	case *ExprStmt:
		Inspect(n.Expr, f)
	}
}

// TreeVisitor renders an indented, one node per line view of a tree
type TreeVisitor struct {
	buffer strings.Builder
	indent int
}

// NewTreeVisitor creates a new tree visitor
func NewTreeVisitor() *TreeVisitor {
	return &TreeVisitor{}
}

// Dump renders the given statements as an indented tree
func Dump(stmts []Stmt) string {
	tv := NewTreeVisitor()
	for _, s := range stmts {
		s.Accept(tv)
	}
	return tv.String()
}

// String returns the built representation
func (tv *TreeVisitor) String() string {
	return tv.buffer.String()
}

// Reset clears the internal buffer
func (tv *TreeVisitor) Reset() {
	tv.buffer.Reset()
	tv.indent = 0
}

func (tv *TreeVisitor) line(format string, args ...interface{}) {
	for i := 0; i < tv.indent; i++ {
		tv.buffer.WriteString("  ")
	}
	tv.buffer.WriteString(fmt.Sprintf(format, args...))
	tv.buffer.WriteString("\n")
}

func (tv *TreeVisitor) children(nodes ...Node) {
	tv.indent++
	for _, n := range nodes {
		n.Accept(tv)
	}
	tv.indent--
}

func (tv *TreeVisitor) VisitIdent(n *Ident) interface{} {
	tv.line("Ident %s", n)
	return nil
}

func (tv *TreeVisitor) VisitAccessor(n *Accessor) interface{} {
	tv.line("Accessor %s", Path(n))
	return nil
}

func (tv *TreeVisitor) VisitCompoundIdent(n *CompoundIdent) interface{} {
	tv.line("Compound")
	tv.children(nodes(n.Members)...)
	return nil
}

func (tv *TreeVisitor) VisitLiteral(n *Literal) interface{} {
	tv.line("Literal %s", n.Value.GoString())
	return nil
}

func (tv *TreeVisitor) VisitIdentRef(n *IdentRef) interface{} {
	return n.Ident.Accept(tv)
}

func (tv *TreeVisitor) VisitBinaryOp(n *BinaryOp) interface{} {
	tv.line("%s", n.Op)
	tv.children(n.Left, n.Right)
	return nil
}

func (tv *TreeVisitor) VisitNegate(n *Negate) interface{} {
	tv.line("Negate")
	tv.children(n.Operand)
	return nil
}

func (tv *TreeVisitor) VisitFuncCall(n *FuncCall) interface{} {
	tv.line("FuncCall %s", n.Callee)
	tv.children(nodes(n.Args)...)
	return nil
}

func (tv *TreeVisitor) VisitStrLiteral(n *StrLiteral) interface{} {
	tv.line("StrLiteral %q", n.Value)
	return nil
}

func (tv *TreeVisitor) VisitCompoundExpr(n *CompoundExpr) interface{} {
	tv.line("Compound")
	tv.children(nodes(n.Members)...)
	return nil
}

func (tv *TreeVisitor) VisitFuncLiteral(n *FuncLiteral) interface{} {
	tv.line("FuncLiteral")
	tv.indent++
	if len(n.Params) > 0 {
		tv.line("Params")
		tv.children(nodes(n.Params)...)
	}
	tv.line("Body")
	tv.children(nodes(n.Body)...)
	tv.indent--
	return nil
}

func (tv *TreeVisitor) VisitAssignment(n *Assignment) interface{} {
	tv.line("Assignment")
	tv.children(n.Target, n.Value)
	return nil
}

func (tv *TreeVisitor) VisitImpFuncCall(n *ImpFuncCall) interface{} {
	tv.line("ImpFuncCall %s", n.Callee)
	tv.children(nodes(n.Args)...)
	return nil
}

func (tv *TreeVisitor) VisitReturn(n *Return) interface{} {
	tv.line("Return")
	tv.children(n.Value)
	return nil
}

func (tv *TreeVisitor) VisitExprStmt(n *ExprStmt) interface{} {
	return n.Expr.Accept(tv)
}

func nodes[T Node](in []T) []Node {
	out := make([]Node, len(in))
	for i, n := range in {
		out[i] = n
	}
	return out
}
