package ast

// MapVisitor converts nodes into plain maps and slices suitable for JSON,
// YAML and protobuf Struct encoding.
type MapVisitor struct{}

// ToMap converts a single node
func ToMap(n Node) map[string]interface{} {
	m, _ := n.Accept(MapVisitor{}).(map[string]interface{})
	return m
}

// ToList converts a statement list
func ToList(stmts []Stmt) []interface{} {
	out := make([]interface{}, len(stmts))
	for i, s := range stmts {
		out[i] = ToMap(s)
	}
	return out
}

func entry(kind string, pos Pos) map[string]interface{} {
	return map[string]interface{}{
		"kind":   kind,
		"line":   pos.Line,
		"column": pos.Column,
	}
}

func list[T Node](in []T) []interface{} {
	out := make([]interface{}, len(in))
	for i, n := range in {
		out[i] = ToMap(n)
	}
	return out
}

func (MapVisitor) VisitIdent(n *Ident) interface{} {
	m := entry("Ident", n.Pos)
	m["name"] = n.Name
	if n.Declared() {
		m["type"] = n.Type.String()
	}
	return m
}

func (MapVisitor) VisitAccessor(n *Accessor) interface{} {
	m := entry("Accessor", n.Position())
	m["left"] = ToMap(n.Left)
	m["right"] = ToMap(n.Right)
	m["path"] = Path(n)
	return m
}

func (MapVisitor) VisitCompoundIdent(n *CompoundIdent) interface{} {
	m := entry("CompoundIdent", n.Position())
	m["members"] = list(n.Members)
	return m
}

func (MapVisitor) VisitLiteral(n *Literal) interface{} {
	m := entry("Literal", n.Pos)
	m["width"] = n.Value.Width.String()
	m["value"] = n.Value.String()
	return m
}

func (MapVisitor) VisitIdentRef(n *IdentRef) interface{} {
	m := entry("IdentRef", n.Position())
	m["ident"] = ToMap(n.Ident)
	return m
}

func (MapVisitor) VisitBinaryOp(n *BinaryOp) interface{} {
	m := entry("BinaryOp", n.Position())
	m["op"] = n.Op.String()
	m["left"] = ToMap(n.Left)
	m["right"] = ToMap(n.Right)
	return m
}

func (MapVisitor) VisitNegate(n *Negate) interface{} {
	m := entry("Negate", n.Pos)
	m["operand"] = ToMap(n.Operand)
	return m
}

func (MapVisitor) VisitFuncCall(n *FuncCall) interface{} {
	m := entry("FuncCall", n.Position())
	m["callee"] = ToMap(n.Callee)
	m["args"] = list(n.Args)
	return m
}

func (MapVisitor) VisitStrLiteral(n *StrLiteral) interface{} {
	m := entry("StrLiteral", n.Pos)
	m["value"] = n.Value
	return m
}

func (MapVisitor) VisitCompoundExpr(n *CompoundExpr) interface{} {
	m := entry("CompoundExpr", n.Position())
	m["members"] = list(n.Members)
	return m
}

func (MapVisitor) VisitFuncLiteral(n *FuncLiteral) interface{} {
	m := entry("FuncLiteral", n.Pos)
	m["params"] = list(n.Params)
	m["body"] = list(n.Body)
	return m
}

func (MapVisitor) VisitAssignment(n *Assignment) interface{} {
	m := entry("Assignment", n.Position())
	m["target"] = ToMap(n.Target)
	m["value"] = ToMap(n.Value)
	return m
}

func (MapVisitor) VisitImpFuncCall(n *ImpFuncCall) interface{} {
	m := entry("ImpFuncCall", n.Position())
	m["callee"] = ToMap(n.Callee)
	m["args"] = list(n.Args)
	return m
}

func (MapVisitor) VisitReturn(n *Return) interface{} {
	m := entry("Return", n.Pos)
	m["value"] = ToMap(n.Value)
	return m
}

func (MapVisitor) VisitExprStmt(n *ExprStmt) interface{} {
	m := entry("ExprStmt", n.Position())
	m["expr"] = ToMap(n.Expr)
	return m
}
