package parser

import (
	"github.com/winterSteve25/props/pkg/props/ast"
	"github.com/winterSteve25/props/pkg/props/token"
	"github.com/winterSteve25/props/pkg/props/types"
)

// parseStatement parses one of:
//
//	return expr
//	ident = expr
//	ident arg arg ...
//	expr
func (p *Parser) parseStatement() (ast.Stmt, error) {
	p.skipInsignificant()
	it, ok := p.current()
	if !ok {
		return nil, p.eof()
	}

	switch {
	case it.Kind == token.Return:
		p.next()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Return{Value: value, Pos: ast.PosOf(it)}, nil

	case it.Kind == token.Ident && !p.startsOperand():
		return p.parseIdentStatement()

	case canStartExpr(it.Kind):
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Expr: expr}, nil
	}

	return nil, p.unexpected()
}

func (p *Parser) parseIdentStatement() (ast.Stmt, error) {
	target, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	if p.peekIs(token.Assign) {
		p.expect(token.Assign)
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Target: target, Value: value}, nil
	}

	args, err := p.parseWsArgs()
	if err != nil {
		return nil, err
	}
	return &ast.ImpFuncCall{Callee: target, Args: args}, nil
}

// startsOperand reports whether the identifier at the cursor is the left
// operand of an arithmetic expression, as in "a.b + 1". A minus glued to
// what follows ("println -3") still starts an argument.
func (p *Parser) startsOperand() bool {
	i := p.pos + 1
	for i+1 < len(p.items) && p.items[i].Kind == token.Period && p.items[i+1].Kind == token.Ident {
		i += 2
	}
	spaced := false
	for i < len(p.items) && (p.items[i].Kind == token.Whitespace || p.items[i].Kind == token.Indent) {
		spaced = true
		i++
	}
	if i >= len(p.items) || !p.items[i].IsOperator() {
		return false
	}
	if p.items[i].Kind == token.Subtraction && spaced {
		return i+1 < len(p.items) && p.items[i+1].Kind == token.Whitespace
	}
	return true
}

// parseWsArgs parses the whitespace-delimited arguments of a call. It only
// starts when the call target is directly followed by whitespace, and stops
// at the first position where no further whitespace-separated expression
// follows on the same line.
func (p *Parser) parseWsArgs() ([]ast.Expr, error) {
	saved := p.args
	p.args = true
	defer func() { p.args = saved }()

	var args []ast.Expr
	for {
		it, ok := p.current()
		if !ok || it.Kind != token.Whitespace {
			return args, nil
		}
		p.next()

		nxt, ok := p.peekSameLine()
		if !ok || !canStartExpr(nxt.Kind) {
			return args, nil
		}

		expr, err := p.parseExpr()
		if err != nil {
			return args, err
		}
		args = append(args, expr)
	}
}

// ----------------------------------------------------------------------------
// Identifiers
// ----------------------------------------------------------------------------

// parseIdent parses a comma group of simple identifiers
func (p *Parser) parseIdent() (ast.Identifier, error) {
	id, err := p.parseSimpleIdent()
	if err != nil {
		return nil, err
	}

	for p.peekIs(token.Comma) {
		p.expect(token.Comma)
		rhs, err := p.parseSimpleIdent()
		if err != nil {
			return nil, err
		}
		id = ast.CompoundIdentifiers(id, rhs)
	}
	return id, nil
}

// parseSimpleIdent parses a name with an optional type annotation, or a
// dotted accessor chain.
func (p *Parser) parseSimpleIdent() (ast.Identifier, error) {
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}

	if p.peekIs(token.Colon) {
		p.expect(token.Colon)
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &ast.Ident{Name: name.Text, Type: t, Pos: ast.PosOf(name)}, nil
	}

	return p.parseAccessorChain(ast.NewIdent(name.Text, ast.PosOf(name)))
}

func (p *Parser) parseAccessorChain(id ast.Identifier) (ast.Identifier, error) {
	for p.peekIs(token.Period) {
		p.expect(token.Period)
		field, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		id = &ast.Accessor{Left: id, Right: ast.NewIdent(field.Text, ast.PosOf(field))}
	}
	return id, nil
}

// parseType parses "Name" or "(Name, Name, ...)"
func (p *Parser) parseType() (types.Type, error) {
	if !p.peekIs(token.LParen) {
		name, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		return types.FromName(name.Text), nil
	}

	p.expect(token.LParen)
	var members []types.Type
	for {
		name, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		members = append(members, types.FromName(name.Text))

		sep, err := p.expect(token.Comma, token.RParen)
		if err != nil {
			return nil, err
		}
		if sep.Kind == token.RParen {
			return types.NewCompound(members...), nil
		}
	}
}
