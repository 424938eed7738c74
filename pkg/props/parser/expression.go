package parser

import (
	"github.com/winterSteve25/props/pkg/props/ast"
	"github.com/winterSteve25/props/pkg/props/token"
	"github.com/winterSteve25/props/pkg/props/types"
)

// parseExpr parses a string literal, a function literal or an arithmetic
// expression, then folds any trailing ", expr" into a compound.
func (p *Parser) parseExpr() (ast.Expr, error) {
	it, ok := p.peekSignificant()
	if !ok {
		return nil, p.eof()
	}

	var expr ast.Expr
	var err error
	switch it.Kind {
	case token.Str:
		p.expect(token.Str)
		expr = &ast.StrLiteral{Value: it.Text, Pos: ast.PosOf(it)}
	case token.Pipe, token.LBrace:
		expr, err = p.parseFuncLiteral()
	default:
		expr, err = p.parseMath()
	}
	if err != nil {
		return nil, err
	}

	for p.peekIs(token.Comma) {
		p.expect(token.Comma)
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		expr = ast.CompoundExprs(expr, rhs)
	}
	return expr, nil
}

// parseFuncLiteral parses "|a b: T| body" or "{ statements }". A body that
// is not a block is a single expression returned implicitly.
func (p *Parser) parseFuncLiteral() (ast.Expr, error) {
	saved := p.args
	p.args = false
	defer func() { p.args = saved }()

	open, err := p.expect(token.Pipe, token.LBrace)
	if err != nil {
		return nil, err
	}
	lit := &ast.FuncLiteral{ReturnType: types.Undefined{}, Pos: ast.PosOf(open)}

	if open.Kind == token.LBrace {
		lit.Body, err = p.parseBlock()
		return lit, err
	}

	for !p.peekIs(token.Pipe) {
		name, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		param := ast.NewIdent(name.Text, ast.PosOf(name))
		if p.peekIs(token.Colon) {
			p.expect(token.Colon)
			if param.Type, err = p.parseType(); err != nil {
				return nil, err
			}
		}
		lit.Params = append(lit.Params, param)
	}
	p.expect(token.Pipe)

	if p.peekIs(token.LBrace) {
		p.expect(token.LBrace)
		lit.Body, err = p.parseBlock()
		return lit, err
	}

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	lit.Body = []ast.Stmt{&ast.Return{Value: value, Pos: value.Position()}}
	return lit, nil
}

// parseBlock parses statements up to the closing brace; the opening brace
// has been consumed.
func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	var body []ast.Stmt
	for {
		p.skipInsignificant()
		it, ok := p.current()
		if !ok {
			return nil, p.eof()
		}
		if it.Kind == token.RBrace {
			p.next()
			return body, nil
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
}

// ----------------------------------------------------------------------------
// Arithmetic, lowest precedence first
// ----------------------------------------------------------------------------

func (p *Parser) parseMath() (ast.Math, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for p.peekIs(token.Addition, token.Subtraction) {
		op, _ := p.expect(token.Addition, token.Subtraction)
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		kind, _ := ast.OpFor(op.Kind)
		left = &ast.BinaryOp{Left: left, Right: right, Op: kind}
	}
	return left, nil
}

// parseMultiplicative handles * / % and ^, all on one left-associative tier
func (p *Parser) parseMultiplicative() (ast.Math, error) {
	left, err := p.parseParenth()
	if err != nil {
		return nil, err
	}

	for p.peekIs(token.Multiplication, token.Division, token.Modulo, token.Power) {
		op, _ := p.expect(token.Multiplication, token.Division, token.Modulo, token.Power)
		right, err := p.parseParenth()
		if err != nil {
			return nil, err
		}
		kind, _ := ast.OpFor(op.Kind)
		left = &ast.BinaryOp{Left: left, Right: right, Op: kind}
	}
	return left, nil
}

func (p *Parser) parseParenth() (ast.Math, error) {
	if !p.peekIs(token.LParen) {
		return p.parseUnary()
	}

	p.expect(token.LParen)
	saved := p.args
	p.args = false
	inner, err := p.parseMath()
	p.args = saved
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return inner, nil
}

func (p *Parser) parseUnary() (ast.Math, error) {
	if !p.peekIs(token.Subtraction) {
		return p.parsePrimary()
	}

	minus, _ := p.expect(token.Subtraction)
	operand, err := p.parseParenth()
	if err != nil {
		return nil, err
	}
	return &ast.Negate{Operand: operand, Pos: ast.PosOf(minus)}, nil
}

func (p *Parser) parsePrimary() (ast.Math, error) {
	it, ok := p.peekSignificant()
	if !ok {
		return nil, p.eof()
	}

	switch it.Kind {
	case token.NumberLit:
		p.expect(token.NumberLit)
		return &ast.Literal{Value: it.Num, Text: it.Text, Pos: ast.PosOf(it)}, nil
	case token.Ident:
		return p.parseOperandIdent()
	}
	return nil, p.unexpected()
}

// parseOperandIdent decides between a reference and a call head. Inside an
// argument list an identifier is always a reference. Elsewhere, whitespace
// followed by something that can start an expression (other than an
// operator) makes it the head of a call.
func (p *Parser) parseOperandIdent() (ast.Math, error) {
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	id, err := p.parseAccessorChain(ast.NewIdent(name.Text, ast.PosOf(name)))
	if err != nil {
		return nil, err
	}

	if p.args {
		return &ast.IdentRef{Ident: id}, nil
	}
	if it, ok := p.current(); !ok || it.Kind != token.Whitespace {
		return &ast.IdentRef{Ident: id}, nil
	}
	nxt, ok := p.peekSameLine()
	if !ok || !canStartExpr(nxt.Kind) || nxt.IsOperator() {
		return &ast.IdentRef{Ident: id}, nil
	}

	args, err := p.parseWsArgs()
	if err != nil {
		return nil, err
	}
	return &ast.FuncCall{Callee: id, Args: args}, nil
}
