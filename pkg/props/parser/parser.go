// ============================================================================
// Props - Expression Language Front End
// ============================================================================
//
// Package:     parser
// Description: Recursive descent parser producing statements and diagnostics
// Created:     2026-10-17
// License:     MIT
// ============================================================================

// Package parser turns Props source into statements. Parsing never aborts on
// a syntax error: the failing statement is diagnosed and parsing resumes at
// the next token (or line, see Recovery). Running out of input where a token
// is required aborts the unit.
package parser

import (
	"errors"

	propslog "github.com/winterSteve25/props/pkg/core/log"
	"github.com/winterSteve25/props/pkg/props/ast"
	"github.com/winterSteve25/props/pkg/props/diag"
	"github.com/winterSteve25/props/pkg/props/lexer"
	"github.com/winterSteve25/props/pkg/props/token"
)

// Recovery selects where parsing resumes after a failed statement
type Recovery int

const (
	// RecoverToken resumes right after the last consumed token
	RecoverToken Recovery = iota
	// RecoverLine skips the rest of the line the error occurred on
	RecoverLine
)

// ParseRecovery converts a configuration value
func ParseRecovery(s string) (Recovery, bool) {
	switch s {
	case "token", "":
		return RecoverToken, true
	case "line":
		return RecoverLine, true
	}
	return RecoverToken, false
}

func (r Recovery) String() string {
	if r == RecoverLine {
		return "line"
	}
	return "token"
}

// Options configures a parser
type Options struct {
	Logger   *propslog.Logger
	Recovery Recovery

	// Report, when set, receives every diagnostic as it is recorded
	Report func(*diag.Diagnostic)
}

// Parser holds the token stream of one source unit
type Parser struct {
	items   []token.Item
	pos     int
	lines   []string
	logger  *propslog.Logger
	options Options

	// args is set while scanning a whitespace-delimited argument list
	// outside of parentheses; identifiers there are plain references.
	args bool

	diags diag.List
}

// New lexes source and prepares a parser for it
func New(source string, opts Options) *Parser {
	logger := opts.Logger
	if logger == nil {
		logger = propslog.GetDefault()
	}
	return &Parser{
		items:   lexer.Lex(source),
		lines:   lexer.Lines(source),
		logger:  logger.WithField("component", "parser"),
		options: opts,
	}
}

// Parse is a shorthand for New(source, Options{}).Parse()
func Parse(source string) ([]ast.Stmt, diag.List) {
	return New(source, Options{}).Parse()
}

// Lines returns the source split into lines, for rendering diagnostics
func (p *Parser) Lines() []string {
	return p.lines
}

// Parse consumes the whole token stream. Diagnostics are returned in the
// order they were encountered. When input ends where a token was required,
// the statements parsed so far are discarded and nil is returned with the
// diagnostics.
func (p *Parser) Parse() ([]ast.Stmt, diag.List) {
	timer := p.logger.StartTimer("parse").WithField("tokens", len(p.items))
	defer timer.Stop()

	var stmts []ast.Stmt
	for {
		p.skipInsignificant()
		if p.atEnd() {
			break
		}

		start := p.pos
		stmt, err := p.parseStatement()
		if err == nil {
			stmts = append(stmts, stmt)
			continue
		}

		d := p.record(err)
		if d.Kind == diag.UnexpectedEOF {
			p.logger.Debug("Parse aborted at end of input", propslog.Fields{"line": d.Line})
			return nil, p.diags
		}
		if p.pos == start {
			p.pos++
		}
		if p.options.Recovery == RecoverLine {
			p.skipLine()
		}
	}

	p.logger.Debug("Parsed unit", propslog.Fields{
		"statements":  len(stmts),
		"diagnostics": len(p.diags),
	})
	return stmts, p.diags
}

func (p *Parser) record(err error) *diag.Diagnostic {
	var d *diag.Diagnostic
	if !errors.As(err, &d) {
		last := p.last()
		d = diag.NewUnexpectedToken(last)
	}
	p.diags = append(p.diags, d)
	if p.options.Report != nil {
		p.options.Report(d)
	}
	return d
}

// ----------------------------------------------------------------------------
// Token cursor
// ----------------------------------------------------------------------------

func (p *Parser) atEnd() bool {
	return p.pos >= len(p.items)
}

func (p *Parser) current() (token.Item, bool) {
	if p.atEnd() {
		return token.Item{}, false
	}
	return p.items[p.pos], true
}

func (p *Parser) next() (token.Item, bool) {
	it, ok := p.current()
	if ok {
		p.pos++
	}
	return it, ok
}

func (p *Parser) last() token.Item {
	if len(p.items) == 0 {
		return token.Item{Token: token.Simple(token.EOF), Line: 1}
	}
	return p.items[len(p.items)-1]
}

func (p *Parser) skipInsignificant() {
	for !p.atEnd() && p.items[p.pos].Insignificant() {
		p.pos++
	}
}

// skipLine moves past the next Newline unless one was just consumed
func (p *Parser) skipLine() {
	if p.pos > 0 && p.items[p.pos-1].Kind == token.Newline {
		return
	}
	for !p.atEnd() {
		it, _ := p.next()
		if it.Kind == token.Newline {
			return
		}
	}
}

// peekSignificant returns the first token at or after the cursor that is
// not whitespace, newline or indentation, without consuming anything.
func (p *Parser) peekSignificant() (token.Item, bool) {
	for i := p.pos; i < len(p.items); i++ {
		if !p.items[i].Insignificant() {
			return p.items[i], true
		}
	}
	return token.Item{}, false
}

// peekSameLine is peekSignificant bounded by the end of the current line.
// The Newline itself is returned when nothing significant is left.
func (p *Parser) peekSameLine() (token.Item, bool) {
	for i := p.pos; i < len(p.items); i++ {
		switch p.items[i].Kind {
		case token.Whitespace, token.Indent:
			continue
		}
		return p.items[i], true
	}
	return token.Item{}, false
}

func (p *Parser) peekIs(kinds ...token.Kind) bool {
	it, ok := p.peekSignificant()
	if !ok {
		return false
	}
	for _, k := range kinds {
		if it.Kind == k {
			return true
		}
	}
	return false
}

func (p *Parser) eof() error {
	last := p.last()
	return diag.NewUnexpectedEOF(last.Line, last.Column)
}

// expect skips insignificant tokens and consumes the next one, which must
// be of one of the given kinds. The mismatching token is consumed as well.
func (p *Parser) expect(kinds ...token.Kind) (token.Item, error) {
	p.skipInsignificant()
	it, ok := p.next()
	if !ok {
		return it, p.eof()
	}
	for _, k := range kinds {
		if it.Kind == k {
			return it, nil
		}
	}
	if len(kinds) == 1 {
		return it, diag.NewExpectedToken(it, kinds...)
	}
	return it, diag.NewUnexpectedToken(it)
}

// unexpected consumes the next significant token and reports it
func (p *Parser) unexpected() error {
	p.skipInsignificant()
	it, ok := p.next()
	if !ok {
		return p.eof()
	}
	return diag.NewUnexpectedToken(it)
}

func canStartExpr(kind token.Kind) bool {
	switch kind {
	case token.NumberLit, token.Ident, token.Str, token.LParen, token.Subtraction, token.Pipe, token.LBrace:
		return true
	}
	return false
}
