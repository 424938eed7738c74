// ============================================================================
// Props - Expression Language Front End
// ============================================================================
//
// Package:     lexer
// Description: Line oriented tokenizer producing positioned tokens
// Created:     2026-10-17
// License:     MIT
// ============================================================================

// Package lexer turns Props source text into a stream of positioned tokens.
// Lexing never fails: text it cannot classify becomes an Unknown token and is
// left for the parser to report.
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/winterSteve25/props/pkg/props/token"
)

// Lexer scans a single source line at a time
type Lexer struct {
	src    string
	lineNo int
	pos    int
	items  []token.Item
}

// Lex tokenizes the whole source. Every line, including empty ones, ends
// with a Newline token whose column is the length of the line.
func Lex(source string) []token.Item {
	l := &Lexer{}
	for i, line := range Lines(source) {
		l.scanLine(i+1, line)
	}
	return l.items
}

// Lines splits source the way the lexer counts lines: on '\n', dropping a
// trailing '\r' and not producing an empty final line for a trailing newline.
func Lines(source string) []string {
	if source == "" {
		return nil
	}
	lines := strings.Split(source, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func (l *Lexer) scanLine(lineNo int, line string) {
	l.src = line
	l.lineNo = lineNo
	l.pos = 0

	for l.pos < len(l.src) {
		l.next()
	}
	l.emit(token.Simple(token.Newline), len(l.src))
}

func (l *Lexer) emit(tok token.Token, column int) {
	l.items = append(l.items, token.Item{Token: tok, Line: l.lineNo, Column: column})
}

// emitTo emits tok ending at column end and moves past it
func (l *Lexer) emitTo(tok token.Token, end int) {
	l.emit(tok, end)
	l.pos = end + 1
}

func (l *Lexer) peekChar(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *Lexer) next() {
	c := l.src[l.pos]

	switch {
	case c == '"':
		l.readString()
	case c == '/' && l.peekChar(1) == '/':
		// comment runs to the end of the line
		l.pos = len(l.src)
	case c == ' ':
		l.emitTo(token.Simple(token.Whitespace), l.pos)
	case c == '\t':
		l.readIndent()
	case isLetter(c):
		l.readIdent()
	case isDigit(c):
		l.readNumber()
	default:
		if kind, ok := token.Doubled[c]; ok && l.peekChar(1) == '=' {
			l.emitTo(token.Simple(kind), l.pos+1)
			return
		}
		if kind, ok := token.Punctuation[c]; ok {
			l.emitTo(token.Simple(kind), l.pos)
			return
		}
		_, size := utf8.DecodeRuneInString(l.src[l.pos:])
		l.emitTo(token.NewUnknown(l.src[l.pos:l.pos+size]), l.pos+size-1)
	}
}

// readString consumes up to the next quote. An unterminated literal runs to
// the end of the line.
func (l *Lexer) readString() {
	start := l.pos + 1
	end := strings.IndexByte(l.src[start:], '"')
	if end < 0 {
		l.emitTo(token.NewStr(l.src[start:]), len(l.src)-1)
		return
	}
	l.emitTo(token.NewStr(l.src[start:start+end]), start+end)
}

func (l *Lexer) readIndent() {
	end := l.pos
	for end+1 < len(l.src) && l.src[end+1] == '\t' {
		end++
	}
	l.emitTo(token.NewIndent(end-l.pos+1), end)
}

func (l *Lexer) readIdent() {
	end := l.pos
	for end+1 < len(l.src) && isWordChar(l.src[end+1]) {
		end++
	}
	word := l.src[l.pos : end+1]
	if kind := token.LookupIdent(word); kind != token.Ident {
		l.emitTo(token.Simple(kind), end)
		return
	}
	l.emitTo(token.NewIdent(word), end)
}

func (l *Lexer) readNumber() {
	end := l.pos
	hasDecimal := false
	for end+1 < len(l.src) && (isDigit(l.src[end+1]) || l.src[end+1] == '.') {
		end++
		if l.src[end] == '.' {
			hasDecimal = true
		}
	}
	text := l.src[l.pos : end+1]

	n, err := token.ParseNumber(text, hasDecimal)
	if err != nil {
		l.emitTo(token.NewUnknown(text), end)
		return
	}
	l.emitTo(token.NewNumber(text, n), end)
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordChar(c byte) bool {
	return isLetter(c) || isDigit(c)
}
