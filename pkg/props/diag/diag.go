// ============================================================================
// Props - Expression Language Front End
// ============================================================================
//
// Package:     diag
// Description: Parser and type diagnostics with caret-annotated rendering
// Created:     2026-10-17
// License:     MIT
// ============================================================================

// Package diag holds the diagnostics produced while parsing and typing a
// Props unit. Every diagnostic can locate itself in the source and render a
// caret-annotated excerpt.
package diag

import (
	"fmt"
	"strings"

	propserr "github.com/winterSteve25/props/pkg/core/error"
	"github.com/winterSteve25/props/pkg/props/token"
	"github.com/winterSteve25/props/pkg/props/types"
)

// Kind is the closed set of diagnostic kinds
type Kind int

const (
	UnexpectedToken Kind = iota
	ExpectedToken
	UnexpectedEOF
	UnmatchedTypes
)

func (k Kind) String() string {
	switch k {
	case UnexpectedToken:
		return "UnexpectedToken"
	case ExpectedToken:
		return "ExpectedToken"
	case UnexpectedEOF:
		return "UnexpectedEOF"
	case UnmatchedTypes:
		return "UnmatchedTypes"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Diagnostic is one reported problem. Line is 1-based and Column is the
// 0-based column of the offending text's last character.
type Diagnostic struct {
	Kind   Kind
	Line   int
	Column int

	// Token is the offending token for UnexpectedToken and ExpectedToken
	Token token.Token

	// Expected lists what ExpectedToken wanted
	Expected []token.Kind

	// Predicted and Declared are the types UnmatchedTypes compared
	Predicted types.Type
	Declared  types.Type

	// Width is the pointer width when no token is attached
	Width int

	// Detail replaces the default UnmatchedTypes message
	Detail string
}

// NewUnexpectedToken reports a token no grammar rule accepts here
func NewUnexpectedToken(it token.Item) *Diagnostic {
	return &Diagnostic{Kind: UnexpectedToken, Line: it.Line, Column: it.Column, Token: it.Token}
}

// NewExpectedToken reports a token other than the one the grammar requires
func NewExpectedToken(it token.Item, expected ...token.Kind) *Diagnostic {
	return &Diagnostic{Kind: ExpectedToken, Line: it.Line, Column: it.Column, Token: it.Token, Expected: expected}
}

// NewUnexpectedEOF reports input ending where a token was required
func NewUnexpectedEOF(line, column int) *Diagnostic {
	return &Diagnostic{Kind: UnexpectedEOF, Line: line, Column: column, Width: 1}
}

// NewUnmatchedTypes reports a value whose type does not fit its target
func NewUnmatchedTypes(line, column, width int, predicted, declared types.Type) *Diagnostic {
	return &Diagnostic{
		Kind:      UnmatchedTypes,
		Line:      line,
		Column:    column,
		Width:     width,
		Predicted: predicted,
		Declared:  declared,
	}
}

// Error implements error with the human-readable message
func (d *Diagnostic) Error() string {
	switch d.Kind {
	case UnexpectedToken:
		return fmt.Sprintf("Unexpected token %s at line %d pos %d", d.Token, d.Line, d.Column)
	case ExpectedToken:
		want := make([]string, len(d.Expected))
		for i, k := range d.Expected {
			want[i] = k.String()
		}
		return fmt.Sprintf("Expected %s but found %s at line %d pos %d", strings.Join(want, " or "), d.Token, d.Line, d.Column)
	case UnexpectedEOF:
		return fmt.Sprintf("Unexpected end of input at line %d", d.Line)
	case UnmatchedTypes:
		if d.Detail != "" {
			return d.Detail
		}
		return fmt.Sprintf("Can not assign type %s to an identifier of type %s", typeName(d.Predicted), typeName(d.Declared))
	}
	return d.Kind.String()
}

func typeName(t types.Type) string {
	if t == nil {
		return types.Undefined{}.String()
	}
	return t.String()
}

// Locate returns the line, the column of the last pointed-at character and
// the number of columns to point at.
func (d *Diagnostic) Locate() (line, column, width int) {
	width = d.Width
	if d.Kind == UnexpectedToken || d.Kind == ExpectedToken {
		width = d.Token.Len()
	}
	if width < 1 {
		width = 1
	}
	return d.Line, d.Column, width
}

// List is an ordered collection of diagnostics
type List []*Diagnostic

// Count returns how many diagnostics of kind the list holds
func (l List) Count(kind Kind) int {
	n := 0
	for _, d := range l {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Fatal reports whether parsing was aborted by running out of input
func (l List) Fatal() bool {
	return l.Count(UnexpectedEOF) > 0
}

// Err folds the list into a single coded error, or nil when empty
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	code := propserr.CodeParseFailed
	if l.Count(UnmatchedTypes) == len(l) {
		code = propserr.CodeTypeFailed
	}
	msg := l[0].Error()
	if len(l) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(l)-1)
	}
	return propserr.New(msg).
		WithCode(code).
		WithDetail("diagnostics", len(l)).
		WithDetail("first_line", l[0].Line)
}
