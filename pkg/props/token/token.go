// ============================================================================
// Props - Expression Language Front End
// ============================================================================
//
// Package:     token
// Description: Token alphabet shared by the lexer, parser and diagnostics
// Created:     2026-10-17
// License:     MIT
// ============================================================================

// Package token defines the lexical alphabet of Props source text.
package token

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Kind identifies the shape of a token
type Kind int

const (
	EOF       Kind = iota // end of input
	Unknown               // unrecognized text, reported by the parser
	Ident                 // identifier
	Str                   // string literal
	NumberLit             // numeric literal
	Return                // return keyword

	Whitespace // single space
	Newline    // end of a source line
	Indent     // run of tab characters

	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	LBracket  // [
	RBracket  // ]
	Comma     // ,
	Period    // .
	Colon     // :
	Semicolon // ;
	Pipe      // |
	Ampersand // &

	Assign       // =
	Equal        // ==
	Not          // !
	Greater      // >
	Less         // <
	GreaterEqual // >=
	LessEqual    // <=

	Addition       // +
	Subtraction    // -
	Multiplication // *
	Division       // /
	Modulo         // %
	Power          // ^
)

var kindNames = map[Kind]string{
	EOF:            "EOF",
	Unknown:        "Unknown",
	Ident:          "Ident",
	Str:            "StringLiteral",
	NumberLit:      "Number",
	Return:         "Return",
	Whitespace:     "Whitespace",
	Newline:        "Newline",
	Indent:         "Indent",
	LParen:         "ParenthOpen",
	RParen:         "ParenthClose",
	LBrace:         "FuncOpen",
	RBrace:         "FuncClose",
	LBracket:       "BracketOpen",
	RBracket:       "BracketClose",
	Comma:          "Comma",
	Period:         "Period",
	Colon:          "TypeAnnotator",
	Semicolon:      "Semicolon",
	Pipe:           "Pipe",
	Ampersand:      "Ampersand",
	Assign:         "Assignment",
	Equal:          "Equality",
	Not:            "Not",
	Greater:        "GreaterThan",
	Less:           "LessThan",
	GreaterEqual:   "GreaterEqual",
	LessEqual:      "LessEqual",
	Addition:       "Addition",
	Subtraction:    "Subtraction",
	Multiplication: "Multiplication",
	Division:       "Division",
	Modulo:         "Mod",
	Power:          "Power",
}

// String returns the name used in diagnostics
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Punctuation maps single characters to their token kind.
var Punctuation = map[byte]Kind{
	'(': LParen,
	')': RParen,
	'{': LBrace,
	'}': RBrace,
	'[': LBracket,
	']': RBracket,
	',': Comma,
	'.': Period,
	':': Colon,
	';': Semicolon,
	'|': Pipe,
	'&': Ampersand,
	'=': Assign,
	'!': Not,
	'>': Greater,
	'<': Less,
	'+': Addition,
	'-': Subtraction,
	'*': Multiplication,
	'/': Division,
	'%': Modulo,
	'^': Power,
}

// Doubled maps a first character to the two-character operator it starts
// when followed by '='.
var Doubled = map[byte]Kind{
	'=': Equal,
	'>': GreaterEqual,
	'<': LessEqual,
}

var keywords = map[string]Kind{
	"return": Return,
}

// LookupIdent returns the keyword kind for word, or Ident
func LookupIdent(word string) Kind {
	if kind, ok := keywords[word]; ok {
		return kind
	}
	return Ident
}

// Token is a single lexical element. Text holds the identifier name, the
// string contents, the unknown text or the numeric source, depending on Kind.
type Token struct {
	Kind  Kind
	Text  string
	Num   Number
	Level int
}

// Item is a token positioned in the source. Line is 1-based and Column is
// the 0-based byte offset of the token's last character within that line.
type Item struct {
	Token
	Line   int
	Column int
}

// Simple returns a token carrying no payload
func Simple(kind Kind) Token {
	return Token{Kind: kind}
}

// NewIdent returns an identifier token
func NewIdent(name string) Token {
	return Token{Kind: Ident, Text: name}
}

// NewStr returns a string literal token
func NewStr(contents string) Token {
	return Token{Kind: Str, Text: contents}
}

// NewUnknown returns a token for unrecognized text
func NewUnknown(text string) Token {
	return Token{Kind: Unknown, Text: text}
}

// NewIndent returns an indentation token of the given tab level
func NewIndent(level int) Token {
	return Token{Kind: Indent, Level: level}
}

// NewNumber returns a numeric literal token; source is the literal text
func NewNumber(source string, n Number) Token {
	return Token{Kind: NumberLit, Text: source, Num: n}
}

// Insignificant reports whether the token may be skipped between
// syntactic elements.
func (t Token) Insignificant() bool {
	switch t.Kind {
	case Whitespace, Newline, Indent:
		return true
	}
	return false
}

// IsOperator reports whether the token is a binary arithmetic operator
func (t Token) IsOperator() bool {
	switch t.Kind {
	case Addition, Subtraction, Multiplication, Division, Modulo, Power:
		return true
	}
	return false
}

// Len is the number of columns the token occupies when pointed at
func (t Token) Len() int {
	switch t.Kind {
	case Ident, Unknown, NumberLit:
		return utf8.RuneCountInString(t.Text)
	case Str:
		return utf8.RuneCountInString(t.Text) + 2
	case Indent:
		return 4 * t.Level
	case Return:
		return len("return")
	case Equal, GreaterEqual, LessEqual:
		return 2
	}
	return 1
}

// String formats the token the way diagnostics print it
func (t Token) String() string {
	switch t.Kind {
	case Ident, Unknown, Str:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
	case NumberLit:
		return fmt.Sprintf("Number(%s)", t.Num.GoString())
	case Indent:
		return "Indent(" + strconv.Itoa(t.Level) + ")"
	}
	return t.Kind.String()
}
