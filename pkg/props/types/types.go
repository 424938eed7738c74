// Package types models the Props type lattice: nominal names, width-ordered
// primitives, functions and compound (product) types.
package types

import (
	"strings"

	"github.com/winterSteve25/props/pkg/props/token"
)

// Type is implemented by every type representation
type Type interface {
	String() string
	isType()
}

// Undefined marks a type that has not been resolved yet
type Undefined struct{}

// Defined is a nominal type that does not name a primitive
type Defined struct {
	Name string
}

// Function is the type of a function literal
type Function struct {
	Return Type
}

// Compound is the type of a comma group; it always has two or more members
type Compound struct {
	Members []Type
}

func (Undefined) isType() {}
func (Defined) isType()   {}
func (Function) isType()  {}
func (Compound) isType()  {}
func (Primitive) isType() {}

func (Undefined) String() string  { return "Undefined" }
func (d Defined) String() string  { return d.Name }
func (f Function) String() string { return "Function(" + f.Return.String() + ")" }

func (c Compound) String() string {
	parts := make([]string, len(c.Members))
	for i, m := range c.Members {
		parts[i] = m.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// FromName resolves a type annotation: primitive names become primitives,
// anything else a Defined type.
func FromName(name string) Type {
	if p, ok := primitiveNames[name]; ok {
		return p
	}
	return Defined{Name: name}
}

// FromNumber maps a literal's lexed width to the type an untyped literal
// defaults to. Narrow integers widen toward signed arithmetic.
func FromNumber(n token.Number) Type {
	switch n.Width {
	case token.U8:
		return I16
	case token.U16:
		return I32
	case token.U32:
		return I64
	case token.U64:
		return U64
	case token.I8, token.I16, token.I32:
		return I32
	case token.I64:
		return I64
	case token.F32:
		return F32
	default:
		return F64
	}
}

// NewCompound folds the given types into a Compound, flattening nested
// compounds. A single type is returned unchanged.
func NewCompound(members ...Type) Type {
	var flat []Type
	for _, m := range members {
		if c, ok := m.(Compound); ok {
			flat = append(flat, c.Members...)
			continue
		}
		flat = append(flat, m)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return Compound{Members: flat}
}

// Equal reports structural equality
func Equal(a, b Type) bool {
	switch at := a.(type) {
	case Undefined:
		_, ok := b.(Undefined)
		return ok
	case Primitive:
		bt, ok := b.(Primitive)
		return ok && at == bt
	case Defined:
		bt, ok := b.(Defined)
		return ok && at.Name == bt.Name
	case Function:
		bt, ok := b.(Function)
		return ok && Equal(at.Return, bt.Return)
	case Compound:
		bt, ok := b.(Compound)
		if !ok || len(at.Members) != len(bt.Members) {
			return false
		}
		for i := range at.Members {
			if !Equal(at.Members[i], bt.Members[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// IsUndefined reports whether t is Undefined or a nil interface
func IsUndefined(t Type) bool {
	if t == nil {
		return true
	}
	_, ok := t.(Undefined)
	return ok
}

// Assignable reports whether a value of type from may be stored in a slot
// declared as to: equal types, a strictly narrower primitive, or the same
// rule applied member-wise for compounds and to function return types.
func Assignable(from, to Type) bool {
	if Equal(from, to) {
		return true
	}
	switch ft := from.(type) {
	case Primitive:
		tt, ok := to.(Primitive)
		if !ok {
			return false
		}
		ord, ok := Compare(ft, tt)
		return ok && ord < 0
	case Function:
		tt, ok := to.(Function)
		return ok && Assignable(ft.Return, tt.Return)
	case Compound:
		tt, ok := to.(Compound)
		if !ok || len(ft.Members) != len(tt.Members) {
			return false
		}
		for i := range ft.Members {
			if !Assignable(ft.Members[i], tt.Members[i]) {
				return false
			}
		}
		return true
	}
	return false
}
