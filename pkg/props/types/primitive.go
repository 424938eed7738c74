package types

import "strconv"

// Primitive is a width-tagged numeric type or the string type
type Primitive int

const (
	U8 Primitive = iota
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
	Str
)

var primitiveList = [...]string{"U8", "U16", "U32", "U64", "I8", "I16", "I32", "I64", "F32", "F64", "Str"}

var primitiveNames = func() map[string]Primitive {
	m := make(map[string]Primitive, len(primitiveList))
	for i, name := range primitiveList {
		m[name] = Primitive(i)
	}
	return m
}()

func (p Primitive) String() string {
	if p < U8 || p > Str {
		return "Primitive(" + strconv.Itoa(int(p)) + ")"
	}
	return primitiveList[p]
}

// Size is the width in bytes; 0 for Str
func (p Primitive) Size() int {
	switch p {
	case U8, I8:
		return 1
	case U16, I16:
		return 2
	case U32, I32, F32:
		return 4
	case U64, I64, F64:
		return 8
	}
	return 0
}

// Numeric reports whether p has a byte width
func (p Primitive) Numeric() bool {
	return p.Size() > 0
}

// Compare orders two primitives by byte width. ok is false when either
// side is Str, which has no relation to any numeric type.
func Compare(a, b Primitive) (ord int, ok bool) {
	if !a.Numeric() || !b.Numeric() {
		return 0, false
	}
	switch {
	case a.Size() < b.Size():
		return -1, true
	case a.Size() > b.Size():
		return 1, true
	}
	return 0, true
}

// Widen returns the type a binary operation over a and b produces: the
// shared type, or the strictly wider one. ok is false when the operands
// cannot be related, including distinct types of the same width.
func Widen(a, b Primitive) (Primitive, bool) {
	if a == b {
		return a, true
	}
	ord, ok := Compare(a, b)
	if !ok {
		return 0, false
	}
	switch {
	case ord < 0:
		return b, true
	case ord > 0:
		return a, true
	}
	return 0, false
}
