package token

import (
	"errors"
	"strconv"
	"strings"
)

// Width is the representation chosen for a numeric literal
type Width int

const (
	U8 Width = iota
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
)

var widthNames = [...]string{"U8", "U16", "U32", "U64", "I8", "I16", "I32", "I64", "F32", "F64"}

func (w Width) String() string {
	if w < U8 || w > F64 {
		return "Width(" + strconv.Itoa(int(w)) + ")"
	}
	return widthNames[w]
}

// Unsigned reports whether w is one of U8..U64
func (w Width) Unsigned() bool { return w >= U8 && w <= U64 }

// Signed reports whether w is one of I8..I64
func (w Width) Signed() bool { return w >= I8 && w <= I64 }

// Float reports whether w is F32 or F64
func (w Width) Float() bool { return w == F32 || w == F64 }

// ErrInvalidNumber is returned when no width can hold the text
var ErrInvalidNumber = errors.New("failed to parse the string into a valid number type")

// Number is a numeric literal tagged with its width. Only the field
// matching the width is meaningful.
type Number struct {
	Width Width
	Uint  uint64
	Int   int64
	Float float64
}

var (
	unsignedOrder = []struct {
		w    Width
		bits int
	}{{U8, 8}, {U16, 16}, {U32, 32}, {U64, 64}}
	signedOrder = []struct {
		w    Width
		bits int
	}{{I8, 8}, {I16, 16}, {I32, 32}, {I64, 64}}
)

// ParseNumber picks the narrowest unsigned width that holds s, then the
// narrowest signed width, or F32 then F64 when hasDecimal is set.
func ParseNumber(s string, hasDecimal bool) (Number, error) {
	if hasDecimal {
		if f, err := strconv.ParseFloat(s, 32); err == nil {
			return Number{Width: F32, Float: f}, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Number{Width: F64, Float: f}, nil
		}
		return Number{}, ErrInvalidNumber
	}

	for _, u := range unsignedOrder {
		if v, err := strconv.ParseUint(s, 10, u.bits); err == nil {
			return Number{Width: u.w, Uint: v}, nil
		}
	}
	for _, i := range signedOrder {
		if v, err := strconv.ParseInt(s, 10, i.bits); err == nil {
			return Number{Width: i.w, Int: v}, nil
		}
	}
	return Number{}, ErrInvalidNumber
}

// MustParse is ParseNumber for literals known to be valid; it panics otherwise.
func MustParse(s string) Number {
	n, err := ParseNumber(s, strings.Contains(s, "."))
	if err != nil {
		panic(err)
	}
	return n
}

// String formats the value without its width
func (n Number) String() string {
	switch {
	case n.Width.Unsigned():
		return strconv.FormatUint(n.Uint, 10)
	case n.Width.Signed():
		return strconv.FormatInt(n.Int, 10)
	case n.Width == F32:
		return strconv.FormatFloat(n.Float, 'g', -1, 32)
	default:
		return strconv.FormatFloat(n.Float, 'g', -1, 64)
	}
}

// GoString formats the value with its width, e.g. U8(3)
func (n Number) GoString() string {
	return n.Width.String() + "(" + n.String() + ")"
}
