package vela

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Operand is a typed VeLa value. The zero Operand has type [TypeNone] and
// represents the absence of a value.
type Operand struct {
	typ  Type
	num  float64
	flag bool
	str  string
	list []Operand
	fn   Executor
}

// Real returns a REAL operand.
func Real(v float64) Operand { return Operand{typ: TypeReal, num: v} }

// Boolean returns a BOOLEAN operand.
func Boolean(v bool) Operand { return Operand{typ: TypeBoolean, flag: v} }

// String returns a STRING operand.
func String(v string) Operand { return Operand{typ: TypeString, str: v} }

// List returns a LIST operand holding a copy of elems.
func List(elems ...Operand) Operand {
	return Operand{typ: TypeList, list: slices.Clone(elems)}
}

// Function returns a FUNCTION operand wrapping e.
func Function(e Executor) Operand { return Operand{typ: TypeFunction, fn: e} }

// Type returns the operand's type.
func (o Operand) Type() Type { return o.typ }

// IsZero reports whether o holds no value.
func (o Operand) IsZero() bool { return o.typ == TypeNone }

// AsReal returns the value of a REAL operand.
func (o Operand) AsReal() (float64, bool) { return o.num, o.typ == TypeReal }

// AsBoolean returns the value of a BOOLEAN operand.
func (o Operand) AsBoolean() (bool, bool) { return o.flag, o.typ == TypeBoolean }

// AsString returns the value of a STRING operand.
func (o Operand) AsString() (string, bool) { return o.str, o.typ == TypeString }

// AsList returns a copy of the elements of a LIST operand.
func (o Operand) AsList() ([]Operand, bool) {
	return slices.Clone(o.list), o.typ == TypeList
}

// AsFunction returns the executor of a FUNCTION operand.
func (o Operand) AsFunction() (Executor, bool) { return o.fn, o.typ == TypeFunction }

// Len returns the number of elements of a LIST, or runes of a STRING.
func (o Operand) Len() int {
	switch o.typ {
	case TypeList:
		return len(o.list)
	case TypeString:
		return len([]rune(o.str))
	default:
		return 0
	}
}

// Equal reports whether o and p have the same type and structurally equal
// values. REAL values compare with ==, so NaN is not equal to itself.
// FUNCTION values are equal only when they wrap the same executor.
func (o Operand) Equal(p Operand) bool {
	if o.typ != p.typ {
		return false
	}

	switch o.typ {
	case TypeNone:
		return true
	case TypeReal:
		return o.num == p.num
	case TypeBoolean:
		return o.flag == p.flag
	case TypeString:
		return o.str == p.str
	case TypeList:
		return slices.EqualFunc(o.list, p.list, Operand.Equal)
	case TypeFunction:
		return o.fn == p.fn
	default:
		return false
	}
}

// String formats the operand for display. Strings are unquoted at the top
// level and quoted inside lists.
func (o Operand) String() string {
	if o.typ == TypeString {
		return o.str
	}

	var b strings.Builder

	o.format(&b)

	return b.String()
}

// Quote formats the operand the way it would be written in source.
func (o Operand) Quote() string {
	var b strings.Builder

	o.format(&b)

	return b.String()
}

func (o Operand) format(b *strings.Builder) {
	switch o.typ {
	case TypeNone:
		b.WriteString("<none>")
	case TypeReal:
		b.WriteString(formatReal(o.num))
	case TypeBoolean:
		b.WriteString(strconv.FormatBool(o.flag))
	case TypeString:
		b.WriteString(strconv.Quote(o.str))
	case TypeList:
		b.WriteByte('[')

		for i, e := range o.list {
			if i > 0 {
				b.WriteString(", ")
			}

			e.format(b)
		}

		b.WriteByte(']')
	case TypeFunction:
		if o.fn == nil {
			b.WriteString("fun()")
		} else {
			b.WriteString(o.fn.Signature().String())
		}
	}
}

// Native converts o to a plain Go value: float64, bool, string, []any, or the
// signature string of a function. The zero Operand converts to nil.
func (o Operand) Native() any {
	switch o.typ {
	case TypeReal:
		return o.num
	case TypeBoolean:
		return o.flag
	case TypeString:
		return o.str
	case TypeList:
		elems := make([]any, len(o.list))
		for i, e := range o.list {
			elems[i] = e.Native()
		}

		return elems
	case TypeFunction:
		return o.Quote()
	default:
		return nil
	}
}

// formatReal prints integral and ordinary values without an exponent, and
// very large or small magnitudes in exponent form.
func formatReal(v float64) string {
	if a := math.Abs(v); a != 0 && (a >= 1e21 || a < 1e-6) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}

	return strconv.FormatFloat(v, 'f', -1, 64)
}
