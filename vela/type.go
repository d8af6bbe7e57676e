package vela

//go:generate go tool stringer --linecomment --type Type --output type_string.go

import (
	"strconv"
	"strings"
)

// Type is the type of an [Operand] or of a function parameter. Its String
// method returns the upper-case type name.
type Type int

// Types. TypeNone marks a function without a declared return type; TypeAny
// is only meaningful as a parameter or return type and matches every value.
const (
	TypeNone     Type = iota // NONE
	TypeReal                 // REAL
	TypeBoolean              // BOOLEAN
	TypeString               // STRING
	TypeList                 // LIST
	TypeFunction             // FUNCTION
	TypeAny                  // ANY
)

// Accepts reports whether a value of type u may be passed where t is
// declared.
func (t Type) Accepts(u Type) bool {
	return t == TypeAny || t == u
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	typ, ok := ParseType(string(text))
	if !ok {
		return ErrTypeMismatch.Wrap(NewError("unknown type " + strconv.Quote(string(text))))
	}

	*t = typ

	return nil
}

// ParseType returns the type named s, ignoring case. NONE is not a valid
// declared type.
func ParseType(s string) (Type, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "REAL":
		return TypeReal, true
	case "BOOLEAN":
		return TypeBoolean, true
	case "STRING":
		return TypeString, true
	case "LIST":
		return TypeList, true
	case "FUNCTION":
		return TypeFunction, true
	case "ANY":
		return TypeAny, true
	default:
		return TypeNone, false
	}
}

// ParseTypes parses a comma-separated list of type names.
func ParseTypes(s string) ([]Type, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	fields := strings.Split(s, ",")
	types := make([]Type, 0, len(fields))

	for _, f := range fields {
		var t Type
		if err := t.UnmarshalText([]byte(f)); err != nil {
			return nil, err
		}

		types = append(types, t)
	}

	return types, nil
}

func typesOf(args []Operand) []Type {
	types := make([]Type, len(args))
	for i, a := range args {
		types[i] = a.Type()
	}

	return types
}
