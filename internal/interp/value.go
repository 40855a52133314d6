package interp

import (
	"strconv"
)

type ValueKind uint8

const (
	KindVoid ValueKind = iota
	KindNumber
	KindString
	KindBool
)

func (k ValueKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	}
	return "void"
}

// Value is the result of evaluating an expression. The zero Value is void,
// returned by calls that finish without `return value`.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	Bool bool
}

func NumberValue(n float64) Value { return Value{Kind: KindNumber, Num: n} }
func StringValue(s string) Value  { return Value{Kind: KindString, Str: s} }
func BoolValue(b bool) Value      { return Value{Kind: KindBool, Bool: b} }

// String formats numbers in their shortest form, so integers have no point.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindString:
		return v.Str
	case KindBool:
		return strconv.FormatBool(v.Bool)
	}
	return "void"
}

// Truthy: non-zero numbers, non-empty strings, true.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNumber:
		return v.Num != 0
	case KindString:
		return v.Str != ""
	case KindBool:
		return v.Bool
	}
	return false
}

func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNumber:
		return v.Num == o.Num
	case KindString:
		return v.Str == o.Str
	case KindBool:
		return v.Bool == o.Bool
	}
	return true
}
