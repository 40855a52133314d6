package tac

import (
	"strconv"
)

// OperandKind classifies an operand once, when the generator creates it.
type OperandKind uint8

const (
	// OperandNone marks an absent operand, e.g. the value of a bare return.
	OperandNone OperandKind = iota
	// OperandLiteral is a number, string or boolean written in source.
	OperandLiteral
	// OperandVariable names a user variable or parameter.
	OperandVariable
	// OperandTemp is a compiler temporary t<N>.
	OperandTemp
	// OperandLabel is a control label L<N>.
	OperandLabel
)

func (k OperandKind) String() string {
	switch k {
	case OperandNone:
		return "none"
	case OperandLiteral:
		return "literal"
	case OperandVariable:
		return "variable"
	case OperandTemp:
		return "temp"
	case OperandLabel:
		return "label"
	}
	return "operand(?)"
}

// LitKind is the literal flavour of an OperandLiteral.
type LitKind uint8

const (
	LitNumber LitKind = iota
	LitString
	LitBool
)

func (k LitKind) String() string {
	switch k {
	case LitNumber:
		return "number"
	case LitString:
		return "string"
	case LitBool:
		return "boolean"
	}
	return "?"
}

// Operand is one argument of a three-address instruction.
// Text holds the rendered form: the literal as written (strings keep their
// quotes), the variable name, or t<N>/L<N> for temps and labels.
type Operand struct {
	Kind OperandKind `json:"kind" msgpack:"kind"`
	Text string      `json:"text" msgpack:"text"`
	Temp int         `json:"temp,omitempty" msgpack:"temp,omitempty"`
	Lit  LitKind     `json:"lit,omitempty" msgpack:"lit,omitempty"`
}

func Literal(kind LitKind, text string) Operand {
	return Operand{Kind: OperandLiteral, Text: text, Lit: kind}
}

func Variable(name string) Operand {
	return Operand{Kind: OperandVariable, Text: name}
}

func Temp(n int) Operand {
	return Operand{Kind: OperandTemp, Text: "t" + strconv.Itoa(n), Temp: n}
}

func Label(n int) Operand {
	return Operand{Kind: OperandLabel, Text: "L" + strconv.Itoa(n), Temp: n}
}

func (o Operand) IsValid() bool    { return o.Kind != OperandNone }
func (o Operand) IsLiteral() bool  { return o.Kind == OperandLiteral }
func (o Operand) IsVariable() bool { return o.Kind == OperandVariable }
func (o Operand) IsTemp() bool     { return o.Kind == OperandTemp }

func (o Operand) String() string {
	if o.Kind == OperandNone {
		return "_"
	}
	return o.Text
}
