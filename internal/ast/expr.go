package ast

import (
	"tacc/internal/source"
)

type ExprKind uint8

const (
	ExprIdent ExprKind = iota
	ExprLit
	ExprCall
	ExprBinary
	ExprUnary
	ExprGroup
)

func (k ExprKind) String() string {
	switch k {
	case ExprIdent:
		return "Ident"
	case ExprLit:
		return "Literal"
	case ExprCall:
		return "Call"
	case ExprBinary:
		return "Binary"
	case ExprUnary:
		return "Unary"
	case ExprGroup:
		return "Group"
	}
	return "Expr(?)"
}

type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

type ExprLitKind uint8

const (
	LitNumber ExprLitKind = iota
	LitString
	LitBool
)

func (k ExprLitKind) String() string {
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

type ExprBinaryOp uint8

const (
	ExprBinaryAdd ExprBinaryOp = iota
	ExprBinarySub
	ExprBinaryMul
	ExprBinaryDiv
	ExprBinaryMod
	ExprBinaryEq
	ExprBinaryNe
	ExprBinaryLt
	ExprBinaryGt
	ExprBinaryLe
	ExprBinaryGe
	ExprBinaryAnd
	ExprBinaryOr
)

var binaryOpText = [...]string{
	ExprBinaryAdd: "+",
	ExprBinarySub: "-",
	ExprBinaryMul: "*",
	ExprBinaryDiv: "/",
	ExprBinaryMod: "%",
	ExprBinaryEq:  "==",
	ExprBinaryNe:  "!=",
	ExprBinaryLt:  "<",
	ExprBinaryGt:  ">",
	ExprBinaryLe:  "<=",
	ExprBinaryGe:  ">=",
	ExprBinaryAnd: "&&",
	ExprBinaryOr:  "||",
}

// String returns the operator as written in source.
func (op ExprBinaryOp) String() string {
	if int(op) < len(binaryOpText) {
		return binaryOpText[op]
	}
	return "?"
}

type ExprUnaryOp uint8

const (
	ExprUnaryNot ExprUnaryOp = iota
	ExprUnaryNeg
)

func (op ExprUnaryOp) String() string {
	if op == ExprUnaryNot {
		return "!"
	}
	return "-"
}

type ExprIdentData struct {
	Name string
}

// ExprLiteralData keeps the literal exactly as written; strings keep their quotes.
type ExprLiteralData struct {
	Kind  ExprLitKind
	Value string
}

type ExprBinaryData struct {
	Op    ExprBinaryOp
	Left  ExprID
	Right ExprID
}

type ExprUnaryData struct {
	Op      ExprUnaryOp
	Operand ExprID
}

type ExprCallData struct {
	Name     string
	NameSpan source.Span
	Args     []ExprID
}

type ExprGroupData struct {
	Inner ExprID
}
