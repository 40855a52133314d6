package interp

import (
	"math"
	"strconv"
	"strings"

	"tacc/internal/ast"
	"tacc/internal/source"
)

func (in *Interpreter) eval(id ast.ExprID) (Value, error) {
	expr := in.b.Exprs.Get(id)
	if expr == nil {
		return Value{}, in.fail(ErrMalformed, source.Span{}, "invalid expression node %d", id)
	}
	switch expr.Kind {
	case ast.ExprLit:
		lit, _ := in.b.Exprs.Literal(id)
		return in.literal(expr.Span, lit)

	case ast.ExprIdent:
		ident, _ := in.b.Exprs.Ident(id)
		v, ok := in.lookup(ident.Name)
		if !ok {
			return Value{}, in.fail(ErrUndefinedVariable, expr.Span, "undefined variable: %s", ident.Name)
		}
		return v, nil

	case ast.ExprGroup:
		grp, _ := in.b.Exprs.Group(id)
		return in.eval(grp.Inner)

	case ast.ExprUnary:
		un, _ := in.b.Exprs.Unary(id)
		v, err := in.eval(un.Operand)
		if err != nil {
			return Value{}, err
		}
		switch un.Op {
		case ast.ExprUnaryNot:
			return BoolValue(!v.Truthy()), nil
		case ast.ExprUnaryNeg:
			if v.Kind != KindNumber {
				return Value{}, in.fail(ErrTypeMismatch, expr.Span, "cannot negate %s", v.Kind)
			}
			return NumberValue(-v.Num), nil
		}
		return Value{}, in.fail(ErrMalformed, expr.Span, "unrecognized unary operator %d", un.Op)

	case ast.ExprBinary:
		bin, _ := in.b.Exprs.Binary(id)
		return in.binary(expr.Span, bin)

	case ast.ExprCall:
		call, _ := in.b.Exprs.Call(id)
		return in.call(expr.Span, call)
	}
	return Value{}, in.fail(ErrMalformed, expr.Span, "unrecognized expression kind %s", expr.Kind)
}

func (in *Interpreter) literal(span source.Span, lit *ast.ExprLiteralData) (Value, error) {
	switch lit.Kind {
	case ast.LitNumber:
		n, err := strconv.ParseFloat(lit.Value, 64)
		if err != nil {
			return Value{}, in.fail(ErrMalformed, span, "bad number literal %q", lit.Value)
		}
		return NumberValue(n), nil
	case ast.LitString:
		return StringValue(strings.TrimSuffix(strings.TrimPrefix(lit.Value, `"`), `"`)), nil
	case ast.LitBool:
		return BoolValue(lit.Value == "true"), nil
	}
	return Value{}, in.fail(ErrMalformed, span, "unrecognized literal kind %s", lit.Kind)
}

func (in *Interpreter) binary(span source.Span, bin *ast.ExprBinaryData) (Value, error) {
	left, err := in.eval(bin.Left)
	if err != nil {
		return Value{}, err
	}

	// && и || вычисляются лениво
	switch bin.Op {
	case ast.ExprBinaryAnd:
		if !left.Truthy() {
			return BoolValue(false), nil
		}
		right, err := in.eval(bin.Right)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(right.Truthy()), nil
	case ast.ExprBinaryOr:
		if left.Truthy() {
			return BoolValue(true), nil
		}
		right, err := in.eval(bin.Right)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(right.Truthy()), nil
	}

	right, err := in.eval(bin.Right)
	if err != nil {
		return Value{}, err
	}

	switch bin.Op {
	case ast.ExprBinaryEq:
		return BoolValue(left.Equal(right)), nil
	case ast.ExprBinaryNe:
		return BoolValue(!left.Equal(right)), nil
	case ast.ExprBinaryAdd:
		if left.Kind == KindString || right.Kind == KindString {
			return StringValue(left.String() + right.String()), nil
		}
	case ast.ExprBinaryLt, ast.ExprBinaryGt, ast.ExprBinaryLe, ast.ExprBinaryGe:
		if left.Kind == KindString && right.Kind == KindString {
			return BoolValue(compare(bin.Op, strings.Compare(left.Str, right.Str))), nil
		}
	}

	if left.Kind != KindNumber || right.Kind != KindNumber {
		return Value{}, in.fail(ErrTypeMismatch, span, "operator %s is not defined for %s and %s", bin.Op, left.Kind, right.Kind)
	}
	a, b := left.Num, right.Num
	switch bin.Op {
	case ast.ExprBinaryAdd:
		return NumberValue(a + b), nil
	case ast.ExprBinarySub:
		return NumberValue(a - b), nil
	case ast.ExprBinaryMul:
		return NumberValue(a * b), nil
	case ast.ExprBinaryDiv:
		if b == 0 {
			return Value{}, in.fail(ErrDivisionByZero, span, "division by zero")
		}
		return NumberValue(a / b), nil
	case ast.ExprBinaryMod:
		if b == 0 {
			return Value{}, in.fail(ErrDivisionByZero, span, "division by zero")
		}
		return NumberValue(math.Mod(a, b)), nil
	case ast.ExprBinaryLt, ast.ExprBinaryGt, ast.ExprBinaryLe, ast.ExprBinaryGe:
		c := 0
		if a < b {
			c = -1
		} else if a > b {
			c = 1
		}
		return BoolValue(compare(bin.Op, c)), nil
	}
	return Value{}, in.fail(ErrMalformed, span, "unrecognized binary operator %d", bin.Op)
}

func compare(op ast.ExprBinaryOp, c int) bool {
	switch op {
	case ast.ExprBinaryLt:
		return c < 0
	case ast.ExprBinaryGt:
		return c > 0
	case ast.ExprBinaryLe:
		return c <= 0
	case ast.ExprBinaryGe:
		return c >= 0
	}
	return false
}
