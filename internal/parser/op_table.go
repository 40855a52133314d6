package parser

import (
	"tacc/internal/ast"
	"tacc/internal/token"
)

// Таблица приоритетов: чем больше число, тем сильнее связывает оператор.
// Все бинарные операторы левоассоциативны.
const (
	precNone           = 0
	precLogicalOr      = 1 // ||
	precLogicalAnd     = 2 // &&
	precEquality       = 3 // == !=
	precComparison     = 4 // < <= > >=
	precAdditive       = 5 // + -
	precMultiplicative = 6 // * / %
)

func binaryPrec(kind token.Kind) int {
	switch kind {
	case token.OrOr:
		return precLogicalOr
	case token.AndAnd:
		return precLogicalAnd
	case token.EqEq, token.BangEq:
		return precEquality
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precComparison
	case token.Plus, token.Minus:
		return precAdditive
	case token.Star, token.Slash, token.Percent:
		return precMultiplicative
	}
	return precNone
}

func tokenToBinaryOp(kind token.Kind) (ast.ExprBinaryOp, bool) {
	switch kind {
	case token.Plus:
		return ast.ExprBinaryAdd, true
	case token.Minus:
		return ast.ExprBinarySub, true
	case token.Star:
		return ast.ExprBinaryMul, true
	case token.Slash:
		return ast.ExprBinaryDiv, true
	case token.Percent:
		return ast.ExprBinaryMod, true
	case token.EqEq:
		return ast.ExprBinaryEq, true
	case token.BangEq:
		return ast.ExprBinaryNe, true
	case token.Lt:
		return ast.ExprBinaryLt, true
	case token.Gt:
		return ast.ExprBinaryGt, true
	case token.LtEq:
		return ast.ExprBinaryLe, true
	case token.GtEq:
		return ast.ExprBinaryGe, true
	case token.AndAnd:
		return ast.ExprBinaryAnd, true
	case token.OrOr:
		return ast.ExprBinaryOr, true
	}
	return 0, false
}
