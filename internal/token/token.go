package token

import (
	"tacc/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsLiteral reports whether the token is a numeric, boolean, or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case NumberLit, StringLit, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	switch t.Kind {
	case KwLet, KwIf, KwElse, KwWhile, KwFunction, KwReturn, KwPrint, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// StartsExpr reports whether a token of this kind can begin an expression.
func (k Kind) StartsExpr() bool {
	switch k {
	case Ident, NumberLit, StringLit, KwTrue, KwFalse, LParen, Bang, Minus:
		return true
	default:
		return false
	}
}
