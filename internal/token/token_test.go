package token_test

import (
	"testing"

	"tacc/internal/source"
	"tacc/internal/token"
)

func tok(k token.Kind) token.Token {
	return token.Token{Kind: k, Span: source.Span{Start: 0, End: 0}}
}

func TestIsLiteral(t *testing.T) {
	lits := []token.Kind{token.NumberLit, token.StringLit, token.KwTrue, token.KwFalse}
	for _, k := range lits {
		if !tok(k).IsLiteral() {
			t.Fatalf("%v should be literal", k)
		}
	}
	non := []token.Kind{token.Ident, token.KwLet, token.Plus, token.LParen}
	for _, k := range non {
		if tok(k).IsLiteral() {
			t.Fatalf("%v must NOT be literal", k)
		}
	}
}

func TestLookupKeyword(t *testing.T) {
	tests := []struct {
		in   string
		want token.Kind
		ok   bool
	}{
		{"let", token.KwLet, true},
		{"function", token.KwFunction, true},
		{"print", token.KwPrint, true},
		{"true", token.KwTrue, true},
		{"Let", token.Invalid, false},
		{"fn", token.Invalid, false},
	}
	for _, tt := range tests {
		got, ok := token.LookupKeyword(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("LookupKeyword(%q) = %v,%v; want %v,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestKindString(t *testing.T) {
	tests := map[token.Kind]string{
		token.Ident:     "Identifier",
		token.NumberLit: "NumberLiteral",
		token.KwTrue:    "BooleanLiteral",
		token.GtEq:      "GreaterEqual",
		token.Star:      "Mult",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}
