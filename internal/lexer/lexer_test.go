package lexer_test

import (
	"fmt"
	"strings"
	"testing"

	"tacc/internal/diag"
	"tacc/internal/lexer"
	"tacc/internal/source"
	"tacc/internal/token"
)

// makeTestLexer создаёт лексер для тестовой строки
func makeTestLexer(input string) (*lexer.Lexer, *diag.Bag) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.tac", []byte(input)))
	bag := diag.NewBag(0)
	return lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}}), bag
}

func kindsOf(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind == token.EOF {
			break
		}
		out = append(out, tok.Kind)
	}
	return out
}

func tokensToString(tokens []token.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = fmt.Sprintf("%v(%q)", tok.Kind, tok.Text)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func TestTokenSequences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.Kind
	}{
		{
			name:  "let declaration",
			input: "let x = 10",
			want:  []token.Kind{token.KwLet, token.Ident, token.Assign, token.NumberLit},
		},
		{
			name:  "comparison operators",
			input: "a <= b >= c < d > e == f != g",
			want: []token.Kind{
				token.Ident, token.LtEq, token.Ident, token.GtEq, token.Ident, token.Lt, token.Ident,
				token.Gt, token.Ident, token.EqEq, token.Ident, token.BangEq, token.Ident,
			},
		},
		{
			name:  "logic and arithmetic",
			input: "!a && b || -c * d / e % f + g",
			want: []token.Kind{
				token.Bang, token.Ident, token.AndAnd, token.Ident, token.OrOr, token.Minus, token.Ident,
				token.Star, token.Ident, token.Slash, token.Ident, token.Percent, token.Ident, token.Plus, token.Ident,
			},
		},
		{
			name:  "function with comment",
			input: "function add(a, b) { // sum\n return a + b; }",
			want: []token.Kind{
				token.KwFunction, token.Ident, token.LParen, token.Ident, token.Comma, token.Ident, token.RParen,
				token.LBrace, token.KwReturn, token.Ident, token.Plus, token.Ident, token.Semicolon, token.RBrace,
			},
		},
		{
			name:  "keywords and booleans",
			input: "if else while print true false",
			want:  []token.Kind{token.KwIf, token.KwElse, token.KwWhile, token.KwPrint, token.KwTrue, token.KwFalse},
		},
		{
			name:  "identifier with keyword prefix",
			input: "letter iffy _tmp",
			want:  []token.Kind{token.Ident, token.Ident, token.Ident},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx, bag := makeTestLexer(tt.input)
			tokens := lx.All()
			got := kindsOf(tokens)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d tokens, got %d: %s", len(tt.want), len(got), tokensToString(tokens))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
			if bag.HasErrors() {
				t.Errorf("unexpected diagnostics: %v", bag.Items())
			}
		})
	}
}

func TestStringLiteralKeepsQuotes(t *testing.T) {
	lx, _ := makeTestLexer(`print "Adult"`)
	lx.Next()
	tok := lx.Next()
	if tok.Kind != token.StringLit || tok.Text != `"Adult"` {
		t.Fatalf("expected StringLit \"Adult\", got %v %q", tok.Kind, tok.Text)
	}
}

func TestStringLiteralIsNFC(t *testing.T) {
	input := "\"cafe\u0301\""
	lx, _ := makeTestLexer(input)
	tok := lx.Next()
	if tok.Text != "\"caf\u00e9\"" {
		t.Fatalf("expected NFC text, got %q", tok.Text)
	}
	if tok.Span.Len() != uint32(len(input)) {
		t.Errorf("span must cover the original bytes, got %d", tok.Span.Len())
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diag.Code
	}{
		{"unknown char", "let a = 1 # 2", diag.LexUnknownChar},
		{"unknown unicode char", "let a = λ", diag.LexUnknownChar},
		{"unterminated string", `print "abc`, diag.LexUnterminatedString},
		{"newline in string", "print \"abc\nprint 1", diag.LexUnterminatedString},
		{"bad number", "let a = 12ab", diag.LexBadNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx, bag := makeTestLexer(tt.input)
			lx.All()
			if bag.Len() != 1 {
				t.Fatalf("expected 1 diagnostic, got %d", bag.Len())
			}
			if got := bag.Items()[0].Code; got != tt.code {
				t.Errorf("expected %s, got %s", tt.code.ID(), got.ID())
			}
		})
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	lx, _ := makeTestLexer("x y")
	if p := lx.Peek(); p.Text != "x" {
		t.Fatalf("peek: expected x, got %q", p.Text)
	}
	if n := lx.Next(); n.Text != "x" {
		t.Fatalf("next after peek: expected x, got %q", n.Text)
	}
	if n := lx.Next(); n.Text != "y" {
		t.Fatalf("expected y, got %q", n.Text)
	}
	for range 3 {
		if n := lx.Next(); n.Kind != token.EOF {
			t.Fatalf("expected sticky EOF, got %v", n.Kind)
		}
	}
}
