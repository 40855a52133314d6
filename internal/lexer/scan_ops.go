package lexer

import (
	"fmt"
	"unicode/utf8"

	"tacc/internal/diag"
	"tacc/internal/token"
)

// двухсимвольные проверяются первыми: "<=" не должен стать '<' '='
var pairOps = [...]struct {
	first, second byte
	kind          token.Kind
}{
	{'&', '&', token.AndAnd},
	{'|', '|', token.OrOr},
	{'=', '=', token.EqEq},
	{'!', '=', token.BangEq},
	{'<', '=', token.LtEq},
	{'>', '=', token.GtEq},
}

var singleOps = map[byte]token.Kind{
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'/': token.Slash,
	'%': token.Percent,
	'=': token.Assign,
	'!': token.Bang,
	'<': token.Lt,
	'>': token.Gt,
	';': token.Semicolon,
	',': token.Comma,
	'(': token.LParen,
	')': token.RParen,
	'{': token.LBrace,
	'}': token.RBrace,
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	kind, ok := lx.matchOperator()
	if !ok {
		// неизвестный символ: захватываем руну целиком, чтобы не резать UTF-8
		r, size := utf8.DecodeRune(lx.file.Content[lx.cursor.Off:lx.cursor.Limit])
		for range size {
			lx.cursor.Bump()
		}
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnknownChar, sp, fmt.Sprintf("unknown character %q", r))
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}

// matchOperator consumes the longest operator at the cursor. On failure the
// cursor is left where it was.
func (lx *Lexer) matchOperator() (token.Kind, bool) {
	for _, op := range pairOps {
		if lx.try2(op.first, op.second) {
			return op.kind, true
		}
	}
	if kind, ok := singleOps[lx.cursor.Peek()]; ok {
		lx.cursor.Bump()
		return kind, true
	}
	return token.Invalid, false
}
