package diagfmt

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"

	"tacc/internal/source"
	"tacc/internal/token"
)

type TokenOutput struct {
	Kind  string      `json:"kind"`
	Text  string      `json:"text,omitempty"`
	Span  source.Span `json:"span"`
	Line  uint32      `json:"line"`
	Col   uint32      `json:"col"`
	Index int         `json:"index"`
}

// FormatTokensPretty выводит таблицу токенов: `%2d. Kind            | "text"`.
// EOF не печатается.
func FormatTokensPretty(w io.Writer, tokens []token.Token) error {
	for i, tok := range tokens {
		if tok.Kind == token.EOF {
			break
		}
		kind := runewidth.FillRight(tok.Kind.String(), 15)
		if _, err := fmt.Fprintf(w, "%2d. %s | %q\n", i+1, kind, tok.Text); err != nil {
			return err
		}
	}
	return nil
}

// FormatTokensJSON выводит токены в JSON формате
func FormatTokensJSON(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	output := make([]TokenOutput, 0, len(tokens))
	for i, tok := range tokens {
		if tok.Kind == token.EOF {
			break
		}
		out := TokenOutput{
			Kind:  tok.Kind.String(),
			Text:  tok.Text,
			Span:  tok.Span,
			Index: i + 1,
		}
		if fs != nil {
			pos, _ := fs.Resolve(tok.Span)
			out.Line, out.Col = pos.Line, pos.Col
		}
		output = append(output, out)
	}
	return writeJSON(w, output)
}
