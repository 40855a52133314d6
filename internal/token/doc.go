// Package token defines lexical token kinds for the tacc front end.
// Invariants:
//   - Token.Text is a slice of the original source, except for string
//     literals, whose Text is NFC-normalized.
//   - Token.Span covers the token's bytes exactly.
//   - true/false are keywords with their own kinds; the parser turns them
//     into boolean literals.
package token
