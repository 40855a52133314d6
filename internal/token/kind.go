package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident
	// NumberLit is a decimal integer literal.
	NumberLit
	// StringLit is a double-quoted string literal; Text keeps the quotes.
	StringLit

	KwLet      // let
	KwIf       // if
	KwElse     // else
	KwWhile    // while
	KwFunction // function
	KwReturn   // return
	KwPrint    // print
	KwTrue     // true
	KwFalse    // false

	EqEq    // ==
	BangEq  // !=
	LtEq    // <=
	GtEq    // >=
	Lt      // <
	Gt      // >
	AndAnd  // &&
	OrOr    // ||
	Plus    // +
	Minus   // -
	Star    // *
	Slash   // /
	Percent // %
	Bang    // !
	Assign  // =

	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	Semicolon // ;
	Comma     // ,
)

var kindNames = [...]string{
	Invalid:    "Invalid",
	EOF:        "EOF",
	Ident:      "Identifier",
	NumberLit:  "NumberLiteral",
	StringLit:  "StringLiteral",
	KwLet:      "Let",
	KwIf:       "If",
	KwElse:     "Else",
	KwWhile:    "While",
	KwFunction: "Function",
	KwReturn:   "Return",
	KwPrint:    "Print",
	KwTrue:     "BooleanLiteral",
	KwFalse:    "BooleanLiteral",
	EqEq:       "Equal",
	BangEq:     "NotEqual",
	LtEq:       "LessEqual",
	GtEq:       "GreaterEqual",
	Lt:         "Less",
	Gt:         "Greater",
	AndAnd:     "And",
	OrOr:       "Or",
	Plus:       "Plus",
	Minus:      "Minus",
	Star:       "Mult",
	Slash:      "Div",
	Percent:    "Mod",
	Bang:       "Not",
	Assign:     "Assign",
	LParen:     "LParen",
	RParen:     "RParen",
	LBrace:     "LBrace",
	RBrace:     "RBrace",
	Semicolon:  "Semicolon",
	Comma:      "Comma",
}

// String returns the display name used by token dumps.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}
