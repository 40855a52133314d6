package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1003

	// Парсерные
	SynInfo             Code = 2000
	SynUnexpectedToken  Code = 2001
	SynUnclosedParen    Code = 2002
	SynUnclosedBrace    Code = 2003
	SynExpectIdentifier Code = 2004
	SynExpectExpression Code = 2005
	SynExpectBlock      Code = 2006
	SynTooManyErrors    Code = 2007

	// Генерация промежуточного кода
	GenInfo               Code = 3000
	GenRedeclaredVariable Code = 3001
	GenRedeclaredFunction Code = 3002
	GenMalformedNode      Code = 3003

	// CFG и распределение регистров
	CfgDanglingJump Code = 4001
	CfgInvariant    Code = 4002
	AllocSpilled    Code = 4101

	// Интерпретатор
	RunDivisionByZero    Code = 5001
	RunUndefinedVariable Code = 5002
	RunUndefinedFunction Code = 5003
	RunArity             Code = 5004
	RunTypeMismatch      Code = 5005
	RunStepLimit         Code = 5006
	RunStackOverflow     Code = 5007
	RunCancelled         Code = 5008

	ObsTimings Code = 6001

	IOLoadFileError Code = 7001
)

var codeDescription = map[Code]string{
	UnknownCode:           "Unknown error",
	LexInfo:               "Lexical information",
	LexUnknownChar:        "Unknown character",
	LexUnterminatedString: "Unterminated string literal",
	LexBadNumber:          "Malformed number literal",
	SynInfo:               "Syntax information",
	SynUnexpectedToken:    "Unexpected token",
	SynUnclosedParen:      "Unclosed parenthesis",
	SynUnclosedBrace:      "Unclosed brace",
	SynExpectIdentifier:   "Expected identifier",
	SynExpectExpression:   "Expected expression",
	SynExpectBlock:        "Expected block",
	SynTooManyErrors:      "Too many syntax errors",
	GenInfo:               "Code generation information",
	GenRedeclaredVariable: "Variable redeclared in the same scope",
	GenRedeclaredFunction: "Function redeclared",
	GenMalformedNode:      "Malformed syntax tree node",
	CfgDanglingJump:       "Jump to undefined label",
	CfgInvariant:          "Control flow graph invariant violated",
	AllocSpilled:          "Variable spilled",
	RunDivisionByZero:     "Division by zero",
	RunUndefinedVariable:  "Undefined variable",
	RunUndefinedFunction:  "Undefined function",
	RunArity:              "Wrong number of arguments",
	RunTypeMismatch:       "Type mismatch",
	RunStepLimit:          "Step limit exceeded",
	RunStackOverflow:      "Call depth exceeded",
	RunCancelled:          "Execution cancelled",
	ObsTimings:            "Pipeline timings",
	IOLoadFileError:       "I/O error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("GEN%04d", ic)
	case ic >= 4000 && ic < 4100:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 4100 && ic < 5000:
		return fmt.Sprintf("ALC%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("RUN%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
