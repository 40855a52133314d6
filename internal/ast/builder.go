package ast

import (
	"tacc/internal/source"
)

type Hints struct{ Stmts, Exprs uint }

// Program is the root of a parsed source file.
type Program struct {
	Span  source.Span
	Stmts []StmtID
}

// Builder owns every node of one syntax tree.
type Builder struct {
	Stmts   *Stmts
	Exprs   *Exprs
	Program Program
}

func NewBuilder(hints Hints) *Builder {
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 7
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	return &Builder{
		Stmts: NewStmts(hints.Stmts),
		Exprs: NewExprs(hints.Exprs),
	}
}

// SetProgram records the top-level statement list.
func (b *Builder) SetProgram(span source.Span, stmts []StmtID) {
	b.Program = Program{Span: span, Stmts: stmts}
}
