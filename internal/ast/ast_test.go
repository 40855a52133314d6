package ast_test

import (
	"testing"

	"tacc/internal/ast"
	"tacc/internal/source"
)

func TestArenaIsOneBased(t *testing.T) {
	a := ast.NewArena[int](0)
	if a.Get(0) != nil {
		t.Fatal("index 0 must be the nil sentinel")
	}
	id := a.Allocate(7)
	if id != 1 {
		t.Fatalf("expected first id 1, got %d", id)
	}
	if got := *a.Get(id); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if a.Get(2) != nil {
		t.Fatal("out of range ids must return nil")
	}
}

func TestTypedAccessorsRejectOtherKinds(t *testing.T) {
	b := ast.NewBuilder(ast.Hints{})
	sp := source.Span{}
	x := b.Exprs.NewIdent(sp, "x")
	one := b.Exprs.NewLiteral(sp, ast.LitNumber, "1")
	sum := b.Exprs.NewBinary(sp, ast.ExprBinaryAdd, x, one)

	if _, ok := b.Exprs.Unary(sum); ok {
		t.Fatal("binary node must not decode as unary")
	}
	bin, ok := b.Exprs.Binary(sum)
	if !ok || bin.Op != ast.ExprBinaryAdd || bin.Left != x || bin.Right != one {
		t.Fatalf("unexpected binary payload %+v", bin)
	}

	let := b.Stmts.NewLet(sp, "y", sp, sum)
	if _, ok := b.Stmts.Print(let); ok {
		t.Fatal("let must not decode as print")
	}
	data, ok := b.Stmts.Let(let)
	if !ok || data.Name != "y" || data.Value != sum {
		t.Fatalf("unexpected let payload %+v", data)
	}
	if _, ok := b.Stmts.Let(ast.NoStmtID); ok {
		t.Fatal("NoStmtID must not decode")
	}
}
