package diagfmt

import (
	"context"
	"testing"

	"tacc/internal/ast"
	"tacc/internal/diag"
	"tacc/internal/lexer"
	"tacc/internal/parser"
	"tacc/internal/source"
	"tacc/internal/symtab"
	"tacc/internal/tac"
)

func parseSource(t *testing.T, src string) (*ast.Builder, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.tac", []byte(src)))
	bag := diag.NewBag(0)
	reporter := diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	builder := ast.NewBuilder(ast.Hints{})
	parser.ParseFile(context.Background(), fs, lx, builder, parser.Options{Reporter: reporter})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diag.FormatShortDiagnostics(bag.Items(), fs, false))
	}
	return builder, fs
}

func generateSource(t *testing.T, src string) (tac.Program, *symtab.Table) {
	t.Helper()
	b, _ := parseSource(t, src)
	table := symtab.New()
	prog, err := tac.Generate(b, table)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return prog, table
}
