package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"tacc/internal/ast"
	"tacc/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed file:
// 1) the program span lies within the file content
// 2) every statement span is non-empty and belongs to the file
// 3) nested statements (if/while/function bodies) sit inside their parent
// 4) the program span covers every top-level statement
func CheckSpanInvariants(b *ast.Builder, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	prog := b.Program
	if len(prog.Stmts) == 0 {
		return nil
	}

	// 1) program span sanity
	if prog.Span.File != sf.ID {
		return fmt.Errorf("program span points to different file id: got=%d want=%d", prog.Span.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if prog.Span.End > lenContent {
		return fmt.Errorf("program span end beyond content: %d > %d", prog.Span.End, lenContent)
	}

	return checkStmts(b, sf.ID, prog.Span, prog.Stmts)
}

func checkStmts(b *ast.Builder, file source.FileID, parent source.Span, ids []ast.StmtID) error {
	for _, id := range ids {
		st := b.Stmts.Get(id)
		if st == nil {
			return fmt.Errorf("nil statement for id=%d", id)
		}
		sp := st.Span
		if sp.End <= sp.Start {
			return fmt.Errorf("empty %s span: %v", st.Kind, sp)
		}
		if sp.File != file {
			return fmt.Errorf("%s span file mismatch: got=%d want=%d", st.Kind, sp.File, file)
		}
		if sp.Start < parent.Start || sp.End > parent.End {
			return fmt.Errorf("%s span %v is outside parent span %v", st.Kind, sp, parent)
		}
		for _, body := range children(b, id, st.Kind) {
			if err := checkStmts(b, file, sp, body); err != nil {
				return err
			}
		}
	}
	return nil
}

func children(b *ast.Builder, id ast.StmtID, kind ast.StmtKind) [][]ast.StmtID {
	switch kind {
	case ast.StmtIf:
		if s, ok := b.Stmts.If(id); ok {
			return [][]ast.StmtID{s.Then, s.Else}
		}
	case ast.StmtWhile:
		if s, ok := b.Stmts.While(id); ok {
			return [][]ast.StmtID{s.Body}
		}
	case ast.StmtFunction:
		if s, ok := b.Stmts.Function(id); ok {
			return [][]ast.StmtID{s.Body}
		}
	}
	return nil
}
