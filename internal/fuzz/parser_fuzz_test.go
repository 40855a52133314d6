package fuzztests

import (
	"context"
	"testing"
	"time"

	"tacc/internal/ast"
	"tacc/internal/diag"
	"tacc/internal/lexer"
	"tacc/internal/parser"
	"tacc/internal/source"
	"tacc/internal/testkit"
)

// parseTimeout is the maximum time allowed for parsing a single input.
// If parsing takes longer, it indicates a potential infinite loop.
const parseTimeout = 5 * time.Second

func parse(ctx context.Context, input []byte) (*ast.Builder, *source.File, *diag.Bag) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("fuzz.tac", input)
	file := fs.Get(fileID)

	bag := diag.NewBag(128)
	reporter := diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})

	builder := ast.NewBuilder(ast.Hints{})
	opts := parser.Options{
		Reporter:  reporter,
		MaxErrors: 128,
	}
	parser.ParseFile(ctx, fs, lx, builder, opts)
	return builder, file, bag
}

func FuzzParserBuildsAST(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		builder, file, bag := parse(context.Background(), input)
		if bag.HasErrors() {
			return
		}
		if err := testkit.CheckSpanInvariants(builder, file); err != nil {
			t.Fatalf("%v\ninput: %q", err, truncateForLog(input, 200))
		}
	})
}

// FuzzParserNoHang tests that the parser doesn't hang on any input.
// It uses a timeout to detect infinite loops that could be caused by
// malformed input or edge cases in error recovery.
func FuzzParserNoHang(f *testing.F) {
	addCorpusSeeds(f)

	f.Add([]byte("let x = 1\nlet y = 2 }"))                  // stray closing brace
	f.Add([]byte("print print print"))                       // keyword where an expression goes
	f.Add([]byte("function f(a, { }"))                       // broken parameter list
	f.Add([]byte("if (((((((((x))))))))) { { { { } } } }")) // deep nesting
	f.Add([]byte("f(1, 2, , 3)"))                            // empty argument

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		// Create a context with timeout to detect hangs
		ctx, cancel := context.WithTimeout(context.Background(), parseTimeout)
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			parse(ctx, input)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			t.Fatalf("parser hang detected: parsing took longer than %v\ninput (%d bytes): %q",
				parseTimeout, len(input), truncateForLog(input, 200))
		}
	})
}
