package parser

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"tacc/internal/ast"
	"tacc/internal/diag"
	"tacc/internal/examples"
	"tacc/internal/lexer"
	"tacc/internal/source"
	"tacc/internal/testkit"
)

func diagnosticsSummary(bag *diag.Bag) string {
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

func parseSource(t *testing.T, input string) (*ast.Builder, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.tac", []byte(input)))
	bag := diag.NewBag(100)
	reporter := diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	builder := ast.NewBuilder(ast.Hints{})
	ParseFile(context.Background(), fs, lx, builder, Options{MaxErrors: 100, Reporter: reporter})
	return builder, bag
}

// render prints an expression fully parenthesized so precedence is visible.
func render(b *ast.Builder, id ast.ExprID) string {
	expr := b.Exprs.Get(id)
	switch expr.Kind {
	case ast.ExprIdent:
		d, _ := b.Exprs.Ident(id)
		return d.Name
	case ast.ExprLit:
		d, _ := b.Exprs.Literal(id)
		return d.Value
	case ast.ExprBinary:
		d, _ := b.Exprs.Binary(id)
		return "(" + render(b, d.Left) + " " + d.Op.String() + " " + render(b, d.Right) + ")"
	case ast.ExprUnary:
		d, _ := b.Exprs.Unary(id)
		return d.Op.String() + render(b, d.Operand)
	case ast.ExprGroup:
		d, _ := b.Exprs.Group(id)
		return render(b, d.Inner)
	case ast.ExprCall:
		d, _ := b.Exprs.Call(id)
		args := make([]string, len(d.Args))
		for i, a := range d.Args {
			args[i] = render(b, a)
		}
		return d.Name + "(" + strings.Join(args, ", ") + ")"
	}
	return "?"
}

func TestExpressionPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"print x + y * 2", "(x + (y * 2))"},
		{"print a - b + c", "((a - b) + c)"},
		{"print a || b && c == d < e + f * -g", "(a || (b && (c == (d < (e + (f * -g))))))"},
		{"print (a + b) * c", "((a + b) * c)"},
		{"print !a == b", "(!a == b)"},
		{"print a < b >= c", "((a < b) >= c)"},
		{"print add(1, x * 2) % 3", "(add(1, (x * 2)) % 3)"},
		{`print "hi" + true`, `("hi" + true)`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			b, bag := parseSource(t, tt.src)
			if bag.HasErrors() {
				t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
			}
			if len(b.Program.Stmts) != 1 {
				t.Fatalf("expected 1 statement, got %d", len(b.Program.Stmts))
			}
			pr, ok := b.Stmts.Print(b.Program.Stmts[0])
			if !ok {
				t.Fatal("expected print statement")
			}
			if got := render(b, pr.Value); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestStatementKinds(t *testing.T) {
	src := `let x = 10;
x = x + 1
if (x >= 18) { print "Adult" } else { print "Minor" }
while (x < 5) { x = x + 1 }
function add(a, b) {
    return a + b
}
return;
add(1, 2)
`
	b, bag := parseSource(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	want := []ast.StmtKind{
		ast.StmtLet, ast.StmtAssign, ast.StmtIf, ast.StmtWhile, ast.StmtFunction, ast.StmtReturn, ast.StmtExpr,
	}
	if len(b.Program.Stmts) != len(want) {
		t.Fatalf("expected %d statements, got %d", len(want), len(b.Program.Stmts))
	}
	for i, id := range b.Program.Stmts {
		if got := b.Stmts.Get(id).Kind; got != want[i] {
			t.Errorf("stmt %d: expected %v, got %v", i, want[i], got)
		}
	}

	ifs, _ := b.Stmts.If(b.Program.Stmts[2])
	if !ifs.HasElse || len(ifs.Then) != 1 || len(ifs.Else) != 1 {
		t.Errorf("unexpected if shape %+v", ifs)
	}
	fn, _ := b.Stmts.Function(b.Program.Stmts[4])
	if fn.Name != "add" || len(fn.Params) != 2 || fn.Params[1].Name != "b" || len(fn.Body) != 1 {
		t.Errorf("unexpected function shape %+v", fn)
	}
	ret, _ := b.Stmts.Return(fn.Body[0])
	if !ret.Value.IsValid() {
		t.Error("return inside function must carry its value")
	}
	bare, _ := b.Stmts.Return(b.Program.Stmts[5])
	if bare.Value.IsValid() {
		t.Error("return terminated by ';' must not swallow the next statement")
	}
}

func TestReturnValueOnNextLine(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		value string
	}{
		{"same_line", "function f() {\n    return 5\n}\n", "5"},
		{"next_line", "function f() {\n    return\n    5\n}\n", "5"},
		{"next_line_expr", "function f(a) {\n    return\n        a * 2\n}\n", "(a * 2)"},
		{"before_brace", "function f() {\n    return\n}\n", "<none>"},
		{"before_semicolon", "function f() {\n    return;\n    5\n}\n", "<none>"},
		{"before_print", "function f() {\n    return\n    print 1\n}\n", "<none>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, bag := parseSource(t, tt.src)
			if bag.HasErrors() {
				t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
			}
			fn, ok := b.Stmts.Function(b.Program.Stmts[0])
			if !ok || len(fn.Body) == 0 {
				t.Fatalf("no function body parsed")
			}
			ret, ok := b.Stmts.Return(fn.Body[0])
			if !ok {
				t.Fatalf("first body statement is not a return")
			}
			got := "<none>"
			if ret.Value.IsValid() {
				got = render(b, ret.Value)
			}
			if got != tt.value {
				t.Errorf("return value %s, want %s", got, tt.value)
			}
		})
	}
}

func TestSpanInvariants(t *testing.T) {
	for _, ex := range examples.All() {
		t.Run(ex.Name, func(t *testing.T) {
			fs := source.NewFileSet()
			file := fs.Get(fs.AddVirtual(ex.FileName(), []byte(ex.Source)))
			lx := lexer.New(file, lexer.Options{})
			builder := ast.NewBuilder(ast.Hints{})
			ParseFile(context.Background(), fs, lx, builder, Options{MaxErrors: 10})
			if err := testkit.CheckSpanInvariants(builder, file); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestSyntaxErrorsRecover(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		code      diag.Code
		stmtsLeft int
	}{
		{"missing let name", "let = 5\nprint 1", diag.SynExpectIdentifier, 1},
		{"unclosed paren", "print (1 + 2\nprint 3", diag.SynUnclosedParen, 1},
		{"missing block", "if (x) print x\nprint 2", diag.SynExpectBlock, 2},
		{"unclosed brace", "while (x) { print x", diag.SynUnclosedBrace, 0},
		{"bad assignment target", "1 = 2\nprint 4", diag.SynUnexpectedToken, 1},
		{"stray brace", "}\nprint 5", diag.SynExpectExpression, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, bag := parseSource(t, tt.src)
			if !bag.HasErrors() {
				t.Fatal("expected diagnostics")
			}
			if got := bag.Items()[0].Code; got != tt.code {
				t.Errorf("expected %s, got %s (%s)", tt.code.ID(), got.ID(), diagnosticsSummary(bag))
			}
			if len(b.Program.Stmts) != tt.stmtsLeft {
				t.Errorf("expected %d recovered statements, got %d", tt.stmtsLeft, len(b.Program.Stmts))
			}
		})
	}
}

func TestUnclosedBracketNotesOpener(t *testing.T) {
	_, bag := parseSource(t, "while (x) { print x")
	d := bag.Items()[0]
	if len(d.Notes) != 1 || d.Notes[0].Msg != "opened here" {
		t.Fatalf("expected an 'opened here' note, got %+v", d.Notes)
	}
	// '{' is the 11th byte
	if d.Notes[0].Span.Start != 10 {
		t.Errorf("note points at %v, want the opening brace", d.Notes[0].Span)
	}
}

func TestMaxErrorsStopsParsing(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("many.tac", []byte("let = 1\nlet = 2\nlet = 3\nlet = 4\n")))
	bag := diag.NewBag(0)
	reporter := diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	res := ParseFile(context.Background(), fs, lx, ast.NewBuilder(ast.Hints{}), Options{MaxErrors: 2, Reporter: reporter})
	if res.Errors != 2 {
		t.Fatalf("expected parsing to stop after 2 errors, got %d", res.Errors)
	}
	last := bag.Items()[bag.Len()-1]
	if last.Code != diag.SynTooManyErrors {
		t.Errorf("expected trailing %s, got %s", diag.SynTooManyErrors.ID(), last.Code.ID())
	}
}
