package interp_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tacc/internal/ast"
	"tacc/internal/diag"
	"tacc/internal/interp"
	"tacc/internal/lexer"
	"tacc/internal/parser"
	"tacc/internal/source"
)

func parse(t *testing.T, src string) (*ast.Builder, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.tac", []byte(src)))
	bag := diag.NewBag(0)
	reporter := diag.BagReporter{Bag: bag}
	builder := ast.NewBuilder(ast.Hints{})
	parser.ParseFile(context.Background(), fs, lexer.New(file, lexer.Options{Reporter: reporter}), builder, parser.Options{Reporter: reporter})
	if bag.HasErrors() {
		t.Fatalf("parse errors: %s", diag.FormatShortDiagnostics(bag.Items(), fs, false))
	}
	return builder, fs
}

func run(t *testing.T, src string, opts interp.Options) (string, error) {
	t.Helper()
	b, _ := parse(t, src)
	var out strings.Builder
	_, err := interp.Run(context.Background(), b, &out, opts)
	return out.String(), err
}

func TestRunPrograms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"calculator", "let x = 10\nlet y = 5\nlet result = x + y * 2\nprint result", "20\n"},
		{"conditional", "let age = 18\nif (age >= 18) {\n    print \"Adult\"\n} else {\n    print \"Minor\"\n}", "Adult\n"},
		{"else_branch", "let age = 3\nif (age >= 18) { print \"Adult\" } else { print \"Minor\" }", "Minor\n"},
		{"loop", "let i = 0\nwhile (i < 5) {\n    print i\n    i = i + 1\n}", "0\n1\n2\n3\n4\n"},
		{"function", "function add(a, b) {\n    return a + b\n}\nlet sum = add(3, 4)\nprint sum", "7\n"},
		{"recursion", "function fact(n) {\n    if (n <= 1) { return 1 }\n    return n * fact(n - 1)\n}\nprint fact(5)", "120\n"},
		{"fractions", "print 7 / 2\nprint 7 % 4\nprint -3", "3.5\n3\n-3\n"},
		{"concat", "print \"n=\" + 3\nprint 1 + 2 + \"x\"\nprint \"ok \" + true", "n=3\n3x\nok true\n"},
		{"booleans", "print 1 < 2\nprint !0\nprint \"a\" < \"b\"\nprint 1 == \"1\"\nprint 2 != 3", "true\ntrue\ntrue\nfalse\ntrue\n"},
		{"short_circuit", "print false && missing\nprint true || missing\nprint 1 && \"\"", "false\ntrue\nfalse\n"},
		{"top_level_return", "return 5\nreturn\nprint 1", "Return: 5\n1\n"},
		{"void_call", "function f() {\n}\nprint f()", "void\n"},
		{"return_value_next_line", "function f() {\n    return\n    5\n}\nprint f()", "5\n"},
		{"globals_visible", "let g = 2\nfunction f() {\n    g = g + 1\n    return g\n}\nprint f()\nprint g", "3\n3\n"},
		{"return_unwinds_loop", "function f() {\n    let i = 0\n    while (true) {\n        if (i == 3) { return i }\n        i = i + 1\n    }\n}\nprint f()", "3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.src, interp.Options{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDivisionByZeroIsFatal(t *testing.T) {
	for _, src := range []string{"print 1\nlet z = 5 / 0\nprint 2", "print 1\nprint 5 % 0"} {
		out, err := run(t, src, interp.Options{})
		var rt *interp.RuntimeError
		if !errors.As(err, &rt) {
			t.Fatalf("%q: expected RuntimeError, got %v", src, err)
		}
		if rt.Code != interp.ErrDivisionByZero || rt.Code.DiagCode() != diag.RunDivisionByZero {
			t.Errorf("unexpected code %s", rt.Code)
		}
		if rt.Error() != "runtime error RT1001: division by zero" {
			t.Errorf("unexpected message %q", rt.Error())
		}
		if out != "1\n" {
			t.Errorf("output before the failure must be kept, got %q", out)
		}
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts interp.Options
		code interp.ErrorCode
		msg  string
	}{
		{"undefined_variable", "print y", interp.Options{}, interp.ErrUndefinedVariable, "undefined variable: y"},
		{"assign_undeclared", "y = 1", interp.Options{}, interp.ErrUndefinedVariable, "undefined variable: y"},
		{"locals_do_not_leak", "function f(a) {\n    let b = a\n}\nf(1)\nprint b", interp.Options{}, interp.ErrUndefinedVariable, "undefined variable: b"},
		{"undefined_function", "print nope(1)", interp.Options{}, interp.ErrUndefinedFunction, "undefined function: nope"},
		{"arity", "function f(a) {\n}\nf(1, 2)", interp.Options{}, interp.ErrArity, "f expects 1 arguments, got 2"},
		{"negate_string", "print -\"a\"", interp.Options{}, interp.ErrTypeMismatch, "cannot negate string"},
		{"bool_arith", "print true * 2", interp.Options{}, interp.ErrTypeMismatch, "operator * is not defined for boolean and number"},
		{"step_limit", "while (true) {\n}", interp.Options{MaxSteps: 100}, interp.ErrStepLimit, "step limit of 100 exceeded"},
		{"stack_overflow", "function f() {\n    return f()\n}\nf()", interp.Options{MaxDepth: 10}, interp.ErrStackOverflow, "call depth of 10 exceeded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.src, tt.opts)
			var rt *interp.RuntimeError
			if !errors.As(err, &rt) {
				t.Fatalf("expected RuntimeError, got %v", err)
			}
			if rt.Code != tt.code {
				t.Errorf("expected %s, got %s", tt.code, rt.Code)
			}
			if rt.Message != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, rt.Message)
			}
			if rt.Code.DiagCode() == diag.UnknownCode {
				t.Errorf("%s has no diagnostic code", rt.Code)
			}
		})
	}
}

func TestBacktrace(t *testing.T) {
	b, fs := parse(t, "function g(x) {\n    return x / 0\n}\nfunction f() {\n    return g(1)\n}\nprint f()")
	var out strings.Builder
	_, err := interp.Run(context.Background(), b, &out, interp.Options{})
	var rt *interp.RuntimeError
	if !errors.As(err, &rt) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
	if len(rt.Backtrace) != 2 || rt.Backtrace[0].Func != "g" || rt.Backtrace[1].Func != "f" {
		t.Fatalf("unexpected backtrace %+v", rt.Backtrace)
	}
	text := rt.FormatWithFiles(fs)
	for _, want := range []string{"runtime error RT1001: division by zero", "at test.tac:2:12", "0: g at test.tac:5:12", "1: f at test.tac:7:7"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in\n%s", want, text)
		}
	}
}

func TestCancellation(t *testing.T) {
	b, _ := parse(t, "while (true) {\n}")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := interp.Run(ctx, b, &strings.Builder{}, interp.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var rt *interp.RuntimeError
	if !errors.As(err, &rt) || rt.Code != interp.ErrCancelled {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
}

func TestStats(t *testing.T) {
	b, _ := parse(t, "function fact(n) {\n    if (n <= 1) { return 1 }\n    return n * fact(n - 1)\n}\nprint fact(4)")
	stats, err := interp.Run(context.Background(), b, &strings.Builder{}, interp.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Calls != 4 || stats.MaxDepth != 4 || stats.Steps == 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}
