package examples_test

import (
	"context"
	"strings"
	"testing"

	"tacc/internal/diag"
	"tacc/internal/driver"
	"tacc/internal/examples"
)

func TestGet(t *testing.T) {
	ex, err := examples.Get("loop")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(ex.Source, "let i = 0\n") || ex.FileName() != "loop.tac" {
		t.Fatalf("unexpected example %+v", ex)
	}
	if _, err := examples.Get("nope"); err == nil {
		t.Fatal("unknown example must fail")
	}
}

// Every example goes through the whole pipeline and the interpreter.
func TestExamplesCompileAndRun(t *testing.T) {
	want := map[string]string{
		"calculator":  "20\n",
		"conditional": "Adult\n",
		"loop":        "0\n1\n2\n3\n4\n",
		"function":    "7\n",
	}
	all := examples.All()
	if len(all) != len(want) {
		t.Fatalf("got %d examples", len(all))
	}
	for _, ex := range all {
		t.Run(ex.Name, func(t *testing.T) {
			var out strings.Builder
			res, err := driver.CompileSource(context.Background(), ex.FileName(), ex.Source, driver.Options{
				Run:    true,
				RunOut: &out,
			})
			if err != nil {
				t.Fatal(err)
			}
			if res.Bag.HasErrors() {
				t.Fatalf("errors:\n%s", diag.FormatShortDiagnostics(res.Bag.Items(), res.FileSet, true))
			}
			if len(res.CPU) == 0 {
				t.Fatal("no CPU code")
			}
			if err := res.CFG.Validate(); err != nil {
				t.Fatalf("cfg invariants: %v", err)
			}
			if got := out.String(); got != want[ex.Name] {
				t.Fatalf("output %q, want %q", got, want[ex.Name])
			}
		})
	}
}
