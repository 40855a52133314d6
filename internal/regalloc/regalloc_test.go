package regalloc_test

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"tacc/internal/ast"
	"tacc/internal/cfg"
	"tacc/internal/diag"
	"tacc/internal/lexer"
	"tacc/internal/parser"
	"tacc/internal/regalloc"
	"tacc/internal/source"
	"tacc/internal/symtab"
	"tacc/internal/tac"
)

var corpus = map[string]string{
	"calculator":  "let x = 10\nlet y = 5\nlet result = x + y * 2\nprint result",
	"conditional": "let age = 18\nif (age >= 18) {\n    print \"Adult\"\n} else {\n    print \"Minor\"\n}",
	"loop":        "let i = 0\nwhile (i < 5) {\n    print i\n    i = i + 1\n}",
	"function":    "function add(a, b) {\n    return a + b\n}\nlet sum = add(3, 4)\nprint sum",
	"pressure":    nineLive(),
}

// nineLive keeps nine variables alive across a loop body.
func nineLive() string {
	names := strings.Split("a b c d e f g h i", " ")
	var sb strings.Builder
	for n, v := range names {
		fmt.Fprintf(&sb, "let %s = %d\n", v, n+1)
	}
	sb.WriteString("while (a < 10) {\n    print " + strings.Join(names, " + ") + "\n    a = a + 1\n}\n")
	return sb.String()
}

func lower(t *testing.T, src string) tac.Program {
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
	prog, err := tac.Generate(builder, symtab.New())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return prog
}

func allocate(t *testing.T, src string, conf regalloc.Config) regalloc.Allocation {
	t.Helper()
	prog := lower(t, src)
	return regalloc.New(conf).Allocate(cfg.Build(prog), prog)
}

func TestConfigDefaults(t *testing.T) {
	tests := []struct {
		conf regalloc.Config
		want []string
	}{
		{regalloc.Config{}, []string{"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7"}},
		{regalloc.Config{Registers: -3}, []string{"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7"}},
		{regalloc.Config{Registers: 3, Prefix: "x"}, []string{"x0", "x1", "x2"}},
	}
	for _, tt := range tests {
		if got := regalloc.New(tt.conf).Registers(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%+v: expected %v, got %v", tt.conf, tt.want, got)
		}
	}
}

func TestLiveRanges(t *testing.T) {
	prog := lower(t, corpus["function"])
	// 0 function add(a, b) {   1 t0 = a + b   2 return t0   3 }
	// 4 t1 = call add(3, 4)    5 sum = t1     6 print sum
	want := []regalloc.LiveRange{
		{Variable: "a", Start: 0, End: 1},
		{Variable: "b", Start: 0, End: 1},
		{Variable: "sum", Start: 5, End: 6},
	}
	if got := regalloc.LiveRanges(prog); !reflect.DeepEqual(got, want) {
		t.Errorf("ranges:\n got %+v\nwant %+v", got, want)
	}
}

func TestCalculatorFitsInRegisters(t *testing.T) {
	alloc := allocate(t, corpus["calculator"], regalloc.Config{})
	if len(alloc.Spilled) != 0 {
		t.Errorf("expected no spills, got %v", alloc.Spilled)
	}
	// x [0,3] y [1,2] result [4,5]; result has degree 0 and goes first
	want := map[string]string{"x": "r0", "y": "r1", "result": "r0"}
	if !reflect.DeepEqual(alloc.Registers, want) {
		t.Errorf("expected %v, got %v", want, alloc.Registers)
	}
}

func TestNineLiveVariablesSpillOne(t *testing.T) {
	alloc := allocate(t, corpus["pressure"], regalloc.Config{})
	if len(alloc.Spilled) != 1 {
		t.Fatalf("expected exactly one spill, got %v", alloc.Spilled)
	}
	if len(alloc.Registers) != 8 {
		t.Errorf("expected 8 colored variables, got %d", len(alloc.Registers))
	}
	// complete graph: every degree is 8, so insertion order decides
	if alloc.Spilled[0] != "i" {
		t.Errorf("expected the last declared variable to spill, got %s", alloc.Spilled[0])
	}
	last := alloc.Steps[len(alloc.Steps)-1]
	if last.Action != regalloc.ActionSpill || last.Node != "i" || last.Color != -1 || last.Register != "" {
		t.Errorf("unexpected final step %+v", last)
	}
	if last.Description != "Spilled variable i (no available colors)" {
		t.Errorf("description: %q", last.Description)
	}
	if _, ok := last.Snapshot["i"]; ok || len(last.Snapshot) != 8 {
		t.Errorf("snapshot after spill: %v", last.Snapshot)
	}
}

func TestSmallRegisterFile(t *testing.T) {
	alloc := allocate(t, "let a = 1\nlet b = 2\nprint a + b", regalloc.Config{Registers: 1})
	if !reflect.DeepEqual(alloc.Spilled, []string{"b"}) {
		t.Errorf("expected b spilled, got %v", alloc.Spilled)
	}
	if alloc.Registers["a"] != "r0" {
		t.Errorf("expected a in r0, got %v", alloc.Registers)
	}
}

func TestMinimumDegreeFirst(t *testing.T) {
	alloc := allocate(t, corpus["function"], regalloc.Config{})
	// sum has no neighbours and is taken first
	var order []string
	for _, s := range alloc.Steps {
		order = append(order, fmt.Sprintf("%s:%d", s.Node, s.Color))
	}
	if want := []string{"sum:0", "a:0", "b:1"}; !reflect.DeepEqual(order, want) {
		t.Errorf("expected %v, got %v", want, order)
	}
	if alloc.Steps[0].Description != "Colored variable sum with color 0" || alloc.Steps[2].Register != "r1" {
		t.Errorf("unexpected steps %+v", alloc.Steps)
	}
	if got := alloc.Steps[0].Snapshot; !reflect.DeepEqual(got, map[string]int{"sum": 0}) {
		t.Errorf("first snapshot %v", got)
	}
}

func TestZeroVariables(t *testing.T) {
	alloc := allocate(t, "print 1 + 2", regalloc.Config{})
	if len(alloc.Graph.Nodes) != 0 || len(alloc.Graph.Edges) != 0 {
		t.Errorf("expected an empty graph, got %+v", alloc.Graph)
	}
	if len(alloc.Registers) != 0 || len(alloc.Spilled) != 0 || len(alloc.Steps) != 0 {
		t.Errorf("expected an empty allocation, got %+v", alloc)
	}

	empty := regalloc.New(regalloc.Config{}).Allocate(nil, tac.Program{})
	if empty.Graph == nil || len(empty.Registers) != 0 || empty.BlockVars != nil {
		t.Errorf("unexpected allocation for an empty program: %+v", empty)
	}
}

// One range per variable: x is dead between its print and the reassignment,
// yet it still interferes with y.
func TestLiveRangeIsConservative(t *testing.T) {
	prog := lower(t, "let x = 1\nprint x\nlet y = 2\nprint y\nx = 3\nprint x")
	ranges := regalloc.LiveRanges(prog)
	want := []regalloc.LiveRange{
		{Variable: "x", Start: 0, End: 5},
		{Variable: "y", Start: 2, End: 3},
	}
	if !reflect.DeepEqual(ranges, want) {
		t.Fatalf("ranges: %+v", ranges)
	}
	graph := regalloc.BuildInterference(ranges)
	if !graph.Interferes("x", "y") {
		t.Error("expected x and y to interfere under the single-range model")
	}
	alloc := regalloc.New(regalloc.Config{}).Allocate(nil, prog)
	if alloc.Registers["x"] == alloc.Registers["y"] {
		t.Errorf("x and y share %s", alloc.Registers["x"])
	}
}

func TestBlockVariables(t *testing.T) {
	alloc := allocate(t, corpus["loop"], regalloc.Config{})
	want := map[string][]string{
		"B0": {"i"},
		"B1": {"i"},
		"B4": {"i"},
		"B8": nil,
	}
	if !reflect.DeepEqual(alloc.BlockVars, want) {
		t.Errorf("expected %v, got %v", want, alloc.BlockVars)
	}
}

func TestAllocationProperties(t *testing.T) {
	for name, src := range corpus {
		for _, k := range []int{1, 2, 8} {
			t.Run(fmt.Sprintf("%s/k=%d", name, k), func(t *testing.T) {
				prog := lower(t, src)
				a := regalloc.New(regalloc.Config{Registers: k})
				alloc := a.Allocate(cfg.Build(prog), prog)
				g := alloc.Graph

				// symmetry and degree bookkeeping
				count := make(map[string]int)
				for _, e := range g.Edges {
					if e.From == e.To {
						t.Errorf("self loop on %s", e.From)
					}
					if !g.Interferes(e.To, e.From) {
						t.Errorf("edge %s->%s has no reverse", e.From, e.To)
					}
					count[e.From]++
				}
				for _, v := range g.Nodes {
					if g.Degrees[v] != count[v] {
						t.Errorf("%s: degree %d, incident edges %d", v, g.Degrees[v], count[v])
					}
				}

				// completeness and disjointness
				seen := make(map[string]int)
				for v := range alloc.Registers {
					seen[v]++
				}
				for _, v := range alloc.Spilled {
					seen[v]++
				}
				if len(seen) != len(g.Nodes) {
					t.Errorf("covered %d of %d nodes", len(seen), len(g.Nodes))
				}
				for _, v := range g.Nodes {
					if seen[v] != 1 {
						t.Errorf("%s appears %d times across registers and spills", v, seen[v])
					}
				}

				// no false coloring
				for _, e := range g.Edges {
					ra, okA := alloc.Registers[e.From]
					rb, okB := alloc.Registers[e.To]
					if okA && okB && ra == rb {
						t.Errorf("%s and %s interfere but share %s", e.From, e.To, ra)
					}
				}

				if len(alloc.Steps) != len(g.Nodes) {
					t.Errorf("expected one step per node, got %d for %d", len(alloc.Steps), len(g.Nodes))
				}

				again := regalloc.New(regalloc.Config{Registers: k}).Allocate(cfg.Build(prog), prog)
				if !reflect.DeepEqual(stripIndex(again), stripIndex(alloc)) {
					t.Error("allocation is not deterministic")
				}
			})
		}
	}
}

// stripIndex drops the lazily built neighbour index so results compare by data.
func stripIndex(a regalloc.Allocation) regalloc.Allocation {
	g := *a.Graph
	a.Graph = &regalloc.InterferenceGraph{Nodes: g.Nodes, Edges: g.Edges, Colors: g.Colors, Degrees: g.Degrees}
	return a
}
