package cfg_test

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"tacc/internal/ast"
	"tacc/internal/cfg"
	"tacc/internal/diag"
	"tacc/internal/lexer"
	"tacc/internal/parser"
	"tacc/internal/source"
	"tacc/internal/symtab"
	"tacc/internal/tac"
)

var corpus = map[string]string{
	"calculator":  "let x = 10\nlet y = 5\nlet result = x + y * 2\nprint result",
	"conditional": "let age = 18\nif (age >= 18) {\n    print \"Adult\"\n} else {\n    print \"Minor\"\n}",
	"loop":        "let i = 0\nwhile (i < 5) {\n    print i\n    i = i + 1\n}",
	"function":    "function add(a, b) {\n    return a + b\n}\nlet sum = add(3, 4)\nprint sum",
	"nested": `let n = 0
while (n < 10) {
    if (n % 2 == 0) {
        print n
    } else {
        while (n < 3) { n = n + 1 }
    }
    n = n + 1
}
print "done"`,
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

func TestBuildSingleBlock(t *testing.T) {
	g := cfg.Build(lower(t, corpus["calculator"]))
	if len(g.Blocks) != 1 || len(g.Edges) != 0 {
		t.Fatalf("expected one block and no edges, got %d blocks %d edges", len(g.Blocks), len(g.Edges))
	}
	b := g.Blocks["B0"]
	if b == nil || !b.IsEntry || !b.IsExit || b.Start != 0 || b.End != 5 {
		t.Fatalf("unexpected block %+v", b)
	}
	if g.Entry != "B0" || !reflect.DeepEqual(g.Exits, []string{"B0"}) {
		t.Errorf("entry %s exits %v", g.Entry, g.Exits)
	}
}

func TestBuildIfElse(t *testing.T) {
	g := cfg.Build(lower(t, `if (age >= 18) { print "Adult" } else { print "Minor" }`))

	if want := []string{"B0", "B2", "B4", "B6"}; !reflect.DeepEqual(g.Order, want) {
		t.Fatalf("expected blocks %v, got %v", want, g.Order)
	}
	ranges := map[string][2]int{"B0": {0, 1}, "B2": {2, 3}, "B4": {4, 5}, "B6": {6, 6}}
	for id, r := range ranges {
		b := g.Blocks[id]
		if b.Start != r[0] || b.End != r[1] {
			t.Errorf("%s: expected [%d,%d], got [%d,%d]", id, r[0], r[1], b.Start, b.End)
		}
	}
	wantEdges := []cfg.Edge{
		{From: "B0", To: "B4", Label: "JUMP_IF_FALSE"},
		{From: "B0", To: "B2", Label: cfg.EdgeFallThrough},
		{From: "B2", To: "B6"},
		{From: "B4", To: "B6"},
	}
	if !reflect.DeepEqual(g.Edges, wantEdges) {
		t.Errorf("edges:\n got %+v\nwant %+v", g.Edges, wantEdges)
	}
	if got := g.Blocks["B0"].Succs; !reflect.DeepEqual(got, []string{"B2", "B4"}) {
		t.Errorf("B0 succs: %v", got)
	}
	if got := g.Blocks["B6"].Preds; !reflect.DeepEqual(got, []string{"B2", "B4"}) {
		t.Errorf("B6 preds: %v", got)
	}
	if !reflect.DeepEqual(g.Exits, []string{"B6"}) {
		t.Errorf("exits: %v", g.Exits)
	}
	if want := [][]string{{"B0"}, {"B2", "B4"}, {"B6"}}; !reflect.DeepEqual(g.Levels(), want) {
		t.Errorf("levels: %v", g.Levels())
	}
}

func TestBuildLoop(t *testing.T) {
	g := cfg.Build(lower(t, corpus["loop"]))
	if want := []string{"B0", "B1", "B4", "B8"}; !reflect.DeepEqual(g.Order, want) {
		t.Fatalf("expected blocks %v, got %v", want, g.Order)
	}
	wantEdges := []cfg.Edge{
		{From: "B0", To: "B1"},
		{From: "B1", To: "B8", Label: "JUMP_IF_FALSE"},
		{From: "B1", To: "B4", Label: cfg.EdgeFallThrough},
		{From: "B4", To: "B1"},
	}
	if !reflect.DeepEqual(g.Edges, wantEdges) {
		t.Errorf("edges:\n got %+v\nwant %+v", g.Edges, wantEdges)
	}
	if got := g.Blocks["B1"].Preds; !reflect.DeepEqual(got, []string{"B0", "B4"}) {
		t.Errorf("loop header preds: %v", got)
	}
}

func TestJumpIfTrueEdges(t *testing.T) {
	prog := tac.Program{Instrs: []tac.Instr{
		{Kind: tac.InstrJumpIfTrue, Cond: tac.Variable("c"), Label: "L0"},
		{Kind: tac.InstrPrint, Source: tac.Variable("a")},
		{Kind: tac.InstrLabel, Label: "L0"},
		{Kind: tac.InstrPrint, Source: tac.Variable("b")},
	}}
	g := cfg.Build(prog)
	want := []cfg.Edge{
		{From: "B0", To: "B2", Label: "JUMP_IF_TRUE"},
		{From: "B0", To: "B1", Label: cfg.EdgeFallThrough},
		{From: "B1", To: "B2"},
	}
	if !reflect.DeepEqual(g.Edges, want) {
		t.Errorf("edges:\n got %+v\nwant %+v", g.Edges, want)
	}
	if err := g.Validate(); err != nil {
		t.Error(err)
	}
}

func TestJumpToLabelAtEntry(t *testing.T) {
	prog := tac.Program{Instrs: []tac.Instr{
		{Kind: tac.InstrLabel, Label: "L0"},
		{Kind: tac.InstrPrint, Source: tac.Variable("a")},
		{Kind: tac.InstrJump, Label: "L0"},
	}}
	if got := prog.LabelIndex(); !reflect.DeepEqual(got, map[string]int{"L0": 0}) {
		t.Fatalf("label index %v", got)
	}
	g := cfg.Build(prog)
	if len(g.Order) != 1 {
		t.Fatalf("expected one block, got %v", g.Order)
	}
	want := []cfg.Edge{{From: "B0", To: "B0"}}
	if !reflect.DeepEqual(g.Edges, want) {
		t.Errorf("edges:\n got %+v\nwant %+v", g.Edges, want)
	}
	if len(g.Diagnostics) != 0 || len(g.Exits) != 0 {
		t.Errorf("self loop: diagnostics %v, exits %v", g.Diagnostics, g.Exits)
	}
}

func TestDanglingJumpIsReported(t *testing.T) {
	tests := []struct {
		name   string
		prog   []tac.Instr
		edges  []cfg.Edge
		exits  []string
		diagAt string
	}{
		{
			name: "unconditional",
			prog: []tac.Instr{
				{Kind: tac.InstrJump, Label: "L9"},
				{Kind: tac.InstrPrint, Source: tac.Variable("x")},
			},
			exits:  []string{"B0", "B1"},
			diagAt: "B0",
		},
		{
			name: "conditional",
			prog: []tac.Instr{
				{Kind: tac.InstrPrint, Source: tac.Variable("x")},
				{Kind: tac.InstrJumpIfFalse, Cond: tac.Variable("c"), Label: "L7"},
				{Kind: tac.InstrPrint, Source: tac.Variable("y")},
			},
			edges:  []cfg.Edge{{From: "B0", To: "B2", Label: cfg.EdgeFallThrough}},
			exits:  []string{"B2"},
			diagAt: "B0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := cfg.Build(tac.Program{Instrs: tt.prog})
			if !reflect.DeepEqual(g.Edges, tt.edges) {
				t.Errorf("edges: got %+v want %+v", g.Edges, tt.edges)
			}
			if !reflect.DeepEqual(g.Exits, tt.exits) {
				t.Errorf("exits: got %v want %v", g.Exits, tt.exits)
			}
			if len(g.Diagnostics) != 1 {
				t.Fatalf("expected one diagnostic, got %+v", g.Diagnostics)
			}
			d := g.Diagnostics[0]
			if d.Block != tt.diagAt || !strings.Contains(d.Msg, d.Label) {
				t.Errorf("unexpected diagnostic %+v", d)
			}
			if err := g.Validate(); err != nil {
				t.Errorf("a dangling jump is recoverable, graph must still validate: %v", err)
			}
		})
	}
}

func TestCorpusInvariants(t *testing.T) {
	for name, src := range corpus {
		t.Run(name, func(t *testing.T) {
			prog := lower(t, src)
			g := cfg.Build(prog)
			if err := g.Validate(); err != nil {
				t.Fatalf("invariants: %v", err)
			}

			// every instruction lands in exactly one block
			seen := make([]int, prog.Len())
			for _, b := range g.Blocks {
				for i := b.Start; i <= b.End; i++ {
					seen[i]++
				}
			}
			for i, n := range seen {
				if n != 1 {
					t.Errorf("instruction %d is covered %d times", i, n)
				}
				if b, ok := g.BlockOf(i); !ok || i < b.Start || i > b.End {
					t.Errorf("BlockOf(%d) = %v, %v", i, b, ok)
				}
			}

			for _, id := range g.Order {
				b := g.Blocks[id]
				if b.Last().Kind.IsConditional() {
					out := g.OutEdges(id)
					if len(out) != 2 || out[1].Label != cfg.EdgeFallThrough {
						t.Errorf("%s: conditional block edges %+v", id, out)
					}
				}
			}
			if len(g.Diagnostics) != 0 {
				t.Errorf("generated code has dangling jumps: %+v", g.Diagnostics)
			}
			if !reflect.DeepEqual(cfg.Build(prog), g) {
				t.Error("Build is not deterministic")
			}
		})
	}
}

func TestEmptyProgram(t *testing.T) {
	g := cfg.Build(tac.Program{})
	if len(g.Blocks) != 0 || g.Entry != "" || g.Levels() != nil {
		t.Fatalf("expected empty graph, got %+v", g)
	}
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestValidateCatchesCorruption(t *testing.T) {
	g := cfg.Build(lower(t, corpus["loop"]))
	g.Edges = g.Edges[:len(g.Edges)-1]
	g.Blocks["B4"].IsEntry = true
	err := g.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{"B4 ends with JUMP and has 0 out-edges", "exactly one entry block, found 2"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %q in %v", want, err)
		}
	}
}

func TestUnreachableBlocks(t *testing.T) {
	prog := tac.Program{Instrs: []tac.Instr{
		{Kind: tac.InstrJump, Label: "L0"},
		{Kind: tac.InstrPrint, Source: tac.Variable("dead")},
		{Kind: tac.InstrLabel, Label: "L0"},
	}}
	g := cfg.Build(prog)
	if got := g.Unreachable(); !reflect.DeepEqual(got, []string{"B1"}) {
		t.Errorf("unreachable: %v", got)
	}
}

func TestWriteDOT(t *testing.T) {
	g := cfg.Build(lower(t, `if (age >= 18) { print "Adult" } else { print "Minor" }`))
	var sb strings.Builder
	if err := g.WriteDOT(&sb); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	for _, want := range []string{
		"digraph cfg {",
		`"B0" -> "B4" [label="JUMP_IF_FALSE"];`,
		`"B0" -> "B2" [label="fall-through"];`,
		`"B2" -> "B6";`,
		`2: print \"Adult\"\l`,
		`"B6" [label="B6\l6: L1:\l", peripheries=2];`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q:\n%s", want, out)
		}
	}
}
