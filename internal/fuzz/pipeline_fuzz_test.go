package fuzztests

import (
	"context"
	"testing"

	"tacc/internal/buildpipeline"
	"tacc/internal/driver"
	"tacc/internal/interp"
	"tacc/internal/regalloc"
)

// FuzzPipeline pushes every input through all stages and the interpreter.
// Whatever the input, a graph that got built must be consistent and the
// allocation must never give neighbours the same register.
func FuzzPipeline(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		res, err := driver.CompileSource(context.Background(), "fuzz.tac", string(input), driver.Options{
			MaxDiagnostics: 64,
			Alloc:          regalloc.Config{Registers: 3},
			Run:            true,
			RunOptions:     interp.Options{MaxSteps: 10_000, MaxDepth: 64},
		})
		if err != nil {
			t.Fatalf("internal failure: %v\ninput: %q", err, truncateForLog(input, 200))
		}
		if res.CFG != nil {
			if err := res.CFG.Validate(); err != nil {
				t.Fatalf("cfg: %v\ninput: %q", err, truncateForLog(input, 200))
			}
		}
		if res.Alloc != nil && res.Alloc.Graph != nil {
			for _, e := range res.Alloc.Graph.Edges {
				a, okA := res.Alloc.Registers[e.From]
				b, okB := res.Alloc.Registers[e.To]
				if okA && okB && a == b {
					t.Fatalf("%s and %s interfere but share %s\ninput: %q", e.From, e.To, a, truncateForLog(input, 200))
				}
			}
		}
		if res.Reached == buildpipeline.StageCPU && len(res.TAC.Instrs) > 0 && len(res.CPU) == 0 {
			t.Fatalf("no CPU code for %d TAC instructions", len(res.TAC.Instrs))
		}
	})
}
