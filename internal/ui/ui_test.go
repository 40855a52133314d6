package ui

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tacc/internal/buildpipeline"
	"tacc/internal/regalloc"
	"tacc/internal/tac"
)

func TestProgressModelEvents(t *testing.T) {
	m := NewProgressModel("build", []string{"a.tac", "b.tac"}, nil).(*progressModel)

	m.Update(eventMsg{File: "a.tac", Stage: buildpipeline.StageParse, Status: buildpipeline.StatusWorking})
	if got := m.items[0].status; got != "parsing" {
		t.Fatalf("status %q, want parsing", got)
	}
	if got, want := m.percent(), buildpipeline.StageParse.Fraction()/2; math.Abs(got-want) > 1e-9 {
		t.Fatalf("percent %v, want %v", got, want)
	}

	m.Update(eventMsg{File: "a.tac", Stage: buildpipeline.StageCPU, Status: buildpipeline.StatusDone, Elapsed: 3 * time.Millisecond})
	m.Update(eventMsg{File: "b.tac", Stage: buildpipeline.StageTAC, Status: buildpipeline.StatusError})
	m.Update(eventMsg{File: "missing.tac", Status: buildpipeline.StatusDone})
	if got := m.percent(); got != 1 {
		t.Fatalf("percent %v after all files finished", got)
	}

	view := m.View()
	for _, want := range []string{"a.tac", "b.tac", "done", "error", "3ms"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "missing.tac") {
		t.Error("unknown files must be ignored")
	}

	m.Update(doneMsg{})
	if !strings.Contains(m.View(), "done: build") {
		t.Fatalf("final header missing:\n%s", m.View())
	}
}

func TestProgressModelBuildLevelEvent(t *testing.T) {
	m := NewProgressModel("build", []string{"a.tac"}, nil).(*progressModel)
	m.Update(eventMsg{Stage: buildpipeline.StageCache, Status: buildpipeline.StatusWorking})
	if m.stageLabel != "cache" {
		t.Fatalf("stage label %q", m.stageLabel)
	}
	if !strings.Contains(m.View(), "build (cache)") {
		t.Fatalf("header lacks stage:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdefghij", 8, "ab..."},
		{"abcdef", 2, "ab"},
		{"日本語ファイル", 10, "日本..."},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func spillingAllocation() *regalloc.Allocation {
	prog := tac.Program{Instrs: []tac.Instr{
		{Kind: tac.InstrAssign, Target: tac.Variable("a"), Source: tac.Literal(tac.LitNumber, "1")},
		{Kind: tac.InstrAssign, Target: tac.Variable("b"), Source: tac.Literal(tac.LitNumber, "2")},
		{Kind: tac.InstrAdd, Target: tac.Temp(0), Left: tac.Variable("a"), Right: tac.Variable("b")},
	}}
	alloc := regalloc.New(regalloc.Config{Registers: 1}).Allocate(nil, prog)
	return &alloc
}

func keyMsg(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestStepModelNavigation(t *testing.T) {
	alloc := spillingAllocation()
	if len(alloc.Steps) != 2 {
		t.Fatalf("setup: got %d steps", len(alloc.Steps))
	}
	m := NewStepModel(alloc)

	view := m.View()
	if !strings.Contains(view, "step 0/2") || !strings.Contains(view, "uncolored") {
		t.Fatalf("initial view:\n%s", view)
	}

	m.Update(keyMsg(tea.KeyRight))
	view = m.View()
	if !strings.Contains(view, "Colored variable a") || !strings.Contains(view, "r0") {
		t.Fatalf("after first step:\n%s", view)
	}
	if strings.Contains(view, "spilled") {
		t.Fatalf("b is not decided yet:\n%s", view)
	}

	m.Update(runes("n"))
	m.Update(runes("n"))
	if m.Position() != 2 {
		t.Fatalf("position %d, want 2 (clamped)", m.Position())
	}
	if view = m.View(); !strings.Contains(view, "spilled") {
		t.Fatalf("spill not shown:\n%s", view)
	}

	m.Update(runes("g"))
	if m.Position() != 0 {
		t.Fatalf("home: position %d", m.Position())
	}
	m.Update(keyMsg(tea.KeyEnd))
	if m.Position() != 2 {
		t.Fatalf("end: position %d", m.Position())
	}
	m.Update(keyMsg(tea.KeyLeft))
	if m.Position() != 1 {
		t.Fatalf("prev: position %d", m.Position())
	}

	if _, cmd := m.Update(runes("q")); cmd == nil {
		t.Fatal("q must quit")
	}
}

func TestStepModelEmpty(t *testing.T) {
	alloc := regalloc.New(regalloc.Config{}).Allocate(nil, tac.Program{})
	m := NewStepModel(&alloc)
	m.Update(keyMsg(tea.KeyRight))
	if m.Position() != 0 {
		t.Fatalf("position %d on an empty allocation", m.Position())
	}
	if !strings.Contains(m.View(), "(no variables)") {
		t.Fatalf("view:\n%s", m.View())
	}
}
