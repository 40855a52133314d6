package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"tacc/internal/cfg"
	"tacc/internal/cpu"
	"tacc/internal/regalloc"
	"tacc/internal/symtab"
	"tacc/internal/tac"
)

const ruleWidth = 50

// Section prints a stage header followed by a rule line.
func Section(w io.Writer, title string, useColor bool) {
	c := color.New(color.FgCyan, color.Bold)
	if useColor {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	fmt.Fprintf(w, "\n%s\n%s\n", c.Sprint(strings.ToUpper(title)), strings.Repeat("=", ruleWidth))
}

// FormatSymbolsPretty: `  name            | variable | number   @0`.
func FormatSymbolsPretty(w io.Writer, symbols []symtab.Symbol) {
	if len(symbols) == 0 {
		fmt.Fprintln(w, "  (No symbols declared)")
		return
	}
	for _, s := range symbols {
		kind := "variable"
		params := ""
		if s.IsFunction {
			kind = "function"
			names := make([]string, len(s.Params))
			for i, p := range s.Params {
				names[i] = p.String()
			}
			params = "(" + strings.Join(names, ", ") + ")"
		}
		addr := ""
		if s.HasAddress {
			addr = fmt.Sprintf(" @%d", s.Address)
		}
		fmt.Fprintf(w, "  %s | %-8s | %-8s%s%s\n", runewidth.FillRight(s.Name, 15), kind, s.Type, params, addr)
	}
}

func FormatTACPretty(w io.Writer, prog tac.Program) error {
	if prog.Len() == 0 {
		_, err := fmt.Fprintln(w, "  (No instructions generated)")
		return err
	}
	return tac.Dump(w, prog)
}

func FormatCPUPretty(w io.Writer, code []cpu.Instr) error {
	if len(code) == 0 {
		_, err := fmt.Fprintln(w, "  (No CPU instructions generated)")
		return err
	}
	return cpu.Dump(w, code)
}

// FormatCFGPretty prints blocks in start order, then edges, BFS levels,
// unreachable blocks and dangling-jump warnings.
func FormatCFGPretty(w io.Writer, g *cfg.Graph) {
	if g == nil || len(g.Order) == 0 {
		fmt.Fprintln(w, "  (empty graph)")
		return
	}
	for _, id := range g.Order {
		b := g.Blocks[id]
		var tags []string
		if b.IsEntry {
			tags = append(tags, "entry")
		}
		if b.IsExit {
			tags = append(tags, "exit")
		}
		head := fmt.Sprintf("%s [%d..%d]", b.ID, b.Start, b.End)
		if len(tags) > 0 {
			head += " (" + strings.Join(tags, ", ") + ")"
		}
		fmt.Fprintln(w, head)
		for i, in := range b.Instrs {
			fmt.Fprintf(w, "  %3d: %s\n", b.Start+i, in)
		}
		fmt.Fprintf(w, "  preds: [%s]  succs: [%s]\n", strings.Join(b.Preds, ", "), strings.Join(b.Succs, ", "))
	}

	fmt.Fprintln(w, "edges:")
	for _, e := range g.Edges {
		if e.Label != "" {
			fmt.Fprintf(w, "  %s -> %s  [%s]\n", e.From, e.To, e.Label)
		} else {
			fmt.Fprintf(w, "  %s -> %s\n", e.From, e.To)
		}
	}

	fmt.Fprintln(w, "levels:")
	for depth, ids := range g.Levels() {
		fmt.Fprintf(w, "  %d: %s\n", depth, strings.Join(ids, "  "))
	}
	if dead := g.Unreachable(); len(dead) > 0 {
		fmt.Fprintf(w, "unreachable: %s\n", strings.Join(dead, ", "))
	}
	for _, d := range g.Diagnostics {
		fmt.Fprintf(w, "warning: %s: %s (instruction %d)\n", d.Block, d.Msg, d.Instr)
	}
}

// FormatAllocationPretty prints live ranges, interference edges, the final
// assignment and, when steps is set, the coloring log.
func FormatAllocationPretty(w io.Writer, a regalloc.Allocation, steps bool) {
	if a.Graph == nil || len(a.Graph.Nodes) == 0 {
		fmt.Fprintln(w, "  (No variables to allocate)")
		return
	}
	width := 8
	for _, n := range a.Graph.Nodes {
		width = max(width, runewidth.StringWidth(n))
	}

	fmt.Fprintln(w, "live ranges:")
	for _, r := range a.Ranges {
		fmt.Fprintf(w, "  %s [%d, %d]\n", runewidth.FillRight(r.Variable, width), r.Start, r.End)
	}

	fmt.Fprintf(w, "interference (max degree %d):\n", a.Graph.MaxDegree())
	seen := 0
	for _, e := range a.Graph.Edges {
		// edges are stored once per direction
		if e.From < e.To {
			fmt.Fprintf(w, "  %s -- %s\n", e.From, e.To)
			seen++
		}
	}
	if seen == 0 {
		fmt.Fprintln(w, "  (none)")
	}

	fmt.Fprintln(w, "assignment:")
	for _, n := range a.Graph.Nodes {
		switch reg, ok := a.Registers[n]; {
		case ok:
			fmt.Fprintf(w, "  %s -> %s  (degree %d)\n", runewidth.FillRight(n, width), reg, a.Graph.Degrees[n])
		case a.IsSpilled(n):
			fmt.Fprintf(w, "  %s -> memory  (degree %d)\n", runewidth.FillRight(n, width), a.Graph.Degrees[n])
		}
	}
	if len(a.Spilled) > 0 {
		fmt.Fprintf(w, "spilled: %s\n", strings.Join(a.Spilled, ", "))
	}

	if !steps {
		return
	}
	fmt.Fprintln(w, "steps:")
	for _, s := range a.Steps {
		fmt.Fprintf(w, "  %2d. %s\n", s.Index+1, s.Description)
	}
}

// WriteJSON writes any stage artifact as indented JSON.
func WriteJSON(w io.Writer, v any) error { return writeJSON(w, v) }
