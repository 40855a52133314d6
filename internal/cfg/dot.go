package cfg

import (
	"fmt"
	"io"
	"strings"
)

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// WriteDOT renders the graph in Graphviz syntax.
func (g *Graph) WriteDOT(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("digraph cfg {\n")
	sb.WriteString("  node [shape=box, fontname=\"monospace\"];\n")
	for _, id := range g.Order {
		b := g.Blocks[id]
		var label strings.Builder
		label.WriteString(id)
		label.WriteString(`\l`)
		for i, in := range b.Instrs {
			label.WriteString(dotEscaper.Replace(fmt.Sprintf("%d: %s", b.Start+i, in)))
			label.WriteString(`\l`)
		}
		attrs := ""
		switch {
		case b.IsEntry && b.IsExit:
			attrs = ", peripheries=2, style=bold"
		case b.IsEntry:
			attrs = ", style=bold"
		case b.IsExit:
			attrs = ", peripheries=2"
		}
		fmt.Fprintf(&sb, "  %q [label=\"%s\"%s];\n", id, label.String(), attrs)
	}
	for _, e := range g.Edges {
		if e.Label == "" {
			fmt.Fprintf(&sb, "  %q -> %q;\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&sb, "  %q -> %q [label=%q];\n", e.From, e.To, e.Label)
	}
	for _, d := range g.Diagnostics {
		fmt.Fprintf(&sb, "  // %s: %s\n", d.Block, d.Msg)
	}
	sb.WriteString("}\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
