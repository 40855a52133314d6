package cfg

import (
	"errors"
	"fmt"
	"slices"
)

// Validate checks the graph invariants and reports every violation at once.
func (g *Graph) Validate() error {
	var errs []error

	// 1. Blocks partition [0, total) in order
	next := 0
	for _, id := range g.Order {
		b, ok := g.Blocks[id]
		if !ok {
			errs = append(errs, fmt.Errorf("order lists unknown block %s", id))
			continue
		}
		if b.Start != next {
			errs = append(errs, fmt.Errorf("block %s starts at %d, expected %d", id, b.Start, next))
		}
		if b.End < b.Start || len(b.Instrs) != b.End-b.Start+1 {
			errs = append(errs, fmt.Errorf("block %s has a bad range [%d, %d] for %d instrs", id, b.Start, b.End, len(b.Instrs)))
		}
		next = b.End + 1
	}
	if next != g.NumInstrs {
		errs = append(errs, fmt.Errorf("blocks cover %d instructions, expected %d", next, g.NumInstrs))
	}
	if len(g.Order) != len(g.Blocks) {
		errs = append(errs, fmt.Errorf("%d blocks in order, %d in map", len(g.Order), len(g.Blocks)))
	}

	// 2. Edge endpoints exist and agree with Preds/Succs
	for _, e := range g.Edges {
		src, okFrom := g.Blocks[e.From]
		dst, okTo := g.Blocks[e.To]
		if !okFrom || !okTo {
			errs = append(errs, fmt.Errorf("edge %s -> %s has a missing endpoint", e.From, e.To))
			continue
		}
		if !slices.Contains(src.Succs, e.To) || !slices.Contains(dst.Preds, e.From) {
			errs = append(errs, fmt.Errorf("edge %s -> %s missing from succs/preds", e.From, e.To))
		}
	}

	// 3. Out-edge count per terminator
	dangling := make(map[string]bool, len(g.Diagnostics))
	for _, d := range g.Diagnostics {
		dangling[d.Block] = true
	}
	for i, id := range g.Order {
		b, ok := g.Blocks[id]
		if !ok || len(b.Instrs) == 0 {
			continue
		}
		out := len(g.OutEdges(id))
		last := b.Last()
		isLast := i == len(g.Order)-1
		want := 1
		switch {
		case last.Kind.IsConditional():
			want = 2
			if isLast {
				want--
			}
			if dangling[id] {
				want--
			}
		case last.Kind.IsJump():
			if dangling[id] {
				want = 0
			}
		case isLast:
			want = 0
		}
		if out != want {
			errs = append(errs, fmt.Errorf("block %s ends with %s and has %d out-edges, expected %d", id, last.Kind, out, want))
		}
		if b.IsExit != (len(b.Succs) == 0) {
			errs = append(errs, fmt.Errorf("block %s exit flag disagrees with its successors", id))
		}
	}

	// 4. Exactly one entry, the first block
	entries := 0
	for _, b := range g.Blocks {
		if b.IsEntry {
			entries++
		}
	}
	switch {
	case len(g.Blocks) == 0:
		if entries != 0 || g.Entry != "" {
			errs = append(errs, errors.New("empty graph has an entry"))
		}
	case entries != 1:
		errs = append(errs, fmt.Errorf("expected exactly one entry block, found %d", entries))
	case g.Entry != g.Order[0]:
		errs = append(errs, fmt.Errorf("entry is %s, expected %s", g.Entry, g.Order[0]))
	}

	return errors.Join(errs...)
}
