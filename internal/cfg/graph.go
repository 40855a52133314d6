package cfg

import (
	"slices"
	"strconv"

	"tacc/internal/tac"
)

// EdgeFallThrough labels the not-taken edge of a conditional jump.
const EdgeFallThrough = "fall-through"

type Block struct {
	ID      string      `json:"id" msgpack:"id"`
	Start   int         `json:"startLine" msgpack:"start"`
	End     int         `json:"endLine" msgpack:"end"` // inclusive
	Instrs  []tac.Instr `json:"instructions" msgpack:"instrs"`
	Preds   []string    `json:"predecessors" msgpack:"preds"`
	Succs   []string    `json:"successors" msgpack:"succs"`
	IsEntry bool        `json:"isEntry" msgpack:"is_entry"`
	IsExit  bool        `json:"isExit" msgpack:"is_exit"`
}

// Last returns the block's final instruction.
func (b *Block) Last() *tac.Instr {
	return &b.Instrs[len(b.Instrs)-1]
}

// Edge is directed. Label is empty for unconditional transfers.
type Edge struct {
	From  string `json:"from" msgpack:"from"`
	To    string `json:"to" msgpack:"to"`
	Label string `json:"label,omitempty" msgpack:"label,omitempty"`
}

// Diagnostic describes a jump whose target label is missing.
type Diagnostic struct {
	Block string `json:"block" msgpack:"block"`
	Instr int    `json:"instr" msgpack:"instr"`
	Label string `json:"label" msgpack:"label"`
	Msg   string `json:"message" msgpack:"msg"`
}

type Graph struct {
	Blocks      map[string]*Block `json:"blocks" msgpack:"blocks"`
	Order       []string          `json:"order" msgpack:"order"` // by start index
	Entry       string            `json:"entryBlock" msgpack:"entry"`
	Exits       []string          `json:"exitBlocks" msgpack:"exits"`
	Edges       []Edge            `json:"edges" msgpack:"edges"`
	Diagnostics []Diagnostic      `json:"diagnostics,omitempty" msgpack:"diagnostics,omitempty"`
	NumInstrs   int               `json:"instructionCount" msgpack:"num_instrs"`
}

func blockID(start int) string {
	return "B" + strconv.Itoa(start)
}

// Build constructs the graph for p. It never fails; missing jump targets are
// reported through Graph.Diagnostics.
func Build(p tac.Program) *Graph {
	g := &Graph{Blocks: make(map[string]*Block), NumInstrs: p.Len()}
	if p.Len() == 0 {
		return g
	}

	leaders := findLeaders(p)
	for i, start := range leaders {
		end := p.Len() - 1
		if i+1 < len(leaders) {
			end = leaders[i+1] - 1
		}
		b := &Block{
			ID:     blockID(start),
			Start:  start,
			End:    end,
			Instrs: slices.Clone(p.Instrs[start : end+1]),
		}
		g.Blocks[b.ID] = b
		g.Order = append(g.Order, b.ID)
	}

	// каждый LABEL является лидером, значит начинает свой блок
	byLabel := make(map[string]string)
	for label, at := range p.LabelIndex() {
		byLabel[label] = blockID(at)
	}

	for i, id := range g.Order {
		b := g.Blocks[id]
		next := ""
		if i+1 < len(g.Order) {
			next = g.Order[i+1]
		}
		last := b.Last()
		switch {
		case last.Kind == tac.InstrJump:
			g.jumpEdge(b, last, byLabel, "")
		case last.Kind.IsConditional():
			g.jumpEdge(b, last, byLabel, last.Kind.String())
			if next != "" {
				g.addEdge(b.ID, next, EdgeFallThrough)
			}
		default:
			if next != "" {
				g.addEdge(b.ID, next, "")
			}
		}
	}

	g.Entry = g.Order[0]
	g.Blocks[g.Entry].IsEntry = true
	for _, id := range g.Order {
		b := g.Blocks[id]
		if len(b.Succs) == 0 {
			b.IsExit = true
			g.Exits = append(g.Exits, id)
		}
	}
	return g
}

func findLeaders(p tac.Program) []int {
	leaders := []int{0}
	for i := range p.Instrs {
		kind := p.Instrs[i].Kind
		if kind == tac.InstrLabel && i > 0 {
			leaders = append(leaders, i)
		}
		if kind.IsJump() && i+1 < p.Len() {
			leaders = append(leaders, i+1)
		}
	}
	slices.Sort(leaders)
	return slices.Compact(leaders)
}

func (g *Graph) jumpEdge(b *Block, last *tac.Instr, byLabel map[string]string, label string) {
	target, ok := byLabel[last.Label]
	if !ok {
		g.Diagnostics = append(g.Diagnostics, Diagnostic{
			Block: b.ID,
			Instr: b.End,
			Label: last.Label,
			Msg:   "jump to undefined label " + last.Label,
		})
		return
	}
	g.addEdge(b.ID, target, label)
}

func (g *Graph) addEdge(from, to, label string) {
	g.Edges = append(g.Edges, Edge{From: from, To: to, Label: label})
	src, dst := g.Blocks[from], g.Blocks[to]
	src.Succs = insertSorted(src.Succs, to)
	dst.Preds = insertSorted(dst.Preds, from)
}

// insertSorted keeps ids ordered by block start, without duplicates.
func insertSorted(ids []string, id string) []string {
	pos, found := slices.BinarySearchFunc(ids, id, compareIDs)
	if found {
		return ids
	}
	return slices.Insert(ids, pos, id)
}

func compareIDs(a, b string) int {
	na, _ := strconv.Atoi(a[1:])
	nb, _ := strconv.Atoi(b[1:])
	return na - nb
}

// OutEdges returns the edges leaving id, in creation order.
func (g *Graph) OutEdges(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// BlockOf returns the block containing instruction index i.
func (g *Graph) BlockOf(i int) (*Block, bool) {
	pos, found := slices.BinarySearchFunc(g.Order, i, func(id string, target int) int {
		return g.Blocks[id].Start - target
	})
	if !found {
		pos--
	}
	if pos < 0 || pos >= len(g.Order) {
		return nil, false
	}
	b := g.Blocks[g.Order[pos]]
	if i > b.End {
		return nil, false
	}
	return b, true
}
