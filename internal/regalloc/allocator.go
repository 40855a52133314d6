package regalloc

import (
	"fmt"
	"slices"
	"strconv"

	"tacc/internal/cfg"
	"tacc/internal/tac"
)

const (
	DefaultRegisters = 8
	DefaultPrefix    = "r"
)

// Config describes the register file.
type Config struct {
	Registers int    `toml:"registers" msgpack:"registers"`
	Prefix    string `toml:"prefix" msgpack:"prefix"`
}

// Normalize fills zero or negative fields with defaults.
func (c Config) Normalize() Config {
	if c.Registers <= 0 {
		c.Registers = DefaultRegisters
	}
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	return c
}

type Action string

const (
	ActionColor Action = "color"
	ActionSpill Action = "spill"
)

// Step is one coloring decision. Color is -1 and Register empty for spills.
type Step struct {
	Index       int            `json:"step" msgpack:"index"`
	Description string         `json:"description" msgpack:"description"`
	Action      Action         `json:"action" msgpack:"action"`
	Node        string         `json:"node" msgpack:"node"`
	Color       int            `json:"color" msgpack:"color"`
	Register    string         `json:"register,omitempty" msgpack:"register,omitempty"`
	Snapshot    map[string]int `json:"graph" msgpack:"snapshot"`
}

// Allocation is the result of one Allocate call. Every graph node is either
// in Registers or in Spilled, never both.
type Allocation struct {
	Registers map[string]string   `json:"variableToRegister" msgpack:"registers"`
	Spilled   []string            `json:"spilledVariables" msgpack:"spilled"`
	Graph     *InterferenceGraph  `json:"interferenceGraph" msgpack:"graph"`
	Ranges    []LiveRange         `json:"liveRanges" msgpack:"ranges"`
	Steps     []Step              `json:"allocationSteps" msgpack:"steps"`
	BlockVars map[string][]string `json:"blockVariables,omitempty" msgpack:"block_vars,omitempty"`
	File      []string            `json:"registerFile" msgpack:"file"`
}

// IsSpilled reports whether v was left without a register.
func (a *Allocation) IsSpilled(v string) bool {
	return slices.Contains(a.Spilled, v)
}

// Allocator holds only configuration; each Allocate call starts from scratch.
type Allocator struct {
	conf      Config
	registers []string
}

func New(conf Config) *Allocator {
	conf = conf.Normalize()
	regs := make([]string, conf.Registers)
	for i := range regs {
		regs[i] = conf.Prefix + strconv.Itoa(i)
	}
	return &Allocator{conf: conf, registers: regs}
}

func (a *Allocator) Config() Config { return a.conf }

// Registers returns the register names, color i maps to element i.
func (a *Allocator) Registers() []string {
	return slices.Clone(a.registers)
}

// Allocate computes live ranges over prog, builds the interference graph and
// colors it. g is optional and only used to group variables per block.
func (a *Allocator) Allocate(g *cfg.Graph, prog tac.Program) Allocation {
	ranges := LiveRanges(prog)
	graph := BuildInterference(ranges)
	steps := a.color(graph)

	out := Allocation{
		Registers: make(map[string]string, len(graph.Colors)),
		Graph:     graph,
		Ranges:    ranges,
		Steps:     steps,
		File:      a.Registers(),
	}
	for _, v := range graph.Nodes {
		if c, ok := graph.Colors[v]; ok && c < len(a.registers) {
			out.Registers[v] = a.registers[c]
			continue
		}
		out.Spilled = append(out.Spilled, v)
	}
	if g != nil {
		out.BlockVars = blockVariables(g)
	}
	return out
}

func (a *Allocator) color(graph *InterferenceGraph) []Step {
	worklist := slices.Clone(graph.Nodes)
	var steps []Step
	for len(worklist) > 0 {
		pick := 0
		for i, v := range worklist {
			if graph.Degrees[v] < graph.Degrees[worklist[pick]] {
				pick = i
			}
		}
		node := worklist[pick]
		worklist = slices.Delete(worklist, pick, pick+1)

		step := Step{Index: len(steps), Node: node, Color: -1}
		if c, ok := a.freeColor(graph, node); ok {
			graph.Colors[node] = c
			step.Action = ActionColor
			step.Color = c
			step.Register = a.registers[c]
			step.Description = fmt.Sprintf("Colored variable %s with color %d", node, c)
		} else {
			step.Action = ActionSpill
			step.Description = fmt.Sprintf("Spilled variable %s (no available colors)", node)
		}
		step.Snapshot = graph.Snapshot()
		steps = append(steps, step)
	}
	return steps
}

// freeColor returns the smallest color no colored neighbour of node uses.
func (a *Allocator) freeColor(graph *InterferenceGraph, node string) (int, bool) {
	used := make([]bool, len(a.registers))
	for _, n := range graph.Neighbors(node) {
		if c, ok := graph.Colors[n]; ok && c < len(used) {
			used[c] = true
		}
	}
	for c, taken := range used {
		if !taken {
			return c, true
		}
	}
	return 0, false
}

// blockVariables lists the variables each block mentions, first occurrence first.
func blockVariables(g *cfg.Graph) map[string][]string {
	out := make(map[string][]string, len(g.Blocks))
	for _, id := range g.Order {
		var vars []string
		for i := range g.Blocks[id].Instrs {
			for _, op := range g.Blocks[id].Instrs[i].Operands() {
				if op.IsVariable() && !slices.Contains(vars, op.Text) {
					vars = append(vars, op.Text)
				}
			}
		}
		out[id] = vars
	}
	return out
}
