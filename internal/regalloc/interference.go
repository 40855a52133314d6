package regalloc

import (
	"maps"
	"slices"
)

type InterferenceEdge struct {
	From string `json:"from" msgpack:"from"`
	To   string `json:"to" msgpack:"to"`
}

// InterferenceGraph stores every undirected edge twice, once per direction.
// Nodes keeps insertion order, which is the coloring tie-breaker.
type InterferenceGraph struct {
	Nodes   []string           `json:"nodes" msgpack:"nodes"`
	Edges   []InterferenceEdge `json:"edges" msgpack:"edges"`
	Colors  map[string]int     `json:"nodeColors" msgpack:"colors"`
	Degrees map[string]int     `json:"nodeDegrees" msgpack:"degrees"`

	adj map[string][]string
}

// BuildInterference connects every pair of overlapping ranges.
func BuildInterference(ranges []LiveRange) *InterferenceGraph {
	g := &InterferenceGraph{
		Nodes:   make([]string, 0, len(ranges)),
		Colors:  make(map[string]int),
		Degrees: make(map[string]int, len(ranges)),
		adj:     make(map[string][]string, len(ranges)),
	}
	for _, r := range ranges {
		g.Nodes = append(g.Nodes, r.Variable)
		g.Degrees[r.Variable] = 0
	}
	for i := range ranges {
		for j := i + 1; j < len(ranges); j++ {
			if ranges[i].Overlaps(ranges[j]) {
				g.addEdge(ranges[i].Variable, ranges[j].Variable)
			}
		}
	}
	return g
}

func (g *InterferenceGraph) addEdge(a, b string) {
	g.Edges = append(g.Edges, InterferenceEdge{From: a, To: b}, InterferenceEdge{From: b, To: a})
	g.Degrees[a]++
	g.Degrees[b]++
	g.adj[a] = append(g.adj[a], b)
	g.adj[b] = append(g.adj[b], a)
}

// Neighbors returns the nodes sharing an edge with v.
func (g *InterferenceGraph) Neighbors(v string) []string {
	if g.adj == nil {
		// decoded from cache: unexported index is not serialized
		g.adj = make(map[string][]string, len(g.Nodes))
		for _, e := range g.Edges {
			g.adj[e.From] = append(g.adj[e.From], e.To)
		}
	}
	return g.adj[v]
}

func (g *InterferenceGraph) Interferes(a, b string) bool {
	return slices.Contains(g.Neighbors(a), b)
}

// Snapshot copies the current coloring.
func (g *InterferenceGraph) Snapshot() map[string]int {
	return maps.Clone(g.Colors)
}

// MaxDegree returns the largest node degree, 0 for an empty graph.
func (g *InterferenceGraph) MaxDegree() int {
	m := 0
	for _, d := range g.Degrees {
		m = max(m, d)
	}
	return m
}
