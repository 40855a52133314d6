package cfg

// Levels groups blocks reachable from the entry by BFS depth.
// Blocks keep start order inside a level.
func (g *Graph) Levels() [][]string {
	if g.Entry == "" {
		return nil
	}
	depth := map[string]int{g.Entry: 0}
	queue := []string{g.Entry}
	maxDepth := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, s := range g.Blocks[id].Succs {
			if _, seen := depth[s]; seen {
				continue
			}
			depth[s] = depth[id] + 1
			maxDepth = max(maxDepth, depth[s])
			queue = append(queue, s)
		}
	}

	levels := make([][]string, maxDepth+1)
	for _, id := range g.Order {
		if d, ok := depth[id]; ok {
			levels[d] = append(levels[d], id)
		}
	}
	return levels
}

// Unreachable lists blocks that no path from the entry reaches.
func (g *Graph) Unreachable() []string {
	reached := make(map[string]bool, len(g.Blocks))
	for _, level := range g.Levels() {
		for _, id := range level {
			reached[id] = true
		}
	}
	var out []string
	for _, id := range g.Order {
		if !reached[id] {
			out = append(out, id)
		}
	}
	return out
}
