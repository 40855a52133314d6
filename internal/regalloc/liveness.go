package regalloc

import (
	"tacc/internal/tac"
)

type LiveRange struct {
	Variable string `json:"variable" msgpack:"variable"`
	Start    int    `json:"start" msgpack:"start"`
	End      int    `json:"end" msgpack:"end"`
}

// Overlaps reports whether the two ranges share at least one index.
func (r LiveRange) Overlaps(o LiveRange) bool {
	return !(r.End < o.Start || o.End < r.Start)
}

// LiveRanges scans prog once and returns a range for every variable,
// in order of first occurrence. Literals and temporaries are ignored.
func LiveRanges(prog tac.Program) []LiveRange {
	var ranges []LiveRange
	index := make(map[string]int)
	for i := range prog.Instrs {
		for _, op := range prog.Instrs[i].Operands() {
			if !op.IsVariable() {
				continue
			}
			if at, ok := index[op.Text]; ok {
				ranges[at].End = i
				continue
			}
			index[op.Text] = len(ranges)
			ranges = append(ranges, LiveRange{Variable: op.Text, Start: i, End: i})
		}
	}
	return ranges
}
