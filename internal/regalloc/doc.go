// Package regalloc assigns variables to a fixed register file by greedy
// coloring of an interference graph.
//
// Liveness is one conservative range per variable: from the first to the
// last textual occurrence in the flat instruction list. A variable that is
// dead between two unrelated uses still occupies the whole span, so the
// graph over-approximates real interference.
//
// Coloring repeatedly takes the remaining node of minimum degree (first in
// insertion order on ties) and gives it the smallest color unused by its
// colored neighbours. When every color is taken the node is spilled and
// stays uncolored; there is no simplify stack and no retry.
package regalloc
