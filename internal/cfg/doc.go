// Package cfg partitions three-address code into basic blocks with the
// leader method and connects them into a control-flow graph.
//
// Leaders are instruction 0, every LABEL, and the instruction after any
// jump. Edges follow the last instruction of each block: an unconditional
// jump links to its label's block, a conditional jump links to its label
// (tagged with the jump's kind) and falls through, anything else falls
// through unlabeled. A jump to a label that does not exist produces no edge
// and is recorded in Graph.Diagnostics.
package cfg
