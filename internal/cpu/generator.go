// Package cpu lowers three-address code to an abstract load/store machine.
//
// Register assignment here is independent of package regalloc: operands are
// materialized on first use into fresh registers r0, r1, ... and cached by
// operand for the rest of the program. Temporaries and names the symbol
// table does not know are used verbatim as register names.
//
// Comparisons lower to CMP followed by a conditional jump whose target is
// the result register, not a label. The sequence is kept as is because
// renderers and golden listings depend on it; it does not produce a value.
package cpu

import (
	"fmt"
	"strconv"

	"tacc/internal/symtab"
	"tacc/internal/tac"
)

var compareJumps = map[tac.InstrKind]Opcode{
	tac.InstrEq: OpJe,
	tac.InstrNe: OpJne,
	tac.InstrLt: OpJl,
	tac.InstrGt: OpJg,
	tac.InstrLe: OpJle,
	tac.InstrGe: OpJge,
}

var aluOps = map[tac.InstrKind]Opcode{
	tac.InstrAdd: OpAdd,
	tac.InstrSub: OpSub,
	tac.InstrMul: OpMul,
	tac.InstrDiv: OpDiv,
	tac.InstrMod: OpMod,
}

// Generate lowers prog. table supplies variable addresses; it is read only.
func Generate(prog tac.Program, table *symtab.Table) ([]Instr, error) {
	g := &generator{table: table, regs: make(map[operandKey]string)}
	for i := range prog.Instrs {
		if err := g.instr(&prog.Instrs[i]); err != nil {
			return nil, fmt.Errorf("instr %d: %w", i, err)
		}
	}
	return g.out, nil
}

type operandKey struct {
	kind tac.OperandKind
	text string
}

type generator struct {
	table   *symtab.Table
	out     []Instr
	regs    map[operandKey]string
	counter int
}

func (g *generator) emit(in Instr) {
	g.out = append(g.out, in)
}

func (g *generator) newRegister() string {
	r := "r" + strconv.Itoa(g.counter)
	g.counter++
	return r
}

// register returns the register holding op, loading it first if needed.
func (g *generator) register(op tac.Operand) string {
	key := operandKey{op.Kind, op.Text}
	if r, ok := g.regs[key]; ok {
		return r
	}
	switch op.Kind {
	case tac.OperandLiteral:
		r := g.newRegister()
		g.emit(Instr{Op: OpLoad, Reg: r, Value: op.Text})
		g.regs[key] = r
		return r
	case tac.OperandVariable:
		if g.table == nil {
			break
		}
		addr, err := g.table.VariableAddress(op.Text)
		if err != nil {
			break
		}
		r := g.newRegister()
		g.emit(Instr{Op: OpLoad, Reg: r, Value: strconv.Itoa(addr)})
		g.regs[key] = r
		return r
	}
	return op.Text
}

func (g *generator) instr(in *tac.Instr) error {
	switch k := in.Kind; {
	case k == tac.InstrAssign:
		target := g.register(in.Target)
		source := g.register(in.Source)
		if target != source {
			g.emit(Instr{Op: OpLoad, Reg: target, Value: source})
		}

	case k.IsArithmetic():
		target := g.register(in.Target)
		left := g.register(in.Left)
		right := g.register(in.Right)
		g.emit(Instr{Op: aluOps[k], Reg: target, Left: left, Right: right})

	case k.IsComparison():
		target := g.register(in.Target)
		left := g.register(in.Left)
		right := g.register(in.Right)
		g.emit(Instr{Op: OpCmp, Left: left, Right: right})
		g.emit(Instr{Op: compareJumps[k], Target: target})

	case k == tac.InstrAnd, k == tac.InstrOr:
		target := g.register(in.Target)
		left := g.register(in.Left)
		right := g.register(in.Right)
		shortLabel, endLabel := g.localLabels()
		jump, shortValue := OpJe, "0"
		if k == tac.InstrOr {
			jump, shortValue = OpJne, "1"
		}
		g.emit(Instr{Op: OpCmp, Left: left, Right: "0"})
		g.emit(Instr{Op: jump, Target: shortLabel})
		g.emit(Instr{Op: OpLoad, Reg: target, Value: right})
		g.emit(Instr{Op: OpJmp, Target: endLabel})
		g.emit(Instr{Op: OpLabel, Name: shortLabel})
		g.emit(Instr{Op: OpLoad, Reg: target, Value: shortValue})
		g.emit(Instr{Op: OpLabel, Name: endLabel})

	case k == tac.InstrNot:
		target := g.register(in.Target)
		source := g.register(in.Source)
		zeroLabel, endLabel := g.localLabels()
		g.emit(Instr{Op: OpCmp, Left: source, Right: "0"})
		g.emit(Instr{Op: OpJe, Target: zeroLabel})
		g.emit(Instr{Op: OpLoad, Reg: target, Value: "0"})
		g.emit(Instr{Op: OpJmp, Target: endLabel})
		g.emit(Instr{Op: OpLabel, Name: zeroLabel})
		g.emit(Instr{Op: OpLoad, Reg: target, Value: "1"})
		g.emit(Instr{Op: OpLabel, Name: endLabel})

	case k == tac.InstrNeg:
		target := g.register(in.Target)
		source := g.register(in.Source)
		g.emit(Instr{Op: OpSub, Reg: target, Left: "0", Right: source})

	case k == tac.InstrLabel:
		g.emit(Instr{Op: OpLabel, Name: in.Label})

	case k == tac.InstrJump:
		g.emit(Instr{Op: OpJmp, Target: in.Label})

	case k.IsConditional():
		cond := g.register(in.Cond)
		jump := OpJe
		if k == tac.InstrJumpIfTrue {
			jump = OpJne
		}
		g.emit(Instr{Op: OpCmp, Left: cond, Right: "0"})
		g.emit(Instr{Op: jump, Target: in.Label})

	case k == tac.InstrCall:
		target := g.register(in.Target)
		for _, arg := range in.Args {
			g.emit(Instr{Op: OpPush, Value: g.register(arg)})
		}
		g.emit(Instr{Op: OpCall, Target: in.Func})
		g.emit(Instr{Op: OpPop, Reg: target})

	case k == tac.InstrReturn:
		if in.HasValue {
			g.emit(Instr{Op: OpPush, Value: g.register(in.Source)})
		}
		g.emit(Instr{Op: OpRet})

	case k == tac.InstrPrint:
		g.emit(Instr{Op: OpPrint, Reg: g.register(in.Source)})

	case k == tac.InstrFunctionStart:
		g.emit(Instr{Op: OpFunctionStart, Name: in.Func})

	case k == tac.InstrFunctionEnd:
		g.emit(Instr{Op: OpFunctionEnd})

	default:
		return fmt.Errorf("unsupported instruction %s", k)
	}
	return nil
}

// localLabels names the two labels of a short branch sequence after the
// positions they will occupy relative to the current output length.
func (g *generator) localLabels() (string, string) {
	n := len(g.out)
	return "L" + strconv.Itoa(n+2), "L" + strconv.Itoa(n+4)
}
