package tac

import (
	"fmt"
	"io"
	"strings"
)

// String renders the instruction in conventional three-address notation.
func (in Instr) String() string {
	switch {
	case in.Kind == InstrAssign:
		return fmt.Sprintf("%s = %s", in.Target, in.Source)
	case in.Kind.IsBinary():
		return fmt.Sprintf("%s = %s %s %s", in.Target, in.Left, binaryOpText[in.Kind], in.Right)
	case in.Kind == InstrNot:
		return fmt.Sprintf("%s = !%s", in.Target, in.Source)
	case in.Kind == InstrNeg:
		return fmt.Sprintf("%s = -%s", in.Target, in.Source)
	case in.Kind == InstrLabel:
		return in.Label + ":"
	case in.Kind == InstrJump:
		return "goto " + in.Label
	case in.Kind == InstrJumpIfFalse:
		return fmt.Sprintf("if (!%s) goto %s", in.Cond, in.Label)
	case in.Kind == InstrJumpIfTrue:
		return fmt.Sprintf("if (%s) goto %s", in.Cond, in.Label)
	case in.Kind == InstrCall:
		return fmt.Sprintf("%s = call %s(%s)", in.Target, in.Func, joinOperands(in.Args))
	case in.Kind == InstrReturn:
		if in.HasValue {
			return "return " + in.Source.String()
		}
		return "return"
	case in.Kind == InstrPrint:
		return "print " + in.Source.String()
	case in.Kind == InstrFunctionStart:
		return fmt.Sprintf("function %s(%s) {", in.Func, strings.Join(in.Params, ", "))
	case in.Kind == InstrFunctionEnd:
		return "}"
	}
	return in.Kind.String()
}

func joinOperands(ops []Operand) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, ", ")
}

// Dump writes one numbered line per instruction, counting from 1.
func Dump(w io.Writer, p Program) error {
	for i, in := range p.Instrs {
		if _, err := fmt.Fprintf(w, "%3d. %s\n", i+1, in); err != nil {
			return err
		}
	}
	return nil
}
