package cpu

import (
	"fmt"
	"io"
)

func (in Instr) String() string {
	switch {
	case in.Op == OpLoad:
		return fmt.Sprintf("LOAD %s, %s", in.Reg, in.Value)
	case in.Op == OpStore:
		return fmt.Sprintf("STORE %s, %s", in.Reg, in.Value)
	case in.Op.IsALU():
		return fmt.Sprintf("%s %s, %s, %s", in.Op, in.Reg, in.Left, in.Right)
	case in.Op == OpCmp:
		return fmt.Sprintf("CMP %s, %s", in.Left, in.Right)
	case in.Op.IsBranch(), in.Op == OpCall:
		return fmt.Sprintf("%s %s", in.Op, in.Target)
	case in.Op == OpRet, in.Op == OpFunctionEnd:
		return "RET"
	case in.Op == OpPush:
		return "PUSH " + in.Value
	case in.Op == OpPop:
		return "POP " + in.Reg
	case in.Op == OpPrint:
		return "PRINT " + in.Reg
	case in.Op == OpLabel, in.Op == OpFunctionStart:
		return in.Name + ":"
	}
	return in.Op.String()
}

// Dump writes one numbered line per instruction, counting from 1.
func Dump(w io.Writer, code []Instr) error {
	for i, in := range code {
		if _, err := fmt.Fprintf(w, "%3d. %s\n", i+1, in); err != nil {
			return err
		}
	}
	return nil
}
