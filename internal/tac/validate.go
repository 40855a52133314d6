package tac

import (
	"errors"
	"fmt"
)

// Validate checks structural invariants of generated code: labels are
// unique, function brackets balance, and every operand
// slot required by an instruction kind is filled.
// Jump targets are not checked here; the CFG builder reports dangling ones.
func Validate(p Program) error {
	var errs []error
	seen := make(map[string]int)
	depth := 0
	for i := range p.Instrs {
		in := &p.Instrs[i]
		switch in.Kind {
		case InstrLabel:
			if prev, ok := seen[in.Label]; ok {
				errs = append(errs, fmt.Errorf("instr %d: label %s already defined at %d", i, in.Label, prev))
			}
			seen[in.Label] = i
		case InstrFunctionStart:
			depth++
		case InstrFunctionEnd:
			if depth == 0 {
				errs = append(errs, fmt.Errorf("instr %d: FUNCTION_END without FUNCTION_START", i))
				continue
			}
			depth--
		}
		for _, op := range in.Operands() {
			if !op.IsValid() {
				errs = append(errs, fmt.Errorf("instr %d: %s has an empty operand", i, in.Kind))
				break
			}
		}
		if in.Kind.IsJump() && in.Label == "" {
			errs = append(errs, fmt.Errorf("instr %d: %s without target", i, in.Kind))
		}
	}
	if depth != 0 {
		errs = append(errs, errors.New("unterminated function"))
	}
	return errors.Join(errs...)
}
