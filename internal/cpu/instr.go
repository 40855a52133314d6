package cpu

// Opcode enumerates abstract CPU operations.
type Opcode uint8

const (
	OpLoad Opcode = iota
	OpStore
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpCmp
	OpJe
	OpJne
	OpJl
	OpJg
	OpJle
	OpJge
	OpJmp
	OpCall
	OpRet
	OpPush
	OpPop
	OpPrint
	OpLabel
	OpFunctionStart
	OpFunctionEnd
)

var opNames = [...]string{
	OpLoad:          "LOAD",
	OpStore:         "STORE",
	OpAdd:           "ADD",
	OpSub:           "SUB",
	OpMul:           "MUL",
	OpDiv:           "DIV",
	OpMod:           "MOD",
	OpCmp:           "CMP",
	OpJe:            "JE",
	OpJne:           "JNE",
	OpJl:            "JL",
	OpJg:            "JG",
	OpJle:           "JLE",
	OpJge:           "JGE",
	OpJmp:           "JMP",
	OpCall:          "CALL",
	OpRet:           "RET",
	OpPush:          "PUSH",
	OpPop:           "POP",
	OpPrint:         "PRINT",
	OpLabel:         "LABEL",
	OpFunctionStart: "FUNCTION_START",
	OpFunctionEnd:   "FUNCTION_END",
}

func (op Opcode) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "OP(?)"
}

// IsALU reports the three-register arithmetic opcodes.
func (op Opcode) IsALU() bool { return op >= OpAdd && op <= OpMod }

// IsBranch reports conditional and unconditional jumps.
func (op Opcode) IsBranch() bool { return op >= OpJe && op <= OpJmp }

// Instr is one abstract CPU instruction. Fields hold register names,
// immediates or labels as plain text:
//
//	LOAD   Reg, Value        STORE Reg, Value (address)
//	ALU    Reg, Left, Right  CMP   Left, Right
//	Jxx    Target            CALL  Target
//	PUSH   Value             POP   Reg
//	PRINT  Reg               LABEL, FUNCTION_START  Name
type Instr struct {
	Op     Opcode `json:"type" msgpack:"op"`
	Reg    string `json:"reg,omitempty" msgpack:"reg,omitempty"`
	Left   string `json:"left,omitempty" msgpack:"left,omitempty"`
	Right  string `json:"right,omitempty" msgpack:"right,omitempty"`
	Value  string `json:"value,omitempty" msgpack:"value,omitempty"`
	Target string `json:"target,omitempty" msgpack:"target,omitempty"`
	Name   string `json:"name,omitempty" msgpack:"name,omitempty"`
}
