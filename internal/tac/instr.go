package tac

// InstrKind enumerates three-address instruction kinds.
type InstrKind uint8

const (
	InstrAssign InstrKind = iota
	InstrAdd
	InstrSub
	InstrMul
	InstrDiv
	InstrMod
	InstrEq
	InstrNe
	InstrLt
	InstrGt
	InstrLe
	InstrGe
	InstrAnd
	InstrOr
	InstrNot
	InstrNeg
	InstrLabel
	InstrJump
	InstrJumpIfFalse
	InstrJumpIfTrue
	InstrCall
	InstrReturn
	InstrPrint
	InstrFunctionStart
	InstrFunctionEnd
)

var instrNames = [...]string{
	InstrAssign:        "ASSIGN",
	InstrAdd:           "ADD",
	InstrSub:           "SUB",
	InstrMul:           "MUL",
	InstrDiv:           "DIV",
	InstrMod:           "MOD",
	InstrEq:            "EQ",
	InstrNe:            "NE",
	InstrLt:            "LT",
	InstrGt:            "GT",
	InstrLe:            "LE",
	InstrGe:            "GE",
	InstrAnd:           "AND",
	InstrOr:            "OR",
	InstrNot:           "NOT",
	InstrNeg:           "NEG",
	InstrLabel:         "LABEL",
	InstrJump:          "JUMP",
	InstrJumpIfFalse:   "JUMP_IF_FALSE",
	InstrJumpIfTrue:    "JUMP_IF_TRUE",
	InstrCall:          "CALL",
	InstrReturn:        "RETURN",
	InstrPrint:         "PRINT",
	InstrFunctionStart: "FUNCTION_START",
	InstrFunctionEnd:   "FUNCTION_END",
}

// String returns the canonical upper-snake name. CFG edge labels reuse it.
func (k InstrKind) String() string {
	if int(k) < len(instrNames) {
		return instrNames[k]
	}
	return "INSTR(?)"
}

var binaryOpText = map[InstrKind]string{
	InstrAdd: "+",
	InstrSub: "-",
	InstrMul: "*",
	InstrDiv: "/",
	InstrMod: "%",
	InstrEq:  "==",
	InstrNe:  "!=",
	InstrLt:  "<",
	InstrGt:  ">",
	InstrLe:  "<=",
	InstrGe:  ">=",
	InstrAnd: "&&",
	InstrOr:  "||",
}

// IsBinary reports whether k has a target and two source operands.
func (k InstrKind) IsBinary() bool { return k >= InstrAdd && k <= InstrOr }

// IsArithmetic reports ADD, SUB, MUL, DIV and MOD.
func (k InstrKind) IsArithmetic() bool { return k >= InstrAdd && k <= InstrMod }

// IsComparison reports EQ, NE, LT, GT, LE and GE.
func (k InstrKind) IsComparison() bool { return k >= InstrEq && k <= InstrGe }

func (k InstrKind) IsUnary() bool { return k == InstrNot || k == InstrNeg }

// IsJump reports whether k transfers control to a label.
func (k InstrKind) IsJump() bool {
	return k == InstrJump || k == InstrJumpIfFalse || k == InstrJumpIfTrue
}

func (k InstrKind) IsConditional() bool {
	return k == InstrJumpIfFalse || k == InstrJumpIfTrue
}

// Instr is one three-address instruction. Which fields are meaningful
// depends on Kind:
//
//	ASSIGN            Target = Source
//	binary ops        Target = Left op Right
//	NOT, NEG          Target = op Source
//	LABEL, JUMP       Label
//	JUMP_IF_*         Cond, Label
//	CALL              Target = Func(Args...)
//	RETURN            Source when HasValue
//	PRINT             Source
//	FUNCTION_START    Func, Params
type Instr struct {
	Kind     InstrKind `json:"type" msgpack:"kind"`
	Target   Operand   `json:"target,omitzero" msgpack:"target,omitempty"`
	Left     Operand   `json:"left,omitzero" msgpack:"left,omitempty"`
	Right    Operand   `json:"right,omitzero" msgpack:"right,omitempty"`
	Source   Operand   `json:"source,omitzero" msgpack:"source,omitempty"`
	Cond     Operand   `json:"condition,omitzero" msgpack:"cond,omitempty"`
	Label    string    `json:"label,omitempty" msgpack:"label,omitempty"`
	Func     string    `json:"function,omitempty" msgpack:"func,omitempty"`
	Args     []Operand `json:"args,omitempty" msgpack:"args,omitempty"`
	Params   []string  `json:"params,omitempty" msgpack:"params,omitempty"`
	HasValue bool      `json:"hasValue,omitempty" msgpack:"has_value,omitempty"`
}

// Defs returns the operands written by the instruction.
// Function parameters count as definitions at FUNCTION_START.
func (in *Instr) Defs() []Operand {
	switch {
	case in.Kind == InstrAssign, in.Kind.IsBinary(), in.Kind.IsUnary(), in.Kind == InstrCall:
		return []Operand{in.Target}
	case in.Kind == InstrFunctionStart:
		out := make([]Operand, len(in.Params))
		for i, p := range in.Params {
			out[i] = Variable(p)
		}
		return out
	}
	return nil
}

// Uses returns the operands read by the instruction, in source order.
func (in *Instr) Uses() []Operand {
	switch {
	case in.Kind == InstrAssign, in.Kind.IsUnary(), in.Kind == InstrPrint:
		return []Operand{in.Source}
	case in.Kind.IsBinary():
		return []Operand{in.Left, in.Right}
	case in.Kind.IsConditional():
		return []Operand{in.Cond}
	case in.Kind == InstrCall:
		return append([]Operand(nil), in.Args...)
	case in.Kind == InstrReturn && in.HasValue:
		return []Operand{in.Source}
	}
	return nil
}

// Operands returns definitions followed by uses.
func (in *Instr) Operands() []Operand {
	return append(in.Defs(), in.Uses()...)
}

// Program is a flat instruction list. Functions are bracketed inline by
// FUNCTION_START and FUNCTION_END.
type Program struct {
	Instrs []Instr `json:"instructions" msgpack:"instrs"`
}

func (p Program) Len() int { return len(p.Instrs) }

func (p Program) Defs(i int) []Operand { return p.Instrs[i].Defs() }

func (p Program) Uses(i int) []Operand { return p.Instrs[i].Uses() }

// LabelIndex maps every LABEL name to its instruction index.
func (p Program) LabelIndex() map[string]int {
	out := make(map[string]int)
	for i := range p.Instrs {
		if p.Instrs[i].Kind == InstrLabel {
			out[p.Instrs[i].Label] = i
		}
	}
	return out
}
