package tac

import (
	"fmt"

	"tacc/internal/ast"
	"tacc/internal/diag"
	"tacc/internal/source"
	"tacc/internal/symtab"
)

// GenError aborts generation of the whole program.
type GenError struct {
	Code diag.Code
	Span source.Span
	Msg  string
	Err  error
}

func (e *GenError) Error() string { return e.Msg }

func (e *GenError) Unwrap() error { return e.Err }

// Generate lowers a parsed program to three-address code and records every
// declaration in table. Temp and label numbering starts at zero on each call.
// The tree must come from a parse that reported no errors.
func Generate(b *ast.Builder, table *symtab.Table) (Program, error) {
	g := &generator{b: b, table: table}
	if err := g.stmts(b.Program.Stmts); err != nil {
		return Program{}, err
	}
	return Program{Instrs: g.out}, nil
}

type generator struct {
	b     *ast.Builder
	table *symtab.Table
	out   []Instr

	tempCounter  int
	labelCounter int
}

func (g *generator) newTemp() Operand {
	t := Temp(g.tempCounter)
	g.tempCounter++
	return t
}

func (g *generator) newLabel() string {
	l := Label(g.labelCounter)
	g.labelCounter++
	return l.Text
}

func (g *generator) emit(in Instr) {
	g.out = append(g.out, in)
}

func (g *generator) malformed(span source.Span, format string, args ...any) *GenError {
	return &GenError{Code: diag.GenMalformedNode, Span: span, Msg: fmt.Sprintf(format, args...)}
}

func (g *generator) stmts(ids []ast.StmtID) error {
	for _, id := range ids {
		if err := g.stmt(id); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) stmt(id ast.StmtID) error {
	st := g.b.Stmts.Get(id)
	if st == nil {
		return g.malformed(source.Span{}, "invalid statement node %d", id)
	}
	switch st.Kind {
	case ast.StmtLet:
		let, _ := g.b.Stmts.Let(id)
		return g.letStmt(let)

	case ast.StmtAssign:
		as, _ := g.b.Stmts.Assign(id)
		val, err := g.expr(as.Value)
		if err != nil {
			return err
		}
		g.emit(Instr{Kind: InstrAssign, Target: Variable(as.Name), Source: val})
		return nil

	case ast.StmtIf:
		ifs, _ := g.b.Stmts.If(id)
		return g.ifStmt(ifs)

	case ast.StmtWhile:
		ws, _ := g.b.Stmts.While(id)
		return g.whileStmt(ws)

	case ast.StmtFunction:
		fn, _ := g.b.Stmts.Function(id)
		return g.functionStmt(fn)

	case ast.StmtReturn:
		ret, _ := g.b.Stmts.Return(id)
		if !ret.Value.IsValid() {
			g.emit(Instr{Kind: InstrReturn})
			return nil
		}
		val, err := g.expr(ret.Value)
		if err != nil {
			return err
		}
		g.emit(Instr{Kind: InstrReturn, Source: val, HasValue: true})
		return nil

	case ast.StmtPrint:
		ps, _ := g.b.Stmts.Print(id)
		val, err := g.expr(ps.Value)
		if err != nil {
			return err
		}
		g.emit(Instr{Kind: InstrPrint, Source: val})
		return nil

	case ast.StmtExpr:
		es, _ := g.b.Stmts.Expr(id)
		_, err := g.expr(es.Value)
		return err
	}
	return g.malformed(st.Span, "unrecognized statement kind %s", st.Kind)
}

func (g *generator) letStmt(let *ast.LetStmt) error {
	val, err := g.expr(let.Value)
	if err != nil {
		return err
	}
	if err := g.table.DeclareVariable(let.Name, g.inferType(let.Value)); err != nil {
		return &GenError{Code: diag.GenRedeclaredVariable, Span: let.NameSpan, Msg: err.Error(), Err: err}
	}
	g.emit(Instr{Kind: InstrAssign, Target: Variable(let.Name), Source: val})
	return nil
}

// inferType looks only at the shape of the initializer: a literal gives its
// own kind, a bare identifier copies the known type, anything else is a number.
func (g *generator) inferType(id ast.ExprID) symtab.DataType {
	expr := g.b.Exprs.Get(id)
	if expr == nil {
		return symtab.TypeNumber
	}
	switch expr.Kind {
	case ast.ExprLit:
		lit, _ := g.b.Exprs.Literal(id)
		switch lit.Kind {
		case ast.LitString:
			return symtab.TypeString
		case ast.LitBool:
			return symtab.TypeBoolean
		}
	case ast.ExprIdent:
		ident, _ := g.b.Exprs.Ident(id)
		if sym, ok := g.table.Lookup(ident.Name); ok && !sym.IsFunction {
			return sym.Type
		}
	}
	return symtab.TypeNumber
}

func (g *generator) ifStmt(ifs *ast.IfStmt) error {
	cond, err := g.expr(ifs.Cond)
	if err != nil {
		return err
	}
	elseLabel := g.newLabel()
	endLabel := g.newLabel()

	g.emit(Instr{Kind: InstrJumpIfFalse, Cond: cond, Label: elseLabel})
	if err := g.stmts(ifs.Then); err != nil {
		return err
	}
	g.emit(Instr{Kind: InstrJump, Label: endLabel})
	g.emit(Instr{Kind: InstrLabel, Label: elseLabel})
	if ifs.HasElse {
		if err := g.stmts(ifs.Else); err != nil {
			return err
		}
	}
	g.emit(Instr{Kind: InstrLabel, Label: endLabel})
	return nil
}

func (g *generator) whileStmt(ws *ast.WhileStmt) error {
	startLabel := g.newLabel()
	endLabel := g.newLabel()

	g.emit(Instr{Kind: InstrLabel, Label: startLabel})
	cond, err := g.expr(ws.Cond)
	if err != nil {
		return err
	}
	g.emit(Instr{Kind: InstrJumpIfFalse, Cond: cond, Label: endLabel})
	if err := g.stmts(ws.Body); err != nil {
		return err
	}
	g.emit(Instr{Kind: InstrJump, Label: startLabel})
	g.emit(Instr{Kind: InstrLabel, Label: endLabel})
	return nil
}

func (g *generator) functionStmt(fn *ast.FunctionStmt) error {
	params := make([]string, len(fn.Params))
	paramTypes := make([]symtab.DataType, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Name
		paramTypes[i] = symtab.TypeNumber
	}
	// registered before the body so recursive calls resolve
	if err := g.table.DeclareFunction(fn.Name, symtab.TypeNumber, paramTypes); err != nil {
		return &GenError{Code: diag.GenRedeclaredFunction, Span: fn.NameSpan, Msg: err.Error(), Err: err}
	}

	g.emit(Instr{Kind: InstrFunctionStart, Func: fn.Name, Params: params})

	g.table.EnterScope()
	defer g.table.ExitScope()
	for _, p := range fn.Params {
		if err := g.table.DeclareVariable(p.Name, symtab.TypeNumber); err != nil {
			return &GenError{Code: diag.GenRedeclaredVariable, Span: p.Span, Msg: err.Error(), Err: err}
		}
	}
	if err := g.stmts(fn.Body); err != nil {
		return err
	}
	g.emit(Instr{Kind: InstrFunctionEnd})
	return nil
}

var binaryKinds = map[ast.ExprBinaryOp]InstrKind{
	ast.ExprBinaryAdd: InstrAdd,
	ast.ExprBinarySub: InstrSub,
	ast.ExprBinaryMul: InstrMul,
	ast.ExprBinaryDiv: InstrDiv,
	ast.ExprBinaryMod: InstrMod,
	ast.ExprBinaryEq:  InstrEq,
	ast.ExprBinaryNe:  InstrNe,
	ast.ExprBinaryLt:  InstrLt,
	ast.ExprBinaryGt:  InstrGt,
	ast.ExprBinaryLe:  InstrLe,
	ast.ExprBinaryGe:  InstrGe,
	ast.ExprBinaryAnd: InstrAnd,
	ast.ExprBinaryOr:  InstrOr,
}

var litKinds = map[ast.ExprLitKind]LitKind{
	ast.LitNumber: LitNumber,
	ast.LitString: LitString,
	ast.LitBool:   LitBool,
}

// expr returns the operand holding the value of id, emitting whatever
// instructions are needed to compute it.
func (g *generator) expr(id ast.ExprID) (Operand, error) {
	expr := g.b.Exprs.Get(id)
	if expr == nil {
		return Operand{}, g.malformed(source.Span{}, "invalid expression node %d", id)
	}
	switch expr.Kind {
	case ast.ExprLit:
		lit, _ := g.b.Exprs.Literal(id)
		kind, ok := litKinds[lit.Kind]
		if !ok {
			return Operand{}, g.malformed(expr.Span, "unrecognized literal kind %s", lit.Kind)
		}
		return Literal(kind, lit.Value), nil

	case ast.ExprIdent:
		ident, _ := g.b.Exprs.Ident(id)
		return Variable(ident.Name), nil

	case ast.ExprGroup:
		grp, _ := g.b.Exprs.Group(id)
		return g.expr(grp.Inner)

	case ast.ExprBinary:
		bin, _ := g.b.Exprs.Binary(id)
		kind, ok := binaryKinds[bin.Op]
		if !ok {
			return Operand{}, g.malformed(expr.Span, "unrecognized binary operator %d", bin.Op)
		}
		left, err := g.expr(bin.Left)
		if err != nil {
			return Operand{}, err
		}
		right, err := g.expr(bin.Right)
		if err != nil {
			return Operand{}, err
		}
		t := g.newTemp()
		g.emit(Instr{Kind: kind, Target: t, Left: left, Right: right})
		return t, nil

	case ast.ExprUnary:
		un, _ := g.b.Exprs.Unary(id)
		var kind InstrKind
		switch un.Op {
		case ast.ExprUnaryNot:
			kind = InstrNot
		case ast.ExprUnaryNeg:
			kind = InstrNeg
		default:
			return Operand{}, g.malformed(expr.Span, "unrecognized unary operator %d", un.Op)
		}
		src, err := g.expr(un.Operand)
		if err != nil {
			return Operand{}, err
		}
		t := g.newTemp()
		g.emit(Instr{Kind: kind, Target: t, Source: src})
		return t, nil

	case ast.ExprCall:
		call, _ := g.b.Exprs.Call(id)
		args := make([]Operand, 0, len(call.Args))
		for _, a := range call.Args {
			op, err := g.expr(a)
			if err != nil {
				return Operand{}, err
			}
			args = append(args, op)
		}
		t := g.newTemp()
		g.emit(Instr{Kind: InstrCall, Target: t, Func: call.Name, Args: args})
		return t, nil
	}
	return Operand{}, g.malformed(expr.Span, "unrecognized expression kind %s", expr.Kind)
}
