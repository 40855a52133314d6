package ast

import (
	"tacc/internal/source"
)

type StmtKind uint8

const (
	StmtLet StmtKind = iota
	StmtAssign
	StmtIf
	StmtWhile
	StmtFunction
	StmtReturn
	StmtPrint
	StmtExpr
)

func (k StmtKind) String() string {
	switch k {
	case StmtLet:
		return "VariableDeclaration"
	case StmtAssign:
		return "Assignment"
	case StmtIf:
		return "IfStatement"
	case StmtWhile:
		return "WhileStatement"
	case StmtFunction:
		return "FunctionDeclaration"
	case StmtReturn:
		return "ReturnStatement"
	case StmtPrint:
		return "PrintStatement"
	case StmtExpr:
		return "ExpressionStatement"
	}
	return "Stmt(?)"
}

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

// LetStmt is `let name = value`.
type LetStmt struct {
	Name     string
	NameSpan source.Span
	Value    ExprID
}

// AssignStmt is `name = value`; the target must already exist at run time.
type AssignStmt struct {
	Name     string
	NameSpan source.Span
	Value    ExprID
}

type IfStmt struct {
	Cond    ExprID
	Then    []StmtID
	Else    []StmtID
	HasElse bool
}

type WhileStmt struct {
	Cond ExprID
	Body []StmtID
}

type Param struct {
	Name string
	Span source.Span
}

type FunctionStmt struct {
	Name     string
	NameSpan source.Span
	Params   []Param
	Body     []StmtID
}

// ReturnStmt.Value is NoExprID for a bare `return`.
type ReturnStmt struct {
	Value ExprID
}

type PrintStmt struct {
	Value ExprID
}

type ExprStmt struct {
	Value ExprID
}

type Stmts struct {
	Arena     *Arena[Stmt]
	Lets      *Arena[LetStmt]
	Assigns   *Arena[AssignStmt]
	Ifs       *Arena[IfStmt]
	Whiles    *Arena[WhileStmt]
	Functions *Arena[FunctionStmt]
	Returns   *Arena[ReturnStmt]
	Prints    *Arena[PrintStmt]
	Exprs     *Arena[ExprStmt]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 7
	}
	small := max(capHint/8, 4)
	return &Stmts{
		Arena:     NewArena[Stmt](capHint),
		Lets:      NewArena[LetStmt](capHint / 2),
		Assigns:   NewArena[AssignStmt](capHint / 2),
		Ifs:       NewArena[IfStmt](small),
		Whiles:    NewArena[WhileStmt](small),
		Functions: NewArena[FunctionStmt](small),
		Returns:   NewArena[ReturnStmt](small),
		Prints:    NewArena[PrintStmt](capHint / 4),
		Exprs:     NewArena[ExprStmt](small),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload uint32) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{
		Kind:    kind,
		Span:    span,
		Payload: PayloadID(payload),
	}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) payload(id StmtID, kind StmtKind) (uint32, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != kind {
		return 0, false
	}
	return uint32(st.Payload), true
}

func (s *Stmts) NewLet(span source.Span, name string, nameSpan source.Span, value ExprID) StmtID {
	return s.new(StmtLet, span, s.Lets.Allocate(LetStmt{Name: name, NameSpan: nameSpan, Value: value}))
}

func (s *Stmts) Let(id StmtID) (*LetStmt, bool) {
	p, ok := s.payload(id, StmtLet)
	if !ok {
		return nil, false
	}
	return s.Lets.Get(p), true
}

func (s *Stmts) NewAssign(span source.Span, name string, nameSpan source.Span, value ExprID) StmtID {
	return s.new(StmtAssign, span, s.Assigns.Allocate(AssignStmt{Name: name, NameSpan: nameSpan, Value: value}))
}

func (s *Stmts) Assign(id StmtID) (*AssignStmt, bool) {
	p, ok := s.payload(id, StmtAssign)
	if !ok {
		return nil, false
	}
	return s.Assigns.Get(p), true
}

func (s *Stmts) NewIf(span source.Span, cond ExprID, then, els []StmtID, hasElse bool) StmtID {
	return s.new(StmtIf, span, s.Ifs.Allocate(IfStmt{Cond: cond, Then: then, Else: els, HasElse: hasElse}))
}

func (s *Stmts) If(id StmtID) (*IfStmt, bool) {
	p, ok := s.payload(id, StmtIf)
	if !ok {
		return nil, false
	}
	return s.Ifs.Get(p), true
}

func (s *Stmts) NewWhile(span source.Span, cond ExprID, body []StmtID) StmtID {
	return s.new(StmtWhile, span, s.Whiles.Allocate(WhileStmt{Cond: cond, Body: body}))
}

func (s *Stmts) While(id StmtID) (*WhileStmt, bool) {
	p, ok := s.payload(id, StmtWhile)
	if !ok {
		return nil, false
	}
	return s.Whiles.Get(p), true
}

func (s *Stmts) NewFunction(span source.Span, name string, nameSpan source.Span, params []Param, body []StmtID) StmtID {
	return s.new(StmtFunction, span, s.Functions.Allocate(FunctionStmt{
		Name:     name,
		NameSpan: nameSpan,
		Params:   params,
		Body:     body,
	}))
}

func (s *Stmts) Function(id StmtID) (*FunctionStmt, bool) {
	p, ok := s.payload(id, StmtFunction)
	if !ok {
		return nil, false
	}
	return s.Functions.Get(p), true
}

func (s *Stmts) NewReturn(span source.Span, value ExprID) StmtID {
	return s.new(StmtReturn, span, s.Returns.Allocate(ReturnStmt{Value: value}))
}

func (s *Stmts) Return(id StmtID) (*ReturnStmt, bool) {
	p, ok := s.payload(id, StmtReturn)
	if !ok {
		return nil, false
	}
	return s.Returns.Get(p), true
}

func (s *Stmts) NewPrint(span source.Span, value ExprID) StmtID {
	return s.new(StmtPrint, span, s.Prints.Allocate(PrintStmt{Value: value}))
}

func (s *Stmts) Print(id StmtID) (*PrintStmt, bool) {
	p, ok := s.payload(id, StmtPrint)
	if !ok {
		return nil, false
	}
	return s.Prints.Get(p), true
}

func (s *Stmts) NewExpr(span source.Span, value ExprID) StmtID {
	return s.new(StmtExpr, span, s.Exprs.Allocate(ExprStmt{Value: value}))
}

func (s *Stmts) Expr(id StmtID) (*ExprStmt, bool) {
	p, ok := s.payload(id, StmtExpr)
	if !ok {
		return nil, false
	}
	return s.Exprs.Get(p), true
}
