// Package interp executes a parsed program directly, without going through
// the three-address pipeline.
package interp

import (
	"context"
	"fmt"
	"io"

	"tacc/internal/ast"
	"tacc/internal/source"
)

const (
	DefaultMaxSteps = 1_000_000
	DefaultMaxDepth = 1_000
)

type Options struct {
	// MaxSteps bounds executed statements and loop iterations; <= 0 means default.
	MaxSteps int
	// MaxDepth bounds nested user-function calls; <= 0 means default.
	MaxDepth int
}

// Stats reports what a run did.
type Stats struct {
	Steps    int
	Calls    int
	MaxDepth int
}

// Run executes the program in b, writing print output to out.
func Run(ctx context.Context, b *ast.Builder, out io.Writer, opts Options) (Stats, error) {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	in := &Interpreter{
		ctx:       ctx,
		b:         b,
		out:       out,
		opts:      opts,
		globals:   make(map[string]Value),
		functions: make(map[string]*ast.FunctionStmt),
	}
	_, err := in.block(b.Program.Stmts)
	return in.stats, err
}

type frame struct {
	fn     string
	call   source.Span
	locals map[string]Value
}

// Interpreter holds the state of one run.
type Interpreter struct {
	ctx       context.Context
	b         *ast.Builder
	out       io.Writer
	opts      Options
	globals   map[string]Value
	functions map[string]*ast.FunctionStmt
	frames    []*frame
	stats     Stats
}

// signal carries a pending return out of nested blocks.
type signal struct {
	returned bool
	value    Value
}

func (in *Interpreter) fail(code ErrorCode, span source.Span, format string, args ...any) *RuntimeError {
	err := &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...), Span: span}
	for i := len(in.frames) - 1; i >= 0; i-- {
		err.Backtrace = append(err.Backtrace, Frame{Func: in.frames[i].fn, Span: in.frames[i].call})
	}
	return err
}

func (in *Interpreter) step(span source.Span) error {
	in.stats.Steps++
	if in.stats.Steps > in.opts.MaxSteps {
		return in.fail(ErrStepLimit, span, "step limit of %d exceeded", in.opts.MaxSteps)
	}
	if in.stats.Steps&0x3ff == 0 {
		if err := in.ctx.Err(); err != nil {
			e := in.fail(ErrCancelled, span, "execution cancelled")
			e.Err = err
			return e
		}
	}
	return nil
}

func (in *Interpreter) top() *frame {
	if len(in.frames) == 0 {
		return nil
	}
	return in.frames[len(in.frames)-1]
}

func (in *Interpreter) lookup(name string) (Value, bool) {
	if f := in.top(); f != nil {
		if v, ok := f.locals[name]; ok {
			return v, true
		}
	}
	v, ok := in.globals[name]
	return v, ok
}

// define binds name in the innermost frame, or globally at top level.
func (in *Interpreter) define(name string, v Value) {
	if f := in.top(); f != nil {
		f.locals[name] = v
		return
	}
	in.globals[name] = v
}

func (in *Interpreter) assign(name string, v Value) bool {
	if f := in.top(); f != nil {
		if _, ok := f.locals[name]; ok {
			f.locals[name] = v
			return true
		}
	}
	if _, ok := in.globals[name]; ok {
		in.globals[name] = v
		return true
	}
	return false
}

func (in *Interpreter) block(ids []ast.StmtID) (signal, error) {
	for _, id := range ids {
		sig, err := in.stmt(id)
		if err != nil || sig.returned {
			return sig, err
		}
	}
	return signal{}, nil
}

func (in *Interpreter) stmt(id ast.StmtID) (signal, error) {
	st := in.b.Stmts.Get(id)
	if st == nil {
		return signal{}, in.fail(ErrMalformed, source.Span{}, "invalid statement node %d", id)
	}
	if err := in.step(st.Span); err != nil {
		return signal{}, err
	}

	switch st.Kind {
	case ast.StmtLet:
		let, _ := in.b.Stmts.Let(id)
		v, err := in.eval(let.Value)
		if err != nil {
			return signal{}, err
		}
		in.define(let.Name, v)

	case ast.StmtAssign:
		as, _ := in.b.Stmts.Assign(id)
		v, err := in.eval(as.Value)
		if err != nil {
			return signal{}, err
		}
		if !in.assign(as.Name, v) {
			return signal{}, in.fail(ErrUndefinedVariable, as.NameSpan, "undefined variable: %s", as.Name)
		}

	case ast.StmtIf:
		ifs, _ := in.b.Stmts.If(id)
		cond, err := in.eval(ifs.Cond)
		if err != nil {
			return signal{}, err
		}
		if cond.Truthy() {
			return in.block(ifs.Then)
		}
		if ifs.HasElse {
			return in.block(ifs.Else)
		}

	case ast.StmtWhile:
		ws, _ := in.b.Stmts.While(id)
		for {
			cond, err := in.eval(ws.Cond)
			if err != nil {
				return signal{}, err
			}
			if !cond.Truthy() {
				break
			}
			sig, err := in.block(ws.Body)
			if err != nil || sig.returned {
				return sig, err
			}
			if err := in.step(st.Span); err != nil {
				return signal{}, err
			}
		}

	case ast.StmtFunction:
		fn, _ := in.b.Stmts.Function(id)
		in.functions[fn.Name] = fn

	case ast.StmtReturn:
		ret, _ := in.b.Stmts.Return(id)
		var v Value
		if ret.Value.IsValid() {
			var err error
			if v, err = in.eval(ret.Value); err != nil {
				return signal{}, err
			}
		}
		if in.top() == nil {
			// top level: report and keep going
			if ret.Value.IsValid() {
				fmt.Fprintf(in.out, "Return: %s\n", v)
			}
			return signal{}, nil
		}
		return signal{returned: true, value: v}, nil

	case ast.StmtPrint:
		ps, _ := in.b.Stmts.Print(id)
		v, err := in.eval(ps.Value)
		if err != nil {
			return signal{}, err
		}
		fmt.Fprintln(in.out, v.String())

	case ast.StmtExpr:
		es, _ := in.b.Stmts.Expr(id)
		if _, err := in.eval(es.Value); err != nil {
			return signal{}, err
		}

	default:
		return signal{}, in.fail(ErrMalformed, st.Span, "unrecognized statement kind %s", st.Kind)
	}
	return signal{}, nil
}

func (in *Interpreter) call(span source.Span, call *ast.ExprCallData) (Value, error) {
	fn, ok := in.functions[call.Name]
	if !ok {
		return Value{}, in.fail(ErrUndefinedFunction, call.NameSpan, "undefined function: %s", call.Name)
	}
	if len(call.Args) != len(fn.Params) {
		return Value{}, in.fail(ErrArity, span, "%s expects %d arguments, got %d", call.Name, len(fn.Params), len(call.Args))
	}
	if len(in.frames) >= in.opts.MaxDepth {
		return Value{}, in.fail(ErrStackOverflow, span, "call depth of %d exceeded", in.opts.MaxDepth)
	}

	// arguments are evaluated in the caller's frame
	locals := make(map[string]Value, len(fn.Params))
	for i, a := range call.Args {
		v, err := in.eval(a)
		if err != nil {
			return Value{}, err
		}
		locals[fn.Params[i].Name] = v
	}

	in.frames = append(in.frames, &frame{fn: call.Name, call: span, locals: locals})
	in.stats.Calls++
	in.stats.MaxDepth = max(in.stats.MaxDepth, len(in.frames))
	sig, err := in.block(fn.Body)
	in.frames = in.frames[:len(in.frames)-1]
	if err != nil {
		return Value{}, err
	}
	return sig.value, nil
}
