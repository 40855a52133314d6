package driver

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"fortio.org/safecast"

	"tacc/internal/ast"
	"tacc/internal/buildpipeline"
	"tacc/internal/cfg"
	"tacc/internal/cpu"
	"tacc/internal/diag"
	"tacc/internal/interp"
	"tacc/internal/lexer"
	"tacc/internal/observ"
	"tacc/internal/parser"
	"tacc/internal/regalloc"
	"tacc/internal/source"
	"tacc/internal/symtab"
	"tacc/internal/tac"
	"tacc/internal/token"
	"tacc/internal/trace"
)

// errStageFailed stops the pipeline after a stage put errors into the bag.
var errStageFailed = errors.New("stage reported errors")

// Options controls one pipeline run.
type Options struct {
	MaxDiagnostics int
	Alloc          regalloc.Config

	// Until is the last compile stage to run; empty means StageCPU.
	Until buildpipeline.Stage

	// Run executes the program with the interpreter once parsing succeeds.
	Run        bool
	RunOut     io.Writer
	RunOptions interp.Options

	// Timings records per-stage durations and appends an OBS6001 note.
	Timings bool

	Cache    *DiskCache
	Progress buildpipeline.ProgressSink

	// DisplayName is the name used in progress events; defaults to the file path.
	DisplayName string
}

// Result holds every artifact the pipeline produced. Stages that did not
// run leave their fields zero. Tokens and Builder are nil on a cache hit.
type Result struct {
	FileSet *source.FileSet
	File    *source.File
	Bag     *diag.Bag

	Tokens  []token.Token
	Builder *ast.Builder
	Symbols []symtab.Symbol
	TAC     tac.Program
	CFG     *cfg.Graph
	Alloc   *regalloc.Allocation
	CPU     []cpu.Instr

	RunStats *interp.Stats

	// Reached is the last stage that completed without errors.
	Reached buildpipeline.Stage
	Cached  bool
	Timings buildpipeline.Timings
	Timing  *observ.Report
}

// CompileFile loads path into a fresh FileSet and compiles it.
func CompileFile(ctx context.Context, path string, opts Options) (*Result, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return Compile(ctx, fs, fileID, opts)
}

// CompileSource compiles in-memory text registered under name.
func CompileSource(ctx context.Context, name, src string, opts Options) (*Result, error) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual(name, []byte(src))
	return Compile(ctx, fs, fileID, opts)
}

// Compile runs the pipeline over one file of fs. Problems in the program
// end up in Result.Bag; the error is reserved for cancellation and
// internal failures.
func Compile(ctx context.Context, fs *source.FileSet, fileID source.FileID, opts Options) (*Result, error) {
	if opts.Until == "" {
		opts.Until = buildpipeline.StageCPU
	}
	file := fs.Get(fileID)
	p := &pipeline{
		opts: opts,
		name: cmp.Or(opts.DisplayName, file.Path),
		res: &Result{
			FileSet: fs,
			File:    file,
			Bag:     diag.NewBag(opts.MaxDiagnostics),
		},
	}
	if opts.Timings {
		p.timer = observ.NewTimer()
	}

	ctx, span := trace.Start(ctx, trace.ScopeFile, "compile")
	span.WithExtra("file", p.name)
	started := time.Now()

	err := p.run(ctx)
	if errors.Is(err, errStageFailed) {
		err = nil
	}

	status := buildpipeline.StatusDone
	switch {
	case err != nil || p.res.Bag.HasErrors():
		status = buildpipeline.StatusError
	case p.res.Cached:
		status = buildpipeline.StatusCached
	}
	buildpipeline.EmitStage(opts.Progress, p.name, p.res.Reached, status, err, time.Since(started))

	if p.timer != nil {
		report := p.timer.Report()
		p.res.Timing = &report
		appendTimingDiagnostic(p.res.Bag, timingPayload{
			Kind:    "pipeline",
			Path:    p.name,
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
	}

	span.WithExtra("status", string(status)).WithCount("diagnostics", p.res.Bag.Len())
	span.End(string(p.res.Reached))
	return p.res, err
}

type pipeline struct {
	opts  Options
	name  string
	res   *Result
	timer *observ.Timer
	table *symtab.Table
	note  string
}

type stageFunc func(ctx context.Context, span *trace.Span) error

func stageIndex(s buildpipeline.Stage) int {
	return slices.Index(buildpipeline.Stages, s)
}

// wants reports whether stage must run: it is at or before Until, or the
// interpreter needs it.
func (p *pipeline) wants(s buildpipeline.Stage) bool {
	if stageIndex(s) <= stageIndex(p.opts.Until) {
		return true
	}
	return p.opts.Run && stageIndex(s) <= stageIndex(buildpipeline.StageParse)
}

func (p *pipeline) run(ctx context.Context) error {
	if p.restore(ctx) {
		return nil
	}

	stages := []struct {
		stage buildpipeline.Stage
		fn    stageFunc
	}{
		{buildpipeline.StageLex, p.lex},
		{buildpipeline.StageParse, p.parse},
		{buildpipeline.StageTAC, p.generate},
		{buildpipeline.StageCFG, p.buildCFG},
		{buildpipeline.StageRegalloc, p.allocate},
		{buildpipeline.StageCPU, p.emitCPU},
	}
	for _, s := range stages {
		if !p.wants(s.stage) {
			break
		}
		if err := p.stage(ctx, s.stage, s.fn); err != nil {
			return err
		}
	}
	p.store(ctx)

	if p.opts.Run {
		return p.stage(ctx, buildpipeline.StageRun, p.interpret)
	}
	return nil
}

func (p *pipeline) stage(ctx context.Context, stage buildpipeline.Stage, fn stageFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	buildpipeline.EmitStage(p.opts.Progress, p.name, stage, buildpipeline.StatusWorking, nil, 0)

	stageCtx, span := trace.Start(ctx, trace.ScopePass, string(stage))
	idx := p.timer.Begin(string(stage))
	started := time.Now()
	p.note = ""

	err := fn(stageCtx, span)

	p.res.Timings.Set(stage, time.Since(started))
	p.timer.End(idx, p.note)
	detail := "ok"
	if err != nil {
		detail = err.Error()
	} else {
		p.res.Reached = stage
	}
	span.End(detail)
	return err
}

func (p *pipeline) failOnErrors() error {
	if p.res.Bag.HasErrors() {
		return errStageFailed
	}
	return nil
}

// fileSpan anchors diagnostics that have no better position.
func (p *pipeline) fileSpan() source.Span {
	return source.Span{File: p.res.File.ID}
}

func (p *pipeline) lex(_ context.Context, span *trace.Span) error {
	lx := lexer.New(p.res.File, lexer.Options{Reporter: diag.BagReporter{Bag: p.res.Bag}})
	p.res.Tokens = lx.All()
	span.WithCount("tokens", len(p.res.Tokens))
	p.note = fmt.Sprintf("%d tokens", len(p.res.Tokens))
	return p.failOnErrors()
}

func (p *pipeline) parse(ctx context.Context, span *trace.Span) error {
	maxErrors, err := safecast.Conv[uint](max(p.opts.MaxDiagnostics, 0))
	if err != nil {
		return err
	}
	builder := ast.NewBuilder(ast.Hints{})
	// лексические ошибки уже в bag после стадии lex
	lx := lexer.New(p.res.File, lexer.Options{})
	result := parser.ParseFile(ctx, p.res.FileSet, lx, builder, parser.Options{
		MaxErrors: maxErrors,
		Reporter:  diag.BagReporter{Bag: p.res.Bag},
	})
	p.res.Builder = builder
	if p.res.Bag.HasErrors() {
		// resync может повторить ошибку на том же месте
		p.res.Bag.Dedup()
	}

	span.WithCount("stmts", len(result.Program.Stmts))
	p.note = fmt.Sprintf("%d statements", len(result.Program.Stmts))
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.failOnErrors()
}

func (p *pipeline) generate(_ context.Context, span *trace.Span) error {
	p.table = symtab.New()
	prog, err := tac.Generate(p.res.Builder, p.table)
	p.res.Symbols = p.table.All()
	if err != nil {
		var genErr *tac.GenError
		if !errors.As(err, &genErr) {
			return err
		}
		p.res.Bag.Add(diag.NewError(genErr.Code, genErr.Span, genErr.Msg))
		return errStageFailed
	}
	if err := tac.Validate(prog); err != nil {
		p.res.Bag.Add(diag.NewError(diag.GenMalformedNode, p.fileSpan(), "generated code failed validation").
			WithNote(p.fileSpan(), err.Error()))
		return errStageFailed
	}
	p.res.TAC = prog

	span.WithCount("instrs", prog.Len()).WithCount("symbols", len(p.res.Symbols))
	p.note = fmt.Sprintf("%d instructions", prog.Len())
	return nil
}

func (p *pipeline) buildCFG(_ context.Context, span *trace.Span) error {
	g := cfg.Build(p.res.TAC)
	p.res.CFG = g
	p.reportDanglingJumps()
	if err := g.Validate(); err != nil {
		p.res.Bag.Add(diag.NewError(diag.CfgInvariant, p.fileSpan(), "control flow graph is inconsistent").
			WithNote(p.fileSpan(), err.Error()))
		return errStageFailed
	}

	span.WithCount("blocks", len(g.Order)).WithCount("edges", len(g.Edges))
	p.note = fmt.Sprintf("%d blocks", len(g.Order))
	return nil
}

func (p *pipeline) allocate(_ context.Context, span *trace.Span) error {
	alloc := regalloc.New(p.opts.Alloc).Allocate(p.res.CFG, p.res.TAC)
	p.res.Alloc = &alloc
	p.reportSpills()

	span.WithCount("nodes", len(alloc.Graph.Nodes)).WithCount("spilled", len(alloc.Spilled))
	p.note = fmt.Sprintf("%d spilled", len(alloc.Spilled))
	return nil
}

func (p *pipeline) emitCPU(_ context.Context, span *trace.Span) error {
	code, err := cpu.Generate(p.res.TAC, p.table)
	if err != nil {
		p.res.Bag.Add(diag.NewError(diag.GenMalformedNode, p.fileSpan(), "cannot lower to CPU code").
			WithNote(p.fileSpan(), err.Error()))
		return errStageFailed
	}
	p.res.CPU = code
	span.WithCount("instrs", len(code))
	return nil
}

func (p *pipeline) interpret(ctx context.Context, span *trace.Span) error {
	out := p.opts.RunOut
	if out == nil {
		out = io.Discard
	}
	stats, err := interp.Run(ctx, p.res.Builder, out, p.opts.RunOptions)
	p.res.RunStats = &stats
	span.WithCount("steps", stats.Steps).WithCount("calls", stats.Calls)
	p.note = fmt.Sprintf("%d steps", stats.Steps)
	if err == nil {
		return nil
	}

	var rt *interp.RuntimeError
	if !errors.As(err, &rt) {
		return err
	}
	d := diag.NewError(rt.Code.DiagCode(), rt.Span, rt.Message)
	for _, fr := range rt.Backtrace {
		d = d.WithNote(fr.Span, "in call to "+fr.Func)
	}
	p.res.Bag.Add(d)
	return errStageFailed
}

// reportDanglingJumps turns graph diagnostics into warnings. The graph is
// still complete: the jump simply has no edge.
func (p *pipeline) reportDanglingJumps() {
	for _, d := range p.res.CFG.Diagnostics {
		p.res.Bag.Add(diag.NewWarning(diag.CfgDanglingJump, p.fileSpan(), d.Msg).
			WithNote(p.fileSpan(), fmt.Sprintf("block %s, instruction %d", d.Block, d.Instr)))
	}
}

func (p *pipeline) reportSpills() {
	alloc := p.res.Alloc
	for _, v := range alloc.Spilled {
		p.res.Bag.Add(diag.New(diag.SevInfo, diag.AllocSpilled, p.fileSpan(),
			fmt.Sprintf("variable '%s' spilled: all %d registers in use", v, len(alloc.File))))
	}
}
