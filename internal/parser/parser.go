package parser

import (
	"context"
	"slices"

	"tacc/internal/ast"
	"tacc/internal/diag"
	"tacc/internal/lexer"
	"tacc/internal/source"
	"tacc/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	Program ast.Program
	Errors  uint
}

// Parser: состояние парсера на один файл
type Parser struct {
	ctx      context.Context
	lx       *lexer.Lexer
	arenas   *ast.Builder
	file     *source.File
	opts     Options
	lastSpan source.Span // span последнего съеденного токена
}

// ParseFile разбирает один файл целиком и кладёт корень в arenas.Program.
// Ошибки уходят в opts.Reporter; отмена ctx останавливает разбор на границе оператора.
func ParseFile(ctx context.Context, fs *source.FileSet, lx *lexer.Lexer, arenas *ast.Builder, opts Options) Result {
	first := lx.Peek()
	p := Parser{
		ctx:      ctx,
		lx:       lx,
		arenas:   arenas,
		file:     fs.Get(first.Span.File),
		opts:     opts,
		lastSpan: source.Span{File: first.Span.File},
	}

	stmts := p.parseStmtList(token.EOF)
	arenas.SetProgram(first.Span.Cover(p.lastSpan), stmts)
	return Result{
		Program: arenas.Program,
		Errors:  p.opts.CurrentErrors,
	}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

func (p *Parser) cancelled() bool {
	return p.ctx != nil && p.ctx.Err() != nil
}

// parseStmtList читает операторы до end (RBrace внутри блока, EOF на верхнем уровне).
func (p *Parser) parseStmtList(end token.Kind) []ast.StmtID {
	stmts := make([]ast.StmtID, 0, 8)
	for !p.at(end) && !p.at(token.EOF) {
		if p.cancelled() || p.opts.Enough() {
			p.skipToEOF()
			break
		}
		before := p.lx.Peek().Span
		id, ok := p.parseStmt()
		if ok {
			stmts = append(stmts, id)
			continue
		}
		p.resync(before)
	}
	return stmts
}

// resync пропускает токены до ';', '}' или начала следующего оператора.
// Гарантирует продвижение хотя бы на один токен, если ошибка случилась на месте.
func (p *Parser) resync(failedAt source.Span) {
	if p.lx.Peek().Span == failedAt && !p.at(token.EOF) {
		p.advance()
	}
	for !p.at(token.EOF) {
		if p.eatOptional(token.Semicolon) {
			return
		}
		if p.atOr(token.RBrace, token.KwLet, token.KwIf, token.KwWhile, token.KwFunction,
			token.KwReturn, token.KwPrint) {
			return
		}
		p.advance()
	}
}

func (p *Parser) skipToEOF() {
	for !p.at(token.EOF) {
		p.advance()
	}
}
