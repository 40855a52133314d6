package parser

import (
	"tacc/internal/diag"
	"tacc/internal/source"
	"tacc/internal/token"
)

// advance: съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF {
		p.lastSpan = tok.Span
	}
	return tok
}

// getDiagnosticSpan возвращает позицию сразу после последнего токена, если дальше EOF.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

// expect: ожидаем конкретный токен. Если нет, репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.getDiagnosticSpan()
	p.report(code, diag.SevError, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

// expectClosing is expect for a closing bracket; the diagnostic notes
// where the bracket was opened.
func (p *Parser) expectClosing(k token.Kind, code diag.Code, msg string, open source.Span) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.getDiagnosticSpan()
	if p.admit(diag.SevError) {
		diag.ReportError(p.opts.Reporter, code, sp, msg).WithNote(open, "opened here").Emit()
		p.checkEnough(sp)
	}
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

// eatOptional съедает k, если он следующий.
func (p *Parser) eatOptional(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// репортует ошибку и передает текущий спан
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if !p.admit(sev) {
		return false
	}
	p.opts.Reporter.Report(code, sev, sp, msg, nil)
	p.checkEnough(sp)
	return true
}

// admit counts the finding and reports whether it may still be emitted.
func (p *Parser) admit(sev diag.Severity) bool {
	if sev == diag.SevError {
		p.opts.CurrentErrors++
	}
	if p.opts.Reporter == nil {
		return false
	}
	return p.opts.MaxErrors == 0 || p.opts.CurrentErrors <= p.opts.MaxErrors
}

func (p *Parser) checkEnough(sp source.Span) {
	if p.opts.Enough() {
		p.opts.Reporter.Report(diag.SynTooManyErrors, diag.SevInfo, sp, "too many errors, parsing stopped", nil)
	}
}
