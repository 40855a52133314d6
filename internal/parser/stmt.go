package parser

import (
	"tacc/internal/ast"
	"tacc/internal/diag"
	"tacc/internal/token"
)

// parseStmt выбирает распознаватель по первому токену.
func (p *Parser) parseStmt() (ast.StmtID, bool) {
	switch p.lx.Peek().Kind {
	case token.KwLet:
		return p.parseLetStmt()
	case token.KwIf:
		return p.parseIfStmt()
	case token.KwWhile:
		return p.parseWhileStmt()
	case token.KwFunction:
		return p.parseFunctionStmt()
	case token.KwReturn:
		return p.parseReturnStmt()
	case token.KwPrint:
		return p.parsePrintStmt()
	default:
		return p.parseExprOrAssignStmt()
	}
}

// let IDENT '=' expr ';'?
func (p *Parser) parseLetStmt() (ast.StmtID, bool) {
	letTok := p.advance()
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected variable name after 'let'")
	if !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' after variable name"); !ok {
		return ast.NoStmtID, false
	}
	value, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	p.eatOptional(token.Semicolon)
	return p.arenas.Stmts.NewLet(letTok.Span.Cover(p.lastSpan), name.Text, name.Span, value), true
}

// IDENT '=' expr | expr. Присваивание распознаётся после разбора левой части:
// если это голый идентификатор и дальше '=', то это assignment.
func (p *Parser) parseExprOrAssignStmt() (ast.StmtID, bool) {
	start := p.lx.Peek().Span
	expr, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	if p.at(token.Assign) {
		ident, isIdent := p.arenas.Exprs.Ident(expr)
		if !isIdent {
			p.err(diag.SynUnexpectedToken, "assignment target must be a variable name")
			return ast.NoStmtID, false
		}
		nameSpan := p.arenas.Exprs.Get(expr).Span
		p.advance()
		value, ok := p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		p.eatOptional(token.Semicolon)
		return p.arenas.Stmts.NewAssign(start.Cover(p.lastSpan), ident.Name, nameSpan, value), true
	}
	p.eatOptional(token.Semicolon)
	return p.arenas.Stmts.NewExpr(start.Cover(p.lastSpan), expr), true
}

// if '(' expr ')' block ('else' block)?
func (p *Parser) parseIfStmt() (ast.StmtID, bool) {
	ifTok := p.advance()
	cond, ok := p.parseParenCond("if")
	if !ok {
		return ast.NoStmtID, false
	}
	then, ok := p.parseBlock()
	if !ok {
		return ast.NoStmtID, false
	}
	var els []ast.StmtID
	hasElse := false
	if p.eatOptional(token.KwElse) {
		hasElse = true
		els, ok = p.parseBlock()
		if !ok {
			return ast.NoStmtID, false
		}
	}
	return p.arenas.Stmts.NewIf(ifTok.Span.Cover(p.lastSpan), cond, then, els, hasElse), true
}

// while '(' expr ')' block
func (p *Parser) parseWhileStmt() (ast.StmtID, bool) {
	whileTok := p.advance()
	cond, ok := p.parseParenCond("while")
	if !ok {
		return ast.NoStmtID, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewWhile(whileTok.Span.Cover(p.lastSpan), cond, body), true
}

// function IDENT '(' (IDENT (',' IDENT)*)? ')' block
func (p *Parser) parseFunctionStmt() (ast.StmtID, bool) {
	fnTok := p.advance()
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected function name")
	if !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after function name"); !ok {
		return ast.NoStmtID, false
	}
	params := make([]ast.Param, 0, 2)
	if !p.at(token.RParen) {
		for {
			param, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected parameter name")
			if !ok {
				return ast.NoStmtID, false
			}
			params = append(params, ast.Param{Name: param.Text, Span: param.Span})
			if !p.eatOptional(token.Comma) {
				break
			}
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after parameters"); !ok {
		return ast.NoStmtID, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewFunction(fnTok.Span.Cover(p.lastSpan), name.Text, name.Span, params, body), true
}

// return expr? ';'?  Перевод строки не завершает return: значение может идти следующей строкой.
func (p *Parser) parseReturnStmt() (ast.StmtID, bool) {
	retTok := p.advance()
	value := ast.NoExprID
	if p.lx.Peek().Kind.StartsExpr() {
		var ok bool
		value, ok = p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
	}
	p.eatOptional(token.Semicolon)
	return p.arenas.Stmts.NewReturn(retTok.Span.Cover(p.lastSpan), value), true
}

// print expr ';'?
func (p *Parser) parsePrintStmt() (ast.StmtID, bool) {
	printTok := p.advance()
	value, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	p.eatOptional(token.Semicolon)
	return p.arenas.Stmts.NewPrint(printTok.Span.Cover(p.lastSpan), value), true
}

func (p *Parser) parseParenCond(keyword string) (ast.ExprID, bool) {
	open, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after '"+keyword+"'")
	if !ok {
		return ast.NoExprID, false
	}
	cond, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	if _, ok := p.expectClosing(token.RParen, diag.SynUnclosedParen, "expected ')' after condition", open.Span); !ok {
		return ast.NoExprID, false
	}
	return cond, true
}

// block := '{' statement* '}'
func (p *Parser) parseBlock() ([]ast.StmtID, bool) {
	open, ok := p.expect(token.LBrace, diag.SynExpectBlock, "expected '{'")
	if !ok {
		return nil, false
	}
	stmts := p.parseStmtList(token.RBrace)
	if _, ok := p.expectClosing(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close block", open.Span); !ok {
		return nil, false
	}
	return stmts, true
}
