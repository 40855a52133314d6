package parser

import (
	"tacc/internal/ast"
	"tacc/internal/diag"
	"tacc/internal/token"
)

func (p *Parser) parseExpr() (ast.ExprID, bool) {
	return p.parseBinaryExpr(precLogicalOr)
}

// parseBinaryExpr: precedence climbing; левая свёртка для операторов одного уровня.
func (p *Parser) parseBinaryExpr(minPrec int) (ast.ExprID, bool) {
	left, ok := p.parseUnaryExpr()
	if !ok {
		return ast.NoExprID, false
	}
	for {
		opTok := p.lx.Peek()
		prec := binaryPrec(opTok.Kind)
		if prec == precNone || prec < minPrec {
			return left, true
		}
		p.advance()
		right, ok := p.parseBinaryExpr(prec + 1)
		if !ok {
			return ast.NoExprID, false
		}
		op, _ := tokenToBinaryOp(opTok.Kind)
		span := p.arenas.Exprs.Get(left).Span.Cover(p.arenas.Exprs.Get(right).Span)
		left = p.arenas.Exprs.NewBinary(span, op, left, right)
	}
}

func (p *Parser) parseUnaryExpr() (ast.ExprID, bool) {
	var op ast.ExprUnaryOp
	switch p.lx.Peek().Kind {
	case token.Bang:
		op = ast.ExprUnaryNot
	case token.Minus:
		op = ast.ExprUnaryNeg
	default:
		return p.parsePrimaryExpr()
	}
	opTok := p.advance()
	operand, ok := p.parseUnaryExpr()
	if !ok {
		return ast.NoExprID, false
	}
	span := opTok.Span.Cover(p.arenas.Exprs.Get(operand).Span)
	return p.arenas.Exprs.NewUnary(span, op, operand), true
}

func (p *Parser) parsePrimaryExpr() (ast.ExprID, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.NumberLit:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.LitNumber, tok.Text), true
	case token.StringLit:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.LitString, tok.Text), true
	case token.KwTrue, token.KwFalse:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.LitBool, tok.Text), true
	case token.Ident:
		p.advance()
		if p.at(token.LParen) {
			return p.parseCallExpr(tok)
		}
		return p.arenas.Exprs.NewIdent(tok.Span, tok.Text), true
	case token.LParen:
		p.advance()
		inner, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		closeTok, ok := p.expectClosing(token.RParen, diag.SynUnclosedParen, "expected ')' to close parenthesized expression", tok.Span)
		if !ok {
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewGroup(tok.Span.Cover(closeTok.Span), inner), true
	case token.Invalid:
		// лексер уже сообщил об ошибке
		p.advance()
		return ast.NoExprID, false
	}
	p.err(diag.SynExpectExpression, "expected expression, got "+describe(tok))
	return ast.NoExprID, false
}

// parseCallExpr: name '(' (expr (',' expr)*)? ')'; имя уже съедено.
func (p *Parser) parseCallExpr(name token.Token) (ast.ExprID, bool) {
	open := p.advance() // '('
	args := make([]ast.ExprID, 0, 2)
	if !p.at(token.RParen) {
		for {
			arg, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			args = append(args, arg)
			if !p.eatOptional(token.Comma) {
				break
			}
		}
	}
	closeTok, ok := p.expectClosing(token.RParen, diag.SynUnclosedParen, "expected ')' after call arguments", open.Span)
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewCall(name.Span.Cover(closeTok.Span), name.Text, name.Span, args), true
}

func describe(tok token.Token) string {
	if tok.Kind == token.EOF {
		return "end of file"
	}
	return "'" + tok.Text + "'"
}
