package parser

import (
	"strconv"

	"github.com/spy-lang/spy/internal/ast"
	"github.com/spy-lang/spy/internal/lexer"
)

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Kind]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Kind]; ok {
		return pr
	}
	return LOWEST
}

// parseExpression is the Pratt-parser entry point: it parses a prefix
// expression, then repeatedly folds in infix/postfix operators whose
// precedence exceeds the caller's floor.
func (p *Parser) parseExpression(precedence int) ast.Expr {
	prefix := p.prefixParseFns[p.curToken.Kind]
	if prefix == nil {
		p.errs = append(p.errs, &parseError{p.curToken, "no prefix parse function"})
		return nil
	}
	left := prefix()

	for !p.peekIs(lexer.NEWLINE) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Kind]
		if infix == nil {
			return left
		}
		p.advance()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseName() ast.Expr {
	n := &ast.Name{Value: p.curToken.Literal, Span: p.span(p.curToken)}
	return n
}

func (p *Parser) parseInt() ast.Expr {
	v, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.errs = append(p.errs, &parseError{p.curToken, "invalid integer literal"})
	}
	return &ast.IntLit{Value: v, Span: p.span(p.curToken)}
}

func (p *Parser) parseFloat() ast.Expr {
	v, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errs = append(p.errs, &parseError{p.curToken, "invalid float literal"})
	}
	return &ast.FloatLit{Value: v, Span: p.span(p.curToken)}
}

func (p *Parser) parseString() ast.Expr {
	return &ast.StrLit{Value: p.curToken.Literal, Span: p.span(p.curToken)}
}

func (p *Parser) parseBool() ast.Expr {
	return &ast.BoolLit{Value: p.curToken.Kind == lexer.TRUE, Span: p.span(p.curToken)}
}

func (p *Parser) parseNone() ast.Expr {
	return &ast.NoneLit{Span: p.span(p.curToken)}
}

func (p *Parser) parseUnary() ast.Expr {
	start := p.curToken
	op := p.curToken.Literal
	if p.curToken.Kind == lexer.NOT {
		op = "not"
	}
	p.advance()
	operand := p.parseExpression(PREFIX)
	return &ast.UnaryOp{Op: op, Operand: operand, Span: p.span(start)}
}

func (p *Parser) parseParenOrTuple() ast.Expr {
	start := p.curToken
	p.advance() // consume '('
	if p.curIs(lexer.RPAREN) {
		return &ast.TupleLit{Span: p.span(start)}
	}
	first := p.parseExpression(LOWEST)
	if !p.peekIs(lexer.COMMA) {
		p.expect(lexer.RPAREN)
		return first
	}
	elts := []ast.Expr{first}
	for p.peekIs(lexer.COMMA) {
		p.advance() // consume ','
		if p.peekIs(lexer.RPAREN) {
			break
		}
		p.advance()
		elts = append(elts, p.parseExpression(LOWEST))
	}
	p.expect(lexer.RPAREN)
	return &ast.TupleLit{Elts: elts, Span: p.span(start)}
}

func (p *Parser) parseBinOp(left ast.Expr) ast.Expr {
	start := p.curToken
	op := p.curToken.Literal
	prec := p.curPrecedence()
	p.advance()
	right := p.parseExpression(prec)
	return &ast.BinOp{Op: op, Left: left, Right: right, Span: p.span(start)}
}

func (p *Parser) parseCompare(left ast.Expr) ast.Expr {
	start := p.curToken
	if c, ok := left.(*ast.Compare); ok {
		op := p.curToken.Literal
		prec := p.curPrecedence()
		p.advance()
		right := p.parseExpression(prec)
		c.Ops = append(c.Ops, op)
		c.Comps = append(c.Comps, right)
		return c
	}
	op := p.curToken.Literal
	prec := p.curPrecedence()
	p.advance()
	right := p.parseExpression(prec)
	return &ast.Compare{Left: left, Ops: []string{op}, Comps: []ast.Expr{right}, Span: p.span(start)}
}

func (p *Parser) parseCallOrGeneric(callee ast.Expr) ast.Expr {
	start := p.curToken
	p.advance() // consume '('
	var args []ast.Expr
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		args = append(args, p.parseExpression(LOWEST))
		if p.peekIs(lexer.COMMA) {
			p.advance()
		}
		p.advance()
	}
	return &ast.Call{Callee: callee, Args: args, Span: p.span(start)}
}

func (p *Parser) parseIndexOrGeneric(target ast.Expr) ast.Expr {
	start := p.curToken
	// Heuristic: a subscript whose contents parse entirely as type
	// expressions is treated as a generic specialization (e.g.
	// `add[i32]`); anything else is a value-level index (e.g. `xs[0]`).
	save := p.snapshot()
	if targs, ok := p.tryParseTypeArgs(); ok {
		return &ast.GenericApply{Callee: target, Args: targs, Span: p.span(start)}
	}
	p.restore(save)

	p.advance() // consume '['
	idx := p.parseExpression(LOWEST)
	p.expect(lexer.RBRACKET)
	return &ast.Index{Target: target, Index: idx, Span: p.span(start)}
}

func (p *Parser) parseAttribute(target ast.Expr) ast.Expr {
	start := p.curToken
	p.advance() // consume '.'
	name := p.curToken.Literal
	return &ast.Attribute{Target: target, Name: name, Span: p.span(start)}
}

// tryParseTypeArgs attempts to parse `[ TypeExpr (, TypeExpr)* ]`
// starting with cur == '['. On success cur is left on ']'. On failure
// the caller must restore() to the saved snapshot.
func (p *Parser) tryParseTypeArgs() ([]ast.TypeExpr, bool) {
	p.advance() // consume '['
	var targs []ast.TypeExpr
	for {
		if !isTypeNameStart(p.curToken.Kind) {
			return nil, false
		}
		t := p.parseTypeExpr()
		if t == nil {
			return nil, false
		}
		targs = append(targs, t)
		if p.peekIs(lexer.COMMA) {
			p.advance()
			p.advance()
			continue
		}
		break
	}
	if !p.peekIs(lexer.RBRACKET) {
		return nil, false
	}
	p.advance() // cur = ']'
	return targs, true
}

func isTypeNameStart(k lexer.Kind) bool { return k == lexer.IDENT }

type parserSnapshot struct {
	pos      int
	errCount int
}

// snapshot/restore allow speculative parsing (used to disambiguate
// `callee[Type]` generic application from `target[index]` subscript,
// since both start identically): the full token buffer makes restoring
// a prior position exact, unlike pulling fresh tokens from the Lexer.
func (p *Parser) snapshot() parserSnapshot {
	return parserSnapshot{pos: p.pos, errCount: len(p.errs)}
}

func (p *Parser) restore(s parserSnapshot) {
	p.pos = s.pos
	p.curToken = p.tokenAt(p.pos)
	p.peekToken = p.tokenAt(p.pos + 1)
	if len(p.errs) > s.errCount {
		p.errs = p.errs[:s.errCount]
	}
}

type parseError struct {
	tok lexer.Token
	msg string
}

func (e *parseError) Error() string {
	return e.tok.File + ": " + e.msg + " near " + e.tok.String()
}
