package parser

import (
	"fmt"

	"github.com/spy-lang/spy/internal/ast"
	"github.com/spy-lang/spy/internal/lexer"
)

// Statement-parsing convention: simple statements return with cur on
// their own trailing NEWLINE (or on a DEDENT/EOF boundary), via
// finishLine; block-based (compound) statements return with cur on the
// first token after the closing DEDENT, via parseBlock. Callers skip
// any NEWLINEs before parsing the next statement.

// finishLine advances cur onto a trailing NEWLINE, DEDENT or EOF, so
// simple statements satisfy the convention above.
func (p *Parser) finishLine() {
	if p.peekIs(lexer.NEWLINE) || p.peekIs(lexer.DEDENT) || p.peekIs(lexer.EOF) {
		p.advance()
	}
}

// parseBlock parses an INDENT...DEDENT delimited suite following a
// `:` header, as used by def/if/while/for/class.
func (p *Parser) parseBlock() []ast.Stmt {
	if !p.expect(lexer.COLON) {
		return nil
	}
	if !p.peekIs(lexer.NEWLINE) {
		// Single-line suite: `if x: return y`
		p.advance()
		s := p.parseStmt()
		if s == nil {
			return nil
		}
		return []ast.Stmt{s}
	}
	p.advance() // consume COLON's peek -> NEWLINE becomes cur
	p.skipNewlines()
	if !p.curIs(lexer.INDENT) {
		p.errs = append(p.errs, fmt.Errorf("%s:%d:%d: expected an indented block, got %s",
			p.curToken.File, p.curToken.Line, p.curToken.Column, p.curToken.Kind))
		return nil
	}
	p.advance() // cur = first token of the block body
	var body []ast.Stmt
	for !p.curIs(lexer.DEDENT) && !p.curIs(lexer.EOF) {
		if s := p.parseStmt(); s != nil {
			body = append(body, s)
		}
		p.skipNewlines()
	}
	if p.curIs(lexer.DEDENT) {
		p.advance()
	}
	return body
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.curToken.Kind {
	case lexer.AT:
		return p.parseDecorated()
	case lexer.DEF:
		return p.parseFuncDef(ast.DecoratorNone)
	case lexer.CLASS:
		return p.parseClassDef(ast.DecoratorNone)
	case lexer.VAR:
		return p.parseVarDef(ast.KindVar)
	case lexer.CONST:
		return p.parseVarDef(ast.KindConst)
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.FOR:
		return p.parseFor()
	case lexer.BREAK:
		s := p.curToken
		p.finishLine()
		return &ast.Break{Span: p.span(s)}
	case lexer.CONTINUE:
		s := p.curToken
		p.finishLine()
		return &ast.Continue{Span: p.span(s)}
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.RAISE:
		return p.parseRaise()
	case lexer.ASSERT:
		return p.parseAssert()
	case lexer.PASS:
		p.finishLine()
		return nil
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseDecorated() ast.Stmt {
	p.advance() // consume '@'
	name := p.curToken.Literal
	for p.peekIs(lexer.DOT) {
		p.advance() // cur = '.'
		p.advance() // cur = next name segment
		name += "." + p.curToken.Literal
	}
	p.advance()      // cur = NEWLINE ending the decorator line
	p.skipNewlines() // cur = 'def' or 'class'
	dec := ast.Decorator(name)
	switch p.curToken.Kind {
	case lexer.DEF:
		return p.parseFuncDef(dec)
	case lexer.CLASS:
		return p.parseClassDef(dec)
	}
	p.errs = append(p.errs, fmt.Errorf("%s:%d: decorator @%s must precede def or class",
		p.curToken.File, p.curToken.Line, name))
	return p.parseStmt()
}

func (p *Parser) parseFuncDef(dec ast.Decorator) ast.Stmt {
	start := p.curToken
	p.advance() // consume 'def'
	name := p.curToken.Literal
	p.advance() // consume the function name
	return p.finishFuncDef(start, name, dec)
}

func (p *Parser) finishFuncDef(start lexer.Token, name string, dec ast.Decorator) ast.Stmt {
	if !p.curIs(lexer.LPAREN) {
		p.errs = append(p.errs, fmt.Errorf("%s:%d: expected '(' after function name %s", p.curToken.File, p.curToken.Line, name))
	}
	p.advance() // consume '('
	var params []*ast.Param
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		pname := p.curToken.Literal
		pstart := p.curToken
		var ptype ast.TypeExpr
		if p.peekIs(lexer.COLON) {
			p.advance() // cur = ':'
			p.advance() // cur = type name start
			ptype = p.parseTypeExpr()
		}
		params = append(params, &ast.Param{Name: pname, Type: ptype, Span: p.span(pstart)})
		if p.peekIs(lexer.COMMA) {
			p.advance() // cur = ','
		}
		p.advance() // cur = next param name, or ')'
	}
	// cur == ')'
	var ret ast.TypeExpr
	if p.peekIs(lexer.ARROW) {
		p.advance() // cur = '->'
		p.advance() // cur = return type start
		ret = p.parseTypeExpr()
	}
	body := p.parseBlock() // expects peek == ':'
	return &ast.FuncDef{Name: name, Params: params, ReturnT: ret, Body: body, Decorator: dec, Span: p.span(start)}
}

func (p *Parser) parseClassDef(dec ast.Decorator) ast.Stmt {
	start := p.curToken
	p.advance() // consume 'class'
	name := p.curToken.Literal
	if !p.expect(lexer.COLON) {
		return nil
	}
	if !p.peekIs(lexer.NEWLINE) {
		// Degenerate empty class with no field block; advance past the
		// COLON so cur still lands at the statement's own end, matching
		// every other statement parser's convention.
		p.advance()
		return &ast.ClassDef{Name: name, Decorator: dec, Span: p.span(start)}
	}
	p.advance() // cur = NEWLINE
	p.skipNewlines()
	var fields []*ast.Param
	if p.curIs(lexer.INDENT) {
		p.advance()
		for !p.curIs(lexer.DEDENT) && !p.curIs(lexer.EOF) {
			fname := p.curToken.Literal
			fstart := p.curToken
			var ftype ast.TypeExpr
			if p.peekIs(lexer.COLON) {
				p.advance() // cur = ':'
				p.advance() // cur = type name start
				ftype = p.parseTypeExpr()
			}
			fields = append(fields, &ast.Param{Name: fname, Type: ftype, Span: p.span(fstart)})
			if p.peekIs(lexer.NEWLINE) {
				p.advance()
			}
			p.skipNewlines()
		}
		if p.curIs(lexer.DEDENT) {
			p.advance()
		}
	}
	return &ast.ClassDef{Name: name, Fields: fields, Decorator: dec, Span: p.span(start)}
}

func (p *Parser) parseVarDef(kind ast.VarKind) ast.Stmt {
	start := p.curToken
	p.advance() // consume 'var'/'const'
	name := p.curToken.Literal
	var typ ast.TypeExpr
	if p.peekIs(lexer.COLON) {
		p.advance() // cur = ':'
		p.advance() // cur = type name start
		typ = p.parseTypeExpr()
	}
	if !p.expect(lexer.ASSIGN) {
		return nil
	}
	p.advance() // cur = value start
	val := p.parseExpression(LOWEST)
	p.finishLine()
	return &ast.VarDef{Name: name, Kind: kind, Type: typ, Value: val, Span: p.span(start)}
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.curToken
	p.advance() // consume 'if'
	cond := p.parseExpression(LOWEST)
	body := p.parseBlock()
	// After a multi-line suite, parseBlock already consumed the closing
	// DEDENT, so cur sits directly on a same-indent ELSE (if any). After
	// a single-line suite (`if x: return y`), cur instead sits on the
	// NEWLINE/DEDENT/EOF boundary finishLine left behind; skip past it
	// to see whether ELSE follows on the next line.
	if p.curIs(lexer.NEWLINE) {
		p.advance()
		p.skipNewlines()
	}
	var orelse []ast.Stmt
	if p.curIs(lexer.ELSE) {
		orelse = p.parseBlock()
	}
	return &ast.If{Cond: cond, Body: body, OrElse: orelse, Span: p.span(start)}
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.curToken
	p.advance() // consume 'while'
	cond := p.parseExpression(LOWEST)
	body := p.parseBlock()
	return &ast.While{Cond: cond, Body: body, Span: p.span(start)}
}

func (p *Parser) parseFor() ast.Stmt {
	start := p.curToken
	p.advance() // consume 'for'
	name := p.curToken.Literal
	if !p.expect(lexer.IN) {
		return nil
	}
	p.advance() // cur = iterable start
	iter := p.parseExpression(LOWEST)
	body := p.parseBlock()
	return &ast.For{Name: name, Iter: iter, Body: body, Span: p.span(start)}
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.curToken
	if p.peekIs(lexer.NEWLINE) || p.peekIs(lexer.DEDENT) || p.peekIs(lexer.EOF) {
		p.advance()
		return &ast.Return{Span: p.span(start)}
	}
	p.advance() // cur = value start
	val := p.parseExpression(LOWEST)
	p.finishLine()
	return &ast.Return{Value: val, Span: p.span(start)}
}

func (p *Parser) parseRaise() ast.Stmt {
	start := p.curToken
	p.advance() // cur = value start
	val := p.parseExpression(LOWEST)
	p.finishLine()
	return &ast.Raise{Value: val, Span: p.span(start)}
}

func (p *Parser) parseAssert() ast.Stmt {
	start := p.curToken
	p.advance() // cur = cond start
	cond := p.parseExpression(LOWEST)
	var msg ast.Expr
	if p.peekIs(lexer.COMMA) {
		p.advance() // cur = ','
		p.advance() // cur = msg start
		msg = p.parseExpression(LOWEST)
	}
	p.finishLine()
	return &ast.Assert{Cond: cond, Msg: msg, Span: p.span(start)}
}

// parseExprOrAssignStmt handles plain expression statements plus
// `target = value`, `a, b = value`, and `target OP= value`.
func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	start := p.curToken
	first := p.parseExpression(LOWEST)

	if p.peekIs(lexer.COMMA) {
		names := []string{}
		if n, ok := first.(*ast.Name); ok {
			names = append(names, n.Value)
		}
		for p.peekIs(lexer.COMMA) {
			p.advance() // cur = ','
			p.advance() // cur = next name
			names = append(names, p.curToken.Literal)
		}
		if !p.expect(lexer.ASSIGN) {
			return nil
		}
		p.advance() // cur = value start
		val := p.parseExpression(LOWEST)
		p.finishLine()
		return &ast.UnpackAssign{Targets: names, Value: val, Span: p.span(start)}
	}

	switch {
	case p.peekIs(lexer.ASSIGN):
		p.advance() // cur = '='
		p.advance() // cur = value start
		val := p.parseExpression(LOWEST)
		p.finishLine()
		return &ast.Assign{Target: first, Value: val, Span: p.span(start)}
	case p.peekIs(lexer.PLUSEQ), p.peekIs(lexer.MINUSEQ), p.peekIs(lexer.STAREQ), p.peekIs(lexer.SLASHEQ):
		op := augOpSymbol(p.peekToken.Kind)
		p.advance() // cur = 'OP='
		p.advance() // cur = value start
		val := p.parseExpression(LOWEST)
		p.finishLine()
		return &ast.AugAssign{Target: first, Op: op, Value: val, Span: p.span(start)}
	default:
		p.finishLine()
		return &ast.StmtExpr{Value: first, Span: p.span(start)}
	}
}

func augOpSymbol(k lexer.Kind) string {
	switch k {
	case lexer.PLUSEQ:
		return "+"
	case lexer.MINUSEQ:
		return "-"
	case lexer.STAREQ:
		return "*"
	case lexer.SLASHEQ:
		return "/"
	}
	return "?"
}
