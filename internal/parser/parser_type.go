package parser

import (
	"github.com/spy-lang/spy/internal/ast"
	"github.com/spy-lang/spy/internal/lexer"
)

// parseTypeExpr parses a type annotation: a bare name (`i32`, `str`,
// `MyStruct`) or a generic instantiation (`list[T]`, `dict[K, V]`).
// Precondition: cur is the leading IDENT. Postcondition: cur is the
// last token consumed (the name, or the closing ']').
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	if !p.curIs(lexer.IDENT) {
		p.errs = append(p.errs, &parseError{p.curToken, "expected type name"})
		return nil
	}
	start := p.curToken
	name := p.curToken.Literal

	if !p.peekIs(lexer.LBRACKET) {
		return &ast.NamedType{Name: name, Span: p.span(start)}
	}

	p.advance() // cur = '['
	p.advance() // cur = first type arg
	var args []ast.TypeExpr
	for {
		args = append(args, p.parseTypeExpr())
		if p.peekIs(lexer.COMMA) {
			p.advance() // cur = ','
			p.advance() // cur = next type arg
			continue
		}
		break
	}
	p.expect(lexer.RBRACKET) // advances so cur = ']'
	return &ast.GenericType{Name: name, Args: args, Span: p.span(start)}
}
