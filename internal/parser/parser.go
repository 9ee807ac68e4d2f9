// Package parser implements a small recursive-descent parser for the
// SPy surface syntax (spec §6): a Python-flavored grammar with `var`/
// `const` declarations and `@blue`/`@blue.generic`/`@blue.metafunc`/
// `@struct` decorators. It is deliberately scoped to the subset needed
// to construct the programs in spec §8 — it is not a general Python
// grammar (that full Python-AST-to-typed-SPy-AST frontend is an
// external collaborator, out of scope for the evaluation core).
package parser

import (
	"fmt"

	"github.com/spy-lang/spy/internal/ast"
	"github.com/spy-lang/spy/internal/lexer"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// Precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	OR_PREC
	AND_PREC
	NOT_PREC
	COMPARE
	SUM
	PRODUCT
	PREFIX
	CALL
	INDEX
)

var precedences = map[lexer.Kind]int{
	lexer.OR:       OR_PREC,
	lexer.AND:      AND_PREC,
	lexer.EQ:       COMPARE,
	lexer.NEQ:      COMPARE,
	lexer.LT:       COMPARE,
	lexer.GT:       COMPARE,
	lexer.LE:       COMPARE,
	lexer.GE:       COMPARE,
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.STAR:     PRODUCT,
	lexer.SLASH:    PRODUCT,
	lexer.PERCENT:  PRODUCT,
	lexer.LPAREN:   CALL,
	lexer.LBRACKET: INDEX,
	lexer.DOT:      INDEX,
}

// Parser consumes a pre-tokenized buffer and produces an ast.Module.
// Construct with New and call Parse once.
//
// The token stream is fully materialized up front (rather than pulled
// lazily from the Lexer) so that the parser can snapshot/restore its
// position — needed to disambiguate `callee[Type]` generic application
// from `target[index]` subscripting, which share a prefix.
type Parser struct {
	tokens     []lexer.Token
	pos        int // index of curToken within tokens
	errs       []error
	moduleName string

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.Kind]prefixParseFn
	infixParseFns  map[lexer.Kind]infixParseFn
}

// New creates a Parser reading from l. moduleName becomes the parsed
// Module's Name.
func New(l *lexer.Lexer, moduleName string) *Parser {
	var toks []lexer.Token
	for {
		t := l.NextToken()
		toks = append(toks, t)
		if t.Kind == lexer.EOF {
			break
		}
	}
	p := &Parser{tokens: toks, moduleName: moduleName}

	p.prefixParseFns = map[lexer.Kind]prefixParseFn{
		lexer.IDENT:    p.parseName,
		lexer.INT:      p.parseInt,
		lexer.FLOAT:    p.parseFloat,
		lexer.STRING:   p.parseString,
		lexer.TRUE:     p.parseBool,
		lexer.FALSE:    p.parseBool,
		lexer.NONE:     p.parseNone,
		lexer.LPAREN:   p.parseParenOrTuple,
		lexer.MINUS:    p.parseUnary,
		lexer.NOT:      p.parseUnary,
	}
	p.infixParseFns = map[lexer.Kind]infixParseFn{
		lexer.PLUS: p.parseBinOp, lexer.MINUS: p.parseBinOp,
		lexer.STAR: p.parseBinOp, lexer.SLASH: p.parseBinOp,
		lexer.PERCENT: p.parseBinOp,
		lexer.AND:     p.parseBinOp, lexer.OR: p.parseBinOp,
		lexer.EQ: p.parseCompare, lexer.NEQ: p.parseCompare,
		lexer.LT: p.parseCompare, lexer.GT: p.parseCompare,
		lexer.LE: p.parseCompare, lexer.GE: p.parseCompare,
		lexer.LPAREN:   p.parseCallOrGeneric,
		lexer.LBRACKET: p.parseIndexOrGeneric,
		lexer.DOT:      p.parseAttribute,
	}

	p.pos = -1
	p.advance()
	p.advance()
	return p
}

// Errors returns all parse errors accumulated during Parse.
func (p *Parser) Errors() []error { return p.errs }

func (p *Parser) tokenAt(i int) lexer.Token {
	if i < 0 {
		i = 0
	}
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[i]
}

func (p *Parser) advance() {
	p.pos++
	p.curToken = p.tokenAt(p.pos)
	p.peekToken = p.tokenAt(p.pos + 1)
}

func (p *Parser) curIs(k lexer.Kind) bool  { return p.curToken.Kind == k }
func (p *Parser) peekIs(k lexer.Kind) bool { return p.peekToken.Kind == k }

func (p *Parser) expect(k lexer.Kind) bool {
	if p.peekIs(k) {
		p.advance()
		return true
	}
	p.errs = append(p.errs, fmt.Errorf("%s:%d:%d: expected %s, got %s",
		p.peekToken.File, p.peekToken.Line, p.peekToken.Column, k, p.peekToken.Kind))
	return false
}

func (p *Parser) span(start lexer.Token) ast.Span {
	return ast.Span{
		Start: ast.Pos{File: start.File, Line: start.Line, Column: start.Column},
		End:   ast.Pos{File: p.curToken.File, Line: p.curToken.Line, Column: p.curToken.Column},
	}
}

// Parse consumes the entire token stream and returns the resulting
// Module. Parse errors are accumulated in Errors(); a non-empty error
// list does not prevent Parse from returning a best-effort Module.
func (p *Parser) Parse() *ast.Module {
	start := p.curToken
	mod := &ast.Module{Name: p.moduleName}

	p.skipNewlines()
	for !p.curIs(lexer.EOF) {
		if p.curIs(lexer.IMPORT) {
			mod.Imports = append(mod.Imports, p.parseImport())
		} else if s := p.parseStmt(); s != nil {
			mod.Body = append(mod.Body, s)
		}
		p.skipNewlines()
	}
	mod.Span = p.span(start)
	return mod
}

func (p *Parser) skipNewlines() {
	for p.curIs(lexer.NEWLINE) {
		p.advance()
	}
}

func (p *Parser) parseImport() *ast.Import {
	start := p.curToken
	p.advance() // consume 'import'
	name := p.curToken.Literal
	p.advance()
	for p.curIs(lexer.DOT) {
		name += "."
		p.advance()
		name += p.curToken.Literal
		p.advance()
	}
	return &ast.Import{ModName: name, Span: p.span(start)}
}
