// Package fqn implements the Fully-Qualified Name model: an ordered
// list of (symbol, qualifier-list) parts rooted at a module name,
// rendered `modname::a::b[q1,q2]::c`. Every global object in the VM
// has exactly one FQN, and FQNs are interned process-wide so equality
// reduces to pointer/string comparison.
package fqn

import (
	"fmt"
	"strings"
)

// Part is one `symbol[q1,q2,...]` segment of an FQN, following the
// module root. Qualifiers are themselves FQNs, e.g. the type
// arguments of a generic specialization.
type Part struct {
	Symbol     string
	Qualifiers []FQN
}

// FQN is an ordered list of parts rooted at a module name.
type FQN struct {
	Module string
	Parts  []Part
}

// New builds an FQN for a bare symbol in a module, with no qualifier
// parts.
func New(module, symbol string) FQN {
	return FQN{Module: module, Parts: []Part{{Symbol: symbol}}}
}

// Qualified builds an FQN for a symbol carrying type-argument
// qualifiers, e.g. `test::add[i32]`.
func Qualified(module, symbol string, qualifiers ...FQN) FQN {
	return FQN{Module: module, Parts: []Part{{Symbol: symbol, Qualifiers: qualifiers}}}
}

// Child derives a nested FQN by appending a part, e.g. turning
// `mod::Outer` into `mod::Outer::inner`.
func (f FQN) Child(symbol string, qualifiers ...FQN) FQN {
	parts := make([]Part, len(f.Parts), len(f.Parts)+1)
	copy(parts, f.Parts)
	parts = append(parts, Part{Symbol: symbol, Qualifiers: qualifiers})
	return FQN{Module: f.Module, Parts: parts}
}

// Symbol returns the innermost part's name, e.g. "c" for `mod::a::c`.
func (f FQN) Symbol() string {
	if len(f.Parts) == 0 {
		return ""
	}
	return f.Parts[len(f.Parts)-1].Symbol
}

// needsQuoting reports whether a symbol must be backtick-quoted in
// wire syntax because it doesn't match [A-Za-z0-9_]+.
func needsQuoting(sym string) bool {
	if sym == "" {
		return true
	}
	for _, r := range sym {
		isOK := r == '_' ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9')
		if !isOK {
			return true
		}
	}
	return false
}

func renderSymbol(sym string) string {
	if !needsQuoting(sym) {
		return sym
	}
	var b strings.Builder
	b.WriteByte('`')
	for _, r := range sym {
		if r == '`' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('`')
	return b.String()
}

// Render produces the canonical wire-syntax string for an FQN: two
// FQNs compare equal iff their renders match.
func (f FQN) Render() string {
	var b strings.Builder
	b.WriteString(renderSymbol(f.Module))
	for _, part := range f.Parts {
		b.WriteString("::")
		b.WriteString(renderSymbol(part.Symbol))
		if len(part.Qualifiers) > 0 {
			b.WriteByte('[')
			for i, q := range part.Qualifiers {
				if i > 0 {
					b.WriteByte(',')
				}
				b.WriteString(q.Render())
			}
			b.WriteByte(']')
		}
	}
	return b.String()
}

func (f FQN) String() string { return f.Render() }

// Equal compares two FQNs by their normalized render.
func Equal(a, b FQN) bool { return a.Render() == b.Render() }

// Parse parses wire syntax produced by Render; it is the left inverse
// of Render (Parse(Render(f)) == f for any FQN built via New/Qualified/
// Child) and reports false if s is not well-formed wire syntax.
func Parse(s string) (FQN, bool) {
	toks, ok := lexWire(s)
	if !ok {
		return FQN{}, false
	}
	p := &wireParser{toks: toks}
	f, ok := p.parseFQN()
	if !ok || p.pos != len(p.toks) {
		return FQN{}, false
	}
	return f, true
}

type wireToken struct {
	kind string // "sym", "::", "[", "]", ","
	text string
}

type wireParser struct {
	toks []wireToken
	pos  int
}

func (p *wireParser) peek() (wireToken, bool) {
	if p.pos >= len(p.toks) {
		return wireToken{}, false
	}
	return p.toks[p.pos], true
}

func (p *wireParser) next() (wireToken, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

// parseFQN consumes `symbol (:: symbol ([ fqn (, fqn)* ])?)*`.
func (p *wireParser) parseFQN() (FQN, bool) {
	mod, ok := p.next()
	if !ok || mod.kind != "sym" {
		return FQN{}, false
	}
	f := FQN{Module: mod.text}
	for {
		sep, ok := p.peek()
		if !ok || sep.kind != "::" {
			break
		}
		p.next()
		sym, ok := p.next()
		if !ok || sym.kind != "sym" {
			return FQN{}, false
		}
		part := Part{Symbol: sym.text}
		if lb, ok := p.peek(); ok && lb.kind == "[" {
			p.next()
			for {
				q, ok := p.parseFQN()
				if !ok {
					return FQN{}, false
				}
				part.Qualifiers = append(part.Qualifiers, q)
				nt, ok := p.next()
				if !ok {
					return FQN{}, false
				}
				if nt.kind == "," {
					continue
				}
				if nt.kind == "]" {
					break
				}
				return FQN{}, false
			}
		}
		f.Parts = append(f.Parts, part)
	}
	if len(f.Parts) == 0 {
		return FQN{}, false
	}
	return f, true
}

// lexWire splits wire syntax into module/symbol/bracket/comma tokens,
// honoring backtick-quoted symbols.
func lexWire(s string) ([]wireToken, bool) {
	var toks []wireToken
	i, n := 0, len(s)
	for i < n {
		switch {
		case strings.HasPrefix(s[i:], "::"):
			toks = append(toks, wireToken{kind: "::"})
			i += 2
		case s[i] == '[':
			toks = append(toks, wireToken{kind: "["})
			i++
		case s[i] == ']':
			toks = append(toks, wireToken{kind: "]"})
			i++
		case s[i] == ',':
			toks = append(toks, wireToken{kind: ","})
			i++
		case s[i] == '`':
			var b strings.Builder
			i++
			for i < n && s[i] != '`' {
				if s[i] == '\\' && i+1 < n {
					i++
				}
				b.WriteByte(s[i])
				i++
			}
			if i >= n {
				return nil, false
			}
			i++ // closing backtick
			toks = append(toks, wireToken{kind: "sym", text: b.String()})
		default:
			start := i
			for i < n {
				c := s[i]
				isOK := c == '_' ||
					(c >= 'a' && c <= 'z') ||
					(c >= 'A' && c <= 'Z') ||
					(c >= '0' && c <= '9')
				if !isOK {
					break
				}
				i++
			}
			if i == start {
				return nil, false
			}
			toks = append(toks, wireToken{kind: "sym", text: s[start:i]})
		}
	}
	return toks, true
}

func (f FQN) GoString() string {
	return fmt.Sprintf("fqn.Parse(%q)", f.Render())
}
