package lexer

import "testing"

func TestNextTokenCoversCoreSyntax(t *testing.T) {
	input := "def add(a: i32, b: i32) -> i32:\n" +
		"    var total: i32 = a + b\n" +
		"    total += 1\n" +
		"    if total >= 10 and not False:\n" +
		"        return total\n" +
		"    return -1\n"

	tests := []struct {
		kind    Kind
		literal string
	}{
		{DEF, "def"},
		{IDENT, "add"},
		{LPAREN, "("},
		{IDENT, "a"},
		{COLON, ":"},
		{IDENT, "i32"},
		{COMMA, ","},
		{IDENT, "b"},
		{COLON, ":"},
		{IDENT, "i32"},
		{RPAREN, ")"},
		{ARROW, "->"},
		{IDENT, "i32"},
		{COLON, ":"},
		{NEWLINE, "\\n"},
		{INDENT, ""},
		{VAR, "var"},
		{IDENT, "total"},
		{COLON, ":"},
		{IDENT, "i32"},
		{ASSIGN, "="},
		{IDENT, "a"},
		{PLUS, "+"},
		{IDENT, "b"},
		{NEWLINE, "\\n"},
		{IDENT, "total"},
		{PLUSEQ, "+="},
		{INT, "1"},
		{NEWLINE, "\\n"},
		{IF, "if"},
		{IDENT, "total"},
		{GE, ">="},
		{INT, "10"},
		{AND, "and"},
		{NOT, "not"},
		{FALSE, "False"},
		{COLON, ":"},
		{NEWLINE, "\\n"},
		{INDENT, ""},
		{RETURN, "return"},
		{IDENT, "total"},
		{NEWLINE, "\\n"},
		{DEDENT, ""},
		{RETURN, "return"},
		{MINUS, "-"},
		{INT, "1"},
		{NEWLINE, "\\n"},
		{DEDENT, ""},
		{EOF, ""},
	}

	l := New(input, "test.spy")
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Kind != tt.kind {
			t.Fatalf("test[%d] - kind wrong. expected=%s, got=%s (literal %q)", i, tt.kind, tok.Kind, tok.Literal)
		}
		if tt.literal != "" && tok.Literal != tt.literal {
			t.Fatalf("test[%d] - literal wrong. expected=%q, got=%q", i, tt.literal, tok.Literal)
		}
	}
}

func TestNextTokenTracksLineAndColumn(t *testing.T) {
	l := New("x\ny\n", "test.spy")
	first := l.NextToken()
	if first.Line != 1 {
		t.Fatalf("expected line 1, got %d", first.Line)
	}
	l.NextToken() // NEWLINE
	third := l.NextToken()
	if third.Line != 2 {
		t.Fatalf("expected line 2, got %d", third.Line)
	}
}

func TestReadStringHandlesEscapes(t *testing.T) {
	l := New(`"a\nb"` + "\n", "test.spy")
	tok := l.NextToken()
	if tok.Kind != STRING {
		t.Fatalf("expected STRING, got %s", tok.Kind)
	}
	if tok.Literal != "a\nb" {
		t.Fatalf("expected escape sequence decoded, got %q", tok.Literal)
	}
}
