package lexer

import (
	"testing"

	"github.com/btouchard/seed/internal/compiler/token"
)

func TestBasicTokens(t *testing.T) {
	input := `= - + : , . ; ( ) { } [ ]`

	expected := []token.TokenType{
		token.ASSIGN, token.MINUS, token.PLUS, token.COLON, token.COMMA,
		token.DOT, token.SEMICOLON, token.LPAREN, token.RPAREN,
		token.LBRACE, token.RBRACE, token.LBRACKET, token.RBRACKET,
		token.EOF,
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp {
			t.Fatalf("test[%d] - wrong type. expected=%s, got=%s (literal=%q)", i, exp, tok.Type, tok.Literal)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := `app model screen theme import using extends use as title true false`

	expected := []token.TokenType{
		token.APP, token.MODEL, token.SCREEN, token.THEME, token.IMPORT,
		token.USING, token.EXTENDS, token.USE, token.AS, token.TITLE,
		token.TRUE, token.FALSE,
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp {
			t.Fatalf("test[%d] - expected %s, got %s(%q)", i, exp, tok.Type, tok.Literal)
		}
	}
}

func TestStrings(t *testing.T) {
	input := `"hello world" "escaped \"quote\"" ""`

	l := New(input)

	tok := l.NextToken()
	if tok.Type != token.STRING || tok.Literal != "hello world" {
		t.Fatalf("test 1 - got %s(%q)", tok.Type, tok.Literal)
	}

	tok = l.NextToken()
	if tok.Type != token.STRING || tok.Literal != `escaped \"quote\"` {
		t.Fatalf("test 2 - got %s(%q)", tok.Type, tok.Literal)
	}

	tok = l.NextToken()
	if tok.Type != token.STRING || tok.Literal != "" {
		t.Fatalf("test 3 - got %s(%q)", tok.Type, tok.Literal)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New("\"oops\nnext")

	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL for unterminated string, got %s(%q)", tok.Type, tok.Literal)
	}
	if tok.End() != len(`"oops`) {
		t.Errorf("End() = %d, want %d", tok.End(), len(`"oops`))
	}

	tok = l.NextToken()
	if tok.Type != token.NEWLINE {
		t.Fatalf("expected NEWLINE after unterminated string, got %s", tok.Type)
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		typ   token.TokenType
		lit   string
	}{
		{"42", token.INT, "42"},
		{"3.14", token.FLOAT, "3.14"},
		{"0", token.INT, "0"},
		{"1e5", token.FLOAT, "1e5"},
		{"2.5E-3", token.FLOAT, "2.5E-3"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.typ || tok.Literal != tt.lit {
			t.Errorf("input %q: expected %s(%q), got %s(%q)", tt.input, tt.typ, tt.lit, tok.Type, tok.Literal)
		}
	}
}

func TestNumberFollowedByUnit(t *testing.T) {
	l := New("16px")

	tok := l.NextToken()
	if tok.Type != token.INT || tok.Literal != "16" {
		t.Fatalf("expected INT(16), got %s(%q)", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != token.IDENT || tok.Literal != "px" {
		t.Fatalf("expected IDENT(px), got %s(%q)", tok.Type, tok.Literal)
	}
}

func TestHyphenatedIdentifier(t *testing.T) {
	l := New("font-size: 12")

	tok := l.NextToken()
	if tok.Type != token.IDENT || tok.Literal != "font-size" {
		t.Fatalf("expected IDENT(font-size), got %s(%q)", tok.Type, tok.Literal)
	}
}

func TestNewlines(t *testing.T) {
	input := "model Task {\n  title text\n}"

	expected := []token.TokenType{
		token.MODEL, token.IDENT, token.LBRACE, token.NEWLINE,
		token.IDENT, token.IDENT, token.NEWLINE,
		token.RBRACE, token.EOF,
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp {
			t.Fatalf("test[%d] - expected %s, got %s(%q)", i, exp, tok.Type, tok.Literal)
		}
	}
}

func TestLineComments(t *testing.T) {
	input := `name text // the user's name
// a whole comment line
email email`

	expected := []struct {
		typ token.TokenType
		lit string
	}{
		{token.IDENT, "name"},
		{token.IDENT, "text"},
		{token.NEWLINE, "\n"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "email"},
		{token.IDENT, "email"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ || tok.Literal != exp.lit {
			t.Fatalf("test[%d] - expected %s(%q), got %s(%q)", i, exp.typ, exp.lit, tok.Type, tok.Literal)
		}
	}
}

func TestBlockComments(t *testing.T) {
	input := `app /* inline */ Todo`

	l := New(input)
	tok := l.NextToken()
	if tok.Type != token.APP {
		t.Fatalf("expected APP, got %s", tok.Type)
	}
	tok = l.NextToken()
	if tok.Type != token.IDENT || tok.Literal != "Todo" {
		t.Fatalf("expected IDENT(Todo), got %s(%q)", tok.Type, tok.Literal)
	}
}

func TestIllegalCharacter(t *testing.T) {
	l := New("primary: #0066cc")

	l.NextToken() // primary
	l.NextToken() // :
	tok := l.NextToken()
	if tok.Type != token.ILLEGAL || tok.Literal != "#" {
		t.Fatalf("expected ILLEGAL(#), got %s(%q)", tok.Type, tok.Literal)
	}
}

func TestPositionTracking(t *testing.T) {
	input := "app Todo\n  model Task"

	l := New(input)

	expected := []token.Position{
		{Line: 1, Column: 1, Offset: 0},
		{Line: 1, Column: 5, Offset: 4},
		{Line: 1, Column: 9, Offset: 8},
		{Line: 2, Column: 3, Offset: 11},
		{Line: 2, Column: 9, Offset: 17},
	}

	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Pos != exp {
			t.Errorf("token[%d] %s(%q): expected pos %+v, got %+v", i, tok.Type, tok.Literal, exp, tok.Pos)
		}
	}
}

func TestInput(t *testing.T) {
	l := New("app Todo")
	if l.Input() != "app Todo" {
		t.Errorf("Input() = %q", l.Input())
	}
}
