package token

type TokenType string

type Position struct {
	Line   int
	Column int
	Offset int
}

type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// End returns the byte offset just past the token in the source.
// Strings are measured with their surrounding quotes.
func (t Token) End() int {
	if t.Type == STRING {
		return t.Pos.Offset + len(t.Literal) + 2
	}
	return t.Pos.Offset + len(t.Literal)
}

const (
	// Special
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"
	NEWLINE TokenType = "NEWLINE"

	// Identifiers + literals
	IDENT  TokenType = "IDENT"
	INT    TokenType = "INT"
	FLOAT  TokenType = "FLOAT"
	STRING TokenType = "STRING"

	// Operators
	ASSIGN TokenType = "="
	MINUS  TokenType = "-"
	PLUS   TokenType = "+"

	// Delimiters
	COLON     TokenType = ":"
	SEMICOLON TokenType = ";"
	COMMA     TokenType = ","
	DOT       TokenType = "."

	LPAREN   TokenType = "("
	RPAREN   TokenType = ")"
	LBRACE   TokenType = "{"
	RBRACE   TokenType = "}"
	LBRACKET TokenType = "["
	RBRACKET TokenType = "]"

	// Keywords
	APP     TokenType = "APP"
	MODEL   TokenType = "MODEL"
	SCREEN  TokenType = "SCREEN"
	THEME   TokenType = "THEME"
	IMPORT  TokenType = "IMPORT"
	USING   TokenType = "USING"
	EXTENDS TokenType = "EXTENDS"
	USE     TokenType = "USE"
	AS      TokenType = "AS"
	TITLE   TokenType = "TITLE"
	TRUE    TokenType = "TRUE"
	FALSE   TokenType = "FALSE"
)

var keywords = map[string]TokenType{
	"app":     APP,
	"model":   MODEL,
	"screen":  SCREEN,
	"theme":   THEME,
	"import":  IMPORT,
	"using":   USING,
	"extends": EXTENDS,
	"use":     USE,
	"as":      AS,
	"title":   TITLE,
	"true":    TRUE,
	"false":   FALSE,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsWord reports whether the token is an identifier or a keyword. Keywords
// are contextual in Seed: `title text` is a valid field named title.
func (t Token) IsWord() bool {
	if t.Type == IDENT {
		return true
	}
	kw, ok := keywords[t.Literal]
	return ok && kw == t.Type
}
