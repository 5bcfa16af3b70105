package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/btouchard/seed/internal/compiler/token"
)

type Lexer struct {
	input        string
	position     int  // current offset in input (bytes)
	readPosition int  // next reading position (bytes)
	ch           rune // current character
	line         int  // current line (1-based)
	column       int  // current column (1-based)
}

func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// Input returns the source the lexer was created with. The parser slices it
// to recover raw values such as theme tokens.
func (l *Lexer) Input() string {
	return l.input
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.column++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.column,
		Offset: l.position,
	}
}

// NextToken returns the next token. Newlines are significant in Seed and are
// reported as NEWLINE tokens; runs of blank lines and comments collapse into
// the NEWLINE that ends them.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()
	var tok token.Token

	switch l.ch {
	case '\n':
		tok = l.makeToken(token.NEWLINE, "\n")
	case '=':
		tok = l.makeToken(token.ASSIGN, string(l.ch))
	case '-':
		tok = l.makeToken(token.MINUS, string(l.ch))
	case '+':
		tok = l.makeToken(token.PLUS, string(l.ch))
	case ':':
		tok = l.makeToken(token.COLON, string(l.ch))
	case ';':
		tok = l.makeToken(token.SEMICOLON, string(l.ch))
	case ',':
		tok = l.makeToken(token.COMMA, string(l.ch))
	case '.':
		tok = l.makeToken(token.DOT, string(l.ch))
	case '(':
		tok = l.makeToken(token.LPAREN, string(l.ch))
	case ')':
		tok = l.makeToken(token.RPAREN, string(l.ch))
	case '{':
		tok = l.makeToken(token.LBRACE, string(l.ch))
	case '}':
		tok = l.makeToken(token.RBRACE, string(l.ch))
	case '[':
		tok = l.makeToken(token.LBRACKET, string(l.ch))
	case ']':
		tok = l.makeToken(token.RBRACKET, string(l.ch))
	case '"':
		lit, ok := l.readString()
		tok = token.Token{Type: token.STRING, Literal: lit, Pos: pos}
		if !ok {
			tok.Type = token.ILLEGAL
			tok.Literal = `"` + lit
		}
		return tok
	case 0:
		tok.Type = token.EOF
		tok.Literal = ""
		tok.Pos = pos
		return tok
	default:
		if isLetter(l.ch) {
			tok.Pos = pos
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			return tok
		}
		if isDigit(l.ch) {
			tok.Pos = pos
			lit, isFloat := l.readNumber()
			tok.Literal = lit
			if isFloat {
				tok.Type = token.FLOAT
			} else {
				tok.Type = token.INT
			}
			return tok
		}
		tok = l.makeToken(token.ILLEGAL, string(l.ch))
	}

	l.readChar()
	return tok
}

func (l *Lexer) makeToken(typ token.TokenType, lit string) token.Token {
	return token.Token{
		Type:    typ,
		Literal: lit,
		Pos:     l.currentPos(),
	}
}

// skipWhitespaceAndComments skips spaces, tabs and carriage returns but not
// newlines. A line comment stops in front of its newline.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.readChar()
		}

		// Single-line comments
		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}

		// Multi-line comments
		if l.ch == '/' && l.peekChar() == '*' {
			l.readChar() // consume /
			l.readChar() // consume *
			for {
				if l.ch == 0 {
					break
				}
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar() // consume *
					l.readChar() // consume /
					break
				}
				l.readChar()
			}
			continue
		}

		break
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position

	// Letters, digits, underscores and hyphens (theme tokens use kebab-case)
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '-' {
		l.readChar()
	}

	return l.input[start:l.position]
}

func (l *Lexer) readNumber() (string, bool) {
	start := l.position
	isFloat := false

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar() // consume .
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '-' || next == '+' {
			isFloat = true
			l.readChar() // consume e
			if l.ch == '-' || l.ch == '+' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	return l.input[start:l.position], isFloat
}

// readString reads a double-quoted string and returns its raw content.
// The second result is false when the closing quote is missing on the line.
func (l *Lexer) readString() (string, bool) {
	l.readChar() // consume opening "
	start := l.position

	for l.ch != '"' && l.ch != 0 && l.ch != '\n' {
		if l.ch == '\\' {
			l.readChar() // consume backslash
			if l.ch != 0 && l.ch != '\n' {
				l.readChar() // consume escaped character
			}
		} else {
			l.readChar()
		}
	}

	str := l.input[start:l.position]

	if l.ch != '"' {
		return str, false
	}
	l.readChar() // consume closing "
	return str, true
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
