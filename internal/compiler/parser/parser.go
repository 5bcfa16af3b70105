package parser

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/btouchard/seed/internal/compiler/ast"
	"github.com/btouchard/seed/internal/compiler/errors"
	"github.com/btouchard/seed/internal/compiler/lexer"
	"github.com/btouchard/seed/internal/compiler/token"
	"github.com/btouchard/seed/internal/compiler/validator"
)

// Options configures a Parser.
type Options struct {
	// File names the source in positions and error messages. Empty for
	// in-memory input.
	File string
	// Strict rejects unknown constraint keys and theme groups.
	Strict bool
	Logger *zap.Logger
}

// File is one parsed source file, before its imports are resolved.
type File struct {
	Path   string
	Spec   *ast.Spec
	Source *errors.Source

	// Decls holds the models, screens, themes and imports of the file in
	// source order, app body included.
	Decls []ast.Node
}

// statement is one logical line: it ends at a newline, at a `{` that opens
// a block, or right before a `}`.
type statement struct {
	tokens []token.Token
	opens  bool
	brace  token.Token
	closes bool
	line   int
	column int
}

type Parser struct {
	l         *lexer.Lexer
	input     string
	opts      Options
	logger    *zap.Logger
	src       *errors.Source
	validator *validator.Validator

	curToken  token.Token
	peekToken token.Token

	blocks blockTracker
	file   *File
	index  *ast.Index
}

func New(l *lexer.Lexer, opts Options) *Parser {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Parser{
		l:         l,
		input:     l.Input(),
		opts:      opts,
		logger:    logger,
		src:       errors.NewSource(opts.File, l.Input()),
		validator: validator.New(opts.Strict, logger),
	}
	p.nextToken()
	p.nextToken()
	return p
}

// ParseString parses in-memory source.
func ParseString(input string, opts Options) (*File, error) {
	return New(lexer.New(input), opts).Parse()
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

// Parse consumes the whole input. Any failure aborts the parse and is
// returned with its line context.
func (p *Parser) Parse() (*File, error) {
	spec := ast.NewSpec()
	spec.Files = []string{p.opts.File}
	p.file = &File{Path: p.opts.File, Spec: spec, Source: p.src}
	p.index = ast.NewIndex(spec)

	for {
		stmt, err := p.readStatement()
		if err != nil {
			return nil, err
		}
		if stmt == nil {
			break
		}
		if err := p.parseStatement(stmt); err != nil {
			return nil, p.src.Attach(err, stmt.line, stmt.column)
		}
	}

	if b, ok := p.blocks.unclosed(); ok {
		err := errors.New(errors.UnclosedBlock, "Unclosed brace from line %d: %s", b.line, b.text)
		return nil, p.src.Attach(err, b.line, b.column)
	}

	p.logger.Debug("file parsed",
		zap.String("file", p.opts.File),
		zap.Int("models", len(spec.Models)),
		zap.Int("screens", len(spec.Screens)),
		zap.Int("themes", len(spec.Themes)),
		zap.Int("imports", len(spec.Imports)))
	return p.file, nil
}

// readStatement returns the next logical line, or nil at end of input.
func (p *Parser) readStatement() (*statement, error) {
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
	if p.curTokenIs(token.EOF) {
		return nil, nil
	}

	stmt := &statement{line: p.curToken.Pos.Line, column: p.curToken.Pos.Column}
	if p.curTokenIs(token.RBRACE) {
		stmt.closes = true
		p.nextToken()
		return stmt, nil
	}

	inModel := p.currentKind() == blockModel
	for {
		switch p.curToken.Type {
		case token.NEWLINE:
			p.nextToken()
			return stmt, nil
		case token.EOF, token.RBRACE:
			return stmt, nil
		case token.LBRACE:
			if inModel && !p.opensDeclaration(stmt) {
				if err := p.readInlineBlock(stmt); err != nil {
					return nil, err
				}
				continue
			}
			stmt.opens = true
			stmt.brace = p.curToken
			p.nextToken()
			return stmt, nil
		}
		stmt.tokens = append(stmt.tokens, p.curToken)
		p.nextToken()
	}
}

// readInlineBlock appends a field's constraint block, braces included, to
// stmt. The block may span lines and never touches the block stacks.
func (p *Parser) readInlineBlock(stmt *statement) error {
	open := p.curToken
	depth := 0
	for {
		switch p.curToken.Type {
		case token.EOF:
			text, _ := p.src.Line(open.Pos.Line)
			err := errors.New(errors.UnclosedBlock, "Unclosed brace from line %d: %s", open.Pos.Line, strings.TrimSpace(text))
			return p.src.Attach(err, open.Pos.Line, open.Pos.Column)
		case token.NEWLINE:
			p.nextToken()
			continue
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
		}
		stmt.tokens = append(stmt.tokens, p.curToken)
		p.nextToken()
		if depth == 0 {
			return nil
		}
	}
}

// opensDeclaration reports whether the `{` at curToken opens a declaration
// block rather than a constraint block: the statement starts with a
// declaration keyword and the brace ends the line.
func (p *Parser) opensDeclaration(stmt *statement) bool {
	if len(stmt.tokens) == 0 {
		return false
	}
	switch stmt.tokens[0].Type {
	case token.MODEL, token.THEME, token.APP, token.SCREEN, token.IMPORT, token.USE:
	default:
		return false
	}
	return p.peekToken.Type == token.NEWLINE || p.peekToken.Type == token.EOF
}

func (p *Parser) currentKind() blockKind {
	if f := p.blocks.current(); f != nil {
		return f.kind
	}
	return ""
}

func (p *Parser) parseStatement(stmt *statement) error {
	if stmt.closes {
		_, err := p.blocks.close()
		return err
	}
	if len(stmt.tokens) == 0 {
		return errors.New(errors.InvalidDeclaration, "block opened without a declaration")
	}

	f := p.blocks.current()
	if f == nil {
		return p.parseTopLevel(stmt)
	}
	switch f.kind {
	case blockApp:
		return p.parseAppBody(stmt)
	case blockModel:
		return p.parseField(stmt, f.model)
	case blockTheme, blockGroup:
		return p.parseThemeEntry(stmt, f)
	case blockOverrides:
		return p.parseOverride(stmt, f.theme.Overrides)
	case blockUse:
		return p.parseOverride(stmt, p.file.Spec.App.ThemeOverrides)
	}
	return errors.New(errors.Internal, "unknown block kind %q", f.kind)
}

func (p *Parser) parseTopLevel(stmt *statement) error {
	switch stmt.tokens[0].Type {
	case token.IMPORT:
		return p.parseImport(stmt)
	case token.APP:
		return p.parseApp(stmt)
	case token.MODEL:
		return p.parseModel(stmt)
	case token.SCREEN:
		return p.parseScreen(stmt)
	case token.THEME:
		return p.parseTheme(stmt)
	}
	return errors.New(errors.InvalidDeclaration, "Unknown declaration '%s'", stmt.tokens[0].Literal)
}

func (p *Parser) parseAppBody(stmt *statement) error {
	switch stmt.tokens[0].Type {
	case token.MODEL:
		return p.parseModel(stmt)
	case token.SCREEN:
		return p.parseScreen(stmt)
	case token.THEME:
		return p.parseTheme(stmt)
	case token.USE:
		return p.parseUse(stmt)
	case token.APP:
		return errors.New(errors.InvalidDeclaration, "App blocks cannot be nested")
	case token.IMPORT:
		return errors.New(errors.InvalidDeclaration, "Imports must be declared at top level")
	}
	return errors.New(errors.InvalidDeclaration, "Unknown declaration '%s' in app block", stmt.tokens[0].Literal)
}

// raw returns the source text spanned by toks.
func (p *Parser) raw(toks []token.Token) string {
	if len(toks) == 0 {
		return ""
	}
	return p.input[toks[0].Pos.Offset:toks[len(toks)-1].End()]
}

// value returns the text of a value: the literal of a lone string, the
// source text otherwise.
func (p *Parser) value(toks []token.Token) (string, error) {
	for _, t := range toks {
		if t.Type == token.ILLEGAL && strings.HasPrefix(t.Literal, `"`) {
			return "", errors.New(errors.UnexpectedToken, "Unterminated string %s", t.Literal)
		}
	}
	if len(toks) == 1 && toks[0].Type == token.STRING {
		return toks[0].Literal, nil
	}
	return strings.TrimSpace(p.raw(toks)), nil
}

func (p *Parser) pos(t token.Token) ast.Pos {
	return ast.Pos{File: p.opts.File, Line: t.Pos.Line, Column: t.Pos.Column}
}

func (p *Parser) openBrace(stmt *statement) openBrace {
	text, _ := p.src.Line(stmt.brace.Pos.Line)
	return openBrace{
		line:   stmt.brace.Pos.Line,
		column: stmt.brace.Pos.Column,
		text:   strings.TrimSpace(text),
	}
}

func describe(toks []token.Token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		if t.Type == token.STRING {
			parts[i] = fmt.Sprintf("%q", t.Literal)
			continue
		}
		parts[i] = t.Literal
	}
	return strings.Join(parts, " ")
}
