package parser

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/btouchard/seed/internal/compiler/ast"
	"github.com/btouchard/seed/internal/compiler/errors"
	"github.com/btouchard/seed/internal/compiler/theme"
	"github.com/btouchard/seed/internal/compiler/token"
	"github.com/btouchard/seed/internal/compiler/validator"
)

var (
	themeKeyRe  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	themePathRe = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+)*$`)
)

// parseImport handles: import "std/themes"
func (p *Parser) parseImport(stmt *statement) error {
	toks := stmt.tokens
	if stmt.opens || len(toks) != 2 || toks[1].Type != token.STRING {
		return errors.New(errors.InvalidDeclaration, "Invalid import declaration - expected 'import \"path\"'")
	}
	path := strings.TrimSpace(toks[1].Literal)
	if path == "" {
		return errors.New(errors.InvalidDeclaration, "Import path cannot be empty")
	}
	if filepath.Ext(path) == "" {
		path += ".seed"
	}

	imp := &ast.Import{Path: path, Pos: p.pos(toks[0])}
	p.file.Spec.Imports = append(p.file.Spec.Imports, imp)
	p.file.Decls = append(p.file.Decls, imp)
	return nil
}

// parseApp handles: app Todo "Todo App" {
func (p *Parser) parseApp(stmt *statement) error {
	spec := p.file.Spec
	if spec.App != nil {
		return errors.New(errors.InvalidDeclaration, "Only one app block is allowed (first declared on line %d)", spec.App.Pos.Line)
	}
	toks := stmt.tokens
	if !stmt.opens || len(toks) != 3 || !toks[1].IsWord() || toks[2].Type != token.STRING {
		return errors.New(errors.InvalidDeclaration, "Invalid app declaration - expected 'app Name \"Title\" {'")
	}
	name, title := toks[1].Literal, toks[2].Literal
	if !validator.IsIdentifier(name) {
		return errors.New(errors.InvalidDeclaration, "Invalid app name: %s", name)
	}
	if strings.TrimSpace(title) == "" {
		return errors.New(errors.InvalidDeclaration, "App title cannot be empty")
	}
	if p.index.Model(name) != nil || p.index.Screen(name) != nil {
		return errors.New(errors.DuplicateName, "Duplicate name: %s", name)
	}

	spec.App = &ast.App{Name: name, Title: title, Pos: p.pos(toks[0])}
	p.blocks.open(p.openBrace(stmt), frame{kind: blockApp})
	return nil
}

// parseModel handles: model Task {
func (p *Parser) parseModel(stmt *statement) error {
	toks := stmt.tokens
	if !stmt.opens || len(toks) != 2 {
		return errors.New(errors.InvalidDeclaration, "Invalid model declaration - expected 'model Name {'")
	}
	name := toks[1].Literal
	if !toks[1].IsWord() || !validator.IsIdentifier(name) {
		return errors.New(errors.InvalidDeclaration, "Invalid model name: %s", name)
	}
	spec := p.file.Spec
	if p.index.Model(name) != nil {
		return errors.New(errors.DuplicateModelName, "Duplicate model name: %s", name)
	}
	if spec.App != nil && spec.App.Name == name {
		return errors.New(errors.DuplicateName, "Duplicate name: %s", name)
	}

	model := &ast.Model{Name: name, Fields: []*ast.Field{}, Pos: p.pos(toks[0])}
	p.index.AddModel(model)
	p.file.Decls = append(p.file.Decls, model)
	p.blocks.open(p.openBrace(stmt), frame{kind: blockModel, model: model})
	return nil
}

// parseScreen handles: screen Tasks using Task
func (p *Parser) parseScreen(stmt *statement) error {
	toks := stmt.tokens
	if stmt.opens || len(toks) != 4 || toks[2].Literal != "using" {
		return errors.New(errors.InvalidDeclaration, "Invalid screen declaration - expected 'screen Name using Model'")
	}
	name, model := toks[1].Literal, toks[3].Literal
	if !toks[1].IsWord() || !validator.IsIdentifier(name) {
		return errors.New(errors.InvalidDeclaration, "Invalid screen name: %s", name)
	}
	if !toks[3].IsWord() || !validator.IsIdentifier(model) {
		return errors.New(errors.InvalidDeclaration, "Invalid model reference: %s", model)
	}
	spec := p.file.Spec
	if p.index.Screen(name) != nil {
		return errors.New(errors.DuplicateScreenName, "Duplicate screen name: %s", name)
	}
	if spec.App != nil && spec.App.Name == name {
		return errors.New(errors.DuplicateName, "Duplicate name: %s", name)
	}

	screen := &ast.Screen{Name: name, Model: model, Pos: p.pos(toks[0])}
	p.index.AddScreen(screen)
	p.file.Decls = append(p.file.Decls, screen)
	return nil
}

// parseTheme handles: theme Dark ["Dark mode"] [extends Light] {
func (p *Parser) parseTheme(stmt *statement) error {
	const usage = "Invalid theme declaration - expected 'theme Name [\"Title\"] [extends Base] {'"
	toks := stmt.tokens
	if !stmt.opens || len(toks) < 2 {
		return errors.New(errors.InvalidDeclaration, usage)
	}
	name := toks[1].Literal
	if !toks[1].IsWord() || !validator.IsIdentifier(name) {
		return errors.New(errors.InvalidDeclaration, "Invalid theme name: %s", name)
	}

	t := &ast.Theme{Name: name, Properties: ast.Tree{}, Pos: p.pos(toks[0])}
	rest := toks[2:]
	if len(rest) > 0 && rest[0].Type == token.STRING {
		t.Title = rest[0].Literal
		rest = rest[1:]
	}
	if len(rest) > 0 {
		if len(rest) != 2 || rest[0].Type != token.EXTENDS {
			return errors.New(errors.InvalidDeclaration, usage)
		}
		if !rest[1].IsWord() || !validator.IsIdentifier(rest[1].Literal) {
			return errors.New(errors.InvalidDeclaration, "Invalid base theme name: %s", rest[1].Literal)
		}
		t.Extends = rest[1].Literal
	}

	if p.index.Theme(name) != nil {
		return errors.New(errors.DuplicateThemeName, "Duplicate theme name: %s", name)
	}
	p.index.PutTheme(t)
	p.file.Decls = append(p.file.Decls, t)
	p.blocks.open(p.openBrace(stmt), frame{kind: blockTheme, theme: t, group: t.Properties})
	return nil
}

// parseUse handles: use theme Light [{ colors.primary: #f00 }]
func (p *Parser) parseUse(stmt *statement) error {
	toks := stmt.tokens
	if len(toks) != 3 || toks[1].Type != token.THEME {
		return errors.New(errors.InvalidDeclaration, "Invalid use declaration - expected 'use theme Name'")
	}
	name := toks[2].Literal
	if !toks[2].IsWord() || !validator.IsIdentifier(name) {
		return errors.New(errors.InvalidDeclaration, "Invalid theme reference: %s", name)
	}
	app := p.file.Spec.App
	if app.Theme != "" {
		return errors.New(errors.InvalidDeclaration, "App '%s' already uses theme '%s'", app.Name, app.Theme)
	}

	app.Theme = name
	if stmt.opens {
		app.ThemeOverrides = map[string]string{}
		p.blocks.open(p.openBrace(stmt), frame{kind: blockUse})
	}
	return nil
}

// parseThemeEntry handles the body of a theme or of one of its groups:
// `key: value`, `key {`, `overrides {` and `extends: Base`.
func (p *Parser) parseThemeEntry(stmt *statement, f *frame) error {
	toks := stmt.tokens
	topLevel := f.kind == blockTheme

	if stmt.opens {
		key := p.raw(toks)
		if !themeKeyRe.MatchString(key) {
			return errors.New(errors.UnexpectedToken, "Invalid theme group name: %s", key)
		}
		if topLevel && key == "overrides" {
			if f.theme.Overrides == nil {
				f.theme.Overrides = map[string]string{}
			}
			p.blocks.open(p.openBrace(stmt), frame{kind: blockOverrides, theme: f.theme})
			return nil
		}
		if topLevel && p.validator.Strict() && !theme.Groups[key] {
			return errors.New(errors.UnknownThemeToken, "Unknown theme group '%s' in theme '%s'", key, f.theme.Name)
		}
		group, exists := f.group[key]
		sub, isGroup := group.(ast.Tree)
		if exists && !isGroup {
			return errors.New(errors.DuplicateName, "Theme token '%s' is already defined as a value", key)
		}
		if !exists {
			sub = ast.Tree{}
			f.group[key] = sub
		}
		p.blocks.open(p.openBrace(stmt), frame{kind: blockGroup, theme: f.theme, group: sub})
		return nil
	}

	colon := indexOf(toks, token.COLON)
	if colon <= 0 {
		return errors.New(errors.UnexpectedToken, "Expected 'key: value' in theme '%s', got '%s'", f.theme.Name, describe(toks))
	}
	key := p.raw(toks[:colon])
	if !themeKeyRe.MatchString(key) {
		return errors.New(errors.UnexpectedToken, "Invalid theme token name: %s", key)
	}
	val, err := p.themeValue(key, toks[colon+1:])
	if err != nil {
		return err
	}
	if val == "" {
		return errors.New(errors.UnexpectedToken, "Missing value for theme token '%s'", key)
	}

	if topLevel && key == "extends" {
		if !validator.IsIdentifier(val) {
			return errors.New(errors.InvalidDeclaration, "Invalid base theme name: %s", val)
		}
		if f.theme.Extends != "" && f.theme.Extends != val {
			return errors.New(errors.InvalidDeclaration, "Theme '%s' already extends '%s'", f.theme.Name, f.theme.Extends)
		}
		f.theme.Extends = val
		return nil
	}
	if topLevel && p.validator.Strict() {
		return errors.New(errors.UnknownThemeToken, "Unknown theme token '%s' in theme '%s'", key, f.theme.Name)
	}
	if _, exists := f.group[key]; exists {
		return errors.New(errors.DuplicateName, "Duplicate theme token: %s", key)
	}
	f.group[key] = val
	return nil
}

// parseOverride handles one `dotted.path: value` line of an overrides or
// use block.
func (p *Parser) parseOverride(stmt *statement, into map[string]string) error {
	toks := stmt.tokens
	if stmt.opens {
		return errors.New(errors.InvalidDeclaration, "Override blocks take 'path: value' lines only")
	}
	colon := indexOf(toks, token.COLON)
	if colon <= 0 {
		return errors.New(errors.UnexpectedToken, "Expected 'path: value' override, got '%s'", describe(toks))
	}
	path := p.raw(toks[:colon])
	if !themePathRe.MatchString(path) {
		return errors.New(errors.UnknownThemeToken, "Invalid override path: %s", path)
	}
	val, err := p.themeValue(path, toks[colon+1:])
	if err != nil {
		return err
	}
	if val == "" {
		return errors.New(errors.UnexpectedToken, "Missing value for override '%s'", path)
	}
	if _, exists := into[path]; exists {
		return errors.New(errors.DuplicateName, "Duplicate override: %s", path)
	}
	into[path] = val
	return nil
}

// themeValue reads the value of a theme token or override. A `//` starts a
// comment, so an unquoted URL arrives cut after its scheme and is rejected.
func (p *Parser) themeValue(key string, toks []token.Token) (string, error) {
	if n := len(toks); n > 1 && toks[n-1].Type == token.COLON {
		return "", errors.New(errors.UnexpectedToken, "Value of '%s' ends with ':' - quote values containing '//'", key)
	}
	return p.value(toks)
}

func indexOf(toks []token.Token, typ token.TokenType) int {
	for i, t := range toks {
		if t.Type == typ {
			return i
		}
	}
	return -1
}
