package parser

import (
	"github.com/btouchard/seed/internal/compiler/ast"
	"github.com/btouchard/seed/internal/compiler/errors"
	"github.com/btouchard/seed/internal/compiler/token"
	"github.com/btouchard/seed/internal/compiler/validator"
)

// parseField handles: <name> <type> [as title] [{constraints}] [= default]
// The parts must appear in that order.
func (p *Parser) parseField(stmt *statement, model *ast.Model) error {
	toks := stmt.tokens
	if stmt.opens {
		return errors.New(errors.InvalidDeclaration, "Declarations cannot be nested inside model '%s'", model.Name)
	}
	if len(toks) < 2 {
		return errors.New(errors.InvalidDeclaration, "Invalid field declaration - expected 'name type'")
	}
	name := toks[0].Literal
	if !toks[0].IsWord() || !validator.IsIdentifier(name) {
		return errors.New(errors.InvalidDeclaration, "Invalid field name: %s", name)
	}
	if p.index.Field(model, name) != nil {
		return errors.New(errors.DuplicateFieldName, "Duplicate field name: %s", name)
	}
	if typeToks := typeRun(toks[1:]); len(typeToks) > 1 || !toks[1].IsWord() {
		return errors.New(errors.InvalidFieldType, "'%s' is not a valid type", p.raw(typeToks))
	}
	isRef, err := validator.FieldType(toks[1].Literal)
	if err != nil {
		return err
	}

	field := &ast.Field{
		Name:        name,
		Type:        toks[1].Literal,
		IsReference: isRef,
		Pos:         p.pos(toks[0]),
	}

	rest := toks[2:]
	if len(rest) > 0 && rest[0].Type == token.AS {
		if len(rest) < 2 || rest[1].Type != token.TITLE {
			return errors.New(errors.UnexpectedToken, "Expected 'title' after 'as' in field '%s'", name)
		}
		field.IsTitle = true
		rest = rest[2:]
	}

	if len(rest) > 0 && rest[0].Type == token.LBRACE {
		entries, n, err := p.constraintEntries(rest)
		if err != nil {
			return err
		}
		if err := p.validator.Constraints(field, entries); err != nil {
			return err
		}
		rest = rest[n:]
	}

	if len(rest) > 0 && rest[0].Type == token.ASSIGN {
		valueToks := adjacent(rest[1:])
		if len(valueToks) == 0 {
			return errors.New(errors.InvalidDefaultValue, "Missing default value for field '%s'", name)
		}
		raw, err := p.value(valueToks)
		if err != nil {
			return errors.New(errors.InvalidDefaultValue, "Invalid default value for field '%s': unterminated string", name)
		}
		def, err := validator.CoerceDefault(field.Type, raw)
		if err != nil {
			return err
		}
		field.Default = &def
		if extra := rest[1+len(valueToks):]; len(extra) > 0 {
			return errors.New(errors.UnexpectedToken, "Unexpected tokens after default value: '%s'", p.raw(extra))
		}
		rest = nil
	}

	if len(rest) > 0 {
		return errors.New(errors.UnexpectedToken, "Unexpected '%s' in field '%s'", describe(rest), name)
	}

	p.index.AddField(model, field)
	return nil
}

// constraintEntries reads `{key: value, ...}` from the head of toks and
// returns the entries and the number of tokens consumed. A bare key is a
// flag set to true.
func (p *Parser) constraintEntries(toks []token.Token) ([]validator.Entry, int, error) {
	var entries []validator.Entry
	i := 1
	for i < len(toks) {
		if toks[i].Type == token.RBRACE {
			return entries, i + 1, nil
		}
		if toks[i].Type == token.COMMA {
			i++
			continue
		}
		if !toks[i].IsWord() {
			return nil, 0, errors.New(errors.UnexpectedToken, "Expected constraint name, got '%s'", toks[i].Literal)
		}
		key := toks[i].Literal
		i++
		if i < len(toks) && (toks[i].Type == token.COMMA || toks[i].Type == token.RBRACE) {
			entries = append(entries, validator.Entry{Key: key, Value: "true"})
			continue
		}
		if i >= len(toks) || toks[i].Type != token.COLON {
			return nil, 0, errors.New(errors.UnexpectedToken, "Expected ':' after constraint '%s'", key)
		}
		i++

		start, depth := i, 0
		for i < len(toks) {
			t := toks[i].Type
			if depth == 0 && (t == token.COMMA || t == token.RBRACE) {
				break
			}
			switch t {
			case token.LBRACE, token.LBRACKET, token.LPAREN:
				depth++
			case token.RBRACE, token.RBRACKET, token.RPAREN:
				depth--
			}
			i++
		}
		if i == start {
			return nil, 0, errors.New(errors.InvalidConstraint, "Missing value for constraint '%s'", key)
		}
		val, err := p.value(toks[start:i])
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, validator.Entry{Key: key, Value: val})
	}
	return nil, 0, errors.New(errors.UnexpectedToken, "Unterminated constraint block")
}

// typeRun returns the tokens written as the field type. A constraint block
// or default may follow the type without a space.
func typeRun(toks []token.Token) []token.Token {
	run := adjacent(toks)
	for i, t := range run {
		if i > 0 && (t.Type == token.LBRACE || t.Type == token.ASSIGN) {
			return run[:i]
		}
	}
	return run
}

// adjacent returns the leading run of tokens written without whitespace
// between them, so `-1.5` or `2024-01-31` form one value.
func adjacent(toks []token.Token) []token.Token {
	if len(toks) == 0 {
		return nil
	}
	n := 1
	for n < len(toks) && toks[n].Pos.Offset == toks[n-1].End() {
		n++
	}
	return toks[:n]
}
