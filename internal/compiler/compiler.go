// Package compiler wires the Seed front end: lexing and parsing of the entry
// file, import resolution, theme inheritance and the optional reference
// check. Every failure is a *errors.ParseError carrying its line context.
package compiler

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/btouchard/seed/internal/compiler/ast"
	"github.com/btouchard/seed/internal/compiler/errors"
	"github.com/btouchard/seed/internal/compiler/parser"
	"github.com/btouchard/seed/internal/compiler/resolver"
	"github.com/btouchard/seed/internal/compiler/theme"
	"github.com/btouchard/seed/internal/compiler/validator"
)

// Options configures one compilation.
type Options struct {
	// Strict rejects unknown constraint keys and theme groups.
	Strict bool
	// StdlibPath replaces the embedded standard library with a directory.
	StdlibPath string
	// CheckReferences verifies that screens, reference fields and the app
	// theme name declared entities.
	CheckReferences bool
	Logger          *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// ParseFile parses the file at path and everything it imports.
func ParseFile(path string, opts Options) (*ast.Spec, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ImportFileNotFound, err, "Failed to resolve path %s: %v", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.Wrap(errors.ImportFileNotFound, err, "Failed to read %s: %v", path, err)
	}
	return ParseSource(abs, string(data), opts)
}

// ParseString parses in-memory source. Only std/ imports can be resolved
// since the source has no directory.
func ParseString(input string, opts Options) (*ast.Spec, error) {
	return ParseSource("", input, opts)
}

// ParseSource parses input as if it had been read from file. Relative
// imports resolve against the directory of file.
func ParseSource(file, input string, opts Options) (*ast.Spec, error) {
	logger := opts.logger()

	entry, err := parser.ParseString(input, parser.Options{
		File:   file,
		Strict: opts.Strict,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	res := resolver.New(resolver.Options{
		Strict:     opts.Strict,
		StdlibPath: opts.StdlibPath,
		Logger:     logger,
	})
	sources := res.Sources()
	spec, err := res.Resolve(entry)
	if err != nil {
		return nil, sources.Contextualize(err)
	}

	if err := theme.New(logger).Resolve(spec); err != nil {
		return nil, sources.Contextualize(err)
	}
	if opts.CheckReferences {
		if err := validator.CheckReferences(spec); err != nil {
			return nil, sources.Contextualize(err)
		}
	}

	logger.Debug("spec compiled",
		zap.String("file", file),
		zap.Int("files", len(spec.Files)),
		zap.Int("models", len(spec.Models)),
		zap.Int("screens", len(spec.Screens)),
		zap.Int("themes", len(spec.Themes)))
	return spec, nil
}
