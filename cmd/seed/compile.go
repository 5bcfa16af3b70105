package main

import (
	"flag"

	"github.com/btouchard/seed/internal/compiler"
	"github.com/btouchard/seed/internal/compiler/ast"
)

// compileFlags are shared by the commands that compile sources.
type compileFlags struct {
	strict bool
	refs   bool
}

func (c *cli) registerCompileFlags(fs *flag.FlagSet, refs bool) *compileFlags {
	f := &compileFlags{}
	fs.BoolVar(&f.strict, "strict", c.cfg.Strict, "reject unknown constraint keys and theme groups")
	fs.BoolVar(&f.refs, "refs", refs, "check that model, screen and theme references resolve")
	return f
}

func (c *cli) compilerOptions(f *compileFlags) compiler.Options {
	return compiler.Options{
		Strict:          f.strict,
		StdlibPath:      c.cfg.StdlibPath,
		CheckReferences: f.refs,
		Logger:          c.logger,
	}
}

// compile parses inputFile and everything it imports.
func (c *cli) compile(inputFile string, f *compileFlags) (*ast.Spec, error) {
	return compiler.ParseFile(inputFile, c.compilerOptions(f))
}
