package main

import (
	"flag"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/btouchard/seed/internal/compiler/ast"
)

func (c *cli) cmdThemes(args []string) error {
	fs := flag.NewFlagSet("themes", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	name := fs.String("name", "", "only print this theme")
	active := fs.Bool("active", false, "print the app's active theme, overrides applied")
	cf := c.registerCompileFlags(fs, false)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(c.stderr, "Usage: seed themes [-name Theme] [-active] [-strict] <input.seed>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("themes takes exactly one input file")
	}

	spec, err := c.compile(fs.Arg(0), cf)
	if err != nil {
		return err
	}

	if *active {
		if spec.ActiveTheme == nil {
			return fmt.Errorf("%s has no active theme", fs.Arg(0))
		}
		c.printTheme(spec.ActiveTheme)
		return nil
	}

	themes := spec.Themes
	if *name != "" {
		t := spec.Theme(*name)
		if t == nil {
			return fmt.Errorf("theme %s not found", *name)
		}
		themes = []*ast.Theme{t}
	}
	for i, t := range themes {
		if i > 0 {
			_, _ = fmt.Fprintln(c.stdout)
		}
		c.printTheme(t)
	}
	return nil
}

func (c *cli) printTheme(t *ast.Theme) {
	header := t.Name
	if t.Title != "" {
		header += fmt.Sprintf(" %q", t.Title)
	}
	if len(t.Lineage) > 1 {
		header += " (" + strings.Join(t.Lineage, " -> ") + ")"
	}
	_, _ = fmt.Fprintln(c.stdout, header)

	flat := t.Properties.Flatten()
	for _, path := range slices.Sorted(maps.Keys(flat)) {
		_, _ = fmt.Fprintf(c.stdout, "  %s: %s\n", path, flat[path])
	}
}
