package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/btouchard/seed/internal/catalog"
	"github.com/btouchard/seed/internal/export"
)

func (c *cli) cmdParse(args []string) error {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	format := fs.String("format", c.cfg.Format, "output format: json, yaml or toml")
	output := fs.String("o", "", "output file (default: stdout)")
	dsn := fs.String("db", c.cfg.DSN, "SQLite catalog to record the spec in")
	cf := c.registerCompileFlags(fs, false)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(c.stderr, "Usage: seed parse [-format json|yaml|toml] [-o file] [-db catalog.db] [-strict] [-refs] <input.seed>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("parse takes exactly one input file")
	}

	f, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}
	inputFile := fs.Arg(0)
	spec, err := c.compile(inputFile, cf)
	if err != nil {
		return err
	}

	if *dsn != "" {
		cat, err := catalog.Open(*dsn, c.logger)
		if err != nil {
			return err
		}
		defer func() { _ = cat.Close() }()
		abs, err := filepath.Abs(inputFile)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", inputFile, err)
		}
		id, err := cat.Save(context.Background(), abs, spec)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(c.stderr, "Recorded %s in %s as %s\n", inputFile, *dsn, id)
	}

	var w io.Writer = c.stdout
	if *output != "" {
		if dir := filepath.Dir(*output); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
		}
		file, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() { _ = file.Close() }()
		w = file
	}
	return export.Write(w, spec, f)
}
