package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/btouchard/seed/internal/compiler/errors"
	"github.com/btouchard/seed/internal/workspace"
)

func (c *cli) cmdCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	workers := fs.Int("j", 0, "number of files compiled in parallel (default: GOMAXPROCS)")
	quiet := fs.Bool("q", false, "only report failures")
	cf := c.registerCompileFlags(fs, true)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(c.stderr, "Usage: seed check [-strict] [-refs=false] [-j n] [-q] <dir|file|glob>...\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	patterns := fs.Args()
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	paths, err := workspace.Discover(ctx, patterns...)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no %s files found", workspace.Ext)
	}

	results := workspace.Check(ctx, paths, c.compilerOptions(cf), *workers)
	for _, r := range results {
		if r.Err == nil {
			if !*quiet {
				_, _ = fmt.Fprintf(c.stdout, "ok   %s\n", r.Path)
			}
			continue
		}
		_, _ = fmt.Fprintf(c.stdout, "FAIL %s\n", r.Path)
		if pe, ok := errors.As(r.Err); ok {
			_, _ = fmt.Fprintln(c.stderr, pe.Detail())
		} else {
			_, _ = fmt.Fprintln(c.stderr, r.Err)
		}
	}

	if failed := workspace.Failed(results); len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed", len(failed), len(results))
	}
	return nil
}
