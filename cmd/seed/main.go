package main

import (
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/btouchard/seed/internal/compiler/errors"
	"github.com/btouchard/seed/internal/config"
	"github.com/btouchard/seed/internal/logging"
)

const version = "0.1.0"

// cli carries what every subcommand needs.
type cli struct {
	cfg    *config.Config
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	_, _ = fmt.Fprintf(w, `Usage: seed <command> [flags] [args]

Commands:
  parse   compile a .seed file and export the spec (json, yaml, toml)
  check   compile every .seed file found in directories or globs
  themes  print the resolved themes of a .seed file
  version print the version

Environment:
  SEED_STRICT, SEED_STDLIB_PATH, SEED_LOG_LEVEL, SEED_LOG_DEV,
  SEED_CATALOG_DSN, SEED_FORMAT
`)
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}

	cfg := config.LoadOrDefault()
	logger, err := logging.New(cfg.LoggerConfig())
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Warning: invalid logging configuration: %v\n", err)
		logger = logging.NewDefault()
	}
	defer func() { _ = logger.Sync() }()

	c := &cli{cfg: cfg, logger: logger, stdout: stdout, stderr: stderr}
	switch args[0] {
	case "parse":
		err = c.cmdParse(args[1:])
	case "check":
		err = c.cmdCheck(args[1:])
	case "themes":
		err = c.cmdThemes(args[1:])
	case "version":
		_, _ = fmt.Fprintf(stdout, "seed %s\n", version)
	case "help", "-h", "--help":
		usage(stdout)
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}

	if stderrors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		c.report(err)
		return 1
	}
	return 0
}

// report prints err, with source context for compile errors.
func (c *cli) report(err error) {
	if pe, ok := errors.As(err); ok {
		_, _ = fmt.Fprintln(c.stderr, pe.Detail())
		return
	}
	_, _ = fmt.Fprintf(c.stderr, "Error: %v\n", err)
}
