// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Supports -no-overwrite, -show-cursor, -verbose, -dir, -version and a subcommand

package main

import (
	"flag"
	"fmt"
	"io"
)

const (
	cmdBlock = "block"
	cmdCheck = "check"
)

type cliArgs struct {
	noOverwrite bool
	showCursor  bool
	verbose     bool
	dir         string
	version     bool
	command     string
}

func parseFlags(argv []string, output io.Writer) (cliArgs, error) {
	var args cliArgs

	fs := flag.NewFlagSet("keyblock", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: keyblock [flags] [block|check]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	fs.BoolVar(&args.noOverwrite, "no-overwrite", false, "Do not erase keystrokes while blocked")
	fs.BoolVar(&args.showCursor, "show-cursor", false, "Leave the cursor visible while blocked")
	fs.BoolVar(&args.verbose, "verbose", false, "Enable debug logging")
	fs.StringVar(&args.dir, "dir", "", "Project directory (default: working directory)")
	fs.BoolVar(&args.version, "version", false, "Show version and exit")

	if err := fs.Parse(argv); err != nil {
		return args, err
	}

	switch rest := fs.Args(); len(rest) {
	case 0:
		args.command = cmdBlock
	case 1:
		args.command = rest[0]
	default:
		return args, fmt.Errorf("unexpected arguments: %v", rest[1:])
	}
	if args.command != cmdBlock && args.command != cmdCheck {
		return args, fmt.Errorf("unknown command %q", args.command)
	}
	return args, nil
}
