// ABOUTME: CLI entry point for keyblock with terminal crash recovery
// ABOUTME: Parses flags, loads config, dispatches to the block or check command

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mauromedda/keyblock/internal/config"
	"github.com/mauromedda/keyblock/internal/log"
	"github.com/mauromedda/keyblock/pkg/tui/intercept"
	"github.com/mauromedda/keyblock/pkg/tui/terminal"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// host is what a command runs against: the blocked terminal plus the
// streams reports go to.
type host struct {
	term   terminal.Device
	stdout io.Writer
	stderr io.Writer
	exit   func(int)
}

func main() {
	defer intercept.RestoreOnPanic()

	code := run(os.Args[1:], host{
		term:   terminal.NewProcessTerminal(),
		stdout: os.Stdout,
		stderr: os.Stderr,
		exit:   os.Exit,
	})
	os.Exit(code)
}

// run executes one invocation and returns the process exit status.
func run(argv []string, h host) int {
	log.SetOutput(h.stderr)

	args, err := parseFlags(argv, h.stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(h.stderr, "error: %v\n", err)
		return 2
	}

	if args.version {
		fmt.Fprintf(h.stdout, "keyblock %s (%s) built %s\n", version, commit, date)
		return 0
	}

	dir := args.dir
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			fmt.Fprintf(h.stderr, "error: getting working directory: %v\n", err)
			return 1
		}
	}

	cfg, err := config.Load(dir)
	if err != nil {
		fmt.Fprintf(h.stderr, "error: loading config: %v\n", err)
		return 1
	}
	applyOverrides(cfg, args)
	configureLogging(cfg, args)

	switch args.command {
	case cmdCheck:
		return runCheck(h, cfg, dir)
	default:
		return runBlock(h, cfg)
	}
}

// applyOverrides lets CLI flags win over config values.
func applyOverrides(cfg *config.Settings, args cliArgs) {
	if args.noOverwrite {
		cfg.Overwrite = intercept.Bool(false)
	}
	if args.showCursor {
		cfg.HideCursor = intercept.Bool(false)
	}
}

func configureLogging(cfg *config.Settings, args cliArgs) {
	if args.verbose {
		log.SetLevel(log.LevelDebug)
		return
	}
	if cfg.LogLevel == "" {
		return
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn("ignoring log_level %q: %v", cfg.LogLevel, err)
		return
	}
	log.SetLevel(level)
}

func sessionOptions(h host, cfg *config.Settings) intercept.Options {
	return intercept.Options{
		Input:      h.term,
		Output:     h.term,
		Overwrite:  intercept.Bool(cfg.OverwriteEnabled()),
		HideCursor: intercept.Bool(cfg.CursorHidden()),
		Exit:       h.exit,
	}
}
