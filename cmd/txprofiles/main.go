// Command txprofiles inspects and edits the air unit's TX profile ladder from
// the ground station.
//
//	txprofiles [flags] show
//	txprofiles [flags] split <segment>
//	txprofiles [flags] merge <segment>
//	txprofiles [flags] drag <boundary> <fraction>
//	txprofiles [flags] set <segment> key=value...
//	txprofiles [flags] reset --yes
//	txprofiles [flags] watch
//
// Every editing command loads the current table, applies one edit and saves
// the result as a whole, unless --dry-run is given.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"gsweb/internal/client"
	"gsweb/internal/config"
	"gsweb/internal/editor"
	"gsweb/internal/logger"

	"github.com/spf13/pflag"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// env is what a command runs against.
type env struct {
	cfg    *config.Config
	log    logger.Logger
	client *client.Client
	editor *editor.Editor
	out    io.Writer
	dryRun bool
	yes    bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := config.Flags("txprofiles")
	dryRun := fs.Bool("dry-run", false, "Print the edited table without saving it.")
	yes := fs.BoolP("yes", "y", false, "Confirm destructive commands such as reset.")
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: txprofiles [flags] <command> [args]\n\nCommands:\n")
		for _, c := range commandList {
			fmt.Fprintf(stderr, "  %-34s %s\n", c.name+" "+c.args, c.help)
		}
		fmt.Fprintf(stderr, "\nFlags:\n%s", fs.FlagUsages())
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.LoadConfig(fs)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return exitError
	}

	// stdout carries the table, so logs go to stderr unless a file is set.
	var log logger.Logger
	if cfg.Log.File == "" || cfg.Log.File == "-" {
		log = logger.New(stderr, cfg.Log.Level)
	} else if log, err = logger.NewFileLogger(cfg.Log.File, cfg.Log.Level); err != nil {
		log = logger.New(stderr, cfg.Log.Level)
		log.Warnf("Logging to stderr: %v", err)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return exitUsage
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command %q\n", rest[0])
		fs.Usage()
		return exitUsage
	}
	if !cmd.acceptsArgs(len(rest) - 1) {
		fmt.Fprintf(stderr, "Usage: txprofiles %s %s\n", cmd.name, cmd.args)
		return exitUsage
	}

	c := client.New(cfg.Client.BaseURL, cfg.Client.Timeout, log)
	e := &env{
		cfg:    cfg,
		log:    log,
		client: c,
		editor: editor.New(c, cfg.Axis.Partition(), log),
		out:    stdout,
		dryRun: *dryRun,
		yes:    *yes,
	}

	if err := cmd.run(ctx, e, rest[1:]); err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(stderr, "%v\nUsage: txprofiles %s %s\n", err, cmd.name, cmd.args)
			return exitUsage
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}
