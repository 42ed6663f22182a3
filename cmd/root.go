// Package cmd implements the CLI command structure for prodo.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prodo-app/prodo/internal/config"
	"github.com/prodo-app/prodo/internal/logging"
	"github.com/prodo-app/prodo/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the prodo CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("prodo", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(os.Stdout)
	}

	// Determine the subcommand; no args means the task listing
	subcommand := "ls"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	logger := logging.NewConsole(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	switch subcommand {
	case "add":
		return addCommand(ctx, cfg, logger, os.Stdout, remainingArgs)
	case "ls", "list":
		return lsCommand(ctx, cfg, os.Stdout, remainingArgs)
	case "edit":
		return editCommand(ctx, cfg, logger, os.Stdout, remainingArgs)
	case "done":
		return doneCommand(ctx, cfg, logger, os.Stdout, remainingArgs)
	case "rm", "delete":
		return rmCommand(ctx, cfg, logger, os.Stdout, remainingArgs)
	case "export":
		return exportCommand(ctx, cfg, logger, os.Stdout, remainingArgs)
	case "import":
		return importCommand(ctx, cfg, logger, os.Stdout, remainingArgs)
	case "tui":
		return tuiCommand(ctx, cfg)
	case "doctor":
		return doctorCommand(cfg, os.Stdout)
	case "version", "--version", "-v":
		return versionCommand(os.Stdout)
	case "help", "--help", "-h":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// tuiCommand opens the interactive task table.
func tuiCommand(ctx context.Context, cfg *config.Config) error {
	if cfg.DBDSN != "" {
		return fmt.Errorf("tui works on the snapshot store; unset the DSN to use it")
	}
	activity, err := logging.NewActivityLog(cfg.LogDir)
	if err != nil {
		// The TUI is still useful without an activity log.
		activity = nil
	}
	defer activity.Close()
	return ui.RunTUI(ctx, cfg, activity)
}

func versionCommand(out io.Writer) error {
	fmt.Fprintf(out, "prodo %s\n", Version)
	return nil
}

// openActivity opens the activity log, tolerating failure.
func openActivity(cfg *config.Config) *logging.ActivityLog {
	activity, err := logging.NewActivityLog(cfg.LogDir)
	if err != nil {
		return nil
	}
	return activity
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `prodo - a to-do list for the terminal

Usage:
  prodo [flags] <command> [args]

Commands:
  ls       List tasks (default). Flags: -q, -priority, -status
  add      Add a task: prodo add [flags] <title words>
  edit     Edit a task: prodo edit [flags] <id>
  done     Toggle a task done: prodo done <id>
  rm       Delete a task: prodo rm <id>
  export   Export tasks: prodo export -format json|csv|pdf [-o file]
  import   Import tasks from a JSON dump: prodo import <file>
  tui      Open the interactive task table
  doctor   Check the snapshot against the schema and show config
  version  Show version

Global flags:
`)
	fs.SetOutput(w)
	fs.PrintDefaults()
}
