// Package main is meetingctl's entry point: resolve configuration, wire up
// logging, parse the CLI, and dispatch to the selected subcommand.
package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/mgunville/obsidian-meetings/internal/applog"
	"github.com/mgunville/obsidian-meetings/internal/config"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("meetingctl"),
		kong.Description("Local meeting-capture control plane: select an event, record it, and run the transcribe/summarize/convert pipeline."),
		kongVars(),
	)

	if cli.JSON {
		applog.UseJSON(os.Stderr)
	}
	if os.Getenv("MEETINGCTL_DEBUG") != "" {
		applog.SetLevel(zerolog.DebugLevel)
	} else {
		applog.SetLevel(zerolog.InfoLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		os.Exit(printError(cli.JSON, err))
	}
	// doctor's whole purpose is to diagnose an unready environment, so it
	// runs even when the roots don't validate yet; version needs nothing.
	command := ctx.Command()
	if err := cfg.Validate(); err != nil && command != "doctor" && command != "version" {
		os.Exit(printError(cli.JSON, err))
	}

	app := NewApp(cfg, cli.JSON)
	if err := ctx.Run(app); err != nil {
		os.Exit(printError(cli.JSON, err))
	}
}
