package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"ptcli/internal/features/discovery"
)

var app = &cli.App{
	Name:    "pt-cli",
	Version: "1.0.0",
	Usage:   "Command-line client for the project tracking API",
	Description: `pt-cli talks to a project tracking server whose routes are not fixed at
build time: the server publishes its own route catalog, and pt-cli discovers
it on every run.

"help" shows everything the server currently exposes; any of those routes can
be called with the "route" sub-command. Shell completion scripts generated
with -s mirror the same discovered hierarchy.`,
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "url-root",
			Usage: "Where the server is located, overrides the connect.toml config. Should be of the \"http(s)://location\" form",
		},
		&cli.StringFlag{
			Name:  "project",
			Usage: "Project you are working on",
		},
		&cli.StringFlag{
			Name:  "data",
			Usage: "String to use in a post",
		},
		&cli.StringFlag{
			Name:  "data-file",
			Usage: "File to use in a post",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Timeout for the manifest fetch and the dispatched call",
		},
		&cli.BoolFlag{
			Name:  "ascii",
			Usage: "Display output using ASCII characters only (no colors)",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Suppress everything but the server payload on stdout",
		},
		&cli.StringFlag{
			Name:    "print-completion",
			Aliases: []string{"s"},
			Usage:   "Print a completion script for the given shell (bash or zsh) and exit",
		},
		&cli.BoolFlag{
			Name:  "info",
			Usage: "Show the effective configuration and exit",
		},
	},
	Commands: []*cli.Command{
		helpCmd,
		routeCmd,
		projectsCmd,
		infoCmd,
		serveCmd,
	},
	Action: func(c *cli.Context) error {
		if shell := c.String("print-completion"); shell != "" {
			return printCompletion(c, shell)
		}
		if c.Bool("info") {
			return infoCmd.Action(c)
		}
		return cli.ShowAppHelp(c)
	},
}

// Execute runs the CLI application. Every error kind in the taxonomy maps to
// its own stable exit code so scripting callers can branch on the status.
func Execute() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if kind, ok := discovery.KindOf(err); ok {
		return kind.ExitCode()
	}
	if coder, ok := err.(cli.ExitCoder); ok && coder.ExitCode() != 0 {
		return coder.ExitCode()
	}
	return 1
}
