package cli

import (
	"os"

	"github.com/urfave/cli/v2"

	"ptcli/internal/features/discovery"
)

var helpCmd = &cli.Command{
	Name:  "help",
	Usage: "List all routes the tracking server currently exposes",
	Description: `Fetch the server's route catalog and print it. All of these routes can be
reached with the "route <path>" sub-command; the other sub-commands are
convenience wrappers around them.`,
	Action: func(c *cli.Context) error {
		manifest, session, err := fetchManifest(c)
		if err != nil {
			return err
		}
		defer session.SaveSession()

		if c.Bool("ascii") {
			discovery.PrintManifestASCII(os.Stdout, manifest)
		} else {
			discovery.PrintManifest(os.Stdout, manifest)
		}
		return nil
	},
}
