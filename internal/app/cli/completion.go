package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"ptcli/internal/features/completion"
	"ptcli/internal/features/dispatch"
)

// printCompletion fetches the live route catalog and writes a completion
// script for it to stdout. The script snapshots the hierarchy at generation
// time; regenerate it when the server's routes change.
func printCompletion(c *cli.Context, shellName string) error {
	shell, err := completion.ParseShell(shellName)
	if err != nil {
		return err
	}

	manifest, session, err := fetchManifest(c)
	if err != nil {
		return err
	}
	defer session.SaveSession()

	tree, err := dispatch.Build(manifest)
	if err != nil {
		return err
	}

	script, err := completion.Script(shell, c.App.Name, tree)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, script)
	return nil
}
