package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"ptcli/internal/features/dispatch"
)

var routeCmd = &cli.Command{
	Name:      "route",
	Usage:     "Call any route described in help",
	ArgsUsage: "<path> [name=value ...]",
	Description: `Resolve a path against the discovered route hierarchy and issue the
corresponding HTTP call. Placeholder values come from the path itself or from
trailing name=value arguments; leftover name=value arguments become query
parameters. --data or --data-file turn the call into a POST with that body.`,
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return fmt.Errorf("route needs a path argument, see \"%s help\"", c.App.Name)
		}
		path := c.Args().Get(0)
		args := c.Args().Slice()[1:]

		body, err := postData(c)
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

		methodHint := ""
		if body != "" {
			methodHint = "POST"
		}
		resolution, err := dispatch.Resolve(tree, path, args, methodHint)
		if err != nil {
			return err
		}
		note(c, "%s %s%s", resolution.Route.Method, session.BaseURL(), resolution.Path)

		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}

		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(c.Context, time.Duration(cfg.TimeoutSeconds)*time.Second)
		defer cancel()

		result, err := dispatch.Execute(ctx, session, session.BaseURL(), resolution, reader)
		if err != nil {
			return err
		}

		return printResult(os.Stdout, result)
	},
}

// printResult writes the decoded response when the body was JSON and the raw
// bytes verbatim when it was not. Either way the payload ends with exactly
// one newline so pipes are not broken.
func printResult(w io.Writer, result *dispatch.Result) error {
	if result.Decoded != nil {
		out, err := json.MarshalIndent(result.Decoded, "", "  ")
		if err != nil {
			return fmt.Errorf("re-encoding response: %w", err)
		}
		fmt.Fprintf(w, "%s\n", out)
		return nil
	}
	fmt.Fprintf(w, "%s\n", strings.TrimRight(string(result.Body), "\n"))
	return nil
}
