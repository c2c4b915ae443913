package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"ptcli/internal/features/discovery"
)

var projectsCmd = &cli.Command{
	Name:  "projects",
	Usage: "List the projects the tracking server knows about",
	Description: `Shortcut for "route /projects". The server decides what a project looks
like; this just prints what comes back.`,
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		session, err := newClient(cfg)
		if err != nil {
			return err
		}
		defer session.SaveSession()

		ctx, cancel := context.WithTimeout(c.Context, time.Duration(cfg.TimeoutSeconds)*time.Second)
		defer cancel()

		resp, err := session.GetPath(ctx, "projects")
		if err != nil {
			return discovery.Wrapf(discovery.NetworkFailure, err, "GET %s/projects", session.BaseURL())
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return discovery.Wrapf(discovery.NetworkFailure, err, "reading projects response")
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return discovery.Errf(discovery.ServerError, "GET %s/projects returned %s", session.BaseURL(), resp.Status)
		}

		var decoded interface{}
		if err := json.Unmarshal(payload, &decoded); err != nil {
			fmt.Fprintf(os.Stdout, "%s\n", payload)
			return nil
		}
		out, err := json.MarshalIndent(decoded, "", "  ")
		if err != nil {
			return fmt.Errorf("re-encoding projects response: %w", err)
		}
		fmt.Fprintf(os.Stdout, "%s\n", out)
		return nil
	},
}
