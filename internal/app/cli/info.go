package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var infoCmd = &cli.Command{
	Name:  "info",
	Usage: "Show the effective configuration",
	Description: `Print every configuration value after layering the defaults, the config
files, and the command-line overrides. Secrets are masked.`,
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		for _, item := range cfg.Items() {
			fmt.Fprintf(os.Stdout, "%s: %s\n", item[0], item[1])
		}
		return nil
	},
}
