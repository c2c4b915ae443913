package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"ptcli/internal/client"
	"ptcli/internal/config"
	"ptcli/internal/features/discovery"
)

// loadConfig resolves the layered configuration and applies command-line
// overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if v := c.String("url-root"); v != "" {
		cfg.URLRoot = v
	}
	if v := c.String("project"); v != "" {
		cfg.Project = v
	}
	if v := c.Duration("timeout"); v > 0 {
		cfg.TimeoutSeconds = int(v / time.Second)
	}
	return cfg, nil
}

// newClient builds the HTTP session client, prompting for a password on the
// terminal when the config names a user without one.
func newClient(cfg config.Config) (*client.Client, error) {
	password := cfg.Password
	if cfg.User != "" && password == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(os.Stderr, "Password for %s: ", cfg.User)
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}
		password = string(raw)
	}

	return client.New(cfg.URLRoot, client.Options{
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		User:        cfg.User,
		Password:    password,
		SessionFile: cfg.SessionFile,
		SessionKey:  os.Getenv("PT_CLI_SESSION_KEY"),
	})
}

// fetchManifest performs the one discovery fetch a command is allowed.
func fetchManifest(c *cli.Context) (*discovery.RouteManifest, *client.Client, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	session, err := newClient(cfg)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(c.Context, time.Duration(cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	manifest, err := discovery.Fetch(ctx, session, session.BaseURL())
	if err != nil {
		return nil, nil, err
	}
	return manifest, session, nil
}

// postData reads the request body from --data or --data-file, which are
// mutually exclusive. An empty string means no body.
func postData(c *cli.Context) (string, error) {
	data := c.String("data")
	file := c.String("data-file")
	if data != "" && file != "" {
		return "", fmt.Errorf("--data and --data-file are mutually exclusive")
	}
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading data file %s: %w", file, err)
		}
		return string(raw), nil
	}
	return data, nil
}

// note writes informational chatter to stderr unless --quiet is set, so
// stdout stays a clean payload pipe.
func note(c *cli.Context, format string, args ...interface{}) {
	if c.Bool("quiet") {
		return
	}
	fmt.Fprintf(os.Stderr, strings.TrimRight(format, "\n")+"\n", args...)
}
