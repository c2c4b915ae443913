package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"ptcli/internal/app/server"
)

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "Start the demo tracking server (HTTP + SSH)",
	Description: `Start a small tracking server that publishes its own route catalog at /,
both as JSON and as browsable HTML. It exists so the client has something
real to discover against; point --url-root at it and every sub-command works.

The SSH mirror prints the same catalog to anyone who connects.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "host",
			Value: "localhost",
			Usage: "Host to bind both servers to",
		},
		&cli.StringFlag{
			Name:  "http-port",
			Value: "8080",
			Usage: "Port for the HTTP server",
		},
		&cli.StringFlag{
			Name:  "ssh-port",
			Value: "2222",
			Usage: "Port for the SSH catalog mirror",
		},
		&cli.BoolFlag{
			Name:  "ssh",
			Value: false,
			Usage: "Also start the SSH catalog mirror",
		},
		&cli.StringFlag{
			Name:  "host-key",
			Value: ".ssh/pt_server_ed25519",
			Usage: "Path to the SSH host key (created if missing)",
		},
	},
	Action: func(c *cli.Context) error {
		config := server.Config{
			Host:        c.String("host"),
			HTTPPort:    c.String("http-port"),
			SSHPort:     c.String("ssh-port"),
			EnableSSH:   c.Bool("ssh"),
			HostKeyPath: c.String("host-key"),
		}

		// Create a context that cancels on SIGINT or SIGTERM
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		// Start keyboard input handler in a goroutine
		go func() {
			// Save original terminal state
			oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
			if err != nil {
				// If we can't set raw mode, just return silently
				return
			}
			defer term.Restore(int(os.Stdin.Fd()), oldState)

			// Read single bytes from stdin
			buf := make([]byte, 1)
			for {
				_, err := os.Stdin.Read(buf)
				if err != nil {
					return
				}

				// Check for 'q' or 'Q'
				if buf[0] == 'q' || buf[0] == 'Q' {
					cancel()
					return
				}
			}
		}()

		return server.StartServers(ctx, config)
	},
}
