package server

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/muesli/termenv"
	cryptossh "golang.org/x/crypto/ssh"

	"ptcli/internal/web/handlers"
)

// StartSSHServer exposes the route catalog over SSH, read-only. The host key
// is generated on first start at hostKeyPath.
func StartSSHServer(ctx context.Context, host, port, hostKeyPath string) error {
	server, err := wish.NewServer(
		wish.WithAddress(fmt.Sprintf("%s:%s", host, port)),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithMiddleware(
			catalogMiddleware(CatalogRoutes()),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create SSH server: %w", err)
	}

	fmt.Printf("🔐 SSH catalog server starting on %s:%s\r\n", host, port)
	if fingerprint, err := hostKeyFingerprint(hostKeyPath); err == nil {
		fmt.Printf("🔑 Host key fingerprint: %s\r\n", fingerprint)
	}
	fmt.Printf("💡 Try: ssh %s -p %s routes\r\n", host, port)

	go func() {
		<-ctx.Done()
		fmt.Printf("🔐 Shutting down SSH server...\r\n")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("SSH server forced to shutdown: %v\n", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != ssh.ErrServerClosed {
		return err
	}

	return nil
}

// catalogMiddleware answers every session with the route listing. The SSH
// surface is a convenience mirror of the HTTP catalog, not a dispatcher.
func catalogMiddleware(routes []handlers.Route) wish.Middleware {
	return func(sh ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			cmd := s.Command()
			useColor := false
			for _, arg := range cmd {
				if arg == "--color" {
					useColor = true
				}
			}

			if len(cmd) > 0 {
				switch strings.ToLower(cmd[0]) {
				case "routes", "help", "catalog":
					// All of them print the listing.
				default:
					fmt.Fprintf(s, "Unknown command: %s\n\n", cmd[0])
				}
			}

			writeCatalogSSH(s, routes, useColor)
			sh(s)
		}
	}
}

func writeCatalogSSH(s ssh.Session, routes []handlers.Route, useColor bool) {
	if useColor {
		lipgloss.SetColorProfile(termenv.TrueColor)
	} else {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	var titleStyle, methodStyle, containerStyle lipgloss.Style
	if useColor {
		titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 2).
			Margin(1, 0)
		methodStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
		containerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2).
			Margin(1, 0)
	} else {
		titleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 2).Margin(1, 0)
		methodStyle = lipgloss.NewStyle().Bold(true)
		containerStyle = lipgloss.NewStyle().
			Border(lipgloss.ASCIIBorder()).
			Padding(1, 2).
			Margin(1, 0)
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("pt-server route catalog"))
	content.WriteString("\n\n")
	for _, route := range routes {
		content.WriteString(fmt.Sprintf("  %s %s\n",
			methodStyle.Render(fmt.Sprintf("%-6s", route.Method)), route.Path))
		if route.Description != "" {
			content.WriteString(fmt.Sprintf("         %s\n", route.Description))
		}
	}
	content.WriteString("\nUse --color for colored output.\n")

	fmt.Fprintf(s, "%s\n", containerStyle.Render(content.String()))
}

// hostKeyFingerprint reads the generated host key and returns its SHA256
// fingerprint for the startup banner.
func hostKeyFingerprint(path string) (string, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	signer, err := cryptossh.ParsePrivateKey(pem)
	if err != nil {
		return "", fmt.Errorf("failed to parse host key: %w", err)
	}
	return cryptossh.FingerprintSHA256(signer.PublicKey()), nil
}
