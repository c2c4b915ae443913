package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ptcli/internal/features/tracking"
)

// Config holds the demo server configuration.
type Config struct {
	Host        string
	HTTPPort    string
	SSHPort     string
	EnableSSH   bool
	HostKeyPath string
}

// StartServers starts the HTTP catalog server and, when enabled, the SSH
// mirror, and blocks until the context is cancelled or a server fails.
func StartServers(ctx context.Context, config Config) error {
	fmt.Printf("\r\n📒 pt-server starting\r\n")
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\r\n")
	fmt.Printf("Press 'q' to quit or Ctrl+C to stop\r\n\r\n")

	service, err := tracking.NewService(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize tracking service: %w", err)
	}
	defer service.Close()

	var wg sync.WaitGroup
	errChan := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := StartHTTPServer(ctx, config.Host, config.HTTPPort, service); err != nil {
			if err != context.Canceled {
				errChan <- fmt.Errorf("HTTP server error: %w", err)
			}
		}
	}()

	if config.EnableSSH {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := StartSSHServer(ctx, config.Host, config.SSHPort, config.HostKeyPath); err != nil {
				if err != context.Canceled {
					errChan <- fmt.Errorf("SSH server error: %w", err)
				}
			}
		}()
	}

	select {
	case <-ctx.Done():
		fmt.Printf("\r\n🛑 Shutting down pt-server...\r\n")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			fmt.Printf("✅ All servers shut down gracefully\r\n")
		case <-shutdownCtx.Done():
			fmt.Printf("⚠️  Shutdown timeout reached\r\n")
		}

		return nil

	case err := <-errChan:
		return err
	}
}
