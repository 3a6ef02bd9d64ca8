package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/vitae/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/vitae/internal/core/domain"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the live preview and the JSON API",
	Long: `Serve the rendered resume and a JSON API over HTTP.

Open /preview in a browser: the page follows every edit made through the
API, the TUI of another process sharing the store, or an MCP client.
/metrics exposes Prometheus metrics.

The address defaults to the server address in settings.

Examples:
  vitae serve
  vitae serve --addr 0.0.0.0:8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (host:port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if editorService == nil {
		return errors.New("editor service not configured")
	}

	server, err := httpapi.New(httpapi.Config{
		Editor:   editorService,
		Assist:   assistService,
		Export:   exportService,
		Gatherer: gatherer,
		Health:   storeHealth,
	})
	if err != nil {
		return err
	}

	addr := resolveServeAddr()
	cmd.Printf("Preview at http://%s/preview\n", addr)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		if err := server.Run(ctx, addr); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if promptWatcher != nil {
		g.Go(func() error {
			return promptWatcher.Run(ctx)
		})
	}
	return g.Wait()
}

// resolveServeAddr picks the --addr flag, then settings, then the default.
func resolveServeAddr() string {
	if serveAddr != "" {
		return serveAddr
	}
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil && s.Server.Addr != "" {
			return s.Server.Addr
		}
	}
	return domain.DefaultAppSettings().Server.Addr
}
