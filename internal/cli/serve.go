package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthcheck/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the check pipeline over HTTP",
	Long: `Serve exposes the pipeline as a local HTTP API:
  POST /api/analyze        {"url", "content", "forceReanalyze"}
  POST /api/analyze/image  {"mimeType", "data"}
  GET  /api/history
  GET  /healthz
  GET  /metrics

One analysis runs at a time; concurrent requests get 409.

Example:
  truthcheck serve --addr 127.0.0.1:3000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(appOptions{quiet: true})
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg.Server
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(a.service, a.history, cfg, a.logger).ListenAndServe(ctx)
}
