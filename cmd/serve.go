package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/guimove/tablefit/internal/metrics"
	"github.com/guimove/tablefit/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve availability and allocation over HTTP",
	Long: `Starts the HTTP API used by the booking flow. Every request loads a fresh
snapshot of settings and bookings, so the answers track the booking service
without a restart. Prometheus metrics are served on /metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("listen", ":8080", "address to listen on")
	_ = viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, cleanup, err := newOrchestrator(ctx, io.Discard)
	if err != nil {
		return err
	}
	defer cleanup()

	rec := metrics.NewRecorder()
	orch.Observer = rec

	return server.New(orch, rec.Handler(), cfg.Server).Run(ctx)
}
