package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rb-rbloxk/ClubLiquidez-1/alerts"
	"github.com/rb-rbloxk/ClubLiquidez-1/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the calculator, trade planner and price alerts over HTTP.

Endpoints:
  GET  /health
  GET  /metrics
  GET  /api/v1/instruments
  POST /api/v1/position-size
  POST /api/v1/trade-plan
  GET  /api/v1/alerts             POST /api/v1/alerts
  POST /api/v1/alerts/evaluate    DELETE /api/v1/alerts/:id
  POST /api/v1/alerts/:id/pause   POST /api/v1/alerts/:id/resume`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, cleanup, err := rateSource(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	store, err := openAlertStore()
	if err != nil {
		return err
	}
	defer store.Close()

	read, write, shutdown, err := cfg.Server.Durations()
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := server.New(src, alerts.NewService(store, nil, logger), server.Options{
		RateTimeout:            rateTimeout(),
		Policy:                 policy(),
		DefaultAccountCurrency: cfg.Account.Currency,
	}, logger)

	return srv.Run(ctx, server.Config{
		Addr:            addr,
		ReadTimeout:     read,
		WriteTimeout:    write,
		ShutdownTimeout: shutdown,
	})
}
