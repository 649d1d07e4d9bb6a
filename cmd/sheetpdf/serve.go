package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soderasen-au/go-sheetpdf/server"
	"github.com/soderasen-au/go-sheetpdf/service"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload and PDF endpoints over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, audit, err := setup()
			if err != nil {
				return err
			}
			if audit != nil {
				defer audit.Close()
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, res := service.New(cfg.ServiceOptions(), logger)
			if res != nil {
				return res.LogWith(logger, "service.New")
			}
			svc.StartUp(ctx)
			defer svc.Shutdown(context.Background())

			logger.Info().Msgf("max upload %d bytes, %d concurrent conversions, auth %v", cfg.Server.MaxUploadSize, cfg.Server.MaxConcurrent, cfg.Server.JwtSecret != "")
			return server.New(cfg.Server, svc, audit, logger).ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides server.addr")
	return cmd
}
