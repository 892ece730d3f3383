package main

import (
	"github.com/spf13/cobra"

	"hosereport/internal/logging"
	"hosereport/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report API over HTTP",
		Long: `Serve the report API.

  POST /api/reports        render a document, respond with the PDF
  GET  /api/reports        list recent exports
  GET  /api/reports/{id}   show one export
  GET  /metrics            Prometheus metrics
  GET  /healthz            liveness`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			cfg := a.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}

			gen, cleanup := newGenerator(cfg, nil)
			defer cleanup()

			var history server.History
			if st := openHistory(cfg); st != nil {
				defer st.Close()
				history = st
			}

			srv := server.New(server.Config{
				Addr:                 cfg.Server.Addr,
				MaxConcurrentExports: int64(cfg.Server.MaxConcurrentExports),
				ReadTimeout:          cfg.GetReadTimeout(),
				WriteTimeout:         cfg.GetWriteTimeout(),
				MaxBodyBytes:         cfg.Server.MaxBodyBytes,
			}, gen, history, newMetrics())

			logging.Boot("serving on %s (engine %s, history %t)", cfg.Server.Addr, gen.Engine(), history != nil)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
