package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/askql/askql/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the askql HTTP API server.

Endpoints:
  POST   /api/query        Ask a question or run SQL
  GET    /api/schema       Introspected schema
  GET    /api/history      Past questions and SQL
  DELETE /api/history      Clear history
  POST   /api/export/csv   Query results as CSV
  POST   /api/export/xlsx  Query results as an Excel workbook`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd.Context())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, cleanup, err := buildService(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			if port == 0 {
				port = a.cfg.Server.Port
			}

			srv := server.New(server.Config{
				Service: svc,
				Port:    port,
				Logger:  a.logger,
			})
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")

	return cmd
}
