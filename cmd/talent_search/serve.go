package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/talent-search/internal/server"
	"github.com/jonathan/talent-search/internal/server/ratelimit"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing candidate search, the job catalog, resume submission and Prometheus metrics.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	port := a.cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}

	srv := newServer(a, port)
	return srv.Start()
}

func newServer(a *app, port int) *server.Server {
	return server.New(server.Config{Port: port}, server.Deps{
		Search:    a.search,
		Ingest:    a.ingest,
		Store:     a.store,
		Jobs:      a.cfg.Jobs,
		Metrics:   a.metrics,
		Gatherer:  a.registry,
		Logger:    a.logger,
		RateLimit: ratelimit.FromSettings(a.cfg.RateLimit),
	})
}
