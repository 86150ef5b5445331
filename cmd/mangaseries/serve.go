package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-manga-series/api"
)

var flagListen string

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "listen address (default from MANGA_LISTEN_ADDR or :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("listen") {
		cfg.ListenAddr = flagListen
	}
	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	h := &api.Handler{Service: a.svc, WrapField: cfg.WrapFieldResponse}
	return api.Serve(cmd.Context(), cfg.ListenAddr, api.NewRouter(h, a.metrics))
}
