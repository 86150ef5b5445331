package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-manga-series/config"
	"github.com/aluiziolira/go-manga-series/export"
)

var (
	flagExportFormat string
	flagExportOutput string
)

func init() {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write every complete series in the sqlite cache to CSV and/or JSONL",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}
	exportCmd.Flags().StringVar(&flagExportFormat, "format", "csv", "output format: csv, json, or dual")
	exportCmd.Flags().StringVar(&flagExportOutput, "output", "output/series.csv", "output file path")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if !cfg.CacheEnabled {
		return fmt.Errorf("export needs the cache enabled")
	}
	if cfg.CacheBackend != config.CacheBackendSQLite {
		return fmt.Errorf("export needs the sqlite cache backend")
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	w, err := export.NewWriter(strings.ToLower(flagExportFormat), flagExportOutput, a.rules.Names())
	if err != nil {
		return err
	}

	n, runErr := export.Run(cmd.Context(), a.cache, w)
	if err := w.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("close writer: %w", err)
	}
	if runErr != nil {
		return runErr
	}

	slog.Info("export complete",
		slog.Int("series", n),
		slog.String("format", flagExportFormat),
		slog.String("output", flagExportOutput),
	)
	return nil
}
