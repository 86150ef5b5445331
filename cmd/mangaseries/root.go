package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-manga-series/config"
)

var (
	flagBaseURL       string
	flagTimeout       time.Duration
	flagUserAgent     string
	flagRespectRobots bool
	flagCache         bool
	flagCacheBackend  string
	flagCacheSize     int
	flagDatabase      string
	flagFields        string
	flagWrapField     bool
	flagMetrics       bool
	flagVerbose       bool
	flagEnvFile       string
)

// cfg is resolved once per invocation in PersistentPreRunE.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:               "mangaseries",
	Short:             "Manga series metadata service",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	defaults := config.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagBaseURL, "base-url", defaults.BaseURL, "series site base URL")
	flags.DurationVar(&flagTimeout, "timeout", defaults.Timeout, "page fetch timeout")
	flags.StringVar(&flagUserAgent, "user-agent", defaults.UserAgent, "User-Agent header for page fetches")
	flags.BoolVar(&flagRespectRobots, "respect-robots", defaults.RespectRobotsTxt, "respect robots.txt directives")
	flags.BoolVar(&flagCache, "cache", defaults.CacheEnabled, "cache parsed series")
	flags.StringVar(&flagCacheBackend, "cache-backend", defaults.CacheBackend, "cache backend: memory or sqlite")
	flags.IntVar(&flagCacheSize, "cache-size", defaults.CacheSize, "maximum series held by the memory cache")
	flags.StringVar(&flagDatabase, "db", defaults.DatabasePath, "SQLite database path for the sqlite backend")
	flags.StringVar(&flagFields, "fields", defaults.FieldsFile, "field rules YAML file (default: built-in rules)")
	flags.BoolVar(&flagWrapField, "wrap-field", defaults.WrapFieldResponse, "wrap field responses as {\"<field>\": value}")
	flags.BoolVar(&flagMetrics, "metrics", defaults.MetricsEnabled, "expose Prometheus metrics at /metrics")
	flags.BoolVarP(&flagVerbose, "verbose", "v", defaults.Verbose, "enable debug logging")
	flags.StringVar(&flagEnvFile, "env-file", ".env", "dotenv file to load before reading MANGA_* variables")
}

// loadConfig layers defaults, the environment and explicitly set flags.
func loadConfig(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(flagEnvFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load %s: %w", flagEnvFile, err)
	}

	c := config.DefaultConfig()
	if err := c.ApplyEnv(); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		c.BaseURL = flagBaseURL
	}
	if flags.Changed("timeout") {
		c.Timeout = flagTimeout
	}
	if flags.Changed("user-agent") {
		c.UserAgent = flagUserAgent
	}
	if flags.Changed("respect-robots") {
		c.RespectRobotsTxt = flagRespectRobots
	}
	if flags.Changed("cache") {
		c.CacheEnabled = flagCache
	}
	if flags.Changed("cache-backend") {
		c.CacheBackend = flagCacheBackend
	}
	if flags.Changed("cache-size") {
		c.CacheSize = flagCacheSize
	}
	if flags.Changed("db") {
		c.DatabasePath = flagDatabase
	}
	if flags.Changed("fields") {
		c.FieldsFile = flagFields
	}
	if flags.Changed("wrap-field") {
		c.WrapFieldResponse = flagWrapField
	}
	if flags.Changed("metrics") {
		c.MetricsEnabled = flagMetrics
	}
	if flags.Changed("verbose") {
		c.Verbose = flagVerbose
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, level := newLogger(c.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg = c
	return nil
}
