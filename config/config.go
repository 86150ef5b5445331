package config

import (
	"fmt"
	"net/url"
	"time"
)

// Cache backends supported by the service.
const (
	CacheBackendMemory = "memory"
	CacheBackendSQLite = "sqlite"
)

// Config holds service configuration.
type Config struct {
	BaseURL           string
	ListenAddr        string
	Timeout           time.Duration
	UserAgent         string
	RespectRobotsTxt  bool
	CacheEnabled      bool
	CacheBackend      string // memory or sqlite
	CacheSize         int
	DatabasePath      string
	FieldsFile        string
	WrapFieldResponse bool
	MetricsEnabled    bool
	Verbose           bool
}

// DefaultConfig returns defaults suitable for local runs.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:           "https://manganato.com",
		ListenAddr:        ":8080",
		Timeout:           15 * time.Second,
		UserAgent:         "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		RespectRobotsTxt:  false,
		CacheEnabled:      true,
		CacheBackend:      CacheBackendMemory,
		CacheSize:         1024,
		DatabasePath:      "data/series.db",
		FieldsFile:        "",
		WrapFieldResponse: false,
		MetricsEnabled:    true,
		Verbose:           false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.ListenAddr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.CacheBackend != CacheBackendMemory && c.CacheBackend != CacheBackendSQLite {
		return fmt.Errorf("cache backend must be memory or sqlite")
	}
	if c.CacheEnabled && c.CacheBackend == CacheBackendMemory && c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive")
	}
	if c.CacheEnabled && c.CacheBackend == CacheBackendSQLite && c.DatabasePath == "" {
		return fmt.Errorf("database path cannot be empty for the sqlite backend")
	}

	return nil
}
