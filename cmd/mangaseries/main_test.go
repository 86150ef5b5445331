package main

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aluiziolira/go-manga-series/config"
	"github.com/aluiziolira/go-manga-series/models"
	"github.com/aluiziolira/go-manga-series/store"
)

func TestConfigPrecedence(t *testing.T) {
	t.Setenv("MANGA_CACHE_SIZE", "5")
	t.Setenv("MANGA_BASE_URL", "https://env.example.test")

	rootCmd.SetArgs([]string{
		"--env-file", filepath.Join(t.TempDir(), "missing.env"),
		"--cache-size", "7",
		"version",
	})
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if cfg.CacheSize != 7 {
		t.Fatalf("cache size = %d, want flag value 7", cfg.CacheSize)
	}
	if cfg.BaseURL != "https://env.example.test" {
		t.Fatalf("base url = %q, want env value", cfg.BaseURL)
	}
}

func TestNewAppBackends(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		check  func(*testing.T, *app)
	}{
		{
			name:   "memory",
			mutate: func(c *config.Config) {},
			check: func(t *testing.T, a *app) {
				if _, ok := a.cache.(*store.Memory); !ok {
					t.Fatalf("cache = %T, want *store.Memory", a.cache)
				}
			},
		},
		{
			name: "sqlite",
			mutate: func(c *config.Config) {
				c.CacheBackend = config.CacheBackendSQLite
				c.DatabasePath = filepath.Join(t.TempDir(), "series.db")
			},
			check: func(t *testing.T, a *app) {
				if _, ok := a.cache.(*store.SQLite); !ok {
					t.Fatalf("cache = %T, want *store.SQLite", a.cache)
				}
			},
		},
		{
			name: "disabled",
			mutate: func(c *config.Config) {
				c.CacheEnabled = false
				c.MetricsEnabled = false
			},
			check: func(t *testing.T, a *app) {
				if a.cache != nil {
					t.Fatalf("cache should be nil when disabled, got %T", a.cache)
				}
				if a.metrics != nil {
					t.Fatalf("metrics should be nil when disabled")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := config.DefaultConfig()
			tt.mutate(c)
			a, err := newApp(c)
			if err != nil {
				t.Fatalf("new app: %v", err)
			}
			defer a.Close()
			if len(a.rules.Names()) == 0 {
				t.Fatalf("expected built-in field rules")
			}
			tt.check(t, a)
		})
	}
}

func TestExportRequiresSQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "series.csv")

	rootCmd.SetArgs([]string{
		"--env-file", filepath.Join(dir, "missing.env"),
		"--cache=true",
		"--cache-backend", "memory",
		"export",
		"--format", "csv",
		"--output", output,
	})
	err := rootCmd.ExecuteContext(context.Background())
	if err == nil || !strings.Contains(err.Error(), "sqlite") {
		t.Fatalf("expected sqlite backend error, got %v", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Fatalf("no output file should be written, stat err = %v", statErr)
	}
}

func TestExportFromSQLite(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "series.db")
	output := filepath.Join(dir, "out", "series.csv")

	db, err := store.NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	rec := models.NewSeriesRecord("12345")
	rec.Fields["title"] = "Demo"
	rec.Fields["genres"] = []string{"Action", "Drama"}
	rec.Complete = true
	if err := db.PutSeries(context.Background(), rec); err != nil {
		t.Fatalf("seed sqlite: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close sqlite: %v", err)
	}

	rootCmd.SetArgs([]string{
		"--env-file", filepath.Join(dir, "missing.env"),
		"--cache=true",
		"--cache-backend", "sqlite",
		"--db", dbPath,
		"export",
		"--format", "csv",
		"--output", output,
	})
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := os.Open(output)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%d, want header plus one series", len(rows))
	}

	header := rows[0]
	col := func(name string) string {
		for i, h := range header {
			if h == name {
				return rows[1][i]
			}
		}
		t.Fatalf("column %q missing from header %v", name, header)
		return ""
	}
	if got := col("mangaId"); got != "12345" {
		t.Fatalf("mangaId = %q, want 12345", got)
	}
	if got := col("title"); got != "Demo" {
		t.Fatalf("title = %q, want Demo", got)
	}
	if got := col("genres"); got != "Action; Drama" {
		t.Fatalf("genres = %q, want %q", got, "Action; Drama")
	}
}
