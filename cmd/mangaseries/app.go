package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aluiziolira/go-manga-series/config"
	"github.com/aluiziolira/go-manga-series/export"
	"github.com/aluiziolira/go-manga-series/parser"
	"github.com/aluiziolira/go-manga-series/scraper"
	"github.com/aluiziolira/go-manga-series/service"
	"github.com/aluiziolira/go-manga-series/store"
)

type cacheStore interface {
	service.Cache
	export.Lister
	io.Closer
}

type app struct {
	cfg     *config.Config
	rules   *parser.Rules
	metrics *scraper.Metrics
	cache   cacheStore
	svc     *service.Service
}

func loadRules(c *config.Config) (*parser.Rules, error) {
	specs, err := config.LoadFieldSpecs(c.FieldsFile)
	if err != nil {
		return nil, err
	}
	rules, err := parser.NewRules(specs)
	if err != nil {
		return nil, fmt.Errorf("field rules: %w", err)
	}
	return rules, nil
}

func openCache(c *config.Config) (cacheStore, error) {
	switch c.CacheBackend {
	case config.CacheBackendSQLite:
		return store.NewSQLite(c.DatabasePath)
	default:
		return store.NewMemory(c.CacheSize)
	}
}

func newApp(c *config.Config) (*app, error) {
	rules, err := loadRules(c)
	if err != nil {
		return nil, err
	}

	var metrics *scraper.Metrics
	if c.MetricsEnabled {
		metrics = scraper.NewMetrics()
	}

	var cache cacheStore
	if c.CacheEnabled {
		cache, err = openCache(c)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
	}

	svc, err := service.New(service.Options{
		BaseURL:      c.BaseURL,
		Rules:        rules,
		Fetcher:      scraper.NewFetcher(c, metrics),
		Cache:        cache,
		CacheEnabled: c.CacheEnabled,
		Metrics:      metrics,
	})
	if err != nil {
		if cache != nil {
			cache.Close()
		}
		return nil, err
	}

	slog.Debug("service ready",
		slog.String("base_url", c.BaseURL),
		slog.Int("fields", len(rules.Names())),
		slog.Bool("cache", c.CacheEnabled),
		slog.String("cache_backend", c.CacheBackend),
	)

	return &app{cfg: c, rules: rules, metrics: metrics, cache: cache, svc: svc}, nil
}

func (a *app) Close() {
	if a.cache == nil {
		return
	}
	if err := a.cache.Close(); err != nil {
		slog.Error("close cache", slog.Any("error", err))
	}
}
