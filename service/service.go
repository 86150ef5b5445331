// Package service runs the fetch, parse and cache pipeline behind the API.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-manga-series/models"
	"github.com/aluiziolira/go-manga-series/parser"
	"github.com/aluiziolira/go-manga-series/scraper"
)

var (
	// ErrFetchUnavailable means the series page could not be retrieved.
	ErrFetchUnavailable = errors.New("series page unavailable")
	// ErrFieldNotFound means the requested field has no extraction rule.
	ErrFieldNotFound = errors.New("field not found")
)

// Fetcher retrieves and parses a page. ok=false with a nil error means the page is unavailable.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, bool, error)
}

// Cache stores parsed series records.
type Cache interface {
	GetSeries(ctx context.Context, mangaID string) (models.SeriesRecord, bool, error)
	GetField(ctx context.Context, mangaID, field string) (any, bool, error)
	PutSeries(ctx context.Context, rec models.SeriesRecord) error
}

// Options configures a Service.
type Options struct {
	BaseURL      string
	Rules        *parser.Rules
	Fetcher      Fetcher
	Cache        Cache
	CacheEnabled bool
	Metrics      *scraper.Metrics
}

// Service answers series and field lookups.
type Service struct {
	baseURL  string
	rules    *parser.Rules
	fetcher  Fetcher
	cache    Cache
	useCache bool
	metrics  *scraper.Metrics
}

// New validates opts and returns a Service.
func New(opts Options) (*Service, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if opts.Rules == nil {
		return nil, fmt.Errorf("rules are required")
	}
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if opts.CacheEnabled && opts.Cache == nil {
		return nil, fmt.Errorf("cache is required when caching is enabled")
	}
	return &Service{
		baseURL:  opts.BaseURL,
		rules:    opts.Rules,
		fetcher:  opts.Fetcher,
		cache:    opts.Cache,
		useCache: opts.CacheEnabled,
		metrics:  opts.Metrics,
	}, nil
}

// Rules returns the extraction rules the service was built with.
func (s *Service) Rules() *parser.Rules {
	return s.rules
}

// SeriesInfo returns every configured field for mangaID, from cache when possible.
func (s *Service) SeriesInfo(ctx context.Context, mangaID string) (models.SeriesRecord, error) {
	if s.useCache {
		rec, ok, err := s.cache.GetSeries(ctx, mangaID)
		switch {
		case err != nil:
			s.cacheReadFailed("series", mangaID, err)
		case ok:
			s.metrics.IncCacheLookup("series", "hit")
			slog.Debug("series served from cache", slog.String("manga_id", mangaID))
			return rec, nil
		default:
			s.metrics.IncCacheLookup("series", "miss")
		}
	}

	doc, err := s.fetch(ctx, mangaID)
	if err != nil {
		return models.SeriesRecord{}, err
	}

	rec := models.NewSeriesRecord(mangaID)
	rec.Fields = parser.ParseAll(doc, s.rules)
	rec.Complete = true
	s.metrics.AddFieldsParsed(len(rec.Fields))

	s.store(ctx, rec)
	return rec, nil
}

// FieldInfo returns one field for mangaID. Unknown fields fail with ErrFieldNotFound
// before any cache or network access.
func (s *Service) FieldInfo(ctx context.Context, mangaID, field string) (any, error) {
	if !s.rules.Has(field) {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, field)
	}

	if s.useCache {
		v, ok, err := s.cache.GetField(ctx, mangaID, field)
		switch {
		case err != nil:
			s.cacheReadFailed("field", mangaID, err)
		case ok:
			s.metrics.IncCacheLookup("field", "hit")
			slog.Debug("field served from cache",
				slog.String("manga_id", mangaID),
				slog.String("field", field),
			)
			return v, nil
		default:
			s.metrics.IncCacheLookup("field", "miss")
		}
	}

	doc, err := s.fetch(ctx, mangaID)
	if err != nil {
		return nil, err
	}

	v, err := parser.ParseOne(doc, s.rules, field)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, field)
	}
	s.metrics.AddFieldsParsed(1)

	rec := models.NewSeriesRecord(mangaID)
	rec.Fields[field] = v
	s.store(ctx, rec)
	return v, nil
}

func (s *Service) fetch(ctx context.Context, mangaID string) (*goquery.Document, error) {
	url, err := scraper.SeriesURL(s.baseURL, mangaID)
	if err != nil {
		return nil, err
	}
	doc, ok, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch series %s: %w", mangaID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFetchUnavailable, mangaID)
	}
	return doc, nil
}

func (s *Service) store(ctx context.Context, rec models.SeriesRecord) {
	if !s.useCache {
		return
	}
	if err := s.cache.PutSeries(ctx, rec); err != nil {
		s.metrics.IncCacheWriteError()
		slog.Error("cache write failed",
			slog.String("manga_id", rec.MangaID),
			slog.Bool("complete", rec.Complete),
			slog.Any("error", err),
		)
	}
}

func (s *Service) cacheReadFailed(kind, mangaID string, err error) {
	s.metrics.IncCacheLookup(kind, "error")
	slog.Warn("cache read failed, treating as miss",
		slog.String("kind", kind),
		slog.String("manga_id", mangaID),
		slog.Any("error", err),
	)
}
