package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-manga-series/config"
)

const (
	ctxKeyStatus   = "status"
	ctxKeyDocument = "document"
	ctxKeyParseErr = "parse_error"
)

// Fetcher retrieves series pages with a synchronous colly collector.
// Each call carries its own colly.Context, so concurrent fetches never share state.
type Fetcher struct {
	collector *colly.Collector
	metrics   *Metrics
}

// FetcherOption customises a Fetcher.
type FetcherOption func(*Fetcher)

// WithTransport replaces the collector's HTTP transport.
func WithTransport(rt http.RoundTripper) FetcherOption {
	return func(f *Fetcher) {
		f.collector.WithTransport(rt)
	}
}

// NewFetcher builds a fetcher configured from cfg. metrics may be nil.
func NewFetcher(cfg *config.Config, metrics *Metrics, opts ...FetcherOption) *Fetcher {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = !cfg.RespectRobotsTxt
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	collector.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(ctxKeyStatus, r.StatusCode)
		if r.StatusCode < 200 || r.StatusCode > 299 {
			return
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			r.Ctx.Put(ctxKeyParseErr, err)
			return
		}
		r.Ctx.Put(ctxKeyDocument, doc)
	})

	f := &Fetcher{
		collector: collector,
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch issues a single GET for url.
//
// It returns (doc, true, nil) on a 2xx response with a parsable body and
// (nil, false, nil) when the page could not be retrieved: network failures,
// non-2xx statuses and unparsable bodies are classified, logged and counted
// rather than returned. A non-nil error means the fetch could not be attempted.
//
// ctx is only checked before the request is issued. An in-flight fetch is not
// aborted by cancellation; it runs until it completes or the configured
// request timeout expires.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*goquery.Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("fetch %s: %w", url, err)
	}

	reqCtx := colly.NewContext()
	start := time.Now()
	err := f.collector.Request(http.MethodGet, url, nil, reqCtx, nil)
	f.metrics.ObserveFetch(time.Since(start))

	status, _ := reqCtx.GetAny(ctxKeyStatus).(int)
	if err != nil {
		f.fail(url, classifyError(err, status), err)
		return nil, false, nil
	}
	if status < 200 || status > 299 {
		f.fail(url, classifyError(nil, status), nil)
		return nil, false, nil
	}
	if parseErr, ok := reqCtx.GetAny(ctxKeyParseErr).(error); ok {
		f.fail(url, ErrParse{Err: parseErr}, parseErr)
		return nil, false, nil
	}
	doc, ok := reqCtx.GetAny(ctxKeyDocument).(*goquery.Document)
	if !ok {
		f.fail(url, ErrParse{Err: fmt.Errorf("no document captured")}, nil)
		return nil, false, nil
	}

	slog.Debug("fetched series page",
		slog.String("url", url),
		slog.Int("status", status),
		slog.Duration("elapsed", time.Since(start)),
	)
	return doc, true, nil
}

func (f *Fetcher) fail(url string, classified, cause error) {
	category := errorTypeLabel(classified)
	if cause == nil {
		cause = classified
	}
	slog.Warn("series page unavailable",
		slog.String("url", url),
		slog.String("category", category),
		slog.Any("error", cause),
	)
	f.metrics.IncFetchError(category)
}
