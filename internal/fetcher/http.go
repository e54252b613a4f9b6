package fetcher

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/ramkansal/corpscout/pkg/plugin"
)

// HTTPFetcher uses Colly for plain HTTP page fetching.
type HTTPFetcher struct {
	collector *colly.Collector
	userAgent string
}

// HTTPFetcherConfig holds configuration for the HTTP fetcher.
type HTTPFetcherConfig struct {
	UserAgent       string
	Timeout         time.Duration
	MaxRedirects    int
	MaxResponseSize int
}

// NewHTTPFetcher creates a new Colly-based HTTP fetcher.
func NewHTTPFetcher(cfg HTTPFetcherConfig) *HTTPFetcher {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.DetectCharset(),
	)

	c.DisableCookies()

	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}

	if cfg.Timeout > 0 {
		c.SetRequestTimeout(cfg.Timeout)
	}

	if cfg.MaxResponseSize > 0 {
		c.MaxBodySize = cfg.MaxResponseSize
	}

	if cfg.MaxRedirects > 0 {
		limit := cfg.MaxRedirects
		c.SetRedirectHandler(func(req *http.Request, via []*http.Request) error {
			if len(via) >= limit {
				return fmt.Errorf("stopped after %d redirects", limit)
			}
			return nil
		})
	}

	return &HTTPFetcher{
		collector: c,
		userAgent: cfg.UserAgent,
	}
}

func (f *HTTPFetcher) Name() string { return "http" }

func (f *HTTPFetcher) Fetch(targetURL string) (*plugin.PageData, error) {
	start := time.Now()

	page := &plugin.PageData{
		URL:         targetURL,
		FinalURL:    targetURL,
		FetcherUsed: "http",
		FetchedAt:   start,
	}

	// Clone the collector for this individual fetch so callbacks don't pile up
	c := f.collector.Clone()

	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		page.StatusCode = r.StatusCode
		page.RawHTML = string(r.Body)
		page.ResponseSize = len(r.Body)
		page.FinalURL = r.Request.URL.String()
		page.ContentType = r.Headers.Get("Content-Type")

		page.Headers = make(http.Header)
		for key, values := range *r.Headers {
			for _, v := range values {
				page.Headers.Add(key, v)
			}
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil {
			page.StatusCode = r.StatusCode
			if r.Request != nil {
				page.FinalURL = r.Request.URL.String()
			}
		}
		page.Error = err.Error()
	})

	err := c.Visit(targetURL)
	c.Wait()

	page.FetchDuration = time.Since(start)

	if fetchErr != nil {
		return page, fetchErr
	}
	if err != nil {
		page.Error = err.Error()
		return page, err
	}

	return page, nil
}

func (f *HTTPFetcher) Close() error {
	return nil
}
