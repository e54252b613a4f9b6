package fetcher

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ramkansal/corpscout/pkg/plugin"
)

// BrowserFetcher uses Rod (headless Chrome) for JS-rendered page fetching.
type BrowserFetcher struct {
	browser     *rod.Browser
	timeout     time.Duration
	pageTimeout time.Duration
	userAgent   string
}

// BrowserFetcherConfig holds configuration for the browser fetcher.
type BrowserFetcherConfig struct {
	Timeout     time.Duration
	PageTimeout time.Duration
	UserAgent   string
}

// NewBrowserFetcher launches a headless browser and connects to it.
func NewBrowserFetcher(cfg BrowserFetcherConfig) (*BrowserFetcher, error) {
	u, err := launcher.New().
		Headless(true).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Launch()
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	pageTimeout := cfg.PageTimeout
	if pageTimeout == 0 {
		pageTimeout = 15 * time.Second
	}

	return &BrowserFetcher{
		browser:     browser,
		timeout:     timeout,
		pageTimeout: pageTimeout,
		userAgent:   cfg.UserAgent,
	}, nil
}

func (f *BrowserFetcher) Name() string { return "browser" }

func (f *BrowserFetcher) Fetch(targetURL string) (*plugin.PageData, error) {
	start := time.Now()

	page := &plugin.PageData{
		URL:         targetURL,
		FinalURL:    targetURL,
		FetcherUsed: "browser",
		FetchedAt:   start,
	}

	rodPage, err := f.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		page.Error = err.Error()
		page.FetchDuration = time.Since(start)
		return page, err
	}
	defer rodPage.Close()

	rodPage = rodPage.Timeout(f.timeout)

	if f.userAgent != "" {
		_ = rodPage.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: f.userAgent,
		})
	}

	if err := rodPage.Navigate(targetURL); err != nil {
		page.Error = err.Error()
		page.FetchDuration = time.Since(start)
		return page, err
	}

	// A page that never settles still has usable markup
	if err := rodPage.WaitStable(f.pageTimeout); err != nil {
		if !strings.Contains(err.Error(), "context canceled") {
			page.Error = "page did not fully stabilize: " + err.Error()
		}
	}

	if info, err := rodPage.Info(); err == nil {
		page.FinalURL = info.URL
	}

	// Rod does not surface the navigation status; a completed navigation counts as 200
	page.StatusCode = http.StatusOK
	page.Headers = make(http.Header)
	page.ContentType = "text/html"

	html, err := rodPage.HTML()
	if err != nil {
		page.Error = err.Error()
		page.FetchDuration = time.Since(start)
		return page, err
	}
	page.RawHTML = html
	page.ResponseSize = len(html)

	page.FetchDuration = time.Since(start)
	return page, nil
}

func (f *BrowserFetcher) Close() error {
	if f.browser != nil {
		return f.browser.Close()
	}
	return nil
}
