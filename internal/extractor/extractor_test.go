package extractor

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/ramkansal/corpscout/internal/fetcher"
	"github.com/ramkansal/corpscout/pkg/plugin"
)

// newSite serves the given path -> markup table; unknown paths answer 404.
func newSite(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func newHTTPExtractor() *Extractor {
	return New(fetcher.NewHTTPFetcher(fetcher.HTTPFetcherConfig{
		UserAgent:    "corpscout-test/1.0",
		Timeout:      5 * time.Second,
		MaxRedirects: 5,
	}))
}

func TestExtract_ContactPageWins(t *testing.T) {
	server := newSite(t, map[string]string{
		"/":        `<html><body><a href="/contact">Contact</a><p>sales@acme.com</p></body></html>`,
		"/contact": `<html><body><p>Mail: hello&#64;acme.com</p></body></html>`,
	})

	if got := newHTTPExtractor().Extract(server.URL); got != "hello@acme.com" {
		t.Errorf("Expected hello@acme.com, got %q", got)
	}
}

func TestExtract_FallsBackToHomepage(t *testing.T) {
	server := newSite(t, map[string]string{
		"/":             `<html><body><a href="inquiry.html">Ask us</a><p>Info@Acme.com</p></body></html>`,
		"/inquiry.html": `<html><body><form></form></body></html>`,
	})

	if got := newHTTPExtractor().Extract(server.URL + "/"); got != "info@acme.com" {
		t.Errorf("Expected info@acme.com, got %q", got)
	}
}

func TestExtract_NoContactLink(t *testing.T) {
	server := newSite(t, map[string]string{
		"/": `<html><body><img src="/logo@2x.png"><p>team@acme.com</p></body></html>`,
	})

	if got := newHTTPExtractor().Extract(server.URL); got != "team@acme.com" {
		t.Errorf("Expected team@acme.com, got %q", got)
	}
}

func TestExtract_ContactPageErrorMeansNotFound(t *testing.T) {
	server := newSite(t, map[string]string{
		"/": `<html><body><a href="/contact">Contact</a><p>info@acme.com</p></body></html>`,
	})

	if got := newHTTPExtractor().Extract(server.URL); got != "" {
		t.Errorf("Expected no email when the contact page fails, got %q", got)
	}
}

func TestExtract_HomepageError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	if got := newHTTPExtractor().Extract(server.URL); got != "" {
		t.Errorf("Expected no email, got %q", got)
	}
}

// stubFetcher serves canned markup per URL.
type stubFetcher struct {
	name  string
	pages map[string]string
	calls []string
}

func (f *stubFetcher) Name() string { return f.name }

func (f *stubFetcher) Fetch(url string) (*plugin.PageData, error) {
	f.calls = append(f.calls, url)
	body, ok := f.pages[url]
	if !ok {
		return &plugin.PageData{URL: url}, errors.New("not found")
	}
	return &plugin.PageData{URL: url, StatusCode: http.StatusOK, RawHTML: body}, nil
}

func (f *stubFetcher) Close() error { return nil }

func TestExtract_FallbackFetcher(t *testing.T) {
	plain := &stubFetcher{name: "http", pages: map[string]string{
		"https://acme.com": `<div id="app"></div>`,
	}}
	rendered := &stubFetcher{name: "browser", pages: map[string]string{
		"https://acme.com": `<div id="app"><p>contact@acme.com</p></div>`,
	}}

	e := New(plain, WithFallback(rendered))

	if got := e.Extract("https://acme.com"); got != "contact@acme.com" {
		t.Errorf("Expected contact@acme.com, got %q", got)
	}
	if !reflect.DeepEqual(e.Names(), []string{"http", "browser"}) {
		t.Errorf("Unexpected fetcher order %v", e.Names())
	}
}

func TestExtract_FallbackNotUsedOnSuccess(t *testing.T) {
	plain := &stubFetcher{name: "http", pages: map[string]string{
		"https://acme.com": `<p>info@acme.com</p>`,
	}}
	rendered := &stubFetcher{name: "browser"}

	got := New(plain, WithFallback(rendered)).Extract("https://acme.com")
	if got != "info@acme.com" {
		t.Errorf("Expected info@acme.com, got %q", got)
	}
	if len(rendered.calls) != 0 {
		t.Errorf("Expected browser fetcher to be skipped, got calls %v", rendered.calls)
	}
}

func TestExtract_ResolvesAgainstHomepage(t *testing.T) {
	f := &stubFetcher{name: "http", pages: map[string]string{
		"https://acme.co.jp":                `<a href="contact/">問い合わせ</a>`,
		"https://acme.co.jp/contact/":       `<p>Mail: desk@acme.co.jp</p>`,
		"https://acme.co.jp/other/contact/": `<p>wrong@acme.co.jp</p>`,
	}}

	if got := New(f).Extract("https://acme.co.jp"); got != "desk@acme.co.jp" {
		t.Errorf("Expected desk@acme.co.jp, got %q", got)
	}
	want := []string{"https://acme.co.jp", "https://acme.co.jp/contact/"}
	if !reflect.DeepEqual(f.calls, want) {
		t.Errorf("Expected calls %v, got %v", want, f.calls)
	}
}
