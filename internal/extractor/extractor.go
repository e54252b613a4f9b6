// Package extractor finds a contact email address on a company website.
package extractor

import (
	"fmt"

	"github.com/ramkansal/corpscout/pkg/plugin"
	"go.uber.org/zap"
)

// Extractor fetches a homepage, follows its contact link when there is one,
// and picks an email address out of the markup.
type Extractor struct {
	fetchers []plugin.Fetcher
	log      *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithFallback adds a fetcher that is tried when the previous ones found nothing,
// typically a headless browser for script-rendered sites.
func WithFallback(f plugin.Fetcher) Option {
	return func(e *Extractor) {
		if f != nil {
			e.fetchers = append(e.fetchers, f)
		}
	}
}

// WithLogger sets the logger for fetch and parse diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(e *Extractor) { e.log = log }
}

// New creates an Extractor that fetches through primary.
func New(primary plugin.Fetcher, opts ...Option) *Extractor {
	e := &Extractor{
		fetchers: []plugin.Fetcher{primary},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the contact email for the site at homepageURL, or "" when
// none was found. Fetch and parse failures are logged, never returned.
func (e *Extractor) Extract(homepageURL string) string {
	for _, f := range e.fetchers {
		email, err := e.extractWith(f, homepageURL)
		if err != nil {
			e.log.Debug("email extraction failed",
				zap.String("url", homepageURL),
				zap.String("fetcher", f.Name()),
				zap.Error(err),
			)
			continue
		}
		if email != "" {
			return email
		}
	}
	return ""
}

// Names returns the names of the fetchers in the order they are tried.
func (e *Extractor) Names() []string {
	names := make([]string, len(e.fetchers))
	for i, f := range e.fetchers {
		names[i] = f.Name()
	}
	return names
}

// extractWith runs one homepage/contact-page pass. Any failure along the way,
// including on the contact page, aborts the pass.
func (e *Extractor) extractWith(f plugin.Fetcher, homepageURL string) (string, error) {
	home, err := f.Fetch(homepageURL)
	if err != nil {
		return "", fmt.Errorf("fetch homepage: %w", err)
	}

	href, err := ContactLink(home.RawHTML)
	if err != nil {
		return "", err
	}

	if href != "" {
		contactURL, err := resolveURL(homepageURL, href)
		if err != nil {
			return "", err
		}
		e.log.Debug("following contact link", zap.String("url", contactURL))

		contact, err := f.Fetch(contactURL)
		if err != nil {
			return "", fmt.Errorf("fetch contact page: %w", err)
		}
		markup, err := Reserialize(contact.RawHTML)
		if err != nil {
			return "", err
		}
		if email := FindEmail(markup); email != "" {
			return email, nil
		}
	}

	return FindEmail(home.RawHTML), nil
}
