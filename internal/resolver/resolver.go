// Package resolver guesses a company's homepage from its name.
//
// A fixed set of string transforms turns the name into candidate domains,
// which are probed one after another over HTTPS. The first candidate that
// answers 200 wins.
package resolver

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/ramkansal/corpscout/pkg/plugin"
	"go.uber.org/zap"
)

// ErrEmptyName is returned when there is no company name to guess from.
var ErrEmptyName = errors.New("empty company name")

// corporateSuffix matches legal-form tokens. All matches are removed in one pass.
var corporateSuffix = regexp.MustCompile(`(?i)株式会社|有限会社|合同会社|Inc\.|LLC|Ltd\.`)

// Resolver probes candidate domains derived from a company name.
type Resolver struct {
	fetcher plugin.Fetcher
	scheme  string
	log     *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithScheme overrides the URL scheme used for probing (default "https").
func WithScheme(scheme string) Option {
	return func(r *Resolver) { r.scheme = scheme }
}

// WithLogger sets the logger for per-candidate diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// New creates a Resolver that probes through the given fetcher.
func New(f plugin.Fetcher, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher: f,
		scheme:  "https",
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Candidates returns the four candidate domains for name, in probe order.
// Duplicates are kept.
func Candidates(name string) []string {
	plain := compact(name)
	stripped := compact(corporateSuffix.ReplaceAllString(name, ""))

	return []string{
		plain + ".com",
		stripped + ".com",
		plain + ".co.jp",
		stripped + ".co.jp",
	}
}

// Resolve returns the URL of the first candidate that answers 200, or ""
// when none does. Probe failures never abort the scan.
func (r *Resolver) Resolve(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyName
	}

	for _, domain := range Candidates(name) {
		target := r.scheme + "://" + domain
		if r.probe(target) {
			r.log.Debug("homepage candidate answered", zap.String("company", name), zap.String("url", target))
			return target, nil
		}
	}
	return "", nil
}

func (r *Resolver) probe(target string) bool {
	r.log.Debug("trying homepage candidate", zap.String("url", target))

	page, err := r.fetcher.Fetch(target)
	if err != nil {
		r.log.Debug("homepage candidate failed", zap.String("url", target), zap.Error(err))
		return false
	}
	return page != nil && page.StatusCode == http.StatusOK
}

// compact lowercases s and removes all whitespace, including full-width spaces.
func compact(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "")
}
