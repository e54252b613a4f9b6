package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contactSelector matches anchors whose target looks like a contact or inquiry page.
const contactSelector = `a[href*="contact"], a[href*="inquiry"], a[href*="お問い合わせ"]`

// ContactLink returns the href of the first contact-like anchor in markup,
// in document order, or "" when there is none.
func ContactLink(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", &ParseError{Err: err}
	}

	href, _ := doc.Find(contactSelector).First().Attr("href")
	return strings.TrimSpace(href), nil
}

// Reserialize parses markup and renders it back, decoding character
// references such as &#64; on the way.
func Reserialize(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", &ParseError{Err: err}
	}
	html, err := doc.Html()
	if err != nil {
		return "", &ParseError{Err: err}
	}
	return html, nil
}

// resolveURL resolves a potentially relative URL against a base URL.
func resolveURL(base, raw string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base %q: %w", base, err)
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse link %q: %w", raw, err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}

// ParseError reports markup that could not be parsed.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "parse markup: " + e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }
