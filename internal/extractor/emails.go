package extractor

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._-]+@[a-zA-Z0-9._-]+\.[a-zA-Z0-9_-]+`)

// Organizational aliases that are preferred over any other address.
var preferredMarkers = []string{"info@", "contact@", "inquiry@", "support@"}

// Common false positives: retina image names, placeholders and error-tracking DSNs.
var rejectMarkers = []string{".png", ".jpg", ".gif", "example.com", "sentry"}

// FindEmails returns every email-shaped substring of markup, in order of appearance.
func FindEmails(markup string) []string {
	return emailPattern.FindAllString(markup, -1)
}

// FindEmail picks the contact address from raw markup.
//
// The first match carrying a preferred alias wins regardless of position.
// Otherwise the first match that is not a known false positive is used.
// The result is lowercased; "" means nothing usable was found.
func FindEmail(markup string) string {
	return rankEmails(FindEmails(markup))
}

func rankEmails(matches []string) string {
	for _, m := range matches {
		lower := strings.ToLower(m)
		if containsAny(lower, preferredMarkers) {
			return lower
		}
	}

	for _, m := range matches {
		lower := strings.ToLower(m)
		if !containsAny(lower, rejectMarkers) {
			return lower
		}
	}

	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
