// Package plugin defines the public types and interfaces for corpscout.
// External tools can import this package to plug in their own fetchers
// or output writers without forking the project.
package plugin

import (
	"net/http"
	"time"
)

// ---------- Core Data Types ----------

// CompanyRecord is a single row of the company table.
// An empty Homepage or Email means the value is absent.
type CompanyRecord struct {
	Name     string `json:"company_name"`
	Homepage string `json:"homepage_url,omitempty"`
	Email    string `json:"contact_email,omitempty"`
}

// HasHomepage reports whether the record carries a homepage URL.
func (r CompanyRecord) HasHomepage() bool { return r.Homepage != "" }

// HasEmail reports whether the record carries a contact email.
func (r CompanyRecord) HasEmail() bool { return r.Email != "" }

// Merge returns a copy of r with every non-empty field of found laid over it.
// The company name is never replaced.
func (r CompanyRecord) Merge(found CompanyRecord) CompanyRecord {
	out := r
	if found.Homepage != "" {
		out.Homepage = found.Homepage
	}
	if found.Email != "" {
		out.Email = found.Email
	}
	return out
}

// PageData represents a fetched web page.
type PageData struct {
	URL           string        `json:"url"`
	FinalURL      string        `json:"final_url"`
	StatusCode    int           `json:"status_code"`
	Headers       http.Header   `json:"-"`
	RawHTML       string        `json:"-"`
	ContentType   string        `json:"content_type"`
	FetchedAt     time.Time     `json:"fetched_at"`
	FetchDuration time.Duration `json:"fetch_duration"`
	FetcherUsed   string        `json:"fetcher_used"`
	Error         string        `json:"error,omitempty"`
	ResponseSize  int           `json:"response_size"`
}

// RunStats holds the end-of-run counts.
type RunStats struct {
	Total          int           `json:"total"`
	HomepagesFound int           `json:"homepages_found"`
	EmailsFound    int           `json:"emails_found"`
	HomepagePct    int           `json:"homepage_pct"`
	EmailPct       int           `json:"email_pct"`
	Errors         int           `json:"errors"`
	Elapsed        time.Duration `json:"elapsed"`
}

// RunSummary is the final aggregated output of a run.
type RunSummary struct {
	InputPath  string          `json:"input_path"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Stats      RunStats        `json:"stats"`
	Records    []CompanyRecord `json:"records"`
}

// ---------- Event Types ----------

// Event represents a progress event emitted by the enricher.
type Event struct {
	Type    EventType
	Index   int // 1-based position of the record, 0 for run-level events
	Total   int
	Company string
	URL     string
	Email   string
	Error   error
	Stats   *RunStats
	Message string
}

// EventType identifies the kind of event.
type EventType int

const (
	EventRunStarted EventType = iota
	EventCompanyStarted
	EventHomepageFound
	EventHomepageNotFound
	EventEmailFound
	EventEmailNotFound
	EventCompanyError
	EventOutputSaved
	EventRunFinished
)

// ---------- Plugin Interfaces ----------

// Fetcher defines how pages are retrieved.
type Fetcher interface {
	// Name returns a human-readable identifier for this fetcher.
	Name() string

	// Fetch retrieves the page at the given URL. A non-nil error means the
	// page could not be retrieved with a successful status.
	Fetch(url string) (*PageData, error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// OutputWriter defines how enriched records are persisted.
type OutputWriter interface {
	// Name returns a human-readable identifier for this writer.
	Name() string

	// WriteResult buffers a single enriched record, in input order.
	WriteResult(record CompanyRecord) error

	// Finalize writes everything buffered and closes resources.
	Finalize(summary *RunSummary) error
}
