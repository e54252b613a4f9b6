// Package enricher drives a run: every company is resolved to a homepage,
// the homepage is searched for a contact email, and the merged table is
// written once at the end.
package enricher

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ramkansal/corpscout/pkg/plugin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// HomepageResolver guesses a homepage URL for a company name. "" means not found.
type HomepageResolver interface {
	Resolve(name string) (string, error)
}

// EmailExtractor finds a contact email on a homepage. "" means not found.
type EmailExtractor interface {
	Extract(homepageURL string) string
}

// Enricher is the engine that orchestrates resolving, extracting and output.
type Enricher struct {
	config    *Config
	resolver  HomepageResolver
	extractor EmailExtractor
	writer    plugin.OutputWriter
	log       *zap.Logger
	events    chan plugin.Event
	sleep     func(time.Duration)

	errMu  sync.Mutex
	failed int
}

// New creates an Enricher. A nil logger disables logging.
func New(config *Config, r HomepageResolver, x EmailExtractor, w plugin.OutputWriter, log *zap.Logger) *Enricher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Enricher{
		config:    config,
		resolver:  r,
		extractor: x,
		writer:    w,
		log:       log,
		events:    make(chan plugin.Event, 1024),
		sleep:     time.Sleep,
	}
}

// Events returns the progress event channel. It is closed when Run returns.
func (e *Enricher) Events() <-chan plugin.Event {
	return e.events
}

// Run enriches records and writes the result through the output writer.
// The returned summary holds one record per input record, in input order.
// Only a failure to write the output is returned as an error.
func (e *Enricher) Run(records []plugin.CompanyRecord) (*plugin.RunSummary, error) {
	defer close(e.events)

	start := time.Now()
	total := len(records)

	e.emit(plugin.Event{
		Type:    plugin.EventRunStarted,
		Total:   total,
		Message: fmt.Sprintf("Enriching %d companies", total),
	})

	results := make([]plugin.CompanyRecord, total)

	var g errgroup.Group
	g.SetLimit(e.parallelism())
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			results[i] = e.processRecord(i+1, total, rec)
			return nil
		})
	}
	_ = g.Wait()

	summary := &plugin.RunSummary{
		InputPath: e.config.InputPath,
		StartedAt: start,
		Records:   results,
	}

	if e.writer != nil {
		for _, r := range results {
			if err := e.writer.WriteResult(r); err != nil {
				return summary, err
			}
		}
	}

	summary.Stats = ComputeStats(results)
	summary.Stats.Errors = e.failures()
	summary.FinishedAt = time.Now()
	summary.Stats.Elapsed = summary.FinishedAt.Sub(start)

	if e.writer != nil {
		if err := e.writer.Finalize(summary); err != nil {
			return summary, err
		}
		e.emit(plugin.Event{
			Type:    plugin.EventOutputSaved,
			URL:     e.config.OutputPath,
			Message: "Results saved to " + e.config.OutputPath,
		})
	}

	stats := summary.Stats
	e.emit(plugin.Event{
		Type:    plugin.EventRunFinished,
		Total:   total,
		Stats:   &stats,
		Message: fmt.Sprintf("Done. %d homepages, %d emails.", stats.HomepagesFound, stats.EmailsFound),
	})

	return summary, nil
}

// processRecord enriches a single record. Any error or panic keeps the
// record's original values.
func (e *Enricher) processRecord(index, total int, rec plugin.CompanyRecord) (out plugin.CompanyRecord) {
	defer func() {
		if p := recover(); p != nil {
			e.fail(index, total, rec, fmt.Errorf("panic: %v", p))
			out = rec
		}
	}()

	e.emit(plugin.Event{
		Type:    plugin.EventCompanyStarted,
		Index:   index,
		Total:   total,
		Company: rec.Name,
	})

	found, err := e.lookup(index, total, rec.Name)
	if err != nil {
		e.fail(index, total, rec, err)
		return rec
	}
	return rec.Merge(found)
}

// lookup resolves the homepage and, when there is one, its contact email.
// A found homepage is followed by the polite delay whatever the email outcome.
func (e *Enricher) lookup(index, total int, name string) (plugin.CompanyRecord, error) {
	found := plugin.CompanyRecord{Name: name}

	homepage, err := e.resolver.Resolve(name)
	if err != nil {
		return found, fmt.Errorf("resolve homepage: %w", err)
	}
	if homepage == "" {
		e.emit(plugin.Event{Type: plugin.EventHomepageNotFound, Index: index, Total: total, Company: name})
		return found, nil
	}
	found.Homepage = homepage
	e.emit(plugin.Event{Type: plugin.EventHomepageFound, Index: index, Total: total, Company: name, URL: homepage})

	found.Email = e.extractor.Extract(homepage)
	if found.Email != "" {
		e.emit(plugin.Event{Type: plugin.EventEmailFound, Index: index, Total: total, Company: name, URL: homepage, Email: found.Email})
	} else {
		e.emit(plugin.Event{Type: plugin.EventEmailNotFound, Index: index, Total: total, Company: name, URL: homepage})
	}

	if e.config.Delay > 0 {
		e.sleep(e.config.Delay)
	}
	return found, nil
}

func (e *Enricher) fail(index, total int, rec plugin.CompanyRecord, err error) {
	e.errMu.Lock()
	e.failed++
	e.errMu.Unlock()

	e.log.Warn("company lookup failed, keeping input values",
		zap.Int("index", index),
		zap.String("company", rec.Name),
		zap.Error(err),
	)
	e.emit(plugin.Event{
		Type:    plugin.EventCompanyError,
		Index:   index,
		Total:   total,
		Company: rec.Name,
		Error:   err,
		Message: err.Error(),
	})
}

func (e *Enricher) failures() int {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.failed
}

func (e *Enricher) parallelism() int {
	if e.config.Parallelism < 1 {
		return 1
	}
	return e.config.Parallelism
}

// emit sends an event to the event channel (non-blocking).
func (e *Enricher) emit(event plugin.Event) {
	select {
	case e.events <- event:
	default:
		// Drop event if channel is full, the console must not stall the run
	}
}

// ComputeStats counts records that ended up with a homepage and with an email.
func ComputeStats(records []plugin.CompanyRecord) plugin.RunStats {
	s := plugin.RunStats{Total: len(records)}
	for _, r := range records {
		if r.HasHomepage() {
			s.HomepagesFound++
		}
		if r.HasEmail() {
			s.EmailsFound++
		}
	}
	s.HomepagePct = Percent(s.HomepagesFound, s.Total)
	s.EmailPct = Percent(s.EmailsFound, s.Total)
	return s
}

// Percent returns n as a whole percentage of total, rounded half up.
// An empty total yields 0.
func Percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}
