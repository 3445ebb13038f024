package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/opencatalog/repo-scanner/cfg"
	"github.com/opencatalog/repo-scanner/pkg/log"
)

// Stats is a snapshot of scan state for the observability surface.
// TotalProcessed accumulates over the process lifetime and is never reset
// per run; run history is deliberately not persisted across restarts.
type Stats struct {
	IsRunning      bool      `json:"is_running"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
	TotalProcessed int64     `json:"total_processed"`
}

// Scanner drives one full scan across the configured languages, one
// language at a time. At most one scan runs at any moment: Run is a no-op
// while another run holds the flag.
type Scanner struct {
	Logger  log.Logger
	Config  *cfg.Config
	Fetcher *Fetcher

	mu      sync.RWMutex
	running bool
	stats   Stats
}

func NewScanner(logger log.Logger, config *cfg.Config, fetcher *Fetcher) (*Scanner, error) {
	return &Scanner{
		Logger:  logger,
		Config:  config,
		Fetcher: fetcher,
	}, nil
}

// Run executes one scan to completion. Returns false without doing any work
// when a scan is already in flight; overlapping requests are rejected, not
// queued.
func (s *Scanner) Run(ctx context.Context) bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.Logger.Info(ctx, "Scan already in progress, ignoring trigger")
		return false
	}
	s.running = true
	s.stats.IsRunning = true
	s.stats.StartedAt = time.Now()
	s.mu.Unlock()

	s.Logger.Info(ctx, "Starting catalog scan across %d languages", len(s.Config.Scanner.Languages))

	var total int64
	for i, language := range s.Config.Scanner.Languages {
		if ctx.Err() != nil {
			s.Logger.Warn(ctx, "Scan cancelled after %d languages", i)
			break
		}

		total += int64(s.scanLanguage(ctx, language))

		// Pause between languages to avoid bursty cross-language request
		// patterns against the provider.
		if i < len(s.Config.Scanner.Languages)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(time.Duration(s.Config.Scanner.LanguagePauseMs) * time.Millisecond):
			}
		}
	}

	s.mu.Lock()
	s.running = false
	s.stats.IsRunning = false
	s.stats.CompletedAt = time.Now()
	s.stats.TotalProcessed += total
	processed := s.stats.TotalProcessed
	s.mu.Unlock()

	s.Logger.Info(ctx, "Catalog scan complete: %d attempted this run, %d lifetime", total, processed)
	return true
}

// scanLanguage runs the fetcher for one language. The recover is a
// defensive catch-all: one language's total failure must not abort the
// whole run.
func (s *Scanner) scanLanguage(ctx context.Context, language string) (count int) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error(ctx, "Scan of %s panicked: %v", language, r)
		}
	}()

	s.Logger.Info(ctx, "Scanning language %s (quota %d)", language, s.Config.Scanner.QuotaPerLanguage)
	count = s.Fetcher.Fetch(ctx, language, s.Config.Scanner.QuotaPerLanguage)
	s.Logger.Info(ctx, "Language %s done: %d attempted", language, count)
	return count
}

// IsRunning reports whether a scan is currently in flight.
func (s *Scanner) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Stats returns a copy of the current scan statistics.
func (s *Scanner) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}
