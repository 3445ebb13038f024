package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/opencatalog/repo-scanner/internal/provider"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestRun_SingleFlight(t *testing.T) {
	config := testConfig(t)
	config.Scanner.Languages = []string{"Go"}
	config.Scanner.QuotaPerLanguage = 1

	page1 := summaries(1, 100)
	block := make(chan struct{})
	search := &fakeSearch{pages: map[int][]provider.RepoSummary{1: page1}, block: block}
	store := newFakeStore()
	fetcher := newTestFetcher(t, config, search, docsForAll(page1), store)

	scanner, err := NewScanner(fetcher.Logger, config, fetcher)
	if err != nil {
		t.Fatalf("new scanner: %v", err)
	}

	done := make(chan bool, 1)
	go func() { done <- scanner.Run(context.Background()) }()

	waitFor(t, time.Second, scanner.IsRunning)

	// A second trigger while running must refuse immediately.
	if scanner.Run(context.Background()) {
		t.Fatal("second Run started while first still in flight")
	}

	close(block)
	if ran := <-done; !ran {
		t.Fatal("first Run should have executed")
	}
	if scanner.IsRunning() {
		t.Fatal("scanner still marked running after completion")
	}
}

func TestRun_AccumulatesLifetimeTotals(t *testing.T) {
	config := testConfig(t)
	config.Scanner.Languages = []string{"Go", "Rust"}
	config.Scanner.QuotaPerLanguage = 2

	page1 := summaries(2, 100)
	search := &fakeSearch{pages: map[int][]provider.RepoSummary{1: page1}}
	store := newFakeStore()
	fetcher := newTestFetcher(t, config, search, docsForAll(page1), store)

	scanner, _ := NewScanner(fetcher.Logger, config, fetcher)

	if !scanner.Run(context.Background()) {
		t.Fatal("first run refused")
	}
	stats := scanner.Stats()
	if stats.TotalProcessed != 4 {
		t.Fatalf("got total %d, want 4 (2 per language)", stats.TotalProcessed)
	}
	if stats.IsRunning {
		t.Fatal("stats still report running")
	}
	if stats.CompletedAt.IsZero() || stats.StartedAt.IsZero() {
		t.Fatal("timestamps not recorded")
	}

	// A second run adds to the lifetime counter; it never resets.
	if !scanner.Run(context.Background()) {
		t.Fatal("second run refused")
	}
	if got := scanner.Stats().TotalProcessed; got != 8 {
		t.Fatalf("got total %d, want 8 after two runs", got)
	}
}

func TestRun_LanguagePanicDoesNotAbortRun(t *testing.T) {
	config := testConfig(t)
	config.Scanner.Languages = []string{"Go", "Rust"}
	config.Scanner.QuotaPerLanguage = 1

	page1 := summaries(1, 100)
	search := &fakeSearch{pages: map[int][]provider.RepoSummary{1: page1}}
	store := newFakeStore()
	fetcher := newTestFetcher(t, config, search, docsForAll(page1), store)

	scanner, _ := NewScanner(fetcher.Logger, config, fetcher)

	// Simulate a catastrophic per-language failure by nilling the fetcher's
	// client after construction; the first language panics, the run must
	// still complete and report Idle.
	fetcher.Client = nil

	if !scanner.Run(context.Background()) {
		t.Fatal("run refused")
	}
	if scanner.IsRunning() {
		t.Fatal("scanner stuck running after panic")
	}
}

func TestScheduler_TimeUntilNextAndStop(t *testing.T) {
	config := testConfig(t)
	config.Scanner.Languages = nil // immediate scan completes instantly
	config.Scanner.IntervalHours = 12

	search := &fakeSearch{pages: map[int][]provider.RepoSummary{}}
	store := newFakeStore()
	fetcher := newTestFetcher(t, config, search, &fakeDocs{docs: map[string]string{}}, store)
	scanner, _ := NewScanner(fetcher.Logger, config, fetcher)

	scheduler, err := NewScheduler(fetcher.Logger, config, scanner)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	if scheduler.TimeUntilNext() != 0 {
		t.Fatal("expected zero before Start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	scheduler.Start(ctx)

	next := scheduler.TimeUntilNext()
	if next <= 0 || next > 12*time.Hour {
		t.Fatalf("got %v, want within (0, 12h]", next)
	}

	// Stop must be idempotent and must not panic on double close.
	scheduler.Stop()
	scheduler.Stop()
}
