package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/opencatalog/repo-scanner/cfg"
	"github.com/opencatalog/repo-scanner/pkg/log"
)

// Scheduler fires an immediate scan at startup and re-triggers on a fixed
// wall-clock interval regardless of how long the prior run took. Overlap is
// absorbed by the scanner's single-flight guard. Stop cancels future
// triggers only; an in-flight scan runs to completion.
type Scheduler struct {
	Logger   log.Logger
	Config   *cfg.Config
	Scanner  *Scanner
	interval time.Duration

	mu       sync.Mutex
	nextRun  time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewScheduler(logger log.Logger, config *cfg.Config, scanner *Scanner) (*Scheduler, error) {
	return &Scheduler{
		Logger:   logger,
		Config:   config,
		Scanner:  scanner,
		interval: time.Duration(config.Scanner.IntervalHours) * time.Hour,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start launches the initial scan and the recurring trigger. Non-blocking:
// the hosting server becomes ready while the first scan is still running.
func (s *Scheduler) Start(ctx context.Context) {
	s.Logger.Info(ctx, "Scheduler starting, interval %v", s.interval)

	go s.Scanner.Run(ctx)
	s.setNextRun(time.Now().Add(s.interval))

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.setNextRun(time.Now().Add(s.interval))
				go s.Scanner.Run(ctx)
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels the recurring trigger. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

// TimeUntilNext returns the time remaining before the next scheduled scan.
func (s *Scheduler) TimeUntilNext() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nextRun.IsZero() {
		return 0
	}
	d := time.Until(s.nextRun)
	if d < 0 {
		return 0
	}
	return d
}

func (s *Scheduler) setNextRun(t time.Time) {
	s.mu.Lock()
	s.nextRun = t
	s.mu.Unlock()
}
