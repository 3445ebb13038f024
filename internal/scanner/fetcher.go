package scanner

import (
	"context"
	"errors"
	"time"

	"github.com/opencatalog/repo-scanner/cfg"
	"github.com/opencatalog/repo-scanner/internal/provider"
	"github.com/opencatalog/repo-scanner/pkg/log"
)

// SearchClient walks the provider's paginated search results.
type SearchClient interface {
	Search(ctx context.Context, language string, page int) ([]provider.RepoSummary, error)
}

// Fetcher walks result pages for one language until the quota is met or the
// provider runs out of results. Pages and items are processed strictly in
// order; the inter-item pause is the only concurrency control.
type Fetcher struct {
	Logger   log.Logger
	Config   *cfg.Config
	Client   SearchClient
	Enricher *Enricher
}

func NewFetcher(logger log.Logger, config *cfg.Config, client SearchClient, enricher *Enricher) (*Fetcher, error) {
	return &Fetcher{
		Logger:   logger,
		Config:   config,
		Client:   client,
		Enricher: enricher,
	}, nil
}

// Fetch returns the number of enrichment attempts, not stores. A repository
// skipped for missing documentation still consumes quota: the provider's
// popularity-sorted order is itself the sample being taken.
func (f *Fetcher) Fetch(ctx context.Context, language string, quota int) int {
	scanned := 0
	page := 1

	for scanned < quota {
		if ctx.Err() != nil {
			break
		}

		items, err := f.Client.Search(ctx, language, page)
		if err != nil {
			var throttle *provider.ThrottleError
			if errors.As(err, &throttle) {
				// Sleep until the provider's reset instant, then retry
				// the same page. No page or count advance.
				f.Logger.Warn(ctx, "Throttled on %s page %d, waiting %v", language, page, throttle.Wait().Round(time.Second))
				select {
				case <-ctx.Done():
					return scanned
				case <-time.After(throttle.Wait()):
				}
				continue
			}

			// Anything else ends this language's scan. Partial results
			// are acceptable; the run carries on with other languages.
			f.Logger.Error(ctx, "Search failed for %s page %d: %v", language, page, err)
			break
		}

		if len(items) == 0 {
			// Provider exhausted before quota. Expected, not an error.
			f.Logger.Info(ctx, "No more results for %s after %d scanned", language, scanned)
			break
		}

		for _, item := range items {
			if scanned >= quota || ctx.Err() != nil {
				break
			}

			f.Enricher.Enrich(ctx, item)
			scanned++

			select {
			case <-ctx.Done():
				return scanned
			case <-time.After(time.Duration(f.Config.Scanner.ItemPauseMs) * time.Millisecond):
			}
		}

		page++
	}

	return scanned
}
