package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/opencatalog/repo-scanner/cfg"
	"github.com/opencatalog/repo-scanner/internal/model"
	"github.com/opencatalog/repo-scanner/internal/provider"
	"github.com/opencatalog/repo-scanner/internal/scoring"
	"github.com/opencatalog/repo-scanner/pkg/log"
)

// DocClient fetches the documentation file for one repository.
type DocClient interface {
	FetchReadme(ctx context.Context, fullName string) (string, error)
}

// Store is the content-store write path: insert-or-update by external id.
type Store interface {
	Upsert(ctx context.Context, rec *model.CatalogRecord) error
}

// Publisher pushes stored records onto the catalog event feed.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// Enricher turns one repository summary into a scored catalog record.
// Repositories without a documentation file are skipped entirely: no record
// is written and no error is surfaced. Persistence errors are logged and
// swallowed here so that one bad record cannot abort a language scan.
type Enricher struct {
	Logger   log.Logger
	Config   *cfg.Config
	Docs     DocClient
	Store    Store
	Producer Publisher // optional, nil disables the event feed
}

func NewEnricher(logger log.Logger, config *cfg.Config, docs DocClient, store Store, producer Publisher) (*Enricher, error) {
	return &Enricher{
		Logger:   logger,
		Config:   config,
		Docs:     docs,
		Store:    store,
		Producer: producer,
	}, nil
}

// Enrich reports whether a record was stored. A false return covers both
// the designed no-documentation skip and swallowed persistence failures.
func (e *Enricher) Enrich(ctx context.Context, summary provider.RepoSummary) bool {
	doc, ok := e.fetchDocument(ctx, summary.FullName)
	if !ok {
		return false
	}

	analysis := scoring.Analyze(doc, summary.StargazersCount)
	score := scoring.Score(summary.StargazersCount, analysis)

	analysisJson, err := json.Marshal(analysis)
	if err != nil {
		e.Logger.Error(ctx, "Failed to marshal analysis for %s: %v", summary.FullName, err)
		return false
	}

	rec := &model.CatalogRecord{
		ExternalID:      summary.Id,
		Name:            summary.Name,
		QualifiedName:   summary.FullName,
		Description:     summary.Description,
		Language:        summary.Language,
		Popularity:      summary.StargazersCount,
		Topics:          strings.Join(summary.Topics, ","),
		DocumentExcerpt: model.TruncateString(doc, e.Config.Scanner.ExcerptLimit),
		Analysis:        string(analysisJson),
		UtilityScore:    score,
	}

	if err := e.Store.Upsert(ctx, rec); err != nil {
		// Logged inside the store as well; one failed record must not
		// abort the surrounding language scan.
		return false
	}

	if e.Producer != nil {
		msg := model.NewCatalogMessage(rec)
		if err := e.Producer.Publish(ctx, "catalog", msg); err != nil {
			e.Logger.Error(ctx, "Failed to publish catalog message for %s: %v", summary.FullName, err)
		}
	}

	return true
}

// fetchDocument retrieves the documentation text, honoring throttle signals
// by sleeping until the provider's reset instant and retrying the same
// request. Absence of documentation is a silent skip.
func (e *Enricher) fetchDocument(ctx context.Context, fullName string) (string, bool) {
	for {
		doc, err := e.Docs.FetchReadme(ctx, fullName)
		if err == nil {
			return doc, true
		}

		var throttle *provider.ThrottleError
		if errors.As(err, &throttle) {
			select {
			case <-ctx.Done():
				return "", false
			case <-time.After(throttle.Wait()):
			}
			continue
		}

		if errors.Is(err, provider.ErrNoReadme) {
			e.Logger.Debug(ctx, "No documentation for %s, skipping", fullName)
			return "", false
		}

		e.Logger.Warn(ctx, "Failed to fetch documentation for %s: %v", fullName, err)
		return "", false
	}
}
