// Package api provides an embeddable facade over the catalog scanner for
// hosting applications: wiring, manual scan triggers, and status snapshots.
package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opencatalog/repo-scanner/cfg"
	"github.com/opencatalog/repo-scanner/internal/model"
	"github.com/opencatalog/repo-scanner/internal/provider"
	"github.com/opencatalog/repo-scanner/internal/scanner"
	"github.com/opencatalog/repo-scanner/pkg/db"
	"github.com/opencatalog/repo-scanner/pkg/kafka"
	"github.com/opencatalog/repo-scanner/pkg/log"
)

// ScanStats is the status view handed to embedding applications.
type ScanStats struct {
	IsRunning      bool      `json:"isRunning"`
	StartedAt      time.Time `json:"startedAt"`
	CompletedAt    time.Time `json:"completedAt"`
	TotalProcessed int64     `json:"totalProcessed"`
	NextScanIn     string    `json:"nextScanIn"`
}

// CatalogAPI wires the scanner stack together and exposes it to a host
// application.
type CatalogAPI struct {
	config    *cfg.Config
	logger    log.Logger
	mysql     *db.Mysql
	scanner   *scanner.Scanner
	scheduler *scanner.Scheduler
}

func NewCatalogAPI() *CatalogAPI {
	return &CatalogAPI{}
}

// Initialize loads configuration and builds the full scan pipeline. The
// store being unreachable here is the one startup failure treated as fatal.
func (a *CatalogAPI) Initialize(ctx context.Context) error {
	var err error

	loader, _ := cfg.NewViperLoader()
	a.config, err = loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	a.logger, err = log.NewCslLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	a.mysql, err = db.NewMysql(a.config)
	if err != nil {
		return fmt.Errorf("failed to create database handle: %w", err)
	}
	if err := a.mysql.Ping(); err != nil {
		return fmt.Errorf("content store unreachable: %w", err)
	}

	recordMd, err := model.NewCatalogRecord(a.config, a.logger, a.mysql)
	if err != nil {
		return fmt.Errorf("failed to create record model: %w", err)
	}
	if err := a.mysql.Migrate(recordMd); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	caller := provider.NewCaller(a.logger, a.config)

	var producer scanner.Publisher
	if len(a.config.Kafka.Brokers) > 0 {
		producer = kafka.NewProducer(a.config, a.logger, a.config.Kafka.Producer.TopicCatalog)
	}

	enricher, err := scanner.NewEnricher(a.logger, a.config, caller, recordMd, producer)
	if err != nil {
		return fmt.Errorf("failed to create enricher: %w", err)
	}

	fetcher, err := scanner.NewFetcher(a.logger, a.config, caller, enricher)
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}

	a.scanner, err = scanner.NewScanner(a.logger, a.config, fetcher)
	if err != nil {
		return fmt.Errorf("failed to create scanner: %w", err)
	}

	a.scheduler, err = scanner.NewScheduler(a.logger, a.config, a.scanner)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	return nil
}

// StartScheduler begins the periodic scan cycle, firing the first scan
// immediately.
func (a *CatalogAPI) StartScheduler(ctx context.Context) error {
	if a.scheduler == nil {
		return errors.New("api not initialized")
	}
	a.scheduler.Start(ctx)
	return nil
}

// StopScheduler cancels future scheduled scans. An in-flight scan finishes.
func (a *CatalogAPI) StopScheduler() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
}

// StartScan triggers a manual scan. Returns a human-readable status; a scan
// already in progress is reported, not duplicated.
func (a *CatalogAPI) StartScan(ctx context.Context) (string, error) {
	if a.scanner == nil {
		return "", errors.New("api not initialized")
	}

	if a.scanner.IsRunning() {
		return "Scan is already in progress", nil
	}

	go a.scanner.Run(ctx)
	return "Scan started", nil
}

// GetScanStats returns the current scan statistics.
func (a *CatalogAPI) GetScanStats() (*ScanStats, error) {
	if a.scanner == nil || a.scheduler == nil {
		return nil, errors.New("api not initialized")
	}

	stats := a.scanner.Stats()
	return &ScanStats{
		IsRunning:      stats.IsRunning,
		StartedAt:      stats.StartedAt,
		CompletedAt:    stats.CompletedAt,
		TotalProcessed: stats.TotalProcessed,
		NextScanIn:     a.scheduler.TimeUntilNext().String(),
	}, nil
}

// GetDatabaseStatus reports content-store connectivity.
func (a *CatalogAPI) GetDatabaseStatus() (string, error) {
	if a.mysql == nil {
		return "Database not initialized", nil
	}

	if err := a.mysql.Ping(); err != nil {
		return "Database not connected: " + err.Error(), err
	}

	return "Database connected", nil
}

// Scanner exposes the underlying scanner for the HTTP surface.
func (a *CatalogAPI) Scanner() *scanner.Scanner {
	return a.scanner
}

// Scheduler exposes the underlying scheduler for the HTTP surface.
func (a *CatalogAPI) Scheduler() *scanner.Scheduler {
	return a.scheduler
}

// Mysql exposes the database handle for the HTTP surface.
func (a *CatalogAPI) Mysql() *db.Mysql {
	return a.mysql
}

// Config exposes the loaded configuration.
func (a *CatalogAPI) Config() *cfg.Config {
	return a.config
}

// Logger exposes the logger.
func (a *CatalogAPI) Logger() log.Logger {
	return a.logger
}
