// Batch persister for the catalog event feed. Reads catalog messages from
// Kafka and upserts them into the content store in batches, for deployments
// where the scanner and the store are separated.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opencatalog/repo-scanner/cfg"
	"github.com/opencatalog/repo-scanner/internal/model"
	"github.com/opencatalog/repo-scanner/pkg/db"
	"github.com/opencatalog/repo-scanner/pkg/kafka"
	"github.com/opencatalog/repo-scanner/pkg/log"
)

func main() {
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, _ := log.NewCslLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mysql, _ := db.NewMysql(config)
	if err := mysql.Ping(); err != nil {
		logger.Error(ctx, "Content store unreachable: %v", err)
		os.Exit(1)
	}

	recordMd, _ := model.NewCatalogRecord(config, logger, mysql)
	if err := mysql.Migrate(recordMd); err != nil {
		logger.Error(ctx, "Failed to migrate: %v", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	startCatalogConsumer(ctx, config, logger, recordMd)

	<-sigCh
	logger.Info(ctx, "Received shutdown signal, gracefully shutting down...")
	cancel()
}

func startCatalogConsumer(ctx context.Context, config *cfg.Config, logger log.Logger, recordMd *model.CatalogRecord) {
	consumer := kafka.NewConsumer(config, logger, config.Kafka.Producer.TopicCatalog, config.Kafka.Consumer.GroupId)

	batchSize := config.Kafka.Consumer.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	batchTimeout := 5 * time.Second

	messages := make(chan model.CatalogMessage, batchSize*2)

	go processBatches(ctx, messages, batchSize, batchTimeout, logger, recordMd)

	consumer.RegisterHandler("catalog", func(data []byte) error {
		var msg model.CatalogMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal catalog message: %w", err)
		}

		select {
		case messages <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}

		return nil
	})

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error(ctx, "Catalog consumer error: %v", err)
		}
	}()

	logger.Info(ctx, "Catalog consumer started")
}

// processBatches collects messages and flushes them either when the batch
// fills or when the timeout elapses, whichever comes first.
func processBatches(ctx context.Context, messages <-chan model.CatalogMessage, batchSize int,
	batchTimeout time.Duration, logger log.Logger, recordMd *model.CatalogRecord) {

	var batch []model.CatalogMessage
	timer := time.NewTimer(batchTimeout)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := recordMd.UpsertBatch(batch); err != nil {
			logger.Error(ctx, "Failed to persist batch of %d records: %v", len(batch), err)
		} else {
			logger.Info(ctx, "Persisted batch of %d catalog records", len(batch))
		}
		batch = nil
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case msg := <-messages:
			batch = append(batch, msg)
			if len(batch) >= batchSize {
				flush()
				timer.Reset(batchTimeout)
			}

		case <-timer.C:
			flush()
			timer.Reset(batchTimeout)
		}
	}
}
