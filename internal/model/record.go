package model

import (
	"context"
	"fmt"
	"time"

	"github.com/opencatalog/repo-scanner/cfg"
	"github.com/opencatalog/repo-scanner/pkg/db"
	"github.com/opencatalog/repo-scanner/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogRecord is one scored repository in the catalog. ExternalID is the
// provider's stable id and the only deduplication key: re-discovering the
// same id is always a conflict-update, never a second row. FirstSeenAt is
// written once on insert and never touched again.
type CatalogRecord struct {
	Model
	ID              uint      `json:"-" gorm:"primaryKey"`
	ExternalID      int64     `json:"external_id" gorm:"column:external_id;uniqueIndex;not null"`
	Name            string    `json:"name" gorm:"column:name;type:varchar(255);not null"`
	QualifiedName   string    `json:"qualified_name" gorm:"column:qualified_name;type:varchar(255);not null"`
	Description     string    `json:"description" gorm:"column:description;type:text"`
	Language        string    `json:"language" gorm:"column:language;type:varchar(64)"`
	Popularity      int64     `json:"popularity" gorm:"column:popularity;default:0"`
	Topics          string    `json:"topics" gorm:"column:topics;type:text"`
	DocumentExcerpt string    `json:"document_excerpt" gorm:"column:document_excerpt;type:mediumtext"`
	Analysis        string    `json:"analysis" gorm:"column:analysis;type:json"`
	UtilityScore    float64   `json:"utility_score" gorm:"column:utility_score;default:0"`
	FirstSeenAt     time.Time `json:"first_seen_at" gorm:"column:first_seen_at;not null"`
	LastScannedAt   time.Time `json:"last_scanned_at" gorm:"column:last_scanned_at;not null"`
	CreatedAt       time.Time `json:"-" gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time `json:"-" gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func NewCatalogRecord(config *cfg.Config, logger log.Logger, db *db.Mysql) (*CatalogRecord, error) {
	record := &CatalogRecord{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  db,
		},
	}
	return record, nil
}

func (r *CatalogRecord) TableName() string {
	return "catalog_records"
}

// refreshColumns are the only columns an upsert may touch on conflict.
// external_id and first_seen_at are immutable after creation.
var refreshColumns = []string{
	"name", "qualified_name", "description", "language", "popularity",
	"topics", "document_excerpt", "analysis", "utility_score",
	"last_scanned_at", "updated_at",
}

// Upsert inserts rec or, when external_id already exists, refreshes the
// scan-derived columns of the existing row.
func (r *CatalogRecord) Upsert(ctx context.Context, rec *CatalogRecord) error {
	rec.Name = TruncateString(rec.Name, 250)
	rec.QualifiedName = TruncateString(rec.QualifiedName, 250)

	now := time.Now()
	if rec.FirstSeenAt.IsZero() {
		rec.FirstSeenAt = now
	}
	rec.LastScannedAt = now
	rec.CreatedAt = now
	rec.UpdatedAt = now

	db, err := r.Mysql.Db()
	if err != nil {
		r.Logger.Error(ctx, "Failed to get database connection: %v", err)
		return err
	}

	if err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns(refreshColumns),
	}).Create(rec).Error; err != nil {
		r.Logger.Error(ctx, "Failed to upsert catalog record %d: %v", rec.ExternalID, err)
		return err
	}

	return nil
}

// UpsertBatch persists a batch of catalog messages from the event feed in a
// single transaction, with the same conflict rules as Upsert.
func (r *CatalogRecord) UpsertBatch(messages []CatalogMessage) error {
	db, err := r.Mysql.Db()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	records := make([]CatalogRecord, 0, len(messages))
	now := time.Now()

	for _, msg := range messages {
		records = append(records, CatalogRecord{
			ExternalID:      msg.ExternalID,
			Name:            TruncateString(msg.Name, 250),
			QualifiedName:   TruncateString(msg.QualifiedName, 250),
			Description:     msg.Description,
			Language:        msg.Language,
			Popularity:      msg.Popularity,
			Topics:          msg.Topics,
			DocumentExcerpt: msg.DocumentExcerpt,
			Analysis:        msg.Analysis,
			UtilityScore:    msg.UtilityScore,
			FirstSeenAt:     now,
			LastScannedAt:   now,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns(refreshColumns),
		}).CreateInBatches(records, 100)

		if result.Error != nil {
			return fmt.Errorf("failed to batch upsert catalog records: %w", result.Error)
		}

		return nil
	})
}
