package blob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flaromlab/models"
)

// Database implements Store on a gorm table, one row per key.
type Database struct {
	db *gorm.DB
}

// NewDatabase wraps an open gorm handle. The blob_records table must already be migrated.
func NewDatabase(db *gorm.DB) (*Database, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is nil")
	}
	return &Database{db: db}, nil
}

func (s *Database) Driver() Driver { return DriverDatabase }

func (s *Database) Get(ctx context.Context, key string) ([]byte, error) {
	var record models.BlobRecord
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load blob %q: %w", key, err)
	}
	return record.Payload, nil
}

func (s *Database) Put(ctx context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	record := models.BlobRecord{Key: key, Payload: data, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("store blob %q: %w", key, err)
	}
	return nil
}

func (s *Database) Delete(ctx context.Context, key string) (bool, error) {
	result := s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.BlobRecord{})
	if result.Error != nil {
		return false, fmt.Errorf("delete blob %q: %w", key, result.Error)
	}
	return result.RowsAffected > 0, nil
}
