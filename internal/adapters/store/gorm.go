package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/dkeye/Coedit/internal/domain"
)

// Gorm stores documents in the documents table.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(dsn string) (*Gorm, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewGormWithDB(db)
}

// NewGormWithDB migrates the schema on an already opened connection.
func NewGormWithDB(db *gorm.DB) (*Gorm, error) {
	if err := db.AutoMigrate(&domain.Document{}); err != nil {
		return nil, fmt.Errorf("migrate documents: %w", err)
	}
	return &Gorm{db: db}, nil
}

func (s *Gorm) Get(ctx context.Context, id string) (string, bool, error) {
	var doc domain.Document
	err := s.db.WithContext(ctx).First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load document %s: %w", id, err)
	}
	return doc.Data, true, nil
}

// Put upserts; the last write wins.
func (s *Gorm) Put(ctx context.Context, id, data string) error {
	doc := domain.Document{ID: id, Data: data}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("save document %s: %w", id, err)
	}
	return nil
}

func (s *Gorm) List(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&domain.Document{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return ids, nil
}

func (s *Gorm) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
