package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/lac-hong-legacy/study_api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormBackend keeps documents as rows of the documents table.
type gormBackend struct {
	db *gorm.DB
	// rowLocks enables SELECT ... FOR UPDATE inside Update; sqlite locks the whole
	// database for the write transaction instead.
	rowLocks bool
}

func newGormBackend(db *gorm.DB, rowLocks bool) *gormBackend {
	return &gormBackend{db: db, rowLocks: rowLocks}
}

func (b *gormBackend) Load(name string) ([]byte, error) {
	return loadRecord(b.db, name)
}

func (b *gormBackend) Save(name string, data []byte) error {
	return saveRecord(b.db, name, data)
}

func (b *gormBackend) Update(name string, fn func(current []byte) ([]byte, error)) error {
	return b.db.Transaction(func(tx *gorm.DB) error {
		query := tx
		if b.rowLocks {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		current, err := loadRecord(query, name)
		if err != nil && !errors.Is(err, ErrDocumentNotFound) {
			return err
		}

		data, err := fn(current)
		if err != nil {
			return err
		}
		return saveRecord(tx, name, data)
	})
}

func loadRecord(db *gorm.DB, name string) ([]byte, error) {
	var record model.DocumentRecord
	err := db.Where("name = ?", name).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return []byte(record.Body), nil
}

func saveRecord(db *gorm.DB, name string, data []byte) error {
	record := model.DocumentRecord{
		Name:      name,
		Body:      string(data),
		UpdatedAt: time.Now().UTC(),
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	return nil
}
