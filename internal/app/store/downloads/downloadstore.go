// internal/app/store/downloads/downloadstore.go
package downloadstore

import (
	"context"
	"time"

	"github.com/dalemusser/folio/internal/domain/models"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Record appends a Download row whose Count is one more than the current
// maximum. The read and insert share a transaction.
func (s *Store) Record(ctx context.Context) (models.Download, error) {
	now := time.Now().UTC()
	rec := models.Download{LastDownloadAt: &now}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int
		if err := tx.Model(&models.Download{}).
			Select("COALESCE(MAX(count), 0)").
			Scan(&last).Error; err != nil {
			return err
		}
		rec.Count = last + 1
		return tx.Create(&rec).Error
	})
	if err != nil {
		return models.Download{}, err
	}
	return rec, nil
}

// Total returns the latest counter value, or 0 when nothing was recorded.
func (s *Store) Total(ctx context.Context) (int, error) {
	var last int
	err := s.db.WithContext(ctx).
		Model(&models.Download{}).
		Select("COALESCE(MAX(count), 0)").
		Scan(&last).Error
	return last, err
}
