// internal/app/store/clicks/clickstore.go
package clickstore

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

// Create inserts a Click. One row per redirect, repeats included.
func (s *Store) Create(ctx context.Context, c *models.Click) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(c).Error
}

// CountByKey returns how many clicks were logged for a short key.
func (s *Store) CountByKey(ctx context.Context, key string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.Click{}).
		Where("short_key = ?", key).
		Count(&n).Error
	return n, err
}
