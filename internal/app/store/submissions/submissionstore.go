// internal/app/store/submissions/submissionstore.go
package submissionstore

import (
	"context"
	"time"

	"github.com/dalemusser/folio/internal/domain/models"
	"gorm.io/gorm"
)

// Store appends contact submissions to the submissions table.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create inserts a Submission. If CreatedAt is zero, it's set to time.Now().UTC().
func (s *Store) Create(ctx context.Context, sub *models.Submission) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(sub).Error
}

// Count returns the number of stored submissions.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Submission{}).Count(&n).Error
	return n, err
}
