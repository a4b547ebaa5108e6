// internal/app/system/schema/schema.go
package schema

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/folio/internal/domain/models"
	"gorm.io/gorm"
)

/*
EnsureAll is called at startup. Each ensure* step is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *gorm.DB) error {
	var problems []string

	tables := []struct {
		name  string
		model any
	}{
		{"submissions", &models.Submission{}},
		{"clicks", &models.Click{}},
		{"downloads", &models.Download{}},
	}
	for _, t := range tables {
		if err := db.WithContext(ctx).AutoMigrate(t.model); err != nil {
			problems = append(problems, t.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
