package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/folio/internal/app/system/schema"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory sqlite database with the schema
// applied. The database is closed when the test finishes.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// one connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx, cancel := TestContext()
	defer cancel()
	if err := schema.EnsureAll(ctx, db); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	return db
}

// TestContext returns a context with a timeout suitable for tests.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	if err := db.Table(table).Count(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

// BreakTable drops table so later writes to it fail.
func BreakTable(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	if err := db.Migrator().DropTable(table); err != nil {
		t.Fatalf("drop %s: %v", table, err)
	}
}
