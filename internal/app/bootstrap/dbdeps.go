// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/folio/internal/app/store/kv"
	"gorm.io/gorm"
)

// DBDeps holds the back-end dependencies for the app.
type DBDeps struct {
	// DB is the relational store for submissions, clicks and downloads.
	DB *gorm.DB
	// KV holds shortlinks, flags and rate-limit windows.
	KV kv.Store
}
