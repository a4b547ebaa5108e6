// internal/domain/models/download.go
package models

import "time"

// Download is one résumé download. Count grows by one per row.
type Download struct {
	ID             uint       `gorm:"column:id;primaryKey;autoIncrement"`
	Count          int        `gorm:"column:count;type:integer;default:0"`
	LastDownloadAt *time.Time `gorm:"column:last_download_at"`
}

func (Download) TableName() string { return "downloads" }
