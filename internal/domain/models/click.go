// internal/domain/models/click.go
package models

import "time"

// Click records a single shortlink redirect, repeats included.
type Click struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	ShortKey  string    `gorm:"column:short_key;type:text;index:idx_clicks_short_key"`
	TargetURL string    `gorm:"column:target_url;type:text"`
	Referrer  string    `gorm:"column:referrer;type:text"`
	IP        string    `gorm:"column:ip;type:text"`
	UserAgent string    `gorm:"column:user_agent;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
}

func (Click) TableName() string { return "clicks" }
