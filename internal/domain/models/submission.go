// internal/domain/models/submission.go
package models

import "time"

// Submission is one accepted contact-form message.
// Rows are append-only; nothing updates or deletes them.
type Submission struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;type:text"`
	Email     string    `gorm:"column:email;type:text"`
	Message   string    `gorm:"column:message;type:text"`
	IP        string    `gorm:"column:ip;type:text"`
	UserAgent string    `gorm:"column:user_agent;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
}

// TableName pins the table name used by every revision of the site.
func (Submission) TableName() string { return "submissions" }
