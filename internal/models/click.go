package models

import "time"

// ClickRecord is an append-only event written once per recorded click.
// Time-windowed stats (today / 7 days / 30 days) are derived from it.
type ClickRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LinkID    uint      `gorm:"not null;index" json:"link_id"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	UserAgent string    `gorm:"type:text" json:"user_agent"`
	Referer   string    `gorm:"type:text" json:"referer"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (ClickRecord) TableName() string {
	return "click_records"
}
