package models

import "time"

// Link statuses. Clicks are recorded regardless of status; only the
// public listing filters by it.
const (
	LinkStatusActive   = "active"
	LinkStatusInactive = "inactive"
	LinkStatusError    = "error"
)

// Link is a single navigable URL entry. It belongs to exactly one
// category and carries a monotonic click counter.
type Link struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null;size:255" json:"title"`
	URL         string    `gorm:"not null;type:text" json:"url"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"size:50" json:"icon"`
	Status      string    `gorm:"not null;default:'active';size:20;index" json:"status"`
	ClickCount  int64     `gorm:"not null;default:0" json:"click_count"`
	CategoryID  uint      `gorm:"not null;index" json:"category_id"`
	SortOrder   int       `gorm:"not null" json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Tags     []Tag     `gorm:"many2many:link_tags" json:"tags,omitempty"`
}

func (Link) TableName() string {
	return "links"
}

func (l *Link) IsActive() bool {
	return l.Status == LinkStatusActive
}
