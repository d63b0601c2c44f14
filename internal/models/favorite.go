package models

import "time"

// Favorite marks a link as bookmarked by a user. Existence of the row
// is the whole state; the (user_id, link_id) pair is unique.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_link" json:"user_id"`
	LinkID    uint      `gorm:"not null;uniqueIndex:idx_user_link;index" json:"link_id"`
	CreatedAt time.Time `json:"created_at"`

	Link *Link `gorm:"foreignKey:LinkID" json:"link,omitempty"`
}

func (Favorite) TableName() string {
	return "favorites"
}
