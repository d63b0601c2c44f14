package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"gorm.io/gorm"
)

// Tag is a free-form label. Names are matched case-sensitively and
// must be unique.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Color     string    `gorm:"not null;size:7" json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Links []Link `gorm:"many2many:link_tags" json:"links,omitempty"`
}

func (Tag) TableName() string {
	return "tags"
}

// BeforeCreate assigns a random color when none was given.
func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.Color == "" {
		t.Color = randomColor()
	}
	return nil
}

func randomColor() string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "#007bff"
	}
	return "#" + hex.EncodeToString(b)
}
