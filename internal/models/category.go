package models

import "time"

// Category groups links for display. Active categories carry a dense,
// unique sort_order sequence that defines their position on the page.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"size:50;default:'📁'" json:"icon"`
	Color       string    `gorm:"size:7;default:'#007bff'" json:"color"`
	SortOrder   int       `gorm:"not null;index" json:"sort_order"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Links []Link `gorm:"foreignKey:CategoryID" json:"links,omitempty"`
}

func (Category) TableName() string {
	return "categories"
}
