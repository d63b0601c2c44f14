package models

import "time"

// Setting is one entry of the flat string-keyed site configuration map.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;not null;size:100" json:"key"`
	Value     string    `gorm:"not null;type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// DefaultSettings are seeded on migration for keys that do not exist yet.
var DefaultSettings = map[string]string{
	"site_name":            "Tool Navigator",
	"site_description":     "Curated directory of operations tooling",
	"primary_color":        "#007bff",
	"enable_registration":  "true",
	"enable_link_check":    "false",
	"enable_analytics":     "true",
	"check_interval_hours": "24",
	"links_per_page":       "12",
}
