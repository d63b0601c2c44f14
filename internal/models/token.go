package models

import "time"

// SecretPrefix marks API token secrets so the auth middleware can tell
// them apart from session JWTs without a database lookup.
const SecretPrefix = "nav_"

// APIToken is a long-lived machine credential scoped to one user. Only
// the sha256 of the secret is stored; the plaintext is returned exactly
// once at creation time.
type APIToken struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Name       string     `gorm:"not null;size:255" json:"name"`
	SecretHash string     `gorm:"uniqueIndex;not null;size:64" json:"-"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	ExpiresAt  *time.Time `json:"expires_at"`
	Active     bool       `gorm:"not null;default:true" json:"active"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (APIToken) TableName() string {
	return "api_tokens"
}

func (t *APIToken) IsExpired() bool {
	return t.ExpiresAt != nil && time.Now().After(*t.ExpiresAt)
}

// IsValid reports whether the token may authenticate a request.
func (t *APIToken) IsValid() bool {
	return t.Active && !t.IsExpired()
}
