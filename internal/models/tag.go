package models

import (
	"strings"
	"time"
)

// Tag is a shared vocabulary entry. Names are stored in canonical
// (lowercased, trimmed) form and are unique; tags have no owner.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PageKey returns the stable sort key used for cursor pagination.
func (t *Tag) PageKey() (time.Time, uint) {
	return t.CreatedAt, t.ID
}

// CanonicalTagName normalizes a tag name for storage and lookup.
// Uniqueness is case-insensitive, so "Go" and "go" are the same tag.
func CanonicalTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
