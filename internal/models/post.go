// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Post represents a blog post. AuthorID is set from the authenticated
// actor at creation time and never changes afterwards.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Published bool      `gorm:"not null;default:false;index" json:"published"`
	Tags      []Tag     `gorm:"many2many:post_tags" json:"tags"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Computed per request from the likes table; never persisted.
	LikesCount int64 `gorm:"-" json:"likes_count"`
	Liked      bool  `gorm:"-" json:"is_liked"`
}

// PageKey returns the stable sort key used for cursor pagination.
func (p *Post) PageKey() (time.Time, uint) {
	return p.CreatedAt, p.ID
}
