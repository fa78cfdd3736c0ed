package models

import (
	"time"
)

// Bookmark marks a post as saved by a user. At most one row exists per
// (user, post) pair; the unique index backs the idempotent create path.
type Bookmark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_bookmarks_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_bookmarks_user_post;index" json:"post_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// PageKey returns the stable sort key used for cursor pagination.
func (b *Bookmark) PageKey() (time.Time, uint) {
	return b.CreatedAt, b.ID
}
