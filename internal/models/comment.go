package models

import (
	"time"
)

// Comment belongs to exactly one Post. ParentID, when set, references
// another Comment on the same Post (threading).
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	ParentID  *uint     `gorm:"index" json:"parent_id,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PageKey returns the stable sort key used for cursor pagination.
func (c *Comment) PageKey() (time.Time, uint) {
	return c.CreatedAt, c.ID
}
